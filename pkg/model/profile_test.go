package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileCloneIsolation(t *testing.T) {
	p := NewProfile(3)
	p.AddBallot(2, RankedBallot(0, 1, 2))

	trial := p.Replace([]int{1}, RankedBallot(2))

	assert.Equal(t, RankedBallot(0, 1, 2), p.Ballots[1])
	assert.Equal(t, RankedBallot(2), trial.Ballots[1])
	assert.Equal(t, RankedBallot(0, 1, 2), trial.Ballots[0])
}

func TestProfileValidate(t *testing.T) {
	tables := []struct {
		name   string
		ballot Ballot
		valid  bool
	}{
		{"ranked", RankedBallot(0, 1, 2), true},
		{"tie", Ballot{Tie(0, 2)}, true},
		{"out of range", RankedBallot(0, 3), false},
		{"negative", RankedBallot(-1), false},
		{"degenerate tie", Ballot{Tie(1, 1)}, false},
	}
	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			p := NewProfile(3)
			p.AddBallot(1, table.ballot)
			err := p.Validate()
			if table.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, IsConfigurationError(err))
			}
		})
	}
}

func TestProfileDigest(t *testing.T) {
	a := NewProfile(3)
	a.AddBallot(1, RankedBallot(0, 1))
	b := a.Clone()
	b.Names[0] = "Alice"

	assert.Equal(t, a.Digest(), b.Digest())

	b.AddBallot(1, RankedBallot(2))
	assert.NotEqual(t, a.Digest(), b.Digest())
}

func TestProfileName(t *testing.T) {
	p := NewProfile(30)
	p.Names[1] = "Bob"

	assert.Equal(t, "a", p.Name(0))
	assert.Equal(t, "Bob", p.Name(1))
	assert.Equal(t, "c27", p.Name(27))
}
