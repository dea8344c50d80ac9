package stv

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nektos/stv/pkg/model"
	"github.com/nektos/stv/pkg/tally"
)

func cyclicProfile() *model.Profile {
	p := model.NewProfile(3)
	p.AddBallot(1, model.RankedBallot(0, 1, 2))
	p.AddBallot(1, model.RankedBallot(1, 2, 0))
	p.AddBallot(1, model.RankedBallot(2, 0, 1))
	return p
}

func randomProfile(r *rand.Rand, n, voters int) *model.Profile {
	p := model.NewProfile(n)
	for v := 0; v < voters; v++ {
		order := r.Perm(n)
		length := 1 + r.Intn(n)
		b := model.Ballot{}
		for i := 0; i < length; i++ {
			if i+1 < length && r.Intn(4) == 0 {
				b = append(b, model.Tie(model.Candidate(order[i]), model.Candidate(order[i+1])))
				i++
				continue
			}
			b = append(b, model.Single(model.Candidate(order[i])))
		}
		p.AddBallot(1, b)
	}
	return p
}

func TestRunCyclicPreferences(t *testing.T) {
	assert := assert.New(t)

	result, err := New(Config{}).Run(context.Background(), cyclicProfile())
	require.NoError(t, err)

	assert.LessOrEqual(len(result.Rounds), 3)
	assert.Equal([]model.Candidate{0, 1, 2}, result.Winners)
	assert.Empty(result.Eliminated)

	again, err := New(Config{}).Run(context.Background(), cyclicProfile())
	require.NoError(t, err)
	assert.Equal(result.Winners, again.Winners)
}

func TestRunSoleSurvivorConvention(t *testing.T) {
	result, err := New(Config{Convention: SoleSurvivor}).Run(context.Background(), cyclicProfile())
	require.NoError(t, err)
	assert.Equal(t, []model.Candidate{0}, result.Winners)
}

func TestRunEliminatesLoserGroupTogether(t *testing.T) {
	assert := assert.New(t)

	p := model.NewProfile(4)
	p.AddBallot(3, model.RankedBallot(0))
	p.AddBallot(2, model.RankedBallot(1, 0))
	p.AddBallot(1, model.RankedBallot(2, 1))
	p.AddBallot(1, model.RankedBallot(3, 1))

	result, err := New(Config{}).Run(context.Background(), p)
	require.NoError(t, err)

	require.Len(t, result.Rounds, 3)
	assert.Equal([]model.Candidate{2, 3}, result.Rounds[0].Losers)
	assert.Equal(tally.Scores{tally.Votes(3), tally.Votes(4), 0, 0}, result.Rounds[1].Scores)
	assert.Equal([]model.Candidate{0}, result.Rounds[1].Losers)
	assert.Equal([]model.Candidate{1}, result.Winners)
	assert.Equal([]model.Candidate{2, 3, 0}, result.Eliminated)
}

func TestRunAllTiedFirstRound(t *testing.T) {
	p := model.NewProfile(4)
	for c := model.Candidate(0); c < 4; c++ {
		p.AddBallot(2, model.RankedBallot(c))
	}

	result, err := New(Config{}).Run(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, result.Rounds, 1)
	assert.Equal(t, []model.Candidate{0, 1, 2, 3}, result.Winners)
}

func TestRunTieReResolution(t *testing.T) {
	p := model.NewProfile(4)
	p.AddBallot(1, model.Ballot{model.Single(0), model.Tie(1, 2)})
	p.AddBallot(1, model.RankedBallot(3))

	result, err := New(Config{Eliminated: []model.Candidate{0, 1}}).Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, tally.Vote, result.Rounds[0].Scores.Of(2))
	assert.Equal(t, []model.Candidate{2, 3}, result.Winners)
}

func TestRunErrors(t *testing.T) {
	_, err := New(Config{}).Run(context.Background(), model.NewProfile(3))
	assert.ErrorIs(t, err, model.ErrEmptyProfile)

	p := model.NewProfile(2)
	p.AddBallot(1, model.RankedBallot(0, 2))
	_, err = New(Config{}).Run(context.Background(), p)
	assert.True(t, model.IsConfigurationError(err))

	_, err = New(Config{Eliminated: []model.Candidate{7}}).Run(context.Background(), cyclicProfile())
	assert.True(t, model.IsConfigurationError(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(Config{}).Run(ctx, cyclicProfile())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := 2 + r.Intn(6)
		p := randomProfile(r, n, 1+r.Intn(25))

		for _, convention := range []Convention{CoWinners, SoleSurvivor} {
			engine := New(Config{Convention: convention})
			result, err := engine.Run(context.Background(), p)
			require.NoError(t, err)

			eliminated := model.NewEliminationSet(result.Eliminated...)
			for _, w := range result.Winners {
				assert.False(t, eliminated.Has(w), "winner %d eliminated in %v", w, p.Ballots)
			}
			assert.NotEmpty(t, result.Winners)
			assert.LessOrEqual(t, len(result.Rounds), n)
			assert.Equal(t, n, len(result.Eliminated)+len(result.Rounds[len(result.Rounds)-1].Losers))

			again, err := engine.Run(context.Background(), p)
			require.NoError(t, err)
			assert.Equal(t, result.Winners, again.Winners)
		}
	}
}

func TestParseConvention(t *testing.T) {
	for _, c := range []Convention{CoWinners, SoleSurvivor} {
		parsed, err := ParseConvention(c.String())
		assert.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := ParseConvention("borda")
	assert.Error(t, err)
}
