package resultstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nektos/stv/pkg/manipulation"
	"github.com/nektos/stv/pkg/model"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	clock := time.Unix(1700000000, 0)
	s.now = func() time.Time { return clock }
	return s, &clock
}

func TestStoreOutcome(t *testing.T) {
	s, _ := newTestStore(t)

	p := model.NewProfile(3)
	p.AddBallot(4, model.RankedBallot(2))
	p.AddBallot(3, model.RankedBallot(1))
	p.AddBallot(2, model.RankedBallot(0, 1))
	outcome, err := manipulation.NewCoalition(manipulation.CoalitionConfig{}).Search(context.Background(), p, 1, 2)
	require.NoError(t, err)

	key := Key(p.Digest(), "coalition", 1, 2)
	found, err := s.Get(key, &manipulation.Outcome{})
	require.NoError(t, err)
	assert.False(t, found)

	id, err := s.Put(key, p.Digest(), "coalition", outcome)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	loaded := &manipulation.Outcome{}
	found, err = s.Get(key, loaded)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, outcome.Witnesses, loaded.Witnesses)
	assert.Equal(t, outcome.Best, loaded.Best)
	assert.Equal(t, outcome.Trials, loaded.Trials)
}

func TestStorePutReplaces(t *testing.T) {
	s, _ := newTestStore(t)

	key := Key("digest", "tree", true)
	first, err := s.Put(key, "digest", "tree", map[string]int{"count": 3})
	require.NoError(t, err)
	second, err := s.Put(key, "digest", "tree", map[string]int{"count": 4})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	records, err := s.List("digest")
	require.NoError(t, err)
	require.Len(t, records, 1)

	v := map[string]int{}
	require.NoError(t, records[0].Decode(&v))
	assert.Equal(t, 4, v["count"])
}

func TestStoreList(t *testing.T) {
	s, clock := newTestStore(t)

	_, err := s.Put(Key("a", "tree"), "a", "tree", 1)
	require.NoError(t, err)
	*clock = clock.Add(time.Minute)
	_, err = s.Put(Key("a", "coalition", 1, 2), "a", "coalition", 2)
	require.NoError(t, err)
	_, err = s.Put(Key("b", "tree"), "b", "tree", 3)
	require.NoError(t, err)

	records, err := s.List("a")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "tree", records[0].Search)
	assert.Equal(t, "coalition", records[1].Search)
}

func TestStoreGC(t *testing.T) {
	s, clock := newTestStore(t)

	old := Key("a", "tree")
	fresh := Key("a", "coalition")
	_, err := s.Put(old, "a", "tree", 1)
	require.NoError(t, err)
	*clock = clock.Add(48 * time.Hour)
	_, err = s.Put(fresh, "a", "coalition", 2)
	require.NoError(t, err)

	deleted, err := s.GC(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	var v int
	found, err := s.Get(old, &v)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = s.Get(fresh, &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, v)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("d", "coalition", 1, 2), Key("d", "coalition", 1, 2))
	assert.NotEqual(t, Key("d", "coalition", 1, 2), Key("d", "coalition", 2, 1))
	assert.NotEqual(t, Key("d", "coalition", 12), Key("d", "coalition", 1, 2))
	assert.Len(t, Key("d", "tree"), 64)
}
