package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nektos/stv/pkg/model"
	"github.com/nektos/stv/pkg/resultstore"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd := createRootCommand(context.Background(), &Input{}, "test")
	rootCmd.SetArgs(args)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestTallyTable(t *testing.T) {
	out, err := runCommand(t, "tally", "-f", "testdata/sample.toi")
	require.NoError(t, err)

	assert.Contains(t, out, "Round  Alice  Bob  Carol  Derek  Eliminated\n")
	assert.Contains(t, out, "1      3      2    0      1      Carol\n")
	assert.Contains(t, out, "3      3      2    -      -      Bob\n")
	assert.Contains(t, out, "4      3      -    -      -\n")
	assert.Contains(t, out, "Winners: Alice\n")
}

func TestTallyJSON(t *testing.T) {
	out, err := runCommand(t, "tally", "-f", "testdata/sample.toi", "--json")
	require.NoError(t, err)

	view := tallyView{}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "co-winners", view.Convention)
	assert.Equal(t, []string{"Alice"}, view.Winners)
	assert.Equal(t, []string{"Carol", "Derek", "Bob"}, view.Eliminated)
	require.Len(t, view.Rounds, 4)
	assert.Equal(t, 1.0, view.Rounds[0].Scores["Derek"])
	assert.Equal(t, []string{"Carol"}, view.Rounds[0].Losers)
}

func TestTallyChart(t *testing.T) {
	out, err := runCommand(t, "tally", "-f", "testdata/sample.toi", "--chart")
	require.NoError(t, err)

	assert.Contains(t, out, "⬇")
	assert.Contains(t, out, "║ Alice ║")
	assert.NotContains(t, out, "\x1b[")
}

func TestTallyMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stv.prom")
	_, err := runCommand(t, "tally", "-f", "testdata/sample.toi", "--metrics-file", path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "stv_tally_rounds 4")
}

func TestNamesFile(t *testing.T) {
	out, err := runCommand(t, "tally", "-f", "testdata/coalition.toi", "--names-file", "testdata/names.env", "--json")
	require.NoError(t, err)

	view := tallyView{}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, []string{"Ben"}, view.Winners)
	assert.Equal(t, []string{"Ann", "Cat"}, view.Eliminated)
}

func TestConfigFile(t *testing.T) {
	out, err := runCommand(t, "tally", "--config", "testdata/stv.yml", "--json")
	require.NoError(t, err)

	view := tallyView{}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "sole-survivor", view.Convention)
	assert.Equal(t, []string{"Bob"}, view.Winners)
}

func TestConfigFileUnderFlags(t *testing.T) {
	input := &Input{Convention: "co-winners"}
	require.NoError(t, mergeConfigFile(input, "testdata/stv.yml"))

	assert.Equal(t, "co-winners", input.Convention)
	assert.Equal(t, "testdata/coalition.toi", input.ProfilePath)
	assert.Equal(t, 2, input.Workers)

	assert.Error(t, mergeConfigFile(input, "testdata/missing.yml"))
}

func TestMissingFile(t *testing.T) {
	_, err := runCommand(t, "tally")
	assert.ErrorContains(t, err, "no ballot file given")

	_, err = runCommand(t, "tally", "-f", "testdata/sample.toi", "--convention", "random")
	assert.ErrorContains(t, err, "unknown termination convention")
}

func TestTree(t *testing.T) {
	cache := t.TempDir()
	out, err := runCommand(t, "tree", "-f", "testdata/coalition.toi", "--json", "--cache-dir", cache)
	require.NoError(t, err)

	view := treeView{}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, []string{"Bob"}, view.OriginalWinners)
	assert.Equal(t, 3, view.Count)
	assert.Equal(t, 1, view.Pruned)
	require.Len(t, view.Scenarios, 3)
	for _, s := range view.Scenarios {
		assert.Equal(t, "Bob", s.Winner)
		assert.Equal(t, []string{"Bob"}, s.Remaining)
	}
	assert.Equal(t, []string{"Alice", "Carol"}, view.Scenarios[0].EliminationOrder)
	assert.Equal(t, []string{"Alice", "Carol"}, view.Scenarios[0].Ballot)

	again, err := runCommand(t, "tree", "-f", "testdata/coalition.toi", "--json", "--cache-dir", cache)
	require.NoError(t, err)
	assert.JSONEq(t, out, again)

	out, err = runCommand(t, "tree", "-f", "testdata/coalition.toi", "--target", "Alice", "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Original winners: Bob\n")
	assert.Contains(t, out, "3 scenarios, 0 kept, 1 branches pruned\n")
}

func TestCoalition(t *testing.T) {
	cache := t.TempDir()
	out, err := runCommand(t, "coalition", "-f", "testdata/coalition.toi", "--json", "--cache-dir", cache)
	require.NoError(t, err)

	views := []outcomeView{}
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)

	alice := views[0]
	assert.Equal(t, "Bob", alice.Disfavored)
	assert.Equal(t, "Alice", alice.Target)
	assert.Equal(t, []int{7, 8}, alice.Pool)
	require.NotNil(t, alice.Best)
	assert.Equal(t, 1, alice.Best.Size)
	assert.Equal(t, []string{"Alice", "Carol", "Bob"}, alice.Best.Ballot)
	assert.Equal(t, []string{"Carol"}, alice.Best.Winners)
	assert.True(t, alice.Best.Verified)

	carol := views[1]
	assert.Equal(t, "Carol", carol.Target)
	require.NotNil(t, carol.Best)
	assert.Equal(t, 2, carol.Best.Size)
	assert.Equal(t, []int{0, 1}, carol.Best.Voters)
	assert.Equal(t, 9, carol.Trials)

	out, err = runCommand(t, "results", "-f", "testdata/coalition.toi", "--json", "--cache-dir", cache)
	require.NoError(t, err)
	records := []*resultstore.Record{}
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "coalition", records[0].Search)
}

func TestCoalitionSingleTarget(t *testing.T) {
	out, err := runCommand(t, "coalition", "-f", "testdata/coalition.toi", "-t", "3", "--require-target-win", "--no-cache")
	require.NoError(t, err)

	assert.Equal(t, "Unseating Bob\nCarol: no manipulation found (4 manipulators, 6 trials)\n", out)

	_, err = runCommand(t, "coalition", "-f", "testdata/coalition.toi", "-t", "Zed", "--no-cache")
	assert.ErrorContains(t, err, "unknown candidate 'Zed'")
}

func TestReadArgsFile(t *testing.T) {
	assert.Equal(t, []string{"--file", "testdata/my ballots.toi", "--workers", "2", "--convention=sole-survivor"}, readArgsFile("testdata/stvrc"))
	assert.Empty(t, readArgsFile("testdata/missing"))
}

func TestResolveCandidate(t *testing.T) {
	p := model.NewProfile(3)
	p.Names[1] = "Bob"

	table := []struct {
		value    string
		expected model.Candidate
	}{
		{"a", 0},
		{"bob", 1},
		{"3", 2},
		{" c ", 2},
	}
	for _, tt := range table {
		c, err := resolveCandidate(p, tt.value)
		assert.NoError(t, err, tt.value)
		assert.Equal(t, tt.expected, c, tt.value)
	}

	_, err := resolveCandidate(p, "4")
	assert.Error(t, err)
}
