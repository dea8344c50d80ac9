package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/nektos/stv/pkg/common"
	"github.com/nektos/stv/pkg/manipulation"
	"github.com/nektos/stv/pkg/resultstore"
)

func newTreeCommand(ctx context.Context, input *Input) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Explore the elimination orders one manipulating voter could steer towards",
		Args:  cobra.NoArgs,
		RunE:  newTreeAction(ctx, input),
	}
	cmd.Flags().StringVarP(&input.treeTarget, "target", "t", "", "only print scenarios won by this candidate (name or number)")
	cmd.Flags().BoolVar(&input.allowWinnerElimination, "allow-winner-elimination", false, "also branch on eliminating an original winner")
	return cmd
}

func newTreeAction(ctx context.Context, input *Input) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(ctx, cmd, input)
		defer cancel()

		r := newRun(cmd, input)
		t := &treeRun{run: r}
		return common.NewPipelineExecutor(
			r.loadProfile(),
			r.tallySincere(),
			r.openStore().IfBool(!input.noCache),
			t.search(),
			t.print(),
		).Finally(r.writeMetrics())(ctx)
	}
}

type treeRun struct {
	*run
	result *manipulation.TreeResult
}

func (t *treeRun) key() string {
	return resultstore.Key(t.profile.Digest(), "tree", t.config.Convention, t.input.allowWinnerElimination, t.input.treeTarget)
}

func (t *treeRun) search() common.Executor {
	return func(ctx context.Context) error {
		logger := common.Logger(ctx)
		if t.store != nil {
			cached := &manipulation.TreeResult{}
			found, err := t.store.Get(t.key(), cached)
			if err != nil {
				logger.Warnf("Ignoring result store: %v", err)
			} else if found {
				logger.Infof("Using stored tree of %d scenarios", cached.Count)
				t.result = cached
				return nil
			}
		}

		config := manipulation.TreeConfig{
			AllowWinnerElimination: t.input.allowWinnerElimination,
			Observer:               t.recorder,
			ProgressEvery:          t.input.Progress,
		}
		if t.input.treeTarget != "" {
			target, err := resolveCandidate(t.profile, t.input.treeTarget)
			if err != nil {
				return err
			}
			config.Keep = func(s *manipulation.Scenario) bool {
				return s.Winner == target
			}
		}

		defer t.recorder.TimeSince("tree", time.Now())
		result, err := manipulation.NewTree(config).Search(ctx, t.profile, t.sincere.Winners)
		if err != nil {
			return err
		}
		t.result = result

		if t.store != nil {
			if _, err := t.store.Put(t.key(), t.profile.Digest(), "tree", result); err != nil {
				logger.Warnf("Unable to store tree: %v", err)
			}
		}
		return nil
	}
}

func (t *treeRun) print() common.Executor {
	return func(_ context.Context) error {
		out := t.cmd.OutOrStdout()
		if t.input.jsonOutput {
			return writeJSON(out, newTreeView(t.profile, t.sincere.Winners, t.result))
		}
		printTree(out, t.profile, t.sincere.Winners, t.result)
		return nil
	}
}
