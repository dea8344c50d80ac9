package cmd

import (
	"context"

	"github.com/andreaskoch/go-fswatch"
	"github.com/spf13/cobra"

	"github.com/nektos/stv/pkg/common"
	"github.com/nektos/stv/pkg/common/utils"
)

func newTallyCommand(ctx context.Context, input *Input) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tally",
		Short: "Run STV on the ballot file and show every round",
		Args:  cobra.NoArgs,
		RunE:  newTallyAction(ctx, input),
	}
	cmd.Flags().BoolVar(&input.chart, "chart", false, "draw the rounds as bar charts")
	cmd.Flags().BoolVarP(&input.watch, "watch", "w", false, "tally again whenever the ballot file changes")
	return cmd
}

func newTallyAction(ctx context.Context, input *Input) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(ctx, cmd, input)
		defer cancel()

		if input.watch {
			return watchAndTally(ctx, cmd, input)
		}
		return tallyExecutor(cmd, input)(ctx)
	}
}

func tallyExecutor(cmd *cobra.Command, input *Input) common.Executor {
	r := newRun(cmd, input)
	return common.NewPipelineExecutor(
		r.loadProfile(),
		r.tallySincere(),
		r.printTally(),
	).Finally(r.writeMetrics())
}

func (r *run) printTally() common.Executor {
	return func(_ context.Context) error {
		out := r.cmd.OutOrStdout()
		switch {
		case r.input.jsonOutput:
			return writeJSON(out, newTallyView(r.profile, r.config, r.sincere))
		case r.input.chart:
			drawRounds(out, r.profile, r.sincere, r.colored(), utils.TerminalWidth(out, 60))
		default:
			printRounds(out, r.profile, r.sincere)
		}
		return nil
	}
}

// watchAndTally tallies once, then again on every change to the ballot file until ctx ends
func watchAndTally(ctx context.Context, cmd *cobra.Command, input *Input) error {
	logger := common.Logger(ctx)
	if err := tallyExecutor(cmd, input)(ctx); err != nil {
		logger.Error(err)
	}

	watcher := fswatch.NewFileWatcher(input.Profile(), 1)
	watcher.Start()
	defer watcher.Stop()
	logger.Infof("Watching %s", input.Profile())

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-watcher.Moved():
			logger.Warnf("%s was moved, stopping", input.Profile())
			return nil
		case <-watcher.Modified():
			logger.Debugf("%s changed", input.Profile())
			if err := tallyExecutor(cmd, input)(ctx); err != nil {
				logger.Error(err)
			}
		}
	}
}
