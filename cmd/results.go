package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nektos/stv/pkg/common"
	"github.com/nektos/stv/pkg/resultstore"
)

func newResultsCommand(ctx context.Context, input *Input) *cobra.Command {
	var gc time.Duration
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List the stored search results of the ballot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(ctx, cmd, input)
			defer cancel()

			r := newRun(cmd, input)
			return common.NewPipelineExecutor(
				r.loadProfile(),
				r.openStore(),
				r.collectGarbage(gc).IfBool(gc > 0),
				r.listResults(),
			)(ctx)
		},
	}
	cmd.Flags().DurationVar(&gc, "gc", 0, "first delete results not used within this long")
	return cmd
}

func (r *run) collectGarbage(keep time.Duration) common.Executor {
	return func(ctx context.Context) error {
		deleted, err := r.store.GC(keep)
		if err != nil {
			return err
		}
		common.Logger(ctx).Infof("Deleted %d results", deleted)
		return nil
	}
}

func (r *run) listResults() common.Executor {
	return func(_ context.Context) error {
		records, err := r.store.List(r.profile.Digest())
		if err != nil {
			return err
		}
		out := r.cmd.OutOrStdout()
		if r.input.jsonOutput {
			if records == nil {
				records = []*resultstore.Record{}
			}
			return writeJSON(out, records)
		}
		rows := [][]string{{"ID", "Search", "Created", "Used"}}
		for _, rec := range records {
			rows = append(rows, []string{
				rec.ID,
				rec.Search,
				time.Unix(rec.CreatedAt, 0).Format(time.RFC3339),
				time.Unix(rec.UsedAt, 0).Format(time.RFC3339),
			})
		}
		printTable(out, rows)
		fmt.Fprintf(out, "\n%d results in %s\n", len(records), r.store.Dir())
		return nil
	}
}
