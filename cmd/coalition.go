package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nektos/stv/pkg/common"
	"github.com/nektos/stv/pkg/manipulation"
	"github.com/nektos/stv/pkg/model"
	"github.com/nektos/stv/pkg/resultstore"
)

func newCoalitionCommand(ctx context.Context, input *Input) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coalition",
		Short: "Search for the smallest group of voters that can unseat a winner",
		Args:  cobra.NoArgs,
		RunE:  newCoalitionAction(ctx, input),
	}
	cmd.Flags().StringVarP(&input.disfavored, "disfavored", "d", "", "winner to unseat, defaults to the sincere winner")
	cmd.Flags().StringVarP(&input.target, "target", "t", "", "candidate the coalition prefers, defaults to every other candidate")
	cmd.Flags().IntVarP(&input.Bound, "bound", "k", 0, "largest coalition to try, 0 tries every manipulator")
	cmd.Flags().IntVar(&input.BallotLength, "ballot-length", 0, "length of the replacement ballots, 0 ranks every candidate")
	cmd.Flags().BoolVar(&input.requireTargetWin, "require-target-win", false, "only count coalitions that also elect the target")
	cmd.Flags().BoolVarP(&input.interactive, "interactive", "i", false, "choose the disfavored winner and target interactively")
	return cmd
}

func newCoalitionAction(ctx context.Context, input *Input) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(ctx, cmd, input)
		defer cancel()

		r := newRun(cmd, input)
		c := &coalitionRun{run: r}
		return common.NewPipelineExecutor(
			r.loadProfile(),
			r.tallySincere(),
			c.chooseCandidates(),
			r.openStore().IfBool(!input.noCache),
			c.search(),
			c.verify(),
			c.warnEmptyPools(),
			c.print(),
		).Finally(r.writeMetrics())(ctx)
	}
}

type coalitionRun struct {
	*run
	disfavored model.Candidate
	targets    []model.Candidate
	outcomes   []*manipulation.Outcome
	verified   [][]bool
}

func (c *coalitionRun) coalitionConfig() manipulation.CoalitionConfig {
	return manipulation.CoalitionConfig{
		Engine:           c.config,
		Bound:            c.input.Bound,
		BallotLength:     c.input.BallotLength,
		RequireTargetWin: c.input.requireTargetWin,
		Workers:          c.input.Parallel(),
		Observer:         c.recorder,
		ProgressEvery:    c.input.Progress,
	}
}

func (c *coalitionRun) chooseCandidates() common.Executor {
	return func(ctx context.Context) error {
		p := c.profile
		winners := candidateNames(p, c.sincere.Winners)

		disfavored := c.input.disfavored
		if disfavored == "" {
			disfavored = winners[0]
			if len(winners) > 1 && c.input.interactive {
				disfavored = selectCandidate("Choose the winner to unseat:", winners, disfavored)
			}
		}
		d, err := resolveCandidate(p, disfavored)
		if err != nil {
			return err
		}
		if !c.sincere.Wins(d) {
			common.Logger(ctx).Warnf("%s does not win sincerely, every coalition trivially succeeds", p.Name(d))
		}
		c.disfavored = d

		target := c.input.target
		if target == "" && c.input.interactive {
			options := []string{allTargets}
			for _, t := range p.All() {
				if t != d {
					options = append(options, p.Name(t))
				}
			}
			target = selectCandidate("Choose the candidate the coalition prefers:", options, allTargets)
		}
		if target == "" || target == allTargets {
			c.targets = nil
			return nil
		}
		t, err := resolveCandidate(p, target)
		if err != nil {
			return err
		}
		c.targets = []model.Candidate{t}
		return nil
	}
}

const allTargets = "all"

func (c *coalitionRun) key() string {
	target := allTargets
	if len(c.targets) == 1 {
		target = fmt.Sprint(c.targets[0])
	}
	return resultstore.Key(c.profile.Digest(), "coalition", c.config.Convention, c.disfavored, target,
		c.input.Bound, c.input.BallotLength, c.input.requireTargetWin)
}

func (c *coalitionRun) search() common.Executor {
	return func(ctx context.Context) error {
		logger := common.Logger(ctx)
		if c.store != nil {
			var cached []*manipulation.Outcome
			found, err := c.store.Get(c.key(), &cached)
			if err != nil {
				logger.Warnf("Ignoring result store: %v", err)
			} else if found {
				logger.Infof("Using %d stored outcomes", len(cached))
				c.outcomes = cached
				return nil
			}
		}

		defer c.recorder.TimeSince("coalition", time.Now())
		co := manipulation.NewCoalition(c.coalitionConfig())
		if len(c.targets) == 1 {
			outcome, err := co.Search(ctx, c.profile, c.disfavored, c.targets[0])
			if err != nil {
				return err
			}
			c.outcomes = []*manipulation.Outcome{outcome}
		} else {
			outcomes, err := co.SearchAll(ctx, c.profile, c.disfavored)
			if err != nil {
				return err
			}
			c.outcomes = outcomes
		}

		if c.store != nil {
			if _, err := c.store.Put(c.key(), c.profile.Digest(), "coalition", c.outcomes); err != nil {
				logger.Warnf("Unable to store outcomes: %v", err)
			}
		}
		return nil
	}
}

// verify replays every witness on a fresh copy of the profile
func (c *coalitionRun) verify() common.Executor {
	return func(ctx context.Context) error {
		co := manipulation.NewCoalition(manipulation.CoalitionConfig{Engine: c.config, RequireTargetWin: c.input.requireTargetWin})
		c.verified = make([][]bool, len(c.outcomes))
		for i, o := range c.outcomes {
			c.verified[i] = make([]bool, len(o.Witnesses))
			for j, w := range o.Witnesses {
				ok, err := co.Verify(ctx, c.profile, w, c.disfavored)
				if err != nil {
					return err
				}
				if !ok {
					common.Logger(ctx).Errorf("Witness of size %d for %s does not replay", w.Size, c.profile.Name(o.Target))
				}
				c.verified[i][j] = ok
			}
		}
		return nil
	}
}

// warnEmptyPools returns a warning naming the targets no voter prefers to the disfavored winner
func (c *coalitionRun) warnEmptyPools() common.Executor {
	return func(_ context.Context) error {
		empty := make([]model.Candidate, 0)
		for _, o := range c.outcomes {
			if len(o.Pool) == 0 {
				empty = append(empty, o.Target)
			}
		}
		if len(empty) == 0 {
			return nil
		}
		return common.Warningf("No voter prefers %v to %s", candidateNames(c.profile, empty), c.profile.Name(c.disfavored))
	}
}

func (c *coalitionRun) print() common.Executor {
	return func(_ context.Context) error {
		out := c.cmd.OutOrStdout()
		views := make([]outcomeView, 0, len(c.outcomes))
		for i, o := range c.outcomes {
			views = append(views, newOutcomeView(c.profile, o, c.verified[i]))
		}
		if c.input.jsonOutput {
			return writeJSON(out, views)
		}
		fmt.Fprintf(out, "Unseating %s\n", c.profile.Name(c.disfavored))
		for _, v := range views {
			printOutcome(out, v)
		}
		return nil
	}
}
