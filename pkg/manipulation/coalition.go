package manipulation

import (
	"context"

	"github.com/nektos/stv/pkg/common"
	"github.com/nektos/stv/pkg/model"
	"github.com/nektos/stv/pkg/stv"
)

// CoalitionConfig contains the config for a coalition search
type CoalitionConfig struct {
	Engine           stv.Config // how each trial is tallied
	Bound            int        // largest coalition tried, 0 uses the whole manipulator pool
	BallotLength     int        // length of replacement ballots, 0 ranks every candidate
	RequireTargetWin bool       // a trial only counts when the target is among the winners
	Workers          int        // targets searched concurrently by SearchAll
	Observer         Observer
	ProgressEvery    int // log a heartbeat every n trials
}

// Witness is a coalition that deposes the disfavored winner: every voter in Voters
// casts Ballot instead of their sincere ballot
type Witness struct {
	Target  model.Candidate   `json:"target"`
	Ballot  []model.Candidate `json:"ballot"`
	Size    int               `json:"size"`
	Voters  []int             `json:"voters"`
	Winners []model.Candidate `json:"winners"`
}

// Outcome is what a search found for one target. Best is nil when no manipulation was found.
type Outcome struct {
	Disfavored model.Candidate `json:"disfavored"`
	Target     model.Candidate `json:"target"`
	Pool       []int           `json:"pool"`
	Witnesses  []Witness       `json:"witnesses"`
	Best       *Witness        `json:"best,omitempty"`
	Trials     int             `json:"trials"`
}

// Found reports whether any coalition deposed the disfavored winner
func (o *Outcome) Found() bool {
	return o.Best != nil
}

// Coalition brute-forces replacement ballots and coalition sizes
type Coalition struct {
	config CoalitionConfig
	engine *stv.Engine
}

// NewCoalition creates a coalition search
func NewCoalition(config CoalitionConfig) *Coalition {
	return &Coalition{
		config: config,
		engine: stv.New(config.Engine),
	}
}

// Search tries sizes from the bound downwards. For every size it walks the replacement
// ballots in lexicographic order, handing each one to the first size voters of the
// manipulator pool on a fresh copy of p. The first ballot that deposes disfavored is
// recorded and the bound drops below that size; a size where no ballot works ends the search.
func (co *Coalition) Search(ctx context.Context, p *model.Profile, disfavored, target model.Candidate) (*Outcome, error) {
	if err := co.validate(p, disfavored, target); err != nil {
		return nil, err
	}
	if disfavored == target {
		return nil, &model.ConfigurationError{Ballot: -1, Candidate: target, Reason: "target and disfavored winner must differ"}
	}

	logger := common.Logger(ctx)
	observer := observerOrNop(co.config.Observer)
	progress := common.NewProgress("coalition trials", co.config.ProgressEvery)

	pool := Manipulators(p, disfavored, target)
	outcome := &Outcome{
		Disfavored: disfavored,
		Target:     target,
		Pool:       pool,
		Witnesses:  []Witness{},
	}

	bound := len(pool)
	if co.config.Bound > 0 && co.config.Bound < bound {
		bound = co.config.Bound
	}
	length := co.config.BallotLength
	if length <= 0 || length > p.Candidates {
		length = p.Candidates
	}
	logger.Debugf("Searching coalitions of up to %d of %d manipulators, ballots of length %d", bound, len(pool), length)

	for size := bound; size >= 1; size-- {
		voters := pool[:size]
		var witness *Witness
		var trialErr error

		Permutations(p.Candidates, length, func(perm []model.Candidate) bool {
			if trialErr = progress.Step(ctx); trialErr != nil {
				return false
			}
			ballot := append([]model.Candidate{}, perm...)
			trial := p.Replace(voters, model.RankedBallot(ballot...))

			result, err := co.engine.Run(ctx, trial)
			if err != nil {
				trialErr = err
				return false
			}
			outcome.Trials++

			deposed := co.deposes(result, disfavored, target)
			observer.TrialRun(target, size, deposed)
			if !deposed {
				return true
			}
			witness = &Witness{
				Target:  target,
				Ballot:  ballot,
				Size:    size,
				Voters:  append([]int{}, voters...),
				Winners: result.Winners,
			}
			return false
		})
		if trialErr != nil {
			return nil, trialErr
		}
		if witness == nil {
			logger.Debugf("No ballot deposes %d with %d manipulators", disfavored, size)
			break
		}

		logger.Infof("Coalition of %d casting %v deposes %d, winners %v", size, witness.Ballot, disfavored, witness.Winners)
		outcome.Witnesses = append(outcome.Witnesses, *witness)
	}
	if n := len(outcome.Witnesses); n > 0 {
		outcome.Best = &outcome.Witnesses[n-1]
	}
	return outcome, nil
}

// SearchAll runs Search for every target other than disfavored, Workers at a time.
// Outcomes are returned in target order.
func (co *Coalition) SearchAll(ctx context.Context, p *model.Profile, disfavored model.Candidate) ([]*Outcome, error) {
	if err := co.validate(p, disfavored); err != nil {
		return nil, err
	}

	targets := make([]model.Candidate, 0, p.Candidates)
	for _, c := range p.All() {
		if c != disfavored {
			targets = append(targets, c)
		}
	}

	outcomes := make([]*Outcome, len(targets))
	executors := make([]common.Executor, 0, len(targets))
	for i, target := range targets {
		i, target := i, target
		executors = append(executors, common.NewFieldExecutor("target", p.Name(target), func(ctx context.Context) error {
			outcome, err := co.Search(ctx, p, disfavored, target)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		}))
	}

	if err := common.NewParallelExecutor(co.config.Workers, executors...)(ctx); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Verify replays a witness on its own copy of p and reports whether disfavored loses
func (co *Coalition) Verify(ctx context.Context, p *model.Profile, w Witness, disfavored model.Candidate) (bool, error) {
	result, err := co.engine.Run(ctx, p.Replace(w.Voters, model.RankedBallot(w.Ballot...)))
	if err != nil {
		return false, err
	}
	return co.deposes(result, disfavored, w.Target), nil
}

func (co *Coalition) deposes(result *stv.Result, disfavored, target model.Candidate) bool {
	if result.Wins(disfavored) {
		return false
	}
	return !co.config.RequireTargetWin || result.Wins(target)
}

func (co *Coalition) validate(p *model.Profile, candidates ...model.Candidate) error {
	if p.Voters() == 0 {
		return model.ErrEmptyProfile
	}
	if err := p.Validate(); err != nil {
		return err
	}
	for _, c := range candidates {
		if c < 0 || int(c) >= p.Candidates {
			return &model.ConfigurationError{Ballot: -1, Candidate: c, Reason: "outside of the candidate universe"}
		}
	}
	return nil
}
