package stv

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/nektos/stv/pkg/common"
	"github.com/nektos/stv/pkg/model"
	"github.com/nektos/stv/pkg/tally"
)

// Convention decides who wins when the last round is a tie among every remaining candidate
type Convention int

const (
	// CoWinners declares every remaining candidate a winner
	CoWinners Convention = iota
	// SoleSurvivor declares a single winner, the lowest remaining candidate id
	SoleSurvivor
)

func (c Convention) String() string {
	switch c {
	case SoleSurvivor:
		return "sole-survivor"
	default:
		return "co-winners"
	}
}

// ParseConvention accepts the names printed by Convention.String
func ParseConvention(name string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "co-winners", "cowinners":
		return CoWinners, nil
	case "sole-survivor", "sole", "single":
		return SoleSurvivor, nil
	}
	return CoWinners, errors.Errorf("unknown termination convention '%s'", name)
}

// Config contains the config for a new engine
type Config struct {
	Convention Convention        // how a final all-way tie is resolved
	Eliminated []model.Candidate // candidates removed before the first round
}

// Round is the record of one tally and the group it removed
type Round struct {
	Number int
	Scores tally.Scores
	Losers []model.Candidate
}

// Result is the outcome of one STV run
type Result struct {
	Winners    []model.Candidate
	Eliminated []model.Candidate // in elimination order, pre-excluded candidates first
	Rounds     []Round
}

// Wins reports whether c is among the winners
func (r *Result) Wins(c model.Candidate) bool {
	for _, w := range r.Winners {
		if w == c {
			return true
		}
	}
	return false
}

// Engine runs Single Transferable Vote with simultaneous elimination of co-minimal candidates
type Engine struct {
	config Config
}

// New creates an engine
func New(config Config) *Engine {
	return &Engine{config: config}
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// Run tallies p round by round. Each round removes the whole loser group; the run ends
// when the loser group covers every candidate still standing.
func (e *Engine) Run(ctx context.Context, p *model.Profile) (*Result, error) {
	if p.Voters() == 0 {
		return nil, model.ErrEmptyProfile
	}

	eliminated := model.NewEliminationSet()
	result := &Result{}
	for _, c := range e.config.Eliminated {
		if c < 0 || int(c) >= p.Candidates {
			return nil, &model.ConfigurationError{Ballot: -1, Candidate: c, Reason: "cannot pre-eliminate an unknown candidate"}
		}
		if !eliminated.Has(c) {
			eliminated.Add(c)
			result.Eliminated = append(result.Eliminated, c)
		}
	}

	logger := common.Logger(ctx)
	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if round > p.Candidates+1 {
			panic(fmt.Sprintf("stv: no termination after %d rounds over %d candidates", round-1, p.Candidates))
		}

		scores, err := tally.CountRound(p, eliminated)
		if err != nil {
			return nil, err
		}
		losers := scores.LoserGroup(eliminated)
		result.Rounds = append(result.Rounds, Round{Number: round, Scores: scores, Losers: losers})
		logger.Debugf("Round %d: scores %v, losers %v", round, scores, losers)

		if len(losers)+eliminated.Len() == p.Candidates {
			result.Winners = e.winners(eliminated.Active(p.Candidates))
			assertDisjoint(result.Winners, eliminated)
			return result, nil
		}

		eliminated.Add(losers...)
		result.Eliminated = append(result.Eliminated, losers...)
	}
}

func (e *Engine) winners(remaining []model.Candidate) []model.Candidate {
	if e.config.Convention == SoleSurvivor && len(remaining) > 1 {
		return remaining[:1]
	}
	return remaining
}

func assertDisjoint(winners []model.Candidate, eliminated model.EliminationSet) {
	for _, w := range winners {
		if eliminated.Has(w) {
			panic(fmt.Sprintf("stv: winner %d is also eliminated", w))
		}
	}
}
