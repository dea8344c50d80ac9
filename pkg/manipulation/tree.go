package manipulation

import (
	"context"

	"github.com/nektos/stv/pkg/common"
	"github.com/nektos/stv/pkg/model"
	"github.com/nektos/stv/pkg/tally"
)

// TreeConfig contains the config for a constraint tree search
type TreeConfig struct {
	AllowWinnerElimination bool                 // also branch on eliminating an original winner
	Keep                   func(*Scenario) bool // which leaves to retain, nil keeps all
	Observer               Observer
	ProgressEvery          int // log a heartbeat every n visited nodes
}

// Scenario is one leaf of the tree: an elimination order the manipulator can aim for,
// the ballot that does it and the constraints the round totals must satisfy on the way
type Scenario struct {
	Winner           model.Candidate   `json:"winner"`
	Remaining        []model.Candidate `json:"remaining"`
	Constraints      []Constraint      `json:"constraints"`
	EliminationOrder []model.Candidate `json:"eliminationOrder"`
	Ballot           []model.Candidate `json:"ballot"`
}

// TreeResult holds the kept leaves and the number of leaves reached
type TreeResult struct {
	Count     int        `json:"count"`
	Pruned    int        `json:"pruned"`
	Scenarios []Scenario `json:"scenarios"`
}

// Tree explores every elimination order reachable by a single manipulator
type Tree struct {
	config TreeConfig
}

// NewTree creates a constraint tree search
func NewTree(config TreeConfig) *Tree {
	return &Tree{config: config}
}

// frame is the state of one branch. Branches never share a frame's slices or set.
type frame struct {
	eliminated  model.EliminationSet
	order       []model.Candidate
	ballot      []model.Candidate
	constraints []Constraint
}

type treeSearch struct {
	config   TreeConfig
	profile  *model.Profile
	winners  model.EliminationSet
	observer Observer
	progress *common.Progress
	result   *TreeResult
}

// Search explores the tree for the sincere profile p, steering away from originalWinners.
// The scenario count is folded from the recursion, so Count is exactly the number of
// leaves reached whatever Keep retains.
func (t *Tree) Search(ctx context.Context, p *model.Profile, originalWinners []model.Candidate) (*TreeResult, error) {
	if p.Voters() == 0 {
		return nil, model.ErrEmptyProfile
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for _, w := range originalWinners {
		if w < 0 || int(w) >= p.Candidates {
			return nil, &model.ConfigurationError{Ballot: -1, Candidate: w, Reason: "original winner outside of the candidate universe"}
		}
	}

	s := &treeSearch{
		config:   t.config,
		profile:  p,
		winners:  model.NewEliminationSet(originalWinners...),
		observer: observerOrNop(t.config.Observer),
		progress: common.NewProgress("tree nodes", t.config.ProgressEvery),
		result:   &TreeResult{Scenarios: []Scenario{}},
	}
	count, err := s.explore(ctx, frame{eliminated: model.NewEliminationSet()})
	if err != nil {
		return nil, err
	}
	s.result.Count = count
	common.Logger(ctx).Debugf("Tree search reached %d scenarios, pruned %d branches", count, s.result.Pruned)
	return s.result, nil
}

func (s *treeSearch) explore(ctx context.Context, fr frame) (int, error) {
	if err := s.progress.Step(ctx); err != nil {
		return 0, err
	}

	n := s.profile.Candidates
	scores, err := tally.CountRound(s.profile, fr.eliminated)
	if err != nil {
		return 0, err
	}
	losers := scores.LoserGroup(fr.eliminated)
	active := fr.eliminated.Active(n)
	targets := s.eliminationChoices(active)

	if len(losers)+fr.eliminated.Len() == n || len(targets) == 0 {
		s.leaf(fr, active)
		return 1, nil
	}

	favourites, committed := s.manipulatorChoices(fr, active)
	count := 0
	for _, favourite := range favourites {
		ballot := fr.ballot
		if !committed {
			ballot = appendCandidate(fr.ballot, favourite)
		}
		for _, target := range targets {
			constraints, ok := deriveConstraints(scores, active, favourite, target)
			if !ok {
				s.result.Pruned++
				s.observer.BranchPruned(len(fr.order))
				continue
			}
			leaves, err := s.explore(ctx, frame{
				eliminated:  fr.eliminated.With(target),
				order:       appendCandidate(fr.order, target),
				ballot:      ballot,
				constraints: appendConstraints(fr.constraints, constraints),
			})
			if err != nil {
				return 0, err
			}
			count += leaves
		}
	}
	return count, nil
}

func (s *treeSearch) leaf(fr frame, active []model.Candidate) {
	scenario := Scenario{
		Winner:           active[0],
		Remaining:        active,
		Constraints:      fr.constraints,
		EliminationOrder: fr.order,
		Ballot:           fr.ballot,
	}
	if scenario.Constraints == nil {
		scenario.Constraints = []Constraint{}
	}
	if scenario.EliminationOrder == nil {
		scenario.EliminationOrder = []model.Candidate{}
	}
	if scenario.Ballot == nil {
		scenario.Ballot = []model.Candidate{}
	}
	s.observer.ScenarioFound(&scenario)
	if s.config.Keep == nil || s.config.Keep(&scenario) {
		s.result.Scenarios = append(s.result.Scenarios, scenario)
	}
}

func (s *treeSearch) eliminationChoices(active []model.Candidate) []model.Candidate {
	if s.config.AllowWinnerElimination {
		return active
	}
	return s.withoutWinners(active)
}

func (s *treeSearch) withoutWinners(active []model.Candidate) []model.Candidate {
	rtn := make([]model.Candidate, 0, len(active))
	for _, c := range active {
		if !s.winners.Has(c) {
			rtn = append(rtn, c)
		}
	}
	return rtn
}

// manipulatorChoices returns the candidate the manipulator's ballot currently supports.
// Once the ballot's choice is eliminated the manipulator may rank any active
// non-winner next, which opens one branch per candidate. A manipulator left with
// nothing to rank supports nobody (-1).
func (s *treeSearch) manipulatorChoices(fr frame, active []model.Candidate) ([]model.Candidate, bool) {
	for _, c := range fr.ballot {
		if !fr.eliminated.Has(c) {
			return []model.Candidate{c}, true
		}
	}
	choices := s.withoutWinners(active)
	if len(choices) == 0 {
		return []model.Candidate{none}, true
	}
	return choices, false
}

const none model.Candidate = -1

// deriveConstraints encodes "target has the lowest manipulated total this round".
// For each other active candidate o, with d = v[target] - v[o]:
//
//	favourite not involved   x[o] - x[target] + d <= 0
//	favourite is target      the ballot's weight comes from every other active candidate,
//	                         x[o] + sum(x[others]) + d <= 0, impossible when d > 0
//	favourite is o           -x[target] - sum(x[others]) + d <= 0, free when d <= 0
//
// ok is false when some relationship cannot hold whatever the variables.
func deriveConstraints(scores tally.Scores, active []model.Candidate, favourite, target model.Candidate) ([]Constraint, bool) {
	others := make([]model.Candidate, 0, len(active))
	for _, c := range active {
		if c != favourite {
			others = append(others, c)
		}
	}

	rtn := make([]Constraint, 0, len(active))
	for _, o := range active {
		if o == target {
			continue
		}
		d := scores.Of(target) - scores.Of(o)

		var c Constraint
		switch favourite {
		case target:
			c = newConstraint(append([]model.Candidate{o}, others...), nil, d)
		case o:
			c = newConstraint(nil, append([]model.Candidate{target}, others...), d)
		default:
			c = newConstraint([]model.Candidate{o}, []model.Candidate{target}, d)
		}

		if !c.Feasible() {
			return nil, false
		}
		if c.Trivial() {
			continue
		}
		rtn = append(rtn, c)
	}
	return rtn, true
}

func appendCandidate(list []model.Candidate, c model.Candidate) []model.Candidate {
	rtn := make([]model.Candidate, len(list), len(list)+1)
	copy(rtn, list)
	return append(rtn, c)
}

func appendConstraints(list []Constraint, more []Constraint) []Constraint {
	rtn := make([]Constraint, len(list), len(list)+len(more))
	copy(rtn, list)
	return append(rtn, more...)
}
