package manipulation

import (
	"github.com/nektos/stv/pkg/model"
)

// Observer receives search events as they happen. It is a reporting side channel:
// nothing an observer does can steer the search.
type Observer interface {
	ScenarioFound(s *Scenario)
	BranchPruned(depth int)
	TrialRun(target model.Candidate, size int, deposed bool)
}

type nopObserver struct{}

func (nopObserver) ScenarioFound(*Scenario)              {}
func (nopObserver) BranchPruned(int)                     {}
func (nopObserver) TrialRun(model.Candidate, int, bool) {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
