package manipulation

import (
	"fmt"
	"strings"

	"github.com/nektos/stv/pkg/model"
	"github.com/nektos/stv/pkg/tally"
)

// Constraint is the linear inequality
//
//	sum(x[Add]) - sum(x[Subtract]) + Difference <= 0
//
// over per-candidate variables x[c] >= 0, the votes c gives up to the manipulating
// ballot in one round. Add and Subtract are sorted multisets: a repeated candidate
// carries a coefficient above one. Difference comes from the sincere tally.
type Constraint struct {
	Add        []model.Candidate `json:"add"`
	Subtract   []model.Candidate `json:"subtract"`
	Difference tally.Score       `json:"difference"`
}

// newConstraint cancels candidates present on both sides and sorts what is left
func newConstraint(add, subtract []model.Candidate, difference tally.Score) Constraint {
	counts := map[model.Candidate]int{}
	for _, c := range add {
		counts[c]++
	}
	for _, c := range subtract {
		counts[c]--
	}
	c := Constraint{Difference: difference}
	for _, cand := range sortedKeys(counts) {
		for n := counts[cand]; n > 0; n-- {
			c.Add = append(c.Add, cand)
		}
		for n := counts[cand]; n < 0; n++ {
			c.Subtract = append(c.Subtract, cand)
		}
	}
	return c
}

func sortedKeys(m map[model.Candidate]int) []model.Candidate {
	keys := make([]model.Candidate, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return model.SortCandidates(keys)
}

// Concrete reports whether no variable is left after cancellation
func (c Constraint) Concrete() bool {
	return len(c.Add) == 0 && len(c.Subtract) == 0
}

// Feasible reports whether some non-negative assignment can satisfy the constraint.
// Without a subtracted variable the left side can only grow, so Difference must already be <= 0.
func (c Constraint) Feasible() bool {
	return len(c.Subtract) > 0 || c.Difference <= 0
}

// Trivial reports whether every non-negative assignment satisfies the constraint
func (c Constraint) Trivial() bool {
	return len(c.Add) == 0 && c.Difference <= 0
}

// Holds evaluates the constraint for the assignment x
func (c Constraint) Holds(x func(model.Candidate) tally.Score) bool {
	sum := c.Difference
	for _, a := range c.Add {
		sum += x(a)
	}
	for _, s := range c.Subtract {
		sum -= x(s)
	}
	return sum <= 0
}

// Format renders the constraint with candidate names, e.g. "[b c] - [a] <= 1/2"
func (c Constraint) Format(name func(model.Candidate) string) string {
	return fmt.Sprintf("%s - %s <= %s", formatSide(c.Add, name), formatSide(c.Subtract, name), -c.Difference)
}

func (c Constraint) String() string {
	return c.Format(model.Letter)
}

func formatSide(side []model.Candidate, name func(model.Candidate) string) string {
	parts := make([]string, 0, len(side))
	for _, c := range side {
		parts = append(parts, name(c))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
