package tally

import (
	"fmt"

	"github.com/nektos/stv/pkg/model"
)

// Score is an exact vote total counted in half votes, so a split tie stays exact
type Score int64

const (
	// Half is the share each member of an unresolved tie receives
	Half Score = 1
	// Vote is one full ballot
	Vote Score = 2
)

// Votes converts a whole number of ballots into a Score
func Votes(n int) Score {
	return Score(n) * Vote
}

// Float64 returns the score in votes
func (s Score) Float64() float64 {
	return float64(s) / float64(Vote)
}

func (s Score) String() string {
	if s%Vote == 0 {
		return fmt.Sprintf("%d", s/Vote)
	}
	return fmt.Sprintf("%d/2", s)
}

// Scores holds one Score per candidate, indexed by candidate id
type Scores []Score

// Of returns the score of c
func (s Scores) Of(c model.Candidate) Score {
	return s[c]
}

// Total sums every candidate's score
func (s Scores) Total() Score {
	var total Score
	for _, v := range s {
		total += v
	}
	return total
}

// Min returns the lowest score among the candidates not in eliminated
func (s Scores) Min(eliminated model.EliminationSet) (Score, bool) {
	var low Score
	found := false
	for i, v := range s {
		if eliminated.Has(model.Candidate(i)) {
			continue
		}
		if !found || v < low {
			low = v
			found = true
		}
	}
	return low, found
}

// LoserGroup returns every candidate not in eliminated sharing the minimum score, in id order.
// Co-minimal candidates are never tie-broken.
func (s Scores) LoserGroup(eliminated model.EliminationSet) []model.Candidate {
	low, ok := s.Min(eliminated)
	if !ok {
		return nil
	}
	losers := make([]model.Candidate, 0)
	for i, v := range s {
		c := model.Candidate(i)
		if !eliminated.Has(c) && v == low {
			losers = append(losers, c)
		}
	}
	return losers
}
