package tally

import (
	"github.com/nektos/stv/pkg/model"
)

// CountRound tallies one STV round. Every ballot goes to its first item that is not
// fully eliminated:
//
//	Single(c)              c gets a vote
//	Tie(a, b), b removed   a gets a vote
//	Tie(a, b), none gone   a and b get half a vote each
//
// and contributes nothing further that round. Scores are recomputed from scratch
// every round since a tie can re-route weight once one side is removed.
func CountRound(p *model.Profile, eliminated model.EliminationSet) (Scores, error) {
	scores := make(Scores, p.Candidates)
	for i, b := range p.Ballots {
		if err := p.ValidateBallot(i, b); err != nil {
			return nil, err
		}
		countBallot(scores, b, eliminated)
	}
	return scores, nil
}

func countBallot(scores Scores, b model.Ballot, eliminated model.EliminationSet) {
	for _, item := range b {
		x, y := item.Pair()
		switch item.Kind() {
		case model.ItemSingle:
			if eliminated.Has(x) {
				continue
			}
			scores[x] += Vote
			return
		case model.ItemTie:
			xOut, yOut := eliminated.Has(x), eliminated.Has(y)
			switch {
			case xOut && yOut:
				continue
			case xOut:
				scores[y] += Vote
			case yOut:
				scores[x] += Vote
			default:
				scores[x] += Half
				scores[y] += Half
			}
			return
		}
	}
}

// Resolvable counts the ballots that still express a preference among the active candidates.
// It always equals the round total in votes.
func Resolvable(p *model.Profile, eliminated model.EliminationSet) int {
	n := 0
	for _, b := range p.Ballots {
		for _, c := range b.Candidates() {
			if !eliminated.Has(c) {
				n++
				break
			}
		}
	}
	return n
}
