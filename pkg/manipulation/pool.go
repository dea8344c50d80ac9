package manipulation

import (
	"github.com/nektos/stv/pkg/model"
)

// Manipulators returns the voters with a reason to move away from disfavored: those
// ranking target strictly above it, and those ranking target while leaving it out.
// Indices are in profile order.
func Manipulators(p *model.Profile, disfavored, target model.Candidate) []int {
	rtn := make([]int, 0)
	for i, b := range p.Ballots {
		if b.Prefers(target, disfavored) {
			rtn = append(rtn, i)
		}
	}
	return rtn
}

// Permutations calls yield with every ordered selection of k distinct candidates out of
// n, in lexicographic order, until yield returns false. The slice passed to yield is
// reused between calls.
func Permutations(n, k int, yield func([]model.Candidate) bool) {
	if k <= 0 || k > n {
		return
	}
	perm := make([]model.Candidate, k)
	used := make([]bool, n)
	var walk func(depth int) bool
	walk = func(depth int) bool {
		if depth == k {
			return yield(perm)
		}
		for c := 0; c < n; c++ {
			if used[c] {
				continue
			}
			used[c] = true
			perm[depth] = model.Candidate(c)
			if !walk(depth + 1) {
				return false
			}
			used[c] = false
		}
		return true
	}
	walk(0)
}
