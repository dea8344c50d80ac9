package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Profile is the ordered list of ballots cast over a fixed candidate universe.
// Ballots is expanded: a line with voter count N contributes N entries.
// Ballot values are never modified in place, so clones may share them.
type Profile struct {
	Candidates int
	Names      map[Candidate]string
	Ballots    []Ballot
}

// NewProfile returns an empty profile over n candidates
func NewProfile(n int) *Profile {
	return &Profile{
		Candidates: n,
		Names:      map[Candidate]string{},
	}
}

// AddBallot appends weight copies of b
func (p *Profile) AddBallot(weight int, b Ballot) {
	for i := 0; i < weight; i++ {
		p.Ballots = append(p.Ballots, b)
	}
}

// Voters returns the number of ballots in the profile
func (p *Profile) Voters() int {
	return len(p.Ballots)
}

// Name returns the display name of c, falling back to a letter
func (p *Profile) Name(c Candidate) string {
	if name, ok := p.Names[c]; ok && name != "" {
		return name
	}
	return Letter(c)
}

// Letter renders a candidate as a, b, ... z, then c26, c27, ...
func Letter(c Candidate) string {
	if c >= 0 && c < 26 {
		return string(rune('a' + int(c)))
	}
	return fmt.Sprintf("c%d", c)
}

// All lists every candidate of the universe in id order
func (p *Profile) All() []Candidate {
	rtn := make([]Candidate, p.Candidates)
	for i := range rtn {
		rtn[i] = Candidate(i)
	}
	return rtn
}

// Clone returns a profile owning its own ballot slice.
// Replacing an entry of the clone never affects p.
func (p *Profile) Clone() *Profile {
	names := make(map[Candidate]string, len(p.Names))
	for k, v := range p.Names {
		names[k] = v
	}
	ballots := make([]Ballot, len(p.Ballots))
	copy(ballots, p.Ballots)
	return &Profile{
		Candidates: p.Candidates,
		Names:      names,
		Ballots:    ballots,
	}
}

// Replace returns a clone of p where every listed voter casts b instead
func (p *Profile) Replace(voters []int, b Ballot) *Profile {
	rtn := p.Clone()
	for _, v := range voters {
		rtn.Ballots[v] = b
	}
	return rtn
}

// Validate checks every ballot against the candidate universe
func (p *Profile) Validate() error {
	if p.Candidates <= 0 {
		return &ConfigurationError{Ballot: -1, Candidate: Candidate(p.Candidates), Reason: "candidate universe is empty"}
	}
	for i, b := range p.Ballots {
		if err := p.ValidateBallot(i, b); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBallot checks a single ballot, idx is only used in the error
func (p *Profile) ValidateBallot(idx int, b Ballot) error {
	for _, item := range b {
		for _, c := range item.Candidates() {
			if c < 0 || int(c) >= p.Candidates {
				return &ConfigurationError{Ballot: idx, Candidate: c, Reason: fmt.Sprintf("outside of [0, %d)", p.Candidates)}
			}
		}
		if x, y := item.Pair(); item.Kind() == ItemTie && x == y {
			return &ConfigurationError{Ballot: idx, Candidate: x, Reason: "tie group must name two distinct candidates"}
		}
	}
	return nil
}

// Digest identifies the profile contents independently of display names
func (p *Profile) Digest() string {
	h := sha256.New()
	fmt.Fprintf(h, "%d\n", p.Candidates)
	for _, b := range p.Ballots {
		fmt.Fprintln(h, b.String())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SortCandidates sorts a candidate slice in place and returns it
func SortCandidates(cs []Candidate) []Candidate {
	sort.Slice(cs, func(i, j int) bool { return cs[i] < cs[j] })
	return cs
}

// Sorted returns the set members in id order
func (s EliminationSet) Sorted() []Candidate {
	rtn := make([]Candidate, 0, len(s))
	for c := range s {
		rtn = append(rtn, c)
	}
	return SortCandidates(rtn)
}
