package model

import (
	"fmt"
	"strings"
)

// Candidate is a 0-based index into the candidate universe of a profile
type Candidate int

// ItemKind tells a single preference apart from a declared tie
type ItemKind int

const (
	// ItemSingle is one ranked candidate
	ItemSingle ItemKind = iota
	// ItemTie is an unordered pair of candidates the voter is indifferent between
	ItemTie
)

// Item is one position on a ballot. Build it with Single or Tie.
type Item struct {
	kind ItemKind
	a, b Candidate
}

// Single returns an item ranking exactly one candidate
func Single(c Candidate) Item {
	return Item{kind: ItemSingle, a: c, b: c}
}

// Tie returns an item declaring indifference between a and b
func Tie(a, b Candidate) Item {
	return Item{kind: ItemTie, a: a, b: b}
}

// Kind returns whether the item is a single candidate or a tie
func (i Item) Kind() ItemKind {
	return i.kind
}

// Candidates returns the candidates named by the item
func (i Item) Candidates() []Candidate {
	if i.kind == ItemTie {
		return []Candidate{i.a, i.b}
	}
	return []Candidate{i.a}
}

// Pair returns both members of the item. For a single item both are the same candidate.
func (i Item) Pair() (Candidate, Candidate) {
	return i.a, i.b
}

// Contains reports whether c appears in the item
func (i Item) Contains(c Candidate) bool {
	return i.a == c || i.b == c
}

func (i Item) String() string {
	if i.kind == ItemTie {
		return fmt.Sprintf("{%d,%d}", i.a, i.b)
	}
	return fmt.Sprintf("%d", i.a)
}

// Ballot is one voter's preference list, most preferred first
type Ballot []Item

// RankedBallot builds a ballot without ties
func RankedBallot(candidates ...Candidate) Ballot {
	b := make(Ballot, 0, len(candidates))
	for _, c := range candidates {
		b = append(b, Single(c))
	}
	return b
}

// Position returns the index of the item holding c
func (b Ballot) Position(c Candidate) (int, bool) {
	for i, item := range b {
		if item.Contains(c) {
			return i, true
		}
	}
	return -1, false
}

// Contains reports whether c is ranked anywhere on the ballot
func (b Ballot) Contains(c Candidate) bool {
	_, ok := b.Position(c)
	return ok
}

// Candidates flattens the ballot in ranking order
func (b Ballot) Candidates() []Candidate {
	rtn := make([]Candidate, 0, len(b))
	for _, item := range b {
		rtn = append(rtn, item.Candidates()...)
	}
	return rtn
}

// Prefers reports whether the ballot ranks x strictly above y.
// A ranked candidate is preferred over an unranked one.
func (b Ballot) Prefers(x, y Candidate) bool {
	px, okx := b.Position(x)
	py, oky := b.Position(y)
	switch {
	case !okx:
		return false
	case !oky:
		return true
	default:
		return px < py
	}
}

func (b Ballot) String() string {
	parts := make([]string, 0, len(b))
	for _, item := range b {
		parts = append(parts, item.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// EliminationSet holds the candidates removed so far in one STV run.
// Every branch of a search owns its own set; use Clone before extending a shared one.
type EliminationSet map[Candidate]struct{}

// NewEliminationSet returns a set holding the given candidates
func NewEliminationSet(candidates ...Candidate) EliminationSet {
	s := make(EliminationSet, len(candidates))
	for _, c := range candidates {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether c has been eliminated
func (s EliminationSet) Has(c Candidate) bool {
	_, ok := s[c]
	return ok
}

// Add marks candidates as eliminated
func (s EliminationSet) Add(candidates ...Candidate) {
	for _, c := range candidates {
		s[c] = struct{}{}
	}
}

// Len returns the number of eliminated candidates
func (s EliminationSet) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set
func (s EliminationSet) Clone() EliminationSet {
	rtn := make(EliminationSet, len(s))
	for c := range s {
		rtn[c] = struct{}{}
	}
	return rtn
}

// With returns a copy of the set extended with candidates
func (s EliminationSet) With(candidates ...Candidate) EliminationSet {
	rtn := s.Clone()
	rtn.Add(candidates...)
	return rtn
}

// Active lists the candidates of an n-candidate universe not in the set, in id order
func (s EliminationSet) Active(n int) []Candidate {
	rtn := make([]Candidate, 0, n)
	for c := Candidate(0); int(c) < n; c++ {
		if !s.Has(c) {
			rtn = append(rtn, c)
		}
	}
	return rtn
}
