package worlds

import (
	"fmt"
	"strings"
)

// WorldView is an on-demand snapshot of a single world. Views are plain
// values computed from the id; nothing is cached.
type WorldView struct {
	ID        int
	Label     string
	Bitstring string
	Notation  string
	Sentence  string
}

// World returns the view of world i. ok is false for an out-of-range id.
func (s *Space) World(i int) (WorldView, bool) {
	if i < 0 || i >= s.nWorlds {
		return WorldView{}, false
	}
	return WorldView{
		ID:        i,
		Label:     s.WorldLabel(i),
		Bitstring: s.WorldBitstring(i),
		Notation:  s.Notation(i),
		Sentence:  s.SentenceNotation(i),
	}, true
}

// PropositionView is an on-demand snapshot of a single proposition.
// Bitstring is only populated while the space is small enough for it to
// be readable (n <= 3).
type PropositionView struct {
	ID        uint64
	Label     string
	Worlds    []int
	Bitstring string
	Notation  string
}

// Proposition returns the view of proposition k. ok is false when k is
// outside [0, 2^(2^n)).
func (s *Space) Proposition(k uint64) (PropositionView, bool) {
	if !s.InRange(k) {
		return PropositionView{}, false
	}
	members := s.PropositionWorlds(k)
	v := PropositionView{
		ID:     k,
		Label:  s.PropositionLabel(k),
		Worlds: members,
	}
	if s.nProps <= enumerableProps {
		v.Bitstring = s.PropositionBitstring(k)
	}
	if len(members) == 0 {
		v.Notation = "∅"
	} else {
		names := make([]string, len(members))
		for i, w := range members {
			names[i] = s.WorldLabel(w)
		}
		v.Notation = strings.Join(names, " ∪ ")
	}
	return v, true
}

// Singletons returns the single-world propositions, id 2^w for each world
// w addressable within the id width.
func (s *Space) Singletons() []PropositionView {
	limit := s.nWorlds
	if limit > 64 {
		limit = 64
	}
	views := make([]PropositionView, 0, limit)
	for w := 0; w < limit; w++ {
		v, ok := s.Proposition(uint64(1) << w)
		if ok {
			views = append(views, v)
		}
	}
	return views
}

// AllPropositions enumerates the full proposition space. That is only
// tractable for n <= 3; for larger n it returns a nil slice and a
// descriptive placeholder instead of computing anything.
func (s *Space) AllPropositions() ([]PropositionView, string) {
	if s.nProps > enumerableProps {
		return nil, fmt.Sprintf("2^%d possible propositions (2**(2**%d)) too many to calculate", s.nWorlds, s.nProps)
	}
	count := uint64(1) << s.nWorlds
	views := make([]PropositionView, 0, count)
	for k := uint64(0); k < count; k++ {
		v, _ := s.Proposition(k)
		views = append(views, v)
	}
	return views, ""
}
