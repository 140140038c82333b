// Package worlds models a finite space of possible worlds over n base
// propositions. A world is one complete truth assignment to the base
// propositions; a proposition is a set of worlds, encoded as a bitmask
// over world ids. Everything is computed on demand from the ids, nothing
// is materialized in bulk, so large n stays tractable.
package worlds

import (
	"fmt"
	"strings"
)

// MaxProps bounds the number of base propositions. 2^20 worlds is already
// a million; beyond that even world-level iteration stops being useful.
const MaxProps = 20

// enumerableProps is the largest n for which the full proposition space
// 2^(2^n) may be enumerated. Past this the space is hyper-exponential and
// only individual ids are ever decoded.
const enumerableProps = 3

// ConfigError reports an invalid Space construction.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "worlds: " + e.Reason
}

// Space is an immutable possible-worlds space over n base propositions.
// World w in [0, 2^n) encodes truth values bitwise, most significant bit =
// base proposition 0. Proposition id p is a bitmask over world ids, least
// significant bit = world 0.
//
// Proposition ids are addressed within uint64. For n > 6 the full space
// 2^(2^n) exceeds the addressable range; that is accepted because
// propositions are only materialized on demand and the reasoning layers
// are bounded to small n by caller discipline.
type Space struct {
	nProps    int
	nWorlds   int
	labels    []string // B1..Bn
	sentences []string
}

// New builds a Space over n base propositions. sentences supplies the
// natural-language reading of each base proposition; nil gets placeholder
// sentences. A sentence list whose length disagrees with n is a
// configuration error.
func New(n int, sentences []string) (*Space, error) {
	if n < 0 || n > MaxProps {
		return nil, &ConfigError{Reason: fmt.Sprintf("n must be in [0, %d], got %d", MaxProps, n)}
	}
	if sentences != nil && len(sentences) != n {
		return nil, &ConfigError{Reason: fmt.Sprintf("length of sentences (%d) must match n (%d)", len(sentences), n)}
	}
	if sentences == nil {
		sentences = make([]string, n)
		for i := range sentences {
			sentences[i] = fmt.Sprintf("Sentence %d", i+1)
		}
	}
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("B%d", i+1)
	}
	return &Space{
		nProps:    n,
		nWorlds:   1 << n,
		labels:    labels,
		sentences: append([]string(nil), sentences...),
	}, nil
}

// NumProps returns the number of base propositions.
func (s *Space) NumProps() int { return s.nProps }

// NumWorlds returns 2^n, the number of possible worlds.
func (s *Space) NumWorlds() int { return s.nWorlds }

// Labels returns the symbolic names of the base propositions (B1..Bn).
func (s *Space) Labels() []string { return append([]string(nil), s.labels...) }

// Sentences returns the natural-language sentences of the base propositions.
func (s *Space) Sentences() []string { return append([]string(nil), s.sentences...) }

// Holds reports whether base proposition j (0-based) is true in world w.
func (s *Space) Holds(w, j int) bool {
	if w < 0 || w >= s.nWorlds || j < 0 || j >= s.nProps {
		return false
	}
	return (w>>(s.nProps-1-j))&1 == 1
}

// WorldBitstring returns the n-bit truth vector of world w, most
// significant bit = base proposition 0.
func (s *Space) WorldBitstring(w int) string {
	if s.nProps == 0 {
		return ""
	}
	return fmt.Sprintf("%0*b", s.nProps, w)
}

// WorldLabel returns the display label of world w ("W0", "W1", ...).
func (s *Space) WorldLabel(w int) string {
	return fmt.Sprintf("W%d", w)
}

// Notation returns the set-theoretic reading of world w: each base
// proposition or its negation, joined by the intersection sign.
func (s *Space) Notation(w int) string {
	terms := make([]string, s.nProps)
	for j := 0; j < s.nProps; j++ {
		if s.Holds(w, j) {
			terms[j] = s.labels[j]
		} else {
			terms[j] = "¬" + s.labels[j]
		}
	}
	return strings.Join(terms, " ∩ ")
}

// SentenceNotation returns the full sentential reading of world w,
// negated literals wrapped with "not the case that".
func (s *Space) SentenceNotation(w int) string {
	terms := make([]string, s.nProps)
	for j := 0; j < s.nProps; j++ {
		if s.Holds(w, j) {
			terms[j] = "(" + s.sentences[j] + ")"
		} else {
			terms[j] = "(not the case that " + s.sentences[j] + ")"
		}
	}
	return strings.Join(terms, " ∩ ")
}

// UniversalProposition returns the id of the proposition containing every
// world. Only meaningful while 2^n fits the id width; for n > 6 it
// saturates at the all-ones mask.
func (s *Space) UniversalProposition() uint64 {
	if s.nWorlds >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << s.nWorlds) - 1
}

// InRange reports whether p names a proposition of this space, i.e.
// p < 2^(2^n). For n > 6 the check is vacuously true within uint64.
func (s *Space) InRange(p uint64) bool {
	if s.nWorlds >= 64 {
		return true
	}
	return p < uint64(1)<<s.nWorlds
}

// PropositionWorlds decodes p as a bitmask and returns the member world
// ids in ascending order. For p outside [0, 2^(2^n)) the result is nil:
// callers must treat that as "not decodable", not as an empty proposition.
func (s *Space) PropositionWorlds(p uint64) []int {
	if !s.InRange(p) {
		return nil
	}
	limit := s.nWorlds
	if limit > 64 {
		limit = 64
	}
	var members []int
	for w := 0; w < limit; w++ {
		if (p>>w)&1 == 1 {
			members = append(members, w)
		}
	}
	return members
}

// PropositionBitstring returns the 2^n-bit membership vector of p. The
// string is always computable but only practically meaningful for n <= 3.
func (s *Space) PropositionBitstring(p uint64) string {
	return fmt.Sprintf("%0*b", s.nWorlds, p)
}

// PropositionLabel returns the display label of proposition p.
func (s *Space) PropositionLabel(p uint64) string {
	return fmt.Sprintf("P%d", p)
}
