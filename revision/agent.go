// Package revision implements an AGM-style belief revision agent over a
// fixed proposition list: contraction and expansion against entrenchment
// ranks, with inviolable core beliefs and possible-worlds tracking
// through a worlds.Space.
package revision

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/epistemolab/epistemo/worlds"
)

// Agent is a named belief-revision agent. K is the current belief set,
// core beliefs can never be contracted, and entrenchment ranks decide
// what survives a contraction.
//
// Agent is not safe for concurrent use; callers serialize access.
type Agent struct {
	name         string
	propositions []string
	k            []string
	core         map[string]struct{}
	entrenchment map[string]int

	space         *worlds.Space
	possibilities map[int]struct{}
	coreWorlds    map[int]struct{}
}

// New creates an agent whose belief set starts empty.
func New(name string, propositions []string) (*Agent, error) {
	return NewWithState(name, propositions, nil, nil, nil)
}

// NewWithState creates an agent with an explicit belief set, core and
// entrenchment ranks, e.g. when restoring persisted state.
func NewWithState(name string, propositions, beliefs, core []string, entrenchment map[string]int) (*Agent, error) {
	a := &Agent{
		name:         name,
		propositions: append([]string(nil), propositions...),
		k:            append([]string(nil), beliefs...),
		core:         make(map[string]struct{}, len(core)),
		entrenchment: make(map[string]int, len(entrenchment)),
	}
	for _, c := range core {
		a.core[c] = struct{}{}
	}
	for p, r := range entrenchment {
		a.entrenchment[p] = r
	}
	if err := a.rebuildSpace(); err != nil {
		return nil, err
	}
	return a, nil
}

// rebuildSpace reconstructs the possible-worlds space after the
// proposition list changed and resets the live worlds to all worlds.
func (a *Agent) rebuildSpace() error {
	space, err := worlds.New(len(a.propositions), a.propositions)
	if err != nil {
		return err
	}
	a.space = space
	a.possibilities = make(map[int]struct{}, space.NumWorlds())
	for w := 0; w < space.NumWorlds(); w++ {
		a.possibilities[w] = struct{}{}
	}
	a.recomputeCoreWorlds()
	return nil
}

func (a *Agent) recomputeCoreWorlds() {
	a.coreWorlds = make(map[int]struct{})
	for w := 0; w < a.space.NumWorlds(); w++ {
		ok := true
		for c := range a.core {
			idx := a.indexOf(c)
			if idx < 0 || !a.space.Holds(w, idx) {
				ok = false
				break
			}
		}
		if ok {
			a.coreWorlds[w] = struct{}{}
		}
	}
}

func (a *Agent) indexOf(prop string) int {
	for i, p := range a.propositions {
		if p == prop {
			return i
		}
	}
	return -1
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Propositions returns the proposition list.
func (a *Agent) Propositions() []string { return append([]string(nil), a.propositions...) }

// Beliefs returns the current belief set K.
func (a *Agent) Beliefs() []string { return append([]string(nil), a.k...) }

// Core returns the core beliefs, sorted.
func (a *Agent) Core() []string {
	out := make([]string, 0, len(a.core))
	for c := range a.core {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Entrenchment returns a copy of the entrenchment ranks.
func (a *Agent) Entrenchment() map[string]int {
	out := make(map[string]int, len(a.entrenchment))
	for p, r := range a.entrenchment {
		out[p] = r
	}
	return out
}

// Rank returns the entrenchment rank of a sentence, 0 if unranked.
func (a *Agent) Rank(sentence string) int { return a.entrenchment[sentence] }

// IsCore reports whether a sentence is a core belief.
func (a *Agent) IsCore(sentence string) bool {
	_, ok := a.core[sentence]
	return ok
}

// Space returns the agent's possible-worlds space.
func (a *Agent) Space() *worlds.Space { return a.space }

// Possibilities returns the live world ids, sorted.
func (a *Agent) Possibilities() []int { return sortedWorlds(a.possibilities) }

// CoreWorlds returns the worlds where every core belief holds, sorted.
func (a *Agent) CoreWorlds() []int { return sortedWorlds(a.coreWorlds) }

// Contract removes a sentence from K along with every non-core belief
// whose entrenchment rank does not exceed the contracted sentence's
// rank, and restricts the live worlds to those where the sentence is
// false. Returns the removed beliefs.
func (a *Agent) Contract(sentence string) ([]string, error) {
	idx := a.indexOf(sentence)
	if idx < 0 {
		return nil, fmt.Errorf("revision: unknown proposition %q", sentence)
	}
	rankP := a.Rank(sentence)
	var newK, removed []string
	for _, q := range a.k {
		if q != sentence && (a.IsCore(q) || a.Rank(q) > rankP) {
			newK = append(newK, q)
		} else {
			removed = append(removed, q)
		}
	}
	a.k = newK

	for w := range a.possibilities {
		if a.space.Holds(w, idx) {
			delete(a.possibilities, w)
		}
	}
	if len(a.possibilities) == 0 {
		slog.Warn("contraction leads to empty epistemic state", "agent", a.name, "sentence", sentence)
	}
	return removed, nil
}

// Expand adds a sentence to K and restricts the live worlds to those
// where it holds.
func (a *Agent) Expand(sentence string) error {
	idx := a.indexOf(sentence)
	if idx < 0 {
		return fmt.Errorf("revision: unknown proposition %q", sentence)
	}
	if !containsString(a.k, sentence) {
		a.k = append(a.k, sentence)
	}
	for w := range a.possibilities {
		if !a.space.Holds(w, idx) {
			delete(a.possibilities, w)
		}
	}
	if len(a.possibilities) == 0 {
		slog.Warn("expansion leads to empty epistemic state", "agent", a.name, "sentence", sentence)
	}
	return nil
}

// Reset replaces the belief set. A nil slice empties it. The live worlds
// are not touched.
func (a *Agent) Reset(beliefs []string) {
	a.k = append([]string(nil), beliefs...)
}

// AddProposition adds a proposition to the agent's vocabulary (rebuilding
// the worlds space when it is new), adds it to K, and records its core
// flag and entrenchment rank.
func (a *Agent) AddProposition(prop string, isCore bool, rank int) error {
	if a.indexOf(prop) < 0 {
		a.propositions = append(a.propositions, prop)
		if err := a.rebuildSpace(); err != nil {
			a.propositions = a.propositions[:len(a.propositions)-1]
			return err
		}
	}
	if !containsString(a.k, prop) {
		a.k = append(a.k, prop)
	}
	if isCore {
		a.core[prop] = struct{}{}
	}
	a.entrenchment[prop] = rank
	a.recomputeCoreWorlds()
	return nil
}

// RemoveProposition removes a proposition from the vocabulary and the
// belief set. Core beliefs cannot be removed.
func (a *Agent) RemoveProposition(prop string) error {
	if a.IsCore(prop) {
		return fmt.Errorf("revision: cannot remove core belief %q", prop)
	}
	var newK []string
	for _, q := range a.k {
		if q != prop {
			newK = append(newK, q)
		}
	}
	a.k = newK
	if idx := a.indexOf(prop); idx >= 0 {
		a.propositions = append(a.propositions[:idx], a.propositions[idx+1:]...)
	}
	delete(a.entrenchment, prop)
	return a.rebuildSpace()
}

// SetCore marks or unmarks a proposition as a core belief.
func (a *Agent) SetCore(prop string, value bool) {
	if value {
		a.core[prop] = struct{}{}
	} else {
		delete(a.core, prop)
	}
	a.recomputeCoreWorlds()
}

// SetEntrenchment sets the entrenchment rank of a proposition.
func (a *Agent) SetEntrenchment(prop string, rank int) {
	a.entrenchment[prop] = rank
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func sortedWorlds(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Ints(out)
	return out
}
