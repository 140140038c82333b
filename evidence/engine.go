// Package evidence implements a Dempster–Shafer style reasoning engine
// over a worlds.Space: sparse mass assignment to propositions, focal and
// endorsed focal subsets, credences, minimal ground sets, maximal
// jointly-consistent inferable bases, and strength-ranked grounding of
// target propositions.
package evidence

import (
	"fmt"
	"sort"
	"sync"

	"github.com/epistemolab/epistemo/worlds"
)

// MassError reports a mass assignment outside [0, 1].
type MassError struct {
	Prop  uint64
	Value float64
}

func (e *MassError) Error() string {
	return fmt.Sprintf("evidence: mass for P%d must be between 0 and 1, got %g", e.Prop, e.Value)
}

// Base is a maximal jointly-consistent subset of the acceptance base.
// Members are sorted ascending; Worlds is the non-empty joint
// intersection of the members' world sets.
type Base struct {
	Members []uint64
	Worlds  []int
}

// Engine holds a mass assignment over a worlds.Space and answers
// evidential queries against it.
//
// The acceptance base and the inferable bases are derived eagerly at
// construction. SetMass and the threshold setters do NOT refresh them:
// after mutating, call Rebuild to re-derive, or construct a fresh engine.
// A single lock serializes mutation against derived-state reads, so one
// engine is safe for concurrent use, but readers see stale derived state
// until Rebuild runs.
type Engine struct {
	mu    sync.RWMutex
	space *worlds.Space

	mass               map[uint64]float64
	massThresholds     map[uint64]float64
	credenceThresholds map[uint64]float64
	globalMass         float64
	globalCredence     float64

	acceptanceBase []uint64
	inferableBases []Base
}

// NewEngine builds an engine over space with the given initial mass
// mapping (may be nil). Every initial mass must lie in [0, 1].
func NewEngine(space *worlds.Space, mass map[uint64]float64) (*Engine, error) {
	e := &Engine{
		space:              space,
		mass:               make(map[uint64]float64, len(mass)),
		massThresholds:     make(map[uint64]float64),
		credenceThresholds: make(map[uint64]float64),
	}
	for p, v := range mass {
		if v < 0 || v > 1 {
			return nil, &MassError{Prop: p, Value: v}
		}
		e.mass[p] = v
	}
	e.rebuildLocked()
	return e, nil
}

// Rebuild re-derives the acceptance base and the inferable bases from the
// current mass mapping and thresholds.
func (e *Engine) Rebuild() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rebuildLocked()
}

func (e *Engine) rebuildLocked() {
	e.acceptanceBase = e.endorsedFocalLocked(e.space.UniversalProposition())
	e.inferableBases = e.computeInferableBasesLocked()
}

// SetMass assigns mass v to proposition p, overwriting any prior value.
// Derived state is not recomputed; call Rebuild afterwards.
func (e *Engine) SetMass(p uint64, v float64) error {
	if v < 0 || v > 1 {
		return &MassError{Prop: p, Value: v}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mass[p] = v
	return nil
}

// Mass returns the mass assigned to p, 0 if unassigned.
func (e *Engine) Mass(p uint64) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mass[p]
}

// SetMassThreshold sets a per-proposition mass threshold overriding the
// global default for p.
func (e *Engine) SetMassThreshold(p uint64, v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.massThresholds[p] = v
}

// SetGlobalMassThreshold sets the default mass threshold.
func (e *Engine) SetGlobalMassThreshold(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.globalMass = v
}

// MassThreshold returns the mass threshold for p: the per-proposition
// override if present, else the global default.
func (e *Engine) MassThreshold(p uint64) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.massThresholdLocked(p)
}

func (e *Engine) massThresholdLocked(p uint64) float64 {
	if t, ok := e.massThresholds[p]; ok {
		return t
	}
	return e.globalMass
}

// SetCredenceThreshold sets a per-proposition credence threshold.
func (e *Engine) SetCredenceThreshold(p uint64, v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.credenceThresholds[p] = v
}

// SetGlobalCredenceThreshold sets the default credence threshold.
func (e *Engine) SetGlobalCredenceThreshold(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.globalCredence = v
}

// CredenceThreshold returns the credence threshold for p: the
// per-proposition override if present, else the global default.
func (e *Engine) CredenceThreshold(p uint64) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if t, ok := e.credenceThresholds[p]; ok {
		return t
	}
	return e.globalCredence
}

// FocalSubsets returns every mass-bearing proposition whose world set is
// a non-empty subset of target's world set, in ascending id order.
func (e *Engine) FocalSubsets(target uint64) []uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.focalLocked(target)
}

func (e *Engine) focalLocked(target uint64) []uint64 {
	targetWorlds := e.space.PropositionWorlds(target)
	var focal []uint64
	for _, p := range e.sortedMassIDsLocked() {
		w := e.space.PropositionWorlds(p)
		if len(w) > 0 && isSubset(w, targetWorlds) {
			focal = append(focal, p)
		}
	}
	return focal
}

// EndorsedFocalSubsets returns the focal subsets of target whose mass
// meets their mass threshold.
func (e *Engine) EndorsedFocalSubsets(target uint64) []uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.endorsedFocalLocked(target)
}

func (e *Engine) endorsedFocalLocked(target uint64) []uint64 {
	var endorsed []uint64
	for _, p := range e.focalLocked(target) {
		if e.mass[p] >= e.massThresholdLocked(p) {
			endorsed = append(endorsed, p)
		}
	}
	return endorsed
}

// Credence returns the sum of masses over the focal subsets of target.
// It is monotone under target inclusion.
func (e *Engine) Credence(target uint64) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	total := 0.0
	for _, p := range e.focalLocked(target) {
		total += e.mass[p]
	}
	return total
}

// EndorsedCredence returns the sum of masses over the endorsed focal
// subsets of target.
func (e *Engine) EndorsedCredence(target uint64) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	total := 0.0
	for _, p := range e.endorsedFocalLocked(target) {
		total += e.mass[p]
	}
	return total
}

// MinMassOfSet returns the minimum mass over the given propositions.
// assessable is false when the set is empty or any member has no assigned
// mass, distinguishing "unknown" from an actual zero.
func (e *Engine) MinMassOfSet(ids []uint64) (min float64, assessable bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.minMassLocked(ids)
}

func (e *Engine) minMassLocked(ids []uint64) (float64, bool) {
	if len(ids) == 0 {
		return 0, false
	}
	min := 0.0
	for i, p := range ids {
		v, ok := e.mass[p]
		if !ok {
			return 0, false
		}
		if i == 0 || v < min {
			min = v
		}
	}
	return min, true
}

// AcceptanceBase returns the endorsed focal subsets of the universal
// proposition, as derived by the last Rebuild.
func (e *Engine) AcceptanceBase() []uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]uint64(nil), e.acceptanceBase...)
}

// InferableBases returns the maximal jointly-consistent subsets of the
// acceptance base, as derived by the last Rebuild.
func (e *Engine) InferableBases() []Base {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Base, len(e.inferableBases))
	for i, b := range e.inferableBases {
		out[i] = Base{
			Members: append([]uint64(nil), b.Members...),
			Worlds:  append([]int(nil), b.Worlds...),
		}
	}
	return out
}

func (e *Engine) sortedMassIDsLocked() []uint64 {
	ids := make([]uint64, 0, len(e.mass))
	for p := range e.mass {
		ids = append(ids, p)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// isSubset reports a ⊆ b for ascending-sorted world id slices.
func isSubset(a, b []int) bool {
	j := 0
	for _, x := range a {
		for j < len(b) && b[j] < x {
			j++
		}
		if j == len(b) || b[j] != x {
			return false
		}
		j++
	}
	return true
}

// intersect returns a ∩ b for ascending-sorted world id slices.
func intersect(a, b []int) []int {
	var out []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func idsKey(ids []uint64) string {
	out := make([]byte, 0, len(ids)*4)
	for _, p := range ids {
		out = append(out, fmt.Sprintf("%d,", p)...)
	}
	return string(out)
}
