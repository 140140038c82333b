package evidence

import "sort"

// Ground is one minimal grounding of a target proposition inside a
// specific inferable base: the ground's joint world intersection is
// non-empty and contained in the target's world set, and no smaller
// recorded ground for the same base is contained in it. MinMass is the
// minimum mass among the members; Assessable is false when any member
// carries no assigned mass.
type Ground struct {
	Base       Base
	Members    []uint64
	MinMass    float64
	Assessable bool
}

// BaseStrongest is the per-base outcome of StrongestGrounds: the
// ground(s) of that base achieving its maximum minimum mass.
type BaseStrongest struct {
	Base    Base
	Grounds [][]uint64
	MinMass float64
}

// Strongest is the result of StrongestGrounds. ByBase holds the per-base
// winners; Global holds the grounds from the base(s) achieving the
// maximum across all bases. Ties are not broken further. Both are empty
// when the target has no grounds at all.
type Strongest struct {
	ByBase []BaseStrongest
	Global []Ground
}

// GroundSets returns every minimal set of focal propositions whose joint
// world intersection is non-empty and contained in target's world set.
// Candidates are drawn from all mass-bearing propositions with a
// non-empty world set, enumerated in increasing size; a set is minimal
// when dropping any single member breaks the containment. Exponential in the number of
// focal propositions; callers keep that count small.
func (e *Engine) GroundSets(target uint64) [][]uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	candidates := e.focalLocked(e.space.UniversalProposition())
	targetWorlds := e.space.PropositionWorlds(target)
	sets := make([][]int, len(candidates))
	for i, p := range candidates {
		sets[i] = e.space.PropositionWorlds(p)
	}

	var out [][]uint64
	seen := make(map[string]bool)
	for r := 1; r <= len(candidates); r++ {
		combinations(len(candidates), r, func(idx []int) {
			inter := sets[idx[0]]
			for _, i := range idx[1:] {
				inter = intersect(inter, sets[i])
			}
			if len(inter) == 0 || !isSubset(inter, targetWorlds) {
				return
			}
			// Minimal iff no drop-one reduction still entails the target.
			for drop := 0; drop < len(idx) && len(idx) > 1; drop++ {
				reduced := []int(nil)
				for j, i := range idx {
					if j != drop {
						if reduced == nil {
							reduced = sets[i]
						} else {
							reduced = intersect(reduced, sets[i])
						}
					}
				}
				if isSubset(reduced, targetWorlds) {
					return
				}
			}
			ground := make([]uint64, len(idx))
			for j, i := range idx {
				ground[j] = candidates[i]
			}
			if key := idsKey(ground); !seen[key] {
				seen[key] = true
				out = append(out, ground)
			}
		})
	}
	return out
}

// computeInferableBasesLocked finds every maximal subset of the
// acceptance base whose members' world sets have a non-empty joint
// intersection. Starting from the full base, an inconsistent candidate is
// reduced by dropping one element at a time; each consistent subset is
// greedily extended by adding back, in id order, any excluded element
// that keeps it consistent. A subset that cannot be extended further is
// maximal. Duplicates reached via different removal orders are
// deduplicated by their sorted-id tuple.
func (e *Engine) computeInferableBasesLocked() []Base {
	base := e.acceptanceBase
	if len(base) == 0 {
		return nil
	}
	sets := make(map[uint64][]int, len(base))
	for _, p := range base {
		sets[p] = e.space.PropositionWorlds(p)
	}
	joint := func(ids []uint64) []int {
		inter := sets[ids[0]]
		for _, p := range ids[1:] {
			inter = intersect(inter, sets[p])
		}
		return inter
	}

	var bases []Base
	recorded := make(map[string]bool)
	visited := make(map[string]bool)
	var visit func(cand []uint64)
	visit = func(cand []uint64) {
		if len(cand) == 0 {
			return
		}
		key := idsKey(cand)
		if visited[key] {
			return
		}
		visited[key] = true

		if inter := joint(cand); len(inter) > 0 {
			maximal := extendConsistent(cand, base, joint)
			if k := idsKey(maximal); !recorded[k] {
				recorded[k] = true
				bases = append(bases, Base{Members: maximal, Worlds: joint(maximal)})
			}
			return
		}
		for drop := range cand {
			reduced := make([]uint64, 0, len(cand)-1)
			reduced = append(reduced, cand[:drop]...)
			reduced = append(reduced, cand[drop+1:]...)
			visit(reduced)
		}
	}
	visit(base)

	sort.Slice(bases, func(i, j int) bool {
		return lessIDs(bases[i].Members, bases[j].Members)
	})
	return bases
}

// extendConsistent adds back, in ascending id order, every element of
// universe that keeps cand's joint intersection non-empty. Intersections
// only shrink, so a single ordered pass reaches the fixpoint.
func extendConsistent(cand, universe []uint64, joint func([]uint64) []int) []uint64 {
	current := append([]uint64(nil), cand...)
	sort.Slice(current, func(i, j int) bool { return current[i] < current[j] })
	for _, p := range universe {
		if containsID(current, p) {
			continue
		}
		trial := insertSorted(current, p)
		if len(joint(trial)) > 0 {
			current = trial
		}
	}
	return current
}

// Grounds returns, for each inferable base, the minimal grounds of the
// target: subsets of the base's members whose joint intersection is
// non-empty and contained in the target's world set. Candidates are
// enumerated in increasing size and a candidate containing an
// already-recorded ground is rejected, so every subset is visited once
// and the recorded grounds are minimal by construction.
func (e *Engine) Grounds(target uint64) []Ground {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.groundsLocked(target)
}

func (e *Engine) groundsLocked(target uint64) []Ground {
	targetWorlds := e.space.PropositionWorlds(target)
	var out []Ground
	for _, b := range e.inferableBases {
		sets := make([][]int, len(b.Members))
		for i, p := range b.Members {
			sets[i] = e.space.PropositionWorlds(p)
		}
		var recorded [][]uint64
		for r := 1; r <= len(b.Members); r++ {
			combinations(len(b.Members), r, func(idx []int) {
				cand := make([]uint64, len(idx))
				cand[0] = b.Members[idx[0]]
				inter := sets[idx[0]]
				for j, i := range idx[1:] {
					cand[j+1] = b.Members[i]
					inter = intersect(inter, sets[i])
				}
				if len(inter) == 0 || !isSubset(inter, targetWorlds) {
					return
				}
				if hasRecordedSubset(recorded, cand) {
					return
				}
				recorded = append(recorded, cand)
			})
		}

		for _, g := range recorded {
			mm, ok := e.minMassLocked(g)
			out = append(out, Ground{
				Base:       Base{Members: append([]uint64(nil), b.Members...), Worlds: append([]int(nil), b.Worlds...)},
				Members:    g,
				MinMass:    mm,
				Assessable: ok,
			})
		}
	}
	return out
}

// StrongestGrounds ranks the grounds of target by strength: within each
// inferable base only the ground(s) with the maximum minimum mass are
// kept, and globally only the base(s) achieving the overall maximum.
func (e *Engine) StrongestGrounds(target uint64) Strongest {
	e.mu.RLock()
	defer e.mu.RUnlock()

	grounds := e.groundsLocked(target)
	if len(grounds) == 0 {
		return Strongest{}
	}

	var result Strongest
	order := []string{}
	byBase := map[string][]Ground{}
	for _, g := range grounds {
		key := idsKey(g.Base.Members)
		if _, ok := byBase[key]; !ok {
			order = append(order, key)
		}
		byBase[key] = append(byBase[key], g)
	}

	globalBest := 0.0
	haveGlobal := false
	for _, key := range order {
		group := byBase[key]
		best := 0.0
		haveBest := false
		for _, g := range group {
			if !g.Assessable {
				continue
			}
			if !haveBest || g.MinMass > best {
				best = g.MinMass
				haveBest = true
			}
		}
		if !haveBest {
			continue
		}
		bs := BaseStrongest{Base: group[0].Base, MinMass: best}
		for _, g := range group {
			if g.Assessable && g.MinMass == best {
				bs.Grounds = append(bs.Grounds, g.Members)
			}
		}
		result.ByBase = append(result.ByBase, bs)
		if !haveGlobal || best > globalBest {
			globalBest = best
			haveGlobal = true
		}
	}
	for _, bs := range result.ByBase {
		if bs.MinMass == globalBest {
			for _, members := range bs.Grounds {
				result.Global = append(result.Global, Ground{
					Base:       bs.Base,
					Members:    members,
					MinMass:    bs.MinMass,
					Assessable: true,
				})
			}
		}
	}
	return result
}

// combinations visits every size-r subset of [0, n) in lexicographic
// order. The visited slice is reused between calls.
func combinations(n, r int, visit func(idx []int)) {
	if r > n {
		return
	}
	idx := make([]int, r)
	var rec func(start, k int)
	rec = func(start, k int) {
		if k == r {
			visit(idx)
			return
		}
		for i := start; i <= n-(r-k); i++ {
			idx[k] = i
			rec(i+1, k+1)
		}
	}
	rec(0, 0)
}

func hasRecordedSubset(recorded [][]uint64, candidate []uint64) bool {
	for _, r := range recorded {
		if idsSubset(r, candidate) {
			return true
		}
	}
	return false
}

// idsSubset reports a ⊆ b for ascending-sorted id slices.
func idsSubset(a, b []uint64) bool {
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

func containsID(ids []uint64, p uint64) bool {
	for _, x := range ids {
		if x == p {
			return true
		}
	}
	return false
}

func insertSorted(ids []uint64, p uint64) []uint64 {
	out := make([]uint64, 0, len(ids)+1)
	inserted := false
	for _, x := range ids {
		if !inserted && p < x {
			out = append(out, p)
			inserted = true
		}
		out = append(out, x)
	}
	if !inserted {
		out = append(out, p)
	}
	return out
}

func lessIDs(a, b []uint64) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
