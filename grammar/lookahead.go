package grammar

import (
	"fmt"

	"github.com/halcyon-lang/sdtgen/symbol"
)

// itemKey names one item inside one CFSM state, the unit lookahead
// propagation works over (§4.D).
type itemKey struct {
	state StateNum
	item  itemID
}

// Lookaheads holds, for every kernel item and every reducible item of every
// state, its final LALR(1) lookahead set.
//
// Construction follows §4.D's marker technique, but instead of literally
// injecting synthetic marker symbols into the ordered terminal sets (which
// would require every Set to accept non-grammar symbols), each kernel
// item's provenance is tracked in a parallel bitset (symbol.IntSet keyed by
// kernel-item index) alongside the real-terminal spontaneous follow set.
// The two are equivalent: "item c received marker m_k" is exactly
// "localMarkers[c].Contains(k)". §9's design notes call the bitset
// representation an accepted alternative to literal markers.
type Lookaheads struct {
	sets map[itemKey]*symbol.Set

	// updates is the propagation graph built while computing lookaheads:
	// src is always a kernel item; dest is either another state's kernel
	// item (reached by shifting past src's dotted symbol) or a same-state
	// epsilon-reduce item. The state splitter (§4.E) walks this graph
	// backward to find which kernel item a closure item's marker came
	// from.
	updates map[itemKey][]itemKey
	// reverse is the lazily built inverse of updates.
	reverse map[itemKey][]itemKey

	// spontaneous holds each item's *local* spontaneous follow -- the real
	// terminals injected into it during its own state's closure fixpoint,
	// before any cross-state propagation. Lane tracing (§4.E) accumulates
	// these along a lane, as distinct from the fully-propagated set in
	// sets/OfItem.
	spontaneous map[itemKey]*symbol.Set
}

// SpontaneousOf returns the local spontaneous follow of item in state,
// independent of cross-state propagation.
func (la *Lookaheads) SpontaneousOf(state StateNum, item itemID) *symbol.Set {
	s, ok := la.spontaneous[itemKey{state, item}]
	if !ok {
		return symbol.NewSet()
	}
	return s
}

// SourcesOf returns the kernel items whose marker propagates into dest,
// i.e. the predecessors of dest in the propagation graph.
func (la *Lookaheads) SourcesOf(state StateNum, item itemID) []itemKey {
	if la.reverse == nil {
		la.reverse = map[itemKey][]itemKey{}
		for src, dests := range la.updates {
			for _, d := range dests {
				la.reverse[d] = append(la.reverse[d], src)
			}
		}
	}
	return la.reverse[itemKey{state, item}]
}

func (la *Lookaheads) of(state StateNum, item itemID) *symbol.Set {
	s, ok := la.sets[itemKey{state, item}]
	if !ok {
		return symbol.NewSet()
	}
	return s
}

// OfKernelItem returns the lookahead set of the i-th kernel item of state s.
func (la *Lookaheads) OfKernelItem(s *State, i int) *symbol.Set {
	return la.of(s.Num, s.Kernel.Items[i].id)
}

// OfItem returns the lookahead set of an arbitrary item within state s
// (kernel or reducible-by-epsilon).
func (la *Lookaheads) OfItem(s *State, it *Item) *symbol.Set {
	return la.of(s.Num, it.id)
}

func computeLookaheads(automaton *Automaton, prods *Set, first *FirstSet) (*Lookaheads, error) {
	lookahead := map[itemKey]*symbol.Set{}
	updates := map[itemKey][]itemKey{}
	spontaneous := map[itemKey]*symbol.Set{}

	ensure := func(k itemKey) *symbol.Set {
		s, ok := lookahead[k]
		if !ok {
			s = symbol.NewSet()
			lookahead[k] = s
		}
		return s
	}

	// Seed item [1,0] (the augmented start item) with <eof> (§4.D).
	initial := automaton.States[automaton.InitialState]
	startItem := initial.Kernel.Items[0]
	ensure(itemKey{initial.Num, startItem.id}).Insert(symbol.EOF)

	for _, state := range automaton.byNum {
		items, err := closureOf(state.Kernel, prods)
		if err != nil {
			return nil, err
		}

		kernelIndex := map[itemID]int{}
		for i, it := range state.Kernel.Items {
			kernelIndex[it.id] = i
		}

		localFollow := map[itemID]*symbol.Set{}
		localMarkers := map[itemID]*symbol.IntSet{}
		for _, it := range items {
			localFollow[it.id] = symbol.NewSet()
			localMarkers[it.id] = symbol.NewIntSet()
		}
		for i, it := range state.Kernel.Items {
			localMarkers[it.id].Insert(i)
		}

		// Fixpoint spontaneous follow and marker propagation within the
		// state's closure (§4.D: "Fixpoint within the state").
		for changed := true; changed; {
			changed = false
			for _, x := range items {
				if x.DottedSymbol == nil || x.DottedSymbol.IsTerminal() {
					continue
				}
				xProd, ok := prods.ByNum(x.Prod)
				if !ok {
					return nil, fmt.Errorf("grammar: production %d not found", x.Prod)
				}
				fst, nullable := first.OfSequence(xProd.RHS, x.Dot+1)
				for _, y := range items {
					if y.Dot != 0 {
						continue
					}
					yProd, ok := prods.ByNum(y.Prod)
					if !ok {
						return nil, fmt.Errorf("grammar: production %d not found", y.Prod)
					}
					if yProd.LHS != x.DottedSymbol {
						continue
					}
					if localFollow[y.id].UnionInPlace(fst) {
						changed = true
					}
					if nullable {
						if localMarkers[y.id].UnionInPlace(localMarkers[x.id]) {
							changed = true
						}
						if localFollow[y.id].UnionInPlace(localFollow[x.id]) {
							changed = true
						}
					}
				}
			}
		}

		// Seed each kernel item's own lookahead from whatever real
		// terminals it spontaneously accumulated (normally none, since
		// kernel items have dot > 0 and are never closure targets).
		for _, kit := range state.Kernel.Items {
			ensure(itemKey{state.Num, kit.id}).UnionInPlace(localFollow[kit.id])
		}

		for _, it := range items {
			spontaneous[itemKey{state.Num, it.id}] = localFollow[it.id]
		}

		// Hand every item's spontaneous follow to its descendant, and build
		// update edges: kernel item k -> descendant of every closure item c
		// whose marker set contains k (§4.D).
		for _, c := range items {
			var dest itemKey
			if c.Reducible {
				dest = itemKey{state.Num, c.id}
			} else {
				targetKernelID, ok := state.Next[c.DottedSymbol]
				if _, sr := state.ShiftReduce[c.DottedSymbol]; !ok && sr {
					// A default shift-reduce cell reduces unconditionally.
					continue
				}
				if !ok {
					return nil, fmt.Errorf("grammar: no goto on %v from state %d", c.DottedSymbol, state.Num)
				}
				targetState := automaton.States[targetKernelID]
				cProd, ok := prods.ByNum(c.Prod)
				if !ok {
					return nil, fmt.Errorf("grammar: production %d not found", c.Prod)
				}
				nextItem, err := newItem(cProd, c.Dot+1)
				if err != nil {
					return nil, err
				}
				dest = itemKey{targetState.Num, nextItem.id}
			}
			ensure(dest).UnionInPlace(localFollow[c.id])
			for i, kit := range state.Kernel.Items {
				if localMarkers[c.id].Contains(i) {
					src := itemKey{state.Num, kit.id}
					updates[src] = append(updates[src], dest)
				}
			}
		}
	}

	// Global fixpoint propagation, bounded per §9's open question: cap the
	// loop at |items| * |states| iterations and assert it terminated.
	maxIters := 0
	for _, state := range automaton.byNum {
		maxIters += len(state.Kernel.Items)
	}
	maxIters *= automaton.StateCount()
	if maxIters == 0 {
		maxIters = 1
	}

	iter := 0
	for changed := true; changed; iter++ {
		if iter > maxIters {
			return nil, fmt.Errorf("grammar: lookahead propagation did not converge within %d iterations", maxIters)
		}
		changed = false
		for src, dests := range updates {
			srcSet := lookahead[src]
			for _, dest := range dests {
				if lookahead[dest].UnionInPlace(srcSet) {
					changed = true
				}
			}
		}
	}

	return &Lookaheads{sets: lookahead, updates: updates, spontaneous: spontaneous}, nil
}
