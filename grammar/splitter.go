package grammar

import (
	"github.com/halcyon-lang/sdtgen/symbol"
)

// conflictGroup is one reduce-reduce collision (§4.E): a state and the set
// of reducible productions whose lookaheads pairwise overlap there.
type conflictGroup struct {
	state StateNum
	prods []ProductionNum
	items []*Item
}

func findConflictGroups(automaton *Automaton, prods *Set, la *Lookaheads) ([]*conflictGroup, error) {
	var groups []*conflictGroup
	for _, state := range automaton.byNum {
		var reduceItems []*Item
		var reduceLAs []*symbol.Set
		for prodNum := range state.Reducible {
			p, ok := prods.ByNum(prodNum)
			if !ok || p.LHS == symbol.Start {
				continue
			}
			it, err := newItem(p, len(p.RHS))
			if err != nil {
				return nil, err
			}
			reduceItems = append(reduceItems, it)
			reduceLAs = append(reduceLAs, la.OfItem(state, it))
		}
		if len(reduceItems) < 2 {
			continue
		}

		// Union-find connected components over pairwise lookahead overlap.
		parent := make([]int, len(reduceItems))
		for i := range parent {
			parent[i] = i
		}
		var find func(int) int
		find = func(i int) int {
			for parent[i] != i {
				parent[i] = parent[parent[i]]
				i = parent[i]
			}
			return i
		}
		union := func(a, b int) {
			ra, rb := find(a), find(b)
			if ra != rb {
				parent[ra] = rb
			}
		}
		for i := 0; i < len(reduceItems); i++ {
			for j := i + 1; j < len(reduceItems); j++ {
				if reduceLAs[i].Overlaps(reduceLAs[j]) {
					union(i, j)
				}
			}
		}

		byRoot := map[int][]int{}
		for i := range reduceItems {
			r := find(i)
			byRoot[r] = append(byRoot[r], i)
		}
		for _, members := range byRoot {
			if len(members) < 2 {
				continue
			}
			g := &conflictGroup{state: state.Num}
			for _, m := range members {
				g.prods = append(g.prods, reduceItems[m].Prod)
				g.items = append(g.items, reduceItems[m])
			}
			groups = append(groups, g)
		}
	}
	return groups, nil
}

// lane is one backward-walked path of a collision (§4.E). tip is carried
// as a live Item (not just an id) because an id alone can't be re-expanded
// back into (production, dot) -- the lane needs that to find its own
// predecessor edge at every hop.
type lane struct {
	prodNum     ProductionNum
	state       StateNum
	item        *Item
	accumulated *symbol.Set
	visited     map[StateNum]bool
	complete    bool

	// predecessor/viaSymbol record the last hop walked.
	predecessor StateNum
	viaSymbol   *symbol.Symbol

	// chain records every inter-state edge walked, origin-first, as
	// (state, symbol-into-that-state-from-the-next-chain-entry). applySplit
	// uses it to find the shallowest point where two lanes' paths diverge,
	// and clones exactly the shared prefix from there down to the origin.
	chain []chainHop
}

type chainHop struct {
	state     StateNum
	viaSymbol *symbol.Symbol // edge walked from this state's successor to it
}

func (l *lane) key() itemKey { return itemKey{l.state, l.item.id} }

// traceLanes runs §4.E's outer loop for one conflict group. It returns
// resolved=true when the lanes' accumulated spontaneous follow (plus any
// still-open tip lookahead) end up pairwise disjoint, and unresolvable=true
// when two lanes already collide on spontaneous follow alone.
func traceLanes(group *conflictGroup, automaton *Automaton, prods *Set, la *Lookaheads, maxIters int) (lanes []*lane, resolved bool, unresolvable bool) {
	lanes = make([]*lane, len(group.items))
	for i, it := range group.items {
		lanes[i] = &lane{
			prodNum:     it.Prod,
			state:       group.state,
			item:        it,
			accumulated: la.SpontaneousOf(group.state, it.id).Union(symbol.NewSet()),
			visited:     map[StateNum]bool{group.state: true},
			chain:       []chainHop{{state: group.state}},
		}
	}

	for iter := 0; iter < maxIters; iter++ {
		// Step 1: spontaneous check.
		for i := 0; i < len(lanes); i++ {
			for j := i + 1; j < len(lanes); j++ {
				if lanes[i].accumulated.Overlaps(lanes[j].accumulated) {
					return lanes, false, true
				}
			}
		}

		// Step 4: success test.
		if lanesAreDisjoint(lanes, la) {
			return lanes, true, false
		}

		allComplete := true
		for _, l := range lanes {
			if !l.complete {
				allComplete = false
				break
			}
		}
		if allComplete {
			return lanes, false, false
		}

		// Steps 2/3: walk every incomplete lane back one hop.
		var next []*lane
		for _, l := range lanes {
			if l.complete {
				next = append(next, l)
				continue
			}

			if !l.item.Kernel {
				srcs := la.SourcesOf(l.state, l.item.id)
				if len(srcs) == 0 {
					l.complete = true
					next = append(next, l)
					continue
				}
				for _, src := range srcs {
					srcItem, ok := itemFromProds(prods, src)
					if !ok {
						continue
					}
					clone := cloneLane(l)
					clone.state = src.state
					clone.item = srcItem
					next = append(next, clone)
				}
				continue
			}

			// Kernel item (prod, dot > 0 or the augmented start item):
			// the ancestor edge is the goto on RHS[dot-1] into this state.
			prod, _ := prods.ByNum(l.item.Prod)
			if l.item.Dot == 0 {
				l.complete = true
				next = append(next, l)
				continue
			}
			state := automaton.byNum[l.state]
			viaSym := prod.RHS[l.item.Dot-1]
			ancestors := state.Ancestors[viaSym]
			if len(ancestors) == 0 {
				l.complete = true
				next = append(next, l)
				continue
			}
			for _, anc := range ancestors {
				if l.visited[anc] {
					cc := cloneLane(l)
					cc.complete = true
					next = append(next, cc)
					continue
				}
				predItem, err := newItem(prod, l.item.Dot-1)
				if err != nil {
					continue
				}
				clone := cloneLane(l)
				clone.visited[anc] = true
				clone.state = anc
				clone.item = predItem
				clone.accumulated = clone.accumulated.Union(la.SpontaneousOf(anc, predItem.id))
				clone.predecessor = anc
				clone.viaSymbol = viaSym
				clone.chain[len(clone.chain)-1].viaSymbol = viaSym
				clone.chain = append(clone.chain, chainHop{state: anc})
				next = append(next, clone)
			}
		}
		lanes = next
	}
	return lanes, false, false
}

// itemFromProds reconstructs an Item from a key whose item id was produced
// by walking the propagation graph -- we don't have (prod, dot) handy for
// an arbitrary key, so SourcesOf's callers in this file always pair a key
// with the production/dot it was built from instead of calling this.
// Kept only for the epsilon-reduce case, where the source key always names
// a kernel item of the *same* production family as the reduce item (an
// epsilon production has no RHS symbol to regress past, so its sources are
// exactly the kernel items that share its own (prod, 0) identity in
// ancestor states); reconstructing via the reduce production itself is
// therefore exact.
func itemFromProds(prods *Set, k itemKey) (*Item, bool) {
	for _, p := range prods.All() {
		for dot := 0; dot <= len(p.RHS); dot++ {
			it, err := newItem(p, dot)
			if err != nil {
				continue
			}
			if it.id == k.item {
				return it, true
			}
		}
	}
	return nil, false
}

func cloneLane(l *lane) *lane {
	v := map[StateNum]bool{}
	for k := range l.visited {
		v[k] = true
	}
	chain := make([]chainHop, len(l.chain))
	copy(chain, l.chain)
	return &lane{
		prodNum:     l.prodNum,
		state:       l.state,
		item:        l.item,
		accumulated: l.accumulated.Union(symbol.NewSet()),
		visited:     v,
		complete:    l.complete,
		predecessor: l.predecessor,
		viaSymbol:   l.viaSymbol,
		chain:       chain,
	}
}

// applySplit clones the shared state chain of every lane beyond the first
// at the point where its path first diverges from the base lane's, then
// rewires the divergence edge to the new chain (§4.E "Copy states").
//
// Simplification: only the single-collision-vs-base-lane divergence is
// computed (no cross-group "compatible collision" merging, §4.E's second
// paragraph), and a lane whose full chain is identical to the base lane's
// (no divergent ancestor state exists at all -- the grammar is genuinely
// ambiguous at the CFSM level, not merely LALR-merged) is left unsplit; its
// conflict is resolved by declaration order in the parsing table builder
// instead, same as an ordinary unresolved reduce-reduce would be.
func applySplit(group *conflictGroup, lanes []*lane, automaton *Automaton, salt *int) bool {
	if len(lanes) == 0 {
		return false
	}
	base := lanes[0].chain
	changed := false

	for i := 1; i < len(lanes); i++ {
		chain := lanes[i].chain
		d := 0
		for d < len(chain) && d < len(base) && chain[d].state == base[d].state {
			d++
		}
		if d == 0 || d >= len(chain) {
			continue
		}

		target := automaton.byNum[chain[d].state]
		for idx := d - 1; idx >= 0; idx-- {
			orig := automaton.byNum[chain[idx].state]
			edgeSym := chain[idx].viaSymbol
			if edgeSym == nil {
				break
			}
			*salt++
			clone := cloneState(automaton, orig, *salt)
			target.Next[edgeSym] = clone.id
			removeAncestor(orig, edgeSym, target.Num)
			addAncestor(clone, edgeSym, target.Num)
			target = clone
			changed = true
		}
	}
	return changed
}

func cloneState(automaton *Automaton, orig *State, salt int) *State {
	newID := newClonedKernelID(orig.id, salt)
	next := map[*symbol.Symbol]kernelID{}
	for k, v := range orig.Next {
		next[k] = v
	}
	reducible := map[ProductionNum]struct{}{}
	for k := range orig.Reducible {
		reducible[k] = struct{}{}
	}
	shiftReduce := map[*symbol.Symbol]ProductionNum{}
	for k, v := range orig.ShiftReduce {
		shiftReduce[k] = v
	}
	clone := &State{
		Kernel:      &Kernel{id: newID, Items: orig.Kernel.Items},
		Num:         StateNum(len(automaton.byNum)),
		Next:        next,
		Reducible:   reducible,
		ShiftReduce: shiftReduce,
		Ancestors:   map[*symbol.Symbol][]StateNum{},
		SplitFrom:   orig.Num,
		IsSplit:     true,
	}
	automaton.States[newID] = clone
	automaton.byNum = append(automaton.byNum, clone)
	return clone
}

func removeAncestor(s *State, sym *symbol.Symbol, who StateNum) {
	list := s.Ancestors[sym]
	out := list[:0]
	for _, n := range list {
		if n != who {
			out = append(out, n)
		}
	}
	s.Ancestors[sym] = out
}

func addAncestor(s *State, sym *symbol.Symbol, who StateNum) {
	s.Ancestors[sym] = append(s.Ancestors[sym], who)
}

func lanesAreDisjoint(lanes []*lane, la *Lookaheads) bool {
	sets := make([]*symbol.Set, len(lanes))
	for i, l := range lanes {
		s := l.accumulated.Union(symbol.NewSet())
		if !l.complete {
			s = s.Union(la.of(l.state, l.item.id))
		}
		sets[i] = s
	}
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			if sets[i].Overlaps(sets[j]) {
				return false
			}
		}
	}
	return true
}
