package grammar

import (
	"fmt"
	"sort"

	"github.com/cnf/structhash"

	"github.com/halcyon-lang/sdtgen/symbol"
)

// itemID identifies an LR(0) item by (production, dot), hashed with
// structhash the way the state-identity hashing in the lane-tracing
// automaton of §4.D/§4.E is grounded elsewhere in the pack.
type itemID string

func newItemID(prod ProductionNum, dot int) itemID {
	h, err := structhash.Hash(struct {
		Prod ProductionNum
		Dot  int
	}{prod, dot}, 1)
	if err != nil {
		panic(fmt.Sprintf("grammar: hashing item id: %v", err))
	}
	return itemID(h)
}

// Item is a dotted production: LHS -> alpha . beta (§4.D).
type Item struct {
	id   itemID
	Prod ProductionNum

	Dot          int
	DottedSymbol *symbol.Symbol // nil when the dot is at the end

	Initial   bool // LHS is the augmented start symbol and Dot == 0
	Reducible bool // Dot == len(RHS), the raw RHS length
	Kernel    bool // Initial or Dot > 0
}

func newItem(p *Production, dot int) (*Item, error) {
	if dot < 0 || dot > len(p.RHS) {
		return nil, fmt.Errorf("grammar: dot %d out of range for production %d", dot, p.Num)
	}
	var dotted *symbol.Symbol
	if dot < len(p.RHS) {
		dotted = p.RHS[dot]
	}
	return &Item{
		id:           newItemID(p.Num, dot),
		Prod:         p.Num,
		Dot:          dot,
		DottedSymbol: dotted,
		Initial:      p.Num == ProductionNumStart && dot == 0,
		Reducible:    dot == len(p.RHS),
		Kernel:       p.Num == ProductionNumStart && dot == 0 || dot > 0,
	}, nil
}

// kernelID identifies a kernel by its sorted set of item ids.
type kernelID string

func newKernelID(items []*Item) kernelID {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = string(it.id)
	}
	sort.Strings(ids)
	h, err := structhash.Hash(ids, 1)
	if err != nil {
		panic(fmt.Sprintf("grammar: hashing kernel id: %v", err))
	}
	return kernelID(h)
}

// Kernel is the deduplicated, sorted set of items that seed one CFSM state.
type Kernel struct {
	id    kernelID
	Items []*Item
}

func newKernel(items []*Item) (*Kernel, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("grammar: a kernel needs at least one item")
	}
	dedup := map[itemID]*Item{}
	for _, it := range items {
		if !it.Kernel {
			return nil, fmt.Errorf("grammar: item %v is not a kernel item", it)
		}
		dedup[it.id] = it
	}
	sorted := make([]*Item, 0, len(dedup))
	for _, it := range dedup {
		sorted = append(sorted, it)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].id < sorted[j].id })
	return &Kernel{id: newKernelID(sorted), Items: sorted}, nil
}

// newClonedKernelID mints a distinct kernel id for a state produced by
// lane-tracing state splitting (§4.E): same item set as orig, but a
// different identity so it can coexist with it in Automaton.States.
func newClonedKernelID(orig kernelID, salt int) kernelID {
	h, err := structhash.Hash(struct {
		Orig kernelID
		Salt int
	}{orig, salt}, 1)
	if err != nil {
		panic(fmt.Sprintf("grammar: hashing cloned kernel id: %v", err))
	}
	return kernelID(h)
}

// StateNum numbers CFSM states, 0-based, state 0 is the initial state.
type StateNum int

const StateNumInitial StateNum = 0

// State is one state of the characteristic finite-state machine (CFSM,
// §4.D): a kernel, its closure, the goto edges out of it, the set of
// productions it can reduce, and the lane-tracing bookkeeping §4.E needs to
// detect and repair reduce-reduce conflicts caused by LALR merging.
//
// Ancestors/Next record the goto edges into/out of this state; spontaneous
// follow and lookahead propagation live in lookahead.go, which keeps them in
// its own Lookaheads maps rather than on State.
type State struct {
	*Kernel
	Num StateNum

	// Next maps a dotted symbol to the kernel id of the state reached by
	// goto(this, symbol).
	Next map[*symbol.Symbol]kernelID

	// Reducible is the set of productions with a dot-at-end item in this
	// state's closure.
	Reducible map[ProductionNum]struct{}

	// ShiftReduce holds, for SHIFTREDUCE grammars only, the terminals whose
	// shift completes a production with no other item competing over them
	// (§4.D's default shift-reduce candidate). No goto edge or target state
	// is generated for these terminals; the parsing table encodes a direct
	// shift-reduce cell instead.
	ShiftReduce map[*symbol.Symbol]ProductionNum

	// Ancestors[sym] lists the states with a goto(_, sym) edge into this
	// state -- the "previous states" lane tracing walks backward through.
	Ancestors map[*symbol.Symbol][]StateNum

	// SplitFrom is non-zero when this state was produced by splitting
	// another state during lane tracing (§4.E); it names the original.
	SplitFrom StateNum
	IsSplit   bool
}

// Automaton is the canonical LR(0) collection before lookahead assignment
// and lane-tracing state splitting.
type Automaton struct {
	InitialState kernelID
	States       map[kernelID]*State
	byNum        []*State
}

func (a *Automaton) ByNum(n StateNum) *State { return a.byNum[n] }
func (a *Automaton) StateCount() int         { return len(a.byNum) }

func buildLR0Automaton(prods *Set, start *symbol.Symbol, defaultReduce bool) (*Automaton, error) {
	if start != symbol.Start {
		return nil, fmt.Errorf("grammar: passed symbol is not the augmented start symbol")
	}

	automaton := &Automaton{States: map[kernelID]*State{}}

	startProds := prods.ByLHS(start)
	if len(startProds) == 0 {
		return nil, fmt.Errorf("grammar: no production for the start symbol")
	}
	initialItem, err := newItem(startProds[0], 0)
	if err != nil {
		return nil, err
	}
	initialKernel, err := newKernel([]*Item{initialItem})
	if err != nil {
		return nil, err
	}
	automaton.InitialState = initialKernel.id

	known := map[kernelID]struct{}{initialKernel.id: {}}
	pending := []*Kernel{initialKernel}
	num := StateNumInitial

	for len(pending) > 0 {
		var next []*Kernel
		for _, k := range pending {
			state, neighbours, err := buildStateAndNeighbours(k, prods, defaultReduce)
			if err != nil {
				return nil, err
			}
			state.Num = num
			num++
			automaton.States[state.id] = state
			for _, nk := range neighbours {
				if _, ok := known[nk.id]; ok {
					continue
				}
				known[nk.id] = struct{}{}
				next = append(next, nk)
			}
		}
		pending = next
	}

	automaton.byNum = make([]*State, len(automaton.States))
	for _, st := range automaton.States {
		automaton.byNum[st.Num] = st
	}

	// Ancestors: for every state and every goto edge out of it, record the
	// edge as an incoming ancestor edge on the target.
	for _, st := range automaton.byNum {
		for sym, targetID := range st.Next {
			target := automaton.States[targetID]
			if target.Ancestors == nil {
				target.Ancestors = map[*symbol.Symbol][]StateNum{}
			}
			target.Ancestors[sym] = append(target.Ancestors[sym], st.Num)
		}
	}

	return automaton, nil
}

func buildStateAndNeighbours(k *Kernel, prods *Set, defaultReduce bool) (*State, []*Kernel, error) {
	closure, err := closureOf(k, prods)
	if err != nil {
		return nil, nil, err
	}
	neighbours, next, shiftReduce, err := neighbourKernels(closure, prods, defaultReduce)
	if err != nil {
		return nil, nil, err
	}

	reducible := map[ProductionNum]struct{}{}
	for _, it := range closure {
		if it.Reducible {
			reducible[it.Prod] = struct{}{}
		}
	}

	return &State{
		Kernel:      k,
		Next:        next,
		Reducible:   reducible,
		ShiftReduce: shiftReduce,
	}, neighbours, nil
}

func closureOf(k *Kernel, prods *Set) ([]*Item, error) {
	items := append([]*Item{}, k.Items...)
	known := map[itemID]struct{}{}
	for _, it := range items {
		known[it.id] = struct{}{}
	}
	pending := append([]*Item{}, items...)

	for len(pending) > 0 {
		var nextPending []*Item
		for _, it := range pending {
			if it.DottedSymbol == nil || it.DottedSymbol.IsTerminal() {
				continue
			}
			for _, p := range prods.ByLHS(it.DottedSymbol) {
				ni, err := newItem(p, 0)
				if err != nil {
					return nil, err
				}
				if _, ok := known[ni.id]; ok {
					continue
				}
				known[ni.id] = struct{}{}
				items = append(items, ni)
				nextPending = append(nextPending, ni)
			}
		}
		pending = nextPending
	}
	return items, nil
}

// neighbourKernels computes the goto kernels out of one state's closure. When
// defaultReduce is set, a terminal whose sole advancing item completes its
// production (dot+1 == len(RHS), §4.D's default shift-reduce
// candidate) is pulled out into shiftReduce instead of generating a goto
// kernel for it -- no dedicated reduce-only state is ever built for it.
func neighbourKernels(items []*Item, prods *Set, defaultReduce bool) ([]*Kernel, map[*symbol.Symbol]kernelID, map[*symbol.Symbol]ProductionNum, error) {
	bySymbol := map[*symbol.Symbol][]*Item{}
	var order []*symbol.Symbol
	for _, it := range items {
		if it.DottedSymbol == nil {
			continue
		}
		p, ok := prods.ByNum(it.Prod)
		if !ok {
			return nil, nil, nil, fmt.Errorf("grammar: production %d not found", it.Prod)
		}
		advanced, err := newItem(p, it.Dot+1)
		if err != nil {
			return nil, nil, nil, err
		}
		if _, seen := bySymbol[it.DottedSymbol]; !seen {
			order = append(order, it.DottedSymbol)
		}
		bySymbol[it.DottedSymbol] = append(bySymbol[it.DottedSymbol], advanced)
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Order() < order[j].Order() })

	next := map[*symbol.Symbol]kernelID{}
	shiftReduce := map[*symbol.Symbol]ProductionNum{}
	var kernels []*Kernel
	for _, sym := range order {
		advancing := bySymbol[sym]
		if defaultReduce && sym.IsTerminal() && len(advancing) == 1 && advancing[0].Reducible {
			shiftReduce[sym] = advancing[0].Prod
			continue
		}
		k, err := newKernel(advancing)
		if err != nil {
			return nil, nil, nil, err
		}
		next[sym] = k.id
		kernels = append(kernels, k)
	}
	return kernels, next, shiftReduce, nil
}
