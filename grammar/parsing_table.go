package grammar

import (
	"github.com/halcyon-lang/sdtgen/symbol"
)

// ActionType classifies one cell of the uncompressed action table (§3).
type ActionType int

const (
	ActionError ActionType = iota
	ActionShift
	ActionShiftReduce
	ActionReduce
	ActionAccept
)

// ActionEntry is one uncompressed action-table cell.
type ActionEntry struct {
	Type  ActionType
	State StateNum     // valid when Type == ActionShift
	Prod  ProductionNum // valid when Type is ActionReduce/ActionShiftReduce
}

// ReduceReduceConflict records a collision §4.D hands to the state
// splitter (§4.E).
type ReduceReduceConflict struct {
	State StateNum
	Sym   *symbol.Symbol
	Prods []ProductionNum
}

// ShiftReduceConflict is resolved immediately by §4.F and only recorded
// for the listing/report output.
type ShiftReduceConflict struct {
	State    StateNum
	Sym      *symbol.Symbol
	NextState StateNum
	Prod     ProductionNum
	Adopted  Decision
}

// ParsingTable is the uncompressed action/goto matrix plus the gotos
// needed before compression (§4.H consumes this).
type ParsingTable struct {
	Action       [][]ActionEntry // [state][terminal token number]
	GoTo         [][]StateNum    // [state][nonterminal token number - terminal count], -1 = error
	InitialState StateNum

	ShiftReduceConflicts  []*ShiftReduceConflict
	ReduceReduceConflicts []*ReduceReduceConflict
}

type tableBuilder struct {
	g          *Grammar
	automaton  *Automaton
	prods      *Set
	lookaheads *Lookaheads
	termCount  int
	nontermCount int
}

func (g *Grammar) buildParsingTable() (*ParsingTable, error) {
	b := &tableBuilder{
		g:            g,
		automaton:    g.automaton,
		prods:        g.prods,
		lookaheads:   g.lookaheads,
		termCount:    g.symbols.TerminalCount(),
		nontermCount: len(g.nonterminals),
	}
	return b.build()
}

func (b *tableBuilder) build() (*ParsingTable, error) {
	n := b.automaton.StateCount()
	tab := &ParsingTable{
		Action:       make([][]ActionEntry, n),
		GoTo:         make([][]StateNum, n),
		InitialState: b.automaton.States[b.automaton.InitialState].Num,
	}
	for s := 0; s < n; s++ {
		tab.Action[s] = make([]ActionEntry, b.termCount)
		row := make([]StateNum, b.nontermCount)
		for i := range row {
			row[i] = -1
		}
		tab.GoTo[s] = row
	}

	for _, state := range b.automaton.byNum {
		// Shifts and gotos.
		for sym, targetID := range state.Next {
			target := b.automaton.States[targetID]
			if sym.IsTerminal() {
				if err := b.writeShift(tab, state, sym, target.Num); err != nil {
					return nil, err
				}
			} else {
				tab.GoTo[state.Num][b.nontermIndex(sym)] = target.Num
			}
		}

		// Default shift-reduce candidates (§4.D): no target state exists for
		// these, so they write directly instead of going through writeShift.
		for sym, prodNum := range state.ShiftReduce {
			if err := b.writeShiftReduce(tab, state, sym, prodNum); err != nil {
				return nil, err
			}
		}

		// Reduces, keyed by the reducible item's lookahead set.
		byTerm := map[*symbol.Symbol][]ProductionNum{}
		for prodNum := range state.Reducible {
			p, ok := b.prods.ByNum(prodNum)
			if !ok {
				continue
			}
			// Item identity is (production, dot) alone, so the reducible
			// item for p in this state is just p dotted past its raw RHS
			// -- no itemset search needed.
			it, err := newItem(p, len(p.RHS))
			if err != nil {
				return nil, err
			}
			la := b.lookaheads.OfItem(state, it)
			for _, t := range la.Slice() {
				byTerm[t] = append(byTerm[t], prodNum)
			}
		}
		for sym, prodNums := range byTerm {
			for _, prodNum := range prodNums {
				p, _ := b.prods.ByNum(prodNum)
				if p.LHS == symbol.Start {
					tab.Action[state.Num][sym.TokenNumber()] = ActionEntry{Type: ActionAccept}
					continue
				}
				if err := b.writeReduce(tab, state, sym, prodNum); err != nil {
					return nil, err
				}
			}
		}
	}

	return tab, nil
}

// nontermIndex maps a nonterminal's token number (assigned right after the
// last terminal, see symbol.Table.AssignNonterminalNumbers) back down to a
// dense 0-based index for the GoTo table.
func (b *tableBuilder) nontermIndex(sym *symbol.Symbol) int {
	return sym.TokenNumber() - b.termCount
}

func (b *tableBuilder) writeShift(tab *ParsingTable, state *State, sym *symbol.Symbol, target StateNum) error {
	cur := tab.Action[state.Num][sym.TokenNumber()]
	if cur.Type == ActionReduce {
		dec, err := b.g.resolveShiftReduce(state.Num, sym, mustProd(b.prods, cur.Prod))
		conflict := &ShiftReduceConflict{State: state.Num, Sym: sym, NextState: target, Prod: cur.Prod}
		tab.ShiftReduceConflicts = append(tab.ShiftReduceConflicts, conflict)
		if err != nil {
			b.g.errors.add(err.(*Error))
		}
		conflict.Adopted = dec
		if dec == DecisionReduce {
			return nil
		}
	}
	tab.Action[state.Num][sym.TokenNumber()] = ActionEntry{Type: ActionShift, State: target}
	return nil
}

// writeShiftReduce writes a default shift-reduce cell (§4.D), resolving
// against a reduce already written on the same cell exactly as writeShift
// would resolve against a plain shift.
func (b *tableBuilder) writeShiftReduce(tab *ParsingTable, state *State, sym *symbol.Symbol, prod ProductionNum) error {
	cur := tab.Action[state.Num][sym.TokenNumber()]
	if cur.Type == ActionReduce {
		dec, err := b.g.resolveShiftReduce(state.Num, sym, mustProd(b.prods, cur.Prod))
		conflict := &ShiftReduceConflict{State: state.Num, Sym: sym, Prod: cur.Prod}
		tab.ShiftReduceConflicts = append(tab.ShiftReduceConflicts, conflict)
		if err != nil {
			b.g.errors.add(err.(*Error))
		}
		conflict.Adopted = dec
		if dec == DecisionReduce {
			return nil
		}
	}
	tab.Action[state.Num][sym.TokenNumber()] = ActionEntry{Type: ActionShiftReduce, Prod: prod}
	return nil
}

func (b *tableBuilder) writeReduce(tab *ParsingTable, state *State, sym *symbol.Symbol, prod ProductionNum) error {
	cur := tab.Action[state.Num][sym.TokenNumber()]
	switch cur.Type {
	case ActionReduce:
		if cur.Prod == prod {
			return nil
		}
		tab.ReduceReduceConflicts = append(tab.ReduceReduceConflicts, &ReduceReduceConflict{
			State: state.Num, Sym: sym, Prods: []ProductionNum{cur.Prod, prod},
		})
		// Earlier-declared production wins by default; real resolution
		// happens via state splitting (§4.E) before this point is reached
		// in practice.
		if prod < cur.Prod {
			tab.Action[state.Num][sym.TokenNumber()] = ActionEntry{Type: ActionReduce, Prod: prod}
		}
		return nil
	case ActionShift:
		dec, err := b.g.resolveShiftReduce(state.Num, sym, mustProd(b.prods, prod))
		conflict := &ShiftReduceConflict{State: state.Num, Sym: sym, NextState: cur.State, Prod: prod}
		tab.ShiftReduceConflicts = append(tab.ShiftReduceConflicts, conflict)
		if err != nil {
			b.g.errors.add(err.(*Error))
		}
		conflict.Adopted = dec
		if dec == DecisionReduce {
			tab.Action[state.Num][sym.TokenNumber()] = ActionEntry{Type: ActionReduce, Prod: prod}
		}
		return nil
	case ActionShiftReduce:
		dec, err := b.g.resolveShiftReduce(state.Num, sym, mustProd(b.prods, prod))
		conflict := &ShiftReduceConflict{State: state.Num, Sym: sym, Prod: prod}
		tab.ShiftReduceConflicts = append(tab.ShiftReduceConflicts, conflict)
		if err != nil {
			b.g.errors.add(err.(*Error))
		}
		conflict.Adopted = dec
		if dec == DecisionReduce {
			tab.Action[state.Num][sym.TokenNumber()] = ActionEntry{Type: ActionReduce, Prod: prod}
		}
		return nil
	}
	tab.Action[state.Num][sym.TokenNumber()] = ActionEntry{Type: ActionReduce, Prod: prod}
	return nil
}

func mustProd(s *Set, n ProductionNum) *Production {
	p, _ := s.ByNum(n)
	return p
}
