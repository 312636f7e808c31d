package grammar

import (
	"fmt"
)

// RepairValue is one state's continuation-automaton value (§4.G, §3):
// positive means shift that terminal's token number, negative means reduce
// by production (-value), zero means the state has no legal continuation
// and a syntax error there is fatal.
type RepairValue int

func buildRepairTable(automaton *Automaton, prods *Set) ([]RepairValue, error) {
	values := make([]RepairValue, automaton.StateCount())
	for _, state := range automaton.byNum {
		v, err := repairValueOf(state, prods, automaton)
		if err != nil {
			return nil, err
		}
		values[state.Num] = v
	}
	return values, nil
}

// repairValueOf implements §4.G: take the state's first item; if its dot is
// past the end, the value is "reduce by that production". Otherwise, if the
// dotted symbol is a terminal, the value is "shift that terminal". Failing
// both, scan the closure in order for the first reduce or terminal-shift
// item and adopt that.
func repairValueOf(state *State, prods *Set, automaton *Automaton) (RepairValue, error) {
	items, err := closureOf(state.Kernel, prods)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("grammar: state %d has no items", state.Num)
	}

	first := items[0]
	if v, ok := repairValueOfItem(first); ok {
		return v, nil
	}
	for _, it := range items[1:] {
		if v, ok := repairValueOfItem(it); ok {
			return v, nil
		}
	}
	return 0, nil
}

func repairValueOfItem(it *Item) (RepairValue, bool) {
	if it.Reducible {
		return RepairValue(-int(it.Prod)), true
	}
	if it.DottedSymbol != nil && it.DottedSymbol.IsTerminal() {
		return RepairValue(it.DottedSymbol.TokenNumber()), true
	}
	return 0, false
}
