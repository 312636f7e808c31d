package grammar

import (
	"github.com/halcyon-lang/sdtgen/symbol"
)

// Decision is the outcome of resolving one shift-reduce conflict (§4.F).
type Decision int

const (
	DecisionShift Decision = iota
	DecisionReduce
)

// resolveShiftReduce implements §4.F exactly: let reduceprec be the
// precedence of the last terminal on the reducing production's RHS; let
// shiftprec/assoc be the shift terminal's own declared values (no averaging
// across productions is done and no warning is recorded). Reduce wins when
// reduceprec > shiftprec, or when they're equal and assoc is Left; shift
// wins otherwise. Missing precedence on either side, or an equal precedence
// with assoc None, is fatal unless Config.Ambiguous is set, in which case
// shift wins.
func (g *Grammar) resolveShiftReduce(state StateNum, shiftTerm *symbol.Symbol, reducing *Production) (Decision, error) {
	lastTerm := lastTerminalOf(reducing)
	if lastTerm == nil {
		if g.config.Ambiguous {
			return DecisionShift, nil
		}
		return DecisionShift, newError("ambiguity", state,
			"production %d has no terminal to carry precedence for reduce side of shift/reduce conflict on %v",
			reducing.Num, shiftTerm)
	}

	reducePrec, hasReducePrec := lastTerm.Precedence()
	shiftPrec, hasShiftPrec := shiftTerm.Precedence()
	if !hasReducePrec || !hasShiftPrec {
		if g.config.Ambiguous {
			return DecisionShift, nil
		}
		return DecisionShift, newError("ambiguity", state,
			"shift/reduce conflict on %v (production %d) has no precedence on one side", shiftTerm, reducing.Num)
	}

	switch {
	case reducePrec > shiftPrec:
		return DecisionReduce, nil
	case reducePrec < shiftPrec:
		return DecisionShift, nil
	default:
		switch shiftTerm.Associativity() {
		case symbol.AssocLeft:
			return DecisionReduce, nil
		case symbol.AssocRight:
			return DecisionShift, nil
		default:
			if g.config.Ambiguous {
				return DecisionShift, nil
			}
			return DecisionShift, newError("ambiguity", state,
				"shift/reduce conflict on %v (production %d) has equal precedence and no associativity", shiftTerm, reducing.Num)
		}
	}
}

func lastTerminalOf(p *Production) *symbol.Symbol {
	for i := len(p.RHS) - 1; i >= 0; i-- {
		if p.RHS[i].IsTerminal() {
			return p.RHS[i]
		}
	}
	return nil
}
