package runtime

import (
	"fmt"
	"strings"

	"github.com/halcyon-lang/sdtgen/tables"
)

// continuation walks the repair-value automaton (§4.G) from state s,
// collecting up to n terminals the grammar could legally see next: a
// positive RepairValue means "shift this terminal," a negative one means
// "reduce by this production and look again from the GOTO state," and
// zero means the state has no repair advice to offer.
func (p *Parser) continuation(state, n int) []int {
	var out []int
	vstates := []int{state}
	for len(out) < n {
		top := vstates[len(vstates)-1]
		if top < 0 || top >= len(p.table.Repair) {
			break
		}
		v := p.table.Repair[top]
		switch {
		case v == 0:
			return out
		case int(v) > 0:
			term := int(v)
			out = append(out, term)
			raw, err := p.table.Action(top, term)
			if err != nil {
				return out
			}
			shift, _, _, _, next, _ := tables.Decode(raw, p.table.Offsets)
			if !shift {
				return out
			}
			vstates = append(vstates, next)
		default:
			prod := -int(v)
			rhsLen := p.table.RHSLength[prod]
			if rhsLen > len(vstates)-1 {
				return out
			}
			vstates = vstates[:len(vstates)-rhsLen]
			lhs := p.table.LHSToken[prod]
			raw, err := p.table.Action(vstates[len(vstates)-1], lhs)
			if err != nil {
				return out
			}
			_, _, _, _, next, _ := tables.Decode(raw, p.table.Offsets)
			vstates = append(vstates, next)
		}
	}
	return out
}

// repairPlan is one candidate fix: delete the next `delete` lookahead
// tokens, then insert the given terminals ahead of whatever is left.
type repairPlan struct {
	delete int
	insert []int
	cost   int
}

const maxDeleteWindow = 4

// repairError implements a locally-least-cost repair (§4.I): it settles
// the stack, asks the repair-value automaton what terminals would let
// the parse continue, then searches a small window of delete-then-insert
// combinations for the cheapest one that gets the next real token (or a
// synthesized one) accepted.
//
// This is a bounded version of the full search: rather than growing the
// window until the remaining token budget is exhausted, it checks
// delete-window sizes 0..maxDeleteWindow and, for each, whether the
// continuation's first terminal would then be accepted, picking the
// cheapest success. A continuation terminal still unmatched past the
// configured Context window is charged floor(miss*DefCost/Context)
// instead of being searched indefinitely.
func (p *Parser) repairError() error {
	if err := p.drain(); err != nil {
		return err
	}
	state := p.vstates[len(p.vstates)-1]
	cont := p.continuation(state, p.table.Context)
	if len(cont) == 0 {
		return fmt.Errorf("runtime: no repair continuation available from state %d", state)
	}

	errLoc, err := p.peek()
	if err != nil {
		return err
	}

	var best *repairPlan
	for del := 0; del <= maxDeleteWindow; del++ {
		lookTok, err := p.peekAt(del)
		if err != nil {
			return err
		}
		deleteCost := 0
		ok := true
		for i := 0; i < del; i++ {
			t, err := p.peekAt(i)
			if err != nil {
				return err
			}
			if t.EOF {
				ok = false
				break
			}
			deleteCost += p.deleteCostOf(t)
		}
		if !ok {
			break
		}

		want := tokenNumberFor(lookTok)
		for k, term := range cont {
			if term != want {
				continue
			}
			plan := &repairPlan{delete: del, insert: append([]int{}, cont[:k]...), cost: deleteCost + p.contextPenalty(k)}
			if best == nil || plan.cost < best.cost {
				best = plan
			}
			break
		}

		insertCost := 0
		for k := 0; k < len(cont) && k < 3; k++ {
			insertCost += p.table.InsCost[cont[k]]
			plan := &repairPlan{delete: del, insert: append([]int{}, cont[:k+1]...), cost: deleteCost + insertCost}
			if best == nil || plan.cost < best.cost {
				best = plan
			}
		}
	}
	if best == nil {
		best = &repairPlan{delete: 0, insert: cont[:1], cost: p.table.InsCost[cont[0]]}
	}

	p.applyRepair(best, errLoc)
	return nil
}

func (p *Parser) deleteCostOf(t *Token) int {
	if t.TokenNum < 0 || t.TokenNum >= len(p.table.DelCost) {
		return p.table.DefCost
	}
	return p.table.DelCost[t.TokenNum]
}

// contextPenalty charges floor(miss*defcost/context) for a continuation
// match found miss terminals into the window, matching §4.G's context
// window cost model for deciding how far ahead a repair should look.
func (p *Parser) contextPenalty(miss int) int {
	if p.table.Context <= 0 {
		return miss * p.table.DefCost
	}
	return (miss * p.table.DefCost) / p.table.Context
}

func (p *Parser) applyRepair(plan *repairPlan, loc Location) {
	deleted := make([]*Token, plan.delete)
	for i := 0; i < plan.delete; i++ {
		deleted[i] = p.popPending()
	}

	var synth []*Token
	for _, term := range plan.insert {
		synth = append(synth, &Token{TokenNum: term, Loc: loc})
	}
	p.pending = append(append([]*Token{}, synth...), p.pending...)

	p.messages.Add(Message{Loc: loc, Severity: SeverityRepair, Text: repairMessage(p.table, plan, deleted)})
}

// repairMessage renders a plan in §4.I's "Deleted:"/"Inserted:"/"Replaced:
// ... with ..." forms.
func repairMessage(t *ParserTable, plan *repairPlan, deleted []*Token) string {
	deletedNames := make([]string, len(deleted))
	for i, tok := range deleted {
		deletedNames[i] = t.TokenName(tokenNumberFor(tok))
	}
	insertedNames := make([]string, len(plan.insert))
	for i, term := range plan.insert {
		insertedNames[i] = t.TokenName(term)
	}

	var b strings.Builder
	b.WriteString("syntax error: ")
	switch {
	case plan.delete > 0 && len(plan.insert) > 0:
		fmt.Fprintf(&b, "Replaced: %s with %s", strings.Join(deletedNames, " "), strings.Join(insertedNames, " "))
	case plan.delete > 0:
		fmt.Fprintf(&b, "Deleted: %s", strings.Join(deletedNames, " "))
	case len(plan.insert) > 0:
		fmt.Fprintf(&b, "Inserted: %s", strings.Join(insertedNames, " "))
	default:
		b.WriteString("unexpected token")
	}
	return b.String()
}
