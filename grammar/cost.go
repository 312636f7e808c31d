package grammar

import "github.com/halcyon-lang/sdtgen/symbol"

// infCost marks a production or nonterminal as not yet known to derive an
// all-terminal string in the steps/insert fixpoint below.
const infCost = 1 << 30

// computeStepsInsert implements §4.B's error-repair cost fixpoint:
// steps(p) = 1 + sum of min steps(q) over nonterminals on RHS (saturating
// at infinity until every nonterminal has a known derivation), insert(p) =
// sum of min insert(q) over those nonterminals plus the insertion cost of
// every terminal on RHS. Only called when error repair is enabled, since
// the costs exist solely to rank alternatives for the runtime repair walk
// (§4.I).
func computeStepsInsert(prods *Set) {
	minSteps := map[*symbol.Symbol]int{}
	minInsert := map[*symbol.Symbol]int{}
	for _, p := range prods.All() {
		if _, ok := minSteps[p.LHS]; !ok {
			minSteps[p.LHS] = infCost
			minInsert[p.LHS] = infCost
		}
	}

	for changed := true; changed; {
		changed = false
		for _, p := range prods.All() {
			steps := 1
			insert := 0
			ok := true
			for _, sym := range p.RHS {
				if sym.IsTerminal() {
					if sym.Flags().Has(symbol.FlagEmpty) {
						continue
					}
					insert += sym.InsertCost()
					continue
				}
				ns, nok := minSteps[sym]
				ni := minInsert[sym]
				if !nok || ns >= infCost {
					ok = false
					break
				}
				steps += ns
				insert += ni
			}
			if !ok {
				continue
			}
			p.Steps = steps
			p.Insert = insert
			if steps < minSteps[p.LHS] || (steps == minSteps[p.LHS] && insert < minInsert[p.LHS]) {
				minSteps[p.LHS] = steps
				minInsert[p.LHS] = insert
				changed = true
			}
		}
	}

	// Any production whose RHS still depends on a nonterminal with no known
	// derivation (an unreachable recursive nonterminal) keeps the saturated
	// sentinel cost, so it always sorts last.
	for _, p := range prods.All() {
		if p.Steps == 0 && len(p.RHS) > 0 {
			hasNonterm := false
			for _, s := range p.RHS {
				if s.IsNonterminal() {
					hasNonterm = true
					break
				}
			}
			if hasNonterm {
				p.Steps = infCost
				p.Insert = infCost
			}
		}
	}
}
