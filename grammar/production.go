package grammar

import (
	"fmt"

	"github.com/halcyon-lang/sdtgen/symbol"
)

// ProductionNum is a production's 1-indexed number. Production 1 is always
// the synthetic start production `<Goal> -> <start> <sentinel>` (§3).
type ProductionNum int

const (
	ProductionNumNil   ProductionNum = 0
	ProductionNumStart ProductionNum = 1
	ProductionNumMin   ProductionNum = 2
)

// Production is the standardized production record of §3/§4.B: LHS symbol,
// RHS symbol sequence, an effective length with trailing epsilon-flagged
// terminals stripped (but kept in the raw RHS), a semantic-action number,
// and the steps/insert keys error repair needs to rank alternatives.
type Production struct {
	Num    ProductionNum
	LHS    *symbol.Symbol
	RHS    []*symbol.Symbol
	Action int

	// EffectiveLen is the index past the last non-epsilon terminal in RHS.
	EffectiveLen int

	// Steps is the minimum number of derivation expansions needed to reach
	// an all-terminal string from this production; Insert is the summed
	// minimum insertion cost of that cheapest derivation. Both are only
	// meaningful when error repair is enabled (§4.B).
	Steps  int
	Insert int
}

func (p *Production) IsEmpty() bool { return len(p.RHS) == 0 }

func newProduction(num ProductionNum, lhs *symbol.Symbol, rhs []*symbol.Symbol, action int) (*Production, error) {
	if lhs == nil || !lhs.IsNonterminal() {
		return nil, fmt.Errorf("grammar: production LHS must be a nonterminal, got %v", lhs)
	}
	eff := len(rhs)
	for eff > 0 {
		s := rhs[eff-1]
		if s.IsTerminal() && s.Flags().Has(symbol.FlagEmpty) {
			eff--
			continue
		}
		break
	}
	return &Production{
		Num:          num,
		LHS:          lhs,
		RHS:          rhs,
		Action:       action,
		EffectiveLen: eff,
	}, nil
}

// Set holds every production of a grammar, grouped by LHS and numbered in
// LHS-token order (§4.B: "Build productions in LHS-token order").
type Set struct {
	byNum []*Production // index 0 unused, 1 is the start production
	byLHS map[*symbol.Symbol][]*Production
}

func newSet() *Set {
	return &Set{
		byNum: []*Production{nil},
		byLHS: map[*symbol.Symbol][]*Production{},
	}
}

func (s *Set) add(lhs *symbol.Symbol, rhs []*symbol.Symbol, action int) (*Production, error) {
	num := ProductionNum(len(s.byNum))
	if num == ProductionNumNil {
		num = ProductionNumStart
	}
	p, err := newProduction(num, lhs, rhs, action)
	if err != nil {
		return nil, err
	}
	s.byNum = append(s.byNum, p)
	s.byLHS[lhs] = append(s.byLHS[lhs], p)
	return p, nil
}

func (s *Set) ByNum(n ProductionNum) (*Production, bool) {
	if n <= 0 || int(n) >= len(s.byNum) {
		return nil, false
	}
	return s.byNum[n], true
}

func (s *Set) ByLHS(lhs *symbol.Symbol) []*Production { return s.byLHS[lhs] }

func (s *Set) All() []*Production { return s.byNum[1:] }

func (s *Set) Count() int { return len(s.byNum) - 1 }

// SortAlternatives orders each nonterminal's alternatives by (Steps,
// Insert) ascending, so the cheapest derivation is always first -- required
// by the error-repair continuation walk (§4.B, §4.G).
func (s *Set) SortAlternatives() {
	for lhs, prods := range s.byLHS {
		sorted := append([]*Production{}, prods...)
		insertionSortByStepsInsert(sorted)
		s.byLHS[lhs] = sorted
	}
}

func insertionSortByStepsInsert(prods []*Production) {
	for i := 1; i < len(prods); i++ {
		j := i
		for j > 0 && less(prods[j], prods[j-1]) {
			prods[j], prods[j-1] = prods[j-1], prods[j]
			j--
		}
	}
}

func less(a, b *Production) bool {
	if a.Steps != b.Steps {
		return a.Steps < b.Steps
	}
	return a.Insert < b.Insert
}
