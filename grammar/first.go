package grammar

import (
	"fmt"

	"github.com/halcyon-lang/sdtgen/symbol"
)

// firstEntry is one nonterminal's FIRST set plus its epsilon-derivability
// flag.
type firstEntry struct {
	syms  map[*symbol.Symbol]struct{}
	empty bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{syms: map[*symbol.Symbol]struct{}{}}
}

func (e *firstEntry) add(sym *symbol.Symbol) bool {
	if _, ok := e.syms[sym]; ok {
		return false
	}
	e.syms[sym] = struct{}{}
	return true
}

func (e *firstEntry) addEmpty() bool {
	if e.empty {
		return false
	}
	e.empty = true
	return true
}

func (e *firstEntry) mergeExceptEmpty(other *firstEntry) bool {
	if other == nil {
		return false
	}
	changed := false
	for sym := range other.syms {
		if e.add(sym) {
			changed = true
		}
	}
	return changed
}

// FirstSet maps every nonterminal to its FIRST entry, computed to a
// fixpoint over the whole production set (§4.D preliminaries).
type FirstSet struct {
	set map[*symbol.Symbol]*firstEntry
}

func (f *FirstSet) entry(sym *symbol.Symbol) *firstEntry { return f.set[sym] }

// Of returns the terminals (and epsilon, via derivesEmpty) that can begin a string
// derived from sym.
func (f *FirstSet) Of(sym *symbol.Symbol) (syms []*symbol.Symbol, derivesEmpty bool) {
	e := f.set[sym]
	if e == nil {
		return nil, false
	}
	for s := range e.syms {
		syms = append(syms, s)
	}
	return syms, e.empty
}

// OfSequence computes FIRST of a RHS suffix starting at head, which is what
// the closure/lookahead computations of §4.D actually need.
func (f *FirstSet) OfSequence(seq []*symbol.Symbol, head int) (*symbol.Set, bool) {
	out := symbol.NewSet()
	if head >= len(seq) {
		return out, true
	}
	for _, sym := range seq[head:] {
		if sym.IsTerminal() {
			out.Insert(sym)
			return out, false
		}
		e := f.set[sym]
		if e == nil {
			return out, false
		}
		for s := range e.syms {
			out.Insert(s)
		}
		if !e.empty {
			return out, false
		}
	}
	return out, true
}

func computeFirstSet(prods *Set) (*FirstSet, error) {
	fst := &FirstSet{set: map[*symbol.Symbol]*firstEntry{}}
	for _, p := range prods.All() {
		if _, ok := fst.set[p.LHS]; ok {
			continue
		}
		fst.set[p.LHS] = newFirstEntry()
	}

	for {
		more := false
		for _, p := range prods.All() {
			acc := fst.set[p.LHS]
			changed, err := firstOfProduction(fst, acc, p)
			if err != nil {
				return nil, err
			}
			if changed {
				more = true
			}
		}
		if !more {
			break
		}
	}
	return fst, nil
}

func firstOfProduction(fst *FirstSet, acc *firstEntry, p *Production) (bool, error) {
	if p.IsEmpty() {
		return acc.addEmpty(), nil
	}
	for _, sym := range p.RHS {
		if sym.IsTerminal() {
			return acc.add(sym), nil
		}
		e := fst.set[sym]
		if e == nil {
			return false, fmt.Errorf("grammar: no FIRST entry for %v", sym)
		}
		changed := acc.mergeExceptEmpty(e)
		if !e.empty {
			return changed, nil
		}
	}
	return acc.addEmpty(), nil
}
