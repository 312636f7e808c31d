package symbol

import "fmt"

// Action selects the behavior of Table.Lookup (§4.A).
type Action int

const (
	Lookup Action = iota
	Insert
	Delete
)

// Table is a hashed-chain intern table over (kind, name) pairs. It assigns
// each newly inserted symbol the next order id, which ordered sets use as
// their sort key.
type Table struct {
	buckets  [tableBuckets]map[string]*Symbol
	nextOrder int
	nextTermNum int
	nextNontermNum int
}

// tableBuckets is a fixed prime bucket count, per §4.A.
const tableBuckets = 257

func NewTable() *Table {
	t := &Table{
		nextOrder:      2, // 0 and 1 are reserved for EOF and Start
		nextTermNum:    2, // token number 0 is the ignored-regex sentinel, 1 is EOF
		nextNontermNum: 0,
	}
	for i := range t.buckets {
		t.buckets[i] = map[string]*Symbol{}
	}
	return t
}

func bucketOf(kind Kind, name string) int {
	h := uint32(14695981039346656037 % (1 << 32))
	h = fnv32(h, byte(kind))
	for i := 0; i < len(name); i++ {
		h = fnv32(h, name[i])
	}
	return int(h % tableBuckets)
}

func fnv32(h uint32, b byte) uint32 {
	h ^= uint32(b)
	h *= 16777619
	return h
}

// Lookup looks up, inserts, or deletes a symbol of the given kind and name,
// per §4.A's three-way Action parameter.
func (t *Table) Lookup(name string, kind Kind, action Action) (*Symbol, bool) {
	key := name
	bucket := t.buckets[bucketOf(kind, key)]
	existing, found := bucket[key]

	switch action {
	case Lookup:
		return existing, found
	case Delete:
		if found {
			delete(bucket, key)
		}
		return existing, found
	case Insert:
		if found {
			return existing, true
		}
		sym := t.alloc(name, kind)
		bucket[key] = sym
		return sym, false
	default:
		panic(fmt.Sprintf("symbol: unknown action %v", action))
	}
}

// alloc assigns the next order id and, for terminals/nonterminals, the next
// token number.
func (t *Table) alloc(name string, kind Kind) *Symbol {
	sym := &Symbol{
		kind:  kind,
		name:  name,
		order: t.nextOrder,
	}
	t.nextOrder++

	switch kind {
	case Terminal:
		sym.tokenNum = t.nextTermNum
		t.nextTermNum++
	case Nonterminal:
		// Assigned for real once all terminals are known; see AssignNonterminalNumbers.
	}
	return sym
}

// AssignNonterminalNumbers numbers nonterminals starting just after the
// highest terminal token number, per §4.A ("Nonterminal carries its token
// number (numbered after all terminals)"). Call once all terminals are
// interned.
func (t *Table) AssignNonterminalNumbers(nonterms []*Symbol) {
	base := t.nextTermNum
	for i, s := range nonterms {
		s.nontermTokenNum = base + i
	}
}

// TerminalCount returns one past the highest terminal token number: it
// counts the reserved token 0 slot and EOF along with every interned
// terminal.
func (t *Table) TerminalCount() int { return t.nextTermNum }

// Terminals returns every interned terminal (including aliases and EOF),
// sorted by token number then order, for table emission (§6's stringindex/
// inscost/delcost arrays are one entry per terminal token number).
func (t *Table) Terminals() []*Symbol {
	var out []*Symbol
	out = append(out, EOF)
	for _, bucket := range t.buckets {
		for _, sym := range bucket {
			if sym.kind == Terminal {
				out = append(out, sym)
			}
		}
	}
	sortSymbols(out)
	return out
}

func sortSymbols(syms []*Symbol) {
	for i := 1; i < len(syms); i++ {
		for j := i; j > 0 && less(syms[j], syms[j-1]); j-- {
			syms[j], syms[j-1] = syms[j-1], syms[j]
		}
	}
}

func less(a, b *Symbol) bool {
	if a.TokenNumber() != b.TokenNumber() {
		return a.TokenNumber() < b.TokenNumber()
	}
	return a.order < b.order
}

// NewAlias interns an alias terminal that shares base's token number but
// carries its own flags/costs (§3: "Aliases chain to a base terminal").
// Aliases do not consume a fresh token number; TokenNumber() on an alias
// forwards to its base.
func (t *Table) NewAlias(name string, base *Symbol) (*Symbol, error) {
	if base.kind != Terminal {
		return nil, fmt.Errorf("symbol: alias base %q is not a terminal", base.name)
	}
	if base.flags.Has(FlagAlias) {
		return nil, fmt.Errorf("symbol: alias-of-alias is not allowed: %q aliases %q", name, base.name)
	}
	key := name
	bucket := t.buckets[bucketOf(Terminal, key)]
	if _, found := bucket[key]; found {
		return nil, fmt.Errorf("symbol: duplicate terminal %q", name)
	}
	sym := &Symbol{
		kind:    Terminal,
		name:    name,
		order:   t.nextOrder,
		aliasOf: base,
	}
	sym.flags |= FlagAlias
	t.nextOrder++
	bucket[key] = sym
	return sym, nil
}
