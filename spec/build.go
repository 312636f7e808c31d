package spec

import (
	"fmt"
	"strings"

	"github.com/halcyon-lang/sdtgen/grammar"
	"github.com/halcyon-lang/sdtgen/lexical"
	lexparser "github.com/halcyon-lang/sdtgen/lexical/parser"
	"github.com/halcyon-lang/sdtgen/symbol"
	"github.com/halcyon-lang/sdtgen/tables"
)

// Built is everything Build derives from a *File: the grammar source
// ready for grammar.Build, the regex entries ready for lexical.Compile,
// and the table-header metadata (§6) the grammar file's directives carry.
type Built struct {
	Source  *grammar.Source
	Entries []*lexical.Entry
	Meta    tables.Meta
}

// builder carries the interning state while walking a *File; kept
// separate from File itself so the AST stays a plain, mutation-free tree.
type builder struct {
	symbols    *symbol.Table
	nonterms   map[string]*symbol.Symbol
	nontermOrd []*symbol.Symbol
	terms      map[string]*symbol.Symbol
	skip       map[string]bool
	literals   map[string]*symbol.Symbol
	entries    []*lexical.Entry
	cost       int
}

// Build converts a parsed grammar file into the inputs grammar.Build and
// lexical.Compile need, interning every terminal/nonterminal along the
// way (§4.A).
func Build(f *File) (*Built, error) {
	b := &builder{
		symbols:  symbol.NewTable(),
		nonterms: map[string]*symbol.Symbol{},
		terms:    map[string]*symbol.Symbol{},
		skip:     map[string]bool{},
		literals: map[string]*symbol.Symbol{},
	}
	b.cost = f.Cost
	if b.cost <= 0 {
		b.cost = 1
	}
	for _, n := range f.Skips {
		b.skip[n] = true
	}

	for _, fr := range f.Fragments {
		b.entries = append(b.entries, &lexical.Entry{
			Kind:     lexparser.KindName(fr.Name),
			Pattern:  fr.Pattern,
			Fragment: true,
		})
	}

	install := map[string]bool{}
	for _, n := range f.Installs {
		install[n] = true
	}

	for _, td := range f.Terminals {
		if b.skip[td.Name] {
			b.entries = append(b.entries, &lexical.Entry{
				Kind:    lexparser.KindName(td.Name),
				Pattern: td.Pattern,
			})
			continue
		}
		sym, existed := b.symbols.Lookup(td.Name, symbol.Terminal, symbol.Insert)
		if existed {
			return nil, fmt.Errorf("spec: %d: duplicate terminal %q", td.Row, td.Name)
		}
		if install[td.Name] {
			sym.SetFlags(sym.Flags() | symbol.FlagInstall)
		}
		sym.SetInsertCost(b.cost)
		sym.SetDeleteCost(b.cost)
		b.terms[td.Name] = sym
		b.entries = append(b.entries, &lexical.Entry{
			Sym:     sym,
			Kind:    lexparser.KindName(td.Name),
			Pattern: td.Pattern,
		})
	}

	for _, r := range f.Rules {
		if _, found := b.nonterms[r.Name]; found {
			continue
		}
		sym, _ := b.symbols.Lookup(r.Name, symbol.Nonterminal, symbol.Insert)
		b.nonterms[r.Name] = sym
		b.nontermOrd = append(b.nontermOrd, sym)
	}

	var prods []grammar.RawProduction
	action := 0
	for _, r := range f.Rules {
		lhs := b.nonterms[r.Name]
		for _, alt := range r.Alts {
			rhs := make([]*symbol.Symbol, 0, len(alt))
			for _, s := range alt {
				sym, err := b.resolve(s)
				if err != nil {
					return nil, err
				}
				rhs = append(rhs, sym)
			}
			prods = append(prods, grammar.RawProduction{LHS: lhs, RHS: rhs, Action: action})
			action++
		}
	}

	if f.Start == "" {
		return nil, fmt.Errorf("spec: grammar has no #start directive")
	}
	start, ok := b.nonterms[f.Start]
	if !ok {
		return nil, fmt.Errorf("spec: #start names undeclared nonterminal %q", f.Start)
	}

	cfg, err := parseOptions(f.Options)
	if err != nil {
		return nil, err
	}

	meta := tables.Meta{Name: f.Start, Context: f.Context, DefCost: f.Cost}
	if meta.Context <= 0 {
		meta.Context = 1
	}
	if meta.DefCost <= 0 {
		meta.DefCost = 1
	}
	cfg.Context = meta.Context
	cfg.DefaultCost = meta.DefCost

	src := &grammar.Source{
		Symbols:      b.symbols,
		Nonterminals: b.nontermOrd,
		Productions:  prods,
		StartSymbol:  start,
		Config:       cfg,
	}
	return &Built{Source: src, Entries: b.entries, Meta: meta}, nil
}

// parseOptions maps the #options directive's name list onto grammar.Config's
// booleans (§9's OPTIONS section: AMBIGUOUS, ERRORREPAIR, SHIFTREDUCE,
// SPLITSTATES), each off unless named.
func parseOptions(names []string) (grammar.Config, error) {
	var cfg grammar.Config
	for _, name := range names {
		switch name {
		case "ambiguous":
			cfg.Ambiguous = true
		case "errorrepair":
			cfg.ErrorRepair = true
		case "shiftreduce":
			cfg.DefaultReduce = true
		case "splitstates":
			cfg.SplitStates = true
		default:
			return grammar.Config{}, fmt.Errorf("spec: unknown #options flag %q", name)
		}
	}
	return cfg, nil
}

// resolve looks up an RHS element: a quoted literal auto-declares (once)
// its own exact-match terminal; a bare name must already be a declared
// terminal or nonterminal.
func (b *builder) resolve(s RHSSymbol) (*symbol.Symbol, error) {
	if !s.Literal {
		if sym, ok := b.nonterms[s.Name]; ok {
			return sym, nil
		}
		if sym, ok := b.terms[s.Name]; ok {
			return sym, nil
		}
		return nil, fmt.Errorf("spec: %d: undefined symbol %q", s.Row, s.Name)
	}

	if sym, ok := b.literals[s.Name]; ok {
		return sym, nil
	}
	name := "'" + s.Name + "'"
	sym, existed := b.symbols.Lookup(name, symbol.Terminal, symbol.Insert)
	if !existed {
		sym.SetInsertCost(b.cost)
		sym.SetDeleteCost(b.cost)
		b.entries = append(b.entries, &lexical.Entry{
			Sym:     sym,
			Kind:    lexparser.KindName(name),
			Pattern: escapeLiteral(s.Name),
		})
	}
	b.literals[s.Name] = sym
	return sym, nil
}

// literalMetachars mirrors lexical/parser's regex metacharacter set, so
// an inline quoted production symbol like 'x+y' matches those three
// bytes literally instead of being read as a quantifier.
const literalMetachars = `*+?.|()[]\`

func escapeLiteral(text string) string {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if strings.IndexByte(literalMetachars, c) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
