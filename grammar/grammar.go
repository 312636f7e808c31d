package grammar

import (
	"fmt"

	"github.com/halcyon-lang/sdtgen/symbol"
)

// maxSplitRounds bounds the detect-trace-split loop (§4.E). Each round can
// only grow the automaton, and a genuinely LALR(1) grammar converges in the
// first round (no conflict groups found at all), so this is a generous
// backstop against a pathological grammar rather than a tuned constant.
const maxSplitRounds = 64

// Grammar is a fully built translation grammar: the interned symbol table,
// the production set, the (possibly split) CFSM, its lookahead assignment,
// and everything derived from them (§4 end-to-end).
type Grammar struct {
	symbols       *symbol.Table
	nonterminals  []*symbol.Symbol
	prods         *Set
	automaton     *Automaton
	lookaheads    *Lookaheads
	table         *ParsingTable
	repair        []RepairValue
	errors        *Errors
	splitRounds   int
	config        Config
}

// Config mirrors the grammar file's OPTIONS section and DEFAULT constants
// (§9): { ambiguous, error_repair, default_reduce, split_states, context,
// default_cost }. Every boolean defaults to off, matching §3's "grammar-
// building errors" list, where an ambiguous shift/reduce with no precedence
// or a reduce-reduce collision without SPLITSTATES is fatal unless the
// corresponding option opts into the more permissive behavior.
type Config struct {
	// Ambiguous lets an unresolvable shift-reduce conflict (no precedence,
	// or equal precedence with no associativity) default to shift instead
	// of being a fatal grammar-building error.
	Ambiguous bool

	// ErrorRepair gates §4.B's steps/insert cost fixpoint and the
	// cheapest-derivation-first alternative sort; both only matter to the
	// runtime repair walk of §4.I, so grammars that never repair can skip
	// the extra fixpoint pass entirely.
	ErrorRepair bool

	// DefaultReduce gates §4.D's default shift-reduce construction: a
	// terminal that's the sole item advancing toward completing a
	// production gets a direct shift-reduce cell instead of its own goto
	// state.
	DefaultReduce bool

	// SplitStates gates the lane-tracing detect-trace-split loop (§4.E). A
	// reduce-reduce collision is fatal when this is off.
	SplitStates bool

	// Context and DefaultCost carry the DEFAULT section's CONTEXT=n and
	// COST=n constants through to the emitted table header (§6); the
	// grammar package itself doesn't consume them, the runtime repair
	// engine does (runtime.ParserTable.Context/DefCost).
	Context     int
	DefaultCost int
}

// Report summarizes the conflicts and errors a Build run produced, for the
// ambient "describe"/"show" tooling to print (§7).
type Report struct {
	ShiftReduceConflicts  []*ShiftReduceConflict
	ReduceReduceConflicts []*ReduceReduceConflict
	Errors                []*Error
	SplitRounds           int
	StateCount            int
}

// Source is the minimal input Build needs: an interned symbol table already
// populated with every terminal and nonterminal, the nonterminals in
// declaration order (needed to assign token numbers after terminals, §4.A),
// and the raw (LHS, RHS, action) triples for every production in the
// grammar-in-progress, in declaration order. The front end (package spec)
// is responsible for building this from parsed source.
type Source struct {
	Symbols      *symbol.Table
	Nonterminals []*symbol.Symbol
	Productions  []RawProduction

	// StartSymbol is the grammar's declared goal nonterminal. Production 1
	// is synthesized as `<goal> -> StartSymbol <eof>` (§3), the augmented
	// start production every LR(0) construction needs.
	StartSymbol *symbol.Symbol

	// Config is the OPTIONS/DEFAULT section read from the grammar file
	// (§9); see Config's doc for what each field gates.
	Config Config
}

// RawProduction is one declared alternative before production numbers are
// assigned.
type RawProduction struct {
	LHS    *symbol.Symbol
	RHS    []*symbol.Symbol
	Action int
}

// Build runs the whole pipeline of §4: symbol/production assembly, LR(0)
// automaton construction, FIRST/lookahead computation, lane-tracing state
// splitting until reduce-reduce collisions are resolved or proven
// unresolvable, parsing-table construction (which also resolves
// shift-reduce conflicts per §4.F), and the error-repair continuation
// table (§4.G).
func Build(src *Source) (*Grammar, *Report, error) {
	g := &Grammar{
		symbols:      src.Symbols,
		nonterminals: src.Nonterminals,
		errors:       newErrors(),
		config:       src.Config,
	}

	src.Symbols.AssignNonterminalNumbers(src.Nonterminals)

	if src.StartSymbol == nil || !src.StartSymbol.IsNonterminal() {
		return nil, nil, fmt.Errorf("grammar: start symbol must be a declared nonterminal")
	}

	prods := newSet()
	// Production 1 is always the synthetic start production, added first so
	// it gets ProductionNumStart (§3, §4.B).
	if _, err := prods.add(symbol.Start, []*symbol.Symbol{src.StartSymbol, symbol.EOF}, -1); err != nil {
		return nil, nil, fmt.Errorf("grammar: adding start production: %w", err)
	}
	for _, rp := range src.Productions {
		if _, err := prods.add(rp.LHS, rp.RHS, rp.Action); err != nil {
			return nil, nil, fmt.Errorf("grammar: adding production for %v: %w", rp.LHS, err)
		}
	}
	if src.Config.ErrorRepair {
		computeStepsInsert(prods)
		prods.SortAlternatives()
	}
	g.prods = prods

	automaton, err := buildLR0Automaton(prods, symbol.Start, src.Config.DefaultReduce)
	if err != nil {
		return nil, nil, fmt.Errorf("grammar: building LR(0) automaton: %w", err)
	}
	g.automaton = automaton

	first, err := computeFirstSet(prods)
	if err != nil {
		return nil, nil, fmt.Errorf("grammar: computing FIRST sets: %w", err)
	}

	lookaheads, err := computeLookaheads(automaton, prods, first)
	if err != nil {
		return nil, nil, fmt.Errorf("grammar: computing lookaheads: %w", err)
	}
	g.lookaheads = lookaheads

	if src.Config.SplitStates {
		salt := 0
		for round := 0; round < maxSplitRounds; round++ {
			groups, err := findConflictGroups(automaton, prods, lookaheads)
			if err != nil {
				return nil, nil, fmt.Errorf("grammar: finding conflict groups: %w", err)
			}
			if len(groups) == 0 {
				break
			}

			anyChanged := false
			for _, group := range groups {
				maxIters := automaton.StateCount() * len(group.items)
				if maxIters == 0 {
					maxIters = 1
				}
				lanes, resolved, unresolvable := traceLanes(group, automaton, prods, lookaheads, maxIters)
				if unresolvable {
					g.errors.add(newError("reduce-reduce", group.state,
						"productions %v collide with no spontaneous separation possible", group.prods))
					continue
				}
				if !resolved {
					g.errors.add(newError("reduce-reduce", group.state,
						"productions %v collide and lane tracing did not converge; resolving by declaration order", group.prods))
					continue
				}
				if applySplit(group, lanes, automaton, &salt) {
					anyChanged = true
				} else {
					g.errors.add(newError("reduce-reduce", group.state,
						"productions %v collide and no state split separates their lanes; resolving by declaration order", group.prods))
				}
			}
			g.splitRounds = round + 1
			if !anyChanged {
				break
			}

			// The split grew the automaton and rewired some goto edges, so
			// lookaheads must be recomputed from scratch over the new state set.
			lookaheads, err = computeLookaheads(automaton, prods, first)
			if err != nil {
				return nil, nil, fmt.Errorf("grammar: recomputing lookaheads after split: %w", err)
			}
			g.lookaheads = lookaheads
		}
	}

	table, err := g.buildParsingTable()
	if err != nil {
		return nil, nil, fmt.Errorf("grammar: building parsing table: %w", err)
	}
	g.table = table

	if !src.Config.SplitStates {
		for _, c := range table.ReduceReduceConflicts {
			g.errors.add(newError("reduce-reduce", c.State,
				"productions %v collide; enable the splitstates option to resolve via lane tracing", c.Prods))
		}
	}

	repair, err := buildRepairTable(automaton, prods)
	if err != nil {
		return nil, nil, fmt.Errorf("grammar: building repair table: %w", err)
	}
	g.repair = repair

	report := &Report{
		ShiftReduceConflicts:  table.ShiftReduceConflicts,
		ReduceReduceConflicts: table.ReduceReduceConflicts,
		Errors:                g.errors.List,
		SplitRounds:           g.splitRounds,
		StateCount:            automaton.StateCount(),
	}
	return g, report, nil
}

func (g *Grammar) Symbols() *symbol.Table      { return g.symbols }
func (g *Grammar) Nonterminals() []*symbol.Symbol { return g.nonterminals }
func (g *Grammar) Productions() *Set           { return g.prods }
func (g *Grammar) Automaton() *Automaton       { return g.automaton }
func (g *Grammar) Lookaheads() *Lookaheads     { return g.lookaheads }
func (g *Grammar) Table() *ParsingTable        { return g.table }
func (g *Grammar) RepairTable() []RepairValue  { return g.repair }
func (g *Grammar) Errors() *Errors             { return g.errors }
