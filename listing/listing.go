// Package listing renders a built grammar and its conflict report as the
// human-readable per-state itemset/action/goto dump the CLI's show
// command prints, generalized from the teacher's descriptionWriter.
package listing

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/halcyon-lang/sdtgen/grammar"
	"github.com/halcyon-lang/sdtgen/symbol"
)

// Describe renders g's productions and CFSM states, followed by a summary
// of every conflict report recorded, in the teacher's section order:
// terminals, productions, states.
func Describe(g *grammar.Grammar, report *grammar.Report) string {
	var b strings.Builder

	writeHeading(&b, "Terminals")
	termRows := [][]string{{"#", "name", "install", "ins-cost", "del-cost"}}
	for _, t := range g.Symbols().Terminals() {
		termRows = append(termRows, []string{
			fmt.Sprint(t.TokenNumber()),
			t.Name(),
			fmt.Sprint(t.Flags().Has(symbol.FlagInstall)),
			fmt.Sprint(t.InsertCost()),
			fmt.Sprint(t.DeleteCost()),
		})
	}
	writeTable(&b, termRows)

	writeHeading(&b, "Productions")
	prodRows := [][]string{{"#", "production"}}
	for _, p := range g.Productions().All() {
		prodRows = append(prodRows, []string{fmt.Sprint(p.Num), formatProduction(p)})
	}
	writeTable(&b, prodRows)

	writeHeading(&b, "States")
	a := g.Automaton()
	for n := grammar.StateNum(0); int(n) < a.StateCount(); n++ {
		s := a.ByNum(n)
		fmt.Fprintf(&b, "\nState %d", s.Num)
		if s.IsSplit {
			fmt.Fprintf(&b, " (split from %d)", s.SplitFrom)
		}
		fmt.Fprintln(&b)
		for _, it := range s.Kernel.Items {
			p, _ := g.Productions().ByNum(it.Prod)
			fmt.Fprintf(&b, "  %s\n", formatItem(p, it.Dot))
		}
		for sym, target := range s.Next {
			kind := "goto"
			if sym.IsTerminal() {
				kind = "shift"
			}
			fmt.Fprintf(&b, "  %-5s %s -> kernel %s\n", kind, sym.Name(), string(target)[:8])
		}
		for prod := range s.Reducible {
			fmt.Fprintf(&b, "  reduce %d\n", prod)
		}
	}

	writeHeading(&b, "Conflicts")
	if len(report.ShiftReduceConflicts) == 0 && len(report.ReduceReduceConflicts) == 0 {
		fmt.Fprintln(&b, "none")
	}
	for _, c := range report.ShiftReduceConflicts {
		fmt.Fprintf(&b, "shift/reduce at state %d on %s: production %d, adopted %v\n", c.State, c.Sym.Name(), c.Prod, c.Adopted)
	}
	for _, c := range report.ReduceReduceConflicts {
		fmt.Fprintf(&b, "reduce/reduce at state %d on %s: productions %v\n", c.State, c.Sym.Name(), c.Prods)
	}
	fmt.Fprintf(&b, "\n%d state(s), %d split round(s)\n", report.StateCount, report.SplitRounds)

	return b.String()
}

func formatProduction(p *grammar.Production) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ->", p.LHS.Name())
	if len(p.RHS) == 0 {
		fmt.Fprint(&b, " ε")
	}
	for _, s := range p.RHS {
		fmt.Fprintf(&b, " %s", s.Name())
	}
	return b.String()
}

func formatItem(p *grammar.Production, dot int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ->", p.LHS.Name())
	for i, s := range p.RHS {
		if i == dot {
			fmt.Fprint(&b, " .")
		}
		fmt.Fprintf(&b, " %s", s.Name())
	}
	if dot >= len(p.RHS) {
		fmt.Fprint(&b, " .")
	}
	return b.String()
}

func writeHeading(b *strings.Builder, title string) {
	fmt.Fprintln(b, pterm.DefaultHeader.Sprint(title))
}

func writeTable(b *strings.Builder, rows [][]string) {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		for _, r := range rows {
			fmt.Fprintln(b, strings.Join(r, "\t"))
		}
		return
	}
	fmt.Fprintln(b, out)
}
