// Package lexical implements Component C (§4.C): turn every terminal's
// regex definition into one combined Berry-Sethi DFA and flatten it into
// the scanner table shape §3/§6 persist.
package lexical

import (
	"fmt"
	"strings"

	"github.com/halcyon-lang/sdtgen/lexical/dfa"
	"github.com/halcyon-lang/sdtgen/lexical/parser"
	"github.com/halcyon-lang/sdtgen/symbol"
)

// Entry is one terminal's regex source, keyed by the token number the
// resulting DFA end marker carries (§4.C: "each ri ends with a Reference to
// a terminal symbol carrying its token number, or a synthetic zero-token
// sentinel for ignore-regexes").
type Entry struct {
	Sym     *symbol.Symbol // nil for a named fragment or an ignored (#skip) regex
	Kind    parser.KindName
	Pattern string

	// Fragment entries name a reusable sub-pattern (§4.C external regex
	// syntax) and never themselves become DFA end markers; ordinary
	// entries reference fragments by name inside their own Pattern.
	Fragment bool
}

// CompileError reports one entry's regex that failed to parse or whose
// fragment references never resolved.
type CompileError struct {
	Kind   parser.KindName
	Cause  error
	Detail string
}

func (e *CompileError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("lexical: %v: %v (%v)", e.Kind, e.Cause, e.Detail)
	}
	return fmt.Sprintf("lexical: %v: %v", e.Kind, e.Cause)
}

func parseEntry(e *Entry) (parser.CPTree, *CompileError) {
	p := parser.NewParser(e.Kind, strings.NewReader(e.Pattern))
	tree, err := p.Parse()
	if err != nil {
		detail, cause := p.Error()
		return nil, &CompileError{Kind: e.Kind, Cause: cause, Detail: detail}
	}
	return tree, nil
}

// Compile parses every entry's regex source, resolves fragment references,
// converts the combined tree to byte level (UTF-8 code points to byte
// ranges, via the `internal/utf8` helper package), and runs subset
// construction. It returns the flattened scanner tables plus, keyed by
// token number, which terminals must install their matched lexeme into the
// token buffer (§3's install bit).
func Compile(entries []*Entry) (*dfa.ScannerTables, map[int]bool, []*CompileError) {
	var errs []*CompileError

	fragmentTrees := map[parser.KindName]parser.CPTree{}
	var ordinary []*Entry
	for _, e := range entries {
		tree, cerr := parseEntry(e)
		if cerr != nil {
			errs = append(errs, cerr)
			continue
		}
		if e.Fragment {
			fragmentTrees[e.Kind] = tree
			continue
		}
		ordinary = append(ordinary, e)
	}
	if len(errs) > 0 {
		return nil, nil, errs
	}

	if err := parser.CompleteFragments(fragmentTrees); err != nil {
		return nil, nil, []*CompileError{{Kind: parser.KindNameNil, Cause: err, Detail: "resolving fragment references"}}
	}

	cpTrees := map[parser.ModeKindID]parser.CPTree{}
	install := map[int]bool{}
	for _, e := range ordinary {
		tree, cerr := parseEntry(e)
		if cerr != nil {
			errs = append(errs, cerr)
			continue
		}
		if _, err := parser.ApplyFragments(tree, fragmentTrees); err != nil {
			errs = append(errs, &CompileError{Kind: e.Kind, Cause: err})
			continue
		}
		tok := tokenOf(e)
		cpTrees[parser.ModeKindID(tok)] = tree
		if e.Sym != nil && e.Sym.Flags().Has(symbol.FlagInstall) {
			install[tok] = true
		}
	}
	if len(errs) > 0 {
		return nil, nil, errs
	}

	root, symTab, err := dfa.ConvertCPTreeToByteTree(cpTrees)
	if err != nil {
		return nil, nil, []*CompileError{{Kind: parser.KindNameNil, Cause: err}}
	}
	d := dfa.GenDFA(root, symTab)
	return dfa.GenScannerTables(d), install, nil
}

// tokenOf returns the token number an entry's end marker should carry: the
// terminal's real token number for ordinary entries, or 0 (reserved, §3)
// for an ignore-regex with no backing symbol.
func tokenOf(e *Entry) int {
	if e.Sym == nil {
		return symbol.TokenNumZero
	}
	return e.Sym.TokenNumber()
}
