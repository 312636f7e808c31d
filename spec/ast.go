package spec

// File is the parsed grammar-file AST: directives, terminal/fragment
// definitions, and production rules, in declaration order. The front end
// that builds this (package spec) is outside this tool's core per its own
// scope -- the core picks up wherever a *File has already been produced.
type File struct {
	Start   string
	Context int
	Cost    int

	// Options names every `#options` directive flag, e.g. "ambiguous",
	// "errorrepair", "shiftreduce", "splitstates" (§9's OPTIONS section).
	Options []string

	Installs []string
	Skips    []string

	Fragments []*TerminalDef
	Terminals []*TerminalDef
	Rules     []*Rule
}

// TerminalDef is one `name = 'pattern' ;` or `fragment name = 'pattern' ;`
// declaration.
type TerminalDef struct {
	Name    string
	Pattern string
	Row     int
}

// RHSSymbol is one element of a production alternative: either a
// reference to a declared nonterminal/terminal name, or an inline quoted
// literal that auto-declares its own terminal (the literal text itself,
// regex-escaped, becomes that terminal's pattern).
type RHSSymbol struct {
	Name    string
	Literal bool
	Row     int
}

// Rule is one nonterminal's full alternative set.
type Rule struct {
	Name string
	Alts [][]RHSSymbol
	Row  int
}
