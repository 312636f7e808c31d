package spec

// tokenKind enumerates the grammar-file lexer's token kinds, grounded on
// vartan's spec/lexer.go token-kind set but driven by a hand-rolled
// scanner rather than a compiled maleeni lexspec, since this tool's own
// generated scanner isn't available to bootstrap itself with.
type tokenKind int

const (
	tokKWFragment tokenKind = iota
	tokKWStart
	tokKWDefault
	tokKWInstall
	tokKWContext
	tokKWCost
	tokKWSkip
	tokKWOptions
	tokID
	tokTerminalPattern // 'regex text' (single-quoted)
	tokNumber
	tokColon
	tokOr
	tokSemicolon
	tokDirectiveMarker // #
	tokPosition        // $n
	tokAssign          // =
	tokNewline
	tokEOF
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	num  int
	row  int
}
