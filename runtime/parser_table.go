package runtime

import (
	"github.com/halcyon-lang/sdtgen/compressor"
	"github.com/halcyon-lang/sdtgen/tables"
)

// ActionFunc decodes one parser table cell: state row, token column
// (terminal token numbers below TerminalCount, nonterminal goto columns
// at TerminalCount+i), returning the raw encoded next[] value (§3).
type ActionFunc func(state, token int) (int, error)

// DenseAction adapts a built but uncompressed *tables.Tables' sparse
// per-state action/goto rows to an ActionFunc.
func DenseAction(t *tables.Tables) ActionFunc {
	dense := make([][]int, t.ParserStateCount)
	for s, row := range t.ParserRows {
		r := make([]int, t.TokenCount)
		for _, c := range row {
			r[c.Token] = c.Next
		}
		dense[s] = r
	}
	return func(state, token int) (int, error) {
		return dense[state][token], nil
	}
}

// CompressedAction adapts a row-displacement-packed parser table (§4.H
// Parser) to an ActionFunc.
func CompressedAction(tab *compressor.RowDisplacementTable) ActionFunc {
	return tab.Lookup
}

// ParserTable bundles everything the queued-reduce interpreter and the
// repair engine need from a generator's build: the action/goto lookup,
// the per-production shape, and the per-terminal repair costs (§3, §4.G).
type ParserTable struct {
	Offsets          tables.Offsets
	TerminalCount    int
	TokenCount       int
	NonterminalCount int
	ParserStateCount int

	LHSToken  []int
	RHSLength []int
	Semantics []int

	InsCost []int
	DelCost []int
	Repair  []int

	Context int
	DefCost int

	Names       string
	StringIndex []int

	Action ActionFunc
}

// NewParserTable copies a tables.Tables' scalar fields and wires the given
// action lookup (dense or compressed) into a ParserTable.
func NewParserTable(t *tables.Tables, action ActionFunc) *ParserTable {
	return &ParserTable{
		Offsets:          t.Offsets,
		TerminalCount:    t.TerminalCount,
		TokenCount:       t.TokenCount,
		NonterminalCount: t.NonterminalCount,
		ParserStateCount: t.ParserStateCount,
		LHSToken:         t.LHSToken,
		RHSLength:        t.RHSLength,
		Semantics:        t.Semantics,
		InsCost:          t.InsCost,
		DelCost:          t.DelCost,
		Repair:           t.Repair,
		Context:          t.Meta.Context,
		DefCost:          t.Meta.DefCost,
		Names:            t.Names,
		StringIndex:      t.StringIndex,
		Action:           action,
	}
}

// TokenName looks up a token's display name from the names blob (§6), for
// repair messages.
func (pt *ParserTable) TokenName(tok int) string {
	if tok < 0 || tok+1 >= len(pt.StringIndex) {
		return "?"
	}
	return pt.Names[pt.StringIndex[tok]:pt.StringIndex[tok+1]]
}
