// Package tables assembles the generator's in-memory table structures
// (§3 Parser tables (persisted)) from a built grammar.Grammar and a
// compiled scanner, and persists them in the two wire formats of §6: an
// uncompressed dense dump and a row-displacement-compressed dump.
package tables

import (
	"github.com/halcyon-lang/sdtgen/compressor"
	"github.com/halcyon-lang/sdtgen/grammar"
	"github.com/halcyon-lang/sdtgen/lexical/dfa"
	"github.com/halcyon-lang/sdtgen/symbol"
)

// Offsets are the parser's next[] cell encoding boundaries (§3): chosen so
// every production number fits below Shift and every state number fits
// below -Accept, keeping shift/shift-reduce/reduce/accept/error
// unambiguous in one signed int per cell.
type Offsets struct {
	Shift  int
	Accept int
}

func NewOffsets(prodCount, stateCount int) Offsets {
	return Offsets{
		Shift:  prodCount + 1,
		Accept: -(stateCount + 1),
	}
}

// encodeShift biases by Shift+1, not Shift, so that state 0 (a legal goto
// target, e.g. the initial state reappearing via a cycle) still decodes
// strictly above Shift and is never mistaken for a shift-reduce cell.
func (o Offsets) encodeShift(state grammar.StateNum) int { return o.Shift + 1 + int(state) }
func (o Offsets) encodeReduce(prod grammar.ProductionNum) int {
	return -int(prod)
}
func (o Offsets) encodeShiftReduce(prod grammar.ProductionNum) int { return int(prod) }
func (o Offsets) encodeAccept() int                                { return o.Accept }

// Decode reverses encodeShift/encodeReduce/encodeAccept per §3's table.
func Decode(next int, o Offsets) (shift bool, shiftReduce bool, reduce bool, accept bool, state int, prod int) {
	switch {
	case next > o.Shift:
		return true, false, false, false, next - (o.Shift + 1), 0
	case next > 0 && next <= o.Shift:
		return false, true, false, false, 0, next
	case next < 0 && next > o.Accept:
		return false, false, true, false, 0, -next
	case next == o.Accept:
		return false, false, false, true, 0, 0
	default:
		return false, false, false, false, 0, 0
	}
}

// Meta carries the grammar-input-file metadata that has no home inside
// grammar.Grammar or the scanner tables but is still part of the emitted
// header line (§6): the grammar's declared name, and the DEFAULT section's
// CONTEXT/COST values.
type Meta struct {
	Name    string
	Context int
	DefCost int
}

// Tables is the full persisted table set: every array named in §6's
// uncompressed-file description, held in memory in the shape the text and
// binary encoders both read from.
type Tables struct {
	Meta Meta

	TerminalCount    int // tnumber
	TokenCount       int // ntokens = tnumber + nonterminal count
	ScannerStateCount int // snumber
	NonterminalCount int // ntnumber
	ProductionCount  int // gnumber
	ParserStateCount int // pnumber

	// Scanner (§3, §4.C/§4.H).
	TokenIndex []int // length snumber+1
	TokenTable []int
	Final      []int // length snumber
	Install    []bool // length snumber
	ScannerRows [][]scannerCell // per state, sparse (byte-or-EOF, next) pairs

	// Costs, one entry per terminal token number (§3/§4.B).
	InsCost []int
	DelCost []int

	// Per-production (§3).
	LHSToken  []int
	RHSLength []int
	Semantics []int

	// Per parser state (§4.G).
	Repair []int

	// Name strings: one entry per terminal token number then per
	// nonterminal token number (tnumber+ntnumber), plus a trailing empty
	// slot per §6's "stringindex (tnumber+ntnumber+1)".
	StringIndex []int
	Names       string

	// Parser action/goto, one sparse row per state (§3's combined
	// action-or-goto next[] encoding: a goto cell is just an encoded
	// shift to the target state, since there is nothing to disambiguate).
	ParserRows [][]actionCell

	Offsets Offsets
}

type scannerCell struct {
	Byte int // 0-255 or dfa.EOFColumn
	Next int
}

type actionCell struct {
	Token int
	Next  int
}

// Build assembles a Tables from a finished grammar, its compiled scanner,
// the per-terminal install-bit map lexical.Compile returned, and the
// grammar file's declared metadata.
func Build(g *grammar.Grammar, scan *dfa.ScannerTables, install map[int]bool, meta Meta) *Tables {
	t := &Tables{Meta: meta}

	terms := g.Symbols().Terminals()
	nonterms := g.Nonterminals()
	t.TerminalCount = len(terms)
	t.NonterminalCount = len(nonterms)
	t.TokenCount = t.TerminalCount + t.NonterminalCount
	t.ProductionCount = g.Productions().Count()
	t.ParserStateCount = g.Automaton().StateCount()
	t.ScannerStateCount = scan.StateCount

	t.buildScanner(scan, install)
	t.buildCosts(terms)
	t.buildProductions(g)
	t.buildRepair(g)
	t.buildNames(terms, nonterms)
	t.Offsets = NewOffsets(t.ProductionCount, t.ParserStateCount)
	t.buildParserRows(g, t.Offsets)

	return t
}

func (t *Tables) buildScanner(scan *dfa.ScannerTables, install map[int]bool) {
	t.TokenIndex = append([]int{}, scan.TokenIndex...)
	t.TokenTable = append([]int{}, scan.TokenTable...)
	t.Final = append([]int{}, scan.Final...)

	t.Install = make([]bool, scan.StateCount)
	for s := 1; s < scan.StateCount; s++ {
		for _, tok := range scan.TokenTable[scan.TokenIndex[s]:scan.TokenIndex[s+1]] {
			if install[tok] {
				t.Install[s] = true
				break
			}
		}
	}

	const rowWidth = 257 // one per byte (0-255) plus dfa.EOFColumn
	t.ScannerRows = make([][]scannerCell, scan.StateCount)
	for s := 0; s < scan.StateCount; s++ {
		var row []scannerCell
		for b := 0; b < rowWidth; b++ {
			next := scan.Transition[s*rowWidth+b]
			if next == 0 {
				continue
			}
			row = append(row, scannerCell{Byte: b, Next: next})
		}
		t.ScannerRows[s] = row
	}
}

func (t *Tables) buildCosts(terms []*symbol.Symbol) {
	t.InsCost = make([]int, len(terms))
	t.DelCost = make([]int, len(terms))
	for i, s := range terms {
		t.InsCost[i] = s.InsertCost()
		t.DelCost[i] = s.DeleteCost()
	}
}

func (t *Tables) buildProductions(g *grammar.Grammar) {
	n := t.ProductionCount
	t.LHSToken = make([]int, n)
	t.RHSLength = make([]int, n)
	t.Semantics = make([]int, n)
	for i, p := range g.Productions().All() {
		t.LHSToken[i] = p.LHS.TokenNumber()
		t.RHSLength[i] = p.EffectiveLen
		t.Semantics[i] = p.Action
	}
}

func (t *Tables) buildRepair(g *grammar.Grammar) {
	rv := g.RepairTable()
	t.Repair = make([]int, len(rv))
	for i, v := range rv {
		t.Repair[i] = int(v)
	}
}

func (t *Tables) buildNames(terms []*symbol.Symbol, nonterms []*symbol.Symbol) {
	var names []string
	for _, s := range terms {
		names = append(names, s.Name())
	}
	for _, s := range nonterms {
		names = append(names, s.Name())
	}
	index := make([]int, len(names)+1)
	var buf []byte
	for i, n := range names {
		index[i] = len(buf)
		buf = append(buf, n...)
	}
	index[len(names)] = len(buf)
	t.StringIndex = index
	t.Names = string(buf)
}

func (t *Tables) buildParserRows(g *grammar.Grammar, o Offsets) {
	tab := g.Table()
	rows := make([][]actionCell, t.ParserStateCount)
	for s := 0; s < t.ParserStateCount; s++ {
		var row []actionCell
		for tok, entry := range tab.Action[s] {
			switch entry.Type {
			case grammar.ActionShift:
				row = append(row, actionCell{Token: tok, Next: o.encodeShift(entry.State)})
			case grammar.ActionShiftReduce:
				row = append(row, actionCell{Token: tok, Next: o.encodeShiftReduce(entry.Prod)})
			case grammar.ActionReduce:
				row = append(row, actionCell{Token: tok, Next: o.encodeReduce(entry.Prod)})
			case grammar.ActionAccept:
				row = append(row, actionCell{Token: tok, Next: o.encodeAccept()})
			}
		}
		for i, target := range tab.GoTo[s] {
			if target < 0 {
				continue
			}
			row = append(row, actionCell{Token: t.TerminalCount + i, Next: o.encodeShift(target)})
		}
		rows[s] = row
	}
	t.ParserRows = rows
}

// DefaultChainPacked is the text/binary-ready flattening of a
// compressor.DefaultChainTable (§4.H Scanner).
type DefaultChainPacked struct {
	Default []int
	Base    []int
	Check   []int
	Next    []int
}

// ParserPacked is the text/binary-ready flattening of a
// compressor.RowDisplacementTable (§4.H Parser).
type ParserPacked struct {
	Base  []int
	Check []int
	Next  []int
}

// CompressScanner row-displacement-packs the scanner's dense transition
// table behind a default-state chain (§4.H Scanner).
func (t *Tables) CompressScanner() (*DefaultChainPacked, error) {
	const rowWidth = 257
	dense := make([]int, t.ScannerStateCount*rowWidth)
	for s, row := range t.ScannerRows {
		for _, c := range row {
			dense[s*rowWidth+c.Byte] = c.Next
		}
	}
	orig, err := compressor.NewOriginalTable(dense, rowWidth)
	if err != nil {
		return nil, err
	}
	out := compressor.NewDefaultChainTable(0)
	if err := out.Compress(orig); err != nil {
		return nil, err
	}
	return &DefaultChainPacked{Default: out.Default, Base: out.Base, Check: out.Check, Next: out.Entries}, nil
}

// CompressParser row-displacement-packs the parser's action/goto table via
// plain first-fit, no default chain (§4.H Parser).
func (t *Tables) CompressParser() (*ParserPacked, error) {
	width := t.TokenCount
	dense := make([]int, t.ParserStateCount*width)
	for s, row := range t.ParserRows {
		for _, c := range row {
			dense[s*width+c.Token] = c.Next
		}
	}
	orig, err := compressor.NewOriginalTable(dense, width)
	if err != nil {
		return nil, err
	}
	out := compressor.NewRowDisplacementTable(0)
	if err := out.Compress(orig); err != nil {
		return nil, err
	}
	return &ParserPacked{Base: out.Base, Check: out.Check, Next: out.Entries}, nil
}
