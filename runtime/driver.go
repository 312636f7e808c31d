package runtime

import (
	"io"

	"github.com/halcyon-lang/sdtgen/compressor"
	"github.com/halcyon-lang/sdtgen/lexical/dfa"
	"github.com/halcyon-lang/sdtgen/tables"
)

// Driver wires a scanner, a message queue, and a queued-reduce parser
// together into one entry point, grounded on vartan's driver/parser.go's
// top-level Parser type but generalized to this spec's deferred-reduce,
// repairing interpreter.
type Driver struct {
	scanner  *Scanner
	chain    *BufferChain
	messages *MessageQueue
	parser   *Parser
}

// NewDriver builds a Driver from an already-assembled ScannerTable and
// ParserTable (dense or compressed, see DenseTransition/CompressedTransition
// and DenseAction/CompressedAction), a byte source, and a semantic action
// callback for reductions.
func NewDriver(scanTable *ScannerTable, parseTable *ParserTable, fill func([]byte) (int, error), semantic SemanticAction) (*Driver, error) {
	chain := NewBufferChain(fill, 0)
	scanner, err := NewScanner(scanTable, chain)
	if err != nil {
		return nil, err
	}
	messages := NewMessageQueue(chain)
	parser := NewParser(parseTable, semantic, messages, scanner.Next)
	return &Driver{scanner: scanner, chain: chain, messages: messages, parser: parser}, nil
}

// Run parses to acceptance, returning the start symbol's synthesized
// value, then flushes any repair/scanner diagnostics still queued.
func (d *Driver) Run(diagnostics io.Writer) (interface{}, error) {
	value, err := d.parser.Parse()
	flushErr := d.messages.Flush(diagnostics, Location{})
	if err != nil {
		return nil, err
	}
	if flushErr != nil {
		return nil, flushErr
	}
	return value, nil
}

// BuildScannerTable adapts a compiled dfa.ScannerTables plus its install
// bitmap into the runtime's ScannerTable shape for an uncompressed run.
func BuildScannerTable(scan *dfa.ScannerTables, t *tables.Tables) *ScannerTable {
	install := make([]bool, len(t.Install))
	copy(install, t.Install)
	return &ScannerTable{
		Initial:    scan.InitialState,
		Final:      scan.Final,
		TokenIndex: scan.TokenIndex,
		TokenTable: scan.TokenTable,
		Install:    install,
		Transition: DenseTransition(scan),
	}
}

// BuildCompressedScannerTable adapts a packed scanner table (§4.H) into
// the runtime's ScannerTable shape.
func BuildCompressedScannerTable(t *tables.Tables, packed *tables.DefaultChainPacked) *ScannerTable {
	tab := &compressor.DefaultChainTable{
		OriginalRowCount: t.ScannerStateCount,
		OriginalColCount: 257,
		EmptyValue:       0,
		Entries:          packed.Next,
		Check:            packed.Check,
		Base:             packed.Base,
		Default:          packed.Default,
	}
	return &ScannerTable{
		Initial:    1,
		Final:      t.Final,
		TokenIndex: t.TokenIndex,
		TokenTable: t.TokenTable,
		Install:    t.Install,
		Transition: CompressedTransition(tab),
	}
}

// BuildParserTable adapts an uncompressed *tables.Tables into the
// runtime's ParserTable shape for a dense run.
func BuildParserTable(t *tables.Tables) *ParserTable {
	return NewParserTable(t, DenseAction(t))
}

// BuildCompressedParserTable adapts a packed parser table (§4.H) into the
// runtime's ParserTable shape.
func BuildCompressedParserTable(t *tables.Tables, packed *tables.ParserPacked) *ParserTable {
	tab := &compressor.RowDisplacementTable{
		OriginalRowCount: t.ParserStateCount,
		OriginalColCount: t.TokenCount,
		EmptyValue:       0,
		Entries:          packed.Next,
		Check:            packed.Check,
		Base:             packed.Base,
	}
	return NewParserTable(t, CompressedAction(tab))
}
