package tables

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// wordScanner reads whitespace-separated tokens, mirroring wordWriter on
// the decode side.
type wordScanner struct {
	sc *bufio.Scanner
}

func newWordScanner(r io.Reader) *wordScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	sc.Split(bufio.ScanWords)
	return &wordScanner{sc: sc}
}

func (s *wordScanner) word() (string, error) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("tables: unexpected end of input")
	}
	return s.sc.Text(), nil
}

func (s *wordScanner) int() (int, error) {
	w, err := s.word()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(w)
	if err != nil {
		return 0, fmt.Errorf("tables: expected integer, got %q: %w", w, err)
	}
	return v, nil
}

func (s *wordScanner) ints(n int) ([]int, error) {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := s.int()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

const textLineWidth = 80

// WriteText emits the uncompressed table file of §6: a header line then
// the named arrays, whitespace-separated and wrapped at 80 columns.
func WriteText(w io.Writer, t *Tables) error {
	bw := bufio.NewWriter(w)
	wr := &wordWriter{w: bw, width: textLineWidth}

	fmt.Fprintf(bw, "0 %d %d %d %d %d %d %d %d %s\n",
		t.TerminalCount, t.TokenCount, t.ScannerStateCount, t.NonterminalCount,
		t.ProductionCount, t.ParserStateCount, t.Meta.Context, t.Meta.DefCost, quoteName(t.Meta.Name))

	wr.ints(t.TokenIndex)
	wr.ints(t.TokenTable)
	wr.ints(t.Final)
	wr.bools(t.Install)
	writeScannerRows(wr, t.ScannerRows)
	wr.ints(t.InsCost)
	wr.ints(t.DelCost)
	wr.ints(t.LHSToken)
	wr.ints(t.RHSLength)
	wr.ints(t.Semantics)
	wr.ints(t.Repair)
	wr.ints(t.StringIndex)
	wr.word(strconv.Itoa(len(t.Names)))
	wr.word(t.Names)
	writeActionRows(wr, t.ParserRows)
	wr.flushLine()

	return bw.Flush()
}

// WriteCompressedText emits the compressed table file of §6: header type
// 1, the same token-end arrays, then the scanner's default-chain arrays
// and the parser's displacement arrays in place of the dense rows.
func WriteCompressedText(w io.Writer, t *Tables, scan *DefaultChainPacked, parse *ParserPacked) error {
	bw := bufio.NewWriter(w)
	wr := &wordWriter{w: bw, width: textLineWidth}

	fmt.Fprintf(bw, "1 %d %d %d %d %d %d %d %d %s\n",
		t.TerminalCount, t.TokenCount, t.ScannerStateCount, t.NonterminalCount,
		t.ProductionCount, t.ParserStateCount, t.Meta.Context, t.Meta.DefCost, quoteName(t.Meta.Name))

	wr.ints(t.TokenIndex)
	wr.ints(t.TokenTable)
	wr.ints(t.Final)
	wr.bools(t.Install)
	wr.ints(scan.Default)
	wr.ints(scan.Base)
	wr.word(strconv.Itoa(len(scan.Check)))
	wr.ints(scan.Check)
	wr.ints(scan.Next)
	wr.ints(t.InsCost)
	wr.ints(t.DelCost)
	wr.ints(t.LHSToken)
	wr.ints(t.RHSLength)
	wr.ints(t.Semantics)
	wr.ints(t.Repair)
	wr.ints(t.StringIndex)
	wr.word(strconv.Itoa(len(t.Names)))
	wr.word(t.Names)
	wr.ints(parse.Base)
	wr.word(strconv.Itoa(len(parse.Check)))
	wr.ints(parse.Check)
	wr.ints(parse.Next)
	wr.flushLine()

	return bw.Flush()
}

func writeScannerRows(wr *wordWriter, rows [][]scannerCell) {
	for _, row := range rows {
		wr.word(strconv.Itoa(len(row)))
		for _, c := range row {
			wr.word(strconv.Itoa(c.Byte))
			wr.word(strconv.Itoa(c.Next))
		}
	}
}

func writeActionRows(wr *wordWriter, rows [][]actionCell) {
	for _, row := range rows {
		wr.word(strconv.Itoa(len(row)))
		for _, c := range row {
			wr.word(strconv.Itoa(c.Token))
			wr.word(strconv.Itoa(c.Next))
		}
	}
}

func quoteName(name string) string {
	if name == "" {
		return `""`
	}
	return name
}

// wordWriter wraps whitespace-separated words at a fixed column budget,
// matching §6's "line-wrapped at 80 columns" requirement.
type wordWriter struct {
	w     *bufio.Writer
	width int
	col   int
}

func (wr *wordWriter) word(s string) {
	if wr.col > 0 {
		if wr.col+1+len(s) > wr.width {
			wr.w.WriteByte('\n')
			wr.col = 0
		} else {
			wr.w.WriteByte(' ')
			wr.col++
		}
	}
	wr.w.WriteString(s)
	wr.col += len(s)
}

func (wr *wordWriter) ints(vals []int) {
	for _, v := range vals {
		wr.word(strconv.Itoa(v))
	}
}

func (wr *wordWriter) bools(vals []bool) {
	for _, v := range vals {
		if v {
			wr.word("1")
		} else {
			wr.word("0")
		}
	}
}

func (wr *wordWriter) flushLine() {
	if wr.col > 0 {
		wr.w.WriteByte('\n')
		wr.col = 0
	}
}

// ReadText is the counterpart to WriteText: type-0 uncompressed files.
func ReadText(r io.Reader) (*Tables, error) {
	sc := newWordScanner(r)
	typ, err := sc.word()
	if err != nil {
		return nil, err
	}
	if typ != "0" {
		return nil, fmt.Errorf("tables: not an uncompressed table file (type %q)", typ)
	}
	t, err := decodeHeaderAndTokenEnds(sc)
	if err != nil {
		return nil, err
	}
	t.ScannerRows, err = readScannerRows(sc, t.ScannerStateCount)
	if err != nil {
		return nil, err
	}
	if err := decodeCostsThroughNames(sc, t); err != nil {
		return nil, err
	}
	t.ParserRows, err = readActionRows(sc, t.ParserStateCount)
	if err != nil {
		return nil, err
	}
	t.Offsets = NewOffsets(t.ProductionCount, t.ParserStateCount)
	return t, nil
}

// ReadCompressedText is the counterpart to WriteCompressedText: type-1
// compressed files. It returns the token-end/cost/production/repair/name
// tables as usual plus the packed scanner and parser arrays in place of
// ScannerRows/ParserRows (which are left nil, since the compressed form
// never materializes the dense rows).
func ReadCompressedText(r io.Reader) (*Tables, *DefaultChainPacked, *ParserPacked, error) {
	sc := newWordScanner(r)
	typ, err := sc.word()
	if err != nil {
		return nil, nil, nil, err
	}
	if typ != "1" {
		return nil, nil, nil, fmt.Errorf("tables: not a compressed table file (type %q)", typ)
	}
	t, err := decodeHeaderAndTokenEnds(sc)
	if err != nil {
		return nil, nil, nil, err
	}

	scan := &DefaultChainPacked{}
	scan.Default, err = sc.ints(t.ScannerStateCount)
	if err != nil {
		return nil, nil, nil, err
	}
	scan.Base, err = sc.ints(t.ScannerStateCount)
	if err != nil {
		return nil, nil, nil, err
	}
	checkLen, err := sc.int()
	if err != nil {
		return nil, nil, nil, err
	}
	scan.Check, err = sc.ints(checkLen)
	if err != nil {
		return nil, nil, nil, err
	}
	scan.Next, err = sc.ints(checkLen)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := decodeCostsThroughNames(sc, t); err != nil {
		return nil, nil, nil, err
	}

	parse := &ParserPacked{}
	parse.Base, err = sc.ints(t.ParserStateCount)
	if err != nil {
		return nil, nil, nil, err
	}
	pCheckLen, err := sc.int()
	if err != nil {
		return nil, nil, nil, err
	}
	parse.Check, err = sc.ints(pCheckLen)
	if err != nil {
		return nil, nil, nil, err
	}
	parse.Next, err = sc.ints(pCheckLen)
	if err != nil {
		return nil, nil, nil, err
	}

	t.Offsets = NewOffsets(t.ProductionCount, t.ParserStateCount)
	return t, scan, parse, nil
}

func decodeHeaderAndTokenEnds(sc *wordScanner) (*Tables, error) {
	nums, err := sc.ints(8)
	if err != nil {
		return nil, err
	}
	name, err := sc.word()
	if err != nil {
		return nil, err
	}
	t := &Tables{
		TerminalCount:     nums[0],
		TokenCount:        nums[1],
		ScannerStateCount: nums[2],
		NonterminalCount:  nums[3],
		ProductionCount:   nums[4],
		ParserStateCount:  nums[5],
		Meta:              Meta{Name: strings.Trim(name, `"`), Context: nums[6], DefCost: nums[7]},
	}

	t.TokenIndex, err = sc.ints(t.ScannerStateCount + 1)
	if err != nil {
		return nil, err
	}
	tokenTableLen := t.TokenIndex[len(t.TokenIndex)-1]
	t.TokenTable, err = sc.ints(tokenTableLen)
	if err != nil {
		return nil, err
	}
	t.Final, err = sc.ints(t.ScannerStateCount)
	if err != nil {
		return nil, err
	}
	installInts, err := sc.ints(t.ScannerStateCount)
	if err != nil {
		return nil, err
	}
	t.Install = make([]bool, len(installInts))
	for i, v := range installInts {
		t.Install[i] = v != 0
	}
	return t, nil
}

func decodeCostsThroughNames(sc *wordScanner, t *Tables) (err error) {
	if t.InsCost, err = sc.ints(t.TerminalCount); err != nil {
		return err
	}
	if t.DelCost, err = sc.ints(t.TerminalCount); err != nil {
		return err
	}
	if t.LHSToken, err = sc.ints(t.ProductionCount); err != nil {
		return err
	}
	if t.RHSLength, err = sc.ints(t.ProductionCount); err != nil {
		return err
	}
	if t.Semantics, err = sc.ints(t.ProductionCount); err != nil {
		return err
	}
	if t.Repair, err = sc.ints(t.ParserStateCount); err != nil {
		return err
	}
	if t.StringIndex, err = sc.ints(t.TerminalCount + t.NonterminalCount + 1); err != nil {
		return err
	}
	namesLen, err := sc.int()
	if err != nil {
		return err
	}
	names, err := sc.word()
	if err != nil {
		return err
	}
	if len(names) != namesLen {
		return fmt.Errorf("tables: name block length mismatch: header says %d, got %d", namesLen, len(names))
	}
	t.Names = names
	return nil
}

func readScannerRows(sc *wordScanner, stateCount int) ([][]scannerCell, error) {
	rows := make([][]scannerCell, stateCount)
	for s := 0; s < stateCount; s++ {
		n, err := sc.int()
		if err != nil {
			return nil, err
		}
		row := make([]scannerCell, n)
		for i := 0; i < n; i++ {
			b, err := sc.int()
			if err != nil {
				return nil, err
			}
			next, err := sc.int()
			if err != nil {
				return nil, err
			}
			row[i] = scannerCell{Byte: b, Next: next}
		}
		rows[s] = row
	}
	return rows, nil
}

func readActionRows(sc *wordScanner, stateCount int) ([][]actionCell, error) {
	rows := make([][]actionCell, stateCount)
	for s := 0; s < stateCount; s++ {
		n, err := sc.int()
		if err != nil {
			return nil, err
		}
		row := make([]actionCell, n)
		for i := 0; i < n; i++ {
			tok, err := sc.int()
			if err != nil {
				return nil, err
			}
			next, err := sc.int()
			if err != nil {
				return nil, err
			}
			row[i] = actionCell{Token: tok, Next: next}
		}
		rows[s] = row
	}
	return rows, nil
}
