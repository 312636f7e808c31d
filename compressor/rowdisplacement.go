// Package compressor implements §4.H: row-displacement packing of the
// parser's action/goto table (first-fit, no default chain) and the
// scanner's transition table (first-fit behind a default-state chain,
// see defaultchain.go).
package compressor

import (
	"fmt"
	"sort"
)

// OriginalTable is a dense row-major table prior to compression: the
// parser's action[state][token] or the scanner's trans[state][byte|EOF].
type OriginalTable struct {
	entries  []int
	rowCount int
	colCount int
}

func NewOriginalTable(entries []int, colCount int) (*OriginalTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("compressor: entries is empty")
	}
	if colCount <= 0 {
		return nil, fmt.Errorf("compressor: colCount must be >= 1")
	}
	if len(entries)%colCount != 0 {
		return nil, fmt.Errorf("compressor: entries length %v is not a multiple of column count %v", len(entries), colCount)
	}
	return &OriginalTable{
		entries:  entries,
		rowCount: len(entries) / colCount,
		colCount: colCount,
	}, nil
}

// ForbiddenValue marks a check[] cell as never claimed by any row.
const ForbiddenValue = -1

// RowDisplacementTable packs a sparse row-major table into shared
// `check`/`next` arrays via first-fit row insertion (§4.H Parser step):
// rows are inserted densest-first, each at the first displacement where
// none of its non-empty columns collide with an already-placed row. The
// search for a row starts one past the previous row's displacement, so the
// chosen displacement is not necessarily the smallest free one overall.
//
// This is the parser's table: no default chain, a miss is simply an error
// (decode: entry = base[s]+t; check[entry]==s ? next[entry] : error).
type RowDisplacementTable struct {
	OriginalRowCount int
	OriginalColCount int
	EmptyValue       int
	Entries          []int
	Check            []int
	Base             []int
}

func NewRowDisplacementTable(emptyValue int) *RowDisplacementTable {
	return &RowDisplacementTable{EmptyValue: emptyValue}
}

func (tab *RowDisplacementTable) Lookup(row, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return tab.EmptyValue, fmt.Errorf("compressor: indexes out of range: [%v, %v]", row, col)
	}
	d := tab.Base[row]
	if tab.Check[d+col] != row {
		return tab.EmptyValue, nil
	}
	return tab.Entries[d+col], nil
}

func (tab *RowDisplacementTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

type rowInfo struct {
	rowNum        int
	nonEmptyCount int
	nonEmptyCol   []int
}

// Compress implements the two-phase first-fit insertion of §4.H Parser:
// sort rows by descending non-zero count, then for each row find the
// first displacement, at or after one past the previous row's, whose
// claimed columns are all still free.
func (tab *RowDisplacementTable) Compress(orig *OriginalTable) error {
	rows := collectRowInfo(orig, tab.EmptyValue)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].nonEmptyCount > rows[j].nonEmptyCount
	})

	origLen := len(orig.entries)
	entries := make([]int, origLen)
	check := make([]int, origLen)
	for i := range entries {
		entries[i] = tab.EmptyValue
		check[i] = ForbiddenValue
	}

	resultBottom := orig.colCount
	base := make([]int, orig.rowCount)
	next := 0
	for _, r := range rows {
		if r.nonEmptyCount <= 0 {
			continue
		}
		for {
			overlapped := false
			for _, col := range r.nonEmptyCol {
				if entries[next+col] == tab.EmptyValue {
					continue
				}
				next++
				overlapped = true
				break
			}
			if overlapped {
				continue
			}
			base[r.rowNum] = next
			for _, col := range r.nonEmptyCol {
				entries[next+col] = orig.entries[r.rowNum*orig.colCount+col]
				check[next+col] = r.rowNum
			}
			if next+orig.colCount > resultBottom {
				resultBottom = next + orig.colCount
			}
			next++
			break
		}
	}

	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount
	tab.Entries = entries[:resultBottom]
	tab.Check = check[:resultBottom]
	tab.Base = base
	return nil
}

func collectRowInfo(orig *OriginalTable, emptyValue int) []rowInfo {
	rows := make([]rowInfo, orig.rowCount)
	row, col := 0, 0
	rows[0].rowNum = 0
	for _, v := range orig.entries {
		if col == orig.colCount {
			row++
			col = 0
			rows[row].rowNum = row
		}
		if v != emptyValue {
			rows[row].nonEmptyCount++
			rows[row].nonEmptyCol = append(rows[row].nonEmptyCol, col)
		}
		col++
	}
	return rows
}
