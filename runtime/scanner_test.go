package runtime

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-lang/sdtgen/lexical/dfa"
)

// newFakeScanTable builds a tiny hand-rolled DFA recognizing a single
// space as an ignored token (0), "n" as token 2, and "+" as token 3 --
// enough to exercise Next()'s ignore loop and ambiguity plumbing without
// running the lexical compiler.
func newFakeScanTable() *ScannerTable {
	trans := map[[2]int]int{
		{0, ' '}: 1,
		{0, 'n'}: 2,
		{0, '+'}: 3,
	}
	return &ScannerTable{
		Initial:    0,
		Final:      []int{0, 0, 2, 3},
		TokenIndex: []int{0, 0, 1, 2, 3},
		TokenTable: []int{0, 2, 3},
		Install:    []bool{false, false, false, false},
		Transition: func(state, col int) (int, error) {
			return trans[[2]int{state, col}], nil
		},
	}
}

func newScannerOn(t *testing.T, src string) *Scanner {
	t.Helper()
	r := strings.NewReader(src)
	chain := NewBufferChain(r.Read, 0)
	s, err := NewScanner(newFakeScanTable(), chain)
	require.NoError(t, err)
	return s
}

func TestScannerSkipsIgnoredTokens(t *testing.T) {
	s := newScannerOn(t, "  n")
	tok, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, tok.TokenNum)
	assert.False(t, tok.EOF)
}

func TestScannerReportsEOF(t *testing.T) {
	s := newScannerOn(t, "")
	tok, err := s.Next()
	require.NoError(t, err)
	assert.True(t, tok.EOF)
}

func TestScannerReportsEOFAfterLastToken(t *testing.T) {
	s := newScannerOn(t, "n")
	tok, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, tok.TokenNum)

	tok, err = s.Next()
	require.NoError(t, err)
	assert.True(t, tok.EOF)
}

func TestScannerRecoversFromUnknownByte(t *testing.T) {
	s := newScannerOn(t, "z+")
	tok, err := s.Next()
	require.NoError(t, err)
	assert.True(t, tok.ScanError)

	tok, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, tok.TokenNum)
}

func TestTokenEndsAndAmbiguityResolution(t *testing.T) {
	// A state accepting two distinct tokens: TokenEnds lists both, but
	// pickToken trusts Final already holds the lowest (declaration order
	// tiebreak happens in the lexical compiler, not here).
	tab := &ScannerTable{
		Final:      []int{2},
		TokenIndex: []int{0, 2},
		TokenTable: []int{2, 7},
	}
	assert.Equal(t, []int{2, 7}, tab.TokenEnds(0))
	tok := pickToken(tab, 0, Location{})
	assert.Equal(t, 2, tok.TokenNum)
}

func TestDenseTransitionRangeCheck(t *testing.T) {
	scan := &dfa.ScannerTables{StateCount: 1, Transition: make([]int, 257)}
	fn := DenseTransition(scan)
	_, err := fn(5, 0)
	assert.Error(t, err)
}
