package compressor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultChainTableRoundTrips(t *testing.T) {
	const cols = 5
	// Three rows that mostly agree (good default-chain candidates) and
	// one outlier, to exercise both the shared-cell path and first-fit.
	entries := []int{
		0, 1, 0, 2, 0,
		0, 1, 0, 2, 3,
		0, 1, 0, 0, 0,
		4, 0, 5, 0, 0,
	}
	orig, err := NewOriginalTable(entries, cols)
	require.NoError(t, err)

	tab := NewDefaultChainTable(0)
	require.NoError(t, tab.Compress(orig))

	for row := 0; row < len(entries)/cols; row++ {
		for col := 0; col < cols; col++ {
			got, err := tab.Lookup(row, col)
			require.NoError(t, err)
			assert.Equal(t, entries[row*cols+col], got, "row %d col %d", row, col)
		}
	}
}

func TestDefaultChainTableRejectsOutOfRange(t *testing.T) {
	orig, err := NewOriginalTable([]int{1, 0, 0, 1}, 2)
	require.NoError(t, err)
	tab := NewDefaultChainTable(0)
	require.NoError(t, tab.Compress(orig))

	_, err = tab.Lookup(-1, 0)
	assert.Error(t, err)
	_, err = tab.Lookup(0, 9)
	assert.Error(t, err)
}

func TestDefaultChainTableSingleRow(t *testing.T) {
	orig, err := NewOriginalTable([]int{1, 2, 3}, 3)
	require.NoError(t, err)
	tab := NewDefaultChainTable(0)
	require.NoError(t, tab.Compress(orig))

	for col := 0; col < 3; col++ {
		got, err := tab.Lookup(0, col)
		require.NoError(t, err)
		assert.Equal(t, col+1, got)
	}
}
