package compressor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowDisplacementTableRoundTrips(t *testing.T) {
	const cols = 4
	entries := []int{
		0, 1, 0, 2,
		3, 0, 0, 0,
		0, 0, 4, 5,
		0, 0, 0, 0,
	}
	orig, err := NewOriginalTable(entries, cols)
	require.NoError(t, err)

	tab := NewRowDisplacementTable(0)
	require.NoError(t, tab.Compress(orig))

	for row := 0; row < len(entries)/cols; row++ {
		for col := 0; col < cols; col++ {
			got, err := tab.Lookup(row, col)
			require.NoError(t, err)
			assert.Equal(t, entries[row*cols+col], got, "row %d col %d", row, col)
		}
	}

	rc, cc := tab.OriginalTableSize()
	assert.Equal(t, 4, rc)
	assert.Equal(t, cols, cc)
}

func TestRowDisplacementTableRejectsOutOfRange(t *testing.T) {
	orig, err := NewOriginalTable([]int{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	tab := NewRowDisplacementTable(0)
	require.NoError(t, tab.Compress(orig))

	_, err = tab.Lookup(5, 0)
	assert.Error(t, err)
	_, err = tab.Lookup(0, 5)
	assert.Error(t, err)
}

func TestNewOriginalTableRejectsBadShape(t *testing.T) {
	_, err := NewOriginalTable(nil, 2)
	assert.Error(t, err)

	_, err = NewOriginalTable([]int{1, 2, 3}, 0)
	assert.Error(t, err)

	_, err = NewOriginalTable([]int{1, 2, 3}, 2)
	assert.Error(t, err)
}
