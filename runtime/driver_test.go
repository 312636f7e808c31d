package runtime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverParsesEndToEnd(t *testing.T) {
	src := strings.NewReader("n + n")
	d, err := NewDriver(newFakeScanTable(), newFakeParserTable(), src.Read, sumSemantic)
	require.NoError(t, err)

	var diag bytes.Buffer
	value, err := d.Run(&diag)
	require.NoError(t, err)
	assert.Equal(t, "num+num", value)
	assert.Empty(t, diag.String())
}
