package runtime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferOn(t *testing.T, src string) (*Buffer, *BufferChain) {
	t.Helper()
	r := strings.NewReader(src)
	chain := NewBufferChain(r.Read, 1024)
	buf, err := chain.Head()
	require.NoError(t, err)
	return buf, chain
}

func TestMessageQueueCoalescesAdjacentScanErrors(t *testing.T) {
	buf, chain := bufferOn(t, "ab")
	q := NewMessageQueue(chain)

	q.Add(Message{Loc: Location{Buf: buf, Offset: 0}, Severity: SeverityScanError, Text: "bad byte"})
	q.Add(Message{Loc: Location{Buf: buf, Offset: 1}, Severity: SeverityScanError, Text: "bad byte"})

	require.Len(t, q.pending, 1)
	assert.Equal(t, 1, q.pending[0].Loc.Offset)
}

func TestMessageQueueKeepsNonAdjacentScanErrorsSeparate(t *testing.T) {
	buf, chain := bufferOn(t, "a b")
	q := NewMessageQueue(chain)

	q.Add(Message{Loc: Location{Buf: buf, Offset: 0}, Severity: SeverityScanError, Text: "bad byte"})
	q.Add(Message{Loc: Location{Buf: buf, Offset: 2}, Severity: SeverityScanError, Text: "bad byte"})

	assert.Len(t, q.pending, 2)
}

func TestMessageQueueFlushOrdersByLocationAndRendersCaret(t *testing.T) {
	// Both messages sit on the single line of one buffer, so sameLine
	// groups them into one writeLine call here.
	buf, chain := bufferOn(t, "abcdef")
	q := NewMessageQueue(chain)

	q.Add(Message{Loc: Location{Buf: buf, Offset: 5}, Severity: SeverityRepair, Text: "second"})
	q.Add(Message{Loc: Location{Buf: buf, Offset: 1}, Severity: SeverityRepair, Text: "first"})

	var out bytes.Buffer
	require.NoError(t, q.Flush(&out, Location{}))
	assert.Empty(t, q.pending)

	text := out.String()
	assert.True(t, strings.Index(text, "first") < strings.Index(text, "second"))
	assert.Contains(t, text, "abcdef")
	assert.Contains(t, text, "^ first")
}

func TestMessageQueueFlushUpToStopsAtBoundary(t *testing.T) {
	r := strings.NewReader("abcdef")
	chain := NewBufferChain(r.Read, 3)
	bufA, err := chain.Head()
	require.NoError(t, err)
	bufB, err := chain.Append()
	require.NoError(t, err)
	require.NotNil(t, bufB)

	q := NewMessageQueue(chain)
	q.Add(Message{Loc: Location{Buf: bufA, Offset: 1}, Severity: SeverityRepair, Text: "early"})
	q.Add(Message{Loc: Location{Buf: bufB, Offset: 0}, Severity: SeverityRepair, Text: "late"})

	var out bytes.Buffer
	require.NoError(t, q.Flush(&out, Location{Buf: bufB, Offset: 0}))

	assert.Contains(t, out.String(), "early")
	assert.NotContains(t, out.String(), "late")
	require.Len(t, q.pending, 1)
	assert.Equal(t, "late", q.pending[0].Text)
}
