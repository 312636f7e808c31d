package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-lang/sdtgen/tables"
)

// Hand-built table for `E : E '+' num | num ;` (tokens: 1=eof, 2=num,
// 3='+', goto column 4=E). States: 0 start, 1 after num, 2 after E,
// 3 after '+', 4 after the second num.
func newFakeParserTable() *ParserTable {
	offsets := tables.NewOffsets(2, 5)
	actions := map[[2]int]int{
		{0, 2}: offsets.Shift + 1, // shift num -> state1
		{0, 4}: offsets.Shift + 2, // goto E -> state2
		{1, 3}: -1,                // reduce prod1 (E:num)
		{1, 1}: -1,
		{2, 3}: offsets.Shift + 3, // shift '+' -> state3
		{2, 1}: offsets.Accept,
		{3, 2}: offsets.Shift + 4, // shift num -> state4
		{4, 3}: -2,                // reduce prod2 (E:E '+' num)
		{4, 1}: -2,
	}
	return &ParserTable{
		Offsets:          offsets,
		TerminalCount:    4,
		TokenCount:       5,
		NonterminalCount: 1,
		ParserStateCount: 5,
		LHSToken:         []int{0, 4, 4},
		RHSLength:        []int{0, 1, 3},
		InsCost:          []int{0, 0, 1, 1, 0},
		DelCost:          []int{0, 0, 1, 1, 0},
		Context:          1,
		DefCost:          1,
		Action: func(state, token int) (int, error) {
			return actions[[2]int{state, token}], nil
		},
	}
}

func tokenFeed(nums ...int) func() (*Token, error) {
	i := 0
	return func() (*Token, error) {
		if i >= len(nums) {
			return &Token{EOF: true}, nil
		}
		n := nums[i]
		i++
		if n == -1 {
			return &Token{EOF: true}, nil
		}
		return &Token{TokenNum: n}, nil
	}
}

func sumSemantic(prod int, children []interface{}, loc Location) (interface{}, error) {
	switch prod {
	case 1:
		return "num", nil
	case 2:
		return children[0].(string) + "+num", nil
	default:
		return nil, nil
	}
}

func TestParserAcceptsLeftRecursiveSum(t *testing.T) {
	next := tokenFeed(2, 3, 2, -1)
	p := NewParser(newFakeParserTable(), sumSemantic, NewMessageQueue(nil), next)
	value, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, "num+num", value)
}

func TestParserRepairsUnexpectedToken(t *testing.T) {
	table := newFakeParserTable()
	table.Repair = []int{0, 0, 3, 0, 0} // from state 2, the only legal continuation is '+'

	chain := NewBufferChain(func([]byte) (int, error) { return 0, nil }, 0)
	msgs := NewMessageQueue(chain)
	// an unrecognized token (9) where '+' or eof was expected at state 2.
	next := tokenFeed(9, -1)
	p := NewParser(table, sumSemantic, msgs, next)
	p.stack = []stackEntry{{State: 0}, {State: 2}}
	p.vstates = []int{0, 2}

	require.NoError(t, p.repairError())
	assert.Len(t, msgs.pending, 1)
	assert.Equal(t, SeverityRepair, msgs.pending[0].Severity)
}
