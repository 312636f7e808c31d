package spec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectivesAndRules(t *testing.T) {
	src := `
#start expr ;
#context 2 ;
#cost 3 ;
#install num ;
#skip ws ;

ws = ' +' ;

fragment digit = '[0-9]' ;

num = '{digit}+' ;

expr
	: expr '+' term
	| term
	;
term : num ;
`
	f, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "expr", f.Start)
	assert.Equal(t, 2, f.Context)
	assert.Equal(t, 3, f.Cost)
	assert.Equal(t, []string{"num"}, f.Installs)
	assert.Equal(t, []string{"ws"}, f.Skips)

	require.Len(t, f.Fragments, 1)
	assert.Equal(t, "digit", f.Fragments[0].Name)

	require.Len(t, f.Terminals, 2)
	assert.Equal(t, "ws", f.Terminals[0].Name)
	assert.Equal(t, "num", f.Terminals[1].Name)

	require.Len(t, f.Rules, 2)
	assert.Equal(t, "expr", f.Rules[0].Name)
	require.Len(t, f.Rules[0].Alts, 2)
	require.Len(t, f.Rules[0].Alts[0], 3)
	assert.True(t, f.Rules[0].Alts[0][1].Literal)
	assert.Equal(t, "+", f.Rules[0].Alts[0][1].Name)
}

func TestParseOptionsDirective(t *testing.T) {
	src := `
#start x ;
#options ambiguous, splitstates ;
x : 'x' ;
`
	f, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"ambiguous", "splitstates"}, f.Options)
}

func TestParseRejectsGrammarWithNoRules(t *testing.T) {
	_, err := Parse(strings.NewReader(`#start x ;`))
	assert.Error(t, err)
}

func TestParseRejectsMissingSemicolon(t *testing.T) {
	_, err := Parse(strings.NewReader(`a : b `))
	assert.Error(t, err)
}

func TestParseComment(t *testing.T) {
	src := `
// a trivial grammar
a : 'x' ; // single alternative
`
	f, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, f.Rules, 1)
}

func TestLexerEscapesInPattern(t *testing.T) {
	l := newLexer(strings.NewReader(`'a\'b\\c'`))
	tok, err := l.next()
	require.NoError(t, err)
	assert.Equal(t, tokTerminalPattern, tok.kind)
	assert.Equal(t, `a'b\c`, tok.text)
}
