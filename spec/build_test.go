package spec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-lang/sdtgen/symbol"
)

func TestBuildInternsSymbolsAndProductions(t *testing.T) {
	src := `
#start expr ;
#cost 2 ;
#install num ;
#skip ws ;

ws = ' +' ;
num = '[0-9]+' ;

expr
	: expr '+' num
	| num
	;
`
	f, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	built, err := Build(f)
	require.NoError(t, err)

	require.NotNil(t, built.Source.StartSymbol)
	assert.Equal(t, "expr", built.Source.StartSymbol.Name())
	assert.Len(t, built.Source.Productions, 2)

	numSym, found := built.Source.Symbols.Lookup("num", symbol.Terminal, symbol.Lookup)
	require.True(t, found)
	assert.True(t, numSym.Flags().Has(symbol.FlagInstall))
	assert.Equal(t, 2, numSym.InsertCost())

	var sawWS, sawNum, sawPlus bool
	for _, e := range built.Entries {
		switch {
		case e.Sym == nil && string(e.Kind) == "ws":
			sawWS = true
		case e.Sym == numSym:
			sawNum = true
		case e.Pattern == `\+`:
			sawPlus = true
		}
	}
	assert.True(t, sawWS, "skip terminal should produce a Sym==nil entry")
	assert.True(t, sawNum, "declared terminal should produce an entry keyed by its symbol")
	assert.True(t, sawPlus, "inline literal should auto-declare an escaped terminal")
}

func TestBuildTranslatesOptionsIntoConfig(t *testing.T) {
	f, err := Parse(strings.NewReader(`
#start x ;
#options splitstates, shiftreduce ;
x : 'x' ;
`))
	require.NoError(t, err)

	built, err := Build(f)
	require.NoError(t, err)

	assert.True(t, built.Source.Config.SplitStates)
	assert.True(t, built.Source.Config.DefaultReduce)
	assert.False(t, built.Source.Config.Ambiguous)
	assert.False(t, built.Source.Config.ErrorRepair)
}

func TestBuildRejectsUnknownOption(t *testing.T) {
	f, err := Parse(strings.NewReader(`
#start x ;
#options bogus ;
x : 'x' ;
`))
	require.NoError(t, err)

	_, err = Build(f)
	assert.Error(t, err)
}

func TestBuildRejectsUndefinedSymbol(t *testing.T) {
	f, err := Parse(strings.NewReader(`#start a ; a : b ;`))
	require.NoError(t, err)

	_, err = Build(f)
	assert.Error(t, err)
}

func TestBuildRejectsMissingStart(t *testing.T) {
	f, err := Parse(strings.NewReader(`a : 'x' ;`))
	require.NoError(t, err)

	_, err = Build(f)
	assert.Error(t, err)
}

func TestEscapeLiteral(t *testing.T) {
	assert.Equal(t, `\(a\+b\)`, escapeLiteral("(a+b)"))
	assert.Equal(t, `abc`, escapeLiteral("abc"))
}
