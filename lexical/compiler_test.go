package lexical_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-lang/sdtgen/lexical"
	"github.com/halcyon-lang/sdtgen/spec"
	"github.com/halcyon-lang/sdtgen/symbol"
)

func TestCompileBuildsScannerTablesForDeclaredTerminals(t *testing.T) {
	f, err := spec.Parse(strings.NewReader(`
#start expr ;
#install num ;
#skip ws ;

ws = ' +' ;
fragment digit = '[0-9]' ;
num = '\f{digit}+' ;

expr
	: expr '+' num
	| num
	;
`))
	require.NoError(t, err)
	built, err := spec.Build(f)
	require.NoError(t, err)

	scan, install, cerrs := lexical.Compile(built.Entries)
	require.Empty(t, cerrs)
	require.NotNil(t, scan)
	assert.NotZero(t, scan.StateCount)

	numSym, found := built.Source.Symbols.Lookup("num", symbol.Terminal, symbol.Lookup)
	require.True(t, found)
	assert.True(t, install[numSym.TokenNumber()])
}

func TestCompileReportsBadPattern(t *testing.T) {
	f, err := spec.Parse(strings.NewReader(`
#start expr ;
bad = '[' ;
expr : bad ;
`))
	require.NoError(t, err)
	built, err := spec.Build(f)
	require.NoError(t, err)

	_, _, cerrs := lexical.Compile(built.Entries)
	assert.NotEmpty(t, cerrs)
}
