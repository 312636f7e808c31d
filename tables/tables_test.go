package tables_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-lang/sdtgen/grammar"
	"github.com/halcyon-lang/sdtgen/lexical"
	"github.com/halcyon-lang/sdtgen/spec"
	"github.com/halcyon-lang/sdtgen/tables"
)

func buildTables(t *testing.T) *tables.Tables {
	t.Helper()
	f, err := spec.Parse(strings.NewReader(`
#start expr ;
#install num ;
#skip ws ;

ws = ' +' ;
num = '[0-9]+' ;

expr
	: expr '+' num
	| num
	;
`))
	require.NoError(t, err)
	built, err := spec.Build(f)
	require.NoError(t, err)

	g, _, err := grammar.Build(built.Source)
	require.NoError(t, err)

	scan, install, cerrs := lexical.Compile(built.Entries)
	require.Empty(t, cerrs)

	return tables.Build(g, scan, install, built.Meta)
}

func assertTablesEqual(t *testing.T, want, got *tables.Tables) {
	t.Helper()
	assert.Equal(t, want.Meta, got.Meta)
	assert.Equal(t, want.TerminalCount, got.TerminalCount)
	assert.Equal(t, want.TokenCount, got.TokenCount)
	assert.Equal(t, want.ScannerStateCount, got.ScannerStateCount)
	assert.Equal(t, want.NonterminalCount, got.NonterminalCount)
	assert.Equal(t, want.ProductionCount, got.ProductionCount)
	assert.Equal(t, want.ParserStateCount, got.ParserStateCount)
	assert.Equal(t, want.TokenIndex, got.TokenIndex)
	assert.Equal(t, want.TokenTable, got.TokenTable)
	assert.Equal(t, want.Final, got.Final)
	assert.Equal(t, want.Install, got.Install)
	assert.Equal(t, want.InsCost, got.InsCost)
	assert.Equal(t, want.DelCost, got.DelCost)
	assert.Equal(t, want.LHSToken, got.LHSToken)
	assert.Equal(t, want.RHSLength, got.RHSLength)
	assert.Equal(t, want.Semantics, got.Semantics)
	assert.Equal(t, want.Repair, got.Repair)
	assert.Equal(t, want.StringIndex, got.StringIndex)
	assert.Equal(t, want.Names, got.Names)
	assert.Equal(t, want.Offsets, got.Offsets)
}

func TestTextRoundTrip(t *testing.T) {
	want := buildTables(t)

	var buf bytes.Buffer
	require.NoError(t, tables.WriteText(&buf, want))

	got, err := tables.ReadText(&buf)
	require.NoError(t, err)
	assertTablesEqual(t, want, got)
}

func TestBinaryRoundTrip(t *testing.T) {
	want := buildTables(t)

	data := tables.EncodeBinary(want)
	got, scan, parse, err := tables.DecodeBinary(data)
	require.NoError(t, err)
	assert.Nil(t, scan)
	assert.Nil(t, parse)
	assertTablesEqual(t, want, got)
}

func TestCompressedTextRoundTrip(t *testing.T) {
	want := buildTables(t)
	scanPacked, err := want.CompressScanner()
	require.NoError(t, err)
	parsePacked, err := want.CompressParser()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tables.WriteCompressedText(&buf, want, scanPacked, parsePacked))

	got, gotScan, gotParse, err := tables.ReadCompressedText(&buf)
	require.NoError(t, err)
	assertTablesEqual(t, want, got)
	assert.Equal(t, scanPacked, gotScan)
	assert.Equal(t, parsePacked, gotParse)
}

func TestCompressedBinaryRoundTrip(t *testing.T) {
	want := buildTables(t)
	scanPacked, err := want.CompressScanner()
	require.NoError(t, err)
	parsePacked, err := want.CompressParser()
	require.NoError(t, err)

	data := tables.EncodeCompressedBinary(want, scanPacked, parsePacked)
	got, gotScan, gotParse, err := tables.DecodeBinary(data)
	require.NoError(t, err)
	assertTablesEqual(t, want, got)
	assert.Equal(t, scanPacked, gotScan)
	assert.Equal(t, parsePacked, gotParse)
}
