package listing_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-lang/sdtgen/grammar"
	"github.com/halcyon-lang/sdtgen/listing"
	"github.com/halcyon-lang/sdtgen/spec"
)

func TestDescribeRendersTerminalsProductionsStatesAndConflicts(t *testing.T) {
	f, err := spec.Parse(strings.NewReader(`
#start expr ;
#install num ;

num = '[0-9]+' ;

expr
	: expr '+' num
	| num
	;
`))
	require.NoError(t, err)
	built, err := spec.Build(f)
	require.NoError(t, err)

	g, report, err := grammar.Build(built.Source)
	require.NoError(t, err)

	out := listing.Describe(g, report)
	assert.Contains(t, out, "Terminals")
	assert.Contains(t, out, "Productions")
	assert.Contains(t, out, "States")
	assert.Contains(t, out, "Conflicts")
	assert.Contains(t, out, "none")
	assert.Contains(t, out, "num")
	assert.Contains(t, out, "expr ->")
}
