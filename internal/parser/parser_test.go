package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"clarity/internal/ast"
	"clarity/internal/errors"
	"clarity/internal/types"
)

func mustParse(t *testing.T, src string) []*ast.PreSymbolicExpression {
	t.Helper()
	exprs, err := Parse(src)
	require.Nil(t, err, "unexpected parse error: %v", err)
	return exprs
}

func TestParseLetExpression(t *testing.T) {
	exprs := mustParse(t, "(let ((x 1) (y 2)) (+ x y))")
	require.Len(t, exprs, 1)
	require.Equal(t, ast.PreList, exprs[0].Kind)
	require.Equal(t, "let", exprs[0].List[0].Atom)
}

func TestParseTupleLiteral(t *testing.T) {
	exprs := mustParse(t, "{a: 1, b: 2}")
	require.Len(t, exprs, 1)
	require.Equal(t, ast.PreTuple, exprs[0].Kind)
	require.Len(t, exprs[0].Tuple, 4) // key,value,key,value
	require.Equal(t, "a", exprs[0].Tuple[0].Atom)
	require.Equal(t, "b", exprs[0].Tuple[2].Atom)
}

func TestParseEmptyTupleLiteral(t *testing.T) {
	exprs := mustParse(t, "{}")
	require.Len(t, exprs, 1)
	require.Equal(t, ast.PreTuple, exprs[0].Kind)
	require.Empty(t, exprs[0].Tuple)
}

func TestParseNestedList(t *testing.T) {
	exprs := mustParse(t, "(foo (bar 1 2) 3)")
	require.Len(t, exprs, 1)
	inner := exprs[0].List[1]
	require.Equal(t, ast.PreList, inner.Kind)
	require.Len(t, inner.List, 3)
}

func TestParseSugaredFieldIdentifiers(t *testing.T) {
	exprs := mustParse(t, ".foobar.baz")
	require.Len(t, exprs, 1)
	require.Equal(t, ast.PreSugaredFieldID, exprs[0].Kind)
	require.Equal(t, "foobar", exprs[0].ContractName)
	require.Equal(t, "baz", exprs[0].FieldName)
}

func TestParseSugaredContractIdentifier(t *testing.T) {
	exprs := mustParse(t, ".foobar")
	require.Len(t, exprs, 1)
	require.Equal(t, ast.PreSugaredContractID, exprs[0].Kind)
	require.Equal(t, "foobar", exprs[0].ContractName)
}

func TestParseTraitReference(t *testing.T) {
	exprs := mustParse(t, "(use-trait my-trait <something>)")
	last := exprs[0].List[2]
	require.Equal(t, ast.PreTraitReference, last.Kind)
	require.Equal(t, "something", last.TraitName)
}

func TestParseIntAndUint(t *testing.T) {
	exprs := mustParse(t, "(list -42 u42)")
	require.Equal(t, ast.PreAtomValue, exprs[0].List[1].Kind)
	require.Equal(t, ast.PreAtomValue, exprs[0].List[2].Kind)
}

func TestParseFailuresUnexpectedClosingParen(t *testing.T) {
	_, err := Parse(")")
	require.NotNil(t, err)
	require.Equal(t, errors.ClosingParenthesisUnexpected, err.Kind)
}

func TestParseFailuresUnexpectedClosingBrace(t *testing.T) {
	_, err := Parse("}")
	require.NotNil(t, err)
	require.Equal(t, errors.ClosingTupleLiteralUnexpected, err.Kind)
}

func TestParseFailuresMismatchedCloseOnList(t *testing.T) {
	_, err := Parse("(foo}")
	require.NotNil(t, err)
	require.Equal(t, errors.ClosingParenthesisExpected, err.Kind)
}

func TestParseFailuresMismatchedCloseOnTuple(t *testing.T) {
	_, err := Parse("{a: 1)")
	require.NotNil(t, err)
	require.Equal(t, errors.ClosingTupleLiteralExpected, err.Kind)
}

func TestParseFailuresUnclosedList(t *testing.T) {
	_, err := Parse("(foo (bar 1)")
	require.NotNil(t, err)
	require.Equal(t, errors.ClosingParenthesisExpected, err.Kind)
}

func TestParseFailuresUnexpectedColon(t *testing.T) {
	_, err := Parse("(foo : bar)")
	require.NotNil(t, err)
	require.Equal(t, errors.ColonSeparatorUnexpected, err.Kind)
}

func TestParseFailuresUnexpectedComma(t *testing.T) {
	_, err := Parse("(foo , bar)")
	require.NotNil(t, err)
	require.Equal(t, errors.CommaSeparatorUnexpected, err.Kind)
}

func TestParseTrailingCommaInTupleAllowed(t *testing.T) {
	exprs := mustParse(t, "{a: 1,}")
	require.Len(t, exprs[0].Tuple, 2)
}

func TestParseFailuresEmptyPairMarkers(t *testing.T) {
	_, err := Parse("{,}")
	require.NotNil(t, err)
	require.Equal(t, errors.CommaSeparatorUnexpected, err.Kind)

	_, err = Parse("{:}")
	require.NotNil(t, err)
	require.Equal(t, errors.ColonSeparatorUnexpected, err.Kind)
}

func TestParseFailuresMissingColonInTuple(t *testing.T) {
	_, err := Parse("{a 1}")
	require.NotNil(t, err)
	require.Equal(t, errors.CommaSeparatorUnexpected, err.Kind)
}

func TestParseFailuresNonLFLineTerminator(t *testing.T) {
	// A lone CR is not recognized by any matcher and surfaces as a
	// FailedParsingRemainder rather than being silently normalized.
	_, err := Parse("(foo 1)\r(bar 2)")
	require.NotNil(t, err)
	require.Equal(t, errors.FailedParsingRemainder, err.Kind)
}

func TestParseHexAndBuffer(t *testing.T) {
	exprs := mustParse(t, `(list 0xdeadbeef "hello")`)
	require.Equal(t, ast.PreAtomValue, exprs[0].List[1].Kind)
	require.Equal(t, ast.PreAtomValue, exprs[0].List[2].Kind)
}

func TestParseQuotedBool(t *testing.T) {
	exprs := mustParse(t, "(list 'true 'false)")
	require.True(t, exprs[0].List[1].AtomValue.Bool)
	require.False(t, exprs[0].List[2].AtomValue.Bool)
}

func TestParseIdentifierWithinMaxLengthAccepted(t *testing.T) {
	name := strings.Repeat("a", types.ClarityMaxNameLength)
	exprs := mustParse(t, name)
	require.Len(t, exprs, 1)
	require.Equal(t, ast.PreAtom, exprs[0].Kind)
}

func TestParseIdentifierExceedingMaxLengthFails(t *testing.T) {
	name := strings.Repeat("a", types.ClarityMaxNameLength+1)
	_, err := Parse(name)
	require.NotNil(t, err)
	require.Equal(t, errors.IllegalVariableName, err.Kind)
}
