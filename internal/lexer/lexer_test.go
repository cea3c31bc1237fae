package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"clarity/internal/errors"
)

func mustLex(t *testing.T, src string) []Token {
	t.Helper()
	tokens, err := Lex(src)
	require.Nil(t, err, "unexpected lex error: %v", err)
	return tokens
}

func TestLexSimpleList(t *testing.T) {
	tokens := mustLex(t, "(+ 1 u2)")
	require.Len(t, tokens, 5)
	require.Equal(t, ItemLeftParen, tokens[0].Type)
	require.Equal(t, ItemVariable, tokens[1].Type)
	require.Equal(t, "+", tokens[1].Lexeme)
	require.Equal(t, ItemInt, tokens[2].Type)
	require.Equal(t, ItemUInt, tokens[3].Type)
	require.Equal(t, ItemRightParen, tokens[4].Type)
}

func TestLexStringLiteralAcceptsPrintableASCII(t *testing.T) {
	tokens := mustLex(t, `"hello, world!"`)
	require.Len(t, tokens, 1)
	require.Equal(t, ItemStringLiteral, tokens[0].Type)
	require.Equal(t, `"hello, world!"`, tokens[0].Lexeme)
}

func TestLexStringLiteralAcceptsEscapedQuote(t *testing.T) {
	tokens := mustLex(t, `"say \"hi\""`)
	require.Len(t, tokens, 1)
	require.Equal(t, ItemStringLiteral, tokens[0].Type)
}

func TestLexStringLiteralRejectsNonASCII(t *testing.T) {
	_, err := Lex(`"héllo"`)
	require.NotNil(t, err)
	require.Equal(t, errors.FailedParsingRemainder, err.Kind)
}

func TestLexStringLiteralRejectsControlBytes(t *testing.T) {
	_, err := Lex("\"a\tb\"")
	require.NotNil(t, err)
	require.Equal(t, errors.FailedParsingRemainder, err.Kind)
}

func TestLexCommentsAreSkipped(t *testing.T) {
	tokens := mustLex(t, ";; a comment\n(foo)")
	require.Len(t, tokens, 3)
	require.Equal(t, ItemLeftParen, tokens[0].Type)
}

func TestLexSeparatorRequiredBetweenAdjacentLiterals(t *testing.T) {
	_, err := Lex("u1u2")
	require.NotNil(t, err)
	require.Equal(t, errors.SeparatorExpected, err.Kind)
}

func TestLexUnrecognizedInputFails(t *testing.T) {
	_, err := Lex("#bad")
	require.NotNil(t, err)
	require.Equal(t, errors.FailedParsingRemainder, err.Kind)
}
