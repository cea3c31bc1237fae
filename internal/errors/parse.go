package errors

import (
	"fmt"

	"clarity/internal/span"
)

// ParseErrorKind enumerates the static lexer/parser failures of spec.md §7.
type ParseErrorKind int

const (
	SeparatorExpected ParseErrorKind = iota
	FailedParsingRemainder
	IllegalVariableName
	FailedParsingInt
	FailedParsingPrincipal
	FailedParsingField
	FailedParsingHex
	FailedParsingBuffer
	ProgramTooLarge
	UnknownQuotedValue
	ClosingParenthesisUnexpected
	ClosingParenthesisExpected
	ClosingTupleLiteralUnexpected
	ClosingTupleLiteralExpected
	ColonSeparatorUnexpected
	CommaSeparatorUnexpected
)

func (k ParseErrorKind) String() string {
	switch k {
	case SeparatorExpected:
		return "SeparatorExpected"
	case FailedParsingRemainder:
		return "FailedParsingRemainder"
	case IllegalVariableName:
		return "IllegalVariableName"
	case FailedParsingInt:
		return "FailedParsingInt"
	case FailedParsingPrincipal:
		return "FailedParsingPrincipal"
	case FailedParsingField:
		return "FailedParsingField"
	case FailedParsingHex:
		return "FailedParsingHex"
	case FailedParsingBuffer:
		return "FailedParsingBuffer"
	case ProgramTooLarge:
		return "ProgramTooLarge"
	case UnknownQuotedValue:
		return "UnknownQuotedValue"
	case ClosingParenthesisUnexpected:
		return "ClosingParenthesisUnexpected"
	case ClosingParenthesisExpected:
		return "ClosingParenthesisExpected"
	case ClosingTupleLiteralUnexpected:
		return "ClosingTupleLiteralUnexpected"
	case ClosingTupleLiteralExpected:
		return "ClosingTupleLiteralExpected"
	case ColonSeparatorUnexpected:
		return "ColonSeparatorUnexpected"
	case CommaSeparatorUnexpected:
		return "CommaSeparatorUnexpected"
	default:
		return "UnknownParseError"
	}
}

// ParseError is a static failure raised by the lexer or parser. It carries
// the exact source span so the reporter can render a caret diagnostic.
type ParseError struct {
	Kind    ParseErrorKind
	Message string
	Span    span.Span
}

func (e *ParseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

func NewParseError(kind ParseErrorKind, span span.Span, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}
