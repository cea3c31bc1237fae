// Package span defines source position and span types shared by every
// other package in this module (lexer, ast, errors, types) so that none
// of them needs to depend on another just to describe "where in the
// source this came from".
package span

import "fmt"

// Position marks a location in source text. Line and Column are 1-based;
// Offset is the 0-based absolute byte index.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Span is an inclusive source range: it covers Start through End, both
// endpoints included, matching the lexer's "end column = start column +
// token length - 1" convention rather than a half-open byte range.
type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Covers reports whether the span wholly contains other.
func (s Span) Covers(other Span) bool {
	if other.Start.Offset < s.Start.Offset {
		return false
	}
	if other.End.Offset > s.End.Offset {
		return false
	}
	return true
}
