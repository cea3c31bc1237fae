package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"clarity/internal/errors"
)

// fromParseError converts a lex/parse failure into an LSP diagnostic,
// built on the same Diagnostic shape cmd/clarity-cli renders to the
// terminal, just translated into 0-based LSP line/column coordinates.
func fromParseError(e *errors.ParseError) protocol.Diagnostic {
	return toProtocolDiagnostic(errors.FromParseError(e), "clarity-parser")
}

// fromCheckError converts a static analysis failure into an LSP
// diagnostic.
func fromCheckError(e *errors.CheckError) protocol.Diagnostic {
	return toProtocolDiagnostic(errors.FromCheckError(e), "clarity-analysis")
}

func toProtocolDiagnostic(d errors.Diagnostic, source string) protocol.Diagnostic {
	line := uint32(max0(d.Position.Line - 1))
	startChar := uint32(max0(d.Position.Column - 1))
	length := uint32(d.Length)
	if length == 0 {
		length = 1
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: startChar},
			End:   protocol.Position{Line: line, Character: startChar + length},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString(source),
		Message:  d.Message,
	}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }
func ptrString(s string) *string                                           { return &s }
