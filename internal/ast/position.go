// Package ast defines the pre-expression and symbolic-expression trees
// that flow between the lexer/parser and the AST/analysis pipelines.
package ast

import "clarity/internal/span"

// Position and Span are aliases of the shared span package types so that
// existing call sites can keep writing ast.Position / ast.Span.
type Position = span.Position
type Span = span.Span
