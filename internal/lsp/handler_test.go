package lsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateASTValidContractProducesNoDiagnostics(t *testing.T) {
	h := NewClarityHandler()
	diags := h.updateAST("/tmp/valid.clar", `
		(define-read-only (identity (n uint)) n)
	`)
	require.Empty(t, diags)

	h.mu.RLock()
	_, cached := h.asts["/tmp/valid.clar"]
	h.mu.RUnlock()
	require.True(t, cached, "successfully analyzed contract should be cached")
}

func TestUpdateASTParseFailureProducesDiagnostic(t *testing.T) {
	h := NewClarityHandler()
	diags := h.updateAST("/tmp/unbalanced.clar", `(define-read-only (broken (n uint)) (+ n 1)`)
	require.Len(t, diags, 1)
	require.Equal(t, "clarity-parser", *diags[0].Source)

	h.mu.RLock()
	_, cached := h.asts["/tmp/unbalanced.clar"]
	h.mu.RUnlock()
	require.False(t, cached, "a failed parse must not leave a stale cached AST")
}

func TestUpdateASTAnalysisFailureProducesDiagnostic(t *testing.T) {
	h := NewClarityHandler()
	diags := h.updateAST("/tmp/typeerror.clar", `
		(define-read-only (bad) (+ u1 true))
	`)
	require.Len(t, diags, 1)
	require.Equal(t, "clarity-analysis", *diags[0].Source)
}
