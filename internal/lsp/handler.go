package lsp

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"clarity/internal/analysis"
	"clarity/internal/ast"
	"clarity/internal/astpipeline"
	"clarity/internal/costs"
	"clarity/internal/errors"
	"clarity/internal/types"
)

// scratchContractID names every in-editor document under one fixed
// transient identity: an LSP session analyzes one file at a time with no
// deploy history, so there is nothing for a real QualifiedContractIdentifier
// to key off of.
func scratchContractID() types.QualifiedContractIdentifier {
	return types.NewQualifiedContractIdentifier(types.TransientPrincipal(), "lsp-scratch-contract")
}

// SemanticTokenTypes/Modifiers list a small token legend that Initialize
// does not advertise: Lisp-like s-expression forms don't carve into the
// namespace/type/parameter categories an editor's semantic highlighter
// expects, so this server does not implement TextDocumentSemanticTokensFull
// (see DESIGN.md).
var SemanticTokenTypes = []string{
	"keyword", "function", "variable", "number", "operator",
}

var SemanticTokenModifiers = []string{
	"declaration", "readonly",
}

// ClarityHandler implements the LSP server handlers for Clarity contracts:
// on every open/change it re-runs the lex/parse/AST-pipeline/analysis
// chain for the document and publishes whatever diagnostics fall out.
type ClarityHandler struct {
	mu      sync.RWMutex
	content map[string]string
	asts    map[string]*ast.ContractAST
}

func NewClarityHandler() *ClarityHandler {
	return &ClarityHandler{
		content: make(map[string]string),
		asts:    make(map[string]*ast.ContractAST),
	}
}

func (h *ClarityHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("LSP Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBoolVal(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBoolVal(false),
			},
		},
	}, nil
}

func (h *ClarityHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("Clarity LSP Initialized")
	return nil
}

func (h *ClarityHandler) Shutdown(ctx *glsp.Context) error {
	log.Println("Clarity LSP Shutdown")
	return nil
}

func (h *ClarityHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Printf("Opened file: %s\n", params.TextDocument.URI)
	return h.analyzeAndPublish(ctx, params.TextDocument.URI)
}

func (h *ClarityHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Printf("Changed file: %s\n", params.TextDocument.URI)
	return h.analyzeAndPublish(ctx, params.TextDocument.URI)
}

func (h *ClarityHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Printf("Closed file: %s\n", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.content, path)
	delete(h.asts, path)
	return nil
}

func (h *ClarityHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (interface{}, error) {
	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        []protocol.CompletionItem{},
	}, nil
}

// analyzeAndPublish re-reads the document from disk (full-sync mode means
// the editor's on-disk copy is always current by the time a notification
// arrives) and republishes whatever diagnostics fall out of analyzing it.
func (h *ClarityHandler) analyzeAndPublish(ctx *glsp.Context, uri protocol.DocumentUri) error {
	path, err := uriToPath(uri)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", uri, err)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	diagnostics := h.updateAST(path, string(source))
	sendDiagnosticNotification(ctx, uri, diagnostics)
	return nil
}

// updateAST lexes/parses/pipelines/analyzes source against a fixed
// transient contract identity (one file, one editor session, no deploy
// history to key off of) and caches the resulting AST for later requests;
// any parse or analysis failure clears the cached AST and returns its
// diagnostic instead.
func (h *ClarityHandler) updateAST(path, source string) []protocol.Diagnostic {
	id := scratchContractID()
	tracker := costs.NewFreeCostTracker()

	contractAST, parseErr, checkErr := astpipeline.Run(id, source, tracker)
	if parseErr != nil {
		h.clear(path)
		return []protocol.Diagnostic{fromParseError(parseErr)}
	}
	if checkErr != nil {
		h.clear(path)
		return []protocol.Diagnostic{fromCheckError(checkErr)}
	}

	if _, err := analysis.RunAnalysis(contractAST, tracker, analysis.NewMemoryAnalysisDatabase()); err != nil {
		h.clear(path)
		if ce, ok := causeCheckError(err); ok {
			return []protocol.Diagnostic{fromCheckError(ce)}
		}
		return nil
	}

	h.mu.Lock()
	h.content[path] = source
	h.asts[path] = contractAST
	h.mu.Unlock()
	return nil
}

func (h *ClarityHandler) clear(path string) {
	h.mu.Lock()
	delete(h.content, path)
	delete(h.asts, path)
	h.mu.Unlock()
}

// causeCheckError unwinds analysis.RunAnalysis's pkgerrors.Wrap chain
// back to the concrete *errors.CheckError, the same unwrap cmd/clarity-cli's
// own reporting performs.
func causeCheckError(err error) (*errors.CheckError, bool) {
	type causer interface{ Cause() error }
	for err != nil {
		if ce, ok := err.(*errors.CheckError); ok {
			return ce, true
		}
		c, ok := err.(causer)
		if !ok {
			return nil, false
		}
		err = c.Cause()
	}
	return nil, false
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBoolVal(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
