package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"clarity/internal/lsp"
)

const lsName = "clarity"

var (
	version = "0.1.0"
	handler protocol.Handler
)

func main() {
	commonlog.Configure(1, nil)

	clarityHandler := lsp.NewClarityHandler()

	handler = protocol.Handler{
		Initialize:             clarityHandler.Initialize,
		Initialized:            clarityHandler.Initialized,
		Shutdown:               clarityHandler.Shutdown,
		TextDocumentDidOpen:    clarityHandler.TextDocumentDidOpen,
		TextDocumentDidClose:   clarityHandler.TextDocumentDidClose,
		TextDocumentDidChange:  clarityHandler.TextDocumentDidChange,
		TextDocumentCompletion: clarityHandler.TextDocumentCompletion,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting Clarity LSP server...")
	if err := s.RunStdio(); err != nil {
		log.Println("Error starting Clarity LSP server:", err)
		os.Exit(1)
	}
}
