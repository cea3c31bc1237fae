package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// MetaLexer tokenizes the REPL's `:`-prefixed meta-command language
// (`:load path`, `:set key value`, `:trace on|off`, `:reset`, `:help`,
// `:quit`) — a much smaller grammar than the contract language itself,
// so a single flat token set suffices where Kanso's original lexer
// needed multiple states.
var MetaLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Colon", `:`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_-]*`, nil},
		{"Path", `[^\s:]+`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
