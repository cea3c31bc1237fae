package grammar

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
)

var metaParser = participle.MustBuild[Command](
	participle.Lexer(MetaLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ParseCommand parses one REPL input line as a meta-command. A line that
// does not start with `:` is not a command at all and should be handed
// to the contract evaluator instead — callers check that before calling
// ParseCommand.
func ParseCommand(line string) (*Command, error) {
	cmd, err := metaParser.ParseString("<repl>", line)
	if err != nil {
		reportParseError(line, err)
		return nil, err
	}
	return cmd, nil
}

// reportParseError prints a friendly caret-style parse error message for
// a malformed meta-command, the same rendering style the contract
// language's own diagnostics use elsewhere in this module.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	if pos.Column <= 0 || pos.Column > len(src)+1 {
		color.Red("syntax error: %s", err)
		return
	}

	caret := strings.Repeat(" ", pos.Column-1) + "^"
	color.Red("syntax error in meta-command at column %d:", pos.Column)
	fmt.Println(src)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
