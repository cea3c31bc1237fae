// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/segmentio/ksuid"

	"clarity/grammar"
	"clarity/internal/analysis"
	"clarity/internal/block"
	"clarity/internal/costs"
	"clarity/internal/store"
	"clarity/internal/types"
)

const PROMPT = "clarity> "

// scratchFunctionName backs every bare-expression evaluation (anything
// typed at the prompt that isn't a define-* form): the session's
// accumulated definitions plus one throwaway wrapper function around
// whatever was just typed, so (+ 1 2) can be evaluated the same way a
// real public/read-only call is, through the same Block Connection path
// every deployed contract goes through.
const scratchFunctionName = "scratch-eval"

var defineHeadRe = regexp.MustCompile(`^\(\s*(define-[a-z-]+|impl-trait|use-trait)\b`)

// defaultBudget mirrors cmd/clarity-cli's block-sized execution budget;
// the REPL has no surrounding chain to pull a real block limit from.
var defaultBudget = costs.ExecutionCost{
	Runtime:     5_000_000_000,
	ReadCount:   7750,
	ReadLength:  100_000_000,
	WriteCount:  7750,
	WriteLength: 15_000_000,
}

// session holds everything one REPL run accumulates: the persistent
// store/analysis backing a single ClarityInstance, the scratch contract's
// growing source buffer, and a few user-settable options.
type session struct {
	ci      *block.ClarityInstance
	headers store.HeadersDB
	buffer  string
	sender  types.PrincipalData
	trace   bool
}

func newSession() *session {
	return &session{
		ci:      block.NewClarityInstance(store.NewMemoryClarityDatabase(), analysis.NewMemoryAnalysisDatabase()),
		headers: store.NewStaticHeadersDB(),
		sender:  types.NewStandardPrincipal(types.TransientPrincipal()),
	}
}

func Start(in io.Reader) {
	scanner := bufio.NewScanner(in)
	s := newSession()

	for {
		fmt.Print(PROMPT)
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			if s.runMetaCommand(line) {
				return
			}
			continue
		}

		s.evalLine(line)
	}
}

// runMetaCommand handles one `:`-prefixed input line and reports whether
// the REPL should exit.
func (s *session) runMetaCommand(line string) (quit bool) {
	cmd, err := grammar.ParseCommand(line)
	if err != nil {
		return false
	}

	switch {
	case cmd.Load != nil:
		s.load(cmd.Load.Path)
	case cmd.Set != nil:
		s.set(cmd.Set.Key, cmd.Set.Value)
	case cmd.Trace != nil:
		s.trace = cmd.Trace.Mode == "on"
		color.Yellow("trace: %s", cmd.Trace.Mode)
	case cmd.Reset != nil:
		*s = *newSession()
		color.Yellow("session reset")
	case cmd.Help != nil:
		printHelp()
	case cmd.Quit != nil:
		return true
	}
	return false
}

func (s *session) set(key, value string) {
	switch key {
	case "sender":
		s.sender = types.NewStandardPrincipal(types.StandardPrincipalData{Version: 0})
		color.Yellow("sender set (principal parsing from literal %q not modeled beyond placeholder)", value)
	default:
		color.Red("unknown option %q", key)
	}
}

// load deploys a whole contract file under a contract name derived from
// its base filename, independent of the scratch buffer, so :load'd
// contracts can be reached from the prompt via contract-call?.
func (s *session) load(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		return
	}

	name, err := contractNameFor(path)
	if err != nil {
		color.Red("%s", err)
		return
	}
	id := types.NewQualifiedContractIdentifier(s.sender.Standard, name)

	bc := s.ci.BeginBlock(s.headers, defaultBudget)

	contractAST, _, tlErr := bc.AnalyzeSmartContract(id, string(source))
	if tlErr != nil {
		bc.RollbackBlock()
		color.Red("%s", tlErr.Error())
		return
	}
	if tlErr := bc.InitializeSmartContract(id, contractAST, string(source), nil); tlErr != nil {
		bc.RollbackBlock()
		color.Red("%s", tlErr.Error())
		return
	}

	bc.CommitBlock()
	color.Green("loaded %s as .%s", path, name)
}

// evalLine extends the scratch contract's buffer with a new definition,
// or evaluates a one-off expression against it without growing the
// buffer, depending on whether the line looks like a define-* form.
func (s *session) evalLine(line string) {
	id := scratchContractID()

	if defineHeadRe.MatchString(line) {
		candidate := s.buffer + "\n" + line
		if ok := s.tryRunScratch(id, candidate, ""); ok {
			s.buffer = candidate
			color.Green("ok")
		}
		return
	}

	wrapped := s.buffer + "\n(define-read-only (" + scratchFunctionName + ") " + line + ")"
	s.tryRunScratch(id, wrapped, scratchFunctionName)
}

// tryRunScratch deploys source under id in its own block and, if a call
// name is given, immediately calls that read-only function and prints
// its result; it reports whether the whole attempt succeeded.
func (s *session) tryRunScratch(id types.QualifiedContractIdentifier, source, call string) bool {
	bc := s.ci.BeginBlock(s.headers, defaultBudget)
	defer bc.RollbackBlock()

	contractAST, _, tlErr := bc.AnalyzeSmartContract(id, source)
	if tlErr != nil {
		color.Red("%s", tlErr.Error())
		return false
	}
	if tlErr := bc.InitializeSmartContract(id, contractAST, source, nil); tlErr != nil {
		color.Red("%s", tlErr.Error())
		return false
	}

	if call == "" {
		return true
	}

	result, tlErr := bc.EvalReadOnly(id, call, nil)
	if tlErr != nil {
		color.Red("%s", tlErr.Error())
		return false
	}

	fmt.Println(result.String())
	if s.trace {
		color.Cyan("cost: %+v", bc.Cost())
	}
	return true
}

// scratchContractID gives each evaluated prompt line its own identity, so
// a failed attempt (which never updates s.buffer) never leaves a stale
// AST cached in the store under a name a later, unrelated line could
// collide with.
func scratchContractID() types.QualifiedContractIdentifier {
	return types.NewQualifiedContractIdentifier(types.TransientPrincipal(), types.ContractName("scratch-"+ksuid.New().String()))
}

func contractNameFor(path string) (types.ContractName, error) {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".clar")
	base = strings.TrimSuffix(base, ".clarity")
	for len(base) < 5 {
		base += "-x"
	}
	if len(base) > 40 {
		base = base[:40]
	}
	return types.NewContractName(base)
}

func printHelp() {
	color.Cyan(strings.TrimSpace(`
:load <path>        deploy a contract file, reachable via contract-call?
:set sender <addr>   reset the :load issuer to a placeholder (<addr> is not parsed)
:trace on|off        print cost totals after each evaluation
:reset                discard all session state
:help                 show this message
:quit, :q             exit
`))
}
