// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	pkgerrors "github.com/pkg/errors"
	"github.com/segmentio/ksuid"

	"clarity/internal/analysis"
	"clarity/internal/astpipeline"
	"clarity/internal/costs"
	"clarity/internal/errors"
	"clarity/internal/types"
)

// defaultBudget is a representative block-execution budget, the same
// order of magnitude as a mainnet block limit, used when the CLI has no
// surrounding block.ClarityBlockConnection to supply one.
var defaultBudget = costs.ExecutionCost{
	Runtime:     5_000_000_000,
	ReadCount:   7750,
	ReadLength:  100_000_000,
	WriteCount:  7750,
	WriteLength: 15_000_000,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: clarity-cli <file.clar>")
		os.Exit(1)
	}

	path := os.Args[1]

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
		os.Exit(1)
	}

	id := scratchContractID()
	tracker := costs.NewLimitedCostTracker(defaultBudget)

	contractAST, parseErr, checkErr := astpipeline.Run(id, string(source), tracker)
	if parseErr != nil {
		report(path, string(source), errors.FromParseError(parseErr))
		os.Exit(1)
	}
	if checkErr != nil {
		report(path, string(source), errors.FromCheckError(checkErr))
		os.Exit(1)
	}

	for _, e := range contractAST.Expressions {
		fmt.Println(e.String())
	}

	db := analysis.NewMemoryAnalysisDatabase()
	ca, err := analysis.RunAnalysis(contractAST, tracker, db)
	if err != nil {
		if ce, ok := pkgerrors.Cause(err).(*errors.CheckError); ok {
			report(path, string(source), errors.FromCheckError(ce))
		} else {
			color.Red("❌ %s", err)
		}
		os.Exit(1)
	}

	total := tracker.Total()
	fmt.Printf("public functions: %d, private functions: %d, cost: %+v\n",
		len(ca.PublicFunctions), len(ca.PrivateFunctions), total)

	color.Green("✅ Successfully processed %s", path)
}

// scratchContractID gives each one-shot CLI invocation its own identity
// instead of a single fixed transient name, so two files processed back
// to back (a future REPL-style loop, a batch script invoking this binary
// many times against one shared store) never collide.
func scratchContractID() types.QualifiedContractIdentifier {
	return types.NewQualifiedContractIdentifier(types.TransientPrincipal(), types.ContractName("scratch-"+ksuid.New().String()))
}

// report renders a Diagnostic through the Rust-compiler-style Reporter
// built from the source just read.
func report(path, source string, d errors.Diagnostic) {
	reporter := errors.NewReporter(path, source)
	fmt.Print(reporter.Format(d))
}
