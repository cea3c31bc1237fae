package analysis

import (
	"clarity/internal/ast"
	"clarity/internal/costs"

	pkgerrors "github.com/pkg/errors"
)

// RunAnalysis executes the three ordered static-semantics passes over an
// already-pipelined ContractAST: ReadOnlyChecker, then TypeChecker, then
// TraitChecker, populating and returning a ContractAnalysis. Any failure
// aborts the whole pass — there is no partial analysis result to persist.
// RunAnalysis itself never writes the result back to db; persisting a
// ContractAnalysis is always a separate, explicit step (internal/block's
// SaveAnalysis), so analyzing a contract never makes it resolvable to
// others on its own.
//
// db is consulted only by TraitChecker (to fetch a trait's required
// signatures) and is not otherwise required; callers analyzing a contract
// with no impl-trait declarations may pass a fresh MemoryAnalysisDatabase.
func RunAnalysis(contractAST *ast.ContractAST, tracker *costs.LimitedCostTracker, db AnalysisDatabase) (*ContractAnalysis, error) {
	ca := NewContractAnalysis(contractAST.ID)

	if err := CollectDefinitions(ca, contractAST.Expressions); err != nil {
		return nil, pkgerrors.Wrap(err, "collecting contract definitions")
	}

	if err := NewReadOnlyChecker(ca).Run(); err != nil {
		return nil, pkgerrors.Wrap(err, "read-only analysis")
	}

	if err := NewTypeChecker(ca, tracker).Run(contractAST.Expressions); err != nil {
		return nil, pkgerrors.Wrap(err, "type analysis")
	}

	if err := NewTraitChecker(ca, db).Run(contractAST.Expressions); err != nil {
		return nil, pkgerrors.Wrap(err, "trait analysis")
	}

	return ca, nil
}
