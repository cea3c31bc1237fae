package astpipeline

import (
	"clarity/internal/ast"
	"clarity/internal/costs"
	"clarity/internal/errors"
	"clarity/internal/parser"
	"clarity/internal/types"
)

// Run builds a ContractAST by lexing and parsing source, then driving the
// five ordered AST passes over it: StackDepthChecker, ExpressionIdentifier,
// DefinitionSorter, TraitsResolver, SugarExpander. The pass order is fixed
// and not negotiable (spec.md §4.3).
func Run(id types.QualifiedContractIdentifier, source string, tracker *costs.LimitedCostTracker) (*ast.ContractAST, *errors.ParseError, *errors.CheckError) {
	pre, parseErr := parser.Parse(source)
	if parseErr != nil {
		return nil, parseErr, nil
	}

	contractAST := ast.NewContractAST(id, pre)

	if err := NewStackDepthChecker().Run(pre); err != nil {
		return contractAST, nil, err.(*errors.CheckError)
	}

	contractAST.Expressions = NewExpressionIdentifier().Run(pre)

	sorted, err := NewDefinitionSorter(tracker).Run(contractAST.Expressions)
	if err != nil {
		return contractAST, nil, err.(*errors.CheckError)
	}
	contractAST.Expressions = sorted

	if err := NewTraitsResolver(id.Issuer).Run(contractAST.Expressions, contractAST.ReferencedTraits); err != nil {
		return contractAST, nil, err.(*errors.CheckError)
	}

	NewSugarExpander(id.Issuer).Run(contractAST.Expressions)

	return contractAST, nil, nil
}
