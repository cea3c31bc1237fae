package ast

import "clarity/internal/types"

// ContractAST is the AST pipeline's input/output record (spec.md §3):
// pre-expressions in, canonical expressions out, plus the trait map the
// TraitsResolver fills in.
type ContractAST struct {
	ID               types.QualifiedContractIdentifier
	PreExpressions   []*PreSymbolicExpression
	Expressions      []*SymbolicExpression
	ReferencedTraits map[string]types.TraitIdentifier
}

func NewContractAST(id types.QualifiedContractIdentifier, pre []*PreSymbolicExpression) *ContractAST {
	return &ContractAST{
		ID:               id,
		PreExpressions:   pre,
		ReferencedTraits: make(map[string]types.TraitIdentifier),
	}
}
