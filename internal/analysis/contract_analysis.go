// Package analysis implements the three ordered static-semantics passes
// (ReadOnlyChecker, TypeChecker, TraitChecker) of spec.md §4.4. RunAnalysis
// opens no analysis-database transaction and writes nothing to the
// database; persisting a result is a separate PutContractAnalysis call.
package analysis

import (
	"clarity/internal/ast"
	"clarity/internal/types"
)

// FunctionSignature records one user-defined function's shape, the unit
// TraitChecker matches against a trait's required signatures and
// contract-call? instantiates against.
type FunctionSignature struct {
	Name       string
	ArgNames   []types.ClarityName
	ArgTypes   []*types.TypeSignature
	ReturnType *types.TypeSignature
	Public     bool
	ReadOnly   bool
	Body       *ast.SymbolicExpression
}

// ContractAnalysis is the persisted output of the analysis pipeline
// (spec.md's Analysis record): every expression's inferred type, every
// function's signature and read-only flag, and the trait obligations the
// contract declared or implements.
type ContractAnalysis struct {
	ContractIdentifier types.QualifiedContractIdentifier

	TypeMap map[uint64]*types.TypeSignature

	PublicFunctions  map[string]*FunctionSignature
	PrivateFunctions map[string]*FunctionSignature

	Variables map[types.ClarityName]*types.TypeSignature
	Constants map[types.ClarityName]*types.TypeSignature
	Maps      map[types.ClarityName]MapSignature

	ImplementedTraits map[string]types.TraitIdentifier
	DefinedTraits     map[string]TraitSignature
}

// MapSignature is a declared map's key/value type pair.
type MapSignature struct {
	KeyType   *types.TypeSignature
	ValueType *types.TypeSignature
}

// TraitSignature is a define-trait declaration's required function shapes,
// keyed by function name.
type TraitSignature struct {
	Functions map[string]*FunctionSignature
}

func NewContractAnalysis(id types.QualifiedContractIdentifier) *ContractAnalysis {
	return &ContractAnalysis{
		ContractIdentifier: id,
		TypeMap:            make(map[uint64]*types.TypeSignature),
		PublicFunctions:     make(map[string]*FunctionSignature),
		PrivateFunctions:    make(map[string]*FunctionSignature),
		Variables:           make(map[types.ClarityName]*types.TypeSignature),
		Constants:           make(map[types.ClarityName]*types.TypeSignature),
		Maps:                make(map[types.ClarityName]MapSignature),
		ImplementedTraits:   make(map[string]types.TraitIdentifier),
		DefinedTraits:       make(map[string]TraitSignature),
	}
}

// AllFunctions returns public and private functions merged, the lookup
// FunctionCall / contract-call? resolution needs.
func (ca *ContractAnalysis) AllFunctions() map[string]*FunctionSignature {
	out := make(map[string]*FunctionSignature, len(ca.PublicFunctions)+len(ca.PrivateFunctions))
	for name, fn := range ca.PrivateFunctions {
		out[name] = fn
	}
	for name, fn := range ca.PublicFunctions {
		out[name] = fn
	}
	return out
}
