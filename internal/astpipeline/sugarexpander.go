package astpipeline

import (
	"clarity/internal/ast"
	"clarity/internal/types"
)

// SugarExpander is the fifth and final AST pass. It rewrites every
// remaining sugared node into canonical form:
//
//   - `.foo` (SymSugaredContractID)             -> LiteralValue(Principal(Contract('issuer.foo)))
//   - `.foo.bar` (SymSugaredFieldID)             -> Field(TraitIdentifier{'issuer.foo, bar})
//
// After Run, the tree contains only SymAtom, SymAtomValue, SymLiteralValue,
// SymList, SymTraitReference, and SymField nodes — spec.md §4.3's promise
// that no sugared variant survives past this pass.
type SugarExpander struct {
	currentIssuer types.StandardPrincipalData
}

func NewSugarExpander(currentIssuer types.StandardPrincipalData) *SugarExpander {
	return &SugarExpander{currentIssuer: currentIssuer}
}

func (se *SugarExpander) Run(top []*ast.SymbolicExpression) {
	for _, e := range top {
		se.expand(e)
	}
}

func (se *SugarExpander) expand(e *ast.SymbolicExpression) {
	if e == nil {
		return
	}
	switch e.Kind {
	case ast.SymSugaredContractID:
		contractID := types.NewQualifiedContractIdentifier(se.currentIssuer, types.ContractName(e.SugaredContractName))
		e.Kind = ast.SymLiteralValue
		e.LiteralValue = types.PrincipalValue(types.NewContractPrincipal(contractID))
		e.SugaredContractName = ""
	case ast.SymSugaredFieldID:
		contractID := types.NewQualifiedContractIdentifier(se.currentIssuer, types.ContractName(e.SugaredContractName))
		field := types.NewTraitIdentifier(contractID, types.ClarityName(e.SugaredFieldName))
		e.Kind = ast.SymField
		e.Field = &field
		e.SugaredContractName = ""
		e.SugaredFieldName = ""
	case ast.SymList:
		for _, c := range e.List {
			se.expand(c)
		}
	}
}
