package astpipeline

import (
	"clarity/internal/ast"
	"clarity/internal/types"
)

// ExpressionIdentifier is the second AST pass. It walks the pre-expression
// tree in document order, converting each node to its canonical
// SymbolicExpression shape and assigning a fresh monotonically increasing
// id starting at 1 (invariant I1). Sugared contract/field identifiers are
// carried through as SymSugaredContractID/SymSugaredFieldID — SugarExpander
// resolves them in the next pass.
type ExpressionIdentifier struct {
	nextID uint64
}

func NewExpressionIdentifier() *ExpressionIdentifier {
	return &ExpressionIdentifier{nextID: 1}
}

func (ei *ExpressionIdentifier) Run(pre []*ast.PreSymbolicExpression) []*ast.SymbolicExpression {
	out := make([]*ast.SymbolicExpression, len(pre))
	for i, p := range pre {
		out[i] = ei.convert(p)
	}
	return out
}

func (ei *ExpressionIdentifier) convert(p *ast.PreSymbolicExpression) *ast.SymbolicExpression {
	id := ei.nextID
	ei.nextID++

	sym := &ast.SymbolicExpression{Id: id, Span: p.Span}

	switch p.Kind {
	case ast.PreAtom:
		sym.Kind = ast.SymAtom
		sym.Atom = p.Atom
	case ast.PreAtomValue:
		sym.Kind = ast.SymAtomValue
		sym.AtomValue = p.AtomValue
	case ast.PreList:
		sym.Kind = ast.SymList
		sym.List = make([]*ast.SymbolicExpression, len(p.List))
		for i, c := range p.List {
			sym.List[i] = ei.convert(c)
		}
	case ast.PreTuple:
		// Canonicalized into a `(tuple (k1 v1) (k2 v2) ...)` list shape
		// so every later pass only ever walks SymList/SymAtom nodes.
		sym.Kind = ast.SymList
		head := &ast.SymbolicExpression{Id: ei.nextID, Kind: ast.SymAtom, Atom: "tuple", Span: p.Span}
		ei.nextID++
		pairs := []*ast.SymbolicExpression{head}
		for i := 0; i+1 < len(p.Tuple); i += 2 {
			pairID := ei.nextID
			ei.nextID++
			key := ei.convert(p.Tuple[i])
			val := ei.convert(p.Tuple[i+1])
			pairs = append(pairs, &ast.SymbolicExpression{
				Id:   pairID,
				Kind: ast.SymList,
				Span: ast.Span{Start: key.Span.Start, End: val.Span.End},
				List: []*ast.SymbolicExpression{key, val},
			})
		}
		sym.List = pairs
	case ast.PreSugaredContractID:
		if p.Issuer != "" {
			// Fully-qualified ('ISSUER.contract) — already resolved,
			// no SugarExpander rewrite needed.
			sym.Kind = ast.SymLiteralValue
			sym.LiteralValue = types.PrincipalValue(types.NewContractPrincipal(qualifiedContractID(p.Issuer, p.ContractName)))
		} else {
			sym.Kind = ast.SymSugaredContractID
			sym.SugaredContractName = p.ContractName
		}
	case ast.PreSugaredFieldID:
		sym.Kind = ast.SymSugaredFieldID
		sym.SugaredContractName = p.ContractName
		sym.SugaredFieldName = p.FieldName
	case ast.PreFieldID:
		sym.Kind = ast.SymField
		// Issuer-qualified fields are already fully resolved; no
		// sugar expansion needed, so Field is populated directly.
		contractID := qualifiedContractID(p.Issuer, p.ContractName)
		fieldRef := types.NewTraitIdentifier(contractID, types.ClarityName(p.FieldName))
		sym.Field = &fieldRef
	case ast.PreTraitReference:
		sym.Kind = ast.SymTraitReference
		sym.TraitReferenceName = p.TraitName
	}
	return sym
}

// qualifiedContractID decodes a base58 issuer string (already validated by
// the parser) into a QualifiedContractIdentifier. The contract name is not
// validated here, and no later pipeline or analysis pass runs
// NewContractName on it either.
func qualifiedContractID(issuer, contractName string) types.QualifiedContractIdentifier {
	principal, _ := types.DecodeBase58Principal(issuer)
	return types.NewQualifiedContractIdentifier(principal, types.ContractName(contractName))
}
