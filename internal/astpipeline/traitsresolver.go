package astpipeline

import (
	"clarity/internal/ast"
	"clarity/internal/errors"
	"clarity/internal/types"
)

// TraitsResolver is the fourth AST pass: it resolves every trait reference
// (`use-trait`, `impl-trait`, and typed parameters of the form `<name>` or
// `contract.trait`) to a concrete TraitIdentifier, filling in the
// contract's ReferencedTraits map.
type TraitsResolver struct {
	currentIssuer types.StandardPrincipalData
}

func NewTraitsResolver(currentIssuer types.StandardPrincipalData) *TraitsResolver {
	return &TraitsResolver{currentIssuer: currentIssuer}
}

// Run walks top, recording every use-trait/impl-trait declaration into
// referenced, and resolving bare <name> trait references against that set.
func (tr *TraitsResolver) Run(top []*ast.SymbolicExpression, referenced map[string]types.TraitIdentifier) error {
	for _, form := range top {
		if err := tr.collectDeclarations(form, referenced); err != nil {
			return err
		}
	}
	for _, form := range top {
		if err := tr.resolveReferences(form, referenced); err != nil {
			return err
		}
	}
	return nil
}

// collectDeclarations handles `(use-trait alias trait-ref)` and
// `(impl-trait trait-ref)` forms at the top level.
func (tr *TraitsResolver) collectDeclarations(form *ast.SymbolicExpression, referenced map[string]types.TraitIdentifier) error {
	if form.Kind != ast.SymList || len(form.List) == 0 || form.List[0].Kind != ast.SymAtom {
		return nil
	}
	switch form.List[0].Atom {
	case "use-trait":
		if len(form.List) != 3 || form.List[1].Kind != ast.SymAtom {
			return errors.NewCheckError(errors.TraitReferenceUnknown, form.Span, "malformed use-trait")
		}
		alias := form.List[1].Atom
		id, err := tr.resolveTraitExpr(form.List[2])
		if err != nil {
			return err
		}
		if _, exists := referenced[alias]; exists {
			return errors.NewCheckError(errors.NameAlreadyUsed, form.Span, "trait alias %q already used", alias)
		}
		referenced[alias] = id
	case "impl-trait":
		if len(form.List) != 2 {
			return errors.NewCheckError(errors.TraitReferenceUnknown, form.Span, "malformed impl-trait")
		}
		id, err := tr.resolveTraitExpr(form.List[1])
		if err != nil {
			return err
		}
		referenced[id.String()] = id
	}
	return nil
}

// resolveTraitExpr resolves a `'issuer.contract.trait-name` field
// expression (SymField) into a TraitIdentifier. Sugared `.contract.name`
// forms have not yet been rewritten at this point in the pipeline order
// (TraitsResolver runs before SugarExpander), so they are resolved here
// directly against the current issuer rather than waiting for expansion.
func (tr *TraitsResolver) resolveTraitExpr(e *ast.SymbolicExpression) (types.TraitIdentifier, error) {
	switch e.Kind {
	case ast.SymField:
		return *e.Field, nil
	case ast.SymSugaredFieldID:
		contractID := types.NewQualifiedContractIdentifier(tr.currentIssuer, types.ContractName(e.SugaredContractName))
		return types.NewTraitIdentifier(contractID, types.ClarityName(e.SugaredFieldName)), nil
	default:
		return types.TraitIdentifier{}, errors.NewCheckError(errors.TraitReferenceUnknown, e.Span, "expected a trait field reference")
	}
}

// resolveReferences recursively rewrites bare <name> SymTraitReference
// nodes' TraitReferenceID by looking the name up in referenced.
func (tr *TraitsResolver) resolveReferences(e *ast.SymbolicExpression, referenced map[string]types.TraitIdentifier) error {
	if e == nil {
		return nil
	}
	if e.Kind == ast.SymTraitReference {
		id, ok := referenced[e.TraitReferenceName]
		if !ok {
			return errors.NewCheckError(errors.TraitReferenceUnknown, e.Span, "unresolved trait reference <%s>", e.TraitReferenceName)
		}
		e.TraitReferenceID = &id
		return nil
	}
	if e.Kind == ast.SymList {
		for _, c := range e.List {
			if err := tr.resolveReferences(c, referenced); err != nil {
				return err
			}
		}
	}
	return nil
}
