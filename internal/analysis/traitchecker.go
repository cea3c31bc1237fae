package analysis

import (
	"clarity/internal/ast"
	"clarity/internal/errors"
	"clarity/internal/types"
)

// TraitChecker is the third and final analysis pass: it verifies every
// impl-trait declaration is actually satisfied by a public function of
// matching name, arity, and argument/return types, per spec.md §4.4.
type TraitChecker struct {
	analysis *ContractAnalysis
	db       AnalysisDatabase
}

func NewTraitChecker(analysis *ContractAnalysis, db AnalysisDatabase) *TraitChecker {
	return &TraitChecker{analysis: analysis, db: db}
}

// Run walks top looking for impl-trait declarations (TraitsResolver has
// already validated their shape and, for local <name> references, filled
// in TraitReferenceID) and checks each against the trait's required
// signatures fetched from db.
func (tc *TraitChecker) Run(top []*ast.SymbolicExpression) *errors.CheckError {
	for _, form := range top {
		if form.Kind != ast.SymList || len(form.List) != 2 || form.List[0].Kind != ast.SymAtom {
			continue
		}
		if form.List[0].Atom != "impl-trait" {
			continue
		}
		traitID, err := tc.resolveImplementedTrait(form.List[1])
		if err != nil {
			return err
		}
		if err := tc.checkImplementation(form, traitID); err != nil {
			return err
		}
		tc.analysis.ImplementedTraits[traitID.String()] = traitID
	}
	return nil
}

func (tc *TraitChecker) resolveImplementedTrait(e *ast.SymbolicExpression) (types.TraitIdentifier, *errors.CheckError) {
	switch e.Kind {
	case ast.SymField:
		return *e.Field, nil
	case ast.SymTraitReference:
		if e.TraitReferenceID == nil {
			return types.TraitIdentifier{}, errors.NewCheckError(errors.TraitReferenceUnknown, e.Span,
				"unresolved trait reference <%s>", e.TraitReferenceName)
		}
		return *e.TraitReferenceID, nil
	default:
		return types.TraitIdentifier{}, errors.NewCheckError(errors.TraitReferenceUnknown, e.Span, "expected a trait reference")
	}
}

func (tc *TraitChecker) checkImplementation(form *ast.SymbolicExpression, traitID types.TraitIdentifier) *errors.CheckError {
	required, found, err := tc.db.GetTrait(traitID)
	if err != nil {
		return errors.NewCheckError(errors.NoSuchTrait, form.Span, "failed looking up trait %s: %v", traitID, err)
	}
	if !found {
		return errors.NewCheckError(errors.NoSuchTrait, form.Span, "no such trait %s", traitID)
	}

	for fnName, want := range required.Functions {
		got, ok := tc.analysis.PublicFunctions[fnName]
		if !ok {
			return errors.NewCheckError(errors.BadTraitImplementation, form.Span,
				"trait %s requires public function %q, which is missing", traitID, fnName)
		}
		if err := matchesTraitFunction(want, got); err != nil {
			return errors.NewCheckError(errors.BadTraitImplementation, form.Span,
				"function %q does not satisfy trait %s: %s", fnName, traitID, err)
		}
	}
	return nil
}

// matchesTraitFunction compares a trait's required shape against the
// implementing contract's actual function. Argument/return types must
// admit each other in both directions — a trait function signature is
// exact, not covariant, per spec.md §4.7's trait-implementation rule.
func matchesTraitFunction(want, got *FunctionSignature) error {
	if len(want.ArgTypes) != len(got.ArgTypes) {
		return errors.NewCheckError(errors.IncorrectArgumentCount, ast.Span{},
			"expected %d argument(s), got %d", len(want.ArgTypes), len(got.ArgTypes))
	}
	for i, wantType := range want.ArgTypes {
		gotType := got.ArgTypes[i]
		if !wantType.Admits(gotType) || !gotType.Admits(wantType) {
			return errors.NewCheckError(errors.TypeError, ast.Span{},
				"argument %d has type %s, trait requires %s", i, gotType, wantType)
		}
	}
	if want.ReturnType != nil && got.ReturnType != nil {
		if !want.ReturnType.Admits(got.ReturnType) || !got.ReturnType.Admits(want.ReturnType) {
			return errors.NewCheckError(errors.TypeError, ast.Span{},
				"return type %s does not match trait's required %s", got.ReturnType, want.ReturnType)
		}
	}
	return nil
}
