package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"clarity/internal/ast"
	"clarity/internal/astpipeline"
	"clarity/internal/costs"
	"clarity/internal/types"
)

func mustAnalyze(t *testing.T, source string) (*ContractAnalysis, *MemoryAnalysisDatabase) {
	t.Helper()
	id := types.TransientContractIdentifier()
	tracker := costs.NewFreeCostTracker()
	contractAST, parseErr, checkErr := astpipeline.Run(id, source, tracker)
	require.Nil(t, parseErr)
	require.Nil(t, checkErr)
	db := NewMemoryAnalysisDatabase()
	ca, err := RunAnalysis(contractAST, tracker, db)
	require.NoError(t, err)
	return ca, db
}

func TestCollectDefinitionsRecordsFunctionsVarsMaps(t *testing.T) {
	ca, _ := mustAnalyze(t, `
		(define-data-var counter uint u0)
		(define-map balances principal uint)
		(define-constant limit u100)
		(define-read-only (get-counter) (var-get counter))
		(define-public (increment) (begin (var-set counter (+ (var-get counter) u1)) (ok true)))
	`)
	require.Contains(t, ca.Variables, types.ClarityName("counter"))
	require.Contains(t, ca.Maps, types.ClarityName("balances"))
	require.Contains(t, ca.Constants, types.ClarityName("limit"))
	require.Contains(t, ca.PublicFunctions, "increment")
	require.Contains(t, ca.PrivateFunctions, "get-counter")
}

func TestReadOnlyCheckerRejectsMutationInReadOnly(t *testing.T) {
	id := types.TransientContractIdentifier()
	tracker := costs.NewFreeCostTracker()
	contractAST, parseErr, checkErr := astpipeline.Run(id, `
		(define-data-var counter uint u0)
		(define-read-only (bad) (var-set counter u1))
	`, tracker)
	require.Nil(t, parseErr)
	require.Nil(t, checkErr)

	_, err := RunAnalysis(contractAST, tracker, NewMemoryAnalysisDatabase())
	require.Error(t, err)
	require.Contains(t, err.Error(), "read-only")
}

func TestReadOnlyCheckerAllowsPureReads(t *testing.T) {
	ca, _ := mustAnalyze(t, `
		(define-data-var counter uint u0)
		(define-read-only (get-counter) (var-get counter))
	`)
	fn := ca.PrivateFunctions["get-counter"]
	require.NotNil(t, fn)
	require.True(t, fn.ReadOnly)
}

func TestReadOnlyCheckerPropagatesTransitively(t *testing.T) {
	id := types.TransientContractIdentifier()
	tracker := costs.NewFreeCostTracker()
	contractAST, parseErr, checkErr := astpipeline.Run(id, `
		(define-data-var counter uint u0)
		(define-private (mutate) (var-set counter u1))
		(define-read-only (bad) (mutate))
	`, tracker)
	require.Nil(t, parseErr)
	require.Nil(t, checkErr)

	_, err := RunAnalysis(contractAST, tracker, NewMemoryAnalysisDatabase())
	require.Error(t, err)
}

func TestTypeCheckerInfersArithmeticAndIf(t *testing.T) {
	ca, _ := mustAnalyze(t, `
		(define-read-only (choose (flag bool)) (if flag u1 u2))
	`)
	fn := ca.PrivateFunctions["choose"]
	require.NotNil(t, fn.ReturnType)
	require.Equal(t, types.TypeUInt, fn.ReturnType.Kind)
}

func TestTypeCheckerRejectsIfBranchMismatch(t *testing.T) {
	id := types.TransientContractIdentifier()
	tracker := costs.NewFreeCostTracker()
	contractAST, parseErr, checkErr := astpipeline.Run(id, `
		(define-read-only (choose (flag bool)) (if flag u1 true))
	`, tracker)
	require.Nil(t, parseErr)
	require.Nil(t, checkErr)

	_, err := RunAnalysis(contractAST, tracker, NewMemoryAnalysisDatabase())
	require.Error(t, err)
}

func TestTypeCheckerMapAdmission(t *testing.T) {
	ca, _ := mustAnalyze(t, `
		(define-map balances principal uint)
		(define-read-only (balance-of (who principal)) (map-get? balances who))
	`)
	fn := ca.PrivateFunctions["balance-of"]
	require.NotNil(t, fn.ReturnType)
	require.Equal(t, types.TypeOptional, fn.ReturnType.Kind)
	require.Equal(t, types.TypeUInt, fn.ReturnType.OptionalInner.Kind)
}

func TestTypeCheckerRejectsWrongMapKeyType(t *testing.T) {
	id := types.TransientContractIdentifier()
	tracker := costs.NewFreeCostTracker()
	contractAST, parseErr, checkErr := astpipeline.Run(id, `
		(define-map balances principal uint)
		(define-read-only (bad) (map-get? balances u1))
	`, tracker)
	require.Nil(t, parseErr)
	require.Nil(t, checkErr)

	_, err := RunAnalysis(contractAST, tracker, NewMemoryAnalysisDatabase())
	require.Error(t, err)
}

func TestTypeCheckerTupleGet(t *testing.T) {
	ca, _ := mustAnalyze(t, `
		(define-read-only (make-point) (get x {x: 1, y: 2}))
	`)
	fn := ca.PrivateFunctions["make-point"]
	require.NotNil(t, fn.ReturnType)
	require.Equal(t, types.TypeInt, fn.ReturnType.Kind)
}

// buildImplTraitAST constructs a ContractAST by hand for a single
// (impl-trait <field>) form followed by a define-public form, bypassing
// source-text parsing: a literal base58 principal for a self-referencing
// trait can't be round-tripped through the lexer without an encoder, so
// these two tests build the SymField node directly instead.
func buildImplTraitAST(traitID types.TraitIdentifier, implID types.QualifiedContractIdentifier, fnName string, argTypes []*types.TypeSignature) *ast.ContractAST {
	field := &ast.SymbolicExpression{Id: 1, Kind: ast.SymField, Field: &traitID}
	implHead := &ast.SymbolicExpression{Id: 2, Kind: ast.SymAtom, Atom: "impl-trait"}
	implForm := &ast.SymbolicExpression{Id: 3, Kind: ast.SymList, List: []*ast.SymbolicExpression{implHead, field}}

	sigList := []*ast.SymbolicExpression{{Id: 4, Kind: ast.SymAtom, Atom: fnName}}
	var body []*ast.SymbolicExpression
	for i, at := range argTypes {
		paramName := &ast.SymbolicExpression{Id: int64ToID(10 + i), Kind: ast.SymAtom, Atom: fmt.Sprintf("arg%d", i)}
		typeNode := typeSigToExpr(at, int64ToID(20+i))
		sigList = append(sigList, &ast.SymbolicExpression{Id: int64ToID(30 + i), Kind: ast.SymList, List: []*ast.SymbolicExpression{paramName, typeNode}})
	}
	sig := &ast.SymbolicExpression{Id: 5, Kind: ast.SymList, List: sigList}
	body = append(body, &ast.SymbolicExpression{Id: 6, Kind: ast.SymAtom, Atom: "ok"})
	body = append(body, &ast.SymbolicExpression{Id: 7, Kind: ast.SymAtomValue, AtomValue: types.BoolValue(true)})
	bodyForm := &ast.SymbolicExpression{Id: 8, Kind: ast.SymList, List: body}
	defHead := &ast.SymbolicExpression{Id: 9, Kind: ast.SymAtom, Atom: "define-public"}
	defForm := &ast.SymbolicExpression{Id: 10, Kind: ast.SymList, List: []*ast.SymbolicExpression{defHead, sig, bodyForm}}

	contractAST := ast.NewContractAST(implID, nil)
	contractAST.Expressions = []*ast.SymbolicExpression{implForm, defForm}
	return contractAST
}

func int64ToID(n int) uint64 { return uint64(n) }

func typeSigToExpr(t *types.TypeSignature, id uint64) *ast.SymbolicExpression {
	switch t.Kind {
	case types.TypeUInt:
		return &ast.SymbolicExpression{Id: id, Kind: ast.SymAtom, Atom: "uint"}
	case types.TypePrincipal:
		return &ast.SymbolicExpression{Id: id, Kind: ast.SymAtom, Atom: "principal"}
	default:
		return &ast.SymbolicExpression{Id: id, Kind: ast.SymAtom, Atom: "int"}
	}
}

// distinctContractID builds a QualifiedContractIdentifier that differs
// from types.TransientContractIdentifier() (and from other calls with a
// different tag), since the trait tests need the trait-defining contract
// and the implementing contract to be genuinely distinct identities.
func distinctContractID(tag byte) types.QualifiedContractIdentifier {
	issuer := types.StandardPrincipalData{Version: tag}
	return types.NewQualifiedContractIdentifier(issuer, types.ContractName("contract-"+string(rune('a'+tag))))
}

func TestTraitCheckerAcceptsMatchingImplementation(t *testing.T) {
	selfID := distinctContractID(1)
	traitSig := TraitSignature{Functions: map[string]*FunctionSignature{
		"transfer": {
			Name:       "transfer",
			ArgTypes:   []*types.TypeSignature{types.UIntType, types.PrincipalType},
			ReturnType: types.ResponseType(types.BoolType, types.UIntType),
		},
	}}
	db := NewMemoryAnalysisDatabase()
	require.NoError(t, db.PutContractAnalysis(selfID, &ContractAnalysis{
		DefinedTraits: map[string]TraitSignature{"token-trait": traitSig},
	}))
	traitID := types.NewTraitIdentifier(selfID, "token-trait")

	implID := distinctContractID(2)
	contractAST := buildImplTraitAST(traitID, implID, "transfer", []*types.TypeSignature{types.UIntType, types.PrincipalType})

	ca, err := RunAnalysis(contractAST, costs.NewFreeCostTracker(), db)
	require.NoError(t, err)
	require.Contains(t, ca.ImplementedTraits, traitID.String())
}

func TestTraitCheckerRejectsMissingFunction(t *testing.T) {
	selfID := distinctContractID(3)
	traitSig := TraitSignature{Functions: map[string]*FunctionSignature{
		"transfer": {
			Name:       "transfer",
			ArgTypes:   []*types.TypeSignature{types.UIntType},
			ReturnType: types.ResponseType(types.BoolType, types.UIntType),
		},
	}}
	db := NewMemoryAnalysisDatabase()
	require.NoError(t, db.PutContractAnalysis(selfID, &ContractAnalysis{
		DefinedTraits: map[string]TraitSignature{"token-trait": traitSig},
	}))
	traitID := types.NewTraitIdentifier(selfID, "token-trait")

	implID := distinctContractID(4)
	// "unrelated" doesn't satisfy the trait's required "transfer" function.
	contractAST := buildImplTraitAST(traitID, implID, "unrelated", []*types.TypeSignature{types.UIntType})

	_, err := RunAnalysis(contractAST, costs.NewFreeCostTracker(), db)
	require.Error(t, err)
}
