package eval

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"clarity/internal/astpipeline"
	"clarity/internal/costs"
	"clarity/internal/store"
	"clarity/internal/types"
)

func loadContract(t *testing.T, db store.ClarityDatabase, id types.QualifiedContractIdentifier, source string) *Context {
	t.Helper()
	tracker := costs.NewFreeCostTracker()
	contractAST, parseErr, checkErr := astpipeline.Run(id, source, tracker)
	require.Nil(t, parseErr)
	require.Nil(t, checkErr)
	db.PutContractCode(id, source, contractAST)

	ctx := &Context{
		DB:         db,
		Tracker:    tracker,
		ContractID: id,
		Sender:     types.NewStandardPrincipal(types.StandardPrincipalData{}),
		Caller:     types.NewStandardPrincipal(types.StandardPrincipalData{}),
	}
	_, err := InitializeContract(contractAST.Expressions, ctx)
	require.Nil(t, err)
	return ctx
}

func callPublic(t *testing.T, ctx *Context, name string, argVals ...*types.Value) *types.Value {
	t.Helper()
	_, constErr := loadConstants(topLevelOf(ctx), ctx)
	require.Nil(t, constErr)
	fd := findFunction(topLevelOf(ctx), name)
	require.NotNil(t, fd, "function %q not found", name)
	callEnv := newEnv(nil)
	for i, p := range fd.Params {
		callEnv.bind(p, argVals[i])
	}
	v, err := Eval(fd.Body, callEnv, ctx)
	require.Nil(t, err)
	return v
}

func contractID(name string) types.QualifiedContractIdentifier {
	return types.NewQualifiedContractIdentifier(types.StandardPrincipalData{}, types.ContractName(name))
}

func TestEvalArithmetic(t *testing.T) {
	db := store.NewMemoryClarityDatabase()
	ctx := loadContract(t, db, contractID("arith"), `(define-read-only (add) (+ u1 u2 u3))`)
	v := callPublic(t, ctx, "add")
	require.Equal(t, types.ValUInt, v.Kind)
	require.Equal(t, big.NewInt(6), v.UInt)
}

func TestEvalIfLet(t *testing.T) {
	db := store.NewMemoryClarityDatabase()
	ctx := loadContract(t, db, contractID("iflet"), `
		(define-read-only (pick (flag bool))
			(let ((a u10) (b u20))
				(if flag a b)))
	`)
	v := callPublic(t, ctx, "pick", types.BoolValue(true))
	require.Equal(t, big.NewInt(10), v.UInt)
	v = callPublic(t, ctx, "pick", types.BoolValue(false))
	require.Equal(t, big.NewInt(20), v.UInt)
}

func TestEvalVarGetSetRoundTrip(t *testing.T) {
	db := store.NewMemoryClarityDatabase()
	ctx := loadContract(t, db, contractID("counter"), `
		(define-data-var counter uint u0)
		(define-public (increment) (begin (var-set counter (+ (var-get counter) u1)) (ok true)))
		(define-read-only (get-counter) (var-get counter))
	`)
	callPublic(t, ctx, "increment")
	callPublic(t, ctx, "increment")
	v := callPublic(t, ctx, "get-counter")
	require.Equal(t, big.NewInt(2), v.UInt)
}

func TestEvalMapOperations(t *testing.T) {
	db := store.NewMemoryClarityDatabase()
	ctx := loadContract(t, db, contractID("balances"), `
		(define-map balances principal uint)
		(define-public (credit (who principal) (amount uint))
			(ok (map-set balances who amount)))
		(define-read-only (balance-of (who principal))
			(if (is-some (map-get? balances who))
				(unwrap-panic (map-get? balances who))
				u0))
	`)
	alice := types.PrincipalValue(types.NewStandardPrincipal(types.StandardPrincipalData{Version: 1}))
	result := callPublic(t, ctx, "credit", alice, mustUInt(t, 42))
	require.True(t, result.ResponseCommitted)

	got, ok := ctx.DB.GetMapEntry(ctx.ContractID, "balances", alice)
	require.True(t, ok)
	require.Equal(t, big.NewInt(42), got.UInt)
}

func TestEvalContractCallCrossContract(t *testing.T) {
	db := store.NewMemoryClarityDatabase()
	loadContract(t, db, contractID("vault"), `
		(define-data-var total uint u0)
		(define-public (deposit (amount uint))
			(begin (var-set total (+ (var-get total) amount)) (ok (var-get total))))
	`)
	callerCtx := loadContract(t, db, contractID("router"), `
		(define-public (forward (amount uint))
			(contract-call? .vault deposit amount))
	`)
	v := callPublic(t, callerCtx, "forward", mustUInt(t, 5))
	require.True(t, v.ResponseCommitted)
	require.Equal(t, big.NewInt(5), v.ResponseData.UInt)
}

func mustUInt(t *testing.T, n int64) *types.Value {
	t.Helper()
	v, err := types.UIntValue(big.NewInt(n))
	require.NoError(t, err)
	return v
}
