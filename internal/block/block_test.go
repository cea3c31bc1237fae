package block

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"clarity/internal/analysis"
	"clarity/internal/costs"
	"clarity/internal/errors"
	"clarity/internal/store"
	"clarity/internal/types"
)

func newInstance() *ClarityInstance {
	return NewClarityInstance(store.NewMemoryClarityDatabase(), analysis.NewMemoryAnalysisDatabase())
}

func contractID(name string) types.QualifiedContractIdentifier {
	return types.NewQualifiedContractIdentifier(types.StandardPrincipalData{}, types.ContractName(name))
}

func deploy(t *testing.T, bc *ClarityBlockConnection, id types.QualifiedContractIdentifier, source string) {
	t.Helper()
	contractAST, _, tlErr := bc.AnalyzeSmartContract(id, source)
	require.Nil(t, tlErr)
	require.Nil(t, bc.InitializeSmartContract(id, contractAST, source, nil))
}

func defaultBudget() costs.ExecutionCost {
	return costs.ExecutionCost{Runtime: 1_000_000, ReadCount: 1000, ReadLength: 1_000_000, WriteCount: 1000, WriteLength: 1_000_000}
}

// TestSimpleInitializeAndCall mirrors the reference implementation's
// simple_test: deploy a contract in one block, commit, then call its
// public function successfully in a later block.
func TestSimpleInitializeAndCall(t *testing.T) {
	ci := newInstance()
	headers := store.NewStaticHeadersDB()
	id := contractID("counter")

	bc := ci.BeginBlock(headers, defaultBudget())
	deploy(t, bc, id, `
		(define-data-var counter uint u0)
		(define-public (increment) (begin (var-set counter (+ (var-get counter) u1)) (ok (var-get counter))))
	`)
	bc.CommitBlock()

	bc = ci.BeginBlock(headers, defaultBudget())
	sender := types.NewStandardPrincipal(types.StandardPrincipalData{})
	result, tlErr := bc.RunContractCall(sender, id, "increment", nil, nil)
	require.Nil(t, tlErr)
	require.True(t, result.ResponseCommitted)
	require.Equal(t, big.NewInt(1), result.ResponseData.UInt)
	bc.CommitBlock()
}

// TestInitializeRollBack mirrors test_block_roll_back: a block that never
// commits leaves no trace of the deployed contract for a later block.
func TestInitializeRollBack(t *testing.T) {
	ci := newInstance()
	headers := store.NewStaticHeadersDB()
	id := contractID("ghost")

	bc := ci.BeginBlock(headers, defaultBudget())
	deploy(t, bc, id, `(define-read-only (hello) u1)`)
	bc.RollbackBlock()

	bc = ci.BeginBlock(headers, defaultBudget())
	_, tlErr := bc.EvalReadOnly(id, "hello", nil)
	require.NotNil(t, tlErr)
	require.Equal(t, errors.ClassBadTransaction, tlErr.Class)
	bc.RollbackBlock()
}

// TestContractCallAbortedRollsBack mirrors test_tx_roll_backs: a failed
// public call inside an otherwise-committed block leaves that call's
// writes out while the block itself still commits.
func TestContractCallAbortedRollsBack(t *testing.T) {
	ci := newInstance()
	headers := store.NewStaticHeadersDB()
	id := contractID("vault")

	bc := ci.BeginBlock(headers, defaultBudget())
	deploy(t, bc, id, `
		(define-data-var total uint u0)
		(define-public (deposit (amount uint))
			(if (> amount u100)
				(err u1)
				(begin (var-set total (+ (var-get total) amount)) (ok (var-get total)))))
		(define-read-only (get-total) (var-get total))
	`)
	bc.CommitBlock()

	bc = ci.BeginBlock(headers, defaultBudget())
	sender := types.NewStandardPrincipal(types.StandardPrincipalData{})
	amount, err := types.UIntValue(big.NewInt(500))
	require.NoError(t, err)
	result, tlErr := bc.RunContractCall(sender, id, "deposit", []*types.Value{amount}, nil)
	require.Nil(t, tlErr)
	require.False(t, result.ResponseCommitted)
	bc.CommitBlock()

	bc = ci.BeginBlock(headers, defaultBudget())
	total, tlErr := bc.EvalReadOnly(id, "get-total", nil)
	require.Nil(t, tlErr)
	require.Equal(t, big.NewInt(0), total.UInt)
	bc.RollbackBlock()
}

// TestAbortCallbackForcesRollback exercises the abortCallback hook itself,
// independent of the callee's own response value.
func TestAbortCallbackForcesRollback(t *testing.T) {
	ci := newInstance()
	headers := store.NewStaticHeadersDB()
	id := contractID("vault2")

	bc := ci.BeginBlock(headers, defaultBudget())
	deploy(t, bc, id, `
		(define-data-var total uint u0)
		(define-public (deposit (amount uint))
			(begin (var-set total (+ (var-get total) amount)) (ok (var-get total))))
		(define-read-only (get-total) (var-get total))
	`)
	bc.CommitBlock()

	bc = ci.BeginBlock(headers, defaultBudget())
	sender := types.NewStandardPrincipal(types.StandardPrincipalData{})
	amount, err := types.UIntValue(big.NewInt(10))
	require.NoError(t, err)
	result, tlErr := bc.RunContractCall(sender, id, "deposit", []*types.Value{amount}, func(*types.Value) bool { return true })
	require.Nil(t, tlErr)
	require.True(t, result.ResponseCommitted)
	bc.CommitBlock()

	bc = ci.BeginBlock(headers, defaultBudget())
	total, tlErr := bc.EvalReadOnly(id, "get-total", nil)
	require.Nil(t, tlErr)
	require.Equal(t, big.NewInt(0), total.UInt)
	bc.RollbackBlock()
}

// TestBlockLimitReported mirrors test_block_limit in spirit: a budget too
// small for the contract's own cost-metered execution surfaces as a
// ClassCostError rather than succeeding silently.
func TestBlockLimitReported(t *testing.T) {
	ci := newInstance()
	headers := store.NewStaticHeadersDB()
	id := contractID("heavy")

	tiny := costs.ExecutionCost{Runtime: 1, ReadCount: 1, ReadLength: 1, WriteCount: 1, WriteLength: 1}
	bc := ci.BeginBlock(headers, tiny)
	_, _, tlErr := bc.AnalyzeSmartContract(id, `
		(define-public (loop (n uint))
			(if (> n u0) (loop (- n u1)) (ok true)))
		(define-public (deposit (amount uint)) (ok amount))
		(define-public (withdraw (amount uint)) (ok amount))
		(define-public (another-one-to-pad-the-cost-total (amount uint)) (ok amount))
	`)
	require.NotNil(t, tlErr)
	bc.RollbackBlock()
}
