package store

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"clarity/internal/types"
)

func testContract() types.QualifiedContractIdentifier {
	return types.NewQualifiedContractIdentifier(types.StandardPrincipalData{}, types.ContractName("test-contract"))
}

func TestVariableRoundTrip(t *testing.T) {
	db := NewMemoryClarityDatabase()
	contract := testContract()
	counter, _ := types.UIntValue(big.NewInt(0))
	db.CreateVariable(contract, "counter", counter)

	v, ok := db.GetVariable(contract, "counter")
	require.True(t, ok)
	require.Equal(t, types.ValUInt, v.Kind)

	next, _ := types.UIntValue(big.NewInt(1))
	db.SetVariable(contract, "counter", next)
	v, ok = db.GetVariable(contract, "counter")
	require.True(t, ok)
	require.Equal(t, big.NewInt(1), v.UInt)
}

func TestNestedCommitPersists(t *testing.T) {
	db := NewMemoryClarityDatabase()
	contract := testContract()
	one, _ := types.UIntValue(big.NewInt(1))

	db.Begin()
	db.CreateVariable(contract, "x", one)
	db.Commit()

	v, ok := db.GetVariable(contract, "x")
	require.True(t, ok)
	require.Equal(t, big.NewInt(1), v.UInt)
}

func TestNestedRollbackDiscards(t *testing.T) {
	db := NewMemoryClarityDatabase()
	contract := testContract()
	zero, _ := types.UIntValue(big.NewInt(0))
	db.CreateVariable(contract, "x", zero)

	db.Begin()
	one, _ := types.UIntValue(big.NewInt(1))
	db.SetVariable(contract, "x", one)
	db.Rollback()

	v, ok := db.GetVariable(contract, "x")
	require.True(t, ok)
	require.Equal(t, big.NewInt(0), v.UInt)
}

func TestMapInsertRejectsDuplicateKey(t *testing.T) {
	db := NewMemoryClarityDatabase()
	contract := testContract()
	db.CreateMap(contract, "balances")

	key := types.PrincipalValue(types.NewStandardPrincipal(types.StandardPrincipalData{Version: 1}))
	val, _ := types.UIntValue(big.NewInt(100))

	require.True(t, db.InsertMapEntry(contract, "balances", key, val))
	require.False(t, db.InsertMapEntry(contract, "balances", key, val))
}

func TestMapDeleteThenGetMisses(t *testing.T) {
	db := NewMemoryClarityDatabase()
	contract := testContract()
	key := types.PrincipalValue(types.NewStandardPrincipal(types.StandardPrincipalData{Version: 2}))
	val, _ := types.UIntValue(big.NewInt(5))
	db.SetMapEntry(contract, "balances", key, val)

	require.True(t, db.DeleteMapEntry(contract, "balances", key))
	_, ok := db.GetMapEntry(contract, "balances", key)
	require.False(t, ok)
	require.False(t, db.DeleteMapEntry(contract, "balances", key))
}

func TestMapDeleteTombstoneSurvivesCommit(t *testing.T) {
	db := NewMemoryClarityDatabase()
	contract := testContract()
	key := types.PrincipalValue(types.NewStandardPrincipal(types.StandardPrincipalData{Version: 3}))
	val, _ := types.UIntValue(big.NewInt(5))
	db.SetMapEntry(contract, "balances", key, val)

	db.Begin()
	db.DeleteMapEntry(contract, "balances", key)
	db.Commit()

	_, ok := db.GetMapEntry(contract, "balances", key)
	require.False(t, ok)
}

func TestFungibleTokenBalanceAndSupply(t *testing.T) {
	db := NewMemoryClarityDatabase()
	contract := testContract()
	db.CreateFungibleToken(contract, "credit", nil)

	owner := types.NewStandardPrincipal(types.StandardPrincipalData{Version: 4})
	require.Equal(t, big.NewInt(0), db.GetFTBalance(contract, "credit", owner))

	db.SetFTBalance(contract, "credit", owner, big.NewInt(50))
	db.SetFTSupply(contract, "credit", big.NewInt(50))

	require.Equal(t, big.NewInt(50), db.GetFTBalance(contract, "credit", owner))
	require.Equal(t, big.NewInt(50), db.GetFTSupply(contract, "credit"))
}

func TestNonFungibleTokenOwnerLifecycle(t *testing.T) {
	db := NewMemoryClarityDatabase()
	contract := testContract()
	db.CreateNonFungibleToken(contract, "badge")

	asset, _ := types.UIntValue(big.NewInt(7))
	owner := types.NewStandardPrincipal(types.StandardPrincipalData{Version: 5})

	_, ok := db.GetNFTOwner(contract, "badge", asset)
	require.False(t, ok)

	db.SetNFTOwner(contract, "badge", asset, owner)
	got, ok := db.GetNFTOwner(contract, "badge", asset)
	require.True(t, ok)
	require.Equal(t, owner, got)

	db.DeleteNFTOwner(contract, "badge", asset)
	_, ok = db.GetNFTOwner(contract, "badge", asset)
	require.False(t, ok)
}

func TestContractCodeRoundTrip(t *testing.T) {
	db := NewMemoryClarityDatabase()
	contract := testContract()
	db.PutContractCode(contract, "(define-public (noop) (ok true))", nil)

	src, _, ok := db.GetContractCode(contract)
	require.True(t, ok)
	require.Contains(t, src, "noop")
}

func TestStaticHeadersDB(t *testing.T) {
	headers := NewStaticHeadersDB()
	tip := BlockHash{1}
	parent := BlockHash{2}
	headers.SetParent(tip, parent)

	got, ok := headers.GetParentBlockHash(tip)
	require.True(t, ok)
	require.Equal(t, parent, got)

	_, ok = headers.GetParentBlockHash(BlockHash{9})
	require.False(t, ok)
}
