package store

import (
	"math/big"

	"clarity/internal/ast"
	"clarity/internal/types"
)

// ClarityDatabase is the persistent-state collaborator spec.md §6 excludes
// from the core: every native whose body needs durable state (var-get/
// set, map-*, ft-*, nft-*, contract-call?'s source lookup) dispatches
// through this interface instead of embedding storage logic, per
// SPEC_FULL.md §4.8.
type ClarityDatabase interface {
	// Begin/Commit/Rollback nest arbitrarily deep, mirroring the Block
	// Connection's begin/commit(_to)/rollback envelope at every layer
	// initialize_smart_contract and run_contract_call open around a call.
	Begin()
	Commit()
	Rollback()

	CreateVariable(contract types.QualifiedContractIdentifier, name types.ClarityName, initial *types.Value)
	GetVariable(contract types.QualifiedContractIdentifier, name types.ClarityName) (*types.Value, bool)
	SetVariable(contract types.QualifiedContractIdentifier, name types.ClarityName, v *types.Value)

	CreateMap(contract types.QualifiedContractIdentifier, name types.ClarityName)
	GetMapEntry(contract types.QualifiedContractIdentifier, name types.ClarityName, key *types.Value) (*types.Value, bool)
	SetMapEntry(contract types.QualifiedContractIdentifier, name types.ClarityName, key, value *types.Value)
	InsertMapEntry(contract types.QualifiedContractIdentifier, name types.ClarityName, key, value *types.Value) bool
	DeleteMapEntry(contract types.QualifiedContractIdentifier, name types.ClarityName, key *types.Value) bool

	CreateFungibleToken(contract types.QualifiedContractIdentifier, name types.ClarityName, maxSupply *big.Int)
	GetFTBalance(contract types.QualifiedContractIdentifier, name types.ClarityName, owner types.PrincipalData) *big.Int
	SetFTBalance(contract types.QualifiedContractIdentifier, name types.ClarityName, owner types.PrincipalData, balance *big.Int)
	GetFTSupply(contract types.QualifiedContractIdentifier, name types.ClarityName) *big.Int
	SetFTSupply(contract types.QualifiedContractIdentifier, name types.ClarityName, supply *big.Int)
	GetFTMaxSupply(contract types.QualifiedContractIdentifier, name types.ClarityName) (*big.Int, bool)

	CreateNonFungibleToken(contract types.QualifiedContractIdentifier, name types.ClarityName)
	GetNFTOwner(contract types.QualifiedContractIdentifier, name types.ClarityName, asset *types.Value) (types.PrincipalData, bool)
	SetNFTOwner(contract types.QualifiedContractIdentifier, name types.ClarityName, asset *types.Value, owner types.PrincipalData)
	DeleteNFTOwner(contract types.QualifiedContractIdentifier, name types.ClarityName, asset *types.Value)

	// PutContractCode/GetContractCode persist a deployed contract's source
	// and canonical AST, the state contract-call? needs to resolve and
	// re-evaluate a callee's public function body.
	PutContractCode(id types.QualifiedContractIdentifier, source string, contractAST *ast.ContractAST)
	GetContractCode(id types.QualifiedContractIdentifier) (string, *ast.ContractAST, bool)
}

// layer is one entry in the nested-transaction stack: values written in
// this layer shadow the parent's until Commit copies them down, or
// Rollback discards the layer outright. This is the teacher's
// parent-chained symbol-table scope (NewSymbolTable(parent)), repurposed
// from lexical scoping to transaction nesting.
type layer struct {
	parent *layer

	vars map[string]*types.Value
	maps map[string]*types.Value

	ftBalances map[string]*big.Int
	ftSupply   map[string]*big.Int
	ftMax      map[string]*big.Int

	nftOwners map[string]types.PrincipalData
	nftTomb   map[string]bool // tombstones a deleted NFT owner within this layer

	code map[types.QualifiedContractIdentifier]contractCode
}

type contractCode struct {
	source      string
	contractAST *ast.ContractAST
}

func newLayer(parent *layer) *layer {
	return &layer{
		parent:     parent,
		vars:       make(map[string]*types.Value),
		maps:       make(map[string]*types.Value),
		ftBalances: make(map[string]*big.Int),
		ftSupply:   make(map[string]*big.Int),
		ftMax:      make(map[string]*big.Int),
		nftOwners:  make(map[string]types.PrincipalData),
		nftTomb:    make(map[string]bool),
		code:       make(map[types.QualifiedContractIdentifier]contractCode),
	}
}

// MemoryClarityDatabase is the in-memory ClarityDatabase adapter
// SPEC_FULL.md §4.9 calls for: a nested-map plus a transaction stack,
// satisfying begin/commit/rollback at arbitrary nesting depth.
type MemoryClarityDatabase struct {
	top *layer
}

func NewMemoryClarityDatabase() *MemoryClarityDatabase {
	return &MemoryClarityDatabase{top: newLayer(nil)}
}

func (db *MemoryClarityDatabase) Begin() {
	db.top = newLayer(db.top)
}

// Commit folds the top layer's writes down into its parent and pops it;
// calling Commit with no open nested transaction is a programmer error
// the caller (internal/block) never triggers, since every nested
// transaction it opens is paired with exactly one Commit or Rollback.
func (db *MemoryClarityDatabase) Commit() {
	cur := db.top
	if cur.parent == nil {
		return
	}
	parent := cur.parent
	for k, v := range cur.vars {
		parent.vars[k] = v
	}
	for k, v := range cur.maps {
		parent.maps[k] = v
	}
	for k, v := range cur.ftBalances {
		parent.ftBalances[k] = v
	}
	for k, v := range cur.ftSupply {
		parent.ftSupply[k] = v
	}
	for k, v := range cur.ftMax {
		parent.ftMax[k] = v
	}
	for k, v := range cur.nftOwners {
		parent.nftOwners[k] = v
	}
	for k := range cur.nftTomb {
		delete(parent.nftOwners, k)
		parent.nftTomb[k] = true
	}
	for k, v := range cur.code {
		parent.code[k] = v
	}
	db.top = parent
}

// Rollback discards the top layer entirely, dropping every write made
// since the matching Begin.
func (db *MemoryClarityDatabase) Rollback() {
	if db.top.parent == nil {
		return
	}
	db.top = db.top.parent
}

func varKey(contract types.QualifiedContractIdentifier, name types.ClarityName) string {
	return contract.String() + "::var::" + string(name)
}

func mapEntryKey(contract types.QualifiedContractIdentifier, name types.ClarityName, key *types.Value) string {
	return contract.String() + "::map::" + string(name) + "::" + key.String()
}

func ftBalanceKey(contract types.QualifiedContractIdentifier, name types.ClarityName, owner types.PrincipalData) string {
	return contract.String() + "::ft-bal::" + string(name) + "::" + owner.String()
}

func ftSupplyKey(contract types.QualifiedContractIdentifier, name types.ClarityName) string {
	return contract.String() + "::ft-supply::" + string(name)
}

func nftOwnerKey(contract types.QualifiedContractIdentifier, name types.ClarityName, asset *types.Value) string {
	return contract.String() + "::nft::" + string(name) + "::" + asset.String()
}

func (db *MemoryClarityDatabase) CreateVariable(contract types.QualifiedContractIdentifier, name types.ClarityName, initial *types.Value) {
	db.top.vars[varKey(contract, name)] = initial
}

func (db *MemoryClarityDatabase) GetVariable(contract types.QualifiedContractIdentifier, name types.ClarityName) (*types.Value, bool) {
	key := varKey(contract, name)
	for l := db.top; l != nil; l = l.parent {
		if v, ok := l.vars[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func (db *MemoryClarityDatabase) SetVariable(contract types.QualifiedContractIdentifier, name types.ClarityName, v *types.Value) {
	db.top.vars[varKey(contract, name)] = v
}

func (db *MemoryClarityDatabase) CreateMap(contract types.QualifiedContractIdentifier, name types.ClarityName) {
	// No entries to seed; CreateMap only exists so ContractAnalysis's
	// CREATE_MAP cost charge has a matching storage-side call site.
}

func (db *MemoryClarityDatabase) GetMapEntry(contract types.QualifiedContractIdentifier, name types.ClarityName, key *types.Value) (*types.Value, bool) {
	mk := mapEntryKey(contract, name, key)
	for l := db.top; l != nil; l = l.parent {
		if v, ok := l.maps[mk]; ok {
			// A nil value in a layer is DeleteMapEntry's tombstone: the
			// entry is gone regardless of what an older layer holds.
			return v, v != nil
		}
	}
	return nil, false
}

func (db *MemoryClarityDatabase) SetMapEntry(contract types.QualifiedContractIdentifier, name types.ClarityName, key, value *types.Value) {
	db.top.maps[mapEntryKey(contract, name, key)] = value
}

func (db *MemoryClarityDatabase) InsertMapEntry(contract types.QualifiedContractIdentifier, name types.ClarityName, key, value *types.Value) bool {
	if _, exists := db.GetMapEntry(contract, name, key); exists {
		return false
	}
	db.SetMapEntry(contract, name, key, value)
	return true
}

func (db *MemoryClarityDatabase) DeleteMapEntry(contract types.QualifiedContractIdentifier, name types.ClarityName, key *types.Value) bool {
	if _, exists := db.GetMapEntry(contract, name, key); !exists {
		return false
	}
	// A tombstone value (nil) shadows any parent-layer entry;
	// top-level Commit propagates it down just like any other write.
	db.top.maps[mapEntryKey(contract, name, key)] = nil
	return true
}

func (db *MemoryClarityDatabase) CreateFungibleToken(contract types.QualifiedContractIdentifier, name types.ClarityName, maxSupply *big.Int) {
	db.top.ftSupply[ftSupplyKey(contract, name)] = big.NewInt(0)
	if maxSupply != nil {
		db.top.ftMax[ftSupplyKey(contract, name)] = new(big.Int).Set(maxSupply)
	}
}

func (db *MemoryClarityDatabase) GetFTBalance(contract types.QualifiedContractIdentifier, name types.ClarityName, owner types.PrincipalData) *big.Int {
	key := ftBalanceKey(contract, name, owner)
	for l := db.top; l != nil; l = l.parent {
		if v, ok := l.ftBalances[key]; ok {
			return v
		}
	}
	return big.NewInt(0)
}

func (db *MemoryClarityDatabase) SetFTBalance(contract types.QualifiedContractIdentifier, name types.ClarityName, owner types.PrincipalData, balance *big.Int) {
	db.top.ftBalances[ftBalanceKey(contract, name, owner)] = balance
}

func (db *MemoryClarityDatabase) GetFTSupply(contract types.QualifiedContractIdentifier, name types.ClarityName) *big.Int {
	key := ftSupplyKey(contract, name)
	for l := db.top; l != nil; l = l.parent {
		if v, ok := l.ftSupply[key]; ok {
			return v
		}
	}
	return big.NewInt(0)
}

func (db *MemoryClarityDatabase) SetFTSupply(contract types.QualifiedContractIdentifier, name types.ClarityName, supply *big.Int) {
	db.top.ftSupply[ftSupplyKey(contract, name)] = supply
}

func (db *MemoryClarityDatabase) GetFTMaxSupply(contract types.QualifiedContractIdentifier, name types.ClarityName) (*big.Int, bool) {
	key := ftSupplyKey(contract, name)
	for l := db.top; l != nil; l = l.parent {
		if v, ok := l.ftMax[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func (db *MemoryClarityDatabase) CreateNonFungibleToken(contract types.QualifiedContractIdentifier, name types.ClarityName) {
	// No owners to seed at creation time, analogous to CreateMap above.
}

func (db *MemoryClarityDatabase) GetNFTOwner(contract types.QualifiedContractIdentifier, name types.ClarityName, asset *types.Value) (types.PrincipalData, bool) {
	key := nftOwnerKey(contract, name, asset)
	for l := db.top; l != nil; l = l.parent {
		if l.nftTomb[key] {
			return types.PrincipalData{}, false
		}
		if v, ok := l.nftOwners[key]; ok {
			return v, true
		}
	}
	return types.PrincipalData{}, false
}

func (db *MemoryClarityDatabase) SetNFTOwner(contract types.QualifiedContractIdentifier, name types.ClarityName, asset *types.Value, owner types.PrincipalData) {
	key := nftOwnerKey(contract, name, asset)
	db.top.nftOwners[key] = owner
	delete(db.top.nftTomb, key)
}

func (db *MemoryClarityDatabase) DeleteNFTOwner(contract types.QualifiedContractIdentifier, name types.ClarityName, asset *types.Value) {
	key := nftOwnerKey(contract, name, asset)
	delete(db.top.nftOwners, key)
	db.top.nftTomb[key] = true
}

func (db *MemoryClarityDatabase) PutContractCode(id types.QualifiedContractIdentifier, source string, contractAST *ast.ContractAST) {
	db.top.code[id] = contractCode{source: source, contractAST: contractAST}
}

func (db *MemoryClarityDatabase) GetContractCode(id types.QualifiedContractIdentifier) (string, *ast.ContractAST, bool) {
	for l := db.top; l != nil; l = l.parent {
		if c, ok := l.code[id]; ok {
			return c.source, c.contractAST, true
		}
	}
	return "", nil, false
}
