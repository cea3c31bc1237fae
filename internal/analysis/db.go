package analysis

import (
	"fmt"
	"sync"

	"clarity/internal/errors"
	"clarity/internal/span"
	"clarity/internal/types"
)

// AnalysisDatabase persists one ContractAnalysis per deployed contract,
// the store TraitChecker and contract-call? resolution both read from to
// learn about a contract other than the one currently being analyzed.
// The interface has no begin/commit/rollback surface, and internal/block
// calls it directly without a transaction around it.
type AnalysisDatabase interface {
	GetContractAnalysis(id types.QualifiedContractIdentifier) (*ContractAnalysis, bool, error)
	PutContractAnalysis(id types.QualifiedContractIdentifier, analysis *ContractAnalysis) error
	GetTrait(id types.TraitIdentifier) (*TraitSignature, bool, error)
}

// MemoryAnalysisDatabase is an in-process AnalysisDatabase, the one
// internal/block's tests and the REPL's non-persistent mode use in place
// of a real backing store.
type MemoryAnalysisDatabase struct {
	mu        sync.RWMutex
	contracts map[types.QualifiedContractIdentifier]*ContractAnalysis
}

func NewMemoryAnalysisDatabase() *MemoryAnalysisDatabase {
	return &MemoryAnalysisDatabase{contracts: make(map[types.QualifiedContractIdentifier]*ContractAnalysis)}
}

func (db *MemoryAnalysisDatabase) GetContractAnalysis(id types.QualifiedContractIdentifier) (*ContractAnalysis, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	ca, ok := db.contracts[id]
	return ca, ok, nil
}

func (db *MemoryAnalysisDatabase) PutContractAnalysis(id types.QualifiedContractIdentifier, analysis *ContractAnalysis) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, exists := db.contracts[id]; exists {
		return errors.NewCheckError(errors.ContractAlreadyExists, span.Span{}, "contract %s already has a saved analysis", id)
	}
	db.contracts[id] = analysis
	return nil
}

func (db *MemoryAnalysisDatabase) GetTrait(id types.TraitIdentifier) (*TraitSignature, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	ca, ok := db.contracts[id.Contract]
	if !ok {
		return nil, false, nil
	}
	sig, ok := ca.DefinedTraits[string(id.Name)]
	if !ok {
		return nil, false, nil
	}
	return &sig, true, nil
}

func (db *MemoryAnalysisDatabase) String() string {
	return fmt.Sprintf("MemoryAnalysisDatabase(%d contracts)", len(db.contracts))
}
