// Package block implements the transactional envelope spec.md §2 and §5
// call the Block Connection: a single-writer session wrapping the AST
// pipeline, the analysis passes, and internal/eval's runtime behind one
// begin/commit/rollback boundary per block, with a nested begin/commit/
// rollback around every contract deployment and every contract call.
package block

import (
	"fmt"

	"github.com/sasha-s/go-deadlock"

	"clarity/internal/analysis"
	"clarity/internal/ast"
	"clarity/internal/astpipeline"
	"clarity/internal/costs"
	"clarity/internal/errors"
	"clarity/internal/eval"
	"clarity/internal/store"
	"clarity/internal/types"
)

// ClarityInstance owns the persistent collaborators (data store, analysis
// store, header lookups) across many blocks. Only one ClarityBlockConnection
// may be open at a time; BeginBlock acquires mu and Commit/Rollback release
// it, the same "exactly one open connection" invariant the reference
// implementation enforces through the borrow checker's move semantics on
// an Option<MarfedKV>, enforced here at runtime instead of compile time.
type ClarityInstance struct {
	mu deadlock.Mutex

	db         store.ClarityDatabase
	analysisDB analysis.AnalysisDatabase
}

func NewClarityInstance(db store.ClarityDatabase, analysisDB analysis.AnalysisDatabase) *ClarityInstance {
	return &ClarityInstance{db: db, analysisDB: analysisDB}
}

// ClarityBlockConnection is a single block's worth of Clarity VM
// interaction: every analyze/initialize/call operation below runs against
// the same cost tracker and the same underlying store until CommitBlock
// or RollbackBlock closes it out.
type ClarityBlockConnection struct {
	parent    *ClarityInstance
	headerDB  store.HeadersDB
	costTrack *costs.LimitedCostTracker
}

// BeginBlock opens a block connection against the given budget. A second
// call while one is already outstanding blocks on ci.mu exactly like a
// double-lock would — go-deadlock's cycle detector turns that into a loud
// panic during development instead of a silent hang.
func (ci *ClarityInstance) BeginBlock(headerDB store.HeadersDB, limit costs.ExecutionCost) *ClarityBlockConnection {
	ci.mu.Lock()
	ci.db.Begin()
	return &ClarityBlockConnection{
		parent:    ci,
		headerDB:  headerDB,
		costTrack: costs.NewLimitedCostTracker(limit),
	}
}

// CommitBlock commits every transaction opened (and already individually
// committed or rolled back) since BeginBlock by folding the block's own
// store layer (opened by BeginBlock) down into the instance's persistent
// layer, and releases the instance for the next BeginBlock.
func (bc *ClarityBlockConnection) CommitBlock() costs.ExecutionCost {
	total := bc.costTrack.Total()
	bc.parent.db.Commit()
	bc.parent.mu.Unlock()
	return total
}

// RollbackBlock discards the block's store layer opened by BeginBlock,
// dropping every write made since then, and releases the instance.
func (bc *ClarityBlockConnection) RollbackBlock() {
	bc.parent.db.Rollback()
	bc.parent.mu.Unlock()
}

// Cost reports the connection's accumulated cost total without closing
// it, for callers (the REPL's `:trace` mode) that want to inspect
// spending mid-block.
func (bc *ClarityBlockConnection) Cost() costs.ExecutionCost {
	return bc.costTrack.Total()
}

// AnalyzeSmartContract lexes, parses, AST-pipelines, and statically
// analyzes contract_content, without persisting anything — mirroring
// ClarityBlockConnection::analyze_smart_contract, which leaves saving the
// analysis to a later, explicit SaveAnalysis call.
func (bc *ClarityBlockConnection) AnalyzeSmartContract(id types.QualifiedContractIdentifier, source string) (*ast.ContractAST, *analysis.ContractAnalysis, *errors.TopLevelError) {
	contractAST, parseErr, checkErr := astpipeline.Run(id, source, bc.costTrack)
	if parseErr != nil {
		return nil, nil, &errors.TopLevelError{Class: errors.ClassParse, Parse: parseErr}
	}
	if checkErr != nil {
		return contractAST, nil, &errors.TopLevelError{Class: errors.ClassAnalysis, Check: checkErr}
	}

	ca, err := analysis.RunAnalysis(contractAST, bc.costTrack, bc.parent.analysisDB)
	if err != nil {
		if ce, ok := causeCheckError(err); ok {
			if ce.Kind == errors.CostBalanceExceeded || ce.Kind == errors.CostOverflow {
				return contractAST, nil, &errors.TopLevelError{Class: errors.ClassCostError, Cost: &errors.CostBalanceExceededError{}}
			}
			return contractAST, nil, &errors.TopLevelError{Class: errors.ClassAnalysis, Check: ce}
		}
		return contractAST, nil, &errors.TopLevelError{Class: errors.ClassBadTransaction, BadTxMsg: err.Error()}
	}
	return contractAST, ca, nil
}

// SaveAnalysis persists a contract's analysis output to the analysis
// store, matching save_analysis's own small begin/insert/commit-or-
// rollback envelope at the AnalysisDatabase level (AnalysisDatabase has
// no nested-transaction surface of its own in this module, so a failed
// insert simply returns the error without a compensating rollback step).
func (bc *ClarityBlockConnection) SaveAnalysis(id types.QualifiedContractIdentifier, ca *analysis.ContractAnalysis) *errors.TopLevelError {
	if err := bc.parent.analysisDB.PutContractAnalysis(id, ca); err != nil {
		if ce, ok := err.(*errors.CheckError); ok {
			return &errors.TopLevelError{Class: errors.ClassAnalysis, Check: ce}
		}
		return &errors.TopLevelError{Class: errors.ClassBadTransaction, BadTxMsg: err.Error()}
	}
	return nil
}

// AbortCallback decides, after a successful initialize/call, whether its
// writes should still be discarded — the same role the reference
// implementation's `abort_call_back: FnOnce(&AssetMap, &mut ClarityDatabase) -> bool`
// plays, simplified to take just the produced value since this module
// does not track an AssetMap (spec.md's Non-goals exclude persistent
// token ledgers, and no asset-transfer log sits between the native bodies
// and the caller here).
type AbortCallback func(result *types.Value) bool

// InitializeSmartContract evaluates a contract's top-level define-*
// forms inside a nested store transaction, persisting its source and AST
// first so contract-call? (including a self-reference from within an
// initializer) can resolve it immediately. A RuntimeError or a true
// abortCallback both roll the whole transaction back, exactly as
// with_abort_callback does around initialize_contract_from_ast.
func (bc *ClarityBlockConnection) InitializeSmartContract(id types.QualifiedContractIdentifier, contractAST *ast.ContractAST, source string, abortCallback AbortCallback) *errors.TopLevelError {
	db := bc.parent.db
	db.Begin()
	db.PutContractCode(id, source, contractAST)

	ctx := &eval.Context{
		DB:         db,
		Tracker:    bc.costTrack,
		ContractID: id,
		Sender:     types.NewStandardPrincipal(types.TransientPrincipal()),
		Caller:     types.NewStandardPrincipal(types.TransientPrincipal()),
	}
	if _, rErr := eval.InitializeContract(contractAST.Expressions, ctx); rErr != nil {
		db.Rollback()
		return runtimeTopLevelError(rErr)
	}
	if abortCallback != nil && abortCallback(nil) {
		db.Rollback()
		return nil
	}
	db.Commit()
	return nil
}

// RunContractCall invokes a deployed contract's public function inside a
// nested store transaction: a RuntimeError, an (err ...) response, or a
// true abortCallback all roll the call back; anything else commits,
// matching run_contract_call's own abort semantics plus the implicit
// response-aware rollback internal/eval's contract-call? already performs
// one layer down for nested calls.
func (bc *ClarityBlockConnection) RunContractCall(sender types.PrincipalData, id types.QualifiedContractIdentifier, functionName string, args []*types.Value, abortCallback AbortCallback) (*types.Value, *errors.TopLevelError) {
	db := bc.parent.db
	_, contractAST, ok := db.GetContractCode(id)
	if !ok {
		return nil, &errors.TopLevelError{Class: errors.ClassBadTransaction, BadTxMsg: fmt.Sprintf("no such contract %s", id)}
	}

	ctx := &eval.Context{
		DB:         db,
		Tracker:    bc.costTrack,
		ContractID: id,
		Sender:     sender,
		Caller:     sender,
	}

	db.Begin()
	result, rErr := eval.CallPublicFunction(contractAST.Expressions, functionName, args, ctx)
	if rErr != nil {
		db.Rollback()
		return nil, runtimeTopLevelError(rErr)
	}
	if result.Kind == types.ValResponse && !result.ResponseCommitted {
		db.Rollback()
		return result, nil
	}
	if abortCallback != nil && abortCallback(result) {
		db.Rollback()
		return result, nil
	}
	db.Commit()
	return result, nil
}

// EvalReadOnly evaluates a read-only function of an already-initialized
// contract without ever committing: the whole call runs inside a nested
// transaction that is unconditionally rolled back afterward, mirroring
// with_clarity_db_readonly/eval_read_only's "begin, run, always roll_back"
// shape regardless of success or failure.
func (bc *ClarityBlockConnection) EvalReadOnly(id types.QualifiedContractIdentifier, functionName string, args []*types.Value) (*types.Value, *errors.TopLevelError) {
	db := bc.parent.db
	_, contractAST, ok := db.GetContractCode(id)
	if !ok {
		return nil, &errors.TopLevelError{Class: errors.ClassBadTransaction, BadTxMsg: fmt.Sprintf("no such contract %s", id)}
	}

	ctx := &eval.Context{
		DB:         db,
		Tracker:    bc.costTrack,
		ContractID: id,
		Sender:     types.NewStandardPrincipal(types.TransientPrincipal()),
		Caller:     types.NewStandardPrincipal(types.TransientPrincipal()),
	}

	db.Begin()
	result, rErr := eval.CallPublicFunction(contractAST.Expressions, functionName, args, ctx)
	db.Rollback()
	if rErr != nil {
		return nil, runtimeTopLevelError(rErr)
	}
	return result, nil
}

func runtimeTopLevelError(rErr *errors.RuntimeError) *errors.TopLevelError {
	return errors.PromoteRuntime(rErr)
}

// causeCheckError unwraps the pkgerrors.Wrap chain analysis.RunAnalysis
// applies at every pass boundary back to the concrete *errors.CheckError,
// the same unwrap cmd/clarity-cli's own error reporting performs.
func causeCheckError(err error) (*errors.CheckError, bool) {
	type causer interface{ Cause() error }
	for err != nil {
		if ce, ok := err.(*errors.CheckError); ok {
			return ce, true
		}
		c, ok := err.(causer)
		if !ok {
			return nil, false
		}
		err = c.Cause()
	}
	return nil, false
}
