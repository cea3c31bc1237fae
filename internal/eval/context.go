package eval

import (
	"clarity/internal/ast"
	"clarity/internal/costs"
	"clarity/internal/errors"
	"clarity/internal/store"
	"clarity/internal/types"
)

// maxCallStackDepth mirrors StackDepthChecker's DefaultMaxExpressionDepth
// (spec.md §5's "bounded at 64 deep" call-stack invariant) but counts
// function-apply frames rather than nested list depth.
const maxCallStackDepth = 64

// Context carries everything a single top-level evaluation (one
// initialize_smart_contract or run_contract_call) needs, the runtime
// counterpart to analysis.ContractAnalysis: a store to read/write
// through, the current contract identity, the fixed transaction sender,
// the immediate caller, and a bounded call stack.
type Context struct {
	DB      store.ClarityDatabase
	Tracker *costs.LimitedCostTracker

	// ContractID is the contract whose body is currently executing;
	// contract-call? and as-contract both push a new Context with this
	// field updated rather than mutating the caller's.
	ContractID types.QualifiedContractIdentifier

	// Sender is the transaction's tx-sender, fixed for the whole
	// transaction except inside as-contract, where it becomes the
	// acting contract's own principal for the wrapped expression.
	Sender types.PrincipalData

	// Caller is contract-caller: the immediate calling principal, which
	// changes at every contract-call? boundary even though Sender does
	// not.
	Caller types.PrincipalData

	CallStack []string

	constants map[types.ClarityName]*types.Value
}

func (c *Context) pushFrame(frame string) *errors.RuntimeError {
	if len(c.CallStack) >= maxCallStackDepth {
		return errors.NewMaxStackDepthReached()
	}
	c.CallStack = append(c.CallStack, frame)
	return nil
}

func (c *Context) popFrame() {
	c.CallStack = c.CallStack[:len(c.CallStack)-1]
}

// functionDef is a located define-public/private/read-only form: its
// parameter names and its body, resolved by name from a ContractAST.
type functionDef struct {
	Name     string
	Public   bool
	ReadOnly bool
	Params   []types.ClarityName
	Body     *ast.SymbolicExpression
}

// findFunction scans a contract's top-level forms for a definition named
// name, the same linear lookup initialize_smart_contract's caller
// performs once per call rather than maintaining a long-lived parallel
// registry the store would need to keep in sync with the AST.
func findFunction(top []*ast.SymbolicExpression, name string) *functionDef {
	for _, form := range top {
		if form.Kind != ast.SymList || len(form.List) < 3 || form.List[0].Kind != ast.SymAtom {
			continue
		}
		head := form.List[0].Atom
		var public, readOnly bool
		switch head {
		case "define-public":
			public = true
		case "define-private":
		case "define-read-only":
			readOnly = true
		default:
			continue
		}
		sig := form.List[1]
		if sig.Kind != ast.SymList || len(sig.List) == 0 || sig.List[0].Atom != name {
			continue
		}
		params := make([]types.ClarityName, 0, len(sig.List)-1)
		for _, p := range sig.List[1:] {
			params = append(params, types.ClarityName(p.List[0].Atom))
		}
		return &functionDef{Name: name, Public: public, ReadOnly: readOnly, Params: params, Body: form.List[2]}
	}
	return nil
}
