package eval

import (
	"math/big"

	"clarity/internal/ast"
	"clarity/internal/costs"
	"clarity/internal/errors"
	"clarity/internal/natives"
	"clarity/internal/types"
)

// Eval interprets a single canonical SymbolicExpression, the runtime
// counterpart to analysis.TypeChecker.check: same node-kind dispatch,
// same per-node cost charge, but producing a types.Value instead of a
// TypeSignature.
func Eval(e *ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	if ctx.Tracker != nil {
		if err := costs.ANALYSIS_TYPE_CHECK.Apply(ctx.Tracker, 1); err != nil {
			return nil, errors.NewUnchecked(err.(*errors.CheckError))
		}
	}

	switch e.Kind {
	case ast.SymAtomValue:
		return e.AtomValue, nil
	case ast.SymLiteralValue:
		return e.LiteralValue, nil
	case ast.SymAtom:
		return evalAtom(e, en, ctx)
	case ast.SymList:
		return evalList(e, en, ctx)
	default:
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.TypeError, e.Span,
			"node kind %d has no runtime representation", e.Kind))
	}
}

func evalAtom(e *ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	if v, ok := en.lookup(types.ClarityName(e.Atom)); ok {
		return v, nil
	}
	if v, ok := ctx.constants[types.ClarityName(e.Atom)]; ok {
		return v, nil
	}
	switch e.Atom {
	case "true":
		return types.BoolValue(true), nil
	case "false":
		return types.BoolValue(false), nil
	case "none":
		return types.None(), nil
	case "tx-sender":
		return types.PrincipalValue(ctx.Sender), nil
	case "contract-caller":
		return types.PrincipalValue(ctx.Caller), nil
	case "block-height", "burn-block-height":
		v, _ := types.UIntValue(big.NewInt(0))
		return v, nil
	}
	return nil, errors.NewUnchecked(errors.NewCheckError(errors.UndefinedVariable, e.Span,
		"use of undefined variable %q", e.Atom))
}

func evalArgs(args []*ast.SymbolicExpression, en *env, ctx *Context) ([]*types.Value, *errors.RuntimeError) {
	out := make([]*types.Value, len(args))
	for i, a := range args {
		v, err := Eval(a, en, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func evalList(e *ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	if len(e.List) == 0 {
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.TypeError, e.Span, "empty application"))
	}
	head := e.List[0]
	args := e.List[1:]

	if head.Kind == ast.SymAtom {
		if _, ok := natives.Lookup(head.Atom); ok {
			return evalNative(e, head.Atom, args, en, ctx)
		}
		if fd := findFunction(topLevelOf(ctx), head.Atom); fd != nil {
			return applyUserFunction(fd, args, en, ctx)
		}
	}
	return nil, errors.NewUnchecked(errors.NewCheckError(errors.UndefinedFunction, e.Span,
		"call to undefined function %q", head.Atom))
}

// topLevelOf retrieves the executing contract's own top-level forms from
// the store, the same lookup contract-call? uses for a callee — a
// function can always find its own siblings this way without the
// Context needing a direct ast.ContractAST field that would grow stale
// across a nested contract-call?.
func topLevelOf(ctx *Context) []*ast.SymbolicExpression {
	_, contractAST, ok := ctx.DB.GetContractCode(ctx.ContractID)
	if !ok || contractAST == nil {
		return nil
	}
	return contractAST.Expressions
}
