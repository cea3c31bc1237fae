package eval

import (
	"math/big"

	"clarity/internal/ast"
	"clarity/internal/errors"
	"clarity/internal/types"
)

// evalArith evaluates +/-/*/mod/pow// over a run of Int- or UInt-typed
// operands, the runtime counterpart to TypeChecker.numericArgs: every
// operand must share the same Kind, and the accumulated big.Int is
// range-checked back through IntValue/UIntValue the same way a freshly
// parsed literal is.
func evalArith(e *ast.SymbolicExpression, name string, args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	vals, err := evalArgs(args, en, ctx)
	if err != nil {
		return nil, err
	}
	isUInt := vals[0].Kind == types.ValUInt
	acc := new(big.Int).Set(operandOf(vals[0]))

	apply := func(a, b *big.Int) (*big.Int, *errors.RuntimeError) {
		switch name {
		case "+":
			return new(big.Int).Add(a, b), nil
		case "-":
			return new(big.Int).Sub(a, b), nil
		case "*":
			return new(big.Int).Mul(a, b), nil
		case "/":
			if b.Sign() == 0 {
				return nil, errors.NewArithmeticError(errors.DivisionByZero)
			}
			return new(big.Int).Quo(a, b), nil
		case "mod":
			if b.Sign() == 0 {
				return nil, errors.NewArithmeticError(errors.DivisionByZero)
			}
			return new(big.Int).Rem(a, b), nil
		case "pow":
			if b.Sign() < 0 {
				return nil, errors.NewArithmeticError(errors.Overflow)
			}
			return new(big.Int).Exp(a, b, nil), nil
		}
		return nil, errors.NewArithmeticError(errors.Overflow)
	}

	if name == "-" && len(vals) == 1 {
		acc = new(big.Int).Neg(acc)
	} else {
		for _, v := range vals[1:] {
			var rErr *errors.RuntimeError
			acc, rErr = apply(acc, operandOf(v))
			if rErr != nil {
				return nil, rErr
			}
		}
	}

	if isUInt {
		v, cErr := types.UIntValue(acc)
		if cErr != nil {
			return nil, errors.NewArithmeticError(errors.Overflow)
		}
		return v, nil
	}
	v, cErr := types.IntValue(acc)
	if cErr != nil {
		return nil, errors.NewArithmeticError(errors.Overflow)
	}
	return v, nil
}

func operandOf(v *types.Value) *big.Int {
	if v.Kind == types.ValUInt {
		return v.UInt
	}
	return v.Int
}

func evalSqrti(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	v, err := Eval(args[0], en, ctx)
	if err != nil {
		return nil, err
	}
	n := operandOf(v)
	if n.Sign() < 0 {
		return nil, errors.NewArithmeticError(errors.Overflow)
	}
	out, cErr := types.UIntValue(new(big.Int).Sqrt(n))
	if cErr != nil {
		return nil, errors.NewArithmeticError(errors.Overflow)
	}
	return out, nil
}

func evalLog2(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	v, err := Eval(args[0], en, ctx)
	if err != nil {
		return nil, err
	}
	n := operandOf(v)
	if n.Sign() <= 0 {
		return nil, errors.NewArithmeticError(errors.Overflow)
	}
	out, cErr := types.UIntValue(big.NewInt(int64(n.BitLen() - 1)))
	if cErr != nil {
		return nil, errors.NewArithmeticError(errors.Overflow)
	}
	return out, nil
}

func evalOrderCompare(name string, args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	vals, err := evalArgs(args, en, ctx)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(vals); i++ {
		cmp := operandOf(vals[i-1]).Cmp(operandOf(vals[i]))
		var ok bool
		switch name {
		case "<":
			ok = cmp < 0
		case "<=":
			ok = cmp <= 0
		case ">":
			ok = cmp > 0
		case ">=":
			ok = cmp >= 0
		}
		if !ok {
			return types.BoolValue(false), nil
		}
	}
	return types.BoolValue(true), nil
}

func evalEquals(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	vals, err := evalArgs(args, en, ctx)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(vals); i++ {
		if !valuesEqual(vals[i-1], vals[i]) {
			return types.BoolValue(false), nil
		}
	}
	return types.BoolValue(true), nil
}

// valuesEqual is a structural equality used by `=` and index-of, since
// types.Value carries no Equal method of its own.
func valuesEqual(a, b *types.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case types.ValInt:
		return a.Int.Cmp(b.Int) == 0
	case types.ValUInt:
		return a.UInt.Cmp(b.UInt) == 0
	case types.ValBool:
		return a.Bool == b.Bool
	case types.ValBuffer:
		return string(a.Buffer) == string(b.Buffer)
	case types.ValPrincipal:
		return a.Principal.Equal(b.Principal)
	case types.ValOptional:
		if (a.OptionalSome == nil) != (b.OptionalSome == nil) {
			return false
		}
		if a.OptionalSome == nil {
			return true
		}
		return valuesEqual(a.OptionalSome, b.OptionalSome)
	case types.ValResponse:
		return a.ResponseCommitted == b.ResponseCommitted && valuesEqual(a.ResponseData, b.ResponseData)
	case types.ValList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !valuesEqual(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case types.ValTuple:
		if len(a.Tuple) != len(b.Tuple) {
			return false
		}
		for k, av := range a.Tuple {
			bv, ok := b.Tuple[k]
			if !ok || !valuesEqual(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func evalFTGetBalance(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	tokName := types.ClarityName(args[0].Atom)
	owner, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	v, cErr := types.UIntValue(ctx.DB.GetFTBalance(ctx.ContractID, tokName, owner.Principal))
	if cErr != nil {
		return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
	}
	return v, nil
}

func evalFTMint(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	tokName := types.ClarityName(args[0].Atom)
	amount, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	recipient, err := Eval(args[2], en, ctx)
	if err != nil {
		return nil, err
	}
	if max, ok := ctx.DB.GetFTMaxSupply(ctx.ContractID, tokName); ok {
		supply := new(big.Int).Add(ctx.DB.GetFTSupply(ctx.ContractID, tokName), amount.UInt)
		if supply.Cmp(max) > 0 {
			return types.ErrUInt(1), nil
		}
	}
	bal := new(big.Int).Add(ctx.DB.GetFTBalance(ctx.ContractID, tokName, recipient.Principal), amount.UInt)
	ctx.DB.SetFTBalance(ctx.ContractID, tokName, recipient.Principal, bal)
	ctx.DB.SetFTSupply(ctx.ContractID, tokName, new(big.Int).Add(ctx.DB.GetFTSupply(ctx.ContractID, tokName), amount.UInt))
	return types.OkayTrue(), nil
}

func evalFTTransfer(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	tokName := types.ClarityName(args[0].Atom)
	amount, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	sender, err := Eval(args[2], en, ctx)
	if err != nil {
		return nil, err
	}
	recipient, err := Eval(args[3], en, ctx)
	if err != nil {
		return nil, err
	}
	senderBal := ctx.DB.GetFTBalance(ctx.ContractID, tokName, sender.Principal)
	if senderBal.Cmp(amount.UInt) < 0 {
		return types.ErrUInt(1), nil
	}
	ctx.DB.SetFTBalance(ctx.ContractID, tokName, sender.Principal, new(big.Int).Sub(senderBal, amount.UInt))
	recipientBal := ctx.DB.GetFTBalance(ctx.ContractID, tokName, recipient.Principal)
	ctx.DB.SetFTBalance(ctx.ContractID, tokName, recipient.Principal, new(big.Int).Add(recipientBal, amount.UInt))
	return types.OkayTrue(), nil
}

func evalFTBurn(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	tokName := types.ClarityName(args[0].Atom)
	amount, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	owner, err := Eval(args[2], en, ctx)
	if err != nil {
		return nil, err
	}
	bal := ctx.DB.GetFTBalance(ctx.ContractID, tokName, owner.Principal)
	if bal.Cmp(amount.UInt) < 0 {
		return types.ErrUInt(1), nil
	}
	ctx.DB.SetFTBalance(ctx.ContractID, tokName, owner.Principal, new(big.Int).Sub(bal, amount.UInt))
	ctx.DB.SetFTSupply(ctx.ContractID, tokName, new(big.Int).Sub(ctx.DB.GetFTSupply(ctx.ContractID, tokName), amount.UInt))
	return types.OkayTrue(), nil
}

func evalNFTMint(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	assetName := types.ClarityName(args[0].Atom)
	asset, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	recipient, err := Eval(args[2], en, ctx)
	if err != nil {
		return nil, err
	}
	if _, exists := ctx.DB.GetNFTOwner(ctx.ContractID, assetName, asset); exists {
		return types.ErrUInt(1), nil
	}
	ctx.DB.SetNFTOwner(ctx.ContractID, assetName, asset, recipient.Principal)
	return types.OkayTrue(), nil
}

func evalNFTTransfer(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	assetName := types.ClarityName(args[0].Atom)
	asset, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	sender, err := Eval(args[2], en, ctx)
	if err != nil {
		return nil, err
	}
	recipient, err := Eval(args[3], en, ctx)
	if err != nil {
		return nil, err
	}
	owner, exists := ctx.DB.GetNFTOwner(ctx.ContractID, assetName, asset)
	if !exists || !owner.Equal(sender.Principal) {
		return types.ErrUInt(1), nil
	}
	ctx.DB.SetNFTOwner(ctx.ContractID, assetName, asset, recipient.Principal)
	return types.OkayTrue(), nil
}

func evalNFTGetOwner(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	assetName := types.ClarityName(args[0].Atom)
	asset, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	owner, exists := ctx.DB.GetNFTOwner(ctx.ContractID, assetName, asset)
	if !exists {
		return types.None(), nil
	}
	out, cErr := types.Some(types.PrincipalValue(owner))
	if cErr != nil {
		return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
	}
	return out, nil
}

// CallPublicFunction is the entry point a Block Connection uses to run a
// deployed contract's public or read-only function from outside: it loads
// the contract's top-level constants into ctx before dispatching, the
// same setup the callPublic test helper performs by hand for each case.
func CallPublicFunction(top []*ast.SymbolicExpression, name string, argVals []*types.Value, ctx *Context) (*types.Value, *errors.RuntimeError) {
	if _, err := loadConstants(top, ctx); err != nil {
		return nil, err
	}
	fd := findFunction(top, name)
	if fd == nil {
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.UndefinedFunction, ast.Span{}, "call to undefined function %q", name))
	}
	if !fd.Public && !fd.ReadOnly {
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.NotAPublicFunction, ast.Span{}, "%q is not a public or read-only function", name))
	}
	if len(argVals) != len(fd.Params) {
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.IncorrectArgumentCount, ast.Span{},
			"%s expects %d argument(s), got %d", fd.Name, len(fd.Params), len(argVals)))
	}
	if err := ctx.pushFrame(fd.Name); err != nil {
		return nil, err
	}
	defer ctx.popFrame()

	callEnv := newEnv(nil)
	for i, p := range fd.Params {
		callEnv.bind(p, argVals[i])
	}
	return Eval(fd.Body, callEnv, ctx)
}

// applyNamed resolves and calls a user-defined function by name against
// the currently executing contract, the shape filter/map/fold's
// function-argument need that a plain applyUserFunction call (which
// expects unevaluated ast.SymbolicExpression argument nodes) does not
// cover.
func applyNamed(name string, argVals []*types.Value, ctx *Context) (*types.Value, *errors.RuntimeError) {
	fd := findFunction(topLevelOf(ctx), name)
	if fd == nil {
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.UndefinedFunction, ast.Span{}, "call to undefined function %q", name))
	}
	if err := ctx.pushFrame(fd.Name); err != nil {
		return nil, err
	}
	defer ctx.popFrame()

	callEnv := newEnv(nil)
	for i, p := range fd.Params {
		callEnv.bind(p, argVals[i])
	}
	return Eval(fd.Body, callEnv, ctx)
}

// applyUserFunction evaluates a call to a located define-public/private/
// read-only function: its arguments are unevaluated ast nodes (evalArgs
// handles that), its parameters bind into a fresh, parent-less env
// (Clarity has no closures — a function body only ever sees its own
// parameters and the contract's top-level constants), and the call
// pushes one CallStack frame bounded by maxCallStackDepth.
func applyUserFunction(fd *functionDef, args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	argVals, err := evalArgs(args, en, ctx)
	if err != nil {
		return nil, err
	}
	if len(argVals) != len(fd.Params) {
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.IncorrectArgumentCount, ast.Span{},
			"%s expects %d argument(s), got %d", fd.Name, len(fd.Params), len(argVals)))
	}
	if err := ctx.pushFrame(fd.Name); err != nil {
		return nil, err
	}
	defer ctx.popFrame()

	callEnv := newEnv(nil)
	for i, p := range fd.Params {
		callEnv.bind(p, argVals[i])
	}
	return Eval(fd.Body, callEnv, ctx)
}

// evalContractCall resolves (contract-call? .target fn arg...), opening
// a nested store transaction around the callee the way run_contract_call
// wraps a whole transaction: the callee's writes are rolled back if it
// fails with a runtime error or returns (err ...), and committed on any
// other result, matching spec.md §4.6's "inner contract-call? abort
// propagates to the outer transaction" invariant without the caller
// needing to special-case response values itself.
func evalContractCall(e *ast.SymbolicExpression, args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	targetVal, err := Eval(args[0], en, ctx)
	if err != nil {
		return nil, err
	}
	if targetVal.Kind != types.ValPrincipal || targetVal.Principal.Kind != types.PrincipalContract {
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.ContractCallExpectName, e.Span,
			"contract-call? target must be a contract principal"))
	}
	targetID := targetVal.Principal.Contract
	fnName := args[1].Atom
	callArgs := args[2:]

	_, calleeAST, ok := ctx.DB.GetContractCode(targetID)
	if !ok {
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.NoSuchContract, e.Span, "no such contract %s", targetID))
	}
	fd := findFunction(calleeAST.Expressions, fnName)
	if fd == nil {
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.NoSuchFunction, e.Span, "contract %s has no function %q", targetID, fnName))
	}
	if !fd.Public && !fd.ReadOnly {
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.NotAPublicFunction, e.Span,
			"%s is private and cannot be called via contract-call?", fnName))
	}

	argVals, err := evalArgs(callArgs, en, ctx)
	if err != nil {
		return nil, err
	}

	calleeCtx := &Context{
		DB:         ctx.DB,
		Tracker:    ctx.Tracker,
		ContractID: targetID,
		Sender:     ctx.Sender,
		Caller:     types.NewContractPrincipal(ctx.ContractID),
		CallStack:  ctx.CallStack,
	}
	if err := calleeCtx.pushFrame(targetID.String() + "." + fnName); err != nil {
		return nil, err
	}
	defer calleeCtx.popFrame()

	calleeRoot, err := loadConstants(calleeAST.Expressions, calleeCtx)
	if err != nil {
		return nil, err
	}
	callEnv := newEnv(calleeRoot)
	for i, p := range fd.Params {
		callEnv.bind(p, argVals[i])
	}

	ctx.DB.Begin()
	result, err := Eval(fd.Body, callEnv, calleeCtx)
	if err != nil {
		ctx.DB.Rollback()
		return nil, err
	}
	if result.Kind == types.ValResponse && !result.ResponseCommitted {
		ctx.DB.Rollback()
	} else {
		ctx.DB.Commit()
	}
	return result, nil
}
