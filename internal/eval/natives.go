package eval

import (
	"math/big"

	"clarity/internal/ast"
	"clarity/internal/errors"
	"clarity/internal/natives"
	"clarity/internal/types"
)

// evalNative dispatches one of the native forms natives.Registry
// declares, mirroring analysis.TypeChecker.checkNative's switch shape but
// producing values instead of types. Every native this evaluator runs,
// print, to-int/to-uint and merge included, is a case of the one switch
// below; a registered name with no case returns an unchecked
// UndefinedFunction error.
func evalNative(e *ast.SymbolicExpression, name string, args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	n, _ := natives.Lookup(name)
	if !n.Arity.Admits(len(args)) {
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.IncorrectArgumentCount, e.Span,
			"%s does not admit %d argument(s)", name, len(args)))
	}

	switch name {
	case "+", "-", "*", "/", "mod", "pow":
		return evalArith(e, name, args, en, ctx)
	case "sqrti":
		return evalSqrti(args, en, ctx)
	case "log2":
		return evalLog2(args, en, ctx)
	case "<", "<=", ">", ">=":
		return evalOrderCompare(name, args, en, ctx)
	case "=":
		return evalEquals(args, en, ctx)
	case "not":
		v, err := Eval(args[0], en, ctx)
		if err != nil {
			return nil, err
		}
		return types.BoolValue(!v.Bool), nil
	case "and":
		return evalAnd(args, en, ctx)
	case "or":
		return evalOr(args, en, ctx)
	case "if":
		cond, err := Eval(args[0], en, ctx)
		if err != nil {
			return nil, err
		}
		if cond.Bool {
			return Eval(args[1], en, ctx)
		}
		return Eval(args[2], en, ctx)
	case "begin":
		return evalSequence(args, en, ctx)
	case "let":
		return evalLet(args, en, ctx)
	case "asserts!":
		return evalAsserts(args, en, ctx)
	case "try!":
		return evalTry(args[0], en, ctx)
	case "unwrap!":
		return evalUnwrap(args[0], args[1], en, ctx, false)
	case "unwrap-err!":
		return evalUnwrap(args[0], args[1], en, ctx, true)
	case "unwrap-panic":
		return evalUnwrapPanic(args[0], en, ctx, false)
	case "unwrap-err-panic":
		return evalUnwrapPanic(args[0], en, ctx, true)
	case "list":
		vals, err := evalArgs(args, en, ctx)
		if err != nil {
			return nil, err
		}
		v, cErr := types.ListFrom(vals)
		if cErr != nil {
			return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
		}
		return v, nil
	case "len":
		return evalLen(args[0], en, ctx)
	case "append":
		return evalAppend(args, en, ctx)
	case "concat":
		return evalConcat(args, en, ctx)
	case "element-at":
		return evalElementAt(args, en, ctx)
	case "index-of":
		return evalIndexOf(args, en, ctx)
	case "filter":
		return evalFilter(args, en, ctx)
	case "map":
		return evalMap(args, en, ctx)
	case "fold":
		return evalFold(args, en, ctx)
	case "tuple":
		return evalTupleLiteral(args, en, ctx)
	case "get":
		return evalGet(args, en, ctx)
	case "merge":
		return evalMerge(args, en, ctx)
	case "some":
		v, err := Eval(args[0], en, ctx)
		if err != nil {
			return nil, err
		}
		out, cErr := types.Some(v)
		if cErr != nil {
			return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
		}
		return out, nil
	case "is-none":
		v, err := Eval(args[0], en, ctx)
		if err != nil {
			return nil, err
		}
		return types.BoolValue(v.OptionalSome == nil), nil
	case "is-some":
		v, err := Eval(args[0], en, ctx)
		if err != nil {
			return nil, err
		}
		return types.BoolValue(v.OptionalSome != nil), nil
	case "ok":
		v, err := Eval(args[0], en, ctx)
		if err != nil {
			return nil, err
		}
		out, cErr := types.Okay(v)
		if cErr != nil {
			return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
		}
		return out, nil
	case "err":
		v, err := Eval(args[0], en, ctx)
		if err != nil {
			return nil, err
		}
		out, cErr := types.ErrorValue(v)
		if cErr != nil {
			return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
		}
		return out, nil
	case "is-ok":
		v, err := Eval(args[0], en, ctx)
		if err != nil {
			return nil, err
		}
		return types.BoolValue(v.ResponseCommitted), nil
	case "is-err":
		v, err := Eval(args[0], en, ctx)
		if err != nil {
			return nil, err
		}
		return types.BoolValue(!v.ResponseCommitted), nil
	case "var-get":
		name := types.ClarityName(args[0].Atom)
		v, ok := ctx.DB.GetVariable(ctx.ContractID, name)
		if !ok {
			return nil, errors.NewUnchecked(errors.NewCheckError(errors.NoSuchMap, e.Span, "no such data var %q", name))
		}
		return v, nil
	case "var-set":
		return evalVarSet(args, en, ctx)
	case "map-get?":
		return evalMapGet(args, en, ctx)
	case "map-set", "map-insert", "map-delete":
		return evalMapWrite(e, name, args, en, ctx)
	case "ft-get-balance":
		return evalFTGetBalance(args, en, ctx)
	case "ft-get-supply":
		tokName := types.ClarityName(args[0].Atom)
		v, cErr := types.UIntValue(ctx.DB.GetFTSupply(ctx.ContractID, tokName))
		if cErr != nil {
			return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
		}
		return v, nil
	case "ft-mint?":
		return evalFTMint(args, en, ctx)
	case "ft-transfer?":
		return evalFTTransfer(args, en, ctx)
	case "ft-burn?":
		return evalFTBurn(args, en, ctx)
	case "nft-mint?":
		return evalNFTMint(args, en, ctx)
	case "nft-transfer?":
		return evalNFTTransfer(args, en, ctx)
	case "nft-get-owner?":
		return evalNFTGetOwner(args, en, ctx)
	case "as-contract":
		return evalAsContract(args[0], en, ctx)
	case "contract-call?":
		return evalContractCall(e, args, en, ctx)
	case "print":
		return Eval(args[0], en, ctx)
	case "to-int":
		v, err := Eval(args[0], en, ctx)
		if err != nil {
			return nil, err
		}
		out, cErr := types.IntValue(v.UInt)
		if cErr != nil {
			return nil, errors.NewArithmeticError(errors.Overflow)
		}
		return out, nil
	case "to-uint":
		v, err := Eval(args[0], en, ctx)
		if err != nil {
			return nil, err
		}
		out, cErr := types.UIntValue(v.Int)
		if cErr != nil {
			return nil, errors.NewArithmeticError(errors.Overflow)
		}
		return out, nil
	}
	return nil, errors.NewUnchecked(errors.NewCheckError(errors.UndefinedFunction, e.Span,
		"native %q has no evaluator binding", name))
}

func evalSequence(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	var last *types.Value
	for _, a := range args {
		v, err := Eval(a, en, ctx)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func evalAnd(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	for _, a := range args {
		v, err := Eval(a, en, ctx)
		if err != nil {
			return nil, err
		}
		if !v.Bool {
			return types.BoolValue(false), nil
		}
	}
	return types.BoolValue(true), nil
}

func evalOr(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	for _, a := range args {
		v, err := Eval(a, en, ctx)
		if err != nil {
			return nil, err
		}
		if v.Bool {
			return types.BoolValue(true), nil
		}
	}
	return types.BoolValue(false), nil
}

func evalLet(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	letEnv := newEnv(en)
	for _, binding := range args[0].List {
		v, err := Eval(binding.List[1], letEnv, ctx)
		if err != nil {
			return nil, err
		}
		letEnv.bind(types.ClarityName(binding.List[0].Atom), v)
	}
	return evalSequence(args[1:], letEnv, ctx)
}

func evalAsserts(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	cond, err := Eval(args[0], en, ctx)
	if err != nil {
		return nil, err
	}
	if cond.Bool {
		return types.BoolValue(true), nil
	}
	thrown, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	return nil, errors.NewShortReturn(thrown)
}

func evalTry(arg *ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	v, err := Eval(arg, en, ctx)
	if err != nil {
		return nil, err
	}
	switch v.Kind {
	case types.ValOptional:
		if v.OptionalSome != nil {
			return v.OptionalSome, nil
		}
		return nil, errors.NewShortReturn(v)
	case types.ValResponse:
		if v.ResponseCommitted {
			return v.ResponseData, nil
		}
		return nil, errors.NewShortReturn(v)
	default:
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.TypeError, arg.Span, "try! expects response/optional"))
	}
}

func evalUnwrap(valueExpr, elseExpr *ast.SymbolicExpression, en *env, ctx *Context, wantErr bool) (*types.Value, *errors.RuntimeError) {
	v, err := Eval(valueExpr, en, ctx)
	if err != nil {
		return nil, err
	}
	switch v.Kind {
	case types.ValOptional:
		if !wantErr && v.OptionalSome != nil {
			return v.OptionalSome, nil
		}
	case types.ValResponse:
		if wantErr && !v.ResponseCommitted {
			return v.ResponseData, nil
		}
		if !wantErr && v.ResponseCommitted {
			return v.ResponseData, nil
		}
	}
	thrown, err := Eval(elseExpr, en, ctx)
	if err != nil {
		return nil, err
	}
	return nil, errors.NewShortReturn(thrown)
}

func evalUnwrapPanic(arg *ast.SymbolicExpression, en *env, ctx *Context, wantErr bool) (*types.Value, *errors.RuntimeError) {
	v, err := Eval(arg, en, ctx)
	if err != nil {
		return nil, err
	}
	switch v.Kind {
	case types.ValOptional:
		if !wantErr && v.OptionalSome != nil {
			return v.OptionalSome, nil
		}
	case types.ValResponse:
		if wantErr && !v.ResponseCommitted {
			return v.ResponseData, nil
		}
		if !wantErr && v.ResponseCommitted {
			return v.ResponseData, nil
		}
	}
	return nil, &errors.RuntimeError{Kind: errors.RuntimeGeneric, Message: "panic: unwrap on None/Err value"}
}

func evalLen(arg *ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	v, err := Eval(arg, en, ctx)
	if err != nil {
		return nil, err
	}
	var n int
	switch v.Kind {
	case types.ValList:
		n = len(v.List)
	case types.ValBuffer:
		n = len(v.Buffer)
	default:
		return nil, errors.NewUnchecked(errors.NewCheckError(errors.TypeError, arg.Span, "len expects a list or buffer"))
	}
	out, cErr := types.UIntValue(big.NewInt(int64(n)))
	if cErr != nil {
		return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
	}
	return out, nil
}

func evalAppend(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	list, err := Eval(args[0], en, ctx)
	if err != nil {
		return nil, err
	}
	elem, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	elemType := list.ListType.ListElem
	if elemType == nil || elemType.Kind == types.TypeNoType {
		elemType = elem.TypeOf()
	}
	out, cErr := types.ListWithType(append(append([]*types.Value(nil), list.List...), elem), elemType, len(list.List)+1)
	if cErr != nil {
		return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
	}
	return out, nil
}

func evalConcat(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	a, err := Eval(args[0], en, ctx)
	if err != nil {
		return nil, err
	}
	b, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	if a.Kind == types.ValBuffer {
		buf, cErr := types.BuffFrom(append(append([]byte(nil), a.Buffer...), b.Buffer...))
		if cErr != nil {
			return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
		}
		return buf, nil
	}
	elemType := a.ListType.ListElem
	combined := append(append([]*types.Value(nil), a.List...), b.List...)
	out, cErr := types.ListWithType(combined, elemType, len(combined))
	if cErr != nil {
		return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
	}
	return out, nil
}

func evalElementAt(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	list, err := Eval(args[0], en, ctx)
	if err != nil {
		return nil, err
	}
	idx, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	i := int(idx.UInt.Int64())
	if i < 0 || i >= len(list.List) {
		return types.None(), nil
	}
	out, cErr := types.Some(list.List[i])
	if cErr != nil {
		return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
	}
	return out, nil
}

func evalIndexOf(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	list, err := Eval(args[0], en, ctx)
	if err != nil {
		return nil, err
	}
	needle, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	for i, elem := range list.List {
		if valuesEqual(elem, needle) {
			idx, _ := types.UIntValue(big.NewInt(int64(i)))
			out, cErr := types.Some(idx)
			if cErr != nil {
				return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
			}
			return out, nil
		}
	}
	return types.None(), nil
}

func evalFilter(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	predName := args[0].Atom
	list, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	kept := make([]*types.Value, 0, len(list.List))
	for _, elem := range list.List {
		result, err := applyNamed(predName, []*types.Value{elem}, ctx)
		if err != nil {
			return nil, err
		}
		if result.Bool {
			kept = append(kept, elem)
		}
	}
	elemType := list.ListType.ListElem
	out, cErr := types.ListWithType(kept, elemType, len(kept))
	if cErr != nil {
		return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
	}
	return out, nil
}

func evalMap(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	fnName := args[0].Atom
	lists := make([][]*types.Value, 0, len(args)-1)
	length := -1
	for _, listArg := range args[1:] {
		v, err := Eval(listArg, en, ctx)
		if err != nil {
			return nil, err
		}
		lists = append(lists, v.List)
		if length == -1 || len(v.List) < length {
			length = len(v.List)
		}
	}
	out := make([]*types.Value, length)
	for i := 0; i < length; i++ {
		callArgs := make([]*types.Value, len(lists))
		for j, l := range lists {
			callArgs[j] = l[i]
		}
		v, err := applyNamed(fnName, callArgs, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	elemType := types.NoType
	if length > 0 {
		elemType = out[0].TypeOf()
	}
	result, cErr := types.ListWithType(out, elemType, length)
	if cErr != nil {
		return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
	}
	return result, nil
}

func evalFold(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	fnName := args[0].Atom
	list, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	acc, err := Eval(args[2], en, ctx)
	if err != nil {
		return nil, err
	}
	for _, elem := range list.List {
		acc, err = applyNamed(fnName, []*types.Value{elem, acc}, ctx)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func evalTupleLiteral(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	fields := make(map[types.ClarityName]*types.Value, len(args))
	for _, pair := range args {
		v, err := Eval(pair.List[1], en, ctx)
		if err != nil {
			return nil, err
		}
		fields[types.ClarityName(pair.List[0].Atom)] = v
	}
	out, cErr := types.TupleFromData(fields)
	if cErr != nil {
		return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
	}
	return out, nil
}

func evalGet(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	field := types.ClarityName(args[0].Atom)
	tupleVal, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	target := tupleVal
	wrapped := false
	if tupleVal.Kind == types.ValOptional {
		if tupleVal.OptionalSome == nil {
			return types.None(), nil
		}
		target = tupleVal.OptionalSome
		wrapped = true
	}
	v, cErr := target.Get(field)
	if cErr != nil {
		return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
	}
	if wrapped {
		out, cErr := types.Some(v)
		if cErr != nil {
			return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
		}
		return out, nil
	}
	return v, nil
}

func evalMerge(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	a, err := Eval(args[0], en, ctx)
	if err != nil {
		return nil, err
	}
	b, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	merged := make(map[types.ClarityName]*types.Value, len(a.Tuple)+len(b.Tuple))
	for k, v := range a.Tuple {
		merged[k] = v
	}
	for k, v := range b.Tuple {
		merged[k] = v
	}
	out, cErr := types.TupleFromData(merged)
	if cErr != nil {
		return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
	}
	return out, nil
}

func evalVarSet(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	name := types.ClarityName(args[0].Atom)
	v, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	ctx.DB.SetVariable(ctx.ContractID, name, v)
	return types.BoolValue(true), nil
}

func evalMapGet(args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	mapName := types.ClarityName(args[0].Atom)
	key, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	v, ok := ctx.DB.GetMapEntry(ctx.ContractID, mapName, key)
	if !ok {
		return types.None(), nil
	}
	out, cErr := types.Some(v)
	if cErr != nil {
		return nil, errors.NewUnchecked(cErr.(*errors.CheckError))
	}
	return out, nil
}

func evalMapWrite(e *ast.SymbolicExpression, name string, args []*ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	mapName := types.ClarityName(args[0].Atom)
	key, err := Eval(args[1], en, ctx)
	if err != nil {
		return nil, err
	}
	switch name {
	case "map-delete":
		return types.BoolValue(ctx.DB.DeleteMapEntry(ctx.ContractID, mapName, key)), nil
	case "map-insert":
		value, err := Eval(args[2], en, ctx)
		if err != nil {
			return nil, err
		}
		return types.BoolValue(ctx.DB.InsertMapEntry(ctx.ContractID, mapName, key, value)), nil
	default: // map-set
		value, err := Eval(args[2], en, ctx)
		if err != nil {
			return nil, err
		}
		ctx.DB.SetMapEntry(ctx.ContractID, mapName, key, value)
		return types.BoolValue(true), nil
	}
}

func evalAsContract(arg *ast.SymbolicExpression, en *env, ctx *Context) (*types.Value, *errors.RuntimeError) {
	self := types.NewContractPrincipal(ctx.ContractID)
	inner := *ctx
	inner.Sender = self
	inner.Caller = self
	return Eval(arg, en, &inner)
}
