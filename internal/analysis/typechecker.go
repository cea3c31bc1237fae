package analysis

import (
	"clarity/internal/ast"
	"clarity/internal/costs"
	"clarity/internal/errors"
	"clarity/internal/natives"
	"clarity/internal/types"
)

// scope is a chained lookup environment for let-bindings and function
// parameters, mirroring the teacher's block-scoped symbol table shape
// used for local variable resolution.
type scope struct {
	vars   map[types.ClarityName]*types.TypeSignature
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[types.ClarityName]*types.TypeSignature), parent: parent}
}

func (s *scope) lookup(name types.ClarityName) (*types.TypeSignature, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// TypeChecker is the second of the three ordered analysis passes. It
// infers and admits the TypeSignature of every expression, recording the
// result into ContractAnalysis.TypeMap keyed by the expression's stable
// id, and fills in every function's ReturnType.
type TypeChecker struct {
	analysis *ContractAnalysis
	tracker  *costs.LimitedCostTracker
}

func NewTypeChecker(analysis *ContractAnalysis, tracker *costs.LimitedCostTracker) *TypeChecker {
	return &TypeChecker{analysis: analysis, tracker: tracker}
}

// Run type-checks every top-level form in the (already dependency-sorted)
// order DefinitionSorter produced, so a callee's ReturnType is always
// known by the time a caller needs it.
func (tc *TypeChecker) Run(top []*ast.SymbolicExpression) *errors.CheckError {
	root := newScope(nil)
	for _, form := range top {
		if err := tc.checkTopLevel(form, root); err != nil {
			return err
		}
	}
	return nil
}

func (tc *TypeChecker) checkTopLevel(form *ast.SymbolicExpression, root *scope) *errors.CheckError {
	if form.Kind != ast.SymList || len(form.List) == 0 || form.List[0].Kind != ast.SymAtom {
		_, err := tc.check(form, root)
		return err
	}
	switch form.List[0].Atom {
	case "define-public", "define-private", "define-read-only":
		return tc.checkFunction(form)
	case "define-constant":
		name := types.ClarityName(form.List[1].Atom)
		t, err := tc.check(form.List[2], root)
		if err != nil {
			return err
		}
		tc.analysis.Constants[name] = t
	case "define-data-var", "define-map", "define-trait", "use-trait", "impl-trait",
		"define-fungible-token", "define-non-fungible-token":
		// Shapes already validated by CollectDefinitions/TraitsResolver;
		// nothing further to type-check at the top level.
	default:
		_, err := tc.check(form, root)
		return err
	}
	return nil
}

func (tc *TypeChecker) checkFunction(form *ast.SymbolicExpression) *errors.CheckError {
	sigNode := form.List[1]
	name := sigNode.List[0].Atom
	fn := tc.analysis.AllFunctions()[name]
	if fn == nil {
		return errors.NewCheckError(errors.UndefinedFunction, form.Span, "function %q not registered", name)
	}

	fnScope := newScope(nil)
	for i, argName := range fn.ArgNames {
		fnScope.vars[argName] = fn.ArgTypes[i]
	}
	bodyType, err := tc.check(form.List[2], fnScope)
	if err != nil {
		return err
	}
	fn.ReturnType = bodyType
	return nil
}

// check infers e's type, charging ANALYSIS_TYPE_CHECK per node the way
// the reference cost model bills type inference per AST node visited.
func (tc *TypeChecker) check(e *ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	if tc.tracker != nil {
		if err := costs.ANALYSIS_TYPE_CHECK.Apply(tc.tracker, 1); err != nil {
			return nil, err.(*errors.CheckError)
		}
	}

	var t *types.TypeSignature
	var err *errors.CheckError
	switch e.Kind {
	case ast.SymAtomValue:
		t = e.AtomValue.TypeOf()
	case ast.SymLiteralValue:
		t = e.LiteralValue.TypeOf()
	case ast.SymTraitReference:
		t = types.TraitRefType(types.TraitIdentifier{Name: types.ClarityName(e.TraitReferenceName)})
	case ast.SymField:
		t = types.NoType
	case ast.SymAtom:
		t, err = tc.checkAtom(e, sc)
	case ast.SymList:
		t, err = tc.checkList(e, sc)
	default:
		t = types.NoType
	}
	if err != nil {
		return nil, err
	}
	tc.analysis.TypeMap[e.Id] = t
	return t, nil
}

func (tc *TypeChecker) checkAtom(e *ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	if t, ok := sc.lookup(types.ClarityName(e.Atom)); ok {
		return t, nil
	}
	if t, ok := tc.analysis.Constants[types.ClarityName(e.Atom)]; ok {
		return t, nil
	}
	switch e.Atom {
	case "tx-sender", "contract-caller":
		return types.PrincipalType, nil
	case "block-height", "burn-block-height":
		return types.UIntType, nil
	case "none":
		return types.OptionalType(types.NoType), nil
	case "true", "false":
		return types.BoolType, nil
	}
	return nil, errors.NewCheckError(errors.UndefinedVariable, e.Span, "use of undefined variable %q", e.Atom)
}

func (tc *TypeChecker) checkArgs(args []*ast.SymbolicExpression, sc *scope) ([]*types.TypeSignature, *errors.CheckError) {
	out := make([]*types.TypeSignature, len(args))
	for i, a := range args {
		t, err := tc.check(a, sc)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (tc *TypeChecker) checkList(e *ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	if len(e.List) == 0 {
		return types.NoType, nil
	}
	head := e.List[0]
	args := e.List[1:]

	if head.Kind == ast.SymAtom {
		if fn, ok := tc.analysis.AllFunctions()[head.Atom]; ok {
			return tc.checkCall(e, fn, args, sc)
		}
		if _, ok := natives.Lookup(head.Atom); ok {
			return tc.checkNative(e, head.Atom, args, sc)
		}
	}
	// An unresolved head (e.g. a trait-typed function value,
	// contract-call? target not otherwise special-cased) degrades to
	// NoType rather than halting analysis entirely, after still checking
	// every argument for internal errors.
	if _, err := tc.checkArgs(args, sc); err != nil {
		return nil, err
	}
	return types.NoType, nil
}

func (tc *TypeChecker) checkCall(e *ast.SymbolicExpression, fn *FunctionSignature, args []*ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	if len(args) != len(fn.ArgNames) {
		return nil, errors.NewCheckError(errors.IncorrectArgumentCount, e.Span,
			"%s expects %d argument(s), got %d", fn.Name, len(fn.ArgNames), len(args))
	}
	for i, a := range args {
		argType, err := tc.check(a, sc)
		if err != nil {
			return nil, err
		}
		if !fn.ArgTypes[i].Admits(argType) {
			return nil, errors.NewCheckError(errors.TypeError, a.Span,
				"argument %d to %s has type %s, expected %s", i, fn.Name, argType, fn.ArgTypes[i])
		}
	}
	if fn.ReturnType != nil {
		return fn.ReturnType, nil
	}
	return types.NoType, nil
}

// checkNative dispatches the core native-function shapes, charged and
// admitted the way spec.md §4.7's admission rules describe. Natives this
// checker does not model precisely (filter/map/fold's functional
// arguments, contract-call? cross-contract resolution) degrade to NoType
// once their arguments have been checked for internal errors, rather than
// halting analysis — the evaluator (internal/eval) is where those forms
// are fully interpreted.
func (tc *TypeChecker) checkNative(e *ast.SymbolicExpression, name string, args []*ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	n, _ := natives.Lookup(name)
	if !n.Arity.Admits(len(args)) {
		return nil, errors.NewCheckError(errors.IncorrectArgumentCount, e.Span,
			"%s does not admit %d argument(s)", name, len(args))
	}

	switch name {
	case "+", "-", "*", "mod", "pow", "/":
		return tc.numericArgs(args, sc)
	case "sqrti", "log2":
		if _, err := tc.checkArgs(args, sc); err != nil {
			return nil, err
		}
		return types.UIntType, nil
	case "<", "<=", ">", ">=", "=":
		if _, err := tc.checkArgs(args, sc); err != nil {
			return nil, err
		}
		return types.BoolType, nil
	case "not", "is-none", "is-some", "is-ok", "is-err":
		if _, err := tc.checkArgs(args, sc); err != nil {
			return nil, err
		}
		return types.BoolType, nil
	case "and", "or":
		for _, a := range args {
			at, err := tc.check(a, sc)
			if err != nil {
				return nil, err
			}
			if at.Kind != types.TypeBool {
				return nil, errors.NewCheckError(errors.TypeError, a.Span, "%s operand has non-bool type %s", name, at)
			}
		}
		return types.BoolType, nil
	case "if":
		return tc.checkIf(args, sc)
	case "begin":
		var last *types.TypeSignature
		for _, a := range args {
			t, err := tc.check(a, sc)
			if err != nil {
				return nil, err
			}
			last = t
		}
		return last, nil
	case "let":
		return tc.checkLet(args, sc)
	case "asserts!":
		cond, err := tc.check(args[0], sc)
		if err != nil {
			return nil, err
		}
		if cond.Kind != types.TypeBool {
			return nil, errors.NewCheckError(errors.TypeError, args[0].Span, "asserts! condition must be bool, got %s", cond)
		}
		if _, err := tc.check(args[1], sc); err != nil {
			return nil, err
		}
		return types.BoolType, nil
	case "try!":
		return tc.checkTry(args[0], sc)
	case "unwrap!", "unwrap-panic":
		return tc.checkUnwrap(args[0], sc)
	case "unwrap-err!", "unwrap-err-panic":
		return tc.checkUnwrapErr(args[0], sc)
	case "list":
		return tc.checkListLiteral(args, sc)
	case "len":
		if _, err := tc.check(args[0], sc); err != nil {
			return nil, err
		}
		return types.UIntType, nil
	case "append", "concat":
		return tc.check(args[0], sc)
	case "element-at":
		t, err := tc.check(args[0], sc)
		if err != nil {
			return nil, err
		}
		if t.Kind != types.TypeList {
			return nil, errors.NewCheckError(errors.TypeError, args[0].Span, "element-at expects a list, got %s", t)
		}
		if _, err := tc.check(args[1], sc); err != nil {
			return nil, err
		}
		return types.OptionalType(t.ListElem), nil
	case "index-of":
		if _, err := tc.checkArgs(args, sc); err != nil {
			return nil, err
		}
		return types.OptionalType(types.UIntType), nil
	case "filter", "map", "fold":
		if _, err := tc.checkArgs(args[1:], sc); err != nil {
			return nil, err
		}
		return types.NoType, nil
	case "tuple":
		return tc.checkTupleLiteral(args, sc)
	case "get":
		return tc.checkGet(args, sc)
	case "merge":
		return tc.check(args[0], sc)
	case "some":
		t, err := tc.check(args[0], sc)
		if err != nil {
			return nil, err
		}
		return types.OptionalType(t), nil
	case "ok":
		t, err := tc.check(args[0], sc)
		if err != nil {
			return nil, err
		}
		return types.ResponseType(t, types.NoType), nil
	case "err":
		t, err := tc.check(args[0], sc)
		if err != nil {
			return nil, err
		}
		return types.ResponseType(types.NoType, t), nil
	case "var-get":
		return tc.checkVarGet(e, args)
	case "var-set":
		return tc.checkVarSet(args, sc)
	case "map-get?":
		return tc.checkMapGet(args, sc)
	case "map-set", "map-insert", "map-delete":
		return tc.checkMapWrite(name, args, sc)
	case "ft-get-balance", "ft-get-supply":
		if _, err := tc.checkArgs(args, sc); err != nil {
			return nil, err
		}
		return types.UIntType, nil
	case "ft-mint?", "ft-transfer?", "ft-burn?", "nft-mint?", "nft-transfer?":
		if _, err := tc.checkArgs(args, sc); err != nil {
			return nil, err
		}
		return types.ResponseType(types.BoolType, types.UIntType), nil
	case "nft-get-owner?":
		if _, err := tc.checkArgs(args, sc); err != nil {
			return nil, err
		}
		return types.OptionalType(types.PrincipalType), nil
	case "as-contract", "print":
		return tc.check(args[0], sc)
	case "to-int":
		if _, err := tc.checkArgs(args, sc); err != nil {
			return nil, err
		}
		return types.IntType, nil
	case "to-uint":
		if _, err := tc.checkArgs(args, sc); err != nil {
			return nil, err
		}
		return types.UIntType, nil
	case "contract-call?":
		// args[0] is the contract reference (a literal principal or a
		// trait-typed parameter) and args[1] is the callee function name
		// atom; neither is an expression to type-check. Only the actual
		// call arguments are.
		if _, err := tc.checkArgs(args[2:], sc); err != nil {
			return nil, err
		}
		return types.ResponseType(types.NoType, types.NoType), nil
	default:
		if _, err := tc.checkArgs(args, sc); err != nil {
			return nil, err
		}
		return types.NoType, nil
	}
}

func (tc *TypeChecker) numericArgs(args []*ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	var common *types.TypeSignature
	for _, a := range args {
		t, err := tc.check(a, sc)
		if err != nil {
			return nil, err
		}
		if t.Kind != types.TypeInt && t.Kind != types.TypeUInt {
			return nil, errors.NewCheckError(errors.TypeError, a.Span, "arithmetic operand has non-numeric type %s", t)
		}
		if common == nil {
			common = t
		} else if common.Kind != t.Kind {
			return nil, errors.NewCheckError(errors.TypeError, a.Span, "mismatched numeric types %s and %s", common, t)
		}
	}
	if common == nil {
		common = types.IntType
	}
	return common, nil
}

func (tc *TypeChecker) checkIf(args []*ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	cond, err := tc.check(args[0], sc)
	if err != nil {
		return nil, err
	}
	if cond.Kind != types.TypeBool {
		return nil, errors.NewCheckError(errors.TypeError, args[0].Span, "if condition must be bool, got %s", cond)
	}
	thenT, err := tc.check(args[1], sc)
	if err != nil {
		return nil, err
	}
	elseT, err := tc.check(args[2], sc)
	if err != nil {
		return nil, err
	}
	if thenT.Admits(elseT) {
		return thenT, nil
	}
	if elseT.Admits(thenT) {
		return elseT, nil
	}
	return nil, errors.NewCheckError(errors.TypeError, args[1].Span,
		"if branches have incompatible types %s and %s", thenT, elseT)
}

func (tc *TypeChecker) checkLet(args []*ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	if len(args) < 2 || args[0].Kind != ast.SymList {
		return nil, errors.NewCheckError(errors.TypeError, args[0].Span, "malformed let bindings")
	}
	letScope := newScope(sc)
	for _, binding := range args[0].List {
		if binding.Kind != ast.SymList || len(binding.List) != 2 || binding.List[0].Kind != ast.SymAtom {
			return nil, errors.NewCheckError(errors.TypeError, binding.Span, "malformed let binding")
		}
		t, err := tc.check(binding.List[1], letScope)
		if err != nil {
			return nil, err
		}
		letScope.vars[types.ClarityName(binding.List[0].Atom)] = t
	}
	var last *types.TypeSignature
	for _, body := range args[1:] {
		t, err := tc.check(body, letScope)
		if err != nil {
			return nil, err
		}
		last = t
	}
	return last, nil
}

func (tc *TypeChecker) checkTry(arg *ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	t, err := tc.check(arg, sc)
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case types.TypeResponse:
		return t.ResponseOk, nil
	case types.TypeOptional:
		return t.OptionalInner, nil
	default:
		return nil, errors.NewCheckError(errors.TypeError, arg.Span, "try! expects response/optional, got %s", t)
	}
}

func (tc *TypeChecker) checkUnwrap(arg *ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	t, err := tc.check(arg, sc)
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case types.TypeResponse:
		return t.ResponseOk, nil
	case types.TypeOptional:
		return t.OptionalInner, nil
	default:
		return nil, errors.NewCheckError(errors.TypeError, arg.Span, "unwrap! expects response/optional, got %s", t)
	}
}

func (tc *TypeChecker) checkUnwrapErr(arg *ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	t, err := tc.check(arg, sc)
	if err != nil {
		return nil, err
	}
	if t.Kind != types.TypeResponse {
		return nil, errors.NewCheckError(errors.TypeError, arg.Span, "unwrap-err! expects a response, got %s", t)
	}
	return t.ResponseErr, nil
}

func (tc *TypeChecker) checkListLiteral(args []*ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	if len(args) == 0 {
		return types.ListType(types.NoType, 0), nil
	}
	elemType, err := tc.check(args[0], sc)
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		t, err := tc.check(a, sc)
		if err != nil {
			return nil, err
		}
		if elemType.Admits(t) {
			continue
		}
		if t.Admits(elemType) {
			elemType = t
			continue
		}
		return nil, errors.NewCheckError(errors.TypeError, a.Span, "list element has type %s, expected %s", t, elemType)
	}
	return types.ListType(elemType, len(args)), nil
}

func (tc *TypeChecker) checkTupleLiteral(args []*ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	fields := make(map[types.ClarityName]*types.TypeSignature, len(args))
	for _, pair := range args {
		if pair.Kind != ast.SymList || len(pair.List) != 2 || pair.List[0].Kind != ast.SymAtom {
			return nil, errors.NewCheckError(errors.TypeError, pair.Span, "malformed tuple field")
		}
		t, err := tc.check(pair.List[1], sc)
		if err != nil {
			return nil, err
		}
		fields[types.ClarityName(pair.List[0].Atom)] = t
	}
	return types.TupleType(fields), nil
}

func (tc *TypeChecker) checkGet(args []*ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	if len(args) != 2 || args[0].Kind != ast.SymAtom {
		return nil, errors.NewCheckError(errors.TypeError, args[0].Span, "get expects a field name")
	}
	tupleType, err := tc.check(args[1], sc)
	if err != nil {
		return nil, err
	}
	target := tupleType
	if target.Kind == types.TypeOptional {
		target = target.OptionalInner
	}
	if target.Kind != types.TypeTuple {
		return nil, errors.NewCheckError(errors.TypeError, args[1].Span, "get expects a tuple, got %s", tupleType)
	}
	fieldType, ok := target.TupleFields[types.ClarityName(args[0].Atom)]
	if !ok {
		return nil, errors.NewCheckError(errors.TypeError, args[0].Span, "tuple has no field %q", args[0].Atom)
	}
	return fieldType, nil
}

func (tc *TypeChecker) checkVarGet(e *ast.SymbolicExpression, args []*ast.SymbolicExpression) (*types.TypeSignature, *errors.CheckError) {
	if len(args) != 1 || args[0].Kind != ast.SymAtom {
		return nil, errors.NewCheckError(errors.TypeError, e.Span, "var-get expects a variable name")
	}
	t, ok := tc.analysis.Variables[types.ClarityName(args[0].Atom)]
	if !ok {
		return nil, errors.NewCheckError(errors.NoSuchMap, e.Span, "no such data var %q", args[0].Atom)
	}
	return t, nil
}

func (tc *TypeChecker) checkVarSet(args []*ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	if len(args) != 2 || args[0].Kind != ast.SymAtom {
		return nil, errors.NewCheckError(errors.TypeError, args[0].Span, "var-set expects a variable name")
	}
	declared, ok := tc.analysis.Variables[types.ClarityName(args[0].Atom)]
	if !ok {
		return nil, errors.NewCheckError(errors.NoSuchMap, args[0].Span, "no such data var %q", args[0].Atom)
	}
	valType, err := tc.check(args[1], sc)
	if err != nil {
		return nil, err
	}
	if !declared.Admits(valType) {
		return nil, errors.NewCheckError(errors.TypeError, args[1].Span, "var-set value has type %s, expected %s", valType, declared)
	}
	return types.BoolType, nil
}

func (tc *TypeChecker) checkMapGet(args []*ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	if len(args) != 2 || args[0].Kind != ast.SymAtom {
		return nil, errors.NewCheckError(errors.TypeError, args[0].Span, "map-get? expects a map name")
	}
	m, ok := tc.analysis.Maps[types.ClarityName(args[0].Atom)]
	if !ok {
		return nil, errors.NewCheckError(errors.NoSuchMap, args[0].Span, "no such map %q", args[0].Atom)
	}
	keyType, err := tc.check(args[1], sc)
	if err != nil {
		return nil, err
	}
	if !m.KeyType.Admits(keyType) {
		return nil, errors.NewCheckError(errors.TypeError, args[1].Span, "map key has type %s, expected %s", keyType, m.KeyType)
	}
	return types.OptionalType(m.ValueType), nil
}

func (tc *TypeChecker) checkMapWrite(name string, args []*ast.SymbolicExpression, sc *scope) (*types.TypeSignature, *errors.CheckError) {
	if args[0].Kind != ast.SymAtom {
		return nil, errors.NewCheckError(errors.TypeError, args[0].Span, "%s expects a map name", name)
	}
	m, ok := tc.analysis.Maps[types.ClarityName(args[0].Atom)]
	if !ok {
		return nil, errors.NewCheckError(errors.NoSuchMap, args[0].Span, "no such map %q", args[0].Atom)
	}
	keyType, err := tc.check(args[1], sc)
	if err != nil {
		return nil, err
	}
	if !m.KeyType.Admits(keyType) {
		return nil, errors.NewCheckError(errors.TypeError, args[1].Span, "map key has type %s, expected %s", keyType, m.KeyType)
	}
	if name == "map-delete" {
		return types.BoolType, nil
	}
	valType, err := tc.check(args[2], sc)
	if err != nil {
		return nil, err
	}
	if !m.ValueType.Admits(valType) {
		return nil, errors.NewCheckError(errors.TypeError, args[2].Span, "map value has type %s, expected %s", valType, m.ValueType)
	}
	return types.BoolType, nil
}
