package eval

import (
	"math/big"

	"clarity/internal/ast"
	"clarity/internal/errors"
	"clarity/internal/types"
)

// InitializeContract evaluates every top-level define-* form of a
// contract in the order the AST pipeline's DefinitionSorter already
// arranged, binding variables/maps/tokens into ctx.DB and constants into
// the returned env. internal/block's initialize_smart_contract wraps
// this call in a nested store transaction and decides whether to commit
// or roll it back via the caller-supplied abort callback.
func InitializeContract(top []*ast.SymbolicExpression, ctx *Context) (*env, *errors.RuntimeError) {
	root := newEnv(nil)
	ctx.constants = make(map[types.ClarityName]*types.Value)

	for _, form := range top {
		if form.Kind != ast.SymList || len(form.List) == 0 || form.List[0].Kind != ast.SymAtom {
			continue
		}
		head := form.List[0].Atom
		switch head {
		case "define-constant":
			name := types.ClarityName(form.List[1].Atom)
			v, err := Eval(form.List[2], root, ctx)
			if err != nil {
				return nil, err
			}
			ctx.constants[name] = v
			root.bind(name, v)
		case "define-data-var":
			name := types.ClarityName(form.List[1].Atom)
			initial, err := Eval(form.List[3], root, ctx)
			if err != nil {
				return nil, err
			}
			ctx.DB.CreateVariable(ctx.ContractID, name, initial)
		case "define-map":
			name := types.ClarityName(form.List[1].Atom)
			ctx.DB.CreateMap(ctx.ContractID, name)
		case "define-fungible-token":
			name := types.ClarityName(form.List[1].Atom)
			var max *big.Int
			if len(form.List) > 2 {
				v, err := Eval(form.List[2], root, ctx)
				if err != nil {
					return nil, err
				}
				max = v.UInt
			}
			ctx.DB.CreateFungibleToken(ctx.ContractID, name, max)
		case "define-non-fungible-token":
			name := types.ClarityName(form.List[1].Atom)
			ctx.DB.CreateNonFungibleToken(ctx.ContractID, name)
		case "define-public", "define-private", "define-read-only",
			"define-trait", "use-trait", "impl-trait":
			// Functions are resolved by name on demand (findFunction);
			// traits have no runtime representation.
		default:
			if _, err := Eval(form, root, ctx); err != nil {
				return nil, err
			}
		}
	}
	return root, nil
}

// loadConstants re-populates ctx.constants and a fresh root env by
// replaying every define-constant form, the cost run_contract_call pays
// for not keeping a long-lived parallel constant table in the store (see
// findFunction's docstring for the matching tradeoff on functions).
func loadConstants(top []*ast.SymbolicExpression, ctx *Context) (*env, *errors.RuntimeError) {
	root := newEnv(nil)
	ctx.constants = make(map[types.ClarityName]*types.Value)
	for _, form := range top {
		if form.Kind != ast.SymList || len(form.List) < 3 || form.List[0].Kind != ast.SymAtom {
			continue
		}
		if form.List[0].Atom != "define-constant" {
			continue
		}
		name := types.ClarityName(form.List[1].Atom)
		v, err := Eval(form.List[2], root, ctx)
		if err != nil {
			return nil, err
		}
		ctx.constants[name] = v
		root.bind(name, v)
	}
	return root, nil
}
