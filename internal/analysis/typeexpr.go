package analysis

import (
	"clarity/internal/ast"
	"clarity/internal/errors"
	"clarity/internal/types"
)

// parseTypeExpr reads a type annotation expression (e.g. `uint`,
// `(buff 32)`, `(optional uint)`, `(tuple (a uint) (b bool))`) into a
// types.TypeSignature. Every compound form's arity is checked.
func parseTypeExpr(e *ast.SymbolicExpression) (*types.TypeSignature, *errors.CheckError) {
	switch e.Kind {
	case ast.SymAtom:
		switch e.Atom {
		case "int":
			return types.IntType, nil
		case "uint":
			return types.UIntType, nil
		case "bool":
			return types.BoolType, nil
		case "principal":
			return types.PrincipalType, nil
		default:
			return nil, errors.NewCheckError(errors.TypeError, e.Span, "unknown type name %q", e.Atom)
		}
	case ast.SymTraitReference:
		return types.TraitRefType(types.TraitIdentifier{Name: types.ClarityName(e.TraitReferenceName)}), nil
	case ast.SymList:
		if len(e.List) == 0 || e.List[0].Kind != ast.SymAtom {
			return nil, errors.NewCheckError(errors.TypeError, e.Span, "malformed type expression")
		}
		head := e.List[0].Atom
		args := e.List[1:]
		switch head {
		case "buff":
			n, err := literalLen(args, e)
			if err != nil {
				return nil, err
			}
			return types.BufferType(n), nil
		case "list":
			if len(args) != 2 {
				return nil, errors.NewCheckError(errors.TypeError, e.Span, "list type expects (list <max-len> <type>)")
			}
			n, err := literalLen(args[:1], e)
			if err != nil {
				return nil, err
			}
			elem, err := parseTypeExpr(args[1])
			if err != nil {
				return nil, err
			}
			return types.ListType(elem, n), nil
		case "optional":
			if len(args) != 1 {
				return nil, errors.NewCheckError(errors.TypeError, e.Span, "optional type expects one inner type")
			}
			inner, err := parseTypeExpr(args[0])
			if err != nil {
				return nil, err
			}
			return types.OptionalType(inner), nil
		case "response":
			if len(args) != 2 {
				return nil, errors.NewCheckError(errors.TypeError, e.Span, "response type expects ok and err types")
			}
			ok, err := parseTypeExpr(args[0])
			if err != nil {
				return nil, err
			}
			errT, err := parseTypeExpr(args[1])
			if err != nil {
				return nil, err
			}
			return types.ResponseType(ok, errT), nil
		case "tuple":
			fields := make(map[types.ClarityName]*types.TypeSignature, len(args))
			for _, pair := range args {
				if pair.Kind != ast.SymList || len(pair.List) != 2 || pair.List[0].Kind != ast.SymAtom {
					return nil, errors.NewCheckError(errors.TypeError, pair.Span, "malformed tuple type field")
				}
				ft, err := parseTypeExpr(pair.List[1])
				if err != nil {
					return nil, err
				}
				fields[types.ClarityName(pair.List[0].Atom)] = ft
			}
			return types.TupleType(fields), nil
		default:
			return nil, errors.NewCheckError(errors.TypeError, e.Span, "unknown type constructor %q", head)
		}
	default:
		return nil, errors.NewCheckError(errors.TypeError, e.Span, "expression is not a type")
	}
}

func literalLen(args []*ast.SymbolicExpression, e *ast.SymbolicExpression) (int, *errors.CheckError) {
	if len(args) != 1 || args[0].Kind != ast.SymAtomValue || args[0].AtomValue == nil {
		return 0, errors.NewCheckError(errors.TypeError, e.Span, "expected a literal length")
	}
	v := args[0].AtomValue
	if v.Kind != types.ValUInt && v.Kind != types.ValInt {
		return 0, errors.NewCheckError(errors.TypeError, e.Span, "length must be an integer literal")
	}
	n := v.UInt
	if n == nil {
		n = v.Int
	}
	return int(n.Int64()), nil
}
