package analysis

import (
	"clarity/internal/ast"
	"clarity/internal/errors"
	"clarity/internal/types"
)

// CollectDefinitions walks the AST pipeline's already-sorted top-level
// forms and records every define-* declaration's shape into analysis,
// without yet checking expression types — that is TypeChecker's job. This
// mirrors the teacher's two-pass shape: build the symbol table first,
// validate second.
func CollectDefinitions(analysis *ContractAnalysis, top []*ast.SymbolicExpression) error {
	for _, form := range top {
		if form.Kind != ast.SymList || len(form.List) == 0 || form.List[0].Kind != ast.SymAtom {
			continue
		}
		head := form.List[0].Atom
		switch head {
		case "define-public", "define-private", "define-read-only":
			if err := collectFunction(analysis, head, form); err != nil {
				return err
			}
		case "define-data-var":
			if err := collectVar(analysis, form); err != nil {
				return err
			}
		case "define-constant":
			if err := collectConstant(analysis, form); err != nil {
				return err
			}
		case "define-map":
			if err := collectMap(analysis, form); err != nil {
				return err
			}
		case "define-trait":
			if err := collectTrait(analysis, form); err != nil {
				return err
			}
		}
	}
	return nil
}

func collectFunction(analysis *ContractAnalysis, head string, form *ast.SymbolicExpression) error {
	if len(form.List) != 3 || form.List[1].Kind != ast.SymList || len(form.List[1].List) == 0 {
		return errors.NewCheckError(errors.TypeError, form.Span, "malformed %s", head)
	}
	sig := form.List[1]
	nameNode := sig.List[0]
	if nameNode.Kind != ast.SymAtom {
		return errors.NewCheckError(errors.TypeError, form.Span, "%s name must be an identifier", head)
	}

	fn := &FunctionSignature{
		Name:     nameNode.Atom,
		Public:   head == "define-public",
		ReadOnly: head == "define-read-only",
		Body:     form.List[2],
	}
	for _, param := range sig.List[1:] {
		if param.Kind != ast.SymList || len(param.List) != 2 || param.List[0].Kind != ast.SymAtom {
			return errors.NewCheckError(errors.TypeError, param.Span, "malformed parameter in %s", head)
		}
		fn.ArgNames = append(fn.ArgNames, types.ClarityName(param.List[0].Atom))
		argType, typeErr := parseTypeExpr(param.List[1])
		if typeErr != nil {
			return typeErr
		}
		fn.ArgTypes = append(fn.ArgTypes, argType)
	}

	if fn.Public {
		if _, exists := analysis.PublicFunctions[fn.Name]; exists {
			return errors.NewCheckError(errors.NameAlreadyUsed, form.Span, "function %q already defined", fn.Name)
		}
		analysis.PublicFunctions[fn.Name] = fn
	} else {
		if _, exists := analysis.PrivateFunctions[fn.Name]; exists {
			return errors.NewCheckError(errors.NameAlreadyUsed, form.Span, "function %q already defined", fn.Name)
		}
		analysis.PrivateFunctions[fn.Name] = fn
	}
	return nil
}

func collectVar(analysis *ContractAnalysis, form *ast.SymbolicExpression) error {
	if len(form.List) != 4 || form.List[1].Kind != ast.SymAtom {
		return errors.NewCheckError(errors.TypeError, form.Span, "malformed define-data-var")
	}
	name := types.ClarityName(form.List[1].Atom)
	if _, exists := analysis.Variables[name]; exists {
		return errors.NewCheckError(errors.NameAlreadyUsed, form.Span, "variable %q already defined", name)
	}
	varType, typeErr := parseTypeExpr(form.List[2])
	if typeErr != nil {
		return typeErr
	}
	analysis.Variables[name] = varType
	return nil
}

func collectConstant(analysis *ContractAnalysis, form *ast.SymbolicExpression) error {
	if len(form.List) != 3 || form.List[1].Kind != ast.SymAtom {
		return errors.NewCheckError(errors.TypeError, form.Span, "malformed define-constant")
	}
	name := types.ClarityName(form.List[1].Atom)
	if _, exists := analysis.Constants[name]; exists {
		return errors.NewCheckError(errors.NameAlreadyUsed, form.Span, "constant %q already defined", name)
	}
	analysis.Constants[name] = types.NoType
	return nil
}

func collectMap(analysis *ContractAnalysis, form *ast.SymbolicExpression) error {
	if len(form.List) != 4 || form.List[1].Kind != ast.SymAtom {
		return errors.NewCheckError(errors.TypeError, form.Span, "malformed define-map")
	}
	name := types.ClarityName(form.List[1].Atom)
	if _, exists := analysis.Maps[name]; exists {
		return errors.NewCheckError(errors.NameAlreadyUsed, form.Span, "map %q already defined", name)
	}
	keyType, typeErr := parseTypeExpr(form.List[2])
	if typeErr != nil {
		return typeErr
	}
	valueType, typeErr := parseTypeExpr(form.List[3])
	if typeErr != nil {
		return typeErr
	}
	analysis.Maps[name] = MapSignature{KeyType: keyType, ValueType: valueType}
	return nil
}

func collectTrait(analysis *ContractAnalysis, form *ast.SymbolicExpression) error {
	if len(form.List) != 3 || form.List[1].Kind != ast.SymAtom {
		return errors.NewCheckError(errors.TypeError, form.Span, "malformed define-trait")
	}
	name := form.List[1].Atom
	if _, exists := analysis.DefinedTraits[name]; exists {
		return errors.NewCheckError(errors.NameAlreadyUsed, form.Span, "trait %q already defined", name)
	}
	sig := TraitSignature{Functions: make(map[string]*FunctionSignature)}
	if form.List[2].Kind == ast.SymList {
		for _, entry := range form.List[2].List {
			if entry.Kind != ast.SymList || len(entry.List) != 3 || entry.List[0].Kind != ast.SymAtom {
				continue
			}
			fn := &FunctionSignature{Name: entry.List[0].Atom, Public: true}
			if entry.List[1].Kind == ast.SymList {
				for _, argExpr := range entry.List[1].List {
					argType, typeErr := parseTypeExpr(argExpr)
					if typeErr != nil {
						return typeErr
					}
					fn.ArgTypes = append(fn.ArgTypes, argType)
				}
			}
			retType, typeErr := parseTypeExpr(entry.List[2])
			if typeErr != nil {
				return typeErr
			}
			fn.ReturnType = retType
			sig.Functions[entry.List[0].Atom] = fn
		}
	}
	analysis.DefinedTraits[name] = sig
	return nil
}
