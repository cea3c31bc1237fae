package astpipeline

import (
	"clarity/internal/ast"
	"clarity/internal/costs"
	"clarity/internal/errors"
)

var definitionForms = map[string]bool{
	"define-constant":             true,
	"define-data-var":             true,
	"define-map":                  true,
	"define-fungible-token":       true,
	"define-non-fungible-token":   true,
	"define-public":               true,
	"define-private":              true,
	"define-read-only":            true,
	"define-trait":                true,
}

// DefinitionSorter is the third AST pass: it builds the dependency graph
// among top-level define-* forms and reorders them so every definition
// precedes its first use, rejecting cycles.
type DefinitionSorter struct {
	Tracker *costs.LimitedCostTracker
}

func NewDefinitionSorter(tracker *costs.LimitedCostTracker) *DefinitionSorter {
	if tracker == nil {
		tracker = costs.NewFreeCostTracker()
	}
	return &DefinitionSorter{Tracker: tracker}
}

// Run reorders top-level forms in place, topologically, and returns the
// reordered slice.
func (ds *DefinitionSorter) Run(top []*ast.SymbolicExpression) ([]*ast.SymbolicExpression, error) {
	names := make([]string, 0, len(top))
	byName := make(map[string]*ast.SymbolicExpression, len(top))
	indexOf := make(map[string]int, len(top))

	for i, form := range top {
		name, ok := definitionName(form)
		if !ok {
			continue
		}
		if _, exists := byName[name]; exists {
			return nil, errors.NewCheckError(errors.NameAlreadyUsed, form.Span, "definition %q already used", name)
		}
		byName[name] = form
		indexOf[name] = i
		names = append(names, name)
	}

	// edges[a] = set of names whose definition must precede a (a depends on them)
	edges := make(map[string]map[string]bool, len(names))
	for _, name := range names {
		form := byName[name]
		refs := make(map[string]bool)
		ds.collectReferences(form, refs)
		delete(refs, name)
		deps := make(map[string]bool)
		for ref := range refs {
			if _, isDef := byName[ref]; isDef {
				deps[ref] = true
			}
		}
		edges[name] = deps
	}

	order, cycle := topoSort(names, edges)
	if cycle != nil {
		cycleErr := errors.NewCheckError(errors.CircularReference, byName[cycle[0]].Span, "circular reference among definitions: %v", cycle)
		cycleErr.Names = cycle
		return nil, cycleErr
	}

	sorted := make([]*ast.SymbolicExpression, 0, len(top))
	placed := make(map[string]bool, len(names))
	for _, name := range order {
		sorted = append(sorted, byName[name])
		placed[name] = true
	}
	for _, form := range top {
		if name, ok := definitionName(form); ok && placed[name] {
			continue
		}
		sorted = append(sorted, form)
	}
	return sorted, nil
}

// collectReferences walks form's body, charging a visit cost per atom and
// recording every atom name seen (the superset from which definition
// dependencies are filtered). Each definition's body is walked once and
// each node is charged once, so the sort's cost grows linearly with the
// number of nodes; there is no per-edge charge.
func (ds *DefinitionSorter) collectReferences(e *ast.SymbolicExpression, out map[string]bool) {
	if e == nil {
		return
	}
	_ = costs.AST_PARSE.Apply(ds.Tracker, 1)
	switch e.Kind {
	case ast.SymAtom:
		out[e.Atom] = true
	case ast.SymList:
		for _, c := range e.List {
			ds.collectReferences(c, out)
		}
	}
}

func definitionName(form *ast.SymbolicExpression) (string, bool) {
	if form.Kind != ast.SymList || len(form.List) < 2 {
		return "", false
	}
	head := form.List[0]
	if head.Kind != ast.SymAtom || !definitionForms[head.Atom] {
		return "", false
	}
	target := form.List[1]
	switch head.Atom {
	case "define-public", "define-private", "define-read-only":
		// (define-public (name (arg type) ...) body...)
		if target.Kind == ast.SymList && len(target.List) > 0 && target.List[0].Kind == ast.SymAtom {
			return target.List[0].Atom, true
		}
		return "", false
	default:
		// (define-constant name value), (define-map name key-type val-type), ...
		if target.Kind == ast.SymAtom {
			return target.Atom, true
		}
		return "", false
	}
}

// topoSort performs a depth-first topological sort over edges[name] = deps
// that must precede name. Returns the cycle's member names on failure.
func topoSort(names []string, edges map[string]map[string]bool) ([]string, []string) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(names))
	var order []string
	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = gray
		stack = append(stack, name)
		for dep := range edges[name] {
			switch color[dep] {
			case white:
				if !visit(dep) {
					return false
				}
			case gray:
				// found a cycle; capture from dep's position in stack
				for i, n := range stack {
					if n == dep {
						cycle = append([]string(nil), stack[i:]...)
						break
					}
				}
				return false
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
		order = append(order, name)
		return true
	}

	for _, name := range names {
		if color[name] == white {
			if !visit(name) {
				return nil, cycle
			}
		}
	}
	return order, nil
}
