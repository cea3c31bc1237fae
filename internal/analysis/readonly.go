package analysis

import (
	"clarity/internal/ast"
	"clarity/internal/errors"
	"clarity/internal/natives"
)

// ReadOnlyChecker is the first of the three ordered analysis passes
// (spec.md §4.4): it verifies that every function declared
// define-read-only never calls a mutating native, directly or through a
// chain of private/public function calls.
type ReadOnlyChecker struct {
	analysis *ContractAnalysis

	// memo caches whether a function (by name) has already been proven
	// read-only or not, so diamond-shaped call graphs are only walked
	// once per function.
	memo map[string]bool
	// inProgress guards against infinite recursion on a call cycle;
	// DefinitionSorter rejects cycles among definitions overall, but a
	// cycle could still exist purely among private function calls that
	// don't participate in the top-level dependency edges DefinitionSorter
	// tracks (e.g. mutual recursion through an intermediate non-definition
	// form), so this pass defends independently.
	inProgress map[string]bool
}

func NewReadOnlyChecker(analysis *ContractAnalysis) *ReadOnlyChecker {
	return &ReadOnlyChecker{
		analysis:   analysis,
		memo:       make(map[string]bool),
		inProgress: make(map[string]bool),
	}
}

// Run checks every declared define-read-only function and records the
// effective read-only status of every other function along the way in
// fn.ReadOnly.
func (rc *ReadOnlyChecker) Run() *errors.CheckError {
	all := rc.analysis.AllFunctions()
	for _, fn := range all {
		readOnly, err := rc.isReadOnly(fn, all)
		if err != nil {
			return err
		}
		if fn.ReadOnly && !readOnly {
			return errors.NewCheckError(errors.WriteAttemptedInReadOnly, fn.Body.Span,
				"function %q is declared read-only but performs a mutating operation", fn.Name)
		}
		// A function not declared read-only may still happen to be one;
		// record the computed fact in the analysis rather than only the
		// declaration.
		fn.ReadOnly = fn.ReadOnly || readOnly
	}
	return nil
}

func (rc *ReadOnlyChecker) isReadOnly(fn *FunctionSignature, all map[string]*FunctionSignature) (bool, *errors.CheckError) {
	if v, ok := rc.memo[fn.Name]; ok {
		return v, nil
	}
	if rc.inProgress[fn.Name] {
		// A call cycle is conservatively read-only until proven
		// otherwise by a sibling in the cycle; the cycle's true status
		// is the AND of every member, reconciled once recursion unwinds.
		return true, nil
	}
	rc.inProgress[fn.Name] = true
	defer delete(rc.inProgress, fn.Name)

	readOnly, err := rc.walk(fn.Body, all)
	if err != nil {
		return false, err
	}
	rc.memo[fn.Name] = readOnly
	return readOnly, nil
}

func (rc *ReadOnlyChecker) walk(e *ast.SymbolicExpression, all map[string]*FunctionSignature) (bool, *errors.CheckError) {
	if e == nil || e.Kind != ast.SymList || len(e.List) == 0 {
		if e != nil {
			for _, c := range e.List {
				ro, err := rc.walk(c, all)
				if err != nil || !ro {
					return ro, err
				}
			}
		}
		return true, nil
	}

	head := e.List[0]
	if head.Kind == ast.SymAtom {
		if natives.IsMutator(head.Atom) {
			return false, nil
		}
		if head.Atom == "contract-call?" {
			// The callee lives in another contract this pass has no
			// visibility into, so every contract-call? disqualifies the
			// caller from read-only, whatever the callee's own read-only
			// status; no later stage checks the callee's flag either.
			return false, nil
		}
		if n, ok := natives.Lookup(head.Atom); ok && n.SpecialForm {
			// Special forms (define-*, let, begin, if, ...) recurse into
			// every argument uniformly; none of them are themselves
			// mutating beyond what IsMutator already flags.
		} else if callee, ok := all[head.Atom]; ok {
			ro, err := rc.isReadOnly(callee, all)
			if err != nil || !ro {
				return ro, err
			}
		}
	}

	// Walk every child uniformly, including head: head's own mutator/
	// user-function status was already handled above, and re-walking an
	// atom head is a harmless no-op. This matters for forms where
	// List[0] is not a call head at all but a nested structure (e.g. a
	// let's binding-pair list, or a tuple's first field pair) that can
	// itself contain a mutating call.
	for _, arg := range e.List {
		ro, err := rc.walk(arg, all)
		if err != nil || !ro {
			return ro, err
		}
	}
	return true, nil
}
