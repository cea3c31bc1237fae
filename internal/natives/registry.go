// Package natives holds the static (name, arity, mutates, special-form,
// cost-function) table every built-in Clarity function is looked up
// against; type rules and bodies live in internal/analysis and
// internal/eval. It is the
// generalized form of the teacher's stdlib module registry repurposed for
// a flat, module-less function namespace (spec.md Design Notes).
package natives

import "clarity/internal/costs"

// Arity bounds a native's argument count. Max of -1 means unbounded.
type Arity struct {
	Min int
	Max int
}

func exactly(n int) Arity  { return Arity{Min: n, Max: n} }
func atLeast(n int) Arity  { return Arity{Min: n, Max: -1} }
func between(a, b int) Arity { return Arity{Min: a, Max: b} }

func (a Arity) Admits(n int) bool {
	if n < a.Min {
		return false
	}
	return a.Max == -1 || n <= a.Max
}

// NativeFunction is one entry in the registry: everything the TypeChecker,
// ReadOnlyChecker, and evaluator need to dispatch a call by name.
type NativeFunction struct {
	Name string
	Arity Arity

	// Mutates marks natives that write state — the exact set spec.md
	// §4.4's ReadOnlyChecker enumerates: map-set, map-insert, map-delete,
	// var-set, ft-mint/transfer/burn, nft-mint/transfer. contract-call? is
	// not marked here; the ReadOnlyChecker treats every contract-call? as
	// non-read-only on its own.
	Mutates bool

	// SpecialForm marks natives whose arguments are not uniformly
	// pre-evaluated left to right before dispatch (e.g. `if`/`let`/
	// `and`/`or` short-circuit, `define-*` bind names instead of values).
	SpecialForm bool

	// Cost is the named cost function charged per call, scaled by the
	// dominant argument's size where applicable.
	Cost costs.CostFunction
}

// Registry is the full native-function table, keyed by name.
var Registry = map[string]*NativeFunction{}

func register(n *NativeFunction) {
	Registry[n.Name] = n
}

// Lookup returns the native registered under name, if any.
func Lookup(name string) (*NativeFunction, bool) {
	n, ok := Registry[name]
	return n, ok
}

// IsMutator reports whether calling name (ignoring contract-call?, which
// the ReadOnlyChecker handles separately without consulting the callee)
// always writes state.
func IsMutator(name string) bool {
	n, ok := Registry[name]
	return ok && n.Mutates
}

func init() {
	arithmetic := []string{"+", "-", "*", "/", "mod", "pow", "sqrti", "log2"}
	for _, name := range arithmetic {
		register(&NativeFunction{Name: name, Arity: atLeast(1), Cost: costs.ANALYSIS_TYPE_CHECK})
	}

	comparisons := []string{"<", "<=", ">", ">=", "="}
	for _, name := range comparisons {
		register(&NativeFunction{Name: name, Arity: atLeast(1), Cost: costs.ANALYSIS_TYPE_CHECK})
	}

	register(&NativeFunction{Name: "not", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "and", Arity: atLeast(0), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "or", Arity: atLeast(0), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_CHECK})

	register(&NativeFunction{Name: "if", Arity: exactly(3), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "begin", Arity: atLeast(1), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "let", Arity: atLeast(2), SpecialForm: true, Cost: costs.BIND_NAME})
	register(&NativeFunction{Name: "asserts!", Arity: exactly(2), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "try!", Arity: exactly(1), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "unwrap!", Arity: exactly(2), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "unwrap-err!", Arity: exactly(2), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "unwrap-panic", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "unwrap-err-panic", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "match", Arity: atLeast(4), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_CHECK})

	register(&NativeFunction{Name: "list", Arity: atLeast(0), Cost: costs.ANALYSIS_TYPE_ANNOTATE})
	register(&NativeFunction{Name: "len", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_LOOKUP})
	register(&NativeFunction{Name: "append", Arity: exactly(2), Cost: costs.ANALYSIS_TYPE_ANNOTATE})
	register(&NativeFunction{Name: "concat", Arity: exactly(2), Cost: costs.ANALYSIS_TYPE_ANNOTATE})
	register(&NativeFunction{Name: "filter", Arity: exactly(2), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_ANNOTATE})
	register(&NativeFunction{Name: "map", Arity: atLeast(2), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_ANNOTATE})
	register(&NativeFunction{Name: "fold", Arity: exactly(3), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_ANNOTATE})
	register(&NativeFunction{Name: "element-at", Arity: exactly(2), Cost: costs.ANALYSIS_TYPE_LOOKUP})
	register(&NativeFunction{Name: "index-of", Arity: exactly(2), Cost: costs.ANALYSIS_TYPE_LOOKUP})

	register(&NativeFunction{Name: "tuple", Arity: atLeast(0), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_ANNOTATE})
	register(&NativeFunction{Name: "get", Arity: exactly(2), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_LOOKUP})
	register(&NativeFunction{Name: "merge", Arity: exactly(2), Cost: costs.ANALYSIS_TYPE_ANNOTATE})

	register(&NativeFunction{Name: "some", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_ANNOTATE})
	register(&NativeFunction{Name: "none", Arity: exactly(0), Cost: costs.ANALYSIS_TYPE_ANNOTATE})
	register(&NativeFunction{Name: "is-none", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "is-some", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "ok", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_ANNOTATE})
	register(&NativeFunction{Name: "err", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_ANNOTATE})
	register(&NativeFunction{Name: "is-ok", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "is-err", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_CHECK})

	register(&NativeFunction{Name: "define-constant", Arity: exactly(2), SpecialForm: true, Cost: costs.BIND_NAME})
	register(&NativeFunction{Name: "define-data-var", Arity: exactly(3), SpecialForm: true, Mutates: false, Cost: costs.CREATE_VAR})
	register(&NativeFunction{Name: "define-map", Arity: exactly(3), SpecialForm: true, Cost: costs.CREATE_MAP})
	register(&NativeFunction{Name: "define-fungible-token", Arity: between(1, 2), SpecialForm: true, Cost: costs.CREATE_FT})
	register(&NativeFunction{Name: "define-non-fungible-token", Arity: exactly(2), SpecialForm: true, Cost: costs.CREATE_NFT})
	register(&NativeFunction{Name: "define-public", Arity: exactly(2), SpecialForm: true, Cost: costs.BIND_NAME})
	register(&NativeFunction{Name: "define-private", Arity: exactly(2), SpecialForm: true, Cost: costs.BIND_NAME})
	register(&NativeFunction{Name: "define-read-only", Arity: exactly(2), SpecialForm: true, Cost: costs.BIND_NAME})
	register(&NativeFunction{Name: "define-trait", Arity: exactly(2), SpecialForm: true, Cost: costs.BIND_NAME})
	register(&NativeFunction{Name: "use-trait", Arity: exactly(2), SpecialForm: true, Cost: costs.BIND_NAME})
	register(&NativeFunction{Name: "impl-trait", Arity: exactly(1), SpecialForm: true, Cost: costs.BIND_NAME})

	register(&NativeFunction{Name: "var-get", Arity: exactly(1), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_LOOKUP})
	register(&NativeFunction{Name: "var-set", Arity: exactly(2), SpecialForm: true, Mutates: true, Cost: costs.ANALYSIS_TYPE_LOOKUP})
	register(&NativeFunction{Name: "map-get?", Arity: exactly(2), SpecialForm: true, Cost: costs.ANALYSIS_FETCH_CONTRACT_ENTRY})
	register(&NativeFunction{Name: "map-set", Arity: exactly(3), SpecialForm: true, Mutates: true, Cost: costs.ANALYSIS_FETCH_CONTRACT_ENTRY})
	register(&NativeFunction{Name: "map-insert", Arity: exactly(3), SpecialForm: true, Mutates: true, Cost: costs.ANALYSIS_FETCH_CONTRACT_ENTRY})
	register(&NativeFunction{Name: "map-delete", Arity: exactly(2), SpecialForm: true, Mutates: true, Cost: costs.ANALYSIS_FETCH_CONTRACT_ENTRY})

	register(&NativeFunction{Name: "ft-mint?", Arity: exactly(3), Mutates: true, Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "ft-transfer?", Arity: exactly(4), Mutates: true, Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "ft-burn?", Arity: exactly(3), Mutates: true, Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "ft-get-balance", Arity: exactly(2), Cost: costs.ANALYSIS_TYPE_LOOKUP})
	register(&NativeFunction{Name: "ft-get-supply", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_LOOKUP})

	register(&NativeFunction{Name: "nft-mint?", Arity: exactly(3), Mutates: true, Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "nft-transfer?", Arity: exactly(4), Mutates: true, Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "nft-get-owner?", Arity: exactly(2), Cost: costs.ANALYSIS_TYPE_LOOKUP})

	register(&NativeFunction{Name: "contract-call?", Arity: atLeast(2), SpecialForm: true, Cost: costs.ANALYSIS_FETCH_CONTRACT_ENTRY})
	register(&NativeFunction{Name: "as-contract", Arity: exactly(1), SpecialForm: true, Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "print", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "to-int", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "to-uint", Arity: exactly(1), Cost: costs.ANALYSIS_TYPE_CHECK})

	register(&NativeFunction{Name: "tx-sender", Arity: exactly(0), Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "contract-caller", Arity: exactly(0), Cost: costs.ANALYSIS_TYPE_CHECK})
	register(&NativeFunction{Name: "block-height", Arity: exactly(0), Cost: costs.ANALYSIS_TYPE_CHECK})
}
