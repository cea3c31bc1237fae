package ast

import "clarity/internal/types"

// PreExprKind enumerates PreSymbolicExpression's variants (spec.md §3).
type PreExprKind int

const (
	PreAtom PreExprKind = iota
	PreAtomValue
	PreList
	PreTuple
	PreSugaredContractID
	PreSugaredFieldID
	PreFieldID
	PreTraitReference
)

// PreSymbolicExpression is the parser's output node: an untyped,
// un-sugar-expanded tree with full source spans. One struct carries every
// kind's fields, selected by Kind; it has no methods of its own.
type PreSymbolicExpression struct {
	Kind PreExprKind
	Span Span

	Atom      string
	AtomValue *types.Value

	List []*PreSymbolicExpression

	// Tuple holds the pre-expansion flat child sequence exactly as
	// parsed (key, value, key, value, ...); StackDepthChecker walks this
	// un-canonicalized shape.
	Tuple []*PreSymbolicExpression

	// SugaredContractID / SugaredFieldID / FieldID / TraitReference
	ContractName string
	Issuer       string // empty for sugared forms
	FieldName    string
	TraitName    string
}

func (e *PreSymbolicExpression) NodePos() Position    { return e.Span.Start }
func (e *PreSymbolicExpression) NodeEndPos() Position { return e.Span.End }

func (e *PreSymbolicExpression) NodeType() PreExprKind { return e.Kind }

// SymExprKind enumerates SymbolicExpression's variants, the canonical
// form produced by the AST pipeline (spec.md §3).
type SymExprKind int

const (
	SymAtom SymExprKind = iota
	SymAtomValue
	SymLiteralValue
	SymList
	SymTraitReference
	SymField
	// SymSugaredContractID and SymSugaredFieldID are transient variants
	// that exist only between ExpressionIdentifier and SugarExpander;
	// SugarExpander rewrites every one into SymLiteralValue/SymField
	// before the analysis pipeline ever sees the tree.
	SymSugaredContractID
	SymSugaredFieldID
)

// SymbolicExpression is the post-pipeline canonical node: every node
// carries a stable, monotonically increasing Id (invariant I1).
type SymbolicExpression struct {
	Id   uint64
	Kind SymExprKind
	Span Span

	Atom string

	// AtomValue holds an atom-valued literal parsed directly (bool/
	// principal forms the lexer recognizes as atom-values); LiteralValue
	// holds a value produced by sugar expansion (e.g. a rewritten
	// `.foo` contract principal). Both resolve to a types.Value.
	AtomValue    *types.Value
	LiteralValue *types.Value

	List []*SymbolicExpression

	TraitReferenceName string
	TraitReferenceID   *types.TraitIdentifier

	Field *types.TraitIdentifier

	// SugaredContractName / SugaredFieldName back SymSugaredContractID
	// and SymSugaredFieldID until SugarExpander resolves them.
	SugaredContractName string
	SugaredFieldName    string
}

func (e *SymbolicExpression) NodePos() Position    { return e.Span.Start }
func (e *SymbolicExpression) NodeEndPos() Position { return e.Span.End }
func (e *SymbolicExpression) NodeType() SymExprKind { return e.Kind }

func (e *SymbolicExpression) String() string {
	switch e.Kind {
	case SymAtom:
		return e.Atom
	case SymAtomValue:
		return e.AtomValue.String()
	case SymLiteralValue:
		return e.LiteralValue.String()
	case SymList:
		s := "("
		for i, c := range e.List {
			if i > 0 {
				s += " "
			}
			s += c.String()
		}
		return s + ")"
	case SymTraitReference:
		return "<" + e.TraitReferenceName + ">"
	case SymField:
		return e.Field.String()
	default:
		return "?"
	}
}

// IsAtomNamed reports whether this node is an Atom with the given name,
// the pattern the DefinitionSorter and native dispatch both rely on.
func (e *SymbolicExpression) IsAtomNamed(name string) bool {
	return e.Kind == SymAtom && e.Atom == name
}
