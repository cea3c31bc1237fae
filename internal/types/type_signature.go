package types

import (
	"fmt"
	"sort"
	"strings"

	"clarity/internal/errors"
	"clarity/internal/span"
)

// MaxValueSize and MaxTypeDepth are the two global invariants spec.md §3
// requires every Value/TypeSignature constructor to enforce.
const (
	MaxValueSize     = 1024 * 1024
	MaxTypeDepth     = 32
	WrapperValueSize = 1
)

// TypeKind enumerates TypeSignature's algebraic variants.
type TypeKind int

const (
	TypeInt TypeKind = iota
	TypeUInt
	TypeBool
	TypeBuffer
	TypeList
	TypeTuple
	TypeOptional
	TypeResponse
	TypePrincipal
	TypeNoType // bottom
	TypeTraitReference
)

// TypeSignature is the algebraic type described in spec.md §3. Only the
// fields relevant to Kind are populated; this mirrors the reference
// implementation's enum-with-payload shape using a flat Go struct instead
// of an interface, matching Design Notes §9's "discriminated union"
// guidance without resorting to virtual dispatch.
type TypeSignature struct {
	Kind TypeKind

	BufferMaxLen int

	ListElem    *TypeSignature
	ListMaxLen  int

	TupleFields map[ClarityName]*TypeSignature

	OptionalInner *TypeSignature

	ResponseOk  *TypeSignature
	ResponseErr *TypeSignature

	TraitRef *TraitIdentifier
}

var (
	IntType       = &TypeSignature{Kind: TypeInt}
	UIntType      = &TypeSignature{Kind: TypeUInt}
	BoolType      = &TypeSignature{Kind: TypeBool}
	PrincipalType = &TypeSignature{Kind: TypePrincipal}
	NoType        = &TypeSignature{Kind: TypeNoType}
)

func BufferType(maxLen int) *TypeSignature {
	return &TypeSignature{Kind: TypeBuffer, BufferMaxLen: maxLen}
}

func ListType(elem *TypeSignature, maxLen int) *TypeSignature {
	return &TypeSignature{Kind: TypeList, ListElem: elem, ListMaxLen: maxLen}
}

func TupleType(fields map[ClarityName]*TypeSignature) *TypeSignature {
	return &TypeSignature{Kind: TypeTuple, TupleFields: fields}
}

func OptionalType(inner *TypeSignature) *TypeSignature {
	return &TypeSignature{Kind: TypeOptional, OptionalInner: inner}
}

func ResponseType(ok, err *TypeSignature) *TypeSignature {
	return &TypeSignature{Kind: TypeResponse, ResponseOk: ok, ResponseErr: err}
}

func TraitRefType(id TraitIdentifier) *TypeSignature {
	return &TypeSignature{Kind: TypeTraitReference, TraitRef: &id}
}

// Depth returns the recursive nesting depth used by MaxTypeDepth.
func (t *TypeSignature) Depth() int {
	switch t.Kind {
	case TypeBuffer:
		return 1
	case TypeList:
		return 1 + t.ListElem.Depth()
	case TypeTuple:
		max := 0
		for _, f := range t.TupleFields {
			if d := f.Depth(); d > max {
				max = d
			}
		}
		return 1 + max
	case TypeOptional:
		return 1 + t.OptionalInner.Depth()
	case TypeResponse:
		d := t.ResponseOk.Depth()
		if e := t.ResponseErr.Depth(); e > d {
			d = e
		}
		return 1 + d
	default:
		return 1
	}
}

// Size returns the serialized size upper bound used by MaxValueSize.
func (t *TypeSignature) Size() int {
	switch t.Kind {
	case TypeInt, TypeUInt:
		return 16
	case TypeBool:
		return 1
	case TypeBuffer:
		return t.BufferMaxLen + 4
	case TypeList:
		return t.ListElem.Size()*t.ListMaxLen + 4
	case TypeTuple:
		total := 4
		for name, f := range t.TupleFields {
			total += len(name) + f.Size()
		}
		return total
	case TypeOptional:
		return WrapperValueSize + t.OptionalInner.Size()
	case TypeResponse:
		okSize := t.ResponseOk.Size()
		errSize := t.ResponseErr.Size()
		if errSize > okSize {
			okSize = errSize
		}
		return WrapperValueSize + okSize
	case TypePrincipal:
		return 21
	default:
		return 0
	}
}

// Admits implements the canonical runtime subtyping check of spec.md
// §4.7: structural, covariant in list/optional/response/tuple
// components, NoType as bottom.
func (t *TypeSignature) Admits(v *TypeSignature) bool {
	if v.Kind == TypeNoType {
		return true
	}
	if t.Kind == TypeNoType {
		return false
	}
	if t.Kind != v.Kind {
		return false
	}
	switch t.Kind {
	case TypeBuffer:
		return v.BufferMaxLen <= t.BufferMaxLen
	case TypeList:
		return v.ListMaxLen <= t.ListMaxLen && t.ListElem.Admits(v.ListElem)
	case TypeTuple:
		if len(t.TupleFields) != len(v.TupleFields) {
			return false
		}
		for name, want := range t.TupleFields {
			got, ok := v.TupleFields[name]
			if !ok || !want.Admits(got) {
				return false
			}
		}
		return true
	case TypeOptional:
		return t.OptionalInner.Admits(v.OptionalInner)
	case TypeResponse:
		return t.ResponseOk.Admits(v.ResponseOk) && t.ResponseErr.Admits(v.ResponseErr)
	default:
		return true
	}
}

func (t *TypeSignature) String() string {
	switch t.Kind {
	case TypeInt:
		return "int"
	case TypeUInt:
		return "uint"
	case TypeBool:
		return "bool"
	case TypeBuffer:
		return fmt.Sprintf("(buff %d)", t.BufferMaxLen)
	case TypeList:
		return fmt.Sprintf("(list %d %s)", t.ListMaxLen, t.ListElem)
	case TypeTuple:
		names := make([]string, 0, len(t.TupleFields))
		for name := range t.TupleFields {
			names = append(names, string(name))
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = fmt.Sprintf("(%s %s)", n, t.TupleFields[ClarityName(n)])
		}
		return fmt.Sprintf("(tuple %s)", strings.Join(parts, " "))
	case TypeOptional:
		return fmt.Sprintf("(optional %s)", t.OptionalInner)
	case TypeResponse:
		return fmt.Sprintf("(response %s %s)", t.ResponseOk, t.ResponseErr)
	case TypePrincipal:
		return "principal"
	case TypeNoType:
		return "none"
	case TypeTraitReference:
		return fmt.Sprintf("<%s>", t.TraitRef.Name)
	default:
		return "?"
	}
}

// checkInvariants validates MaxValueSize/MaxTypeDepth, returning
// ValueTooLarge/TypeSignatureTooDeep per spec.md §4.7.
func checkInvariants(t *TypeSignature, sp span.Span) error {
	if t.Depth() > MaxTypeDepth {
		return errors.NewCheckError(errors.TypeSignatureTooDeep, sp, "type depth %d exceeds max %d", t.Depth(), MaxTypeDepth)
	}
	if t.Size() > MaxValueSize {
		return errors.NewCheckError(errors.ValueTooLarge, sp, "type size %d exceeds max %d", t.Size(), MaxValueSize)
	}
	return nil
}
