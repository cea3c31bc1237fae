package types

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"clarity/internal/errors"
	"clarity/internal/span"
)

// ValueKind enumerates Value's tagged variants (spec.md §3).
type ValueKind int

const (
	ValInt ValueKind = iota
	ValUInt
	ValBool
	ValBuffer
	ValList
	ValTuple
	ValOptional
	ValResponse
	ValPrincipal
)

// Value is the tagged union every other component passes around. Like
// TypeSignature it is a flat struct with only the fields relevant to Kind
// populated, keeping pattern matching exhaustive over Kind instead of
// relying on interface type-switches.
type Value struct {
	Kind ValueKind

	Int  *big.Int
	UInt *big.Int
	Bool bool

	Buffer []byte

	List     []*Value
	ListType *TypeSignature

	Tuple       map[ClarityName]*Value
	TupleFields []ClarityName // canonical lexicographic order

	OptionalSome *Value // nil means None

	ResponseCommitted bool
	ResponseData      *Value

	Principal PrincipalData
}

var maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
var minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
var maxUInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

func IntValue(n *big.Int) (*Value, error) {
	if n.Cmp(minInt128) < 0 || n.Cmp(maxInt128) > 0 {
		return nil, errors.NewCheckError(errors.TypeError, span.Span{}, "int literal %s out of range", n)
	}
	return &Value{Kind: ValInt, Int: new(big.Int).Set(n)}, nil
}

func UIntValue(n *big.Int) (*Value, error) {
	if n.Sign() < 0 || n.Cmp(maxUInt128) > 0 {
		return nil, errors.NewCheckError(errors.TypeError, span.Span{}, "uint literal %s out of range", n)
	}
	return &Value{Kind: ValUInt, UInt: new(big.Int).Set(n)}, nil
}

func BoolValue(b bool) *Value { return &Value{Kind: ValBool, Bool: b} }

// BuffFrom constructs a Buffer value, enforcing MaxValueSize.
func BuffFrom(data []byte) (*Value, error) {
	v := &Value{Kind: ValBuffer, Buffer: append([]byte(nil), data...)}
	if err := checkInvariants(v.TypeOf(), span.Span{}); err != nil {
		return nil, err
	}
	return v, nil
}

// ListWithType constructs a List value against a declared element type
// and max length, admitting each element per spec.md §4.7.
func ListWithType(elems []*Value, elemType *TypeSignature, maxLen int) (*Value, error) {
	if len(elems) > maxLen {
		return nil, errors.NewCheckError(errors.ValueTooLarge, span.Span{}, "list of %d elements exceeds max length %d", len(elems), maxLen)
	}
	for i, e := range elems {
		if !elemType.Admits(e.TypeOf()) {
			return nil, errors.NewCheckError(errors.TypeError, span.Span{}, "list element %d has type %s, expected %s", i, e.TypeOf(), elemType)
		}
	}
	v := &Value{Kind: ValList, List: elems, ListType: ListType(elemType, maxLen)}
	if err := checkInvariants(v.TypeOf(), span.Span{}); err != nil {
		return nil, err
	}
	return v, nil
}

// ListFrom infers the element type and max length from the given values
// (all must share the element type), as the reference `list_from` does.
func ListFrom(elems []*Value) (*Value, error) {
	if len(elems) == 0 {
		return ListWithType(nil, NoType, 0)
	}
	elemType := elems[0].TypeOf()
	return ListWithType(elems, elemType, len(elems))
}

// TupleFromData builds a Tuple value, canonicalizing field order to
// lexicographic, per spec.md §3. Its input is a map, so duplicate field
// names cannot reach it and none are checked for.
func TupleFromData(fields map[ClarityName]*Value) (*Value, error) {
	names := make([]ClarityName, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	v := &Value{Kind: ValTuple, Tuple: fields, TupleFields: names}
	if err := checkInvariants(v.TypeOf(), span.Span{}); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Value) Get(name ClarityName) (*Value, error) {
	if v.Kind != ValTuple {
		return nil, errors.NewCheckError(errors.TypeError, span.Span{}, "get called on non-tuple value")
	}
	field, ok := v.Tuple[name]
	if !ok {
		return nil, errors.NewCheckError(errors.TypeError, span.Span{}, "tuple has no field %q", name)
	}
	return field, nil
}

func Some(inner *Value) (*Value, error) {
	v := &Value{Kind: ValOptional, OptionalSome: inner}
	if err := checkInvariants(v.TypeOf(), span.Span{}); err != nil {
		return nil, err
	}
	return v, nil
}

func None() *Value {
	return &Value{Kind: ValOptional, OptionalSome: nil}
}

func Okay(inner *Value) (*Value, error) {
	v := &Value{Kind: ValResponse, ResponseCommitted: true, ResponseData: inner}
	if err := checkInvariants(v.TypeOf(), span.Span{}); err != nil {
		return nil, err
	}
	return v, nil
}

func ErrorValue(inner *Value) (*Value, error) {
	v := &Value{Kind: ValResponse, ResponseCommitted: false, ResponseData: inner}
	if err := checkInvariants(v.TypeOf(), span.Span{}); err != nil {
		return nil, err
	}
	return v, nil
}

func OkayTrue() *Value {
	v, _ := Okay(BoolValue(true))
	return v
}

func ErrUInt(code uint64) *Value {
	u, _ := UIntValue(new(big.Int).SetUint64(code))
	v, _ := ErrorValue(u)
	return v
}

func PrincipalValue(p PrincipalData) *Value {
	return &Value{Kind: ValPrincipal, Principal: p}
}

// Size returns the serialized size of the value, delegating to TypeOf.
func (v *Value) Size() int { return v.TypeOf().Size() }

// Depth returns the nesting depth of the value's type.
func (v *Value) Depth() int { return v.TypeOf().Depth() }

// TypeOf derives the TypeSignature of a constructed Value, matching
// `Value::size()/depth()`'s delegation to `TypeSignature::type_of`.
func (v *Value) TypeOf() *TypeSignature {
	switch v.Kind {
	case ValInt:
		return IntType
	case ValUInt:
		return UIntType
	case ValBool:
		return BoolType
	case ValBuffer:
		return BufferType(len(v.Buffer))
	case ValList:
		maxLen := v.ListType.ListMaxLen
		elem := v.ListType.ListElem
		if elem == nil {
			elem = NoType
		}
		return ListType(elem, maxLen)
	case ValTuple:
		fields := make(map[ClarityName]*TypeSignature, len(v.Tuple))
		for name, val := range v.Tuple {
			fields[name] = val.TypeOf()
		}
		return TupleType(fields)
	case ValOptional:
		if v.OptionalSome == nil {
			return OptionalType(NoType)
		}
		return OptionalType(v.OptionalSome.TypeOf())
	case ValResponse:
		if v.ResponseCommitted {
			return ResponseType(v.ResponseData.TypeOf(), NoType)
		}
		return ResponseType(NoType, v.ResponseData.TypeOf())
	case ValPrincipal:
		return PrincipalType
	default:
		return NoType
	}
}

func (v *Value) String() string {
	switch v.Kind {
	case ValInt:
		return v.Int.String()
	case ValUInt:
		return "u" + v.UInt.String()
	case ValBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValBuffer:
		return fmt.Sprintf("0x%x", v.Buffer)
	case ValList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	case ValTuple:
		parts := make([]string, len(v.TupleFields))
		for i, name := range v.TupleFields {
			parts[i] = fmt.Sprintf("(%s %s)", name, v.Tuple[name])
		}
		return "(tuple " + strings.Join(parts, " ") + ")"
	case ValOptional:
		if v.OptionalSome == nil {
			return "none"
		}
		return fmt.Sprintf("(some %s)", v.OptionalSome)
	case ValResponse:
		if v.ResponseCommitted {
			return fmt.Sprintf("(ok %s)", v.ResponseData)
		}
		return fmt.Sprintf("(err %s)", v.ResponseData)
	case ValPrincipal:
		return "'" + v.Principal.String()
	default:
		return "?"
	}
}
