package errors

import "fmt"

// ArithmeticKind distinguishes the two arithmetic runtime failures.
type ArithmeticKind int

const (
	DivisionByZero ArithmeticKind = iota
	Overflow
)

func (k ArithmeticKind) String() string {
	if k == DivisionByZero {
		return "DivisionByZero"
	}
	return "Overflow"
}

// RuntimeErrorKind enumerates the dynamic-execution failure classes of
// spec.md §7 (distinct from the static ParseError/CheckError taxonomies).
type RuntimeErrorKind int

const (
	RuntimeGeneric RuntimeErrorKind = iota
	RuntimeUnchecked
	RuntimeShortReturn
	RuntimeArithmetic
	RuntimeMaxStackDepthReached
)

// RuntimeError is the dynamic counterpart to ParseError/CheckError. A
// stack trace is attached at most once, at the first `apply` boundary
// that observes the error (spec.md §7's propagation policy).
type RuntimeError struct {
	Kind       RuntimeErrorKind
	Message    string
	Arithmetic ArithmeticKind
	// Unchecked carries the CheckError that a post-analysis invariant
	// violated; this is always a VM bug, never a contract author error.
	Unchecked *CheckError
	// ShortReturnValue carries the value passed to unwrap!/try!-style
	// forms; its concrete representation lives in the types package, so
	// this field is typed `any` to avoid an import cycle.
	ShortReturnValue any
	StackTrace       []string
}

func (e *RuntimeError) Error() string {
	switch e.Kind {
	case RuntimeUnchecked:
		return fmt.Sprintf("unchecked VM invariant violated: %v", e.Unchecked)
	case RuntimeShortReturn:
		return "short return"
	case RuntimeArithmetic:
		return fmt.Sprintf("arithmetic error: %s", e.Arithmetic)
	case RuntimeMaxStackDepthReached:
		return "max call stack depth reached"
	default:
		return e.Message
	}
}

// AddStackTrace attaches a frame the first time a stack trace is missing,
// mirroring `add_stack_trace` in the reference implementation.
func (e *RuntimeError) AddStackTrace(frame string) {
	if e.StackTrace == nil {
		e.StackTrace = []string{frame}
	}
}

func NewArithmeticError(kind ArithmeticKind) *RuntimeError {
	return &RuntimeError{Kind: RuntimeArithmetic, Arithmetic: kind}
}

func NewShortReturn(value any) *RuntimeError {
	return &RuntimeError{Kind: RuntimeShortReturn, ShortReturnValue: value}
}

func NewUnchecked(inner *CheckError) *RuntimeError {
	return &RuntimeError{Kind: RuntimeUnchecked, Unchecked: inner}
}

func NewMaxStackDepthReached() *RuntimeError {
	return &RuntimeError{Kind: RuntimeMaxStackDepthReached}
}

// TopLevelErrorClass is the exit-level classification of spec.md §6's
// failure surface: Analysis, Parse, Interpreter, BadTransaction, CostError.
type TopLevelErrorClass int

const (
	ClassAnalysis TopLevelErrorClass = iota
	ClassParse
	ClassInterpreter
	ClassBadTransaction
	ClassCostError
)

// TopLevelError is what the Block Connection returns to its caller; it
// promotes Unchecked(CostBalanceExceeded/CostOverflow) into ClassCostError
// per spec.md §7's propagation policy.
type TopLevelError struct {
	Class    TopLevelErrorClass
	Parse    *ParseError
	Check    *CheckError
	Runtime  *RuntimeError
	BadTxMsg string
	Cost     *CostBalanceExceededError
}

func (e *TopLevelError) Error() string {
	switch e.Class {
	case ClassAnalysis:
		return fmt.Sprintf("analysis error: %v", e.Check)
	case ClassParse:
		return fmt.Sprintf("parse error: %v", e.Parse)
	case ClassInterpreter:
		return fmt.Sprintf("interpreter error: %v", e.Runtime)
	case ClassBadTransaction:
		return fmt.Sprintf("bad transaction: %s", e.BadTxMsg)
	case ClassCostError:
		return e.Cost.Error()
	default:
		return "unknown error"
	}
}

// PromoteRuntime implements the Unchecked(cost) -> CostError promotion.
func PromoteRuntime(err *RuntimeError) *TopLevelError {
	if err.Kind == RuntimeUnchecked && err.Unchecked != nil {
		switch err.Unchecked.Kind {
		case CostBalanceExceeded, CostOverflow:
			return &TopLevelError{Class: ClassCostError, Cost: &CostBalanceExceededError{}}
		}
	}
	return &TopLevelError{Class: ClassInterpreter, Runtime: err}
}
