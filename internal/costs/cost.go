// Package costs implements the vector cost model and named cost functions
// of spec.md §4.5. Every pass in the AST and analysis pipelines, and every
// native invocation at runtime, charges against a shared LimitedCostTracker.
package costs

import (
	"math"

	"clarity/internal/errors"
	"clarity/internal/span"
)

// ExecutionCost is the five-dimensional vector every charge accumulates
// into: runtime, read_count, read_length, write_count, write_length.
type ExecutionCost struct {
	Runtime     uint64
	ReadCount   uint64
	ReadLength  uint64
	WriteCount  uint64
	WriteLength uint64
}

func (c ExecutionCost) toTotals() errors.CostTotals {
	return errors.CostTotals{
		Runtime:     c.Runtime,
		ReadCount:   c.ReadCount,
		ReadLength:  c.ReadLength,
		WriteCount:  c.WriteCount,
		WriteLength: c.WriteLength,
	}
}

// addSaturating adds b to a per field, returning an overflow flag if any
// field would exceed math.MaxUint64.
func addSaturating(a, b ExecutionCost) (ExecutionCost, bool) {
	overflow := false
	add := func(x, y uint64) uint64 {
		if x > math.MaxUint64-y {
			overflow = true
			return math.MaxUint64
		}
		return x + y
	}
	return ExecutionCost{
		Runtime:     add(a.Runtime, b.Runtime),
		ReadCount:   add(a.ReadCount, b.ReadCount),
		ReadLength:  add(a.ReadLength, b.ReadLength),
		WriteCount:  add(a.WriteCount, b.WriteCount),
		WriteLength: add(a.WriteLength, b.WriteLength),
	}, overflow
}

// exceeds reports whether any dimension of a exceeds the matching
// dimension of limit.
func (c ExecutionCost) exceeds(limit ExecutionCost) bool {
	return c.Runtime > limit.Runtime ||
		c.ReadCount > limit.ReadCount ||
		c.ReadLength > limit.ReadLength ||
		c.WriteCount > limit.WriteCount ||
		c.WriteLength > limit.WriteLength
}

// LimitedCostTracker accumulates ExecutionCost against a fixed budget,
// aborting the pass that overruns it. It is transferable: the block
// connection hands ownership to the analysis pass and receives it back,
// the same pointer moving between owners rather than being recreated.
type LimitedCostTracker struct {
	total ExecutionCost
	limit ExecutionCost
	// freeRun disables budget/overflow enforcement, mirroring the
	// reference tracker's "no-op" mode used for genesis/bootstrap code.
	freeRun bool
}

// NewLimitedCostTracker constructs a tracker against the given budget.
func NewLimitedCostTracker(limit ExecutionCost) *LimitedCostTracker {
	return &LimitedCostTracker{limit: limit}
}

// NewFreeCostTracker returns a tracker that never charges or aborts, used
// for bootstrap/test code that must run unmetered.
func NewFreeCostTracker() *LimitedCostTracker {
	return &LimitedCostTracker{freeRun: true}
}

func (t *LimitedCostTracker) Total() ExecutionCost { return t.total }
func (t *LimitedCostTracker) Limit() ExecutionCost { return t.limit }

func (t *LimitedCostTracker) charge(delta ExecutionCost, sp span.Span) error {
	if t.freeRun {
		return nil
	}
	next, overflow := addSaturating(t.total, delta)
	if overflow {
		return errors.NewCheckError(errors.CostOverflow, sp, "cost addition overflowed u64")
	}
	if next.exceeds(t.limit) {
		return (&errors.CostBalanceExceededError{Total: next.toTotals(), Limit: t.limit.toTotals()}).CheckError()
	}
	t.total = next
	return nil
}

func (t *LimitedCostTracker) AddRuntime(n uint64) error {
	return t.charge(ExecutionCost{Runtime: n}, span.Span{})
}

func (t *LimitedCostTracker) AddRead(count, length uint64) error {
	return t.charge(ExecutionCost{ReadCount: count, ReadLength: length}, span.Span{})
}

func (t *LimitedCostTracker) AddWrite(count, length uint64) error {
	return t.charge(ExecutionCost{WriteCount: count, WriteLength: length}, span.Span{})
}

// GetTotal returns the accumulated cost so far.
func (t *LimitedCostTracker) GetTotal() ExecutionCost { return t.total }

// Exceeds reports whether the tracker's current total exceeds limit.
func (t *LimitedCostTracker) Exceeds(limit ExecutionCost) bool {
	return t.total.exceeds(limit)
}

// Reset zeroes the accumulated total while keeping the configured limit,
// the shape a block connection needs when handing a tracker back to a
// fresh analysis pass within the same block.
func (t *LimitedCostTracker) Reset() {
	t.total = ExecutionCost{}
}
