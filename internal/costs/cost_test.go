package costs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"clarity/internal/errors"
)

func TestAddRuntimeAccumulates(t *testing.T) {
	tr := NewLimitedCostTracker(ExecutionCost{Runtime: 100})
	require.NoError(t, tr.AddRuntime(10))
	require.NoError(t, tr.AddRuntime(20))
	require.Equal(t, uint64(30), tr.GetTotal().Runtime)
}

func TestAddRuntimeExceedsBudget(t *testing.T) {
	tr := NewLimitedCostTracker(ExecutionCost{Runtime: 25})
	require.NoError(t, tr.AddRuntime(20))
	err := tr.AddRuntime(10)
	require.Error(t, err)
	ce, ok := err.(*errors.CheckError)
	require.True(t, ok)
	require.Equal(t, errors.CostBalanceExceeded, ce.Kind)
	// the failed charge must not be applied
	require.Equal(t, uint64(20), tr.GetTotal().Runtime)
}

func TestAddRuntimeSaturatingOverflow(t *testing.T) {
	tr := NewLimitedCostTracker(ExecutionCost{Runtime: math.MaxUint64})
	require.NoError(t, tr.AddRuntime(math.MaxUint64-1))
	err := tr.AddRuntime(2)
	require.Error(t, err)
	ce, ok := err.(*errors.CheckError)
	require.True(t, ok)
	require.Equal(t, errors.CostOverflow, ce.Kind)
}

func TestFreeCostTrackerNeverAborts(t *testing.T) {
	tr := NewFreeCostTracker()
	require.NoError(t, tr.AddRuntime(math.MaxUint64))
	require.NoError(t, tr.AddRuntime(math.MaxUint64))
	require.Equal(t, uint64(0), tr.GetTotal().Runtime)
}

func TestReadWriteDimensionsIndependent(t *testing.T) {
	tr := NewLimitedCostTracker(ExecutionCost{ReadCount: 5, ReadLength: 1000, WriteCount: 5, WriteLength: 1000})
	require.NoError(t, tr.AddRead(3, 100))
	require.Error(t, tr.AddRead(3, 100)) // 6 > 5 read_count
}

func TestNamedCostFunctionsAreMonotone(t *testing.T) {
	fns := []CostFunction{
		AST_PARSE, ANALYSIS_TYPE_ANNOTATE, ANALYSIS_TYPE_CHECK,
		ANALYSIS_TYPE_LOOKUP, LOOKUP_VARIABLE_DEPTH, LOOKUP_VARIABLE_SIZE,
		CREATE_VAR, CREATE_MAP, CREATE_NFT,
	}
	for _, fn := range fns {
		require.LessOrEqual(t, fn(10), fn(20))
	}
}

func TestNamedCostFunctionAppliesToTracker(t *testing.T) {
	tr := NewLimitedCostTracker(ExecutionCost{Runtime: 1000})
	require.NoError(t, AST_PARSE.Apply(tr, 50))
	require.Equal(t, AST_PARSE(50), tr.GetTotal().Runtime)
}
