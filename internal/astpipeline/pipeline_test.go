package astpipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"clarity/internal/ast"
	"clarity/internal/costs"
	"clarity/internal/types"
)

func transientID() types.QualifiedContractIdentifier {
	return types.TransientContractIdentifier()
}

func TestRunAssignsMonotonicIDs(t *testing.T) {
	out, parseErr, checkErr := Run(transientID(), "(+ 1 2) (- 3 4)", nil)
	require.Nil(t, parseErr)
	require.Nil(t, checkErr)
	var ids []uint64
	var walk func(e *ast.SymbolicExpression)
	walk = func(e *ast.SymbolicExpression) {
		ids = append(ids, e.Id)
		for _, c := range e.List {
			walk(c)
		}
	}
	for _, e := range out.Expressions {
		walk(e)
	}
	for i := 1; i < len(ids); i++ {
		require.Less(t, ids[i-1], ids[i])
	}
}

func TestStackDepthCheckerRejectsDeepNesting(t *testing.T) {
	src := strings.Repeat("(foo ", 100) + "1" + strings.Repeat(")", 100)
	_, _, checkErr := Run(transientID(), src, nil)
	require.NotNil(t, checkErr)
}

func TestDefinitionSorterReordersByDependency(t *testing.T) {
	src := `(define-private (b) (a)) (define-private (a) 1)`
	out, parseErr, checkErr := Run(transientID(), src, nil)
	require.Nil(t, parseErr)
	require.Nil(t, checkErr)
	first := out.Expressions[0].List[1]
	require.Equal(t, "a", first.List[0].Atom)
}

func TestDefinitionSorterRejectsCircularReference(t *testing.T) {
	src := `(define-private (a) (b)) (define-private (b) (a))`
	_, _, checkErr := Run(transientID(), src, nil)
	require.NotNil(t, checkErr)
}

func TestSugarExpanderRewritesContractPrincipal(t *testing.T) {
	out, parseErr, checkErr := Run(transientID(), ".foobar", nil)
	require.Nil(t, parseErr)
	require.Nil(t, checkErr)
	require.Len(t, out.Expressions, 1)
	require.Equal(t, ast.SymLiteralValue, out.Expressions[0].Kind)
	require.Equal(t, types.ValPrincipal, out.Expressions[0].LiteralValue.Kind)
}

func TestSugarExpanderRewritesFieldReference(t *testing.T) {
	out, parseErr, checkErr := Run(transientID(), ".foobar.baz", nil)
	require.Nil(t, parseErr)
	require.Nil(t, checkErr)
	require.Equal(t, ast.SymField, out.Expressions[0].Kind)
	require.Equal(t, types.ClarityName("baz"), out.Expressions[0].Field.Name)
}

func TestTraitsResolverResolvesUseTrait(t *testing.T) {
	src := `(use-trait my-trait .foobar.some-trait)`
	out, parseErr, checkErr := Run(transientID(), src, nil)
	require.Nil(t, parseErr)
	require.Nil(t, checkErr)
	id, ok := out.ReferencedTraits["my-trait"]
	require.True(t, ok)
	require.Equal(t, types.ClarityName("some-trait"), id.Name)
}

// dependencyEdgeCountingRuntime reproduces the reference test's shape:
// confirm the pipeline's cost grows with N independent definitions rather
// than staying flat. Every node is charged once, so growth is linear in N;
// the assertion is a lower bound for ten times as many definitions.
func TestDependencyEdgeCountingRuntime(t *testing.T) {
	costAt := func(n int) uint64 {
		var b strings.Builder
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "(define-private (f%d) (+ 1 1)) ", i)
		}
		tracker := costs.NewLimitedCostTracker(costs.ExecutionCost{Runtime: 1 << 40})
		_, _, checkErr := Run(transientID(), b.String(), tracker)
		require.Nil(t, checkErr)
		return tracker.GetTotal().Runtime
	}
	small := costAt(5)
	large := costAt(50)
	require.Greater(t, large, small*5) // 10x the definitions costs more than 5x
}
