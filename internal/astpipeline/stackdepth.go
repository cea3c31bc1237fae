package astpipeline

import (
	"clarity/internal/ast"
	"clarity/internal/errors"
)

// DefaultMaxExpressionDepth is the nested-list depth ceiling StackDepthChecker
// enforces (spec.md §4.3), matching the consensus-critical reference's
// call-stack guard. Configurable per Open Question resolution in DESIGN.md.
const DefaultMaxExpressionDepth = 64

// StackDepthChecker is the first AST pass: it rejects pre-expression trees
// whose nesting exceeds MaxDepth before any later pass recurses over them.
type StackDepthChecker struct {
	MaxDepth int
}

func NewStackDepthChecker() *StackDepthChecker {
	return &StackDepthChecker{MaxDepth: DefaultMaxExpressionDepth}
}

func (c *StackDepthChecker) Run(exprs []*ast.PreSymbolicExpression) error {
	for _, e := range exprs {
		if err := c.check(e, 1); err != nil {
			return err
		}
	}
	return nil
}

func (c *StackDepthChecker) check(e *ast.PreSymbolicExpression, depth int) error {
	if depth > c.MaxDepth {
		return errors.NewCheckError(errors.ExpressionStackDepthTooDeep, e.Span,
			"expression nesting depth %d exceeds max %d", depth, c.MaxDepth)
	}
	switch e.Kind {
	case ast.PreList:
		for _, child := range e.List {
			if err := c.check(child, depth+1); err != nil {
				return err
			}
		}
	case ast.PreTuple:
		for _, child := range e.Tuple {
			if err := c.check(child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
