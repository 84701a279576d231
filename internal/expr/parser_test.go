package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meddsl/meddsl/internal/expr"
)

func TestParse_EmptyExpression(t *testing.T) {
	_, err := expr.Parse("")
	require.Error(t, err)
	var e *expr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, expr.ErrEmptyExpression, e.Kind)

	_, err = expr.Parse("   ")
	require.Error(t, err)
	require.ErrorAs(t, err, &e)
	assert.Equal(t, expr.ErrEmptyExpression, e.Kind)
}

func TestParse_UnclosedParen(t *testing.T) {
	_, err := expr.Parse("(age > 10")
	require.Error(t, err)
	var e *expr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, expr.ErrUnclosedParen, e.Kind)
	assert.Equal(t, 0, e.Offset)
}

func TestParse_TrailingInput(t *testing.T) {
	_, err := expr.Parse("age > 10 foo")
	require.Error(t, err)
	var e *expr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, expr.ErrTrailingInput, e.Kind)
}

func TestParse_UnexpectedToken(t *testing.T) {
	_, err := expr.Parse("and age")
	require.Error(t, err)
	var e *expr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, expr.ErrUnexpectedToken, e.Kind)
}

func TestParse_InvalidNumber(t *testing.T) {
	_, err := expr.Parse("age > 3abc")
	require.Error(t, err)
	var e *expr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, expr.ErrInvalidNumber, e.Kind)
}

func TestParse_BadCharacter(t *testing.T) {
	_, err := expr.Parse("age > 10 & flag")
	require.Error(t, err)
	var e *expr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, expr.ErrBadCharacter, e.Kind)
}

func TestParse_Precedence(t *testing.T) {
	// "and" binds tighter than "or": a or b and c == a or (b and c)
	node, err := expr.Parse("a == 1 or b == 2 and c == 3")
	require.NoError(t, err)
	or, ok := node.(*expr.Or)
	require.True(t, ok, "expected top-level Or, got %T", node)
	_, ok = or.Right.(*expr.And)
	assert.True(t, ok, "expected right of Or to be And, got %T", or.Right)
}

func TestParse_NotBindsTighterThanAnd(t *testing.T) {
	node, err := expr.Parse("not a == 1 and b == 2")
	require.NoError(t, err)
	and, ok := node.(*expr.And)
	require.True(t, ok, "expected top-level And, got %T", node)
	cmp, ok := and.Left.(*expr.Cmp)
	require.True(t, ok, "expected left of And to be Cmp, got %T", and.Left)
	_, ok = cmp.Left.(*expr.Not)
	assert.True(t, ok, "expected left of Cmp to be Not, got %T", cmp.Left)
}

func TestParse_Parenthesization(t *testing.T) {
	node, err := expr.Parse("(a or b) and c")
	require.NoError(t, err)
	and, ok := node.(*expr.And)
	require.True(t, ok)
	_, ok = and.Left.(*expr.Or)
	assert.True(t, ok, "expected parenthesized Or on the left of And")
}

func TestParse_FieldPathLiteralsAndStrings(t *testing.T) {
	node, err := expr.Parse(`vitals.bp_systolic >= 140 and status.label == 'critical'`)
	require.NoError(t, err)
	and, ok := node.(*expr.And)
	require.True(t, ok)

	left, ok := and.Left.(*expr.Cmp)
	require.True(t, ok)
	field, ok := left.Left.(*expr.FieldRef)
	require.True(t, ok)
	assert.Equal(t, "vitals.bp_systolic", field.Path)

	right, ok := and.Right.(*expr.Cmp)
	require.True(t, ok)
	str, ok := right.Right.(*expr.StrLit)
	require.True(t, ok)
	assert.Equal(t, "critical", str.Value)
}

func TestParse_NegativeAndRealNumbers(t *testing.T) {
	node, err := expr.Parse("edema_prob > -0.5")
	require.NoError(t, err)
	cmp, ok := node.(*expr.Cmp)
	require.True(t, ok)
	num, ok := cmp.Right.(*expr.NumLit)
	require.True(t, ok)
	assert.False(t, num.Int)
	assert.InDelta(t, -0.5, num.RVal, 1e-9)
}
