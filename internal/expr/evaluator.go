package expr

import (
	"fmt"

	"github.com/meddsl/meddsl/internal/value"
)

// Eval evaluates a parsed condition against a case record and coerces the
// result to a bool via truthiness (null/false -> false, else true).
func Eval(node Node, caseRecord map[string]value.Value) (bool, error) {
	v, err := evalValue(node, caseRecord)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

// evalValue evaluates a node to its Value, short-circuiting and/or so that
// an error on a suppressed branch never surfaces (short-circuit purity).
func evalValue(node Node, rec map[string]value.Value) (value.Value, error) {
	switch n := node.(type) {
	case *BoolLit:
		return value.Bool(n.Value), nil
	case *NullLit:
		return value.Null(), nil
	case *NumLit:
		if n.Int {
			return value.Int(n.IVal), nil
		}
		return value.Real(n.RVal), nil
	case *StrLit:
		return value.Str(n.Value), nil
	case *FieldRef:
		v, err := value.ResolvePath(rec, n.Path)
		if err != nil {
			return value.Null(), fmt.Errorf("%s: %w", n.Path, err)
		}
		return v, nil
	case *Not:
		x, err := evalValue(n.X, rec)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(!x.Truthy()), nil
	case *And:
		left, err := evalValue(n.Left, rec)
		if err != nil {
			return value.Null(), err
		}
		if !left.Truthy() {
			return value.Bool(false), nil
		}
		right, err := evalValue(n.Right, rec)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(right.Truthy()), nil
	case *Or:
		left, err := evalValue(n.Left, rec)
		if err != nil {
			return value.Null(), err
		}
		if left.Truthy() {
			return value.Bool(true), nil
		}
		right, err := evalValue(n.Right, rec)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(right.Truthy()), nil
	case *Cmp:
		left, err := evalValue(n.Left, rec)
		if err != nil {
			return value.Null(), err
		}
		right, err := evalValue(n.Right, rec)
		if err != nil {
			return value.Null(), err
		}
		return evalCmp(n.Op, left, right)
	default:
		return value.Null(), fmt.Errorf("expr: unhandled node type %T", node)
	}
}

func evalCmp(op string, left, right value.Value) (value.Value, error) {
	switch op {
	case "==":
		return value.Bool(value.Equal(left, right)), nil
	case "!=":
		return value.Bool(!value.Equal(left, right)), nil
	default:
		ok, err := value.Compare(op, left, right)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(ok), nil
	}
}
