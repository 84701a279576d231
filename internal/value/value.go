// Package value implements the tagged scalar union that case records and
// expression results are built from: null, bool, integer, real, string, and
// mapping. Every comparison and coercion the expression evaluator performs
// is total over this type — there is no panic path, only bool results or a
// typed error.
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which alternative of the tagged union a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindReal
	KindString
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "integer"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is an immutable tagged union over the case-record scalar types.
type Value struct {
	kind Kind
	b    bool
	i    int64
	r    float64
	s    string
	m    map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Real wraps a floating-point number.
func Real(r float64) Value { return Value{kind: KindReal, r: r} }

// Str wraps a string.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Mapping wraps a string-keyed nested record.
func Mapping(m map[string]Value) Value { return Value{kind: KindMapping, m: m} }

// Kind reports which alternative is held.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v holds null.
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) isNumeric() bool { return v.kind == KindInt || v.kind == KindReal }

// AsBool returns the boolean payload and whether v is actually a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string payload and whether v is actually a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsMapping returns the mapping payload and whether v is actually a mapping.
func (v Value) AsMapping() (map[string]Value, bool) { return v.m, v.kind == KindMapping }

// asFloat returns the numeric payload as a float64, promoting integers.
func (v Value) asFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.r
}

// Truthy implements the DSL's truthiness coercion: null and false are
// falsy, everything else (including 0, "", and empty mappings) is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	default:
		return true
	}
}

// TypeError is returned when a comparison is attempted between operand
// kinds the DSL does not define an ordering for.
type TypeError struct {
	Op   string
	Left Kind
	Right Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error: cannot apply %q to %s and %s", e.Op, e.Left, e.Right)
}

// Equal implements == : total over all kind combinations, no error.
// Mismatched non-null kinds (other than numeric/numeric) are simply unequal.
func Equal(a, b Value) bool {
	if a.kind == KindNull || b.kind == KindNull {
		return a.kind == KindNull && b.kind == KindNull
	}
	if a.isNumeric() && b.isNumeric() {
		return a.asFloat() == b.asFloat()
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindMapping:
		return mappingEqual(a.m, b.m)
	default:
		return false
	}
}

func mappingEqual(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}

// Compare implements the four ordering operators (>, >=, <, <=).
//
// Null-safe: if either operand is null the result is false, never an error.
// Numeric operands (int/real, possibly mixed) are compared by value.
// Any other combination — including string-vs-string — is a TypeError:
// the DSL does not define lexicographic ordering on strings.
func Compare(op string, a, b Value) (bool, error) {
	if a.kind == KindNull || b.kind == KindNull {
		return false, nil
	}
	if !a.isNumeric() || !b.isNumeric() {
		return false, &TypeError{Op: op, Left: a.kind, Right: b.kind}
	}
	af, bf := a.asFloat(), b.asFloat()
	switch op {
	case ">":
		return af > bf, nil
	case ">=":
		return af >= bf, nil
	case "<":
		return af < bf, nil
	case "<=":
		return af <= bf, nil
	default:
		return false, fmt.Errorf("value: unknown ordering operator %q", op)
	}
}

// ResolvePath resolves a dotted field path ("vitals.bp_systolic") against a
// root mapping. A missing key at any segment, or indexing through a
// non-mapping, fails resolution — the DSL has no "missing means null"
// fallback for field access (spec: missing path fails evaluation).
func ResolvePath(root map[string]Value, path string) (Value, error) {
	segments := strings.Split(path, ".")
	cur := Value{kind: KindMapping, m: root}
	for i, seg := range segments {
		m, ok := cur.AsMapping()
		if !ok {
			return Null(), fmt.Errorf("field path %q: %s is not a mapping", path, strings.Join(segments[:i], "."))
		}
		next, ok := m[seg]
		if !ok {
			return Null(), fmt.Errorf("field path %q: no such field", path)
		}
		cur = next
	}
	return cur, nil
}

// String renders v for diagnostics and canonicalization, not for display.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.r, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindMapping:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(k)
			sb.WriteByte(':')
			sb.WriteString(v.m[k].String())
		}
		sb.WriteByte('}')
		return sb.String()
	default:
		return "?"
	}
}

// ToInterface converts a Value tree into plain Go values (map[string]any,
// bool, int64, float64, string, nil) for JSON/YAML interop at the system
// boundary (case loading, trace rendering).
func ToInterface(v Value) any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindReal:
		return v.r
	case KindString:
		return v.s
	case KindMapping:
		out := make(map[string]any, len(v.m))
		for k, mv := range v.m {
			out[k] = ToInterface(mv)
		}
		return out
	default:
		return nil
	}
}

// FromInterface builds a Value tree from plain Go values as decoded by
// encoding/json or gopkg.in/yaml.v3 (map[string]any / map[any]any /
// float64 / int / int64 / string / bool / nil). Any other input, including
// a []any list, becomes a string of its fmt.Sprint rendering. Integers that arrive as float64 with no fractional
// part are kept as KindReal — the DSL distinguishes int/real by the
// author's literal syntax, not by value, and case documents carry no such
// distinction once decoded; callers that need int semantics should author
// case fields accordingly.
func FromInterface(in any) Value {
	switch t := in.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Real(t)
	case string:
		return Str(t)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, v := range t {
			m[k] = FromInterface(v)
		}
		return Mapping(m)
	case map[any]any:
		m := make(map[string]Value, len(t))
		for k, v := range t {
			m[fmt.Sprint(k)] = FromInterface(v)
		}
		return Mapping(m)
	default:
		return Str(fmt.Sprint(t))
	}
}
