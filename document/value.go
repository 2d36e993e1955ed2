// Package document defines HEDL's in-memory document model: the tagged
// value union, the object/matrix-list container tree, and the
// top-level Document produced by parsing.
package document

import "fmt"

// Kind identifies which case of the Value tagged union is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindReference
	KindExpression
	KindTensor
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindReference:
		return "reference"
	case KindExpression:
		return "expression"
	case KindTensor:
		return "tensor"
	default:
		return "unknown"
	}
}

// Reference is a (possibly qualified) pointer to an entity by ID.
//
// Type is empty for an unqualified reference (@id); a qualified
// reference (@Type:id) carries it. Resolution never rewrites an
// unqualified reference into a qualified one: an empty Type after
// resolution still means "was written unqualified".
type Reference struct {
	Type string
	ID   string
}

func (r Reference) Qualified() bool { return r.Type != "" }

func (r Reference) String() string {
	if r.Qualified() {
		return "@" + r.Type + ":" + r.ID
	}
	return "@" + r.ID
}

// TensorKind distinguishes a tensor leaf scalar from a nested array.
type TensorKind uint8

const (
	TensorScalar TensorKind = iota
	TensorArray
)

// Tensor is a recursive numeric literal: either a scalar leaf or an
// ordered list of child Tensors. Rectangularity is not enforced at the
// model level. A leaf retains whether its source token
// looked like an integer (no '.', 'e', or 'E') so that canonicalization
// can reproduce `1` rather than `1.0`.
type Tensor struct {
	Kind     TensorKind
	IsInt    bool
	Int      int64
	Float    float64
	Elements []Tensor
}

func TensorIntLeaf(i int64) Tensor     { return Tensor{Kind: TensorScalar, IsInt: true, Int: i} }
func TensorFloatLeaf(f float64) Tensor { return Tensor{Kind: TensorScalar, Float: f} }

func TensorOf(elems ...Tensor) Tensor { return Tensor{Kind: TensorArray, Elements: elems} }

// Value is the tagged union of all HEDL scalar value cases. Exactly
// one of the typed fields is meaningful, selected by Kind; callers
// must switch on Kind rather than probing fields directly.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Ref   Reference
	Expr  *ExprNode
	Tens  Tensor
}

func Null() Value                 { return Value{Kind: KindNull} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func IntValue(i int64) Value      { return Value{Kind: KindInt, Int: i} }
func FloatValue(f float64) Value  { return Value{Kind: KindFloat, Float: f} }
func StringValue(s string) Value  { return Value{Kind: KindString, Str: s} }
func RefValue(r Reference) Value  { return Value{Kind: KindReference, Ref: r} }
func ExprValue(e *ExprNode) Value { return Value{Kind: KindExpression, Expr: e} }
func TensorValue(t Tensor) Value  { return Value{Kind: KindTensor, Tens: t} }

// IsNull reports whether v holds the Null case.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Equal performs a structural, case-by-case comparison of two values.
// Floats are compared with Go's own == (so NaN != NaN and 0.0 ==
// -0.0), so that parse-determinism tests behave predictably.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindInt:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	case KindString:
		return v.Str == o.Str
	case KindReference:
		return v.Ref == o.Ref
	case KindExpression:
		return v.Expr.Equal(o.Expr)
	case KindTensor:
		return v.Tens.Equal(o.Tens)
	default:
		return false
	}
}

// Equal performs a structural comparison of two Tensors.
func (t Tensor) Equal(o Tensor) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind == TensorScalar {
		if t.IsInt != o.IsInt {
			return false
		}
		if t.IsInt {
			return t.Int == o.Int
		}
		return t.Float == o.Float
	}
	if len(t.Elements) != len(o.Elements) {
		return false
	}
	for i := range t.Elements {
		if !t.Elements[i].Equal(o.Elements[i]) {
			return false
		}
	}
	return true
}

// GoString supports %#v debugging output.
func (v Value) GoString() string {
	return fmt.Sprintf("Value{Kind:%s}", v.Kind)
}
