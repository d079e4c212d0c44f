// Package value implements the tagged scalar value model shared by records,
// oosvars, local variables, and DSL expressions: a value is always one of
// Absent, Empty, String, Int, Float, Bool, or Error.
package value

import "fmt"

// Kind tags which variant a Value holds.
type Kind int

const (
	Absent Kind = iota
	Empty
	String
	Int
	Float
	Bool
	ErrorKind
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Empty:
		return "empty"
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case ErrorKind:
		return "error"
	default:
		return "unknown"
	}
}

// Value is an immutable tagged scalar. The zero value is Absent.
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	b    bool
	msg  string
}

// NewAbsent returns the Absent value (key not present).
func NewAbsent() Value { return Value{kind: Absent} }

// NewEmpty returns the Empty value (key present, empty string).
func NewEmpty() Value { return Value{kind: Empty} }

// NewString wraps a non-empty string. Passing "" returns Empty, matching the
// "key present, empty string" reading of an empty literal.
func NewString(s string) Value {
	if s == "" {
		return NewEmpty()
	}
	return Value{kind: String, str: s}
}

// NewInt wraps an int64.
func NewInt(i int64) Value { return Value{kind: Int, i: i} }

// NewFloat wraps a float64.
func NewFloat(f float64) Value { return Value{kind: Float, f: f} }

// NewBool wraps a bool.
func NewBool(b bool) Value { return Value{kind: Bool, b: b} }

// NewError returns an Error value carrying a diagnostic message. Error is
// absorbing under arithmetic and comparison.
func NewError(format string, args ...interface{}) Value {
	return Value{kind: ErrorKind, msg: fmt.Sprintf(format, args...)}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsAbsent() bool  { return v.kind == Absent }
func (v Value) IsPresent() bool { return v.kind != Absent }
func (v Value) IsError() bool   { return v.kind == ErrorKind }
func (v Value) IsEmpty() bool   { return v.kind == Empty }

// ErrorMessage returns the diagnostic text for an Error value, or "" for any
// other kind.
func (v Value) ErrorMessage() string {
	if v.kind == ErrorKind {
		return v.msg
	}
	return ""
}

// AsInt returns the underlying int64 and true iff Kind() == Int.
func (v Value) AsInt() (int64, bool) {
	if v.kind == Int {
		return v.i, true
	}
	return 0, false
}

// AsFloat returns the underlying float64 and true iff Kind() == Float.
func (v Value) AsFloat() (float64, bool) {
	if v.kind == Float {
		return v.f, true
	}
	return 0, false
}

// AsBool returns the underlying bool and true iff Kind() == Bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind == Bool {
		return v.b, true
	}
	return false, false
}

// AsString returns the underlying string and true iff Kind() == String.
// Use Format to render any kind as text.
func (v Value) AsString() (string, bool) {
	if v.kind == String {
		return v.str, true
	}
	return "", false
}

// NumericFloat returns the value's float64 reading for Int/Float kinds
// (used internally by steppers and arithmetic); ok is false otherwise.
func (v Value) NumericFloat() (float64, bool) {
	switch v.kind {
	case Int:
		return float64(v.i), true
	case Float:
		return v.f, true
	}
	return 0, false
}

// IsNumeric reports whether the value is Int or Float.
func (v Value) IsNumeric() bool { return v.kind == Int || v.kind == Float }

// Equal reports structural equality, used by tests and by MLM keypath
// comparison (keys are compared by formatted form, see mlm package).
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case String:
		return v.str == o.str
	case Int:
		return v.i == o.i
	case Float:
		return v.f == o.f
	case Bool:
		return v.b == o.b
	case ErrorKind:
		return v.msg == o.msg
	default:
		return true
	}
}
