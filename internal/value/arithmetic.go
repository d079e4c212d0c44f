package value

import "math"

// arithBinary implements the shared dispatch for +, -, *, /, //, %: Absent
// propagates, Error is absorbing, Int×Int stays Int when exact (per op),
// otherwise promotes to Float.
func arithBinary(a, b Value, iop func(int64, int64) (int64, bool), fop func(float64, float64) float64, name string) Value {
	if a.IsError() {
		return a
	}
	if b.IsError() {
		return b
	}
	if a.IsAbsent() || b.IsAbsent() {
		return NewAbsent()
	}
	ai, aIsInt := a.AsInt()
	bi, bIsInt := b.AsInt()
	if aIsInt && bIsInt && iop != nil {
		if r, ok := iop(ai, bi); ok {
			return NewInt(r)
		}
	}
	af, aok := a.NumericFloat()
	bf, bok := b.NumericFloat()
	if !aok || !bok {
		return NewError("non-numeric operand to %s", name)
	}
	return NewFloat(fop(af, bf))
}

// Add implements +.
func Add(a, b Value) Value {
	return arithBinary(a, b,
		func(x, y int64) (int64, bool) {
			r := x + y
			// overflow check: sign of result must match expectation
			if (x > 0 && y > 0 && r < 0) || (x < 0 && y < 0 && r > 0) {
				return 0, false
			}
			return r, true
		},
		func(x, y float64) float64 { return x + y }, "+")
}

// Sub implements binary -.
func Sub(a, b Value) Value {
	return arithBinary(a, b,
		func(x, y int64) (int64, bool) {
			r := x - y
			if (x >= 0 && y < 0 && r < 0) || (x < 0 && y > 0 && r > 0) {
				return 0, false
			}
			return r, true
		},
		func(x, y float64) float64 { return x - y }, "-")
}

// Mul implements *.
func Mul(a, b Value) Value {
	return arithBinary(a, b,
		func(x, y int64) (int64, bool) {
			if x == 0 || y == 0 {
				return 0, true
			}
			r := x * y
			if r/y != x {
				return 0, false
			}
			return r, true
		},
		func(x, y float64) float64 { return x * y }, "*")
}

// Div implements / (true division: int/int that divides evenly stays Int,
// per spec "Int×Int stays Int when exact; otherwise promotes to Float").
// Division by zero produces Error for integer division, ±Inf/NaN for float.
func Div(a, b Value) Value {
	if a.IsError() {
		return a
	}
	if b.IsError() {
		return b
	}
	if a.IsAbsent() || b.IsAbsent() {
		return NewAbsent()
	}
	ai, aIsInt := a.AsInt()
	bi, bIsInt := b.AsInt()
	if aIsInt && bIsInt {
		if bi == 0 {
			return NewError("division by zero")
		}
		if ai%bi == 0 {
			return NewInt(ai / bi)
		}
		return NewFloat(float64(ai) / float64(bi))
	}
	af, aok := a.NumericFloat()
	bf, bok := b.NumericFloat()
	if !aok || !bok {
		return NewError("non-numeric operand to /")
	}
	return NewFloat(af / bf) // yields ±Inf/NaN for bf == 0, per spec
}

// IntDiv implements // (floor division).
func IntDiv(a, b Value) Value {
	if a.IsError() {
		return a
	}
	if b.IsError() {
		return b
	}
	if a.IsAbsent() || b.IsAbsent() {
		return NewAbsent()
	}
	ai, aIsInt := a.AsInt()
	bi, bIsInt := b.AsInt()
	if aIsInt && bIsInt {
		if bi == 0 {
			return NewError("division by zero")
		}
		q := ai / bi
		if (ai%bi != 0) && ((ai < 0) != (bi < 0)) {
			q--
		}
		return NewInt(q)
	}
	af, aok := a.NumericFloat()
	bf, bok := b.NumericFloat()
	if !aok || !bok {
		return NewError("non-numeric operand to //")
	}
	return NewFloat(math.Floor(af / bf))
}

// Mod implements %.
func Mod(a, b Value) Value {
	if a.IsError() {
		return a
	}
	if b.IsError() {
		return b
	}
	if a.IsAbsent() || b.IsAbsent() {
		return NewAbsent()
	}
	ai, aIsInt := a.AsInt()
	bi, bIsInt := b.AsInt()
	if aIsInt && bIsInt {
		if bi == 0 {
			return NewError("division by zero")
		}
		r := ai % bi
		if r != 0 && ((r < 0) != (bi < 0)) {
			r += bi
		}
		return NewInt(r)
	}
	af, aok := a.NumericFloat()
	bf, bok := b.NumericFloat()
	if !aok || !bok {
		return NewError("non-numeric operand to %%")
	}
	return NewFloat(math.Mod(af, bf))
}

// Neg implements unary -.
func Neg(a Value) Value {
	if a.IsError() {
		return a
	}
	if a.IsAbsent() {
		return NewAbsent()
	}
	if i, ok := a.AsInt(); ok {
		return NewInt(-i)
	}
	if f, ok := a.AsFloat(); ok {
		return NewFloat(-f)
	}
	return NewError("non-numeric operand to unary -")
}

// intBitwise and logical ops operate only on Int/Bool respectively; Error/
// Absent propagate the same way as arithmetic.
func BitAnd(a, b Value) Value { return intBitwise(a, b, func(x, y int64) int64 { return x & y }) }
func BitOr(a, b Value) Value  { return intBitwise(a, b, func(x, y int64) int64 { return x | y }) }
func BitXor(a, b Value) Value { return intBitwise(a, b, func(x, y int64) int64 { return x ^ y }) }

func intBitwise(a, b Value, op func(int64, int64) int64) Value {
	if a.IsError() {
		return a
	}
	if b.IsError() {
		return b
	}
	if a.IsAbsent() || b.IsAbsent() {
		return NewAbsent()
	}
	ai, aok := a.AsInt()
	bi, bok := b.AsInt()
	if !aok || !bok {
		return NewError("bitwise operator requires Int operands")
	}
	return NewInt(op(ai, bi))
}

// CoerceToBool implements the "strict boolean" rule: only Bool is accepted.
// Any other present value is a type error; Absent is treated as false by
// callers that need a default (e.g. filter), but CoerceToBool itself
// reports the error so callers can distinguish the two cases.
func CoerceToBool(v Value) (bool, bool) {
	if b, ok := v.AsBool(); ok {
		return b, true
	}
	return false, false
}
