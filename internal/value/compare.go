package value

// Compare implements <, <=, ==, !=, >=, >. String comparison is
// lexicographic whenever either operand is a string; otherwise numeric
// comparison is used. Returns an Error value for Error operands and Absent
// for Absent operands, matching arithmetic's propagation rules.
func Compare(a, b Value, op string) Value {
	if a.IsError() {
		return a
	}
	if b.IsError() {
		return b
	}
	if a.IsAbsent() || b.IsAbsent() {
		return NewAbsent()
	}

	var cmp int
	if as, aok := a.AsString(); aok {
		bs := Format(b, "")
		cmp = stringCompare(as, bs)
	} else if bs, bok := b.AsString(); bok {
		as := Format(a, "")
		cmp = stringCompare(as, bs)
	} else if af, aok := a.NumericFloat(); aok {
		if bf, bok := b.NumericFloat(); bok {
			switch {
			case af < bf:
				cmp = -1
			case af > bf:
				cmp = 1
			default:
				cmp = 0
			}
		} else {
			return NewError("cannot compare %s to %s", a.Kind(), b.Kind())
		}
	} else if ab, aok := a.AsBool(); aok {
		bb, bok := b.AsBool()
		if !bok {
			return NewError("cannot compare %s to %s", a.Kind(), b.Kind())
		}
		cmp = boolCompare(ab, bb)
	} else {
		return NewError("cannot compare %s to %s", a.Kind(), b.Kind())
	}

	switch op {
	case "<":
		return NewBool(cmp < 0)
	case "<=":
		return NewBool(cmp <= 0)
	case "==":
		return NewBool(cmp == 0)
	case "!=":
		return NewBool(cmp != 0)
	case ">=":
		return NewBool(cmp >= 0)
	case ">":
		return NewBool(cmp > 0)
	default:
		return NewError("unknown comparison operator %q", op)
	}
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boolCompare(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

// And implements strict-boolean &&; both operands must already have been
// coerced to Bool by the caller (short-circuit evaluation lives in the
// expression evaluator, not here).
func And(a, b Value) Value {
	av, aok := a.AsBool()
	bv, bok := b.AsBool()
	if !aok || !bok {
		return NewError("&& requires boolean operands")
	}
	return NewBool(av && bv)
}

// Or implements strict-boolean ||.
func Or(a, b Value) Value {
	av, aok := a.AsBool()
	bv, bok := b.AsBool()
	if !aok || !bok {
		return NewError("|| requires boolean operands")
	}
	return NewBool(av || bv)
}

// Not implements unary !.
func Not(a Value) Value {
	av, ok := a.AsBool()
	if !ok {
		return NewError("! requires a boolean operand")
	}
	return NewBool(!av)
}
