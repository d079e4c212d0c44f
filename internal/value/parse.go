package value

import "strconv"

// ParseInferred converts a raw record-field string into a Value, honoring
// the type-inferencing policy. Parsing is lazy: callers decide when to pay
// for it (e.g. Overlay.Get parses a field's raw string each time it reads
// a field that has no typed overlay value).
func ParseInferred(s string, policy Policy) Value {
	if s == "" {
		return NewEmpty()
	}
	if policy == PolicyStringsOnly {
		return NewString(s)
	}
	if policy == PolicyStringsFloatsInts {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return NewInt(i)
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return NewFloat(f)
	}
	return NewString(s)
}

// ParseStrict parses s as a number under strict (value-error) semantics:
// used where the DSL needs "this field must be numeric" rather than the
// lenient fall-back-to-string inference above (e.g. decay alpha parameters).
func ParseStrict(s string) Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewInt(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return NewFloat(f)
	}
	return NewError("malformed numeric literal: %q", s)
}
