package value

// TypeMask declares which Value kinds a LocalStack slot accepts. A mask is
// never weakened after a slot's declaration (spec.md §3 invariant); writes
// that violate it are a fatal type-error (spec.md §7).
type TypeMask int

const (
	MaskAny TypeMask = 1 << iota
	MaskInt
	MaskFloat
	MaskBool
	MaskString
	MaskMap
)

// MaskNum accepts Int or Float, per spec.md §4.1.
const MaskNum = MaskInt | MaskFloat

// Accepts reports whether v's kind satisfies mask. MaskAny accepts any
// scalar value (but never a map slot — map-typed slots are declared with
// MaskMap exclusively, per spec.md §4.1: "map only map slots").
func (mask TypeMask) Accepts(v Value) bool {
	if mask&MaskMap != 0 {
		return false // scalar Value never satisfies a map-only mask
	}
	if mask&MaskAny != 0 {
		return true
	}
	switch v.Kind() {
	case Int:
		return mask&MaskInt != 0
	case Float:
		return mask&MaskFloat != 0
	case Bool:
		return mask&MaskBool != 0
	case String, Empty:
		return mask&MaskString != 0
	case Absent:
		return true // absent assignment is a silent no-op, never a type error
	case ErrorKind:
		return true // errors propagate freely through any scalar slot
	default:
		return false
	}
}
