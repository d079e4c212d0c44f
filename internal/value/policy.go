package value

// Policy governs how ParseInferred reads a raw record-field string into a
// typed Value. Three-way, per spec: strings only, strings-and-floats, or
// strings-floats-and-ints.
type Policy int

const (
	// PolicyStringsOnly never infers numeric types; every field stays a
	// String/Empty.
	PolicyStringsOnly Policy = iota
	// PolicyStringsFloats infers Float but not Int (every number is a
	// Float).
	PolicyStringsFloats
	// PolicyStringsFloatsInts infers both Int and Float, the default.
	PolicyStringsFloatsInts
)

func (p Policy) String() string {
	switch p {
	case PolicyStringsOnly:
		return "strings-only"
	case PolicyStringsFloats:
		return "strings-and-floats"
	case PolicyStringsFloatsInts:
		return "strings-floats-and-ints"
	default:
		return "unknown"
	}
}
