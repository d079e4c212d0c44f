package value

import (
	"fmt"
	"strconv"
)

// Format renders a Value as the string that would be written back to a
// record field. numericFormat is the OFMT printf-style spec (e.g. "%.6f");
// an empty numericFormat uses Go's shortest round-trip representation.
func Format(v Value, numericFormat string) string {
	switch v.kind {
	case Absent:
		return ""
	case Empty:
		return ""
	case String:
		return v.str
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		if numericFormat != "" {
			return fmt.Sprintf(numericFormat, v.f)
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ErrorKind:
		return "(error)"
	default:
		return ""
	}
}

// Inspect renders a Value for diagnostics/dump output, tagging its kind.
func Inspect(v Value) string {
	switch v.kind {
	case Absent:
		return "(absent)"
	case Empty:
		return `""`
	case String:
		return strconv.Quote(v.str)
	case ErrorKind:
		return "(error: " + v.msg + ")"
	default:
		return Format(v, "")
	}
}
