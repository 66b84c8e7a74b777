package stats

import (
	"github.com/cockroachdb/errors"
)

// Op is a comparison operator usable in filter predicates
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op Op) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	}
	return "?"
}

// ParseOp maps an operator literal to an Op
func ParseOp(s string) (Op, error) {
	switch s {
	case "=", "==":
		return OpEq, nil
	case "!=", "<>":
		return OpNe, nil
	case "<":
		return OpLt, nil
	case "<=":
		return OpLe, nil
	case ">":
		return OpGt, nil
	case ">=":
		return OpGe, nil
	}
	return 0, errors.Newf("unknown comparison operator %q", s)
}

// stringPrefixBytes bounds how much of a string participates in
// quantization. Two strings sharing an 8-byte prefix quantize equally.
const stringPrefixBytes = 8

// Quantize maps any supported value type onto the float coordinate all
// histograms are keyed by. Booleans map to {0, 1}; integers and floats map
// to themselves; strings map through a monotonic big-endian prefix fraction
// so range predicates keep their ordering.
func Quantize(v interface{}) (float64, error) {
	switch val := v.(type) {
	case bool:
		if val {
			return 1.0, nil
		}
		return 0.0, nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case float64:
		return val, nil
	case string:
		return quantizeString(val), nil
	}
	return 0, errors.Newf("unsupported value type %T", v)
}

// quantizeString folds the first 8 bytes into a fraction in [0, 1).
// Lexicographic byte order is preserved: each byte contributes at a strictly
// smaller scale than the one before it.
func quantizeString(s string) float64 {
	f := 0.0
	scale := 1.0
	for i := 0; i < len(s) && i < stringPrefixBytes; i++ {
		scale /= 256.0
		f += float64(s[i]) * scale
	}
	return f
}
