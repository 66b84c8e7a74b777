package data

// Compare orders two cell values of the same logical type.
// Returns -1, 0 or 1. Integers arriving as int are normalized to int64
// (JSON-loaded integers arrive as float64 and compare as floats).
// nil sorts before everything else so NULLs cluster at the low end.
func Compare(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	switch av := normalize(a).(type) {
	case int64:
		bv, ok := normalize(b).(int64)
		if !ok {
			// mixed int/float comparison goes through float64
			return compareFloats(float64(av), toFloat(b))
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case float64:
		return compareFloats(av, toFloat(b))
	case string:
		bv, _ := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case bool:
		bv, _ := b.(bool)
		switch {
		case !av && bv:
			return -1
		case av && !bv:
			return 1
		}
		return 0
	}
	return 0
}

func normalize(v interface{}) interface{} {
	if iv, ok := v.(int); ok {
		return int64(iv)
	}
	return v
}

func toFloat(v interface{}) float64 {
	switch fv := v.(type) {
	case float64:
		return fv
	case int64:
		return float64(fv)
	case int:
		return float64(fv)
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
