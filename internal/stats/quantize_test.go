package stats

import (
	"testing"
)

// TestQuantizeOrdering verifies quantization preserves value ordering within
// each supported type, which range predicates rely on
func TestQuantizeOrdering(t *testing.T) {
	pairs := []struct {
		lo, hi interface{}
	}{
		{int64(1), int64(2)},
		{int64(-10), int64(10)},
		{1.5, 2.5},
		{false, true},
		{"apple", "banana"},
		{"abc", "abd"},
		{"a", "ab"},
	}

	for _, p := range pairs {
		qlo, err := Quantize(p.lo)
		if err != nil {
			t.Fatalf("quantize %v: %v", p.lo, err)
		}
		qhi, err := Quantize(p.hi)
		if err != nil {
			t.Fatalf("quantize %v: %v", p.hi, err)
		}
		if qlo >= qhi {
			t.Errorf("ordering lost: %v (%v) >= %v (%v)", p.lo, qlo, p.hi, qhi)
		}
	}
}

// TestQuantizeValues verifies the fixed mappings
func TestQuantizeValues(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
	}{
		{false, 0},
		{true, 1},
		{int(42), 42},
		{int64(42), 42},
		{3.25, 3.25},
		{"", 0},
	}

	for _, tt := range tests {
		got, err := Quantize(tt.in)
		if err != nil {
			t.Fatalf("quantize %v: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("quantize %v: expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

// TestQuantizeUnsupported verifies unsupported types error out
func TestQuantizeUnsupported(t *testing.T) {
	if _, err := Quantize([]int{1, 2}); err == nil {
		t.Error("expected an error for an unsupported type")
	}
	if _, err := Quantize(nil); err == nil {
		t.Error("expected an error for nil")
	}
}

// TestQuantizeStringPrefix verifies strings sharing the 8-byte prefix
// quantize equally
func TestQuantizeStringPrefix(t *testing.T) {
	a, _ := Quantize("12345678-alpha")
	b, _ := Quantize("12345678-omega")
	if a != b {
		t.Errorf("shared prefix should quantize equally: %v != %v", a, b)
	}
}

// TestParseOp verifies operator literals round-trip
func TestParseOp(t *testing.T) {
	for _, lit := range []string{"=", "!=", "<", "<=", ">", ">="} {
		op, err := ParseOp(lit)
		if err != nil {
			t.Fatalf("parse %q: %v", lit, err)
		}
		if op.String() != lit {
			t.Errorf("round trip %q -> %q", lit, op.String())
		}
	}

	if _, err := ParseOp("~"); err == nil {
		t.Error("expected an error for an unknown operator")
	}
}
