package stats

import (
	"testing"
)

// testTable builds table statistics over explicit per-column value slices.
// Every column must carry the same number of values.
func testTable(t *testing.T, avgTupleSize, pageSize int64, columns map[string][]float64) *Table {
	t.Helper()

	out := &Table{
		AvgTupleSize: avgTupleSize,
		PageSize:     pageSize,
		Columns:      make(map[string]*Column, len(columns)),
	}
	for name, values := range columns {
		out.TupleCount = int64(len(values))
		out.Columns[name] = NewColumn(BuildHistogram(10, values), 0)
	}
	out.recomputePages()
	return out
}

func sequence(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	return values
}

func repeated(n, copies int) []float64 {
	values := make([]float64, 0, n*copies)
	for i := 0; i < n; i++ {
		for k := 0; k < copies; k++ {
			values = append(values, float64(i))
		}
	}
	return values
}

// checkPageInvariant verifies PageCount == ceil(tuples * width / pageSize)
func checkPageInvariant(t *testing.T, s *Table) {
	t.Helper()
	want := int64(0)
	if s.TupleCount > 0 && s.AvgTupleSize > 0 && s.PageSize > 0 {
		want = (s.TupleCount*s.AvgTupleSize + s.PageSize - 1) / s.PageSize
	}
	if s.PageCount != want {
		t.Errorf("page invariant broken: %d tuples x %d bytes / %d page size gives %d pages, record says %d",
			s.TupleCount, s.AvgTupleSize, s.PageSize, want, s.PageCount)
	}
}

// TestFilterColumnScalesOthers verifies a filter derives the named column's
// histogram and scales every other column by the same selectivity
func TestFilterColumnScalesOthers(t *testing.T) {
	tbl := testTable(t, 100, 4096, map[string][]float64{
		"t.id":    sequence(1000),
		"t.score": sequence(1000),
	})

	out, sel, err := tbl.FilterColumn("t.id", OpLt, int64(500))
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if sel < 0.4 || sel > 0.6 {
		t.Errorf("expected selectivity near 0.5, got %v", sel)
	}
	if out.TupleCount < 400 || out.TupleCount > 600 {
		t.Errorf("expected about 500 tuples, got %d", out.TupleCount)
	}

	other := out.Columns["t.score"]
	ratio := float64(other.Hist.TotalCount()) / 1000
	if ratio < sel-0.05 || ratio > sel+0.05 {
		t.Errorf("other column scaled by %v, expected %v", ratio, sel)
	}

	checkPageInvariant(t, out)

	// Source record untouched
	if tbl.TupleCount != 1000 {
		t.Errorf("source record mutated: %d tuples", tbl.TupleCount)
	}
}

// TestFilterColumnMissing verifies filtering an unknown column fails
func TestFilterColumnMissing(t *testing.T) {
	tbl := testTable(t, 100, 4096, map[string][]float64{"t.id": sequence(10)})
	if _, _, err := tbl.FilterColumn("t.nope", OpEq, int64(1)); err == nil {
		t.Error("expected an error for a column missing from statistics")
	}
}

// TestFilterComposition verifies two stacked filters compose multiplicatively
func TestFilterComposition(t *testing.T) {
	tbl := testTable(t, 100, 4096, map[string][]float64{
		"t.a": sequence(1000),
		"t.b": sequence(1000),
	})

	first, selA, err := tbl.FilterColumn("t.a", OpLt, int64(500))
	if err != nil {
		t.Fatalf("first filter: %v", err)
	}
	second, selB, err := first.FilterColumn("t.b", OpLt, int64(500))
	if err != nil {
		t.Fatalf("second filter: %v", err)
	}

	combined := selA * selB
	got := float64(second.TupleCount) / float64(tbl.TupleCount)
	if got < combined-0.1 || got > combined+0.1 {
		t.Errorf("composed fraction %v, expected near %v", got, combined)
	}
	checkPageInvariant(t, second)
}

// TestJoinContainment verifies the containment estimate on a key/foreign-key
// shape: 500 students joined with 5000 enrollments over a 500-value key
// estimates about 5000 output tuples.
func TestJoinContainment(t *testing.T) {
	students := testTable(t, 50, 4096, map[string][]float64{
		"s.id": sequence(500),
	})
	enrollments := testTable(t, 40, 4096, map[string][]float64{
		"e.student_id": repeated(500, 10),
	})

	out, err := Join(students, enrollments, "s.id", "e.student_id")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if out.TupleCount < 4500 || out.TupleCount > 5500 {
		t.Errorf("expected about 5000 output tuples, got %d", out.TupleCount)
	}
	if out.AvgTupleSize != 90 {
		t.Errorf("expected joined width 90, got %d", out.AvgTupleSize)
	}
	checkPageInvariant(t, out)

	// Both key columns carry the same intersection-shaped statistics
	if _, ok := out.Columns["s.id"]; !ok {
		t.Fatal("left key column missing from join output")
	}
	if _, ok := out.Columns["e.student_id"]; !ok {
		t.Fatal("right key column missing from join output")
	}
	if out.Columns["s.id"].Hist.TotalCount() != out.Columns["e.student_id"].Hist.TotalCount() {
		t.Error("key columns should share the intersection histogram")
	}
}

// TestJoinSymmetry verifies estimates do not depend on argument order
func TestJoinSymmetry(t *testing.T) {
	a := testTable(t, 50, 4096, map[string][]float64{"a.k": sequence(500)})
	b := testTable(t, 40, 4096, map[string][]float64{"b.k": repeated(500, 10)})

	ab, err := Join(a, b, "a.k", "b.k")
	if err != nil {
		t.Fatalf("a join b: %v", err)
	}
	ba, err := Join(b, a, "b.k", "a.k")
	if err != nil {
		t.Fatalf("b join a: %v", err)
	}

	if ab.TupleCount != ba.TupleCount {
		t.Errorf("asymmetric tuple estimate: %d vs %d", ab.TupleCount, ba.TupleCount)
	}
	if ab.AvgTupleSize != ba.AvgTupleSize {
		t.Errorf("asymmetric width estimate: %d vs %d", ab.AvgTupleSize, ba.AvgTupleSize)
	}
	if ab.PageCount != ba.PageCount {
		t.Errorf("asymmetric page estimate: %d vs %d", ab.PageCount, ba.PageCount)
	}
}

// TestJoinMissingKey verifies a key absent from statistics is an error
func TestJoinMissingKey(t *testing.T) {
	a := testTable(t, 50, 4096, map[string][]float64{"a.k": sequence(10)})
	b := testTable(t, 40, 4096, map[string][]float64{"b.k": sequence(10)})

	if _, err := Join(a, b, "a.nope", "b.k"); err == nil {
		t.Error("expected an error for a missing left key")
	}
	if _, err := Join(a, b, "a.k", "b.nope"); err == nil {
		t.Error("expected an error for a missing right key")
	}
}

// TestJoinEmptySide verifies a zero-tuple side estimates an empty output
// instead of dividing by zero
func TestJoinEmptySide(t *testing.T) {
	a := testTable(t, 50, 4096, map[string][]float64{"a.k": sequence(100)})
	empty := &Table{
		AvgTupleSize: 40,
		PageSize:     4096,
		Columns:      map[string]*Column{"b.k": NewColumn(BuildHistogram(10, nil), 0)},
	}

	out, err := Join(a, empty, "a.k", "b.k")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if out.TupleCount != 0 {
		t.Errorf("expected empty output, got %d tuples", out.TupleCount)
	}
	checkPageInvariant(t, out)
}

// TestCross verifies the cross product multiplies cardinalities
func TestCross(t *testing.T) {
	a := testTable(t, 50, 4096, map[string][]float64{"a.x": sequence(30)})
	b := testTable(t, 40, 4096, map[string][]float64{"b.y": sequence(20)})

	out := Cross(a, b)
	if out.TupleCount != 600 {
		t.Errorf("expected 600 tuples, got %d", out.TupleCount)
	}
	if out.AvgTupleSize != 90 {
		t.Errorf("expected width 90, got %d", out.AvgTupleSize)
	}
	if len(out.Columns) != 2 {
		t.Errorf("expected both columns in the output, got %d", len(out.Columns))
	}
	checkPageInvariant(t, out)
}

// TestQualify verifies alias prefixing and that double qualification is a
// no-op
func TestQualify(t *testing.T) {
	tbl := testTable(t, 10, 4096, map[string][]float64{"id": sequence(10)})

	q := tbl.Qualify("t")
	if _, ok := q.Columns["t.id"]; !ok {
		t.Fatal("expected column t.id after qualification")
	}
	if _, ok := q.Columns["id"]; ok {
		t.Error("bare column name should be gone after qualification")
	}

	again := q.Qualify("u")
	if _, ok := again.Columns["t.id"]; !ok {
		t.Error("already-qualified column should keep its name")
	}
}
