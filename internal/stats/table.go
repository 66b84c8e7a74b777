package stats

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Table is the table-level statistics record derived for every operator
// output, not just base tables: estimated tuple count, estimated page count,
// and per-column statistics. Instances are immutable snapshots; every
// derivation returns a new record.
type Table struct {
	TupleCount   int64
	AvgTupleSize int64
	PageCount    int64
	PageSize     int64
	Columns      map[string]*Column
}

// Clone returns a deep value copy
func (t *Table) Clone() *Table {
	out := &Table{
		TupleCount:   t.TupleCount,
		AvgTupleSize: t.AvgTupleSize,
		PageCount:    t.PageCount,
		PageSize:     t.PageSize,
		Columns:      make(map[string]*Column, len(t.Columns)),
	}
	for name, col := range t.Columns {
		out.Columns[name] = col.Clone()
	}
	return out
}

// Qualify returns a copy whose column names carry an alias prefix
// ("alias.column"), so join outputs never collide on bare names.
func (t *Table) Qualify(alias string) *Table {
	out := t.Clone()
	qualified := make(map[string]*Column, len(out.Columns))
	for name, col := range out.Columns {
		if strings.Contains(name, ".") {
			qualified[name] = col
			continue
		}
		qualified[alias+"."+name] = col
	}
	out.Columns = qualified
	return out
}

// recomputePages applies the page-count invariant
// ceil(tuples * width / pageSize)
func (t *Table) recomputePages() {
	if t.TupleCount <= 0 || t.AvgTupleSize <= 0 || t.PageSize <= 0 {
		t.PageCount = 0
		return
	}
	t.PageCount = (t.TupleCount*t.AvgTupleSize + t.PageSize - 1) / t.PageSize
}

// FilterColumn derives the statistics of filtering this table on
// `column op value`. The named column's histogram is filtered; every other
// column is scaled by the same selectivity, since cross-column correlation
// is not modeled. Returns the derived record and the selectivity.
func (t *Table) FilterColumn(column string, op Op, value interface{}) (*Table, float64, error) {
	col, ok := t.Columns[column]
	if !ok {
		return nil, 0, errors.AssertionFailedf("filter on column %s missing from statistics", column)
	}

	probe, err := Quantize(value)
	if err != nil {
		return nil, 0, err
	}

	var filtered *Histogram
	var sel float64
	if op == OpEq {
		filtered, sel = col.Hist.FilterEquality(probe)
	} else {
		filtered, sel = col.Hist.FilterComparison(op, probe)
	}

	out := &Table{
		AvgTupleSize: t.AvgTupleSize,
		PageSize:     t.PageSize,
		Columns:      make(map[string]*Column, len(t.Columns)),
	}
	out.TupleCount = roundCount(float64(t.TupleCount) * sel)

	for name, c := range t.Columns {
		if name == column {
			derived := c.Clone()
			derived.Hist = filtered
			out.Columns[name] = derived
			continue
		}
		out.Columns[name] = c.scaled(sel)
	}

	out.recomputePages()
	return out, sel, nil
}

// Join derives the statistics of an equality join on leftKey/rightKey under
// the containment assumption: output tuples = |L|*|R| / max(distinct(L.k),
// distinct(R.k)). The join-key columns take the intersection-shaped
// histogram of both sides; every other column scales with its own side's
// fan-out.
func Join(left, right *Table, leftKey, rightKey string) (*Table, error) {
	lcol, ok := left.Columns[leftKey]
	if !ok {
		return nil, errors.AssertionFailedf("join key %s missing from left statistics", leftKey)
	}
	rcol, ok := right.Columns[rightKey]
	if !ok {
		return nil, errors.AssertionFailedf("join key %s missing from right statistics", rightKey)
	}

	out := &Table{
		AvgTupleSize: left.AvgTupleSize + right.AvgTupleSize,
		PageSize:     left.PageSize,
		Columns:      make(map[string]*Column, len(left.Columns)+len(right.Columns)),
	}
	if out.PageSize == 0 {
		out.PageSize = right.PageSize
	}

	denom := lcol.Distinct()
	if r := rcol.Distinct(); r > denom {
		denom = r
	}
	if denom == 0 || left.TupleCount == 0 || right.TupleCount == 0 {
		// Degenerate empty-domain case: estimate an empty output rather
		// than dividing by zero
		out.TupleCount = 0
		for name, c := range left.Columns {
			out.Columns[name] = c.scaled(0)
		}
		for name, c := range right.Columns {
			out.Columns[name] = c.scaled(0)
		}
		out.recomputePages()
		return out, nil
	}

	out.TupleCount = roundCount(float64(left.TupleCount) * float64(right.TupleCount) / float64(denom))

	keyHist := lcol.Hist.Intersect(rcol.Hist, maxBuckets(lcol.Hist, rcol.Hist)).ScaleTo(out.TupleCount)
	keyStats := &Column{
		Hist: keyHist,
		Min:  keyHist.Min(),
		Max:  keyHist.Max(),
	}

	leftFactor := fanOut(out.TupleCount, left.TupleCount)
	rightFactor := fanOut(out.TupleCount, right.TupleCount)

	for name, c := range left.Columns {
		if name == leftKey {
			out.Columns[name] = keyStats.Clone()
			continue
		}
		out.Columns[name] = c.scaled(leftFactor)
	}
	for name, c := range right.Columns {
		if name == rightKey {
			out.Columns[name] = keyStats.Clone()
			continue
		}
		out.Columns[name] = c.scaled(rightFactor)
	}

	out.recomputePages()
	return out, nil
}

// Cross derives the statistics of an unconditioned cross product
func Cross(left, right *Table) *Table {
	out := &Table{
		TupleCount:   left.TupleCount * right.TupleCount,
		AvgTupleSize: left.AvgTupleSize + right.AvgTupleSize,
		PageSize:     left.PageSize,
		Columns:      make(map[string]*Column, len(left.Columns)+len(right.Columns)),
	}
	if out.PageSize == 0 {
		out.PageSize = right.PageSize
	}

	for name, c := range left.Columns {
		out.Columns[name] = c.scaled(float64(right.TupleCount))
	}
	for name, c := range right.Columns {
		out.Columns[name] = c.scaled(float64(left.TupleCount))
	}

	out.recomputePages()
	return out
}

func fanOut(outTuples, inTuples int64) float64 {
	if inTuples == 0 {
		return 0
	}
	return float64(outTuples) / float64(inTuples)
}

func maxBuckets(a, b *Histogram) int {
	n := a.NumBuckets()
	if b.NumBuckets() > n {
		n = b.NumBuckets()
	}
	return n
}
