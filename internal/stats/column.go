package stats

// Column bundles one column's histogram with its domain metadata.
// Derived copies are value copies: composing predicates or joins never
// shares mutable state with the parent operator's statistics.
type Column struct {
	Hist      *Histogram
	Min       float64
	Max       float64
	NullCount int64
}

// NewColumn wraps a built histogram into column statistics
func NewColumn(h *Histogram, nullCount int64) *Column {
	return &Column{
		Hist:      h,
		Min:       h.Min(),
		Max:       h.Max(),
		NullCount: nullCount,
	}
}

// Clone returns a value copy
func (c *Column) Clone() *Column {
	return &Column{
		Hist:      c.Hist.Clone(),
		Min:       c.Min,
		Max:       c.Max,
		NullCount: c.NullCount,
	}
}

// Distinct returns the approximate distinct-value count of the column
func (c *Column) Distinct() int64 {
	return c.Hist.DistinctCount()
}

// scaled derives a copy with the histogram scaled by factor and the null
// count reduced proportionally
func (c *Column) scaled(factor float64) *Column {
	out := c.Clone()
	out.Hist = c.Hist.Scale(factor)
	out.NullCount = roundCount(float64(c.NullCount) * factor)
	return out
}
