package stats

import (
	"encoding/binary"
	"math"

	"github.com/axiomhq/hyperloglog"
)

// Bucket is one contiguous sub-range [Low, High) of a histogram's domain.
// The last bucket of a histogram is closed on High. Distinct is approximate
// and never exceeds Count.
type Bucket struct {
	Low      float64
	High     float64
	Count    int64
	Distinct int64
}

// Histogram is an equal-width bucket summary of one column's quantized
// values. Built once per base-table column; every filter produces a derived
// copy, the source is never mutated.
type Histogram struct {
	buckets []Bucket
	min     float64
	max     float64
	total   int64

	// parentTotal is the pre-filter total this histogram derives from.
	// For a freshly built histogram it equals total.
	parentTotal int64
}

// BuildHistogram constructs a histogram over all quantized values of a
// column. bucketCount fixes the number of equal-width buckets; a degenerate
// single bucket covers the max==min case. Distinct counts per bucket come
// from hyperloglog sketches, clamped so they never exceed the bucket count.
func BuildHistogram(bucketCount int, values []float64) *Histogram {
	if bucketCount < 1 {
		bucketCount = 1
	}
	if len(values) == 0 {
		return &Histogram{}
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if max == min {
		bucketCount = 1
	}

	h := &Histogram{
		buckets: make([]Bucket, bucketCount),
		min:     min,
		max:     max,
	}

	width := (max - min) / float64(bucketCount)
	for i := range h.buckets {
		h.buckets[i].Low = min + float64(i)*width
		h.buckets[i].High = min + float64(i+1)*width
	}
	// The last bucket is closed on the observed maximum
	h.buckets[bucketCount-1].High = max

	sketches := make([]*hyperloglog.Sketch, bucketCount)
	for i := range sketches {
		sketches[i] = hyperloglog.New()
	}

	var buf [8]byte
	for _, v := range values {
		i := h.bucketIndex(v)
		h.buckets[i].Count++
		h.total++
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
		sketches[i].Insert(buf[:])
	}

	for i := range h.buckets {
		d := int64(sketches[i].Estimate())
		if d > h.buckets[i].Count {
			d = h.buckets[i].Count
		}
		if d == 0 && h.buckets[i].Count > 0 {
			d = 1
		}
		h.buckets[i].Distinct = d
	}

	h.parentTotal = h.total
	return h
}

// bucketIndex maps a value inside [min, max] to its owning bucket
func (h *Histogram) bucketIndex(v float64) int {
	if len(h.buckets) == 0 {
		return 0
	}
	width := (h.max - h.min) / float64(len(h.buckets))
	if width == 0 {
		return 0
	}
	i := int((v - h.min) / width)
	if i < 0 {
		i = 0
	}
	if i >= len(h.buckets) {
		i = len(h.buckets) - 1
	}
	return i
}

// NumBuckets returns the bucket count
func (h *Histogram) NumBuckets() int { return len(h.buckets) }

// Bucket returns bucket i by value
func (h *Histogram) Bucket(i int) Bucket { return h.buckets[i] }

// Min returns the low end of the observed domain
func (h *Histogram) Min() float64 { return h.min }

// Max returns the high end of the observed domain
func (h *Histogram) Max() float64 { return h.max }

// TotalCount returns the summed bucket counts
func (h *Histogram) TotalCount() int64 { return h.total }

// DistinctCount returns the summed approximate distinct counts
func (h *Histogram) DistinctCount() int64 {
	var d int64
	for i := range h.buckets {
		d += h.buckets[i].Distinct
	}
	return d
}

// Selectivity returns the ratio of this histogram's total to the total it
// was derived from, in [0, 1]. A freshly built histogram reports 1.
func (h *Histogram) Selectivity() float64 {
	if h.parentTotal == 0 {
		return 0
	}
	return float64(h.total) / float64(h.parentTotal)
}

// Clone returns a value copy
func (h *Histogram) Clone() *Histogram {
	out := &Histogram{
		buckets:     make([]Bucket, len(h.buckets)),
		min:         h.min,
		max:         h.max,
		total:       h.total,
		parentTotal: h.parentTotal,
	}
	copy(out.buckets, h.buckets)
	return out
}

// zeroed returns a derived copy with every bucket emptied
func (h *Histogram) zeroed() *Histogram {
	out := h.Clone()
	for i := range out.buckets {
		out.buckets[i].Count = 0
		out.buckets[i].Distinct = 0
	}
	out.total = 0
	out.parentTotal = h.total
	return out
}

// FilterEquality derives a histogram for `column = value`. The owning bucket
// keeps count/distinct rows (one of the bucket's distinct values is assumed
// to equal the probe); every other bucket is zeroed. Returns the derived
// histogram and the selectivity.
func (h *Histogram) FilterEquality(v float64) (*Histogram, float64) {
	if h.total == 0 || len(h.buckets) == 0 {
		return h.zeroed(), 0
	}
	if v < h.min || v > h.max {
		return h.zeroed(), 0
	}

	out := h.zeroed()
	i := h.bucketIndex(v)
	b := h.buckets[i]
	if b.Distinct == 0 {
		return out, 0
	}

	eq := float64(b.Count) / float64(b.Distinct)
	out.buckets[i].Count = roundCount(eq)
	if out.buckets[i].Count > 0 {
		out.buckets[i].Distinct = 1
	}
	out.total = out.buckets[i].Count

	return out, eq / float64(h.total)
}

// FilterComparison derives a histogram for `column op value` with op one of
// <, <=, >, >=, !=. Buckets fully inside the satisfying range keep their
// counts, the boundary bucket is linearly interpolated, everything else is
// zeroed. != is the complement of equality filtering.
func (h *Histogram) FilterComparison(op Op, v float64) (*Histogram, float64) {
	if h.total == 0 || len(h.buckets) == 0 {
		return h.zeroed(), 0
	}

	if op == OpNe {
		return h.filterNotEqual(v)
	}

	// Probes outside the observed domain either keep or drop everything
	if v < h.min {
		if op == OpGt || op == OpGe {
			out := h.Clone()
			out.parentTotal = h.total
			return out, 1
		}
		return h.zeroed(), 0
	}
	if v > h.max {
		if op == OpLt || op == OpLe {
			out := h.Clone()
			out.parentTotal = h.total
			return out, 1
		}
		return h.zeroed(), 0
	}

	out := h.zeroed()
	boundary := h.bucketIndex(v)

	for i := range h.buckets {
		b := h.buckets[i]
		switch {
		case i < boundary:
			if op == OpLt || op == OpLe {
				out.buckets[i] = b
			}
		case i > boundary:
			if op == OpGt || op == OpGe {
				out.buckets[i] = b
			}
		default:
			frac := h.boundaryFraction(op, b, v)
			out.buckets[i].Count = roundCount(float64(b.Count) * frac)
			out.buckets[i].Distinct = clampDistinct(roundCount(float64(b.Distinct)*frac), out.buckets[i].Count)
		}
	}

	out.total = 0
	for i := range out.buckets {
		out.total += out.buckets[i].Count
	}
	return out, float64(out.total) / float64(h.total)
}

// boundaryFraction interpolates the satisfying share of the bucket
// straddling the probe value, clamped to [0, 1]
func (h *Histogram) boundaryFraction(op Op, b Bucket, v float64) float64 {
	width := b.High - b.Low

	// Degenerate single-point bucket: membership is all or nothing
	if width == 0 {
		switch op {
		case OpLe, OpGe:
			return 1
		}
		return 0
	}

	var eqShare float64
	if b.Distinct > 0 {
		eqShare = 1 / float64(b.Distinct)
	}

	var frac float64
	switch op {
	case OpLt:
		frac = (v - b.Low) / width
	case OpLe:
		frac = (v-b.Low)/width + eqShare
	case OpGt:
		frac = (b.High - v) / width
	case OpGe:
		frac = (b.High-v)/width + eqShare
	}

	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return frac
}

// filterNotEqual removes the equality share from the owning bucket and keeps
// everything else
func (h *Histogram) filterNotEqual(v float64) (*Histogram, float64) {
	if v < h.min || v > h.max {
		out := h.Clone()
		out.parentTotal = h.total
		return out, 1
	}

	out := h.Clone()
	out.parentTotal = h.total
	i := h.bucketIndex(v)
	b := h.buckets[i]
	if b.Distinct > 0 {
		eq := roundCount(float64(b.Count) / float64(b.Distinct))
		out.buckets[i].Count = b.Count - eq
		if out.buckets[i].Count < 0 {
			out.buckets[i].Count = 0
		}
		out.buckets[i].Distinct = clampDistinct(b.Distinct-1, out.buckets[i].Count)
	}

	out.total = 0
	for j := range out.buckets {
		out.total += out.buckets[j].Count
	}
	return out, float64(out.total) / float64(h.total)
}

// Scale derives a histogram with every bucket count scaled by factor.
// Used to propagate another column's selectivity onto this one, preserving
// relative shape.
func (h *Histogram) Scale(factor float64) *Histogram {
	if factor < 0 {
		factor = 0
	}
	out := h.Clone()
	out.parentTotal = h.total
	out.total = 0
	for i := range out.buckets {
		out.buckets[i].Count = roundCount(float64(h.buckets[i].Count) * factor)
		out.buckets[i].Distinct = clampDistinct(h.buckets[i].Distinct, out.buckets[i].Count)
		out.total += out.buckets[i].Count
	}
	return out
}

// countInRange estimates how many values fall inside [lo, hi] by linear
// interpolation over bucket overlaps
func (h *Histogram) countInRange(lo, hi float64) float64 {
	var sum float64
	for i := range h.buckets {
		b := h.buckets[i]
		sum += float64(b.Count) * overlapFraction(b, lo, hi)
	}
	return sum
}

// distinctInRange estimates how many distinct values fall inside [lo, hi]
func (h *Histogram) distinctInRange(lo, hi float64) float64 {
	var sum float64
	for i := range h.buckets {
		b := h.buckets[i]
		sum += float64(b.Distinct) * overlapFraction(b, lo, hi)
	}
	return sum
}

// overlapFraction is the fraction of bucket b covered by [lo, hi]
func overlapFraction(b Bucket, lo, hi float64) float64 {
	width := b.High - b.Low
	if width == 0 {
		if b.Low >= lo && b.Low <= hi {
			return 1
		}
		return 0
	}
	from := math.Max(b.Low, lo)
	to := math.Min(b.High, hi)
	if to <= from {
		return 0
	}
	return (to - from) / width
}

// Intersect derives the intersection-shaped histogram of two histograms over
// their overlapping domain: per aligned range the minimum of the two sides'
// interpolated counts. Used for join-key columns under the containment
// assumption.
func (h *Histogram) Intersect(other *Histogram, bucketCount int) *Histogram {
	if h.total == 0 || other.total == 0 || len(h.buckets) == 0 || len(other.buckets) == 0 {
		return &Histogram{}
	}
	lo := math.Max(h.min, other.min)
	hi := math.Min(h.max, other.max)
	if lo > hi {
		return &Histogram{}
	}
	if bucketCount < 1 {
		bucketCount = 1
	}
	if lo == hi {
		bucketCount = 1
	}

	out := &Histogram{
		buckets: make([]Bucket, bucketCount),
		min:     lo,
		max:     hi,
	}
	width := (hi - lo) / float64(bucketCount)
	for i := range out.buckets {
		bLo := lo + float64(i)*width
		bHi := lo + float64(i+1)*width
		if i == bucketCount-1 {
			bHi = hi
		}
		out.buckets[i].Low = bLo
		out.buckets[i].High = bHi

		count := math.Min(h.countInRange(bLo, bHi), other.countInRange(bLo, bHi))
		distinct := math.Min(h.distinctInRange(bLo, bHi), other.distinctInRange(bLo, bHi))
		out.buckets[i].Count = roundCount(count)
		out.buckets[i].Distinct = clampDistinct(roundCount(distinct), out.buckets[i].Count)
		out.total += out.buckets[i].Count
	}
	out.parentTotal = out.total
	return out
}

// ScaleTo derives a histogram rescaled so its total approximates target
func (h *Histogram) ScaleTo(target int64) *Histogram {
	if h.total == 0 {
		return h.Clone()
	}
	return h.Scale(float64(target) / float64(h.total))
}

func roundCount(f float64) int64 {
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	return int64(math.Round(f))
}

func clampDistinct(d, count int64) int64 {
	if d > count {
		d = count
	}
	if d < 1 && count > 0 {
		d = 1
	}
	if d < 0 {
		d = 0
	}
	return d
}
