package planner

import (
	"testing"

	"github.com/leengari/mini-optimizer/internal/config"
	"github.com/leengari/mini-optimizer/internal/plan"
	"github.com/leengari/mini-optimizer/internal/stats"
)

func testCostModel(bufferPages int64, enabled ...string) *CostModel {
	cfg := config.Default()
	cfg.BufferPages = bufferPages
	if len(enabled) > 0 {
		cfg.EnabledJoins = enabled
	}
	return NewCostModel(cfg)
}

func pages(n int64) *stats.Table {
	return &stats.Table{PageCount: n}
}

// TestSeqScanCost verifies one read per page
func TestSeqScanCost(t *testing.T) {
	cm := testCostModel(50)
	if got := cm.SeqScanCost(pages(10)); got != 10 {
		t.Errorf("expected cost 10, got %v", got)
	}
	if got := cm.SeqScanCost(pages(0)); got != 0 {
		t.Errorf("expected cost 0 for an empty table, got %v", got)
	}
}

// TestIndexScanCost verifies lookup cost plus the matching page fraction
func TestIndexScanCost(t *testing.T) {
	cm := testCostModel(50)

	// 10 pages at 10% selectivity: 1 lookup + ceil(1) page
	if got := cm.IndexScanCost(pages(10), 0.1); got != 2 {
		t.Errorf("expected cost 2, got %v", got)
	}
	// Full selectivity degenerates to lookup + full scan
	if got := cm.IndexScanCost(pages(10), 1.0); got != 11 {
		t.Errorf("expected cost 11, got %v", got)
	}
}

// TestSelectCost verifies filtering adds no I/O of its own
func TestSelectCost(t *testing.T) {
	cm := testCostModel(50)
	if got := cm.SelectCost(); got != 0 {
		t.Errorf("expected cost 0, got %v", got)
	}
}

// TestBlockNestedLoopCost verifies the buffered-group formula: outer read
// once, inner read once per group of B-2 buffered outer pages
func TestBlockNestedLoopCost(t *testing.T) {
	cm := testCostModel(50) // group size 48

	// Outer fits in one group: 10 + 1*20
	if got := cm.BlockNestedLoopCost(pages(10), pages(20)); got != 30 {
		t.Errorf("expected cost 30, got %v", got)
	}
	// ceil(100/48) = 3 inner passes: 100 + 3*20
	if got := cm.BlockNestedLoopCost(pages(100), pages(20)); got != 160 {
		t.Errorf("expected cost 160, got %v", got)
	}
}

// TestBlockNestedLoopAsymmetry verifies the smaller outer side is cheaper
// when the outer spills over one group
func TestBlockNestedLoopAsymmetry(t *testing.T) {
	cm := testCostModel(5) // group size 3
	small, large := pages(6), pages(60)

	smallOuter := cm.BlockNestedLoopCost(small, large)
	largeOuter := cm.BlockNestedLoopCost(large, small)
	if smallOuter >= largeOuter {
		t.Errorf("small outer should win: %v >= %v", smallOuter, largeOuter)
	}
}

// TestIndexNestedLoopCost verifies outer pages plus one lookup per outer tuple
func TestIndexNestedLoopCost(t *testing.T) {
	cm := testCostModel(50)
	outer := &stats.Table{PageCount: 10, TupleCount: 100}
	if got := cm.IndexNestedLoopCost(outer); got != 110 {
		t.Errorf("expected cost 110, got %v", got)
	}
}

// TestSortCost verifies the external-sort pass formula
func TestSortCost(t *testing.T) {
	cm := testCostModel(50)

	// 10 pages fit in the buffer pool: one run, no merge passes
	if got := cm.SortCost(pages(10)); got != 20 {
		t.Errorf("expected cost 20, got %v", got)
	}
	if got := cm.SortCost(pages(0)); got != 0 {
		t.Errorf("expected cost 0 for an empty input, got %v", got)
	}

	// 500 pages with 10 buffers: 50 runs, 2 merge passes over 9-way merges
	cm = testCostModel(10)
	if got := cm.SortCost(pages(500)); got != 3000 {
		t.Errorf("expected cost 3000, got %v", got)
	}
}

// TestSortMergeJoinCost verifies both sides sorted plus a linear merge
func TestSortMergeJoinCost(t *testing.T) {
	cm := testCostModel(50)
	// sort(10)=20, sort(20)=40, merge reads 10+20
	if got := cm.SortMergeJoinCost(pages(10), pages(20)); got != 90 {
		t.Errorf("expected cost 90, got %v", got)
	}
}

// TestCrossProductCost verifies the fallback costs like an unconditioned
// block nested loop
func TestCrossProductCost(t *testing.T) {
	cm := testCostModel(50)
	if got, want := cm.CrossProductCost(pages(10), pages(20)), cm.BlockNestedLoopCost(pages(10), pages(20)); got != want {
		t.Errorf("expected cross product cost %v, got %v", want, got)
	}
}

// TestJoinEnabled verifies configuration gates the physical join kinds
func TestJoinEnabled(t *testing.T) {
	cm := testCostModel(50, "sort_merge")

	if !cm.JoinEnabled(plan.KindSortMergeJoin) {
		t.Error("sort merge should be enabled")
	}
	if cm.JoinEnabled(plan.KindBlockNestedLoopJoin) {
		t.Error("block nested loop should be disabled")
	}
	if cm.JoinEnabled(plan.KindIndexNestedLoopJoin) {
		t.Error("index nested loop should be disabled")
	}
}
