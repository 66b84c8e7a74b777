package planner

import (
	"math"

	"github.com/leengari/mini-optimizer/internal/config"
	"github.com/leengari/mini-optimizer/internal/plan"
	"github.com/leengari/mini-optimizer/internal/stats"
)

// CostModel translates input statistics into estimated I/O cost (page
// reads) per physical operator kind. CPU work is not modeled; page reads
// dominate in this storage model.
type CostModel struct {
	bufferPages     int64
	indexLookupCost float64
	enabledJoins    map[plan.Kind]bool
}

// joinKindNames maps the configuration names onto operator kinds
var joinKindNames = map[string]plan.Kind{
	"block_nested_loop": plan.KindBlockNestedLoopJoin,
	"index_nested_loop": plan.KindIndexNestedLoopJoin,
	"sort_merge":        plan.KindSortMergeJoin,
}

// joinKindOrder fixes the enumeration order of join kinds during the DP
// search, so equal-cost candidates tie-break reproducibly
var joinKindOrder = []plan.Kind{
	plan.KindBlockNestedLoopJoin,
	plan.KindIndexNestedLoopJoin,
	plan.KindSortMergeJoin,
}

// NewCostModel builds a cost model from the configuration surface
func NewCostModel(cfg *config.Config) *CostModel {
	enabled := make(map[plan.Kind]bool, len(cfg.EnabledJoins))
	for _, name := range cfg.EnabledJoins {
		if kind, ok := joinKindNames[name]; ok {
			enabled[kind] = true
		}
	}
	return &CostModel{
		bufferPages:     cfg.BufferPages,
		indexLookupCost: cfg.IndexLookupCost,
		enabledJoins:    enabled,
	}
}

// JoinEnabled reports whether a join kind may be considered
func (cm *CostModel) JoinEnabled(k plan.Kind) bool {
	return cm.enabledJoins[k]
}

// SeqScanCost is one read per page of the table
func (cm *CostModel) SeqScanCost(s *stats.Table) float64 {
	return float64(s.PageCount)
}

// IndexScanCost models an index-assisted scan retrieving the matching
// fraction of the table: the lookup itself plus the pages holding matches.
func (cm *CostModel) IndexScanCost(s *stats.Table, selectivity float64) float64 {
	matching := math.Ceil(float64(s.PageCount) * selectivity)
	return cm.indexLookupCost + matching
}

// SelectCost adds no I/O: filtering happens in the same pass as the child's
// scan, whose cost is already counted
func (cm *CostModel) SelectCost() float64 {
	return 0
}

// BlockNestedLoopCost reads the outer once, and the inner once per group of
// buffered outer pages (two buffer pages are reserved for input and output)
func (cm *CostModel) BlockNestedLoopCost(outer, inner *stats.Table) float64 {
	group := cm.bufferPages - 2
	if group < 1 {
		group = 1
	}
	outerPages := float64(outer.PageCount)
	innerPages := float64(inner.PageCount)
	return outerPages + math.Ceil(outerPages/float64(group))*innerPages
}

// IndexNestedLoopCost reads the outer once and performs one index lookup
// per outer tuple
func (cm *CostModel) IndexNestedLoopCost(outer *stats.Table) float64 {
	return float64(outer.PageCount) + float64(outer.TupleCount)*cm.indexLookupCost
}

// SortCost models a multi-pass external merge sort: one run-formation pass
// plus merge passes over B-1 way merges, each pass reading and writing
// every page
func (cm *CostModel) SortCost(s *stats.Table) float64 {
	pages := float64(s.PageCount)
	if pages <= 0 {
		return 0
	}
	buffers := float64(cm.bufferPages)
	runs := math.Ceil(pages / buffers)
	mergePasses := 0.0
	if runs > 1 && buffers > 2 {
		mergePasses = math.Ceil(math.Log(runs) / math.Log(buffers-1))
	} else if runs > 1 {
		mergePasses = runs - 1
	}
	return 2 * pages * (1 + mergePasses)
}

// SortMergeJoinCost sorts each side, then merges both in one linear pass
func (cm *CostModel) SortMergeJoinCost(left, right *stats.Table) float64 {
	return cm.SortCost(left) + cm.SortCost(right) +
		float64(left.PageCount) + float64(right.PageCount)
}

// CrossProductCost is a block nested loop without a join condition
func (cm *CostModel) CrossProductCost(outer, inner *stats.Table) float64 {
	return cm.BlockNestedLoopCost(outer, inner)
}
