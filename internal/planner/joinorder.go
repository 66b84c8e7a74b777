package planner

import (
	"log/slog"
	"math/bits"

	"github.com/leengari/mini-optimizer/internal/catalog"
	domainerrors "github.com/leengari/mini-optimizer/internal/domain/errors"
	"github.com/leengari/mini-optimizer/internal/plan"
	"github.com/leengari/mini-optimizer/internal/stats"
)

// JoinCondition is an equality join predicate between two relations,
// referenced by alias and unqualified column name
type JoinCondition struct {
	LeftAlias   string
	LeftColumn  string
	RightAlias  string
	RightColumn string
}

func (c JoinCondition) leftQualified() string  { return c.LeftAlias + "." + c.LeftColumn }
func (c JoinCondition) rightQualified() string { return c.RightAlias + "." + c.RightColumn }

// swap returns the condition with its sides exchanged
func (c JoinCondition) swap() JoinCondition {
	return JoinCondition{
		LeftAlias:   c.RightAlias,
		LeftColumn:  c.RightColumn,
		RightAlias:  c.LeftAlias,
		RightColumn: c.LeftColumn,
	}
}

// relationPlan is one base relation entering the join-order search: its
// alias and the already-chosen cheapest single-table sub-plan
type relationPlan struct {
	Alias string
	Node  *plan.Node
}

// JoinOrderOptimizer runs the bottom-up dynamic-programming search over
// relation subsets: for every subset it keeps the minimum-cost operator
// tree producing that subset's join, reusing the retained plans of smaller
// subsets. Subtrees are shared by reference between memo entries; nodes are
// immutable once built, so sharing is safe.
type JoinOrderOptimizer struct {
	cm      *CostModel
	cat     catalog.Catalog
	obs     Observer
	buildID string
}

// NewJoinOrderOptimizer creates a search instance
func NewJoinOrderOptimizer(cm *CostModel, cat catalog.Catalog, obs Observer, buildID string) *JoinOrderOptimizer {
	return &JoinOrderOptimizer{cm: cm, cat: cat, obs: obs, buildID: buildID}
}

// Optimize returns the minimum-cost join tree over all relations.
// Only splits connected by a declared join condition are considered; a
// subset with no join candidate, because no split is connected or because
// configuration disables every applicable join kind, falls back to a cross
// product so the search always terminates with a complete plan.
// Enumeration order is fixed (ascending subset masks, fixed join-kind order)
// and ties keep the first candidate, so identical inputs always yield the
// identical tree.
func (o *JoinOrderOptimizer) Optimize(rels []relationPlan, conds []JoinCondition) (*plan.Node, error) {
	n := len(rels)
	if n == 0 {
		return nil, domainerrors.NewOptimizerInternal("no relations to join")
	}
	if n > 63 {
		return nil, domainerrors.NewOptimizerInternal("subset encoding supports at most 63 relations, got %d", n)
	}
	if n == 1 {
		return rels[0].Node, nil
	}

	aliasBit := make(map[string]uint64, n)
	for i, r := range rels {
		aliasBit[r.Alias] = 1 << uint(i)
	}

	full := uint64(1)<<uint(n) - 1
	memo := make(map[uint64]*plan.Node)
	for i, r := range rels {
		memo[uint64(1)<<uint(i)] = r.Node
	}

	for size := 2; size <= n; size++ {
		for mask := uint64(1); mask <= full; mask++ {
			if bits.OnesCount64(mask) != size {
				continue
			}

			best := o.bestSplit(memo, mask, conds, aliasBit, false)
			if best == nil {
				// No split of this subset produced a join: allow cross
				// products so a plan exists
				best = o.bestSplit(memo, mask, conds, aliasBit, true)
			}
			if best == nil {
				return nil, domainerrors.NewOptimizerInternal("no plan for relation subset %b", mask)
			}

			memo[mask] = best
			notify(o.obs, o.buildID, EventSubsetPlanned, map[string]interface{}{
				"subset": mask,
				"kind":   best.NodeType(),
				"cost":   best.Cost,
			})
		}
	}

	final, ok := memo[full]
	if !ok {
		return nil, domainerrors.NewOptimizerInternal("full relation set %b has no plan", full)
	}

	slog.Debug("join order chosen", "relations", n, "cost", final.Cost)
	return final, nil
}

// bestSplit scans every split of mask into a subset and its complement and
// keeps the cheapest join candidate. With allowCross set, splits without a
// join candidate produce cross-product candidates instead.
func (o *JoinOrderOptimizer) bestSplit(memo map[uint64]*plan.Node, mask uint64, conds []JoinCondition, aliasBit map[string]uint64, allowCross bool) *plan.Node {
	var best *plan.Node

	for s1 := uint64(1); s1 < mask; s1++ {
		if s1&mask != s1 {
			continue
		}
		s2 := mask ^ s1
		left, right := memo[s1], memo[s2]
		if left == nil || right == nil {
			continue
		}

		oriented := condsBetween(conds, aliasBit, s1, s2)
		var cand *plan.Node
		if len(oriented) > 0 {
			cand = o.bestJoin(left, right, oriented)
		}
		// A connected split can still yield no candidate when configuration
		// disables every applicable join kind; the fallback pass covers it
		// like an unconnected split, so a complete plan always exists
		if cand == nil && allowCross {
			cand = o.crossProduct(left, right)
		}

		// Strict less keeps the first candidate on ties, preserving the
		// deterministic enumeration order
		if cand != nil && (best == nil || cand.Cost < best.Cost) {
			best = cand
		}
	}
	return best
}

// condsBetween returns the join conditions connecting the two subsets,
// oriented so the left side lives in s1, in declaration order
func condsBetween(conds []JoinCondition, aliasBit map[string]uint64, s1, s2 uint64) []JoinCondition {
	var out []JoinCondition
	for _, c := range conds {
		lb, rb := aliasBit[c.LeftAlias], aliasBit[c.RightAlias]
		switch {
		case lb&s1 != 0 && rb&s2 != 0:
			out = append(out, c)
		case lb&s2 != 0 && rb&s1 != 0:
			out = append(out, c.swap())
		}
	}
	return out
}

// bestJoin costs every enabled physical join kind for every connecting
// condition and returns the cheapest candidate
func (o *JoinOrderOptimizer) bestJoin(left, right *plan.Node, conds []JoinCondition) *plan.Node {
	var best *plan.Node

	for _, cond := range conds {
		outStats, err := stats.Join(left.Stats, right.Stats, cond.leftQualified(), cond.rightQualified())
		if err != nil {
			// Keys were validated at plan construction; a miss here is a
			// broken invariant surfaced by the final memo check
			continue
		}

		for _, kind := range joinKindOrder {
			if !o.cm.JoinEnabled(kind) {
				continue
			}

			var opCost float64
			switch kind {
			case plan.KindBlockNestedLoopJoin:
				opCost = o.cm.BlockNestedLoopCost(left.Stats, right.Stats)
			case plan.KindIndexNestedLoopJoin:
				if !o.indexUsable(right, cond.RightAlias, cond.RightColumn) {
					continue
				}
				opCost = o.cm.IndexNestedLoopCost(left.Stats)
			case plan.KindSortMergeJoin:
				opCost = o.cm.SortMergeJoinCost(left.Stats, right.Stats)
			default:
				continue
			}

			cand := &plan.Node{
				Kind:     kind,
				LeftKey:  cond.leftQualified(),
				RightKey: cond.rightQualified(),
				Left:     left,
				Right:    right,
				Stats:    outStats,
				Cost:     left.Cost + right.Cost + opCost,
			}
			if best == nil || cand.Cost < best.Cost {
				best = cand
			}
		}
	}
	return best
}

// indexUsable reports whether the inner side of an index nested loop is a
// base relation with an index on the join key. Composed inner subtrees have
// no materialized index to probe.
func (o *JoinOrderOptimizer) indexUsable(inner *plan.Node, alias, column string) bool {
	if inner.Kind != plan.KindSeqScan && inner.Kind != plan.KindIndexScan {
		return false
	}
	if inner.Alias != alias {
		return false
	}
	return o.cat.HasIndex(inner.Table, column)
}

// crossProduct builds a fallback candidate joining two disconnected subsets
func (o *JoinOrderOptimizer) crossProduct(left, right *plan.Node) *plan.Node {
	return &plan.Node{
		Kind:  plan.KindCrossProduct,
		Left:  left,
		Right: right,
		Stats: stats.Cross(left.Stats, right.Stats),
		Cost:  left.Cost + right.Cost + o.cm.CrossProductCost(left.Stats, right.Stats),
	}
}
