package planner

import (
	"log/slog"

	"github.com/leengari/mini-optimizer/internal/catalog"
	"github.com/leengari/mini-optimizer/internal/plan"
	"github.com/leengari/mini-optimizer/internal/stats"
)

// bestAccessPath builds the cheapest single-table sub-plan for one relation:
// a sequential scan, or an index scan when an equality predicate hits an
// indexed column and the cost model scores it lower. All remaining local
// predicates are applied on top as select nodes, so every single-table
// filter is pushed below the joins.
func bestAccessPath(cm *CostModel, cat catalog.Catalog, alias, table string, base *stats.Table, filters []plan.Predicate) (*plan.Node, error) {
	best := &plan.Node{
		Kind:  plan.KindSeqScan,
		Table: table,
		Alias: alias,
		Stats: base,
		Cost:  cm.SeqScanCost(base),
	}
	chosenFilter := -1

	for i, f := range filters {
		if f.Op != stats.OpEq {
			continue
		}
		if !cat.HasIndex(table, rawColumn(f.Column)) {
			continue
		}

		derived, sel, err := base.FilterColumn(f.Column, f.Op, f.Value)
		if err != nil {
			return nil, err
		}
		cost := cm.IndexScanCost(base, sel)
		if cost >= best.Cost {
			continue
		}

		pred := f
		best = &plan.Node{
			Kind:  plan.KindIndexScan,
			Table: table,
			Alias: alias,
			Pred:  &pred,
			Stats: derived,
			Cost:  cost,
		}
		chosenFilter = i
	}

	slog.Debug("access path chosen",
		"table", table,
		"alias", alias,
		"kind", best.NodeType(),
		"cost", best.Cost,
	)

	// Remaining local predicates become select nodes over the chosen scan
	node := best
	for i, f := range filters {
		if i == chosenFilter {
			continue
		}
		derived, _, err := node.Stats.FilterColumn(f.Column, f.Op, f.Value)
		if err != nil {
			return nil, err
		}
		pred := f
		node = &plan.Node{
			Kind:  plan.KindSelect,
			Pred:  &pred,
			Left:  node,
			Stats: derived,
			Cost:  node.Cost + cm.SelectCost(),
		}
	}

	return node, nil
}

// rawColumn strips an alias qualifier from a column name
func rawColumn(qualified string) string {
	for i := 0; i < len(qualified); i++ {
		if qualified[i] == '.' {
			return qualified[i+1:]
		}
	}
	return qualified
}
