package planner

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/leengari/mini-optimizer/internal/catalog"
	"github.com/leengari/mini-optimizer/internal/config"
	domainerrors "github.com/leengari/mini-optimizer/internal/domain/errors"
	"github.com/leengari/mini-optimizer/internal/domain/transaction"
	"github.com/leengari/mini-optimizer/internal/plan"
	"github.com/leengari/mini-optimizer/internal/stats"
)

type scanDecl struct {
	Alias string
	Table string
}

type filterDecl struct {
	Alias  string
	Column string
	Op     stats.Op
	Value  interface{}
}

// QueryPlanBuilder collects the declared scans, filters, joins and aliases
// of one query, then orchestrates the optimization pipeline: base-table
// statistics, per-relation access paths with every single-table predicate
// pushed down, and the join-order search over the remaining multi-table
// predicates. The resulting operator tree is handed to the external
// execution collaborator; this core never produces tuples.
type QueryPlanBuilder struct {
	cat      catalog.Catalog
	statsMgr *stats.Manager
	cm       *CostModel
	obs      Observer

	scans   []scanDecl
	filters []filterDecl
	joins   []JoinCondition
}

// NewQueryPlanBuilder creates a builder over a catalog and statistics
// manager, configured by cfg
func NewQueryPlanBuilder(cat catalog.Catalog, mgr *stats.Manager, cfg *config.Config) *QueryPlanBuilder {
	return &QueryPlanBuilder{
		cat:      cat,
		statsMgr: mgr,
		cm:       NewCostModel(cfg),
		obs:      NewLoggingObserver(),
	}
}

// WithObserver replaces the lifecycle observer
func (b *QueryPlanBuilder) WithObserver(obs Observer) *QueryPlanBuilder {
	b.obs = obs
	return b
}

// Scan declares a base relation under an alias. An empty alias binds the
// table under its own name.
func (b *QueryPlanBuilder) Scan(table, alias string) *QueryPlanBuilder {
	if alias == "" {
		alias = table
	}
	b.scans = append(b.scans, scanDecl{Alias: alias, Table: table})
	return b
}

// Filter declares a single-table predicate `alias.column op value`
func (b *QueryPlanBuilder) Filter(alias, column string, op stats.Op, value interface{}) *QueryPlanBuilder {
	b.filters = append(b.filters, filterDecl{Alias: alias, Column: column, Op: op, Value: value})
	return b
}

// Join declares an equality join condition between two relations
func (b *QueryPlanBuilder) Join(leftAlias, leftColumn, rightAlias, rightColumn string) *QueryPlanBuilder {
	b.joins = append(b.joins, JoinCondition{
		LeftAlias:   leftAlias,
		LeftColumn:  leftColumn,
		RightAlias:  rightAlias,
		RightColumn: rightColumn,
	})
	return b
}

// Plan validates the declarations against the catalog, then runs the
// optimization pipeline and returns the lowest-cost operator tree.
// Schema problems fail here, before any cost estimation is attempted.
func (b *QueryPlanBuilder) Plan(tx *transaction.Transaction) (*plan.Node, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	buildID := uuid.New().String()
	slog.Debug("plan build started",
		"build_id", buildID,
		"relations", len(b.scans),
		"filters", len(b.filters),
		"joins", len(b.joins),
	)

	rels := make([]relationPlan, 0, len(b.scans))
	for _, scan := range b.scans {
		base, err := b.statsMgr.TableStats(tx, scan.Table)
		if err != nil {
			return nil, err
		}
		qualified := base.Qualify(scan.Alias)
		notify(b.obs, buildID, EventStatsBuilt, map[string]interface{}{
			"table":  scan.Table,
			"alias":  scan.Alias,
			"tuples": qualified.TupleCount,
			"pages":  qualified.PageCount,
		})

		// Predicate pushdown: every local filter is applied inside the
		// relation's sub-plan, before joins are considered
		preds := b.localPredicates(scan.Alias)
		node, err := bestAccessPath(b.cm, b.cat, scan.Alias, scan.Table, qualified, preds)
		if err != nil {
			return nil, err
		}
		notify(b.obs, buildID, EventAccessPathChosen, map[string]interface{}{
			"alias": scan.Alias,
			"kind":  node.NodeType(),
			"cost":  node.Cost,
		})

		rels = append(rels, relationPlan{Alias: scan.Alias, Node: node})
	}

	optimizer := NewJoinOrderOptimizer(b.cm, b.cat, b.obs, buildID)
	root, err := optimizer.Optimize(rels, b.joins)
	if err != nil {
		return nil, err
	}

	notify(b.obs, buildID, EventPlanChosen, map[string]interface{}{
		"kind":  root.NodeType(),
		"cost":  root.Cost,
		"nodes": plan.CountNodes(root),
	})

	return root, nil
}

// localPredicates returns the declared filters of one relation, with
// alias-qualified column names matching the relation's statistics
func (b *QueryPlanBuilder) localPredicates(alias string) []plan.Predicate {
	var preds []plan.Predicate
	for _, f := range b.filters {
		if f.Alias != alias {
			continue
		}
		preds = append(preds, plan.Predicate{
			Column: alias + "." + f.Column,
			Op:     f.Op,
			Value:  f.Value,
		})
	}
	return preds
}

// validate checks every declaration against the catalog and fails fast with
// a SchemaError on the first mismatch
func (b *QueryPlanBuilder) validate() error {
	if len(b.scans) == 0 {
		return domainerrors.NewOptimizerInternal("no relations declared")
	}

	metas := make(map[string]*catalog.TableMeta, len(b.scans))
	for _, scan := range b.scans {
		if _, ok := metas[scan.Alias]; ok {
			return domainerrors.NewDuplicateAlias(scan.Alias)
		}
		meta, err := b.cat.Table(scan.Table)
		if err != nil {
			return err
		}
		metas[scan.Alias] = meta
	}

	for _, f := range b.filters {
		meta, ok := metas[f.Alias]
		if !ok {
			return domainerrors.NewUnknownTable(f.Alias)
		}
		col := meta.Column(f.Column)
		if col == nil {
			return domainerrors.NewUnknownColumn(f.Alias, f.Column)
		}
		if !valueMatchesType(f.Value, col.Type) {
			return domainerrors.NewTypeMismatch(f.Alias, f.Column, f.Value, string(col.Type))
		}
	}

	for _, j := range b.joins {
		leftMeta, ok := metas[j.LeftAlias]
		if !ok {
			return domainerrors.NewUnknownTable(j.LeftAlias)
		}
		rightMeta, ok := metas[j.RightAlias]
		if !ok {
			return domainerrors.NewUnknownTable(j.RightAlias)
		}
		// A join condition naming a missing column is a hard error, never
		// a silent cross-product fallback
		if leftMeta.Column(j.LeftColumn) == nil {
			return domainerrors.NewUnknownColumn(j.LeftAlias, j.LeftColumn)
		}
		if rightMeta.Column(j.RightColumn) == nil {
			return domainerrors.NewUnknownColumn(j.RightAlias, j.RightColumn)
		}
	}

	return nil
}

// valueMatchesType checks a predicate value against a column's logical type.
// Integers are accepted where floats are expected; nothing else is coerced.
func valueMatchesType(v interface{}, t catalog.ColumnType) bool {
	switch t {
	case catalog.ColumnTypeInt:
		switch v.(type) {
		case int, int64:
			return true
		}
	case catalog.ColumnTypeFloat:
		switch v.(type) {
		case float64, int, int64:
			return true
		}
	case catalog.ColumnTypeText:
		_, ok := v.(string)
		return ok
	case catalog.ColumnTypeBool:
		_, ok := v.(bool)
		return ok
	}
	return false
}
