package stats

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/leengari/mini-optimizer/internal/catalog"
	"github.com/leengari/mini-optimizer/internal/domain/transaction"
)

// BuildTable constructs base-table statistics by fully scanning every column
// of the table through the storage collaborator. Tuple count and page count
// come from the collaborator's metadata; one histogram is built per column.
func BuildTable(tx *transaction.Transaction, cat catalog.Catalog, table string, bucketCount int) (*Table, error) {
	meta, err := cat.Table(table)
	if err != nil {
		return nil, err
	}

	out := &Table{
		TupleCount:   meta.RowCount,
		AvgTupleSize: meta.AvgRowSize,
		PageCount:    meta.PageCount,
		PageSize:     cat.PageSize(),
		Columns:      make(map[string]*Column, len(meta.Columns)),
	}

	for _, col := range meta.Columns {
		values := make([]float64, 0, meta.RowCount)
		var nulls int64

		err := cat.ScanColumn(tx, table, col.Name, func(v interface{}) error {
			if v == nil {
				nulls++
				return nil
			}
			q, err := Quantize(v)
			if err != nil {
				return errors.Wrapf(err, "column %s.%s", table, col.Name)
			}
			values = append(values, q)
			return nil
		})
		if err != nil {
			return nil, err
		}

		h := BuildHistogram(bucketCount, values)
		out.Columns[col.Name] = NewColumn(h, nulls)

		slog.Debug("column statistics built",
			"table", table,
			"column", col.Name,
			"values", len(values),
			"nulls", nulls,
			"distinct", h.DistinctCount(),
		)
	}

	return out, nil
}
