package catalog

import (
	"log/slog"
	"sync"

	"github.com/google/btree"
	"github.com/montanaflynn/stats"

	"github.com/leengari/mini-optimizer/internal/domain/data"
	domainerrors "github.com/leengari/mini-optimizer/internal/domain/errors"
	"github.com/leengari/mini-optimizer/internal/domain/transaction"
)

// indexEntry is one key of a column index, with the positions of the rows
// holding that key
type indexEntry struct {
	key       interface{}
	positions []int
}

func (e *indexEntry) Less(than btree.Item) bool {
	return data.Compare(e.key, than.(*indexEntry).key) < 0
}

// memTable is one in-memory table: metadata, rows, and btree indexes per
// indexed column
type memTable struct {
	meta    *TableMeta
	rows    []data.Row
	indexes map[string]*btree.BTree
}

// MemoryCatalog is an in-memory implementation of the storage collaborator,
// used by the CLI and by tests. Tables are immutable once registered, so
// scans need no snapshot isolation beyond the read lock.
type MemoryCatalog struct {
	mu       sync.RWMutex
	pageSize int64
	tables   map[string]*memTable
}

// NewMemoryCatalog creates an empty catalog with the given page size
func NewMemoryCatalog(pageSize int64) *MemoryCatalog {
	return &MemoryCatalog{
		pageSize: pageSize,
		tables:   make(map[string]*memTable),
	}
}

// AddTable registers a table with its rows. Row count, page count and
// average row width are derived from the rows themselves.
func (c *MemoryCatalog) AddTable(name string, columns []Column, rows []data.Row) {
	c.mu.Lock()
	defer c.mu.Unlock()

	meta := &TableMeta{
		Name:     name,
		RowCount: int64(len(rows)),
		Columns:  columns,
	}
	meta.AvgRowSize = averageRowSize(rows)
	meta.PageCount = pagesFor(meta.RowCount, meta.AvgRowSize, c.pageSize)

	c.tables[name] = &memTable{
		meta:    meta,
		rows:    rows,
		indexes: make(map[string]*btree.BTree),
	}

	slog.Debug("table registered",
		"table", name,
		"rows", meta.RowCount,
		"pages", meta.PageCount,
		"avg_row_size", meta.AvgRowSize,
	)
}

// CreateIndex builds a btree index over one column. The optimizer only
// consults its existence; Lookup exercises the structure itself.
func (c *MemoryCatalog) CreateIndex(table, column string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tables[table]
	if !ok {
		return domainerrors.NewUnknownTable(table)
	}
	if t.meta.Column(column) == nil {
		return domainerrors.NewUnknownColumn(table, column)
	}

	idx := btree.New(32)
	for pos, row := range t.rows {
		v, ok := row.Value(column)
		if !ok || v == nil {
			continue
		}
		probe := &indexEntry{key: v}
		if item := idx.Get(probe); item != nil {
			entry := item.(*indexEntry)
			entry.positions = append(entry.positions, pos)
			continue
		}
		probe.positions = []int{pos}
		idx.ReplaceOrInsert(probe)
	}
	t.indexes[column] = idx

	slog.Debug("index built", "table", table, "column", column, "keys", idx.Len())
	return nil
}

// Lookup returns the rows matching an exact key through the column index.
// Returns false when no index exists on the column.
func (c *MemoryCatalog) Lookup(table, column string, key interface{}) ([]data.Row, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[table]
	if !ok {
		return nil, false
	}
	idx, ok := t.indexes[column]
	if !ok {
		return nil, false
	}

	item := idx.Get(&indexEntry{key: key})
	if item == nil {
		return nil, true
	}
	entry := item.(*indexEntry)
	rows := make([]data.Row, 0, len(entry.positions))
	for _, pos := range entry.positions {
		rows = append(rows, t.rows[pos])
	}
	return rows, true
}

// Table implements Catalog
func (c *MemoryCatalog) Table(name string) (*TableMeta, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[name]
	if !ok {
		return nil, domainerrors.NewUnknownTable(name)
	}
	return t.meta, nil
}

// Tables implements Catalog
func (c *MemoryCatalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	return names
}

// PageSize implements Catalog
func (c *MemoryCatalog) PageSize() int64 {
	return c.pageSize
}

// HasIndex implements Catalog
func (c *MemoryCatalog) HasIndex(table, column string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[table]
	if !ok {
		return false
	}
	_, ok = t.indexes[column]
	return ok
}

// ScanColumn implements Catalog
func (c *MemoryCatalog) ScanColumn(tx *transaction.Transaction, table, column string, fn func(v interface{}) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if tx != nil {
		slog.Debug("column scan", "table", table, "column", column, "tx_id", tx.ID)
	}

	t, ok := c.tables[table]
	if !ok {
		return domainerrors.NewUnknownTable(table)
	}
	if t.meta.Column(column) == nil {
		return domainerrors.NewUnknownColumn(table, column)
	}

	for _, row := range t.rows {
		v, ok := row.Value(column)
		if !ok {
			v = nil
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

// averageRowSize estimates row width from the JSON-encoded sizes of the rows
func averageRowSize(rows []data.Row) int64 {
	if len(rows) == 0 {
		return 0
	}
	sizes := make([]float64, len(rows))
	for i, row := range rows {
		sizes[i] = float64(row.EncodedSize())
	}
	mean, err := stats.Mean(sizes)
	if err != nil {
		return 0
	}
	return int64(mean + 0.5)
}

// pagesFor computes ceil(rows*width/pageSize), never below 1 for a non-empty
// table
func pagesFor(rows, width, pageSize int64) int64 {
	if rows <= 0 || width <= 0 || pageSize <= 0 {
		return 0
	}
	pages := (rows*width + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}
