package catalog

import (
	"github.com/leengari/mini-optimizer/internal/domain/transaction"
)

// ColumnType identifies the logical type of a column
type ColumnType string

const (
	ColumnTypeInt   ColumnType = "INT"
	ColumnTypeFloat ColumnType = "FLOAT"
	ColumnTypeText  ColumnType = "TEXT"
	ColumnTypeBool  ColumnType = "BOOL"
)

// Column describes one column of a table
type Column struct {
	Name string
	Type ColumnType
}

// TableMeta is the table-level metadata the storage collaborator exposes to
// the optimizer: cardinality, page occupancy and average row width. The
// optimizer never sees the physical layout behind these numbers.
type TableMeta struct {
	Name       string
	RowCount   int64
	PageCount  int64
	AvgRowSize int64
	Columns    []Column
}

// Column returns the column with the given name, or nil
func (m *TableMeta) Column(name string) *Column {
	for i := range m.Columns {
		if m.Columns[i].Name == name {
			return &m.Columns[i]
		}
	}
	return nil
}

// Catalog is the boundary to the storage/schema collaborator. Statistics
// construction is its only reader of raw values: ScanColumn is called once
// per column when base-table statistics are built.
type Catalog interface {
	// Table returns metadata for a named table
	Table(name string) (*TableMeta, error)

	// Tables lists the names of all known tables
	Tables() []string

	// PageSize returns the page size constant of the underlying storage
	PageSize() int64

	// HasIndex reports whether an index exists on (table, column)
	HasIndex(table, column string) bool

	// ScanColumn iterates every raw value of one column under the given
	// snapshot. NULLs are passed to fn as nil.
	ScanColumn(tx *transaction.Transaction, table, column string, fn func(v interface{}) error) error
}
