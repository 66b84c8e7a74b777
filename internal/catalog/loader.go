package catalog

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/leengari/mini-optimizer/internal/domain/data"
)

// TableMetaFile is the on-disk meta.json shape of one table directory
type TableMetaFile struct {
	Name    string           `json:"name"`
	Columns []ColumnMetaFile `json:"columns"`
	Indexes []string         `json:"indexes,omitempty"`
}

type ColumnMetaFile struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// LoadDir loads every table directory (meta.json + data.json) under path
// into a MemoryCatalog. Index declarations in meta.json become btree
// indexes, so the optimizer sees their existence flags.
func LoadDir(path string, pageSize int64, logger *slog.Logger) (*MemoryCatalog, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading catalog directory %s", path)
	}

	cat := NewMemoryCatalog(pageSize)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := loadTable(cat, filepath.Join(path, entry.Name()), logger); err != nil {
			return nil, errors.Wrapf(err, "loading table %s", entry.Name())
		}
	}

	logger.Info("catalog loaded",
		slog.String("path", path),
		slog.Int("table_count", len(cat.Tables())),
	)

	return cat, nil
}

func loadTable(cat *MemoryCatalog, path string, logger *slog.Logger) error {
	metaPath := filepath.Join(path, "meta.json")
	dataPath := filepath.Join(path, "data.json")

	metaBytes, err := os.ReadFile(metaPath)
	if err != nil {
		return err
	}

	var meta TableMetaFile
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return err
	}

	columns := make([]Column, 0, len(meta.Columns))
	for _, c := range meta.Columns {
		columns = append(columns, Column{
			Name: c.Name,
			Type: ColumnType(c.Type),
		})
	}

	rows := []data.Row{}
	if _, err := os.Stat(dataPath); err == nil {
		dataBytes, err := os.ReadFile(dataPath)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(dataBytes, &rows); err != nil {
			return err
		}
	}

	// JSON decodes every number as float64; restore INT columns to int64
	for i := range rows {
		normalizeRowTypes(rows[i], columns)
	}

	cat.AddTable(meta.Name, columns, rows)

	for _, idxCol := range meta.Indexes {
		if err := cat.CreateIndex(meta.Name, idxCol); err != nil {
			return err
		}
	}

	logger.Info("table loaded",
		slog.String("table", meta.Name),
		slog.Int("rows", len(rows)),
		slog.Int("indexes", len(meta.Indexes)),
	)

	return nil
}

func normalizeRowTypes(row data.Row, columns []Column) {
	for _, col := range columns {
		if col.Type != ColumnTypeInt {
			continue
		}
		if f, ok := row.Data[col.Name].(float64); ok {
			row.Data[col.Name] = int64(f)
		}
	}
}
