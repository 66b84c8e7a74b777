package stats

import (
	"fmt"
	"testing"

	"github.com/leengari/mini-optimizer/internal/catalog"
	"github.com/leengari/mini-optimizer/internal/domain/data"
	"github.com/leengari/mini-optimizer/internal/domain/transaction"
)

// seedCatalog builds an in-memory catalog with one employees table: 200 rows,
// an int id, a float salary and a bool active flag with a few NULLs.
func seedCatalog(t *testing.T) *catalog.MemoryCatalog {
	t.Helper()

	cat := catalog.NewMemoryCatalog(4096)
	rows := make([]data.Row, 0, 200)
	for i := 0; i < 200; i++ {
		var active interface{} = i%4 == 0
		if i%50 == 0 {
			active = nil
		}
		rows = append(rows, data.NewRow(map[string]interface{}{
			"id":     int64(i),
			"name":   fmt.Sprintf("emp-%03d", i),
			"salary": 30000.0 + float64(i)*100,
			"active": active,
		}))
	}
	cat.AddTable("employees", []catalog.Column{
		{Name: "id", Type: catalog.ColumnTypeInt},
		{Name: "name", Type: catalog.ColumnTypeText},
		{Name: "salary", Type: catalog.ColumnTypeFloat},
		{Name: "active", Type: catalog.ColumnTypeBool},
	}, rows)
	return cat
}

// TestBuildTable verifies full-scan statistics construction: metadata carried
// over, one histogram per column, NULLs counted separately
func TestBuildTable(t *testing.T) {
	cat := seedCatalog(t)
	tx := transaction.NewTransaction()
	defer tx.Close()

	s, err := BuildTable(tx, cat, "employees", 10)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if s.TupleCount != 200 {
		t.Errorf("expected 200 tuples, got %d", s.TupleCount)
	}
	if s.PageCount < 1 {
		t.Errorf("expected at least one page, got %d", s.PageCount)
	}
	if len(s.Columns) != 4 {
		t.Fatalf("expected 4 column records, got %d", len(s.Columns))
	}

	id := s.Columns["id"]
	if id.Hist.TotalCount() != 200 {
		t.Errorf("id histogram total %d, expected 200", id.Hist.TotalCount())
	}
	if id.Min != 0 || id.Max != 199 {
		t.Errorf("id domain [%v, %v], expected [0, 199]", id.Min, id.Max)
	}

	active := s.Columns["active"]
	if active.NullCount != 4 {
		t.Errorf("expected 4 NULLs on active, got %d", active.NullCount)
	}
	if active.Hist.TotalCount() != 196 {
		t.Errorf("active histogram total %d, expected 196 non-NULL values", active.Hist.TotalCount())
	}
}

// TestBuildTableUnknown verifies an unknown table surfaces the catalog error
func TestBuildTableUnknown(t *testing.T) {
	cat := seedCatalog(t)
	tx := transaction.NewTransaction()
	defer tx.Close()

	if _, err := BuildTable(tx, cat, "nope", 10); err == nil {
		t.Error("expected an error for an unknown table")
	}
}

// TestManagerCaching verifies the manager builds once and hands out the same
// snapshot until refreshed
func TestManagerCaching(t *testing.T) {
	cat := seedCatalog(t)
	mgr := NewManager(cat, 10)
	tx := transaction.NewTransaction()
	defer tx.Close()

	first, err := mgr.TableStats(tx, "employees")
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := mgr.TableStats(tx, "employees")
	if err != nil {
		t.Fatalf("cached fetch: %v", err)
	}
	if first != second {
		t.Error("expected the cached snapshot pointer on the second fetch")
	}

	refreshed, err := mgr.Refresh(tx, "employees")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed == first {
		t.Error("refresh should rebuild, not return the old snapshot")
	}

	mgr.Invalidate()
	rebuilt, err := mgr.TableStats(tx, "employees")
	if err != nil {
		t.Fatalf("rebuild after invalidate: %v", err)
	}
	if rebuilt == refreshed {
		t.Error("invalidate should drop the cached snapshot")
	}
}
