package stats

import (
	"log/slog"
	"sync"

	"github.com/leengari/mini-optimizer/internal/catalog"
	"github.com/leengari/mini-optimizer/internal/domain/transaction"
)

// Manager caches base-table statistics per table name. Built records are
// immutable, so handing the same pointer to several optimization runs is
// safe; consumers derive, never mutate.
type Manager struct {
	mu          sync.RWMutex
	cat         catalog.Catalog
	bucketCount int
	cache       map[string]*Table
}

// NewManager creates a statistics manager over a catalog
func NewManager(cat catalog.Catalog, bucketCount int) *Manager {
	return &Manager{
		cat:         cat,
		bucketCount: bucketCount,
		cache:       make(map[string]*Table),
	}
}

// TableStats returns the cached statistics for a table, building them with a
// full scan on first use
func (m *Manager) TableStats(tx *transaction.Transaction, table string) (*Table, error) {
	m.mu.RLock()
	cached, ok := m.cache[table]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	built, err := BuildTable(tx, m.cat, table, m.bucketCount)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	// Another caller may have built the same table meanwhile; first write
	// wins so all consumers see one snapshot
	if existing, ok := m.cache[table]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.cache[table] = built
	m.mu.Unlock()

	slog.Debug("table statistics cached", "table", table, "tuples", built.TupleCount, "pages", built.PageCount)
	return built, nil
}

// Refresh drops the cached statistics of a table and rebuilds them
func (m *Manager) Refresh(tx *transaction.Transaction, table string) (*Table, error) {
	m.mu.Lock()
	delete(m.cache, table)
	m.mu.Unlock()
	return m.TableStats(tx, table)
}

// Invalidate drops every cached record
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.cache = make(map[string]*Table)
	m.mu.Unlock()
}
