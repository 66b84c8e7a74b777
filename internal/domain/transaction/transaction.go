package transaction

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// txIDCounter is an atomic counter for generating unique numeric snapshot IDs
var txIDCounter uint64

// Transaction is the read snapshot handle the optimizer passes to the storage
// collaborator. The optimizer core never writes: the handle only scopes
// catalog scans (statistics construction) to a consistent view of the data.
type Transaction struct {
	ID        string    // Unique snapshot identifier (UUID)
	TxID      uint64    // Numeric ID for collaborators that key on integers
	Active    bool      // Whether the snapshot is still usable
	StartTime time.Time // When the snapshot was taken
}

// NewTransaction creates a new read snapshot with a unique ID
func NewTransaction() *Transaction {
	return &Transaction{
		ID:        uuid.New().String(),
		TxID:      atomic.AddUint64(&txIDCounter, 1),
		Active:    true,
		StartTime: time.Now(),
	}
}

// Close marks the snapshot as inactive
func (tx *Transaction) Close() {
	tx.Active = false
}
