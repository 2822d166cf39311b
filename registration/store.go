package registration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MaxSyncAttempts is the cap after which an entry is excluded from automatic
// retries. Capped entries stay in the queue for diagnostics and manual
// resolution.
const MaxSyncAttempts = 3

// PendingEntry wraps a Record that has not been confirmed as persisted
// remotely. SyncAttempts only grows until Synced flips to true, then freezes.
type PendingEntry struct {
	ID           uuid.UUID
	Record       Record
	Synced       bool
	SyncAttempts int
	SyncedAt     *time.Time
	CreatedAt    time.Time
}

// Retryable reports whether the scheduler should still attempt this entry.
func (e PendingEntry) Retryable() bool {
	return !e.Synced && e.SyncAttempts < MaxSyncAttempts
}

// Snapshot is a derived view of the queue. It is recomputable from the
// pending entries and never authoritative.
type Snapshot struct {
	PendingCount int
	LastUpdate   time.Time
}

type Store interface {
	// SaveCurrent overwrites the single current-record slot.
	SaveCurrent(ctx context.Context, rec Record) error
	// LoadCurrent returns the last saved record, or false when the slot is empty.
	LoadCurrent(ctx context.Context) (Record, bool, error)
	// EnqueuePending appends an entry unless an unsynced entry with the same
	// email already exists. Returns the entry and whether it was newly added.
	EnqueuePending(ctx context.Context, rec Record) (PendingEntry, bool, error)
	ListPending(ctx context.Context) ([]PendingEntry, error)
	ReplacePending(ctx context.Context, entries []PendingEntry) error
	// MarkSynced resolves an entry by email, the manual reconciliation path.
	MarkSynced(ctx context.Context, email string, at time.Time) (bool, error)
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	LoadSnapshot(ctx context.Context) (Snapshot, error)
}
