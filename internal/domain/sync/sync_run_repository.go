package sync

import (
	"context"

	"github.com/google/uuid"
)

// SyncRunRepository defines the persistence interface for the run ledger
type SyncRunRepository interface {
	// FindByID finds a run by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*SyncRun, error)

	// FindRecent lists the most recent runs, newest first
	FindRecent(ctx context.Context, limit int) ([]SyncRun, error)

	// FindByType lists the most recent runs of one sync type, newest first
	FindByType(ctx context.Context, syncType SyncType, limit int) ([]SyncRun, error)

	// Save creates or updates a run record
	Save(ctx context.Context, run *SyncRun) error
}
