package sync

import (
	"errors"
	"time"

	"github.com/shop/backend/internal/domain/shared"
)

var (
	ErrRunAlreadyFinished = errors.New("sync: run already finished")
	ErrRunInvalidType     = errors.New("sync: invalid sync type")
)

// SyncType tags a run with the kind of data it synchronized
type SyncType string

const (
	SyncTypeCategories    SyncType = "CATEGORIES"
	SyncTypeManufacturers SyncType = "MANUFACTURERS"
	SyncTypeParameters    SyncType = "PARAMETERS"
	SyncTypeProducts      SyncType = "PRODUCTS"
	SyncTypeComplete      SyncType = "COMPLETE"
)

// IsValid returns true if the sync type is a known value
func (t SyncType) IsValid() bool {
	switch t {
	case SyncTypeCategories, SyncTypeManufacturers, SyncTypeParameters,
		SyncTypeProducts, SyncTypeComplete:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncType
func (t SyncType) String() string {
	return string(t)
}

// RunStatus is the lifecycle state of a sync run
type RunStatus string

const (
	RunStatusInProgress RunStatus = "IN_PROGRESS"
	RunStatusSuccess    RunStatus = "SUCCESS"
	RunStatusFailed     RunStatus = "FAILED"
)

// IsTerminal returns true once the run can no longer change state
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSuccess || s == RunStatusFailed
}

// String returns the string representation of RunStatus
func (s RunStatus) String() string {
	return string(s)
}

// Counters aggregates the per-record outcomes of a run
type Counters struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Errors    int `json:"errors"`
}

// Add merges another counter set into this one
func (c *Counters) Add(other Counters) {
	c.Processed += other.Processed
	c.Created += other.Created
	c.Updated += other.Updated
	c.Errors += other.Errors
}

// SyncRun is the audit record of one synchronization pass. It is created in
// IN_PROGRESS state before any work starts and finished exactly once. It is a
// standalone record: nothing downstream references it, so a failed ledger
// write must never gate the sync itself.
type SyncRun struct {
	shared.BaseAggregateRoot
	Type     SyncType  `gorm:"type:varchar(20);not null;index"`
	Provider string    `gorm:"type:varchar(50);not null;index"`
	Status   RunStatus `gorm:"type:varchar(20);not null;default:'IN_PROGRESS'"`

	Processed int `gorm:"not null;default:0"`
	Created   int `gorm:"not null;default:0"`
	Updated   int `gorm:"not null;default:0"`
	Errors    int `gorm:"not null;default:0"`

	StartedAt  time.Time `gorm:"not null"`
	FinishedAt *time.Time
	DurationMS int64  `gorm:"not null;default:0"`
	Message    string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SyncRun) TableName() string {
	return "sync_runs"
}

// NewSyncRun starts a new run record in IN_PROGRESS state
func NewSyncRun(syncType SyncType, provider string) (*SyncRun, error) {
	if !syncType.IsValid() {
		return nil, ErrRunInvalidType
	}
	return &SyncRun{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              syncType,
		Provider:          provider,
		Status:            RunStatusInProgress,
		StartedAt:         time.Now(),
	}, nil
}

// Complete marks the run as successful with its final counters
func (r *SyncRun) Complete(counters Counters) error {
	return r.finish(RunStatusSuccess, counters, "")
}

// Fail marks the run as failed, recording the error message
func (r *SyncRun) Fail(counters Counters, message string) error {
	return r.finish(RunStatusFailed, counters, message)
}

func (r *SyncRun) finish(status RunStatus, counters Counters, message string) error {
	if r.Status.IsTerminal() {
		return ErrRunAlreadyFinished
	}
	now := time.Now()
	r.Status = status
	r.Processed = counters.Processed
	r.Created = counters.Created
	r.Updated = counters.Updated
	r.Errors = counters.Errors
	r.FinishedAt = &now
	r.DurationMS = now.Sub(r.StartedAt).Milliseconds()
	r.Message = message
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// Duration returns the elapsed run time
func (r *SyncRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
