package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shop/backend/internal/domain/shared"
	domainsync "github.com/shop/backend/internal/domain/sync"
)

// GormSyncRunRepository implements SyncRunRepository using GORM
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

// FindByID finds a run by its ID
func (r *GormSyncRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainsync.SyncRun, error) {
	var run domainsync.SyncRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindRecent lists the most recent runs, newest first
func (r *GormSyncRunRepository) FindRecent(ctx context.Context, limit int) ([]domainsync.SyncRun, error) {
	var runs []domainsync.SyncRun
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// FindByType lists the most recent runs of one sync type, newest first
func (r *GormSyncRunRepository) FindByType(ctx context.Context, syncType domainsync.SyncType, limit int) ([]domainsync.SyncRun, error) {
	var runs []domainsync.SyncRun
	if err := r.db.WithContext(ctx).
		Where("type = ?", syncType).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Save creates or updates a run record
func (r *GormSyncRunRepository) Save(ctx context.Context, run *domainsync.SyncRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// Ensure GormSyncRunRepository implements SyncRunRepository
var _ domainsync.SyncRunRepository = (*GormSyncRunRepository)(nil)
