package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shop/backend/internal/domain/catalog"
	"github.com/shop/backend/internal/domain/shared"
)

// GormSpecificationTemplateRepository implements SpecificationTemplateRepository using GORM
type GormSpecificationTemplateRepository struct {
	db *gorm.DB
}

// NewGormSpecificationTemplateRepository creates a new GormSpecificationTemplateRepository
func NewGormSpecificationTemplateRepository(db *gorm.DB) *GormSpecificationTemplateRepository {
	return &GormSpecificationTemplateRepository{db: db}
}

// FindByID finds a template by its ID
func (r *GormSpecificationTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.SpecificationTemplate, error) {
	var template catalog.SpecificationTemplate
	if err := r.db.WithContext(ctx).First(&template, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// FindByCategory lists all templates of a category ordered by sort order
func (r *GormSpecificationTemplateRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.SpecificationTemplate, error) {
	var templates []catalog.SpecificationTemplate
	if err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("sort_order ASC, name ASC").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Save creates or updates a template
func (r *GormSpecificationTemplateRepository) Save(ctx context.Context, template *catalog.SpecificationTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

// Delete removes a template
func (r *GormSpecificationTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.SpecificationTemplate{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSpecificationTemplateRepository implements SpecificationTemplateRepository
var _ catalog.SpecificationTemplateRepository = (*GormSpecificationTemplateRepository)(nil)
