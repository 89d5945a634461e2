package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/shop/backend/internal/domain/shared"
)

// CategoryRepository defines the persistence interface for categories
type CategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindBySlug finds a category by its unique slug
	FindBySlug(ctx context.Context, slug string) (*Category, error)

	// FindByExternalRef finds the category a provider's external id is mapped to
	FindByExternalRef(ctx context.Context, provider, externalID string) (*Category, error)

	// FindAll finds all categories matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)

	// FindTree loads the entire category tree ordered by path. The
	// reconciliation matcher seeds its per-run cache from this snapshot.
	FindTree(ctx context.Context) ([]Category, error)

	// FindChildren finds all direct children of a category
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Category, error)

	// FindRoots finds all root categories
	FindRoots(ctx context.Context) ([]Category, error)

	// FindDescendants finds all descendants of a category using the materialized path
	FindDescendants(ctx context.Context, categoryID uuid.UUID) ([]Category, error)

	// Save creates or updates a category together with its external refs
	Save(ctx context.Context, category *Category) error

	// Delete removes a category
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts categories matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
