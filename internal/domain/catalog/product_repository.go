package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/shop/backend/internal/domain/shared"
)

// ExternalIDPair identifies one provider-assigned product id
type ExternalIDPair struct {
	Provider   string
	ExternalID string
}

// ProductRepository defines the persistence interface for products
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by its natural key
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindByExternalID finds a product by its provider-assigned identifier
	FindByExternalID(ctx context.Context, provider, externalID string) (*Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindByCategory finds all products of a category
	FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]Product, error)

	// FindDuplicateSKUs returns every SKU shared by more than one product row
	FindDuplicateSKUs(ctx context.Context) ([]string, error)

	// FindDuplicateExternalIDs returns every (provider, external id) pair
	// shared by more than one product row
	FindDuplicateExternalIDs(ctx context.Context) ([]ExternalIDPair, error)

	// FindAllBySKU returns all products with the given SKU ordered by creation time
	FindAllBySKU(ctx context.Context, sku string) ([]Product, error)

	// FindAllByExternalID returns all products with the given provider id
	// ordered by creation time
	FindAllByExternalID(ctx context.Context, provider, externalID string) ([]Product, error)

	// Save creates or updates a product with its assignments and specifications
	Save(ctx context.Context, product *Product) error

	// Delete removes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteBatch removes several products at once
	DeleteBatch(ctx context.Context, ids []uuid.UUID) error

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
