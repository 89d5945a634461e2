package catalog

import (
	"context"

	"github.com/google/uuid"
)

// AttributeRepository defines the persistence interface for attribute
// dictionaries. Options travel with their owning attribute.
type AttributeRepository interface {
	// FindByID finds an attribute with its options
	FindByID(ctx context.Context, id uuid.UUID) (*Attribute, error)

	// FindByCategory loads all attributes of a category with options preloaded.
	// The dictionary resolver seeds its per-run cache from this snapshot.
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]Attribute, error)

	// FindByCategoryAndKey finds an attribute by its provider key within a category
	FindByCategoryAndKey(ctx context.Context, categoryID uuid.UUID, externalKey string) (*Attribute, error)

	// Save creates or updates an attribute together with its options
	Save(ctx context.Context, attribute *Attribute) error

	// Delete removes an attribute and its options
	Delete(ctx context.Context, id uuid.UUID) error
}

// ManufacturerRepository defines the persistence interface for manufacturers
type ManufacturerRepository interface {
	// FindByID finds a manufacturer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Manufacturer, error)

	// FindBySlug finds a manufacturer by its normalized slug
	FindBySlug(ctx context.Context, slug string) (*Manufacturer, error)

	// FindAll lists all manufacturers ordered by name
	FindAll(ctx context.Context) ([]Manufacturer, error)

	// Save creates or updates a manufacturer
	Save(ctx context.Context, manufacturer *Manufacturer) error

	// Delete removes a manufacturer
	Delete(ctx context.Context, id uuid.UUID) error
}

// SpecificationTemplateRepository defines the persistence interface for
// specification templates
type SpecificationTemplateRepository interface {
	// FindByID finds a template by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*SpecificationTemplate, error)

	// FindByCategory lists all templates of a category ordered by sort order
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]SpecificationTemplate, error)

	// Save creates or updates a template
	Save(ctx context.Context, template *SpecificationTemplate) error

	// Delete removes a template
	Delete(ctx context.Context, id uuid.UUID) error
}
