package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shop/backend/internal/domain/shared"
)

// DefaultAttributeSortOrder is assigned to attributes created during sync;
// catalog operators reorder them manually afterwards.
const DefaultAttributeSortOrder = 100

// Attribute is a category-scoped dictionary entry describing one filterable
// product property ("parameter"). At most one attribute may exist per
// (category, external key) and per (category, normalized display name) — the
// resolver treats either match as the same entry so that two providers cannot
// create duplicates.
type Attribute struct {
	shared.BaseAggregateRoot
	CategoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attribute_category_key,priority:1"`
	// ExternalKey is the short token a provider uses to identify the property,
	// e.g. "cvjat". Empty for attributes created through the admin surface.
	ExternalKey string `gorm:"type:varchar(100);uniqueIndex:idx_attribute_category_key,priority:2"`
	Name        string `gorm:"type:varchar(255);not null"`
	SortOrder   int    `gorm:"not null;default:0"`

	Options []AttributeOption `gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Attribute) TableName() string {
	return "attributes"
}

// NewAttribute creates a new attribute dictionary entry for a category
func NewAttribute(categoryID uuid.UUID, externalKey, name string) (*Attribute, error) {
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Attribute requires an owning category")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Attribute name cannot be empty")
	}

	return &Attribute{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CategoryID:        categoryID,
		ExternalKey:       externalKey,
		Name:              strings.TrimSpace(name),
		SortOrder:         DefaultAttributeSortOrder,
	}, nil
}

// NormalizedName returns the case- and whitespace-insensitive lookup form of
// the attribute name.
func (a *Attribute) NormalizedName() string {
	return NormalizeLookup(a.Name)
}

// FindOption returns the option whose value matches exactly, or nil
func (a *Attribute) FindOption(value string) *AttributeOption {
	for i := range a.Options {
		if a.Options[i].Value == value {
			return &a.Options[i]
		}
	}
	return nil
}

// FindOptionNormalized returns the option whose normalized value matches the
// normalized form of the given value, or nil. This comparison is the duplicate
// prevention invariant: two differently cased but otherwise identical values
// are the same option.
func (a *Attribute) FindOptionNormalized(value string) *AttributeOption {
	normalized := NormalizeLookup(value)
	for i := range a.Options {
		if NormalizeLookup(a.Options[i].Value) == normalized {
			return &a.Options[i]
		}
	}
	return nil
}

// AddOption appends a new option with the next sort order. Returns the
// existing option instead when an equivalent (normalized) value is present.
func (a *Attribute) AddOption(value string) (*AttributeOption, error) {
	if strings.TrimSpace(value) == "" {
		return nil, shared.NewDomainError("INVALID_VALUE", "Attribute option value cannot be empty")
	}
	if existing := a.FindOptionNormalized(value); existing != nil {
		return existing, nil
	}

	nextOrder := 0
	for i := range a.Options {
		if a.Options[i].SortOrder >= nextOrder {
			nextOrder = a.Options[i].SortOrder + 1
		}
	}

	a.Options = append(a.Options, AttributeOption{
		ID:          uuid.New(),
		AttributeID: a.ID,
		Value:       strings.TrimSpace(value),
		SortOrder:   nextOrder,
		CreatedAt:   time.Now(),
	})
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return &a.Options[len(a.Options)-1], nil
}

// AttributeOption is one admissible value of an attribute. At most one option
// may exist per (attribute, normalized value).
type AttributeOption struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	AttributeID uuid.UUID `gorm:"type:uuid;not null;index"`
	Value       string    `gorm:"type:varchar(255);not null"`
	SortOrder   int       `gorm:"not null;default:0"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (AttributeOption) TableName() string {
	return "attribute_options"
}

// ProductAttributeAssignment links a product to one (attribute, option) pair.
// A product carries at most one assignment per attribute.
type ProductAttributeAssignment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_product_attribute,priority:1"`
	AttributeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_product_attribute,priority:2"`
	OptionID    uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (ProductAttributeAssignment) TableName() string {
	return "product_attribute_assignments"
}

// NormalizeLookup folds a free-text value into its dictionary lookup form:
// lowercase with runs of whitespace collapsed to single spaces.
func NormalizeLookup(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
