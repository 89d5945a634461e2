package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shop/backend/internal/domain/shared"
)

// MaxCategoryDepth is the maximum depth of the category hierarchy
const MaxCategoryDepth = 3

// Category represents a node in the canonical category tree. The tree is the
// reconciliation target for external provider data: incoming denormalized
// category paths are matched against Slug, Path, ProviderSlug and Name.
type Category struct {
	shared.BaseAggregateRoot
	Name string `gorm:"type:varchar(255);not null"`
	// Slug is the path-safe token derived from the display name. Unique across the tree.
	Slug string `gorm:"type:varchar(255);not null;uniqueIndex"`
	// Path is the slash-joined chain of ancestor slugs from root to self,
	// denormalized for fast matching. It must be recomputed whenever Slug or
	// ParentID changes.
	Path     string     `gorm:"type:varchar(1000);not null;index"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
	Level    int        `gorm:"not null;default:0"`
	// ProviderSlug is the slug a provider assigned to this category, when one
	// provider's taxonomy seeded the node. Used by the slug-based match strategies.
	ProviderSlug string `gorm:"type:varchar(255);index"`
	SortOrder    int    `gorm:"not null;default:0"`
	Visible      bool   `gorm:"not null;default:true"`

	ExternalRefs []CategoryExternalRef `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// CategoryExternalRef stores the stable identifier a provider assigned to a
// canonical category. A category may carry one ref per provider.
type CategoryExternalRef struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_category_provider,priority:1"`
	Provider   string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_category_provider,priority:2"`
	ExternalID string    `gorm:"type:varchar(100);not null;index"`
}

// TableName returns the table name for GORM
func (CategoryExternalRef) TableName() string {
	return "category_external_refs"
}

// NewCategory creates a new root category
func NewCategory(name string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              NormalizeSlug(name),
		Visible:           true,
		Level:             0,
	}
	category.Path = category.Slug

	return category, nil
}

// NewChildCategory creates a new category under a parent
func NewChildCategory(name string, parent *Category) (*Category, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent category is required")
	}
	if parent.Level >= MaxCategoryDepth-1 {
		return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED", fmt.Sprintf("Category depth cannot exceed %d levels", MaxCategoryDepth))
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              NormalizeSlug(name),
		ParentID:          &parent.ID,
		Level:             parent.Level + 1,
		Visible:           true,
	}
	category.Path = parent.Path + "/" + category.Slug

	return category, nil
}

// Rename updates the display name without touching the slug. Slugs are stable
// identifiers once assigned; use ChangeSlug when the path token itself must move.
func (c *Category) Rename(name string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// ChangeSlug replaces the slug and recomputes the path tail. The caller is
// responsible for rebuilding descendant paths via RebuildPath.
func (c *Category) ChangeSlug(slug string) error {
	normalized := NormalizeSlug(slug)
	if normalized == "" {
		return shared.NewDomainError("INVALID_SLUG", "Category slug cannot be empty")
	}
	c.Slug = normalized
	c.Path = joinPath(parentPathOf(c.Path), normalized)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// MoveTo re-parents the category. Passing nil makes it a root. The path is
// recomputed from the new parent; descendants must be rebuilt by the caller.
func (c *Category) MoveTo(parent *Category) error {
	if parent == nil {
		c.ParentID = nil
		c.Level = 0
		c.Path = c.Slug
		c.UpdatedAt = time.Now()
		c.IncrementVersion()
		return nil
	}
	if parent.ID == c.ID {
		return shared.NewDomainError("INVALID_PARENT", "Category cannot be its own parent")
	}
	if strings.HasPrefix(parent.Path+"/", c.Path+"/") {
		return shared.NewDomainError("INVALID_PARENT", "Category cannot be moved under its own descendant")
	}
	if parent.Level >= MaxCategoryDepth-1 {
		return shared.NewDomainError("MAX_DEPTH_EXCEEDED", fmt.Sprintf("Category depth cannot exceed %d levels", MaxCategoryDepth))
	}
	c.ParentID = &parent.ID
	c.Level = parent.Level + 1
	c.Path = parent.Path + "/" + c.Slug
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// RebuildPath recomputes path and level from the parent's. Used when an
// ancestor's slug or position changed.
func (c *Category) RebuildPath(parentPath string, parentLevel int) {
	c.Path = joinPath(parentPath, c.Slug)
	c.Level = parentLevel + 1
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetProviderSlug records the slug a provider uses for this category
func (c *Category) SetProviderSlug(slug string) {
	c.ProviderSlug = NormalizeSlug(slug)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetExternalRef records or replaces the external identifier for a provider
func (c *Category) SetExternalRef(provider, externalID string) {
	for i := range c.ExternalRefs {
		if c.ExternalRefs[i].Provider == provider {
			c.ExternalRefs[i].ExternalID = externalID
			c.UpdatedAt = time.Now()
			c.IncrementVersion()
			return
		}
	}
	c.ExternalRefs = append(c.ExternalRefs, CategoryExternalRef{
		ID:         uuid.New(),
		CategoryID: c.ID,
		Provider:   provider,
		ExternalID: externalID,
	})
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// ExternalRef returns the external identifier for a provider, if recorded
func (c *Category) ExternalRef(provider string) (string, bool) {
	for i := range c.ExternalRefs {
		if c.ExternalRefs[i].Provider == provider {
			return c.ExternalRefs[i].ExternalID, true
		}
	}
	return "", false
}

// SetSortOrder sets the display order of the category
func (c *Category) SetSortOrder(order int) {
	c.SortOrder = order
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Hide removes the category from storefront listings
func (c *Category) Hide() {
	c.Visible = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Show makes the category visible in storefront listings
func (c *Category) Show() {
	c.Visible = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// IsRoot returns true if this is a root category. Root categories exist only
// as structural ancestors; products are never reconciled onto them.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// IsValid reports whether the category is a usable reconciliation target:
// it has an identity and a non-empty display name.
func (c *Category) IsValid() bool {
	return c.ID != uuid.Nil && strings.TrimSpace(c.Name) != ""
}

// IsAncestorOf returns true if this category is an ancestor of the given category
func (c *Category) IsAncestorOf(other *Category) bool {
	if other == nil || other.Path == "" {
		return false
	}
	return strings.HasPrefix(other.Path, c.Path+"/")
}

func parentPathOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

func joinPath(parentPath, slug string) string {
	if parentPath == "" {
		return slug
	}
	return parentPath + "/" + slug
}

func validateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 255 characters")
	}
	return nil
}
