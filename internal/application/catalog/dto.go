package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shop/backend/internal/domain/catalog"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name      string     `json:"name" binding:"required,max=255"`
	ParentID  *uuid.UUID `json:"parent_id"`
	SortOrder int        `json:"sort_order"`
}

// RenameCategoryRequest represents a request to rename a category
type RenameCategoryRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// ChangeCategorySlugRequest represents a request to change a category slug
type ChangeCategorySlugRequest struct {
	Slug string `json:"slug" binding:"required,max=255"`
}

// MoveCategoryRequest represents a request to re-parent a category.
// A nil parent makes the category a root.
type MoveCategoryRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Path         string     `json:"path"`
	ParentID     *uuid.UUID `json:"parent_id"`
	Level        int        `json:"level"`
	ProviderSlug string     `json:"provider_slug,omitempty"`
	SortOrder    int        `json:"sort_order"`
	Visible      bool       `json:"visible"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CategoryTreeNode represents a category with its children nested
type CategoryTreeNode struct {
	CategoryResponse
	Children []*CategoryTreeNode `json:"children"`
}

// ToCategoryResponse converts a domain category to its response form
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Path:         c.Path,
		ParentID:     c.ParentID,
		Level:        c.Level,
		ProviderSlug: c.ProviderSlug,
		SortOrder:    c.SortOrder,
		Visible:      c.Visible,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// CreateTemplateRequest represents a request to create a specification template
type CreateTemplateRequest struct {
	CategoryID    uuid.UUID `json:"category_id" binding:"required"`
	Name          string    `json:"name" binding:"required,max=255"`
	Type          string    `json:"type" binding:"required"`
	Unit          string    `json:"unit" binding:"max=50"`
	GroupLabel    string    `json:"group_label" binding:"max=100"`
	AllowedValues []string  `json:"allowed_values"`
	Required      bool      `json:"required"`
	Filterable    bool      `json:"filterable"`
	SortOrder     int       `json:"sort_order"`
}

// TemplateResponse represents a specification template in API responses
type TemplateResponse struct {
	ID            uuid.UUID `json:"id"`
	CategoryID    uuid.UUID `json:"category_id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Unit          string    `json:"unit,omitempty"`
	GroupLabel    string    `json:"group_label,omitempty"`
	AllowedValues []string  `json:"allowed_values,omitempty"`
	Required      bool      `json:"required"`
	Filterable    bool      `json:"filterable"`
	SortOrder     int       `json:"sort_order"`
}

// ToTemplateResponse converts a domain template to its response form
func ToTemplateResponse(t *catalog.SpecificationTemplate) TemplateResponse {
	return TemplateResponse{
		ID:            t.ID,
		CategoryID:    t.CategoryID,
		Name:          t.Name,
		Type:          t.Type.String(),
		Unit:          t.Unit,
		GroupLabel:    t.GroupLabel,
		AllowedValues: t.AllowedValueList(),
		Required:      t.Required,
		Filterable:    t.Filterable,
		SortOrder:     t.SortOrder,
	}
}

// SpecificationEntry is one raw specification value in a submission
type SpecificationEntry struct {
	TemplateID     uuid.UUID `json:"template_id" binding:"required"`
	Value          string    `json:"value"`
	SecondaryValue string    `json:"secondary_value"`
}

// SubmitSpecificationsRequest replaces a product's full specification set
type SubmitSpecificationsRequest struct {
	Specifications []SpecificationEntry `json:"specifications" binding:"required"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	CategoryID     *uuid.UUID      `json:"category_id"`
	ManufacturerID *uuid.UUID      `json:"manufacturer_id"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	OldPrice       decimal.Decimal `json:"old_price"`
	DocumentURL    string          `json:"document_url,omitempty"`
	Visible        bool            `json:"visible"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain product to its response form
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Slug:           p.Slug,
		CategoryID:     p.CategoryID,
		ManufacturerID: p.ManufacturerID,
		Description:    p.Description,
		Price:          p.Price,
		OldPrice:       p.OldPrice,
		DocumentURL:    p.DocumentURL,
		Visible:        p.Visible,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ProductListFilter represents filter options for product listings
type ProductListFilter struct {
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"category_id"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
