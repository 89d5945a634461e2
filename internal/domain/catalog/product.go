package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shop/backend/internal/domain/shared"
)

// Product is a sellable catalog item. During sync it is reconciled by the
// provider's external id when available, otherwise by SKU (the natural key).
type Product struct {
	shared.BaseAggregateRoot
	// SKU is the natural business key, unique across the catalog
	SKU  string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(500);not null"`
	Slug string `gorm:"type:varchar(500);index"`
	// ExternalID is the stable identifier assigned by the source provider
	ExternalID     string          `gorm:"type:varchar(100);index:idx_product_provider_external"`
	Provider       string          `gorm:"type:varchar(50);index:idx_product_provider_external"`
	CategoryID     *uuid.UUID      `gorm:"type:uuid;index"`
	ManufacturerID *uuid.UUID      `gorm:"type:uuid;index"`
	Description    string          `gorm:"type:text"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	OldPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// DocumentURL points at the provider-supplied datasheet, when present
	DocumentURL string `gorm:"type:varchar(1000)"`
	Visible     bool   `gorm:"not null;default:true"`

	Assignments    []ProductAttributeAssignment `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Specifications []ProductSpecification       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with the given natural key and name
func NewProduct(sku, name string) (*Product, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.TrimSpace(sku),
		Name:              strings.TrimSpace(name),
		Slug:              NormalizeSlug(name),
		Price:             decimal.Zero,
		OldPrice:          decimal.Zero,
		Visible:           true,
	}, nil
}

// SetExternalID records the provider-assigned identifier
func (p *Product) SetExternalID(provider, externalID string) {
	p.Provider = provider
	p.ExternalID = externalID
	p.touch()
}

// Rename updates name and slug
func (p *Product) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	p.Name = strings.TrimSpace(name)
	p.Slug = NormalizeSlug(name)
	p.touch()
	return nil
}

// SetDescription replaces the product description
func (p *Product) SetDescription(description string) {
	p.Description = description
	p.touch()
}

// SetCategory assigns the product to a canonical category. The category must
// not be a tree root; roots exist only as structural ancestors.
func (p *Product) SetCategory(category *Category) error {
	if category == nil || !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Product requires a valid category")
	}
	if category.IsRoot() {
		return shared.NewDomainError("ROOT_CATEGORY", "Products cannot be assigned to a root category")
	}
	p.CategoryID = &category.ID
	p.touch()
	return nil
}

// SetManufacturer assigns the product's brand
func (p *Product) SetManufacturer(manufacturerID uuid.UUID) {
	if manufacturerID == uuid.Nil {
		p.ManufacturerID = nil
	} else {
		id := manufacturerID
		p.ManufacturerID = &id
	}
	p.touch()
}

// SetPrices updates current and previous price
func (p *Product) SetPrices(price, oldPrice decimal.Decimal) error {
	if price.IsNegative() || oldPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	p.Price = price
	p.OldPrice = oldPrice
	p.touch()
	return nil
}

// SetDocumentURL attaches the provider-supplied datasheet link
func (p *Product) SetDocumentURL(u string) {
	p.DocumentURL = u
	p.touch()
}

// Hide removes the product from storefront listings
func (p *Product) Hide() {
	p.Visible = false
	p.touch()
}

// Show makes the product visible in storefront listings
func (p *Product) Show() {
	p.Visible = true
	p.touch()
}

// AssignAttribute links the product to an (attribute, option) pair, replacing
// any previous option of the same attribute. A product never carries two
// assignments for one attribute.
func (p *Product) AssignAttribute(attributeID, optionID uuid.UUID) {
	for i := range p.Assignments {
		if p.Assignments[i].AttributeID == attributeID {
			p.Assignments[i].OptionID = optionID
			p.touch()
			return
		}
	}
	p.Assignments = append(p.Assignments, ProductAttributeAssignment{
		ID:          uuid.New(),
		ProductID:   p.ID,
		AttributeID: attributeID,
		OptionID:    optionID,
		CreatedAt:   time.Now(),
	})
	p.touch()
}

// ReplaceSpecifications swaps the product's full specification set. Partial
// updates are not supported; callers validate values first.
func (p *Product) ReplaceSpecifications(specs []ProductSpecification) {
	for i := range specs {
		if specs[i].ID == uuid.Nil {
			specs[i].ID = uuid.New()
		}
		specs[i].ProductID = p.ID
		if specs[i].CreatedAt.IsZero() {
			specs[i].CreatedAt = time.Now()
		}
	}
	p.Specifications = specs
	p.touch()
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
