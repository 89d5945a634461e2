package catalog

import (
	"strings"
	"time"

	"github.com/shop/backend/internal/domain/shared"
)

// Manufacturer is a brand referenced by products. Providers deliver
// manufacturers as bare distinct names per category; reconciliation is by
// normalized slug.
type Manufacturer struct {
	shared.BaseAggregateRoot
	Name string `gorm:"type:varchar(255);not null"`
	Slug string `gorm:"type:varchar(255);not null;uniqueIndex"`
	// ExternalID is the provider-assigned identifier, when one exists
	ExternalID string `gorm:"type:varchar(100);index"`
	Provider   string `gorm:"type:varchar(50)"`
	Visible    bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Manufacturer) TableName() string {
	return "manufacturers"
}

// NewManufacturer creates a new manufacturer
func NewManufacturer(name string) (*Manufacturer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Manufacturer name cannot be empty")
	}

	return &Manufacturer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Slug:              NormalizeSlug(name),
		Visible:           true,
	}, nil
}

// SetExternalID records the provider-assigned identifier
func (m *Manufacturer) SetExternalID(provider, externalID string) {
	m.Provider = provider
	m.ExternalID = externalID
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// Rename updates the display name, keeping the slug stable
func (m *Manufacturer) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Manufacturer name cannot be empty")
	}
	m.Name = strings.TrimSpace(name)
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}
