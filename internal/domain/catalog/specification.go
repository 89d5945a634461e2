package catalog

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shop/backend/internal/domain/shared"
)

// SpecType declares how raw specification values are validated before storage
type SpecType string

const (
	SpecTypeText        SpecType = "TEXT"
	SpecTypeNumber      SpecType = "NUMBER"
	SpecTypeDecimal     SpecType = "DECIMAL"
	SpecTypeBoolean     SpecType = "BOOLEAN"
	SpecTypeDropdown    SpecType = "DROPDOWN"
	SpecTypeMultiSelect SpecType = "MULTI_SELECT"
	SpecTypeRange       SpecType = "RANGE"
	SpecTypeColor       SpecType = "COLOR"
	SpecTypeURL         SpecType = "URL"
	SpecTypeEmail       SpecType = "EMAIL"
	SpecTypeDate        SpecType = "DATE"
)

// IsValid returns true if the spec type is a known value
func (t SpecType) IsValid() bool {
	switch t {
	case SpecTypeText, SpecTypeNumber, SpecTypeDecimal, SpecTypeBoolean,
		SpecTypeDropdown, SpecTypeMultiSelect, SpecTypeRange, SpecTypeColor,
		SpecTypeURL, SpecTypeEmail, SpecTypeDate:
		return true
	default:
		return false
	}
}

// String returns the string representation of SpecType
func (t SpecType) String() string {
	return string(t)
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

	booleanValues = map[string]struct{}{
		"true": {}, "false": {}, "yes": {}, "no": {}, "1": {}, "0": {},
	}
)

// ValidationError reports why a raw specification value was rejected
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// NewValidationError creates a new validation error
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// SpecificationTemplate declares one typed specification slot for a category.
// Templates are created during catalog setup and are immutable during sync;
// sync only reads them to validate incoming values.
type SpecificationTemplate struct {
	shared.BaseAggregateRoot
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Unit       string    `gorm:"type:varchar(50)"`
	GroupLabel string    `gorm:"type:varchar(100)"`
	Type       SpecType  `gorm:"type:varchar(20);not null;default:'TEXT'"`
	// AllowedValues constrains DROPDOWN and MULTI_SELECT templates. Stored as
	// a pipe-delimited list; empty disables the membership check.
	AllowedValues string `gorm:"type:text"`
	Required      bool   `gorm:"not null;default:false"`
	Filterable    bool   `gorm:"not null;default:false"`
	SortOrder     int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SpecificationTemplate) TableName() string {
	return "specification_templates"
}

// NewSpecificationTemplate creates a new specification template for a category
func NewSpecificationTemplate(categoryID uuid.UUID, name string, specType SpecType) (*SpecificationTemplate, error) {
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Specification template requires an owning category")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Specification template name cannot be empty")
	}
	if !specType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown specification type")
	}

	return &SpecificationTemplate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CategoryID:        categoryID,
		Name:              strings.TrimSpace(name),
		Type:              specType,
	}, nil
}

// SetAllowedValues declares the admissible values for DROPDOWN/MULTI_SELECT
func (t *SpecificationTemplate) SetAllowedValues(values []string) {
	t.AllowedValues = strings.Join(values, "|")
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// AllowedValueList returns the declared allowed values, nil when unrestricted
func (t *SpecificationTemplate) AllowedValueList() []string {
	if t.AllowedValues == "" {
		return nil
	}
	return strings.Split(t.AllowedValues, "|")
}

// ValidateValue checks a raw value against the template's declared type.
// Blank values always fail regardless of type. The check has no side effects
// and must pass before a ProductSpecification is persisted.
func (t *SpecificationTemplate) ValidateValue(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return NewValidationError(t.Name, "value required")
	}

	switch t.Type {
	case SpecTypeNumber:
		if _, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err != nil {
			return NewValidationError(t.Name, "must be an integer")
		}
	case SpecTypeDecimal:
		if _, err := decimal.NewFromString(strings.TrimSpace(raw)); err != nil {
			return NewValidationError(t.Name, "must be a decimal number")
		}
	case SpecTypeBoolean:
		if _, ok := booleanValues[strings.ToLower(strings.TrimSpace(raw))]; !ok {
			return NewValidationError(t.Name, "must be a boolean value")
		}
	case SpecTypeDropdown, SpecTypeMultiSelect:
		allowed := t.AllowedValueList()
		if len(allowed) == 0 {
			return nil
		}
		for _, v := range allowed {
			if v == raw {
				return nil
			}
		}
		return NewValidationError(t.Name, "value is not in the allowed list")
	case SpecTypeEmail:
		if !emailPattern.MatchString(strings.TrimSpace(raw)) {
			return NewValidationError(t.Name, "must be a valid email address")
		}
	case SpecTypeURL:
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return NewValidationError(t.Name, "must be a valid URL")
		}
	case SpecTypeColor:
		if !colorPattern.MatchString(strings.TrimSpace(raw)) {
			return NewValidationError(t.Name, "must be a hex color like #fff or #ffffff")
		}
	}
	// TEXT, DATE and any future types accept free text.
	return nil
}

// ProductSpecification stores one validated value of a template for a product.
// A submission replaces the product's full specification set; rows are never
// partially updated.
type ProductSpecification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_spec_product_template,priority:1"`
	TemplateID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_spec_product_template,priority:2"`
	Value      string    `gorm:"type:text;not null"`
	// SecondaryValue holds the upper bound for RANGE templates
	SecondaryValue string `gorm:"type:text"`
	CreatedAt      time.Time
}

// TableName returns the table name for GORM
func (ProductSpecification) TableName() string {
	return "product_specifications"
}
