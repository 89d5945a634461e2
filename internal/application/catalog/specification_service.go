package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/shop/backend/internal/domain/catalog"
	"github.com/shop/backend/internal/domain/shared"
)

// SpecificationValidationError carries every rejected field of one submission
type SpecificationValidationError struct {
	Violations []catalog.ValidationError
}

// Error implements the error interface
func (e *SpecificationValidationError) Error() string {
	reasons := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		reasons = append(reasons, v.Field+": "+v.Reason)
	}
	return "specification validation failed: " + strings.Join(reasons, "; ")
}

// SpecificationService manages specification templates and product
// specification submissions. A submission is all-or-nothing: every value must
// validate against its template before any row is written, and the product's
// previous set is replaced in full.
type SpecificationService struct {
	templates catalog.SpecificationTemplateRepository
	products  catalog.ProductRepository
}

// NewSpecificationService creates a new SpecificationService
func NewSpecificationService(templates catalog.SpecificationTemplateRepository, products catalog.ProductRepository) *SpecificationService {
	return &SpecificationService{templates: templates, products: products}
}

// CreateTemplate creates a specification template for a category
func (s *SpecificationService) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*TemplateResponse, error) {
	specType := catalog.SpecType(strings.ToUpper(strings.TrimSpace(req.Type)))
	template, err := catalog.NewSpecificationTemplate(req.CategoryID, req.Name, specType)
	if err != nil {
		return nil, err
	}
	template.Unit = req.Unit
	template.GroupLabel = req.GroupLabel
	template.Required = req.Required
	template.Filterable = req.Filterable
	template.SortOrder = req.SortOrder
	if len(req.AllowedValues) > 0 {
		template.SetAllowedValues(req.AllowedValues)
	}
	if err := s.templates.Save(ctx, template); err != nil {
		return nil, err
	}
	resp := ToTemplateResponse(template)
	return &resp, nil
}

// ListTemplates returns the templates of a category ordered by sort order
func (s *SpecificationService) ListTemplates(ctx context.Context, categoryID uuid.UUID) ([]TemplateResponse, error) {
	templates, err := s.templates.FindByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	out := make([]TemplateResponse, 0, len(templates))
	for i := range templates {
		out = append(out, ToTemplateResponse(&templates[i]))
	}
	return out, nil
}

// SubmitSpecifications validates and stores a product's full specification
// set. Values failing their template's type check are reported together; a
// single violation rejects the whole submission.
func (s *SpecificationService) SubmitSpecifications(ctx context.Context, productID uuid.UUID, req SubmitSpecificationsRequest) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.CategoryID == nil {
		return shared.NewDomainError("NO_CATEGORY", "Product has no category; specifications are category-scoped")
	}

	templates, err := s.templates.FindByCategory(ctx, *product.CategoryID)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*catalog.SpecificationTemplate, len(templates))
	for i := range templates {
		byID[templates[i].ID] = &templates[i]
	}

	var violations []catalog.ValidationError
	submitted := make(map[uuid.UUID]struct{}, len(req.Specifications))
	specs := make([]catalog.ProductSpecification, 0, len(req.Specifications))

	for _, entry := range req.Specifications {
		template, ok := byID[entry.TemplateID]
		if !ok {
			violations = append(violations, catalog.ValidationError{
				Field:  entry.TemplateID.String(),
				Reason: "unknown template for this product's category",
			})
			continue
		}
		if _, dup := submitted[entry.TemplateID]; dup {
			violations = append(violations, catalog.ValidationError{
				Field:  template.Name,
				Reason: "submitted more than once",
			})
			continue
		}
		submitted[entry.TemplateID] = struct{}{}

		if err := template.ValidateValue(entry.Value); err != nil {
			var ve *catalog.ValidationError
			if errors.As(err, &ve) {
				violations = append(violations, *ve)
			} else {
				violations = append(violations, catalog.ValidationError{Field: template.Name, Reason: err.Error()})
			}
			continue
		}
		if template.Type == catalog.SpecTypeRange && entry.SecondaryValue != "" {
			// the upper bound of a range obeys the same type rules
			if err := template.ValidateValue(entry.SecondaryValue); err != nil {
				violations = append(violations, catalog.ValidationError{Field: template.Name, Reason: "invalid upper bound"})
				continue
			}
		}

		specs = append(specs, catalog.ProductSpecification{
			TemplateID:     entry.TemplateID,
			Value:          entry.Value,
			SecondaryValue: entry.SecondaryValue,
		})
	}

	for i := range templates {
		if !templates[i].Required {
			continue
		}
		if _, ok := submitted[templates[i].ID]; !ok {
			violations = append(violations, catalog.ValidationError{
				Field:  templates[i].Name,
				Reason: "value required",
			})
		}
	}

	if len(violations) > 0 {
		return &SpecificationValidationError{Violations: violations}
	}

	product.ReplaceSpecifications(specs)
	return s.products.Save(ctx, product)
}
