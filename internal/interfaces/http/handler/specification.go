package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/shop/backend/internal/application/catalog"
)

// SpecificationHandler handles specification template and submission endpoints
type SpecificationHandler struct {
	BaseHandler
	specService *catalogapp.SpecificationService
}

// NewSpecificationHandler creates a new SpecificationHandler
func NewSpecificationHandler(specService *catalogapp.SpecificationService) *SpecificationHandler {
	return &SpecificationHandler{
		specService: specService,
	}
}

// CreateTemplate creates a specification template for a category
func (h *SpecificationHandler) CreateTemplate(c *gin.Context) {
	var req catalogapp.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	template, err := h.specService.CreateTemplate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, template)
}

// ListTemplates retrieves all specification templates of a category
func (h *SpecificationHandler) ListTemplates(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid category ID format")
		return
	}

	templates, err := h.specService.ListTemplates(c.Request.Context(), categoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, templates)
}

// Submit replaces a product's full specification set. Every value is
// validated against its template's type before anything is written, so a
// single bad entry rejects the whole submission.
func (h *SpecificationHandler) Submit(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req catalogapp.SubmitSpecificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.specService.SubmitSpecifications(c.Request.Context(), productID, req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
