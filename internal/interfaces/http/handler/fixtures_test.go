package handler

import (
	"context"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shop/backend/internal/domain/catalog"
	"github.com/shop/backend/internal/domain/shared"
	domainsync "github.com/shop/backend/internal/domain/sync"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

type fakeCategoryRepo struct {
	categories map[uuid.UUID]catalog.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[uuid.UUID]catalog.Category)}
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Category, error) {
	if c, ok := r.categories[id]; ok {
		copied := c
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCategoryRepo) FindBySlug(_ context.Context, slug string) (*catalog.Category, error) {
	for _, c := range r.categories {
		if c.Slug == slug {
			copied := c
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCategoryRepo) FindByExternalRef(_ context.Context, provider, externalID string) (*catalog.Category, error) {
	for _, c := range r.categories {
		if ref, ok := c.ExternalRef(provider); ok && ref == externalID {
			copied := c
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCategoryRepo) FindAll(ctx context.Context, _ shared.Filter) ([]catalog.Category, error) {
	return r.FindTree(ctx)
}

func (r *fakeCategoryRepo) FindTree(_ context.Context) ([]catalog.Category, error) {
	out := make([]catalog.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (r *fakeCategoryRepo) FindChildren(_ context.Context, parentID uuid.UUID) ([]catalog.Category, error) {
	var out []catalog.Category
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) FindRoots(_ context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	for _, c := range r.categories {
		if c.ParentID == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) FindDescendants(_ context.Context, categoryID uuid.UUID) ([]catalog.Category, error) {
	parent, ok := r.categories[categoryID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	var out []catalog.Category
	for _, c := range r.categories {
		if strings.HasPrefix(c.Path, parent.Path+"/") {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) Save(_ context.Context, category *catalog.Category) error {
	r.categories[category.ID] = *category
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.categories)), nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]catalog.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]catalog.Product)}
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := r.products[id]; ok {
		copied := p
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			copied := p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindByExternalID(_ context.Context, provider, externalID string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.Provider == provider && p.ExternalID == externalID {
			copied := p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *fakeProductRepo) FindByCategory(_ context.Context, categoryID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindDuplicateSKUs(_ context.Context) ([]string, error) {
	return nil, nil
}

func (r *fakeProductRepo) FindDuplicateExternalIDs(_ context.Context) ([]catalog.ExternalIDPair, error) {
	return nil, nil
}

func (r *fakeProductRepo) FindAllBySKU(_ context.Context, sku string) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.products {
		if p.SKU == sku {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindAllByExternalID(_ context.Context, provider, externalID string) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.products {
		if p.Provider == provider && p.ExternalID == externalID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) DeleteBatch(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(r.products, id)
	}
	return nil
}

func (r *fakeProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.products)), nil
}

type fakeTemplateRepo struct {
	templates map[uuid.UUID]catalog.SpecificationTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[uuid.UUID]catalog.SpecificationTemplate)}
}

func (r *fakeTemplateRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.SpecificationTemplate, error) {
	if t, ok := r.templates[id]; ok {
		copied := t
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTemplateRepo) FindByCategory(_ context.Context, categoryID uuid.UUID) ([]catalog.SpecificationTemplate, error) {
	var out []catalog.SpecificationTemplate
	for _, t := range r.templates {
		if t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r *fakeTemplateRepo) Save(_ context.Context, template *catalog.SpecificationTemplate) error {
	r.templates[template.ID] = *template
	return nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.templates, id)
	return nil
}

type fakeAttributeRepo struct {
	attributes map[uuid.UUID]catalog.Attribute
}

func newFakeAttributeRepo() *fakeAttributeRepo {
	return &fakeAttributeRepo{attributes: make(map[uuid.UUID]catalog.Attribute)}
}

func (r *fakeAttributeRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Attribute, error) {
	if a, ok := r.attributes[id]; ok {
		copied := a
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAttributeRepo) FindByCategory(_ context.Context, categoryID uuid.UUID) ([]catalog.Attribute, error) {
	var out []catalog.Attribute
	for _, a := range r.attributes {
		if a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttributeRepo) FindByCategoryAndKey(_ context.Context, categoryID uuid.UUID, externalKey string) (*catalog.Attribute, error) {
	for _, a := range r.attributes {
		if a.CategoryID == categoryID && a.ExternalKey == externalKey {
			copied := a
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAttributeRepo) Save(_ context.Context, attribute *catalog.Attribute) error {
	r.attributes[attribute.ID] = *attribute
	return nil
}

func (r *fakeAttributeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.attributes, id)
	return nil
}

type fakeManufacturerRepo struct {
	manufacturers map[uuid.UUID]catalog.Manufacturer
}

func newFakeManufacturerRepo() *fakeManufacturerRepo {
	return &fakeManufacturerRepo{manufacturers: make(map[uuid.UUID]catalog.Manufacturer)}
}

func (r *fakeManufacturerRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Manufacturer, error) {
	if m, ok := r.manufacturers[id]; ok {
		copied := m
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeManufacturerRepo) FindBySlug(_ context.Context, slug string) (*catalog.Manufacturer, error) {
	for _, m := range r.manufacturers {
		if m.Slug == slug {
			copied := m
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeManufacturerRepo) FindAll(_ context.Context) ([]catalog.Manufacturer, error) {
	out := make([]catalog.Manufacturer, 0, len(r.manufacturers))
	for _, m := range r.manufacturers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeManufacturerRepo) Save(_ context.Context, manufacturer *catalog.Manufacturer) error {
	r.manufacturers[manufacturer.ID] = *manufacturer
	return nil
}

func (r *fakeManufacturerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.manufacturers, id)
	return nil
}

type fakeRunRepo struct {
	runs []domainsync.SyncRun
}

func (r *fakeRunRepo) FindByID(_ context.Context, id uuid.UUID) (*domainsync.SyncRun, error) {
	for i := range r.runs {
		if r.runs[i].ID == id {
			copied := r.runs[i]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRunRepo) FindRecent(_ context.Context, limit int) ([]domainsync.SyncRun, error) {
	out := make([]domainsync.SyncRun, len(r.runs))
	copy(out, r.runs)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeRunRepo) FindByType(_ context.Context, syncType domainsync.SyncType, limit int) ([]domainsync.SyncRun, error) {
	var out []domainsync.SyncRun
	for i := range r.runs {
		if r.runs[i].Type == syncType {
			out = append(out, r.runs[i])
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeRunRepo) Save(_ context.Context, run *domainsync.SyncRun) error {
	for i := range r.runs {
		if r.runs[i].ID == run.ID {
			r.runs[i] = *run
			return nil
		}
	}
	r.runs = append(r.runs, *run)
	return nil
}

type fakeProvider struct {
	code       string
	categories []domainsync.RawCategory
	fetchErr   error
}

func (p *fakeProvider) Code() domainsync.ProviderCode {
	return domainsync.ProviderCode(p.code)
}

func (p *fakeProvider) FetchCategories(_ context.Context) ([]domainsync.RawCategory, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.categories, nil
}

func (p *fakeProvider) FetchProducts(_ context.Context, _ string) ([]domainsync.RawProduct, error) {
	return nil, p.fetchErr
}

func (p *fakeProvider) FetchManufacturers(_ context.Context, _ string) ([]string, error) {
	return nil, p.fetchErr
}

func (p *fakeProvider) FetchParameterOptions(_ context.Context, _ string) ([]domainsync.RawParameterOption, error) {
	return nil, p.fetchErr
}

func (p *fakeProvider) FetchDocuments(_ context.Context, _ string) ([]domainsync.RawDocument, error) {
	return nil, p.fetchErr
}

type heldLock struct{}

func (heldLock) Acquire(_ context.Context, _ string) (func(), error) {
	return nil, shared.NewDomainError("LOCKED", "lock held")
}

type openLock struct{}

func (openLock) Acquire(_ context.Context, _ string) (func(), error) {
	return func() {}, nil
}
