package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/shop/backend/internal/domain/catalog"
	"github.com/shop/backend/internal/domain/shared"
)

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
