package syncapp

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/shop/backend/internal/domain/catalog"
	"github.com/shop/backend/internal/domain/shared"
	domainsync "github.com/shop/backend/internal/domain/sync"
)

// ---------- in-memory repositories ----------

type memCategoryRepo struct {
	mu         sync.Mutex
	categories map[uuid.UUID]catalog.Category
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{categories: make(map[uuid.UUID]catalog.Category)}
}

func (r *memCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.categories[id]; ok {
		copied := c
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCategoryRepo) FindBySlug(_ context.Context, slug string) (*catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Slug == slug {
			copied := c
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCategoryRepo) FindByExternalRef(_ context.Context, provider, externalID string) (*catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if ref, ok := c.ExternalRef(provider); ok && ref == externalID {
			copied := c
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCategoryRepo) FindAll(ctx context.Context, _ shared.Filter) ([]catalog.Category, error) {
	return r.FindTree(ctx)
}

func (r *memCategoryRepo) FindTree(_ context.Context) ([]catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (r *memCategoryRepo) FindChildren(_ context.Context, parentID uuid.UUID) ([]catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Category
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) FindRoots(_ context.Context) ([]catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Category
	for _, c := range r.categories {
		if c.ParentID == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) FindDescendants(_ context.Context, categoryID uuid.UUID) ([]catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *memCategoryRepo) Save(_ context.Context, category *catalog.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[category.ID] = *category
	return nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.categories, id)
	return nil
}

func (r *memCategoryRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.categories)), nil
}

type memProductRepo struct {
	mu       sync.Mutex
	order    []uuid.UUID
	products map[uuid.UUID]catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]catalog.Product)}
}

func (r *memProductRepo) ordered() []catalog.Product {
	out := make([]catalog.Product, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		copied := p
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.ordered() {
		if p.SKU == sku {
			copied := p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindByExternalID(_ context.Context, provider, externalID string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.ordered() {
		if p.Provider == provider && p.ExternalID == externalID {
			copied := p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ordered(), nil
}

func (r *memProductRepo) FindByCategory(_ context.Context, categoryID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Product
	for _, p := range r.ordered() {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindDuplicateSKUs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, p := range r.ordered() {
		counts[p.SKU]++
	}
	var out []string
	for sku, n := range counts {
		if n > 1 {
			out = append(out, sku)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *memProductRepo) FindDuplicateExternalIDs(_ context.Context) ([]catalog.ExternalIDPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[catalog.ExternalIDPair]int)
	for _, p := range r.ordered() {
		if p.ExternalID == "" {
			continue
		}
		counts[catalog.ExternalIDPair{Provider: p.Provider, ExternalID: p.ExternalID}]++
	}
	var out []catalog.ExternalIDPair
	for pair, n := range counts {
		if n > 1 {
			out = append(out, pair)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindAllBySKU(_ context.Context, sku string) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Product
	for _, p := range r.ordered() {
		if p.SKU == sku {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindAllByExternalID(_ context.Context, provider, externalID string) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Product
	for _, p := range r.ordered() {
		if p.Provider == provider && p.ExternalID == externalID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		r.order = append(r.order, product.ID)
	}
	r.products[product.ID] = *product
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) DeleteBatch(_ context.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.products, id)
	}
	return nil
}

func (r *memProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

type memAttributeRepo struct {
	mu         sync.Mutex
	attributes map[uuid.UUID]catalog.Attribute
	saves      int
}

func newMemAttributeRepo() *memAttributeRepo {
	return &memAttributeRepo{attributes: make(map[uuid.UUID]catalog.Attribute)}
}

func (r *memAttributeRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Attribute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.attributes[id]; ok {
		copied := a
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memAttributeRepo) FindByCategory(_ context.Context, categoryID uuid.UUID) ([]catalog.Attribute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Attribute
	for _, a := range r.attributes {
		if a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memAttributeRepo) FindByCategoryAndKey(_ context.Context, categoryID uuid.UUID, externalKey string) (*catalog.Attribute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attributes {
		if a.CategoryID == categoryID && a.ExternalKey == externalKey {
			copied := a
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memAttributeRepo) Save(_ context.Context, attribute *catalog.Attribute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attributes[attribute.ID] = *attribute
	r.saves++
	return nil
}

func (r *memAttributeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attributes, id)
	return nil
}

type memManufacturerRepo struct {
	mu            sync.Mutex
	manufacturers map[uuid.UUID]catalog.Manufacturer
}

func newMemManufacturerRepo() *memManufacturerRepo {
	return &memManufacturerRepo{manufacturers: make(map[uuid.UUID]catalog.Manufacturer)}
}

func (r *memManufacturerRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Manufacturer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.manufacturers[id]; ok {
		copied := m
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memManufacturerRepo) FindBySlug(_ context.Context, slug string) (*catalog.Manufacturer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.manufacturers {
		if m.Slug == slug {
			copied := m
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memManufacturerRepo) FindAll(_ context.Context) ([]catalog.Manufacturer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Manufacturer, 0, len(r.manufacturers))
	for _, m := range r.manufacturers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memManufacturerRepo) Save(_ context.Context, manufacturer *catalog.Manufacturer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manufacturers[manufacturer.ID] = *manufacturer
	return nil
}

func (r *memManufacturerRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.manufacturers, id)
	return nil
}

type memRunRepo struct {
	mu   sync.Mutex
	runs []domainsync.SyncRun
}

func newMemRunRepo() *memRunRepo {
	return &memRunRepo{}
}

func (r *memRunRepo) FindByID(_ context.Context, id uuid.UUID) (*domainsync.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].ID == id {
			copied := r.runs[i]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memRunRepo) FindRecent(_ context.Context, limit int) ([]domainsync.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domainsync.SyncRun, len(r.runs))
	copy(out, r.runs)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *memRunRepo) FindByType(_ context.Context, syncType domainsync.SyncType, limit int) ([]domainsync.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *memRunRepo) Save(_ context.Context, run *domainsync.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].ID == run.ID {
			r.runs[i] = *run
			return nil
		}
	}
	r.runs = append(r.runs, *run)
	return nil
}

// ---------- provider, lock and metrics stubs ----------

type stubProvider struct {
	code          string
	categories    []domainsync.RawCategory
	products      map[string][]domainsync.RawProduct
	manufacturers map[string][]string
	parameters    map[string][]domainsync.RawParameterOption
	documents     map[string][]domainsync.RawDocument
	fetchErr      error
}

func (p *stubProvider) Code() domainsync.ProviderCode {
	return domainsync.ProviderCode(p.code)
}

func (p *stubProvider) FetchCategories(_ context.Context) ([]domainsync.RawCategory, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.categories, nil
}

func (p *stubProvider) FetchProducts(_ context.Context, handle string) ([]domainsync.RawProduct, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.products[handle], nil
}

func (p *stubProvider) FetchManufacturers(_ context.Context, handle string) ([]string, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.manufacturers[handle], nil
}

func (p *stubProvider) FetchParameterOptions(_ context.Context, handle string) ([]domainsync.RawParameterOption, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.parameters[handle], nil
}

func (p *stubProvider) FetchDocuments(_ context.Context, handle string) ([]domainsync.RawDocument, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.documents[handle], nil
}

type stubLock struct {
	mu       sync.Mutex
	held     bool
	acquires int
}

func (l *stubLock) Acquire(_ context.Context, _ string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, ErrSyncAlreadyRunning
	}
	l.held = true
	l.acquires++
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.held = false
	}, nil
}

type stubMetrics struct {
	mu      sync.Mutex
	matches map[string]int
	runs    []string
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{matches: make(map[string]int)}
}

func (m *stubMetrics) RecordMatch(_ context.Context, strategy string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[strategy]++
}

func (m *stubMetrics) RecordRun(_ context.Context, syncType, status string, _ domainsync.Counters) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, syncType+":"+status)
}
