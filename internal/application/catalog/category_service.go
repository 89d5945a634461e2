package catalog

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/shop/backend/internal/domain/catalog"
	"github.com/shop/backend/internal/domain/shared"
)

// CategoryService handles category tree administration. Structural changes
// (slug change, move) rebuild the materialized paths of the whole subtree so
// the reconciliation matcher never sees a stale path.
type CategoryService struct {
	categories catalog.CategoryRepository
	products   catalog.ProductRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories catalog.CategoryRepository, products catalog.ProductRepository) *CategoryService {
	return &CategoryService{categories: categories, products: products}
}

// CreateCategory creates a root or child category
func (s *CategoryService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	var category *catalog.Category
	var err error

	if req.ParentID == nil {
		category, err = catalog.NewCategory(req.Name)
	} else {
		var parent *catalog.Category
		parent, err = s.categories.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		category, err = catalog.NewChildCategory(req.Name, parent)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.categories.FindBySlug(ctx, category.Slug); err == nil {
		return nil, shared.NewDomainError("DUPLICATE_SLUG", "A category with this slug already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	category.SetSortOrder(req.SortOrder)
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetCategory returns one category by id
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetTree returns the whole category tree nested by parent
func (s *CategoryService) GetTree(ctx context.Context) ([]*CategoryTreeNode, error) {
	categories, err := s.categories.FindTree(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uuid.UUID]*CategoryTreeNode, len(categories))
	for i := range categories {
		nodes[categories[i].ID] = &CategoryTreeNode{
			CategoryResponse: ToCategoryResponse(&categories[i]),
			Children:         []*CategoryTreeNode{},
		}
	}

	var roots []*CategoryTreeNode
	for i := range categories {
		node := nodes[categories[i].ID]
		if categories[i].ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*categories[i].ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots, nil
}

// RenameCategory updates the display name. The slug stays stable.
func (s *CategoryService) RenameCategory(ctx context.Context, id uuid.UUID, req RenameCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := category.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// ChangeCategorySlug replaces the slug and rebuilds the paths of the whole
// subtree.
func (s *CategoryService) ChangeCategorySlug(ctx context.Context, id uuid.UUID, req ChangeCategorySlugRequest) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	slug := catalog.NormalizeSlug(req.Slug)
	if other, err := s.categories.FindBySlug(ctx, slug); err == nil && other.ID != category.ID {
		return nil, shared.NewDomainError("DUPLICATE_SLUG", "A category with this slug already exists")
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	descendants, err := s.categories.FindDescendants(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := category.ChangeSlug(slug); err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	if err := s.rebuildDescendants(ctx, category, descendants); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// MoveCategory re-parents a category and rebuilds the subtree paths. A nil
// parent in the request makes the category a root.
func (s *CategoryService) MoveCategory(ctx context.Context, id uuid.UUID, req MoveCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var parent *catalog.Category
	if req.ParentID != nil {
		parent, err = s.categories.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
	}

	descendants, err := s.categories.FindDescendants(ctx, id)
	if err != nil {
		return nil, err
	}
	if parent != nil && parent.Level+1+subtreeDepth(category, descendants) > catalog.MaxCategoryDepth-1 {
		return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED", "Moving here would push descendants beyond the maximum depth")
	}
	if err := category.MoveTo(parent); err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	if err := s.rebuildDescendants(ctx, category, descendants); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// DeleteCategory removes a category. Categories that still anchor children or
// products are protected.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return err
	}
	children, err := s.categories.FindChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return shared.NewDomainError("CATEGORY_NOT_EMPTY", "Category still has child categories")
	}
	products, err := s.products.FindByCategory(ctx, id, shared.Filter{Page: 1, PageSize: 1})
	if err != nil {
		return err
	}
	if len(products) > 0 {
		return shared.NewDomainError("CATEGORY_NOT_EMPTY", "Category still has products assigned")
	}
	return s.categories.Delete(ctx, id)
}

// rebuildDescendants recomputes path and level for every descendant of a
// changed category, parents before children.
func (s *CategoryService) rebuildDescendants(ctx context.Context, changed *catalog.Category, descendants []catalog.Category) error {
	sort.Slice(descendants, func(i, j int) bool {
		return len(descendants[i].Path) < len(descendants[j].Path)
	})

	paths := map[uuid.UUID]*catalog.Category{changed.ID: changed}
	for i := range descendants {
		d := &descendants[i]
		if d.ParentID == nil {
			continue
		}
		parent, ok := paths[*d.ParentID]
		if !ok {
			continue
		}
		d.RebuildPath(parent.Path, parent.Level)
		if err := s.categories.Save(ctx, d); err != nil {
			return err
		}
		paths[d.ID] = d
	}
	return nil
}

// subtreeDepth returns how many levels hang below the given category
func subtreeDepth(category *catalog.Category, descendants []catalog.Category) int {
	deepest := category.Level
	for i := range descendants {
		if descendants[i].Level > deepest {
			deepest = descendants[i].Level
		}
	}
	return deepest - category.Level
}
