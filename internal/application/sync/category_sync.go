package syncapp

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/shop/backend/internal/domain/catalog"
	domainsync "github.com/shop/backend/internal/domain/sync"
)

// syncCategories walks each provider's category tree top-down and reconciles
// it into the canonical tree. Parents are upserted before children so that a
// child always finds its canonical parent in place.
func (s *SyncService) syncCategories(ctx context.Context) (domainsync.Counters, error) {
	var total domainsync.Counters
	var errs []error

	for _, provider := range s.providers {
		tree, err := provider.FetchCategories(ctx)
		if err != nil {
			s.logger.Error("category fetch failed",
				zap.String("provider", provider.Code().String()),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		for i := range tree {
			total.Add(s.upsertCategoryTree(ctx, provider.Code().String(), tree[i], nil))
		}
	}
	return total, errors.Join(errs...)
}

// upsertCategoryTree reconciles one raw node and recurses into its children.
// A failed node is counted and its subtree skipped: without the parent in
// place the children cannot be anchored anywhere.
func (s *SyncService) upsertCategoryTree(ctx context.Context, provider string, raw domainsync.RawCategory, parent *catalog.Category) domainsync.Counters {
	var counters domainsync.Counters
	counters.Processed++

	category, created, err := s.upsertCategory(ctx, provider, raw, parent)
	if err != nil {
		counters.Errors++
		s.logger.Warn("category upsert failed",
			zap.String("provider", provider),
			zap.String("external_id", raw.ExternalID),
			zap.String("name", raw.Name),
			zap.Error(err))
		return counters
	}
	if created {
		counters.Created++
	} else {
		counters.Updated++
	}

	if category.Level >= catalog.MaxCategoryDepth-1 && len(raw.Children) > 0 {
		s.logger.Warn("category children beyond maximum depth dropped",
			zap.String("provider", provider),
			zap.String("path", category.Path),
			zap.Int("dropped", len(raw.Children)))
		return counters
	}
	for i := range raw.Children {
		counters.Add(s.upsertCategoryTree(ctx, provider, raw.Children[i], category))
	}
	return counters
}

// upsertCategory reconciles one raw category: by the provider's external ref
// first, then by slug. Matching by slug lets two providers converge on the
// same canonical node instead of forking the tree.
func (s *SyncService) upsertCategory(ctx context.Context, provider string, raw domainsync.RawCategory, parent *catalog.Category) (*catalog.Category, bool, error) {
	existing, err := s.findCategory(ctx, provider, raw)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		if raw.Slug != "" {
			existing.SetProviderSlug(raw.Slug)
		}
		if raw.ExternalID != "" {
			existing.SetExternalRef(provider, raw.ExternalID)
		}
		if err := s.categories.Save(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	var category *catalog.Category
	if parent == nil {
		category, err = catalog.NewCategory(raw.Name)
	} else {
		category, err = catalog.NewChildCategory(raw.Name, parent)
	}
	if err != nil {
		return nil, false, err
	}
	if raw.Slug != "" {
		category.SetProviderSlug(raw.Slug)
	}
	if raw.ExternalID != "" {
		category.SetExternalRef(provider, raw.ExternalID)
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, false, err
	}
	return category, true, nil
}

func (s *SyncService) findCategory(ctx context.Context, provider string, raw domainsync.RawCategory) (*catalog.Category, error) {
	if raw.ExternalID != "" {
		category, err := s.categories.FindByExternalRef(ctx, provider, raw.ExternalID)
		if err == nil {
			return category, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}

	slug := catalog.NormalizeSlug(raw.Slug)
	if slug == "" {
		slug = catalog.NormalizeSlug(raw.Name)
	}
	if slug == "" {
		return nil, nil
	}
	category, err := s.categories.FindBySlug(ctx, slug)
	if err == nil {
		return category, nil
	}
	if isNotFound(err) {
		return nil, nil
	}
	return nil, err
}
