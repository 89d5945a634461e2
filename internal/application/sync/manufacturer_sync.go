package syncapp

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/shop/backend/internal/domain/catalog"
	domainsync "github.com/shop/backend/internal/domain/sync"
)

// syncManufacturers collects manufacturer names from every provider category
// and creates the missing ones. Manufacturers are keyed by normalized slug,
// so "Bosch" and "BOSCH" from two providers land on one row.
func (s *SyncService) syncManufacturers(ctx context.Context) (domainsync.Counters, error) {
	tree, err := s.categories.FindTree(ctx)
	if err != nil {
		return domainsync.Counters{}, err
	}

	seen := make(map[string]string)
	for _, provider := range s.providers {
		for _, pc := range s.providerCategories(tree, provider) {
			names, err := provider.FetchManufacturers(ctx, pc.handle)
			if err != nil {
				s.logger.Warn("manufacturer fetch failed",
					zap.String("provider", provider.Code().String()),
					zap.String("category", pc.category.Slug),
					zap.Error(err))
				continue
			}
			for _, name := range names {
				name = strings.TrimSpace(name)
				slug := catalog.NormalizeSlug(name)
				if slug == "" {
					continue
				}
				if _, ok := seen[slug]; !ok {
					seen[slug] = name
				}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for _, name := range seen {
		names = append(names, name)
	}

	counters := ProcessInChunks(ctx, names, s.chunks, s.logger, func(ctx context.Context, name string) (Outcome, error) {
		return s.upsertManufacturer(ctx, name)
	}, nil)
	return counters, nil
}

func (s *SyncService) upsertManufacturer(ctx context.Context, name string) (Outcome, error) {
	slug := catalog.NormalizeSlug(name)
	existing, err := s.manufacturers.FindBySlug(ctx, slug)
	if err == nil && existing != nil {
		return OutcomeSkipped, nil
	}
	if err != nil && !isNotFound(err) {
		return OutcomeSkipped, err
	}

	manufacturer, err := catalog.NewManufacturer(name)
	if err != nil {
		return OutcomeSkipped, err
	}
	if err := s.manufacturers.Save(ctx, manufacturer); err != nil {
		return OutcomeSkipped, err
	}
	return OutcomeCreated, nil
}
