package syncapp

import (
	"context"

	"go.uber.org/zap"

	"github.com/shop/backend/internal/domain/catalog"
	domainsync "github.com/shop/backend/internal/domain/sync"
)

// parameterRecord is one (category, key, value) triple queued for the
// dictionary resolver.
type parameterRecord struct {
	category *catalog.Category
	key      string
	value    string
}

// syncParameters imports the provider parameter dictionaries: every offered
// (key, value) pair is resolved against the attribute dictionary of the
// category it was fetched for, creating missing attributes and options.
func (s *SyncService) syncParameters(ctx context.Context) (domainsync.Counters, error) {
	tree, err := s.categories.FindTree(ctx)
	if err != nil {
		return domainsync.Counters{}, err
	}

	var records []parameterRecord
	for _, provider := range s.providers {
		for _, pc := range s.providerCategories(tree, provider) {
			options, err := provider.FetchParameterOptions(ctx, pc.handle)
			if err != nil {
				s.logger.Warn("parameter fetch failed",
					zap.String("provider", provider.Code().String()),
					zap.String("category", pc.category.Slug),
					zap.Error(err))
				continue
			}
			for _, option := range options {
				for _, value := range option.Values {
					records = append(records, parameterRecord{
						category: pc.category,
						key:      option.Key,
						value:    value,
					})
				}
			}
		}
	}

	resolver := NewAttributeResolver(s.attributes, s.logger)
	counters := ProcessInChunks(ctx, records, s.chunks, s.logger, func(ctx context.Context, record parameterRecord) (Outcome, error) {
		before := resolver.Stats()
		if _, _, err := resolver.Resolve(ctx, record.category, record.key, record.value); err != nil {
			return OutcomeSkipped, err
		}
		after := resolver.Stats()
		if after.CreatedAttributes > before.CreatedAttributes || after.CreatedOptions > before.CreatedOptions {
			return OutcomeCreated, nil
		}
		return OutcomeSkipped, nil
	}, nil)

	stats := resolver.Stats()
	s.logger.Info("parameter dictionaries synced",
		zap.Int("resolved", stats.Resolved),
		zap.Int("attributes_created", stats.CreatedAttributes),
		zap.Int("options_created", stats.CreatedOptions),
		zap.Int("skipped", stats.Skipped))
	return counters, nil
}
