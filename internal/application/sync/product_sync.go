package syncapp

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shop/backend/internal/domain/catalog"
	"github.com/shop/backend/internal/domain/shared"
	domainsync "github.com/shop/backend/internal/domain/sync"
)

// productRecord is one raw product queued for reconciliation
type productRecord struct {
	provider string
	raw      domainsync.RawProduct
}

// syncProducts reconciles provider products into the canonical catalog. Each
// record is identified by the provider's external id first and the SKU second,
// its category resolved through the matching cascade, its manufacturer
// found-or-created, and its properties mapped onto the attribute dictionary.
// Datasheet documents are attached in a final pass.
func (s *SyncService) syncProducts(ctx context.Context) (domainsync.Counters, error) {
	if _, err := s.removeDuplicates(ctx); err != nil {
		return domainsync.Counters{}, err
	}

	tree, err := s.categories.FindTree(ctx)
	if err != nil {
		return domainsync.Counters{}, err
	}
	matcher := NewCategoryMatcher(tree)
	resolver := NewAttributeResolver(s.attributes, s.logger)

	var total domainsync.Counters
	for _, provider := range s.providers {
		code := provider.Code().String()

		var records []productRecord
		for _, pc := range s.providerCategories(tree, provider) {
			products, err := provider.FetchProducts(ctx, pc.handle)
			if err != nil {
				s.logger.Warn("product fetch failed",
					zap.String("provider", code),
					zap.String("category", pc.category.Slug),
					zap.Error(err))
				continue
			}
			for i := range products {
				records = append(records, productRecord{provider: code, raw: products[i]})
			}
		}

		counters := ProcessInChunks(ctx, records, s.chunks, s.logger, func(ctx context.Context, record productRecord) (Outcome, error) {
			return s.upsertProduct(ctx, matcher, resolver, record)
		}, nil)
		total.Add(counters)

		total.Add(s.attachDocuments(ctx, provider, tree))
	}

	stats := matcher.Stats()
	fields := make([]zap.Field, 0, len(stats))
	for strategy, count := range stats {
		fields = append(fields, zap.Int(string(strategy), count))
	}
	s.logger.Info("category match statistics", fields...)

	return total, nil
}

// upsertProduct reconciles a single raw product record
func (s *SyncService) upsertProduct(ctx context.Context, matcher *CategoryMatcher, resolver *AttributeResolver, record productRecord) (Outcome, error) {
	raw := record.raw

	product, created, err := s.findOrCreateProduct(ctx, record)
	if err != nil {
		return OutcomeSkipped, err
	}

	if raw.Name != "" {
		if err := product.Rename(raw.Name); err != nil {
			return OutcomeSkipped, err
		}
	}
	if raw.Description != "" {
		product.SetDescription(raw.Description)
	}
	if raw.ExternalID != "" {
		product.SetExternalID(record.provider, raw.ExternalID)
	}

	price, err := parsePrice(raw.Price)
	if err != nil {
		return OutcomeSkipped, err
	}
	oldPrice, err := parsePrice(raw.OldPrice)
	if err != nil {
		return OutcomeSkipped, err
	}
	if err := product.SetPrices(price, oldPrice); err != nil {
		return OutcomeSkipped, err
	}

	labels := NewCategoryLabels(raw.Category1, raw.Category2, raw.Category3)
	category, strategy := matcher.MatchForAssignment(labels)
	s.recordMatch(ctx, strategy)
	if category != nil {
		if err := product.SetCategory(category); err != nil {
			return OutcomeSkipped, err
		}
	} else if !labels.IsEmpty() {
		// An unmatched labelled record is never silently accepted: the miss is
		// counted as a record error so drifting provider taxonomies surface.
		s.logger.Warn("no category match, record skipped",
			zap.String("sku", product.SKU),
			zap.String("level1", labels.Level1),
			zap.String("level2", labels.Level2),
			zap.String("level3", labels.Level3))
		return OutcomeSkipped, shared.NewDomainError("CATEGORY_UNMATCHED",
			"No canonical category matches the record's category labels")
	}

	if raw.Manufacturer != "" {
		if err := s.assignManufacturer(ctx, product, record.provider, raw.Manufacturer); err != nil {
			return OutcomeSkipped, err
		}
	}

	if category != nil {
		if err := s.assignProperties(ctx, resolver, product, category, raw.Properties); err != nil {
			return OutcomeSkipped, err
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		return OutcomeSkipped, err
	}
	if created {
		return OutcomeCreated, nil
	}
	return OutcomeUpdated, nil
}

// findOrCreateProduct identifies the canonical row for a raw record: the
// provider's external id wins over the SKU, so a provider-side SKU change
// updates the row instead of forking it.
func (s *SyncService) findOrCreateProduct(ctx context.Context, record productRecord) (*catalog.Product, bool, error) {
	raw := record.raw

	if raw.ExternalID != "" {
		product, err := s.products.FindByExternalID(ctx, record.provider, raw.ExternalID)
		if err == nil {
			return product, false, nil
		}
		if !isNotFound(err) {
			return nil, false, err
		}
	}

	sku := strings.TrimSpace(raw.SKU)
	if sku == "" {
		sku = strings.TrimSpace(raw.ExternalID)
	}
	if sku == "" {
		return nil, false, shared.NewDomainError("INVALID_RECORD", "Product record carries neither SKU nor external id")
	}

	product, err := s.products.FindBySKU(ctx, sku)
	if err == nil {
		return product, false, nil
	}
	if !isNotFound(err) {
		return nil, false, err
	}

	product, err = catalog.NewProduct(sku, raw.Name)
	if err != nil {
		return nil, false, err
	}
	return product, true, nil
}

func (s *SyncService) assignManufacturer(ctx context.Context, product *catalog.Product, provider, name string) error {
	slug := catalog.NormalizeSlug(name)
	if slug == "" {
		return nil
	}
	manufacturer, err := s.manufacturers.FindBySlug(ctx, slug)
	if isNotFound(err) {
		manufacturer, err = catalog.NewManufacturer(name)
		if err != nil {
			return err
		}
		manufacturer.SetExternalID(provider, "")
		if err := s.manufacturers.Save(ctx, manufacturer); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	product.SetManufacturer(manufacturer.ID)
	return nil
}

// assignProperties maps the raw property pairs onto the category's attribute
// dictionary. Unresolvable pairs are skipped by the resolver; they never fail
// the record.
func (s *SyncService) assignProperties(ctx context.Context, resolver *AttributeResolver, product *catalog.Product, category *catalog.Category, properties map[string]string) error {
	if len(properties) == 0 {
		return nil
	}
	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		attribute, option, err := resolver.Resolve(ctx, category, key, properties[key])
		if err != nil {
			return err
		}
		if attribute == nil || option == nil {
			continue
		}
		product.AssignAttribute(attribute.ID, option.ID)
	}
	return nil
}

// attachDocuments fetches datasheet documents per provider category and links
// them to the products they belong to.
func (s *SyncService) attachDocuments(ctx context.Context, provider domainsync.CatalogProvider, tree []catalog.Category) domainsync.Counters {
	var counters domainsync.Counters
	code := provider.Code().String()

	for _, pc := range s.providerCategories(tree, provider) {
		documents, err := provider.FetchDocuments(ctx, pc.handle)
		if err != nil {
			s.logger.Warn("document fetch failed",
				zap.String("provider", code),
				zap.String("category", pc.category.Slug),
				zap.Error(err))
			continue
		}
		for _, document := range documents {
			if document.URL == "" {
				continue
			}
			counters.Processed++
			product, err := s.findDocumentTarget(ctx, code, document)
			if err != nil {
				if !isNotFound(err) {
					counters.Errors++
					s.logger.Warn("document lookup failed", zap.String("url", document.URL), zap.Error(err))
				}
				continue
			}
			if product.DocumentURL == document.URL {
				continue
			}
			product.SetDocumentURL(document.URL)
			if err := s.products.Save(ctx, product); err != nil {
				counters.Errors++
				s.logger.Warn("document attach failed", zap.String("sku", product.SKU), zap.Error(err))
				continue
			}
			counters.Updated++
		}
	}
	return counters
}

func (s *SyncService) findDocumentTarget(ctx context.Context, provider string, document domainsync.RawDocument) (*catalog.Product, error) {
	if document.ProductExternalID != "" {
		product, err := s.products.FindByExternalID(ctx, provider, document.ProductExternalID)
		if err == nil {
			return product, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	if document.SKU != "" {
		return s.products.FindBySKU(ctx, document.SKU)
	}
	return nil, shared.ErrNotFound
}

// parsePrice converts a provider price string to a decimal. Empty means zero;
// a malformed value is a record error.
func parsePrice(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	value = strings.ReplaceAll(value, ",", ".")
	return decimal.NewFromString(value)
}
