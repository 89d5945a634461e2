package syncapp

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shop/backend/internal/domain/catalog"
)

// defaultKeyNames translates well-known provider property keys to the display
// names the dictionary should carry. Keys absent from the table fall back to a
// mechanical prettification of the key itself.
var defaultKeyNames = map[string]string{
	"cvjat":       "Цвят",
	"material":    "Материал",
	"razmer":      "Размер",
	"teglo":       "Тегло",
	"moshtnost":   "Мощност",
	"kapacitet":   "Капацитет",
	"garancija":   "Гаранция",
	"proizvodite": "Производител",
}

// ResolverStats summarizes one run of the dictionary resolver
type ResolverStats struct {
	Resolved          int
	CreatedAttributes int
	CreatedOptions    int
	Skipped           int
}

// AttributeResolver maps a provider (key, value) property pair onto the
// category-scoped attribute dictionary, creating missing attributes and
// options on the fly. It is a per-run object: the cache it builds over the
// dictionary is never invalidated, so a fresh resolver must be created for
// every sync run.
type AttributeResolver struct {
	attributes catalog.AttributeRepository
	logger     *zap.Logger
	keyNames   map[string]string

	// cache holds the dictionaries loaded so far, one per category
	cache  map[uuid.UUID][]*catalog.Attribute
	loaded map[uuid.UUID]bool
	stats  ResolverStats
}

// NewAttributeResolver creates a resolver for a single sync run
func NewAttributeResolver(attributes catalog.AttributeRepository, logger *zap.Logger) *AttributeResolver {
	return &AttributeResolver{
		attributes: attributes,
		logger:     logger,
		keyNames:   defaultKeyNames,
		cache:      make(map[uuid.UUID][]*catalog.Attribute),
		loaded:     make(map[uuid.UUID]bool),
	}
}

// Resolve maps one provider property onto the dictionary of the given
// category and returns the attribute and the option the value corresponds to.
// A nil or invalid category is a soft miss: the pair is skipped, counted, and
// no error is returned, so one unmatchable record never aborts a run.
func (r *AttributeResolver) Resolve(ctx context.Context, category *catalog.Category, key, value string) (*catalog.Attribute, *catalog.AttributeOption, error) {
	if category == nil || !category.IsValid() {
		r.stats.Skipped++
		return nil, nil, nil
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		r.stats.Skipped++
		return nil, nil, nil
	}

	if err := r.ensureLoaded(ctx, category.ID); err != nil {
		return nil, nil, err
	}

	attribute, err := r.resolveAttribute(ctx, category, key)
	if err != nil {
		return nil, nil, err
	}

	option, err := r.resolveOption(ctx, attribute, value)
	if err != nil {
		return nil, nil, err
	}

	r.stats.Resolved++
	return attribute, option, nil
}

// Stats returns the counters accumulated by this resolver so far
func (r *AttributeResolver) Stats() ResolverStats {
	return r.stats
}

func (r *AttributeResolver) ensureLoaded(ctx context.Context, categoryID uuid.UUID) error {
	if r.loaded[categoryID] {
		return nil
	}
	attributes, err := r.attributes.FindByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	cached := make([]*catalog.Attribute, 0, len(attributes))
	for i := range attributes {
		cached = append(cached, &attributes[i])
	}
	r.cache[categoryID] = cached
	r.loaded[categoryID] = true
	return nil
}

// resolveAttribute finds the dictionary entry for a provider key. Lookup is
// two-stage: first by the external key itself, then by the normalized display
// name the key translates to, so that an attribute created manually under its
// display name is reused rather than duplicated.
func (r *AttributeResolver) resolveAttribute(ctx context.Context, category *catalog.Category, key string) (*catalog.Attribute, error) {
	for _, attribute := range r.cache[category.ID] {
		if attribute.ExternalKey == key {
			return attribute, nil
		}
	}

	name := r.displayName(key)
	normalized := catalog.NormalizeLookup(name)
	for _, attribute := range r.cache[category.ID] {
		if attribute.NormalizedName() == normalized {
			return attribute, nil
		}
	}

	attribute, err := catalog.NewAttribute(category.ID, key, name)
	if err != nil {
		return nil, err
	}
	if err := r.attributes.Save(ctx, attribute); err != nil {
		return nil, err
	}
	r.cache[category.ID] = append(r.cache[category.ID], attribute)
	r.stats.CreatedAttributes++
	r.logger.Debug("created attribute",
		zap.String("category_id", category.ID.String()),
		zap.String("key", key),
		zap.String("name", name))
	return attribute, nil
}

func (r *AttributeResolver) resolveOption(ctx context.Context, attribute *catalog.Attribute, value string) (*catalog.AttributeOption, error) {
	if option := attribute.FindOption(value); option != nil {
		return option, nil
	}
	if option := attribute.FindOptionNormalized(value); option != nil {
		return option, nil
	}

	option, err := attribute.AddOption(value)
	if err != nil {
		return nil, err
	}
	if err := r.attributes.Save(ctx, attribute); err != nil {
		return nil, err
	}
	r.stats.CreatedOptions++
	return option, nil
}

// displayName returns the human-readable name for a provider key: the
// translation table entry when one exists, otherwise the key with underscores
// replaced by spaces and the first letter upper-cased.
func (r *AttributeResolver) displayName(key string) string {
	if name, ok := r.keyNames[strings.ToLower(key)]; ok {
		return name
	}
	name := strings.ReplaceAll(key, "_", " ")
	runes := []rune(name)
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes)
}
