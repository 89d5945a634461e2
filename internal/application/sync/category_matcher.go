package syncapp

import (
	"strings"

	"github.com/google/uuid"

	"github.com/shop/backend/internal/domain/catalog"
)

// MatchStrategy names one rung of the category matching cascade. The names
// are stable: they key the per-run statistics and the exported metrics, which
// operators use to spot when the reliable strategies stop firing and matches
// drift toward the name-only fallback.
type MatchStrategy string

const (
	MatchExactPath             MatchStrategy = "exact_path"
	MatchLevel2NameUnderParent MatchStrategy = "level2_name_under_parent"
	MatchLevel2SlugUnderParent MatchStrategy = "level2_slug_under_parent"
	MatchPartialPath           MatchStrategy = "partial_path"
	MatchRootPath              MatchStrategy = "root_path"
	MatchProviderSlug          MatchStrategy = "provider_slug"
	MatchName                  MatchStrategy = "name"
	MatchNone                  MatchStrategy = "none"
)

// MatchStats counts hits per strategy within one run
type MatchStats map[MatchStrategy]int

// CategoryLabels is the denormalized 1-3 level category tuple of a source
// record. A literal "null" (any casing) is treated as absent.
type CategoryLabels struct {
	Level1 string
	Level2 string
	Level3 string
}

// NewCategoryLabels builds a label tuple, folding "null" markers to empty
func NewCategoryLabels(level1, level2, level3 string) CategoryLabels {
	return CategoryLabels{
		Level1: cleanLabel(level1),
		Level2: cleanLabel(level2),
		Level3: cleanLabel(level3),
	}
}

func cleanLabel(label string) string {
	trimmed := strings.TrimSpace(label)
	if strings.EqualFold(trimmed, "null") {
		return ""
	}
	return trimmed
}

// IsEmpty returns true when no level carries a label
func (l CategoryLabels) IsEmpty() bool {
	return l.Level1 == "" && l.Level2 == "" && l.Level3 == ""
}

// categoryIndex is the per-run snapshot of the canonical tree the matcher
// works against. It is seeded once from the repository and never mutated.
type categoryIndex struct {
	categories []catalog.Category
	byID       map[uuid.UUID]*catalog.Category
}

func newCategoryIndex(categories []catalog.Category) *categoryIndex {
	idx := &categoryIndex{
		categories: categories,
		byID:       make(map[uuid.UUID]*catalog.Category, len(categories)),
	}
	for i := range idx.categories {
		idx.byID[idx.categories[i].ID] = &idx.categories[i]
	}
	return idx
}

func (idx *categoryIndex) parentOf(c *catalog.Category) *catalog.Category {
	if c.ParentID == nil {
		return nil
	}
	return idx.byID[*c.ParentID]
}

// matcherStrategy is one pure matching rule: given the tree snapshot and a
// label tuple, return a hit or nil. Strategies never mutate state; ordering
// lives in the strategy list, not in control flow.
type matcherStrategy struct {
	name  MatchStrategy
	match func(idx *categoryIndex, labels CategoryLabels) *catalog.Category
}

// CategoryMatcher resolves a denormalized category label tuple to exactly one
// canonical category through an ordered cascade of strategies. Exact full-path
// matching is unambiguous and runs first; every subsequent strategy trades
// precision for recall.
type CategoryMatcher struct {
	index      *categoryIndex
	strategies []matcherStrategy
	stats      MatchStats
}

// NewCategoryMatcher creates a matcher over a snapshot of the canonical tree
func NewCategoryMatcher(categories []catalog.Category) *CategoryMatcher {
	return &CategoryMatcher{
		index:      newCategoryIndex(categories),
		strategies: defaultStrategies(),
		stats:      make(MatchStats),
	}
}

// Match runs the cascade and returns the first hit with the strategy that
// produced it, or (nil, MatchNone). Every hit has already passed the valid
// category guard; root rejection is the caller's concern (see
// MatchForAssignment).
func (m *CategoryMatcher) Match(labels CategoryLabels) (*catalog.Category, MatchStrategy) {
	if labels.IsEmpty() {
		m.stats[MatchNone]++
		return nil, MatchNone
	}
	for _, strategy := range m.strategies {
		if hit := strategy.match(m.index, labels); hit != nil {
			m.stats[strategy.name]++
			return hit, strategy.name
		}
	}
	m.stats[MatchNone]++
	return nil, MatchNone
}

// MatchForAssignment resolves a category a product may be assigned to. A hit
// on a tree root is rejected: roots exist only as structural ancestors, and a
// record that resolves to one is a reconciliation miss, never silently
// parked on an arbitrary node.
func (m *CategoryMatcher) MatchForAssignment(labels CategoryLabels) (*catalog.Category, MatchStrategy) {
	hit, strategy := m.Match(labels)
	if hit == nil {
		return nil, MatchNone
	}
	if hit.IsRoot() {
		return nil, MatchNone
	}
	return hit, strategy
}

// Stats returns the per-strategy hit counters accumulated so far
func (m *CategoryMatcher) Stats() MatchStats {
	out := make(MatchStats, len(m.stats))
	for k, v := range m.stats {
		out[k] = v
	}
	return out
}

func defaultStrategies() []matcherStrategy {
	return []matcherStrategy{
		{MatchExactPath, matchExactPath},
		{MatchLevel2NameUnderParent, matchLevel2NameUnderParent},
		{MatchLevel2SlugUnderParent, matchLevel2SlugUnderParent},
		{MatchPartialPath, matchPartialPath},
		{MatchRootPath, matchRootPath},
		{MatchProviderSlug, matchProviderSlug},
		{MatchName, matchName},
	}
}

// matchExactPath compares the normalized path of all present levels against
// every stored category path.
func matchExactPath(idx *categoryIndex, labels CategoryLabels) *catalog.Category {
	path := catalog.BuildPath(labels.Level1, labels.Level2, labels.Level3)
	if path == "" {
		return nil
	}
	return findByPath(idx, path)
}

// matchLevel2NameUnderParent searches for a category named like level-2 whose
// parent is named like level-1. Only attempted for two-level tuples.
func matchLevel2NameUnderParent(idx *categoryIndex, labels CategoryLabels) *catalog.Category {
	if labels.Level3 != "" || labels.Level1 == "" || labels.Level2 == "" {
		return nil
	}
	for i := range idx.categories {
		c := &idx.categories[i]
		if !c.IsValid() || !strings.EqualFold(c.Name, labels.Level2) {
			continue
		}
		parent := idx.parentOf(c)
		if parent != nil && strings.EqualFold(parent.Name, labels.Level1) {
			return c
		}
	}
	return nil
}

// matchLevel2SlugUnderParent is the provider-slug variant of the previous
// strategy: the normalized level-2 label is compared against the stored
// provider slug instead of the display name.
func matchLevel2SlugUnderParent(idx *categoryIndex, labels CategoryLabels) *catalog.Category {
	if labels.Level3 != "" || labels.Level1 == "" || labels.Level2 == "" {
		return nil
	}
	slug := catalog.NormalizeSlug(labels.Level2)
	if slug == "" {
		return nil
	}
	for i := range idx.categories {
		c := &idx.categories[i]
		if !c.IsValid() || c.ProviderSlug == "" || c.ProviderSlug != slug {
			continue
		}
		parent := idx.parentOf(c)
		if parent != nil && strings.EqualFold(parent.Name, labels.Level1) {
			return c
		}
	}
	return nil
}

// matchPartialPath retries the path match with levels 1+2 only, accepting the
// loss of the level-3 label.
func matchPartialPath(idx *categoryIndex, labels CategoryLabels) *catalog.Category {
	if labels.Level1 == "" || labels.Level2 == "" {
		return nil
	}
	path := catalog.BuildPath(labels.Level1, labels.Level2)
	if path == "" {
		return nil
	}
	return findByPath(idx, path)
}

// matchRootPath retries the path match with level 1 only
func matchRootPath(idx *categoryIndex, labels CategoryLabels) *catalog.Category {
	if labels.Level1 == "" {
		return nil
	}
	path := catalog.BuildPath(labels.Level1)
	if path == "" {
		return nil
	}
	return findByPath(idx, path)
}

// matchProviderSlug compares the normalized level-3 label, then level-2,
// against the stored provider slug without requiring any parent chain.
func matchProviderSlug(idx *categoryIndex, labels CategoryLabels) *catalog.Category {
	for _, label := range []string{labels.Level3, labels.Level2} {
		if label == "" {
			continue
		}
		slug := catalog.NormalizeSlug(label)
		if slug == "" {
			continue
		}
		for i := range idx.categories {
			c := &idx.categories[i]
			if c.IsValid() && c.ProviderSlug != "" && c.ProviderSlug == slug {
				return c
			}
		}
	}
	return nil
}

// matchName is the last resort: exact case-insensitive display name equality
// on level-3, then level-2, then level-1, ignoring hierarchy entirely.
func matchName(idx *categoryIndex, labels CategoryLabels) *catalog.Category {
	for _, label := range []string{labels.Level3, labels.Level2, labels.Level1} {
		if label == "" {
			continue
		}
		for i := range idx.categories {
			c := &idx.categories[i]
			if c.IsValid() && strings.EqualFold(c.Name, label) {
				return c
			}
		}
	}
	return nil
}

func findByPath(idx *categoryIndex, path string) *catalog.Category {
	for i := range idx.categories {
		c := &idx.categories[i]
		if c.IsValid() && strings.EqualFold(c.Path, path) {
			return c
		}
	}
	return nil
}
