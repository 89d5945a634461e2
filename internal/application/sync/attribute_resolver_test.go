package syncapp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shop/backend/internal/domain/catalog"
)

func resolverFixture(t *testing.T) (*AttributeResolver, *memAttributeRepo, *catalog.Category) {
	t.Helper()
	repo := newMemAttributeRepo()
	root, err := catalog.NewCategory("Електроника")
	require.NoError(t, err)
	category, err := catalog.NewChildCategory("Телевизори", root)
	require.NoError(t, err)
	return NewAttributeResolver(repo, zap.NewNop()), repo, category
}

func TestAttributeResolver_CreatesMissingAttributeAndOption(t *testing.T) {
	resolver, repo, category := resolverFixture(t)

	attribute, option, err := resolver.Resolve(context.Background(), category, "cvjat", "Червен")
	require.NoError(t, err)
	require.NotNil(t, attribute)
	require.NotNil(t, option)

	assert.Equal(t, "Цвят", attribute.Name, "known key translates to its display name")
	assert.Equal(t, "cvjat", attribute.ExternalKey)
	assert.Equal(t, "Червен", option.Value)

	stats := resolver.Stats()
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 1, stats.CreatedAttributes)
	assert.Equal(t, 1, stats.CreatedOptions)

	saved, err := repo.FindByCategoryAndKey(context.Background(), category.ID, "cvjat")
	require.NoError(t, err)
	assert.Len(t, saved.Options, 1)
}

func TestAttributeResolver_ReusesAttributeByKey(t *testing.T) {
	resolver, _, category := resolverFixture(t)

	first, _, err := resolver.Resolve(context.Background(), category, "cvjat", "Червен")
	require.NoError(t, err)
	second, _, err := resolver.Resolve(context.Background(), category, "cvjat", "Син")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, resolver.Stats().CreatedAttributes)
	assert.Equal(t, 2, resolver.Stats().CreatedOptions)
}

func TestAttributeResolver_ReusesAttributeByDisplayName(t *testing.T) {
	resolver, repo, category := resolverFixture(t)

	// an attribute created through the admin surface has a name but no key
	manual, err := catalog.NewAttribute(category.ID, "", "цвят")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), manual))

	attribute, _, err := resolver.Resolve(context.Background(), category, "cvjat", "Червен")
	require.NoError(t, err)
	assert.Equal(t, manual.ID, attribute.ID, "key must land on the manually created attribute via its translated name")
	assert.Equal(t, 0, resolver.Stats().CreatedAttributes)
}

func TestAttributeResolver_OptionDeduplication(t *testing.T) {
	resolver, _, category := resolverFixture(t)

	_, first, err := resolver.Resolve(context.Background(), category, "cvjat", "Червен")
	require.NoError(t, err)
	_, second, err := resolver.Resolve(context.Background(), category, "cvjat", "  червен ")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "differently cased values are one option")
	assert.Equal(t, 1, resolver.Stats().CreatedOptions)
}

func TestAttributeResolver_SkipsWithoutValidCategory(t *testing.T) {
	resolver, _, _ := resolverFixture(t)

	attribute, option, err := resolver.Resolve(context.Background(), nil, "cvjat", "Червен")
	require.NoError(t, err)
	assert.Nil(t, attribute)
	assert.Nil(t, option)

	invalid := &catalog.Category{}
	attribute, option, err = resolver.Resolve(context.Background(), invalid, "cvjat", "Червен")
	require.NoError(t, err)
	assert.Nil(t, attribute)
	assert.Nil(t, option)

	assert.Equal(t, 2, resolver.Stats().Skipped)
}

func TestAttributeResolver_SkipsBlankPairs(t *testing.T) {
	resolver, _, category := resolverFixture(t)

	_, _, err := resolver.Resolve(context.Background(), category, "", "Червен")
	require.NoError(t, err)
	_, _, err = resolver.Resolve(context.Background(), category, "cvjat", "   ")
	require.NoError(t, err)

	assert.Equal(t, 2, resolver.Stats().Skipped)
	assert.Equal(t, 0, resolver.Stats().Resolved)
}

func TestAttributeResolver_DisplayNameFallback(t *testing.T) {
	resolver, _, category := resolverFixture(t)

	attribute, _, err := resolver.Resolve(context.Background(), category, "screen_size", "55")
	require.NoError(t, err)
	assert.Equal(t, "Screen size", attribute.Name)
}
