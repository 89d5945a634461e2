package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	t.Run("Valid root category", func(t *testing.T) {
		category, err := NewCategory("Дом и Градина")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, category.ID)
		assert.Equal(t, "Дом и Градина", category.Name)
		assert.Equal(t, "dom-i-gradina", category.Slug)
		assert.Equal(t, "dom-i-gradina", category.Path)
		assert.Nil(t, category.ParentID)
		assert.Equal(t, 0, category.Level)
		assert.True(t, category.IsRoot())
		assert.True(t, category.Visible)
	})

	t.Run("Empty name rejected", func(t *testing.T) {
		_, err := NewCategory("   ")
		assert.Error(t, err)
	})
}

func TestNewChildCategory(t *testing.T) {
	root, err := NewCategory("Electronics")
	require.NoError(t, err)

	t.Run("Child path extends parent path", func(t *testing.T) {
		child, err := NewChildCategory("TVs, Audio & Video", root)
		require.NoError(t, err)
		assert.Equal(t, "electronics/tvs-audio-video", child.Path)
		assert.Equal(t, 1, child.Level)
		assert.Equal(t, &root.ID, child.ParentID)
		assert.False(t, child.IsRoot())
	})

	t.Run("Nil parent rejected", func(t *testing.T) {
		_, err := NewChildCategory("TVs", nil)
		assert.Error(t, err)
	})

	t.Run("Depth limit enforced", func(t *testing.T) {
		level1, err := NewChildCategory("Audio", root)
		require.NoError(t, err)
		level2, err := NewChildCategory("Speakers", level1)
		require.NoError(t, err)
		_, err = NewChildCategory("Bookshelf", level2)
		assert.Error(t, err)
	})
}

func TestCategory_ChangeSlug(t *testing.T) {
	root, _ := NewCategory("Electronics")
	child, _ := NewChildCategory("Cables", root)

	t.Run("Path recomputed on slug change", func(t *testing.T) {
		require.NoError(t, child.ChangeSlug("Кабели"))
		assert.Equal(t, "kabeli", child.Slug)
		assert.Equal(t, "electronics/kabeli", child.Path)
	})

	t.Run("Empty slug rejected", func(t *testing.T) {
		assert.Error(t, child.ChangeSlug("///"))
	})
}

func TestCategory_MoveTo(t *testing.T) {
	t.Run("Path recomputed on move", func(t *testing.T) {
		oldParent, _ := NewCategory("Electronics")
		newParent, _ := NewCategory("Appliances")
		child, _ := NewChildCategory("Cables", oldParent)

		require.NoError(t, child.MoveTo(newParent))
		assert.Equal(t, "appliances/cables", child.Path)
		assert.Equal(t, 1, child.Level)
	})

	t.Run("Move to nil makes root", func(t *testing.T) {
		parent, _ := NewCategory("Electronics")
		child, _ := NewChildCategory("Cables", parent)

		require.NoError(t, child.MoveTo(nil))
		assert.True(t, child.IsRoot())
		assert.Equal(t, "cables", child.Path)
		assert.Equal(t, 0, child.Level)
	})

	t.Run("Cannot move under itself", func(t *testing.T) {
		category, _ := NewCategory("Electronics")
		assert.Error(t, category.MoveTo(category))
	})

	t.Run("Cannot move under own descendant", func(t *testing.T) {
		parent, _ := NewCategory("Electronics")
		child, _ := NewChildCategory("Audio", parent)
		assert.Error(t, parent.MoveTo(child))
	})
}

func TestCategory_RebuildPath(t *testing.T) {
	root, _ := NewCategory("Electronics")
	child, _ := NewChildCategory("Audio", root)

	require.NoError(t, root.ChangeSlug("elektronika"))
	child.RebuildPath(root.Path, root.Level)
	assert.Equal(t, "elektronika/audio", child.Path)
	assert.Equal(t, 1, child.Level)
}

func TestCategory_ExternalRefs(t *testing.T) {
	category, _ := NewCategory("Electronics")

	t.Run("Set and read back", func(t *testing.T) {
		category.SetExternalRef("acme", "4711")
		got, ok := category.ExternalRef("acme")
		assert.True(t, ok)
		assert.Equal(t, "4711", got)
	})

	t.Run("Second set replaces", func(t *testing.T) {
		category.SetExternalRef("acme", "4712")
		got, _ := category.ExternalRef("acme")
		assert.Equal(t, "4712", got)
		assert.Len(t, category.ExternalRefs, 1)
	})

	t.Run("Unknown provider", func(t *testing.T) {
		_, ok := category.ExternalRef("other")
		assert.False(t, ok)
	})
}

func TestCategory_IsValid(t *testing.T) {
	category, _ := NewCategory("Electronics")
	assert.True(t, category.IsValid())

	category.Name = "  "
	assert.False(t, category.IsValid())

	blank := &Category{}
	assert.False(t, blank.IsValid())
}

func TestCategory_IsAncestorOf(t *testing.T) {
	root, _ := NewCategory("Electronics")
	child, _ := NewChildCategory("Audio", root)
	other, _ := NewCategory("Appliances")

	assert.True(t, root.IsAncestorOf(child))
	assert.False(t, child.IsAncestorOf(root))
	assert.False(t, other.IsAncestorOf(child))
	assert.False(t, root.IsAncestorOf(nil))
}
