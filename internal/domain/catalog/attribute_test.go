package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAttribute(t *testing.T) {
	categoryID := uuid.New()

	t.Run("Valid attribute", func(t *testing.T) {
		attr, err := NewAttribute(categoryID, "cvjat", "Цвят")
		require.NoError(t, err)
		assert.Equal(t, categoryID, attr.CategoryID)
		assert.Equal(t, "cvjat", attr.ExternalKey)
		assert.Equal(t, "Цвят", attr.Name)
		assert.Equal(t, DefaultAttributeSortOrder, attr.SortOrder)
	})

	t.Run("Nil category rejected", func(t *testing.T) {
		_, err := NewAttribute(uuid.Nil, "cvjat", "Цвят")
		assert.Error(t, err)
	})

	t.Run("Empty name rejected", func(t *testing.T) {
		_, err := NewAttribute(categoryID, "cvjat", " ")
		assert.Error(t, err)
	})
}

func TestAttribute_AddOption(t *testing.T) {
	attr, err := NewAttribute(uuid.New(), "color", "Color")
	require.NoError(t, err)

	t.Run("First option gets sort order zero", func(t *testing.T) {
		opt, err := attr.AddOption("Black")
		require.NoError(t, err)
		assert.Equal(t, "Black", opt.Value)
		assert.Equal(t, 0, opt.SortOrder)
		assert.Equal(t, attr.ID, opt.AttributeID)
	})

	t.Run("Next option gets next sort order", func(t *testing.T) {
		opt, err := attr.AddOption("White")
		require.NoError(t, err)
		assert.Equal(t, 1, opt.SortOrder)
	})

	t.Run("Different case returns existing option", func(t *testing.T) {
		existing := attr.FindOption("Black")
		require.NotNil(t, existing)

		opt, err := attr.AddOption("black")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, opt.ID)
		assert.Len(t, attr.Options, 2)
	})

	t.Run("Extra whitespace returns existing option", func(t *testing.T) {
		opt, err := attr.AddOption("  Black  ")
		require.NoError(t, err)
		assert.Equal(t, "Black", opt.Value)
		assert.Len(t, attr.Options, 2)
	})

	t.Run("Blank value rejected", func(t *testing.T) {
		_, err := attr.AddOption("   ")
		assert.Error(t, err)
	})
}

func TestAttribute_FindOptionNormalized(t *testing.T) {
	attr, _ := NewAttribute(uuid.New(), "material", "Material")
	_, err := attr.AddOption("Stainless  Steel")
	require.NoError(t, err)

	assert.NotNil(t, attr.FindOptionNormalized("stainless steel"))
	assert.NotNil(t, attr.FindOptionNormalized("STAINLESS   STEEL"))
	assert.Nil(t, attr.FindOptionNormalized("carbon steel"))
}

func TestNormalizeLookup(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Black", "black"},
		{"  Stainless   Steel ", "stainless steel"},
		{"ЧЕРЕН", "черен"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLookup(tt.input), "input %q", tt.input)
	}
}

func TestNewManufacturer(t *testing.T) {
	t.Run("Valid manufacturer", func(t *testing.T) {
		m, err := NewManufacturer("Bosch")
		require.NoError(t, err)
		assert.Equal(t, "Bosch", m.Name)
		assert.Equal(t, "bosch", m.Slug)
		assert.True(t, m.Visible)
	})

	t.Run("Cyrillic name slugged", func(t *testing.T) {
		m, err := NewManufacturer("Шишков")
		require.NoError(t, err)
		assert.Equal(t, "shishkov", m.Slug)
	})

	t.Run("Empty name rejected", func(t *testing.T) {
		_, err := NewManufacturer(" ")
		assert.Error(t, err)
	})
}
