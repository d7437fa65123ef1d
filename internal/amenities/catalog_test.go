package amenities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogInvariants(t *testing.T) {
	cat := Default()
	categories := make(map[string]bool)
	for _, c := range cat.Categories() {
		categories[c.ID] = true
		assert.NotEmpty(t, c.NameEn)
		assert.NotEmpty(t, c.NameHe)
	}
	require.True(t, categories[CustomCategoryID])

	seen := make(map[string]bool)
	for _, def := range cat.Amenities() {
		assert.False(t, seen[def.ID], "duplicate id %s", def.ID)
		seen[def.ID] = true
		assert.True(t, categories[def.Category], "amenity %s has unknown category %s", def.ID, def.Category)
		assert.NotEmpty(t, def.Icon, def.ID)
		assert.NotEmpty(t, def.NameHe, def.ID)
		assert.NotEmpty(t, def.NameEn, def.ID)
		assert.NotContains(t, def.ID, ",", "ids must not contain the joined-list separator")
	}
}

func TestNewCatalog_Validation(t *testing.T) {
	views := Category{ID: CustomCategoryID, NameEn: "Views", NameHe: "נוף"}

	tests := []struct {
		name       string
		categories []Category
		amenities  []Definition
		wantErr    string
	}{
		{
			name:       "missing custom category",
			categories: []Category{{ID: "building"}},
			wantErr:    "custom category",
		},
		{
			name:       "duplicate category",
			categories: []Category{views, views},
			wantErr:    "duplicate category",
		},
		{
			name:       "duplicate amenity",
			categories: []Category{views},
			amenities:  []Definition{{ID: "a", Category: "views"}, {ID: "a", Category: "views"}},
			wantErr:    "duplicate amenity",
		},
		{
			name:       "unknown category",
			categories: []Category{views},
			amenities:  []Definition{{ID: "a", Category: "nowhere"}},
			wantErr:    "unknown category",
		},
		{
			name:       "custom prefix",
			categories: []Category{views},
			amenities:  []Definition{{ID: "custom:a|b", Category: "views"}},
			wantErr:    "custom prefix",
		},
		{
			name:       "empty id",
			categories: []Category{views},
			amenities:  []Definition{{Category: "views"}},
			wantErr:    "amenity id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.categories, tt.amenities)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCatalogLookups(t *testing.T) {
	cat := Default()

	def, ok := cat.Lookup("gym")
	require.True(t, ok)
	assert.Equal(t, "leisure", def.Category)

	_, ok = cat.Lookup("helipad")
	assert.False(t, ok)

	def, ok = cat.LookupByName("נוף לים", "")
	require.True(t, ok)
	assert.Equal(t, "sea-view", def.ID)

	_, ok = cat.LookupByName("", "")
	assert.False(t, ok)

	category, ok := cat.Category("security")
	require.True(t, ok)
	assert.Equal(t, "ביטחון", category.NameHe)
}

func TestCatalogGrouped(t *testing.T) {
	groups := Default().Grouped()
	require.NotEmpty(t, groups)
	assert.Equal(t, "building", groups[0].ID)

	total := 0
	for _, g := range groups {
		assert.NotEmpty(t, g.Amenities)
		total += len(g.Amenities)
	}
	assert.Equal(t, len(Default().Amenities()), total)
}

func TestCustomID(t *testing.T) {
	id, ok := CustomID("  מרפסת  שמש ", "")
	require.True(t, ok)
	assert.Equal(t, SelectionID("custom:מרפסת שמש|מרפסת שמש"), id)

	id, ok = CustomID("a|b", "c|d")
	require.True(t, ok)
	assert.Equal(t, SelectionID("custom:a b|c d"), id)

	_, ok = CustomID("   ", "English")
	assert.False(t, ok)
}

func TestParseCustom(t *testing.T) {
	he, en, ok := ParseCustom("custom:מרפסת|Balcony")
	require.True(t, ok)
	assert.Equal(t, "מרפסת", he)
	assert.Equal(t, "Balcony", en)

	he, en, ok = ParseCustom("custom:only")
	require.True(t, ok)
	assert.Equal(t, "", he)
	assert.Equal(t, "only", en)

	_, _, ok = ParseCustom("gym")
	assert.False(t, ok)

	assert.False(t, WellFormed("custom:only"))
	assert.False(t, WellFormed("custom:|English"))
	assert.True(t, WellFormed("custom:א|"))
}
