package taxonomy_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Debarshi-Chaudhuri/news-api/internal/taxonomy"
)

func TestDefault_KhadiBelongsToTextiles(t *testing.T) {
	t.Parallel()

	tax, err := taxonomy.Default()
	require.NoError(t, err)

	cat, ok := tax.CategoryOf("khadi")
	require.True(t, ok)
	assert.Equal(t, "Textiles & Garments", cat)

	cat, ok = tax.CategoryOf("Solar Power")
	require.True(t, ok)
	assert.Equal(t, "Renewable Energy", cat)
}

func TestFlattened_ContainsQualifiersAndNames(t *testing.T) {
	t.Parallel()

	tax := taxonomy.MustDefault()
	flat := tax.Flattened()

	assert.Contains(t, flat, "india")
	assert.Contains(t, flat, "business")
	assert.Contains(t, flat, "khadi")
	assert.Contains(t, flat, "Textiles & Garments")

	seen := map[string]bool{}
	for _, term := range flat {
		assert.False(t, seen[term], "duplicate term %q", term)
		seen[term] = true
	}
}

func TestIsKeyword_CaseInsensitive(t *testing.T) {
	t.Parallel()

	tax := taxonomy.MustDefault()
	assert.True(t, tax.IsKeyword("KHADI"))
	assert.True(t, tax.IsKeyword(" india "))
	assert.False(t, tax.IsKeyword("cryptocurrency"))
}

func TestCategories_ReturnsCopies(t *testing.T) {
	t.Parallel()

	tax := taxonomy.MustDefault()
	cats := tax.Categories()
	cats[0].Keywords[0] = "mutated"

	assert.Equal(t, "khadi", tax.Categories()[0].Keywords[0])
}

func TestCategory_LookupIgnoresCase(t *testing.T) {
	t.Parallel()

	tax := taxonomy.MustDefault()
	c, ok := tax.Category("textiles & garments")
	require.True(t, ok)
	assert.Equal(t, "Textiles & Garments", c.Name)
	assert.NotEmpty(t, tax.Images("Textiles & Garments"))
	assert.Nil(t, tax.Keywords("Space Mining"))
}

func TestFlattened_Order(t *testing.T) {
	t.Parallel()

	tax, err := taxonomy.New([]taxonomy.Category{
		{Name: "Tea", Keywords: []string{"darjeeling"}},
		{Name: "Steel", Keywords: []string{"iron ore", "Darjeeling"}},
	}, []string{"india", "tea"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Tea", "Steel", "darjeeling", "iron ore", "india"}, tax.Flattened())
}

func TestFlattened_DefaultUnique(t *testing.T) {
	t.Parallel()

	tax := taxonomy.MustDefault()
	flat := tax.Flattened()
	assert.Equal(t, tax.CategoryNames(), flat[:len(tax.CategoryNames())])

	seen := map[string]bool{}
	for _, term := range flat {
		lt := strings.ToLower(term)
		assert.False(t, seen[lt], term)
		seen[lt] = true
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		categories []taxonomy.Category
	}{
		{name: "empty", categories: nil},
		{name: "blank name", categories: []taxonomy.Category{{Name: " ", Keywords: []string{"a"}}}},
		{name: "no keywords", categories: []taxonomy.Category{{Name: "A"}}},
		{name: "duplicate", categories: []taxonomy.Category{
			{Name: "A", Keywords: []string{"a"}},
			{Name: "a", Keywords: []string{"b"}},
		}},
		{name: "blank keyword", categories: []taxonomy.Category{{Name: "A", Keywords: []string{""}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := taxonomy.New(tt.categories, nil)
			require.ErrorIs(t, err, taxonomy.ErrInvalidTaxonomy)
		})
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
qualifiers: [india]
categories:
  - name: Tea
    keywords: [darjeeling, assam tea]
`), 0o600))

	tax, err := taxonomy.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tea"}, tax.CategoryNames())
	assert.Equal(t, []string{"Tea", "darjeeling", "assam tea", "india"}, tax.Flattened())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := taxonomy.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestMatchTerms(t *testing.T) {
	t.Parallel()

	tax := taxonomy.MustDefault()
	got := tax.MatchTerms("solar")
	assert.Contains(t, got, "solar power")
	assert.Nil(t, tax.MatchTerms("   "))
}

func TestSuggestKeywords(t *testing.T) {
	t.Parallel()

	tax := taxonomy.MustDefault()
	got := tax.SuggestKeywords("Khadi sales rise as handloom exports grow across India", 3)
	assert.Equal(t, []string{"khadi", "handloom", "india"}, got)
}

func TestValidateKeywords(t *testing.T) {
	t.Parallel()

	tax := taxonomy.MustDefault()
	valid, invalid := tax.ValidateKeywords([]string{"khadi", "bitcoin"})
	assert.Equal(t, []string{"khadi"}, valid)
	assert.Equal(t, []string{"bitcoin"}, invalid)
}
