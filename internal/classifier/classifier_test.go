package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Debarshi-Chaudhuri/news-api/internal/classifier"
	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
	"github.com/Debarshi-Chaudhuri/news-api/internal/taxonomy"
)

func testTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	tax, err := taxonomy.New([]taxonomy.Category{
		{Name: "Textiles", Keywords: []string{"khadi", "cotton"}, Images: []string{"t1.jpg", "t2.jpg", "t3.jpg"}},
		{Name: "Energy", Keywords: []string{"solar power", "cotton"}, Images: []string{"e1.jpg"}},
		{Name: "General", Keywords: []string{"politics"}},
	}, []string{"india", "business"})
	require.NoError(t, err)
	return tax
}

func TestClassify_DefaultTaxonomy(t *testing.T) {
	t.Parallel()

	c := classifier.New(taxonomy.MustDefault(), logger.NewNop())
	assert.Equal(t, []string{"Textiles & Garments"}, c.Classify([]string{"khadi"}))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	c := classifier.New(testTaxonomy(t), logger.NewNop())

	tests := []struct {
		name string
		tags []string
		want []string
	}{
		{name: "no tags", tags: nil, want: nil},
		{name: "no match", tags: []string{"india", "weather"}, want: nil},
		{name: "case insensitive", tags: []string{"KHADI"}, want: []string{"Textiles"}},
		{name: "first category wins", tags: []string{"cotton"}, want: []string{"Textiles"}},
		{name: "ordered by first match", tags: []string{"politics", "solar power", "khadi"}, want: []string{"General", "Energy", "Textiles"}},
		{name: "duplicates collapse", tags: []string{"khadi", "cotton", "Khadi"}, want: []string{"Textiles"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.tags))
		})
	}
}

func TestEnrich_AppendsCategories(t *testing.T) {
	t.Parallel()

	c := classifier.New(testTaxonomy(t), logger.NewNop())
	d := &domain.Draft{
		Categories: []string{"Business", "India"},
		Tags:       []string{"solar power", "india", "textiles"},
	}

	matched := c.Enrich(d)
	assert.Equal(t, []string{"Energy"}, matched)
	assert.Equal(t, []string{"Business", "India", "Energy"}, d.Categories)

	// A second pass changes nothing.
	c.Enrich(d)
	assert.Equal(t, []string{"Business", "India", "Energy"}, d.Categories)

	assert.Nil(t, c.Enrich(nil))
}

func TestSelectImage(t *testing.T) {
	t.Parallel()

	var gotN int
	c := classifier.New(testTaxonomy(t), logger.NewNop(), classifier.WithIntn(func(n int) int {
		gotN = n
		return n - 1
	}))

	assert.Equal(t, "t3.jpg", c.SelectImage([]string{"General", "Textiles", "Energy"}))
	assert.Equal(t, 3, gotN)
	assert.Equal(t, "e1.jpg", c.SelectImage([]string{"Energy"}))
	assert.Empty(t, c.SelectImage([]string{"General"}))
	assert.Empty(t, c.SelectImage(nil))
}

func TestSelectImage_UniformOverList(t *testing.T) {
	t.Parallel()

	c := classifier.New(testTaxonomy(t), logger.NewNop())
	seen := make(map[string]int)
	for range 300 {
		seen[c.SelectImage([]string{"Textiles"})]++
	}
	assert.Len(t, seen, 3)
	for img := range seen {
		assert.Contains(t, []string{"t1.jpg", "t2.jpg", "t3.jpg"}, img)
	}
}

func TestPresent_DoesNotMutateArticle(t *testing.T) {
	t.Parallel()

	c := classifier.New(testTaxonomy(t), logger.NewNop(), classifier.WithIntn(func(int) int { return 0 }))
	a := &domain.Article{ID: "1", Title: "Khadi", Tags: []string{"khadi"}, Categories: []string{"Business"}}

	view := c.Present(a)
	assert.Equal(t, "t1.jpg", view.ImageURL)
	assert.Equal(t, "1", view.ID)
	assert.Equal(t, []string{"Business"}, a.Categories)

	view.Tags[0] = "changed"
	assert.Equal(t, []string{"khadi"}, a.Tags)
}

func TestPresent_FallsBackToStoredCategories(t *testing.T) {
	t.Parallel()

	c := classifier.New(testTaxonomy(t), logger.NewNop(), classifier.WithIntn(func(int) int { return 0 }))

	view := c.Present(&domain.Article{Tags: []string{"india"}, Categories: []string{"Business", "Energy"}})
	assert.Equal(t, "e1.jpg", view.ImageURL)

	view = c.Present(&domain.Article{Tags: []string{"india"}})
	assert.Empty(t, view.ImageURL)
}
