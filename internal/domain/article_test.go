package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
)

func TestDraft_AddTagIgnoresCaseDuplicates(t *testing.T) {
	t.Parallel()

	d := &domain.Draft{Tags: []string{"India"}}
	d.AddTag("india")
	d.AddTag("khadi")
	d.AddTag("  ")

	assert.Equal(t, []string{"India", "khadi"}, d.Tags)
	assert.True(t, d.HasTag("KHADI"))
}

func TestDraft_AddCategory(t *testing.T) {
	t.Parallel()

	d := &domain.Draft{Categories: []string{"Business", "India"}}
	d.AddCategory("business")
	d.AddCategory("Textiles & Garments")

	assert.Equal(t, []string{"Business", "India", "Textiles & Garments"}, d.Categories)
}

func TestArticle_FieldsExcludeIdentity(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := &domain.Article{ID: "x", Title: "T", Tags: []string{"a"}, CreatedAt: now, UpdatedAt: now}
	f := a.Fields()

	assert.NotContains(t, f, "id")
	assert.NotContains(t, f, "created_at")
	assert.Equal(t, "T", f["title"])
	assert.Equal(t, now, f["updated_at"])

	f["tags"].([]string)[0] = "changed"
	assert.Equal(t, "a", a.Tags[0])
}

func TestArticle_CloneIsDeep(t *testing.T) {
	t.Parallel()

	a := &domain.Article{Tags: []string{"a"}, Categories: []string{"b"}}
	c := a.Clone()
	c.Tags[0] = "z"
	c.Categories[0] = "z"

	assert.Equal(t, "a", a.Tags[0])
	assert.Equal(t, "b", a.Categories[0])
	assert.Nil(t, (*domain.Article)(nil).Clone())
}
