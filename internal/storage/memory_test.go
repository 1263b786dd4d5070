package storage_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
	"github.com/Debarshi-Chaudhuri/news-api/internal/storage"
)

func TestMemoryStore_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	stored, err := store.Insert(ctx, &domain.Article{
		Title:         "Handloom revival",
		NormalizedURL: "https://example.com/handloom",
		Tags:          []string{"handloom"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)

	got, err := store.FindByNormalizedURL(ctx, "HTTPS://EXAMPLE.COM/handloom")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)

	// Returned records are copies.
	got.Tags[0] = "mutated"
	again, err := store.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"handloom"}, again.Tags)

	_, err = store.FindByNormalizedURL(ctx, "https://example.com/other")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.FindByNormalizedURL(ctx, "")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStore_Update(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	stored, err := store.Insert(ctx, &domain.Article{
		Title:     "Old",
		Tags:      []string{"cotton", "silk", "india"},
		CreatedAt: created,
		UpdatedAt: created,
	})
	require.NoError(t, err)

	later := created.Add(time.Hour)
	err = store.Update(ctx, stored.ID, map[string]any{
		"title":      "New",
		"tags":       []string{"cotton"},
		"updated_at": later,
		"created_at": later,
		"id":         "hijack",
	})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, []string{"cotton"}, got.Tags)
	assert.Equal(t, later, got.UpdatedAt)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, stored.ID, got.ID)

	err = store.Update(ctx, "missing", map[string]any{"title": "x"})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStore_Search(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		_, err := store.Insert(ctx, &domain.Article{
			Title:         fmt.Sprintf("Solar story %d", i),
			Source:        "example.com",
			Tags:          []string{"solar power"},
			Categories:    []string{"Renewable Energy"},
			PublishedDate: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
	_, err := store.Insert(ctx, &domain.Article{
		Title:         "Silk exports",
		Tags:          []string{"silk"},
		Categories:    []string{"Textiles & Garments"},
		PublishedDate: base,
	})
	require.NoError(t, err)

	t.Run("text query newest first", func(t *testing.T) {
		res, err := store.Search(ctx, storage.SearchQuery{Query: "solar", Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Total)
		require.Len(t, res.Items, 2)
		assert.Equal(t, "Solar story 4", res.Items[0].Title)
		assert.Equal(t, "Solar story 3", res.Items[1].Title)
	})

	t.Run("second page ascending", func(t *testing.T) {
		res, err := store.Search(ctx, storage.SearchQuery{Query: "solar", Page: 2, Limit: 2, SortOrder: storage.SortAsc})
		require.NoError(t, err)
		require.Len(t, res.Items, 2)
		assert.Equal(t, "Solar story 2", res.Items[0].Title)
	})

	t.Run("page past the end", func(t *testing.T) {
		res, err := store.Search(ctx, storage.SearchQuery{Page: 10})
		require.NoError(t, err)
		assert.Equal(t, 6, res.Total)
		assert.Empty(t, res.Items)
	})

	t.Run("tag and category filters", func(t *testing.T) {
		res, err := store.Search(ctx, storage.SearchQuery{Tags: []string{"SILK"}})
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "Silk exports", res.Items[0].Title)

		res, err = store.Search(ctx, storage.SearchQuery{Categories: []string{"Renewable Energy"}, Source: "example.com"})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Total)
	})
}

func TestSearchQuery_Normalize(t *testing.T) {
	q := storage.SearchQuery{Query: "  khadi ", Page: -1, Limit: 1000, SortField: "title", SortOrder: "sideways"}.Normalize()
	assert.Equal(t, "khadi", q.Query)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, storage.MaxPageSize, q.Limit)
	assert.Equal(t, storage.DefaultSort, q.SortField)
	assert.Equal(t, storage.SortDesc, q.SortOrder)
	assert.Equal(t, 0, q.Offset())

	q = storage.SearchQuery{Page: 3, Limit: 20}.Normalize()
	assert.Equal(t, 40, q.Offset())
}
