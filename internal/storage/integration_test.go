//go:build integration

package storage_test

import (
	"context"
	"testing"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcelasticsearch "github.com/testcontainers/testcontainers-go/modules/elasticsearch"

	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
	"github.com/Debarshi-Chaudhuri/news-api/internal/storage"
)

const elasticsearchImage = "docker.elastic.co/elasticsearch/elasticsearch:8.11.0"

func startElasticsearch(t *testing.T) *es.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcelasticsearch.Run(ctx, elasticsearchImage, tcelasticsearch.WithPassword("changeme"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	client, err := es.NewClient(es.Config{
		Addresses: []string{container.Settings.Address},
		Username:  "elastic",
		Password:  container.Settings.Password,
		CACert:    container.Settings.CACert,
	})
	require.NoError(t, err)
	return client
}

func TestElasticsearchStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	client := startElasticsearch(t)
	store := storage.NewElasticsearchStore(client, storage.ElasticsearchConfig{
		IndexName:      "news-integration",
		RequestTimeout: 30 * time.Second,
	}, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, store.EnsureIndex(ctx))
	require.NoError(t, store.EnsureIndex(ctx))

	now := time.Now().UTC().Truncate(time.Millisecond)
	stored, err := store.Insert(ctx, &domain.Article{
		Title:         "Khadi sales hit record",
		Content:       "Khadi and handloom sales grew across India.",
		Source:        "example.com",
		Tags:          []string{"khadi", "india"},
		Categories:    []string{"Business", "India"},
		URL:           "https://example.com/khadi/",
		NormalizedURL: "https://example.com/khadi",
		PublishedDate: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	require.NoError(t, err)

	found, err := store.FindByNormalizedURL(ctx, "https://example.com/khadi")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, found.ID)
	assert.True(t, now.Equal(found.CreatedAt))

	later := now.Add(time.Minute)
	require.NoError(t, store.Update(ctx, stored.ID, map[string]any{
		"title":      "Khadi sales hit another record",
		"tags":       []string{"khadi", "india", "handloom"},
		"updated_at": later,
	}))

	got, err := store.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Khadi sales hit another record", got.Title)
	assert.ElementsMatch(t, []string{"khadi", "india", "handloom"}, got.Tags)
	assert.True(t, now.Equal(got.CreatedAt))

	res, err := store.Search(ctx, storage.SearchQuery{Query: "handloom", Tags: []string{"KHADI"}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, stored.ID, res.Items[0].ID)

	require.NoError(t, store.DeleteIndex(ctx))
	_, err = store.FindByNormalizedURL(ctx, "https://example.com/khadi")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
