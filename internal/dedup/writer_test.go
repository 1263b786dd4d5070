package dedup_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Debarshi-Chaudhuri/news-api/internal/dedup"
	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
	"github.com/Debarshi-Chaudhuri/news-api/internal/storage"
	"github.com/Debarshi-Chaudhuri/news-api/internal/taxonomy"
)

// fixedClock returns t on every call.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newDraft(url string, tags ...string) *domain.Draft {
	return &domain.Draft{
		Title:         "Solar capacity doubles",
		Content:       "India added record solar power capacity.",
		Summary:       "Record year",
		Author:        "Staff",
		Source:        "example.com",
		PublishedDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Categories:    []string{"Business", "India"},
		Tags:          tags,
		URL:           url,
	}
}

func TestUpsert_InsertsNewRecord(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	w := dedup.NewWriter(store, taxonomy.MustDefault(), logger.NewNop(), dedup.WithClock(fixedClock(now)))

	res, err := w.Upsert(context.Background(), newDraft("https://Example.com/solar/?utm=1", "solar power", "India"))
	require.NoError(t, err)
	assert.Equal(t, dedup.Inserted, res.Outcome)
	assert.NotEmpty(t, res.Article.ID)
	assert.Equal(t, "https://example.com/solar", res.Article.NormalizedURL)
	assert.Equal(t, now, res.Article.CreatedAt)
	assert.Equal(t, now, res.Article.UpdatedAt)
	assert.Equal(t, []string{"solar power", "india"}, res.Article.Tags)
	assert.Equal(t, 1, store.Len())
}

func TestUpsert_MergesDuplicate(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	first := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	clock := first
	w := dedup.NewWriter(store, taxonomy.MustDefault(), logger.NewNop(),
		dedup.WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	inserted, err := w.Upsert(ctx, newDraft("https://example.com/solar", "solar power", "india"))
	require.NoError(t, err)

	clock = first.Add(time.Hour)
	second := newDraft("HTTPS://EXAMPLE.COM/solar/#top", "Wind Energy", "india")
	second.Title = "Solar capacity triples"
	second.Categories = []string{"Business", "India", "Renewable Energy"}

	merged, err := w.Upsert(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, dedup.Merged, merged.Outcome)
	assert.Equal(t, inserted.Article.ID, merged.Article.ID)
	assert.Equal(t, 1, store.Len())

	got, err := store.GetByID(ctx, inserted.Article.ID)
	require.NoError(t, err)
	assert.Equal(t, "Solar capacity triples", got.Title)
	assert.Equal(t, []string{"solar power", "india", "wind energy"}, got.Tags)
	assert.Equal(t, []string{"Business", "India", "Renewable Energy"}, got.Categories)
	assert.Equal(t, first, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(inserted.Article.UpdatedAt))
	assert.Equal(t, "https://example.com/solar", got.URL)
}

func TestUpsert_UpdatedAtStrictlyIncreasesWithFrozenClock(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	w := dedup.NewWriter(store, taxonomy.MustDefault(), logger.NewNop(), dedup.WithClock(fixedClock(now)))
	ctx := context.Background()

	a, err := w.Upsert(ctx, newDraft("https://example.com/x", "khadi"))
	require.NoError(t, err)
	b, err := w.Upsert(ctx, newDraft("https://example.com/x", "khadi"))
	require.NoError(t, err)
	c, err := w.Upsert(ctx, newDraft("https://example.com/x", "khadi"))
	require.NoError(t, err)

	assert.True(t, b.Article.UpdatedAt.After(a.Article.UpdatedAt))
	assert.True(t, c.Article.UpdatedAt.After(b.Article.UpdatedAt))
	assert.Equal(t, now, c.Article.CreatedAt)
}

func TestUpsert_EmptyURLAlwaysInserts(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	w := dedup.NewWriter(store, taxonomy.MustDefault(), logger.NewNop())
	ctx := context.Background()

	for range 2 {
		res, err := w.Upsert(ctx, newDraft("", "khadi"))
		require.NoError(t, err)
		assert.Equal(t, dedup.Inserted, res.Outcome)
		assert.Empty(t, res.Article.NormalizedURL)
	}
	assert.Equal(t, 2, store.Len())
}

func TestUpsert_SkipPolicy(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	w := dedup.NewWriter(store, taxonomy.MustDefault(), logger.NewNop(), dedup.WithPolicy(dedup.PolicySkip))
	ctx := context.Background()

	first, err := w.Upsert(ctx, newDraft("https://example.com/a", "khadi"))
	require.NoError(t, err)

	again := newDraft("https://example.com/a/", "silk")
	again.Title = "Different"
	res, err := w.Upsert(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, dedup.Skipped, res.Outcome)
	assert.Equal(t, first.Article.ID, res.Article.ID)

	got, err := store.GetByID(ctx, first.Article.ID)
	require.NoError(t, err)
	assert.Equal(t, "Solar capacity doubles", got.Title)
	assert.Equal(t, []string{"khadi"}, got.Tags)
}

func TestUpsert_Sanitizes(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	w := dedup.NewWriter(store, taxonomy.MustDefault(), logger.NewNop(), dedup.WithClock(fixedClock(now)))

	res, err := w.Upsert(context.Background(), &domain.Draft{
		Title:      "  ",
		Tags:       []string{" KHADI ", "khadi", "not-a-keyword", "", "Business"},
		Categories: []string{"Business", "business", " India "},
		URL:        "https://example.com/z",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UntitledTitle, res.Article.Title)
	assert.Equal(t, domain.NoContentMessage, res.Article.Content)
	assert.Equal(t, []string{"khadi", "business"}, res.Article.Tags)
	assert.Equal(t, []string{"Business", "India"}, res.Article.Categories)
	assert.Equal(t, now, res.Article.PublishedDate)
}

func TestUpsert_NilDraft(t *testing.T) {
	t.Parallel()

	w := dedup.NewWriter(storage.NewMemoryStore(), nil, logger.NewNop())
	_, err := w.Upsert(context.Background(), nil)
	require.ErrorIs(t, err, dedup.ErrNilDraft)
}

// failingStore wraps a MemoryStore and fails selected operations.
type failingStore struct {
	*storage.MemoryStore
	findErr   error
	insertErr error
	updateErr error
}

func (f *failingStore) FindByNormalizedURL(ctx context.Context, u string) (*domain.Article, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.MemoryStore.FindByNormalizedURL(ctx, u)
}

func (f *failingStore) Insert(ctx context.Context, a *domain.Article) (*domain.Article, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return f.MemoryStore.Insert(ctx, a)
}

func (f *failingStore) Update(ctx context.Context, id string, fields map[string]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.MemoryStore.Update(ctx, id, fields)
}

func TestUpsert_StoreFailuresPropagate(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("connection refused")
	ctx := context.Background()

	t.Run("lookup", func(t *testing.T) {
		w := dedup.NewWriter(&failingStore{MemoryStore: storage.NewMemoryStore(), findErr: errBoom}, nil, logger.NewNop())
		_, err := w.Upsert(ctx, newDraft("https://example.com/a"))
		require.ErrorIs(t, err, errBoom)
	})

	t.Run("insert logs payload", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		w := dedup.NewWriter(&failingStore{MemoryStore: storage.NewMemoryStore(), insertErr: errBoom}, nil,
			logger.NewFromZap(zap.New(core)))

		_, err := w.Upsert(ctx, newDraft("https://example.com/a"))
		require.ErrorIs(t, err, errBoom)

		entries := logs.FilterMessage("Failed to insert article").All()
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].ContextMap(), "article")
	})

	t.Run("update", func(t *testing.T) {
		store := &failingStore{MemoryStore: storage.NewMemoryStore()}
		w := dedup.NewWriter(store, nil, logger.NewNop())
		_, err := w.Upsert(ctx, newDraft("https://example.com/a"))
		require.NoError(t, err)

		store.updateErr = errBoom
		_, err = w.Upsert(ctx, newDraft("https://example.com/a"))
		require.ErrorIs(t, err, errBoom)
	})
}
