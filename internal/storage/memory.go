package storage

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
)

// MemoryStore keeps articles in process memory. It backs tests and dry runs.
type MemoryStore struct {
	mu       sync.RWMutex
	articles map[string]*domain.Article
	order    []string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{articles: make(map[string]*domain.Article)}
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// All returns copies of every record in insertion order.
func (m *MemoryStore) All() []*domain.Article {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Article, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.articles[id].Clone())
	}
	return out
}

func (m *MemoryStore) FindByNormalizedURL(_ context.Context, normalizedURL string) (*domain.Article, error) {
	if normalizedURL == "" {
		return nil, ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		a := m.articles[id]
		if strings.EqualFold(a.NormalizedURL, normalizedURL) {
			return a.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Insert(_ context.Context, article *domain.Article) (*domain.Article, error) {
	if article == nil {
		return nil, ErrInvalidArticle
	}
	stored := article.Clone()
	stored.ID = uuid.NewString()

	m.mu.Lock()
	m.articles[stored.ID] = stored
	m.order = append(m.order, stored.ID)
	m.mu.Unlock()

	return stored.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.articles[id]
	if !ok {
		return fmt.Errorf("update article %s: %w", id, ErrNotFound)
	}

	updated := current.Clone()
	if err := decodeInto(updatableFields(fields), updated); err != nil {
		return err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	m.articles[id] = updated
	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*domain.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

func (m *MemoryStore) Search(_ context.Context, q SearchQuery) (*SearchResult, error) {
	q = q.Normalize()

	m.mu.RLock()
	var matches []*domain.Article
	for _, id := range m.order {
		a := m.articles[id]
		if memoryMatch(a, q) {
			matches = append(matches, a.Clone())
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		less := sortKey(matches[i], q.SortField).Before(sortKey(matches[j], q.SortField))
		if q.SortOrder == SortAsc {
			return less
		}
		return sortKey(matches[j], q.SortField).Before(sortKey(matches[i], q.SortField))
	})

	out := &SearchResult{Total: len(matches), Page: q.Page, Limit: q.Limit}
	start := min(q.Offset(), len(matches))
	end := min(start+q.Limit, len(matches))
	out.Items = matches[start:end]
	return out, nil
}

func (m *MemoryStore) EnsureIndex(context.Context) error { return nil }

func memoryMatch(a *domain.Article, q SearchQuery) bool {
	for _, tag := range q.Tags {
		if !slices.ContainsFunc(a.Tags, func(t string) bool { return strings.EqualFold(t, tag) }) {
			return false
		}
	}
	for _, cat := range q.Categories {
		if !slices.Contains(a.Categories, cat) {
			return false
		}
	}
	if q.Source != "" && a.Source != q.Source {
		return false
	}
	if q.Query == "" {
		return true
	}

	haystack := strings.ToLower(strings.Join([]string{
		a.Title, a.Content, a.Summary, a.Author, a.Source,
		strings.Join(a.Categories, " "), strings.Join(a.Tags, " "),
	}, " "))
	for _, word := range strings.Fields(strings.ToLower(q.Query)) {
		if strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}

func sortKey(a *domain.Article, field string) time.Time {
	switch field {
	case "created_at":
		return a.CreatedAt
	case "updated_at":
		return a.UpdatedAt
	default:
		return a.PublishedDate
	}
}
