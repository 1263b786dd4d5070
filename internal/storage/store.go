// Package storage persists article records and looks them up by their
// normalized URL.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("article not found")
	// ErrInvalidArticle is returned when a record cannot be stored as given.
	ErrInvalidArticle = errors.New("invalid article")
)

// Store is the article store.
type Store interface {
	// FindByNormalizedURL returns the record whose normalized_url equals
	// normalizedURL, ignoring case, or ErrNotFound.
	FindByNormalizedURL(ctx context.Context, normalizedURL string) (*domain.Article, error)
	// Insert assigns an ID and stores a new record.
	Insert(ctx context.Context, article *domain.Article) (*domain.Article, error)
	// Update overwrites the given fields of the record id.
	Update(ctx context.Context, id string, fields map[string]any) error
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
	// EnsureIndex creates the backing index if it does not exist.
	EnsureIndex(ctx context.Context) error
}

// Sort orders.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Search defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultSort     = "published_date"
)

var sortableFields = map[string]bool{
	"published_date": true,
	"created_at":     true,
	"updated_at":     true,
	"_score":         true,
}

// SearchQuery describes a full-text search with filters and pagination.
type SearchQuery struct {
	Query      string
	Tags       []string
	Categories []string
	Source     string
	// Page is 1-based.
	Page      int
	Limit     int
	SortField string
	SortOrder string
}

// Normalize returns a copy with defaults applied and out of range values clamped.
func (q SearchQuery) Normalize() SearchQuery {
	q.Query = strings.TrimSpace(q.Query)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if !sortableFields[q.SortField] {
		q.SortField = DefaultSort
	}
	if q.SortOrder != SortAsc {
		q.SortOrder = SortDesc
	}
	return q
}

// Offset returns the number of records skipped for the requested page.
func (q SearchQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// SearchResult is one page of search hits.
type SearchResult struct {
	Total int
	Page  int
	Limit int
	Items []*domain.Article
}

// protectedFields can never be changed by Update.
var protectedFields = map[string]bool{
	"id":         true,
	"created_at": true,
}

func updatableFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if !protectedFields[k] {
			out[k] = v
		}
	}
	return out
}
