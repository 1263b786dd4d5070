package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
)

// DefaultRequestTimeout bounds each Elasticsearch call.
const DefaultRequestTimeout = 10 * time.Second

// ElasticsearchConfig configures an ElasticsearchStore.
type ElasticsearchConfig struct {
	IndexName      string
	RequestTimeout time.Duration
	Shards         int
	Replicas       int
}

// ElasticsearchStore keeps articles in a single Elasticsearch index.
type ElasticsearchStore struct {
	client *es.Client
	cfg    ElasticsearchConfig
	log    logger.Logger
}

var _ Store = (*ElasticsearchStore)(nil)

// NewElasticsearchStore creates a store on an existing client.
func NewElasticsearchStore(client *es.Client, cfg ElasticsearchConfig, log logger.Logger) *ElasticsearchStore {
	if cfg.IndexName == "" {
		cfg.IndexName = "news"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Shards <= 0 {
		cfg.Shards = 1
	}
	if cfg.Replicas < 0 {
		cfg.Replicas = 0
	}
	return &ElasticsearchStore{
		client: client,
		cfg:    cfg,
		log:    logger.Component(log, "storage").With(logger.String("index", cfg.IndexName)),
	}
}

// IndexName returns the backing index.
func (s *ElasticsearchStore) IndexName() string {
	return s.cfg.IndexName
}

func (s *ElasticsearchStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.RequestTimeout)
}

func (s *ElasticsearchStore) closeBody(res *esapi.Response) {
	if err := res.Body.Close(); err != nil {
		s.log.Debug("Failed to close response body", logger.Error(err))
	}
}

// responseError turns an error response into an error, mapping 404 to ErrNotFound.
func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: elasticsearch error [%s]: %s", op, res.Status(), strings.TrimSpace(string(body)))
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string         `json:"_id"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchStore) search(ctx context.Context, body map[string]any) (*searchResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.cfg.IndexName),
		s.client.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer s.closeBody(res)

	if res.IsError() {
		return nil, responseError("search", res)
	}

	var out searchResponse
	if err = json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &out, nil
}

func (s *ElasticsearchStore) FindByNormalizedURL(ctx context.Context, normalizedURL string) (*domain.Article, error) {
	if normalizedURL == "" {
		return nil, ErrNotFound
	}

	res, err := s.search(ctx, map[string]any{
		"size":  1,
		"query": map[string]any{"term": map[string]any{"normalized_url": normalizedURL}},
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// The index does not exist yet, so nothing can match.
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(res.Hits.Hits) == 0 {
		return nil, ErrNotFound
	}

	hit := res.Hits.Hits[0]
	return decodeSource(hit.ID, hit.Source)
}

func (s *ElasticsearchStore) Insert(ctx context.Context, article *domain.Article) (*domain.Article, error) {
	if article == nil {
		return nil, ErrInvalidArticle
	}

	stored := article.Clone()
	stored.ID = uuid.NewString()

	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshal article: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Index(
		s.cfg.IndexName,
		bytes.NewReader(payload),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(stored.ID),
		s.client.Index.WithOpType("create"),
		s.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return nil, fmt.Errorf("index article: %w", err)
	}
	defer s.closeBody(res)

	if res.IsError() {
		return nil, responseError("index article", res)
	}

	s.log.Debug("Article indexed", logger.String("id", stored.ID), logger.String("url", stored.URL))
	return stored, nil
}

func (s *ElasticsearchStore) Update(ctx context.Context, id string, fields map[string]any) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidArticle)
	}

	payload, err := json.Marshal(map[string]any{"doc": updatableFields(fields)})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Update(
		s.cfg.IndexName,
		id,
		bytes.NewReader(payload),
		s.client.Update.WithContext(ctx),
		s.client.Update.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	defer s.closeBody(res)

	if res.IsError() {
		return responseError("update article "+id, res)
	}
	return nil
}

func (s *ElasticsearchStore) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Get(s.cfg.IndexName, id, s.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	defer s.closeBody(res)

	if res.IsError() {
		return nil, responseError("get article "+id, res)
	}

	var doc struct {
		ID     string         `json:"_id"`
		Found  bool           `json:"found"`
		Source map[string]any `json:"_source"`
	}
	if err = json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode article: %w", err)
	}
	if !doc.Found {
		return nil, ErrNotFound
	}
	return decodeSource(doc.ID, doc.Source)
}

func (s *ElasticsearchStore) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	q = q.Normalize()

	res, err := s.search(ctx, BuildSearchBody(q))
	if err != nil {
		return nil, err
	}

	out := &SearchResult{Total: res.Hits.Total.Value, Page: q.Page, Limit: q.Limit}
	for _, hit := range res.Hits.Hits {
		a, decodeErr := decodeSource(hit.ID, hit.Source)
		if decodeErr != nil {
			s.log.Warn("Skipping undecodable hit", logger.String("id", hit.ID), logger.Error(decodeErr))
			continue
		}
		out.Items = append(out.Items, a)
	}
	return out, nil
}

// BuildSearchBody builds the bool query for q: a boosted multi_match on the
// text fields plus term filters.
func BuildSearchBody(q SearchQuery) map[string]any {
	var must []any
	if q.Query != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query": q.Query,
				"fields": []string{
					"title^3", "content", "summary^2", "author", "source", "categories", "tags",
				},
			},
		})
	} else {
		must = append(must, map[string]any{"match_all": map[string]any{}})
	}

	var filter []any
	if len(q.Tags) > 0 {
		filter = append(filter, map[string]any{"terms": map[string]any{"tags": lowerAll(q.Tags)}})
	}
	if len(q.Categories) > 0 {
		filter = append(filter, map[string]any{"terms": map[string]any{"categories": q.Categories}})
	}
	if q.Source != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"source": q.Source}})
	}

	boolQuery := map[string]any{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	return map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"from":  q.Offset(),
		"size":  q.Limit,
		"sort": []any{
			map[string]any{q.SortField: map[string]any{"order": q.SortOrder}},
		},
		"track_total_hits": true,
	}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func (s *ElasticsearchStore) EnsureIndex(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Indices.Exists([]string{s.cfg.IndexName}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	s.closeBody(res)

	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("check index: unexpected status %d", res.StatusCode)
	}

	payload, err := json.Marshal(IndexMapping(s.cfg.Shards, s.cfg.Replicas))
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}

	res, err = s.client.Indices.Create(
		s.cfg.IndexName,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer s.closeBody(res)

	if res.IsError() {
		return responseError("create index", res)
	}

	s.log.Info("Created index")
	return nil
}

// DeleteIndex removes the backing index. A missing index is not an error.
func (s *ElasticsearchStore) DeleteIndex(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Indices.Delete([]string{s.cfg.IndexName}, s.client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	defer s.closeBody(res)

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete index", res)
	}
	s.log.Info("Deleted index")
	return nil
}
