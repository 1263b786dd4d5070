// Package domain provides the article models shared by the pipeline stages.
package domain

import (
	"strings"
	"time"
)

// Placeholders substituted for missing required text.
const (
	UntitledTitle    = "Untitled Article"
	NoContentMessage = "No content available"
)

// Article is a stored news record.
type Article struct {
	// Store-assigned identifier
	ID      string `json:"id" mapstructure:"id"`
	Title   string `json:"title" mapstructure:"title"`
	Content string `json:"content" mapstructure:"content"`
	Summary string `json:"summary" mapstructure:"summary"`
	Author  string `json:"author" mapstructure:"author"`
	// Host of the article URL without a leading "www."
	Source        string    `json:"source" mapstructure:"source"`
	PublishedDate time.Time `json:"published_date" mapstructure:"published_date"`
	Categories    []string  `json:"categories" mapstructure:"categories"`
	Tags          []string  `json:"tags" mapstructure:"tags"`
	URL           string    `json:"url" mapstructure:"url"`
	// Dedup key, see urlnorm.Normalize
	NormalizedURL string    `json:"normalized_url" mapstructure:"normalized_url"`
	CreatedAt     time.Time `json:"created_at" mapstructure:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" mapstructure:"updated_at"`
}

// Fields returns the mutable fields of a, keyed by their stored names. It is
// the payload of a partial update; ID and CreatedAt are never included.
func (a *Article) Fields() map[string]any {
	return map[string]any{
		"title":          a.Title,
		"content":        a.Content,
		"summary":        a.Summary,
		"author":         a.Author,
		"source":         a.Source,
		"published_date": a.PublishedDate,
		"categories":     cloneStrings(a.Categories),
		"tags":           cloneStrings(a.Tags),
		"url":            a.URL,
		"normalized_url": a.NormalizedURL,
		"updated_at":     a.UpdatedAt,
	}
}

// Clone returns a deep copy of a.
func (a *Article) Clone() *Article {
	if a == nil {
		return nil
	}
	c := *a
	c.Categories = cloneStrings(a.Categories)
	c.Tags = cloneStrings(a.Tags)
	return &c
}

// TagsString returns tags as a comma-separated string.
func (a *Article) TagsString() string {
	return strings.Join(a.Tags, ", ")
}

// CategoriesString returns categories as a comma-separated string.
func (a *Article) CategoriesString() string {
	return strings.Join(a.Categories, ", ")
}

// Draft is an article as extracted from the web, before it is stored.
type Draft struct {
	Title         string
	Content       string
	Summary       string
	Author        string
	Source        string
	PublishedDate time.Time
	Categories    []string
	Tags          []string
	URL           string
}

// HasTag reports whether tag is present, ignoring case.
func (d *Draft) HasTag(tag string) bool {
	return containsFold(d.Tags, tag)
}

// AddTag appends tag unless it is already present, ignoring case.
func (d *Draft) AddTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" || d.HasTag(tag) {
		return
	}
	d.Tags = append(d.Tags, tag)
}

// AddCategory appends category unless it is already present, ignoring case.
func (d *Draft) AddCategory(category string) {
	category = strings.TrimSpace(category)
	if category == "" || containsFold(d.Categories, category) {
		return
	}
	d.Categories = append(d.Categories, category)
}

// ArticleView is an article prepared for display.
type ArticleView struct {
	Article
	// Decorative image chosen from the article's industry category, if any
	ImageURL string `json:"image_url,omitempty"`
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
