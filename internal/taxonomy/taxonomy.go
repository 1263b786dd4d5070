// Package taxonomy holds the static industry taxonomy: ordered categories,
// their keywords and display images, plus the region and business qualifier
// terms. A Taxonomy is immutable once loaded and is passed explicitly to
// every component that needs it.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDocument []byte

// ErrInvalidTaxonomy is returned when a taxonomy document fails validation.
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// Category is one industry category.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Images   []string `yaml:"images"`
}

type document struct {
	Qualifiers []string   `yaml:"qualifiers"`
	Categories []Category `yaml:"categories"`
}

// Taxonomy is the loaded, validated taxonomy.
type Taxonomy struct {
	categories []Category
	qualifiers []string
	flattened  []string
	// lowercased keyword -> index of the first category listing it
	keywordOwner map[string]int
	vocabulary   map[string]struct{}
	byName       map[string]int
}

// Default returns the taxonomy compiled into the binary.
func Default() (*Taxonomy, error) {
	return Parse(defaultDocument)
}

// MustDefault is Default for process start.
func MustDefault() *Taxonomy {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads a taxonomy document from path, falling back to the embedded
// default when path is empty.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Taxonomy from a YAML document.
func Parse(data []byte) (*Taxonomy, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTaxonomy, err)
	}
	return New(doc.Categories, doc.Qualifiers)
}

// New validates and indexes the given categories and qualifiers.
func New(categories []Category, qualifiers []string) (*Taxonomy, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidTaxonomy)
	}

	t := &Taxonomy{
		keywordOwner: make(map[string]int),
		vocabulary:   make(map[string]struct{}),
		byName:       make(map[string]int),
	}

	for i, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category %d has no name", ErrInvalidTaxonomy, i)
		}
		key := strings.ToLower(name)
		if _, dup := t.byName[key]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidTaxonomy, name)
		}
		if len(c.Keywords) == 0 {
			return nil, fmt.Errorf("%w: category %q has no keywords", ErrInvalidTaxonomy, name)
		}

		cat := Category{Name: name, Images: slices.Clone(c.Images)}
		for _, kw := range c.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				return nil, fmt.Errorf("%w: category %q has an empty keyword", ErrInvalidTaxonomy, name)
			}
			cat.Keywords = append(cat.Keywords, kw)
			lk := strings.ToLower(kw)
			if _, seen := t.keywordOwner[lk]; !seen {
				t.keywordOwner[lk] = i
			}
		}

		t.byName[key] = i
		t.categories = append(t.categories, cat)
	}

	for _, q := range qualifiers {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		t.qualifiers = append(t.qualifiers, q)
	}

	// Vocabulary order: every category name, then keywords category by
	// category, then qualifiers.
	for _, c := range t.categories {
		t.addTerm(c.Name)
	}
	for _, c := range t.categories {
		for _, kw := range c.Keywords {
			t.addTerm(kw)
		}
	}
	for _, q := range t.qualifiers {
		t.addTerm(q)
	}

	return t, nil
}

func (t *Taxonomy) addTerm(term string) {
	lt := strings.ToLower(term)
	if _, ok := t.vocabulary[lt]; ok {
		return
	}
	t.vocabulary[lt] = struct{}{}
	t.flattened = append(t.flattened, term)
}

// Categories returns a copy of the ordered categories.
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Keywords: slices.Clone(c.Keywords), Images: slices.Clone(c.Images)}
	}
	return out
}

// CategoryNames returns category names in taxonomy order.
func (t *Taxonomy) CategoryNames() []string {
	out := make([]string, len(t.categories))
	for i, c := range t.categories {
		out[i] = c.Name
	}
	return out
}

// Category looks a category up by name, case-insensitively.
func (t *Taxonomy) Category(name string) (Category, bool) {
	i, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Category{}, false
	}
	c := t.categories[i]
	return Category{Name: c.Name, Keywords: slices.Clone(c.Keywords), Images: slices.Clone(c.Images)}, true
}

// Keywords returns the keywords of a category, or nil when unknown.
func (t *Taxonomy) Keywords(category string) []string {
	c, ok := t.Category(category)
	if !ok {
		return nil
	}
	return c.Keywords
}

// Images returns the display images of a category, or nil when unknown.
func (t *Taxonomy) Images(category string) []string {
	c, ok := t.Category(category)
	if !ok {
		return nil
	}
	return c.Images
}

// Qualifiers returns the region and business qualifier terms.
func (t *Taxonomy) Qualifiers() []string {
	return slices.Clone(t.qualifiers)
}

// Flattened returns every category name, then every keyword category by
// category, then the qualifiers, each once ignoring case. This is the closed
// tag vocabulary and the term list a full run searches.
func (t *Taxonomy) Flattened() []string {
	return slices.Clone(t.flattened)
}

// IsKeyword reports whether term belongs to the tag vocabulary, ignoring case.
func (t *Taxonomy) IsKeyword(term string) bool {
	_, ok := t.vocabulary[strings.ToLower(strings.TrimSpace(term))]
	return ok
}

// CategoryOf returns the first category whose keyword list contains term,
// ignoring case.
func (t *Taxonomy) CategoryOf(term string) (string, bool) {
	i, ok := t.keywordOwner[strings.ToLower(strings.TrimSpace(term))]
	if !ok {
		return "", false
	}
	return t.categories[i].Name, true
}
