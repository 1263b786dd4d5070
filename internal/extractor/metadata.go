package extractor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// nonContentSelectors lists elements to strip before extracting body text.
const nonContentSelectors = "script, style, noscript, nav, header, footer, aside, form, iframe"

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func pageTitle(doc *goquery.Document) string {
	if t := metaContent(doc, "meta[property='og:title']", "meta[name='twitter:title']"); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func metaDescription(doc *goquery.Document) string {
	return metaContent(doc,
		"meta[name='description']",
		"meta[property='og:description']",
		"meta[name='twitter:description']",
	)
}

func metaAuthor(doc *goquery.Document) string {
	return metaContent(doc,
		"meta[name='author']",
		"meta[property='article:author']",
		"meta[name='byl']",
	)
}

var dateMetaSelectors = []string{
	"meta[property='article:published_time']",
	"meta[property='og:published_time']",
	"meta[itemprop='datePublished']",
	"meta[name='date']",
	"meta[name='pubdate']",
	"meta[name='publishdate']",
	"meta[name='publish-date']",
}

func metaPublished(doc *goquery.Document) string {
	if v := metaContent(doc, dateMetaSelectors...); v != "" {
		return v
	}
	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// bodyText reads <article> text, falling back to <body>, with non-content
// elements removed.
func bodyText(doc *goquery.Document) string {
	for _, sel := range []string{"article", "main", "body"} {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		node = node.Clone()
		node.Find(nonContentSelectors).Remove()
		if text := cleanText(node.Text()); text != "" {
			return text
		}
	}
	return ""
}

// cleanText collapses runs of whitespace inside lines and drops blank lines.
func cleanText(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if l := strings.Join(strings.Fields(line), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// linkedData holds the JSON-LD fields used as fallbacks.
type linkedData struct {
	Headline      string
	Author        string
	DatePublished string
	Description   string
}

var articleTypes = map[string]bool{
	"article":              true,
	"newsarticle":          true,
	"reportagenewsarticle": true,
	"blogposting":          true,
	"webpage":              true,
}

func parseLinkedData(doc *goquery.Document) linkedData {
	var ld linkedData
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true
		}
		for _, obj := range flattenLinkedData(raw) {
			if !isArticleType(obj["@type"]) {
				continue
			}
			ld = linkedData{
				Headline:      stringify(obj["headline"]),
				Author:        stringify(obj["author"]),
				DatePublished: stringify(obj["datePublished"]),
				Description:   stringify(obj["description"]),
			}
			return false
		}
		return true
	})
	return ld
}

func flattenLinkedData(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := []map[string]any{t}
		if graph, ok := t["@graph"]; ok {
			out = append(out, flattenLinkedData(graph)...)
		}
		return out
	case []any:
		var out []map[string]any
		for _, item := range t {
			out = append(out, flattenLinkedData(item)...)
		}
		return out
	default:
		return nil
	}
}

func isArticleType(v any) bool {
	switch t := v.(type) {
	case string:
		return articleTypes[strings.ToLower(t)]
	case []any:
		for _, item := range t {
			if isArticleType(item) {
				return true
			}
		}
	}
	return false
}

// stringify coerces a decoded JSON value into display text. Objects yield
// their "name", lists are joined with commas.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return fmt.Sprint(t)
	case map[string]any:
		return stringify(t["name"])
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
