package search_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Debarshi-Chaudhuri/news-api/internal/search"
)

func page(t *testing.T, html string) search.Page {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return search.Page{Doc: doc, ProviderHost: "google.com"}
}

func TestResolveLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		href   string
		want   string
		wantOK bool
	}{
		{"redirect q", "/url?q=https://example.com/a&sa=U", "https://example.com/a", true},
		{"redirect url param", "https://www.google.com/url?url=https://example.com/b&rct=j", "https://example.com/b", true},
		{"encoded target keeps its query", "/url?q=https%3A%2F%2Fexample.com%2Fa%3Fid%3D7&sa=U", "https://example.com/a?id=7", true},
		{"direct absolute", "https://example.com/c", "https://example.com/c", true},
		{"relative", "/search?q=more", "", false},
		{"redirect to non-http", "/url?q=javascript:alert(1)", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := search.ResolveLink(tt.href)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectorStrategy_AnchorSelector(t *testing.T) {
	t.Parallel()

	p := page(t, `<a class="WlydOe" href="/url?q=https://example.com/x&sa=U">x</a>
<a class="other" href="https://example.com/y">y</a>`)

	got := search.SelectorStrategy{Selector: "a.WlydOe"}.Extract(p)
	assert.Equal(t, []string{"https://example.com/x"}, got)
}

func TestSelectorStrategy_FirstAnchorPerContainer(t *testing.T) {
	t.Parallel()

	p := page(t, `<div class="dbsr"><a href="https://example.com/1">1</a><a href="https://example.com/2">2</a></div>`)

	got := search.SelectorStrategy{Selector: "div.dbsr"}.Extract(p)
	assert.Equal(t, []string{"https://example.com/1"}, got)
}

func TestAnchorScanStrategy_ExcludesProviderDomain(t *testing.T) {
	t.Parallel()

	p := page(t, `<a href="/url?q=https://maps.google.com/x">m</a>
<a href="/url?q=https://thehindu.com/biz">h</a>
<a href="https://direct.example.com/">d</a>`)

	got := search.AnchorScanStrategy{}.Extract(p)
	assert.Equal(t, []string{"https://thehindu.com/biz"}, got)
}

func TestDefaultStrategies_Order(t *testing.T) {
	t.Parallel()

	s := search.DefaultStrategies()
	require.Len(t, s, len(search.DefaultSelectors)+1)
	assert.Equal(t, "selector:div.SoaBEf", s[0].Name())
	assert.Equal(t, "anchor-scan", s[len(s)-1].Name())
}
