package search

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Debarshi-Chaudhuri/news-api/internal/urlnorm"
)

// redirectMarker identifies result links wrapped in the provider's redirector.
const redirectMarker = "/url?"

// DefaultSelectors are the result container selectors tried in order. The
// provider's markup changes often, so older layouts stay in the list.
var DefaultSelectors = []string{
	"div.SoaBEf",
	"div.dbsr",
	"a.WlydOe",
	"div.n0jPhd",
	"g-card",
}

// Page is a fetched results page.
type Page struct {
	Doc *goquery.Document
	// ProviderHost is the host that served the page, without "www."
	ProviderHost string
}

// Strategy pulls candidate article links out of a results page.
type Strategy interface {
	Name() string
	Extract(page Page) []string
}

// SelectorStrategy reads the first link inside every element matching a CSS selector.
type SelectorStrategy struct {
	Selector string
}

func (s SelectorStrategy) Name() string { return "selector:" + s.Selector }

func (s SelectorStrategy) Extract(page Page) []string {
	var links []string
	page.Doc.Find(s.Selector).Each(func(_ int, sel *goquery.Selection) {
		anchor := sel
		if goquery.NodeName(sel) != "a" {
			anchor = sel.Find("a[href]").First()
		}
		href, ok := anchor.Attr("href")
		if !ok {
			return
		}
		if link, ok := ResolveLink(href); ok {
			links = append(links, link)
		}
	})
	return links
}

// AnchorScanStrategy is the fallback: every redirect-wrapped anchor on the
// page whose target leaves the provider's domain.
type AnchorScanStrategy struct{}

func (AnchorScanStrategy) Name() string { return "anchor-scan" }

func (AnchorScanStrategy) Extract(page Page) []string {
	var links []string
	page.Doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := sel.AttrOr("href", "")
		if !strings.Contains(href, redirectMarker) {
			return
		}
		link, ok := unwrapRedirect(href)
		if !ok || onDomain(urlnorm.Host(link), page.ProviderHost) {
			return
		}
		links = append(links, link)
	})
	return links
}

// DefaultStrategies returns the selector cascade followed by the anchor scan.
func DefaultStrategies() []Strategy {
	out := make([]Strategy, 0, len(DefaultSelectors)+1)
	for _, sel := range DefaultSelectors {
		out = append(out, SelectorStrategy{Selector: sel})
	}
	return append(out, AnchorScanStrategy{})
}

// ResolveLink turns a result href into an article URL. Redirect-wrapped
// hrefs are unwrapped; absolute http(s) hrefs are accepted as they are.
func ResolveLink(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if strings.Contains(href, redirectMarker) {
		return unwrapRedirect(href)
	}
	if urlnorm.IsAbsoluteHTTP(href) {
		return href, true
	}
	return "", false
}

func unwrapRedirect(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	q := u.Query()
	for _, key := range []string{"q", "url"} {
		if target := q.Get(key); urlnorm.IsAbsoluteHTTP(target) {
			return target, true
		}
	}
	return "", false
}

func onDomain(host, domain string) bool {
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
