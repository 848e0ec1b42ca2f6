package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anshultibby/moleAI-sub001/internal/crawler"
)

// Selectors for container elements whose class or id suggests a product
// grouping; anchors inside them are candidates even when the href itself
// carries no product hint.
var productContainerSelectors = strings.Join([]string{
	`[class*="product-card"] a[href]`,
	`[class*="product-item"] a[href]`,
	`[class*="product-grid"] a[href]`,
	`[class*="product-list"] a[href]`,
	`[class*="product-tile"] a[href]`,
	`[id*="product-grid"] a[href]`,
	`[class*="collection-grid"] a[href]`,
	`li[class*="product"] a[href]`,
}, ", ")

var productHrefHints = []string{
	"/products/",
	"/product/",
	"/p/",
	"/item/",
	"/dp/",
	"/collections/",
	"/category/",
}

// LinkFinder scans listing-page markup for further candidate product and
// listing URLs.
type LinkFinder struct{}

// NewLinkFinder constructs a LinkFinder.
func NewLinkFinder() *LinkFinder {
	return &LinkFinder{}
}

// FindProductLinks returns canonicalized, deduplicated candidate URLs from
// html, resolved against baseURL and capped at limit. Two heuristics feed it:
// anchors whose href matches a product-hint pattern, and anchors nested in a
// product-grouping container. Off-site links are dropped. The result is empty,
// never an error, when nothing matches.
func (f *LinkFinder) FindProductLinks(html, baseURL string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	add := func(href string) {
		if len(links) >= limit {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}
		canonical := crawler.Canonicalize(href, baseURL)
		if canonical == "" || !crawler.SameHost(canonical, baseURL) {
			return
		}
		if _, dup := seen[canonical]; dup {
			return
		}
		seen[canonical] = struct{}{}
		links = append(links, canonical)
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if hasProductHint(href) {
			add(href)
		}
	})
	doc.Find(productContainerSelectors).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		add(href)
	})

	return links
}

func hasProductHint(href string) bool {
	lower := strings.ToLower(href)
	for _, hint := range productHrefHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
