package crawler

import (
	"net/url"
	"strings"
)

// PageKind labels what a URL most likely points at, judged from the URL alone.
type PageKind string

// Page kinds assigned by Classify.
const (
	PageKindListing PageKind = "listing"
	PageKindProduct PageKind = "product"
	PageKindOther   PageKind = "other"
)

// Path substrings that indicate a listing/collection container. These are
// checked before the product hints: a URL matching both (such as
// "/collections/shoes/products/runner") is treated as a listing, since listing
// containers are the source of further links.
var listingPatterns = []string{
	"/collections/",
	"/collection/",
	"/category/",
	"/categories/",
	"/shop/",
	"/store/",
	"/catalog/",
	"/search",
	"/browse",
	"/c/",
}

// Path substrings that hint at an individual product page.
var productPatterns = []string{
	"/products/",
	"/product/",
	"/product-page/",
	"/p/",
	"/item/",
	"/items/",
	"/dp/",
	"/sku/",
	"/pd/",
}

// Classify labels a canonical URL as listing, product, or other by matching an
// ordered list of path patterns. The first matching pattern wins; listing
// patterns take precedence over product hints. Classify is a pure function of
// the URL string and never inspects page content.
func Classify(canonicalURL string) PageKind {
	u, err := url.Parse(canonicalURL)
	if err != nil {
		return PageKindOther
	}
	// Match against path plus a trailing slash so suffix patterns like
	// "/collections/" still hit "/collections".
	path := strings.ToLower(u.Path) + "/"

	for _, pattern := range listingPatterns {
		if strings.Contains(path, pattern) {
			return PageKindListing
		}
	}
	for _, pattern := range productPatterns {
		if strings.Contains(path, pattern) {
			return PageKindProduct
		}
	}
	return PageKindOther
}
