package crawler

import (
	"context"

	"github.com/anshultibby/moleAI-sub001/internal/product"
)

// Fetcher performs a single bounded HTTP fetch. Implementations return a
// *FetchError for network failures, timeouts, and non-2xx statuses.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (RawPage, error)
}

// Extractor runs the structured-data strategies against one page's markup and
// returns the raw candidates from the first strategy that yields any.
type Extractor interface {
	Extract(html string) []product.RawCandidate
}

// Normalizer converts a raw candidate into a canonical product. The boolean
// is false when the candidate lacks a usable name and must be dropped.
type Normalizer interface {
	Normalize(c product.RawCandidate, pageURL string) (product.Product, bool)
}

// LinkFinder scans listing-page markup for further candidate URLs,
// canonicalized against baseURL and capped at limit.
type LinkFinder interface {
	FindProductLinks(html, baseURL string, limit int) []string
}
