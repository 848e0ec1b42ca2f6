// Package product defines the core types shared across the discovery subsystems:
// the canonical product record, the raw extractor candidates that feed it, and
// the result envelope returned by a crawl run.
package product

// Strategy identifies which structured-data mechanism produced a raw candidate.
type Strategy string

// Extraction strategies in the order they are attempted against a page.
const (
	StrategyJSONLD    Strategy = "jsonld"
	StrategyMicrodata Strategy = "microdata"
	StrategyAnalytics Strategy = "analytics"
)

// RawCandidate is one extractor-specific structured-data fragment, tagged with
// the strategy that found it. The payload keys depend on the strategy; the
// normalizer owns the per-strategy decoding rules.
type RawCandidate struct {
	Strategy Strategy
	Payload  map[string]any
}

// Product is the canonical record emitted for one discovered product. A record
// is only valid with a non-empty Name; every other field is optional and left
// at its zero value (or nil) when the source markup did not carry it.
type Product struct {
	Name         string   `json:"name"`
	Price        *float64 `json:"price,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Brand        string   `json:"brand,omitempty"`
	SKU          string   `json:"sku,omitempty"`
	ProductURL   string   `json:"product_url"`
	ImageURL     string   `json:"image_url,omitempty"`
	Description  string   `json:"description,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Source       Strategy `json:"source,omitempty"`
}

// CrawlResult is returned once per crawl invocation. Products are deduplicated
// by canonical ProductURL and kept in discovery order.
type CrawlResult struct {
	Products        []Product `json:"products"`
	PagesVisited    int       `json:"pages_visited"`
	LinksDiscovered int       `json:"links_discovered"`
}
