// Package extract implements the structured-data extraction strategies that
// pull raw product candidates out of fetched page markup: JSON-LD blocks,
// schema.org microdata, and the Shopify-style analytics payloads embedded in
// script content.
package extract

import (
	"github.com/anshultibby/moleAI-sub001/internal/product"
)

// Extractor is one structured-data strategy. Extract scans the page markup and
// returns zero or more raw candidates. A strategy never fails the page: markup
// it cannot understand simply yields no candidates.
type Extractor interface {
	Extract(html string) []product.RawCandidate
	Strategy() product.Strategy
}

// Chain runs extractors in a fixed order and stops at the first strategy that
// yields at least one candidate. The short-circuit keeps a product that is
// marked up under two schemas on the same page from being counted twice.
type Chain struct {
	extractors []Extractor
}

// NewChain builds a Chain over the given strategies, tried in argument order.
func NewChain(extractors ...Extractor) *Chain {
	return &Chain{extractors: extractors}
}

// DefaultChain returns the canonical strategy order: JSON-LD, then microdata,
// then the analytics payload.
func DefaultChain() *Chain {
	return NewChain(NewJSONLD(), NewMicrodata(), NewAnalytics())
}

// Extract returns the candidates from the first non-empty strategy.
func (c *Chain) Extract(html string) []product.RawCandidate {
	for _, e := range c.extractors {
		if candidates := e.Extract(html); len(candidates) > 0 {
			return candidates
		}
	}
	return nil
}
