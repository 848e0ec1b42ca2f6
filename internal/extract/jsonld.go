package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anshultibby/moleAI-sub001/internal/product"
)

// JSONLD extracts product candidates from script blocks declared as
// application/ld+json. A block may hold a single object, an array of objects,
// or an @graph wrapper; blocks that stay unparsable after repair are skipped
// without failing the page.
type JSONLD struct{}

// NewJSONLD constructs the JSON-LD strategy.
func NewJSONLD() *JSONLD {
	return &JSONLD{}
}

// Strategy identifies this extractor's candidates.
func (e *JSONLD) Strategy() product.Strategy {
	return product.StrategyJSONLD
}

// Extract scans html for JSON-LD product/offer nodes.
func (e *JSONLD) Extract(html string) []product.RawCandidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var candidates []product.RawCandidate
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var node any
		if err := parseJSONLoose(sel.Text(), &node); err != nil {
			return
		}
		for _, obj := range flattenJSONLD(node) {
			if isProductNode(obj) {
				candidates = append(candidates, product.RawCandidate{
					Strategy: product.StrategyJSONLD,
					Payload:  obj,
				})
			}
		}
	})
	return candidates
}

// flattenJSONLD unwraps arrays and @graph containers into a flat object list.
func flattenJSONLD(node any) []map[string]any {
	switch n := node.(type) {
	case []any:
		var out []map[string]any
		for _, item := range n {
			out = append(out, flattenJSONLD(item)...)
		}
		return out
	case map[string]any:
		if graph, ok := n["@graph"].([]any); ok {
			var out []map[string]any
			for _, item := range graph {
				out = append(out, flattenJSONLD(item)...)
			}
			return out
		}
		return []map[string]any{n}
	default:
		return nil
	}
}

// isProductNode reports whether a JSON-LD object declares a product or offer
// schema type. @type may be a string or a list of strings.
func isProductNode(obj map[string]any) bool {
	switch t := obj["@type"].(type) {
	case string:
		return matchesProductType(t)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && matchesProductType(s) {
				return true
			}
		}
	}
	return false
}

func matchesProductType(t string) bool {
	t = strings.ToLower(strings.TrimSpace(t))
	// Full IRIs like "https://schema.org/Product" appear in the wild.
	if idx := strings.LastIndex(t, "/"); idx >= 0 {
		t = t[idx+1:]
	}
	switch t {
	case "product", "productmodel", "individualproduct", "offer", "aggregateoffer":
		return true
	}
	return false
}
