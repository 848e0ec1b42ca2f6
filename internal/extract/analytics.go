package extract

import (
	"strings"

	"github.com/anshultibby/moleAI-sub001/internal/product"
)

// Analytics extracts product candidates from the client-side analytics
// payloads Shopify-style storefronts embed in script content. Two payload
// shapes are recognized: the classic `var meta = {...}` object carrying
// product variants with integer cent prices, and the web-pixels
// `"productVariants":[...]` array, which usually arrives as an escaped string
// literal inside the pixel bootstrap script.
type Analytics struct{}

// NewAnalytics constructs the analytics-payload strategy.
func NewAnalytics() *Analytics {
	return &Analytics{}
}

// Strategy identifies this extractor's candidates.
func (e *Analytics) Strategy() product.Strategy {
	return product.StrategyAnalytics
}

// Extract scans script content for a recognizable analytics product payload.
func (e *Analytics) Extract(html string) []product.RawCandidate {
	if candidates := e.extractPixelVariants(html); len(candidates) > 0 {
		return candidates
	}
	return e.extractMetaObject(html)
}

// extractPixelVariants pulls the productVariants array out of a web-pixels
// bootstrap payload. Entries look like
// {"price":{"amount":29.99,"currencyCode":"USD"},"product":{"title":...}}.
func (e *Analytics) extractPixelVariants(html string) []product.RawCandidate {
	const marker = `"productVariants":`
	source := strings.ReplaceAll(html, `\"`, `"`)

	var candidates []product.RawCandidate
	for offset := 0; ; {
		idx := strings.Index(source[offset:], marker)
		if idx < 0 {
			break
		}
		start := offset + idx + len(marker)
		block := balancedSlice(source, start, '[', ']')
		offset = start
		if block == "" {
			continue
		}
		var entries []map[string]any
		if err := parseJSONLoose(block, &entries); err != nil {
			continue
		}
		for _, entry := range entries {
			if len(entry) == 0 {
				continue
			}
			candidates = append(candidates, product.RawCandidate{
				Strategy: product.StrategyAnalytics,
				Payload:  entry,
			})
		}
		if len(candidates) > 0 {
			break
		}
	}
	return candidates
}

// extractMetaObject parses the legacy `var meta = {...};` object. Variant
// prices there are integer cents, so they are converted up front; only this
// extractor knows that unit convention.
func (e *Analytics) extractMetaObject(html string) []product.RawCandidate {
	const marker = "var meta ="
	idx := strings.Index(html, marker)
	if idx < 0 {
		return nil
	}
	block := balancedSlice(html, idx+len(marker), '{', '}')
	if block == "" {
		return nil
	}
	var meta map[string]any
	if err := parseJSONLoose(block, &meta); err != nil {
		return nil
	}
	productNode, ok := meta["product"].(map[string]any)
	if !ok {
		return nil
	}
	variants, _ := productNode["variants"].([]any)
	vendor, _ := productNode["vendor"].(string)

	var candidates []product.RawCandidate
	for _, raw := range variants {
		variant, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		payload := map[string]any{
			"name":   variant["name"],
			"sku":    variant["sku"],
			"vendor": vendor,
		}
		if cents, ok := variant["price"].(float64); ok {
			payload["price"] = cents / 100
		}
		if currency, ok := meta["currency"]; ok {
			payload["currency"] = currency
		}
		candidates = append(candidates, product.RawCandidate{
			Strategy: product.StrategyAnalytics,
			Payload:  payload,
		})
	}
	return candidates
}

// balancedSlice returns the substring starting at the first open delimiter at
// or after from, through its balanced close, honoring string literals. Empty
// when the payload is truncated or never opens.
func balancedSlice(s string, from int, openCh, closeCh byte) string {
	i := from
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	if i >= len(s) || s[i] != openCh {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for j := i; j < len(s); j++ {
		ch := s[j]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return s[i : j+1]
			}
		}
	}
	return ""
}
