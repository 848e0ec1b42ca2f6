package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anshultibby/moleAI-sub001/internal/product"
)

// Microdata extracts product candidates from schema.org microdata: elements
// whose itemtype declares a Product, with nested itemprop attributes carrying
// the field values.
type Microdata struct{}

// NewMicrodata constructs the microdata strategy.
func NewMicrodata() *Microdata {
	return &Microdata{}
}

// Strategy identifies this extractor's candidates.
func (e *Microdata) Strategy() product.Strategy {
	return product.StrategyMicrodata
}

// Extract scans html for itemtype=schema.org/Product scopes.
func (e *Microdata) Extract(html string) []product.RawCandidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var candidates []product.RawCandidate
	doc.Find(`[itemtype*="schema.org/Product"]`).Each(func(_ int, scope *goquery.Selection) {
		// Nested Product scopes are collected on their own pass.
		if parent := scope.Parent().Closest(`[itemtype*="schema.org/Product"]`); parent.Length() > 0 {
			return
		}
		payload := readItemScope(scope)
		if len(payload) == 0 {
			return
		}
		candidates = append(candidates, product.RawCandidate{
			Strategy: product.StrategyMicrodata,
			Payload:  payload,
		})
	})
	return candidates
}

// readItemScope collects itemprop values owned by one itemscope element.
// Nested scopes (brand, offers) become nested maps, so the payload mirrors
// the shape JSON-LD produces for the same markup.
func readItemScope(scope *goquery.Selection) map[string]any {
	payload := make(map[string]any)
	scope.Find("[itemprop]").Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("itemprop")
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		// A property is owned by its closest enclosing itemscope; anything
		// claimed by a nested scope is read during the recursive call.
		owner := sel.Parent().Closest("[itemscope], [itemtype]")
		if owner.Length() == 0 || !owner.IsSelection(scope) {
			return
		}
		if _, exists := payload[name]; exists {
			return
		}
		if isItemScope(sel) {
			payload[name] = readItemScope(sel)
			return
		}
		if value := itempropValue(sel); value != "" {
			payload[name] = value
		}
	})
	return payload
}

func isItemScope(sel *goquery.Selection) bool {
	if _, ok := sel.Attr("itemscope"); ok {
		return true
	}
	_, ok := sel.Attr("itemtype")
	return ok
}

// itempropValue reads a property value the way microdata defines it: content
// attribute first, then tag-specific URL attributes, then trimmed text.
func itempropValue(sel *goquery.Selection) string {
	if content, ok := sel.Attr("content"); ok && strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content)
	}
	if sel.Is("img, source") {
		src, _ := sel.Attr("src")
		return strings.TrimSpace(src)
	}
	if sel.Is("a, link") {
		href, _ := sel.Attr("href")
		return strings.TrimSpace(href)
	}
	if sel.Is("meta") {
		return ""
	}
	return strings.TrimSpace(sel.Text())
}
