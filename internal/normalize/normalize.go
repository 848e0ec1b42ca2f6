// Package normalize converts raw extractor candidates into canonical product
// records, reconciling the inconsistent field shapes the three structured-data
// strategies produce.
package normalize

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/anshultibby/moleAI-sub001/internal/crawler"
	"github.com/anshultibby/moleAI-sub001/internal/product"
)

// DefaultCurrency is assumed when a candidate carries a price but no explicit
// currency code.
const DefaultCurrency = "USD"

var priceCleaner = regexp.MustCompile(`[^0-9.,-]`)

// Normalizer builds canonical products from raw candidates.
type Normalizer struct{}

// New constructs a Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize converts one raw candidate into a canonical product. The page URL
// anchors relative product and image links and supplies the scheme for
// protocol-relative image URLs. The second return is false when the candidate
// lacks a usable name; that is a skip, not an error.
func (n *Normalizer) Normalize(c product.RawCandidate, pageURL string) (product.Product, bool) {
	payload := c.Payload
	if payload == nil {
		return product.Product{}, false
	}

	name := n.name(payload)
	if name == "" {
		return product.Product{}, false
	}

	price := n.price(payload)
	currency := n.currency(payload)
	if currency == "" && price != nil {
		currency = DefaultCurrency
	}

	p := product.Product{
		Name:         name,
		Price:        price,
		Currency:     currency,
		Brand:        n.brand(payload),
		SKU:          stringField(payload, "sku", "mpn", "id"),
		ProductURL:   n.productURL(payload, pageURL),
		ImageURL:     n.image(payload, pageURL),
		Description:  n.description(payload),
		Availability: n.availability(payload),
		Source:       c.Strategy,
	}
	return p, true
}

func (n *Normalizer) name(payload map[string]any) string {
	if name := stringField(payload, "name", "title"); name != "" {
		return name
	}
	// Pixel variant entries nest the display title under product.
	if prod, ok := payload["product"].(map[string]any); ok {
		return stringField(prod, "title", "name")
	}
	return ""
}

// price resolves the raw price value across the shapes seen in the wild: a
// top-level number or string, a {"amount": ...} money object, or a value
// nested in a single offer / offer list.
func (n *Normalizer) price(payload map[string]any) *float64 {
	if v, ok := payload["price"]; ok {
		if money, ok := v.(map[string]any); ok {
			return parsePrice(money["amount"])
		}
		if p := parsePrice(v); p != nil {
			return p
		}
	}
	if offer := firstOffer(payload); offer != nil {
		if p := parsePrice(offer["price"]); p != nil {
			return p
		}
		return parsePrice(offer["lowPrice"])
	}
	return nil
}

func (n *Normalizer) currency(payload map[string]any) string {
	if money, ok := payload["price"].(map[string]any); ok {
		if code := stringField(money, "currencyCode", "currency"); code != "" {
			return code
		}
	}
	if code := stringField(payload, "priceCurrency", "currency"); code != "" {
		return code
	}
	if offer := firstOffer(payload); offer != nil {
		return stringField(offer, "priceCurrency", "currency")
	}
	return ""
}

// brand accepts a plain string, a {"name": ...} object, or the vendor field
// analytics payloads use.
func (n *Normalizer) brand(payload map[string]any) string {
	switch b := payload["brand"].(type) {
	case string:
		return strings.TrimSpace(b)
	case map[string]any:
		return stringField(b, "name")
	}
	if vendor := stringField(payload, "vendor"); vendor != "" {
		return vendor
	}
	if prod, ok := payload["product"].(map[string]any); ok {
		return stringField(prod, "vendor")
	}
	return ""
}

// image accepts a single URL, a list of URLs, a structured image object, or a
// list of such objects, and resolves the first usable entry to an absolute
// URL. Protocol-relative URLs take the page's scheme.
func (n *Normalizer) image(payload map[string]any, pageURL string) string {
	raw := firstImageRef(payload["image"])
	if raw == "" {
		if prod, ok := payload["product"].(map[string]any); ok {
			raw = firstImageRef(prod["image"])
		}
	}
	if raw == "" {
		return ""
	}
	return resolveRef(raw, pageURL)
}

func firstImageRef(v any) string {
	switch img := v.(type) {
	case string:
		return strings.TrimSpace(img)
	case map[string]any:
		return stringField(img, "url", "src", "contentUrl")
	case []any:
		for _, item := range img {
			if ref := firstImageRef(item); ref != "" {
				return ref
			}
		}
	}
	return ""
}

func (n *Normalizer) description(payload map[string]any) string {
	return stringField(payload, "description", "body_html", "summary", "caption")
}

func (n *Normalizer) availability(payload map[string]any) string {
	raw := stringField(payload, "availability")
	if raw == "" {
		if offer := firstOffer(payload); offer != nil {
			raw = stringField(offer, "availability")
		}
	}
	if raw == "" {
		return ""
	}
	// Schema.org spells availability as an IRI like
	// "https://schema.org/InStock"; keep only the final segment.
	if idx := strings.LastIndex(raw, "/"); idx >= 0 {
		raw = raw[idx+1:]
	}
	return raw
}

// productURL prefers the candidate's own URL over the page it was found on,
// since listing pages embed candidates pointing elsewhere.
func (n *Normalizer) productURL(payload map[string]any, pageURL string) string {
	raw := stringField(payload, "url", "@id")
	if raw == "" {
		if prod, ok := payload["product"].(map[string]any); ok {
			raw = stringField(prod, "url")
		}
	}
	if raw == "" {
		return crawler.Canonicalize(pageURL, "")
	}
	return crawler.Canonicalize(raw, pageURL)
}

// firstOffer unwraps the offers field, which may be a single object, a list,
// or an AggregateOffer.
func firstOffer(payload map[string]any) map[string]any {
	switch offers := payload["offers"].(type) {
	case map[string]any:
		return offers
	case []any:
		for _, item := range offers {
			if offer, ok := item.(map[string]any); ok {
				return offer
			}
		}
	}
	return nil
}

// parsePrice accepts numeric or string input, stripping currency symbols and
// thousands separators. Unparsable input yields nil rather than an error.
func parsePrice(v any) *float64 {
	switch p := v.(type) {
	case float64:
		return &p
	case int:
		f := float64(p)
		return &f
	case string:
		cleaned := priceCleaner.ReplaceAllString(p, "")
		if cleaned == "" {
			return nil
		}
		cleaned = normalizeSeparators(cleaned)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

// normalizeSeparators reduces mixed thousands/decimal separators to a plain
// decimal point. A lone comma with one or two trailing digits is treated as a
// decimal comma.
func normalizeSeparators(s string) string {
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		return strings.ReplaceAll(s, ",", "")
	case hasComma:
		idx := strings.LastIndex(s, ",")
		if tail := len(s) - idx - 1; tail > 0 && tail <= 2 && strings.Count(s, ",") == 1 {
			return strings.ReplaceAll(s, ",", ".")
		}
		return strings.ReplaceAll(s, ",", "")
	default:
		return s
	}
}

// resolveRef makes raw absolute relative to pageURL, fixing protocol-relative
// references with the page's scheme.
func resolveRef(raw, pageURL string) string {
	if strings.HasPrefix(raw, "//") {
		scheme := "https"
		if u, err := url.Parse(pageURL); err == nil && u.Scheme != "" {
			scheme = u.Scheme
		}
		return scheme + ":" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.IsAbs() {
		return raw
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return raw
	}
	return base.ResolveReference(u).String()
}

func stringField(payload map[string]any, names ...string) string {
	for _, name := range names {
		if v, ok := payload[name]; ok {
			if s, ok := v.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}
