package crawler

import (
	"net/url"
	"strings"
)

// Query parameters that never change page identity. Stripping them keeps the
// visited set from treating campaign-tagged links as distinct pages.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"fbclid":       {},
	"gclid":        {},
	"msclkid":      {},
	"mc_cid":       {},
	"mc_eid":       {},
	"ref":          {},
	"_ga":          {},
}

// Canonicalize normalizes rawURL into a stable, deduplication-safe identity.
// Relative URLs are resolved against baseURL. The host is lowercased, the
// fragment and known tracking parameters are dropped, default ports are
// removed, and a trailing slash is trimmed except on the root path.
//
// Canonicalize is idempotent and never fails: input that cannot be parsed is
// returned trimmed as-is so classification and crawling can still proceed.
func Canonicalize(rawURL, baseURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if baseURL != "" {
		if base, baseErr := url.Parse(baseURL); baseErr == nil {
			u = base.ResolveReference(u)
		}
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Scheme == "http" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}
	u.Fragment = ""

	q := u.Query()
	for param := range q {
		if _, ok := trackingParams[strings.ToLower(param)]; ok {
			q.Del(param)
		}
	}
	u.RawQuery = q.Encode()

	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}

// SameHost reports whether two canonical URLs point at the same host,
// ignoring a leading "www." on either side. The crawl is bounded to a single
// site, so discovered links on foreign hosts are discarded.
func SameHost(a, b string) bool {
	ha := hostOf(a)
	return ha != "" && ha == hostOf(b)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
