// Package crawler implements the crawl-and-extract engine: URL
// canonicalization and classification, and the bounded breadth-first
// traversal that turns a seed listing URL into canonical product records.
package crawler

import "fmt"

// RawPage is the result of one page fetch. It is consumed immediately by
// classification and extraction and never retained.
type RawPage struct {
	RequestedURL string
	FinalURL     string
	HTML         string
	StatusCode   int
}

// FetchReason tags the failure mode of a single fetch.
type FetchReason string

// Fetch failure reasons.
const (
	FetchReasonNetwork FetchReason = "network"
	FetchReasonTimeout FetchReason = "timeout"
	FetchReasonStatus  FetchReason = "status"
)

// FetchError describes a failed page fetch. It is fatal only to the frontier
// entry that triggered it, never to the crawl run.
type FetchError struct {
	URL        string
	Reason     FetchReason
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Reason == FetchReasonStatus {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// frontierEntry is one not-yet-fetched URL awaiting the crawl, tagged with the
// depth it was discovered at.
type frontierEntry struct {
	url   string
	depth int
}
