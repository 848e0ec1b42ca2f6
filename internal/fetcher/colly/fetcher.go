// Package collyfetcher implements the page fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/anshultibby/moleAI-sub001/internal/crawler"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher performs single bounded HTTP fetches via a cloned Colly collector.
// Redirects are followed; the redirect-resolved final URL is reported so the
// caller can re-canonicalize the page identity.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	base := colly.NewCollector(colly.UserAgent(cfg.UserAgent))
	base.AllowURLRevisit = true
	base.IgnoreRobotsTxt = true
	base.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
	})
	base.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		cfg:           cfg,
		baseCollector: base,
	}
}

// Fetch executes one HTTP GET. All failure modes surface as *crawler.FetchError
// tagged with a reason; none of them is fatal beyond the requested URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (crawler.RawPage, error) {
	collector := f.baseCollector.Clone()
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < f.cfg.Timeout {
			collector.SetRequestTimeout(remaining)
		}
	}

	var (
		page     crawler.RawPage
		fetchErr error
		once     sync.Once
	)

	collector.OnResponse(func(r *colly.Response) {
		once.Do(func() {
			page = crawler.RawPage{
				RequestedURL: rawURL,
				FinalURL:     r.Request.URL.String(),
				HTML:         string(r.Body),
				StatusCode:   r.StatusCode,
			}
		})
	})
	collector.OnError(func(r *colly.Response, err error) {
		once.Do(func() {
			fetchErr = classifyError(rawURL, r, err)
		})
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := collector.Visit(rawURL); err != nil {
			once.Do(func() {
				fetchErr = classifyError(rawURL, nil, err)
			})
			return
		}
		collector.Wait()
	}()

	select {
	case <-ctx.Done():
		return crawler.RawPage{}, &crawler.FetchError{
			URL:    rawURL,
			Reason: crawler.FetchReasonTimeout,
			Err:    ctx.Err(),
		}
	case <-done:
	}

	if fetchErr != nil {
		return crawler.RawPage{}, fetchErr
	}
	if page.StatusCode < 200 || page.StatusCode >= 300 {
		return crawler.RawPage{}, &crawler.FetchError{
			URL:        rawURL,
			Reason:     crawler.FetchReasonStatus,
			StatusCode: page.StatusCode,
		}
	}
	return page, nil
}

// classifyError tags a Colly failure with the reason the crawl engine records.
func classifyError(rawURL string, r *colly.Response, err error) error {
	if r != nil && r.StatusCode >= 300 {
		return &crawler.FetchError{
			URL:        rawURL,
			Reason:     crawler.FetchReasonStatus,
			StatusCode: r.StatusCode,
			Err:        err,
		}
	}
	reason := crawler.FetchReasonNetwork
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		reason = crawler.FetchReasonTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		reason = crawler.FetchReasonTimeout
	}
	return &crawler.FetchError{
		URL:    rawURL,
		Reason: reason,
		Err:    err,
	}
}
