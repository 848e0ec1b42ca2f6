// Package runner assembles the crawl engine with its production
// collaborators: the Colly fetcher, the extraction chain, the normalizer, and
// the link finder.
package runner

import (
	"context"

	"go.uber.org/zap"

	"github.com/anshultibby/moleAI-sub001/internal/crawler"
	"github.com/anshultibby/moleAI-sub001/internal/extract"
	collyfetcher "github.com/anshultibby/moleAI-sub001/internal/fetcher/colly"
	"github.com/anshultibby/moleAI-sub001/internal/normalize"
	"github.com/anshultibby/moleAI-sub001/internal/product"
)

// Runner builds a fresh engine per crawl invocation. Engines keep per-run
// state (visited set, frontier), so they are never reused.
type Runner struct {
	logger *zap.Logger
}

// New constructs a Runner.
func New(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger}
}

// Crawl runs one crawl-and-extract pass over the configured site.
func (r *Runner) Crawl(ctx context.Context, cfg crawler.Config) (product.CrawlResult, error) {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
	})
	engine, err := crawler.NewEngine(
		cfg,
		fetcher,
		extract.DefaultChain(),
		normalize.New(),
		extract.NewLinkFinder(),
		r.logger,
	)
	if err != nil {
		return product.CrawlResult{}, err
	}
	return engine.Run(ctx)
}
