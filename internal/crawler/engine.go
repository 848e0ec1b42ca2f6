package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anshultibby/moleAI-sub001/internal/metrics"
	"github.com/anshultibby/moleAI-sub001/internal/product"
)

// Engine orchestrates the bounded, depth-limited breadth-first crawl of one
// site. All collaborators are injected; the engine owns no global state and
// keeps nothing between runs.
type Engine struct {
	cfg        Config
	fetcher    Fetcher
	extractor  Extractor
	normalizer Normalizer
	links      LinkFinder
	logger     *zap.Logger
}

// NewEngine constructs an Engine. The seed URL is validated here; an invalid
// seed is the only caller error the engine refuses outright.
func NewEngine(
	cfg Config,
	fetcher Fetcher,
	extractor Extractor,
	normalizer Normalizer,
	links LinkFinder,
	logger *zap.Logger,
) (*Engine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("crawl config: %w", err)
	}
	if fetcher == nil || extractor == nil || normalizer == nil || links == nil {
		return nil, fmt.Errorf("crawl engine requires fetcher, extractor, normalizer, and link finder")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:        cfg,
		fetcher:    fetcher,
		extractor:  extractor,
		normalizer: normalizer,
		links:      links,
		logger:     logger,
	}, nil
}

// pageOutcome carries everything a worker learned about one frontier entry
// back to the dispatcher.
type pageOutcome struct {
	entry    frontierEntry
	kind     PageKind
	products []product.Product
	links    []string
	err      error
}

// Run executes the crawl until the frontier empties, the page budget is
// spent, or the link budget runs out. Fetches within a batch run concurrently;
// only the dispatching goroutine touches the visited set, the frontier, and
// the product accumulator, so a URL can never be enqueued twice. A failed
// fetch abandons just its entry, except for the seed, whose failure ends the
// run with an empty result.
func (e *Engine) Run(ctx context.Context) (product.CrawlResult, error) {
	seed := Canonicalize(e.cfg.SeedURL, "")
	visited := map[string]struct{}{seed: {}}
	frontier := []frontierEntry{{url: seed, depth: 0}}

	var result product.CrawlResult
	productSeen := make(map[string]struct{})
	linkBudget := e.cfg.MaxLinks
	seedPending := true

	e.logger.Info("crawl started",
		zap.String("seed", seed),
		zap.Int("max_depth", e.cfg.MaxDepth),
		zap.Int("max_pages", e.cfg.MaxPages),
		zap.Int("max_links", e.cfg.MaxLinks),
	)

	for len(frontier) > 0 && result.PagesVisited < e.cfg.MaxPages {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("crawl canceled: %w", err)
		}

		batchSize := e.cfg.Concurrency
		if remaining := e.cfg.MaxPages - result.PagesVisited; batchSize > remaining {
			batchSize = remaining
		}
		if batchSize > len(frontier) {
			batchSize = len(frontier)
		}
		batch := frontier[:batchSize]
		frontier = frontier[batchSize:]

		outcomes := e.fetchBatch(ctx, batch)

		for _, outcome := range outcomes {
			result.PagesVisited++

			if outcome.err != nil {
				if seedPending {
					return product.CrawlResult{}, fmt.Errorf("seed fetch failed: %w", outcome.err)
				}
				e.logger.Warn("page failed",
					zap.String("url", outcome.entry.url),
					zap.Int("depth", outcome.entry.depth),
					zap.Error(outcome.err),
				)
				continue
			}
			seedPending = false

			for _, p := range outcome.products {
				if _, dup := productSeen[p.ProductURL]; dup {
					continue
				}
				productSeen[p.ProductURL] = struct{}{}
				result.Products = append(result.Products, p)
			}

			if outcome.entry.depth >= e.cfg.MaxDepth || outcome.kind != PageKindListing {
				continue
			}
			for _, link := range outcome.links {
				if linkBudget <= 0 {
					break
				}
				if _, known := visited[link]; known {
					continue
				}
				visited[link] = struct{}{}
				linkBudget--
				result.LinksDiscovered++
				frontier = append(frontier, frontierEntry{url: link, depth: outcome.entry.depth + 1})
			}
		}
	}

	e.logger.Info("crawl finished",
		zap.Int("pages_visited", result.PagesVisited),
		zap.Int("links_discovered", result.LinksDiscovered),
		zap.Int("products", len(result.Products)),
	)
	return result, nil
}

// fetchBatch runs the batch concurrently and returns outcomes in batch order,
// which keeps product discovery order deterministic.
func (e *Engine) fetchBatch(ctx context.Context, batch []frontierEntry) []pageOutcome {
	outcomes := make([]pageOutcome, len(batch))
	var wg sync.WaitGroup
	for i, entry := range batch {
		wg.Add(1)
		go func(i int, entry frontierEntry) {
			defer wg.Done()
			outcomes[i] = e.processEntry(ctx, entry)
		}(i, entry)
	}
	wg.Wait()
	return outcomes
}

// processEntry fetches, classifies, extracts, and normalizes one page.
// Extraction and normalization run synchronously in the worker that fetched
// the page.
func (e *Engine) processEntry(ctx context.Context, entry frontierEntry) pageOutcome {
	outcome := pageOutcome{entry: entry}

	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	fetchStart := time.Now()
	page, err := e.fetcher.Fetch(fetchCtx, entry.url)
	metrics.ObserveFetchDuration(time.Since(fetchStart))
	if err != nil {
		metrics.ObservePage(entry.url, "failed")
		var fe *FetchError
		if errors.As(err, &fe) {
			metrics.ObserveFetchError(string(fe.Reason))
		}
		outcome.err = err
		return outcome
	}

	// Sites frequently redirect to a different canonical path; the resolved
	// URL is this page's real identity.
	pageURL := Canonicalize(page.FinalURL, entry.url)
	outcome.kind = Classify(pageURL)

	candidates := e.extractor.Extract(page.HTML)
	for _, candidate := range candidates {
		p, ok := e.normalizer.Normalize(candidate, pageURL)
		if !ok {
			continue
		}
		metrics.ObserveProduct(string(candidate.Strategy))
		outcome.products = append(outcome.products, p)
	}

	if outcome.kind == PageKindListing && entry.depth < e.cfg.MaxDepth {
		outcome.links = e.links.FindProductLinks(page.HTML, pageURL, e.cfg.MaxLinks)
	}

	metrics.ObservePage(entry.url, "fetched")
	e.logger.Debug("page processed",
		zap.String("url", pageURL),
		zap.String("kind", string(outcome.kind)),
		zap.Int("depth", entry.depth),
		zap.Int("candidates", len(candidates)),
		zap.Int("products", len(outcome.products)),
	)
	return outcome
}
