package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/anshultibby/moleAI-sub001/internal/product"
)

// MockFetcher is a mock implementation of the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (RawPage, error) {
	args := m.Called(ctx, rawURL)
	return args.Get(0).(RawPage), args.Error(1)
}

// MockExtractor is a mock implementation of the Extractor interface.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(html string) []product.RawCandidate {
	args := m.Called(html)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]product.RawCandidate)
}

// MockNormalizer is a mock implementation of the Normalizer interface.
type MockNormalizer struct {
	mock.Mock
}

func (m *MockNormalizer) Normalize(c product.RawCandidate, pageURL string) (product.Product, bool) {
	args := m.Called(c, pageURL)
	return args.Get(0).(product.Product), args.Bool(1)
}

// MockLinkFinder is a mock implementation of the LinkFinder interface.
type MockLinkFinder struct {
	mock.Mock
}

func (m *MockLinkFinder) FindProductLinks(html, baseURL string, limit int) []string {
	args := m.Called(html, baseURL, limit)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func testConfig(seed string) Config {
	return Config{
		SeedURL:     seed,
		MaxDepth:    1,
		MaxLinks:    30,
		MaxPages:    20,
		Concurrency: 1,
		Timeout:     5 * time.Second,
	}
}

func okPage(url string) RawPage {
	return RawPage{RequestedURL: url, FinalURL: url, HTML: "<html></html>", StatusCode: 200}
}

func candidate(name string) product.RawCandidate {
	return product.RawCandidate{Strategy: product.StrategyJSONLD, Payload: map[string]any{"name": name}}
}

func TestNewEngine(t *testing.T) {
	t.Run("rejects invalid seed", func(t *testing.T) {
		cfg := testConfig("not-a-url")
		_, err := NewEngine(cfg, new(MockFetcher), new(MockExtractor), new(MockNormalizer), new(MockLinkFinder), nil)
		require.Error(t, err)
	})

	t.Run("rejects missing collaborators", func(t *testing.T) {
		cfg := testConfig("https://shop.example.com")
		_, err := NewEngine(cfg, nil, new(MockExtractor), new(MockNormalizer), new(MockLinkFinder), nil)
		require.Error(t, err)
	})
}

func TestEngineRun(t *testing.T) {
	t.Run("seed only at depth zero", func(t *testing.T) {
		seed := "https://shop.example.com/products/shoe"
		cfg := testConfig(seed)
		cfg.MaxDepth = 0

		fetcher := new(MockFetcher)
		extractor := new(MockExtractor)
		normalizer := new(MockNormalizer)
		links := new(MockLinkFinder)

		fetcher.On("Fetch", mock.Anything, seed).Return(okPage(seed), nil)
		extractor.On("Extract", mock.Anything).Return([]product.RawCandidate{candidate("Runner 2000")})
		normalizer.On("Normalize", mock.Anything, seed).
			Return(product.Product{Name: "Runner 2000", ProductURL: seed}, true)

		engine, err := NewEngine(cfg, fetcher, extractor, normalizer, links, nil)
		require.NoError(t, err)

		result, err := engine.Run(context.Background())
		require.NoError(t, err)

		require.Equal(t, 1, result.PagesVisited)
		require.Equal(t, 0, result.LinksDiscovered)
		require.Len(t, result.Products, 1)
		require.Equal(t, "Runner 2000", result.Products[0].Name)
		links.AssertNotCalled(t, "FindProductLinks", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("follows listing links and counts discoveries", func(t *testing.T) {
		seed := "https://shop.example.com/collections/sale"
		cfg := testConfig(seed)
		cfg.MaxLinks = 5

		found := []string{
			"https://shop.example.com/products/a",
			"https://shop.example.com/products/b",
			"https://shop.example.com/products/c",
			"https://shop.example.com/products/d",
			"https://shop.example.com/products/e",
		}

		fetcher := new(MockFetcher)
		extractor := new(MockExtractor)
		normalizer := new(MockNormalizer)
		links := new(MockLinkFinder)

		fetcher.On("Fetch", mock.Anything, seed).Return(okPage(seed), nil)
		for _, u := range found {
			fetcher.On("Fetch", mock.Anything, u).Return(okPage(u), nil)
		}
		extractor.On("Extract", mock.Anything).Return(nil)
		links.On("FindProductLinks", mock.Anything, seed, 5).Return(found)

		engine, err := NewEngine(cfg, fetcher, extractor, normalizer, links, nil)
		require.NoError(t, err)

		result, err := engine.Run(context.Background())
		require.NoError(t, err)

		require.Equal(t, 6, result.PagesVisited)
		require.Equal(t, 5, result.LinksDiscovered)
		for _, u := range found {
			fetcher.AssertCalled(t, "Fetch", mock.Anything, u)
		}
	})

	t.Run("link budget caps discoveries", func(t *testing.T) {
		seed := "https://shop.example.com/collections/sale"
		cfg := testConfig(seed)
		cfg.MaxLinks = 2

		found := []string{
			"https://shop.example.com/products/a",
			"https://shop.example.com/products/b",
		}

		fetcher := new(MockFetcher)
		extractor := new(MockExtractor)
		links := new(MockLinkFinder)

		fetcher.On("Fetch", mock.Anything, mock.Anything).Return(okPage(seed), nil)
		extractor.On("Extract", mock.Anything).Return(nil)
		links.On("FindProductLinks", mock.Anything, seed, 2).Return(found)

		engine, err := NewEngine(cfg, fetcher, extractor, new(MockNormalizer), links, nil)
		require.NoError(t, err)

		result, err := engine.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, result.LinksDiscovered)
		require.Equal(t, 3, result.PagesVisited)
	})

	t.Run("visits each URL once", func(t *testing.T) {
		seed := "https://shop.example.com/collections/sale"
		cfg := testConfig(seed)

		dup := "https://shop.example.com/products/a"
		fetcher := new(MockFetcher)
		extractor := new(MockExtractor)
		links := new(MockLinkFinder)

		fetcher.On("Fetch", mock.Anything, seed).Return(okPage(seed), nil)
		fetcher.On("Fetch", mock.Anything, dup).Return(okPage(dup), nil)
		extractor.On("Extract", mock.Anything).Return(nil)
		links.On("FindProductLinks", mock.Anything, seed, mock.Anything).Return([]string{dup, dup, seed})

		engine, err := NewEngine(cfg, fetcher, extractor, new(MockNormalizer), links, nil)
		require.NoError(t, err)

		result, err := engine.Run(context.Background())
		require.NoError(t, err)

		require.Equal(t, 2, result.PagesVisited)
		require.Equal(t, 1, result.LinksDiscovered)
		fetcher.AssertNumberOfCalls(t, "Fetch", 2)
	})

	t.Run("deduplicates products by canonical URL", func(t *testing.T) {
		seed := "https://shop.example.com/collections/sale"
		cfg := testConfig(seed)

		child := "https://shop.example.com/products/a"
		fetcher := new(MockFetcher)
		extractor := new(MockExtractor)
		normalizer := new(MockNormalizer)
		links := new(MockLinkFinder)

		fetcher.On("Fetch", mock.Anything, seed).Return(okPage(seed), nil)
		fetcher.On("Fetch", mock.Anything, child).Return(okPage(child), nil)
		extractor.On("Extract", mock.Anything).Return([]product.RawCandidate{candidate("Runner 2000")})
		// Both pages normalize to the same product URL.
		normalizer.On("Normalize", mock.Anything, mock.Anything).
			Return(product.Product{Name: "Runner 2000", ProductURL: child}, true)
		links.On("FindProductLinks", mock.Anything, seed, mock.Anything).Return([]string{child})

		engine, err := NewEngine(cfg, fetcher, extractor, normalizer, links, nil)
		require.NoError(t, err)

		result, err := engine.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, result.Products, 1)
	})

	t.Run("seed fetch failure fails the run", func(t *testing.T) {
		seed := "https://shop.example.com/collections/sale"
		cfg := testConfig(seed)

		fetcher := new(MockFetcher)
		fetcher.On("Fetch", mock.Anything, seed).
			Return(RawPage{}, &FetchError{URL: seed, Reason: FetchReasonStatus, StatusCode: 404})

		engine, err := NewEngine(cfg, fetcher, new(MockExtractor), new(MockNormalizer), new(MockLinkFinder), nil)
		require.NoError(t, err)

		result, err := engine.Run(context.Background())
		require.Error(t, err)
		require.ErrorContains(t, err, "seed fetch failed")
		require.Empty(t, result.Products)
		require.Zero(t, result.PagesVisited)
	})

	t.Run("child fetch failure abandons only that page", func(t *testing.T) {
		seed := "https://shop.example.com/collections/sale"
		cfg := testConfig(seed)

		good := "https://shop.example.com/products/a"
		bad := "https://shop.example.com/products/b"
		fetcher := new(MockFetcher)
		extractor := new(MockExtractor)
		normalizer := new(MockNormalizer)
		links := new(MockLinkFinder)

		fetcher.On("Fetch", mock.Anything, seed).Return(okPage(seed), nil)
		fetcher.On("Fetch", mock.Anything, bad).
			Return(RawPage{}, &FetchError{URL: bad, Reason: FetchReasonTimeout})
		fetcher.On("Fetch", mock.Anything, good).Return(okPage(good), nil)
		extractor.On("Extract", mock.Anything).Return(nil).Once()
		extractor.On("Extract", mock.Anything).Return([]product.RawCandidate{candidate("Survivor")})
		normalizer.On("Normalize", mock.Anything, good).
			Return(product.Product{Name: "Survivor", ProductURL: good}, true)
		links.On("FindProductLinks", mock.Anything, seed, mock.Anything).Return([]string{bad, good})

		engine, err := NewEngine(cfg, fetcher, extractor, normalizer, links, nil)
		require.NoError(t, err)

		result, err := engine.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, 3, result.PagesVisited)
		require.Len(t, result.Products, 1)
		require.Equal(t, "Survivor", result.Products[0].Name)
	})

	t.Run("page budget stops the crawl", func(t *testing.T) {
		seed := "https://shop.example.com/collections/sale"
		cfg := testConfig(seed)
		cfg.MaxPages = 2

		found := []string{
			"https://shop.example.com/products/a",
			"https://shop.example.com/products/b",
			"https://shop.example.com/products/c",
		}

		fetcher := new(MockFetcher)
		extractor := new(MockExtractor)
		links := new(MockLinkFinder)

		fetcher.On("Fetch", mock.Anything, mock.Anything).Return(okPage(seed), nil)
		extractor.On("Extract", mock.Anything).Return(nil)
		links.On("FindProductLinks", mock.Anything, mock.Anything, mock.Anything).Return(found)

		engine, err := NewEngine(cfg, fetcher, extractor, new(MockNormalizer), links, nil)
		require.NoError(t, err)

		result, err := engine.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, result.PagesVisited)
	})

	t.Run("canceled context", func(t *testing.T) {
		cfg := testConfig("https://shop.example.com/collections/sale")
		engine, err := NewEngine(cfg, new(MockFetcher), new(MockExtractor), new(MockNormalizer), new(MockLinkFinder), nil)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = engine.Run(ctx)
		require.Error(t, err)
	})

	t.Run("non-listing pages contribute no links", func(t *testing.T) {
		seed := "https://shop.example.com/products/shoe"
		cfg := testConfig(seed)

		fetcher := new(MockFetcher)
		extractor := new(MockExtractor)
		links := new(MockLinkFinder)

		fetcher.On("Fetch", mock.Anything, seed).Return(okPage(seed), nil)
		extractor.On("Extract", mock.Anything).Return(nil)

		engine, err := NewEngine(cfg, fetcher, extractor, new(MockNormalizer), links, nil)
		require.NoError(t, err)

		result, err := engine.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, 0, result.LinksDiscovered)
		links.AssertNotCalled(t, "FindProductLinks", mock.Anything, mock.Anything, mock.Anything)
	})
}
