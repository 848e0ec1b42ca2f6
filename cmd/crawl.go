package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anshultibby/moleAI-sub001/internal/crawler"
	"github.com/anshultibby/moleAI-sub001/internal/runner"
)

func newCrawlCmd() *cobra.Command {
	var (
		maxDepth    int
		maxLinks    int
		maxPages    int
		concurrency int
		timeoutSec  int
	)

	cmd := &cobra.Command{
		Use:   "crawl <seed-url>",
		Short: "Run one crawl against a seed listing URL and print the products as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := crawler.Config{
				SeedURL:     args[0],
				MaxDepth:    maxDepth,
				MaxLinks:    maxLinks,
				MaxPages:    maxPages,
				Concurrency: concurrency,
				Timeout:     time.Duration(timeoutSec) * time.Second,
				UserAgent:   rt.cfg.Crawler.UserAgent,
			}

			result, err := runner.New(rt.logger).Crawl(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("run crawl: %w", err)
			}

			rt.logger.Info("crawl complete",
				zap.Int("products", len(result.Products)),
				zap.Int("pages_visited", result.PagesVisited),
				zap.Int("links_discovered", result.LinksDiscovered),
			)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", 1, "maximum crawl depth from the seed")
	cmd.Flags().IntVar(&maxLinks, "max-links", 30, "budget for newly discovered links")
	cmd.Flags().IntVar(&maxPages, "max-pages", 20, "maximum pages fetched in one run")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "parallel page fetches")
	cmd.Flags().IntVar(&timeoutSec, "timeout", 15, "per-fetch timeout in seconds")
	return cmd
}
