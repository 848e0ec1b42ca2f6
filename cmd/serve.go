package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anshultibby/moleAI-sub001/internal/api"
	"github.com/anshultibby/moleAI-sub001/internal/clock/system"
	"github.com/anshultibby/moleAI-sub001/internal/id/uuid"
	"github.com/anshultibby/moleAI-sub001/internal/runner"
	"github.com/anshultibby/moleAI-sub001/internal/storage"
	memorystore "github.com/anshultibby/moleAI-sub001/internal/storage/memory"
	pgstore "github.com/anshultibby/moleAI-sub001/internal/storage/postgres"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API that accepts crawl requests and serves results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, cleanup, err := buildResultStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			server := api.NewServer(
				runner.New(rt.logger),
				store,
				uuid.New(),
				system.New(),
				rt.cfg,
				rt.logger,
			)

			httpServer := &http.Server{
				Addr:              fmt.Sprintf(":%d", rt.cfg.Server.Port),
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				rt.logger.Info("api listening", zap.Int("port", rt.cfg.Server.Port))
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			rt.logger.Info("api stopped")
			return nil
		},
	}
}

func buildResultStore(ctx context.Context) (storage.ResultStore, func(), error) {
	if rt.cfg.DB.DSN == "" {
		return memorystore.NewResultStore(), func() {}, nil
	}
	store, err := pgstore.NewResultStore(ctx, pgstore.Config{
		DSN:      rt.cfg.DB.DSN,
		Table:    rt.cfg.DB.Table,
		MaxConns: rt.cfg.DB.MaxConns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init postgres store: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, store.Close, nil
}
