package postgres_test

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshultibby/moleAI-sub001/internal/product"
	"github.com/anshultibby/moleAI-sub001/internal/storage"
	"github.com/anshultibby/moleAI-sub001/internal/storage/postgres"
)

func newMockStore(t *testing.T) (*postgres.ResultStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	store, err := postgres.NewResultStoreWithPool(mock, "crawl_results")
	require.NoError(t, err)
	return store, mock
}

func TestNewResultStoreWithPool(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	t.Run("rejects nil pool", func(t *testing.T) {
		_, err := postgres.NewResultStoreWithPool(nil, "crawl_results")
		require.Error(t, err)
	})

	t.Run("rejects invalid table name", func(t *testing.T) {
		_, err := postgres.NewResultStoreWithPool(mock, "runs; DROP TABLE runs")
		require.Error(t, err)
	})

	t.Run("defaults table name", func(t *testing.T) {
		store, err := postgres.NewResultStoreWithPool(mock, "")
		require.NoError(t, err)
		require.NotNil(t, store)
	})
}

func TestCreateRun(t *testing.T) {
	store, mock := newMockStore(t)
	defer mock.Close()

	run := storage.CrawlRun{
		ID:        "run-1",
		SeedURL:   "https://shop.example.com/collections/sale",
		Status:    storage.RunStatusQueued,
		Submitted: time.Now().UTC(),
	}

	query := `INSERT INTO crawl_results (id, seed_url, status, submitted_at) VALUES ($1, $2, $3, $4)`
	mock.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs(run.ID, run.SeedURL, string(run.Status), run.Submitted).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.CreateRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRun(t *testing.T) {
	query := regexp.QuoteMeta(
		`UPDATE crawl_results SET status = $2, error_text = $3, result = $4, finished_at = $5 WHERE id = $1`,
	)

	t.Run("stores serialized result on success", func(t *testing.T) {
		store, mock := newMockStore(t)
		defer mock.Close()

		result := &product.CrawlResult{
			Products:     []product.Product{{Name: "Runner 2000", ProductURL: "https://shop.example.com/products/runner"}},
			PagesVisited: 3,
		}
		payload, err := json.Marshal(result)
		require.NoError(t, err)

		mock.ExpectExec(query).
			WithArgs("run-1", string(storage.RunStatusSucceeded), "", payload, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, store.UpdateRun(context.Background(), "run-1", storage.RunStatusSucceeded, "", result))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown run", func(t *testing.T) {
		store, mock := newMockStore(t)
		defer mock.Close()

		mock.ExpectExec(query).
			WithArgs("missing", string(storage.RunStatusFailed), "seed fetch failed", []byte(nil), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := store.UpdateRun(context.Background(), "missing", storage.RunStatusFailed, "seed fetch failed", nil)
		require.ErrorIs(t, err, storage.ErrRunNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetRun(t *testing.T) {
	query := regexp.QuoteMeta(
		`SELECT id, seed_url, status, submitted_at, finished_at, COALESCE(error_text, ''), result FROM crawl_results WHERE id = $1`,
	)
	columns := []string{"id", "seed_url", "status", "submitted_at", "finished_at", "error_text", "result"}

	t.Run("round-trips a finished run", func(t *testing.T) {
		store, mock := newMockStore(t)
		defer mock.Close()

		submitted := time.Now().UTC().Truncate(time.Second)
		finished := submitted.Add(time.Minute)
		payload, err := json.Marshal(product.CrawlResult{PagesVisited: 5, LinksDiscovered: 4})
		require.NoError(t, err)

		mock.ExpectQuery(query).
			WithArgs("run-1").
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow("run-1", "https://shop.example.com", "succeeded", submitted, &finished, "", payload))

		run, err := store.GetRun(context.Background(), "run-1")
		require.NoError(t, err)
		assert.Equal(t, storage.RunStatusSucceeded, run.Status)
		require.NotNil(t, run.Result)
		assert.Equal(t, 5, run.Result.PagesVisited)
		require.NotNil(t, run.Finished)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pending run has no result", func(t *testing.T) {
		store, mock := newMockStore(t)
		defer mock.Close()

		mock.ExpectQuery(query).
			WithArgs("run-2").
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow("run-2", "https://shop.example.com", "running", time.Now().UTC(), (*time.Time)(nil), "", []byte(nil)))

		run, err := store.GetRun(context.Background(), "run-2")
		require.NoError(t, err)
		assert.Nil(t, run.Result)
		assert.Nil(t, run.Finished)
	})

	t.Run("unknown run", func(t *testing.T) {
		store, mock := newMockStore(t)
		defer mock.Close()

		mock.ExpectQuery(query).
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows(columns))

		_, err := store.GetRun(context.Background(), "missing")
		require.ErrorIs(t, err, storage.ErrRunNotFound)
	})
}
