// Package storage defines persistence for crawl runs and their results.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/anshultibby/moleAI-sub001/internal/product"
)

// ErrRunNotFound is returned when a run ID is unknown to the store.
var ErrRunNotFound = errors.New("crawl run not found")

// RunStatus is the lifecycle state of a crawl run.
type RunStatus string

// Run status values.
const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// CrawlRun is the persisted record for one crawl invocation.
type CrawlRun struct {
	ID        string               `json:"id"`
	SeedURL   string               `json:"seed_url"`
	Status    RunStatus            `json:"status"`
	Submitted time.Time            `json:"submitted_at"`
	Finished  *time.Time           `json:"finished_at,omitempty"`
	ErrorText string               `json:"error_text,omitempty"`
	Result    *product.CrawlResult `json:"result,omitempty"`
}

// ResultStore persists crawl runs. The core engine never touches it; the
// service layer records runs so API clients can poll for results.
type ResultStore interface {
	CreateRun(ctx context.Context, run CrawlRun) error
	UpdateRun(ctx context.Context, id string, status RunStatus, errText string, result *product.CrawlResult) error
	GetRun(ctx context.Context, id string) (CrawlRun, error)
}
