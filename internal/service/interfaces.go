// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/cadstack/cadhoard/internal/model"
)

// ListingSource yields releases page by page from the remote content
// index. The source is untrusted: implementations tolerate missing
// fields and fill documented defaults.
type ListingSource interface {
	// FetchPage returns the releases on the given 1-based page and
	// whether more pages may follow.
	FetchPage(ctx context.Context, page int) ([]model.Release, bool, error)
}

// Resolver reaches the external daemon that turns a content locator
// into bytes on local disk.
type Resolver interface {
	// Status reports whether the daemon is reachable at all. Returns
	// an error wrapping common.ErrDaemonUnreachable otherwise.
	Status(ctx context.Context) error
	// Resolve fetches the file for the locator and returns the
	// daemon's local staging path. Errors distinguish an unreachable
	// daemon from a stalled resolution.
	Resolve(ctx context.Context, locator string) (string, error)
}

// CatalogStore is the durable, append-safe record of every
// materialized file.
type CatalogStore interface {
	// Append buffers a record for the next flush. Records with a
	// locator already present in the catalog replace the existing row
	// rather than duplicating it.
	Append(ctx context.Context, record *model.CatalogRecord) error
	// FlushIfDue writes the buffer when it has reached the configured
	// batch size.
	FlushIfDue(ctx context.Context) error
	// Flush writes any buffered records unconditionally.
	Flush(ctx context.Context) error
	// LoadExisting reloads every readable record, skipping and logging
	// malformed rows.
	LoadExisting(ctx context.Context) ([]model.CatalogRecord, error)
	// UpdateLocation rewrites the stored path for a locator after a
	// file is found moved within the output directory.
	UpdateLocation(ctx context.Context, locator, location string) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// RunStats shows the results of a fetch run.
type RunStats struct {
	Fetched  int
	Skipped  int
	Filtered int
	Failed   int
	Duration time.Duration
}

// Total returns the number of releases considered.
func (s RunStats) Total() int {
	return s.Fetched + s.Skipped + s.Filtered + s.Failed
}
