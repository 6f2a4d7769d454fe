package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/cadstack/cadhoard/internal/common"
	"github.com/cadstack/cadhoard/internal/config"
	"github.com/cadstack/cadhoard/internal/dedup"
	"github.com/cadstack/cadhoard/internal/model"
	"github.com/cadstack/cadhoard/internal/service"
)

// RunnerConfig holds the page-walk settings.
type RunnerConfig struct {
	OutputDir string
	// MaxPages bounds the listing walk; the walk also stops at the
	// first short page.
	MaxPages int
	// Delay is the politeness pause between items.
	Delay time.Duration
	// ShowProgress enables the terminal progress bar.
	ShowProgress bool
}

// Runner walks the paginated listing and feeds each release through
// the coordinator, flushing the catalog on its batch cadence.
type Runner struct {
	source      service.ListingSource
	resolver    service.Resolver
	store       service.CatalogStore
	index       *dedup.Index
	coordinator *Coordinator
	cfg         RunnerConfig
}

// NewRunner wires a runner from its collaborators.
func NewRunner(source service.ListingSource, resolver service.Resolver, store service.CatalogStore, index *dedup.Index, coordinator *Coordinator, cfg RunnerConfig) *Runner {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	return &Runner{
		source:      source,
		resolver:    resolver,
		store:       store,
		index:       index,
		coordinator: coordinator,
		cfg:         cfg,
	}
}

// Run executes a full fetch run. Per-item failures are counted, logged
// and survived; only startup failures and unrecoverable persistence
// failures return an error.
func (r *Runner) Run(ctx context.Context) (service.RunStats, error) {
	var stats service.RunStats
	start := time.Now()

	// Startup checks, before any listing fetch begins.
	if err := r.resolver.Status(ctx); err != nil {
		return stats, fmt.Errorf("%w: resolver daemon: %v", common.ErrStartup, err)
	}
	if err := config.EnsureWritableDir(r.cfg.OutputDir); err != nil {
		return stats, fmt.Errorf("%w: %v", common.ErrStartup, err)
	}

	// Prime the dedup index from the persisted catalog and the output
	// tree. A failed load is a performance cost, never fatal.
	records, err := r.store.LoadExisting(ctx)
	if err != nil {
		slog.Warn("Could not load existing catalog; dedup will rely on filesystem probes", "error", err)
	} else {
		r.index.LoadRecords(records)
		slog.Info("Loaded existing catalog", "records", len(records))
	}
	if err := r.index.ScanOutputTree(); err != nil {
		slog.Warn("Could not scan output tree", "error", err)
	}

	var bar *progressbar.ProgressBar
	if r.cfg.ShowProgress {
		bar = progressbar.NewOptions64(0,
			progressbar.OptionSetDescription("fetching"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionClearOnFinish(),
		)
	}

	defer func() { stats.Duration = time.Since(start) }()

walk:
	for page := 1; page <= r.cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			break
		}

		releases, hasMore, err := r.source.FetchPage(ctx, page)
		if err != nil {
			// The listing is an unstable collaborator; end the walk
			// rather than the run.
			slog.Error("Listing fetch failed, stopping walk", "page", page, "error", err)
			break
		}
		if len(releases) == 0 {
			break
		}

		slog.Info("Fetched listing page", "page", page, "releases", len(releases))
		if bar != nil {
			bar.ChangeMax64(bar.GetMax64() + int64(len(releases)))
		}

		for i := range releases {
			// Honor interrupts between items, never mid-move.
			if err := ctx.Err(); err != nil {
				break walk
			}

			outcome := r.coordinator.Process(ctx, &releases[i])
			r.tally(&stats, &releases[i], outcome)

			if err := r.store.FlushIfDue(ctx); err != nil {
				// Dropping buffered records invites mass re-fetching
				// next run; fail the run loudly instead.
				return stats, err
			}

			if bar != nil {
				_ = bar.Add(1)
			}

			if r.cfg.Delay > 0 && i < len(releases)-1 {
				select {
				case <-ctx.Done():
					break walk
				case <-time.After(r.cfg.Delay):
				}
			}
		}

		if !hasMore {
			break
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if err := r.store.Flush(ctx); err != nil {
		return stats, err
	}

	slog.Info("Run complete",
		"fetched", stats.Fetched,
		"skipped", stats.Skipped,
		"filtered", stats.Filtered,
		"failed", stats.Failed,
		"duration", time.Since(start).Round(time.Second))

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return stats, err
	}
	return stats, nil
}

func (r *Runner) tally(stats *service.RunStats, release *model.Release, outcome model.Outcome) {
	switch outcome.Status {
	case model.StatusFetched:
		stats.Fetched++
	case model.StatusSkipped:
		if strings.HasPrefix(outcome.Reason, skipReasonFiltered) {
			stats.Filtered++
		} else {
			stats.Skipped++
		}
		slog.Debug("Skipped release", "id", release.ID, "name", release.Name, "reason", outcome.Reason)
	case model.StatusFailed:
		stats.Failed++
		common.LogError(outcome.Err, "Failed to process release", common.Fields{
			"id":   release.ID,
			"name": release.Name,
		})
	}
}
