// Package engine implements the fetch orchestration core: the per-item
// coordinator and the page-walking runner.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/cadstack/cadhoard/internal/classify"
	"github.com/cadstack/cadhoard/internal/common"
	"github.com/cadstack/cadhoard/internal/dedup"
	"github.com/cadstack/cadhoard/internal/model"
	"github.com/cadstack/cadhoard/internal/service"
	"github.com/cadstack/cadhoard/internal/verify"
)

// skipReasonFiltered prefixes the outcome reason for tag-filtered
// releases so the runner can count them separately from dedup skips.
const skipReasonFiltered = "tag-filtered"

var unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFileName replaces characters that are unsafe in file names.
func SanitizeFileName(name string) string {
	return unsafeFileChars.ReplaceAllString(name, "_")
}

// Coordinator drives a single release through exclusion, dedup,
// classification, resolution, verification, and commit.
type Coordinator struct {
	resolver   service.Resolver
	store      service.CatalogStore
	index      *dedup.Index
	classifier *classify.Classifier

	outputDir    string
	excludedTags map[string]struct{}
	retryOpts    service.RetryOptions

	now func() time.Time
}

// CoordinatorConfig holds the per-run knobs for the coordinator.
type CoordinatorConfig struct {
	OutputDir    string
	ExcludedTags []string
	RetryOpts    service.RetryOptions
}

// NewCoordinator wires a coordinator from its collaborators.
func NewCoordinator(resolver service.Resolver, store service.CatalogStore, index *dedup.Index, classifier *classify.Classifier, cfg CoordinatorConfig) *Coordinator {
	excluded := make(map[string]struct{}, len(cfg.ExcludedTags))
	for _, tag := range cfg.ExcludedTags {
		if tag != "" {
			excluded[tag] = struct{}{}
		}
	}

	retryOpts := cfg.RetryOpts
	if retryOpts.MaxAttempts <= 0 {
		retryOpts = service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 5 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		}
	}

	return &Coordinator{
		resolver:     resolver,
		store:        store,
		index:        index,
		classifier:   classifier,
		outputDir:    cfg.OutputDir,
		excludedTags: excluded,
		retryOpts:    retryOpts,
		now:          time.Now,
	}
}

// Process runs a single release through the pipeline. Per-item errors
// and panics are contained here: one bad item never halts the batch.
// Failed releases are not registered with the dedup index and stay
// eligible for retry on a future run.
func (c *Coordinator) Process(ctx context.Context, release *model.Release) (outcome model.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while processing release", "id", release.ID, "panic", r)
			outcome = model.Failed(fmt.Errorf("panic processing %s: %v", release.ID, r))
		}
	}()

	// Exclusion costs nothing and comes before any other work. Skipped
	// items are not memoized: subsequent runs re-evaluate them.
	for _, tag := range release.Tags {
		if _, excluded := c.excludedTags[tag]; excluded {
			return model.Skipped(fmt.Sprintf("%s: %s", skipReasonFiltered, tag))
		}
	}

	if release.Locator == "" {
		return model.Failed(fmt.Errorf("release %s has no locator", release.ID))
	}

	// Dedup before spending any network effort.
	if c.index.KnownLocator(ctx, release.Locator) {
		return model.Skipped("locator already catalogued")
	}

	cls := c.classifier.Classify(release)
	targetDir := filepath.Join(c.outputDir, filepath.Join(cls.Taxonomy...))

	// Filesystem layers: the computed target path, then the scanned
	// output tree. A hit means the bytes are already here (e.g. a crash
	// between move and commit); adopt the file instead of re-fetching.
	if hint := release.FileNameHint(); hint != "" {
		target := filepath.Join(targetDir, SanitizeFileName(hint))
		if c.index.KnownPath(ctx, target) {
			return c.adoptExisting(ctx, release, cls, target)
		}
		if existing, ok := c.index.ExistingFile(SanitizeFileName(hint), release.SizeHint); ok {
			return c.adoptExisting(ctx, release, cls, existing)
		}
	}

	staging, err := c.resolve(ctx, release.Locator)
	if err != nil {
		return model.Failed(fmt.Errorf("resolve %s: %w", release.Locator, err))
	}

	if err := verify.Artifact(staging, release.SizeHint); err != nil {
		// A partial artifact must not survive to confuse the next run.
		if removeErr := os.Remove(staging); removeErr != nil && !os.IsNotExist(removeErr) {
			slog.Warn("Failed to discard unverified artifact", "path", staging, "error", removeErr)
		}
		return model.Failed(err)
	}

	fileName := SanitizeFileName(filepath.Base(staging))
	target := filepath.Join(targetDir, fileName)

	if err := os.MkdirAll(targetDir, 0o750); err != nil {
		return model.Failed(fmt.Errorf("failed to create %s: %w", targetDir, err))
	}
	if err := moveFile(staging, target); err != nil {
		return model.Failed(err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return model.Failed(fmt.Errorf("moved file missing at %s: %w", target, err))
	}

	record := model.NewCatalogRecord(release, cls, fileName, target, info.Size(), c.now())
	if err := c.commit(ctx, record); err != nil {
		return model.Failed(err)
	}

	slog.Info("Materialized release",
		"id", release.ID,
		"name", release.Name,
		"category", record.Category,
		"size_bytes", record.SizeBytes)

	return model.Fetched(record)
}

// adoptExisting re-synthesizes a catalog record for a file already on
// disk, closing the crash window between a file move and its commit.
func (c *Coordinator) adoptExisting(ctx context.Context, release *model.Release, cls model.Classification, path string) model.Outcome {
	info, err := os.Stat(path)
	if err != nil {
		return model.Failed(fmt.Errorf("existing file vanished at %s: %w", path, err))
	}

	record := model.NewCatalogRecord(release, cls, filepath.Base(path), path, info.Size(), c.now())
	if err := c.commit(ctx, record); err != nil {
		return model.Failed(err)
	}

	slog.Info("Adopted existing file", "id", release.ID, "path", path)
	return model.Fetched(record)
}

// commit appends the record and only then registers it with the dedup
// index. Register is never called speculatively.
func (c *Coordinator) commit(ctx context.Context, record *model.CatalogRecord) error {
	if err := c.store.Append(ctx, record); err != nil {
		return fmt.Errorf("failed to append catalog record: %w", err)
	}
	c.index.Register(record.Locator, record.Location, record.SizeBytes)
	return nil
}

// resolve calls the resolver under the bounded retry policy. Transient
// daemon conditions retry with backoff; anything else fails immediately.
func (c *Coordinator) resolve(ctx context.Context, locator string) (string, error) {
	var staging string
	err := common.WithRetry(ctx, func() error {
		path, rerr := c.resolver.Resolve(ctx, locator)
		if rerr != nil {
			return &common.RetryableError{Err: rerr, Retryable: common.IsRetryable(rerr)}
		}
		staging = path
		return nil
	}, c.retryOpts)
	if err != nil {
		return "", err
	}
	return staging, nil
}

// moveFile renames staging into place, falling back to copy+remove when
// the staging area is on a different filesystem. An existing target is
// replaced.
func moveFile(staging, target string) error {
	if staging == target {
		return nil
	}

	if err := os.Rename(staging, target); err == nil {
		return nil
	}

	src, err := os.Open(staging)
	if err != nil {
		return fmt.Errorf("failed to open staging file: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(target)
		return fmt.Errorf("failed to copy into %s: %w", target, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", target, err)
	}

	if err := os.Remove(staging); err != nil {
		slog.Warn("Failed to remove staging file after copy", "path", staging, "error", err)
	}
	return nil
}
