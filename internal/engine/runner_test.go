package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadstack/cadhoard/internal/classify"
	"github.com/cadstack/cadhoard/internal/common"
	"github.com/cadstack/cadhoard/internal/dedup"
	"github.com/cadstack/cadhoard/internal/model"
)

type runnerFixture struct {
	runner     *Runner
	source     *mockSource
	resolver   *mockResolver
	store      *mockStore
	index      *dedup.Index
	outputDir  string
	stagingDir string
}

func newRunnerFixture(t *testing.T, pages [][]model.Release, excludedTags ...string) *runnerFixture {
	t.Helper()

	outputDir := t.TempDir()
	stagingDir := t.TempDir()

	store := &mockStore{}
	resolver := &mockResolver{}
	source := &mockSource{pages: pages}
	index := dedup.New(outputDir, store.LoadExisting)

	classifier, err := classify.New(classify.DefaultRules())
	require.NoError(t, err)

	// The resolver stages a distinct file per locator by default.
	resolver.resolveFn = func(_ context.Context, locator string) (string, error) {
		r := model.Release{Locator: locator}
		path := filepath.Join(stagingDir, SanitizeFileName(r.FileNameHint())+".stl")
		if err := os.WriteFile(path, make([]byte, 500), 0o644); err != nil {
			return "", err
		}
		return path, nil
	}

	coordinator := NewCoordinator(resolver, store, index, classifier, CoordinatorConfig{
		OutputDir:    outputDir,
		ExcludedTags: excludedTags,
		RetryOpts:    fastRetryOpts(),
	})

	runner := NewRunner(source, resolver, store, index, coordinator, RunnerConfig{
		OutputDir: outputDir,
		MaxPages:  len(pages) + 1,
	})

	return &runnerFixture{
		runner:     runner,
		source:     source,
		resolver:   resolver,
		store:      store,
		index:      index,
		outputDir:  outputDir,
		stagingDir: stagingDir,
	}
}

func releaseN(n int, tags ...string) model.Release {
	if len(tags) == 0 {
		tags = []string{"AR-15"}
	}
	return model.Release{
		ID:      fmt.Sprintf("id-%d", n),
		Name:    fmt.Sprintf("item_%d", n),
		Tags:    tags,
		Locator: fmt.Sprintf("lbry://item_%d#%d", n, n),
	}
}

func TestRunProcessesAllPages(t *testing.T) {
	pages := [][]model.Release{
		{releaseN(1), releaseN(2)},
		{releaseN(3)},
	}
	f := newRunnerFixture(t, pages)

	stats, err := f.runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Fetched)
	assert.Equal(t, 3, stats.Total())
	assert.Len(t, f.store.records, 3)
	assert.Equal(t, []int{1, 2}, f.source.fetched, "a short page ends the walk")
	assert.GreaterOrEqual(t, f.store.flushCalls, 1, "the final flush always runs")
}

func TestRunSecondPassFetchesNothing(t *testing.T) {
	pages := [][]model.Release{{releaseN(1), releaseN(2)}}
	f := newRunnerFixture(t, pages)

	ctx := context.Background()
	stats, err := f.runner.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Fetched)

	stats, err = f.runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Fetched)
	assert.Equal(t, 2, stats.Skipped)
	assert.Len(t, f.store.records, 2, "a rerun of the same listing adds nothing")
}

func TestRunCountsOutcomesSeparately(t *testing.T) {
	noLocator := releaseN(3)
	noLocator.Locator = ""

	pages := [][]model.Release{{
		releaseN(1),
		releaseN(2, "AR-15", "Meme"),
		noLocator,
	}}
	f := newRunnerFixture(t, pages, "Meme")

	stats, err := f.runner.Run(context.Background())
	require.NoError(t, err, "per-item failures never fail the run")

	assert.Equal(t, 1, stats.Fetched)
	assert.Equal(t, 1, stats.Filtered)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, stats.Skipped)
}

func TestRunStartupFailsWhenDaemonDown(t *testing.T) {
	f := newRunnerFixture(t, [][]model.Release{{releaseN(1)}})
	f.resolver.statusErr = common.ErrDaemonUnreachable

	_, err := f.runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStartup))
	assert.Empty(t, f.source.fetched, "no listing fetch before startup checks pass")
}

func TestRunSurvivesListingFailureMidWalk(t *testing.T) {
	pages := [][]model.Release{
		{releaseN(1)},
		{releaseN(2)},
	}
	f := newRunnerFixture(t, pages)
	f.source.fetchErr = map[int]error{2: errors.New("listing down")}

	stats, err := f.runner.Run(context.Background())
	require.NoError(t, err, "a failing listing ends the walk, not the run")
	assert.Equal(t, 1, stats.Fetched, "page 1 results are kept")
	assert.Len(t, f.store.records, 1)
}

func TestRunPersistenceFailureIsFatal(t *testing.T) {
	f := newRunnerFixture(t, [][]model.Release{{releaseN(1)}})
	f.store.flushErr = fmt.Errorf("%w: disk full", common.ErrPersistence)

	_, err := f.runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrPersistence))
}

func TestRunHonorsCancellation(t *testing.T) {
	pages := [][]model.Release{{releaseN(1), releaseN(2)}}
	f := newRunnerFixture(t, pages)

	ctx, cancel := context.WithCancel(context.Background())

	// Cancel once the first item has resolved.
	f.resolver.resolveFn = func(_ context.Context, locator string) (string, error) {
		cancel()
		r := model.Release{Locator: locator}
		path := filepath.Join(f.stagingDir, SanitizeFileName(r.FileNameHint())+".stl")
		if err := os.WriteFile(path, make([]byte, 500), 0o644); err != nil {
			return "", err
		}
		return path, nil
	}

	stats, err := f.runner.Run(ctx)
	require.NoError(t, err, "cancellation is a clean stop")
	assert.Equal(t, 1, stats.Fetched, "the in-flight item completes, the rest do not start")
	assert.Len(t, f.store.records, 1, "buffered records are flushed on the way out")
}

func TestRunUsesCatalogForDedup(t *testing.T) {
	f := newRunnerFixture(t, [][]model.Release{{releaseN(1)}})
	f.store.records = []model.CatalogRecord{{
		FileName: "item_1.stl",
		Location: filepath.Join(f.outputDir, "somewhere", "item_1.stl"),
		Locator:  "lbry://item_1#1",
	}}

	stats, err := f.runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, f.resolver.calls())
}
