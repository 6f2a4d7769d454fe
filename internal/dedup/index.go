// Package dedup answers "have I already materialized this item?" in
// O(1), backed by three independent layers: an in-memory view of the
// catalog, a lazy catalog re-scan, and a filesystem probe of the output
// tree. Any layer reporting a match makes the item a duplicate, biasing
// toward skipping over re-fetching.
package dedup

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cadstack/cadhoard/internal/model"
)

// LoaderFunc reloads catalog records when the in-memory view was never
// initialized. Usually CatalogStore.LoadExisting.
type LoaderFunc func(ctx context.Context) ([]model.CatalogRecord, error)

// ReservedName reports whether a file name is engine-owned (catalog
// database, exports, generated docs) rather than a catalogued artifact.
func ReservedName(name string) bool {
	_, ok := reservedNames[name]
	return ok || strings.HasPrefix(name, ".")
}

// reservedNames are engine-owned files inside the output tree that the
// scanner must never treat as catalogued artifacts.
var reservedNames = map[string]struct{}{
	"catalog.db":      {},
	"catalog.db-wal":  {},
	"catalog.db-shm":  {},
	"catalog.db.lock": {},
	"catalog.csv":     {},
	"QUICK_FIND.txt":  {},
	"README.md":       {},
}

type fileStat struct {
	path string
	size int64
}

// Index is the deduplication index. Safe for concurrent use; the
// check-then-register sequence must still be kept per-item by callers.
type Index struct {
	mu sync.Mutex

	outputDir string
	loader    LoaderFunc

	loaded  bool
	scanned bool

	locators map[string]struct{}
	paths    map[string]struct{}
	files    map[string][]fileStat
}

// New creates an index over the given output directory. The loader is
// consulted lazily the first time a lookup happens before LoadRecords
// was called.
func New(outputDir string, loader LoaderFunc) *Index {
	return &Index{
		outputDir: outputDir,
		loader:    loader,
		locators:  make(map[string]struct{}),
		paths:     make(map[string]struct{}),
		files:     make(map[string][]fileStat),
	}
}

// LoadRecords populates the in-memory layer from catalog records.
func (i *Index) LoadRecords(records []model.CatalogRecord) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.loadRecordsLocked(records)
}

func (i *Index) loadRecordsLocked(records []model.CatalogRecord) {
	for idx := range records {
		r := &records[idx]
		if r.Locator != "" {
			i.locators[r.Locator] = struct{}{}
		}
		if r.Location != "" {
			i.paths[r.Location] = struct{}{}
		}
	}
	i.loaded = true
}

// ScanOutputTree walks the output directory and caches every file it
// finds, so files that exist on disk without a catalog row (manual
// moves, a crash between move and commit) are still recognized.
func (i *Index) ScanOutputTree() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.scanLocked()
}

func (i *Index) scanLocked() error {
	count := 0
	err := filepath.WalkDir(i.outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtrees cost accuracy, not correctness
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != i.outputDir {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if ReservedName(name) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		i.files[name] = append(i.files[name], fileStat{path: path, size: info.Size()})
		count++
		return nil
	})
	if err != nil {
		return err
	}
	i.scanned = true
	slog.Debug("Scanned output tree", "dir", i.outputDir, "files", count)
	return nil
}

// ensureLoaded is the defensive second layer: if the in-memory view
// was never initialized, rebuild it from the persisted catalog.
func (i *Index) ensureLoaded(ctx context.Context) {
	if i.loaded || i.loader == nil {
		return
	}
	records, err := i.loader(ctx)
	if err != nil {
		slog.Warn("Failed to reload catalog for dedup index; lookups fall back to filesystem probes", "error", err)
		i.loaded = true // do not hammer a broken store on every lookup
		return
	}
	i.loadRecordsLocked(records)
}

// KnownLocator reports whether a record already exists for the locator.
func (i *Index) KnownLocator(ctx context.Context, locator string) bool {
	if locator == "" {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ensureLoaded(ctx)
	_, ok := i.locators[locator]
	return ok
}

// KnownPath reports whether the target path is already materialized,
// first against the in-memory view and then by probing the filesystem.
// The probe guards against an index stale relative to manual file moves.
func (i *Index) KnownPath(ctx context.Context, path string) bool {
	if path == "" {
		return false
	}
	i.mu.Lock()
	i.ensureLoaded(ctx)
	_, ok := i.paths[path]
	i.mu.Unlock()
	if ok {
		return true
	}

	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

// ExistingFile looks a file name up in the scanned output tree,
// tolerating renames that only change separators or case. With a size
// hint, a candidate must match within 1%.
func (i *Index) ExistingFile(fileName string, sizeHint int64) (string, bool) {
	if fileName == "" {
		return "", false
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.scanned {
		if err := i.scanLocked(); err != nil {
			slog.Warn("Output tree scan failed", "error", err)
			return "", false
		}
	}

	if path, ok := pickMatch(i.files[fileName], sizeHint); ok {
		return path, true
	}

	want := normalizeName(fileName)
	for name, stats := range i.files {
		if normalizeName(name) != want {
			continue
		}
		if path, ok := pickMatch(stats, sizeHint); ok {
			return path, true
		}
	}
	return "", false
}

// Register records a committed download. Must be called only after a
// verified write, never speculatively.
func (i *Index) Register(locator, path string, size int64) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if locator != "" {
		i.locators[locator] = struct{}{}
	}
	if path != "" {
		i.paths[path] = struct{}{}
		name := filepath.Base(path)
		i.files[name] = append(i.files[name], fileStat{path: path, size: size})
	}
}

// Rebuild discards the in-memory view and reconstructs it from the
// persisted catalog and the output tree. A lost or corrupted index is
// only ever a performance cost.
func (i *Index) Rebuild(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.locators = make(map[string]struct{})
	i.paths = make(map[string]struct{})
	i.files = make(map[string][]fileStat)
	i.loaded = false
	i.scanned = false

	i.ensureLoaded(ctx)
	return i.scanLocked()
}

func pickMatch(stats []fileStat, sizeHint int64) (string, bool) {
	if len(stats) == 0 {
		return "", false
	}
	// Prefer a size-confirmed candidate, but a name match alone still
	// counts: skipping beats a redundant download.
	if sizeHint > 0 {
		for _, st := range stats {
			diff := st.size - sizeHint
			if diff < 0 {
				diff = -diff
			}
			if float64(diff) < float64(sizeHint)*0.01 {
				return st.path, true
			}
		}
	}
	return stats[0].path, true
}

// normalizeName strips the extension and folds separators so lightly
// renamed copies of the same artifact still match.
func normalizeName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return name
}
