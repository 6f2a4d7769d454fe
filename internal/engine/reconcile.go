package engine

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cadstack/cadhoard/internal/dedup"
	"github.com/cadstack/cadhoard/internal/model"
	"github.com/cadstack/cadhoard/internal/service"
)

// ReconcileStats summarizes a catalog/filesystem reconciliation pass.
type ReconcileStats struct {
	// Relocated rows whose file was found moved within the output tree.
	Relocated int
	// Missing rows whose file could not be found at all.
	Missing int
	// Outside rows pointing at files beyond the output directory.
	Outside int
	// Adopted files on disk that had no catalog row and got a minimal
	// record re-synthesized (the crash window between move and commit).
	Adopted int
}

// Reconcile brings the catalog and the output tree back into
// agreement: moved files get their rows repointed, and orphaned files
// get minimal records so the dedup index recognizes them next run.
func Reconcile(ctx context.Context, store service.CatalogStore, outputDir string, now time.Time) (ReconcileStats, error) {
	var stats ReconcileStats

	records, err := store.LoadExisting(ctx)
	if err != nil {
		return stats, err
	}

	type diskFile struct {
		path string
		size int64
	}
	var tree []diskFile
	known := make(map[string]struct{}, len(records))

	walkErr := filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if dedup.ReservedName(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		tree = append(tree, diskFile{path: path, size: info.Size()})
		return nil
	})
	if walkErr != nil {
		return stats, walkErr
	}

	absOutput, err := filepath.Abs(outputDir)
	if err != nil {
		return stats, err
	}

	for i := range records {
		r := &records[i]
		if r.Location == "" {
			continue
		}
		known[r.Location] = struct{}{}

		if abs, absErr := filepath.Abs(r.Location); absErr == nil {
			if rel, relErr := filepath.Rel(absOutput, abs); relErr != nil || strings.HasPrefix(rel, "..") {
				stats.Outside++
				continue
			}
		}

		if exists(r.Location) {
			continue
		}

		// The row's file is gone; look for it elsewhere in the tree,
		// confirming by size within 1% when we have one.
		found := false
		for _, f := range tree {
			if filepath.Base(f.path) != r.FileName {
				continue
			}
			if r.SizeBytes > 0 {
				diff := f.size - r.SizeBytes
				if diff < 0 {
					diff = -diff
				}
				if float64(diff) >= float64(r.SizeBytes)*0.01 {
					continue
				}
			}
			if r.Locator != "" {
				if err := store.UpdateLocation(ctx, r.Locator, f.path); err != nil {
					return stats, err
				}
			}
			known[f.path] = struct{}{}
			stats.Relocated++
			found = true
			break
		}
		if !found {
			stats.Missing++
			slog.Warn("Catalogued file not found in output tree", "file", r.FileName, "location", r.Location)
		}
	}

	// Orphans: bytes on disk with no row. Re-synthesize a minimal
	// record; the locator is unknowable from the file alone, so the
	// row carries only what the filesystem can attest to.
	for _, f := range tree {
		if _, ok := known[f.path]; ok {
			continue
		}
		rel, relErr := filepath.Rel(outputDir, filepath.Dir(f.path))
		category := ""
		if relErr == nil && rel != "." {
			category = filepath.ToSlash(rel)
		}

		record := &model.CatalogRecord{
			DownloadedAt: now,
			FileName:     filepath.Base(f.path),
			Location:     f.path,
			Category:     category,
			SizeBytes:    f.size,
		}
		if err := store.Append(ctx, record); err != nil {
			return stats, err
		}
		stats.Adopted++
		slog.Info("Adopted orphaned file into catalog", "path", f.path)
	}

	if err := store.Flush(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
