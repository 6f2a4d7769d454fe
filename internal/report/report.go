// Package report renders the supporting documentation written into the
// output tree after a run: per-folder READMEs and a top-level quick
// reference.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cadstack/cadhoard/internal/model"
)

// Generate writes a README.md into every catalogued folder and a
// QUICK_FIND.txt at the output root. Documentation failures are
// reported but cost nothing already committed.
func Generate(outputDir string, records []model.CatalogRecord, now time.Time) error {
	byFolder := make(map[string][]model.CatalogRecord)
	for i := range records {
		dir := filepath.Dir(records[i].Location)
		if dir == "." || dir == outputDir {
			continue
		}
		byFolder[dir] = append(byFolder[dir], records[i])
	}

	for folder, entries := range byFolder {
		if _, err := os.Stat(folder); err != nil {
			continue // folder no longer exists; nothing to document
		}
		if err := writeFolderReadme(folder, entries, now); err != nil {
			return err
		}
	}

	return writeQuickFind(outputDir, len(records), now)
}

func writeFolderReadme(folder string, entries []model.CatalogRecord, now time.Time) error {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].FileName < entries[j].FileName
	})

	models := distinct(entries, func(r *model.CatalogRecord) string { return r.GunModel })
	calibers := distinct(entries, func(r *model.CatalogRecord) string { return r.Caliber })
	parts := distinct(entries, func(r *model.CatalogRecord) string { return r.PartType })

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", filepath.Base(folder))
	fmt.Fprintf(&b, "**Location:** `%s/%s/`\n\n", filepath.Base(filepath.Dir(folder)), filepath.Base(folder))
	fmt.Fprintf(&b, "**Files in this folder:** %d\n\n", len(entries))

	if len(models) > 0 {
		fmt.Fprintf(&b, "**Gun Models:** %s\n\n", strings.Join(models, ", "))
	}
	if len(calibers) > 0 {
		fmt.Fprintf(&b, "**Calibers:** %s\n\n", strings.Join(calibers, ", "))
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, "**Part Types:** %s\n\n", strings.Join(parts, ", "))
	}

	b.WriteString("---\n\n## Files\n\n")
	for i := range entries {
		e := &entries[i]
		fmt.Fprintf(&b, "- `%s`", e.FileName)
		var details []string
		if e.GunModel != "" {
			details = append(details, e.GunModel)
		}
		if e.Caliber != "" {
			details = append(details, e.Caliber)
		}
		if len(details) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\n---\n*Last updated: %s*\n", now.Format("2006-01-02 15:04"))

	path := filepath.Join(folder, "README.md")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeQuickFind(outputDir string, total int, now time.Time) error {
	var b strings.Builder
	rule := strings.Repeat("=", 67)

	b.WriteString(rule + "\n")
	b.WriteString("                 COLLECTION QUICK REFERENCE\n")
	b.WriteString(rule + "\n\n")
	b.WriteString("COMPLETE BUILDS:\n   Complete_Firearms/<type>/<model>/\n\n")
	b.WriteString("SPECIFIC PARTS:\n   Parts_and_Upgrades/<part type>/<model>/\n\n")
	b.WriteString("ACCESSORIES:\n   Accessories/By_Function/<accessory type>/\n\n")
	b.WriteString("EVERYTHING ELSE:\n   Search the catalog export for the category column.\n\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Total Files: %d\n", total)
	fmt.Fprintf(&b, "Last Updated: %s\n", now.Format("2006-01-02 15:04"))
	b.WriteString(rule + "\n")

	path := filepath.Join(outputDir, "QUICK_FIND.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func distinct(entries []model.CatalogRecord, field func(*model.CatalogRecord) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range entries {
		v := field(&entries[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
