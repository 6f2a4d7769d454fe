package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cadstack/cadhoard/internal/model"
)

// ColumnOrder is the documented, fixed column layout of the CSV
// rendering of the catalog. Consumers and the fallback loader both
// depend on this exact order.
var ColumnOrder = []string{
	"File Name", "Location", "LBRY URL", "Detail URL", "Category",
	"Gun Model", "Caliber", "Part Type", "Tags", "File Size (MB)",
	"Release Date", "Last Updated", "Author", "Version", "Date Downloaded",
	"Odysee Views", "Odysee Likes", "Odysee Dislikes",
	"Description", "Notes", "Readme",
}

// WriteCSV renders records to w in ColumnOrder. This is the lightweight
// fallback/export format for the catalog.
func WriteCSV(w io.Writer, records []model.CatalogRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ColumnOrder); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range records {
		if err := cw.Write(recordRow(&records[i])); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", records[i].FileName, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func recordRow(r *model.CatalogRecord) []string {
	downloaded := ""
	if !r.DownloadedAt.IsZero() {
		downloaded = r.DownloadedAt.Format("2006-01-02 15:04")
	}

	return []string{
		r.FileName,
		r.Location,
		r.Locator,
		r.DetailURL,
		r.Category,
		r.GunModel,
		r.Caliber,
		r.PartType,
		strings.Join(r.Tags, ", "),
		fmt.Sprintf("%.2f", float64(r.SizeBytes)/1024/1024),
		r.ReleaseDate,
		r.LastUpdated,
		r.Author,
		r.Version,
		downloaded,
		strconv.FormatInt(r.Views, 10),
		strconv.FormatInt(r.Likes, 10),
		strconv.FormatInt(r.Dislikes, 10),
		CleanText(r.Description),
		CleanText(r.Notes),
		CleanText(r.Readme),
	}
}

// CleanText collapses control characters and runs of whitespace so
// free-text fields stay on one row in tabular renderings.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r < 32:
			// drop other control characters
		default:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
