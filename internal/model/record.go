package model

import "time"

// CatalogRecord is the durable row written for every successfully
// materialized file. Records are append-only from the engine's
// perspective; the persisted catalog is the single source of truth for
// "already downloaded".
type CatalogRecord struct {
	DownloadedAt time.Time

	FileName  string
	Location  string // path of the file under the output directory
	Locator   string
	DetailURL string

	Category string // taxonomy path, "/"-joined
	GunModel string
	Caliber  string
	PartType string

	Tags []string

	SizeBytes int64

	ReleaseDate string
	LastUpdated string
	Author      string
	Version     string

	Views    int64
	Likes    int64
	Dislikes int64

	Description string
	Notes       string
	Readme      string
}

// NewCatalogRecord builds a record from a release, its classification,
// and the final on-disk location of the verified artifact.
func NewCatalogRecord(r *Release, c Classification, fileName, location string, sizeBytes int64, downloadedAt time.Time) *CatalogRecord {
	return &CatalogRecord{
		DownloadedAt: downloadedAt,
		FileName:     fileName,
		Location:     location,
		Locator:      r.Locator,
		DetailURL:    r.DetailURL,
		Category:     c.TaxonomyPath(),
		GunModel:     c.GunModel,
		Caliber:      c.Caliber,
		PartType:     c.PartType,
		Tags:         r.Tags,
		SizeBytes:    sizeBytes,
		ReleaseDate:  r.ReleaseDate,
		LastUpdated:  r.LastUpdated,
		Author:       r.Author,
		Version:      r.Version,
		Views:        r.Views,
		Likes:        r.Likes,
		Dislikes:     r.Dislikes,
		Description:  r.Description,
		Notes:        r.Notes,
		Readme:       r.Readme,
	}
}
