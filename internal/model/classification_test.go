package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaxonomyPath(t *testing.T) {
	c := Classification{Taxonomy: []string{"Complete_Firearms", "Rifles", "AR-15_Builds"}}
	assert.Equal(t, "Complete_Firearms/Rifles/AR-15_Builds", c.TaxonomyPath())

	assert.Equal(t, "", Classification{}.TaxonomyPath())
}

func TestNewCatalogRecord(t *testing.T) {
	release := Release{
		ID:          "abc123",
		Name:        "AR15_Lower",
		Tags:        []string{"AR-15", "Complete"},
		Locator:     "lbry://AR15_Lower#abc123",
		DetailURL:   "https://example.com/detail/abc123",
		Author:      "maker",
		Version:     "1.2",
		Views:       10,
		Description: "a lower",
	}
	cls := Classification{
		Taxonomy: []string{"Complete_Firearms", "Rifles"},
		GunModel: "AR-15",
		Caliber:  "5.56x45mm",
		PartType: "Complete Build",
	}
	when := time.Date(2025, 7, 4, 12, 0, 0, 0, time.UTC)

	record := NewCatalogRecord(&release, cls, "AR15_Lower.zip", "/out/a.zip", 2048, when)

	assert.Equal(t, "AR15_Lower.zip", record.FileName)
	assert.Equal(t, "/out/a.zip", record.Location)
	assert.Equal(t, release.Locator, record.Locator)
	assert.Equal(t, "Complete_Firearms/Rifles", record.Category)
	assert.Equal(t, "AR-15", record.GunModel)
	assert.Equal(t, "5.56x45mm", record.Caliber)
	assert.Equal(t, release.Tags, record.Tags)
	assert.Equal(t, int64(2048), record.SizeBytes)
	assert.Equal(t, when, record.DownloadedAt)
	assert.Equal(t, int64(10), record.Views)
	assert.Equal(t, "a lower", record.Description)
}
