package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadstack/cadhoard/internal/model"
)

func TestGenerate(t *testing.T) {
	out := t.TempDir()
	rifleDir := filepath.Join(out, "Complete_Firearms", "Rifles")
	require.NoError(t, os.MkdirAll(rifleDir, 0o755))

	now := time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC)
	records := []model.CatalogRecord{
		{
			FileName: "zeta.zip",
			Location: filepath.Join(rifleDir, "zeta.zip"),
			GunModel: "AR-15",
			Caliber:  "5.56x45mm",
			PartType: "Complete Build",
		},
		{
			FileName: "alpha.zip",
			Location: filepath.Join(rifleDir, "alpha.zip"),
			GunModel: "AK-47",
			PartType: "Complete Build",
		},
	}

	require.NoError(t, Generate(out, records, now))

	readme, err := os.ReadFile(filepath.Join(rifleDir, "README.md"))
	require.NoError(t, err)
	text := string(readme)

	assert.Contains(t, text, "# Rifles")
	assert.Contains(t, text, "**Files in this folder:** 2")
	assert.Contains(t, text, "**Gun Models:** AK-47, AR-15")
	assert.Contains(t, text, "**Calibers:** 5.56x45mm")
	assert.Contains(t, text, "- `alpha.zip` (AK-47)")
	assert.Contains(t, text, "- `zeta.zip` (AR-15, 5.56x45mm)")
	assert.Less(t, // files list alphabetically
		strings.Index(text, "- `alpha.zip`"), strings.Index(text, "- `zeta.zip`"))
	assert.Contains(t, text, "*Last updated: 2025-08-01 09:30*")

	quickFind, err := os.ReadFile(filepath.Join(out, "QUICK_FIND.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(quickFind), "Total Files: 2")
	assert.Contains(t, string(quickFind), "COLLECTION QUICK REFERENCE")
}

func TestGenerateSkipsVanishedFolders(t *testing.T) {
	out := t.TempDir()

	records := []model.CatalogRecord{{
		FileName: "gone.zip",
		Location: filepath.Join(out, "Removed_Folder", "gone.zip"),
	}}

	require.NoError(t, Generate(out, records, time.Now()))
	assert.NoFileExists(t, filepath.Join(out, "Removed_Folder", "README.md"))
	assert.FileExists(t, filepath.Join(out, "QUICK_FIND.txt"))
}

func TestGenerateEmptyCatalog(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, Generate(out, nil, time.Now()))

	quickFind, err := os.ReadFile(filepath.Join(out, "QUICK_FIND.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(quickFind), "Total Files: 0")
}
