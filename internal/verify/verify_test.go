package verify

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadstack/cadhoard/internal/common"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, body := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestArtifactAcceptsValidZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.zip")
	writeZip(t, path, map[string]string{
		"lower.stl":  "solid lower",
		"readme.txt": "print at 100% infill",
	})

	assert.NoError(t, Artifact(path, 0))
}

func TestArtifactRejectsMissingFile(t *testing.T) {
	err := Artifact(filepath.Join(t.TempDir(), "nope.zip"), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrVerification))
}

func TestArtifactRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.zip")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	err := Artifact(path, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrVerification))
	assert.Contains(t, err.Error(), "empty")
}

func TestArtifactRejectsTruncatedZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.zip")
	writeZip(t, path, map[string]string{"lower.stl": "solid lower with enough bytes to truncate"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)/2], 0o644))

	err = Artifact(path, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrVerification))
}

func TestArtifactRejectsGarbageWithZipExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.zip")
	require.NoError(t, os.WriteFile(path, []byte("not actually a zip archive"), 0o644))

	err := Artifact(path, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrVerification))
}

func TestArtifactSizeHint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.stl")
	body := make([]byte, 1000)
	require.NoError(t, os.WriteFile(path, body, 0o644))

	tests := []struct {
		name     string
		sizeHint int64
		wantErr  bool
	}{
		{"no hint", 0, false},
		{"exact", 1000, false},
		{"slightly larger hint within tolerance", 1100, false},
		{"hint far above actual size", 2000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Artifact(path, tt.sizeHint)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrVerification))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestArtifactAcceptsNonZipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.stl")
	require.NoError(t, os.WriteFile(path, []byte("solid part\nendsolid part\n"), 0o644))

	assert.NoError(t, Artifact(path, 0))
}

func TestIsZipDetectsMagicBytesWithoutExtension(t *testing.T) {
	dir := t.TempDir()

	zipPath := filepath.Join(dir, "archive.bin")
	writeZip(t, zipPath, map[string]string{"a.txt": "a"})
	assert.True(t, isZip(zipPath))

	plainPath := filepath.Join(dir, "plain.bin")
	require.NoError(t, os.WriteFile(plainPath, []byte("hello"), 0o644))
	assert.False(t, isZip(plainPath))
}
