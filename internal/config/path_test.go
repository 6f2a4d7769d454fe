package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("CADHOARD_TEST_DIR", "/data/cad")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"absolute untouched", "/var/lib/cadhoard", "/var/lib/cadhoard"},
		{"tilde prefix", "~/downloads", filepath.Join(home, "downloads")},
		{"bare tilde", "~", home},
		{"env var", "$CADHOARD_TEST_DIR/files", "/data/cad/files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestEnsureWritableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	require.NoError(t, EnsureWritableDir(dir))
	assert.DirExists(t, dir)

	// The write probe must not leave anything behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEnsureWritableDirFailsOnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not_a_dir")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	assert.Error(t, EnsureWritableDir(path))
}
