// Package verify checks that a resolved artifact is worth cataloguing
// before it is moved into the output tree.
package verify

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cadstack/cadhoard/internal/common"
)

// sizeTolerance is how far below the listing's size hint a file may be
// before it is treated as truncated. Hints are advertisements, not
// checksums, so only gross shortfalls fail.
const sizeTolerance = 0.10

// Artifact validates the file at path. Zero-byte files always fail;
// zip containers must open and enumerate cleanly; when sizeHint is
// positive, files more than 10% smaller than the hint are rejected as
// truncated.
func Artifact(path string, sizeHint int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrVerification, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", common.ErrVerification, filepath.Base(path))
	}

	if sizeHint > 0 {
		floor := int64(float64(sizeHint) * (1 - sizeTolerance))
		if info.Size() < floor {
			return fmt.Errorf("%w: %s is %d bytes, expected about %d",
				common.ErrVerification, filepath.Base(path), info.Size(), sizeHint)
		}
	}

	if isZip(path) {
		if err := checkZip(path); err != nil {
			return fmt.Errorf("%w: %v", common.ErrVerification, err)
		}
	}

	return nil
}

// isZip detects a zip container by extension or magic bytes.
func isZip(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	magic := make([]byte, 2)
	if _, err := io.ReadFull(f, magic); err != nil {
		return false
	}
	return magic[0] == 'P' && magic[1] == 'K'
}

// checkZip opens the archive and reads every entry to catch truncated
// or corrupt containers.
func checkZip(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("corrupt zip %s: %v", filepath.Base(path), err)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("corrupt zip entry %s: %v", f.Name, err)
		}
		_, err = io.Copy(io.Discard, rc)
		_ = rc.Close()
		if err != nil {
			return fmt.Errorf("corrupt zip entry %s: %v", f.Name, err)
		}
	}
	return nil
}
