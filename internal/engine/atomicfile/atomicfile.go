// Package atomicfile writes files so that readers never observe a partially written document.
package atomicfile

import (
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/pwa/internal/core/domain"
)

// WriteFile writes data to a temp file next to path, syncs it, and renames it over path.
// Missing parent directories are created.
func WriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmpFile.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Chmod(perm); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true

	syncDir(dir)
	return nil
}

// syncDir flushes the directory entry of a rename. Not every platform supports it.
func syncDir(dir string) {
	//nolint:gosec // Directory comes from the path being written
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
