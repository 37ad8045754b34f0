// Package atomicfile replaces files so readers see either the old content or
// the new content, never a partial write.
package atomicfile

import (
	"errors"
	"os"
	"path/filepath"
)

// syncDir fsyncs a directory after a rename. It is a var so tests can
// observe it.
var syncDir = func(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// Write writes data to a temporary file next to path, fsyncs it and renames
// it over path. The parent directory is created if missing.
func Write(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpName, path); err != nil {
		return err
	}
	// Directory fsync is unsupported on some platforms; the rename has
	// already happened, so only report real I/O errors.
	if serr := syncDir(dir); serr != nil && !errors.Is(serr, os.ErrInvalid) && !errors.Is(serr, os.ErrPermission) {
		return serr
	}
	return nil
}
