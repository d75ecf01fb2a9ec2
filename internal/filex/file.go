// Package filex holds small filesystem helpers for the admin CLI.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrFileExists = errors.New("file already exists")

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// WriteFile writes data to path with perm, creating parent directories.
// Unless overwrite is set an existing file is left alone and ErrFileExists
// is returned.
func WriteFile(path string, data []byte, perm os.FileMode, overwrite bool) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, perm)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrFileExists, path)
		}
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
