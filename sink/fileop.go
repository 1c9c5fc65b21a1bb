package sink

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteFile atomically replaces dest with data: the content goes to a
// temporary file in the same directory which is renamed once flushed. Unless
// force is set an existing dest is an error wrapping fs.ErrExist.
func WriteFile(dest string, data []byte, force bool) (err error) {
	if err := checkDest(dest, force); err != nil {
		return err
	}

	dir, name := filepath.Split(dest)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination for %q: %w", dest, err)
	}
	canRename := false
	defer func() {
		if canRename {
			if renameErr := os.Rename(tmp.Name(), dest); renameErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", dest, renameErr)
				canRename = false
			}
		}
		if !canRename {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("could not set mode of temporary destination for %q: %w", dest, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("could not write temporary destination for %q: %w", dest, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("could not flush temporary destination for %q: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temporary destination for %q: %w", dest, err)
	}

	canRename = true
	return nil
}

func checkDest(dest string, force bool) error {
	info, err := os.Stat(dest)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot stat destination file %q: %w", dest, err)
		}
		return nil
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot replace non-regular file %q: %s", dest, info.Mode().String())
	}
	if !force {
		return fmt.Errorf("destination file already exists: %q: %w", dest, fs.ErrExist)
	}
	return nil
}
