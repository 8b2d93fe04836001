package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
)

// ErrExist is returned by WriteNew when the destination already exists.
var ErrExist = errors.New("file already exists")

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// WriteNew writes data to a temporary file in the destination directory and
// links it to path. The link fails if path exists, so the final name either
// refers to the complete content or does not exist at all.
//
// On filesystems without hard links (FAT, exFAT, some SMB shares and bind
// mounts) path is instead created exclusively and written in place. A failed
// write there removes the partial file.
func WriteNew(path string, data []byte) error {
	return writeNew(path, data, os.Link)
}

func writeNew(path string, data []byte, link func(oldname, newname string) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := writeTemp(dir, filepath.Base(path), data)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp) }()

	err = link(tmp, path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrExist):
		return fmt.Errorf("%s: %w", path, ErrExist)
	case linkUnsupported(err):
		if err := writeExclusive(path, data); err != nil {
			return err
		}
	default:
		return fmt.Errorf("failed to publish %s: %w", path, err)
	}

	syncDir(dir)
	return nil
}

// linkUnsupported reports whether err means the filesystem cannot hard link.
func linkUnsupported(err error) bool {
	return errors.Is(err, syscall.EPERM) || errors.Is(err, errors.ErrUnsupported)
}

// writeExclusive creates path with O_EXCL and writes data to it.
func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm) //nolint:gosec // path is built by the caller from a fresh name
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", path, ErrExist)
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	_, err = f.Write(data)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteAtomic writes data to a temporary file and renames it over path.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := writeTemp(dir, filepath.Base(path), data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename into %s: %w", path, err)
	}
	syncDir(dir)
	return nil
}

// writeTemp writes and fsyncs data into a fresh temporary file in dir.
func writeTemp(dir, base string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	name := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(name, filePerm); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}
	return name, nil
}

// syncDir flushes the directory entry for a newly published file. It is
// best-effort: some filesystems refuse to open or fsync a directory, and the
// file content itself is already synced.
func syncDir(dir string) {
	if runtime.GOOS == "windows" {
		return
	}
	d, err := os.Open(dir) //nolint:gosec // dir is derived from a path we just wrote
	if err != nil {
		return
	}
	defer d.Close()
	_ = d.Sync()
}
