package processor

//go:generate mockgen -source=store.go -destination=mock_store_test.go -package=processor

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	jerrors "jsonator/internal/errors"
	"jsonator/pkg/textenc"
)

// FileStore reads and writes whole text files.
type FileStore interface {
	ReadText(path string) (string, error)
	WriteText(path, text string) error
}

// OSStore is the FileStore backed by the local filesystem.
type OSStore struct{}

func (OSStore) ReadText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", jerrors.ErrNotFound(path)
		}
		return "", jerrors.ErrIO("read", path, err)
	}
	defer f.Close()

	// A UTF-8 BOM is left in place; the parser reports it.
	kind, err := textenc.SniffReader(f)
	if err != nil {
		return "", jerrors.ErrIO("read", path, err)
	}
	if !kind.IsUTF8() {
		return "", jerrors.ErrIO("read", path, fmt.Errorf("unsupported encoding %s", kind))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", jerrors.ErrIO("read", path, err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return "", jerrors.ErrIO("read", path, err)
	}
	if !utf8.Valid(data) {
		return "", jerrors.ErrIO("read", path, fmt.Errorf("invalid UTF-8"))
	}
	return string(data), nil
}

// WriteText replaces path through a temporary file in the same directory,
// keeping the original permissions.
func (OSStore) WriteText(path, text string) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".jsonator-*.tmp")
	if err != nil {
		return jerrors.ErrIO("write", path, err)
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(mode); err != nil {
		_ = tmpFile.Close()
		return jerrors.ErrIO("write", path, err)
	}
	if _, err := tmpFile.WriteString(text); err != nil {
		_ = tmpFile.Close()
		return jerrors.ErrIO("write", path, err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return jerrors.ErrIO("write", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return jerrors.ErrIO("write", path, err)
	}

	if err := replaceFile(tmpFile.Name(), path); err != nil {
		return jerrors.ErrIO("write", path, err)
	}
	return nil
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}
