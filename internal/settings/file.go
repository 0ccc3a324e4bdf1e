package settings

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/koustreak/sqlbrowser/internal/errs"
)

// FileStore keeps the settings document in a local file.
type FileStore struct {
	docStore
	path string
}

// NewFileStore returns a store backed by path. The file and its directory
// are created on first write.
func NewFileStore(path string) *FileStore {
	s := &FileStore{path: path}
	s.b = fileBackend{path: path}
	return s
}

// Path returns the file the store writes.
func (s *FileStore) Path() string { return s.path }

type fileBackend struct {
	path string
}

func (f fileBackend) read(_ context.Context) ([]byte, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "failed to read settings file", err)
	}
	return raw, nil
}

// write replaces the file via a rename so a crash never leaves it half written.
func (f fileBackend) write(_ context.Context, raw []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to create settings directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to write settings file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errs.Wrap(errs.ErrKindUnknown, "failed to write settings file", err)
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to write settings file", err)
	}
	// the file holds passwords
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to write settings file", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to write settings file", err)
	}
	return nil
}
