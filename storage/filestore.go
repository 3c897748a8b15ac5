package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hk310/rc-receiver/logx"
)

// ErrStorage wraps failures returned by FileStore.
var ErrStorage = fmt.Errorf("storage")

// FileStore persists the bind record as a 25-byte file, committed via a
// write-to-temp-then-rename so a crash mid-write leaves the prior record
// (or no record) intact — the atomic-or-no-op contract §6 requires, and
// the resolution of the teacher's persistent-storage TODO from Design
// Notes §9: both the "hardcoded values" LPC stub and the STM32 commit path
// are replaced by one real, tested implementation of the interface.
type FileStore struct {
	path string
}

var _ Storage = (*FileStore)(nil)

// NewFileStore returns a FileStore backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(ctx context.Context) (BindRecord, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return BindRecord{}, false, nil
		}
		return BindRecord{}, false, fmt.Errorf("%w: read %s: %w", ErrStorage, f.path, err)
	}
	if len(data) != RecordSize {
		logx.Get().Warn("storage: bind record has wrong size, treating as absent")
		return BindRecord{}, false, nil
	}

	var buf [RecordSize]byte
	copy(buf[:], data)
	return ParseBindRecord(buf), true, nil
}

func (f *FileStore) Save(ctx context.Context, rec BindRecord) error {
	buf := rec.Bytes()

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".bind-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrStorage, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf[:]); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write temp file: %w", ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: sync temp file: %w", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp file: %w", ErrStorage, err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename into place: %w", ErrStorage, err)
	}
	return nil
}
