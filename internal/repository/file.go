package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"storefront/internal/domain"
)

// FileStore хранит запись в файле <dir>/cartState.json.
// Запись атомарная: временный файл и rename.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, RecordName+".json")}, nil
}

var _ CartRepository = (*FileStore)(nil)

// Path путь к файлу записи
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(ctx context.Context) (domain.CartState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.CartState{}, ErrNotFound
	}
	if err != nil {
		return domain.CartState{}, fmt.Errorf("read %s: %w", f.path, err)
	}
	return Decode(b)
}

func (f *FileStore) Save(ctx context.Context, s domain.CartState) error {
	b, err := Encode(s)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tmp, err := os.CreateTemp(filepath.Dir(f.path), RecordName+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	// cleanup is a no-op after a successful rename
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
