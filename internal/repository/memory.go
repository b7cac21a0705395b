package repository

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// MemoryStore in-memory хранилище записи. Хранит сериализованные байты,
// чтобы поведение совпадало с файловым хранилищем.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
	err  error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Ensure interfaces
var _ CartRepository = (*MemoryStore)(nil)

func (m *MemoryStore) Load(ctx context.Context) (domain.CartState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return domain.CartState{}, ErrNotFound
	}
	return Decode(m.data)
}

func (m *MemoryStore) Save(ctx context.Context, s domain.CartState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	b, err := Encode(s)
	if err != nil {
		return err
	}
	m.data = b
	return nil
}

// SetRaw подменяет сохранённые байты как есть
func (m *MemoryStore) SetRaw(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// keep a private copy
	m.data = append([]byte(nil), b...)
}

// Raw возвращает копию сохранённых байтов, nil если записи нет
func (m *MemoryStore) Raw() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil
	}
	return append([]byte(nil), m.data...)
}

// FailSaves заставляет Save возвращать err; nil снимает сбой
func (m *MemoryStore) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
