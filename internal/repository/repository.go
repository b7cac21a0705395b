package repository

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// RecordName имя сохранённой записи состояния корзины
const RecordName = "cartState"

var (
	// ErrNotFound возвращается, когда запись ещё не сохранялась
	ErrNotFound = errors.New("not found")
	// ErrCorrupt запись есть, но прочитать её нельзя
	ErrCorrupt = errors.New("corrupt record")
)

// CartRepository хранилище состояния корзины. Одна запись на процесс.
type CartRepository interface {
	Load(ctx context.Context) (domain.CartState, error)
	Save(ctx context.Context, s domain.CartState) error
}
