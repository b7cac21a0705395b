package repository

import (
	"fmt"

	"github.com/goccy/go-json"

	"storefront/internal/domain"
)

// CurrentVersion версия формата записи. Записи без поля version (0) —
// старый формат {items, isCartOpen}, читаются как есть.
const CurrentVersion = 1

type record struct {
	Version    int               `json:"version"`
	Items      []domain.CartItem `json:"items"`
	IsCartOpen bool              `json:"isCartOpen"`
}

// Encode сериализует состояние без производных итогов
func Encode(s domain.CartState) ([]byte, error) {
	rec := record{Version: CurrentVersion, Items: normalize(s.Items), IsCartOpen: s.IsCartOpen}
	return json.Marshal(rec)
}

// Decode разбирает запись. Любая ошибка оборачивает ErrCorrupt.
func Decode(data []byte) (domain.CartState, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.CartState{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if rec.Version < 0 || rec.Version > CurrentVersion {
		return domain.CartState{}, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, rec.Version)
	}
	return domain.CartState{Items: normalize(rec.Items), IsCartOpen: rec.IsCartOpen}, nil
}

// normalize drops non-positive quantities and merges duplicate ids into the first slot.
func normalize(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	pos := make(map[int64]int, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if i, ok := pos[it.Product.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		pos[it.Product.ID] = len(out)
		out = append(out, it)
	}
	return out
}
