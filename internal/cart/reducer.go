package cart

import "storefront/internal/domain"

// Action одно из пяти действий над корзиной
type Action interface {
	apply(s domain.CartState) domain.CartState
}

type AddItem struct{ Product domain.Product }

type RemoveItem struct{ ProductID int64 }

// UpdateQuantity задаёт абсолютное количество; <= 0 удаляет позицию
type UpdateQuantity struct {
	ProductID int64
	Quantity  int
}

type Clear struct{}

type Toggle struct{}

func (a AddItem) apply(s domain.CartState) domain.CartState    { return s.WithProduct(a.Product) }
func (a RemoveItem) apply(s domain.CartState) domain.CartState { return s.Without(a.ProductID) }
func (a UpdateQuantity) apply(s domain.CartState) domain.CartState {
	return s.WithQuantity(a.ProductID, a.Quantity)
}
func (Clear) apply(s domain.CartState) domain.CartState  { return s.Cleared() }
func (Toggle) apply(s domain.CartState) domain.CartState { return s.Toggled() }

// Reduce чистая функция перехода: текущее состояние + действие -> новое состояние.
// Не зависит от времени, сети и прочего внешнего состояния.
func Reduce(s domain.CartState, a Action) domain.CartState {
	if a == nil {
		return s
	}
	return a.apply(s)
}
