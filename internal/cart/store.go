package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/repository"
)

// Store владелец состояния корзины. Создаётся один раз при старте и
// передаётся потребителям явно. Все мутации идут через Reduce, после каждой
// состояние сохраняется в фоне.
type Store struct {
	mu       sync.Mutex
	state    domain.CartState
	writer   *writeBehind
	notifier notify.Notifier
	log      logrus.FieldLogger
}

// NewStore загружает сохранённое состояние. Отсутствующая или испорченная
// запись не ошибка: корзина начинается пустой и закрытой.
func NewStore(ctx context.Context, repo repository.CartRepository, notifier notify.Notifier, log logrus.FieldLogger) *Store {
	if notifier == nil {
		notifier = notify.Nop
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		state:    load(ctx, repo, log),
		writer:   newWriteBehind(repo, log),
		notifier: notifier,
		log:      log,
	}
}

func load(ctx context.Context, repo repository.CartRepository, log logrus.FieldLogger) domain.CartState {
	s, err := repo.Load(ctx)
	switch {
	case err == nil:
		if s.Items == nil {
			s.Items = []domain.CartItem{}
		}
		log.WithField("items", len(s.Items)).Debug("cart: restored")
		return s
	case errors.Is(err, repository.ErrNotFound):
		log.Debug("cart: no saved state")
	default:
		log.WithError(err).Warn("cart: saved state unreadable, starting empty")
	}
	return domain.EmptyCart()
}

func (s *Store) dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	s.writer.submit(s.state)
}

// AddToCart +1 к существующей позиции или новая позиция с количеством 1
func (s *Store) AddToCart(p domain.Product) {
	s.dispatch(AddItem{Product: p})
	s.notifier.Notify(notify.New(notify.LevelSuccess, p.Title+" added to cart", "Your item has been added to the cart!"))
}

// RemoveFromCart удаляет позицию; отсутствие не ошибка
func (s *Store) RemoveFromCart(productID int64) {
	s.dispatch(RemoveItem{ProductID: productID})
	s.notifier.Notify(notify.New(notify.LevelInfo, "Item removed from cart", "The item has been removed from your cart"))
}

// UpdateQuantity без уведомления
func (s *Store) UpdateQuantity(productID int64, quantity int) {
	s.dispatch(UpdateQuantity{ProductID: productID, Quantity: quantity})
}

func (s *Store) ClearCart() {
	s.dispatch(Clear{})
	s.notifier.Notify(notify.New(notify.LevelInfo, "Cart cleared", "All items have been removed from your cart"))
}

func (s *Store) ToggleCart() {
	s.dispatch(Toggle{})
}

// State копия текущего состояния
func (s *Store) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.CartItem, len(s.state.Items))
	copy(items, s.state.Items)
	return domain.CartState{Items: items, IsCartOpen: s.state.IsCartOpen}
}

func (s *Store) TotalItems() int {
	return s.State().TotalItems()
}

func (s *Store) TotalPrice() decimal.Decimal {
	return s.State().TotalPrice()
}

// Close дожидается записи последнего состояния
func (s *Store) Close() {
	s.writer.close()
}
