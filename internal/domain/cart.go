package domain

import "github.com/shopspring/decimal"

// CartState состояние корзины: упорядоченные позиции (порядок первого
// добавления) и флаг открытой панели. Итоги не хранятся, а считаются.
//
// Методы With*/Without/Cleared/Toggled не изменяют получателя и
// возвращают новое значение.
type CartState struct {
	Items      []CartItem `json:"items"`
	IsCartOpen bool       `json:"isCartOpen"`
}

// EmptyCart состояние по умолчанию: пустая закрытая корзина
func EmptyCart() CartState {
	return CartState{Items: []CartItem{}}
}

func (s CartState) indexOf(productID int64) int {
	for i, it := range s.Items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s CartState) cloneItems() []CartItem {
	out := make([]CartItem, len(s.Items))
	copy(out, s.Items)
	return out
}

// Item возвращает позицию по id товара
func (s CartState) Item(productID int64) (CartItem, bool) {
	if i := s.indexOf(productID); i >= 0 {
		return s.Items[i], true
	}
	return CartItem{}, false
}

// WithProduct увеличивает количество на 1 или добавляет новую позицию в конец
func (s CartState) WithProduct(p Product) CartState {
	items := s.cloneItems()
	if i := s.indexOf(p.ID); i >= 0 {
		items[i].Quantity++
	} else {
		items = append(items, CartItem{Product: p, Quantity: 1})
	}
	return CartState{Items: items, IsCartOpen: s.IsCartOpen}
}

// Without удаляет позицию; отсутствие товара не ошибка
func (s CartState) Without(productID int64) CartState {
	items := make([]CartItem, 0, len(s.Items))
	for _, it := range s.Items {
		if it.Product.ID != productID {
			items = append(items, it)
		}
	}
	return CartState{Items: items, IsCartOpen: s.IsCartOpen}
}

// WithQuantity задаёт абсолютное количество. quantity <= 0 удаляет позицию.
func (s CartState) WithQuantity(productID int64, quantity int) CartState {
	if quantity <= 0 {
		return s.Without(productID)
	}
	items := s.cloneItems()
	if i := s.indexOf(productID); i >= 0 {
		items[i].Quantity = quantity
	}
	return CartState{Items: items, IsCartOpen: s.IsCartOpen}
}

// Cleared очищает позиции, флаг панели сохраняется
func (s CartState) Cleared() CartState {
	return CartState{Items: []CartItem{}, IsCartOpen: s.IsCartOpen}
}

// Toggled переключает флаг панели
func (s CartState) Toggled() CartState {
	return CartState{Items: s.cloneItems(), IsCartOpen: !s.IsCartOpen}
}

// TotalItems сумма количеств по всем позициям
func (s CartState) TotalItems() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// TotalPrice сумма цен со скидкой без округления
func (s CartState) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// DiscountedPrice цена с учётом скидки: price * (1 - discount/100)
func (p Product) DiscountedPrice() decimal.Decimal {
	price := decimal.NewFromFloat(p.Price)
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(p.DiscountPercentage).Div(decimal.NewFromInt(100)))
	return price.Mul(factor)
}

// LineTotal стоимость позиции
func (it CartItem) LineTotal() decimal.Decimal {
	return it.Product.DiscountedPrice().Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// FormatPrice округление до двух знаков, только для отображения
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}
