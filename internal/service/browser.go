package service

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrSuperseded ответ устарел: пока запрос шёл, пользователь сменил фильтр
var ErrSuperseded = errors.New("superseded by a newer request")

// View состояние витрины, которое видит пользователь
type View struct {
	Page     int      `json:"page"`
	Category string   `json:"category,omitempty"`
	Search   string   `json:"search,omitempty"`
	Listing  *Listing `json:"listing,omitempty"`
}

// Browser хранит фильтры витрины и последнюю показанную страницу.
// Каждый запрос помечается поколением; ответ старого поколения отбрасывается
// и не перезаписывает более новый результат.
type Browser struct {
	products *ProductService

	mu      sync.Mutex
	query   Query
	listing *Listing
	gen     uint64
	cancel  context.CancelFunc
}

func NewBrowser(products *ProductService) *Browser {
	return &Browser{products: products, query: Query{Page: 1}}
}

// View текущее состояние без запроса в каталог
func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

// Refresh перезапрашивает текущую страницу
func (b *Browser) Refresh(ctx context.Context) (View, error) {
	return b.intent(ctx, func(q Query) Query { return q })
}

func (b *Browser) SetPage(ctx context.Context, page int) (View, error) {
	if page < 1 {
		return View{}, ErrInvalidInput
	}
	return b.intent(ctx, func(q Query) Query {
		q.Page = page
		return q
	})
}

// SelectCategory сбрасывает страницу и поиск; пустая категория — все товары
func (b *Browser) SelectCategory(ctx context.Context, category string) (View, error) {
	return b.intent(ctx, func(q Query) Query {
		q.Category = strings.TrimSpace(category)
		q.Search = ""
		q.Page = 1
		return q
	})
}

// Search сбрасывает страницу и категорию
func (b *Browser) Search(ctx context.Context, text string) (View, error) {
	return b.intent(ctx, func(q Query) Query {
		q.Search = strings.TrimSpace(text)
		q.Category = ""
		q.Page = 1
		return q
	})
}

func (b *Browser) intent(ctx context.Context, mutate func(Query) Query) (View, error) {
	b.mu.Lock()
	b.query = mutate(b.query)
	q := b.query
	b.gen++
	gen := b.gen
	if b.cancel != nil {
		// previous request can no longer be shown
		b.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()

	listing, err := b.products.Browse(reqCtx, q)
	cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return View{}, ErrSuperseded
	}
	b.cancel = nil
	if err != nil {
		return View{}, err
	}
	b.listing = listing
	return b.viewLocked(), nil
}

func (b *Browser) viewLocked() View {
	return View{
		Page:     b.query.Page,
		Category: b.query.Category,
		Search:   b.query.Search,
		Listing:  b.listing,
	}
}
