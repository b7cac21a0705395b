package cart

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/repository"
)

type recorder struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (r *recorder) Notify(n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.got))
	for _, n := range r.got {
		out = append(out, n.Title)
	}
	return out
}

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setup(t *testing.T, repo repository.CartRepository) (*Store, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := NewStore(context.Background(), repo, rec, quietLog())
	t.Cleanup(s.Close)
	return s, rec
}

var productA = domain.Product{ID: 1, Title: "A", Price: 100, DiscountPercentage: 10}

func TestReduce_Deterministic(t *testing.T) {
	actions := []Action{
		AddItem{Product: productA},
		AddItem{Product: domain.Product{ID: 2, Price: 3}},
		AddItem{Product: productA},
		UpdateQuantity{ProductID: 2, Quantity: 4},
		Toggle{},
		RemoveItem{ProductID: 99},
	}
	run := func() domain.CartState {
		s := domain.EmptyCart()
		for _, a := range actions {
			s = Reduce(s, a)
		}
		return s
	}
	a, b := run(), run()
	if len(a.Items) != len(b.Items) || a.IsCartOpen != b.IsCartOpen || !a.TotalPrice().Equal(b.TotalPrice()) {
		t.Fatalf("reducer not deterministic: %+v vs %+v", a, b)
	}
	if a.TotalItems() != 6 || !a.IsCartOpen {
		t.Fatalf("unexpected state %+v", a)
	}
	if got := Reduce(a, nil); got.TotalItems() != a.TotalItems() {
		t.Fatalf("nil action changed state")
	}
}

func TestStore_Scenario(t *testing.T) {
	s, rec := setup(t, repository.NewMemoryStore())

	s.AddToCart(productA)
	s.AddToCart(productA)
	if s.TotalItems() != 2 || !s.TotalPrice().Equal(decimal.NewFromInt(180)) {
		t.Fatalf("after adds: %d %s", s.TotalItems(), s.TotalPrice())
	}
	if got := s.State(); len(got.Items) != 1 {
		t.Fatalf("expected single item, got %d", len(got.Items))
	}

	s.UpdateQuantity(productA.ID, 5)
	if s.TotalItems() != 5 || domain.FormatPrice(s.TotalPrice()) != "450.00" {
		t.Fatalf("after update: %d %s", s.TotalItems(), s.TotalPrice())
	}

	s.RemoveFromCart(productA.ID)
	if s.TotalItems() != 0 || len(s.State().Items) != 0 {
		t.Fatalf("after remove: %+v", s.State())
	}

	want := []string{"A added to cart", "A added to cart", "Item removed from cart"}
	got := rec.titles()
	if len(got) != len(want) {
		t.Fatalf("notifications: want %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("notification %d: want %q got %q", i, want[i], got[i])
		}
	}
}

func TestStore_UpdateQuantityNonPositiveRemoves(t *testing.T) {
	for _, q := range []int{0, -5} {
		s, rec := setup(t, repository.NewMemoryStore())
		s.AddToCart(productA)
		s.UpdateQuantity(productA.ID, q)
		if len(s.State().Items) != 0 {
			t.Fatalf("quantity %d: item kept", q)
		}
		// only the add notifies
		if n := len(rec.titles()); n != 1 {
			t.Fatalf("quantity %d: expected 1 notification, got %d", q, n)
		}
	}
}

func TestStore_ClearKeepsOpen(t *testing.T) {
	s, rec := setup(t, repository.NewMemoryStore())
	s.ToggleCart()
	s.AddToCart(productA)
	s.ClearCart()
	st := s.State()
	if len(st.Items) != 0 || s.TotalItems() != 0 || !s.TotalPrice().IsZero() {
		t.Fatalf("not cleared: %+v", st)
	}
	if !st.IsCartOpen {
		t.Fatalf("open flag lost")
	}
	titles := rec.titles()
	if titles[len(titles)-1] != "Cart cleared" {
		t.Fatalf("missing clear notification: %v", titles)
	}
}

func TestStore_PersistAndReload(t *testing.T) {
	repo := repository.NewMemoryStore()
	s := NewStore(context.Background(), repo, nil, quietLog())
	s.AddToCart(productA)
	s.AddToCart(domain.Product{ID: 2, Title: "B", Price: 7})
	s.AddToCart(productA)
	s.ToggleCart()
	before := s.State()
	s.Close()

	reloaded := NewStore(context.Background(), repo, nil, quietLog())
	defer reloaded.Close()
	after := reloaded.State()
	if after.IsCartOpen != before.IsCartOpen || len(after.Items) != len(before.Items) {
		t.Fatalf("reload mismatch: %+v vs %+v", before, after)
	}
	for i := range before.Items {
		if before.Items[i].Product.ID != after.Items[i].Product.ID || before.Items[i].Quantity != after.Items[i].Quantity {
			t.Fatalf("item %d mismatch: %+v vs %+v", i, before.Items[i], after.Items[i])
		}
	}
}

func TestStore_CorruptRecordStartsEmpty(t *testing.T) {
	repo := repository.NewMemoryStore()
	repo.SetRaw([]byte("{{{"))
	s, _ := setup(t, repo)
	st := s.State()
	if len(st.Items) != 0 || st.IsCartOpen {
		t.Fatalf("expected empty closed cart, got %+v", st)
	}
}

func TestStore_SaveFailureKeepsState(t *testing.T) {
	repo := repository.NewMemoryStore()
	repo.FailSaves(errors.New("quota exceeded"))
	s := NewStore(context.Background(), repo, nil, quietLog())
	s.AddToCart(productA)
	s.Close()
	if s.TotalItems() != 1 {
		t.Fatalf("mutation rolled back on save failure")
	}
	if repo.Raw() != nil {
		t.Fatalf("nothing should have been written")
	}
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s, _ := setup(t, repository.NewMemoryStore())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddToCart(productA)
		}()
	}
	wg.Wait()
	st := s.State()
	if len(st.Items) != 1 || st.Items[0].Quantity != 50 {
		t.Fatalf("expected one item with quantity 50, got %+v", st.Items)
	}
}
