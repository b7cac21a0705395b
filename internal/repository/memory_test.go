package repository

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

func sampleState() domain.CartState {
	a := domain.Product{ID: 1, Title: "A", Price: 100, DiscountPercentage: 10, Images: []string{"a1", "a2"}}
	b := domain.Product{ID: 2, Title: "B", Price: 5.5, Category: "groceries"}
	return domain.EmptyCart().WithProduct(a).WithProduct(b).WithProduct(a).Toggled()
}

func assertSameState(t *testing.T, want, got domain.CartState) {
	t.Helper()
	if got.IsCartOpen != want.IsCartOpen {
		t.Fatalf("open flag: want %v got %v", want.IsCartOpen, got.IsCartOpen)
	}
	if len(got.Items) != len(want.Items) {
		t.Fatalf("items: want %d got %d", len(want.Items), len(got.Items))
	}
	for i := range want.Items {
		w, g := want.Items[i], got.Items[i]
		if w.Product.ID != g.Product.ID || w.Quantity != g.Quantity || w.Product.Title != g.Product.Title {
			t.Fatalf("item %d: want %+v got %+v", i, w, g)
		}
		if len(w.Product.Images) != len(g.Product.Images) {
			t.Fatalf("item %d images: want %v got %v", i, w.Product.Images, g.Product.Images)
		}
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	want := sampleState()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSameState(t, want, got)
}

func TestMemoryStore_Corrupt(t *testing.T) {
	store := NewMemoryStore()
	store.SetRaw([]byte("{not json"))
	if _, err := store.Load(context.Background()); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected corrupt, got %v", err)
	}
}

func TestMemoryStore_FailSaves(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	boom := errors.New("disk full")
	store.FailSaves(boom)
	if err := store.Save(ctx, sampleState()); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	store.FailSaves(nil)
	if err := store.Save(ctx, sampleState()); err != nil {
		t.Fatalf("save after reset: %v", err)
	}
}
