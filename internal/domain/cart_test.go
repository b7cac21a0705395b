package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCartState_AddSameProduct(t *testing.T) {
	a := Product{ID: 1, Title: "A", Price: 100, DiscountPercentage: 10}
	s := EmptyCart()
	for i := 0; i < 7; i++ {
		s = s.WithProduct(a)
	}
	if len(s.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(s.Items))
	}
	if s.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", s.Items[0].Quantity)
	}
}

func TestCartState_Immutable(t *testing.T) {
	a := Product{ID: 1, Price: 10}
	s1 := EmptyCart().WithProduct(a)
	s2 := s1.WithProduct(a)
	if s1.Items[0].Quantity != 1 {
		t.Fatalf("receiver mutated: %d", s1.Items[0].Quantity)
	}
	if s2.Items[0].Quantity != 2 {
		t.Fatalf("expected 2, got %d", s2.Items[0].Quantity)
	}
	s3 := s2.WithQuantity(1, 9)
	if s2.Items[0].Quantity != 2 || s3.Items[0].Quantity != 9 {
		t.Fatalf("quantity update leaked: %d %d", s2.Items[0].Quantity, s3.Items[0].Quantity)
	}
}

func TestCartState_OrderPreserved(t *testing.T) {
	s := EmptyCart().
		WithProduct(Product{ID: 3}).
		WithProduct(Product{ID: 1}).
		WithProduct(Product{ID: 2}).
		WithProduct(Product{ID: 3}).
		WithQuantity(1, 4)
	want := []int64{3, 1, 2}
	for i, id := range want {
		if s.Items[i].Product.ID != id {
			t.Fatalf("position %d: want %d got %d", i, id, s.Items[i].Product.ID)
		}
	}
}

func TestCartState_QuantityZeroOrNegativeRemoves(t *testing.T) {
	for _, q := range []int{0, -5} {
		s := EmptyCart().WithProduct(Product{ID: 1}).WithProduct(Product{ID: 2})
		s = s.WithQuantity(1, q)
		if _, ok := s.Item(1); ok {
			t.Fatalf("quantity %d: item not removed", q)
		}
		if len(s.Items) != 1 {
			t.Fatalf("quantity %d: expected 1 item left, got %d", q, len(s.Items))
		}
	}
}

func TestCartState_UnknownIDsAreNoop(t *testing.T) {
	s := EmptyCart().WithProduct(Product{ID: 1})
	if got := s.WithQuantity(42, 3); len(got.Items) != 1 || got.Items[0].Quantity != 1 {
		t.Fatalf("update of unknown id changed state: %+v", got)
	}
	if got := s.Without(42); len(got.Items) != 1 {
		t.Fatalf("remove of unknown id changed state: %+v", got)
	}
}

func TestCartState_ClearKeepsOpenFlag(t *testing.T) {
	s := EmptyCart().Toggled().WithProduct(Product{ID: 1, Price: 5})
	s = s.Cleared()
	if len(s.Items) != 0 || s.TotalItems() != 0 || !s.TotalPrice().IsZero() {
		t.Fatalf("not cleared: %+v", s)
	}
	if !s.IsCartOpen {
		t.Fatalf("open flag lost")
	}
}

func TestCartState_Totals(t *testing.T) {
	a := Product{ID: 1, Price: 100, DiscountPercentage: 10}
	s := EmptyCart().WithProduct(a).WithProduct(a)
	if s.TotalItems() != 2 {
		t.Fatalf("totalItems want 2 got %d", s.TotalItems())
	}
	if !s.TotalPrice().Equal(decimal.NewFromInt(180)) {
		t.Fatalf("totalPrice want 180 got %s", s.TotalPrice())
	}

	s = s.WithQuantity(1, 5)
	if s.TotalItems() != 5 || !s.TotalPrice().Equal(decimal.NewFromInt(450)) {
		t.Fatalf("after update: %d %s", s.TotalItems(), s.TotalPrice())
	}

	s = s.Without(1)
	if s.TotalItems() != 0 || len(s.Items) != 0 {
		t.Fatalf("after remove: %+v", s)
	}
}

func TestCartState_TotalNotRounded(t *testing.T) {
	// 9.99 * 0.85 = 8.4915
	p := Product{ID: 1, Price: 9.99, DiscountPercentage: 15}
	s := EmptyCart().WithProduct(p)
	if !s.TotalPrice().Equal(decimal.RequireFromString("8.4915")) {
		t.Fatalf("unexpected total %s", s.TotalPrice())
	}
	if FormatPrice(s.TotalPrice()) != "8.49" {
		t.Fatalf("unexpected display %s", FormatPrice(s.TotalPrice()))
	}
}
