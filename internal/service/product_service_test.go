package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/mock/gomock"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/service/mocks"
)

func setupPS(t *testing.T) (*ProductService, *mocks.MockCatalog) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := mocks.NewMockCatalog(ctrl)
	return NewProductService(m, 0), m
}

func page(total int, ids ...int64) *domain.ProductPage {
	p := &domain.ProductPage{Total: total}
	for _, id := range ids {
		p.Products = append(p.Products, domain.Product{ID: id})
	}
	return p
}

func TestBrowse_PlainListing(t *testing.T) {
	ctx := context.Background()
	ps, m := setupPS(t)
	m.EXPECT().Products(gomock.Any(), 8, 16).Return(page(194, 17, 18), nil)

	l, err := ps.Browse(ctx, Query{Page: 3})
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if l.Page != 3 || l.Total != 194 || l.TotalPages != 25 {
		t.Fatalf("unexpected listing %+v", l)
	}
	if len(l.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(l.Products))
	}
}

func TestBrowse_CategoryFilter(t *testing.T) {
	ctx := context.Background()
	ps, m := setupPS(t)
	m.EXPECT().ProductsByCategory(gomock.Any(), "laptops", 8, 8).Return(page(17, 9), nil)

	l, err := ps.Browse(ctx, Query{Page: 2, Category: " laptops "})
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if l.TotalPages != 3 || l.Category != "laptops" {
		t.Fatalf("unexpected listing %+v", l)
	}
}

func TestBrowse_SearchWinsOverCategory(t *testing.T) {
	ctx := context.Background()
	ps, m := setupPS(t)
	m.EXPECT().SearchPage(gomock.Any(), "phone", 8, 0).Return(page(0), nil)

	l, err := ps.Browse(ctx, Query{Page: 0, Category: "laptops", Search: "phone"})
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if l.Page != 1 || l.TotalPages != 1 || l.Category != "" || l.Products == nil {
		t.Fatalf("unexpected listing %+v", l)
	}
}

func TestBrowse_CatalogUnavailable(t *testing.T) {
	ctx := context.Background()
	ps, m := setupPS(t)
	m.EXPECT().ProductsByCategory(gomock.Any(), "smartphones", 8, 0).
		Return(nil, fmt.Errorf("%w: products_by_category: status 503", catalog.ErrUnavailable))

	l, err := ps.Browse(ctx, Query{Category: "smartphones"})
	if l != nil {
		t.Fatalf("expected no listing, got %+v", l)
	}
	if !errors.Is(err, catalog.ErrUnavailable) {
		t.Fatalf("expected catalog unavailable, got %v", err)
	}
}

func TestGetByID_Invalid(t *testing.T) {
	ps, _ := setupPS(t)
	if _, err := ps.GetByID(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct{ total, per, want int }{
		{0, 8, 1}, {1, 8, 1}, {8, 8, 1}, {9, 8, 2}, {100, 8, 13},
	}
	for _, c := range cases {
		if got := totalPages(c.total, c.per); got != c.want {
			t.Fatalf("totalPages(%d,%d)=%d want %d", c.total, c.per, got, c.want)
		}
	}
}
