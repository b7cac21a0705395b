package service

import (
	"context"

	"storefront/internal/domain"
)

//go:generate mockgen -source=catalog.go -destination=mocks/catalog.go -package=mocks

// Catalog источник товаров; реализуется catalog.Client
type Catalog interface {
	Products(ctx context.Context, limit, skip int) (*domain.ProductPage, error)
	ProductsByCategory(ctx context.Context, category string, limit, skip int) (*domain.ProductPage, error)
	SearchPage(ctx context.Context, query string, limit, skip int) (*domain.ProductPage, error)
	Product(ctx context.Context, id int64) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}
