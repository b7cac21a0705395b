package service

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
)

// DefaultPerPage размер страницы витрины
const DefaultPerPage = 8

var ErrInvalidInput = errors.New("invalid input")

// Query параметры выдачи. Поиск важнее категории, категория важнее общего списка.
type Query struct {
	Page     int
	Category string
	Search   string
}

// Listing одна страница витрины
type Listing struct {
	Products   []domain.Product `json:"products"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Category   string           `json:"category,omitempty"`
	Search     string           `json:"search,omitempty"`
}

// ProductService инкапсулирует логику выдачи товаров поверх каталога
type ProductService struct {
	catalog Catalog
	perPage int
}

func NewProductService(catalog Catalog, perPage int) *ProductService {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &ProductService{catalog: catalog, perPage: perPage}
}

func (s *ProductService) PerPage() int { return s.perPage }

// Browse возвращает страницу витрины. Ошибка каталога пробрасывается как есть.
func (s *ProductService) Browse(ctx context.Context, q Query) (*Listing, error) {
	q = normalizeQuery(q)
	skip := (q.Page - 1) * s.perPage

	var (
		page *domain.ProductPage
		err  error
	)
	switch {
	case q.Search != "":
		page, err = s.catalog.SearchPage(ctx, q.Search, s.perPage, skip)
	case q.Category != "":
		page, err = s.catalog.ProductsByCategory(ctx, q.Category, s.perPage, skip)
	default:
		page, err = s.catalog.Products(ctx, s.perPage, skip)
	}
	if err != nil {
		return nil, err
	}

	products := page.Products
	if products == nil {
		products = []domain.Product{}
	}
	return &Listing{
		Products:   products,
		Total:      page.Total,
		Page:       q.Page,
		TotalPages: totalPages(page.Total, s.perPage),
		Category:   q.Category,
		Search:     q.Search,
	}, nil
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.catalog.Product(ctx, id)
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.catalog.Categories(ctx)
}

func normalizeQuery(q Query) Query {
	q.Search = strings.TrimSpace(q.Search)
	q.Category = strings.TrimSpace(q.Category)
	if q.Search != "" {
		// search ignores the category filter
		q.Category = ""
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

func totalPages(total, perPage int) int {
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
