// Package catalog is a thin read-only client for the remote product catalog.
//
// Every call is a single GET with no retry and no caching. Any failure,
// transport or HTTP, is reported as ErrUnavailable; callers never get empty
// data in place of an error.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"storefront/internal/domain"
)

// DefaultBaseURL is the public demo catalog the storefront was built against.
const DefaultBaseURL = "https://dummyjson.com"

// ErrUnavailable is returned when a catalog request does not complete successfully.
var ErrUnavailable = errors.New("catalog unavailable")

type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	log     logrus.FieldLogger
	tracer  trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// WithRateLimit caps outbound requests per second; rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid catalog url %q", baseURL)
	}
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: 10 * time.Second},
		log:    logrus.StandardLogger(),
		tracer: otel.Tracer("storefront/catalog"),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Products lists the catalog page by page.
func (c *Client) Products(ctx context.Context, limit, skip int) (*domain.ProductPage, error) {
	var page domain.ProductPage
	if err := c.get(ctx, "products", "/products", pageQuery(limit, skip), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ProductsByCategory(ctx context.Context, category string, limit, skip int) (*domain.ProductPage, error) {
	var page domain.ProductPage
	path := "/products/category/" + url.PathEscape(category)
	if err := c.get(ctx, "products_by_category", path, pageQuery(limit, skip), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Search is SearchPage from the first result.
func (c *Client) Search(ctx context.Context, query string, limit int) (*domain.ProductPage, error) {
	return c.SearchPage(ctx, query, limit, 0)
}

func (c *Client) SearchPage(ctx context.Context, query string, limit, skip int) (*domain.ProductPage, error) {
	q := pageQuery(limit, skip)
	q.Set("q", query)
	var page domain.ProductPage
	if err := c.get(ctx, "search", "/products/search", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Product(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	path := "/products/" + strconv.FormatInt(id, 10)
	if err := c.get(ctx, "product", path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Categories returns category tags in catalog order. Both the flat string
// list and the {slug,name,url} object list are understood.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var raw []json.RawMessage
	if err := c.get(ctx, "categories", "/products/categories", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		tag, err := categoryTag(r)
		if err != nil {
			return nil, fmt.Errorf("%w: categories: %v", ErrUnavailable, err)
		}
		out = append(out, tag)
	}
	return out, nil
}

func categoryTag(r json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(r, &s); err == nil {
		return s, nil
	}
	var obj struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(r, &obj); err != nil {
		return "", err
	}
	if obj.Slug != "" {
		return obj.Slug, nil
	}
	return obj.Name, nil
}

func pageQuery(limit, skip int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	return q
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "catalog."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.log.WithError(err).WithField("op", op).Warn("catalog request failed")
		}
		span.End()
	}()

	endpoint := c.base + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	span.SetAttributes(attribute.String("http.url", endpoint))

	if c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, werr)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s: status %d", ErrUnavailable, op, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode: %v", ErrUnavailable, op, err)
	}
	return nil
}
