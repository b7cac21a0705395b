package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/domain"
	httpapi "storefront/internal/http"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/service"

	_ "storefront/docs"
)

const serviceName = "storefront"

func main() {
	cliApp := &cli.App{
		Name:  serviceName,
		Usage: "browse the product catalog and keep a shopping cart",
		Flags: config.Flags(),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "products",
				Usage: "list one page of products",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "search"},
				},
				Action: listProducts,
			},
			{
				Name:   "categories",
				Usage:  "list category tags",
				Action: listCategories,
			},
			{
				Name:      "search",
				Usage:     "search products",
				ArgsUsage: "QUERY",
				Flags:     []cli.Flag{&cli.IntFlag{Name: "page", Value: 1}},
				Action:    searchProducts,
			},
			{
				Name:  "cart",
				Usage: "inspect or change the persisted cart",
				Subcommands: []*cli.Command{
					{Name: "show", Action: cartCmd(showCart)},
					{Name: "add", ArgsUsage: "PRODUCT_ID", Action: cartCmd(addToCart)},
					{Name: "remove", ArgsUsage: "PRODUCT_ID", Action: cartCmd(removeFromCart)},
					{Name: "set", ArgsUsage: "PRODUCT_ID QUANTITY", Action: cartCmd(setQuantity)},
					{Name: "clear", Action: cartCmd(func(_ *cli.Context, a *app) error { a.store.ClearCart(); return nil })},
					{Name: "toggle", Action: cartCmd(func(_ *cli.Context, a *app) error { a.store.ToggleCart(); return nil })},
				},
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds everything a command needs.
type app struct {
	cfg      config.Config
	log      *logrus.Logger
	repo     repository.CartRepository
	feed     *notify.Feed
	store    *cart.Store
	products *service.ProductService
	closers  []func()
}

func newApp(c *cli.Context) (*app, error) {
	cfg, err := config.FromContext(c)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: cfg.NewLogger()}

	if cfg.OTLPEndpoint != "" {
		tp, err := initTracerProvider(c.Context, cfg.OTLPEndpoint)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				a.log.WithError(err).Warn("tracer shutdown")
			}
		})
	}

	if a.repo, err = a.openRepository(c.Context); err != nil {
		a.close()
		return nil, err
	}

	a.feed = notify.NewFeed(cfg.NotifyTTL)
	notifier := notify.Multi(notify.NewLogNotifier(a.log), a.feed)
	a.store = cart.NewStore(c.Context, a.repo, notifier, a.log)
	// store flushes before the backend goes away
	a.closers = append([]func(){a.store.Close}, a.closers...)

	client, err := catalog.New(cfg.CatalogURL,
		catalog.WithTimeout(cfg.CatalogTimeout),
		catalog.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		catalog.WithLogger(a.log),
	)
	if err != nil {
		a.close()
		return nil, err
	}
	a.products = service.NewProductService(client, cfg.PerPage)
	return a, nil
}

func (a *app) openRepository(ctx context.Context) (repository.CartRepository, error) {
	switch a.cfg.Store {
	case config.StoreMemory:
		return repository.NewMemoryStore(), nil
	case config.StoreRedis:
		rs := repository.NewRedisStore(a.cfg.RedisAddr)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("redis store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rs.Close() })
		return rs, nil
	default:
		fs, err := repository.NewFileStore(a.cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("file store: %w", err)
		}
		a.log.WithField("path", fs.Path()).Debug("cart file store")
		return fs, nil
	}
}

func (a *app) close() {
	for _, f := range a.closers {
		f()
	}
}

func serve(c *cli.Context) error {
	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.close()

	srv := httpapi.NewServer(a.products, service.NewBrowser(a.products), a.store, a.feed, a.log)
	httpServer := &http.Server{
		Addr:    a.cfg.Listen,
		Handler: srv.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", httpServer.Addr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		a.log.WithError(err).Warn("shutdown error")
	}
	return nil
}

func listProducts(c *cli.Context) error {
	return browse(c, service.Query{
		Page:     c.Int("page"),
		Category: c.String("category"),
		Search:   c.String("search"),
	})
}

func searchProducts(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: search QUERY", 2)
	}
	return browse(c, service.Query{Page: c.Int("page"), Search: c.Args().First()})
}

func browse(c *cli.Context, q service.Query) error {
	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.close()

	l, err := a.products.Browse(c.Context, q)
	if err != nil {
		return err
	}
	w := c.App.Writer
	for _, p := range l.Products {
		fmt.Fprintf(w, "%6d  %-40s %10s  %s\n", p.ID, p.Title, domain.FormatPrice(p.DiscountedPrice()), p.Category)
	}
	fmt.Fprintf(w, "page %d of %d, %d products\n", l.Page, l.TotalPages, l.Total)
	return nil
}

func listCategories(c *cli.Context) error {
	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.close()

	cats, err := a.products.Categories(c.Context)
	if err != nil {
		return err
	}
	for _, cat := range cats {
		fmt.Fprintln(c.App.Writer, cat)
	}
	return nil
}

// cartCmd runs fn against the persisted cart and prints the result.
func cartCmd(fn func(*cli.Context, *app) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		a, err := newApp(c)
		if err != nil {
			return err
		}
		if err := fn(c, a); err != nil {
			a.close()
			return err
		}
		a.close()
		return printCart(c.App.Writer, a.store.State())
	}
}

func showCart(*cli.Context, *app) error { return nil }

func addToCart(c *cli.Context, a *app) error {
	id, err := argID(c, 0)
	if err != nil {
		return err
	}
	p, err := a.products.GetByID(c.Context, id)
	if err != nil {
		return err
	}
	a.store.AddToCart(*p)
	return nil
}

func removeFromCart(c *cli.Context, a *app) error {
	id, err := argID(c, 0)
	if err != nil {
		return err
	}
	a.store.RemoveFromCart(id)
	return nil
}

func setQuantity(c *cli.Context, a *app) error {
	id, err := argID(c, 0)
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return cli.Exit("invalid quantity", 2)
	}
	a.store.UpdateQuantity(id, qty)
	return nil
}

func argID(c *cli.Context, i int) (int64, error) {
	id, err := strconv.ParseInt(c.Args().Get(i), 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Exit("invalid product id", 2)
	}
	return id, nil
}

func printCart(w io.Writer, s domain.CartState) error {
	out := struct {
		Items      []domain.CartItem `json:"items"`
		IsCartOpen bool              `json:"isCartOpen"`
		TotalItems int               `json:"totalItems"`
		TotalPrice string            `json:"totalPrice"`
	}{s.Items, s.IsCartOpen, s.TotalItems(), domain.FormatPrice(s.TotalPrice())}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func initTracerProvider(ctx context.Context, endpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String("v1.0.0"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp, nil
}
