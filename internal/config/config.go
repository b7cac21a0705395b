package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"storefront/internal/catalog"
	"storefront/internal/notify"
	"storefront/internal/service"
)

// Store backends
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config настройки процесса: флаги и переменные окружения STOREFRONT_*
type Config struct {
	CatalogURL     string        `validate:"required,url"`
	CatalogTimeout time.Duration `validate:"gt=0"`
	RateLimit      float64       `validate:"gte=0"`
	RateBurst      int           `validate:"gte=1"`
	PerPage        int           `validate:"gte=1,lte=100"`
	Store          string        `validate:"oneof=file memory redis"`
	DataDir        string        `validate:"required_if=Store file"`
	RedisAddr      string        `validate:"required_if=Store redis"`
	Listen         string        `validate:"required"`
	LogLevel       string        `validate:"oneof=trace debug info warn warning error"`
	LogFormat      string        `validate:"oneof=text json"`
	NotifyTTL      time.Duration `validate:"gt=0"`
	OTLPEndpoint   string
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "storefront")
	}
	return ".storefront"
}

// Flags общие флаги приложения
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "catalog-url", Value: catalog.DefaultBaseURL, Usage: "base URL of the product catalog", EnvVars: []string{"STOREFRONT_CATALOG_URL"}},
		&cli.DurationFlag{Name: "catalog-timeout", Value: 10 * time.Second, Usage: "timeout of a single catalog request", EnvVars: []string{"STOREFRONT_CATALOG_TIMEOUT"}},
		&cli.Float64Flag{Name: "rate-limit", Value: 0, Usage: "max catalog requests per second, 0 = unlimited", EnvVars: []string{"STOREFRONT_RATE_LIMIT"}},
		&cli.IntFlag{Name: "rate-burst", Value: 4, Usage: "catalog request burst", EnvVars: []string{"STOREFRONT_RATE_BURST"}},
		&cli.IntFlag{Name: "per-page", Value: service.DefaultPerPage, Usage: "products per page", EnvVars: []string{"STOREFRONT_PER_PAGE"}},
		&cli.StringFlag{Name: "store", Value: StoreFile, Usage: "cart storage: file, memory or redis", EnvVars: []string{"STOREFRONT_STORE"}},
		&cli.StringFlag{Name: "data-dir", Value: defaultDataDir(), Usage: "directory of the file store", EnvVars: []string{"STOREFRONT_DATA_DIR"}},
		&cli.StringFlag{Name: "redis-addr", Usage: "redis address or URL for the redis store", EnvVars: []string{"STOREFRONT_REDIS_ADDR", "REDIS_ADDR"}},
		&cli.StringFlag{Name: "listen", Value: ":9091", Usage: "HTTP listen address", EnvVars: []string{"STOREFRONT_LISTEN"}},
		&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"STOREFRONT_LOG_LEVEL"}},
		&cli.StringFlag{Name: "log-format", Value: "text", Usage: "text or json", EnvVars: []string{"STOREFRONT_LOG_FORMAT"}},
		&cli.DurationFlag{Name: "notify-ttl", Value: notify.DefaultTTL, Usage: "how long notifications stay visible", EnvVars: []string{"STOREFRONT_NOTIFY_TTL"}},
		&cli.StringFlag{Name: "otlp-endpoint", Usage: "OTLP gRPC collector, tracing is off when empty", EnvVars: []string{"OTEL_EXPORTER_OTLP_ENDPOINT"}},
	}
}

// FromContext собирает Config из разобранных флагов и проверяет его
func FromContext(c *cli.Context) (Config, error) {
	cfg := Config{
		CatalogURL:     c.String("catalog-url"),
		CatalogTimeout: c.Duration("catalog-timeout"),
		RateLimit:      c.Float64("rate-limit"),
		RateBurst:      c.Int("rate-burst"),
		PerPage:        c.Int("per-page"),
		Store:          c.String("store"),
		DataDir:        c.String("data-dir"),
		RedisAddr:      c.String("redis-addr"),
		Listen:         c.String("listen"),
		LogLevel:       c.String("log-level"),
		LogFormat:      c.String("log-format"),
		NotifyTTL:      c.Duration("notify-ttl"),
		OTLPEndpoint:   c.String("otlp-endpoint"),
	}
	return cfg, cfg.Validate()
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// NewLogger логгер по настройкам; json использует те же ключи, что и остальные сервисы
func (c Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stderr
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.Level = lvl
	}
	if c.LogFormat == "json" {
		log.Formatter = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "severity",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	} else {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}
	return log
}
