package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/vitalcosmeticos/catalog/pkg/config"
	"github.com/vitalcosmeticos/catalog/pkg/database"
)

// Config holds all configuration for the catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort         int           `env:"HTTP_PORT" envDefault:"8080"`
	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	CORSOrigins      []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"vital"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"vital_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"catalog"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns   int32  `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns   int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka. When disabled, contact events are applied in-process.
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"catalog-notifications"`

	// Auth
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTAccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"24h"`
	AdminEmail    string        `env:"ADMIN_EMAIL"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	AdminName     string        `env:"ADMIN_NAME" envDefault:"Administrador"`

	// Catalog
	DefaultPageSize int `env:"CATALOG_PAGE_SIZE" envDefault:"12"`
	MaxPageSize     int `env:"CATALOG_MAX_PAGE_SIZE" envDefault:"100"`

	// Export
	ImageFetchTimeout time.Duration `env:"EXPORT_IMAGE_TIMEOUT" envDefault:"10s"`
	MaxImageBytes     int64         `env:"EXPORT_MAX_IMAGE_BYTES" envDefault:"8388608"`
	ImageConcurrency  int           `env:"EXPORT_IMAGE_CONCURRENCY" envDefault:"6"`
	ExportScale       float64       `env:"EXPORT_SCALE" envDefault:"2"`
	ImageProxyOrigin  string        `env:"IMAGE_PROXY_ORIGIN" envDefault:"https://vitalcosmeticos.com.br"`
	ImageProxyPrefix  string        `env:"IMAGE_PROXY_PREFIX" envDefault:"/api/v1/proxy-image"`

	// Store contact details used in exported pages and share links
	StorePhone         string `env:"STORE_WHATSAPP" envDefault:"5511999999999"`
	StoreDisplayPhone  string `env:"STORE_DISPLAY_PHONE" envDefault:"(11) 99999-9999"`
	StoreEmail         string `env:"STORE_EMAIL" envDefault:"contato@vitalcosmeticos.com.br"`
	DefaultCountryCode string `env:"DEFAULT_COUNTRY_CODE" envDefault:"55"`

	// Notifications
	ToastTTL          time.Duration `env:"NOTIFICATION_TOAST_TTL" envDefault:"5s"`
	LatestContacts    int           `env:"NOTIFICATION_LATEST_SIZE" envDefault:"5"`
	ReconcileInterval time.Duration `env:"NOTIFICATION_RECONCILE_INTERVAL" envDefault:"1m"`

	// Visitor state and caches
	PromoFlagTTL     time.Duration `env:"VISITOR_PROMO_TTL" envDefault:"12h"`
	FavoriteCacheTTL time.Duration `env:"FAVORITE_CACHE_TTL" envDefault:"10m"`

	// Rate limiting (requests per minute per IP)
	ContactRateLimit int `env:"RATE_LIMIT_CONTACT_PER_MIN" envDefault:"10"`
	ExportRateLimit  int `env:"RATE_LIMIT_EXPORT_PER_MIN" envDefault:"20"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`

	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads .env (when present) and then the environment.
func Load() (*Config, error) {
	if err := pkgconfig.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.DefaultPageSize < 1 || c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("page sizes must satisfy 1 <= CATALOG_PAGE_SIZE <= CATALOG_MAX_PAGE_SIZE")
	}
	if c.LatestContacts < 1 {
		return fmt.Errorf("NOTIFICATION_LATEST_SIZE must be positive")
	}
	if c.ImageConcurrency < 1 || c.MaxImageBytes < 1 || c.ExportScale <= 0 {
		return fmt.Errorf("export settings must be positive")
	}
	if c.ContactRateLimit < 1 || c.ExportRateLimit < 1 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// Postgres maps the flat settings onto the pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	pg.MaxConns = c.DBMaxConns
	pg.MinConns = c.DBMinConns
	return pg
}

func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
