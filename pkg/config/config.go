package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Catalog      CatalogConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Catalog.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"CATALOG_APP_ENV" required:"true"`
	Port         string   `envconfig:"CATALOG_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"CATALOG_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"CATALOG_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"CATALOG_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"CATALOG_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CATALOG_DB_DSN"`
	Driver string `envconfig:"CATALOG_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CATALOG_DB_HOST"`
	LegacyPort     int    `envconfig:"CATALOG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CATALOG_DB_USER"`
	LegacyPassword string `envconfig:"CATALOG_DB_PASSWORD"`
	LegacyName     string `envconfig:"CATALOG_DB_NAME"`
	LegacySSLMode  string `envconfig:"CATALOG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CATALOG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CATALOG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"CATALOG_DB_SLOW_QUERY" default:"200ms"`
}

// RedisConfig is optional: without a URL or address the API runs without
// idempotency replay and without the generation rate limit.
type RedisConfig struct {
	URL          string        `envconfig:"CATALOG_REDIS_URL"`
	Address      string        `envconfig:"CATALOG_REDIS_ADDR"`
	Password     string        `envconfig:"CATALOG_REDIS_PASSWORD"`
	DB           int           `envconfig:"CATALOG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CATALOG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CATALOG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CATALOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CATALOG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CATALOG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// JWTConfig verifies the HS256 tokens issued by the identity service. An
// empty Audience skips the aud check.
type JWTConfig struct {
	Secret            string        `envconfig:"CATALOG_JWT_SECRET" required:"true"`
	Issuer            string        `envconfig:"CATALOG_JWT_ISSUER" required:"true"`
	Audience          string        `envconfig:"CATALOG_JWT_AUDIENCE"`
	ExpirationMinutes int           `envconfig:"CATALOG_JWT_EXPIRATION_MINUTES" default:"60"`
	Leeway            time.Duration `envconfig:"CATALOG_JWT_LEEWAY" default:"30s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CATALOG_AUTO_MIGRATE" default:"false"`
}

// CatalogConfig holds the guards around variant generation.
type CatalogConfig struct {
	MaxGeneratedCombinations int           `envconfig:"CATALOG_MAX_GENERATED_COMBINATIONS" default:"500"`
	SKUSuffixLength          int           `envconfig:"CATALOG_SKU_SUFFIX_LENGTH" default:"6"`
	SKUSuffixMaxLength       int           `envconfig:"CATALOG_SKU_SUFFIX_MAX_LENGTH" default:"16"`
	GenerationRateWindow     time.Duration `envconfig:"CATALOG_GENERATION_RATE_WINDOW" default:"1m"`
	GenerationRateLimit      int           `envconfig:"CATALOG_GENERATION_RATE_LIMIT" default:"10"`
}

func (c CatalogConfig) validate() error {
	if c.MaxGeneratedCombinations <= 0 {
		return fmt.Errorf("%s must be positive", EnvMaxGeneratedCombinations)
	}
	if c.SKUSuffixLength <= 0 || c.SKUSuffixLength > 32 {
		return fmt.Errorf("%s must be between 1 and 32", EnvSKUSuffixLength)
	}
	if c.SKUSuffixMaxLength < c.SKUSuffixLength || c.SKUSuffixMaxLength > 32 {
		return fmt.Errorf("%s must be between %s and 32", EnvSKUSuffixMaxLength, EnvSKUSuffixLength)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
