package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth    AuthConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Payroll PayrollConfig
	Org     OrgConfig
	SMTP    SMTPConfig
	LLM     LLMConfig
}

type AuthConfig struct {
	AccessSecret  string        `env:"JWT_SECRET"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL,    default=24h"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL,   default=168h"`
	RefreshLimit  int           `env:"REFRESH_TOKEN_LIMIT, default=5"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=ems"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type PayrollConfig struct {
	BaseSalary   decimal.Decimal `env:"PAYROLL_BASE_SALARY, default=50000"`
	TaxRate      decimal.Decimal `env:"PAYROLL_TAX_RATE,    default=0.10"`
	PFRate       decimal.Decimal `env:"PAYROLL_PF_RATE,     default=0.12"`
	Concurrency  int             `env:"PAYROLL_CONCURRENCY, default=4"`
	Schedule     string          `env:"PAYROLL_SCHEDULE,    default=0 2 1 * *"`
	HolidaysFile string          `env:"PAYROLL_HOLIDAYS_FILE"`
}

type OrgConfig struct {
	Name     string `env:"ORG_NAME,     default=B2World"`
	Timezone string `env:"ORG_TIMEZONE, default=UTC"`
}

// Location resolves Timezone.
func (o OrgConfig) Location() (*time.Location, error) {
	return time.LoadLocation(o.Timezone)
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM, default=no-reply@b2world.local"`
}

type LLMConfig struct {
	APIKey  string `env:"LLM_API_KEY"`
	BaseURL string `env:"LLM_BASE_URL"`
	Model   string `env:"LLM_MODEL"`
}

// Load reads a .env file when present, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.AccessSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.RefreshSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required"))
	}
	if c.Auth.AccessSecret != "" && c.Auth.AccessSecret == c.Auth.RefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.Auth.RefreshLimit < 1 {
		errs = append(errs, errors.New("REFRESH_TOKEN_LIMIT must be at least 1"))
	}
	if !c.Payroll.BaseSalary.IsPositive() {
		errs = append(errs, errors.New("PAYROLL_BASE_SALARY must be positive"))
	}
	if c.Payroll.TaxRate.IsNegative() || c.Payroll.PFRate.IsNegative() ||
		c.Payroll.TaxRate.Add(c.Payroll.PFRate).GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, errors.New("payroll rates must be non-negative and sum to at most 1"))
	}
	if _, err := c.Org.Location(); err != nil {
		errs = append(errs, fmt.Errorf("ORG_TIMEZONE: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the server runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
