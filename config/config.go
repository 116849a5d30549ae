package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"rhombick-backend/billing"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Tax       TaxConfig       `mapstructure:"tax"`
	Seller    SellerConfig    `mapstructure:"seller"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	BodyLimitBytes  int           `mapstructure:"body_limit_bytes"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// DBConfig selects the GORM driver and its connection settings.
type DBConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, mysql, sqlite
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	TimeZone        string        `mapstructure:"timezone"`
	Path            string        `mapstructure:"path"` // sqlite file, ":memory:" allowed
	MaxOpen         int           `mapstructure:"max_open"`
	MaxIdle         int           `mapstructure:"max_idle"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
}

// DSN returns the driver-specific connection string.
func (d *DBConfig) DSN() string {
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.Name)
	case "sqlite":
		return d.Path
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone)
	}
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig tunes the global limiter.
type RateLimitConfig struct {
	Max    int           `mapstructure:"max"`
	Window time.Duration `mapstructure:"window"`
}

// AuthConfig switches bearer authentication on for /api.
type AuthConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
}

// TaxConfig configures the tax policy.
type TaxConfig struct {
	HomeJurisdiction string  `mapstructure:"home_jurisdiction"`
	LocalRateA       float64 `mapstructure:"local_rate_a"`
	LocalRateB       float64 `mapstructure:"local_rate_b"`
	InterstateRate   float64 `mapstructure:"interstate_rate"`
}

// Policy converts the configuration into a billing.TaxPolicy.
func (t TaxConfig) Policy() billing.TaxPolicy {
	return billing.TaxPolicy{
		HomeJurisdiction: t.HomeJurisdiction,
		LocalRateA:       t.LocalRateA,
		LocalRateB:       t.LocalRateB,
		InterstateRate:   t.InterstateRate,
	}
}

// SellerConfig is printed on invoice documents.
type SellerConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	GSTIN   string `mapstructure:"gstin"`
	Email   string `mapstructure:"email"`
	Phone   string `mapstructure:"phone"`
}

// Load reads an optional .env file and then environment variables with the RHOMBICK_ prefix.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("RHOMBICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key, "RHOMBICK_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Hosting platforms set PORT; it wins unless RHOMBICK_SERVER_PORT is explicit.
	if port := os.Getenv("PORT"); port != "" && os.Getenv("RHOMBICK_SERVER_PORT") == "" {
		cfg.Server.Port = ":" + port
	}
	cfg.CORS.AllowedOrigins = splitList(v.GetString("cors.allowed_origins"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.body_limit_bytes", 4*1024*1024)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.environment", "development")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "rhombick")
	v.SetDefault("db.password", "rhombick")
	v.SetDefault("db.name", "rhombick")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Kolkata")
	v.SetDefault("db.path", "rhombick.db")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.log_level", "warn")
	v.SetDefault("db.slow_threshold", "200ms")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("cors.allowed_origins", "*")

	v.SetDefault("rate_limit.max", 120)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_expiry", "24h")

	def := billing.DefaultTaxPolicy()
	v.SetDefault("tax.home_jurisdiction", def.HomeJurisdiction)
	v.SetDefault("tax.local_rate_a", def.LocalRateA)
	v.SetDefault("tax.local_rate_b", def.LocalRateB)
	v.SetDefault("tax.interstate_rate", def.InterstateRate)

	v.SetDefault("seller.name", "Rhombick")
	v.SetDefault("seller.address", "Bengaluru, Karnataka, India")
	v.SetDefault("seller.gstin", "")
	v.SetDefault("seller.email", "")
	v.SetDefault("seller.phone", "")
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("config: unsupported db driver %q (postgres, mysql, sqlite)", c.DB.Driver)
	}
	if c.Auth.Enabled && strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("config: auth enabled but RHOMBICK_AUTH_JWT_SECRET is empty")
	}
	if c.RateLimit.Max < 0 {
		return errors.New("config: rate_limit.max must not be negative")
	}
	if err := c.Tax.Policy().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// IsProduction reports whether the server runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func splitList(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
