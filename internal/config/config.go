package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-HotelService/internal/domain"
)

// Config конфигурация сервиса, загружается один раз в main
// и передается в конструкторы явно
type Config struct {
	Server         ServerConfig      `toml:"server"`
	Database       DatabaseConfig    `toml:"database"`
	Logs           LogsConfig        `toml:"logs"`
	Metrics        MetricsConfig     `toml:"metrics"`
	Holds          HoldsConfig       `toml:"holds"`
	Pricing        PricingConfig     `toml:"pricing"`
	PaymentService IntegrationConfig `toml:"payment_service"`
	CouponService  IntegrationConfig `toml:"coupon_service"`
	NotifyService  IntegrationConfig `toml:"notify_service"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// HoldsConfig параметры жизненного цикла холдов
type HoldsConfig struct {
	DurationMinutes int `toml:"duration_minutes"`
	MaxExtensions   int `toml:"max_extensions"`
	SweepBatchSize  int `toml:"sweep_batch_size"`
}

// ToDomain конвертирует в доменную конфигурацию с дефолтами
func (c *HoldsConfig) ToDomain() domain.HoldConfig {
	cfg := domain.HoldConfig{
		Duration:      time.Duration(c.DurationMinutes) * time.Minute,
		MaxExtensions: c.MaxExtensions,
		SweepBatch:    c.SweepBatchSize,
	}
	if cfg.Duration <= 0 {
		cfg.Duration = domain.DefaultHoldDuration
	}
	if cfg.MaxExtensions <= 0 {
		cfg.MaxExtensions = domain.DefaultMaxExtensions
	}
	if cfg.SweepBatch <= 0 {
		cfg.SweepBatch = domain.DefaultSweepBatch
	}
	return cfg
}

// PricingConfig параметры ценообразования
type PricingConfig struct {
	TaxRatePercent float64            `toml:"tax_rate_percent"`
	MealPlanPrices map[string]float64 `toml:"meal_plan_prices"`
}

// ToDomain конвертирует в доменную конфигурацию
func (c *PricingConfig) ToDomain() domain.PricingConfig {
	prices := c.MealPlanPrices
	if prices == nil {
		prices = map[string]float64{}
	}
	return domain.PricingConfig{
		TaxRatePercent: c.TaxRatePercent,
		MealPlanPrices: prices,
	}
}

type IntegrationConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("server.http_port must be positive")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("database.host and database.dbname are required")
	}
	if c.Pricing.TaxRatePercent < 0 {
		return fmt.Errorf("pricing.tax_rate_percent must not be negative")
	}
	return nil
}
