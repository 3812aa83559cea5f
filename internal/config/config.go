package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ErrConfigLoad marks any failure to produce a usable configuration.
var ErrConfigLoad = errors.New("config load failure")

// Config holds all application configuration.
type Config struct {
	Timezone string `yaml:"timezone" envconfig:"TIMEZONE"`
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	Wholesale struct {
		BaseURL     string   `yaml:"base_url" envconfig:"ENTSOE_URL"`
		Token       string   `yaml:"token" envconfig:"ENTSOE_TOKEN"`
		Zones       []string `yaml:"zones" envconfig:"ZONES"`
		HorizonDays int      `yaml:"horizon_days" envconfig:"HORIZON_DAYS"`
	} `yaml:"wholesale"`
	Conversion struct {
		BaseURL        string        `yaml:"base_url" envconfig:"EXCHANGE_URL"`
		Token          string        `yaml:"token" envconfig:"EXCHANGE_TOKEN"`
		SourceCurrency string        `yaml:"source_currency" envconfig:"SOURCE_CURRENCY"`
		TargetCurrency string        `yaml:"target_currency" envconfig:"TARGET_CURRENCY"`
		MaxAge         time.Duration `yaml:"max_age" envconfig:"MAX_AGE"`
	} `yaml:"conversion"`
	Tariff struct {
		Supplier      string             `yaml:"supplier" envconfig:"SUPPLIER"`
		UnitScale     float64            `yaml:"unit_scale" envconfig:"UNIT_SCALE"`
		TaxMultiplier float64            `yaml:"tax_multiplier" envconfig:"TAX_MULTIPLIER"`
		Markups       map[string]float64 `yaml:"markups" envconfig:"MARKUPS"`
	} `yaml:"tariff"`
	Publish struct {
		Zone  string `yaml:"zone" envconfig:"PUBLISH_ZONE"`
		Topic string `yaml:"topic" envconfig:"TOPIC"`
	} `yaml:"publish"`
	Broker struct {
		Host     string        `yaml:"host" envconfig:"HOST"`
		Port     int           `yaml:"port"`
		ClientID string        `yaml:"client_id" split_words:"true"`
		Username string        `yaml:"username"`
		Password string        `yaml:"password"`
		Timeout  time.Duration `yaml:"timeout"`
		Retries  *int          `yaml:"retries"`
		DryRun   bool          `yaml:"dry_run" split_words:"true"`
	} `yaml:"broker"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Store struct {
		SQLitePath    string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
		RedisAddr     string `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
		RedisPassword string `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
		RedisDB       int    `yaml:"redis_db" envconfig:"REDIS_DB"`
		StateFile     string `yaml:"state_file" envconfig:"STATE_FILE"`
	} `yaml:"store"`
	HTTP struct {
		Timeout time.Duration `yaml:"timeout"`
		Proxy   string        `yaml:"proxy" envconfig:"HTTPS_PROXY"`
	} `yaml:"http"`
}

// Load reads config from a YAML file, then applies .env and environment variable
// overrides. Both WHOLESALE_ENTSOE_TOKEN and ENTSOE_TOKEN style names are accepted.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: read config: %v", ErrConfigLoad, err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse config: %v", ErrConfigLoad, err)
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrConfigLoad, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = "Europe/Oslo"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Wholesale.BaseURL == "" {
		c.Wholesale.BaseURL = "https://web-api.tp.entsoe.eu/api"
	}
	if len(c.Wholesale.Zones) == 0 {
		c.Wholesale.Zones = []string{"NO_2"}
	}
	if c.Wholesale.HorizonDays == 0 {
		c.Wholesale.HorizonDays = 3
	}
	if c.Conversion.BaseURL == "" {
		c.Conversion.BaseURL = "https://v6.exchangerate-api.com/v6"
	}
	if c.Conversion.SourceCurrency == "" {
		c.Conversion.SourceCurrency = "EUR"
	}
	if c.Conversion.TargetCurrency == "" {
		c.Conversion.TargetCurrency = "NOK"
	}
	if c.Conversion.MaxAge == 0 {
		c.Conversion.MaxAge = 24 * time.Hour
	}
	if c.Tariff.Supplier == "" {
		c.Tariff.Supplier = "lyse"
	}
	if c.Tariff.UnitScale == 0 {
		c.Tariff.UnitScale = 0.1 // EUR/MWh -> øre/kWh once converted to NOK
	}
	if c.Tariff.TaxMultiplier == 0 {
		c.Tariff.TaxMultiplier = 1.25
	}
	if c.Tariff.Markups == nil {
		c.Tariff.Markups = map[string]float64{
			"lyse":   3.2,
			"tibber": 1.0,
		}
	}
	if c.Publish.Zone == "" {
		c.Publish.Zone = c.Wholesale.Zones[0]
	}
	if c.Publish.Topic == "" {
		c.Publish.Topic = "power_price"
	}
	if c.Broker.Port == 0 {
		c.Broker.Port = 1883
	}
	if c.Broker.Timeout == 0 {
		c.Broker.Timeout = 10 * time.Second
	}
	if c.Broker.Retries == nil {
		retries := 2
		c.Broker.Retries = &retries
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = 30 * time.Second
	}
}

// Location resolves the reference timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Wholesale.Token == "" {
		return fmt.Errorf("wholesale.token is required")
	}
	if c.Conversion.Token == "" {
		return fmt.Errorf("conversion.token is required")
	}
	if c.Broker.Host == "" && !c.Broker.DryRun {
		return fmt.Errorf("broker.host is required")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone %q: %v", c.Timezone, err)
	}
	if c.Wholesale.HorizonDays < 1 {
		return fmt.Errorf("wholesale.horizon_days must be positive")
	}
	if c.Broker.Retries != nil && *c.Broker.Retries < 0 {
		return fmt.Errorf("broker.retries must not be negative")
	}
	if c.Conversion.MaxAge < 0 {
		return fmt.Errorf("conversion.max_age must not be negative")
	}
	if c.Tariff.UnitScale <= 0 {
		return fmt.Errorf("tariff.unit_scale must be positive")
	}
	if c.Tariff.TaxMultiplier <= 0 {
		return fmt.Errorf("tariff.tax_multiplier must be positive")
	}
	for supplier, m := range c.Tariff.Markups {
		if m < 0 {
			return fmt.Errorf("tariff.markups.%s must not be negative", supplier)
		}
	}
	found := false
	for _, z := range c.Wholesale.Zones {
		if z == "" {
			return fmt.Errorf("empty zone in wholesale.zones")
		}
		if z == c.Publish.Zone {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("publish.zone %q is not in wholesale.zones", c.Publish.Zone)
	}
	return nil
}
