package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ierr "github.com/flexprice/recurly-client/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Recurly RecurlyConfig `mapstructure:"recurly" validate:"required"`
	HTTP    HTTPConfig    `mapstructure:"http" validate:"required"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging" validate:"required"`
	S3      S3Config      `mapstructure:"s3"`
	Sentry  SentryConfig  `mapstructure:"sentry"`
}

// RecurlyConfig points the client at an account on the billing api
type RecurlyConfig struct {
	Subdomain  string `mapstructure:"subdomain" validate:"required_without=BaseURL"`
	APIKey     string `mapstructure:"api_key" validate:"required"`
	BaseURL    string `mapstructure:"base_url" validate:"omitempty,url"`
	APIVersion string `mapstructure:"api_version" validate:"required"`
	PageSize   int    `mapstructure:"page_size" validate:"min=1,max=200"`
}

type HTTPConfig struct {
	Timeout      time.Duration `mapstructure:"timeout" validate:"required"`
	RetryMax     int           `mapstructure:"retry_max" validate:"min=0,max=10"`
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
	// RateLimit is in requests per second, 0 disables limiting
	RateLimit float64 `mapstructure:"rate_limit" validate:"min=0"`
	RateBurst int     `mapstructure:"rate_burst" validate:"min=0"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	PDFTTL  time.Duration `mapstructure:"pdf_ttl"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

type S3Config struct {
	Enabled             bool         `mapstructure:"enabled"`
	Region              string       `mapstructure:"region" validate:"required_if=Enabled true"`
	InvoiceBucketConfig BucketConfig `mapstructure:"invoice_bucket_config"`
}

type BucketConfig struct {
	Bucket                string `mapstructure:"bucket"`
	KeyPrefix             string `mapstructure:"key_prefix"`
	PresignExpiryDuration string `mapstructure:"presign_expiry_duration"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/recurly")

	setDefaults(v)

	// recurly.api_key is read from RECURLY_API_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal
func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	v.SetDefault("recurly.subdomain", d.Recurly.Subdomain)
	v.SetDefault("recurly.api_key", d.Recurly.APIKey)
	v.SetDefault("recurly.base_url", d.Recurly.BaseURL)
	v.SetDefault("recurly.api_version", d.Recurly.APIVersion)
	v.SetDefault("recurly.page_size", d.Recurly.PageSize)

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.retry_max", d.HTTP.RetryMax)
	v.SetDefault("http.retry_wait_min", d.HTTP.RetryWaitMin)
	v.SetDefault("http.retry_wait_max", d.HTTP.RetryWaitMax)
	v.SetDefault("http.rate_limit", d.HTTP.RateLimit)
	v.SetDefault("http.rate_burst", d.HTTP.RateBurst)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.pdf_ttl", d.Cache.PDFTTL)

	v.SetDefault("logging.level", d.Logging.Level)

	v.SetDefault("s3.enabled", d.S3.Enabled)
	v.SetDefault("s3.region", d.S3.Region)
	v.SetDefault("s3.invoice_bucket_config.bucket", d.S3.InvoiceBucketConfig.Bucket)
	v.SetDefault("s3.invoice_bucket_config.key_prefix", d.S3.InvoiceBucketConfig.KeyPrefix)
	v.SetDefault("s3.invoice_bucket_config.presign_expiry_duration", d.S3.InvoiceBucketConfig.PresignExpiryDuration)

	v.SetDefault("sentry.enabled", d.Sentry.Enabled)
	v.SetDefault("sentry.dsn", d.Sentry.DSN)
	v.SetDefault("sentry.environment", d.Sentry.Environment)
	v.SetDefault("sentry.sample_rate", d.Sentry.SampleRate)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid configuration").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// and tests. It carries no credentials.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Recurly: RecurlyConfig{
			APIVersion: "2.29",
			PageSize:   50,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			RetryMax:     2,
			RetryWaitMin: 500 * time.Millisecond,
			RetryWaitMax: 5 * time.Second,
		},
		Cache: CacheConfig{
			PDFTTL: 10 * time.Minute,
		},
		Logging: LoggingConfig{Level: "info"},
		S3: S3Config{
			InvoiceBucketConfig: BucketConfig{
				KeyPrefix:             "invoices",
				PresignExpiryDuration: "30m",
			},
		},
		Sentry: SentryConfig{
			Environment: "local",
			SampleRate:  1.0,
		},
	}
}

// BaseEndpoint returns the api root, always ending in a slash
func (c RecurlyConfig) BaseEndpoint() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/") + "/"
	}
	return fmt.Sprintf("https://%s.recurly.com/v2/", c.Subdomain)
}
