package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"alcyxob/fitness-catalog/internal/gifurl"
)

// ErrMissingConfig is wrapped by Validate for every required key that has no value.
var ErrMissingConfig = errors.New("missing required configuration")

// Config holds all configuration for the server and the maintenance CLI.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Gif      GifConfig      `mapstructure:"gif"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Proxy    ProxyConfig    `mapstructure:"proxy"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI        string `mapstructure:"uri"`
	Name       string `mapstructure:"name"`
	Collection string `mapstructure:"collection"`
}

// CatalogConfig configures access to the third-party exercise catalog.
type CatalogConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	ImportLimit       int           `mapstructure:"import_limit"`
}

// GifConfig decides which gifUrl form is written to exercise records.
type GifConfig struct {
	Mode         string `mapstructure:"mode"` // "proxy" or "direct"
	Resolution   int    `mapstructure:"resolution"`
	ProxyBaseURL string `mapstructure:"proxy_base_url"`
}

// S3Config configures the optional GIF asset cache. An empty bucket disables it.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	Prefix          string `mapstructure:"prefix"`
}

// Enabled reports whether the asset cache should be used.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// JWTConfig holds the secret used to verify admin tokens. Empty disables admin routes.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// ProxyConfig tunes the image proxy's own catalog client and its circuit breaker.
// The proxy does not share the reconciliation client's limiter.
type ProxyConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"` // A screen of cards loads at once
	BreakerFailures   uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout    time.Duration `mapstructure:"breaker_timeout"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

// GifBuilder returns the URL builder matching the gif and catalog settings.
func (c Config) GifBuilder() (gifurl.Builder, error) {
	mode, err := gifurl.ParseMode(c.Gif.Mode)
	if err != nil {
		return gifurl.Builder{}, err
	}
	return gifurl.Builder{
		Mode:         mode,
		ProxyBaseURL: c.Gif.ProxyBaseURL,
		Resolution:   c.Gif.Resolution,
		APIKey:       c.Catalog.APIKey,
	}, nil
}

// defaults registers every key so AutomaticEnv can bind it during Unmarshal.
// Credentials are registered empty on purpose: there are no literal secrets.
var defaults = map[string]interface{}{
	"server.address":              ":8080",
	"database.uri":                "mongodb://localhost:27017",
	"database.name":               "fitness_app_default",
	"database.collection":         "exercises",
	"catalog.base_url":            "https://exercisedb.p.rapidapi.com",
	"catalog.api_key":             "",
	"catalog.timeout":             "15s",
	"catalog.requests_per_second": 5.0,
	"catalog.import_limit":        20,
	"gif.mode":                    string(gifurl.ModeProxy),
	"gif.resolution":              gifurl.DefaultResolution,
	"gif.proxy_base_url":          "",
	"s3.endpoint":                 "",
	"s3.region":                   "us-east-1",
	"s3.access_key_id":            "",
	"s3.secret_access_key":        "",
	"s3.bucket_name":              "",
	"s3.prefix":                   "gifs",
	"jwt.secret":                  "",
	"proxy.requests_per_second":   20.0,
	"proxy.burst":                 24,
	"proxy.breaker_failures":      5,
	"proxy.breaker_timeout":       "30s",
	"log.mode":                    "dev",
}

// LoadConfig reads configuration from file or environment variables.
// The config file (config.yaml in path) is optional.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, catalog.api_key -> CATALOG_API_KEY
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return config, nil
}

// Requirement names a group of settings a command cannot run without.
type Requirement int

const (
	// RequireStore needs the database connection settings.
	RequireStore Requirement = iota
	// RequireCatalog needs the catalog API credential.
	RequireCatalog
	// RequireGif needs whatever the configured gif mode embeds in URLs.
	RequireGif
)

// Validate checks the requirements up front so a run never starts half-configured.
// All problems are reported together.
func (c Config) Validate(reqs ...Requirement) error {
	var errs []error
	reported := map[string]bool{}
	missing := func(key string) {
		if reported[key] {
			return
		}
		reported[key] = true
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingConfig, key))
	}

	for _, req := range reqs {
		switch req {
		case RequireStore:
			if c.Database.URI == "" {
				missing("database.uri")
			}
			if c.Database.Name == "" {
				missing("database.name")
			}
			if c.Database.Collection == "" {
				missing("database.collection")
			}
		case RequireCatalog:
			if c.Catalog.BaseURL == "" {
				missing("catalog.base_url")
			}
			if c.Catalog.APIKey == "" {
				missing("catalog.api_key")
			}
		case RequireGif:
			mode, err := gifurl.ParseMode(c.Gif.Mode)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			switch mode {
			case gifurl.ModeProxy:
				if c.Gif.ProxyBaseURL == "" {
					missing("gif.proxy_base_url")
				}
			case gifurl.ModeDirect:
				if c.Catalog.APIKey == "" {
					missing("catalog.api_key")
				}
			}
		}
	}
	return errors.Join(errs...)
}
