package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. CITYINFO_SERVER_PORT.
const EnvPrefix = "CITYINFO"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files. A .env
// file in the working directory, when present, is loaded into the process
// environment first without overriding variables that are already set.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the cross-section rules that tags cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Store.Driver == "postgres" && cfg.Database.URL == "" {
		return errors.New("config validation failed: database.url is required when store.driver is postgres")
	}
	if cfg.Files.Source == "s3" && (cfg.Files.S3.Endpoint == "" || cfg.Files.S3.Bucket == "") {
		return errors.New("config validation failed: files.s3.endpoint and files.s3.bucket are required when files.source is s3")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.rate_limit_per_second", 0)
	v.SetDefault("server.rate_limit_burst", 0)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.city_cache_ttl_seconds", 0)

	v.SetDefault("database.max_conns", 10)

	v.SetDefault("mail.provider", "local")
	v.SetDefault("mail.from", "noreply@cityinfo.local")
	v.SetDefault("mail.to", "admin@cityinfo.local")
	v.SetDefault("mail.queue", "mail.outbox")

	v.SetDefault("files.source", "local")
	v.SetDefault("files.dir", ".")
	v.SetDefault("files.name", "image.jpg")

	v.SetDefault("observability.metrics_enabled", true)
	v.SetDefault("observability.tracing_enabled", false)
	v.SetDefault("observability.service_name", "cityinfo-api")
}

// bindEnvs registers keys without defaults so AutomaticEnv can populate them
// during Unmarshal.
func bindEnvs(v *viper.Viper) {
	for _, key := range []string{
		"database.url",
		"mail.amqp_url",
		"files.s3.endpoint",
		"files.s3.access_key",
		"files.s3.secret_key",
		"files.s3.bucket",
		"files.s3.use_ssl",
		"observability.otlp_endpoint",
	} {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key)
	}
}
