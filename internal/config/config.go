package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server        ServerConfig        `mapstructure:"server" validate:"required"`
	Store         StoreConfig         `mapstructure:"store" validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Mail          MailConfig          `mapstructure:"mail" validate:"required"`
	Files         FilesConfig         `mapstructure:"files" validate:"required"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port               int      `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel           string   `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	RateLimitPerSecond float64  `mapstructure:"rate_limit_per_second" validate:"gte=0"`
	RateLimitBurst     int      `mapstructure:"rate_limit_burst" validate:"gte=0"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// StoreConfig selects the entity store backing the repositories.
type StoreConfig struct {
	// Driver is "memory" for the process-local store or "postgres".
	Driver string `mapstructure:"driver" validate:"required,oneof=memory postgres"`
	// CityCacheTTLSeconds enables the city listing cache when positive.
	CityCacheTTLSeconds int `mapstructure:"city_cache_ttl_seconds" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL      string `mapstructure:"url" validate:"omitempty,url"`
	MaxConns int32  `mapstructure:"max_conns" validate:"gte=0"`
}

// MailConfig selects and configures the mail notifier.
type MailConfig struct {
	// Provider is "local" (console) or "cloud" (RabbitMQ queue).
	Provider string `mapstructure:"provider" validate:"required,oneof=local cloud"`
	From     string `mapstructure:"from" validate:"required,email"`
	To       string `mapstructure:"to" validate:"required,email"`
	AMQPURL  string `mapstructure:"amqp_url" validate:"required_if=Provider cloud"`
	Queue    string `mapstructure:"queue" validate:"required_if=Provider cloud"`
}

// FilesConfig configures where downloadable files are read from.
type FilesConfig struct {
	// Source is "local" (directory on disk) or "s3" (MinIO/S3 bucket).
	Source string   `mapstructure:"source" validate:"required,oneof=local s3"`
	Dir    string   `mapstructure:"dir"`
	Name   string   `mapstructure:"name" validate:"required"`
	S3     S3Config `mapstructure:"s3"`
}

// S3Config holds object storage settings for the s3 file source.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// ObservabilityConfig toggles metrics and tracing.
type ObservabilityConfig struct {
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
}
