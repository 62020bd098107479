package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/folio/database"
	"github.com/sagarc03/folio/grantfile"
	foliohttp "github.com/sagarc03/folio/http"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "FOLIO"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for folio.
type Config struct {
	Env      string               `mapstructure:"env" validate:"oneof=dev prod production development"`
	Server   ServerConfig         `mapstructure:"server"`
	Service  ServiceConfig        `mapstructure:"service"`
	Database database.Config      `mapstructure:"database"`
	Storage  StorageConfig        `mapstructure:"storage"`
	Session  SessionConfig        `mapstructure:"session"`
	Roles    RolesConfig          `mapstructure:"roles"`
	CORS     foliohttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig            `mapstructure:"log"`
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
	// PublicURL is the externally visible base of this server. Filesystem
	// blob URLs are built as PublicURL + "/media/" + path.
	PublicURL       string        `mapstructure:"public_url" validate:"required,url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

// ServiceConfig holds gallery service configuration.
type ServiceConfig struct {
	MaxUploadSize  int64 `mapstructure:"max_upload_size" validate:"min=1"`
	CleanupTimeout int   `mapstructure:"cleanup_timeout" validate:"min=1"` // seconds
}

// StorageConfig selects and configures the blob store.
type StorageConfig struct {
	Type string   `mapstructure:"type" validate:"required,oneof=filesystem s3"`
	Path string   `mapstructure:"path"`
	S3   S3Config `mapstructure:"s3"`
}

// S3Config holds settings for an S3-compatible blob store.
type S3Config struct {
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	Region     string `mapstructure:"region"`
	Bucket     string `mapstructure:"bucket"`
	UseSSL     bool   `mapstructure:"use_ssl"`
	PublicBase string `mapstructure:"public_base" validate:"omitempty,url"`
	PublicRead bool   `mapstructure:"public_read"`
}

// SessionConfig holds bearer token settings. Secret is only required by
// commands that issue or verify tokens.
type SessionConfig struct {
	Secret string        `mapstructure:"secret" validate:"omitempty,min=32"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl" validate:"min=0"`
}

// RolesConfig holds role grant seeding and caching. Source "config" answers
// role lookups from Grants alone, without the grant table.
type RolesConfig struct {
	Source string                 `mapstructure:"source" validate:"oneof=database config"`
	Grants grantfile.GrantsConfig `mapstructure:"grants"`
	Cache  RoleCacheConfig        `mapstructure:"cache"`
}

// RoleCacheConfig enables the Redis role cache when RedisURL is set.
type RoleCacheConfig struct {
	RedisURL string        `mapstructure:"redis_url" validate:"omitempty,url"`
	TTL      time.Duration `mapstructure:"ttl" validate:"min=0"`
	Prefix   string        `mapstructure:"prefix"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"storage-type": "storage.type",
	"storage-path": "storage.path",
	"port":         "server.port",
	"public-url":   "server.public_url",
	"log-level":    "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Every key
// that may come from the environment needs an entry here, since viper only
// consults the environment for keys it knows about.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 5708)
	v.SetDefault("server.public_url", "http://localhost:5708")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("service.max_upload_size", 10<<20)
	v.SetDefault("service.cleanup_timeout", 30) // seconds

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "folio.db")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.tables.photos", "photos")
	v.SetDefault("database.tables.role_grants", "role_grants")

	v.SetDefault("storage.type", "filesystem")
	v.SetDefault("storage.path", "./media")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.use_ssl", true)
	v.SetDefault("storage.s3.public_base", "")
	v.SetDefault("storage.s3.public_read", false)

	v.SetDefault("session.secret", "")
	v.SetDefault("session.issuer", "folio")
	v.SetDefault("session.ttl", 12*time.Hour)

	v.SetDefault("roles.source", "database")
	v.SetDefault("roles.grants.file", "")
	v.SetDefault("roles.cache.redis_url", "")
	v.SetDefault("roles.cache.ttl", time.Minute)
	v.SetDefault("roles.cache.prefix", "folio:role")

	v.SetDefault("cors.enabled", false)

	v.SetDefault("log.level", "info")
}

// loadDotEnv copies a .env file into the process environment. Variables that
// are already set win. A missing file is not an error.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("error reading env file", "file", path, "err", err)
	}
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env (.env included) > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	loadDotEnv(".env")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	if err := newValidator().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Database.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterStructValidation(validateStorage, StorageConfig{})
	return validate
}

// validateStorage requires the settings of whichever backend Type selects.
func validateStorage(sl validator.StructLevel) {
	s := sl.Current().Interface().(StorageConfig)

	switch s.Type {
	case "filesystem":
		if s.Path == "" {
			sl.ReportError(s.Path, "Path", "path", "required_for_filesystem", "")
		}
	case "s3":
		if s.S3.Endpoint == "" {
			sl.ReportError(s.S3.Endpoint, "S3.Endpoint", "endpoint", "required_for_s3", "")
		}
		if s.S3.Bucket == "" {
			sl.ReportError(s.S3.Bucket, "S3.Bucket", "bucket", "required_for_s3", "")
		}
		if s.S3.PublicBase == "" {
			sl.ReportError(s.S3.PublicBase, "S3.PublicBase", "public_base", "required_for_s3", "")
		}
	}
}
