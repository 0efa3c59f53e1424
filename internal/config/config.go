package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/smallbiznis/pokedex/pkg/db"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

const DefaultPokeAPIURL = "https://pokeapi.co/api/v2/pokemon?limit=650"

// Config holds application configuration. It is loaded once at startup and
// passed by value; nothing mutates it afterwards.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	// DefaultLimit is the page size used by pokemon listing when the caller
	// does not supply one. Zero means no limit.
	DefaultLimit int

	PokeAPI PokeAPIConfig
	Redis   RedisConfig
	Seed    SeedConfig
	Logger  LoggerConfig
	Otel    OtelConfig

	DB db.Config
}

type PokeAPIConfig struct {
	URL     string
	Timeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type SeedConfig struct {
	LockTTL time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

type OtelConfig struct {
	Enabled          bool
	ExporterEndpoint string
	SamplingRatio    float64
}

var Module = fx.Module("config",
	fx.Provide(
		Load,
		func(cfg Config) db.Config { return cfg.DB },
	),
)

// Load reads configuration from a .env file, an optional pokedex.yml and the
// environment, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("pokedex")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/pokedex")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_SERVICE", "pokedex")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("HTTP_ADDR", ":3000")
	v.SetDefault("DEFAULT_LIMIT", 7)

	v.SetDefault("POKEAPI_URL", DefaultPokeAPIURL)
	v.SetDefault("POKEAPI_TIMEOUT", "30s")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SEED_LOCK_TTL", "2m")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("OTEL_SAMPLING_RATIO", 0.1)

	v.SetDefault("DATABASE_TYPE", db.TypePostgres)
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "pokedex")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_IDLE_CONN", 5)
	v.SetDefault("DATABASE_MAX_OPEN_CONN", 20)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DATABASE_CONN_MAX_IDLE_TIME", 60)
}

func fromViper(v *viper.Viper) Config {
	return Config{
		AppName:      strings.TrimSpace(v.GetString("APP_SERVICE")),
		AppVersion:   strings.TrimSpace(v.GetString("APP_VERSION")),
		Environment:  strings.TrimSpace(v.GetString("ENVIRONMENT")),
		HTTPAddr:     strings.TrimSpace(v.GetString("HTTP_ADDR")),
		DefaultLimit: v.GetInt("DEFAULT_LIMIT"),
		PokeAPI: PokeAPIConfig{
			URL:     strings.TrimSpace(v.GetString("POKEAPI_URL")),
			Timeout: v.GetDuration("POKEAPI_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Seed: SeedConfig{
			LockTTL: v.GetDuration("SEED_LOCK_TTL"),
		},
		Logger: LoggerConfig{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
			Format: strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
		},
		Otel: OtelConfig{
			Enabled:          v.GetBool("OTEL_ENABLED"),
			ExporterEndpoint: strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
			SamplingRatio:    v.GetFloat64("OTEL_SAMPLING_RATIO"),
		},
		DB: db.Config{
			Type:            strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_TYPE"))),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetString("DATABASE_PORT"),
			Name:            v.GetString("DATABASE_NAME"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxIdleConn:     v.GetInt("DATABASE_MAX_IDLE_CONN"),
			MaxOpenConn:     v.GetInt("DATABASE_MAX_OPEN_CONN"),
			ConnMaxLifetime: v.GetInt("DATABASE_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: v.GetInt("DATABASE_CONN_MAX_IDLE_TIME"),
		},
	}
}

// IsProduction reports whether the service runs in a production environment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
