package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	config     *Config
	configErr  error
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	EnvType string

	// Server
	ServerPort  string
	GinMode     string
	TemplateDir string
	StaticDir   string

	// Database behind the local store: sqlite, mysql or postgres
	DBDriver string
	DBDSN    string
	DataDir  string

	// Remote store. Empty StoreURL means this process is its own store.
	StoreURL     string
	StoreTimeout time.Duration
	// Shared bearer token for the store endpoint. Empty leaves it open.
	StoreToken string

	// Optional Redis read cache in front of the store
	RedisAddr string
	RedisDB   int
	RedisTTL  time.Duration

	// Optional RabbitMQ publisher for content change events
	RabbitMQURL      string
	RabbitMQExchange string

	JWTSecretKey string

	LogDir   string
	LogLevel string

	// Minimum time the loading page is held while hydrating
	MinLoadingDelay time.Duration
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// a missing .env is fine, variables may come from the environment
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("ENV_TYPE", "LOCAL")
	v.SetDefault("SERVER_PORT", "8090")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("TEMPLATE_DIR", "templates")
	v.SetDefault("STATIC_DIR", "static")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("STORE_URL", "")
	v.SetDefault("STORE_TIMEOUT", "10s")
	v.SetDefault("STORE_TOKEN", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TTL", "5m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "site.content")
	v.SetDefault("JWT_SECRET_KEY", "jiahe-site-secret-change-in-production")
	v.SetDefault("LOG_DIR", "logs")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MIN_LOADING_DELAY", "800ms")

	cfg := &Config{
		EnvType:          strings.ToUpper(v.GetString("ENV_TYPE")),
		ServerPort:       v.GetString("SERVER_PORT"),
		GinMode:          v.GetString("GIN_MODE"),
		TemplateDir:      v.GetString("TEMPLATE_DIR"),
		StaticDir:        v.GetString("STATIC_DIR"),
		DBDriver:         strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:            v.GetString("DB_DSN"),
		DataDir:          v.GetString("DATA_DIR"),
		StoreURL:         strings.TrimRight(v.GetString("STORE_URL"), "/"),
		StoreTimeout:     v.GetDuration("STORE_TIMEOUT"),
		StoreToken:       v.GetString("STORE_TOKEN"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisDB:          v.GetInt("REDIS_DB"),
		RedisTTL:         v.GetDuration("REDIS_TTL"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQExchange: v.GetString("RABBITMQ_EXCHANGE"),
		JWTSecretKey:     v.GetString("JWT_SECRET_KEY"),
		LogDir:           v.GetString("LOG_DIR"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		MinLoadingDelay:  v.GetDuration("MIN_LOADING_DELAY"),
	}

	switch cfg.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DBDriver != "sqlite" && cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required for DB_DRIVER=%s", cfg.DBDriver)
	}

	return cfg, nil
}

// GetConfig returns the application configuration as a singleton
func GetConfig() (*Config, error) {
	configOnce.Do(func() {
		config, configErr = Load()
	})
	return config, configErr
}

// LocalStore reports whether the process serves the store itself.
func (c *Config) LocalStore() bool {
	return c.StoreURL == ""
}
