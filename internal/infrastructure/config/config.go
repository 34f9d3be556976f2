package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvProduction = "production"

	StorageMongo  = "mongo"
	StorageMemory = "memory"

	ThrottleMemory = "memory"
	ThrottleRedis  = "redis"
)

type Config struct {
	Port      string `env:"PORT,      default=3000"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET, required"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	StorageDriver   string `env:"STORAGE_DRIVER,   default=mongo"`
	ThrottleBackend string `env:"THROTTLE_BACKEND, default=memory"`

	Auth  AuthConfig
	Chat  ChatConfig
	Ark   ArkConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	TokenTTL   time.Duration `env:"TOKEN_TTL,   default=168h"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
}

type ChatConfig struct {
	ThrottleInterval  time.Duration `env:"THROTTLE_INTERVAL,   default=2s"`
	ContextTurns      int           `env:"CHAT_CONTEXT_TURNS,  default=10"`
	HistorySource     string        `env:"CHAT_HISTORY_SOURCE, default=client"`
	Preamble          string        `env:"CHAT_PREAMBLE"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT,  default=0s"`
	HistoryWorkers    int           `env:"HISTORY_WORKERS,     default=8"`
}

type ArkConfig struct {
	APIKey  string `env:"ARK_API_KEY, required"`
	Model   string `env:"ARK_MODEL,    default=doubao-seed-1-6-flash-250615"`
	BaseURL string `env:"ARK_BASE_URL, default=https://ark.cn-beijing.volces.com/api/v3"`
	Region  string `env:"ARK_REGION,   default=cn-beijing"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=gccn_chatbot"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads configuration from environment variables using go-envconfig.
// Missing JWT_SECRET or ARK_API_KEY is an error: the service must not start
// without them.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through the given lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageMongo, StorageMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageMongo, StorageMemory, c.StorageDriver)
	}
	switch c.ThrottleBackend {
	case ThrottleMemory, ThrottleRedis:
	default:
		return fmt.Errorf("THROTTLE_BACKEND must be %q or %q, got %q", ThrottleMemory, ThrottleRedis, c.ThrottleBackend)
	}
	switch c.Chat.HistorySource {
	case "client", "server":
	default:
		return fmt.Errorf("CHAT_HISTORY_SOURCE must be \"client\" or \"server\", got %q", c.Chat.HistorySource)
	}
	if c.Chat.ThrottleInterval <= 0 {
		return fmt.Errorf("THROTTLE_INTERVAL must be positive")
	}
	return nil
}
