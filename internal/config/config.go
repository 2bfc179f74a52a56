package config

import (
	"fmt"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// DefaultConfigFile is the path searched under the XDG config directories
// when no explicit config file is given.
const DefaultConfigFile = "tictactoe/config.yml"

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPAddr  string    `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	Game      Game      `yaml:"game"`
	Store     Store     `yaml:"store"`
	Auth      Auth      `yaml:"auth"`
	Telemetry Telemetry `yaml:"telemetry"`
}

type Game struct {
	MaxBoardSize int `yaml:"max-board-size" env:"GAME_MAX_BOARD_SIZE" env-default:"20"`
}

type Store struct {
	Backend    string        `yaml:"backend" env:"STORE_BACKEND" env-default:"memory"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"STORE_SESSION_TTL" env-default:"1h"`
	Redis      Redis         `yaml:"redis"`
	SQLitePath string        `yaml:"sqlite-path" env:"STORE_SQLITE_PATH" env-default:"./sessions.db"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt-secret" env:"AUTH_JWT_SECRET" env-default:"change-me"`
	TokenTTL  time.Duration `yaml:"token-ttl" env:"AUTH_TOKEN_TTL" env-default:"24h"`
}

type Telemetry struct {
	// OTLPEndpoint is the gRPC collector address. Empty disables OTLP export.
	OTLPEndpoint string `yaml:"otlp-endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Stdout       bool   `yaml:"stdout" env:"TELEMETRY_STDOUT"`
}

// Load reads the config file at path, falling back to the XDG config
// directories and then to defaults and the environment alone.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path == "" {
		if found, err := xdg.SearchConfigFile(DefaultConfigFile); err == nil {
			path = found
		}
	}

	if path == "" {
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from environment: %w", err)
		}
		return config, config.validate()
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}
	return config, config.validate()
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Game.MaxBoardSize < 1 {
		return fmt.Errorf("max board size must be positive, got %d", c.Game.MaxBoardSize)
	}
	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
