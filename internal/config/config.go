package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Address            string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	GinMode            string        `yaml:"gin_mode" env:"GIN_MODE" env-default:"debug"`
	LogLevel           string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	DBDriver           string        `yaml:"db_driver" env:"DB_DRIVER" env-default:"mysql"`
	DBHost             string        `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort             string        `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	DBUser             string        `yaml:"db_user" env:"DB_USER" env-default:"taskr"`
	DBPassword         string        `yaml:"db_password" env:"DB_PASSWORD" env-default:"taskr"`
	DBName             string        `yaml:"db_name" env:"DB_NAME" env-default:"taskr"`
	DBPath             string        `yaml:"db_path" env:"DB_PATH" env-default:"taskr.db"`
	RedisHost          string        `yaml:"redis_host" env:"REDIS_HOST"`
	RedisPort          string        `yaml:"redis_port" env:"REDIS_PORT" env-default:"6379"`
	SessionSecret      string        `yaml:"session_secret" env:"SESSION_SECRET" env-default:"default-secret-key-change-me"`
	TokenTTL           time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"720h"`
	TokenPurgeInterval time.Duration `yaml:"token_purge_interval" env:"TOKEN_PURGE_INTERVAL" env-default:"1h"`
	OpenAIAPIKey       string        `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	StaffUsernames     []string      `yaml:"staff_usernames" env:"STAFF_USERNAMES" env-separator:","`
}

// Load reads configPath when it exists and falls back to the environment.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath != "" {
		err := cleanenv.ReadConfig(configPath, &cfg)
		if err == nil {
			return &cfg, cfg.validate()
		}
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return nil, fmt.Errorf("read config %q: %w", configPath, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, cfg.validate()
}

// MustLoad is Load that exits the process on failure.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

// DSN renders the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	case "sqlite":
		return c.DBPath
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
