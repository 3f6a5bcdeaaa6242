package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Activation ActivationConfig
	Email      EmailConfig
	CORS       CORSConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host          string
	Port          string
	Name          string
	User          string
	Password      string
	MinConns      int32
	MaxConns      int32
	PoolTimeout   time.Duration
	Retries       int
	RetryDelay    time.Duration
	MaintenanceDB string
}

type ActivationConfig struct {
	CodeLength    int
	ExpiryMinutes int
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// TTL returns how long a freshly issued activation code stays usable.
func (c ActivationConfig) TTL() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "user-activation")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "users")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASS", "postgres")
	v.SetDefault("DB_MAINTENANCE_NAME", "postgres")
	v.SetDefault("DB_POOL_MIN_SIZE", 2)
	v.SetDefault("DB_POOL_MAX_SIZE", 10)
	v.SetDefault("DB_POOL_TIMEOUT", 30)
	v.SetDefault("DB_CONNECT_RETRIES", 10)
	v.SetDefault("DB_CONNECT_RETRY_DELAY", 2)
	v.SetDefault("ACTIVATION_CODE_LENGTH", 4)
	v.SetDefault("ACTIVATION_CODE_EXPIRY_MINUTES", 1)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_FROM", "no-reply@localhost")
	v.SetDefault("EMAIL_TIMEOUT_SECONDS", 10)

	// .env is optional, the environment alone is enough in containers
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:          v.GetString("DB_HOST"),
			Port:          v.GetString("DB_PORT"),
			Name:          v.GetString("DB_NAME"),
			User:          v.GetString("DB_USER"),
			Password:      v.GetString("DB_PASS"),
			MinConns:      v.GetInt32("DB_POOL_MIN_SIZE"),
			MaxConns:      v.GetInt32("DB_POOL_MAX_SIZE"),
			PoolTimeout:   time.Duration(v.GetInt("DB_POOL_TIMEOUT")) * time.Second,
			Retries:       v.GetInt("DB_CONNECT_RETRIES"),
			RetryDelay:    time.Duration(v.GetInt("DB_CONNECT_RETRY_DELAY")) * time.Second,
			MaintenanceDB: v.GetString("DB_MAINTENANCE_NAME"),
		},
		Activation: ActivationConfig{
			CodeLength:    v.GetInt("ACTIVATION_CODE_LENGTH"),
			ExpiryMinutes: v.GetInt("ACTIVATION_CODE_EXPIRY_MINUTES"),
		},
		Email: EmailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("EMAIL_FROM"),
			Timeout:  time.Duration(v.GetInt("EMAIL_TIMEOUT_SECONDS")) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Database.MinConns < 0 || c.Database.MaxConns < 1:
		return fmt.Errorf("invalid pool size: min %d max %d", c.Database.MinConns, c.Database.MaxConns)
	case c.Database.MinConns > c.Database.MaxConns:
		return fmt.Errorf("pool min size %d exceeds max size %d", c.Database.MinConns, c.Database.MaxConns)
	case c.Database.PoolTimeout <= 0:
		return fmt.Errorf("pool timeout must be positive")
	case c.Database.Retries < 1:
		return fmt.Errorf("connect retries must be at least 1")
	case c.Activation.CodeLength != ActivationCodeLength:
		return fmt.Errorf("activation code length must be %d, got %d", ActivationCodeLength, c.Activation.CodeLength)
	case c.Activation.ExpiryMinutes <= 0:
		return fmt.Errorf("activation code expiry must be positive")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
