package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Catalog       CatalogConfig      `mapstructure:"catalog"`
	Agent         AgentConfig        `mapstructure:"agent"`
	Session       SessionConfig      `mapstructure:"session"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	JaegerURL   string `mapstructure:"jaeger_url"` // empty disables span export
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CatalogConfig locates the read-only restaurant catalog file.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// AgentConfig holds tunables for the parsing/execution pipeline.
type AgentConfig struct {
	SearchLimit    int      `mapstructure:"search_limit"`    // book-intent search
	RecommendLimit int      `mapstructure:"recommend_limit"` // recommend-intent search
	StepTimeout    int      `mapstructure:"step_timeout"`    // milliseconds, per plan step
	Areas          []string `mapstructure:"areas"`           // gazetteer override
}

// SessionConfig holds settings for the redis-backed conversation context.
type SessionConfig struct {
	TTL        int `mapstructure:"ttl"`         // seconds
	MaxHistory int `mapstructure:"max_history"` // turns kept per session
}

// NotificationConfig holds settings for notification dispatch. Delivery is
// stubbed unless a backend is explicitly enabled.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
