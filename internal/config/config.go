package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Notifier    NotifierConfig    `mapstructure:"notifier"`
	Tracking    TrackingConfig    `mapstructure:"tracking"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Port    int    `mapstructure:"port"`
	Env     string `mapstructure:"env"`
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig verifies tokens minted by the external identity provider.
// The service only reads the principal id, email and role claims.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// NotifierConfig points at the outbound notification webhook consumed by
// the external email sender. Requests are HMAC-signed with the client
// credentials.
type NotifierConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	WebhookURL     string `mapstructure:"webhook_url"`
	ClientID       string `mapstructure:"client_id"`
	ClientSecret   string `mapstructure:"client_secret"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type TrackingConfig struct {
	ViewerSessionTTLHours int `mapstructure:"viewer_session_ttl_hours"`
}

type CoordinatorConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func NewConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Enable environment variable override
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Notifier.TimeoutSeconds <= 0 {
		cfg.Notifier.TimeoutSeconds = 10
	}
	if cfg.Tracking.ViewerSessionTTLHours <= 0 {
		cfg.Tracking.ViewerSessionTTLHours = 24
	}
	if cfg.Coordinator.TimeoutSeconds <= 0 {
		cfg.Coordinator.TimeoutSeconds = 10
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
