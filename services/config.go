package services

import (
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Store     StoreConfig
	WebSocket WebSocketConfig
	Archive   ArchiveConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL          string
	Seed         bool
	LogLevel     string
	MaxIdleConns int
	MaxOpenConns int
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// StoreConfig bounds every load-modify-save cycle.
type StoreConfig struct {
	UpdateTimeout time.Duration
	MaxRetries    int
}

type WebSocketConfig struct {
	AllowedOrigins string
}

type ArchiveConfig struct {
	Dir string
}

// LoadConfig loads configuration from environment variables and config files
func LoadConfig() *Config {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("websocket.allowed_origins", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "1h")
	v.SetDefault("database.url", "")
	v.SetDefault("database.seed", "false")
	v.SetDefault("database.log_level", "silent")
	v.SetDefault("database.max_idle_conns", "10")
	v.SetDefault("database.max_open_conns", "100")
	v.SetDefault("store.update_timeout", "5s")
	v.SetDefault("store.max_retries", "5")
	v.SetDefault("archive.dir", "assessments")

	// Map environment variables to config keys
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("websocket.allowed_origins", "WEBSOCKET_ALLOWED_ORIGINS")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.expiry", "JWT_EXPIRY")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.seed", "DATABASE_SEED")
	v.BindEnv("database.log_level", "DATABASE_LOG_LEVEL")
	v.BindEnv("database.max_idle_conns", "DATABASE_MAX_IDLE_CONNS")
	v.BindEnv("database.max_open_conns", "DATABASE_MAX_OPEN_CONNS")
	v.BindEnv("store.update_timeout", "STORE_UPDATE_TIMEOUT")
	v.BindEnv("store.max_retries", "STORE_MAX_RETRIES")
	v.BindEnv("archive.dir", "ARCHIVE_DIR")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("Config file not found, using defaults and environment variables")
		} else {
			slog.Error("Error reading config file", "error", err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Port: v.GetString("server.port"),
		},
		Database: DatabaseConfig{
			URL:          v.GetString("database.url"),
			Seed:         v.GetBool("database.seed"),
			LogLevel:     v.GetString("database.log_level"),
			MaxIdleConns: v.GetInt("database.max_idle_conns"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Expiry: v.GetDuration("jwt.expiry"),
		},
		Store: StoreConfig{
			UpdateTimeout: v.GetDuration("store.update_timeout"),
			MaxRetries:    v.GetInt("store.max_retries"),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins: v.GetString("websocket.allowed_origins"),
		},
		Archive: ArchiveConfig{
			Dir: v.GetString("archive.dir"),
		},
	}
}
