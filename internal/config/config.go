// Package config loads the service configuration from the environment.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting of the registry service.
type Config struct {
	AppName string
	AppPort string

	StoreDriver   string
	DatabaseDSN   string
	MongoURI      string
	MongoDatabase string

	AccessLogSinks  []string
	AccessLogFile   string
	AccessLogBuffer int

	RabbitMQURL   string
	RabbitMQQueue string

	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string
	TokenDuration     time.Duration

	LogLevel  string
	LogFormat string

	DefaultPageLimit int
	SeedDemoData     bool
	ShutdownTimeout  time.Duration
}

// AdminEnabled reports whether the log API can be protected and therefore mounted.
func (c Config) AdminEnabled() bool {
	return c.JWTSecret != "" && c.AdminUsername != "" && c.AdminPasswordHash != ""
}

// HasSink reports whether name is one of the configured access log sinks.
func (c Config) HasSink(name string) bool {
	for _, s := range c.AccessLogSinks {
		if s == name {
			return true
		}
	}
	return false
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "citoyens")
	v.SetDefault("APP_PORT", ":3001")
	v.SetDefault("STORE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "citoyens.db")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "registre")
	v.SetDefault("ACCESS_LOG_SINKS", "file,store")
	v.SetDefault("ACCESS_LOG_FILE", "logs.log")
	v.SetDefault("ACCESS_LOG_BUFFER", 1024)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "access_log_queue")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_USERNAME", "")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("TOKEN_DURATION", "24h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DEFAULT_PAGE_LIMIT", 50)
	v.SetDefault("SEED_DEMO_DATA", false)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		AppName:           v.GetString("APP_NAME"),
		AppPort:           v.GetString("APP_PORT"),
		StoreDriver:       strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		MongoURI:          v.GetString("MONGO_URI"),
		MongoDatabase:     v.GetString("MONGO_DATABASE"),
		AccessLogSinks:    splitList(v.GetString("ACCESS_LOG_SINKS")),
		AccessLogFile:     v.GetString("ACCESS_LOG_FILE"),
		AccessLogBuffer:   v.GetInt("ACCESS_LOG_BUFFER"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:     v.GetString("RABBITMQ_QUEUE"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		AdminUsername:     v.GetString("ADMIN_USERNAME"),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		TokenDuration:     v.GetDuration("TOKEN_DURATION"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		DefaultPageLimit:  v.GetInt("DEFAULT_PAGE_LIMIT"),
		SeedDemoData:      v.GetBool("SEED_DEMO_DATA"),
		ShutdownTimeout:   v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" && part != "none" {
			out = append(out, part)
		}
	}
	return out
}
