/*
 * Copyright (c) Joseph Prichard 2025
 */

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Env          string // "development" or "production"
	JwtSecretKey string
}

type GameConfig struct {
	CleanupPeriod time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load reads configuration from a .env file (if present) and the environment
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			Env:          getEnv("ENV", "development"),
			JwtSecretKey: getEnv("JWT_SECRET_KEY", "insecure-dev-key"),
		},
		Game: GameConfig{
			CleanupPeriod: time.Duration(getEnvInt("ROOM_CLEANUP_SECONDS", 60)) * time.Second,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
