package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerConfig   ServerConfig
	DatabaseConfig DatabaseConfig
	AuthConfig     AuthConfig
}

type ServerConfig struct {
	Port           string
	Domain         string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	DSN string
}

type AuthConfig struct {
	JWTSecret     string
	SecureCookies bool
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}

	config := &Config{
		ServerConfig: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			Domain:         getEnv("DOMAIN", ""),
			AllowedOrigins: allowedOrigins(),
		},
		DatabaseConfig: DatabaseConfig{
			DSN: getEnv("DATABASE_URL", ""),
		},
		AuthConfig: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			SecureCookies: getEnv("APP_ENV", "development") == "production",
		},
	}

	if config.AuthConfig.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.DatabaseConfig.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return config, nil
}

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

func allowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if extra := os.Getenv("ALLOWED_ORIGINS"); extra != "" {
		for _, origin := range strings.Split(extra, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
