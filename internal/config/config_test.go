package config

import (
	"os"
	"testing"
	"time"
)

func setEnvVars(vars map[string]string) {
	for k, v := range vars {
		os.Setenv(k, v)
	}
}

func clearEnvVars(vars []string) {
	for _, k := range vars {
		os.Unsetenv(k)
	}
}

var allEnvVars = []string{
	"HOST", "PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "ENVIRONMENT", "FRONTEND_URL",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
	"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
	"REDIS_MIN_IDLE_CONNS", "REDIS_MAX_RETRIES", "REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
	"JWT_SECRET", "TOKEN_TTL", "BCRYPT_COST",
	"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_CALLBACK_URL",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_RPM", "RATE_LIMIT_BURST", "RATE_LIMIT_CLEANUP",
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnvVars(allEnvVars)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error with default config, got: %v", err)
	}

	if config.Server.Host != "localhost" {
		t.Errorf("Expected default host 'localhost', got %s", config.Server.Host)
	}

	if config.Server.Port != "5000" {
		t.Errorf("Expected default port '5000', got %s", config.Server.Port)
	}

	if config.Server.Environment != "development" {
		t.Errorf("Expected default environment 'development', got %s", config.Server.Environment)
	}

	if config.Server.FrontendURL != "http://localhost:3000" {
		t.Errorf("Expected default frontend URL 'http://localhost:3000', got %s", config.Server.FrontendURL)
	}

	if config.Database.Host != "localhost" {
		t.Errorf("Expected default DB host 'localhost', got %s", config.Database.Host)
	}

	if config.Database.Name != "todoapp" {
		t.Errorf("Expected default DB name 'todoapp', got %s", config.Database.Name)
	}

	if config.Database.MaxOpenConns != 25 {
		t.Errorf("Expected default max open conns 25, got %d", config.Database.MaxOpenConns)
	}

	if config.Redis.Host != "localhost" {
		t.Errorf("Expected default Redis host 'localhost', got %s", config.Redis.Host)
	}

	if config.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("Expected default token TTL 24h, got %v", config.Auth.TokenTTL)
	}

	if config.Auth.BCryptCost != 10 {
		t.Errorf("Expected default bcrypt cost 10, got %d", config.Auth.BCryptCost)
	}

	if !config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be enabled by default")
	}

	if config.RateLimit.RequestsPerMin != 100 {
		t.Errorf("Expected default requests per minute 100, got %d", config.RateLimit.RequestsPerMin)
	}
}

func TestLoadConfig_CustomEnvironment(t *testing.T) {
	envVars := map[string]string{
		"HOST":                 "0.0.0.0",
		"PORT":                 "9000",
		"ENVIRONMENT":          "production",
		"FRONTEND_URL":         "https://app.example.com",
		"DB_HOST":              "db.example.com",
		"DB_PASSWORD":          "secure_password",
		"JWT_SECRET":           "a-real-secret",
		"TOKEN_TTL":            "12h",
		"GOOGLE_CLIENT_ID":     "client-id",
		"GOOGLE_CLIENT_SECRET": "client-secret",
		"GOOGLE_CALLBACK_URL":  "https://app.example.com/api/auth/google/callback",
	}
	setEnvVars(envVars)
	defer clearEnvVars(allEnvVars)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if config.Server.Host != "0.0.0.0" {
		t.Errorf("Expected host '0.0.0.0', got %s", config.Server.Host)
	}

	if config.GetServerAddr() != "0.0.0.0:9000" {
		t.Errorf("Expected server addr '0.0.0.0:9000', got %s", config.GetServerAddr())
	}

	if !config.IsProduction() {
		t.Error("Expected IsProduction to be true")
	}

	if config.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("Expected token TTL 12h, got %v", config.Auth.TokenTTL)
	}

	if config.Google.ClientID != "client-id" {
		t.Errorf("Expected Google client id 'client-id', got %s", config.Google.ClientID)
	}
}

func TestLoadConfig_ProductionRequiresSecrets(t *testing.T) {
	clearEnvVars(allEnvVars)
	setEnvVars(map[string]string{
		"ENVIRONMENT": "production",
		"DB_PASSWORD": "secure_password",
	})
	defer clearEnvVars(allEnvVars)

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error when JWT secret is unset in production")
	}

	os.Setenv("JWT_SECRET", "a-real-secret")
	os.Unsetenv("DB_PASSWORD")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error when DB password is unset in production")
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	clearEnvVars(allEnvVars)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := "host=localhost port=5432 user=postgres password= dbname=todoapp sslmode=disable"
	if dsn := config.GetDatabaseDSN(); dsn != expected {
		t.Errorf("Expected DSN %q, got %q", expected, dsn)
	}
}
