package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Assistant AssistantConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type AuthConfig struct {
	JWTSecret          string
	JWTIssuer          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
	CookieSecure       bool
}

type AssistantConfig struct {
	RateLimitPerMinute int
	RateLimitBurst     int
	// RandomSeed фиксирует выбор советов и разброс прогноза; nil - случайный источник.
	RandomSeed *int64
}

type AdminConfig struct {
	Emails []string
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	if err := loadEnv(); err != nil {
		return Config{}, err
	}

	env := &envReader{}
	cfg := Config{
		Env:       getEnv("APP_ENV", "local"),
		Server:    loadServer(env),
		Database:  loadDatabase(env),
		Assistant: loadAssistant(env),
		Admin:     AdminConfig{Emails: parseCSVEnv("ADMIN_EMAILS")},
	}
	cfg.Auth = loadAuth(env, cfg.Env == "production")

	if env.err != nil {
		return cfg, env.err
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// envReader запоминает первую ошибку разбора, чтобы секции читались без
// проверки после каждой переменной.
type envReader struct {
	err error
}

func (r *envReader) integer(key string, fallback int) int {
	value, err := parseIntEnv(key, fallback)
	r.keep(err)
	return value
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	value, err := parseDurationEnv(key, fallback)
	r.keep(err)
	return value
}

func (r *envReader) boolean(key string, fallback bool) bool {
	value, err := parseBoolEnv(key, fallback)
	r.keep(err)
	return value
}

func (r *envReader) optionalInt64(key string) *int64 {
	value, err := parseOptionalInt64Env(key)
	r.keep(err)
	return value
}

func (r *envReader) keep(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

func loadServer(env *envReader) ServerConfig {
	allowedOrigins := parseCSVEnv("CORS_ALLOWED_ORIGINS")
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	return ServerConfig{
		Host:           getEnv("SERVER_HOST", "0.0.0.0"),
		Port:           env.integer("SERVER_PORT", 8080),
		ReadTimeout:    env.duration("SERVER_READ_TIMEOUT", 5*time.Second),
		WriteTimeout:   env.duration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:    env.duration("SERVER_IDLE_TIMEOUT", time.Minute),
		AllowedOrigins: allowedOrigins,
	}
}

func loadDatabase(env *envReader) DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            env.integer("DB_PORT", 5432),
		User:            getEnv("DB_USER", "finance"),
		Password:        getEnv("DB_PASSWORD", "finance"),
		Name:            getEnv("DB_NAME", "finance_tracker"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    env.integer("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    env.integer("DB_MAX_IDLE_CONNS", 5),
		ConnMaxIdleTime: env.duration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		ConnMaxLifetime: env.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		AutoMigrate:     env.boolean("DB_AUTO_MIGRATE", true),
	}
}

func loadAuth(env *envReader, production bool) AuthConfig {
	return AuthConfig{
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "finance-tracker"),
		AccessTokenTTL:     env.duration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTokenTTL:    env.duration("JWT_REFRESH_TTL", 7*24*time.Hour),
		RateLimitPerMinute: env.integer("AUTH_RATE_LIMIT_PER_MINUTE", 60),
		RateLimitBurst:     env.integer("AUTH_RATE_LIMIT_BURST", 10),
		CookieSecure:       env.boolean("COOKIE_SECURE", production),
	}
}

func loadAssistant(env *envReader) AssistantConfig {
	return AssistantConfig{
		RateLimitPerMinute: env.integer("ASSISTANT_RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:     env.integer("ASSISTANT_RATE_LIMIT_BURST", 20),
		RandomSeed:         env.optionalInt64("ASSISTANT_RANDOM_SEED"),
	}
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

// MigrationURL возвращает строку подключения для golang-migrate (драйвер pgx/v5).
func (c DatabaseConfig) MigrationURL() string {
	return strings.Replace(c.DSN(), "postgres://", "pgx5://", 1)
}

func (c Config) validate() error {
	checks := []struct {
		failed  bool
		message string
	}{
		{c.Server.Port <= 0, "SERVER_PORT must be greater than 0"},
		{c.Database.Host == "", "DB_HOST is required"},
		{c.Database.User == "", "DB_USER is required"},
		{c.Database.Name == "", "DB_NAME is required"},
		{c.Database.MaxIdleConns > c.Database.MaxOpenConns, "DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS"},
		{c.Auth.JWTSecret == "", "JWT_SECRET is required"},
		{c.Auth.AccessTokenTTL <= 0, "JWT_ACCESS_TTL must be greater than 0"},
		{c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL, "JWT_REFRESH_TTL must exceed JWT_ACCESS_TTL"},
		{c.Auth.RateLimitPerMinute <= 0, "AUTH_RATE_LIMIT_PER_MINUTE must be greater than 0"},
		{c.Auth.RateLimitBurst <= 0, "AUTH_RATE_LIMIT_BURST must be greater than 0"},
		{c.Assistant.RateLimitPerMinute <= 0, "ASSISTANT_RATE_LIMIT_PER_MINUTE must be greater than 0"},
		{c.Assistant.RateLimitBurst <= 0, "ASSISTANT_RATE_LIMIT_BURST must be greater than 0"},
	}

	for _, check := range checks {
		if check.failed {
			return errors.New(check.message)
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseBoolEnv(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}

	return parsed, nil
}

func parseOptionalInt64Env(key string) (*int64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil, nil
	}

	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	return &parsed, nil
}

func parseCSVEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// envFileCandidates перечисляет файлы, которые ищутся без ENV_FILE:
// запуск из backend/ и из корня репозитория.
var envFileCandidates = []string{".env", "../.env"}

func loadEnv() error {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		for _, candidate := range envFileCandidates {
			if _, err := os.Stat(candidate); err == nil {
				envFile = candidate
				break
			}
		}
	}

	if envFile == "" {
		return nil
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("load env file %s: %w", envFile, err)
	}
	return nil
}
