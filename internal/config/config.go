package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Session SessionConfig
	Redis   RedisConfig
	Logging LoggingConfig
	CORS    CORSConfig
}

type ServerConfig struct {
	Port           string
	MaxUploadBytes int64
}

// LLMConfig describes the hosted chat-completion service.
type LLMConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	AppTitle string
	Timeout  time.Duration
}

type SessionConfig struct {
	SigningKey string
	Issuer     string
	CookieName string
	Expiry     time.Duration
	Secure     bool
	// Store is "memory" or "redis".
	Store string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LoggingConfig struct {
	Level      string
	Format     string
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			MaxUploadBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),
		},
		LLM: LLMConfig{
			APIKey:   os.Getenv("OPENROUTER_API_KEY"),
			BaseURL:  strings.TrimRight(getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"), "/"),
			Model:    getEnv("OPENROUTER_MODEL", "meta-llama/llama-3.3-70b-instruct:free"),
			AppTitle: getEnv("OPENROUTER_APP_TITLE", "SwaggerAnalyzer"),
			Timeout:  getEnvDuration("LLM_TIMEOUT", 120*time.Second),
		},
		Session: SessionConfig{
			SigningKey: getEnv("SESSION_SIGNING_KEY", "default-session-key-change-in-production"),
			Issuer:     getEnv("SESSION_ISSUER", "swagger-analyzer"),
			CookieName: getEnv("SESSION_COOKIE_NAME", "swagger_analyzer_session"),
			Expiry:     getEnvDuration("SESSION_EXPIRY", 2*time.Hour),
			Secure:     getEnvBool("SESSION_COOKIE_SECURE", false),
			Store:      getEnv("SESSION_STORE", "memory"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "text"),
			Filename:   getEnv("LOG_FILE", "logs/swagger-analyzer.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			MaxAge:     getEnvInt("LOG_MAX_AGE_DAYS", 14),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8080"}),
			AllowedMethods:   getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders:   getEnvSlice("CORS_ALLOWED_HEADERS", []string{"Accept", "Content-Type", "X-Request-ID"}),
			ExposedHeaders:   getEnvSlice("CORS_EXPOSED_HEADERS", []string{"Content-Disposition"}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getEnvInt("CORS_MAX_AGE", 300),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// comma separated, blanks dropped
func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
