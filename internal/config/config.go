package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	Tokens    TokenConfig
	Server    ServerConfig
	CORS      CORSConfig
	Qdrant    QdrantConfig
	Embedding EmbeddingConfig
	Chunking  ChunkingConfig
	Search    SearchConfig
	Worker    WorkerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// TokenConfig bounds opaque credential lifetimes. A default of 0 means
// tokens of that kind never expire unless the caller asks for an expiry.
type TokenConfig struct {
	PATDefaultExpiryDays int
	PATMaxExpiryDays     int
	CATDefaultExpiryDays int
	CATMaxExpiryDays     int
	// AdminAPIKey, when set, authenticates as a service admin context
	// not tied to any user or collection
	AdminAPIKey string
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type QdrantConfig struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

type EmbeddingConfig struct {
	Model      string
	Dimensions int
	APIKey     string
	BaseURL    string
	// UseMock switches to deterministic hash-based vectors, useful for
	// running without an external embedding API
	UseMock bool
}

type ChunkingConfig struct {
	MaxTokens     int
	OverlapTokens int
}

type SearchConfig struct {
	MaxResults int
	MaxTokens  int
}

type WorkerConfig struct {
	SweepInterval time.Duration
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "document_memory"),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "change-this-secret-in-production"),
			AccessTokenExpiry:  parseDuration(getEnv("ACCESS_TOKEN_EXPIRY", "30m"), 30*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		Tokens: TokenConfig{
			PATDefaultExpiryDays: getEnvInt("PAT_DEFAULT_EXPIRY_DAYS", 90),
			PATMaxExpiryDays:     getEnvInt("PAT_MAX_EXPIRY_DAYS", 365),
			CATDefaultExpiryDays: getEnvInt("CAT_DEFAULT_EXPIRY_DAYS", 0),
			CATMaxExpiryDays:     getEnvInt("CAT_MAX_EXPIRY_DAYS", 365),
			AdminAPIKey:          getEnv("ADMIN_API_KEY", ""),
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		Qdrant: QdrantConfig{
			Host:   getEnv("QDRANT_HOST", "localhost"),
			Port:   getEnvInt("QDRANT_PORT", 6334),
			APIKey: getEnv("QDRANT_API_KEY", ""),
			UseTLS: getEnvBool("QDRANT_USE_TLS", false),
		},
		Embedding: EmbeddingConfig{
			Model:      getEnv("EMBEDDING_MODEL", "Qwen/Qwen3-Embedding-8B"),
			Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", 4096),
			APIKey:     getEnv("EMBEDDING_API_KEY", ""),
			BaseURL:    getEnv("EMBEDDING_BASE_URL", "https://openrouter.ai/api/v1"),
			UseMock:    getEnvBool("USE_MOCK_EMBEDDINGS", false),
		},
		Chunking: ChunkingConfig{
			MaxTokens:     getEnvInt("CHUNK_MAX_TOKENS", 400),
			OverlapTokens: getEnvInt("CHUNK_OVERLAP_TOKENS", 50),
		},
		Search: SearchConfig{
			MaxResults: getEnvInt("SEARCH_MAX_RESULTS", 5),
			MaxTokens:  getEnvInt("SEARCH_MAX_TOKENS", 2000),
		},
		Worker: WorkerConfig{
			SweepInterval: parseDuration(getEnv("TOKEN_SWEEP_INTERVAL", "1h"), time.Hour),
		},
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		fmt.Printf("Warning: Invalid integer for %s: '%s', using default\n", key, value)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		fmt.Printf("Warning: Invalid boolean for %s: '%s', using default\n", key, value)
		return defaultValue
	}
	return b
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		fmt.Printf("Warning: Invalid duration format '%s', using default\n", s)
		return defaultValue
	}
	return duration
}

func parseOrigins(s string) []string {
	if s == "" {
		return []string{}
	}

	origins := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			origins = append(origins, part)
		}
	}

	return origins
}
