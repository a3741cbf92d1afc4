package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Valkey     ValkeyConfig
	MinIO      MinIOConfig
	Textract   TextractConfig
	Bedrock    BedrockConfig
	OpenRouter OpenRouterConfig
	Pipeline   PipelineConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type ValkeyConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type TextractConfig struct {
	Region string
}

type BedrockConfig struct {
	Region  string
	ModelID string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// PipelineConfig bounds the external service calls made by the stage
// executors. Extraction is OCR over the raw document and budgets longer than
// the generation stages, but neither is ever unbounded.
type PipelineConfig struct {
	ExtractionTimeout time.Duration
	GenerationTimeout time.Duration
	UploadMaxBytes    int64
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SECS", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SECS", 60)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "docproc"),
			Password: getEnv("DB_PASSWORD", "docproc"),
			Name:     getEnv("DB_NAME", "docproc"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
		},
		Valkey: ValkeyConfig{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			DB:       getEnvInt("VALKEY_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "docproc"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "docproc123"),
			Bucket:    getEnv("MINIO_BUCKET", "documents"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Textract: TextractConfig{
			Region: getEnv("TEXTRACT_REGION", "us-east-1"),
		},
		Bedrock: BedrockConfig{
			Region:  getEnv("BEDROCK_REGION", "us-east-1"),
			ModelID: getEnv("BEDROCK_MODEL_ID", "global.anthropic.claude-sonnet-4-20250514-v1:0"),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:  getEnv("OPENROUTER_API_KEY", ""),
			Model:   getEnv("OPENROUTER_MODEL", ""),
			BaseURL: getEnv("OPENROUTER_BASE_URL", ""),
		},
		Pipeline: PipelineConfig{
			ExtractionTimeout: time.Duration(getEnvInt("PIPELINE_EXTRACTION_TIMEOUT_SECS", 300)) * time.Second,
			GenerationTimeout: time.Duration(getEnvInt("PIPELINE_GENERATION_TIMEOUT_SECS", 120)) * time.Second,
			UploadMaxBytes:    int64(getEnvInt("UPLOAD_MAX_BYTES", 10*1024*1024)),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
