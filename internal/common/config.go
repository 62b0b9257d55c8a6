package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	OCR     OCRConfig
	LLM     LLMConfig
	Extract ExtractConfig
	Worker  WorkerConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	HTTPAddr string
}

// StorageConfig holds file storage and database configuration.
type StorageConfig struct {
	DataDir   string
	BadgerDir string
}

// OCRConfig holds external OCR engine configuration.
type OCRConfig struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	TesseractLang string
	TessdataDir   string
	DPI           int
}

// LLMConfig holds text-generation service configuration.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Retries int
}

// ExtractConfig holds extraction engine configuration.
type ExtractConfig struct {
	RulesPath       string // optional YAML override; empty -> built-in defaults
	SummaryMaxChars int
}

// WorkerConfig holds async queue configuration.
type WorkerConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8000"),
		},
		Storage: StorageConfig{
			DataDir:   getEnv("DATA_DIR", "./data"),
			BadgerDir: getEnv("BADGER_DIR", "./data/badger"),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 300),
		},
		LLM: LLMConfig{
			BaseURL: getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:   getEnv("OLLAMA_MODEL", "llama3.1"),
			Timeout: getEnvAsDuration("OLLAMA_TIMEOUT", 60*time.Second),
			Retries: getEnvAsInt("OLLAMA_RETRIES", 2),
		},
		Extract: ExtractConfig{
			RulesPath:       getEnv("RULES_PATH", ""),
			SummaryMaxChars: getEnvAsInt("SUMMARY_MAX_CHARS", 1200),
		},
		Worker: WorkerConfig{
			Workers:        getEnvAsInt("OCR_WORKERS", 2),
			QueueSize:      getEnvAsInt("OCR_QUEUE_SIZE", 64),
			ProcessTimeout: getEnvAsDuration("OCR_PROCESS_TIMEOUT", 3*time.Minute),
		},
	}
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return Unsupported("config_error", "HTTP_ADDR is required")
	}
	if c.Storage.DataDir == "" {
		return Unsupported("config_error", "DATA_DIR is required")
	}
	if c.Storage.BadgerDir == "" {
		return Unsupported("config_error", "BADGER_DIR is required")
	}
	if c.LLM.Retries < 0 {
		return Unsupported("config_error", "OLLAMA_RETRIES must be >= 0")
	}
	return nil
}

// Helper functions for environment variable parsing.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
