package config

import (
	"fmt"
	"os"
	"strconv"

	"fieldsheet/internal/logger"
)

type Config struct {
	// OCR Configuration
	OCREngine         string // tesseract, google-vision, document-ai
	TesseractLanguage string
	Preprocess        bool

	// Google Cloud Configuration
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// Extraction Configuration
	DefaultProfile string
	ProfilePath    string

	// OpenAI Configuration (optional, review suggestions)
	OpenAIAPIKey string

	// Google Sheets Configuration (optional, export)
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Persistence Configuration
	DatabasePath string

	// Batch Configuration
	BatchWorkers int

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OCREngine:                  getEnv("OCR_ENGINE", "tesseract"),
		TesseractLanguage:          getEnv("TESSERACT_LANGUAGE", "eng"),
		Preprocess:                 getEnvBool("OCR_PREPROCESS", true),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		DefaultProfile:             getEnv("EXTRACTION_PROFILE", "generic"),
		ProfilePath:                getEnv("EXTRACTION_PROFILE_FILE", ""),
		OpenAIAPIKey:               getEnv("OPENAI_API_KEY", ""),
		GoogleSheetURL:             getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:       getEnv("GOOGLE_SHEET_WORKSHEET", "Readings"),
		DatabasePath:               getEnv("DATABASE_PATH", "fieldsheet.db"),
		BatchWorkers:               getEnvInt("BATCH_WORKERS", 4),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OCREngine {
	case "tesseract", "google-vision", "document-ai":
	default:
		return fmt.Errorf("OCR_ENGINE must be one of tesseract, google-vision, document-ai (got %q)", c.OCREngine)
	}
	// Cloud engine credentials are resolved lazily by the engines themselves;
	// only the processor coordinates can be checked up front.
	if c.OCREngine == "document-ai" && c.DocumentAIProcessorID == "" {
		return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required when OCR_ENGINE=document-ai")
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be at least 1 (got %d)", c.BatchWorkers)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
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
