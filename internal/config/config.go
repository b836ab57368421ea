package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Server    ServerConfig
	Gemini    GeminiConfig
	Upload    UploadConfig
	Dashboard DashboardConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port          string
	DashboardPort string
	Env           string
}

type GeminiConfig struct {
	APIKey              string
	Model               string
	BaseURL             string
	Timeout             time.Duration
	RatePerMinute       int
	BreakerEnabled      bool
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

type UploadConfig struct {
	MaxFileSize  int64
	MaxFiles     int
	MaxTextChars int
}

type DashboardConfig struct {
	APIURL     string
	APITimeout time.Duration
	RunTTL     time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found. Using environment and default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "5000"),
			DashboardPort: getEnv("DASHBOARD_PORT", "8501"),
			Env:           getEnv("ENV", "development"),
		},
		Gemini: GeminiConfig{
			// GOOGLE_API_KEY is what older deployments export.
			APIKey:              getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
			Model:               getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			BaseURL:             getEnv("GEMINI_BASE_URL", ""),
			Timeout:             getEnvAsDuration("LLM_TIMEOUT", "60s"),
			RatePerMinute:       getEnvAsInt("LLM_RATE_PER_MINUTE", 60),
			BreakerEnabled:      getEnvAsBool("LLM_BREAKER_ENABLED", true),
			BreakerMinRequests:  uint32(getEnvAsInt("LLM_BREAKER_MIN_REQUESTS", 5)),
			BreakerFailureRatio: getEnvAsFloat("LLM_BREAKER_FAILURE_RATIO", 0.6),
			BreakerOpenTimeout:  getEnvAsDuration("LLM_BREAKER_OPEN_TIMEOUT", "30s"),
		},
		Upload: UploadConfig{
			MaxFileSize:  getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			MaxFiles:     getEnvAsInt("MAX_FILES", 50),
			MaxTextChars: getEnvAsInt("MAX_TEXT_CHARS", 40000),
		},
		Dashboard: DashboardConfig{
			APIURL:     strings.TrimRight(getEnv("API_URL", "http://localhost:5000"), "/"),
			APITimeout: getEnvAsDuration("API_TIMEOUT", "10m"),
			RunTTL:     getEnvAsDuration("RUN_TTL", "2h"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Validate checks the settings the API process cannot start without.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY environment variable not set")
	}
	if c.Upload.MaxFileSize <= 0 {
		return errors.Errorf("MAX_FILE_SIZE must be positive, got %d", c.Upload.MaxFileSize)
	}
	if c.Upload.MaxFiles <= 0 {
		return errors.Errorf("MAX_FILES must be positive, got %d", c.Upload.MaxFiles)
	}
	return nil
}

// BodyLimit is the largest multipart body the API accepts for a full batch.
func (c *Config) BodyLimit() int {
	return int(c.Upload.MaxFileSize) * c.Upload.MaxFiles
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
