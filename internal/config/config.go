package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Gemini     GeminiConfig
	Portfolio  PortfolioConfig
	Guardrails GuardrailsConfig
	Analysis   AnalysisConfig
	Security   SecurityConfig
}

type ServerConfig struct {
	Port  string
	Env   string
	Debug bool
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type GeminiConfig struct {
	APIKey          string
	Model           string
	ClassifierModel string
}

type PortfolioConfig struct {
	Dir             string
	MaxContextChars int
}

type GuardrailsConfig struct {
	Enabled        []string
	BlockThreshold float64
	CheckTimeout   time.Duration
	AllowedTopics  []string
}

type AnalysisConfig struct {
	Timeout       time.Duration
	ExpectedChars int
}

type SecurityConfig struct {
	LogPath   string
	QueueSize int
	Workers   int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:  getEnv("PORT", "3000"),
			Env:   getEnv("ENV", "development"),
			Debug: getEnvAsBool("DEBUG", false),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("SECURITY_DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "jobfit_analyzer"),
		},
		Gemini: GeminiConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			ClassifierModel: getEnv("GEMINI_CLASSIFIER_MODEL", "gemini-2.5-flash-lite"),
		},
		Portfolio: PortfolioConfig{
			Dir:             getEnv("PORTFOLIO_DIR", "./portfolio"),
			MaxContextChars: getEnvAsInt("PORTFOLIO_MAX_CONTEXT_CHARS", 24000),
		},
		Guardrails: GuardrailsConfig{
			Enabled:        getEnvAsList("GUARDRAIL_CHECKS", "prompt_injection,jailbreak,off_topic,content_moderation"),
			BlockThreshold: getEnvAsFloat("GUARDRAIL_BLOCK_THRESHOLD", 0.8),
			CheckTimeout:   getEnvAsDuration("GUARDRAIL_CHECK_TIMEOUT", "10s"),
			AllowedTopics:  getEnvAsList("GUARDRAIL_ALLOWED_TOPICS", ""),
		},
		Analysis: AnalysisConfig{
			Timeout:       getEnvAsDuration("ANALYSIS_TIMEOUT", "90s"),
			ExpectedChars: getEnvAsInt("ANALYSIS_EXPECTED_CHARS", 4000),
		},
		Security: SecurityConfig{
			LogPath:   getEnv("SECURITY_LOG_PATH", "./logs/security.jsonl"),
			QueueSize: getEnvAsInt("SECURITY_QUEUE_SIZE", 256),
			Workers:   getEnvAsInt("SECURITY_WORKERS", 2),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
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

func getEnvAsList(key string, defaultValue string) []string {
	valueStr := getEnv(key, defaultValue)
	if strings.TrimSpace(valueStr) == "" {
		return nil
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
