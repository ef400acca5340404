package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBUrl         string
	GeminiAPIKey  string
	ModelName     string
	AdminUserID   string
	DailyLimit    int
	HistoryWindow int
	AppEnv        string
}

// LoadConfig reads the environment. Missing model or datastore credentials
// are not fatal here: the corresponding capability is wired as unconfigured
// and the affected endpoints answer with a descriptive 500 instead.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBUrl:         getEnv("DB_URL", ""),
		GeminiAPIKey:  getEnv("GOOGLE_API_KEY", ""),
		ModelName:     getEnv("MODEL_NAME", "gemini-flash-latest"),
		AdminUserID:   getEnv("ADMIN_USER_ID", ""),
		DailyLimit:    getEnvInt("DAILY_LIMIT", 50),
		HistoryWindow: getEnvInt("HISTORY_WINDOW", 8),
		AppEnv:        normalizeEnv(getEnv("APP_ENV", "production")),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
