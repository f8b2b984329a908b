package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	API         APIConfig
	Chat        ChatConfig
	Credentials CredentialsConfig
	Stub        StubConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type ChatConfig struct {
	PollInterval time.Duration
}

type CredentialsConfig struct {
	FilePath   string
	SessionTTL time.Duration
}

type StubConfig struct {
	Port       string
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "evalyze.log"),
		},
		API: APIConfig{
			BaseURL: getEnv("EVALYZE_API_BASE", "http://localhost:8000/api"),
			Timeout: getEnvAsDuration("EVALYZE_API_TIMEOUT", 30*time.Second),
		},
		Chat: ChatConfig{
			PollInterval: getEnvAsDuration("CHAT_POLL_INTERVAL", 5*time.Second),
		},
		Credentials: CredentialsConfig{
			FilePath:   getEnv("CREDENTIALS_FILE", defaultCredentialsPath()),
			SessionTTL: getEnvAsDuration("SESSION_TOKEN_TTL", 12*time.Hour),
		},
		Stub: StubConfig{
			Port:       getEnv("STUB_PORT", "8000"),
			JWTSecret:  getEnv("JWT_SECRET", "default_secret"),
			AccessTTL:  getEnvAsDuration("STUB_ACCESS_TTL", 15*time.Minute),
			RefreshTTL: getEnvAsDuration("STUB_REFRESH_TTL", 24*30*time.Hour),
		},
	}
}

func defaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".evalyze-credentials.json"
	}
	return filepath.Join(home, ".evalyze", "credentials.json")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
