package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config структура конфигурации клиентского ядра
type Config struct {
	APIBaseURL     string        // Базовый URL бэкенда, например http://localhost:8000/api
	PollInterval   time.Duration // Интервал опроса новых сообщений
	RequestTimeout time.Duration // Таймаут HTTP-запросов
	TokenFile      string        // Файл с сохранёнными токенами
	AppEnv         string        // Окружение приложения

	// Настройки встроенного стаб-бэкенда
	StubConfig StubConfig
}

// StubConfig содержит конфигурацию стаб-бэкенда
type StubConfig struct {
	Port      string
	JWTSecret string
}

// LoadConfig загружает переменные из .env
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	cfg := &Config{
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8000/api"),
		PollInterval:   getDurationEnv("POLL_INTERVAL_SECONDS", 5),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT_SECONDS", 10),
		TokenFile:      getEnv("TOKEN_FILE", ".tokens.json"),
		AppEnv:         getEnv("APP_ENV", "production"), // По умолчанию production
		StubConfig: StubConfig{
			Port:      getEnv("STUB_PORT", "8000"),
			JWTSecret: getEnv("JWT_SECRET", "stub-secret"),
		},
	}

	return cfg
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getDurationEnv читает количество секунд из переменной окружения
func getDurationEnv(key string, defaultSeconds int) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
		log.Printf("⚠️ Неверное значение %s, используем %d секунд", key, defaultSeconds)
	}
	return time.Duration(defaultSeconds) * time.Second
}
