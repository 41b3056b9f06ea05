package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env       string
	AppSecret string
	Port      string

	// DBDriver 可选 postgres / sqlite / memory
	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	JWTExpiry time.Duration

	SessionCacheSize int
	SessionIdle      time.Duration

	LogLevel          string
	MinPasswordLength int
}

// Load 加载配置
func Load() *Config {
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "cinequeue")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	env := getEnv("APP_ENV", "development")
	appSecret := getEnv("APP_SECRET", getEnv("JWT_SECRET", defaultSecret))

	if env == "production" && appSecret == defaultSecret {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return &Config{
		Env:               env,
		AppSecret:         appSecret,
		Port:              getEnv("PORT", "5005"),
		DBDriver:          getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:       getEnv("DATABASE_URL", dbURL),
		SQLitePath:        getEnv("SQLITE_PATH", "cinequeue.db"),
		JWTExpiry:         time.Duration(getEnvAsInt("JWT_EXPIRY_HOURS", 72)) * time.Hour,
		SessionCacheSize:  getEnvAsInt("SESSION_CACHE_SIZE", 1000),
		SessionIdle:       time.Duration(getEnvAsInt("SESSION_IDLE_MINUTES", 60)) * time.Minute,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		MinPasswordLength: getEnvAsInt("MIN_PASSWORD_LENGTH", 6),
	}
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt 读取整数配置，格式错误或非正数时使用默认值
func getEnvAsInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
