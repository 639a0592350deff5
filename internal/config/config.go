package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 应用配置
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	RedisURL    string

	// JWT 双密钥：访问令牌与刷新令牌分开签名
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration

	// 登录限流
	LoginMaxAttempts  int
	LoginLockDuration time.Duration

	// 搜索历史保留天数
	SearchHistoryRetentionDays int

	CORSOrigins []string
	SiteName    string
}

// Load 加载配置
func Load() *Config {
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "shortdrama")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	accessSecret := getEnv("JWT_ACCESS_SECRET", "access-secret-change-in-production")
	refreshSecret := getEnv("JWT_REFRESH_SECRET", "refresh-secret-change-in-production")

	env := getEnv("APP_ENV", "development")
	if env == "production" && strings.HasSuffix(accessSecret, "change-in-production") {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 JWT_ACCESS_SECRET / JWT_REFRESH_SECRET 环境变量。")
	}

	accessMinutes, _ := strconv.Atoi(getEnv("JWT_ACCESS_EXPIRY_MINUTES", "15"))
	refreshHours, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRY_HOURS", "168"))
	maxAttempts, _ := strconv.Atoi(getEnv("LOGIN_MAX_ATTEMPTS", "5"))
	lockMinutes, _ := strconv.Atoi(getEnv("LOGIN_LOCK_MINUTES", "15"))
	retentionDays, _ := strconv.Atoi(getEnv("SEARCH_HISTORY_RETENTION_DAYS", "90"))

	origins := []string{}
	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return &Config{
		Env:                        env,
		Port:                       getEnv("PORT", "5009"),
		DatabaseURL:                dbURL,
		RedisURL:                   getEnv("REDIS_URL", "redis://localhost:6379"),
		AccessSecret:               accessSecret,
		RefreshSecret:              refreshSecret,
		AccessExpiry:               time.Duration(accessMinutes) * time.Minute,
		RefreshExpiry:              time.Duration(refreshHours) * time.Hour,
		LoginMaxAttempts:           maxAttempts,
		LoginLockDuration:          time.Duration(lockMinutes) * time.Minute,
		SearchHistoryRetentionDays: retentionDays,
		CORSOrigins:                origins,
		SiteName:                   getEnv("SITE_NAME", "ShortDrama"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
