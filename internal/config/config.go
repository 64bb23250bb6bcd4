package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string
	LogMode   string // dev 或 prod

	// 分析参数
	DefaultFPS   float64 // 请求未指定 fps 时使用
	MaxParallel  int     // 同时分析的个体数上限
	RateLimit    int     // 每分钟每个客户端的请求数，0 表示不限制
	MaxBodyBytes int64   // 请求体大小上限（字节）
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", ":8080"),
		DBPath:       getEnv("DB_PATH", "./data/arenas.db"),
		JWTSecret:    getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		LogMode:      getEnv("LOG_MODE", "dev"),
		MaxBodyBytes: 1024 * 1024 * 64, // 64MB
	}

	var err error
	if cfg.DefaultFPS, err = getFloat("ANALYSIS_DEFAULT_FPS", 30); err != nil {
		return nil, err
	}
	if cfg.MaxParallel, err = getInt("ANALYSIS_MAX_PARALLEL", 4); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return nil, err
	}

	if cfg.DefaultFPS <= 0 {
		return nil, fmt.Errorf("ANALYSIS_DEFAULT_FPS must be positive, got %v", cfg.DefaultFPS)
	}
	if cfg.MaxParallel <= 0 {
		return nil, fmt.Errorf("ANALYSIS_MAX_PARALLEL must be positive, got %d", cfg.MaxParallel)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be non-negative, got %d", cfg.RateLimit)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
