package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	StoreMode     string // "postgres" or "file"
	StoreFile     string
	DSN           string
	MigrationsDir string
	HTTPPort      string
	Username      string
	Password      string
	LogLevel      string
	FilterWord    string
	CacheRefresh  time.Duration
	KafkaBrokers  []string
	KafkaGroupID  string
	KafkaTopic    string
}

func LoadConfig() *Config {
	brokersStr := getEnv("KAFKA_BROKERS", "localhost:9092")
	return &Config{
		StoreMode:     getEnv("APP_STORE", "file"),
		StoreFile:     getEnv("APP_STORE_FILE", "orders.json"),
		DSN:           getEnv("APP_DSN", "host=localhost user=postgres password=postgres dbname=orders sslmode=disable"),
		MigrationsDir: getEnv("APP_MIGRATIONS", "migrations"),
		HTTPPort:      getEnv("APP_PORT", "9000"),
		Username:      getEnv("APP_USER", "admin"),
		Password:      getEnv("APP_PASS", "secret"),
		LogLevel:      getEnv("APP_LOG_LEVEL", "info"),
		FilterWord:    getEnv("APP_FILTER", ""),
		CacheRefresh:  getDuration("APP_CACHE_REFRESH", 30*time.Second),
		KafkaBrokers:  strings.Split(brokersStr, ","),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "orders-audit"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "order-audit"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}
