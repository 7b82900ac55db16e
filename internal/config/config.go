package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ServerConfig configures the inventory service (cmd/server).
type ServerConfig struct {
	Environment string `validate:"oneof=development staging production"`
	LogLevel    string `validate:"oneof=debug info warn error"`

	HTTPAddr string `validate:"required"`
	GRPCAddr string `validate:"required"`

	MySQLDSN          string `validate:"required"`
	MySQLMaxOpenConns int    `validate:"min=1"`
	MySQLMaxIdleConns int    `validate:"min=0"`
	MySQLConnLifetime time.Duration
	AutoMigrate       bool

	RedisAddr     string `validate:"required"`
	RedisPassword string
	RedisPoolSize int `validate:"min=1"`

	JWTSecret string `validate:"required,min=16"`

	WorkerCount    int `validate:"min=1"`
	QueueSize      int `validate:"min=1"`
	PersistTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// TerminalConfig configures one POS terminal session (cmd/terminal).
type TerminalConfig struct {
	Environment string `validate:"oneof=development staging production"`
	LogLevel    string `validate:"oneof=debug info warn error"`

	HTTPAddr string `validate:"required"`

	Transport         string `validate:"oneof=http grpc"`
	InventoryURL      string `validate:"required,url"`
	InventoryGRPCAddr string `validate:"required_if=Transport grpc"`
	APIToken          string

	FetchConcurrency int `validate:"min=1,max=64"`
	RequestTimeout   time.Duration
}

func LoadServerConfig() (*ServerConfig, error) {
	loadDotEnv()
	environment := getEnv("ENVIRONMENT", "development")

	cfg := &ServerConfig{
		Environment: environment,
		LogLevel:    getEnv("LOG_LEVEL", defaultLogLevel(environment)),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr: getEnv("GRPC_ADDR", ":50051"),

		MySQLDSN:          getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/stockpos?parseTime=true"),
		MySQLMaxOpenConns: getEnvAsInt("MYSQL_MAX_OPEN_CONNS", 50),
		MySQLMaxIdleConns: getEnvAsInt("MYSQL_MAX_IDLE_CONNS", 25),
		MySQLConnLifetime: getEnvAsDuration("MYSQL_CONN_LIFETIME", 5*time.Minute),
		AutoMigrate:       getEnvAsBool("AUTO_MIGRATE", environment == "development"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisPoolSize: getEnvAsInt("REDIS_POOL_SIZE", 100),

		JWTSecret: getEnv("JWT_SECRET", ""),

		WorkerCount:     getEnvAsInt("WORKER_COUNT", 10),
		QueueSize:       getEnvAsInt("QUEUE_SIZE", 10000),
		PersistTimeout:  getEnvAsDuration("PERSIST_TIMEOUT", 5*time.Second),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadTerminalConfig() (*TerminalConfig, error) {
	loadDotEnv()
	environment := getEnv("ENVIRONMENT", "development")

	cfg := &TerminalConfig{
		Environment: environment,
		LogLevel:    getEnv("LOG_LEVEL", defaultLogLevel(environment)),

		HTTPAddr: getEnv("TERMINAL_ADDR", ":8090"),

		Transport:         strings.ToLower(getEnv("INVENTORY_TRANSPORT", "http")),
		InventoryURL:      getEnv("INVENTORY_URL", "http://localhost:8080"),
		InventoryGRPCAddr: getEnv("INVENTORY_GRPC_ADDR", "localhost:50051"),
		APIToken:          getEnv("API_TOKEN", ""),

		FetchConcurrency: getEnvAsInt("FETCH_CONCURRENCY", 8),
		RequestTimeout:   getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

func (c *TerminalConfig) IsProduction() bool {
	return c.Environment == "production"
}

var validate = func() func(any) error {
	v := validator.New()
	return func(cfg any) error {
		err := v.Struct(cfg)
		if err == nil {
			return nil
		}
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
}()

// loadDotEnv reads .env when present. Variables already set win.
func loadDotEnv() {
	_ = godotenv.Load()
}

func defaultLogLevel(env string) string {
	if env == "production" {
		return "info"
	}
	return "debug"
}

// Helper functions

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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
