package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverAzBlob   = "azblob"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	AI       AIConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Azure    AzureConfig
	History  HistoryConfig
	Schedule ScheduleConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
	AllowOrigins    []string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// AIConfig holds the chat completion provider configuration. An empty API key disables analysis.
type AIConfig struct {
	Provider          string // openai or azure
	Endpoint          string
	APIKey            string
	Model             string
	APIVersion        string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int
}

// StorageConfig selects where analysis history is persisted
type StorageConfig struct {
	Driver        string
	KeyPrefix     string
	EncryptionKey string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	TTL      time.Duration
}

// DatabaseConfig holds database connection configuration. The audit trail uses it when URL is set.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	ConnMaxLifetime time.Duration
}

// AzureConfig holds Azure Blob Storage configuration
type AzureConfig struct {
	AccountName      string
	AccountKey       string
	ServiceURL       string
	HistoryContainer string
	ReportContainer  string
	ArchiveReports   bool
}

// HistoryConfig tunes the in-memory history
type HistoryConfig struct {
	Limit         int
	SeedFromStore bool
}

// ScheduleConfig tunes the schedule stream
type ScheduleConfig struct {
	Tick time.Duration
}

// Load reads configuration from an optional .env file, environment variables and defaults
func Load() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	v := viper.New()

	// Set default values
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	// Bind specific environment variables
	bindEnvVars(v)

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)
	v.SetDefault("server.alloworigins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// AI defaults
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.apiversion", "2024-10-21")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.maxretries", 3)
	v.SetDefault("ai.requestsperminute", 60)

	// Storage defaults
	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.keyprefix", "ayni_analysis_history")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolsize", 10)

	// Database defaults
	v.SetDefault("database.maxconns", 10)
	v.SetDefault("database.connmaxlifetime", 5*time.Minute)

	// Azure Storage defaults
	v.SetDefault("azure.historycontainer", "analysis-history")
	v.SetDefault("azure.reportcontainer", "health-reports")

	// History defaults
	v.SetDefault("history.limit", 50)
	v.SetDefault("history.seedfromstore", true)

	// Schedule defaults
	v.SetDefault("schedule.tick", time.Minute)
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")
	v.BindEnv("server.alloworigins", "CORS_ALLOW_ORIGINS")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")

	// AI
	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("ai.endpoint", "AI_ENDPOINT", "AZURE_OPENAI_ENDPOINT")
	v.BindEnv("ai.apikey", "AI_API_KEY", "OPENAI_API_KEY", "AZURE_OPENAI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL", "AZURE_OPENAI_DEPLOYMENT")
	v.BindEnv("ai.apiversion", "AI_API_VERSION")
	v.BindEnv("ai.timeout", "AI_TIMEOUT")
	v.BindEnv("ai.maxretries", "AI_MAX_RETRIES")
	v.BindEnv("ai.requestsperminute", "AI_REQUESTS_PER_MINUTE")

	// Storage
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.keyprefix", "STORAGE_KEY_PREFIX")
	v.BindEnv("storage.encryptionkey", "STORAGE_ENCRYPTION_KEY")

	// Redis
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("redis.ttl", "REDIS_TTL")

	// Database
	v.BindEnv("database.url", "DATABASE_URL")

	// Azure Storage
	v.BindEnv("azure.accountname", "AZURE_STORAGE_ACCOUNT_NAME")
	v.BindEnv("azure.accountkey", "AZURE_STORAGE_ACCOUNT_KEY")
	v.BindEnv("azure.serviceurl", "AZURE_STORAGE_BLOB_ENDPOINT")
	v.BindEnv("azure.archivereports", "AZURE_ARCHIVE_REPORTS")

	// History and schedule
	v.BindEnv("history.limit", "HISTORY_LIMIT")
	v.BindEnv("history.seedfromstore", "HISTORY_SEED_FROM_STORE")
	v.BindEnv("schedule.tick", "SCHEDULE_TICK")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	switch c.AI.Provider {
	case "openai":
	case "azure":
		if c.AI.APIKey != "" && c.AI.Endpoint == "" {
			return fmt.Errorf("ai.endpoint is required for the azure provider")
		}
	default:
		return fmt.Errorf("ai.provider must be openai or azure, got %q", c.AI.Provider)
	}

	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("ai.maxretries must not be negative")
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis storage driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres storage driver")
		}
	case DriverAzBlob:
		if c.Azure.AccountName == "" || c.Azure.AccountKey == "" {
			return fmt.Errorf("azure storage credentials are required for the azblob storage driver")
		}
	default:
		return fmt.Errorf("storage.driver must be one of memory, redis, postgres, azblob, got %q", c.Storage.Driver)
	}

	if c.Azure.ArchiveReports && (c.Azure.AccountName == "" || c.Azure.AccountKey == "") {
		return fmt.Errorf("azure storage credentials are required to archive reports")
	}

	if c.History.Limit < 1 {
		return fmt.Errorf("history.limit must be at least 1")
	}

	if c.Schedule.Tick <= 0 {
		return fmt.Errorf("schedule.tick must be positive")
	}

	return nil
}
