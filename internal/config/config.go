package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Source    SourceConfig
	Cache     CacheConfig
	Store     StoreConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Scheduler SchedulerConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type SourceConfig struct {
	CarParkURL     string
	ChargerURL     string
	RequestTimeout time.Duration
	FetchDeadline  time.Duration
	MaxRetries     int
	BackoffMin     time.Duration
	BackoffMax     time.Duration
}

type CacheConfig struct {
	SnapshotTTL time.Duration
}

// StoreConfig selects the snapshot backend: memory, redis or postgres.
type StoreConfig struct {
	Backend string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// .env присутствует не везде; переменные окружения достаточно
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Source: SourceConfig{
			CarParkURL:     viper.GetString("CARPARK_SOURCE_URL"),
			ChargerURL:     viper.GetString("CHARGER_SOURCE_URL"),
			RequestTimeout: time.Duration(viper.GetInt("SOURCE_REQUEST_TIMEOUT")) * time.Millisecond,
			FetchDeadline:  time.Duration(viper.GetInt("SOURCE_FETCH_DEADLINE")) * time.Millisecond,
			MaxRetries:     viper.GetInt("SOURCE_MAX_RETRIES"),
			BackoffMin:     time.Duration(viper.GetInt("SOURCE_BACKOFF_MIN")) * time.Millisecond,
			BackoffMax:     time.Duration(viper.GetInt("SOURCE_BACKOFF_MAX")) * time.Millisecond,
		},
		Cache: CacheConfig{
			SnapshotTTL: time.Duration(viper.GetInt("SNAPSHOT_TTL")) * time.Millisecond,
		},
		Store: StoreConfig{
			Backend: viper.GetString("STORE_BACKEND"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled:  viper.GetBool("SCHEDULER_ENABLED"),
			Interval: time.Duration(viper.GetInt("SCHEDULER_INTERVAL")) * time.Minute,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	// Set default values if not provided
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Source.RequestTimeout == 0 {
		cfg.Source.RequestTimeout = 10 * time.Second
	}
	if cfg.Source.FetchDeadline == 0 {
		cfg.Source.FetchDeadline = 30 * time.Second
	}
	if cfg.Source.MaxRetries == 0 {
		cfg.Source.MaxRetries = 3
	}
	if cfg.Source.BackoffMin == 0 {
		cfg.Source.BackoffMin = 2000 * time.Millisecond
	}
	if cfg.Source.BackoffMax == 0 {
		cfg.Source.BackoffMax = 5000 * time.Millisecond
	}
	if cfg.Cache.SnapshotTTL == 0 {
		cfg.Cache.SnapshotTTL = time.Hour
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Scheduler.Interval == 0 {
		cfg.Scheduler.Interval = 30 * time.Minute
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
