package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Supported collection store drivers.
const (
	StoreDriverMemory   = "memory"
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverRedis    = "redis"
)

// Roster policies for the student roster derived from results.
const (
	RosterPolicySeedOnce = "seed_once"
	RosterPolicySync     = "sync"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Store        StoreConfig
	Database     DatabaseConfig
	SQLite       SQLiteConfig
	Redis        RedisConfig
	CORS         CORSConfig
	Log          LogConfig
	Notification NotificationConfig
	Records      RecordsConfig
	Views        ViewsConfig
	Exports      ExportsConfig
	Metrics      MetricsConfig
}

// StoreConfig selects the collection store backend.
type StoreConfig struct {
	Driver  string
	FileDir string
	Table   string
}

// DatabaseConfig describes the PostgreSQL collection store.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// SQLiteConfig points at the embedded database file.
type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NotificationConfig controls transient notifications shown by views.
type NotificationConfig struct {
	TTL time.Duration
}

// RecordsConfig governs seeding and by-name reference policies.
type RecordsConfig struct {
	SeedSampleData bool
	RosterPolicy   string
}

// ViewsConfig bounds how long an idle view session is retained.
type ViewsConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// ExportsConfig configures where CLI exports are written.
type ExportsConfig struct {
	Dir string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Store = StoreConfig{
		Driver:  strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		FileDir: v.GetString("STORE_FILE_DIR"),
		Table:   v.GetString("STORE_TABLE"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),

		ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), time.Hour),
		ConnMaxIdleTime: parseDuration(v.GetString("DB_CONN_MAX_IDLE_TIME"), 30*time.Minute),
		ConnectTimeout:  parseDuration(v.GetString("DB_CONNECT_TIMEOUT"), 5*time.Second),
	}

	cfg.SQLite = SQLiteConfig{Path: v.GetString("SQLITE_PATH")}

	cfg.Redis = RedisConfig{
		Host:      v.GetString("REDIS_HOST"),
		Port:      v.GetInt("REDIS_PORT"),
		Password:  v.GetString("REDIS_PASSWORD"),
		DB:        v.GetInt("REDIS_DB"),
		KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:      v.GetString("LOG_LEVEL"),
		Format:     v.GetString("LOG_FORMAT"),
		File:       v.GetString("LOG_FILE"),
		MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
		MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		Compress:   v.GetBool("LOG_COMPRESS"),
	}

	cfg.Notification = NotificationConfig{
		TTL: parseDuration(v.GetString("NOTIFICATION_TTL"), 3*time.Second),
	}

	policy := strings.ToLower(strings.TrimSpace(v.GetString("ROSTER_POLICY")))
	if policy != RosterPolicySync {
		policy = RosterPolicySeedOnce
	}
	cfg.Records = RecordsConfig{
		SeedSampleData: v.GetBool("SEED_SAMPLE_DATA"),
		RosterPolicy:   policy,
	}

	cfg.Views = ViewsConfig{
		IdleTTL:       parseDuration(v.GetString("VIEW_IDLE_TTL"), 30*time.Minute),
		SweepInterval: parseDuration(v.GetString("VIEW_SWEEP_INTERVAL"), time.Minute),
	}

	cfg.Exports = ExportsConfig{Dir: v.GetString("EXPORTS_DIR")}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORE_DRIVER", StoreDriverFile)
	v.SetDefault("STORE_FILE_DIR", "./data")
	v.SetDefault("STORE_TABLE", "collections")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "academic_records")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "30m")
	v.SetDefault("DB_CONNECT_TIMEOUT", "5s")

	v.SetDefault("SQLITE_PATH", "./data/records.db")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "records:")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 50)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("LOG_MAX_AGE_DAYS", 30)
	v.SetDefault("LOG_COMPRESS", true)

	v.SetDefault("NOTIFICATION_TTL", "3s")
	v.SetDefault("SEED_SAMPLE_DATA", true)
	v.SetDefault("ROSTER_POLICY", RosterPolicySeedOnce)

	v.SetDefault("VIEW_IDLE_TTL", "30m")
	v.SetDefault("VIEW_SWEEP_INTERVAL", "1m")

	v.SetDefault("EXPORTS_DIR", "./exports")
	v.SetDefault("ENABLE_METRICS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
