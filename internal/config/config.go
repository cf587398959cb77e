// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Variance VarianceConfig
	Cache    CacheConfig
	Archive  ArchiveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// EngineConfig carries the projection-engine tunables. Shipping weeks is the
// only lead time a caller may override per request, within [ShippingMinWeeks,
// ShippingMaxWeeks].
type EngineConfig struct {
	PastWeeks        int
	FutureWeeks      int
	LoadingWeeks     int
	ShippingMinWeeks int
	ShippingMaxWeeks int
}

// VarianceConfig externalizes the alerting thresholds. The numbers are
// operator-tunable, not contract.
type VarianceConfig struct {
	OverdueAgeDays  int
	CriticalAgeDays int
	HighAgeDays     int
	CriticalQty     int
	HighQty         int
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

// ArchiveConfig configures the optional S3-compatible archive for imported
// forecast files. Disabled when the endpoint is empty.
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "planboard")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("ENGINE_PAST_WEEKS", 4)
		viper.SetDefault("ENGINE_FUTURE_WEEKS", 11)
		viper.SetDefault("ENGINE_LOADING_WEEKS", 1)
		viper.SetDefault("ENGINE_SHIPPING_MIN_WEEKS", 3)
		viper.SetDefault("ENGINE_SHIPPING_MAX_WEEKS", 8)
		viper.SetDefault("VARIANCE_OVERDUE_AGE_DAYS", 14)
		viper.SetDefault("VARIANCE_CRITICAL_AGE_DAYS", 30)
		viper.SetDefault("VARIANCE_HIGH_AGE_DAYS", 14)
		viper.SetDefault("VARIANCE_CRITICAL_QTY", 500)
		viper.SetDefault("VARIANCE_HIGH_QTY", 100)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 60)
		viper.SetDefault("ARCHIVE_ENDPOINT", "")
		viper.SetDefault("ARCHIVE_ACCESS_KEY", "")
		viper.SetDefault("ARCHIVE_SECRET_KEY", "")
		viper.SetDefault("ARCHIVE_BUCKET", "planboard-imports")
		viper.SetDefault("ARCHIVE_REGION", "")
		viper.SetDefault("ARCHIVE_USE_SSL", true)

		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Engine: EngineConfig{
				PastWeeks:        viper.GetInt("ENGINE_PAST_WEEKS"),
				FutureWeeks:      viper.GetInt("ENGINE_FUTURE_WEEKS"),
				LoadingWeeks:     viper.GetInt("ENGINE_LOADING_WEEKS"),
				ShippingMinWeeks: viper.GetInt("ENGINE_SHIPPING_MIN_WEEKS"),
				ShippingMaxWeeks: viper.GetInt("ENGINE_SHIPPING_MAX_WEEKS"),
			},
			Variance: VarianceConfig{
				OverdueAgeDays:  viper.GetInt("VARIANCE_OVERDUE_AGE_DAYS"),
				CriticalAgeDays: viper.GetInt("VARIANCE_CRITICAL_AGE_DAYS"),
				HighAgeDays:     viper.GetInt("VARIANCE_HIGH_AGE_DAYS"),
				CriticalQty:     viper.GetInt("VARIANCE_CRITICAL_QTY"),
				HighQty:         viper.GetInt("VARIANCE_HIGH_QTY"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ReportTTLSeconds: viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
			},
			Archive: ArchiveConfig{
				Endpoint:  viper.GetString("ARCHIVE_ENDPOINT"),
				AccessKey: viper.GetString("ARCHIVE_ACCESS_KEY"),
				SecretKey: viper.GetString("ARCHIVE_SECRET_KEY"),
				Bucket:    viper.GetString("ARCHIVE_BUCKET"),
				Region:    viper.GetString("ARCHIVE_REGION"),
				UseSSL:    viper.GetBool("ARCHIVE_USE_SSL"),
			},
		}
	})

	return instance
}
