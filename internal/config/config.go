// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Sources SourcesConfig
	Prefs   PrefsConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// SourcesConfig selects where the accounting exports are fetched from and
// the file names of the enumerated sources.
type SourcesConfig struct {
	// Fetcher is one of "local", "s3", "drive".
	Fetcher             string
	DataDir             string
	IncludeCurrentMonth bool

	ItemsFile           string
	PurchaseOrdersFile  string
	SalesFallbackFile   string
	InvoiceToDateFile   string
	InvoiceFallbackFile string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Prefix    string
	S3UseSSL    bool

	DriveCredentialsJSON string
	DriveFolderID        string
}

type PrefsConfig struct {
	// Backend is "redis" or "memory".
	Backend       string
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
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
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

		viper.SetDefault("SOURCES_FETCHER", "local")
		viper.SetDefault("SOURCES_DATA_DIR", "./data")
		viper.SetDefault("SOURCES_INCLUDE_CURRENT_MONTH", true)
		viper.SetDefault("SOURCES_ITEMS_FILE", "Items.csv")
		viper.SetDefault("SOURCES_PO_FILE", "Purchase_Order.csv")
		viper.SetDefault("SOURCES_SALES_FALLBACK_FILE", "SalesHistory_Updated_Oct2025.csv")
		viper.SetDefault("SOURCES_INVOICE_TODATE_FILE", "Invoice_ToDate.csv")
		viper.SetDefault("SOURCES_INVOICE_FALLBACK_FILE", "Invoices.csv")
		viper.SetDefault("S3_ENDPOINT", "")
		viper.SetDefault("S3_ACCESS_KEY", "")
		viper.SetDefault("S3_SECRET_KEY", "")
		viper.SetDefault("S3_BUCKET", "")
		viper.SetDefault("S3_PREFIX", "")
		viper.SetDefault("S3_USE_SSL", true)
		viper.SetDefault("DRIVE_CREDENTIALS_JSON", "")
		viper.SetDefault("DRIVE_FOLDER_ID", "")

		viper.SetDefault("PREFS_BACKEND", "memory")
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)

		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Sources: SourcesConfig{
				Fetcher:              viper.GetString("SOURCES_FETCHER"),
				DataDir:              viper.GetString("SOURCES_DATA_DIR"),
				IncludeCurrentMonth:  viper.GetBool("SOURCES_INCLUDE_CURRENT_MONTH"),
				ItemsFile:            viper.GetString("SOURCES_ITEMS_FILE"),
				PurchaseOrdersFile:   viper.GetString("SOURCES_PO_FILE"),
				SalesFallbackFile:    viper.GetString("SOURCES_SALES_FALLBACK_FILE"),
				InvoiceToDateFile:    viper.GetString("SOURCES_INVOICE_TODATE_FILE"),
				InvoiceFallbackFile:  viper.GetString("SOURCES_INVOICE_FALLBACK_FILE"),
				S3Endpoint:           viper.GetString("S3_ENDPOINT"),
				S3AccessKey:          viper.GetString("S3_ACCESS_KEY"),
				S3SecretKey:          viper.GetString("S3_SECRET_KEY"),
				S3Bucket:             viper.GetString("S3_BUCKET"),
				S3Prefix:             viper.GetString("S3_PREFIX"),
				S3UseSSL:             viper.GetBool("S3_USE_SSL"),
				DriveCredentialsJSON: viper.GetString("DRIVE_CREDENTIALS_JSON"),
				DriveFolderID:        viper.GetString("DRIVE_FOLDER_ID"),
			},
			Prefs: PrefsConfig{
				Backend:       viper.GetString("PREFS_BACKEND"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
			},
		}
	})

	return instance
}
