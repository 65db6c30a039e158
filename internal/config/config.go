package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// r2EndpointTemplate derives the S3 API endpoint of a Cloudflare R2 account.
const r2EndpointTemplate = "https://%s.r2.cloudflarestorage.com"

// Catalog and storage backend identifiers.
const (
	CatalogDriverMongo    = "mongo"
	CatalogDriverPostgres = "postgres"

	StorageDriverMinIO = "minio"
	StorageDriverS3    = "s3"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MongoConfig holds document store settings.
type MongoConfig struct {
	URI               string
	Database          string
	ConnectTimeoutSec int
}

// StorageConfig holds settings for the S3-compatible object store.
// Endpoint wins over AccountID when both are set.
type StorageConfig struct {
	Driver          string
	Endpoint        string
	AccountID       string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env             string
	LogLevel        string
	Port            string
	CORSAllowOrigin string
	CatalogDriver   string
	Database        DatabaseConfig
	Mongo           MongoConfig
	Storage         StorageConfig
}

// MissingSettingError reports a required runtime setting that is absent.
type MissingSettingError struct {
	Setting string
}

func (e *MissingSettingError) Error() string {
	return "missing configuration: " + e.Setting
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// The R2_* names used by earlier deployments are honoured as fallbacks.
func Load() *AppConfig {
	return &AppConfig{
		Env:             getEnv("APP_ENV", "production"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),
		CatalogDriver:   strings.ToLower(getEnv("CATALOG_DRIVER", CatalogDriverMongo)),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Mongo: MongoConfig{
			URI:               getEnv("MONGODB_URI", ""),
			Database:          getEnv("MONGODB_DB", "mediaapi"),
			ConnectTimeoutSec: getEnvInt("MONGODB_CONNECT_TIMEOUT_SEC", 10),
		},
		Storage: StorageConfig{
			Driver:          strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverMinIO)),
			Endpoint:        firstEnv("", "STORAGE_ENDPOINT", "R2_ENDPOINT"),
			AccountID:       firstEnv("", "STORAGE_ACCOUNT_ID", "R2_ACCOUNT_ID"),
			Region:          firstEnv("auto", "STORAGE_REGION", "R2_REGION"),
			Bucket:          firstEnv("", "STORAGE_BUCKET", "R2_BUCKET"),
			AccessKeyID:     firstEnv("", "STORAGE_ACCESS_KEY_ID", "R2_ACCESS_KEY_ID"),
			SecretAccessKey: firstEnv("", "STORAGE_SECRET_ACCESS_KEY", "R2_SECRET_ACCESS_KEY"),
			UseSSL:          getEnvBool("STORAGE_USE_SSL", true),
		},
	}
}

// ResolveEndpoint returns the object store endpoint, either the explicit one
// with any trailing slash removed or the one derived from the account id.
func (c StorageConfig) ResolveEndpoint() (string, error) {
	if ep := strings.TrimSpace(c.Endpoint); ep != "" {
		return strings.TrimRight(ep, "/"), nil
	}
	if id := strings.TrimSpace(c.AccountID); id != "" {
		return fmt.Sprintf(r2EndpointTemplate, id), nil
	}
	return "", &MissingSettingError{Setting: "STORAGE_ENDPOINT or STORAGE_ACCOUNT_ID"}
}

// Validate checks that every setting needed to sign links is present.
func (c StorageConfig) Validate() error {
	if _, err := c.ResolveEndpoint(); err != nil {
		return err
	}
	if c.Bucket == "" {
		return &MissingSettingError{Setting: "STORAGE_BUCKET"}
	}
	if c.AccessKeyID == "" {
		return &MissingSettingError{Setting: "STORAGE_ACCESS_KEY_ID"}
	}
	if c.SecretAccessKey == "" {
		return &MissingSettingError{Setting: "STORAGE_SECRET_ACCESS_KEY"}
	}
	return nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(def string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
