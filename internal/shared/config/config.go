package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	KurrentDB     KurrentDBConfig
	Auth          AuthConfig
	Anonymization AnonymizationConfig
	TSA           TSAConfig
	EHR           EHRConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// KurrentDBConfig holds configuration for the session event store.
type KurrentDBConfig struct {
	// Enabled selects the KurrentDB-backed ledger store; disabled falls
	// back to the in-memory store (development only).
	Enabled  bool
	Host     string
	Port     int
	Insecure bool
	Username string
	Password string
}

// ConnectionString builds the esdb connection string.
func (k KurrentDBConfig) ConnectionString() string {
	creds := ""
	if k.Username != "" {
		creds = fmt.Sprintf("%s:%s@", k.Username, k.Password)
	}
	return fmt.Sprintf("esdb://%s%s:%d?tls=%t", creds, k.Host, k.Port, !k.Insecure)
}

type AuthConfig struct {
	// Enabled disables the JWT middleware entirely in development.
	Enabled   bool
	JWTSecret string
}

// AnonymizationConfig holds the clinician pseudonymization key.
type AnonymizationConfig struct {
	// HMACKey keys the pseudonym derivation. Rotating it unlinks all
	// previously issued packets from future ones.
	HMACKey string
}

// TSAConfig holds configuration for the attestation authority.
type TSAConfig struct {
	Enabled bool
	// AuthorityName for the self-signed certificate (development).
	AuthorityName string
	// CertPath and KeyPath select a PKI-issued identity in production.
	CertPath string
	KeyPath  string
}

// EHRConfig holds the reporting database export settings.
type EHRConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Database     string
	User         string
	Password     string
	Encrypt      bool
	SummaryTable string
	Timeout      time.Duration
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("SERVER_PORT", 8080),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "evidify"),
			Password: getEnv("DB_PASSWORD", "evidify"),
			Database: getEnv("DB_NAME", "evidify"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		KurrentDB: KurrentDBConfig{
			Enabled:  getEnvBool("KURRENTDB_ENABLED", false),
			Host:     getEnv("KURRENTDB_HOST", "localhost"),
			Port:     getEnvInt("KURRENTDB_PORT", 2113),
			Insecure: getEnvBool("KURRENTDB_INSECURE", true),
			Username: getEnv("KURRENTDB_USERNAME", ""),
			Password: getEnv("KURRENTDB_PASSWORD", ""),
		},
		Auth: AuthConfig{
			Enabled:   getEnvBool("AUTH_ENABLED", false),
			JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-prod"),
		},
		Anonymization: AnonymizationConfig{
			HMACKey: getEnv("ANONYMIZATION_HMAC_KEY", "dev-hmac-key-change-in-production"),
		},
		TSA: TSAConfig{
			Enabled:       getEnvBool("TSA_ENABLED", true),
			AuthorityName: getEnv("TSA_AUTHORITY_NAME", "Evidify Internal"),
			CertPath:      getEnv("TSA_CERT_PATH", ""),
			KeyPath:       getEnv("TSA_KEY_PATH", ""),
		},
		EHR: EHRConfig{
			Enabled:      getEnvBool("EHR_EXPORT_ENABLED", false),
			Host:         getEnv("EHR_DB_HOST", "localhost"),
			Port:         getEnvInt("EHR_DB_PORT", 1433),
			Database:     getEnv("EHR_DB_NAME", "reporting"),
			User:         getEnv("EHR_DB_USER", ""),
			Password:     getEnv("EHR_DB_PASSWORD", ""),
			Encrypt:      getEnvBool("EHR_DB_ENCRYPT", true),
			SummaryTable: getEnv("EHR_SUMMARY_TABLE", "dbo.PacketSummaries"),
			Timeout:      getEnvDuration("EHR_EXPORT_TIMEOUT", 5*time.Second),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
