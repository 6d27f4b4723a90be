package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Telegram    TelegramConfig
	CardGateway CardGatewayConfig
	CryptoPay   CryptoPayConfig
	TokenPay    TokenPayConfig
	Reconcile   ReconcileConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// TelegramConfig holds bot transport configuration
type TelegramConfig struct {
	Token         string
	APIBaseURL    string
	WebhookSecret string
	OperatorID    int64   // chat that receives order notifications
	AdminIDs      []int64 // users allowed to add products
	SessionTTL    time.Duration
}

// CardGatewayConfig holds card payment gateway credentials
type CardGatewayConfig struct {
	BaseURL   string
	ShopID    string
	SecretKey string
	Currency  string
	ReturnURL string
	Timeout   time.Duration
}

// CryptoPayConfig holds crypto invoice gateway configuration
type CryptoPayConfig struct {
	BaseURL  string
	APIToken string
	Asset    string
	// FiatPerAsset is the fixed conversion rate: minor currency units per
	// one asset unit.
	FiatPerAsset int64
	InvoiceTTL   time.Duration
	Timeout      time.Duration
}

// TokenPayConfig holds in-platform token currency configuration
type TokenPayConfig struct {
	// MinorUnitsPerToken converts a product price into tokens by integer
	// division.
	MinorUnitsPerToken int64
}

// ReconcileConfig holds background sweep configuration
type ReconcileConfig struct {
	Interval time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "storebot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Telegram: TelegramConfig{
			Token:         getEnv("TG_TOKEN", ""),
			APIBaseURL:    getEnv("TG_API_BASE_URL", "https://api.telegram.org"),
			WebhookSecret: getEnv("TG_WEBHOOK_SECRET", ""),
			OperatorID:    getEnvAsInt64("OPERATOR_CHAT_ID", 0),
			AdminIDs:      getEnvAsInt64List("ADMIN_IDS"),
			SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		CardGateway: CardGatewayConfig{
			BaseURL:   getEnv("CARD_GATEWAY_URL", "https://api.yookassa.ru/v3"),
			ShopID:    getEnv("CARD_SHOP_ID", ""),
			SecretKey: getEnv("CARD_SECRET_KEY", ""),
			Currency:  getEnv("CARD_CURRENCY", "RUB"),
			ReturnURL: getEnv("CARD_RETURN_URL", ""),
			Timeout:   getEnvAsDuration("CARD_TIMEOUT", 10*time.Second),
		},
		CryptoPay: CryptoPayConfig{
			BaseURL:      getEnv("CRYPTO_PAY_URL", "https://pay.crypt.bot/api"),
			APIToken:     getEnv("CRYPTO_PAY_API_KEY", ""),
			Asset:        getEnv("CRYPTO_ASSET", "USDT"),
			FiatPerAsset: getEnvAsInt64("CRYPTO_FIAT_PER_ASSET", 8500),
			InvoiceTTL:   getEnvAsDuration("CRYPTO_INVOICE_TTL", 15*time.Minute),
			Timeout:      getEnvAsDuration("CRYPTO_TIMEOUT", 10*time.Second),
		},
		TokenPay: TokenPayConfig{
			MinorUnitsPerToken: getEnvAsInt64("TOKEN_MINOR_UNITS_PER_TOKEN", 200),
		},
		Reconcile: ReconcileConfig{
			Interval: getEnvAsDuration("RECONCILE_INTERVAL", 5*time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64List(key string) []int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Fields(raw) {
		if v, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
