package config

import (
	"errors" // Validation errors
	"fmt"    // Error formatting
	"time"   // Token lifetime

	"github.com/joho/godotenv" // For loading .env files
	"github.com/spf13/viper"   // Typed access to environment with defaults
)

// DefaultTokenTTL is used when ACCESS_TOKEN_EXPIRE_MINUTES is zero or unset
const DefaultTokenTTL = 15 * time.Minute

// Config holds the application configuration
type Config struct {
	AppPort           string        // Application port
	DBDriver          string        // Database driver: mysql or postgres
	DBUser            string        // Database user
	DBPassword        string        // Database password
	DBHost            string        // Database host
	DBPort            string        // Database port
	DBName            string        // Database name
	JWTSecret         string        // JWT signing secret
	JWTAlgorithm      string        // JWT signing algorithm (HS256, HS384, HS512)
	TokenTTL          time.Duration // Access token lifetime
	TransactionSecret string        // Shared secret for payment signatures
	RedisAddr         string        // Redis server address, empty disables Redis
	RedisPass         string        // Redis password
	RedisDB           int           // Redis database number
	IsProd            bool          // Is production environment
	LogLevel          string        // logrus level name
}

// LoadConfig loads configuration from the environment, reading .env first if present
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_NAME", "ledger")
	v.SetDefault("ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 0)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IS_PROD", false)
	v.SetDefault("LOG_LEVEL", "info")

	return &Config{
		AppPort:           v.GetString("APP_PORT"),
		DBDriver:          v.GetString("DB_DRIVER"),
		DBUser:            v.GetString("DB_USER"),
		DBPassword:        v.GetString("DB_PASSWORD"),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBName:            v.GetString("DB_NAME"),
		JWTSecret:         v.GetString("SECRET_KEY"),
		JWTAlgorithm:      v.GetString("ALGORITHM"),
		TokenTTL:          TokenTTL(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")),
		TransactionSecret: v.GetString("TRANSACTION_SECRET_KEY"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPass:         v.GetString("REDIS_PASS"),
		RedisDB:           v.GetInt("REDIS_DB"),
		IsProd:            v.GetBool("IS_PROD"),
		LogLevel:          v.GetString("LOG_LEVEL"),
	}
}

// TokenTTL converts a minute count to a lifetime, falling back to DefaultTokenTTL
func TokenTTL(minutes int) time.Duration {
	if minutes <= 0 {
		return DefaultTokenTTL
	}
	return time.Duration(minutes) * time.Minute
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if c.TransactionSecret == "" {
		errs = append(errs, errors.New("TRANSACTION_SECRET_KEY is required"))
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("ALGORITHM %q is not a supported HMAC algorithm", c.JWTAlgorithm))
	}
	switch c.DBDriver {
	case "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}
	return errors.Join(errs...)
}
