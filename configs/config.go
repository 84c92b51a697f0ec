package configs

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port int

	DBDriver   string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	RedisHost     string
	RedisPort     int
	RedisPassword string

	SessionSecret string
	SessionTTL    time.Duration
	SecureCookies bool

	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	LogDir      string
	UploadDir   string
	CORSOrigins string
	RateLimit   int
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 3004)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "todo.db")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("OAUTH_REDIRECT_URL", "http://localhost:3004/api/auth/google/callback")
	v.SetDefault("LOG_DIR", "logs")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT", 100)

	return Config{
		Port:               v.GetInt("PORT"),
		DBDriver:           v.GetString("DB_DRIVER"),
		DBHost:             v.GetString("DB_HOST"),
		DBPort:             v.GetInt("DB_PORT"),
		DBUser:             v.GetString("DB_USER"),
		DBPassword:         v.GetString("DB_PASSWORD"),
		DBName:             v.GetString("DB_NAME"),
		DBSSLMode:          v.GetString("DB_SSLMODE"),
		DBPath:             v.GetString("DB_PATH"),
		RedisHost:          v.GetString("REDIS_HOST"),
		RedisPort:          v.GetInt("REDIS_PORT"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		SessionSecret:      v.GetString("SESSION_SECRET"),
		SessionTTL:         v.GetDuration("SESSION_TTL"),
		SecureCookies:      v.GetBool("SECURE_COOKIES"),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectURL:   v.GetString("OAUTH_REDIRECT_URL"),
		LogDir:             v.GetString("LOG_DIR"),
		UploadDir:          v.GetString("UPLOAD_DIR"),
		CORSOrigins:        v.GetString("CORS_ORIGINS"),
		RateLimit:          v.GetInt("RATE_LIMIT"),
	}
}

// PostgresDSN builds a lib/pq connection string.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// RedisAddr is empty when Redis is not configured.
func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// GoogleEnabled reports whether Google sign-in credentials are present.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
