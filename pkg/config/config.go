package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port               string
	DatabaseURL        string
	AppEnv             string
	BaseURL            string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	JWTSecret          string
	JWTTTL             time.Duration
	FrontendURL        string
	AllowedEmails      []string

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)
	LogFile   string // optional rotating file sink

	RedisURL string // optional, enables token revocation on logout

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	MetadataRateBurst  int
	MetadataRatePerMin int
	MetadataUserAgent  string
	MetadataMaxBytes   int64
}

var defaults = map[string]interface{}{
	"PORT":                  "8080",
	"DATABASE_URL":          "file:db.sqlite",
	"APP_ENV":               "local",
	"BASE_URL":              "http://localhost:8080",
	"GOOGLE_REDIRECT_URL":   "http://localhost:8080/auth/google/callback",
	"JWT_SECRET":            "secret",
	"JWT_TTL":               "24h",
	"FRONTEND_URL":          "http://localhost:8080/bookmarks",
	"LOG_LEVEL":             "info",
	"PRETTY_LOG":            true,
	"REQUEST_TIMEOUT":       "15s",
	"SHUTDOWN_TIMEOUT":      "10s",
	"METADATA_RATE_BURST":   10,
	"METADATA_RATE_PER_MIN": 30,
	"METADATA_USER_AGENT":   "go-bookmarks/1.0 (+metadata)",
	"METADATA_MAX_BYTES":    2 << 20,
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	// Optional YAML file; env always wins over file values.
	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			log.Printf("config: ignoring %s: %v", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:               v.GetString("PORT"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		AppEnv:             v.GetString("APP_ENV"),
		BaseURL:            v.GetString("BASE_URL"),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTTTL:             v.GetDuration("JWT_TTL"),
		FrontendURL:        v.GetString("FRONTEND_URL"),
		AllowedEmails:      splitList(v.GetString("ALLOWED_EMAILS")),

		LogLevel:  v.GetString("LOG_LEVEL"),
		PrettyLog: v.GetBool("PRETTY_LOG"),
		LogFile:   v.GetString("LOG_FILE"),

		RedisURL: v.GetString("REDIS_URL"),

		RequestTimeout:  v.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),

		MetadataRateBurst:  v.GetInt("METADATA_RATE_BURST"),
		MetadataRatePerMin: v.GetInt("METADATA_RATE_PER_MIN"),
		MetadataUserAgent:  v.GetString("METADATA_USER_AGENT"),
		MetadataMaxBytes:   v.GetInt64("METADATA_MAX_BYTES"),
	}
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
