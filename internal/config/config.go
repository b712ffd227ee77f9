package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// DefaultDSN is the local development database.
const DefaultDSN = "root:root@tcp(127.0.0.1:3306)/storefront?parseTime=true&charset=utf8mb4"

// Config is the full runtime configuration, read from the process environment.
type Config struct {
	Port                string
	DatabaseDSN         string
	AutoMigrate         bool
	JWTSecret           string
	CookieSecure        bool
	AdminGuard          bool
	CORSOrigins         []string
	PlaceholderImageURL string
	SweepSchedule       string
	ShutdownTimeout     time.Duration

	Log       LogConfig
	Notify    NotifyConfig
	Storage   StorageConfig
	Bootstrap BootstrapConfig
}

type LogConfig struct {
	Mode string // "production" or "development"
	File string // empty disables file output
}

type NotifyConfig struct {
	Driver       string // relay, smtp or log
	AdminEmail   string
	Timeout      time.Duration
	RelayBaseURL string
	RelayFormID  string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

type StorageConfig struct {
	Driver      string // local or s3
	UploadDir   string
	BaseURL     string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PublicURL string
	S3Prefix    string
}

type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Runs before the logger is configured
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any key lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := &Config{
		Port:                get("PORT", "8080"),
		DatabaseDSN:         get("DB_DSN_PRIMARY", DefaultDSN),
		AutoMigrate:         cast.ToBool(get("AUTO_MIGRATE", "true")),
		JWTSecret:           get("JWT_SECRET", ""),
		CookieSecure:        cast.ToBool(get("COOKIE_SECURE", "false")),
		AdminGuard:          cast.ToBool(get("ADMIN_GUARD", "false")),
		CORSOrigins:         splitList(get("CORS_ORIGINS", "http://localhost:3000")),
		PlaceholderImageURL: get("PLACEHOLDER_IMAGE_URL", "/placeholder.png"),
		SweepSchedule:       get("ORPHAN_SWEEP_SCHEDULE", "@every 1h"),
		ShutdownTimeout:     cast.ToDuration(get("SHUTDOWN_TIMEOUT", "10s")),
		Log: LogConfig{
			Mode: get("LOG_MODE", "development"),
			File: get("LOG_FILE", ""),
		},
		Notify: NotifyConfig{
			Driver:       get("NOTIFY_DRIVER", "log"),
			AdminEmail:   get("ADMIN_EMAIL", ""),
			Timeout:      cast.ToDuration(get("NOTIFY_TIMEOUT", "10s")),
			RelayBaseURL: strings.TrimRight(get("RELAY_BASE_URL", "https://formspree.io/f"), "/"),
			RelayFormID:  get("RELAY_FORM_ID", ""),
			SMTPHost:     get("SMTP_HOST", ""),
			SMTPPort:     cast.ToInt(get("SMTP_PORT", "587")),
			SMTPUser:     get("SMTP_USER", ""),
			SMTPPassword: get("SMTP_PASSWORD", ""),
			SMTPFrom:     get("SMTP_FROM", ""),
		},
		Storage: StorageConfig{
			Driver:      get("STORAGE_DRIVER", "local"),
			UploadDir:   get("UPLOAD_DIR", "./uploads"),
			BaseURL:     strings.TrimRight(get("BASE_URL", "http://localhost:8080"), "/"),
			S3Bucket:    get("S3_BUCKET", ""),
			S3Region:    get("S3_REGION", "us-east-1"),
			S3Endpoint:  get("S3_ENDPOINT", ""),
			S3PublicURL: strings.TrimRight(get("S3_PUBLIC_URL", ""), "/"),
			S3Prefix:    strings.Trim(get("S3_PREFIX", "uploads"), "/"),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    get("BOOTSTRAP_ADMIN_EMAIL", ""),
			AdminPassword: get("BOOTSTRAP_ADMIN_PASSWORD", ""),
		},
	}

	// Schedules may legitimately be set to "" to disable the sweeper.
	if v, ok := lookup("ORPHAN_SWEEP_SCHEDULE"); ok && strings.TrimSpace(v) == "" {
		cfg.SweepSchedule = ""
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.CORSOrigins) == 0 {
		return errors.New("CORS_ORIGINS must list at least one origin")
	}
	if c.Notify.Timeout <= 0 {
		return errors.New("NOTIFY_TIMEOUT must be a positive duration")
	}
	switch c.Notify.Driver {
	case "log":
	case "relay":
		if c.Notify.RelayFormID == "" {
			return errors.New("RELAY_FORM_ID is required when NOTIFY_DRIVER=relay")
		}
	case "smtp":
		if c.Notify.SMTPHost == "" || c.Notify.SMTPFrom == "" {
			return errors.New("SMTP_HOST and SMTP_FROM are required when NOTIFY_DRIVER=smtp")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_DRIVER %q", c.Notify.Driver)
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
