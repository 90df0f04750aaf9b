package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// MinSecretLength is the shortest SESSION_SECRET accepted at startup.
const MinSecretLength = 32

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	R2       R2Config
	Log      LogConfig
	Uploads  UploadsConfig
}

type ServerConfig struct {
	Port          string `envconfig:"PORT" default:"8080"`
	AdminPort     string `envconfig:"ADMIN_PORT" default:"8081"`
	Host          string `envconfig:"HOST" default:"localhost"`
	Env           string `envconfig:"ENV" default:"development"`
	SecureCookies bool   `envconfig:"SECURE_COOKIES" default:"true"`
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:""`
	// TrustedProxies lists the IPs or CIDRs whose forwarding headers are
	// believed. Empty means clients are identified by the connection address.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
}

type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"postgres"`
	URL      string `envconfig:"DATABASE_URL"` // Full database URL or sqlite path
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	DBName   string `envconfig:"DB_NAME" default:"ecommerce"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

type SessionConfig struct {
	Secret          string        `envconfig:"SESSION_SECRET"`
	UserCookieName  string        `envconfig:"USER_SESSION_COOKIE" default:"session"`
	AdminCookieName string        `envconfig:"ADMIN_SESSION_COOKIE" default:"admin_session"`
	UserTTL         time.Duration `envconfig:"USER_SESSION_TTL" default:"168h"`
	AdminTTL        time.Duration `envconfig:"ADMIN_SESSION_TTL" default:"168h"`
}

type R2Config struct {
	AccountID       string `envconfig:"R2_ACCOUNT_ID"`
	AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"R2_SECRET_ACCESS_KEY"`
	BucketName      string `envconfig:"R2_BUCKET_NAME" default:"ecommerce-images"`
	PublicURL       string `envconfig:"R2_PUBLIC_URL"`
	Region          string `envconfig:"R2_REGION" default:"auto"`
	Endpoint        string `envconfig:"R2_ENDPOINT"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:""`
}

type UploadsConfig struct {
	Dir     string `envconfig:"UPLOADS_DIR" default:"./uploads"`
	BaseURL string `envconfig:"UPLOADS_BASE_URL" default:""`
}

// ConfigurationError reports a missing or invalid setting that must stop the
// process before it serves any request.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Key, e.Reason)
}

// Load reads .env files (if present) and the process environment.
func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg := &Config{}
	sections := []interface{}{&cfg.Server, &cfg.Database, &cfg.Session, &cfg.R2, &cfg.Log, &cfg.Uploads}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, &ConfigurationError{Key: "environment", Reason: err.Error()}
		}
	}

	if cfg.Database.URL != "" && cfg.Database.Driver == "postgres" {
		cfg.Database = parseDatabaseURL(cfg.Database)
	}

	if cfg.Uploads.BaseURL == "" {
		cfg.Uploads.BaseURL = fmt.Sprintf("http://%s:%s/uploads", cfg.Server.Host, cfg.Server.Port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings every binary depends on.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return &ConfigurationError{Key: "SESSION_SECRET", Reason: "is required"}
	}
	if len(c.Session.Secret) < MinSecretLength {
		return &ConfigurationError{Key: "SESSION_SECRET", Reason: fmt.Sprintf("must be at least %d bytes", MinSecretLength)}
	}
	if c.Session.UserCookieName == c.Session.AdminCookieName {
		return &ConfigurationError{Key: "ADMIN_SESSION_COOKIE", Reason: "must differ from USER_SESSION_COOKIE"}
	}
	if _, err := c.Server.TrustedProxyNets(); err != nil {
		return &ConfigurationError{Key: "TRUSTED_PROXIES", Reason: err.Error()}
	}
	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return &ConfigurationError{Key: "DB_DRIVER", Reason: "must be postgres or sqlite3"}
	}
	return nil
}

// TrustedProxyNets parses TrustedProxies. A bare IP becomes a single-host
// network.
func (s ServerConfig) TrustedProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(s.TrustedProxies))
	for _, entry := range s.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			_, n, err := net.ParseCIDR(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid CIDR %q", entry)
			}
			nets = append(nets, n)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP %q", entry)
		}
		bits := 128
		if v4 := ip.To4(); v4 != nil {
			ip, bits = v4, 32
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// R2Configured reports whether object storage credentials are present.
func (c *Config) R2Configured() bool {
	return c.R2.AccessKeyID != "" && c.R2.SecretAccessKey != ""
}

func parseDatabaseURL(dbConfig DatabaseConfig) DatabaseConfig {
	u, err := url.Parse(dbConfig.URL)
	if err != nil {
		// If parsing fails, keep the URL as-is
		return dbConfig
	}

	dbConfig.Host = u.Hostname()
	if u.Port() != "" {
		dbConfig.Port, _ = strconv.Atoi(u.Port())
	} else {
		dbConfig.Port = 5432
	}

	if u.User != nil {
		dbConfig.User = u.User.Username()
		dbConfig.Password, _ = u.User.Password()
	}

	dbConfig.DBName = strings.TrimPrefix(u.Path, "/")

	dbConfig.SSLMode = u.Query().Get("sslmode")
	if dbConfig.SSLMode == "" {
		dbConfig.SSLMode = "disable"
	}

	return dbConfig
}
