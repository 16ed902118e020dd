package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // SNAPSHOT_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/power-demand-snapshot/internal/power"
)

// Storage backends.
const (
	BackendDir    = "dir"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

var validate = validator.New()

type AppConfig struct {
	// SourceBaseURL is the prefix of every state page URL.
	SourceBaseURL string `validate:"required,url"`

	// Fetch capability.
	ProxyURL           string        `validate:"omitempty,url"`
	HTTPTimeout        time.Duration `validate:"min=30000000000,max=45000000000"` // 30s..45s
	InsecureSkipVerify bool
	UserAgent          string `validate:"required"`

	// BreakerFailures trips the circuit after this many consecutive failures (0 = never).
	// A tripped breaker fails the remaining regions of a run without requesting them.
	BreakerFailures int `validate:"min=0"`

	// RequestSpacing is the minimum delay between two region requests.
	RequestSpacing time.Duration `validate:"min=0"`

	// Regions to harvest, in order.
	Regions []power.Region `validate:"required,min=1,dive"`

	// Storage target.
	StorageBackend string `validate:"oneof=dir s3 memory"`
	OutputDir      string `validate:"required_if=StorageBackend dir"`
	S3             S3Settings

	// Location used for the batch date and the artifact timestamp.
	Location *time.Location `validate:"required"`

	LogLevel string `validate:"oneof=debug info warn error"`

	// FetchInterval controls how often the daemon runs a batch (0 = once at start only).
	FetchInterval time.Duration `validate:"min=0"`

	// In-memory store retention (memory backend).
	StoreMaxHistory int
	StoreMaxAge     time.Duration

	Port string `validate:"required,numeric"`

	// EnvFileErr is the outcome of loading .env; nil when the file was read.
	EnvFileErr error
}

// S3Settings holds object storage settings for the s3 backend.
type S3Settings struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{EnvFileErr: godotenv.Load()}

	cfg.SourceBaseURL = getenvDefault("SOURCE_BASE_URL", power.DefaultBaseURL)
	cfg.ProxyURL = os.Getenv("PROXY_URL")
	cfg.InsecureSkipVerify = getenvBool("INSECURE_SKIP_VERIFY", false)
	cfg.UserAgent = getenvDefault("USER_AGENT", "ScraperBot/1.0")
	cfg.BreakerFailures = getenvInt("BREAKER_MAX_FAILURES", 0)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "45s"); err != nil {
		return nil, err
	}
	if cfg.RequestSpacing, err = getenvDuration("REQUEST_SPACING", "1s"); err != nil {
		return nil, err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "0"); err != nil {
		return nil, err
	}

	regions, err := loadRegions(os.Getenv("REGIONS_FILE"))
	if err != nil {
		return nil, err
	}
	cfg.Regions = regions

	cfg.StorageBackend = strings.ToLower(getenvDefault("STORAGE_BACKEND", BackendDir))
	cfg.OutputDir = getenvDefault("OUTPUT_DIR", "data")
	cfg.S3 = S3Settings{
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		Bucket:    os.Getenv("S3_BUCKET"),
		Prefix:    os.Getenv("S3_PREFIX"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		UseSSL:    getenvBool("S3_USE_SSL", true),
	}

	tz := getenvDefault("SNAPSHOT_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))

	// Store retention for the memory backend.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96)
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and backend-specific requirements.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.StorageBackend == BackendS3 && (c.S3.Endpoint == "" || c.S3.Bucket == "") {
		return fmt.Errorf("invalid configuration: S3_ENDPOINT and S3_BUCKET are required for the s3 backend")
	}
	return nil
}

// Now returns the current time in the configured location.
func (c *AppConfig) Now() time.Time {
	return time.Now().In(c.Location)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
