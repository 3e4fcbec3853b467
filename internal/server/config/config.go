// Package config handles configuration for the launch server: defaults,
// environment (with an optional .env file), a JSON overlay and command-line
// flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	ModeLocal   = "local"
	ModeBridged = "bridged"

	BackendFS = "fs"
	BackendS3 = "s3"
)

// Config holds runtime settings for the launch server.
//
// Auth fields select and tune the strategy; Crash* fields drive the crash
// report ingestor and its storage. An empty DatabaseDSN keeps identities in
// memory, and an empty SigningKeyFile makes the server generate an ephemeral
// key at startup.
type Config struct {
	EndpointAddrGRPC string `env:"GRPC_ADDRESS"`
	EndpointAddrHTTP string `env:"HTTP_ADDRESS"`
	LogLevel         string `env:"LOG_LEVEL"`

	AuthMode            string        `env:"AUTH_MODE"`
	BridgeBaseURL       string        `env:"BRIDGE_BASE_URL"`
	BridgeDualMode      bool          `env:"BRIDGE_DUAL_MODE"`
	BridgeTimeout       time.Duration `env:"BRIDGE_TIMEOUT"`
	BridgeMaxConcurrent int64         `env:"BRIDGE_MAX_CONCURRENT"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	StoreTimeout        time.Duration `env:"STORE_TIMEOUT"`
	SigningKeyFile      string        `env:"SIGNING_KEY_FILE"`
	LegacySalt          string        `env:"LEGACY_SALT"`
	SessionTTL          time.Duration `env:"SESSION_TTL"`
	HardwareEnforcement bool          `env:"HARDWARE_ENFORCEMENT"`

	CrashEnabled           bool          `env:"CRASH_ENABLED"`
	CrashRequireAuth       bool          `env:"CRASH_REQUIRE_AUTH"`
	CrashRateLimitPerHour  int           `env:"CRASH_RATE_LIMIT_PER_HOUR"`
	CrashMaxFileSize       int64         `env:"CRASH_MAX_FILE_SIZE"`
	CrashMaxReportsPerUser int           `env:"CRASH_MAX_REPORTS_PER_USER"`
	CrashCleanupOldReports bool          `env:"CRASH_CLEANUP_OLD_REPORTS"`
	CrashMaxReportAgeDays  int           `env:"CRASH_MAX_REPORT_AGE_DAYS"`
	CrashStorageBackend    string        `env:"CRASH_STORAGE_BACKEND"`
	CrashStoragePath       string        `env:"CRASH_STORAGE_PATH"`
	CrashChunkIdleTimeout  time.Duration `env:"CRASH_CHUNK_IDLE_TIMEOUT"`
	CrashSweepInterval     time.Duration `env:"CRASH_SWEEP_INTERVAL"`
	CrashEnrichReports     bool          `env:"CRASH_ENRICH_REPORTS"`
	ProjectName            string        `env:"PROJECT_NAME"`

	S3RootUser     string `env:"S3_ROOT_USER"`
	S3RootPassword string `env:"S3_ROOT_PASSWORD"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION"`
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":9274"
	c.EndpointAddrHTTP = ":9275"
	c.LogLevel = "info"

	c.AuthMode = ModeLocal
	c.BridgeTimeout = 10 * time.Second
	c.BridgeMaxConcurrent = 16
	c.StoreTimeout = 5 * time.Second
	c.SessionTTL = time.Hour
	c.HardwareEnforcement = true

	c.CrashEnabled = true
	c.CrashRequireAuth = true
	c.CrashRateLimitPerHour = 10
	c.CrashMaxFileSize = 20 << 20
	c.CrashMaxReportsPerUser = 100
	c.CrashCleanupOldReports = true
	c.CrashMaxReportAgeDays = 30
	c.CrashStorageBackend = BackendFS
	c.CrashStoragePath = "crash"
	c.CrashChunkIdleTimeout = 10 * time.Minute
	c.CrashSweepInterval = 24 * time.Hour

	c.S3Bucket = "crash-reports"
	c.S3Region = "us-east-1"
}

// MaxReportAge is the retention threshold of the sweeper.
func (c *Config) MaxReportAge() time.Duration {
	return time.Duration(c.CrashMaxReportAgeDays) * 24 * time.Hour
}

// Validate reports every inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.AuthMode {
	case ModeLocal:
	case ModeBridged:
		if c.BridgeBaseURL == "" {
			errs = append(errs, errors.New("bridged auth mode requires a bridge base url"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth mode %q", c.AuthMode))
	}

	switch c.CrashStorageBackend {
	case BackendFS:
		if c.CrashStoragePath == "" {
			errs = append(errs, errors.New("crash storage path is empty"))
		}
	case BackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("s3 crash storage requires a bucket"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown crash storage backend %q", c.CrashStorageBackend))
	}

	positive := []struct {
		name string
		ok   bool
	}{
		{"session ttl", c.SessionTTL > 0},
		{"bridge timeout", c.BridgeTimeout > 0},
		{"bridge max concurrent", c.BridgeMaxConcurrent > 0},
		{"store timeout", c.StoreTimeout > 0},
		{"crash rate limit", c.CrashRateLimitPerHour > 0},
		{"crash max file size", c.CrashMaxFileSize > 0},
		{"crash max reports per user", c.CrashMaxReportsPerUser > 0},
		{"crash max report age", c.CrashMaxReportAgeDays > 0},
		{"crash chunk idle timeout", c.CrashChunkIdleTimeout > 0},
		{"crash sweep interval", c.CrashSweepInterval > 0},
	}
	for _, p := range positive {
		if !p.ok {
			errs = append(errs, fmt.Errorf("%s must be positive", p.name))
		}
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then the environment,
// then an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
