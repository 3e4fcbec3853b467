package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/flagx"
	"github.com/dmitrijs2005/launchserver/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations use timex.Duration so
// both "10s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP string `json:"endpoint_addr_http"`
	LogLevel         string `json:"log_level"`

	AuthMode            string         `json:"auth_mode"`
	BridgeBaseURL       string         `json:"bridge_base_url"`
	BridgeDualMode      bool           `json:"bridge_dual_mode"`
	BridgeTimeout       timex.Duration `json:"bridge_timeout"`
	BridgeMaxConcurrent int64          `json:"bridge_max_concurrent"`
	DatabaseDSN         string         `json:"database_dsn"`
	StoreTimeout        timex.Duration `json:"store_timeout"`
	SigningKeyFile      string         `json:"signing_key_file"`
	LegacySalt          string         `json:"legacy_salt"`
	SessionTTL          timex.Duration `json:"session_ttl"`
	HardwareEnforcement bool           `json:"hardware_enforcement"`

	CrashEnabled           bool           `json:"crash_enabled"`
	CrashRequireAuth       bool           `json:"crash_require_auth"`
	CrashRateLimitPerHour  int            `json:"crash_rate_limit_per_hour"`
	CrashMaxFileSize       int64          `json:"crash_max_file_size"`
	CrashMaxReportsPerUser int            `json:"crash_max_reports_per_user"`
	CrashCleanupOldReports bool           `json:"crash_cleanup_old_reports"`
	CrashMaxReportAgeDays  int            `json:"crash_max_report_age_days"`
	CrashStorageBackend    string         `json:"crash_storage_backend"`
	CrashStoragePath       string         `json:"crash_storage_path"`
	CrashChunkIdleTimeout  timex.Duration `json:"crash_chunk_idle_timeout"`
	CrashSweepInterval     timex.Duration `json:"crash_sweep_interval"`
	CrashEnrichReports     bool           `json:"crash_enrich_reports"`
	ProjectName            string         `json:"project_name"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrGRPC:       c.EndpointAddrGRPC,
		EndpointAddrHTTP:       c.EndpointAddrHTTP,
		LogLevel:               c.LogLevel,
		AuthMode:               c.AuthMode,
		BridgeBaseURL:          c.BridgeBaseURL,
		BridgeDualMode:         c.BridgeDualMode,
		BridgeTimeout:          timex.Duration{Duration: c.BridgeTimeout},
		BridgeMaxConcurrent:    c.BridgeMaxConcurrent,
		DatabaseDSN:            c.DatabaseDSN,
		StoreTimeout:           timex.Duration{Duration: c.StoreTimeout},
		SigningKeyFile:         c.SigningKeyFile,
		LegacySalt:             c.LegacySalt,
		SessionTTL:             timex.Duration{Duration: c.SessionTTL},
		HardwareEnforcement:    c.HardwareEnforcement,
		CrashEnabled:           c.CrashEnabled,
		CrashRequireAuth:       c.CrashRequireAuth,
		CrashRateLimitPerHour:  c.CrashRateLimitPerHour,
		CrashMaxFileSize:       c.CrashMaxFileSize,
		CrashMaxReportsPerUser: c.CrashMaxReportsPerUser,
		CrashCleanupOldReports: c.CrashCleanupOldReports,
		CrashMaxReportAgeDays:  c.CrashMaxReportAgeDays,
		CrashStorageBackend:    c.CrashStorageBackend,
		CrashStoragePath:       c.CrashStoragePath,
		CrashChunkIdleTimeout:  timex.Duration{Duration: c.CrashChunkIdleTimeout},
		CrashSweepInterval:     timex.Duration{Duration: c.CrashSweepInterval},
		CrashEnrichReports:     c.CrashEnrichReports,
		ProjectName:            c.ProjectName,
		S3RootUser:             c.S3RootUser,
		S3RootPassword:         c.S3RootPassword,
		S3Bucket:               c.S3Bucket,
		S3Region:               c.S3Region,
		S3BaseEndpoint:         c.S3BaseEndpoint,
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.EndpointAddrGRPC = j.EndpointAddrGRPC
	c.EndpointAddrHTTP = j.EndpointAddrHTTP
	c.LogLevel = j.LogLevel
	c.AuthMode = j.AuthMode
	c.BridgeBaseURL = j.BridgeBaseURL
	c.BridgeDualMode = j.BridgeDualMode
	c.BridgeTimeout = time.Duration(j.BridgeTimeout.Duration)
	c.BridgeMaxConcurrent = j.BridgeMaxConcurrent
	c.DatabaseDSN = j.DatabaseDSN
	c.StoreTimeout = time.Duration(j.StoreTimeout.Duration)
	c.SigningKeyFile = j.SigningKeyFile
	c.LegacySalt = j.LegacySalt
	c.SessionTTL = time.Duration(j.SessionTTL.Duration)
	c.HardwareEnforcement = j.HardwareEnforcement
	c.CrashEnabled = j.CrashEnabled
	c.CrashRequireAuth = j.CrashRequireAuth
	c.CrashRateLimitPerHour = j.CrashRateLimitPerHour
	c.CrashMaxFileSize = j.CrashMaxFileSize
	c.CrashMaxReportsPerUser = j.CrashMaxReportsPerUser
	c.CrashCleanupOldReports = j.CrashCleanupOldReports
	c.CrashMaxReportAgeDays = j.CrashMaxReportAgeDays
	c.CrashStorageBackend = j.CrashStorageBackend
	c.CrashStoragePath = j.CrashStoragePath
	c.CrashChunkIdleTimeout = time.Duration(j.CrashChunkIdleTimeout.Duration)
	c.CrashSweepInterval = time.Duration(j.CrashSweepInterval.Duration)
	c.CrashEnrichReports = j.CrashEnrichReports
	c.ProjectName = j.ProjectName
	c.S3RootUser = j.S3RootUser
	c.S3RootPassword = j.S3RootPassword
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
}

// parseJson overlays the JSON file named by -c/-config. Keys missing from
// the file keep their current values. An unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}
	c.apply(config)
}
