package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useDotEnv(t *testing.T, path string) {
	t.Helper()
	orig := dotEnvFile
	dotEnvFile = path
	t.Cleanup(func() { dotEnvFile = orig })
}

func TestParseEnv(t *testing.T) {
	useDotEnv(t, filepath.Join(t.TempDir(), "missing.env"))

	t.Setenv("LAUNCH_AUTH_MODE", "bridged")
	t.Setenv("LAUNCH_BRIDGE_BASE_URL", "https://id.example")
	t.Setenv("LAUNCH_BRIDGE_DUAL_MODE", "true")
	t.Setenv("LAUNCH_SESSION_TTL", "90s")
	t.Setenv("LAUNCH_CRASH_MAX_FILE_SIZE", "1024")
	t.Setenv("LAUNCH_CRASH_REQUIRE_AUTH", "false")

	var got Config
	got.LoadDefaults()
	parseEnv(&got)

	var want Config
	want.LoadDefaults()
	want.AuthMode = ModeBridged
	want.BridgeBaseURL = "https://id.example"
	want.BridgeDualMode = true
	want.SessionTTL = 90 * time.Second
	want.CrashMaxFileSize = 1024
	want.CrashRequireAuth = false

	assert.Empty(t, cmp.Diff(want, got))
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LAUNCH_PROJECT_NAME=Skyblock\nLAUNCH_LEGACY_SALT=pepper\n"), 0o600))
	useDotEnv(t, path)

	// real environment wins over the file
	t.Setenv("LAUNCH_LEGACY_SALT", "from-env")
	// godotenv writes into the process environment; restore it afterwards
	t.Setenv("LAUNCH_PROJECT_NAME", "")
	require.NoError(t, os.Unsetenv("LAUNCH_PROJECT_NAME"))

	var c Config
	parseEnv(&c)
	assert.Equal(t, "Skyblock", c.ProjectName)
	assert.Equal(t, "from-env", c.LegacySalt)
}

func TestParseEnv_BadValuePanics(t *testing.T) {
	useDotEnv(t, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("LAUNCH_SESSION_TTL", "soon")

	var c Config
	assert.Panics(t, func() { parseEnv(&c) })
}
