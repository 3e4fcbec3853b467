package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	want := Config{
		ServerEndpointAddr: "127.0.0.1:9274",
		DatabaseFile:       "launcher.db",
		RequestTimeout:     15 * time.Second,
		ChunkSize:          64 << 10,
	}
	assert.Empty(t, cmp.Diff(want, c))
}

func TestLoadConfig_NoFile(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = []string{"cli", "whoami"}

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "127.0.0.1:9274", cfg.ServerEndpointAddr)
}

func TestBindFlags_OverridesDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	fs := pflag.NewFlagSet("cli", pflag.ContinueOnError)
	c.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-a", "10.0.0.1:9274", "--db", "s.db", "-t", "3s", "--chunk-size", "1024", "-c", "ignored.json"}))

	want := Config{
		ServerEndpointAddr: "10.0.0.1:9274",
		DatabaseFile:       "s.db",
		RequestTimeout:     3 * time.Second,
		ChunkSize:          1024,
	}
	assert.Empty(t, cmp.Diff(want, c))
}

func TestBindFlags_KeepsValuesWhenUnset(t *testing.T) {
	c := Config{ServerEndpointAddr: "from-json:1", DatabaseFile: "x.db", RequestTimeout: time.Second, ChunkSize: 8}

	fs := pflag.NewFlagSet("cli", pflag.ContinueOnError)
	c.BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	assert.Equal(t, "from-json:1", c.ServerEndpointAddr)
	assert.Equal(t, 8, c.ChunkSize)
}
