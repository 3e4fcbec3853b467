package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Config holds runtime settings for the launcher CLI.
type Config struct {
	ServerEndpointAddr string
	// DatabaseFile is the sqlite file caching the session.
	DatabaseFile   string
	RequestTimeout time.Duration
	// ChunkSize is the crash upload part size in bytes.
	ChunkSize int
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:9274"
	c.DatabaseFile = "launcher.db"
	c.RequestTimeout = 15 * time.Second
	c.ChunkSize = 64 << 10
}

// LoadConfig applies defaults and then the optional JSON file. Command-line
// flags are applied later by the command parser through BindFlags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	return cfg
}

// BindFlags registers the persistent CLI flags on fs, defaulting to the
// current values.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.ServerEndpointAddr, "addr", "a", c.ServerEndpointAddr, "address and port of the launch server")
	fs.StringVarP(&c.DatabaseFile, "db", "d", c.DatabaseFile, "local session cache file")
	fs.DurationVarP(&c.RequestTimeout, "timeout", "t", c.RequestTimeout, "request timeout")
	fs.IntVar(&c.ChunkSize, "chunk-size", c.ChunkSize, "crash upload part size in bytes")
	// read by LoadConfig before flags are parsed
	fs.StringP("config", "c", "", "path to JSON config file")
}
