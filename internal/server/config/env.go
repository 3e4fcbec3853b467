package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name, e.g. LAUNCH_AUTH_MODE.
const EnvPrefix = "LAUNCH_"

// dotEnvFile is loaded into the process environment when present. Variables
// that are already set win.
var dotEnvFile = ".env"

// parseEnv overlays variables set in the environment. Unset variables leave
// the current values alone. A malformed value panics, like the other layers.
func parseEnv(config *Config) {
	if _, err := os.Stat(dotEnvFile); err == nil {
		if err := godotenv.Load(dotEnvFile); err != nil {
			panic(err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
