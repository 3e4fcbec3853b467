package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/flagx"
)

// parseFlags populates selected Config fields from short command-line flags.
//
//	-a string   gRPC bind address
//	-w string   HTTP bind address
//	-d string   PostgreSQL DSN (empty keeps identities in memory)
//	-m string   auth mode: local or bridged
//	-x string   identity bridge base URL
//	-k string   signing key file (PEM, EC P-256)
//	-t int      session TTL, minutes
//	-r string   crash report storage path
//	-u, -p, -b, -g, -e   S3 user, password, bucket, region and base endpoint
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-d", "-m", "-x", "-k", "-t", "-r", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AuthMode, "m", config.AuthMode, "auth mode (local, bridged)")
	fs.StringVar(&config.BridgeBaseURL, "x", config.BridgeBaseURL, "identity bridge base URL")
	fs.StringVar(&config.SigningKeyFile, "k", config.SigningKeyFile, "signing key file")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session ttl (in minutes)")

	fs.StringVar(&config.CrashStoragePath, "r", config.CrashStoragePath, "crash report storage path")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only an explicit -t overrides, so sub-minute TTLs from other layers survive
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		}
	})
}
