// Package config loads settings for the launcher CLI.
//
// Precedence, lowest first: built-in defaults, an optional JSON file
// (-c/--config), then the command's persistent flags:
//
//	-a, --addr        address:port of the launch server gRPC endpoint
//	-d, --db          sqlite file caching the session
//	-t, --timeout     request timeout
//	    --chunk-size  crash upload part size in bytes
//
// JSON example:
//
//	{
//	  "server_endpoint_addr": "launcher.example.org:9274",
//	  "database_file": "/home/alice/.launcher/session.db",
//	  "request_timeout": "15s",
//	  "chunk_size": 65536
//	}
package config
