// Package cli implements the launcher command line: login, whoami, report,
// logout and ping. The session is cached in a local sqlite file between
// invocations and refreshed tokens are written back as they arrive.
package cli
