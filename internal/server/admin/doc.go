// Package admin implements the operator command line: schema migration,
// local account creation and hardware ban management against the
// PostgreSQL identity store.
package admin
