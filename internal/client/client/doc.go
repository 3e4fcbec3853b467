// Package client talks to the launch server over gRPC.
//
// GRPCClient attaches the cached access token to every call. When a
// token-carrying call fails with "token expired" it exchanges the refresh
// token once and retries; the new pair is reported through the OnRefresh
// hook so callers can persist it. Transport failures surface as
// ErrUnavailable, server rejections as the common taxonomy errors.
//
// InitDatabase opens the local sqlite cache and applies its embedded goose
// migrations.
package client
