// Package common contains shared constants and sentinel errors used across
// launch server components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// ErrorDomain is reported in error details attached to RPC failures.
const ErrorDomain = "launchserver"
