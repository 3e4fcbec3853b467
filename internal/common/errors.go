// Package common defines shared constants and sentinel errors used across
// client and server layers of the launch server. Callers should use errors.Is
// to match these values and Code to obtain the stable wire code.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrUserExists = errors.New("user already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Authorization errors.
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNeedsTwoFactor       = errors.New("two-factor code required")
	ErrUnsupportedProofType = errors.New("unsupported password type")
	ErrUserNotFound         = errors.New("user not found")
	ErrProviderUnavailable  = errors.New("auth provider unavailable")
	ErrHardwareBanned       = errors.New("your hardware is banned")

	// ErrTokenExpired covers expired, malformed and badly signed tokens alike.
	// Clients must re-authenticate when they see it.
	ErrTokenExpired = errors.New("token expired")

	// Crash report errors.
	ErrAccessDenied      = errors.New("access denied")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrInvalidFormat     = errors.New("invalid crash report format")
	ErrStorageFailure    = errors.New("storage failure")
)

// Stable machine-readable codes.
const (
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeNeedsTwoFactor       = "NEEDS_TWO_FACTOR"
	CodeUnsupportedProofType = "UNSUPPORTED_PROOF_TYPE"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeProviderUnavailable  = "PROVIDER_UNAVAILABLE"
	CodeHardwareBanned       = "HARDWARE_BANNED"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeAccessDenied         = "ACCESS_DENIED"
	CodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeInvalidFormat        = "INVALID_FORMAT"
	CodeStorageFailure       = "STORAGE_FAILURE"
	CodeInternal             = "INTERNAL"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidCredentials, CodeInvalidCredentials},
	{ErrNeedsTwoFactor, CodeNeedsTwoFactor},
	{ErrUnsupportedProofType, CodeUnsupportedProofType},
	{ErrUserNotFound, CodeUserNotFound},
	{ErrProviderUnavailable, CodeProviderUnavailable},
	{ErrHardwareBanned, CodeHardwareBanned},
	{ErrTokenExpired, CodeTokenExpired},
	{ErrAccessDenied, CodeAccessDenied},
	{ErrRateLimitExceeded, CodeRateLimitExceeded},
	{ErrPayloadTooLarge, CodePayloadTooLarge},
	{ErrInvalidFormat, CodeInvalidFormat},
	{ErrStorageFailure, CodeStorageFailure},
}

// Code returns the stable code for err, or CodeInternal when err is not part
// of the taxonomy. Code(nil) is the empty string.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// FromCode is the inverse of Code. Unknown codes map to ErrorInternal.
func FromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return ErrorInternal
}
