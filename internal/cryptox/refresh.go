package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// DeriveRefreshToken computes the legacy refresh secret for a user. It is a
// pure function of the username, the current password hash and the server
// salt, so changing the password invalidates every refresh token issued
// before the change.
func DeriveRefreshToken(username, passwordHash, salt string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(username))
	mac.Write([]byte{'.'})
	mac.Write([]byte(passwordHash))
	return hex.EncodeToString(mac.Sum(nil))
}

// EqualTokens compares two secrets in constant time.
func EqualTokens(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
