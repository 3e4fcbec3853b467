// Package auth issues and verifies session tokens.
//
// Access tokens are ES256 JWTs carrying the username as subject and the
// identity UUID as a private claim. Refresh tokens are derived from the
// user's current password hash, so a password change invalidates every
// outstanding refresh token.
package auth

import (
	"crypto/ecdsa"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims.
type Claims struct {
	jwt.RegisteredClaims
	UUID string `json:"uuid"`
}

func signToken(key *ecdsa.PrivateKey, claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
}

// parseToken validates signature, algorithm and expiry. Every failure is
// reported as common.ErrTokenExpired.
func parseToken(tokenString string, key *ecdsa.PublicKey, now func() time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil || !token.Valid {
		return nil, common.ErrTokenExpired
	}
	if claims.Subject == "" {
		return nil, common.ErrTokenExpired
	}

	return claims, nil
}
