// Package providers implements the authentication strategies of the launch
// server behind one Provider contract.
//
// The strategy is picked once at startup from a Mode. Failed operations
// never create users, sessions or hardware records.
package providers

import (
	"context"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/server/hwid"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
)

// AuthContext describes the connection an auth request arrived on.
type AuthContext struct {
	IP     string
	Client string
}

// AuthReport is the result of a successful authorization or refresh.
type AuthReport struct {
	Session      *models.UserSession
	AccessToken  string
	RefreshToken string
	// GameToken is set only when game access was requested.
	GameToken string
	ExpiresIn time.Duration
}

type Provider interface {
	Authorize(ctx context.Context, login string, proof PasswordProof, ac AuthContext, wantsGameAccess bool) (*AuthReport, error)
	// VerifyAccessToken fails with common.ErrTokenExpired for any unusable
	// token.
	VerifyAccessToken(ctx context.Context, token string) (*models.UserSession, error)
	// RefreshAccessToken returns (nil, nil) when the strategy cannot
	// refresh; callers fall back to password login.
	RefreshAccessToken(ctx context.Context, refreshToken string, ac AuthContext) (*AuthReport, error)
	CheckHardwareAndBind(ctx context.Context, session *models.UserSession, proof hwid.Proof) (*models.HardwareRecord, error)
}

func newReport(s *models.UserSession, gameToken string, now time.Time) *AuthReport {
	return &AuthReport{
		Session:      s,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		GameToken:    gameToken,
		ExpiresIn:    s.ExpiresIn(now),
	}
}
