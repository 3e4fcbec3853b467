package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/cryptox"
	"github.com/dmitrijs2005/launchserver/internal/logging"
	"github.com/dmitrijs2005/launchserver/internal/server/auth"
	"github.com/dmitrijs2005/launchserver/internal/server/hwid"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
	"github.com/dmitrijs2005/launchserver/internal/server/store"
	"github.com/google/uuid"
)

// Local verifies credentials against the local identity store.
type Local struct {
	store    store.Store
	sessions auth.Manager
	guard    *hwid.Guard
	verifier cryptox.PasswordVerifier
	logger   logging.Logger
	now      func() time.Time
}

func NewLocal(s store.Store, sessions auth.Manager, guard *hwid.Guard, verifier cryptox.PasswordVerifier, logger logging.Logger, now func() time.Time) *Local {
	return &Local{store: s, sessions: sessions, guard: guard, verifier: verifier, logger: logger, now: now}
}

// storeErr maps a lookup failure, turning a missing row into notFound.
func storeErr(err, notFound error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return notFound
	}
	if errors.Is(err, common.ErrProviderUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
}

func (p *Local) Authorize(ctx context.Context, login string, proof PasswordProof, ac AuthContext, wantsGameAccess bool) (*AuthReport, error) {
	password, code, err := splitProof(proof)
	if err != nil {
		return nil, err
	}

	user, err := p.store.UserByLogin(ctx, login)
	if err != nil {
		return nil, storeErr(err, common.ErrInvalidCredentials)
	}
	// Banned hardware is reported before the credentials are looked at.
	if err := p.guard.Check(ctx, user); err != nil {
		return nil, err
	}
	if !p.verifier.Verify(user.PasswordHash, password) {
		p.logger.Info(ctx, "wrong password", "login", login, "ip", ac.IP)
		return nil, common.ErrInvalidCredentials
	}
	if user.TOTPSecret != "" {
		if code == "" {
			return nil, common.ErrNeedsTwoFactor
		}
		if !cryptox.ValidateTOTP(user.TOTPSecret, code, p.now()) {
			p.logger.Info(ctx, "wrong totp code", "login", login, "ip", ac.IP)
			return nil, common.ErrInvalidCredentials
		}
	}

	return p.issue(ctx, user, wantsGameAccess, models.LoginUpdate{})
}

// issue mints the session and only then writes upd together with the
// rotated game token in a single store call.
func (p *Local) issue(ctx context.Context, user *models.User, wantsGameAccess bool, upd models.LoginUpdate) (*AuthReport, error) {
	session, err := p.sessions.Issue(user, auth.IssueOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if wantsGameAccess {
		if upd.GameToken, err = p.sessions.NewGameToken(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
	}
	if !upd.Empty() {
		if err := p.store.ApplyLogin(ctx, user.ID, upd); err != nil {
			return nil, storeErr(err, common.ErrUserNotFound)
		}
		upd.Apply(user)
	}

	p.logger.Info(ctx, "session issued", "username", user.Username, "session", session.ID)
	return newReport(session, upd.GameToken, p.now()), nil
}

func (p *Local) VerifyAccessToken(ctx context.Context, token string) (*models.UserSession, error) {
	claims, err := p.sessions.Verify(token)
	if err != nil {
		return nil, err
	}
	return p.sessionFromClaims(ctx, token, claims)
}

// sessionFromClaims resolves the stored user a verified token refers to.
func (p *Local) sessionFromClaims(ctx context.Context, token string, claims *auth.Claims) (*models.UserSession, error) {
	id, err := uuid.Parse(claims.UUID)
	if err != nil {
		return nil, common.ErrTokenExpired
	}
	user, err := p.store.UserByUUID(ctx, id)
	if err != nil {
		return nil, storeErr(err, common.ErrTokenExpired)
	}
	if user.Username != claims.Subject {
		return nil, common.ErrTokenExpired
	}
	if err := p.guard.Check(ctx, user); err != nil {
		return nil, err
	}

	return &models.UserSession{
		ID:          claims.ID,
		User:        user,
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// RefreshAccessToken issues a new access token when the refresh token still
// matches the user's password. The game token is rotated for users that
// already hold one.
func (p *Local) RefreshAccessToken(ctx context.Context, refreshToken string, ac AuthContext) (*AuthReport, error) {
	username, err := p.sessions.RefreshOwner(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := p.store.UserByUsername(ctx, username)
	if err != nil {
		return nil, storeErr(err, common.ErrInvalidCredentials)
	}
	if !p.sessions.CheckRefresh(user, refreshToken) {
		p.logger.Info(ctx, "stale refresh token", "username", username, "ip", ac.IP)
		return nil, common.ErrInvalidCredentials
	}
	if err := p.guard.Check(ctx, user); err != nil {
		return nil, err
	}
	return p.issue(ctx, user, user.GameToken != "", models.LoginUpdate{})
}

func (p *Local) CheckHardwareAndBind(ctx context.Context, session *models.UserSession, proof hwid.Proof) (*models.HardwareRecord, error) {
	return p.guard.Bind(ctx, session.User, proof)
}
