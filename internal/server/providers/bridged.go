package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/cryptox"
	"github.com/dmitrijs2005/launchserver/internal/logging"
	"github.com/dmitrijs2005/launchserver/internal/server/auth"
	"github.com/dmitrijs2005/launchserver/internal/server/bridge"
	"github.com/dmitrijs2005/launchserver/internal/server/hwid"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
	"github.com/google/uuid"
)

// Bridge is the remote identity service.
type Bridge interface {
	Login(ctx context.Context, login, password, code string) (*bridge.LoginResult, error)
	Verify(ctx context.Context, accessToken string) (*bridge.Identity, error)
}

// identityResolver turns a remotely confirmed identity into a session. The
// bridged strategy holds exactly one, chosen at construction.
type identityResolver interface {
	login(ctx context.Context, id *bridge.Identity, wantsGameAccess bool) (*AuthReport, error)
	fromClaims(ctx context.Context, token string, claims *auth.Claims) (*models.UserSession, error)
	fromRemote(ctx context.Context, token string, id *bridge.Identity) (*models.UserSession, error)
	refresh(ctx context.Context, refreshToken string, ac AuthContext) (*AuthReport, error)
	bind(ctx context.Context, session *models.UserSession, proof hwid.Proof) (*models.HardwareRecord, error)
}

// Bridged delegates password and second-factor checks to a remote identity
// service.
type Bridged struct {
	remote   Bridge
	sessions auth.Manager
	resolver identityResolver
	logger   logging.Logger
}

// NewBridged builds the strategy without a local store: identities are
// transient, sessions cannot be refreshed and hardware is not tracked.
func NewBridged(remote Bridge, sessions auth.Manager, logger logging.Logger, now func() time.Time) *Bridged {
	return &Bridged{
		remote:   remote,
		sessions: sessions,
		resolver: &transientResolver{sessions: sessions, now: now},
		logger:   logger,
	}
}

// NewDualBridged resolves remote identities against the local store and
// issues sessions the way the local strategy does.
func NewDualBridged(remote Bridge, local *Local, logger logging.Logger) *Bridged {
	return &Bridged{
		remote:   remote,
		sessions: local.sessions,
		resolver: &storeResolver{local: local},
		logger:   logger,
	}
}

func (p *Bridged) Authorize(ctx context.Context, login string, proof PasswordProof, ac AuthContext, wantsGameAccess bool) (*AuthReport, error) {
	password, code, err := splitProof(proof)
	if err != nil {
		return nil, err
	}

	res, err := p.remote.Login(ctx, login, password, "")
	if err != nil {
		p.logger.Info(ctx, "remote login failed", "login", login, "ip", ac.IP, "error", err)
		return nil, err
	}
	if res.Pending2FA {
		if code == "" {
			return nil, common.ErrNeedsTwoFactor
		}
		if res, err = p.remote.Login(ctx, login, password, code); err != nil {
			return nil, err
		}
		if res.Pending2FA {
			return nil, common.ErrInvalidCredentials
		}
	}
	if res.Identity == nil {
		return nil, common.ErrInvalidCredentials
	}

	return p.resolver.login(ctx, res.Identity, wantsGameAccess)
}

// VerifyAccessToken trusts locally signed tokens without contacting the
// remote service. Anything that is not shaped like a JWT is treated as a
// remote access token and checked with the identity service.
func (p *Bridged) VerifyAccessToken(ctx context.Context, token string) (*models.UserSession, error) {
	if !looksLikeJWT(token) {
		return p.verifyRemote(ctx, token)
	}
	claims, err := p.sessions.Verify(token)
	if err != nil {
		return nil, err
	}
	return p.resolver.fromClaims(ctx, token, claims)
}

func looksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}

func (p *Bridged) verifyRemote(ctx context.Context, token string) (*models.UserSession, error) {
	if token == "" {
		return nil, common.ErrTokenExpired
	}
	id, err := p.remote.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrProviderUnavailable) {
			return nil, err
		}
		return nil, common.ErrTokenExpired
	}
	return p.resolver.fromRemote(ctx, token, id)
}

func (p *Bridged) RefreshAccessToken(ctx context.Context, refreshToken string, ac AuthContext) (*AuthReport, error) {
	return p.resolver.refresh(ctx, refreshToken, ac)
}

func (p *Bridged) CheckHardwareAndBind(ctx context.Context, session *models.UserSession, proof hwid.Proof) (*models.HardwareRecord, error) {
	return p.resolver.bind(ctx, session, proof)
}

type storeResolver struct {
	local *Local
}

// login maps the remote identity onto its local record, merges the remote
// role, runs the hardware gate and only then persists anything.
func (r *storeResolver) login(ctx context.Context, id *bridge.Identity, wantsGameAccess bool) (*AuthReport, error) {
	l := r.local
	user, err := l.store.UserByUUID(ctx, id.UUID)
	if err != nil {
		if err = storeErr(err, common.ErrUserNotFound); err == common.ErrUserNotFound {
			l.logger.Warn(ctx, "remote user has no local record", "username", id.Username, "uuid", id.UUID)
		}
		return nil, err
	}

	var upd models.LoginUpdate
	if user.AddRole(id.Role) {
		upd.Roles = user.Roles
	}
	if id.AccessToken != "" && id.AccessToken != user.ExternalToken {
		upd.ExternalToken = id.AccessToken
	}
	if err := l.guard.Check(ctx, user); err != nil {
		return nil, err
	}

	return l.issue(ctx, user, wantsGameAccess, upd)
}

func (r *storeResolver) fromClaims(ctx context.Context, token string, claims *auth.Claims) (*models.UserSession, error) {
	return r.local.sessionFromClaims(ctx, token, claims)
}

// fromRemote accepts a remote token only for the user it was last stored on.
func (r *storeResolver) fromRemote(ctx context.Context, token string, id *bridge.Identity) (*models.UserSession, error) {
	l := r.local
	user, err := l.store.UserByUUID(ctx, id.UUID)
	if err != nil {
		return nil, storeErr(err, common.ErrTokenExpired)
	}
	if !cryptox.EqualTokens(user.ExternalToken, token) {
		return nil, common.ErrTokenExpired
	}
	if err := l.guard.Check(ctx, user); err != nil {
		return nil, err
	}
	return &models.UserSession{ID: uuid.NewString(), User: user, AccessToken: token}, nil
}

func (r *storeResolver) refresh(ctx context.Context, refreshToken string, ac AuthContext) (*AuthReport, error) {
	return r.local.RefreshAccessToken(ctx, refreshToken, ac)
}

func (r *storeResolver) bind(ctx context.Context, session *models.UserSession, proof hwid.Proof) (*models.HardwareRecord, error) {
	return r.local.CheckHardwareAndBind(ctx, session, proof)
}

type transientResolver struct {
	sessions auth.Manager
	now      func() time.Time
}

func transientUser(id uuid.UUID, username string) *models.User {
	return &models.User{ID: id, Username: username, Transient: true}
}

func offlineSessionID(id uuid.UUID) string {
	return "offline-" + id.String()
}

func (r *transientResolver) login(_ context.Context, id *bridge.Identity, wantsGameAccess bool) (*AuthReport, error) {
	user := transientUser(id.UUID, id.Username)
	user.AddRole(id.Role)
	user.ExternalToken = id.AccessToken

	session, err := r.sessions.Issue(user, auth.IssueOptions{
		SessionID: offlineSessionID(id.UUID),
		TTL:       auth.OfflineSessionTTL,
		NoRefresh: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	var gameToken string
	if wantsGameAccess {
		if gameToken, err = r.sessions.NewGameToken(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		user.GameToken = gameToken
	}
	return newReport(session, gameToken, r.now()), nil
}

func (r *transientResolver) fromClaims(_ context.Context, token string, claims *auth.Claims) (*models.UserSession, error) {
	id, err := uuid.Parse(claims.UUID)
	if err != nil {
		return nil, common.ErrTokenExpired
	}
	return &models.UserSession{
		ID:          offlineSessionID(id),
		User:        transientUser(id, claims.Subject),
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (r *transientResolver) fromRemote(_ context.Context, token string, id *bridge.Identity) (*models.UserSession, error) {
	user := transientUser(id.UUID, id.Username)
	user.AddRole(id.Role)
	user.ExternalToken = token
	return &models.UserSession{ID: offlineSessionID(id.UUID), User: user, AccessToken: token}, nil
}

func (r *transientResolver) refresh(context.Context, string, AuthContext) (*AuthReport, error) {
	return nil, nil
}

func (r *transientResolver) bind(context.Context, *models.UserSession, hwid.Proof) (*models.HardwareRecord, error) {
	return nil, fmt.Errorf("%w: hardware tracking needs a local store", common.ErrProviderUnavailable)
}
