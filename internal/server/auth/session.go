package auth

import (
	"crypto/ecdsa"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/cryptox"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// OfflineSessionTTL is the fixed lifetime of transient sessions.
const OfflineSessionTTL = 3600 * time.Second

const gameTokenSize = 16

var ErrNoSessionKey = errors.New("session manager requires a signing key")

// Manager is what strategies need from session issuance.
type Manager interface {
	Issue(user *models.User, opts IssueOptions) (*models.UserSession, error)
	Verify(token string) (*Claims, error)
	RefreshOwner(refreshToken string) (string, error)
	CheckRefresh(user *models.User, refreshToken string) bool
	NewGameToken() (string, error)
}

// IssueOptions tune a single Issue call.
type IssueOptions struct {
	// SessionID overrides the generated session id.
	SessionID string
	// TTL overrides the configured session TTL.
	TTL time.Duration
	// NoRefresh suppresses the refresh token.
	NoRefresh bool
}

type SessionManager struct {
	key  *ecdsa.PrivateKey
	ttl  time.Duration
	salt string
	now  func() time.Time
}

type Option func(*SessionManager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *SessionManager) { m.now = now }
}

func NewSessionManager(key *ecdsa.PrivateKey, ttl time.Duration, salt string, opts ...Option) (*SessionManager, error) {
	if key == nil {
		return nil, ErrNoSessionKey
	}
	m := &SessionManager{key: key, ttl: ttl, salt: salt, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// Issue mints a session for user. Expiry is always now plus the TTL.
func (m *SessionManager) Issue(user *models.User, opts IssueOptions) (*models.UserSession, error) {
	ttl := m.ttl
	if opts.TTL > 0 {
		ttl = opts.TTL
	}
	id := opts.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	now := m.now()
	expires := now.Add(ttl)
	token, err := signToken(m.key, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UUID: user.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	s := &models.UserSession{
		ID:          id,
		User:        user,
		AccessToken: token,
		ExpiresAt:   expires,
	}
	if !opts.NoRefresh && !user.Transient {
		s.RefreshToken = m.deriveRefresh(user)
	}
	return s, nil
}

func (m *SessionManager) Verify(token string) (*Claims, error) {
	return parseToken(token, &m.key.PublicKey, m.now)
}

func (m *SessionManager) deriveRefresh(user *models.User) string {
	return user.Username + "." + cryptox.DeriveRefreshToken(user.Username, user.PasswordHash, m.salt)
}

// RefreshOwner extracts the username a refresh token claims to belong to.
func (m *SessionManager) RefreshOwner(refreshToken string) (string, error) {
	i := strings.LastIndexByte(refreshToken, '.')
	if i <= 0 || i == len(refreshToken)-1 {
		return "", common.ErrInvalidCredentials
	}
	return refreshToken[:i], nil
}

// CheckRefresh reports whether refreshToken matches user's current password.
func (m *SessionManager) CheckRefresh(user *models.User, refreshToken string) bool {
	return cryptox.EqualTokens(m.deriveRefresh(user), refreshToken)
}

func (m *SessionManager) NewGameToken() (string, error) {
	return common.MakeRandHexString(gameTokenSize)
}
