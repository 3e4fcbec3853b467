package providers

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/logging"
	"github.com/dmitrijs2005/launchserver/internal/server/auth"
	"github.com/dmitrijs2005/launchserver/internal/server/hwid"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
	"github.com/dmitrijs2005/launchserver/internal/server/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = time.Hour

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type env struct {
	clock    *fakeClock
	store    *store.MemoryStore
	sessions *auth.SessionManager
	guard    *hwid.Guard
	local    *Local
}

func newEnv(t *testing.T) *env {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	key, err := auth.GenerateSigningKey()
	require.NoError(t, err)
	sessions, err := auth.NewSessionManager(key, sessionTTL, "legacy-salt", auth.WithClock(clock.Now))
	require.NoError(t, err)

	s := store.NewMemoryStore()
	guard := hwid.NewGuard(s, true, logging.NopLogger{})
	local := NewLocal(s, sessions, guard, bcryptVerifier{}, logging.NopLogger{}, clock.Now)
	return &env{clock: clock, store: s, sessions: sessions, guard: guard, local: local}
}

// bcryptVerifier mirrors cryptox.BcryptVerifier; users are hashed at
// MinCost to keep the tests fast.
type bcryptVerifier struct{}

func (bcryptVerifier) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (e *env) addUser(t *testing.T, u *models.User, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u.PasswordHash = string(hash)
	created, err := e.store.CreateUser(context.Background(), u)
	require.NoError(t, err)
	return created
}

func (e *env) banHardware(t *testing.T, u *models.User) {
	t.Helper()
	ctx := context.Background()
	rec, err := e.store.BindHardware(ctx, u.ID, models.HardwareInfo{HwDiskID: "disk-" + u.Username}, []byte("pk-"+u.Username))
	require.NoError(t, err)
	require.NoError(t, e.store.SetHardwareBanned(ctx, rec.ID, true))
}
