package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/launchserver/internal/api"
	"github.com/dmitrijs2005/launchserver/internal/client/client"
	"github.com/dmitrijs2005/launchserver/internal/client/config"
	"github.com/dmitrijs2005/launchserver/internal/client/tokens"
	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/netx"
)

type fakeClient struct {
	loginErr   error
	whoamiErr  error
	lastCreds  client.Credentials
	lastUpload client.CrashUpload
	access     string
	refresh    string
	closed     bool
}

func (f *fakeClient) Close() error { f.closed = true; return nil }

func (f *fakeClient) Login(_ context.Context, c client.Credentials) (*api.Session, error) {
	f.lastCreds = c
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &api.Session{Username: "alice", AccessToken: "a1", RefreshToken: "r1"}, nil
}

func (f *fakeClient) Whoami(context.Context) (*api.Session, error) {
	if f.whoamiErr != nil {
		return nil, f.whoamiErr
	}
	return &api.Session{Username: "alice", UUID: "0b7c", Roles: []string{"player", "admin"}, AccessToken: f.access, ExpiresIn: 3600}, nil
}

func (f *fakeClient) ReportCrash(_ context.Context, r client.CrashUpload) (*api.CrashReportResponse, error) {
	f.lastUpload = r
	return &api.CrashReportResponse{Path: "alice/crash-2024-03-01_12.00.00.txt"}, nil
}

func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) SetTokens(access, refresh string) { f.access, f.refresh = access, refresh }

type env struct {
	fake  *fakeClient
	cache *tokens.Cache
	cfg   *config.Config
}

func setup(t *testing.T) *env {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "launcher.db")

	db, err := client.InitDatabase(context.Background(), cfg.DatabaseFile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := &env{fake: &fakeClient{}, cache: tokens.NewCache(db), cfg: cfg}

	origOpen, origPw := openApp, getPassword
	t.Cleanup(func() { openApp, getPassword = origOpen, origPw })
	openApp = func(context.Context, *config.Config) (*App, error) {
		return &App{config: cfg, client: e.fake, cache: e.cache}, nil
	}
	getPassword = func(io.Writer) ([]byte, error) { return []byte("wonderland"), nil }
	return e
}

func run(t *testing.T, e *env, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Execute(context.Background(), e.cfg, args, &out)
	return out.String(), err
}

func TestLogin_SavesSession(t *testing.T) {
	e := setup(t)

	out, err := run(t, e, "login", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice")
	assert.Equal(t, client.Credentials{Login: "alice", Password: "wonderland"}, e.fake.lastCreds)
	assert.True(t, e.fake.closed)

	got, err := e.cache.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tokens.Tokens{Username: "alice", AccessToken: "a1", RefreshToken: "r1"}, *got)
}

func TestLogin_WithTOTP(t *testing.T) {
	e := setup(t)

	_, err := run(t, e, "login", "alice", "--totp", "123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", e.fake.lastCreds.TOTP)
}

func TestLogin_NeedsTwoFactorHint(t *testing.T) {
	e := setup(t)
	e.fake.loginErr = common.ErrNeedsTwoFactor

	_, err := run(t, e, "login", "alice")
	require.ErrorIs(t, err, common.ErrNeedsTwoFactor)
	assert.Contains(t, err.Error(), "--totp")

	_, err = e.cache.Load(context.Background())
	require.ErrorIs(t, err, tokens.ErrNoSession)
}

func TestLogin_RequiresUsername(t *testing.T) {
	e := setup(t)
	_, err := run(t, e, "login")
	require.Error(t, err)
}

func TestWhoami(t *testing.T) {
	e := setup(t)
	require.NoError(t, e.cache.Save(context.Background(), tokens.Tokens{Username: "alice", AccessToken: "a1", RefreshToken: "r1"}))

	out, err := run(t, e, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Username: alice")
	assert.Contains(t, out, "Roles:    player, admin")
	assert.Contains(t, out, "in 1h0m0s")
	assert.Equal(t, "r1", e.fake.refresh)
}

func TestWhoami_NotLoggedIn(t *testing.T) {
	e := setup(t)
	_, err := run(t, e, "whoami")
	require.ErrorIs(t, err, tokens.ErrNoSession)
}

func TestWhoami_Expired(t *testing.T) {
	e := setup(t)
	require.NoError(t, e.cache.Save(context.Background(), tokens.Tokens{Username: "alice", AccessToken: "a1"}))
	e.fake.whoamiErr = common.ErrTokenExpired

	_, err := run(t, e, "whoami")
	require.ErrorIs(t, err, common.ErrTokenExpired)
	assert.Contains(t, err.Error(), "log in again")
}

func writeCrash(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crash-fml.txt")
	require.NoError(t, os.WriteFile(path, []byte("---- Minecraft Crash Report ----\n"), 0o600))
	return path
}

func TestReport_LoggedIn(t *testing.T) {
	e := setup(t)
	require.NoError(t, e.cache.Save(context.Background(), tokens.Tokens{Username: "alice", AccessToken: "a1"}))

	out, err := run(t, e, "report", writeCrash(t), "--game-version", "1.20.1")
	require.NoError(t, err)
	assert.Contains(t, out, "Report stored as alice/crash-2024-03-01_12.00.00.txt")
	assert.Equal(t, "crash-fml.txt", e.fake.lastUpload.FileName)
	assert.Equal(t, "1.20.1", e.fake.lastUpload.GameVersion)
	assert.Equal(t, "a1", e.fake.access)
}

func TestReport_AnonymousNeedsUser(t *testing.T) {
	e := setup(t)

	_, err := run(t, e, "report", writeCrash(t))
	require.Error(t, err)

	_, err = run(t, e, "report", writeCrash(t), "--user", "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", e.fake.lastUpload.Username)
}

func TestReport_HTTP(t *testing.T) {
	e := setup(t)
	require.NoError(t, e.cache.Save(context.Background(), tokens.Tokens{Username: "alice", AccessToken: "a1"}))

	orig := uploadHTTP
	t.Cleanup(func() { uploadHTTP = orig })
	var gotURL, gotToken string
	var got netx.CrashReport
	uploadHTTP = func(_ context.Context, _ *http.Client, baseURL, token string, r netx.CrashReport) (string, error) {
		gotURL, gotToken, got = baseURL, token, r
		return "alice/crash-fml.txt", nil
	}

	out, err := run(t, e, "report", writeCrash(t), "--http", "http://launcher.example.org:9275")
	require.NoError(t, err)
	assert.Contains(t, out, "Report stored as alice/crash-fml.txt")
	assert.Equal(t, "http://launcher.example.org:9275", gotURL)
	assert.Equal(t, "a1", gotToken)
	assert.Equal(t, "crash-fml.txt", got.FileName)
	assert.Contains(t, got.Content, "Minecraft Crash Report")
	assert.Empty(t, e.fake.lastUpload.FileName, "gRPC path must not be used")
}

func TestReport_MissingFile(t *testing.T) {
	e := setup(t)
	_, err := run(t, e, "report", filepath.Join(t.TempDir(), "nope.txt"), "--user", "bob")
	require.Error(t, err)
}

func TestLogoutAndPing(t *testing.T) {
	e := setup(t)
	require.NoError(t, e.cache.Save(context.Background(), tokens.Tokens{Username: "alice", AccessToken: "a1"}))

	out, err := run(t, e, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	_, err = e.cache.Load(context.Background())
	require.ErrorIs(t, err, tokens.ErrNoSession)

	out, err = run(t, e, "ping")
	require.NoError(t, err)
	assert.Contains(t, out, "OK")
}

func TestSaveRefreshed(t *testing.T) {
	e := setup(t)
	app := &App{config: e.cfg, client: e.fake, cache: e.cache, out: io.Discard}

	app.saveRefreshed("a2", "r2")
	_, err := e.cache.Load(context.Background())
	require.ErrorIs(t, err, tokens.ErrNoSession, "nothing is saved without a known user")

	app.username = "alice"
	app.saveRefreshed("a2", "r2")
	got, err := e.cache.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a2", got.AccessToken)
	assert.Equal(t, "r2", got.RefreshToken)
}

func TestNewApp_OpensDatabase(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "launcher.db")
	cfg.RequestTimeout = time.Second

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, app.Close())
}

func TestGetPassword(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) { return []byte("secret"), nil }

	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), pw)
	assert.Equal(t, "Enter password: \n", out.String())
}
