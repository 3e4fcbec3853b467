package client

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmitrijs2005/launchserver/internal/api"
	"github.com/dmitrijs2005/launchserver/internal/common"
)

type fakeServer struct {
	api.UnimplementedLaunchServiceServer

	mu           sync.Mutex
	validAccess  string
	refreshCalls int
	lastProof    api.Proof
	parts        []*api.CrashReportRequest
}

func tokenFrom(ctx context.Context) string {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f *fakeServer) session(access, refresh string) api.Session {
	return api.Session{ID: "s1", Username: "alice", AccessToken: access, RefreshToken: refresh, ExpiresIn: 3600}
}

func (f *fakeServer) Authorize(_ context.Context, in *api.AuthorizeRequest) (*api.AuthorizeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastProof = in.Proof
	if in.Proof.Password != "wonderland" {
		return nil, api.StatusError(common.ErrInvalidCredentials)
	}
	return &api.AuthorizeResponse{Session: f.session(f.validAccess, "r1")}, nil
}

func (f *fakeServer) VerifyToken(_ context.Context, in *api.VerifyTokenRequest) (*api.VerifyTokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.AccessToken != f.validAccess {
		return nil, api.StatusError(common.ErrTokenExpired)
	}
	return &api.VerifyTokenResponse{Session: f.session(in.AccessToken, "")}, nil
}

func (f *fakeServer) RefreshToken(_ context.Context, in *api.RefreshTokenRequest) (*api.RefreshTokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if in.RefreshToken != "r1" {
		return &api.RefreshTokenResponse{}, nil
	}
	s := f.session(f.validAccess, "r2")
	return &api.RefreshTokenResponse{Session: &s}, nil
}

func (f *fakeServer) CrashReport(ctx context.Context, in *api.CrashReportRequest) (*api.CrashReportResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tok := tokenFrom(ctx); tok != "" && tok != f.validAccess {
		return nil, api.StatusError(common.ErrTokenExpired)
	}
	f.parts = append(f.parts, in)
	if in.IsPart && !in.IsLastPart {
		return &api.CrashReportResponse{Pending: true}, nil
	}
	return &api.CrashReportResponse{Path: "alice/crash-1.txt"}, nil
}

func (f *fakeServer) Ping(context.Context, *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func newTestClient(t *testing.T, fake *fakeServer, opts ...Option) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	api.RegisterLaunchServiceServer(srv, fake)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	opts = append(opts, WithDialOptions(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})))
	c, err := NewGRPCClient("passthrough:///bufnet", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLogin_Plain(t *testing.T) {
	fake := &fakeServer{validAccess: "a1"}
	c := newTestClient(t, fake)

	s, err := c.Login(context.Background(), Credentials{Login: "alice", Password: "wonderland"})
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, api.ProofPlain, fake.lastProof.Type)

	access, refresh := c.tokens()
	assert.Equal(t, "a1", access)
	assert.Equal(t, "r1", refresh)
}

func TestLogin_WithTOTP(t *testing.T) {
	fake := &fakeServer{validAccess: "a1"}
	c := newTestClient(t, fake)

	_, err := c.Login(context.Background(), Credentials{Login: "alice", Password: "wonderland", TOTP: "123456"})
	require.NoError(t, err)
	assert.Equal(t, api.Proof{Type: api.ProofTwoFactor, Password: "wonderland", Code: "123456"}, fake.lastProof)
}

func TestLogin_WrongPassword(t *testing.T) {
	c := newTestClient(t, &fakeServer{validAccess: "a1"})

	_, err := c.Login(context.Background(), Credentials{Login: "alice", Password: "nope"})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestInterceptor_RefreshesExpiredToken(t *testing.T) {
	fake := &fakeServer{validAccess: "a2"}
	var gotAccess, gotRefresh string
	c := newTestClient(t, fake, WithOnRefresh(func(a, r string) { gotAccess, gotRefresh = a, r }))
	c.SetTokens("stale", "r1")

	resp, err := c.ReportCrash(context.Background(), CrashUpload{FileName: "crash.txt", Content: []byte("boom")})
	require.NoError(t, err)
	assert.Equal(t, "alice/crash-1.txt", resp.Path)

	assert.Equal(t, 1, fake.refreshCalls)
	assert.Equal(t, "a2", gotAccess)
	assert.Equal(t, "r2", gotRefresh)
	access, _ := c.tokens()
	assert.Equal(t, "a2", access)
}

func TestInterceptor_RefreshUnsupported(t *testing.T) {
	fake := &fakeServer{validAccess: "a2"}
	c := newTestClient(t, fake)
	c.SetTokens("stale", "unknown")

	_, err := c.ReportCrash(context.Background(), CrashUpload{FileName: "crash.txt", Content: []byte("boom")})
	require.ErrorIs(t, err, common.ErrTokenExpired)
	assert.Equal(t, 1, fake.refreshCalls)
}

func TestInterceptor_NoRefreshWithoutRefreshToken(t *testing.T) {
	fake := &fakeServer{validAccess: "a2"}
	c := newTestClient(t, fake)
	c.SetTokens("stale", "")

	_, err := c.ReportCrash(context.Background(), CrashUpload{FileName: "crash.txt", Content: []byte("boom")})
	require.ErrorIs(t, err, common.ErrTokenExpired)
	assert.Zero(t, fake.refreshCalls)
}

func TestReportCrash_Chunked(t *testing.T) {
	fake := &fakeServer{validAccess: "a1"}
	c := newTestClient(t, fake, WithChunkSize(4))
	c.SetTokens("a1", "r1")

	content := []byte("0123456789")
	resp, err := c.ReportCrash(context.Background(), CrashUpload{FileName: "crash.txt", Content: content, GameVersion: "1.20.1"})
	require.NoError(t, err)
	assert.False(t, resp.Pending)
	assert.Equal(t, "alice/crash-1.txt", resp.Path)

	require.Len(t, fake.parts, 3)
	var joined bytes.Buffer
	for i, p := range fake.parts {
		assert.True(t, p.IsPart)
		assert.Equal(t, i == 2, p.IsLastPart)
		assert.Equal(t, fake.parts[0].RequestID, p.RequestID)
		assert.Equal(t, "1.20.1", p.GameVersion)
		joined.Write(p.Content)
	}
	assert.NotEmpty(t, fake.parts[0].RequestID)
	assert.Equal(t, content, joined.Bytes())
}

func TestReportCrash_SingleCall(t *testing.T) {
	fake := &fakeServer{validAccess: "a1"}
	c := newTestClient(t, fake)

	_, err := c.ReportCrash(context.Background(), CrashUpload{Username: "bob", FileName: "crash.txt", Content: []byte("boom")})
	require.NoError(t, err)
	require.Len(t, fake.parts, 1)
	assert.False(t, fake.parts[0].IsPart)
	assert.Empty(t, fake.parts[0].RequestID)
	assert.Equal(t, "bob", fake.parts[0].Username)
}

func TestWhoami_RefreshesOnce(t *testing.T) {
	fake := &fakeServer{validAccess: "a2"}
	c := newTestClient(t, fake)
	c.SetTokens("stale", "r1")

	s, err := c.Whoami(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a2", s.AccessToken)
	assert.Equal(t, 1, fake.refreshCalls)
}

func TestWhoami_RefreshUnsupported(t *testing.T) {
	fake := &fakeServer{validAccess: "a2"}
	c := newTestClient(t, fake)
	c.SetTokens("stale", "unknown")

	_, err := c.Whoami(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestPing(t *testing.T) {
	c := newTestClient(t, &fakeServer{})
	require.NoError(t, c.Ping(context.Background()))
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.ErrorIs(t, mapError(status.Error(codes.Unavailable, "down")), ErrUnavailable)
	assert.ErrorIs(t, mapError(status.Error(codes.DeadlineExceeded, "slow")), ErrUnavailable)
	assert.ErrorIs(t, mapError(api.StatusError(common.ErrProviderUnavailable)), common.ErrProviderUnavailable)
	assert.ErrorIs(t, mapError(api.StatusError(common.ErrHardwareBanned)), common.ErrHardwareBanned)

	plain := errors.New("boom")
	assert.Same(t, plain, mapError(plain))
}
