package client

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/api"
	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// DefaultChunkSize is the part size for chunked crash uploads.
const DefaultChunkSize = 64 << 10

// refreshable lists the calls that authenticate with the metadata token
// and may be retried after a refresh.
var refreshable = map[string]bool{
	api.HardwareReportMethod: true,
	api.CrashReportMethod:    true,
}

type Option func(*GRPCClient)

// WithChunkSize sets the crash upload part size.
func WithChunkSize(n int) Option { return func(c *GRPCClient) { c.chunkSize = n } }

// WithClientName is sent as the client identifier on login and refresh.
func WithClientName(name string) Option { return func(c *GRPCClient) { c.clientName = name } }

// WithOnRefresh is called with the new token pair after a refresh.
func WithOnRefresh(fn func(access, refresh string)) Option {
	return func(c *GRPCClient) { c.onRefresh = fn }
}

func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) { c.dialOpts = append(c.dialOpts, opts...) }
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.LaunchServiceClient
	dialOpts    []grpc.DialOption
	chunkSize   int
	clientName  string
	onRefresh   func(access, refresh string)

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewGRPCClient(endpointURL string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, chunkSize: DefaultChunkSize, clientName: "launcher-cli"}
	for _, o := range opts {
		o(c)
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, c.dialOpts...)

	conn, err := grpc.NewClient(c.endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewLaunchServiceClient(conn)
	return c, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *GRPCClient) SetTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken, c.refreshToken = access, refresh
	c.mu.Unlock()
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	access, refresh := c.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || !refreshable[method] || refresh == "" || !api.IsTokenExpired(err) {
		return err
	}

	if rerr := c.refresh(ctx); rerr != nil {
		return err
	}
	access, _ = c.tokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

// refresh exchanges the refresh token for a new session.
func (c *GRPCClient) refresh(ctx context.Context) error {
	_, refresh := c.tokens()
	resp, err := c.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refresh, Client: c.clientName})
	if err != nil {
		return mapError(err)
	}
	if resp.Session == nil {
		return ErrNoSession
	}

	c.SetTokens(resp.Session.AccessToken, resp.Session.RefreshToken)
	if c.onRefresh != nil {
		c.onRefresh(resp.Session.AccessToken, resp.Session.RefreshToken)
	}
	return nil
}

func (c *GRPCClient) Login(ctx context.Context, cr Credentials) (*api.Session, error) {
	proof := api.Proof{Type: api.ProofPlain, Password: cr.Password}
	if cr.TOTP != "" {
		proof = api.Proof{Type: api.ProofTwoFactor, Password: cr.Password, Code: cr.TOTP}
	}

	resp, err := c.client.Authorize(ctx, &api.AuthorizeRequest{Login: cr.Login, Proof: proof, Client: c.clientName})
	if err != nil {
		return nil, mapError(err)
	}

	c.SetTokens(resp.Session.AccessToken, resp.Session.RefreshToken)
	return &resp.Session, nil
}

// Whoami verifies the cached access token, refreshing it once when it has
// expired.
func (c *GRPCClient) Whoami(ctx context.Context) (*api.Session, error) {
	access, refresh := c.tokens()
	resp, err := c.client.VerifyToken(ctx, &api.VerifyTokenRequest{AccessToken: access})
	if err != nil && api.IsTokenExpired(err) && refresh != "" {
		if rerr := c.refresh(ctx); rerr != nil {
			return nil, rerr
		}
		access, _ = c.tokens()
		resp, err = c.client.VerifyToken(ctx, &api.VerifyTokenRequest{AccessToken: access})
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.Session, nil
}

// ReportCrash uploads r in one call, or in chunks sharing a request ID when
// the content exceeds the chunk size.
func (c *GRPCClient) ReportCrash(ctx context.Context, r CrashUpload) (*api.CrashReportResponse, error) {
	req := &api.CrashReportRequest{
		Username:         r.Username,
		FileName:         r.FileName,
		GameVersion:      r.GameVersion,
		ModLoaderVersion: r.ModLoaderVersion,
	}

	if len(r.Content) <= c.chunkSize {
		req.Content = r.Content
		resp, err := c.client.CrashReport(ctx, req)
		if err != nil {
			return nil, mapError(err)
		}
		return resp, nil
	}

	req.IsPart = true
	req.RequestID = uuid.NewString()

	var resp *api.CrashReportResponse
	for off := 0; off < len(r.Content); off += c.chunkSize {
		end := min(off+c.chunkSize, len(r.Content))
		part := *req
		part.Content = r.Content[off:end]
		part.IsLastPart = end == len(r.Content)

		var err error
		resp, err = c.client.CrashReport(ctx, &part)
		if err != nil {
			return nil, mapError(err)
		}
	}
	return resp, nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	resp, err := c.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if mapped := api.FromStatus(err); mapped != err {
		return mapped
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded:
			return ErrUnavailable
		}
	}
	return err
}
