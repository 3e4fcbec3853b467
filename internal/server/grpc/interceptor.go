package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/launchserver/internal/api"
	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
)

type ctxKey string

const sessionKey ctxKey = "session"

// tokenRequired lists the methods that read the access_token metadata. A
// true value means the call is rejected without one.
var tokenRequired = map[string]bool{
	api.HardwareReportMethod: true,
	api.CrashReportMethod:    false,
}

func accessToken(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	required, ok := tokenRequired[info.FullMethod]
	if !ok {
		return handler(ctx, req)
	}

	token := accessToken(ctx)
	if token == "" {
		if required {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}
		return handler(ctx, req)
	}

	session, err := s.provider.VerifyAccessToken(ctx, token)
	if err != nil {
		s.logger.Debug(ctx, "access token rejected", "method", info.FullMethod, "error", err)
		return nil, api.StatusError(err)
	}
	return handler(context.WithValue(ctx, sessionKey, session), req)
}

func sessionFromContext(ctx context.Context) (*models.UserSession, bool) {
	s, ok := ctx.Value(sessionKey).(*models.UserSession)
	return s, ok && s != nil
}

func peerIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
