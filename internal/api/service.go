package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "launcher.LaunchService"

const (
	AuthorizeMethod      = "/" + ServiceName + "/Authorize"
	VerifyTokenMethod    = "/" + ServiceName + "/VerifyToken"
	RefreshTokenMethod   = "/" + ServiceName + "/RefreshToken"
	HardwareReportMethod = "/" + ServiceName + "/HardwareReport"
	CrashReportMethod    = "/" + ServiceName + "/CrashReport"
	PingMethod           = "/" + ServiceName + "/Ping"
)

type LaunchServiceServer interface {
	Authorize(context.Context, *AuthorizeRequest) (*AuthorizeResponse, error)
	VerifyToken(context.Context, *VerifyTokenRequest) (*VerifyTokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	HardwareReport(context.Context, *HardwareReportRequest) (*HardwareReportResponse, error)
	CrashReport(context.Context, *CrashReportRequest) (*CrashReportResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// UnimplementedLaunchServiceServer answers Unimplemented to every call. Embed
// it to stay forward compatible.
type UnimplementedLaunchServiceServer struct{}

func (UnimplementedLaunchServiceServer) Authorize(context.Context, *AuthorizeRequest) (*AuthorizeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Authorize not implemented")
}
func (UnimplementedLaunchServiceServer) VerifyToken(context.Context, *VerifyTokenRequest) (*VerifyTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method VerifyToken not implemented")
}
func (UnimplementedLaunchServiceServer) RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedLaunchServiceServer) HardwareReport(context.Context, *HardwareReportRequest) (*HardwareReportResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method HardwareReport not implemented")
}
func (UnimplementedLaunchServiceServer) CrashReport(context.Context, *CrashReportRequest) (*CrashReportResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CrashReport not implemented")
}
func (UnimplementedLaunchServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func unaryHandler[Req, Resp any](fullMethod string, call func(LaunchServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LaunchServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LaunchServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var LaunchServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LaunchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Authorize", Handler: unaryHandler(AuthorizeMethod, LaunchServiceServer.Authorize)},
		{MethodName: "VerifyToken", Handler: unaryHandler(VerifyTokenMethod, LaunchServiceServer.VerifyToken)},
		{MethodName: "RefreshToken", Handler: unaryHandler(RefreshTokenMethod, LaunchServiceServer.RefreshToken)},
		{MethodName: "HardwareReport", Handler: unaryHandler(HardwareReportMethod, LaunchServiceServer.HardwareReport)},
		{MethodName: "CrashReport", Handler: unaryHandler(CrashReportMethod, LaunchServiceServer.CrashReport)},
		{MethodName: "Ping", Handler: unaryHandler(PingMethod, LaunchServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "launcher.proto",
}

func RegisterLaunchServiceServer(s grpc.ServiceRegistrar, srv LaunchServiceServer) {
	s.RegisterService(&LaunchServiceDesc, srv)
}

type LaunchServiceClient interface {
	Authorize(ctx context.Context, in *AuthorizeRequest, opts ...grpc.CallOption) (*AuthorizeResponse, error)
	VerifyToken(ctx context.Context, in *VerifyTokenRequest, opts ...grpc.CallOption) (*VerifyTokenResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error)
	HardwareReport(ctx context.Context, in *HardwareReportRequest, opts ...grpc.CallOption) (*HardwareReportResponse, error)
	CrashReport(ctx context.Context, in *CrashReportRequest, opts ...grpc.CallOption) (*CrashReportResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
}

type launchServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLaunchServiceClient returns a stub over cc. Every call is sent with
// the JSON content subtype.
func NewLaunchServiceClient(cc grpc.ClientConnInterface) LaunchServiceClient {
	return &launchServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *launchServiceClient) Authorize(ctx context.Context, in *AuthorizeRequest, opts ...grpc.CallOption) (*AuthorizeResponse, error) {
	return invoke[AuthorizeResponse](ctx, c.cc, AuthorizeMethod, in, opts)
}

func (c *launchServiceClient) VerifyToken(ctx context.Context, in *VerifyTokenRequest, opts ...grpc.CallOption) (*VerifyTokenResponse, error) {
	return invoke[VerifyTokenResponse](ctx, c.cc, VerifyTokenMethod, in, opts)
}

func (c *launchServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c.cc, RefreshTokenMethod, in, opts)
}

func (c *launchServiceClient) HardwareReport(ctx context.Context, in *HardwareReportRequest, opts ...grpc.CallOption) (*HardwareReportResponse, error) {
	return invoke[HardwareReportResponse](ctx, c.cc, HardwareReportMethod, in, opts)
}

func (c *launchServiceClient) CrashReport(ctx context.Context, in *CrashReportRequest, opts ...grpc.CallOption) (*CrashReportResponse, error) {
	return invoke[CrashReportResponse](ctx, c.cc, CrashReportMethod, in, opts)
}

func (c *launchServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, PingMethod, in, opts)
}
