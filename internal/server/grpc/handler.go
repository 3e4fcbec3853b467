package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/launchserver/internal/api"
	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/server/crashreports"
	"github.com/dmitrijs2005/launchserver/internal/server/hwid"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
	"github.com/dmitrijs2005/launchserver/internal/server/providers"
)

func proofFromWire(p api.Proof) (providers.PasswordProof, error) {
	switch p.Type {
	case api.ProofPlain, "":
		return providers.PlainPassword{Password: p.Password}, nil
	case api.ProofTwoFactor:
		tf := providers.TwoFactorPassword{First: providers.PlainPassword{Password: p.Password}}
		if p.Code != "" {
			tf.Second = providers.TOTPPassword{Code: p.Code}
		}
		return tf, nil
	case api.ProofTOTP:
		return providers.TOTPPassword{Code: p.Code}, nil
	case api.ProofToken:
		return providers.TokenPassword{Token: p.Token}, nil
	default:
		return nil, common.ErrUnsupportedProofType
	}
}

func (s *GRPCServer) toWire(session *models.UserSession) api.Session {
	out := api.Session{
		ID:           session.ID,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    int64(session.ExpiresIn(s.now()).Seconds()),
	}
	if u := session.User; u != nil {
		out.Username = u.Username
		out.UUID = u.ID.String()
		out.Roles = u.Roles
	}
	return out
}

func (s *GRPCServer) reportToWire(r *providers.AuthReport) api.Session {
	out := s.toWire(r.Session)
	out.AccessToken = r.AccessToken
	out.RefreshToken = r.RefreshToken
	out.GameToken = r.GameToken
	out.ExpiresIn = int64(r.ExpiresIn.Seconds())
	return out
}

func (s *GRPCServer) Authorize(ctx context.Context, req *api.AuthorizeRequest) (*api.AuthorizeResponse, error) {
	proof, err := proofFromWire(req.Proof)
	if err != nil {
		return nil, api.StatusError(err)
	}

	ac := providers.AuthContext{IP: peerIP(ctx), Client: req.Client}
	report, err := s.provider.Authorize(ctx, req.Login, proof, ac, req.GameAccess)
	if err != nil {
		if errors.Is(err, common.ErrProviderUnavailable) {
			s.logger.Error(ctx, "authorization failed", "login", req.Login, "error", err)
		} else {
			s.logger.Info(ctx, "authorization rejected", "login", req.Login, "ip", ac.IP, "code", common.Code(err))
		}
		return nil, api.StatusError(err)
	}

	s.logger.Info(ctx, "authorized", "username", report.Session.User.Username, "ip", ac.IP)
	return &api.AuthorizeResponse{Session: s.reportToWire(report)}, nil
}

func (s *GRPCServer) VerifyToken(ctx context.Context, req *api.VerifyTokenRequest) (*api.VerifyTokenResponse, error) {
	session, err := s.provider.VerifyAccessToken(ctx, req.AccessToken)
	if err != nil {
		return nil, api.StatusError(err)
	}
	return &api.VerifyTokenResponse{Session: s.toWire(session)}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.RefreshTokenResponse, error) {
	ac := providers.AuthContext{IP: peerIP(ctx), Client: req.Client}
	report, err := s.provider.RefreshAccessToken(ctx, req.RefreshToken, ac)
	if err != nil {
		return nil, api.StatusError(err)
	}
	if report == nil {
		return &api.RefreshTokenResponse{}, nil
	}
	session := s.reportToWire(report)
	return &api.RefreshTokenResponse{Session: &session}, nil
}

func (s *GRPCServer) HardwareReport(ctx context.Context, req *api.HardwareReportRequest) (*api.HardwareReportResponse, error) {
	session, ok := sessionFromContext(ctx)
	if !ok {
		return nil, api.StatusError(common.ErrTokenExpired)
	}

	rec, err := s.provider.CheckHardwareAndBind(ctx, session, hwid.Proof{PublicKey: req.PublicKey, Info: req.Info})
	if err != nil {
		s.logger.Warn(ctx, "hardware report rejected", "username", session.User.Username, "code", common.Code(err))
		return nil, api.StatusError(err)
	}
	return &api.HardwareReportResponse{HardwareID: rec.ID}, nil
}

func (s *GRPCServer) CrashReport(ctx context.Context, req *api.CrashReportRequest) (*api.CrashReportResponse, error) {
	r := &crashreports.Report{
		Username:         req.Username,
		ClientIP:         peerIP(ctx),
		FileName:         req.FileName,
		Content:          req.Content,
		GameVersion:      req.GameVersion,
		ModLoaderVersion: req.ModLoaderVersion,
		IsPart:           req.IsPart,
		IsLastPart:       req.IsLastPart,
		RequestID:        req.RequestID,
	}
	if session, ok := sessionFromContext(ctx); ok {
		r.Username = session.User.Username
		r.Authenticated = true
	}

	res, err := s.reports.Ingest(ctx, r)
	if err != nil {
		return nil, api.StatusError(err)
	}
	return &api.CrashReportResponse{Pending: res.Pending, Path: res.Path}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}
