package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/server/crashreports"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
)

type contextKey string

const sessionKey contextKey = "session"

type CrashReportRequest struct {
	Username string `json:"username"`
	FileName string `json:"fileName"`
	Content  string `json:"content"`
}

type CrashReportResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errMissingBearer = errors.New("missing authorization")

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errMissingBearer
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", common.ErrTokenExpired
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", common.ErrTokenExpired
	}
	return token, nil
}

// optionalAuth attaches the session of a valid bearer token. Requests
// without one pass through; a bad token is rejected.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if errors.Is(err, errMissingBearer) {
			next.ServeHTTP(w, r)
			return
		}
		if err == nil {
			var session *models.UserSession
			if session, err = s.tokens.VerifyAccessToken(r.Context(), token); err == nil {
				ctx := context.WithValue(r.Context(), sessionKey, session)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}
		writeError(w, err)
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) CrashReport(w http.ResponseWriter, r *http.Request) {
	if s.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	}

	var req CrashReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, common.ErrPayloadTooLarge)
			return
		}
		writeError(w, common.ErrInvalidFormat)
		return
	}

	report := &crashreports.Report{
		Username:     req.Username,
		ClientIP:     clientIP(r),
		FileName:     req.FileName,
		Content:      []byte(req.Content),
		KeepFileName: true,
	}
	if session, ok := r.Context().Value(sessionKey).(*models.UserSession); ok && session != nil {
		report.Username = session.User.Username
		report.Authenticated = true
	}

	res, err := s.reports.Ingest(r.Context(), report)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CrashReportResponse{Status: "ok", Path: res.Path})
}

var httpStatus = map[string]int{
	common.CodeInvalidCredentials:   http.StatusUnauthorized,
	common.CodeTokenExpired:         http.StatusUnauthorized,
	common.CodeNeedsTwoFactor:       http.StatusUnauthorized,
	common.CodeUnsupportedProofType: http.StatusBadRequest,
	common.CodeUserNotFound:         http.StatusNotFound,
	common.CodeProviderUnavailable:  http.StatusServiceUnavailable,
	common.CodeHardwareBanned:       http.StatusForbidden,
	common.CodeAccessDenied:         http.StatusForbidden,
	common.CodeRateLimitExceeded:    http.StatusTooManyRequests,
	common.CodePayloadTooLarge:      http.StatusRequestEntityTooLarge,
	common.CodeInvalidFormat:        http.StatusBadRequest,
	common.CodeStorageFailure:       http.StatusInternalServerError,
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, err error) {
	code := common.Code(err)
	status, ok := httpStatus[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, ErrorResponse{Error: common.FromCode(code).Error(), Code: code})
}
