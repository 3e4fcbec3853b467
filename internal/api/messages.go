package api

import "github.com/dmitrijs2005/launchserver/internal/server/models"

// Proof kinds.
const (
	ProofPlain     = "plain"
	ProofTwoFactor = "2fa"
	ProofTOTP      = "totp"
	ProofToken     = "token"
)

// Proof is the wire form of a password proof. Type selects which fields
// are read.
type Proof struct {
	Type     string `json:"type"`
	Password string `json:"password,omitempty"`
	Code     string `json:"code,omitempty"`
	Token    string `json:"token,omitempty"`
}

type AuthorizeRequest struct {
	Login      string `json:"login"`
	Proof      Proof  `json:"proof"`
	Client     string `json:"client,omitempty"`
	GameAccess bool   `json:"gameAccess,omitempty"`
}

// Session describes an issued or verified session.
type Session struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	UUID         string   `json:"uuid"`
	Roles        []string `json:"roles,omitempty"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	GameToken    string   `json:"gameToken,omitempty"`
	// ExpiresIn is in seconds. Zero means the session does not expire.
	ExpiresIn int64 `json:"expiresIn"`
}

type AuthorizeResponse struct {
	Session Session `json:"session"`
}

type VerifyTokenRequest struct {
	AccessToken string `json:"accessToken"`
}

type VerifyTokenResponse struct {
	Session Session `json:"session"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
	Client       string `json:"client,omitempty"`
}

// RefreshTokenResponse carries no session when the server cannot refresh.
// The client then logs in with a password again.
type RefreshTokenResponse struct {
	Session *Session `json:"session,omitempty"`
}

type HardwareReportRequest struct {
	PublicKey []byte              `json:"publicKey"`
	Info      models.HardwareInfo `json:"info"`
}

type HardwareReportResponse struct {
	HardwareID int64 `json:"hardwareId"`
}

type CrashReportRequest struct {
	// Username is used only when the call carries no access token.
	Username         string `json:"username,omitempty"`
	FileName         string `json:"fileName"`
	Content          []byte `json:"content"`
	GameVersion      string `json:"gameVersion,omitempty"`
	ModLoaderVersion string `json:"modLoaderVersion,omitempty"`
	IsPart           bool   `json:"isPart,omitempty"`
	IsLastPart       bool   `json:"isLastPart,omitempty"`
	RequestID        string `json:"requestId,omitempty"`
}

type CrashReportResponse struct {
	Pending bool   `json:"pending"`
	Path    string `json:"path,omitempty"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
