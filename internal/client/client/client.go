package client

import (
	"context"

	"github.com/dmitrijs2005/launchserver/internal/api"
)

// Credentials identify a user for a password login. TOTP is optional.
type Credentials struct {
	Login    string
	Password string
	TOTP     string
}

// CrashUpload is a crash log to submit. Username is only sent when the
// client holds no session.
type CrashUpload struct {
	Username         string
	FileName         string
	Content          []byte
	GameVersion      string
	ModLoaderVersion string
}

type Client interface {
	Close() error
	Login(ctx context.Context, c Credentials) (*api.Session, error)
	Whoami(ctx context.Context) (*api.Session, error)
	ReportCrash(ctx context.Context, r CrashUpload) (*api.CrashReportResponse, error)
	Ping(ctx context.Context) error
	SetTokens(access, refresh string)
}
