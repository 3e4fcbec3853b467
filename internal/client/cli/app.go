package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/client/client"
	"github.com/dmitrijs2005/launchserver/internal/client/config"
	"github.com/dmitrijs2005/launchserver/internal/client/tokens"
	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/netx"
)

type App struct {
	config   *config.Config
	client   client.Client
	cache    *tokens.Cache
	db       *sql.DB
	out      io.Writer
	username string
	access   string
}

// openApp and uploadHTTP are seams for tests.
var (
	openApp    = NewApp
	uploadHTTP = netx.UploadCrashReport
)

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	app := &App{config: c, cache: tokens.NewCache(db), db: db, out: os.Stdout}
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr,
		client.WithChunkSize(c.ChunkSize),
		client.WithOnRefresh(app.saveRefreshed),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.client = apiClient
	return app, nil
}

func (a *App) Close() error {
	var errs []error
	if a.client != nil {
		errs = append(errs, a.client.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// loadSession hands the cached tokens to the client.
func (a *App) loadSession(ctx context.Context) error {
	t, err := a.cache.Load(ctx)
	if err != nil {
		return err
	}
	a.username, a.access = t.Username, t.AccessToken
	a.client.SetTokens(t.AccessToken, t.RefreshToken)
	return nil
}

func (a *App) saveRefreshed(access, refresh string) {
	a.access = access
	if a.username == "" {
		return
	}
	err := a.cache.Save(context.Background(), tokens.Tokens{Username: a.username, AccessToken: access, RefreshToken: refresh})
	if err != nil {
		fmt.Fprintf(a.out, "warning: refreshed session not saved: %v\n", err)
	}
}

func (a *App) login(ctx context.Context, username, totp string) error {
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	s, err := a.client.Login(ctx, client.Credentials{Login: username, Password: string(password), TOTP: totp})
	if err != nil {
		if errors.Is(err, common.ErrNeedsTwoFactor) {
			return fmt.Errorf("%w, pass it with --totp", err)
		}
		return err
	}

	a.username = s.Username
	if err := a.cache.Save(ctx, tokens.Tokens{Username: s.Username, AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", s.Username)
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	if err := a.loadSession(ctx); err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	s, err := a.client.Whoami(ctx)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) || errors.Is(err, client.ErrNoSession) {
			return fmt.Errorf("session expired, log in again: %w", err)
		}
		return err
	}

	fmt.Fprintf(a.out, "Username: %s\n", s.Username)
	fmt.Fprintf(a.out, "UUID:     %s\n", s.UUID)
	if len(s.Roles) > 0 {
		fmt.Fprintf(a.out, "Roles:    %s\n", strings.Join(s.Roles, ", "))
	}
	if s.ExpiresIn > 0 {
		fmt.Fprintf(a.out, "Expires:  in %s\n", time.Duration(s.ExpiresIn)*time.Second)
	}
	return nil
}

type reportOptions struct {
	// httpURL switches the upload to the web API at this base URL.
	httpURL          string
	username         string
	gameVersion      string
	modLoaderVersion string
}

func (a *App) report(ctx context.Context, path string, o reportOptions) error {
	err := a.loadSession(ctx)
	if err != nil && !errors.Is(err, tokens.ErrNoSession) {
		return err
	}
	if err != nil && o.username == "" {
		return errors.New("not logged in, log in or pass --user")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if o.httpURL != "" {
		stored, err := uploadHTTP(ctx, nil, o.httpURL, a.access, netx.CrashReport{
			Username: o.username,
			FileName: filepath.Base(path),
			Content:  string(content),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Report stored as %s\n", stored)
		return nil
	}

	resp, err := a.client.ReportCrash(ctx, client.CrashUpload{
		Username:         o.username,
		FileName:         filepath.Base(path),
		Content:          content,
		GameVersion:      o.gameVersion,
		ModLoaderVersion: o.modLoaderVersion,
	})
	if err != nil {
		return err
	}

	if resp.Pending {
		fmt.Fprintln(a.out, "Report accepted, waiting for remaining parts")
		return nil
	}
	fmt.Fprintf(a.out, "Report stored as %s\n", resp.Path)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.cache.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) ping(ctx context.Context) error {
	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}
