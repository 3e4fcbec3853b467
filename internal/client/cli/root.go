package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/launchserver/internal/client/config"
)

// Execute runs the command line in args against cfg.
func Execute(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	var app *App
	defer func() {
		if app != nil {
			_ = app.Close()
		}
	}()

	root := newRootCommand(cfg, &app)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	return root.ExecuteContext(ctx)
}

func newRootCommand(cfg *config.Config, app **App) *cobra.Command {
	root := &cobra.Command{
		Use:          "launcher",
		Short:        "Launch server command line client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			a.out = cmd.OutOrStdout()
			*app = a
			return nil
		},
	}
	cfg.BindFlags(root.PersistentFlags())

	var totp string
	login := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in with a password and cache the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return (*app).login(cmd.Context(), args[0], totp)
		},
	}
	login.Flags().StringVar(&totp, "totp", "", "one-time code when two-factor auth is enabled")

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the cached session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return (*app).whoami(cmd.Context())
		},
	}

	var ro reportOptions
	report := &cobra.Command{
		Use:   "report <file>",
		Short: "Upload a crash log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return (*app).report(cmd.Context(), args[0], ro)
		},
	}
	report.Flags().StringVar(&ro.httpURL, "http", "", "upload through the web API at this base URL instead of gRPC")
	report.Flags().StringVar(&ro.username, "user", "", "submitter name when not logged in")
	report.Flags().StringVar(&ro.gameVersion, "game-version", "", "game version")
	report.Flags().StringVar(&ro.modLoaderVersion, "mod-loader", "", "mod loader version")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return (*app).logout(cmd.Context())
		},
	}

	ping := &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return (*app).ping(cmd.Context())
		},
	}

	root.AddCommand(login, whoami, report, logout, ping)
	return root
}
