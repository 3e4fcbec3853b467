package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/launchserver/internal/server/config"
	"github.com/dmitrijs2005/launchserver/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/launchserver/internal/server/store"
)

var ErrNoDSN = errors.New("database DSN is required (--dsn or " + config.EnvPrefix + "DATABASE_DSN)")

// openStore is a seam for tests.
var openStore = func(ctx context.Context, dsn string, timeout time.Duration) (store.Store, func() error, error) {
	return store.Open(ctx, dsn, timeout, repomanager.NewPostgresRepositoryManager())
}

type options struct {
	dsn     string
	timeout time.Duration
}

// Execute runs the admin command line in args.
func Execute(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)
	return root.ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:          "launchadmin",
		Short:        "Launch server administration",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&o.dsn, "dsn", os.Getenv(config.EnvPrefix+"DATABASE_DSN"), "PostgreSQL connection string")
	root.PersistentFlags().DurationVar(&o.timeout, "timeout", 5*time.Second, "store operation timeout")

	root.AddCommand(newMigrateCommand(o), newUserCommand(o), newHardwareCommand(o))
	return root
}

// withStore opens the store, runs fn and closes it again.
func (o *options) withStore(ctx context.Context, fn func(store.Store) error) error {
	if o.dsn == "" {
		return ErrNoDSN
	}
	st, closeDB, err := openStore(ctx, o.dsn, o.timeout)
	if err != nil {
		return err
	}
	defer closeDB()
	return fn(st)
}

func newMigrateCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withStore(cmd.Context(), func(store.Store) error {
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			})
		},
	}
}

func parseHardwareID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid hardware id %q", s)
	}
	return id, nil
}
