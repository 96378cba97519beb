package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"marketplace-admin/internal/apiclient"
	"marketplace-admin/internal/config"
	"marketplace-admin/internal/logging"
	"marketplace-admin/internal/repository/sqlite"
)

// app carries what every command needs once the root pre-run has finished.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configFile string
	asJSON     bool

	cfg    config.Config
	logger *logrus.Logger
	db     *sql.DB
	client *apiclient.Client
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	defer a.close()
	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "adminctl",
		Short:         "Operate the marketplace admin API from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./config.yaml or ~/.adminctl/config.yaml)")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print JSON instead of tables")

	root.AddCommand(
		loginCmd(a), logoutCmd(a), whoamiCmd(a),
		forgotPasswordCmd(a), resetPasswordCmd(a),
		usersCmd(a), jobsCmd(a), categoriesCmd(a), locationsCmd(a), transactionsCmd(a),
		overviewCmd(a), exportCmd(a),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, a.errOut)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(cfg.Session.Path)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	sessions := sqlite.NewSessionRepository(db)
	if err := sessions.Init(ctx); err != nil {
		db.Close()
		return fmt.Errorf("init session store: %w", err)
	}

	client, err := apiclient.New(apiclient.Options{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout,
		RefreshTimeout: cfg.API.RefreshTimeout,
		Sessions:       sessions,
		Logger:         logger,
		OnSessionExpired: func() {
			fmt.Fprintln(a.errOut, "session expired, run `adminctl login` to sign in again")
		},
	})
	if err != nil {
		db.Close()
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.db = db
	a.client = client
	return nil
}

// close releases the session store; safe to call when setup never ran.
func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
