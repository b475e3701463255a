package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/taskup/internal/actor"
	"github.com/alexanderramin/taskup/internal/app"
	"github.com/alexanderramin/taskup/internal/config"
	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/logging"
	"github.com/alexanderramin/taskup/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App holds what CLI commands need. Services is nil until the root
// command's pre-run loads config and opens the database; tests set it
// directly.
type App struct {
	*app.Services

	Config *config.Config
	Logger *zap.Logger

	// IsInteractive reports whether stdin is a terminal. Interactive forms
	// and the dashboard refuse to start when it returns false.
	IsInteractive func() bool

	db      *sql.DB
	cfgPath string
	as      string
}

// NewRootCmd creates the top-level "taskup" command and registers all
// subcommands against the provided App.
func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskup",
		Short:         "Projects, stakeholders, risks and tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.bootstrap(cmd); err != nil {
				return err
			}
			ctx, err := a.actorContext(cmd.Context())
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "Config file (default ./taskup.toml, then ~/.taskup/taskup.toml)")
	pf.String(config.FlagDB, "", "SQLite database path")
	pf.String(config.FlagScale, "", "Risk severity scale (detail, edit)")
	pf.StringVar(&a.as, "as", "", "Act as this user (email or ID); omitted runs unrestricted")
	pf.BoolP(config.FlagVerbose, "v", false, "Debug logging to stderr")

	root.AddCommand(
		newServeCmd(a),
		newUserCmd(a),
		newProjectCmd(a),
		newStakeholderCmd(a),
		newRiskCmd(a),
		newTaskCmd(a),
		newResourceCmd(a),
		newWorkPackageCmd(a),
		newTeamCmd(a),
		newScopeCmd(a),
		newImportCmd(a),
		newDashboardCmd(a),
	)
	return root
}

// bootstrap loads configuration, builds the logger and wires services. It
// is a no-op for everything already set.
func (a *App) bootstrap(cmd *cobra.Command) error {
	if a.Config == nil {
		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
			return err
		}
		a.Config = cfg
	}
	if a.Logger == nil {
		logCfg := a.Config.Log
		// One-shot commands stay quiet unless a level was chosen.
		if cmd.Name() != "serve" && a.Config.Sources["log.level"] == config.SourceDefault {
			logCfg.Level = "warn"
		}
		logger, err := logging.New(logCfg)
		if err != nil {
			return err
		}
		a.Logger = logger
	}
	if a.IsInteractive == nil {
		a.IsInteractive = func() bool { return false }
	}
	if a.Services != nil {
		return nil
	}
	database, err := db.OpenDB(a.Config.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.db = database
	a.Services = app.New(database, a.Config.Scale(), a.observers()...)
	return nil
}

// observers returns the use-case observers for this process. Serve adds
// the metrics recorder on top.
func (a *App) observers() []service.UseCaseObserver {
	return []service.UseCaseObserver{service.NewZapUseCaseObserver(a.Logger)}
}

// actorContext attaches the --as user, or the system actor when the flag
// is absent.
func (a *App) actorContext(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if a.as == "" {
		return actor.AsSystem(ctx), nil
	}
	u, err := resolveUser(ctx, a, a.as)
	if err != nil {
		return nil, fmt.Errorf("--as %q: %w", a.as, err)
	}
	return actor.WithUserID(ctx, u.ID), nil
}

// Close releases the database and flushes the logger.
func (a *App) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
		a.db = nil
	}
	if a.Logger != nil {
		// Sync fails on terminals (EINVAL/ENOTTY); nothing is lost.
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
