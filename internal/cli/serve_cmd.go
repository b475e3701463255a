package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/taskup/internal/app"
	"github.com/alexanderramin/taskup/internal/config"
	"github.com/alexanderramin/taskup/internal/telemetry"
	"github.com/alexanderramin/taskup/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rec, err := telemetry.New(ctx, a.Config.Telemetry)
			switch {
			case errors.Is(err, telemetry.ErrDisabled):
				a.Logger.Debug("telemetry disabled")
			case err != nil:
				return err
			default:
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := rec.Close(shutdownCtx); err != nil {
						a.Logger.Warn("telemetry shutdown", zap.Error(err))
					}
				}()
				if a.db != nil {
					a.Services = app.New(a.db, a.Config.Scale(), append(a.observers(), rec)...)
				}
				a.Logger.Info("telemetry enabled", zap.String("endpoint", a.Config.Telemetry.Endpoint))
			}

			srv := web.NewServer(a.Services, a.Logger, a.Config.Server.Addr, a.Config.Server.ShutdownTimeout)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().String(config.FlagAddr, "", "Listen address (default "+config.DefaultAddr+")")
	return cmd
}
