package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/internal/scheduler"
)

// newDispatchCmd runs the notification dispatcher as a standalone worker,
// for deployments that keep sweeps out of the API process. --once runs each
// sweep a single time and exits, which is what the ops cron jobs use.
func newDispatchCmd(configPath *string) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Run the notification dispatcher worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(cmd.Context(), *configPath, once)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run each sweep once and exit")
	return cmd
}

func runDispatch(ctx context.Context, configPath string, once bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	logger.Info("starting sitetrack dispatcher", logging.String("version", version))

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if once {
		for name, sweep := range map[string]func(context.Context) error{
			"overdue_sweep":  a.dispatcher.OverdueSweep,
			"upcoming_sweep": a.dispatcher.UpcomingSweep,
			"reminder_sweep": a.dispatcher.ReminderSweep,
		} {
			if err := sweep(ctx); err != nil {
				logger.Error("sweep failed", logging.String("sweep", name), logging.Err(err))
			}
		}
		return nil
	}

	sched := scheduler.New(logger)
	if err := scheduleSweeps(sched, a); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}
