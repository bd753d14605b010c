package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
)

// newSweepCmd runs a single dispatch sweep and exits. With no argument it
// runs every sweep once, which makes it interchangeable with `dispatch
// --once` but easier to wire into per-sweep cron schedules.
func newSweepCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "sweep [overdue|upcoming|reminder]",
		Short:     "Run a notification sweep once and exit",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"overdue", "upcoming", "reminder"},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runSweep(cmd.Context(), *configPath, name)
		},
	}
}

func runSweep(ctx context.Context, configPath, name string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	sweeps := map[string]func(context.Context) error{
		"overdue":  a.dispatcher.OverdueSweep,
		"upcoming": a.dispatcher.UpcomingSweep,
		"reminder": a.dispatcher.ReminderSweep,
	}

	if name != "" {
		sweep, ok := sweeps[name]
		if !ok {
			known := make([]string, 0, len(sweeps))
			for k := range sweeps {
				known = append(known, k)
			}
			sort.Strings(known)
			return fmt.Errorf("unknown sweep %q, expected one of: %s", name, strings.Join(known, ", "))
		}
		logger.Info("running sweep", logging.String("sweep", name))
		return sweep(ctx)
	}

	var failed []string
	for n, sweep := range sweeps {
		logger.Info("running sweep", logging.String("sweep", n))
		if err := sweep(ctx); err != nil {
			logger.Error("sweep failed", logging.String("sweep", n), logging.Err(err))
			failed = append(failed, n)
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return fmt.Errorf("sweeps failed: %s", strings.Join(failed, ", "))
	}
	return nil
}
