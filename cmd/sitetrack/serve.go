package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/buildmind/sitetrack/internal/application/accounts"
	"github.com/buildmind/sitetrack/internal/application/collab"
	"github.com/buildmind/sitetrack/internal/application/inbox"
	"github.com/buildmind/sitetrack/internal/application/tracking"
	"github.com/buildmind/sitetrack/internal/infrastructure/auth"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/internal/infrastructure/storage/minio"
	httpserver "github.com/buildmind/sitetrack/internal/interfaces/http"
	"github.com/buildmind/sitetrack/internal/interfaces/http/handlers"
	"github.com/buildmind/sitetrack/internal/scheduler"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server with the in-process dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
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

	logger.Info("starting sitetrack api server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
	)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := minio.Connect(ctx, cfg.MinIO, logger)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenManager(cfg.Auth)
	scopes := tracking.NewScopeResolver(a.projects, a.cache)
	filters := tracking.NewFilterBuilder(a.classifier)

	taskSvc := tracking.NewTaskService(a.tasks, scopes, filters, a.classifier, a.comparator, a.publisher, a.ledger, a.channels, logger)
	issueSvc := tracking.NewIssueService(a.issues, scopes, filters, a.classifier, a.comparator, a.publisher, a.ledger, a.channels, logger)
	projectSvc := collab.NewProjectService(a.projects, a.permissions, scopes, logger)
	calendarSvc := collab.NewCalendarService(a.calendar, scopes, logger)
	documentSvc := collab.NewDocumentService(a.documents, store, scopes, cfg.MinIO.PresignExpiry, logger)
	accountSvc := accounts.NewService(a.users, tokens, logger)
	inboxSvc := inbox.NewService(a.notifications, logger)

	router := httpserver.NewRouter(cfg.Server, httpserver.RouterDeps{
		Tokens:  tokens,
		Metrics: a.metrics,
		Logger:  logger,

		Auth:      handlers.NewAuthHandler(accountSvc),
		Tasks:     handlers.NewTaskHandler(taskSvc),
		Issues:    handlers.NewIssueHandler(issueSvc),
		Projects:  handlers.NewProjectHandler(projectSvc),
		Calendar:  handlers.NewCalendarHandler(calendarSvc),
		Documents: handlers.NewDocumentHandler(documentSvc),
		Inbox:     handlers.NewInboxHandler(inboxSvc),
		Users:     handlers.NewUserHandler(accountSvc),
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres": handlers.PingFunc(a.pool.Ping),
			"redis":    handlers.PingFunc(a.cache.Ping),
		}),
	})

	sched := scheduler.New(logger)
	if err := scheduleSweeps(sched, a); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv := httpserver.NewServer(cfg.Server, router, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("http shutdown failed", logging.Err(err))
	}
	return <-errCh
}

// scheduleSweeps registers the three dispatcher sweeps on their configured
// intervals.
func scheduleSweeps(sched *scheduler.Scheduler, a *app) error {
	d := a.cfg.Dispatch
	if err := sched.ScheduleInterval("overdue_sweep", d.OverdueInterval, a.dispatcher.OverdueSweep); err != nil {
		return err
	}
	if err := sched.ScheduleInterval("upcoming_sweep", d.UpcomingInterval, a.dispatcher.UpcomingSweep); err != nil {
		return err
	}
	return sched.ScheduleInterval("reminder_sweep", d.ReminderInterval, a.dispatcher.ReminderSweep)
}
