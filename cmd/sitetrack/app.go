package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/buildmind/sitetrack/internal/application/dispatch"
	"github.com/buildmind/sitetrack/internal/config"
	"github.com/buildmind/sitetrack/internal/domain/notification"
	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/internal/infrastructure/cache"
	"github.com/buildmind/sitetrack/internal/infrastructure/database/postgres"
	"github.com/buildmind/sitetrack/internal/infrastructure/database/postgres/repositories"
	"github.com/buildmind/sitetrack/internal/infrastructure/mailer"
	"github.com/buildmind/sitetrack/internal/infrastructure/messaging/kafka"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/prometheus"
)

// app holds the infrastructure and core collaborators shared by the serve
// and dispatch commands. Close releases everything in reverse order.
type app struct {
	cfg    *config.Config
	logger logging.Logger

	pool     *pgxpool.Pool
	redis    *redis.Client
	cache    *cache.Cache
	ledger   *cache.RedisLedger
	producer *kafka.Producer

	publisher kafka.EventPublisher
	metrics   *prometheus.Metrics

	users         *repositories.UserRepository
	projects      *repositories.ProjectRepository
	tasks         *repositories.TaskRepository
	issues        *repositories.IssueRepository
	notifications *repositories.NotificationRepository
	calendar      *repositories.CalendarRepository
	documents     *repositories.DocumentRepository
	permissions   *repositories.PermissionRepository

	classifier schedule.Classifier
	comparator schedule.Comparator
	channels   []notification.Channel
	dispatcher *dispatch.Dispatcher
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	a.pool = pool

	if cfg.Database.MigrationPath != "" {
		if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationPath); err != nil {
			a.Close()
			return nil, err
		}
	}

	client, err := cache.Connect(ctx, cfg.Redis, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.redis = client
	a.cache = cache.New(client, cfg.Redis.KeyPrefix, cfg.Redis.DefaultTTL, logger)
	a.ledger = cache.NewRedisLedger(client, cfg.Redis.KeyPrefix, logger)

	if cfg.Kafka.Enabled {
		a.producer = kafka.NewProducer(cfg.Kafka, logger)
		a.publisher = kafka.NewAsyncPublisher(a.producer, logger)
	} else {
		a.publisher = kafka.NopPublisher{}
	}

	a.metrics = prometheus.New()

	a.users = repositories.NewUserRepository(pool, logger)
	a.projects = repositories.NewProjectRepository(pool, logger)
	a.tasks = repositories.NewTaskRepository(pool, logger)
	a.issues = repositories.NewIssueRepository(pool, logger)
	a.notifications = repositories.NewNotificationRepository(pool, logger)
	a.calendar = repositories.NewCalendarRepository(pool, logger)
	a.documents = repositories.NewDocumentRepository(pool, logger)
	a.permissions = repositories.NewPermissionRepository(pool, logger)

	a.classifier = cfg.Classifier()
	a.comparator = cfg.Comparator()

	a.channels = []notification.Channel{mailer.NewInAppChannel(a.notifications, logger)}
	if cfg.SMTP.Enabled {
		a.channels = append(a.channels, mailer.NewEmailChannel(cfg.SMTP, a.users, logger))
	}

	a.dispatcher = dispatch.New(
		a.tasks, a.issues, a.calendar,
		a.ledger, a.channels, a.classifier,
		dispatch.Options{
			TaskUpcomingWindow:     cfg.Dispatch.TaskUpcomingWindow,
			IssueWarningWindowDays: cfg.Dispatch.IssueWarningWindowDays,
			StrictTransitions:      cfg.Dispatch.StrictTransitions,
		},
		a.metrics, logger,
	)

	return a, nil
}

// Close releases held connections. Safe to call on a partially-built app.
func (a *app) Close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka producer close failed", logging.Err(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close failed", logging.Err(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
