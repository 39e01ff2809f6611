// Package app wires configuration, storage and services into a runnable
// application. Both the HTTP server and the admin CLI start from here.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/b2world/ems-backend/internal/api"
	"github.com/b2world/ems-backend/internal/api/handler"
	"github.com/b2world/ems-backend/internal/core/calendar"
	"github.com/b2world/ems-backend/internal/core/ports"
	"github.com/b2world/ems-backend/internal/core/service"
	mongodb "github.com/b2world/ems-backend/internal/infrastructure/db/mongo"
	redisdb "github.com/b2world/ems-backend/internal/infrastructure/db/redis"
	"github.com/b2world/ems-backend/internal/infrastructure/delivery/email"
	"github.com/b2world/ems-backend/internal/infrastructure/delivery/llm"
	"github.com/b2world/ems-backend/internal/infrastructure/delivery/pdf"
	"github.com/b2world/ems-backend/internal/infrastructure/delivery/sms"
	"github.com/b2world/ems-backend/internal/infrastructure/queue"
	"github.com/b2world/ems-backend/internal/pkg/config"
	"github.com/b2world/ems-backend/internal/pkg/token"
)

// App holds the live connections and the service layer.
type App struct {
	Config   *config.Config
	Location *time.Location
	Tokens   *token.Manager
	Services api.Services
	Payroll  *service.PayrollService
	Users    *service.UserService
	Queue    *queue.Dispatcher

	mongo *mongo.Client
	db    *mongo.Database
	redis *goredis.Client
	log   zerolog.Logger
}

// New connects to MongoDB and Redis, ensures indexes and builds every
// service. The returned App must be closed.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	loc, err := cfg.Org.Location()
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("app: %w", err)
	}
	log.Info().Int("db", cfg.Redis.DB).Msg("connected to redis")

	a := &App{Config: cfg, Location: loc, mongo: client, db: db, redis: rdb, log: log}
	if err := a.build(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg, log := a.Config, a.log

	users := mongodb.NewUserRepository(a.db)
	attendance := mongodb.NewAttendanceRepository(a.db)
	payrolls := mongodb.NewPayrollRepository(a.db)
	leaves := mongodb.NewLeaveRepository(a.db)
	tasks := mongodb.NewTaskRepository(a.db)
	trainings := mongodb.NewTrainingRepository(a.db)
	offboarding := mongodb.NewOffboardingRepository(a.db)
	notifications := mongodb.NewNotificationRepository(a.db)
	chats := mongodb.NewChatRepository(a.db)

	if err := mongodb.EnsureIndexes(ctx,
		users, attendance, payrolls, leaves, tasks, trainings, offboarding, notifications, chats,
	); err != nil {
		return fmt.Errorf("app: %w", err)
	}

	holidays := calendar.DefaultTable()
	if cfg.Payroll.HolidaysFile != "" {
		t, err := calendar.LoadTable(cfg.Payroll.HolidaysFile)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		holidays = t
	}

	a.Tokens = token.NewManager(token.Config{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
	})

	a.Queue = queue.NewDispatcher(0, a.mailer(), sms.NewLogSender(log), log)
	renderer := pdf.NewRenderer(cfg.Org.Name)

	notifier := service.NewNotificationService(notifications, users, a.Queue, log)
	a.Users = service.NewUserService(users, log)
	a.Payroll = service.NewPayrollService(users, attendance, payrolls, holidays, renderer, service.PayrollPolicy{
		DefaultBaseSalary: cfg.Payroll.BaseSalary,
		TaxRate:           cfg.Payroll.TaxRate,
		ProvidentFundRate: cfg.Payroll.PFRate,
		Concurrency:       cfg.Payroll.Concurrency,
	}, log).
		WithRunLock(redisdb.NewRunLock(a.redis, 0)).
		WithNotifier(notifier)

	a.Services = api.Services{
		Auth:          service.NewAuthService(users, a.Tokens, cfg.Auth.RefreshLimit, log),
		Users:         a.Users,
		Attendance:    service.NewAttendanceService(attendance, a.Location, log),
		Payroll:       a.Payroll,
		Leave:         service.NewLeaveService(leaves, users, notifier, log),
		Tasks:         service.NewTaskService(tasks, users, notifier, log),
		Training:      service.NewTrainingService(trainings, log),
		Offboarding:   service.NewOffboardingService(offboarding, users, renderer, notifier, log),
		Notifications: notifier,
		Chatbot:       service.NewChatbotService(chats, a.llm(), log),
		Analytics:     service.NewAnalyticsService(attendance, leaves, tasks),
	}
	return nil
}

func (a *App) mailer() ports.Mailer {
	c := a.Config.SMTP
	if c.Host == "" {
		a.log.Warn().Msg("SMTP_HOST not set, emails are only logged")
		return email.NewLogMailer(a.log)
	}
	return email.NewSMTPMailer(email.Config{
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		From:     c.From,
		FromName: a.Config.Org.Name,
	}, a.log)
}

func (a *App) llm() ports.LLM {
	c := a.Config.LLM
	if c.APIKey == "" {
		a.log.Warn().Msg("LLM_API_KEY not set, chatbot falls back to canned replies")
		return llm.Canned{}
	}
	return llm.NewOpenAIClient(llm.Config{APIKey: c.APIKey, BaseURL: c.BaseURL, Model: c.Model})
}

// Probes returns the readiness checks of the external dependencies.
func (a *App) Probes() map[string]handler.Probe {
	return map[string]handler.Probe{
		"mongodb": handler.MongoProbe(a.db),
		"redis":   handler.RedisProbe(a.redis),
	}
}

// Close releases the database connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("redis close: %w", err))
	}
	if err := a.mongo.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("mongo disconnect: %w", err))
	}
	return errors.Join(errs...)
}
