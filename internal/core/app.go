package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/DevN0mad/JiraReportBot/internal/config"
	"github.com/DevN0mad/JiraReportBot/internal/server"
	"github.com/DevN0mad/JiraReportBot/internal/services"
	"github.com/DevN0mad/JiraReportBot/internal/storage"
)

// App представляет основное приложение, управляющее сервисами.
type App struct {
	logger  *slog.Logger
	rootCtx context.Context

	mu             sync.Mutex
	jira           *services.JiraService
	reports        *services.ReportService
	monthlyJob     *services.MonthlyJobService
	tg             *services.TelegramBotService
	adminSrv       *server.AdminServer
	servicesCancel context.CancelFunc
}

// NewApp создает новый экземпляр приложения с заданным логгером и корневым контекстом.
func NewApp(ctx context.Context, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &App{
		logger:  logger,
		rootCtx: ctx,
	}
}

// ApplyConfig применяет конфигурацию к приложению, инициализируя/переинициализируя сервисы.
func (a *App) ApplyConfig(cfg config.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.servicesCancel != nil {
		a.logger.Info("Stopping previous services")
		a.servicesCancel()
		a.servicesCancel = nil
	}

	ctx, cancel := context.WithCancel(a.rootCtx)

	jira := services.NewJiraService(cfg.Jira, a.logger)

	objects, err := storage.NewObjectStore(cfg.ObjectStorage, a.logger)
	if err != nil {
		cancel()
		return fmt.Errorf("init object storage: %w", err)
	}

	runs, err := storage.NewRunStore(cfg.History, a.logger)
	if err != nil {
		cancel()
		return fmt.Errorf("init run history: %w", err)
	}

	reports, err := services.NewReportService(jira, objects, runs, cfg.Taxonomy, cfg.Report, a.logger)
	if err != nil {
		cancel()
		return fmt.Errorf("init report service: %w", err)
	}

	var tg *services.TelegramBotService
	if cfg.Telegram != nil {
		tg, err = services.NewTelegramBot(*cfg.Telegram, a.logger)
		if err != nil {
			cancel()
			return fmt.Errorf("init telegram bot: %w", err)
		}
	}

	monthlyJob, err := services.NewMonthlyJobService(reports, tg, cfg.MonthlyJob, a.logger)
	if err != nil {
		cancel()
		return fmt.Errorf("init monthly job: %w", err)
	}

	adminSrv := server.NewAdminHandler(a.logger, reports, runs, &cfg.HttpServer)

	go monthlyJob.Start(ctx)
	go func() {
		if err := adminSrv.Start(ctx); err != nil {
			a.logger.Error("Admin server exited with error", "error", err)
		}
	}()

	a.jira = jira
	a.reports = reports
	a.monthlyJob = monthlyJob
	a.tg = tg
	a.adminSrv = adminSrv
	a.servicesCancel = cancel

	a.logger.Info("Services reinitialized successfully with configuration")
	return nil
}

// Shutdown останавливает все запущенные сервисы приложения.
func (a *App) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.servicesCancel != nil {
		a.logger.Info("Stopping services on shutdown")
		a.servicesCancel()
		a.servicesCancel = nil
	}
}
