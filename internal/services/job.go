package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// MonthlyJobOpts параметры необходимые для работы сервиса.
type MonthlyJobOpts struct {
	Day    int `yaml:"day" validate:"required,min=1,max=28"`
	Hour   int `yaml:"hour" validate:"min=0,max=23"`
	Minute int `yaml:"minute" validate:"min=0,max=59"`
}

// MonthlyJobService генерирует отчет за последний полный месяц
// каждый месяц в заданный день и время.
type MonthlyJobService struct {
	reports  *ReportService
	botServ  *TelegramBotService
	day      int
	hour     int
	minute   int
	timezone *time.Location
	logger   *slog.Logger
}

// NewMonthlyJobService создаёт сервис ежемесячной генерации отчета.
func NewMonthlyJobService(
	reports *ReportService,
	botServ *TelegramBotService,
	opts MonthlyJobOpts,
	logger *slog.Logger,
) (*MonthlyJobService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if reports == nil {
		return nil, fmt.Errorf("report service is required")
	}

	logger.Info("Monthly job configured",
		"day", opts.Day,
		"hour", opts.Hour,
		"minute", opts.Minute,
		"timezone", time.Local.String())

	return &MonthlyJobService{
		reports:  reports,
		botServ:  botServ,
		day:      opts.Day,
		hour:     opts.Hour,
		minute:   opts.Minute,
		timezone: time.Local,
		logger:   logger,
	}, nil
}

// Start запускает цикл генерации.
func (d *MonthlyJobService) Start(ctx context.Context) {
	nextRun := d.nextRunTime()
	timer := time.NewTimer(time.Until(nextRun))
	d.logger.Info("Next run scheduled", "at", nextRun.Format(time.RFC3339))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Shutdown requested")
			timer.Stop()
			return
		case <-timer.C:
			d.runOnce(ctx)

			nextRun = d.nextRunTime()
			timer.Reset(time.Until(nextRun))
			d.logger.Info("Next run scheduled", "at", nextRun.Format(time.RFC3339))
		}
	}
}

// runOnce генерирует отчет за последний полный месяц и уведомляет чат.
func (d *MonthlyJobService) runOnce(ctx context.Context) {
	start, end := LastFullMonth(time.Now())

	result, err := d.reports.Generate(ctx, ReportRequest{
		Scope:          ScopeDateRange,
		Start:          start,
		End:            end,
		Format:         d.reports.DefaultFormat(),
		IncludeSummary: d.reports.IncludeSummaryByDefault(),
	})
	if err != nil {
		d.logger.Error("Monthly report generation failed", "error", err)
		return
	}

	d.logger.Info("Monthly report generated", "filename", result.Filename, "rows", result.RowCount)

	if d.botServ != nil {
		if err := d.botServ.NotifyReport(ctx, result); err != nil {
			d.logger.Error("Monthly report notification failed", "error", err)
		}
	}
}

// nextRunTime вычисляет ближайший запуск в заданный день месяца.
func (d *MonthlyJobService) nextRunTime() time.Time {
	now := time.Now().In(d.timezone)
	run := time.Date(now.Year(), now.Month(), d.day, d.hour, d.minute, 0, 0, d.timezone)

	if now.After(run) {
		return run.AddDate(0, 1, 0)
	}
	return run
}
