package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/DevN0mad/JiraReportBot/internal/config"
	"github.com/DevN0mad/JiraReportBot/internal/services"
	"github.com/DevN0mad/JiraReportBot/internal/storage"
)

var (
	configPath = flag.String("config", "config.yaml", "Путь к файлу с конфигурацией")
	startDate  = flag.String("start", "", "Начало интервала, YYYY-MM-DD (по умолчанию последний полный месяц)")
	endDate    = flag.String("end", "", "Конец интервала, YYYY-MM-DD, не включается")
	projectKey = flag.String("project", "", "Ключ проекта вместо интервала дат")
	format     = flag.String("format", "", "Формат отчета: csv или xlsx")
	summary    = flag.Bool("summary", false, "Добавить сводный лист (только xlsx)")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfgMgr, err := config.NewManager(*configPath, logger)
	if err != nil {
		logger.Error("Failed to init config manager", "error", err)
		os.Exit(1)
	}
	cfg := cfgMgr.Current()

	jira := services.NewJiraService(cfg.Jira, logger)

	objects, err := storage.NewObjectStore(cfg.ObjectStorage, logger)
	if err != nil {
		logger.Error("Failed to init object storage", "error", err)
		os.Exit(1)
	}

	runs, err := storage.NewRunStore(cfg.History, logger)
	if err != nil {
		logger.Error("Failed to init run history", "error", err)
		os.Exit(1)
	}

	reports, err := services.NewReportService(jira, objects, runs, cfg.Taxonomy, cfg.Report, logger)
	if err != nil {
		logger.Error("Failed to init report service", "error", err)
		os.Exit(1)
	}

	req, err := buildRequest(reports)
	if err != nil {
		logger.Error("Invalid report request", "error", err)
		os.Exit(1)
	}

	result, err := reports.Generate(context.Background(), req)
	if err != nil {
		logger.Error("Failed to generate report", "error", err)
		os.Exit(1)
	}

	logger.Info("✅ Report successfully created", "filename", result.Filename, "rows", result.RowCount)
}

// buildRequest собирает запрос из флагов командной строки.
func buildRequest(reports *services.ReportService) (services.ReportRequest, error) {
	req := services.ReportRequest{
		Format:         reports.DefaultFormat(),
		IncludeSummary: reports.IncludeSummaryByDefault() || *summary,
	}
	if *format != "" {
		req.Format = services.ReportFormat(*format)
	}

	if *projectKey != "" {
		req.Scope = services.ScopeProject
		req.ProjectKey = *projectKey
		return req, nil
	}

	req.Scope = services.ScopeDateRange
	if *startDate == "" && *endDate == "" {
		req.Start, req.End = services.LastFullMonth(time.Now())
		return req, nil
	}

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		return req, err
	}
	end, err := time.Parse("2006-01-02", *endDate)
	if err != nil {
		return req, err
	}
	req.Start = start
	req.End = end
	return req, nil
}
