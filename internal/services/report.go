package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DevN0mad/JiraReportBot/internal/models"
	"github.com/DevN0mad/JiraReportBot/internal/storage"
)

// ReportScope определяет источник выборки задач.
type ReportScope string

const (
	// ScopeDateRange выбирает задачи с worklog в интервале дат.
	ScopeDateRange ReportScope = "date-range"
	// ScopeProject выбирает все задачи одного проекта.
	ScopeProject ReportScope = "project"
)

// ReportFormat формат итогового артефакта.
type ReportFormat string

const (
	FormatCSV  ReportFormat = "csv"
	FormatXLSX ReportFormat = "xlsx"
)

// ReportOpts параметры генерации по умолчанию.
type ReportOpts struct {
	DefaultFormat  string `yaml:"defaultFormat" validate:"omitempty,oneof=csv xlsx"`
	IncludeSummary bool   `yaml:"includeSummary"`
}

// ReportRequest описывает один запуск генерации отчета.
type ReportRequest struct {
	Scope          ReportScope
	ProjectKey     string
	Start          time.Time
	End            time.Time
	Format         ReportFormat
	IncludeSummary bool
}

// ReportResult итог успешного запуска.
type ReportResult struct {
	Filename string `json:"filename"`
	RowCount int    `json:"rows"`
}

// ReportService последовательно выполняет конвейер отчета:
// задачи -> проекты -> worklog -> метки пользователей -> плоские
// строки -> фильтр -> сериализация -> выгрузка.
type ReportService struct {
	jira     *JiraService
	objects  *storage.ObjectStore
	runs     *storage.RunStore
	taxonomy []TaxonomyCategory
	opts     ReportOpts
	logger   *slog.Logger
}

// NewReportService создает сервис генерации отчетов.
func NewReportService(
	jira *JiraService,
	objects *storage.ObjectStore,
	runs *storage.RunStore,
	taxonomy []TaxonomyCategory,
	opts ReportOpts,
	logger *slog.Logger,
) (*ReportService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if jira == nil {
		return nil, fmt.Errorf("jira service is required")
	}
	if len(taxonomy) == 0 {
		return nil, fmt.Errorf("taxonomy is required")
	}
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = string(FormatCSV)
	}
	return &ReportService{
		jira:     jira,
		objects:  objects,
		runs:     runs,
		taxonomy: taxonomy,
		opts:     opts,
		logger:   logger,
	}, nil
}

// DefaultFormat возвращает формат по умолчанию из конфигурации.
func (s *ReportService) DefaultFormat() ReportFormat {
	return ReportFormat(s.opts.DefaultFormat)
}

// IncludeSummaryByDefault возвращает признак сводного листа по умолчанию.
func (s *ReportService) IncludeSummaryByDefault() bool {
	return s.opts.IncludeSummary
}

// LastFullMonth возвращает границы последнего полного календарного
// месяца относительно now как полуоткрытый интервал [start, end).
func LastFullMonth(now time.Time) (time.Time, time.Time) {
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, -1, 0), end
}

// UpdatedWorklogs возвращает нормализованные worklog записи из фида
// обновлений за интервал [start, end).
func (s *ReportService) UpdatedWorklogs(ctx context.Context, start, end time.Time) ([]models.Worklog, error) {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return nil, fmt.Errorf("invalid date range: start must be before end")
	}
	return s.jira.UpdatedWorklogs(ctx, start, end)
}

// Generate выполняет один запуск конвейера и записывает его итог
// в историю запусков.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	result, err := s.generate(ctx, req)
	s.recordRun(ctx, req, result, err)
	return result, err
}

func (s *ReportService) generate(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	if req.Format == "" {
		req.Format = s.DefaultFormat()
	}

	var jql string
	switch req.Scope {
	case ScopeProject:
		if req.ProjectKey == "" {
			return nil, fmt.Errorf("project key is required for project scope")
		}
		jql = ProjectJQL(req.ProjectKey)
	case ScopeDateRange, "":
		if req.Start.IsZero() || req.End.IsZero() || !req.Start.Before(req.End) {
			return nil, fmt.Errorf("invalid date range: start must be before end")
		}
		req.Scope = ScopeDateRange
		jql = WorklogDateJQL(req.Start, req.End)
	default:
		return nil, fmt.Errorf("unknown report scope %q", req.Scope)
	}

	s.logger.Info("Starting report generation",
		"scope", string(req.Scope),
		"format", string(req.Format),
		"jql", jql)

	issues, err := s.jira.SearchIssues(ctx, jql)
	if err != nil {
		return nil, fmt.Errorf("extract issues: %w", err)
	}

	projects, err := s.jira.ReconcileProjects(ctx, issues)
	if err != nil {
		return nil, fmt.Errorf("reconcile projects: %w", err)
	}

	// Кэш меток живет ровно один запуск
	resolver := NewResolver(s.jira, s.taxonomy, s.logger)
	labels := make(map[string]models.UserLabel)

	for pi := range projects {
		for ii := range projects[pi].Issues {
			issue := &projects[pi].Issues[ii]
			worklogs, err := s.jira.IssueWorklogs(ctx, issue.Key)
			if err != nil {
				return nil, err
			}
			issue.Worklogs = worklogs

			for _, wl := range worklogs {
				if wl.OwnerID == nil {
					continue
				}
				labels[*wl.OwnerID] = resolver.Resolve(ctx, *wl.OwnerID)
			}
		}
	}

	rows := Flatten(projects, labels)
	if req.Scope == ScopeDateRange {
		rows = FilterRange(rows, req.Start, req.End)
	}

	var data []byte
	var contentType string
	switch req.Format {
	case FormatXLSX:
		var summary *models.OwnerMonthSummary
		if req.IncludeSummary {
			sm := SummarizeByOwnerMonth(rows)
			summary = &sm
		}
		data, err = WriteExcel(rows, s.taxonomy, summary)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		data, err = WriteCSV(rows, s.taxonomy)
		contentType = "text/csv"
	default:
		return nil, fmt.Errorf("unknown report format %q", req.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("serialize report: %w", err)
	}

	filename := reportFilename(req)
	if s.objects != nil {
		if err := s.objects.Upload(ctx, filename, data, contentType); err != nil {
			return nil, fmt.Errorf("upload report: %w", err)
		}
	}

	s.logger.Info("Report generated", "filename", filename, "rows", len(rows), "bytes", len(data))
	return &ReportResult{Filename: filename, RowCount: len(rows)}, nil
}

// recordRun сохраняет итог запуска; сбой истории не роняет отчет.
func (s *ReportService) recordRun(ctx context.Context, req ReportRequest, result *ReportResult, runErr error) {
	if s.runs == nil {
		return
	}

	run := models.ReportRun{
		Scope:  string(req.Scope),
		Format: string(req.Format),
		Status: "ok",
	}
	if req.Scope == ScopeProject {
		run.Scope = fmt.Sprintf("project:%s", req.ProjectKey)
	} else {
		run.StartDate = req.Start.Format("2006-01-02")
		run.EndDate = req.End.Format("2006-01-02")
	}
	if result != nil {
		run.Filename = result.Filename
		run.RowCount = result.RowCount
	}
	if runErr != nil {
		run.Status = "failed"
		run.Error = runErr.Error()
	}

	if err := s.runs.SaveRun(ctx, &run); err != nil {
		s.logger.Warn("Failed to record report run", "error", err)
	}
}

// reportFilename кодирует в имени файла диапазон дат или ключ проекта.
func reportFilename(req ReportRequest) string {
	ext := "csv"
	if req.Format == FormatXLSX {
		ext = "xlsx"
	}
	if req.Scope == ScopeProject {
		return fmt.Sprintf("jiraReport_%s.%s", req.ProjectKey, ext)
	}
	return fmt.Sprintf("jiraReport_%s_%s.%s",
		req.Start.Format("2006-01-02"), req.End.Format("2006-01-02"), ext)
}
