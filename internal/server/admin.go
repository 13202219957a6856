package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DevN0mad/JiraReportBot/internal/services"
	"github.com/DevN0mad/JiraReportBot/internal/storage"
)

const APIv1Prefix = "/api/v1/"

// AdminServerOpts параметры для настройки административного сервера.
type AdminServerOpts struct {
	Address             string `yaml:"address" validate:"required"`
	ReadTimeoutSeconds  int    `yaml:"readTimeoutSeconds" validate:"min=0"`
	WriteTimeoutSeconds int    `yaml:"writeTimeoutSeconds" validate:"min=0"`
	IdleTimeoutSeconds  int    `yaml:"idleTimeoutSeconds" validate:"min=0"`
}

// reportRequestBody тело POST запроса на генерацию отчета.
type reportRequestBody struct {
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Project        string `json:"project"`
	Format         string `json:"format"`
	IncludeSummary *bool  `json:"include_summary"`
}

// AdminServer обрабатывает административные команды.
type AdminServer struct {
	logger  *slog.Logger
	opts    *AdminServerOpts
	srv     *http.Server
	reports *services.ReportService
	runs    *storage.RunStore
}

// NewAdminHandler создаёт новый обработчик для административных команд.
func NewAdminHandler(logger *slog.Logger, reports *services.ReportService, runs *storage.RunStore, opts *AdminServerOpts) *AdminServer {
	return &AdminServer{
		logger:  logger,
		opts:    opts,
		reports: reports,
		runs:    runs,
	}
}

// Register регистрирует маршруты административного сервера.
func (h *AdminServer) Register(mux *http.ServeMux) {
	mux.HandleFunc(withPrefix("report"), h.handleReport)
	mux.HandleFunc(withPrefix("runs"), h.handleRuns)
	mux.HandleFunc(withPrefix("worklogs/updated"), h.handleUpdatedWorklogs)
}

// handleReport обрабатывает запросы на генерацию отчёта:
// GET берет последний полный месяц, POST принимает явный диапазон.
func (h *AdminServer) handleReport(w http.ResponseWriter, r *http.Request) {
	var req services.ReportRequest

	switch r.Method {
	case http.MethodGet:
		start, end := services.LastFullMonth(time.Now())
		req = services.ReportRequest{
			Scope:          services.ScopeDateRange,
			Start:          start,
			End:            end,
			Format:         h.reports.DefaultFormat(),
			IncludeSummary: h.reports.IncludeSummaryByDefault(),
		}
	case http.MethodPost:
		parsed, err := h.parseReportBody(r)
		if err != nil {
			h.logger.Warn("Invalid report request", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req = parsed
	default:
		h.logger.Warn("Method not allowed", "method", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.reports.Generate(r.Context(), req)
	if err != nil {
		h.logger.Error("Generate report", "error", err)
		http.Error(w, "Failed to generate report", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"message":  "Report generated",
		"filename": result.Filename,
		"rows":     result.RowCount,
	})
}

// parseReportBody валидирует тело POST запроса. Даты обязаны иметь
// формат YYYY-MM-DD, start строго раньше end.
func (h *AdminServer) parseReportBody(r *http.Request) (services.ReportRequest, error) {
	var body reportRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return services.ReportRequest{}, errBadRequest("invalid JSON body")
	}

	req := services.ReportRequest{
		Format:         h.reports.DefaultFormat(),
		IncludeSummary: h.reports.IncludeSummaryByDefault(),
	}
	if body.Format != "" {
		if body.Format != string(services.FormatCSV) && body.Format != string(services.FormatXLSX) {
			return services.ReportRequest{}, errBadRequest("format must be csv or xlsx")
		}
		req.Format = services.ReportFormat(body.Format)
	}
	if body.IncludeSummary != nil {
		req.IncludeSummary = *body.IncludeSummary
	}

	if body.Project != "" {
		req.Scope = services.ScopeProject
		req.ProjectKey = body.Project
		return req, nil
	}

	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		return services.ReportRequest{}, errBadRequest("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		return services.ReportRequest{}, errBadRequest("end_date must be YYYY-MM-DD")
	}
	if !start.Before(end) {
		return services.ReportRequest{}, errBadRequest("start_date must be before end_date")
	}

	req.Scope = services.ScopeDateRange
	req.Start = start
	req.End = end
	return req, nil
}

// handleUpdatedWorklogs отдает записи из фида обновленных worklog за
// интервал [start, end); без параметров берется последний полный месяц.
func (h *AdminServer) handleUpdatedWorklogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed", "method", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start, end := services.LastFullMonth(time.Now())
	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "start must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		start = parsed
	}
	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "end must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end = parsed
	}
	if !start.Before(end) {
		http.Error(w, "start must be before end", http.StatusBadRequest)
		return
	}

	worklogs, err := h.reports.UpdatedWorklogs(r.Context(), start, end)
	if err != nil {
		h.logger.Error("Fetch updated worklogs", "error", err)
		http.Error(w, "Failed to fetch updated worklogs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, worklogs)
}

// handleRuns возвращает последние запуски генерации.
func (h *AdminServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed", "method", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.runs == nil {
		http.Error(w, "Run history is not configured", http.StatusNotFound)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("List report runs", "error", err)
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, runs)
}

// Start запускает административный сервер.
func (h *AdminServer) Start(ctx context.Context) error {
	h.logger.Info("Starting admin server", "address", h.opts.Address)
	mux := http.NewServeMux()
	h.Register(mux)
	h.srv = &http.Server{
		Addr:         h.opts.Address,
		ReadTimeout:  time.Duration(h.opts.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(h.opts.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(h.opts.IdleTimeoutSeconds) * time.Second,
		Handler:      mux,
	}

	go func() {
		<-ctx.Done()

		h.logger.Info("Shutting down admin server (ctx canceled)")

		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			h.logger.Error("Admin server shutdown error", "error", err)
		}
	}()

	if err := h.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		h.logger.Error("Admin server error", "error", err)
		return err
	}

	h.logger.Info("Admin server stopped")
	return nil
}

// withPrefix добавляет префикс к пути API.
func withPrefix(postfix string) string {
	return APIv1Prefix + strings.TrimSpace(postfix)
}

// badRequestError ошибка валидации запроса.
type badRequestError string

func errBadRequest(msg string) error { return badRequestError(msg) }

func (e badRequestError) Error() string { return string(e) }

// writeJSON сериализует ответ в JSON.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
