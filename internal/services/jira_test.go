package services

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// date календарная дата как ее хранят нормализованные записи.
func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// newTestJira поднимает фейковый Jira сервер и клиент поверх него.
func newTestJira(t *testing.T, handler http.Handler) *JiraService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewJiraService(JiraOpts{
		BaseURL:  srv.URL,
		Email:    "bot@example.com",
		APIToken: "token",
		PageSize: 2,
	}, testLogger())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
