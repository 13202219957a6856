package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastFullMonth(t *testing.T) {
	start, end := LastFullMonth(date(2025, 10, 17))
	assert.Equal(t, date(2025, 9, 1), start)
	assert.Equal(t, date(2025, 10, 1), end)

	// Переход через границу года
	start, end = LastFullMonth(date(2026, 1, 2))
	assert.Equal(t, date(2025, 12, 1), start)
	assert.Equal(t, date(2026, 1, 1), end)
}

func TestReportFilename(t *testing.T) {
	assert.Equal(t, "jiraReport_2025-09-01_2025-10-01.csv", reportFilename(ReportRequest{
		Scope:  ScopeDateRange,
		Start:  date(2025, 9, 1),
		End:    date(2025, 10, 1),
		Format: FormatCSV,
	}))
	assert.Equal(t, "jiraReport_ABC.xlsx", reportFilename(ReportRequest{
		Scope:      ScopeProject,
		ProjectKey: "ABC",
		Format:     FormatXLSX,
	}))
}

func TestNewReportService(t *testing.T) {
	jira := newTestJira(t, http.NewServeMux())

	_, err := NewReportService(nil, nil, nil, testTaxonomy(), ReportOpts{}, testLogger())
	require.Error(t, err)

	_, err = NewReportService(jira, nil, nil, nil, ReportOpts{}, testLogger())
	require.Error(t, err)

	svc, err := NewReportService(jira, nil, nil, testTaxonomy(), ReportOpts{}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, svc.DefaultFormat())
}

func TestGenerateRequestValidation(t *testing.T) {
	jira := newTestJira(t, http.NewServeMux())
	svc, err := NewReportService(jira, nil, nil, testTaxonomy(), ReportOpts{}, testLogger())
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), ReportRequest{Scope: ScopeProject})
	require.Error(t, err)

	_, err = svc.Generate(context.Background(), ReportRequest{Scope: ScopeDateRange})
	require.Error(t, err)

	_, err = svc.Generate(context.Background(), ReportRequest{
		Scope: ScopeDateRange,
		Start: date(2025, 10, 1),
		End:   date(2025, 9, 1),
	})
	require.Error(t, err)
}

// pipelineHandler фейковый Jira для сквозного прогона конвейера:
// один проект, одна задача, два worklog, один из них вне интервала.
func pipelineHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/3/search/jql", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"issues": [
			{"key": "ABC-1", "fields": {
				"summary": "Build pipeline",
				"project": {"key": "ABC"},
				"customfield_10001": {"name": "Team A"}
			}}
		]}`)
	})
	mux.HandleFunc("/rest/api/3/project/ABC", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"key": "ABC", "name": "Alpha", "projectCategory": {"name": "Internal"}}`)
	})
	mux.HandleFunc("/rest/api/3/issue/ABC-1/worklog", func(w http.ResponseWriter, r *http.Request) {
		startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
		if startAt > 0 {
			fmt.Fprint(w, `{"worklogs": []}`)
			return
		}
		fmt.Fprint(w, `{"worklogs": [
			{"author": {"accountId": "u1", "displayName": "Alice"}, "started": "2025-09-05T10:00:00.000+0800", "timeSpentSeconds": 7200},
			{"author": {"accountId": "u1", "displayName": "Alice"}, "started": "2025-08-20T10:00:00.000+0800", "timeSpentSeconds": 3600}
		]}`)
	})
	mux.HandleFunc("/rest/api/3/user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"accountId": "u1", "groups": {"items": [{"name": "AWS-TW"}, {"name": "TWO2"}]}}`)
	})
	return mux
}

func TestGenerateDateRange(t *testing.T) {
	jira := newTestJira(t, pipelineHandler())
	svc, err := NewReportService(jira, nil, nil, testTaxonomy(), ReportOpts{}, testLogger())
	require.NoError(t, err)

	result, err := svc.Generate(context.Background(), ReportRequest{
		Scope: ScopeDateRange,
		Start: date(2025, 9, 1),
		End:   date(2025, 10, 1),
	})
	require.NoError(t, err)

	// Августовский worklog отброшен фильтром интервала
	assert.Equal(t, 1, result.RowCount)
	assert.Equal(t, "jiraReport_2025-09-01_2025-10-01.csv", result.Filename)
}

func TestGenerateProjectScopeKeepsAllRows(t *testing.T) {
	jira := newTestJira(t, pipelineHandler())
	svc, err := NewReportService(jira, nil, nil, testTaxonomy(), ReportOpts{DefaultFormat: "xlsx", IncludeSummary: true}, testLogger())
	require.NoError(t, err)

	result, err := svc.Generate(context.Background(), ReportRequest{
		Scope:          ScopeProject,
		ProjectKey:     "ABC",
		IncludeSummary: true,
	})
	require.NoError(t, err)

	// Проектный отчет не фильтрует по датам
	assert.Equal(t, 2, result.RowCount)
	assert.Equal(t, "jiraReport_ABC.xlsx", result.Filename)
}
