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

func TestIssueWorklogsPagination(t *testing.T) {
	raw := []string{
		`{"author": {"accountId": "u1", "displayName": "Alice"}, "started": "2025-09-05T10:00:00.000+0800", "timeSpentSeconds": 7200}`,
		`{"author": {"accountId": "u2", "displayName": "Bob"}, "started": "2025-09-15T09:30:00.000+0800", "timeSpentSeconds": 10800}`,
		`{"started": "2025-09-20T12:00:00.000+0800", "timeSpentSeconds": 1800}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/3/issue/ABC-1/worklog", func(w http.ResponseWriter, r *http.Request) {
		startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
		maxResults, _ := strconv.Atoi(r.URL.Query().Get("maxResults"))
		end := startAt + maxResults
		if end > len(raw) {
			end = len(raw)
		}
		if startAt > len(raw) {
			startAt = len(raw)
		}
		batch := ""
		for i, wl := range raw[startAt:end] {
			if i > 0 {
				batch += ","
			}
			batch += wl
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"startAt": %d, "maxResults": %d, "worklogs": [%s]}`, startAt, maxResults, batch)
	})

	jira := newTestJira(t, mux) // pageSize = 2

	worklogs, err := jira.IssueWorklogs(context.Background(), "ABC-1")
	require.NoError(t, err)
	require.Len(t, worklogs, 3)

	first := worklogs[0]
	assert.Equal(t, "ABC-1", first.IssueKey)
	require.NotNil(t, first.OwnerID)
	assert.Equal(t, "u1", *first.OwnerID)
	require.NotNil(t, first.Owner)
	assert.Equal(t, "Alice", *first.Owner)
	require.NotNil(t, first.StartDate)
	assert.Equal(t, date(2025, 9, 5), *first.StartDate)
	assert.InDelta(t, 2.0, first.TimeSpentHours, 1e-9)

	assert.InDelta(t, 3.0, worklogs[1].TimeSpentHours, 1e-9)

	// Запись без автора остается, владелец nil
	third := worklogs[2]
	assert.Nil(t, third.OwnerID)
	assert.InDelta(t, 0.5, third.TimeSpentHours, 1e-9)
}

func TestParseStartedDateKeepsRecordedOffset(t *testing.T) {
	tests := []struct {
		name    string
		started string
		want    string
		ok      bool
	}{
		// 00:30 по +09:00 это еще предыдущий день в UTC,
		// но дата берется в записанном смещении
		{name: "early morning east offset", started: "2025-09-05T00:30:00.000+0900", want: "2025-09-05", ok: true},
		{name: "late evening west offset", started: "2025-09-05T23:45:00.000-0700", want: "2025-09-05", ok: true},
		{name: "rfc3339", started: "2025-09-05T10:00:00+02:00", want: "2025-09-05", ok: true},
		{name: "garbage", started: "not-a-date", ok: false},
		{name: "empty", started: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseStartedDate(tt.started)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Format("2006-01-02"))
				assert.Equal(t, 0, got.Hour())
			}
		})
	}
}

func TestIssueWorklogsUnparsableStartDate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/3/issue/ABC-2/worklog", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"worklogs": [
			{"author": {"accountId": "u1", "displayName": "Alice"}, "started": "garbage", "timeSpentSeconds": 3600}
		]}`)
	})

	jira := newTestJira(t, mux)

	worklogs, err := jira.IssueWorklogs(context.Background(), "ABC-2")
	require.NoError(t, err, "unparsable date must not abort the run")
	require.Len(t, worklogs, 1)
	assert.Nil(t, worklogs[0].StartDate)
}

func TestUpdatedWorklogs(t *testing.T) {
	var detailCalls int

	mux := http.NewServeMux()
	var serverURL string
	mux.HandleFunc("/rest/api/3/worklog/updated", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("after") == "" {
			require.Equal(t, "2025-09-01T00:00:00.000+0000", r.URL.Query().Get("since"))
			fmt.Fprintf(w, `{
				"values": [
					{"worklogId": 1, "issueId": 100},
					{"worklogId": 2, "issueId": 100}
				],
				"nextPage": "%s/rest/api/3/worklog/updated?after=2"
			}`, serverURL)
			return
		}
		fmt.Fprint(w, `{
			"values": [
				{"worklogId": 3, "issueId": 200},
				{"worklogId": 4, "issueId": 200}
			],
			"lastPage": true
		}`)
	})
	mux.HandleFunc("/rest/api/3/issue/100/worklog/1", func(w http.ResponseWriter, r *http.Request) {
		detailCalls++
		fmt.Fprint(w, `{"author": {"accountId": "u1", "displayName": "Alice"}, "started": "2025-09-10T10:00:00.000+0200", "timeSpentSeconds": 3600}`)
	})
	mux.HandleFunc("/rest/api/3/issue/100/worklog/2", func(w http.ResponseWriter, r *http.Request) {
		detailCalls++
		// Обновлена в сентябре, но начата в августе: фид не
		// фильтрует по started, должна быть отброшена
		fmt.Fprint(w, `{"author": {"accountId": "u2", "displayName": "Bob"}, "started": "2025-08-20T10:00:00.000+0200", "timeSpentSeconds": 3600}`)
	})
	mux.HandleFunc("/rest/api/3/issue/200/worklog/3", func(w http.ResponseWriter, r *http.Request) {
		detailCalls++
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc("/rest/api/3/issue/200/worklog/4", func(w http.ResponseWriter, r *http.Request) {
		detailCalls++
		fmt.Fprint(w, `{"author": {"accountId": "u3", "displayName": "Carol"}, "started": "2025-09-30T23:00:00.000+0200", "timeSpentSeconds": 5400}`)
	})

	jira := newTestJira(t, mux)
	serverURL = jira.opts.BaseURL

	worklogs, err := jira.UpdatedWorklogs(context.Background(), date(2025, 9, 1), date(2025, 10, 1))
	require.NoError(t, err, "failed detail fetch must be skipped, not fatal")
	assert.Equal(t, 4, detailCalls)

	require.Len(t, worklogs, 2)
	assert.Equal(t, date(2025, 9, 10), *worklogs[0].StartDate)
	assert.Equal(t, "100", worklogs[0].IssueKey)
	assert.Equal(t, date(2025, 9, 30), *worklogs[1].StartDate)
	assert.InDelta(t, 1.5, worklogs[1].TimeSpentHours, 1e-9)
}

func TestUpdatedWorklogsFeedError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/3/worklog/updated", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	jira := newTestJira(t, mux)

	_, err := jira.UpdatedWorklogs(context.Background(), date(2025, 9, 1), date(2025, 10, 1))
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusServiceUnavailable, remoteErr.Status)
}
