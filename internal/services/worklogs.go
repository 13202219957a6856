package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/DevN0mad/JiraReportBot/internal/models"
)

// Форматы отметки started в ответах Jira.
var startedLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339Nano,
	time.RFC3339,
}

// IssueWorklogs получает все записи worklog задачи через
// offset-пагинацию /rest/api/3/issue/{key}/worklog.
func (s *JiraService) IssueWorklogs(ctx context.Context, issueKey string) ([]models.Worklog, error) {
	if issueKey == "" {
		return nil, fmt.Errorf("empty issue key")
	}

	worklogs, err := FetchOffsetPages(s.opts.PageSize, func(startAt, maxResults int) ([]models.Worklog, error) {
		query := url.Values{}
		query.Set("startAt", strconv.Itoa(startAt))
		query.Set("maxResults", strconv.Itoa(maxResults))

		var page models.WorklogPage
		path := "/rest/api/3/issue/" + url.PathEscape(issueKey) + "/worklog"
		if err := s.getJSON(ctx, s.apiURL(path), query, &page); err != nil {
			return nil, err
		}

		parsed := make([]models.Worklog, 0, len(page.Worklogs))
		for _, raw := range page.Worklogs {
			parsed = append(parsed, s.parseWorklog(issueKey, raw))
		}
		return parsed, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch worklogs for %s: %w", issueKey, err)
	}
	return worklogs, nil
}

// UpdatedWorklogs получает worklog записи, обновлённые начиная с start,
// через фид /rest/api/3/worklog/updated c постраничными ссылками nextPage
// и отдельным запросом детализации на каждую запись. Фид не фильтрует
// по дате начала, поэтому записи отбираются по started в [start, end).
// Неудачная детализация пропускается с записью в лог, запуск продолжается.
func (s *JiraService) UpdatedWorklogs(ctx context.Context, start, end time.Time) ([]models.Worklog, error) {
	since := start.Format("2006-01-02") + "T00:00:00.000+0000"

	var out []models.Worklog
	pageURL := s.apiURL("/rest/api/3/worklog/updated")
	query := url.Values{"since": []string{since}}

	for page := 0; page < maxPages; page++ {
		var feed models.UpdatedWorklogsPage
		if err := s.getJSON(ctx, pageURL, query, &feed); err != nil {
			return nil, fmt.Errorf("fetch updated worklogs: %w", err)
		}

		for _, ref := range feed.Values {
			detailPath := fmt.Sprintf("/rest/api/3/issue/%d/worklog/%d", ref.IssueID, ref.WorklogID)

			var raw models.RawWorklog
			if err := s.getJSON(ctx, s.apiURL(detailPath), nil, &raw); err != nil {
				s.logger.Warn("Failed to fetch worklog detail",
					"worklog_id", ref.WorklogID,
					"issue_id", ref.IssueID,
					"error", err)
				continue
			}

			wl := s.parseWorklog(strconv.FormatInt(ref.IssueID, 10), raw)
			if wl.StartDate == nil {
				continue
			}
			if !wl.StartDate.Before(start) && wl.StartDate.Before(end) {
				out = append(out, wl)
			}
		}

		if feed.NextPage == "" {
			break
		}
		// nextPage уже содержит параметры запроса
		pageURL = feed.NextPage
		query = nil
	}

	s.logger.Info("Updated worklogs collected", "count", len(out))
	return out, nil
}

// parseWorklog нормализует сырую запись worklog: секунды в часы,
// отметка started в календарную дату в зоне, записанной трекером.
func (s *JiraService) parseWorklog(issueKey string, raw models.RawWorklog) models.Worklog {
	wl := models.Worklog{
		IssueKey:       issueKey,
		TimeSpentHours: float64(raw.TimeSpentSeconds) / 3600,
	}

	if raw.Author != nil {
		accountID := raw.Author.AccountID
		displayName := raw.Author.DisplayName
		wl.OwnerID = &accountID
		wl.Owner = &displayName
	}

	if d, ok := parseStartedDate(raw.Started); ok {
		wl.StartDate = &d
	} else {
		s.logger.Warn("Unparsable worklog start date", "issue_key", issueKey, "started", raw.Started)
	}

	return wl
}

// parseStartedDate приводит отметку ISO-8601 со смещением к календарной
// дате: год/месяц/день берутся в исходном смещении, время отбрасывается.
func parseStartedDate(started string) (time.Time, bool) {
	if started == "" {
		return time.Time{}, false
	}
	for _, layout := range startedLayouts {
		if t, err := time.Parse(layout, started); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
