package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DevN0mad/JiraReportBot/internal/models"
)

// ProjectJQL возвращает JQL фильтр по ключу проекта.
// ORDER BY фиксирует детерминированный порядок между страницами.
func ProjectJQL(projectKey string) string {
	return fmt.Sprintf(`project = "%s" ORDER BY created ASC, key ASC`, projectKey)
}

// WorklogDateJQL возвращает JQL фильтр по полуоткрытому интервалу
// дат worklog [start, end).
func WorklogDateJQL(start, end time.Time) string {
	return fmt.Sprintf(`worklogDate >= "%s" AND worklogDate < "%s" ORDER BY created ASC, key ASC`,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// SearchIssues получает все задачи по JQL фильтру через
// токен-пагинацию /rest/api/3/search/jql.
func (s *JiraService) SearchIssues(ctx context.Context, jql string) ([]models.Issue, error) {
	if jql == "" {
		return nil, fmt.Errorf("empty jql")
	}

	fields := strings.Join([]string{
		"summary",
		"project",
		s.opts.TeamFieldID,
		s.opts.StatusFieldID,
		s.opts.ParentKeyFieldID,
		s.opts.WorklogTypeFieldID,
	}, ",")

	s.logger.Debug("Starting issue search", "jql", jql)

	issues, err := FetchTokenPages(func(token string) ([]models.Issue, string, error) {
		query := url.Values{}
		query.Set("jql", jql)
		query.Set("fields", fields)
		query.Set("maxResults", strconv.Itoa(s.opts.PageSize))
		if token != "" {
			query.Set("nextPageToken", token)
		}

		var page models.IssueSearchPage
		if err := s.getJSON(ctx, s.apiURL("/rest/api/3/search/jql"), query, &page); err != nil {
			return nil, "", err
		}

		parsed := make([]models.Issue, 0, len(page.Issues))
		for _, raw := range page.Issues {
			parsed = append(parsed, s.parseIssue(raw))
		}
		return parsed, page.NextPageToken, nil
	})
	if err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}

	s.logger.Info("Issue search completed", "count", len(issues))
	return issues, nil
}

// parseIssue нормализует сырую задачу. Пустые или отсутствующие
// кастомные поля становятся nil, а не значением по умолчанию.
func (s *JiraService) parseIssue(raw models.RawIssue) models.Issue {
	issue := models.Issue{Key: raw.Key}

	if summary := stringField(raw.Fields["summary"]); summary != nil {
		issue.Summary = *summary
	}
	if ref := objectField(raw.Fields["project"], "key"); ref != nil {
		issue.ProjectKey = *ref
	}

	issue.Team = objectField(raw.Fields[s.opts.TeamFieldID], "name")
	issue.Status = objectField(raw.Fields[s.opts.StatusFieldID], "value")
	issue.ParentKey = stringField(raw.Fields[s.opts.ParentKeyFieldID])
	issue.WorklogType = objectField(raw.Fields[s.opts.WorklogTypeFieldID], "value")

	return issue
}

// stringField разбирает строковое поле; null и пустая строка дают nil.
func stringField(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil || v == "" {
		return nil
	}
	return &v
}

// objectField достает строковый атрибут из объектного поля
// (например {"name": ...} или {"value": ...}); любая другая
// структура дает nil.
func objectField(raw json.RawMessage, attr string) *string {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return stringField(obj[attr])
}
