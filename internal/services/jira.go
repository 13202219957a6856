package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Идентификаторы кастомных полей Jira по умолчанию.
const (
	defaultTeamFieldID        = "customfield_10001"
	defaultStatusFieldID      = "customfield_10035"
	defaultParentKeyFieldID   = "customfield_10142"
	defaultWorklogTypeFieldID = "customfield_10139"
)

const defaultPageSize = 50

// JiraOpts параметры необходимые для работы сервиса.
type JiraOpts struct {
	BaseURL  string `yaml:"baseURL" validate:"required,url"`
	Email    string `yaml:"email" validate:"required"`
	APIToken string `yaml:"apiToken" validate:"required"`
	PageSize int    `yaml:"pageSize" validate:"min=0"`

	TeamFieldID        string `yaml:"teamFieldID"`
	StatusFieldID      string `yaml:"statusFieldID"`
	ParentKeyFieldID   string `yaml:"parentKeyFieldID"`
	WorklogTypeFieldID string `yaml:"worklogTypeFieldID"`
}

// JiraService основной сервис для работы с Jira REST API.
type JiraService struct {
	opts   JiraOpts
	logger *slog.Logger
	client *http.Client
}

// NewJiraService инициализирует сервис с Basic Auth (email + API token).
func NewJiraService(opts JiraOpts, logger *slog.Logger) *JiraService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.TeamFieldID == "" {
		opts.TeamFieldID = defaultTeamFieldID
	}
	if opts.StatusFieldID == "" {
		opts.StatusFieldID = defaultStatusFieldID
	}
	if opts.ParentKeyFieldID == "" {
		opts.ParentKeyFieldID = defaultParentKeyFieldID
	}
	if opts.WorklogTypeFieldID == "" {
		opts.WorklogTypeFieldID = defaultWorklogTypeFieldID
	}

	return &JiraService{
		opts:   opts,
		logger: logger,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// getJSON выполняет GET запрос и разбирает JSON ответ.
// Неуспешный статус превращается в *RemoteError.
func (s *JiraService) getJSON(ctx context.Context, rawURL string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.SetBasicAuth(s.opts.Email, s.opts.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &RemoteError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}

// apiURL собирает абсолютный URL эндпоинта REST API.
func (s *JiraService) apiURL(path string) string {
	return s.opts.BaseURL + path
}
