package models

import "encoding/json"

// IssueSearchPage представляет страницу ответа /rest/api/3/search/jql.
type IssueSearchPage struct {
	Issues        []RawIssue `json:"issues"`
	NextPageToken string     `json:"nextPageToken"`
}

// RawIssue сырая задача из поиска; кастомные поля имеют
// настраиваемые идентификаторы, поэтому fields остаются сырыми.
type RawIssue struct {
	Key    string                     `json:"key"`
	Fields map[string]json.RawMessage `json:"fields"`
}

// WorklogPage представляет страницу ответа /issue/{key}/worklog.
type WorklogPage struct {
	StartAt    int          `json:"startAt"`
	MaxResults int          `json:"maxResults"`
	Total      int          `json:"total"`
	Worklogs   []RawWorklog `json:"worklogs"`
}

// RawWorklog сырая запись worklog из API.
type RawWorklog struct {
	IssueID          string     `json:"issueId"`
	Author           *RawAuthor `json:"author"`
	Started          string     `json:"started"`
	TimeSpentSeconds int64      `json:"timeSpentSeconds"`
}

// RawAuthor автор записи worklog.
type RawAuthor struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
}

// UpdatedWorklogsPage представляет страницу фида /worklog/updated.
type UpdatedWorklogsPage struct {
	Values   []UpdatedWorklogRef `json:"values"`
	NextPage string              `json:"nextPage"`
	LastPage bool                `json:"lastPage"`
}

// UpdatedWorklogRef ссылка на обновлённую запись worklog.
type UpdatedWorklogRef struct {
	WorklogID int64 `json:"worklogId"`
	IssueID   int64 `json:"issueId"`
}

// RawUser пользователь с раскрытыми группами (expand=groups).
type RawUser struct {
	AccountID string     `json:"accountId"`
	Groups    *RawGroups `json:"groups"`
}

// RawGroups контейнер групп пользователя.
type RawGroups struct {
	Items []RawGroupItem `json:"items"`
}

// RawGroupItem одна группа пользователя.
type RawGroupItem struct {
	Name string `json:"name"`
}

// RawProject ответ /rest/api/3/project/{key}.
type RawProject struct {
	Key             string              `json:"key"`
	Name            string              `json:"name"`
	ProjectCategory *RawProjectCategory `json:"projectCategory"`
}

// RawProjectCategory категория проекта.
type RawProjectCategory struct {
	Name string `json:"name"`
}
