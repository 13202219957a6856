package models

import "time"

// Project представляет проект в Jira вместе с его задачами.
type Project struct {
	Key      string
	Name     string
	Category *string
	Issues   []Issue
}

// Issue представляет нормализованную задачу Jira.
type Issue struct {
	Key         string
	Summary     string
	ProjectKey  string
	Team        *string
	Status      *string
	ParentKey   *string
	WorklogType *string
	Worklogs    []Worklog
}

// Worklog представляет одну запись о затраченном времени.
// StartDate хранит календарную дату (полночь UTC), вычисленную
// в часовом поясе, записанном трекером; nil если дата не распарсилась.
type Worklog struct {
	IssueKey       string     `json:"issue_key"`
	OwnerID        *string    `json:"owner_id"`
	Owner          *string    `json:"owner"`
	StartDate      *time.Time `json:"start_date"`
	TimeSpentHours float64    `json:"time_spent_hr"`
}

// UserLabel хранит метки пользователя по категориям таксономии.
// Категория без совпадений отсутствует в Labels.
type UserLabel struct {
	UserID string
	Labels map[string]string
}
