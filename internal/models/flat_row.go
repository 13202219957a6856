package models

import "time"

// FlatRow одна денормализованная строка отчета:
// (проект, задача, worklog) + метки владельца worklog.
type FlatRow struct {
	ProjectName     string
	ProjectKey      string
	ProjectCategory *string
	IssueName       string
	IssueKey        string
	IssueTeam       *string
	IssueStatus     *string
	WorklogOwner    *string
	WorklogOwnerID  *string
	StartDate       *time.Time
	TimeSpentHours  float64
	OwnerLabels     map[string]string
	ParentKey       *string
	WorklogType     *string
}

// OwnerMonthSummary сводная таблица часов по (владелец, месяц).
// Months отсортированы по возрастанию, Rows по Total убыванию.
type OwnerMonthSummary struct {
	Months []string
	Rows   []OwnerSummaryRow
}

// OwnerSummaryRow строка сводной таблицы для одного владельца.
type OwnerSummaryRow struct {
	Owner string
	Hours map[string]float64
	Total float64
}
