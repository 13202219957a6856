package services

import (
	"sort"
	"strconv"
	"time"

	"github.com/DevN0mad/JiraReportBot/internal/models"
)

// Flatten разворачивает дерево проект -> задача -> worklog в плоские
// строки, по одной на каждую запись worklog, с левым присоединением
// меток владельца. Задача без worklog строк не дает. Входные данные
// не изменяются.
func Flatten(projects []models.Project, labels map[string]models.UserLabel) []models.FlatRow {
	var rows []models.FlatRow
	for _, project := range projects {
		for _, issue := range project.Issues {
			for _, wl := range issue.Worklogs {
				row := models.FlatRow{
					ProjectName:     project.Name,
					ProjectKey:      project.Key,
					ProjectCategory: project.Category,
					IssueName:       issue.Summary,
					IssueKey:        issue.Key,
					IssueTeam:       issue.Team,
					IssueStatus:     issue.Status,
					WorklogOwner:    wl.Owner,
					WorklogOwnerID:  wl.OwnerID,
					StartDate:       wl.StartDate,
					TimeSpentHours:  wl.TimeSpentHours,
					ParentKey:       issue.ParentKey,
					WorklogType:     issue.WorklogType,
				}
				if wl.OwnerID != nil {
					if label, ok := labels[*wl.OwnerID]; ok {
						row.OwnerLabels = label.Labels
					}
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// FilterRange оставляет строки с датой в полуоткрытом интервале
// [start, end). Строки без распознанной даты отбрасываются до фильтра.
func FilterRange(rows []models.FlatRow, start, end time.Time) []models.FlatRow {
	filtered := make([]models.FlatRow, 0, len(rows))
	for _, row := range rows {
		if row.StartDate == nil {
			continue
		}
		if !row.StartDate.Before(start) && row.StartDate.Before(end) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// SummarizeByOwnerMonth сводит часы по (владелец, месяц): пустые ячейки
// заполняются нулями, добавляется итоговая колонка, строки сортируются
// по итогу по убыванию.
func SummarizeByOwnerMonth(rows []models.FlatRow) models.OwnerMonthSummary {
	monthSet := make(map[string]struct{})
	hoursByOwner := make(map[string]map[string]float64)

	for _, row := range rows {
		if row.StartDate == nil {
			continue
		}
		owner := summaryOwner(row)
		if owner == "" {
			continue
		}
		month := row.StartDate.Format("2006-01")
		monthSet[month] = struct{}{}
		if hoursByOwner[owner] == nil {
			hoursByOwner[owner] = make(map[string]float64)
		}
		hoursByOwner[owner][month] += row.TimeSpentHours
	}

	months := make([]string, 0, len(monthSet))
	for month := range monthSet {
		months = append(months, month)
	}
	sort.Strings(months)

	summary := models.OwnerMonthSummary{Months: months}
	for owner, byMonth := range hoursByOwner {
		row := models.OwnerSummaryRow{Owner: owner, Hours: make(map[string]float64, len(months))}
		for _, month := range months {
			hours := byMonth[month]
			row.Hours[month] = hours
			row.Total += hours
		}
		summary.Rows = append(summary.Rows, row)
	}

	sort.Slice(summary.Rows, func(i, j int) bool {
		if summary.Rows[i].Total != summary.Rows[j].Total {
			return summary.Rows[i].Total > summary.Rows[j].Total
		}
		return summary.Rows[i].Owner < summary.Rows[j].Owner
	})

	return summary
}

// summaryOwner выбирает подпись владельца: отображаемое имя,
// иначе идентификатор аккаунта.
func summaryOwner(row models.FlatRow) string {
	if row.WorklogOwner != nil && *row.WorklogOwner != "" {
		return *row.WorklogOwner
	}
	if row.WorklogOwnerID != nil {
		return *row.WorklogOwnerID
	}
	return ""
}

// ReportColumns возвращает колонки отчета: атрибуты проекта, задачи и
// worklog, колонки меток таксономии, и два классификационных поля
// последними.
func ReportColumns(taxonomy []TaxonomyCategory) []string {
	cols := []string{
		"project_name",
		"project_key",
		"project_category",
		"issues_name",
		"issues_key",
		"issues_team",
		"issues_status",
		"worklog_owner",
		"worklog_owner_id",
		"worklog_start_date",
		"worklog_time_spent_hr",
	}
	for _, cat := range taxonomy {
		cols = append(cols, cat.Column)
	}
	return append(cols, "Parent_Key", "Worklog_Type")
}

// rowValues возвращает значения строки в порядке ReportColumns.
func rowValues(row models.FlatRow, taxonomy []TaxonomyCategory) []string {
	values := []string{
		row.ProjectName,
		row.ProjectKey,
		derefString(row.ProjectCategory),
		row.IssueName,
		row.IssueKey,
		derefString(row.IssueTeam),
		derefString(row.IssueStatus),
		derefString(row.WorklogOwner),
		derefString(row.WorklogOwnerID),
		formatDate(row.StartDate),
		strconv.FormatFloat(row.TimeSpentHours, 'f', -1, 64),
	}
	for _, cat := range taxonomy {
		values = append(values, row.OwnerLabels[cat.Category])
	}
	return append(values, derefString(row.ParentKey), derefString(row.WorklogType))
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format("2006-01-02")
}
