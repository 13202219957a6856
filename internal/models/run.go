package models

import "time"

// ReportRun запись об одной генерации отчета.
type ReportRun struct {
	ID        uint      `gorm:"column:id;primaryKey" db:"id"`
	Scope     string    `gorm:"column:scope;not null" db:"scope"`
	StartDate string    `gorm:"column:start_date" db:"start_date"`
	EndDate   string    `gorm:"column:end_date" db:"end_date"`
	Format    string    `gorm:"column:format;not null" db:"format"`
	Filename  string    `gorm:"column:filename" db:"filename"`
	RowCount  int       `gorm:"column:row_count" db:"row_count"`
	Status    string    `gorm:"column:status;not null" db:"status"`
	Error     string    `gorm:"column:error" db:"error"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" db:"created_at"`
}

func (ReportRun) TableName() string {
	return "report_runs"
}
