package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/DevN0mad/JiraReportBot/internal/models"
)

const (
	detailSheet  = "Worklogs"
	summarySheet = "Summary"
)

// WriteExcel создает книгу с листом детализации и, если передана
// сводная таблица, листом Summary.
func WriteExcel(rows []models.FlatRow, taxonomy []TaxonomyCategory, summary *models.OwnerMonthSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	detailIndex, err := f.NewSheet(detailSheet)
	if err != nil {
		return nil, fmt.Errorf("create detail sheet: %w", err)
	}

	headers := ReportColumns(taxonomy)
	if err := writeSheetRow(f, detailSheet, 1, headers); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := writeSheetRow(f, detailSheet, i+2, rowValues(row, taxonomy)); err != nil {
			return nil, err
		}
	}
	setColumnWidths(f, detailSheet, len(headers), 20)

	if summary != nil {
		if _, err := f.NewSheet(summarySheet); err != nil {
			return nil, fmt.Errorf("create summary sheet: %w", err)
		}

		summaryHeaders := append([]string{"owner"}, summary.Months...)
		summaryHeaders = append(summaryHeaders, "total_time_spent_hr")
		if err := writeSheetRow(f, summarySheet, 1, summaryHeaders); err != nil {
			return nil, err
		}

		for i, row := range summary.Rows {
			values := []any{row.Owner}
			for _, month := range summary.Months {
				values = append(values, row.Hours[month])
			}
			values = append(values, row.Total)
			if err := writeSheetCells(f, summarySheet, i+2, values); err != nil {
				return nil, err
			}
		}
		setColumnWidths(f, summarySheet, len(summaryHeaders), 18)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(detailIndex)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSheetRow записывает строковые значения в строку листа.
func writeSheetRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return writeSheetCells(f, sheet, rowNum, cells)
}

// writeSheetCells записывает значения в строку листа начиная с колонки A.
func writeSheetCells(f *excelize.File, sheet string, rowNum int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}

// setColumnWidths выставляет фиксированную ширину первых n колонок.
func setColumnWidths(f *excelize.File, sheet string, n int, width float64) {
	for i := 0; i < n; i++ {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		f.SetColWidth(sheet, colName, colName, width)
	}
}
