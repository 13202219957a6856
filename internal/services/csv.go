package services

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/DevN0mad/JiraReportBot/internal/models"
)

// Маркер порядка байт UTF-8, чтобы таблицы открывались в Excel
// без порчи не-ASCII символов.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV сериализует строки отчета в CSV с BOM и строкой заголовков.
func WriteCSV(rows []models.FlatRow, taxonomy []TaxonomyCategory) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(ReportColumns(taxonomy)); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(rowValues(row, taxonomy)); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
