// Package export writes query result rows to xlsx workbooks so analysts can
// pick them up without touching the database.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

type Excel struct {
	dir    string
	logger *slog.Logger
}

func New(dir string, logger *slog.Logger) *Excel {
	return &Excel{
		dir:    dir,
		logger: logger.With("component", "export"),
	}
}

// Export writes one workbook per node result, named after the execution and
// node so reruns never collide across executions.
func (e *Excel) Export(rows []map[string]interface{}, executionID, nodeID string) (string, error) {
	if len(rows) == 0 {
		return "", domain.NewConfigurationError("nothing to export", nil)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", err
	}

	columns := columnOrder(rows[0])

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
	})
	if err != nil {
		return "", err
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return "", err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return "", err
		}
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}

	for rowIdx, row := range rows {
		for colIdx, col := range columns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return "", err
			}
			value := row[col]
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return "", err
			}
			if width := len(fmt.Sprintf("%v", value)); width > widths[colIdx] {
				widths[colIdx] = width
			}
		}
	}

	for i := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return "", err
		}
		width := float64(widths[i] + 2)
		if width > 80 {
			width = 80
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return "", err
		}
	}

	path := filepath.Join(e.dir, fmt.Sprintf("query_result_%s_%s.xlsx", executionID, nodeID))
	if err := f.SaveAs(path); err != nil {
		return "", err
	}

	e.logger.Info("query results exported", "path", path, "rows", len(rows))
	return path, nil
}

// columnOrder is alphabetical; row maps carry no column ordering of their
// own.
func columnOrder(row map[string]interface{}) []string {
	columns := make([]string, 0, len(row))
	for col := range row {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}
