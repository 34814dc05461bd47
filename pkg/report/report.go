// Package report renders listings as XLSX workbooks.
package report

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Column struct {
	Title string
	Width float64
}

// Sheet is a single-sheet table. Cell values are written as given: numbers stay numbers.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

func (s *Sheet) AddRow(values ...any) {
	s.Rows = append(s.Rows, values)
}

// Write renders the sheet with a header row.
func (s Sheet) Write(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	name := s.Name
	if name == "" {
		name = "Sheet1"
	}
	index, err := f.NewSheet(name)
	if err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	f.SetActiveSheet(index)
	if name != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	for col, c := range s.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, c.Title); err != nil {
			return err
		}
		if c.Width > 0 {
			letter, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(name, letter, letter, c.Width); err != nil {
				return err
			}
		}
	}
	for r, row := range s.Rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, value); err != nil {
				return fmt.Errorf("failed to write %s: %w", cell, err)
			}
		}
	}
	return f.Write(w)
}

// Serve writes the sheet as a download named prefix_YYYYMMDD.xlsx.
func Serve(w http.ResponseWriter, sheet Sheet, prefix string, now time.Time) error {
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s_%s.xlsx\"", prefix, now.Format("20060102")))
	return sheet.Write(w)
}

// Date renders the date part of an upstream timestamp ("2024-03-31T00:00:00.000Z")
// as dd/mm/yyyy. Anything else is returned unchanged.
func Date(s string) string {
	if len(s) < 10 {
		return s
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}
