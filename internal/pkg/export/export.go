// Package export writes tabular data as spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

// Table is one sheet of an export. Title, when set, is written above the
// header row.
type Table struct {
	Sheet   string
	Title   string
	Headers []string
	Widths  []float64
	Rows    [][]interface{}
}

// WriteXLSX streams every table into its own sheet of one workbook.
func WriteXLSX(w io.Writer, tables ...Table) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, t := range tables {
		if i == 0 {
			f.SetSheetName("Sheet1", t.Sheet)
		} else if _, err := f.NewSheet(t.Sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", t.Sheet, err)
		}

		sw, err := f.NewStreamWriter(t.Sheet)
		if err != nil {
			return fmt.Errorf("failed to create stream writer: %w", err)
		}
		for col, width := range t.Widths {
			if err := sw.SetColWidth(col+1, col+1, width); err != nil {
				return fmt.Errorf("failed to set column width: %w", err)
			}
		}

		row := 1
		if t.Title != "" {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := sw.SetRow(cell, []interface{}{t.Title}, excelize.RowOpts{StyleID: bold}); err != nil {
				return fmt.Errorf("failed to write title: %w", err)
			}
			row += 2
		}

		headers := make([]interface{}, len(t.Headers))
		for j, h := range t.Headers {
			headers[j] = excelize.Cell{StyleID: header, Value: h}
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := sw.SetRow(cell, headers); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		row++

		for _, values := range t.Rows {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := sw.SetRow(cell, values); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}

		if err := sw.Flush(); err != nil {
			return fmt.Errorf("failed to flush sheet %s: %w", t.Sheet, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteCSV writes the header and rows of each table. Titles are omitted.
// Tables after the first are set off by a blank line and a row holding the
// sheet name.
func WriteCSV(w io.Writer, tables ...Table) error {
	cw := csv.NewWriter(w)
	for i, t := range tables {
		if i > 0 {
			cw.Flush()
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("failed to write csv section break: %w", err)
			}
			if err := cw.Write([]string{t.Sheet}); err != nil {
				return fmt.Errorf("failed to write csv section: %w", err)
			}
		}
		if err := cw.Write(t.Headers); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		for _, values := range t.Rows {
			record := make([]string, len(values))
			for i, v := range values {
				record[i] = format(v)
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func format(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}
