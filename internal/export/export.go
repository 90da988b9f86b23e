// Package export renders report tables as Excel workbooks.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/agrocoop/farmdesk/internal/reports"
	"github.com/xuri/excelize/v2"
)

const (
	maxSheetName = 31
	columnWidth  = 18
)

// SheetName returns the worksheet name used for t.
func SheetName(t reports.Table) string {
	name := t.Title
	if name == "" {
		name = t.Name
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

// Workbook builds a single-sheet workbook with a bold, frozen header row.
// Cells that parse as numbers are stored as numbers. The caller closes the
// returned file.
func Workbook(t reports.Table) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := SheetName(t)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := fill(f, sheet, t); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("build %s workbook: %w", t.Name, err)
	}
	return f, nil
}

func fill(f *excelize.File, sheet string, t reports.Table) error {
	if err := f.SetDocProps(&excelize.DocProperties{Title: t.Title, Creator: "farmdesk"}); err != nil {
		return err
	}

	header := make([]any, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}

	if len(t.Columns) == 0 {
		return nil
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(t.Columns))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, columnWidth); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func cellValue(v string) any {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// Write renders t as an xlsx workbook to w.
func Write(w io.Writer, t reports.Table) error {
	f, err := Workbook(t)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// Bytes renders t as an xlsx workbook.
func Bytes(t reports.Table) ([]byte, error) {
	f, err := Workbook(t)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
