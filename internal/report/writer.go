package report

import (
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/itassetops/assetnotify/pkg/errors"
	"github.com/itassetops/assetnotify/pkg/reconcile"
	"github.com/itassetops/assetnotify/pkg/records"
)

// Sheet is one worksheet of tabular output.
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// FromRecords builds a sheet from records, using the first record's column
// order for the layout.
func FromRecords(name string, rows []records.Record) Sheet {
	s := Sheet{Name: name}
	if len(rows) == 0 {
		return s
	}
	s.Columns = rows[0].Columns()
	for _, row := range rows {
		cells := make([]string, len(s.Columns))
		for i, column := range s.Columns {
			cells[i] = row.Get(column)
		}
		s.Rows = append(s.Rows, cells)
	}
	return s
}

// FromSummary builds the per-recipient summary sheet.
func FromSummary(name, recipientColumn, countColumn string, summary []reconcile.SummaryRow) Sheet {
	s := Sheet{Name: name, Columns: []string{recipientColumn, countColumn}}
	for _, row := range summary {
		s.Rows = append(s.Rows, []string{row.Recipient, strconv.Itoa(row.Assets)})
	}
	return s
}

// Write saves the sheets to an xlsx workbook with styled headers and
// display-width-based column sizing.
func Write(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return errors.NewValidationError("sheets", nil, "no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"5B9BD5"}, Pattern: 1},
	})
	if err != nil {
		return errors.WrapIO("style", path, err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return errors.WrapIO("write", path, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return errors.WrapIO("write", path, err)
		}
		if err := writeSheet(f, sheet, header); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.WrapIO("save", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet Sheet, headerStyle int) error {
	for i, column := range sheet.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet.Name, cell, column); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.Name, cell, cell, headerStyle); err != nil {
			return err
		}

		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, name, name, float64(displayWidth(column)+4)); err != nil {
			return err
		}
	}

	for r, row := range sheet.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet.Name, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}
