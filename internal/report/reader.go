// Package report reads the inventory export and writes the reconciled
// workbook. It is a pure serialization boundary: the pipeline itself only
// sees abstract tabular records.
package report

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/itassetops/assetnotify/pkg/errors"
	"github.com/itassetops/assetnotify/pkg/records"
)

// ReadSheet loads one worksheet into records. The first row supplies the
// column names; short rows are padded with empty values. Fully empty rows
// are skipped.
func ReadSheet(path, sheet string) ([]records.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WrapParse("xlsx", path, err)
	}
	if len(rows) == 0 {
		return nil, errors.NewParseError("xlsx", path, "sheet "+sheet+" has no header row", nil)
	}

	columns := rows[0]
	out := make([]records.Record, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		values := make(map[string]string, len(columns))
		empty := true
		for i, column := range columns {
			v := ""
			if i < len(raw) {
				v = raw[i]
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			values[column] = v
		}
		if empty {
			continue
		}
		out = append(out, records.New(columns, values))
	}
	return out, nil
}
