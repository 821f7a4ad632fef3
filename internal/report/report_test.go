package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itassetops/assetnotify/pkg/reconcile"
	"github.com/itassetops/assetnotify/pkg/records"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	columns := []string{"SN", "Model", "Notification Email"}
	rows := []records.Record{
		records.New(columns, map[string]string{"SN": "A1", "Model": "T480", "Notification Email": "a@co.com"}),
		records.New(columns, map[string]string{"SN": "A2", "Model": "X1", "Notification Email": ""}),
	}

	err := Write(path,
		FromRecords("Data", rows),
		FromSummary("Summary", "Notification Email", "Assets", []reconcile.SummaryRow{
			{Recipient: "a@co.com", Assets: 1},
			{Recipient: "Total", Assets: 1},
		}),
	)
	require.NoError(t, err)

	got, err := ReadSheet(path, "Data")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, columns, got[0].Columns())
	assert.Equal(t, "A1", got[0].Get("SN"))
	assert.Equal(t, "a@co.com", got[0].Get("Notification Email"))

	// The second row's trailing empty cell reads back as empty.
	assert.Equal(t, "A2", got[1].Get("SN"))
	assert.Empty(t, got[1].Get("Notification Email"))

	summary, err := ReadSheet(path, "Summary")
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "a@co.com", summary[0].Get("Notification Email"))
	assert.Equal(t, "1", summary[0].Get("Assets"))
	assert.Equal(t, "Total", summary[1].Get("Notification Email"))
}

func TestReadSheetSkipsEmptyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	err := Write(path, Sheet{
		Name:    "Data",
		Columns: []string{"SN", "Model"},
		Rows: [][]string{
			{"A1", "T480"},
			{"", ""},
			{"A2", ""},
		},
	})
	require.NoError(t, err)

	got, err := ReadSheet(path, "Data")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A1", got[0].Get("SN"))
	assert.Equal(t, "A2", got[1].Get("SN"))
}

func TestReadSheetMissingFile(t *testing.T) {
	_, err := ReadSheet(filepath.Join(t.TempDir(), "absent.xlsx"), "Data")
	require.Error(t, err)
}

func TestReadSheetMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, Write(path, Sheet{Name: "Data", Columns: []string{"SN"}}))

	_, err := ReadSheet(path, "Nope")
	require.Error(t, err)
}

func TestWriteRequiresSheets(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "report.xlsx"))
	require.Error(t, err)
}

func TestFromRecordsEmpty(t *testing.T) {
	s := FromRecords("Data", nil)
	assert.Equal(t, "Data", s.Name)
	assert.Empty(t, s.Columns)
	assert.Empty(t, s.Rows)
}

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 2, displayWidth("SN"))
	assert.Equal(t, 4, displayWidth("资产"))
	assert.Equal(t, 6, displayWidth("SN资产"))
}
