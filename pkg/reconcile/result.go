package reconcile

import (
	"time"

	"github.com/itassetops/assetnotify/pkg/records"
)

// TotalRecipient is the synthetic recipient of the summary's total row.
const TotalRecipient = "Total"

// SummaryRow is one per-recipient aggregate in the reconciliation summary.
type SummaryRow struct {
	Recipient string
	Assets    int
}

// Result represents the outcome of a reconciliation run.
type Result struct {
	// Rows holds every valid input row exactly once, with the recipient
	// column filled in or left empty. Nothing is duplicated or dropped by
	// the join, so the full dataset stays exportable for audit.
	Rows []records.Record

	// Notifiable is Rows after the optional manufacturer filter. It feeds
	// the summary and the notification dispatcher.
	Notifiable []records.Record

	// Summary maps recipients to asset counts, sorted by count descending,
	// with a Total row appended.
	Summary []SummaryRow

	// Warnings collects recovered data-quality issues (missing keys,
	// duplicate keys, malformed bands, failed oracle lookups).
	Warnings []string

	// Metadata about the run.
	Metadata ResultMetadata
}

// ResultMetadata contains metadata about the reconciliation process.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Stats     ResultStatistics
}

// ResultStatistics counts what happened to the input rows.
type ResultStatistics struct {
	RowsIn          int
	RowsInvalid     int // missing asset key
	RowsDuplicate   int // duplicate asset key, first occurrence kept
	OwnerAttributed int
	UserAttributed  int
	Unattributed    int
	BandExempted    int
	OracleExempted  int
}

// NewResult creates a new result with the clock started.
func NewResult() *Result {
	return &Result{
		Metadata: ResultMetadata{StartTime: time.Now()},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

// TotalAssets returns the count carried by the summary's Total row, or 0
// when no summary was produced.
func (r *Result) TotalAssets() int {
	for _, row := range r.Summary {
		if row.Recipient == TotalRecipient {
			return row.Assets
		}
	}
	return 0
}
