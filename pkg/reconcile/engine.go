package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/itassetops/assetnotify/pkg/logging"
	"github.com/itassetops/assetnotify/pkg/records"
)

// Engine orchestrates the reconciliation pipeline: attribution,
// normalization, band exemption, optional directory exemption, the recipient
// join, and the per-recipient summary. Reconcile is a pure transformation
// over the input rows: the same input always yields the same output.
type Engine struct {
	schema        *records.Schema
	resolver      *resolver
	bands         *bandFilter
	normalizer    *Normalizer
	oracle        ExemptionOracle
	manufacturers []string
}

// New creates an Engine with options. A schema and a band threshold are
// required; everything else defaults off.
func New(opts ...Option) (*Engine, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Engine{
		schema:        o.schema,
		resolver:      &resolver{schema: o.schema},
		bands:         &bandFilter{threshold: o.threshold},
		normalizer:    NewNormalizer(o.domain),
		oracle:        o.oracle,
		manufacturers: o.manufacturers,
	}, nil
}

// Reconcile resolves one recipient per asset and produces the joined
// dataset plus the per-recipient summary. Data-quality problems never abort
// the run; they surface as warnings on the result.
func (e *Engine) Reconcile(ctx context.Context, rows []records.Record) (*Result, error) {
	logger := logging.FromContext(ctx)
	result := NewResult()
	result.Metadata.Stats.RowsIn = len(rows)

	valid := e.validate(rows, result)

	candidates := e.resolver.resolve(valid)
	for _, c := range candidates {
		switch c.Source {
		case SourceOwner:
			result.Metadata.Stats.OwnerAttributed++
		case SourceUser:
			result.Metadata.Stats.UserAttributed++
		}
	}
	result.Metadata.Stats.Unattributed = len(valid) - len(candidates)

	// Normalization must precede the band filter: case and suffix-noise
	// variants of one address are one recipient group, and the group
	// maximum is computed over all of it.
	for i := range candidates {
		candidates[i].Email = e.normalizer.Normalize(candidates[i].Email)
	}

	kept, exempted, warnings := e.bands.filter(candidates)
	result.Metadata.Stats.BandExempted = exempted
	result.Warnings = append(result.Warnings, warnings...)

	kept = e.exemptByOracle(ctx, kept, result)

	e.join(valid, kept, result)
	e.filterManufacturers(result)
	e.summarize(result)

	result.Finalize()
	logger.Info().
		Int("rows", result.Metadata.Stats.RowsIn).
		Int("owner_attributed", result.Metadata.Stats.OwnerAttributed).
		Int("user_attributed", result.Metadata.Stats.UserAttributed).
		Int("band_exempted", result.Metadata.Stats.BandExempted).
		Int("warnings", len(result.Warnings)).
		Dur("duration", result.Metadata.Duration).
		Msg("Reconciliation complete")
	return result, nil
}

// validate drops rows without an asset key and later occurrences of a
// duplicated key. Both are recoverable data-quality errors.
func (e *Engine) validate(rows []records.Record, result *Result) []records.Record {
	seen := make(map[string]bool, len(rows))
	valid := make([]records.Record, 0, len(rows))

	for _, row := range rows {
		key := strings.TrimSpace(e.schema.Value(row, records.FieldAssetKey))
		if key == "" {
			result.Metadata.Stats.RowsInvalid++
			continue
		}
		if seen[key] {
			result.Metadata.Stats.RowsDuplicate++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("duplicate asset key %s: row dropped, first occurrence kept", key))
			continue
		}
		seen[key] = true
		valid = append(valid, row)
	}

	if result.Metadata.Stats.RowsInvalid > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d rows without an asset key dropped", result.Metadata.Stats.RowsInvalid))
	}
	return valid
}

// exemptByOracle drops candidates whose recipient the oracle marks exempt.
// A failed lookup counts as not exempt and produces a warning.
func (e *Engine) exemptByOracle(ctx context.Context, candidates []Candidate, result *Result) []Candidate {
	if e.oracle == nil {
		return candidates
	}

	exempt := make(map[string]bool)
	checked := make(map[string]bool)
	for _, c := range candidates {
		if checked[c.Email] {
			continue
		}
		checked[c.Email] = true

		isExempt, err := e.oracle.IsExempt(ctx, c.Email)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("exemption lookup for %s failed, treating as not exempt: %v", c.Email, err))
			continue
		}
		exempt[c.Email] = isExempt
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if exempt[c.Email] {
			result.Metadata.Stats.OracleExempted++
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// join fills the recipient column on every valid row. Rows with no surviving
// candidate get the empty recipient; they stay in the dataset for audit.
func (e *Engine) join(valid []records.Record, candidates []Candidate, result *Result) {
	recipients := make(map[string]string, len(candidates))
	for _, c := range candidates {
		recipients[c.AssetKey] = c.Email
	}

	column := e.schema.RecipientColumn()
	result.Rows = make([]records.Record, 0, len(valid))
	for _, row := range valid {
		key := strings.TrimSpace(e.schema.Value(row, records.FieldAssetKey))
		result.Rows = append(result.Rows, row.With(column, recipients[key]))
	}
}

// filterManufacturers narrows the notifiable set to configured manufacturer
// substrings. With no filter configured every row is notifiable.
func (e *Engine) filterManufacturers(result *Result) {
	if len(e.manufacturers) == 0 {
		result.Notifiable = result.Rows
		return
	}

	column, ok := e.schema.Column(records.FieldManufacturer)
	if !ok {
		result.Warnings = append(result.Warnings,
			"manufacturer filter configured but no manufacturer column mapped; filter skipped")
		result.Notifiable = result.Rows
		return
	}

	result.Notifiable = make([]records.Record, 0, len(result.Rows))
	for _, row := range result.Rows {
		manufacturer := strings.ToLower(row.Get(column))
		if manufacturer == "" {
			continue
		}
		for _, m := range e.manufacturers {
			if strings.Contains(manufacturer, strings.ToLower(m)) {
				result.Notifiable = append(result.Notifiable, row)
				break
			}
		}
	}
}

// summarize groups the notifiable rows by recipient, sorts by count
// descending (recipient ascending on ties), and appends the Total row.
func (e *Engine) summarize(result *Result) {
	column := e.schema.RecipientColumn()
	counts := make(map[string]int)
	for _, row := range result.Notifiable {
		counts[row.Get(column)]++
	}

	summary := make([]SummaryRow, 0, len(counts)+1)
	total := 0
	for recipient, n := range counts {
		summary = append(summary, SummaryRow{Recipient: recipient, Assets: n})
		total += n
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].Assets != summary[j].Assets {
			return summary[i].Assets > summary[j].Assets
		}
		return summary[i].Recipient < summary[j].Recipient
	})

	result.Summary = append(summary, SummaryRow{Recipient: TotalRecipient, Assets: total})
}
