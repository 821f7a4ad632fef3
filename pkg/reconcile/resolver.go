// Package reconcile implements the attribution-and-reconciliation engine for
// the asset notification run. Given inventory rows carrying two parallel
// identity/band column pairs (Owner and User), it decides which identity is
// responsible for each asset, canonicalizes recipient addresses, applies
// band- and directory-level exemptions, and joins the resolved recipient back
// onto the full dataset together with a per-recipient summary.
package reconcile

import (
	"strings"

	"github.com/itassetops/assetnotify/pkg/records"
)

// Source identifies which identity column attributed an asset.
type Source string

// Attribution sources, in precedence order.
const (
	SourceOwner Source = "Owner"
	SourceUser  Source = "User"
)

// Candidate is the resolved responsible identity for one asset. There is at
// most one Candidate per asset key after resolution.
type Candidate struct {
	AssetKey string
	Email    string
	Band     string
	Source   Source
}

// resolver picks Owner or User as the responsible identity per asset row.
// Owner takes precedence: the second pass only sees rows whose asset key was
// not claimed by the first.
type resolver struct {
	schema *records.Schema
}

// resolve runs the two-pass attribution. Rows are expected to be valid
// (non-empty asset key, no duplicates). Rows with neither identity populated
// produce no candidate.
func (r *resolver) resolve(rows []records.Record) []Candidate {
	candidates := r.pass(rows, records.FieldOwnerEmail, records.FieldOwnerBand, SourceOwner)

	claimed := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		claimed[c.AssetKey] = true
	}

	var remainder []records.Record
	for _, row := range rows {
		if !claimed[r.schema.Value(row, records.FieldAssetKey)] {
			remainder = append(remainder, row)
		}
	}

	return append(candidates, r.pass(remainder, records.FieldUserEmail, records.FieldUserBand, SourceUser)...)
}

// pass emits one candidate per row whose identity email is populated.
func (r *resolver) pass(rows []records.Record, emailField, bandField records.Field, source Source) []Candidate {
	var candidates []Candidate
	for _, row := range rows {
		email := strings.TrimSpace(r.schema.Value(row, emailField))
		if email == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			AssetKey: r.schema.Value(row, records.FieldAssetKey),
			Email:    email,
			Band:     r.schema.Value(row, bandField),
			Source:   source,
		})
	}
	return candidates
}
