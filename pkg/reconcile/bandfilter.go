package reconcile

import (
	"fmt"
	"strconv"
	"strings"
)

// bandFilter removes candidates whose recipient is exempt by band.
// Attribution is asset-level but exemption is recipient-level: the maximum
// band is computed over every candidate currently attributed to the same
// address, and the whole group is dropped once that maximum reaches the
// threshold. Candidates arrive with normalized addresses so that variants
// of one recipient fall into a single group.
type bandFilter struct {
	threshold int
}

// filter applies the recipient-level band exemption. A malformed or missing
// band value is "unknown": it is excluded from the group maximum rather than
// coerced to zero, so it neither exempts a group on its own nor masks the
// real bands of other members. Groups with no numeric band at all pass
// through unfiltered. Returned warnings describe malformed band values.
func (f *bandFilter) filter(candidates []Candidate) (kept []Candidate, exempted int, warnings []string) {
	maxBand := make(map[string]int)
	hasBand := make(map[string]bool)

	for _, c := range candidates {
		band, ok, warn := parseBand(c.Band)
		if warn != "" {
			warnings = append(warnings, fmt.Sprintf("asset %s: %s", c.AssetKey, warn))
		}
		if !ok {
			continue
		}
		if !hasBand[c.Email] || band > maxBand[c.Email] {
			maxBand[c.Email] = band
		}
		hasBand[c.Email] = true
	}

	for _, c := range candidates {
		if hasBand[c.Email] && maxBand[c.Email] >= f.threshold {
			exempted++
			continue
		}
		kept = append(kept, c)
	}
	return kept, exempted, warnings
}

// parseBand coerces a raw band value to an int. ok is false for missing or
// malformed values; only malformed values produce a warning.
func parseBand(raw string) (band int, ok bool, warning string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false, ""
	}

	// Band columns occasionally arrive as floats ("8.0") from the export.
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false, fmt.Sprintf("malformed band value %q excluded from exemption", raw)
	}
	return int(v), true, ""
}
