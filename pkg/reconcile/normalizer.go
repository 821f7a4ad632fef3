package reconcile

import (
	"regexp"
	"strings"
)

// Normalizer canonicalizes raw email strings. Visually similar variants of a
// corporate address ("X@Co.COM ", "x@co.com.", "x@co.com;") collapse to one
// canonical form so recipient grouping and deduplication work on a single key.
type Normalizer struct {
	domain string
	noise  *regexp.Regexp
}

// NewNormalizer creates a Normalizer for the given corporate domain suffix
// (e.g. "co.com"). An empty domain disables the suffix cleanup; trimming and
// lowercasing still apply.
func NewNormalizer(domain string) *Normalizer {
	n := &Normalizer{domain: strings.ToLower(strings.TrimSpace(domain))}
	if n.domain != "" {
		// Punctuation or whitespace trailing the domain suffix is export
		// noise; letters are not, they may start a different TLD label.
		n.noise = regexp.MustCompile(`@` + regexp.QuoteMeta(n.domain) + `[^a-zA-Z]*`)
	}
	return n
}

// Normalize trims, lowercases, and collapses domain-suffix noise back to the
// bare suffix. It is idempotent: Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(email string) string {
	out := strings.ToLower(strings.TrimSpace(email))
	if n.noise != nil {
		out = n.noise.ReplaceAllString(out, "@"+n.domain)
	}
	return out
}
