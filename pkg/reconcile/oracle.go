package reconcile

import "context"

// ExemptionOracle answers identity-level exemption lookups, such as a VIP
// directory or a high-band directory check. Matching is case-insensitive on
// the email; the engine passes normalized addresses.
//
// Production adapters live outside the core (see internal/directory); tests
// use an in-memory fake.
type ExemptionOracle interface {
	IsExempt(ctx context.Context, email string) (bool, error)
}
