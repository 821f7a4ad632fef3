// Package directory provides production ExemptionOracle adapters backed by
// the employee directory databases: a VIP list and an employee band view.
package directory

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/itassetops/assetnotify/pkg/errors"
)

// querier is the subset of pgx used by the oracles. *pgxpool.Pool satisfies
// it; tests substitute a stub.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// VIPOracle marks an identity exempt when its email appears in the VIP
// directory. Matching is case-insensitive.
type VIPOracle struct {
	db querier
}

// NewVIPOracle creates a VIPOracle over the given connection pool.
func NewVIPOracle(db querier) *VIPOracle {
	return &VIPOracle{db: db}
}

// IsExempt implements reconcile.ExemptionOracle.
func (o *VIPOracle) IsExempt(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := o.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM china_vip WHERE lower(email) = lower($1))`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, errors.WrapIO("query", "china_vip", err)
	}
	return exists, nil
}

// BandOracle marks an identity exempt when the employee directory records a
// band at or above the configured minimum. A missing employee or an
// unparsable band value is not exempt.
type BandOracle struct {
	db      querier
	minBand int
}

// NewBandOracle creates a BandOracle with the given exemption floor.
func NewBandOracle(db querier, minBand int) *BandOracle {
	return &BandOracle{db: db, minBand: minBand}
}

// IsExempt implements reconcile.ExemptionOracle.
func (o *BandOracle) IsExempt(ctx context.Context, email string) (bool, error) {
	var band *string
	err := o.db.QueryRow(ctx,
		`SELECT band FROM v_employee_itasset WHERE lower(email_primary_work) = lower($1)`,
		email,
	).Scan(&band)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapIO("query", "v_employee_itasset", err)
	}
	if band == nil {
		return false, nil
	}

	value, err := strconv.Atoi(strings.TrimSpace(*band))
	if err != nil {
		return false, nil
	}
	return value >= o.minBand, nil
}

// Any combines oracles: an identity is exempt when any member says so.
// The first lookup error short-circuits so the engine can surface it.
type Any []interface {
	IsExempt(ctx context.Context, email string) (bool, error)
}

// IsExempt implements reconcile.ExemptionOracle.
func (a Any) IsExempt(ctx context.Context, email string) (bool, error) {
	for _, oracle := range a {
		exempt, err := oracle.IsExempt(ctx, email)
		if err != nil {
			return false, err
		}
		if exempt {
			return true, nil
		}
	}
	return false, nil
}

// Static is an in-memory oracle for tests and dry runs. Addresses are
// matched case-insensitively.
type Static map[string]bool

// IsExempt implements reconcile.ExemptionOracle.
func (s Static) IsExempt(_ context.Context, email string) (bool, error) {
	return s[strings.ToLower(email)], nil
}
