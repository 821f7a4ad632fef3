package reconcile

import (
	"github.com/itassetops/assetnotify/pkg/errors"
	"github.com/itassetops/assetnotify/pkg/records"
)

// options configures an Engine.
type options struct {
	schema        *records.Schema
	threshold     int
	thresholdSet  bool
	manufacturers []string
	domain        string
	oracle        ExemptionOracle
}

// Option is a function that configures an Engine.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns engine options with defaults applied and required
// settings validated.
func newOptions(opts ...Option) (*options, error) {
	o, err := (&options{}).apply(opts...)
	if err != nil {
		return nil, err
	}

	if o.schema == nil {
		return nil, errors.NewConfigError("reconcile", "column schema is required", nil)
	}
	if !o.thresholdSet {
		return nil, errors.NewConfigError("reconcile", "notification band threshold is required", nil)
	}
	return o, nil
}

// WithSchema sets the source column mapping. Required.
func WithSchema(schema *records.Schema) Option {
	return func(o *options) error {
		if schema == nil {
			return &errors.ValidationError{Field: "schema", Message: "cannot be nil"}
		}
		if err := schema.Validate(); err != nil {
			return err
		}
		o.schema = schema
		return nil
	}
}

// WithBandThreshold sets the band at or above which a recipient is exempt
// from notification. Required; must be non-negative.
func WithBandThreshold(threshold int) Option {
	return func(o *options) error {
		if threshold < 0 {
			return &errors.ValidationError{
				Field:   "threshold",
				Value:   threshold,
				Message: "must be non-negative",
			}
		}
		o.threshold = threshold
		o.thresholdSet = true
		return nil
	}
}

// WithManufacturerFilter keeps only rows whose manufacturer column contains
// one of the given substrings, case-insensitively. An empty list disables
// the filter.
func WithManufacturerFilter(manufacturers []string) Option {
	return func(o *options) error {
		o.manufacturers = manufacturers
		return nil
	}
}

// WithDomain sets the corporate domain suffix for email normalization.
func WithDomain(domain string) Option {
	return func(o *options) error {
		o.domain = domain
		return nil
	}
}

// WithOracle sets an identity-level exemption oracle, applied to normalized
// recipient addresses after the band filter.
func WithOracle(oracle ExemptionOracle) Option {
	return func(o *options) error {
		o.oracle = oracle
		return nil
	}
}
