package records

import (
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/itassetops/assetnotify/pkg/errors"
)

// Field is a semantic field the pipeline understands, independent of how the
// source report names its columns.
type Field string

// Semantic fields used by the reconciliation pipeline.
const (
	FieldAssetKey     Field = "asset_key"
	FieldOwnerEmail   Field = "owner_email"
	FieldOwnerBand    Field = "owner_band"
	FieldUserEmail    Field = "user_email"
	FieldUserBand     Field = "user_band"
	FieldManufacturer Field = "manufacturer"
	FieldModel        Field = "model"
	FieldRecipient    Field = "recipient"
)

// requiredFields must all be mapped before the pipeline may run.
var requiredFields = []Field{
	FieldAssetKey,
	FieldOwnerEmail,
	FieldOwnerBand,
	FieldUserEmail,
	FieldUserBand,
}

// DefaultRecipientColumn names the output column when the schema does not
// map one explicitly.
const DefaultRecipientColumn = "Notification Email"

// Schema maps source column names to semantic fields. It is external
// configuration: the same engine serves reports with different headers.
type Schema struct {
	// Columns maps a source column name to a semantic field.
	Columns map[string]Field `yaml:"columns"`
}

// LoadSchema reads a schema from a YAML file and validates it.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every required semantic field has a source column.
func (s *Schema) Validate() error {
	if len(s.Columns) == 0 {
		return errors.NewConfigError("schema", "no column mapping configured", nil)
	}

	mapped := make(map[Field]bool, len(s.Columns))
	for column, field := range s.Columns {
		if strings.TrimSpace(column) == "" {
			return errors.NewConfigError("schema", "empty source column name", nil)
		}
		if mapped[field] {
			return errors.NewConfigError("schema", "field "+string(field)+" mapped twice", nil)
		}
		mapped[field] = true
	}

	for _, f := range requiredFields {
		if !mapped[f] {
			return errors.NewConfigError("schema", "required field "+string(f)+" not mapped", nil)
		}
	}
	return nil
}

// Column returns the source column mapped to the given field.
func (s *Schema) Column(f Field) (string, bool) {
	for column, field := range s.Columns {
		if field == f {
			return column, true
		}
	}
	return "", false
}

// RecipientColumn returns the output column carrying the resolved recipient.
func (s *Schema) RecipientColumn() string {
	if column, ok := s.Column(FieldRecipient); ok {
		return column
	}
	return DefaultRecipientColumn
}

// Value reads the semantic field from a record via the column mapping.
func (s *Schema) Value(r Record, f Field) string {
	column, ok := s.Column(f)
	if !ok {
		return ""
	}
	return r.Get(column)
}
