package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

// fakeDB answers every QueryRow with the same scripted row and records the
// arguments it saw.
type fakeDB struct {
	scan func(dest ...any) error
	args []any
}

func (db *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	db.args = args
	return fakeRow{scan: db.scan}
}

func TestVIPOracle(t *testing.T) {
	db := &fakeDB{scan: func(dest ...any) error {
		*(dest[0].(*bool)) = true
		return nil
	}}

	exempt, err := NewVIPOracle(db).IsExempt(context.Background(), "VIP@co.com")
	require.NoError(t, err)
	assert.True(t, exempt)
	assert.Equal(t, []any{"VIP@co.com"}, db.args)
}

func TestVIPOracleQueryError(t *testing.T) {
	db := &fakeDB{scan: func(...any) error {
		return errors.New("connection reset")
	}}

	exempt, err := NewVIPOracle(db).IsExempt(context.Background(), "a@co.com")
	require.Error(t, err)
	assert.False(t, exempt)
}

func TestBandOracle(t *testing.T) {
	band := func(value string) func(dest ...any) error {
		return func(dest ...any) error {
			v := value
			*(dest[0].(**string)) = &v
			return nil
		}
	}

	tests := []struct {
		name    string
		scan    func(dest ...any) error
		minBand int
		want    bool
	}{
		{"at minimum", band("9"), 9, true},
		{"above minimum", band("11"), 9, true},
		{"below minimum", band("8"), 9, false},
		{"padded value", band(" 10 "), 9, true},
		{"unparsable band", band("director"), 9, false},
		{"null band", func(dest ...any) error {
			*(dest[0].(**string)) = nil
			return nil
		}, 9, false},
		{"no such employee", func(...any) error {
			return pgx.ErrNoRows
		}, 9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{scan: tt.scan}
			exempt, err := NewBandOracle(db, tt.minBand).IsExempt(context.Background(), "a@co.com")
			require.NoError(t, err)
			assert.Equal(t, tt.want, exempt)
		})
	}
}

func TestBandOracleQueryError(t *testing.T) {
	db := &fakeDB{scan: func(...any) error {
		return errors.New("connection reset")
	}}

	_, err := NewBandOracle(db, 9).IsExempt(context.Background(), "a@co.com")
	require.Error(t, err)
}

func TestAnyCombinesOracles(t *testing.T) {
	miss := Static{}
	hit := Static{"vip@co.com": true}

	exempt, err := Any{miss, hit}.IsExempt(context.Background(), "VIP@co.com")
	require.NoError(t, err)
	assert.True(t, exempt)

	exempt, err = Any{miss, miss}.IsExempt(context.Background(), "a@co.com")
	require.NoError(t, err)
	assert.False(t, exempt)
}

func TestAnyShortCircuitsOnError(t *testing.T) {
	db := &fakeDB{scan: func(...any) error {
		return errors.New("down")
	}}

	_, err := Any{NewVIPOracle(db), Static{"a@co.com": true}}.IsExempt(context.Background(), "a@co.com")
	require.Error(t, err)
}

func TestStaticCaseInsensitive(t *testing.T) {
	s := Static{"vip@co.com": true}

	exempt, err := s.IsExempt(context.Background(), "Vip@CO.com")
	require.NoError(t, err)
	assert.True(t, exempt)
}
