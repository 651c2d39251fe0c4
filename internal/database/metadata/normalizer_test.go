package metadata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datascout/internal/database/drivers/common"
	"datascout/internal/model"
	"datascout/internal/utils"
)

func i64(v int64) *int64 { return &v }
func flag(v bool) *bool  { return &v }

func TestCanonicalType(t *testing.T) {
	tests := []struct {
		name string
		col  common.RawColumn
		want string
	}{
		{"plain", common.RawColumn{NativeType: "integer"}, "INTEGER"},
		{"empty", common.RawColumn{NativeType: "  "}, UnknownType},
		{"alias", common.RawColumn{NativeType: "int8"}, "BIGINT"},
		{"varchar with length", common.RawColumn{NativeType: "character varying", Length: i64(64)}, "VARCHAR(64)"},
		{"declared length wins", common.RawColumn{NativeType: "varchar(32)", Length: i64(64)}, "VARCHAR(32)"},
		{"length ignored for text", common.RawColumn{NativeType: "text", Length: i64(65535)}, "TEXT"},
		{"numeric precision", common.RawColumn{NativeType: "numeric", Precision: i64(10), Scale: i64(2)}, "NUMERIC(10,2)"},
		{"decimal without scale", common.RawColumn{NativeType: "decimal", Precision: i64(8)}, "DECIMAL(8,0)"},
		{"spaced arguments", common.RawColumn{NativeType: "numeric(10, 2)"}, "NUMERIC(10,2)"},
		{"unsigned suffix", common.RawColumn{NativeType: "int(11) unsigned"}, "INT(11) UNSIGNED"},
		{"timestamp without zone", common.RawColumn{NativeType: "timestamp without time zone"}, "TIMESTAMP"},
		{"timestamp precision without zone", common.RawColumn{NativeType: "timestamp(6) without time zone"}, "TIMESTAMP(6)"},
		{"timestamptz", common.RawColumn{NativeType: "timestamptz"}, "TIMESTAMP WITH TIME ZONE"},
		{"double", common.RawColumn{NativeType: "double"}, "DOUBLE PRECISION"},
		{"collapsed whitespace", common.RawColumn{NativeType: "double   precision"}, "DOUBLE PRECISION"},
		{"nvarchar max", common.RawColumn{NativeType: "nvarchar(max)"}, "NVARCHAR(MAX)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalType(tt.col))
		})
	}
}

func TestNormalize(t *testing.T) {
	raw := []common.RawTable{
		{
			Name: "products",
			Columns: []common.RawColumn{
				{Name: "id", NativeType: "INTEGER", Nullable: flag(false), PrimaryKey: flag(true)},
				{Name: "name", NativeType: "TEXT", Nullable: flag(false), PrimaryKey: flag(false)},
				{Name: "price", NativeType: "REAL"},
			},
		},
		{Name: "empty"},
	}

	tables, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []model.TableDescriptor{
		{
			Name: "products",
			Columns: []model.ColumnDescriptor{
				{Name: "id", Type: "INTEGER", Nullable: false, IsPrimaryKey: true},
				{Name: "name", Type: "TEXT", Nullable: false},
				{Name: "price", Type: "REAL", Nullable: true},
			},
		},
		{Name: "empty", Columns: []model.ColumnDescriptor{}},
	}, tables)
}

func TestNormalizeEmptyCatalog(t *testing.T) {
	tables, err := Normalize(nil)
	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Empty(t, tables)
}

func TestNormalizeRejectsMalformedCatalog(t *testing.T) {
	tests := []struct {
		name string
		raw  []common.RawTable
	}{
		{"empty table name", []common.RawTable{{Name: ""}}},
		{"duplicate table", []common.RawTable{{Name: "a"}, {Name: "a"}}},
		{"unreadable table", []common.RawTable{{Name: "a", ReadErr: errors.New("permission denied")}}},
		{"empty column name", []common.RawTable{{Name: "a", Columns: []common.RawColumn{{Name: "", NativeType: "INT"}}}}},
		{"duplicate column", []common.RawTable{{Name: "a", Columns: []common.RawColumn{{Name: "x"}, {Name: "x"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := Normalize(tt.raw)
			require.Error(t, err)
			assert.Nil(t, tables)
			assert.True(t, utils.IsErrorType(err, utils.ErrCodeNormalizationFailed))
		})
	}
}
