package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnsValueAndScan(t *testing.T) {
	desc := "unit price"
	cols := Columns{
		{Name: "id", Type: "INTEGER", IsPrimaryKey: true},
		{Name: "price", Type: "REAL", Nullable: true, Description: &desc},
	}

	v, err := cols.Value()
	require.NoError(t, err)

	var fromString Columns
	require.NoError(t, fromString.Scan(v))
	assert.Equal(t, cols, fromString)

	var fromBytes Columns
	require.NoError(t, fromBytes.Scan([]byte(v.(string))))
	assert.Equal(t, cols, fromBytes)
}

func TestColumnsNilValue(t *testing.T) {
	v, err := Columns(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var cols Columns
	require.NoError(t, cols.Scan(nil))
	assert.NotNil(t, cols)
	assert.Empty(t, cols)

	assert.Error(t, cols.Scan(42))
}

func TestColumnsSetDescription(t *testing.T) {
	cols := Columns{{Name: "a"}, {Name: "b"}}

	assert.True(t, cols.SetDescription("b", "second"))
	assert.False(t, cols.SetDescription("c", "missing"))

	assert.Nil(t, cols[0].Description)
	require.NotNil(t, cols[1].Description)
	assert.Equal(t, "second", *cols[1].Description)
}

func TestSavedConnectionRoundTrip(t *testing.T) {
	ctxText := "items"
	params := ConnectionParams{Host: "db", Port: 5432, Database: "shop", Username: "u", Password: "p"}
	tables := []TableDescriptor{
		{Name: "products", Columns: []ColumnDescriptor{{Name: "id", Type: "INTEGER"}}, Context: &ctxText},
		{Name: "orders", Columns: []ColumnDescriptor{}},
	}

	saved := NewSavedConnection(EnginePostgreSQL, params, tables)
	require.Len(t, saved.Schemas, 2)
	assert.Equal(t, 0, saved.Schemas[0].Position)
	assert.Equal(t, 1, saved.Schemas[1].Position)
	assert.Nil(t, saved.FilePath)

	// the snapshot does not alias the caller's columns
	saved.Schemas[0].Columns.SetDescription("id", "key")
	assert.Nil(t, tables[0].Columns[0].Description)

	rec := saved.ToRecord()
	assert.Equal(t, params, rec.Params)
	assert.Equal(t, EnginePostgreSQL, rec.EngineKind)
	require.Len(t, rec.Tables, 2)
	assert.Equal(t, "products", rec.Tables[0].Name)
	assert.Equal(t, &ctxText, rec.Tables[0].Context)
	assert.NotNil(t, rec.Tables[1].Columns)
}

func TestParseEngineKind(t *testing.T) {
	tests := []struct {
		in      string
		want    EngineKind
		wantErr bool
	}{
		{"sqlite", EngineSQLite, false},
		{"SQLite3", EngineSQLite, false},
		{"mariadb", EngineMySQL, false},
		{"postgres", EnginePostgreSQL, false},
		{"postgresql", EnginePostgreSQL, false},
		{"sqlserver", EngineSQLServer, false},
		{"mssql", EngineSQLServer, false},
		{"oracle", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEngineKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsValidEngineKind(string(got)))
		})
	}
}

func TestRedacted(t *testing.T) {
	p := ConnectionParams{Host: "db", Password: "secret"}
	assert.Equal(t, "********", p.Redacted().Password)
	assert.Equal(t, "secret", p.Password)
	assert.Empty(t, ConnectionParams{}.Redacted().Password)
}
