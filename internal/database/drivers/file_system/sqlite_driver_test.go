package file_system

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datascout/internal/database/drivers"
	"datascout/internal/model"
	"datascout/internal/utils"
)

func TestSQLiteDriverIdentity(t *testing.T) {
	driver := NewSQLiteDriver()

	assert.Equal(t, model.EngineSQLite, driver.Kind())
	assert.Equal(t, drivers.CategoryFileSystem, driver.GetCategory())
	assert.Zero(t, driver.GetDefaultPort())
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"/data/shop.db", "/data/shop.db"},
		{"  /data/shop.db  ", "/data/shop.db"},
		{"sqlite:////data/shop.db", "/data/shop.db"},
		{"sqlite:///relative/shop.db", "relative/shop.db"},
		{"sqlite://shop.db", "shop.db"},
		{"file:/data/shop.db", "/data/shop.db"},
		{"/data/../data/shop.db", "/data/shop.db"},
		{"", ""},
		{"sqlite:///", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.raw))
		})
	}
}

func TestSQLiteValidate(t *testing.T) {
	driver := NewSQLiteDriver()

	err := driver.Validate(&model.ConnectionParams{})
	require.Error(t, err)
	assert.True(t, utils.IsErrorType(err, utils.ErrCodeValidationFailed))

	assert.NoError(t, driver.Validate(&model.ConnectionParams{Path: "shop.db"}))
}

func TestSQLiteProbe(t *testing.T) {
	driver := NewSQLiteDriver()
	dir := t.TempDir()

	existing := filepath.Join(dir, "shop.db")
	require.NoError(t, os.WriteFile(existing, nil, 0o600))

	assert.NoError(t, driver.Probe(&model.ConnectionParams{Path: existing}))
	assert.NoError(t, driver.Probe(&model.ConnectionParams{Path: "sqlite:///" + existing}))
	assert.Error(t, driver.Probe(&model.ConnectionParams{Path: filepath.Join(dir, "missing.db")}))
	assert.Error(t, driver.Probe(&model.ConnectionParams{Path: dir}))

	// the probe must not create the file
	_, err := os.Stat(filepath.Join(dir, "missing.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestSQLiteBuildDSN(t *testing.T) {
	driver := NewSQLiteDriver()

	dsn := driver.BuildDSN(&model.ConnectionParams{Path: "/data/my shop?.db"}, 3*time.Second)
	assert.Equal(t, "file:/data/my shop%3F.db?mode=ro&_pragma=busy_timeout(3000)", dsn)
}
