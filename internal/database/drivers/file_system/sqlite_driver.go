package file_system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"datascout/internal/database/drivers"
	"datascout/internal/model"
	"datascout/internal/utils"
)

// sqliteURLPrefixes are the URL forms accepted in place of a bare path
var sqliteURLPrefixes = []string{"sqlite:///", "sqlite://", "file:"}

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// SQLiteDriver implements Driver for SQLite database files
type SQLiteDriver struct {
	base *drivers.DriverBase
}

// NewSQLiteDriver creates a new SQLite driver instance
func NewSQLiteDriver() *SQLiteDriver {
	return &SQLiteDriver{
		base: drivers.NewDriverBase(model.EngineSQLite, drivers.CategoryFileSystem),
	}
}

func (d *SQLiteDriver) Kind() model.EngineKind {
	return d.base.Kind()
}

func (d *SQLiteDriver) GetDatabaseTypeName() string {
	return d.base.GetDatabaseTypeName()
}

func (d *SQLiteDriver) GetCategory() drivers.DriverCategory {
	return d.base.GetCategory()
}

// GetDefaultPort returns 0, SQLite is not networked
func (d *SQLiteDriver) GetDefaultPort() int {
	return 0
}

func (d *SQLiteDriver) Validate(params *model.ConnectionParams) error {
	if ResolvePath(params.Path) == "" {
		return utils.NewValidationError("Invalid connection parameters", "path is required for sqlite")
	}
	return nil
}

// Probe checks that the database file exists. SQLite would otherwise create an
// empty database at a mistyped path.
func (d *SQLiteDriver) Probe(params *model.ConnectionParams) error {
	path := ResolvePath(params.Path)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot open sqlite file %q: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("sqlite path %q is a directory", path)
	}
	return nil
}

// BuildDSN builds a read-only SQLite URI for the file
func (d *SQLiteDriver) BuildDSN(params *model.ConnectionParams, timeout time.Duration) string {
	busy := drivers.TimeoutSeconds(timeout) * 1000
	return fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(%d)", uriEscaper.Replace(ResolvePath(params.Path)), busy)
}

func (d *SQLiteDriver) Dialector(dsn string) gorm.Dialector {
	return sqlite.Open(dsn)
}

// ResolvePath strips any sqlite URL prefix and cleans the resulting path
func ResolvePath(raw string) string {
	p := strings.TrimSpace(raw)
	for _, prefix := range sqliteURLPrefixes {
		if strings.HasPrefix(p, prefix) {
			p = strings.TrimPrefix(p, prefix)
			break
		}
	}
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}
