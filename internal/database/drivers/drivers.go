package drivers

import (
	"time"

	"gorm.io/gorm"

	"datascout/internal/model"
)

// DriverCategory categorizes drivers by how they are addressed
type DriverCategory string

const (
	CategoryRelational DriverCategory = "relational"
	CategoryFileSystem DriverCategory = "file_system"
)

// DefaultConnectTimeout is used when a driver is asked to build a DSN without a timeout
const DefaultConnectTimeout = 30 * time.Second

// DriverBase provides common functionality for all drivers
type DriverBase struct {
	kind     model.EngineKind
	category DriverCategory
}

func NewDriverBase(kind model.EngineKind, category DriverCategory) *DriverBase {
	return &DriverBase{kind: kind, category: category}
}

func (db *DriverBase) Kind() model.EngineKind {
	return db.kind
}

func (db *DriverBase) GetDatabaseTypeName() string {
	return string(db.kind)
}

func (db *DriverBase) GetCategory() DriverCategory {
	return db.category
}

// Driver is the dialect adapter of one engine. It only translates connection
// parameters into something gorm can open; catalog reads go through the opened
// handle's migrator.
type Driver interface {
	// Kind returns the engine this driver serves
	Kind() model.EngineKind

	// GetDatabaseTypeName returns the engine name
	GetDatabaseTypeName() string

	// GetCategory returns the driver category
	GetCategory() DriverCategory

	// GetDefaultPort returns the default port, or 0 for file-based engines
	GetDefaultPort() int

	// Validate checks that params carry what this engine needs
	Validate(params *model.ConnectionParams) error

	// BuildDSN builds a connection string from params; timeout bounds dialing
	BuildDSN(params *model.ConnectionParams, timeout time.Duration) string

	// Dialector wraps a DSN in the engine's gorm dialector
	Dialector(dsn string) gorm.Dialector
}

func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultConnectTimeout
	}
	return timeout
}

// TimeoutSeconds rounds a timeout up to whole seconds, never below one
func TimeoutSeconds(timeout time.Duration) int {
	timeout = timeoutOrDefault(timeout)
	secs := int((timeout + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
