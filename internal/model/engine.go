package model

import (
	"fmt"
	"strings"
)

// EngineKind identifies the database engine behind a registered connection
type EngineKind string

const (
	EngineSQLite     EngineKind = "sqlite"
	EngineMySQL      EngineKind = "mysql"
	EnginePostgreSQL EngineKind = "postgresql"
	EngineSQLServer  EngineKind = "mssql"
)

// EngineKinds lists every supported engine in a stable order
func EngineKinds() []EngineKind {
	return []EngineKind{EngineSQLite, EngineMySQL, EnginePostgreSQL, EngineSQLServer}
}

// IsValidEngineKind checks if an engine kind is one of the supported engines
func IsValidEngineKind(kind string) bool {
	switch EngineKind(kind) {
	case EngineSQLite, EngineMySQL, EnginePostgreSQL, EngineSQLServer:
		return true
	default:
		return false
	}
}

// ParseEngineKind parses an engine name, accepting a few common aliases
func ParseEngineKind(s string) (EngineKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return EngineSQLite, nil
	case "mysql", "mariadb":
		return EngineMySQL, nil
	case "postgresql", "postgres", "pg":
		return EnginePostgreSQL, nil
	case "mssql", "sqlserver":
		return EngineSQLServer, nil
	default:
		return "", fmt.Errorf("unsupported engine kind: %q", s)
	}
}

// IsFileBased reports whether the engine is addressed by a file path rather than a network address
func (k EngineKind) IsFileBased() bool {
	return k == EngineSQLite
}

// ConnectionParams carries the engine-specific parameters of a connect request.
// File-based engines only use Path; client/server engines use the network fields.
type ConnectionParams struct {
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Database string `json:"database,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Path     string `json:"path,omitempty"`
}

// Redacted returns a copy of the parameters safe for logging and responses
func (p ConnectionParams) Redacted() ConnectionParams {
	if p.Password != "" {
		p.Password = "********"
	}
	return p
}
