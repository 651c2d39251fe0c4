package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ColumnDescriptor is the engine-independent description of a single column.
// Only Description is mutable after the snapshot is taken.
type ColumnDescriptor struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Nullable     bool    `json:"nullable"`
	IsPrimaryKey bool    `json:"primary_key"`
	Description  *string `json:"description,omitempty"`
}

// TableDescriptor is the engine-independent description of a table and its ordered columns
type TableDescriptor struct {
	Name    string             `json:"name"`
	Columns []ColumnDescriptor `json:"columns"`
	Context *string            `json:"context,omitempty"`
}

// Column returns the column with the given name, or nil
func (t *TableDescriptor) Column(name string) *ColumnDescriptor {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ConnectionRecord is a registered connection together with its schema snapshot and annotations
type ConnectionRecord struct {
	ID            int64             `json:"id"`
	EngineKind    EngineKind        `json:"engine_kind"`
	Params        ConnectionParams  `json:"connection_parameters"`
	GlobalContext *string           `json:"global_context,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Tables        []TableDescriptor `json:"tables"`
}

// Table returns the table with the given name, or nil
func (r *ConnectionRecord) Table(name string) *TableDescriptor {
	for i := range r.Tables {
		if r.Tables[i].Name == name {
			return &r.Tables[i]
		}
	}
	return nil
}

// Columns is the column collection of one table, persisted as a single JSON document
type Columns []ColumnDescriptor

// Value implements driver.Valuer interface for GORM
func (c Columns) Value() (driver.Value, error) {
	if c == nil {
		c = Columns{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for GORM
func (c *Columns) Scan(value interface{}) error {
	if value == nil {
		*c = Columns{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported columns payload type %T", value)
	}

	return json.Unmarshal(bytes, c)
}

// SetDescription sets the description of the named column and reports whether it exists.
// Sibling columns are left untouched.
func (c Columns) SetDescription(name, description string) bool {
	for i := range c {
		if c[i].Name == name {
			c[i].Description = &description
			return true
		}
	}
	return false
}
