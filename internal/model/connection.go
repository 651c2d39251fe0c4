package model

import (
	"time"
)

// SavedConnection is the persisted form of a ConnectionRecord
type SavedConnection struct {
	ID            int64         `gorm:"primaryKey"`
	EngineKind    EngineKind    `gorm:"column:db_type;size:32;not null;index"`
	Host          *string       `gorm:"size:255"`
	Port          *int
	Database      *string       `gorm:"size:255"`
	Username      *string       `gorm:"size:255"`
	Password      *string       `gorm:"size:1024"`
	FilePath      *string       `gorm:"size:1024"`
	GlobalContext *string       `gorm:"type:text"`
	CreatedAt     time.Time     `gorm:"not null"`
	Schemas       []SavedSchema `gorm:"foreignKey:ConnectionID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for the SavedConnection model
func (SavedConnection) TableName() string {
	return "saved_connections"
}

// SavedSchema is one table of a connection snapshot. The whole column collection,
// descriptions included, lives in a single JSON document.
type SavedSchema struct {
	ID           int64     `gorm:"primaryKey"`
	ConnectionID int64     `gorm:"not null;uniqueIndex:idx_saved_schemas_conn_table,priority:1"`
	Name         string    `gorm:"column:table_name;size:255;not null;uniqueIndex:idx_saved_schemas_conn_table,priority:2"`
	Position     int       `gorm:"column:ordinal;not null;default:0"`
	TableContext *string   `gorm:"type:text"`
	Columns      Columns   `gorm:"column:columns_json;type:json;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the SavedSchema model
func (SavedSchema) TableName() string {
	return "saved_schemas"
}

// NewSavedConnection maps a connect request onto its persisted form
func NewSavedConnection(kind EngineKind, params ConnectionParams, tables []TableDescriptor) *SavedConnection {
	conn := &SavedConnection{
		EngineKind: kind,
		Host:       optional(params.Host),
		Database:   optional(params.Database),
		Username:   optional(params.Username),
		Password:   optional(params.Password),
		FilePath:   optional(params.Path),
		Schemas:    make([]SavedSchema, 0, len(tables)),
	}
	if params.Port != 0 {
		port := params.Port
		conn.Port = &port
	}

	for i, t := range tables {
		cols := make(Columns, len(t.Columns))
		copy(cols, t.Columns)
		conn.Schemas = append(conn.Schemas, SavedSchema{
			Name:         t.Name,
			Position:     i,
			TableContext: t.Context,
			Columns:      cols,
		})
	}
	return conn
}

// ToRecord converts the persisted form back to the canonical model.
// Schemas are expected in snapshot order.
func (c *SavedConnection) ToRecord() *ConnectionRecord {
	rec := &ConnectionRecord{
		ID:            c.ID,
		EngineKind:    c.EngineKind,
		GlobalContext: c.GlobalContext,
		CreatedAt:     c.CreatedAt,
		Params: ConnectionParams{
			Host:     deref(c.Host),
			Database: deref(c.Database),
			Username: deref(c.Username),
			Password: deref(c.Password),
			Path:     deref(c.FilePath),
		},
		Tables: make([]TableDescriptor, 0, len(c.Schemas)),
	}
	if c.Port != nil {
		rec.Params.Port = *c.Port
	}

	for _, s := range c.Schemas {
		cols := s.Columns
		if cols == nil {
			cols = Columns{}
		}
		rec.Tables = append(rec.Tables, TableDescriptor{
			Name:    s.Name,
			Columns: []ColumnDescriptor(cols),
			Context: s.TableContext,
		})
	}
	return rec
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
