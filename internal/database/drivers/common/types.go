package common

// RawTable is one table as reported by an engine catalog, before normalization
type RawTable struct {
	Name    string      `json:"name"`
	Columns []RawColumn `json:"columns"`

	// ReadErr is set when the table was listed but its columns could not be read.
	// A table with no columns and no ReadErr is a legitimately empty table.
	ReadErr error `json:"-"`
}

// RawColumn is one column as reported by an engine catalog. Pointer fields are nil
// when the engine could not determine the value.
type RawColumn struct {
	Name       string `json:"name"`
	NativeType string `json:"nativeType"`
	Length     *int64 `json:"length,omitempty"`
	Precision  *int64 `json:"precision,omitempty"`
	Scale      *int64 `json:"scale,omitempty"`
	Nullable   *bool  `json:"nullable,omitempty"`
	PrimaryKey *bool  `json:"primaryKey,omitempty"`
}
