package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"datascout/internal/database/drivers/common"
	"datascout/internal/model"
	"datascout/internal/utils"
)

// UnknownType is the canonical type of a column the engine reported without a type
const UnknownType = "UNKNOWN"

var typeAliases = map[string]string{
	"CHARACTER VARYING":           "VARCHAR",
	"CHARACTER":                   "CHAR",
	"NATIONAL CHARACTER VARYING":  "NVARCHAR",
	"NATIONAL CHARACTER":          "NCHAR",
	"INT2":                        "SMALLINT",
	"INT4":                        "INTEGER",
	"INT8":                        "BIGINT",
	"SERIAL4":                     "INTEGER",
	"SERIAL8":                     "BIGINT",
	"FLOAT4":                      "REAL",
	"FLOAT8":                      "DOUBLE PRECISION",
	"DOUBLE":                      "DOUBLE PRECISION",
	"BOOL":                        "BOOLEAN",
	"TIMESTAMPTZ":                 "TIMESTAMP WITH TIME ZONE",
	"TIMETZ":                      "TIME WITH TIME ZONE",
	"TIMESTAMP WITHOUT TIME ZONE": "TIMESTAMP",
	"TIME WITHOUT TIME ZONE":      "TIME",
}

var lengthTypes = map[string]bool{
	"VARCHAR":   true,
	"CHAR":      true,
	"NVARCHAR":  true,
	"NCHAR":     true,
	"VARBINARY": true,
	"BINARY":    true,
}

var decimalTypes = map[string]bool{
	"DECIMAL": true,
	"NUMERIC": true,
}

// Normalize converts raw catalog tables into the canonical schema model.
// Nullability defaults to true and primary-key membership to false when the
// engine did not report them. Table and column order is preserved.
func Normalize(raw []common.RawTable) ([]model.TableDescriptor, error) {
	tables := make([]model.TableDescriptor, 0, len(raw))
	seenTables := make(map[string]bool, len(raw))

	for _, rt := range raw {
		if rt.Name == "" {
			return nil, utils.NewNormalizationError("table with empty name")
		}
		if seenTables[rt.Name] {
			return nil, utils.NewNormalizationError(fmt.Sprintf("duplicate table %q", rt.Name))
		}
		seenTables[rt.Name] = true

		if rt.ReadErr != nil {
			return nil, utils.NewNormalizationError(fmt.Sprintf("table %q: %v", rt.Name, rt.ReadErr))
		}

		columns := make([]model.ColumnDescriptor, 0, len(rt.Columns))
		seenColumns := make(map[string]bool, len(rt.Columns))
		for _, rc := range rt.Columns {
			if rc.Name == "" {
				return nil, utils.NewNormalizationError(fmt.Sprintf("table %q has a column with empty name", rt.Name))
			}
			if seenColumns[rc.Name] {
				return nil, utils.NewNormalizationError(fmt.Sprintf("table %q has duplicate column %q", rt.Name, rc.Name))
			}
			seenColumns[rc.Name] = true

			columns = append(columns, normalizeColumn(rc))
		}

		tables = append(tables, model.TableDescriptor{
			Name:    rt.Name,
			Columns: columns,
		})
	}

	return tables, nil
}

func normalizeColumn(rc common.RawColumn) model.ColumnDescriptor {
	col := model.ColumnDescriptor{
		Name:     rc.Name,
		Type:     CanonicalType(rc),
		Nullable: true,
	}
	if rc.Nullable != nil {
		col.Nullable = *rc.Nullable
	}
	if rc.PrimaryKey != nil {
		col.IsPrimaryKey = *rc.PrimaryKey
	}
	return col
}

// CanonicalType renders an engine type label as upper-case text with engine
// aliases folded and size arguments attached, e.g. "character varying" with
// length 64 becomes "VARCHAR(64)". The rendering is lossy.
func CanonicalType(rc common.RawColumn) string {
	label := strings.Join(strings.Fields(strings.ToUpper(rc.NativeType)), " ")
	if label == "" {
		return UnknownType
	}

	base, args, rest := splitTypeLabel(label)
	if alias, ok := typeAliases[strings.TrimSpace(base+" "+rest)]; ok && rest != "" {
		base, rest = alias, ""
	} else if alias, ok := typeAliases[base]; ok {
		base = alias
	}
	if rest == "WITHOUT TIME ZONE" {
		rest = ""
	}

	if args == "" {
		switch {
		case lengthTypes[base] && rc.Length != nil && *rc.Length > 0:
			args = strconv.FormatInt(*rc.Length, 10)
		case decimalTypes[base] && rc.Precision != nil && *rc.Precision > 0:
			scale := int64(0)
			if rc.Scale != nil {
				scale = *rc.Scale
			}
			args = strconv.FormatInt(*rc.Precision, 10) + "," + strconv.FormatInt(scale, 10)
		}
	}

	out := base
	if args != "" {
		out += "(" + args + ")"
	}
	if rest != "" {
		out += " " + rest
	}
	return out
}

// splitTypeLabel splits "NUMERIC(10, 2) UNSIGNED" into "NUMERIC", "10,2", "UNSIGNED"
func splitTypeLabel(label string) (base, args, rest string) {
	open := strings.Index(label, "(")
	if open < 0 {
		return label, "", ""
	}
	closing := strings.Index(label[open:], ")")
	if closing < 0 {
		return label, "", ""
	}
	closing += open

	base = strings.TrimSpace(label[:open])
	parts := strings.Split(label[open+1:closing], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	args = strings.Join(parts, ",")
	rest = strings.TrimSpace(label[closing+1:])
	return base, args, rest
}
