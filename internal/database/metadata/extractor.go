package metadata

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"datascout/internal/database"
	"datascout/internal/database/drivers/common"
	"datascout/internal/model"
	"datascout/internal/utils"
)

// Catalog is the part of a gorm migrator the extractor reads from
type Catalog interface {
	GetTables() ([]string, error)
	ColumnTypes(value interface{}) ([]gorm.ColumnType, error)
}

// MetadataExtractor reads the raw catalog of an opened target database
type MetadataExtractor struct {
	log *zap.Logger
}

// NewMetadataExtractor creates a new metadata extractor
func NewMetadataExtractor(log *zap.Logger) *MetadataExtractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &MetadataExtractor{log: log}
}

// Extract lists the tables of the handle's database with their columns
func (e *MetadataExtractor) Extract(ctx context.Context, h *database.Handle) ([]common.RawTable, error) {
	return e.ExtractCatalog(ctx, h.Kind(), h.DB(ctx).Migrator())
}

type catalogResult struct {
	tables []common.RawTable
	err    error
}

// ExtractCatalog lists tables in name order and columns in engine order. A failure to
// list tables, or any failure once ctx is done, is an IntrospectionError; a failure to
// read one table's columns is recorded on that table for the normalizer to reject.
// The read is abandoned when ctx ends even if the catalog ignores it; the reading
// goroutine then finishes once the handle is closed.
func (e *MetadataExtractor) ExtractCatalog(ctx context.Context, kind model.EngineKind, catalog Catalog) ([]common.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, utils.NewIntrospectionError(err, "catalog read interrupted")
	}

	results := make(chan catalogResult, 1)
	go func() {
		tables, err := e.readCatalog(ctx, kind, catalog)
		results <- catalogResult{tables: tables, err: err}
	}()

	select {
	case r := <-results:
		return r.tables, r.err
	case <-ctx.Done():
		return nil, utils.NewIntrospectionError(ctx.Err(), fmt.Sprintf("timed out reading %s catalog", kind))
	}
}

func (e *MetadataExtractor) readCatalog(ctx context.Context, kind model.EngineKind, catalog Catalog) ([]common.RawTable, error) {
	listed, err := catalog.GetTables()
	if err != nil {
		return nil, utils.NewIntrospectionError(err, "failed to list tables")
	}

	names := make([]string, 0, len(listed))
	for _, name := range listed {
		if !isSystemTable(kind, name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	tables := make([]common.RawTable, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, utils.NewIntrospectionError(err, "catalog read interrupted")
		}

		columnTypes, err := catalog.ColumnTypes(name)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, utils.NewIntrospectionError(ctxErr, fmt.Sprintf("catalog read interrupted at %s", name))
			}
			e.log.Warn("failed to read table columns", zap.String("table", name), zap.Error(err))
			tables = append(tables, common.RawTable{
				Name:    name,
				ReadErr: fmt.Errorf("read columns of %s: %w", name, err),
			})
			continue
		}

		columns := make([]common.RawColumn, 0, len(columnTypes))
		for _, ct := range columnTypes {
			columns = append(columns, rawColumn(ct))
		}

		tables = append(tables, common.RawTable{
			Name:    name,
			Columns: columns,
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, utils.NewIntrospectionError(err, "catalog read interrupted")
	}

	e.log.Debug("catalog extracted", zap.Int("tables", len(tables)))
	return tables, nil
}

// isSystemTable reports engine bookkeeping tables that some catalogs list with user tables
func isSystemTable(kind model.EngineKind, name string) bool {
	return kind == model.EngineSQLite && strings.HasPrefix(name, "sqlite_")
}

func rawColumn(ct gorm.ColumnType) common.RawColumn {
	col := common.RawColumn{
		Name:       ct.Name(),
		NativeType: ct.DatabaseTypeName(),
	}
	if full, ok := ct.ColumnType(); ok && full != "" {
		col.NativeType = full
	}
	if length, ok := ct.Length(); ok && length > 0 {
		col.Length = &length
	}
	if precision, scale, ok := ct.DecimalSize(); ok && precision > 0 {
		col.Precision = &precision
		col.Scale = &scale
	}
	if nullable, ok := ct.Nullable(); ok {
		col.Nullable = &nullable
	}
	if pk, ok := ct.PrimaryKey(); ok {
		col.PrimaryKey = &pk
	}
	return col
}
