package repository

import (
	"context"

	"datascout/internal/model"
)

// AnnotationRepository persists connection snapshots and their annotations.
// Update methods report a missing connection, table or column as (false, nil);
// errors are reserved for store failures.
type AnnotationRepository interface {
	// Create inserts a connection and its full table tree atomically
	Create(ctx context.Context, kind model.EngineKind, params model.ConnectionParams, tables []model.TableDescriptor) (int64, error)

	// Get retrieves a connection with its tables in snapshot order
	Get(ctx context.Context, id int64) (*model.ConnectionRecord, error)

	// Count returns the number of stored connections
	Count(ctx context.Context) (int64, error)

	// SetGlobalContext replaces the connection-wide context
	SetGlobalContext(ctx context.Context, id int64, text string) (bool, error)

	// SetTableContext replaces the context of one table
	SetTableContext(ctx context.Context, id int64, table, text string) (bool, error)

	// SetColumnDescription replaces the description of one column, leaving its siblings untouched
	SetColumnDescription(ctx context.Context, id int64, table, column, text string) (bool, error)

	// Reset destroys every connection and all descendants and restarts ids at the floor.
	// The store is usable as soon as it returns.
	Reset(ctx context.Context) error

	// Migrate establishes the store structure
	Migrate(ctx context.Context) error

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error
}
