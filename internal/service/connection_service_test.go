package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"datascout/internal/database"
	"datascout/internal/database/drivers/common"
	"datascout/internal/model"
	"datascout/internal/repository"
	"datascout/internal/utils"
)

func newStoreRepository(t *testing.T, floor int64) repository.AnnotationRepository {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "store.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := repository.NewAnnotationRepository(db, repository.Options{IDFloor: floor})
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

// newTargetDatabase creates a sqlite file with the given DDL and returns its path
func newTargetDatabase(t *testing.T, ddl ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "target.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	return path
}

func newTestConnectionService(t *testing.T, floor int64) (ConnectionService, repository.AnnotationRepository) {
	t.Helper()

	repo := newStoreRepository(t, floor)
	svc := NewConnectionService(database.NewDriverRegistry(), repo, ConnectionServiceConfig{ConnectTimeout: 5 * time.Second}, nil)
	return svc, repo
}

func countConnections(t *testing.T, repo repository.AnnotationRepository) int64 {
	t.Helper()
	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	return total
}

const productsDDL = "CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT NOT NULL, price REAL)"

func TestConnectSQLiteSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestConnectionService(t, 1)
	path := newTargetDatabase(t, productsDDL)

	result, err := svc.Connect(ctx, model.EngineSQLite, model.ConnectionParams{Path: path})
	require.NoError(t, err)
	assert.Positive(t, result.ID)

	require.Len(t, result.Tables, 1)
	products := result.Tables[0]
	assert.Equal(t, "products", products.Name)
	require.Len(t, products.Columns, 3)

	assert.Equal(t, "id", products.Columns[0].Name)
	assert.Equal(t, "INTEGER", products.Columns[0].Type)
	assert.True(t, products.Columns[0].IsPrimaryKey)

	assert.Equal(t, "name", products.Columns[1].Name)
	assert.Equal(t, "TEXT", products.Columns[1].Type)
	assert.False(t, products.Columns[1].Nullable)
	assert.False(t, products.Columns[1].IsPrimaryKey)

	assert.Equal(t, "price", products.Columns[2].Name)
	assert.Equal(t, "REAL", products.Columns[2].Type)
	assert.True(t, products.Columns[2].Nullable)

	for _, col := range products.Columns {
		assert.Nil(t, col.Description)
	}

	rec, err := svc.GetConnection(ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EngineSQLite, rec.EngineKind)
	assert.Equal(t, result.Tables, rec.Tables)
	assert.Nil(t, rec.GlobalContext)
}

func TestConnectSQLiteURLPath(t *testing.T) {
	svc, _ := newTestConnectionService(t, 1)
	path := newTargetDatabase(t, productsDDL)

	result, err := svc.Connect(context.Background(), model.EngineSQLite, model.ConnectionParams{Path: "sqlite:///" + path})
	require.NoError(t, err)
	assert.Len(t, result.Tables, 1)
}

func TestConnectEmptyDatabase(t *testing.T) {
	svc, repo := newTestConnectionService(t, 1)

	path := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	result, err := svc.Connect(context.Background(), model.EngineSQLite, model.ConnectionParams{Path: path})
	require.NoError(t, err)
	assert.Empty(t, result.Tables)
	assert.Equal(t, int64(1), countConnections(t, repo))
}

func TestConnectTablesInNameOrder(t *testing.T) {
	svc, _ := newTestConnectionService(t, 1)
	path := newTargetDatabase(t,
		"CREATE TABLE zebra (id INTEGER)",
		"CREATE TABLE alpha (id INTEGER)",
		productsDDL,
	)

	result, err := svc.Connect(context.Background(), model.EngineSQLite, model.ConnectionParams{Path: path})
	require.NoError(t, err)

	names := make([]string, 0, len(result.Tables))
	for _, table := range result.Tables {
		names = append(names, table.Name)
	}
	assert.Equal(t, []string{"alpha", "products", "zebra"}, names)
}

func TestConnectMissingFile(t *testing.T) {
	svc, repo := newTestConnectionService(t, 1)

	_, err := svc.Connect(context.Background(), model.EngineSQLite, model.ConnectionParams{
		Path: filepath.Join(t.TempDir(), "missing.db"),
	})
	require.Error(t, err)
	assert.True(t, utils.IsErrorType(err, utils.ErrCodeConnectionFailed))
	assert.Zero(t, countConnections(t, repo))
}

func TestConnectUnsupportedEngine(t *testing.T) {
	svc, repo := newTestConnectionService(t, 1)

	_, err := svc.Connect(context.Background(), model.EngineKind("oracle"), model.ConnectionParams{Host: "db"})
	require.Error(t, err)
	assert.True(t, utils.IsErrorType(err, utils.ErrCodeUnsupportedEngine))
	assert.Zero(t, countConnections(t, repo))
}

func TestConnectInvalidParams(t *testing.T) {
	svc, repo := newTestConnectionService(t, 1)

	tests := []struct {
		name   string
		kind   model.EngineKind
		params model.ConnectionParams
	}{
		{"mysql without host", model.EngineMySQL, model.ConnectionParams{Database: "shop", Username: "root"}},
		{"postgres port out of range", model.EnginePostgreSQL, model.ConnectionParams{Host: "db", Port: 70000, Database: "shop", Username: "u"}},
		{"sqlite without path", model.EngineSQLite, model.ConnectionParams{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Connect(context.Background(), tt.kind, tt.params)
			require.Error(t, err)
			assert.True(t, utils.IsErrorType(err, utils.ErrCodeValidationFailed), err.Error())
		})
	}
	assert.Zero(t, countConnections(t, repo))
}

func TestConnectUnreachableServer(t *testing.T) {
	repo := newStoreRepository(t, 1)
	svc := NewConnectionService(database.NewDriverRegistry(), repo, ConnectionServiceConfig{ConnectTimeout: time.Second}, nil)

	_, err := svc.Connect(context.Background(), model.EnginePostgreSQL, model.ConnectionParams{
		Host:     "127.0.0.1",
		Port:     1,
		Database: "shop",
		Username: "reader",
	})
	require.Error(t, err)
	assert.True(t, utils.IsErrorType(err, utils.ErrCodeConnectionFailed))
	assert.Zero(t, countConnections(t, repo))
}

func TestConnectCancelled(t *testing.T) {
	svc, repo := newTestConnectionService(t, 1)
	path := newTargetDatabase(t, productsDDL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Connect(ctx, model.EngineSQLite, model.ConnectionParams{Path: path})
	require.Error(t, err)
	assert.Zero(t, countConnections(t, repo))
}

func TestGetConnectionNotFound(t *testing.T) {
	svc, _ := newTestConnectionService(t, 1)

	_, err := svc.GetConnection(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, utils.IsErrorType(err, utils.ErrCodeNotFound))
}

func TestResetAll(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestConnectionService(t, 100)
	path := newTargetDatabase(t, productsDDL)

	first, err := svc.Connect(ctx, model.EngineSQLite, model.ConnectionParams{Path: path})
	require.NoError(t, err)
	assert.Equal(t, int64(100), first.ID)
	_, err = svc.Connect(ctx, model.EngineSQLite, model.ConnectionParams{Path: path})
	require.NoError(t, err)

	require.NoError(t, svc.ResetAll(ctx))
	assert.Zero(t, countConnections(t, repo))

	ok, err := repo.SetTableContext(ctx, first.ID, "products", "gone")
	require.NoError(t, err)
	assert.False(t, ok)

	next, err := svc.Connect(ctx, model.EngineSQLite, model.ConnectionParams{Path: path})
	require.NoError(t, err)
	assert.Equal(t, int64(100), next.ID)

	// reset of an empty store also succeeds
	require.NoError(t, svc.ResetAll(ctx))
	require.NoError(t, svc.ResetAll(ctx))
}

// stalledExtractor never returns catalog data; it gives up only when ctx ends
type stalledExtractor struct{}

func (stalledExtractor) Extract(ctx context.Context, h *database.Handle) ([]common.RawTable, error) {
	<-ctx.Done()
	return nil, utils.NewIntrospectionError(ctx.Err(), "catalog read timed out")
}

func TestConnectBoundsCatalogRead(t *testing.T) {
	repo := newStoreRepository(t, 1)
	svc := NewConnectionService(database.NewDriverRegistry(), repo, ConnectionServiceConfig{ConnectTimeout: 200 * time.Millisecond}, nil)
	svc.(*connectionService).extractor = stalledExtractor{}
	path := newTargetDatabase(t, productsDDL)

	start := time.Now()
	_, err := svc.Connect(context.Background(), model.EngineSQLite, model.ConnectionParams{Path: path})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, utils.IsErrorType(err, utils.ErrCodeIntrospectionFailed))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, countConnections(t, repo))
}

type failingRepository struct {
	repository.AnnotationRepository
	resetErr error
}

func (f *failingRepository) Reset(ctx context.Context) error {
	return f.resetErr
}

func TestResetAllFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		repo *failingRepository
		code string
	}{
		{"wipe fails", &failingRepository{resetErr: utils.NewPersistenceError(boom, "wipe")}, utils.ErrCodeResetFailed},
		{
			"re-initialization fails",
			&failingRepository{resetErr: utils.NewPersistenceError(fmt.Errorf("%w: %w", repository.ErrStoreReinit, boom), "reinit")},
			utils.ErrCodeReinitFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewConnectionService(database.NewDriverRegistry(), tt.repo, ConnectionServiceConfig{}, nil)

			err := svc.ResetAll(context.Background())
			require.Error(t, err)
			assert.True(t, utils.IsErrorType(err, tt.code))
			assert.ErrorIs(t, err, boom)
		})
	}
}
