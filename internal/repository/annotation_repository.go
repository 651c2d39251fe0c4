package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"datascout/internal/model"
	"datascout/internal/security"
	"datascout/internal/utils"
)

// Options configures an annotation repository
type Options struct {
	// IDFloor is the smallest id handed out by a freshly reset store
	IDFloor int64
	// Vault seals stored passwords when set
	Vault *security.CredentialVault
	Log   *zap.Logger
}

type annotationRepository struct {
	db      *gorm.DB
	idFloor int64
	vault   *security.CredentialVault
	log     *zap.Logger

	// resetMu is held exclusively by Reset and Migrate and shared by everything else
	resetMu    sync.RWMutex
	tableLocks *keyedMutex
}

// NewAnnotationRepository creates a new instance of AnnotationRepository
func NewAnnotationRepository(db *gorm.DB, opts Options) AnnotationRepository {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &annotationRepository{
		db:         db,
		idFloor:    opts.IDFloor,
		vault:      opts.Vault,
		log:        opts.Log.Named("annotation-store"),
		tableLocks: newKeyedMutex(),
	}
}

// Create inserts the connection and every table row in one transaction
func (r *annotationRepository) Create(ctx context.Context, kind model.EngineKind, params model.ConnectionParams, tables []model.TableDescriptor) (int64, error) {
	r.resetMu.RLock()
	defer r.resetMu.RUnlock()

	conn := model.NewSavedConnection(kind, params, tables)
	if r.vault != nil && conn.Password != nil {
		sealed, err := r.vault.Seal(*conn.Password)
		if err != nil {
			return 0, utils.NewPersistenceError(err, "failed to seal connection password")
		}
		conn.Password = &sealed
	}

	schemas := conn.Schemas
	conn.Schemas = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(conn).Error; err != nil {
			return err
		}
		if len(schemas) == 0 {
			return nil
		}
		for i := range schemas {
			schemas[i].ConnectionID = conn.ID
		}
		return tx.CreateInBatches(schemas, 100).Error
	})
	if err != nil {
		return 0, utils.NewPersistenceError(err, "failed to store connection snapshot")
	}

	r.log.Debug("connection stored", zap.Int64("id", conn.ID), zap.Int("tables", len(schemas)))
	return conn.ID, nil
}

// Get retrieves a connection with its tables in snapshot order
func (r *annotationRepository) Get(ctx context.Context, id int64) (*model.ConnectionRecord, error) {
	r.resetMu.RLock()
	defer r.resetMu.RUnlock()

	var conn model.SavedConnection
	result := r.db.WithContext(ctx).
		Preload("Schemas", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordinal ASC").Order("id ASC")
		}).
		Where("id = ?", id).
		First(&conn)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, utils.NewPersistenceError(result.Error, "failed to load connection")
	}

	if r.vault != nil && conn.Password != nil {
		plain, err := r.vault.Open(*conn.Password)
		if err != nil {
			return nil, utils.NewPersistenceError(err, "failed to open connection password")
		}
		conn.Password = &plain
	}

	return conn.ToRecord(), nil
}

// Count returns the number of stored connections
func (r *annotationRepository) Count(ctx context.Context) (int64, error) {
	r.resetMu.RLock()
	defer r.resetMu.RUnlock()

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.SavedConnection{}).Count(&total).Error; err != nil {
		return 0, utils.NewPersistenceError(err, "failed to count connections")
	}
	return total, nil
}

// SetGlobalContext replaces the connection-wide context
func (r *annotationRepository) SetGlobalContext(ctx context.Context, id int64, text string) (bool, error) {
	r.resetMu.RLock()
	defer r.resetMu.RUnlock()

	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conn model.SavedConnection
		err := tx.Select("id").Where("id = ?", id).Take(&conn).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&model.SavedConnection{}).Where("id = ?", id).Update("global_context", text).Error; err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, utils.NewPersistenceError(err, "failed to update global context")
	}
	return found, nil
}

// SetTableContext replaces the context of one table
func (r *annotationRepository) SetTableContext(ctx context.Context, id int64, table, text string) (bool, error) {
	r.resetMu.RLock()
	defer r.resetMu.RUnlock()

	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var schema model.SavedSchema
		err := tx.Select("id").Where("connection_id = ? AND table_name = ?", id, table).Take(&schema).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&model.SavedSchema{}).Where("id = ?", schema.ID).Update("table_context", text).Error; err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, utils.NewPersistenceError(err, "failed to update table context")
	}
	return found, nil
}

// SetColumnDescription rewrites the table's column document with one description changed.
// Writers of the same table are serialized in-process and by a row lock where the
// store supports one, so concurrent updates to sibling columns are all kept.
func (r *annotationRepository) SetColumnDescription(ctx context.Context, id int64, table, column, text string) (bool, error) {
	r.resetMu.RLock()
	defer r.resetMu.RUnlock()

	unlock := r.tableLocks.Lock(strconv.FormatInt(id, 10) + "/" + table)
	defer unlock()

	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var schema model.SavedSchema
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("connection_id = ? AND table_name = ?", id, table).
			Take(&schema).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if !schema.Columns.SetDescription(column, text) {
			return nil
		}

		if err := tx.Model(&model.SavedSchema{}).Where("id = ?", schema.ID).Update("columns_json", schema.Columns).Error; err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, utils.NewPersistenceError(err, "failed to update column description")
	}
	return found, nil
}

// Reset deletes every connection and table row in one transaction, then makes sure the
// store structure exists and restarts id assignment at the floor. Both steps run under
// the exclusive lock, so no other operation observes the store in between. A failure
// after the rows are gone wraps ErrStoreReinit.
func (r *annotationRepository) Reset(ctx context.Context) error {
	r.resetMu.Lock()
	defer r.resetMu.Unlock()

	db := r.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&model.SavedSchema{}, &model.SavedConnection{}} {
			if !tx.Migrator().HasTable(m) {
				continue
			}
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.NewPersistenceError(err, "failed to wipe store")
	}

	if err := r.reinitialize(db); err != nil {
		return utils.NewPersistenceError(fmt.Errorf("%w: %w", ErrStoreReinit, err), "failed to re-establish store after wipe")
	}

	r.log.Info("annotation store reset")
	return nil
}

func (r *annotationRepository) reinitialize(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.SavedConnection{}, &model.SavedSchema{}); err != nil {
		return err
	}
	floor := r.idFloor
	if floor < 1 {
		floor = 1
	}
	return applyIDFloor(db, floor)
}

// Migrate creates the store tables and applies the id floor to an empty store
func (r *annotationRepository) Migrate(ctx context.Context) error {
	r.resetMu.Lock()
	defer r.resetMu.Unlock()

	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&model.SavedConnection{}, &model.SavedSchema{}); err != nil {
		return utils.NewPersistenceError(err, "failed to migrate store tables")
	}

	if r.idFloor <= 1 {
		return nil
	}

	var total int64
	if err := db.Model(&model.SavedConnection{}).Count(&total).Error; err != nil {
		return utils.NewPersistenceError(err, "failed to count connections")
	}
	if total > 0 {
		return nil
	}

	if err := applyIDFloor(db, r.idFloor); err != nil {
		return utils.NewPersistenceError(err, "failed to apply id floor")
	}
	r.log.Debug("id floor applied", zap.Int64("floor", r.idFloor))
	return nil
}

// Ping checks that the backing store is reachable
func (r *annotationRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// applyIDFloor makes the next connection id at least floor
func applyIDFloor(db *gorm.DB, floor int64) error {
	table := model.SavedConnection{}.TableName()

	switch name := db.Dialector.Name(); name {
	case "postgres":
		return db.Exec("SELECT setval(pg_get_serial_sequence(?, 'id'), ?, false)", table, floor).Error
	case "mysql":
		return db.Exec(fmt.Sprintf("ALTER TABLE %s AUTO_INCREMENT = %d", table, floor)).Error
	case "sqlite":
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table).Error; err != nil {
				return err
			}
			return tx.Exec("INSERT INTO sqlite_sequence (name, seq) VALUES (?, ?)", table, floor-1).Error
		})
	default:
		return fmt.Errorf("id floor not supported for %s store", name)
	}
}
