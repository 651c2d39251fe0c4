package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"datascout/internal/database/drivers"
	"datascout/internal/model"
	"datascout/internal/utils"
)

// Prober is implemented by drivers that can check reachability before dialing
type Prober interface {
	Probe(params *model.ConnectionParams) error
}

// Handle is a live connection to a target database. It must be closed by whoever
// opened it, on every exit path.
type Handle struct {
	kind  model.EngineKind
	db    *gorm.DB
	sqlDB *sql.DB

	closeOnce sync.Once
	closeErr  error
}

// Kind returns the engine the handle is connected to
func (h *Handle) Kind() model.EngineKind {
	return h.kind
}

// DB returns the gorm handle bound to ctx
func (h *Handle) DB(ctx context.Context) *gorm.DB {
	return h.db.WithContext(ctx)
}

// Close releases the underlying connection pool. Safe to call more than once.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		if h.sqlDB != nil {
			h.closeErr = h.sqlDB.Close()
		}
	})
	return h.closeErr
}

type openResult struct {
	handle *Handle
	err    error
}

// Open dials the target database described by params. Dialing and the initial ping
// are bounded by timeout and by ctx; on expiry a ConnectionError is returned and any
// late-arriving connection is closed in the background.
func Open(ctx context.Context, driver drivers.Driver, params *model.ConnectionParams, timeout time.Duration, log *zap.Logger) (*Handle, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if prober, ok := driver.(Prober); ok {
		if err := prober.Probe(params); err != nil {
			return nil, utils.NewConnectionError(err, fmt.Sprintf("%s target is unreachable", driver.Kind()))
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dsn := driver.BuildDSN(params, timeout)
	results := make(chan openResult, 1)

	go func() {
		h, err := dial(ctx, driver, dsn)
		results <- openResult{handle: h, err: err}
	}()

	select {
	case r := <-results:
		if r.err != nil {
			log.Debug("target database dial failed",
				zap.String("engine", string(driver.Kind())),
				zap.Error(r.err))
			return nil, utils.NewConnectionError(r.err, fmt.Sprintf("failed to connect to %s", driver.Kind()))
		}
		return r.handle, nil
	case <-ctx.Done():
		go func() {
			if r := <-results; r.handle != nil {
				_ = r.handle.Close()
			}
		}()
		return nil, utils.NewConnectionError(ctx.Err(), fmt.Sprintf("timed out connecting to %s", driver.Kind()))
	}
}

func dial(ctx context.Context, driver drivers.Driver, dsn string) (*Handle, error) {
	db, err := gorm.Open(driver.Dialector(dsn), &gorm.Config{
		Logger:                 logger.Discard,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Handle{kind: driver.Kind(), db: db, sqlDB: sqlDB}, nil
}
