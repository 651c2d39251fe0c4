package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"datascout/internal/database"
	"datascout/internal/database/drivers/common"
	"datascout/internal/database/metadata"
	"datascout/internal/metrics"
	"datascout/internal/model"
	"datascout/internal/repository"
	"datascout/internal/utils"
)

// ConnectionService runs the connect pipeline and the store-wide reset
type ConnectionService interface {
	Connect(ctx context.Context, kind model.EngineKind, params model.ConnectionParams) (*ConnectResult, error)
	ResetAll(ctx context.Context) error
	GetConnection(ctx context.Context, id int64) (*model.ConnectionRecord, error)
}

// ConnectResult is the identity of a newly registered connection with the tables it holds
type ConnectResult struct {
	ID     int64                   `json:"id"`
	Tables []model.TableDescriptor `json:"tables"`
}

// ConnectionServiceConfig holds the tunables of the connect pipeline
type ConnectionServiceConfig struct {
	// ConnectTimeout bounds the dial and, separately, the catalog read
	ConnectTimeout time.Duration
}

// catalogExtractor reads the raw catalog behind an open handle
type catalogExtractor interface {
	Extract(ctx context.Context, h *database.Handle) ([]common.RawTable, error)
}

type connectionService struct {
	registry  *database.DriverRegistry
	extractor catalogExtractor
	repo      repository.AnnotationRepository
	validate  *validator.Validate
	cfg       ConnectionServiceConfig
	log       *zap.Logger
}

// NewConnectionService creates a new instance of ConnectionService
func NewConnectionService(registry *database.DriverRegistry, repo repository.AnnotationRepository, cfg ConnectionServiceConfig, log *zap.Logger) ConnectionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &connectionService{
		registry:  registry,
		extractor: metadata.NewMetadataExtractor(log),
		repo:      repo,
		validate:  validator.New(),
		cfg:       cfg,
		log:       log.Named("connection-service"),
	}
}

// Connect opens the target, snapshots its schema and registers it in the store.
// A record is created only when every earlier step succeeded.
func (s *connectionService) Connect(ctx context.Context, kind model.EngineKind, params model.ConnectionParams) (*ConnectResult, error) {
	start := time.Now()
	result, err := s.connect(ctx, kind, params)
	metrics.RecordConnect(string(kind), outcomeLabel(err), time.Since(start))

	if err != nil {
		s.log.Warn("connect failed",
			zap.String("engine", string(kind)),
			zap.Any("params", params.Redacted()),
			zap.Error(err))
		return nil, err
	}

	s.log.Info("connection registered",
		zap.String("engine", string(kind)),
		zap.Int64("id", result.ID),
		zap.Int("tables", len(result.Tables)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (s *connectionService) connect(ctx context.Context, kind model.EngineKind, params model.ConnectionParams) (*ConnectResult, error) {
	driver, err := s.registry.GetDriver(kind)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Struct(params); err != nil {
		return nil, utils.NewValidationError("Invalid connection parameters", err.Error())
	}
	if err := driver.Validate(&params); err != nil {
		return nil, err
	}

	handle, err := database.Open(ctx, driver, &params, s.cfg.ConnectTimeout, s.log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := handle.Close(); cerr != nil {
			s.log.Warn("failed to close target connection", zap.String("engine", string(kind)), zap.Error(cerr))
		}
	}()

	// the catalog read gets its own budget; Open's deadline ended with the dial
	introspectCtx := ctx
	if s.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		introspectCtx, cancel = context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		defer cancel()
	}

	introspectStart := time.Now()
	raw, err := s.extractor.Extract(introspectCtx, handle)
	if err != nil {
		return nil, err
	}

	tables, err := metadata.Normalize(raw)
	if err != nil {
		return nil, err
	}
	metrics.RecordIntrospection(string(kind), len(tables), time.Since(introspectStart))

	// the target is no longer needed once the snapshot is in memory
	if cerr := handle.Close(); cerr != nil {
		s.log.Warn("failed to close target connection", zap.String("engine", string(kind)), zap.Error(cerr))
	}

	if err := ctx.Err(); err != nil {
		return nil, utils.NewIntrospectionError(err, "connect abandoned before the snapshot was stored")
	}

	// once started, the insert runs to completion so it cannot be half-written
	id, err := s.repo.Create(context.WithoutCancel(ctx), kind, params, tables)
	if err != nil {
		return nil, err
	}

	return &ConnectResult{ID: id, Tables: tables}, nil
}

// ResetAll wipes every stored connection and re-initializes the store in one step.
// A failed wipe is RESET_FAILED; a failed re-initialization after a successful wipe is REINIT_FAILED.
func (s *connectionService) ResetAll(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		if errors.Is(err, repository.ErrStoreReinit) {
			metrics.RecordStoreReset("reinit_failed")
			s.log.Error("annotation store re-initialization failed", zap.Error(err))
			return utils.NewErrorBuilder(utils.ErrCodeReinitFailed).WithCause(err).Build()
		}
		metrics.RecordStoreReset("reset_failed")
		s.log.Error("annotation store reset failed", zap.Error(err))
		return utils.NewErrorBuilder(utils.ErrCodeResetFailed).WithCause(err).Build()
	}

	metrics.RecordStoreReset("success")
	s.log.Info("annotation store reset and re-initialized")
	return nil
}

// GetConnection returns a stored connection with its annotations
func (s *connectionService) GetConnection(ctx context.Context, id int64) (*model.ConnectionRecord, error) {
	rec, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrConnectionNotFound) {
		return nil, utils.NewNotFoundError("Connection")
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// outcomeLabel maps a connect error onto its metric label
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return utils.ErrCodeInternalError
}
