package service

import (
	"context"

	"go.uber.org/zap"

	"datascout/internal/metrics"
	"datascout/internal/repository"
)

// AnnotationService records user-supplied context on stored connections.
// Each method reports false when the connection, table or column does not exist.
type AnnotationService interface {
	SetGlobalContext(ctx context.Context, id int64, text string) (bool, error)
	SetTableContext(ctx context.Context, id int64, table, text string) (bool, error)
	SetColumnDescription(ctx context.Context, id int64, table, column, text string) (bool, error)
}

type annotationService struct {
	repo repository.AnnotationRepository
	log  *zap.Logger
}

// NewAnnotationService creates a new instance of AnnotationService
func NewAnnotationService(repo repository.AnnotationRepository, log *zap.Logger) AnnotationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &annotationService{
		repo: repo,
		log:  log.Named("annotation-service"),
	}
}

func (s *annotationService) SetGlobalContext(ctx context.Context, id int64, text string) (bool, error) {
	ok, err := s.repo.SetGlobalContext(ctx, id, text)
	s.record("global", ok, err, zap.Int64("id", id))
	return ok, err
}

func (s *annotationService) SetTableContext(ctx context.Context, id int64, table, text string) (bool, error) {
	ok, err := s.repo.SetTableContext(ctx, id, table, text)
	s.record("table", ok, err, zap.Int64("id", id), zap.String("table", table))
	return ok, err
}

func (s *annotationService) SetColumnDescription(ctx context.Context, id int64, table, column, text string) (bool, error) {
	ok, err := s.repo.SetColumnDescription(ctx, id, table, column, text)
	s.record("column", ok, err, zap.Int64("id", id), zap.String("table", table), zap.String("column", column))
	return ok, err
}

func (s *annotationService) record(target string, ok bool, err error, fields ...zap.Field) {
	switch {
	case err != nil:
		metrics.RecordAnnotationUpdate(target, "error")
		s.log.Error("annotation update failed", append(fields, zap.String("target", target), zap.Error(err))...)
	case !ok:
		metrics.RecordAnnotationUpdate(target, "not_found")
		s.log.Debug("annotation target not found", append(fields, zap.String("target", target))...)
	default:
		metrics.RecordAnnotationUpdate(target, "updated")
		s.log.Debug("annotation updated", append(fields, zap.String("target", target))...)
	}
}
