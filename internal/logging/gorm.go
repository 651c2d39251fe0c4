package logging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SlowQueryThreshold marks store statements worth a warning
const SlowQueryThreshold = 200 * time.Millisecond

// GormLogger routes gorm diagnostics through zap
type GormLogger struct {
	log   *zap.Logger
	level logger.LogLevel
}

// NewGormLogger maps an application log level onto gorm's verbosity
func NewGormLogger(log *zap.Logger, level string) *GormLogger {
	var lvl logger.LogLevel
	switch level {
	case "debug":
		lvl = logger.Info
	case "info", "warn":
		lvl = logger.Warn
	case "error":
		lvl = logger.Error
	default:
		lvl = logger.Warn
	}
	return &GormLogger{log: log.Named("gorm").WithOptions(zap.AddCallerSkip(3)), level: lvl}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error("store query failed",
			zap.Error(err), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case elapsed > SlowQueryThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		l.log.Warn("slow store query",
			zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case l.level >= logger.Info:
		sql, rows := fc()
		l.log.Debug("store query",
			zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	}
}
