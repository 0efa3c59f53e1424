package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/pokedex/pkg/db"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const queryMessage = "gorm.query"

type GormLoggerConfig struct {
	Level                gormlogger.LogLevel
	SlowThreshold        time.Duration
	IgnoreRecordNotFound bool
}

// DefaultGormLoggerConfig logs failed and slow statements only. Catalog
// lookups miss routinely while the resolver walks its strategies, so
// record-not-found is never reported.
func DefaultGormLoggerConfig() GormLoggerConfig {
	return GormLoggerConfig{
		Level:                gormlogger.Warn,
		SlowThreshold:        200 * time.Millisecond,
		IgnoreRecordNotFound: true,
	}
}

// GormLogger routes gorm output into the request-scoped zap logger.
type GormLogger struct {
	cfg GormLoggerConfig
}

func NewGormLogger(cfg GormLoggerConfig) *GormLogger {
	return &GormLogger{cfg: cfg}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.cfg.Level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.emit(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.emit(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.emit(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) emit(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []interface{}) {
	if l.cfg.Level < min {
		return
	}
	fields := []zap.Field{zap.String("component", "gorm")}
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}
	if ce := FromContext(ctx).Check(lvl, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	lvl, ok := l.traceLevel(elapsed, err)
	if !ok {
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("component", "gorm"),
		zap.String("operation", operationFromSQL(sql)),
		zap.String("table", tableFromSQL(sql)),
		zap.String("sql", strings.TrimSpace(sql)),
		zap.Duration("elapsed", elapsed),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if ce := FromContext(ctx).Check(lvl, queryMessage); ce != nil {
		ce.Write(fields...)
	}
}

// traceLevel decides whether a statement is logged and at which level.
// Unique violations are expected when a create races on no or name and
// become conflicts upstream, so they are warnings rather than errors.
func (l *GormLogger) traceLevel(elapsed time.Duration, err error) (zapcore.Level, bool) {
	lvl := l.cfg.Level
	if lvl <= gormlogger.Silent {
		return 0, false
	}
	if err != nil {
		if errors.Is(err, gormlogger.ErrRecordNotFound) && l.cfg.IgnoreRecordNotFound {
			return 0, false
		}
		if db.IsDuplicateKeyErr(err) {
			return zapcore.WarnLevel, lvl >= gormlogger.Warn
		}
		return zapcore.ErrorLevel, lvl >= gormlogger.Error
	}
	if l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold && lvl >= gormlogger.Warn {
		return zapcore.WarnLevel, true
	}
	return zapcore.DebugLevel, lvl >= gormlogger.Info
}

// ParamsFilter drops bound values; names and attributes stay out of logs.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func operationFromSQL(sql string) string {
	for _, tok := range strings.Fields(strings.ToUpper(sql)) {
		tok = strings.Trim(tok, "();")
		switch tok {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			return tok
		}
	}
	return "UNKNOWN"
}

func tableFromSQL(sql string) string {
	toks := strings.Fields(sql)
	for i := 0; i+1 < len(toks); i++ {
		switch strings.ToUpper(toks[i]) {
		case "FROM", "INTO", "UPDATE":
			return strings.Trim(toks[i+1], "`\"();")
		}
	}
	return ""
}

var _ gormlogger.Interface = (*GormLogger)(nil)
