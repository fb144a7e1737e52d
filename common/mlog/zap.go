package mlog

import "go.uber.org/zap"

// ZapLogger adapts *zap.SugaredLogger to the Logger interface.
type ZapLogger struct {
	S *zap.SugaredLogger
}

// NewZapLogger builds a production zap logger at the given level.
func NewZapLogger(level Level) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()

	zapLevel := zap.InfoLevel
	switch level {
	case FatalLevel:
		zapLevel = zap.FatalLevel
	case ErrorLevel:
		zapLevel = zap.ErrorLevel
	case WarnLevel:
		zapLevel = zap.WarnLevel
	case DebugLevel:
		zapLevel = zap.DebugLevel
	}

	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &ZapLogger{S: logger.Sugar()}, nil
}

func (l *ZapLogger) Info(args ...any)                  { l.S.Info(args...) }
func (l *ZapLogger) Infof(format string, args ...any)  { l.S.Infof(format, args...) }
func (l *ZapLogger) Error(args ...any)                 { l.S.Error(args...) }
func (l *ZapLogger) Errorf(format string, args ...any) { l.S.Errorf(format, args...) }
func (l *ZapLogger) Warn(args ...any)                  { l.S.Warn(args...) }
func (l *ZapLogger) Warnf(format string, args ...any)  { l.S.Warnf(format, args...) }
func (l *ZapLogger) Debug(args ...any)                 { l.S.Debug(args...) }
func (l *ZapLogger) Debugf(format string, args ...any) { l.S.Debugf(format, args...) }
func (l *ZapLogger) Fatal(args ...any)                 { l.S.Fatal(args...) }
func (l *ZapLogger) Fatalf(format string, args ...any) { l.S.Fatalf(format, args...) }

func (l *ZapLogger) WithFields(fields ...any) Logger {
	return &ZapLogger{S: l.S.With(fields...)}
}

func (l *ZapLogger) Sync() error { return l.S.Sync() }
