package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging contract used across services: an
// action tag, a human message, the request id (empty outside request scope)
// and free-form details.
type Logger interface {
	Info(action, message, requestID string, details map[string]interface{})
	Debug(action, message, requestID string, details map[string]interface{})
	Error(action, message, requestID string, details map[string]interface{}, err error)
}

type zapLogger struct {
	z *zap.Logger
}

// New builds a JSON logger for the named service mode.
func New(service string) Logger {
	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "level",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
	}

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(zapcore.DebugLevel),
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}

	z, err := cfg.Build(zap.Fields(zap.String("service", service)))
	if err != nil {
		// The static config above cannot fail to build; fall back to the
		// no-op logger rather than aborting startup.
		z = zap.NewNop()
	}

	return &zapLogger{z: z}
}

// NewNop returns a logger that discards everything; used by tests.
func NewNop() Logger {
	return &zapLogger{z: zap.NewNop()}
}

func (l *zapLogger) Info(action, message, requestID string, details map[string]interface{}) {
	l.z.Info(message, l.fields(action, requestID, details)...)
}

func (l *zapLogger) Debug(action, message, requestID string, details map[string]interface{}) {
	l.z.Debug(message, l.fields(action, requestID, details)...)
}

func (l *zapLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
	fields := l.fields(action, requestID, details)
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	l.z.Error(message, fields...)
}

func (l *zapLogger) fields(action, requestID string, details map[string]interface{}) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	fields = append(fields, zap.String("action", action))
	if requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if len(details) > 0 {
		fields = append(fields, zap.Any("details", details))
	}
	return fields
}
