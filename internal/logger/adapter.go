package logger

import (
	"log"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapWriter is an io.Writer that forwards each written line to a zap logger, so
// standard library loggers (http.Server.ErrorLog) end up in the structured log.
type ZapWriter struct {
	logger *zap.Logger
	level  zapcore.Level
	source string
}

func NewZapWriter(logger *zap.Logger, level zapcore.Level, source string) *ZapWriter {
	return &ZapWriter{
		logger: logger.WithOptions(zap.AddCallerSkip(3)),
		level:  level,
		source: source,
	}
}

func (w *ZapWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	if ce := w.logger.Check(w.level, msg); ce != nil {
		if w.source != "" {
			ce.Write(zap.String("source", w.source))
		} else {
			ce.Write()
		}
	}
	return len(p), nil
}

// StdLogger wraps a ZapWriter in a *log.Logger.
func StdLogger(logger *zap.Logger, level zapcore.Level, source string) *log.Logger {
	return log.New(NewZapWriter(logger, level, source), "", 0)
}
