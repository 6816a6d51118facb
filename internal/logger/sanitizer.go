package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SanitizerCore masks credentials before they reach the wrapped core. Fields are matched
// by key (case-insensitive); string values carrying a bearer credential are masked
// whatever their key.
type SanitizerCore struct {
	zapcore.Core
	sensitive map[string]struct{}
	mask      string
}

func NewSanitizerCore(core zapcore.Core, sensitiveFields []string, mask string) *SanitizerCore {
	sensitive := make(map[string]struct{}, len(sensitiveFields))
	for _, f := range sensitiveFields {
		sensitive[strings.ToLower(f)] = struct{}{}
	}
	return &SanitizerCore{
		Core:      core,
		sensitive: sensitive,
		mask:      mask,
	}
}

// With sanitizes context fields too, otherwise logger.With(zap.String("token", ...))
// would bypass masking.
func (s *SanitizerCore) With(fields []zapcore.Field) zapcore.Core {
	return &SanitizerCore{
		Core:      s.Core.With(s.sanitize(fields)),
		sensitive: s.sensitive,
		mask:      s.mask,
	}
}

func (s *SanitizerCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if s.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, s)
	}
	return checkedEntry
}

func (s *SanitizerCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return s.Core.Write(entry, s.sanitize(fields))
}

func (s *SanitizerCore) Sync() error {
	return s.Core.Sync()
}

func (s *SanitizerCore) sanitize(fields []zapcore.Field) []zapcore.Field {
	out := make([]zapcore.Field, len(fields))
	copy(out, fields)

	for i, field := range out {
		if _, ok := s.sensitive[strings.ToLower(field.Key)]; ok {
			out[i] = zap.String(field.Key, s.mask)
			continue
		}
		if field.Type == zapcore.StringType && strings.HasPrefix(field.String, "Bearer ") {
			out[i] = zap.String(field.Key, "Bearer "+s.mask)
		}
	}
	return out
}
