package logger

import (
	"errors"
	"syscall"
)

// DefaultConfig is used for any logger not declared in log.config.json.
// Console output goes to stderr so it never interleaves with command output.
var DefaultConfig = Config{
	Level:            "warn",
	OutputPaths:      []string{"stderr"},
	ErrorOutputPaths: []string{"stderr"},
	Development:      false,
	LogToConsole:     true,
	Sampling: Sampling{
		Initial:    100,
		Thereafter: 100,
	},
	Encoding: Encoding{
		TimeKey:         "time",
		LevelKey:        "level",
		NameKey:         "logger",
		CallerKey:       "caller",
		MessageKey:      "msg",
		StacktraceKey:   "stacktrace",
		LineEnding:      "\n",
		LevelEncoder:    "lowercase",
		TimeEncoder:     "iso8601",
		DurationEncoder: "string",
		CallerEncoder:   "short",
	},
	LogRotation: LogRotation{
		Enabled:    false,
		MaxSizeMB:  20,
		MaxBackups: 5,
		MaxAgeDays: 14,
		Compress:   true,
	},
	Sanitization: Sanitization{
		SensitiveFields: []string{
			"password",
			"token",
			"access_token",
			"refresh_token",
			"authorization",
		},
		Mask: "****",
	},
}

func assignDefaultValues(cfg *Config) {
	if cfg.Level == "" {
		cfg.Level = DefaultConfig.Level
	}
	if len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = DefaultConfig.OutputPaths
	}
	if len(cfg.ErrorOutputPaths) == 0 {
		cfg.ErrorOutputPaths = DefaultConfig.ErrorOutputPaths
	}
	if cfg.Encoding.TimeKey == "" {
		cfg.Encoding = DefaultConfig.Encoding
	}
	if cfg.Encoding.LevelEncoder == "" {
		cfg.Encoding.LevelEncoder = DefaultConfig.Encoding.LevelEncoder
	}
	if cfg.Encoding.TimeEncoder == "" {
		cfg.Encoding.TimeEncoder = DefaultConfig.Encoding.TimeEncoder
	}
	if cfg.Encoding.DurationEncoder == "" {
		cfg.Encoding.DurationEncoder = DefaultConfig.Encoding.DurationEncoder
	}
	if cfg.Encoding.CallerEncoder == "" {
		cfg.Encoding.CallerEncoder = DefaultConfig.Encoding.CallerEncoder
	}
	if cfg.LogRotation.MaxSizeMB == 0 {
		cfg.LogRotation.MaxSizeMB = DefaultConfig.LogRotation.MaxSizeMB
	}
	if cfg.LogRotation.MaxBackups == 0 {
		cfg.LogRotation.MaxBackups = DefaultConfig.LogRotation.MaxBackups
	}
	if cfg.LogRotation.MaxAgeDays == 0 {
		cfg.LogRotation.MaxAgeDays = DefaultConfig.LogRotation.MaxAgeDays
	}
	if cfg.Sanitization.SensitiveFields == nil {
		cfg.Sanitization = DefaultConfig.Sanitization
	}
	if cfg.Sanitization.Mask == "" {
		cfg.Sanitization.Mask = DefaultConfig.Sanitization.Mask
	}
}

// fsync on a terminal or pipe fails with EINVAL/ENOTTY, which is harmless.
func isConsoleSyncError(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)
}
