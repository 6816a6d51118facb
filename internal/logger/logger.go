package logger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config describes a single named logger inside a log.config.json file.
type Config struct {
	Level            string       `json:"level"`
	OutputPaths      []string     `json:"outputPaths"`
	ErrorOutputPaths []string     `json:"errorOutputPaths"`
	Development      bool         `json:"development"`
	LogToConsole     bool         `json:"logToConsole"`
	Sampling         Sampling     `json:"sampling"`
	Encoding         Encoding     `json:"encodingConfig"`
	LogRotation      LogRotation  `json:"logRotation"`
	Sanitization     Sanitization `json:"sanitization"`
}

type Sampling struct {
	Initial    int `json:"initial"`
	Thereafter int `json:"thereafter"`
}

type Encoding struct {
	TimeKey         string `json:"timeKey"`
	LevelKey        string `json:"levelKey"`
	NameKey         string `json:"nameKey"`
	CallerKey       string `json:"callerKey"`
	MessageKey      string `json:"messageKey"`
	StacktraceKey   string `json:"stacktraceKey"`
	LineEnding      string `json:"lineEnding"`
	LevelEncoder    string `json:"levelEncoder"`
	TimeEncoder     string `json:"timeEncoder"`
	DurationEncoder string `json:"durationEncoder"`
	CallerEncoder   string `json:"callerEncoder"`
}

type LogRotation struct {
	Enabled    bool `json:"enabled"`
	MaxSizeMB  int  `json:"maxSizeMB"`
	MaxBackups int  `json:"maxBackups"`
	MaxAgeDays int  `json:"maxAgeDays"`
	Compress   bool `json:"compress"`
}

// Sanitization lists field keys whose values are replaced by Mask before writing.
type Sanitization struct {
	SensitiveFields []string `json:"sensitiveFields"`
	Mask            string   `json:"mask"`
}

// loadConfigFile reads one log.config.json. A missing file is not an error and yields no loggers.
func loadConfigFile(path string) (map[string]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read configuration file '%s': %w", path, err)
	}

	var wrapper struct {
		Loggers map[string]Config `json:"loggers"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file '%s': %w", path, err)
	}
	return wrapper.Loggers, nil
}

func buildLogger(name string, cfg *Config) (*zap.Logger, error) {
	assignDefaultValues(cfg)

	fileEncoder := zapcore.NewJSONEncoder(encoderConfig(cfg.Encoding, false))
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig(cfg.Encoding, cfg.Development))
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	var (
		cores   []zapcore.Core
		console bool
	)
	for _, path := range cfg.OutputPaths {
		if ws, ok := consoleSink(path); ok {
			cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.Lock(ws), level))
			console = true
			continue
		}

		ws, err := fileSink(path, cfg.LogRotation)
		if err != nil {
			return nil, err
		}
		cores = append(cores, NewAsyncCore(zapcore.NewCore(fileEncoder, ws, level), 1000, 100, 500*time.Millisecond))
	}

	// command output owns stdout
	if (cfg.Development || cfg.LogToConsole) && !console {
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level))
	}

	core := zapcore.NewTee(cores...)
	if cfg.Sampling.Initial > 0 && cfg.Sampling.Thereafter > 0 {
		core = zapcore.NewSamplerWithOptions(core, time.Second, cfg.Sampling.Initial, cfg.Sampling.Thereafter)
	}
	if len(cfg.Sanitization.SensitiveFields) > 0 {
		core = NewSanitizerCore(core, cfg.Sanitization.SensitiveFields, cfg.Sanitization.Mask)
	}

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)).Named(name), nil
}

func consoleSink(path string) (zapcore.WriteSyncer, bool) {
	switch path {
	case "stdout":
		return os.Stdout, true
	case "stderr":
		return os.Stderr, true
	}
	return nil, false
}

// fileSink appends to path, through lumberjack when rotation is enabled.
func fileSink(path string, rotation LogRotation) (zapcore.WriteSyncer, error) {
	if rotation.Enabled {
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   path,
			MaxSize:    rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAgeDays,
			Compress:   rotation.Compress,
		}), nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", path, err)
	}
	return zapcore.AddSync(file), nil
}

// encoderConfig maps the encoder names of log.config.json onto zap's own text forms.
// Unknown names select zap's default for that encoder.
func encoderConfig(e Encoding, color bool) zapcore.EncoderConfig {
	ec := zapcore.EncoderConfig{
		TimeKey:       e.TimeKey,
		LevelKey:      e.LevelKey,
		NameKey:       e.NameKey,
		CallerKey:     e.CallerKey,
		MessageKey:    e.MessageKey,
		StacktraceKey: e.StacktraceKey,
		LineEnding:    e.LineEnding,
	}

	levelEnc := strings.ToLower(e.LevelEncoder)
	if levelEnc == "uppercase" {
		levelEnc = "capital"
	}
	if color {
		levelEnc += "color"
	}
	durationEnc := strings.ToLower(e.DurationEncoder)
	if durationEnc == "millis" {
		durationEnc = "ms"
	}

	_ = ec.EncodeLevel.UnmarshalText([]byte(levelEnc))
	_ = ec.EncodeTime.UnmarshalText([]byte(strings.ToLower(e.TimeEncoder)))
	_ = ec.EncodeDuration.UnmarshalText([]byte(durationEnc))
	_ = ec.EncodeCaller.UnmarshalText([]byte(strings.ToLower(e.CallerEncoder)))
	return ec
}

// parseLevel accepts zap level names and "warning". Anything else is info.
func parseLevel(level string) zapcore.Level {
	level = strings.ToLower(level)
	if level == "warning" {
		return zapcore.WarnLevel
	}
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}
