package logger

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DefaultLoggerName is the logger every component falls back to when log.config.json
// does not declare a dedicated logger for it.
const DefaultLoggerName = "healthflow"

type LoggerManager struct {
	loggers       map[string]*zap.Logger
	mu            sync.RWMutex
	defaultConfig Config
}

// NewLoggerManager builds every logger declared in the given config files. Missing files
// are skipped; when nothing is declared a default logger is built from DefaultConfig.
func NewLoggerManager(configPaths []string) (*LoggerManager, error) {
	lm := &LoggerManager{
		loggers:       make(map[string]*zap.Logger),
		defaultConfig: DefaultConfig,
	}

	for _, path := range configPaths {
		cfgs, err := loadConfigFile(path)
		if err != nil {
			return nil, err
		}
		for name, cfg := range cfgs {
			cfg := cfg
			l, err := buildLogger(name, &cfg)
			if err != nil {
				return nil, fmt.Errorf("failed to build logger '%s': %w", name, err)
			}
			if err := lm.AddLogger(name, l); err != nil {
				return nil, fmt.Errorf("failed to add logger '%s' from config '%s': %w", name, path, err)
			}
		}
	}

	if _, err := lm.GetLogger(DefaultLoggerName); err != nil {
		cfg := lm.defaultConfig
		l, err := buildLogger(DefaultLoggerName, &cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build default logger: %w", err)
		}
		if err := lm.AddLogger(DefaultLoggerName, l); err != nil {
			return nil, err
		}
	}

	return lm, nil
}

// AddLogger registers a logger. Names are unique.
func (lm *LoggerManager) AddLogger(name string, logger *zap.Logger) error {
	if logger == nil {
		return fmt.Errorf("logger cannot be nil")
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	if _, exists := lm.loggers[name]; exists {
		return fmt.Errorf("logger '%s' already exists", name)
	}
	lm.loggers[name] = logger
	return nil
}

func (lm *LoggerManager) GetLogger(name string) (*zap.Logger, error) {
	lm.mu.RLock()
	logger, exists := lm.loggers[name]
	lm.mu.RUnlock()
	if exists {
		return logger, nil
	}
	return nil, fmt.Errorf("logger '%s' not found", name)
}

// Named returns the logger configured for a component, or a child of the default logger.
func (lm *LoggerManager) Named(component string) *zap.Logger {
	if l, err := lm.GetLogger(component); err == nil {
		return l
	}
	l, err := lm.GetLogger(DefaultLoggerName)
	if err != nil {
		return zap.NewNop()
	}
	return l.Named(component)
}

// Sync flushes all managed loggers and joins every error encountered.
func (lm *LoggerManager) Sync() error {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	var errs []error
	for name, logger := range lm.loggers {
		if err := logger.Sync(); err != nil && !isConsoleSyncError(err) {
			errs = append(errs, fmt.Errorf("failed to sync logger '%s': %w", name, err))
		}
	}
	return errors.Join(errs...)
}
