package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"play-extract/pkg/config"
	"play-extract/pkg/logging"
	"play-extract/pkg/playdownloadservice"
)

const lockFileName = ".playextract.lock"

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *zap.Logger
	loggerErr  error

	runID string
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
		runID:       uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger(stderr io.Writer) (*zap.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		level := cfg.Logging.Level
		if c.verboseFlag != nil && *c.verboseFlag {
			level = "debug"
		}
		logger, err := logging.New(logging.Options{
			Level:      level,
			Format:     cfg.Logging.Format,
			File:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Output:     stderr,
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger.With(zap.String("run_id", c.runID))
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) serviceConfig(stderr io.Writer) (playdownloadservice.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return playdownloadservice.Config{}, err
	}
	logger, err := c.ensureLogger(stderr)
	if err != nil {
		return playdownloadservice.Config{}, err
	}
	return playdownloadservice.Config{App: cfg, Logger: logger, RunID: c.runID}, nil
}

func (c *commandContext) syncLogger() {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

// lockOutputDir takes an exclusive lock on the output directory so two
// processes never write it at once
func lockOutputDir(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another playextract process is writing " + dir)
	}
	return lock, nil
}
