package main

import (
	"log/slog"
	"strings"
	"sync"

	"zcomx/internal/config"
	"zcomx/internal/logging"
	"zcomx/internal/queue"
	"zcomx/internal/store"
)

// commandContext lazily opens the shared dependencies so cheap commands
// (help, version) never touch the database.
type commandContext struct {
	configFlag *string
	verbosity  *int

	once   sync.Once
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	queue  *queue.Store
	err    error
}

func newCommandContext(configFlag *string, verbosity *int) *commandContext {
	return &commandContext{configFlag: configFlag, verbosity: verbosity}
}

func (c *commandContext) ensure() error {
	c.once.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.err = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.err = err
			return
		}

		level := cfg.Logging.Level
		if c.verbosity != nil {
			switch {
			case *c.verbosity >= 2:
				level = "debug"
			case *c.verbosity == 1:
				level = "info"
			}
		}
		logger, err := logging.NewForLogDir(cfg.Paths.LogDir, level, cfg.Logging.Format)
		if err != nil {
			c.err = err
			return
		}

		st, err := store.Open(cfg)
		if err != nil {
			c.err = err
			return
		}
		q, err := queue.Open(st.DB(), cfg, logger)
		if err != nil {
			st.Close()
			c.err = err
			return
		}

		c.cfg = cfg
		c.logger = logger
		c.store = st
		c.queue = q
	})
	return c.err
}

func (c *commandContext) Config() (*config.Config, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return c.cfg, nil
}

func (c *commandContext) Logger() *slog.Logger {
	if err := c.ensure(); err != nil {
		return logging.NewNop()
	}
	return c.logger
}

func (c *commandContext) Store() (*store.Store, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return c.store, nil
}

func (c *commandContext) Queue() (*queue.Store, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return c.queue, nil
}
