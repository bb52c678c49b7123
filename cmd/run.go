package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/capitals/internal/config"
	"github.com/abhisek/capitals/internal/importer"
	"github.com/abhisek/capitals/internal/logging"
	"github.com/abhisek/capitals/internal/session"
	"github.com/abhisek/capitals/internal/store"
)

// env bundles the opened dependencies a command runs against.
type env struct {
	cfg   config.Config
	log   *slog.Logger
	store *store.Store
}

// openEnv resolves config, builds the logger and opens the store.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	st, err := store.OpenDriver(cmd.Context(), cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", "driver", cfg.Driver)
	return &env{cfg: cfg, log: log, store: st}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("close store", "err", err)
	}
}

func (e *env) source() (importer.Source, string) {
	if e.cfg.CSV == "" {
		return importer.EmbeddedSource(), "bundled data"
	}
	return importer.FileSource(e.cfg.CSV), e.cfg.CSV
}

// newController builds a controller over the env's store and loads the
// state catalog, seeding it if empty. Callers Close the controller.
func (e *env) newController(cmd *cobra.Command) (*session.Controller, error) {
	src, name := e.source()
	ctrl := session.New(session.Options{
		Catalog:    e.store,
		Source:     src,
		SourceName: name,
		Logger:     e.log,
	})
	if err := ctrl.Load(cmd.Context()); err != nil {
		ctrl.Close()
		return nil, err
	}
	return ctrl, nil
}
