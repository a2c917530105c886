package cli

import (
	"context"
	"log/slog"

	"github.com/roach88/plandeck/internal/config"
	"github.com/roach88/plandeck/internal/store"
	"github.com/roach88/plandeck/internal/templates"
)

// workspace is the template registry backed by the SQLite slot.
type workspace struct {
	cfg      config.Config
	store    *store.Store
	registry *templates.Registry
	logger   *slog.Logger
}

// openWorkspace opens the database named by cfg and restores the
// registry from it. The caller must Close the workspace.
func openWorkspace(ctx context.Context, cfg config.Config, logger *slog.Logger) (*workspace, error) {
	logger.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	reg, err := templates.New(ctx, st,
		templates.WithLogger(logger),
		templates.WithStorageKey(cfg.StorageKey))
	if err != nil {
		_ = st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load templates", err)
	}

	return &workspace{cfg: cfg, store: st, registry: reg, logger: logger}, nil
}

// Revision returns the number of writes to the templates slot.
func (w *workspace) Revision(ctx context.Context) int64 {
	rev, err := w.store.Revision(ctx, w.cfg.StorageKey)
	if err != nil {
		w.logger.Warn("failed to read templates revision", "error", err)
	}
	return rev
}

func (w *workspace) Close() {
	if err := w.store.Close(); err != nil {
		w.logger.Error("error closing database", "error", err)
	}
}
