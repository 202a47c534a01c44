package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/custodia-labs/idxbeast/internal/adapters/driven/fs"
	slogadapter "github.com/custodia-labs/idxbeast/internal/adapters/driven/slog"
	"github.com/custodia-labs/idxbeast/internal/adapters/driven/sqlite"
	"github.com/custodia-labs/idxbeast/internal/adapters/driven/web"
	"github.com/custodia-labs/idxbeast/internal/config"
	"github.com/custodia-labs/idxbeast/internal/core/ports/driven"
	"github.com/custodia-labs/idxbeast/internal/status"
)

func newLogger(level string) *slogadapter.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slogadapter.New(slog.New(handler))
}

func openStore(ctx context.Context, storePath string) (*sqlite.Store, func() error, error) {
	db, err := sqlite.Connect(ctx, sqlite.Config{Path: storePath})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	store := sqlite.New(db)
	return store, store.Close, nil
}

// buildSource decides whether root names a web URL or a filesystem path,
// per spec.md §6's single root_uri configuration surface, and returns the
// matching driven.DocumentSource.
func buildSource(cfg config.Config) driven.DocumentSource {
	if u, err := url.Parse(cfg.Root); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return web.New(cfg.Root, cfg.RecurseLinks)
	}
	return fs.New(cfg.Root, cfg.Extensions)
}

func newStatus() *status.Status {
	return status.New()
}
