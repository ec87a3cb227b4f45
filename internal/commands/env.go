package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/splitter-dev/splitter/internal/config"
	"github.com/splitter-dev/splitter/internal/ledger"
	"github.com/splitter-dev/splitter/internal/store"
	"github.com/splitter-dev/splitter/internal/store/filestore"
	"github.com/splitter-dev/splitter/internal/store/sqlstore"
	"github.com/splitter-dev/splitter/internal/tags"
)

// project bundles what a command needs to work on a splitter project.
type project struct {
	cfg    *config.Config
	store  store.Store
	ledger *ledger.Ledger
}

func (p *project) Close() error {
	return p.store.Close()
}

// openProject loads the config, applies environment overrides, opens the
// configured store and loads the ledger. Relative storage paths resolve
// against the directory holding the config file.
func openProject(ctx context.Context, g *globalFlags) (*project, error) {
	cfg, err := config.Load(g.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no %s found; run `splitter init` first", g.configPath)
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	st, err := openStore(ctx, cfg, filepath.Dir(g.configPath))
	if err != nil {
		return nil, err
	}
	l, err := ledger.Open(ctx, st, tags.NewService(cfg.Tags, cfg.GeneralTag))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	return &project{cfg: cfg, store: st, ledger: l}, nil
}

func openStore(ctx context.Context, cfg *config.Config, baseDir string) (store.Store, error) {
	path := cfg.Storage.Path
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	slog.Debug("opening store", "backend", cfg.Storage.Backend, "path", path)

	switch cfg.Storage.Backend {
	case config.BackendFile:
		return filestore.New(path)
	case config.BackendSQLite:
		return sqlstore.OpenSQLite(ctx, path)
	case config.BackendPostgres:
		return sqlstore.OpenPostgres(ctx, cfg.Storage.DSN)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// withProject opens the project, runs fn and closes the store.
func withProject(ctx context.Context, g *globalFlags, fn func(p *project) error) error {
	p, err := openProject(ctx, g)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(p)
}
