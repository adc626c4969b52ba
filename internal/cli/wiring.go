package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opencode-ai/pipebuilder/internal/builderd"
	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/config"
	"github.com/opencode-ai/pipebuilder/internal/db"
	"github.com/opencode-ai/pipebuilder/internal/editor"
	"github.com/opencode-ai/pipebuilder/internal/scriptgen"
)

// openDatabase opens and migrates the history database.
func openDatabase(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	path := strings.TrimSpace(cfg.Database.Path)
	if path == "" {
		return nil, &PreflightError{
			Message:  "generation history is disabled",
			Hint:     "Set database.path in the config file",
			NextStep: "pipebuilder init",
		}
	}
	dbCfg := db.DefaultConfig()
	dbCfg.Path = path
	database, err := db.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := database.MigrateUp(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

// backend bundles the catalog and generator selected by config, plus the
// resources that must be released afterwards.
type backend struct {
	Catalog   catalog.Loader
	Generator editor.Generator
	client    *builderd.Client
	database  *db.DB
}

func (b *backend) Close() error {
	var errs []error
	if b.client != nil {
		errs = append(errs, b.client.Close())
	}
	if b.database != nil {
		errs = append(errs, b.database.Close())
	}
	return errors.Join(errs...)
}

// newBackend wires the catalog source and generator from cfg. Local
// generation and catalog loads are recorded in the history database when
// one is configured; history failures never block either.
func newBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{}
	log := logger("cli")

	if cfg.Generator.Mode == config.GeneratorModeRemote || cfg.Catalog.Source == config.CatalogSourceRemote {
		client, err := builderd.NewClient(cfg.Generator.Address, builderd.WithTimeout(cfg.Generator.Timeout))
		if err != nil {
			return nil, fmt.Errorf("connect to generator daemon: %w", err)
		}
		b.client = client
	}

	if cfg.Generator.Mode != config.GeneratorModeRemote && strings.TrimSpace(cfg.Database.Path) != "" {
		database, err := openDatabase(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Msg("generation history unavailable")
		} else {
			b.database = database
		}
	}

	loader, err := catalogLoader(cfg, b.client)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	if b.database != nil {
		loader = &editor.RecordingLoader{
			Next:   loader,
			Source: cfg.Catalog.Source,
			Events: db.NewEventRepository(b.database),
			Logger: logger("history"),
		}
	}
	b.Catalog = catalog.Once(loader)

	switch {
	case cfg.Generator.Mode == config.GeneratorModeRemote:
		b.Generator = b.client
	case b.database != nil:
		b.Generator = &editor.RecordingGenerator{
			Next:   scriptgen.New(scriptgen.WithLogger(logger("scriptgen"))),
			Runs:   db.NewRunRepository(b.database),
			Events: db.NewEventRepository(b.database),
			Logger: logger("history"),
		}
	default:
		b.Generator = scriptgen.New(scriptgen.WithLogger(logger("scriptgen")))
	}
	return b, nil
}

func catalogLoader(cfg *config.Config, client *builderd.Client) (catalog.Loader, error) {
	switch cfg.Catalog.Source {
	case config.CatalogSourceBuiltin:
		return catalog.BuiltinLoader{}, nil
	case config.CatalogSourceFile:
		return catalog.FileLoader{Path: cfg.Catalog.Path}, nil
	case config.CatalogSourceRemote:
		if client == nil {
			return nil, errors.New("remote catalog requires a daemon client")
		}
		return client, nil
	default:
		return catalog.SearchPathLoader{ProjectDir: projectDir(cfg)}, nil
	}
}

func projectDir(cfg *config.Config) string {
	if dir := strings.TrimSpace(cfg.Catalog.ProjectDir); dir != "" {
		return dir
	}
	return "."
}
