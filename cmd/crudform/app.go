package main

import (
	"context"
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"
	"gorm.io/gorm"

	crudform "github.com/goliatone/go-crudform"
	"github.com/goliatone/go-crudform/internal/config"
	"github.com/goliatone/go-crudform/internal/example"
	"github.com/goliatone/go-crudform/internal/logging"
	"github.com/goliatone/go-crudform/internal/storage/sqlite"
	"github.com/goliatone/go-crudform/pkg/metrics"
	"github.com/goliatone/go-crudform/pkg/openapi"
	"github.com/goliatone/go-crudform/pkg/page"
)

const (
	appName    = "crudform"
	appVersion = "0.1.0"
)

// app holds everything a command needs once configuration is loaded and the
// database is migrated.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *gorm.DB
	metrics *metrics.Metrics
	crud    *crudform.CRUD[example.ExampleModel]
}

func openApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.Log.Level)

	db, err := sqlite.OpenURL(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(ctx, db, logger); err != nil {
		_ = sqlite.Close(db)
		return nil, err
	}

	m := metrics.New()
	crud, err := crudform.NewGormCRUD[example.ExampleModel](db,
		crudform.WithLogger(logger),
		crudform.WithMetrics(m),
	)
	if err != nil {
		_ = sqlite.Close(db)
		return nil, err
	}

	logger.Debug("application ready", "database", cfg.SQLite.Database)
	return &app{cfg: cfg, logger: logger, db: db, metrics: m, crud: crud}, nil
}

func (a *app) Close() error {
	return sqlite.Close(a.db)
}

// shell builds the two section navigation: the readme and the CRUD page.
func (a *app) shell() (*page.Shell, error) {
	home, err := page.NewMarkdownPage("", example.Readme())
	if err != nil {
		return nil, err
	}
	return crudform.NewShell(
		crudform.Section{Name: example.HomeSection, Page: home},
		crudform.Section{Name: example.CRUDSection, Page: a.crud.Page},
	)
}

func (a *app) document(ctx context.Context) (*openapi3.T, error) {
	return openapi.Document(ctx, appName, appVersion, a.crud.Schema)
}
