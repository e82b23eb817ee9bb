package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"promette/internal/bootstrap/config"
	"promette/internal/bootstrap/database"
	"promette/internal/bootstrap/logging"
	domaincorr "promette/internal/domain/correspondence"
	cacheinfra "promette/internal/infrastructure/cache"
	"promette/internal/infrastructure/notify"
	sqliterepo "promette/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "promette/internal/infrastructure/persistence/sqlite/uow"
	"promette/internal/ports"
	correspondenceuc "promette/internal/usecase/correspondence"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(provideCatalogProfile),
	fx.Provide(provideCatalog),
	fx.Provide(provideNotifier),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewCorrespondenceRepository,
			fx.As(new(ports.CorrespondenceRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewPositionRepository,
			fx.As(new(ports.PositionDirectory)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(correspondenceuc.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideCatalogProfile(cfg config.Config) (correspondenceuc.CatalogProfile, error) {
	return correspondenceuc.LoadCatalogProfile(cfg.Catalog.Path)
}

func provideCatalog(profile correspondenceuc.CatalogProfile) (*domaincorr.Catalog, error) {
	return profile.BuildCatalog()
}

func provideNotifier(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.TransitionNotifier, error) {
	if cfg.NATS.URL == "" {
		return notify.Noop{}, nil
	}

	notifier, err := notify.NewNATSNotifier(cfg.NATS.URL, cfg.NATS.Subject)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			notifier.Close()
			return nil
		},
	})

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx")),
		"transition notifier enabled",
		slog.String("subject", cfg.NATS.Subject),
	)
	return notifier, nil
}
