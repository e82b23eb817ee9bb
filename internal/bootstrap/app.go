package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"promette/internal/bootstrap/config"
	"promette/internal/bootstrap/database"
	"promette/internal/bootstrap/logging"
	"promette/internal/errs"
	"promette/internal/infrastructure/persistence/sqlite/model"
	correspondenceuc "promette/internal/usecase/correspondence"
)

type App struct {
	Config config.Config
	DB     *gorm.DB
}

func New(ctx context.Context, configFile string) (*App, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "loading application config", slog.String("config_file", configFile))

	cfg, err := config.Load(logCtx, configFile)
	if err != nil {
		return nil, errs.Wrap(err, "load config")
	}

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, errs.Wrap(err, "open database")
	}

	logging.Info(logCtx, "application bootstrap completed", slog.String("database_driver", cfg.Database.Driver))

	return &App{
		Config: cfg,
		DB:     db,
	}, nil
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "start schema migration")

	if err := a.DB.WithContext(ctx).AutoMigrate(
		&model.Correspondence{},
		&model.StateEntry{},
		&model.FolioCounter{},
		&model.Position{},
		&model.Priority{},
		&model.DeliveryMethod{},
		&model.DirectoryKV{},
	); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	logging.Info(logCtx, "schema migration completed")
	return nil
}

// SeedCatalog applies the catalog profile's lookup and position seeds.
// Existing rows win; seeding is idempotent.
func (a *App) SeedCatalog(ctx context.Context, profile correspondenceuc.CatalogProfile) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	db := a.DB.WithContext(ctx)

	for _, item := range profile.Priorities {
		row := model.Priority{PriorityID: item.ID, Name: item.Name}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return errs.Wrapf(err, "seed priority %d", item.ID)
		}
	}
	for _, item := range profile.DeliveryMethods {
		row := model.DeliveryMethod{DeliveryMethodID: item.ID, Name: item.Name}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return errs.Wrapf(err, "seed delivery method %d", item.ID)
		}
	}
	for _, item := range profile.Positions {
		row := model.Position{
			PositionID:   item.ID,
			Title:        item.Title,
			HolderUserID: item.HolderUserID,
			HolderName:   item.HolderName,
			Area:         item.Area,
			Active:       item.Active,
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return errs.Wrapf(err, "seed position %d", item.ID)
		}
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "bootstrap.app")),
		"catalog seeds applied",
		slog.Int("priorities", len(profile.Priorities)),
		slog.Int("delivery_methods", len(profile.DeliveryMethods)),
		slog.Int("positions", len(profile.Positions)),
	)
	return nil
}

func (a *App) Close(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	sqlDB, err := a.DB.DB()
	if err != nil {
		return errs.Wrap(err, "get sql db")
	}

	if err := sqlDB.Close(); err != nil {
		return errs.Wrap(err, "close sql db")
	}

	logging.Info(logging.WithAttrs(ctx, slog.String("component", "bootstrap.app")), "database connection closed")
	return nil
}
