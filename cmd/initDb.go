/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"promette/internal/bootstrap"
	"promette/internal/bootstrap/logging"
	"promette/internal/errs"
	correspondenceuc "promette/internal/usecase/correspondence"
)

var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize database schema and seed the workflow catalog",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ *correspondenceuc.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start init-db")

		if err := app.InitSchema(ctx); err != nil {
			logging.Error(ctx, "initialize schema failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize schema")
		}

		profile, err := correspondenceuc.LoadCatalogProfile(app.Config.Catalog.Path)
		if err != nil {
			return errs.Wrap(err, "load catalog profile")
		}
		if err := app.SeedCatalog(ctx, profile); err != nil {
			logging.Error(ctx, "seed catalog failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "seed catalog")
		}

		logging.Info(ctx, "init-db finished", slog.String("database_dsn", app.Config.Database.DSN))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "database schema initialized: %s\n", app.Config.Database.DSN); err != nil {
			return errs.Wrap(err, "write init-db output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)
}
