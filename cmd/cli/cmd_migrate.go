package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/database"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

var migrateListOnly bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateListOnly, "list", false, "show applied and pending migrations without applying them")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)

	log, err := logger.New(cfg.Log.Level, "console", serviceName)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	dbManager, err := database.NewDatabaseManager(cfg.DB.Database(), log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbManager.Close()

	if migrateListOnly {
		return printMigrationStatus(cmd.Context(), dbManager, log)
	}

	if err := dbManager.Init(); err != nil {
		return err
	}

	fmt.Println("✓ Database is up to date")
	return nil
}

func printMigrationStatus(ctx context.Context, dbManager *database.DatabaseManager, log *zap.Logger) error {
	runner, err := database.NewMigrationsRunner(dbManager.GetDB(), log)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	// the status table is the output
	runner.DisableLogging()

	states, err := runner.Status(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Migrations:")
	fmt.Println(separator())
	for _, s := range states {
		status := "pending"
		if s.Applied {
			status = "applied " + s.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Printf("%06d  %-32s %s\n", s.Version, s.Name, status)
	}
	return nil
}
