package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/stripd/internal/shared"
)

// Setup creates the config file from the embedded template when missing, then initializes the database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.logger.Info("config file created", "path", configPath)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("reset") {
		r.logger.Warn("discarding the saved segment configuration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}
