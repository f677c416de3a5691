package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/stripd/internal/registry"
	"github.com/desertthunder/stripd/internal/repositories"
	"github.com/desertthunder/stripd/internal/shared"
	"github.com/desertthunder/stripd/internal/ui"
)

// Preview launches the terminal preview against a device (--url) or the local database.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String("log-file"); path != "" {
		logger, err := shared.NewFileLogger(path)
		if err != nil {
			return err
		}
		r.logger = logger
	}

	var source ui.Source
	var name string

	if url := cmd.String("url"); url != "" {
		client := r.device(cmd)
		source, name = client, client.BaseURL()
	} else {
		config, err := r.loadConfig(cmd)
		if err != nil {
			return err
		}
		db, err := shared.OpenDatabase(config.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		store := repositories.NewSegmentStore(repositories.NewBlobRepository(db), r.logger)
		source = ui.SourceFunc(func(context.Context) (registry.Snapshot, error) {
			return store.Restore(), nil
		})
		name = config.Database.Path
	}

	model := ui.NewModel(ctx, source, name)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(r.output))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	return nil
}
