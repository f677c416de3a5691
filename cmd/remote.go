package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/stripd/internal/formatter"
	"github.com/desertthunder/stripd/internal/registry"
	"github.com/desertthunder/stripd/internal/services"
	"github.com/desertthunder/stripd/internal/shared"
)

func (r *Runner) device(cmd *cli.Command) *services.DeviceClient {
	return services.NewDeviceClient(cmd.String("url"), r.httpClient)
}

// Defaults prints the built-in default configuration.
func (r *Runner) Defaults(ctx context.Context, cmd *cli.Command) error {
	data, err := formatter.Export(registry.DefaultSnapshot(), cmd.String("format"), cmd.Bool("pretty"))
	if err != nil {
		return fmt.Errorf("failed to encode defaults: %w", err)
	}
	return r.writeRaw(bytes.TrimRight(data, "\n"))
}

// RemoteNow prints the device clock.
func (r *Runner) RemoteNow(ctx context.Context, cmd *cli.Command) error {
	now, err := r.device(cmd).Now(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("%d\n", now)
}

// RemoteGet prints or saves the device configuration.
func (r *Runner) RemoteGet(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if (format == "" || format == formatter.FormatJSON) && !cmd.Bool("pretty") && cmd.String("output") == "" {
		data, err := r.device(cmd).DataRaw(ctx)
		if err != nil {
			return err
		}
		return r.writeRaw(data)
	}

	snap, err := r.device(cmd).Data(ctx)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(snap, format, path); err != nil {
			return err
		}
		r.logger.Info("configuration saved", "path", path, "format", format)
		return nil
	}

	data, err := formatter.Export(snap, format, cmd.Bool("pretty"))
	if err != nil {
		return err
	}
	return r.writeRaw(bytes.TrimRight(data, "\n"))
}

// RemotePut validates a configuration file locally, then sends it to the device.
func (r *Runner) RemotePut(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("%w: configuration file (or - for stdin)", shared.ErrMissingArgument)
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(r.input)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}

	snap, err := registry.Decode(data)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	persisted, err := r.device(cmd).Replace(ctx, snap)
	if err != nil {
		return err
	}
	if !persisted {
		r.logger.Warn("device applied the configuration but could not save it; it will revert on restart")
	}
	return r.writePlain("applied %d segments (%d pixels), persisted=%v\n", snap.Len(), snap.TotalLength(), persisted)
}

// RemoteOpen opens the device's control page.
func (r *Runner) RemoteOpen(ctx context.Context, cmd *cli.Command) error {
	url := strings.TrimRight(cmd.String("url"), "/") + "/"
	r.logger.Info("opening control page", "url", url)
	return shared.OpenBrowser(url)
}
