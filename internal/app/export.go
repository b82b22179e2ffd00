package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sha1n/mcp-statute-server/internal/config"
	"github.com/sha1n/mcp-statute-server/internal/kb"
	"github.com/spf13/pflag"
)

// ExportParams contains dependencies for the export command
type ExportParams struct {
	LoadSettings func(*pflag.FlagSet) (*config.Settings, error)
}

// DefaultExportParams returns production dependencies
func DefaultExportParams() ExportParams {
	return ExportParams{LoadSettings: config.LoadSettingsWithFlags}
}

// RunExport loads the statute once and writes a knowledge-base snapshot to path.
// An empty format is derived from the path extension.
func RunExport(ctx context.Context, params ExportParams, flags *pflag.FlagSet, path, format string) error {
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := config.ValidateStatuteSettings(&settings.Statute); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	svc, err := kb.NewService(&settings.Statute)
	if err != nil {
		return fmt.Errorf("failed to create statute service: %w", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			slog.Error("Failed to close statute service", "error", err)
		}
	}()

	if err := svc.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to load statute: %w", err)
	}
	if err := svc.Export(path, format); err != nil {
		return fmt.Errorf("failed to export knowledge base: %w", err)
	}

	slog.Info("Knowledge base exported", "path", path, "statute", settings.Statute.Name)
	return nil
}
