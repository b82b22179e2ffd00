package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-statute-server/internal/config"
	"github.com/sha1n/mcp-statute-server/internal/kb"
	mcputil "github.com/sha1n/mcp-statute-server/internal/mcp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// Instance is a created MCP server and the statute service behind it.
type Instance struct {
	Server *mcp.Server
	// Statute is nil when the server runs without a knowledge base.
	Statute *kb.Service
	Cleanup func()
}

// RunParams contains dependencies for the run function
type RunParams struct {
	LoadSettings      func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings     func(*config.Settings) error
	StartSSEServer    func(context.Context, *Instance, *config.Settings) error
	CreateServer      func(context.Context, *config.Settings) (*Instance, error)
	CustomIOTransport mcp.Transport // Optional: for testing with custom IO
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:   config.LoadSettingsWithFlags,
		ValidSettings:  config.ValidateSettings,
		StartSSEServer: StartSSEServer,
		CreateServer:   CreateMCPServer,
	}
}

// RunWithDeps executes the server with the provided dependencies
func RunWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	// Load settings
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Validate settings for conflicting configurations
	if err := params.ValidSettings(settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Configure logging - always use stderr to avoid buffering issues
	handler := slog.NewTextHandler(os.Stderr, nil)
	slog.SetDefault(slog.New(handler))

	slog.Info("Starting statute MCP server", "version", version)
	config.Log(settings)

	inst, err := params.CreateServer(ctx, settings)
	if err != nil {
		return err
	}
	if inst.Cleanup != nil {
		defer inst.Cleanup()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if settings.Statute.Watch && inst.Statute != nil {
		g.Go(func() error {
			return inst.Statute.Watch(gctx)
		})
	}

	g.Go(func() error {
		// The watcher stops with the transport
		defer cancel()
		if settings.Transport == "stdio" {
			// Use custom transport if provided (for testing), otherwise use stdio
			transport := params.CustomIOTransport
			if transport == nil {
				transport = &mcp.StdioTransport{}
			}
			return inst.Server.Run(gctx, transport)
		}
		slog.Info("Starting SSE server", "host", settings.Host, "port", settings.Port)
		return params.StartSSEServer(gctx, inst, settings)
	})

	return g.Wait()
}

// CreateMCPServer loads the statute and creates the MCP server with registered tools.
// A statute that cannot be read or parsed aborts startup.
func CreateMCPServer(ctx context.Context, settings *config.Settings) (*Instance, error) {
	svc, err := kb.NewService(&settings.Statute)
	if err != nil {
		return nil, fmt.Errorf("failed to create statute service: %w", err)
	}

	if err := svc.Initialize(ctx); err != nil {
		if closeErr := svc.Close(); closeErr != nil {
			slog.Error("Failed to close statute service", "error", closeErr)
		}
		if kb.IsMalformed(err) {
			return nil, fmt.Errorf("statute source is malformed: %w", err)
		}
		return nil, fmt.Errorf("failed to load statute: %w", err)
	}

	sections := complianceSections(settings.Compliance, svc.Layout())
	server := mcputil.CreateServer(mcputil.ServerConfig{
		Name:     "statute-mcp",
		Version:  "1.0.0",
		Statute:  svc,
		Sections: &sections,
	})

	return &Instance{
		Server:  server,
		Statute: svc,
		Cleanup: func() {
			if err := svc.Close(); err != nil {
				slog.Error("Failed to close statute service", "error", err)
			}
		},
	}, nil
}
