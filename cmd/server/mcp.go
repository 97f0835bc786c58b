package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/handlers/mcptools"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/observability"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the combat tools over MCP on stdio",
	Long: `Serve the combat tools to an agent over the Model Context Protocol on
stdin/stdout. The WebSocket dice channel runs alongside so players can roll.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	server, err := mcptools.NewServer(&mcptools.Config{
		Toolbox: a.toolbox,
		Version: version,
		Logger:  logger.Named("mcp"),
	})
	if err != nil {
		return err
	}

	return a.run(ctx, func(ctx context.Context) error {
		if err := mcptools.Serve(ctx, server); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})
}
