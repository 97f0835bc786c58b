// Package main is the entry point for the combat server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HillPhelmuth/AgenticRpg-sub000/cmd/server/client"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "rpg-combat",
	Short: "RPG combat server",
	Long: `rpg-combat runs turn-based tabletop combat for agent-driven campaigns.
It exposes the combat tools over gRPC and MCP and collects player dice rolls
over WebSocket.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(client.ClientCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
