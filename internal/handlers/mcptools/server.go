// Package mcptools exposes the combat tools over the Model Context Protocol
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/tools"
)

const serverName = "rpg-combat"

// Config holds the dependencies for the MCP server
type Config struct {
	Toolbox *tools.Toolbox
	Version string
	Logger  *zap.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Toolbox == nil {
		vb.RequiredField("Toolbox")
	}
	return vb.Build()
}

// NewServer creates an MCP server with every combat tool registered
func NewServer(cfg *Config) (*mcp.Server, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)
	register(server, cfg.Toolbox)
	logger.Info("mcp tools registered",
		zap.String("version", version),
		zap.Int("tools", len(tools.Definitions)),
	)
	return server, nil
}

// Serve runs the server over stdio until ctx ends or the client disconnects
func Serve(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

func register(server *mcp.Server, tb *tools.Toolbox) {
	addTool(server, tools.NameInitiateCombat, tb.InitiateCombat)
	addTool(server, tools.NameDetermineInitiative, tb.DetermineInitiative)
	addTool(server, tools.NamePlayerWeaponAttack, tb.PlayerWeaponAttack)
	addTool(server, tools.NameMonsterWeaponAttack, tb.MonsterWeaponAttack)
	addTool(server, tools.NamePlayerSpellAttack, tb.PlayerSpellAttack)
	addTool(server, tools.NameSavingThrow, tb.SavingThrow)
	addTool(server, tools.NameSpecialAbility, tb.SpecialAbility)
	addTool(server, tools.NameEndCombat, tb.EndCombat)
	addTool(server, tools.NameGetCombatState, tb.GetCombatState)
	addTool(server, tools.NameGetRollHistory, tb.GetRollHistory)
}

func addTool[A, D any](server *mcp.Server, name string, call func(context.Context, A) tools.Result[D]) {
	mcp.AddTool(server, &mcp.Tool{Name: name, Description: tools.Describe(name)}, Handler(call))
}

// Handler adapts a toolbox method to an MCP tool handler. Failed results
// are returned as structured content, never as protocol errors.
func Handler[A, D any](call func(context.Context, A) tools.Result[D]) mcp.ToolHandlerFor[A, tools.Result[D]] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, args A) (*mcp.CallToolResult, tools.Result[D], error) {
		return nil, call(ctx, args), nil
	}
}
