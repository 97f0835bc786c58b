package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/tools"
)

var invokeToolCmd = &cobra.Command{
	Use:   "invoke [tool] [json-arguments]",
	Short: "Invoke a combat tool",
	Long: `Invoke a combat tool with JSON arguments. Examples:

  invoke get_combat_state '{"campaign_id":"camp-1"}'
  invoke determine_initiative '{"campaign_id":"camp-1"}'
  invoke player_weapon_attack '{"campaign_id":"camp-1","attacker":"Aria","target":"goblin-1"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: invokeTool,
}

func invokeTool(_ *cobra.Command, args []string) error {
	rawArgs := ""
	if len(args) > 1 {
		rawArgs = args[1]
	}
	req, err := buildToolRequest(args[0], rawArgs)
	if err != nil {
		return err
	}

	client, cleanup, err := createToolsClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Printf("Invoking %s...\n", args[0])

	resp, err := client.Invoke(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to invoke %s: %w", args[0], err)
	}

	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	fmt.Printf("\n%s\n", out)
	return nil
}

// buildToolRequest checks the tool name and turns the JSON arguments into
// the request struct
func buildToolRequest(name, rawArgs string) (*structpb.Struct, error) {
	if tools.Describe(name) == "" {
		return nil, fmt.Errorf("unknown tool %q", name)
	}

	arguments := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &arguments); err != nil {
			return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
		}
	}

	req, err := structpb.NewStruct(map[string]any{
		"tool":      name,
		"arguments": arguments,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return req, nil
}
