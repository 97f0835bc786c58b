package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/tools"
)

var listToolsCmd = &cobra.Command{
	Use:   "list-tools",
	Short: "List the combat tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("\n⚔️  Combat Tools (%d):\n", len(tools.Definitions))
		fmt.Printf("==================\n")
		for _, def := range tools.Definitions {
			fmt.Printf("\n%s\n  %s\n", def.Name, def.Description)
		}
		return nil
	},
}
