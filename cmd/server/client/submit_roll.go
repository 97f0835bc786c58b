package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	rollTotal  int
	rollValues []int
)

var submitRollCmd = &cobra.Command{
	Use:   "submit-roll [window-id]",
	Short: "Submit a player's roll for a pending window",
	Long: `Answer a roll request the way a player's dice tray would. Examples:

  submit-roll win_3f2a --total 17
  submit-roll win_3f2a --total 9 --values 4,5`,
	Args: cobra.ExactArgs(1),
	RunE: submitRoll,
}

func init() {
	submitRollCmd.Flags().IntVar(&rollTotal, "total", 0, "Roll total including modifiers")
	submitRollCmd.Flags().IntSliceVar(&rollValues, "values", nil, "Individual die faces")
	_ = submitRollCmd.MarkFlagRequired("total")
}

func submitRoll(_ *cobra.Command, args []string) error {
	windowID := args[0]

	client, cleanup, err := createDiceClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	values := make([]any, len(rollValues))
	for i, v := range rollValues {
		values[i] = v
	}
	req, err := structpb.NewStruct(map[string]any{
		"window_id": windowID,
		"total":     rollTotal,
		"values":    values,
	})
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.SubmitRoll(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to submit roll: %w", err)
	}

	fields := resp.GetFields()
	if !fields["fulfilled"].GetBoolValue() {
		fmt.Printf("Window %s was already resolved\n", windowID)
		return nil
	}
	fmt.Printf("\n🎲 Roll accepted for %s: total %d\n", windowID, int(fields["total"].GetNumberValue()))
	return nil
}
