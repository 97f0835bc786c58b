package v1alpha1

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/dice"
)

// DiceHandlerConfig holds dependencies for the dice handler
type DiceHandlerConfig struct {
	DiceService dice.Service
}

// Validate ensures all required dependencies are present
func (c *DiceHandlerConfig) Validate() error {
	if c.DiceService == nil {
		return errors.InvalidArgument("dice service is required")
	}
	return nil
}

// DiceHandler implements the dice gRPC service
type DiceHandler struct {
	diceService dice.Service
}

var _ DiceServiceServer = (*DiceHandler)(nil)

// NewDiceHandler creates a new dice handler with the given configuration
func NewDiceHandler(cfg *DiceHandlerConfig) (*DiceHandler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &DiceHandler{
		diceService: cfg.DiceService,
	}, nil
}

// SubmitRoll resolves a pending roll window. The request carries
// window_id, total and optionally values; the response reports whether the
// window was still pending.
func (h *DiceHandler) SubmitRoll(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	windowID := fields["window_id"].GetStringValue()
	if windowID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("window_id is required"))
	}
	totalValue, ok := fields["total"]
	if !ok {
		return nil, errors.ToGRPCError(errors.InvalidArgument("total is required"))
	}

	input := &dice.FulfillInput{
		WindowID: windowID,
		Total:    int(totalValue.GetNumberValue()),
	}
	for _, v := range fields["values"].GetListValue().GetValues() {
		input.Values = append(input.Values, int(v.GetNumberValue()))
	}

	output, err := h.diceService.Fulfill(ctx, input)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	values := make([]any, len(output.Result.Values))
	for i, v := range output.Result.Values {
		values[i] = v
	}
	resp, err := structpb.NewStruct(map[string]any{
		"window_id": windowID,
		"fulfilled": output.Fulfilled,
		"total":     output.Result.Total,
		"values":    values,
	})
	if err != nil {
		return nil, errors.ToGRPCError(errors.Wrap(err, "failed to encode roll response"))
	}
	return resp, nil
}
