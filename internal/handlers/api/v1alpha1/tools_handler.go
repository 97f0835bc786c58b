// Package v1alpha1 handles the generic API grpc service interface
package v1alpha1

import (
	"context"
	"encoding/json"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/tools"
)

// ToolsHandlerConfig holds dependencies for the tools handler
type ToolsHandlerConfig struct {
	Toolbox *tools.Toolbox
}

// Validate ensures all required dependencies are present
func (c *ToolsHandlerConfig) Validate() error {
	if c.Toolbox == nil {
		return errors.InvalidArgument("toolbox is required")
	}
	return nil
}

// ToolsHandler implements the combat tools gRPC service
type ToolsHandler struct {
	toolbox *tools.Toolbox
}

var _ CombatToolsServiceServer = (*ToolsHandler)(nil)

// NewToolsHandler creates a new tools handler with the given configuration
func NewToolsHandler(cfg *ToolsHandlerConfig) (*ToolsHandler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &ToolsHandler{
		toolbox: cfg.Toolbox,
	}, nil
}

// Invoke runs the tool named in req. Tool failures come back as a result
// with success=false; only malformed requests fail the RPC.
func (h *ToolsHandler) Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := req.GetFields()["tool"].GetStringValue()
	if name == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("tool is required"))
	}

	var args json.RawMessage
	if v, ok := req.GetFields()["arguments"]; ok {
		raw, err := protojson.Marshal(v)
		if err != nil {
			return nil, errors.ToGRPCError(errors.InvalidArgumentf("arguments are not valid JSON: %v", err))
		}
		args = raw
	}

	reply := h.toolbox.Invoke(ctx, name, args)

	data, err := json.Marshal(reply)
	if err != nil {
		return nil, errors.ToGRPCError(errors.Wrapf(err, "failed to encode %s result", name))
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, errors.ToGRPCError(errors.Wrapf(err, "failed to convert %s result", name))
	}
	return out, nil
}
