package v1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Fully qualified gRPC service names
const (
	CombatToolsServiceName = "api.v1alpha1.CombatToolsService"
	DiceServiceName        = "api.v1alpha1.DiceService"
)

const (
	combatToolsInvokeMethod = "/" + CombatToolsServiceName + "/Invoke"
	diceSubmitRollMethod    = "/" + DiceServiceName + "/SubmitRoll"
)

// CombatToolsServiceServer runs combat tools. Requests carry the tool name
// in "tool" and its JSON arguments in "arguments"; responses are the
// tool's result object.
type CombatToolsServiceServer interface {
	Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// DiceServiceServer accepts roll results from clients that cannot hold a
// WebSocket open
type DiceServiceServer interface {
	SubmitRoll(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler(
	method string,
	call func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CombatToolsServiceDesc describes the combat tools service
var CombatToolsServiceDesc = grpc.ServiceDesc{
	ServiceName: CombatToolsServiceName,
	HandlerType: (*CombatToolsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Invoke",
			Handler: unaryHandler(combatToolsInvokeMethod,
				func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
					return srv.(CombatToolsServiceServer).Invoke(ctx, req)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/v1alpha1/combat_tools.proto",
}

// DiceServiceDesc describes the dice service
var DiceServiceDesc = grpc.ServiceDesc{
	ServiceName: DiceServiceName,
	HandlerType: (*DiceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SubmitRoll",
			Handler: unaryHandler(diceSubmitRollMethod,
				func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
					return srv.(DiceServiceServer).SubmitRoll(ctx, req)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/v1alpha1/dice.proto",
}

// RegisterCombatToolsServiceServer registers srv on s
func RegisterCombatToolsServiceServer(s grpc.ServiceRegistrar, srv CombatToolsServiceServer) {
	s.RegisterService(&CombatToolsServiceDesc, srv)
}

// RegisterDiceServiceServer registers srv on s
func RegisterDiceServiceServer(s grpc.ServiceRegistrar, srv DiceServiceServer) {
	s.RegisterService(&DiceServiceDesc, srv)
}

// CombatToolsServiceClient calls the combat tools service
type CombatToolsServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCombatToolsServiceClient creates a client on cc
func NewCombatToolsServiceClient(cc grpc.ClientConnInterface) *CombatToolsServiceClient {
	return &CombatToolsServiceClient{cc: cc}
}

// Invoke runs a tool remotely
func (c *CombatToolsServiceClient) Invoke(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, combatToolsInvokeMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// DiceServiceClient calls the dice service
type DiceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDiceServiceClient creates a client on cc
func NewDiceServiceClient(cc grpc.ClientConnInterface) *DiceServiceClient {
	return &DiceServiceClient{cc: cc}
}

// SubmitRoll submits a roll result remotely
func (c *DiceServiceClient) SubmitRoll(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, diceSubmitRollMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
