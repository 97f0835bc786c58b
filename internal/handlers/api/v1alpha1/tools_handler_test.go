package v1alpha1_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/handlers/api/v1alpha1"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/combat"
	combatmock "github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/combat/mock"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/dice"
	dicemock "github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/dice/mock"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/testutils"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/tools"
)

type ToolsHandlerTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockCombat *combatmock.MockService
	mockDice   *dicemock.MockService
	handler    *v1alpha1.ToolsHandler
}

func TestToolsHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ToolsHandlerTestSuite))
}

func (s *ToolsHandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockCombat = combatmock.NewMockService(s.ctrl)
	s.mockDice = dicemock.NewMockService(s.ctrl)

	toolbox, err := tools.NewToolbox(&tools.Config{Combat: s.mockCombat})
	s.Require().NoError(err)
	s.handler, err = v1alpha1.NewToolsHandler(&v1alpha1.ToolsHandlerConfig{Toolbox: toolbox})
	s.Require().NoError(err)
}

func (s *ToolsHandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ToolsHandlerTestSuite) request(fields map[string]any) *structpb.Struct {
	req, err := structpb.NewStruct(fields)
	s.Require().NoError(err)
	return req
}

func (s *ToolsHandlerTestSuite) TestInvoke_Success() {
	ctx := context.Background()

	s.mockCombat.EXPECT().
		DetermineInitiative(ctx, &combat.DetermineInitiativeInput{CampaignID: "camp-1"}).
		Return(&combat.DetermineInitiativeOutput{
			Order: []combat.InitiativeRoll{
				{CombatantID: testutils.HeroID, Name: "Aria", Roll: 15, Modifier: 2, Total: 17},
				{CombatantID: testutils.GoblinID, Name: "Goblin", Roll: 9, Modifier: 2, Total: 11},
			},
			Message: "Aria acts first",
		}, nil)

	resp, err := s.handler.Invoke(ctx, s.request(map[string]any{
		"tool":      tools.NameDetermineInitiative,
		"arguments": map[string]any{"campaign_id": "camp-1"},
	}))

	s.Require().NoError(err)
	s.True(resp.GetFields()["success"].GetBoolValue())
	order := resp.GetFields()["data"].GetStructValue().GetFields()["order"].GetListValue().GetValues()
	s.Require().Len(order, 2)
	s.Equal(testutils.HeroID, order[0].GetStructValue().GetFields()["combatant_id"].GetStringValue())
}

func (s *ToolsHandlerTestSuite) TestInvoke_ToolFailureIsAResult() {
	s.mockCombat.EXPECT().
		EndCombat(gomock.Any(), &combat.EndCombatInput{CampaignID: "camp-1", Victor: entities.VictorParty}).
		Return(nil, errors.InvalidState("enemy Ogre still has 59 hp"))

	resp, err := s.handler.Invoke(context.Background(), s.request(map[string]any{
		"tool":      tools.NameEndCombat,
		"arguments": map[string]any{"campaign_id": "camp-1", "victor": "Party"},
	}))

	s.Require().NoError(err)
	s.False(resp.GetFields()["success"].GetBoolValue())
	failure := resp.GetFields()["error"].GetStructValue().GetFields()
	s.Equal("FAILED_PRECONDITION", failure["code"].GetStringValue())
	s.Equal("enemy Ogre still has 59 hp", failure["message"].GetStringValue())
}

func (s *ToolsHandlerTestSuite) TestInvoke_RequiresTool() {
	_, err := s.handler.Invoke(context.Background(), s.request(map[string]any{}))
	s.Equal(codes.InvalidArgument, status.Code(err))
}

func (s *ToolsHandlerTestSuite) TestNewToolsHandler_Validation() {
	_, err := v1alpha1.NewToolsHandler(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = v1alpha1.NewToolsHandler(&v1alpha1.ToolsHandlerConfig{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *ToolsHandlerTestSuite) TestServicesOverGRPC() {
	ctx := context.Background()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()

	diceHandler, err := v1alpha1.NewDiceHandler(&v1alpha1.DiceHandlerConfig{DiceService: s.mockDice})
	s.Require().NoError(err)
	v1alpha1.RegisterCombatToolsServiceServer(srv, s.handler)
	v1alpha1.RegisterDiceServiceServer(srv, diceHandler)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	defer func() { _ = conn.Close() }()

	s.Run("combat tools", func() {
		s.mockCombat.EXPECT().
			GetCombatState(gomock.Any(), &combat.GetCombatStateInput{CampaignID: "camp-1"}).
			Return(&combat.GetCombatStateOutput{}, nil)

		resp, err := v1alpha1.NewCombatToolsServiceClient(conn).Invoke(ctx, s.request(map[string]any{
			"tool":      tools.NameGetCombatState,
			"arguments": map[string]any{"campaign_id": "camp-1"},
		}))
		s.Require().NoError(err)
		s.True(resp.GetFields()["success"].GetBoolValue())
		s.False(resp.GetFields()["data"].GetStructValue().GetFields()["in_combat"].GetBoolValue())
	})

	s.Run("dice", func() {
		s.mockDice.EXPECT().
			Fulfill(gomock.Any(), &dice.FulfillInput{WindowID: "win_4", Total: 18}).
			Return(&dice.FulfillOutput{Fulfilled: true, Result: entities.RollResult{Total: 18, Values: []int{18}}}, nil)

		resp, err := v1alpha1.NewDiceServiceClient(conn).SubmitRoll(ctx, s.request(map[string]any{
			"window_id": "win_4",
			"total":     18,
		}))
		s.Require().NoError(err)
		s.True(resp.GetFields()["fulfilled"].GetBoolValue())
	})

	s.Run("errors keep their codes", func() {
		s.mockDice.EXPECT().
			Fulfill(gomock.Any(), gomock.Any()).
			Return(nil, errors.InvalidArgument("total 0 out of range for 1d20"))

		_, err := v1alpha1.NewDiceServiceClient(conn).SubmitRoll(ctx, s.request(map[string]any{
			"window_id": "win_5",
			"total":     0,
		}))
		s.Equal(codes.InvalidArgument, status.Code(err))
	})
}
