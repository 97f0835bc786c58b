package v1alpha1_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/handlers/api/v1alpha1"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/dice"
	dicemock "github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/dice/mock"
)

type DiceHandlerTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockDice *dicemock.MockService
	handler  *v1alpha1.DiceHandler
}

func TestDiceHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(DiceHandlerTestSuite))
}

func (s *DiceHandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockDice = dicemock.NewMockService(s.ctrl)

	handler, err := v1alpha1.NewDiceHandler(&v1alpha1.DiceHandlerConfig{
		DiceService: s.mockDice,
	})
	s.Require().NoError(err)
	s.handler = handler
}

func (s *DiceHandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DiceHandlerTestSuite) request(fields map[string]any) *structpb.Struct {
	req, err := structpb.NewStruct(fields)
	s.Require().NoError(err)
	return req
}

func (s *DiceHandlerTestSuite) TestSubmitRoll_Success() {
	ctx := context.Background()

	s.mockDice.EXPECT().
		Fulfill(ctx, &dice.FulfillInput{WindowID: "win_1", Total: 9, Values: []int{4, 5}}).
		Return(&dice.FulfillOutput{
			Fulfilled: true,
			Result:    entities.RollResult{Total: 9, Values: []int{4, 5}},
		}, nil)

	resp, err := s.handler.SubmitRoll(ctx, s.request(map[string]any{
		"window_id": "win_1",
		"total":     9,
		"values":    []any{4, 5},
	}))

	s.Require().NoError(err)
	s.True(resp.GetFields()["fulfilled"].GetBoolValue())
	s.Equal(float64(9), resp.GetFields()["total"].GetNumberValue())
	s.Len(resp.GetFields()["values"].GetListValue().GetValues(), 2)
}

func (s *DiceHandlerTestSuite) TestSubmitRoll_AlreadyResolved() {
	ctx := context.Background()

	s.mockDice.EXPECT().
		Fulfill(ctx, &dice.FulfillInput{WindowID: "win_1", Total: 12}).
		Return(&dice.FulfillOutput{}, nil)

	resp, err := s.handler.SubmitRoll(ctx, s.request(map[string]any{"window_id": "win_1", "total": 12}))

	s.Require().NoError(err)
	s.False(resp.GetFields()["fulfilled"].GetBoolValue())
}

func (s *DiceHandlerTestSuite) TestSubmitRoll_Validation() {
	testCases := []struct {
		name   string
		fields map[string]any
	}{
		{name: "missing window", fields: map[string]any{"total": 3}},
		{name: "missing total", fields: map[string]any{"window_id": "win_1"}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.handler.SubmitRoll(context.Background(), s.request(tc.fields))
			s.Require().Error(err)
			s.Equal(codes.InvalidArgument, status.Code(err))
		})
	}
}

func (s *DiceHandlerTestSuite) TestSubmitRoll_OutOfRange() {
	s.mockDice.EXPECT().
		Fulfill(gomock.Any(), gomock.Any()).
		Return(nil, errors.InvalidArgument("total 40 out of range for 1d20"))

	_, err := s.handler.SubmitRoll(context.Background(), s.request(map[string]any{"window_id": "win_1", "total": 40}))

	s.Require().Error(err)
	st, ok := status.FromError(err)
	s.Require().True(ok)
	s.Equal(codes.InvalidArgument, st.Code())
	s.Equal("total 40 out of range for 1d20", st.Message())
}

func (s *DiceHandlerTestSuite) TestNewDiceHandler_Validation() {
	_, err := v1alpha1.NewDiceHandler(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = v1alpha1.NewDiceHandler(&v1alpha1.DiceHandlerConfig{})
	s.True(errors.IsInvalidArgument(err))
}
