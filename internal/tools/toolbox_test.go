package tools_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/combat"
	combatmock "github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/combat/mock"
	dicesession "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/dice_session"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/testutils"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/tools"
)

type ToolboxTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	combat  *combatmock.MockService
	toolbox *tools.Toolbox
	ctx     context.Context
}

func TestToolboxSuite(t *testing.T) {
	suite.Run(t, new(ToolboxTestSuite))
}

func (s *ToolboxTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.combat = combatmock.NewMockService(s.ctrl)
	s.ctx = context.Background()

	var err error
	s.toolbox, err = tools.NewToolbox(&tools.Config{Combat: s.combat, Logger: zaptest.NewLogger(s.T())})
	s.Require().NoError(err)
}

func (s *ToolboxTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ToolboxTestSuite) TestNewToolboxValidates() {
	_, err := tools.NewToolbox(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = tools.NewToolbox(&tools.Config{})
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "Combat")
}

func (s *ToolboxTestSuite) TestPlayerWeaponAttack() {
	s.combat.EXPECT().
		PlayerWeaponAttack(s.ctx, &combat.WeaponAttackInput{
			CampaignID: "camp-1",
			Attacker:   "aria",
			Target:     testutils.GoblinID,
			Advantage:  true,
		}).
		Return(&combat.WeaponAttackOutput{
			AttackerID:  testutils.HeroID,
			TargetID:    testutils.GoblinID,
			AttackRolls: []int{4, 20},
			AttackRoll:  20,
			Modifier:    5,
			AttackTotal: 25,
			TargetAC:    12,
			Hit:         true,
			Critical:    true,
			DamageRoll:  9,
			Damage:      7,
			TargetHP:    0,
			TargetMaxHP: 7,
			Defeated:    true,
			Message:     "Aria critically hits Goblin",
		}, nil)

	result := s.toolbox.PlayerWeaponAttack(s.ctx, tools.WeaponAttackArgs{
		CampaignID: "camp-1",
		Attacker:   "aria",
		Target:     testutils.GoblinID,
		Advantage:  true,
	})

	s.Require().True(result.Success)
	s.Nil(result.Error)
	s.Equal([]int{4, 20}, result.Data.AttackRolls)
	s.True(result.Data.Critical)
	s.Equal(7, result.Data.Damage)
	s.True(result.Data.Defeated)
}

func (s *ToolboxTestSuite) TestFailuresBecomeResults() {
	testCases := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{
			name:     "not found",
			err:      errors.NotFound("combatant \"Zed\" not found"),
			wantCode: "NOT_FOUND",
			wantMsg:  "combatant \"Zed\" not found",
		},
		{
			name:     "wrapped invalid state keeps its code",
			err:      errors.Wrap(errors.InvalidState("no initiative"), "attack rejected"),
			wantCode: "FAILED_PRECONDITION",
			wantMsg:  "attack rejected: no initiative",
		},
		{
			name:     "plain error is internal",
			err:      assert.AnError,
			wantCode: "INTERNAL",
			wantMsg:  assert.AnError.Error(),
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.combat.EXPECT().MonsterWeaponAttack(gomock.Any(), gomock.Any()).Return(nil, tc.err)

			result := s.toolbox.MonsterWeaponAttack(s.ctx, tools.WeaponAttackArgs{CampaignID: "camp-1"})

			s.False(result.Success)
			s.Nil(result.Data)
			s.Require().NotNil(result.Error)
			s.Equal(tc.wantCode, result.Error.Code)
			s.Equal(tc.wantMsg, result.Error.Message)
		})
	}
}

func (s *ToolboxTestSuite) TestInitiateCombatConvertsRoster() {
	s.combat.EXPECT().
		InitiateCombat(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input *combat.InitiateCombatInput) (*combat.InitiateCombatOutput, error) {
			s.Require().Len(input.Party, 1)
			s.Require().Len(input.Enemies, 1)

			hero := input.Party[0]
			s.Equal(entities.ControllerHuman, hero.Controller)
			s.Equal(testutils.HeroID, hero.Name, "name defaults to the id")

			goblin := input.Enemies[0]
			s.Equal(entities.ControllerNPC, goblin.Controller)
			s.Equal(7, goblin.CurrentHP, "current hp defaults to max")
			s.Equal(2, goblin.SaveModifier(entities.AttributeDexterity))
			s.Equal("1d6+2", goblin.Weapon.Notation())

			enc, err := entities.NewEncounter("enc_1", input.CampaignID, input.Terrain,
				[]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()},
				time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
			s.Require().NoError(err)
			return &combat.InitiateCombatOutput{Encounter: enc, Message: "Combat begins"}, nil
		})

	result := s.toolbox.InitiateCombat(s.ctx, tools.InitiateCombatArgs{
		CampaignID: "camp-1",
		Terrain:    "forest",
		Party:      []tools.CombatantArgs{{ID: testutils.HeroID, PlayerID: testutils.PlayerOne}},
		Enemies: []tools.CombatantArgs{{
			ID:            testutils.GoblinID,
			Name:          "Goblin",
			MaxHP:         7,
			ArmorClass:    12,
			SaveModifiers: map[string]int{"DEX": 2},
			Weapon:        &tools.WeaponArgs{Name: "Scimitar", DiceCount: 1, DieType: 6, Bonus: 2},
		}},
	})

	s.Require().True(result.Success)
	s.Equal("enc_1", result.Data.Encounter.ID)
	s.Equal("2026-03-14T00:00:00Z", result.Data.Encounter.StartedAt)
	s.Require().Len(result.Data.Encounter.Enemies, 1)
	s.Equal("enemy", result.Data.Encounter.Enemies[0].Side)
}

func (s *ToolboxTestSuite) TestInitiateCombatRejectsBadRosterWithoutCalling() {
	result := s.toolbox.InitiateCombat(s.ctx, tools.InitiateCombatArgs{
		CampaignID: "camp-1",
		Party:      []tools.CombatantArgs{{ID: testutils.HeroID, Controller: "robot"}},
	})
	s.False(result.Success)
	s.Equal("INVALID_ARGUMENT", result.Error.Code)

	result = s.toolbox.InitiateCombat(s.ctx, tools.InitiateCombatArgs{
		CampaignID: "camp-1",
		Enemies:    []tools.CombatantArgs{{ID: testutils.GoblinID, SaveModifiers: map[string]int{"luck": 1}}},
	})
	s.False(result.Success)
	s.Equal("INVALID_ARGUMENT", result.Error.Code)
}

func (s *ToolboxTestSuite) TestSpellAttackParsesSaveAttribute() {
	level := 1
	s.combat.EXPECT().
		PlayerSpellAttack(s.ctx, &combat.SpellAttackInput{
			CampaignID:    "camp-1",
			Caster:        testutils.HeroID,
			Target:        testutils.OgreID,
			SpellName:     "Ice Knife",
			Level:         &level,
			DamageDice:    "2d6",
			SaveAttribute: entities.AttributeConstitution,
		}).
		Return(&combat.SpellAttackOutput{SpellName: "Ice Knife", Level: 1, ManaCost: 2, SaveRolls: []int{8}}, nil)

	result := s.toolbox.PlayerSpellAttack(s.ctx, tools.SpellAttackArgs{
		CampaignID:    "camp-1",
		Caster:        testutils.HeroID,
		Target:        testutils.OgreID,
		SpellName:     "Ice Knife",
		Level:         &level,
		DamageDice:    "2d6",
		SaveAttribute: "con",
	})
	s.Require().True(result.Success)
	s.Equal(2, result.Data.ManaCost)

	result = s.toolbox.PlayerSpellAttack(s.ctx, tools.SpellAttackArgs{CampaignID: "camp-1", SaveAttribute: "luck"})
	s.False(result.Success)
	s.Equal("INVALID_ARGUMENT", result.Error.Code)
}

func (s *ToolboxTestSuite) TestEndCombatOrdersGoldShares() {
	s.combat.EXPECT().
		EndCombat(s.ctx, &combat.EndCombatInput{CampaignID: "camp-1", Victor: "party", GoldReward: 11}).
		Return(&combat.EndCombatOutput{
			Summary: &entities.CombatSummary{
				EncounterID: "enc_1",
				Victor:      entities.VictorParty,
				Rounds:      2,
				Actions:     5,
				GoldAwarded: 11,
				GoldShares:  map[string]int{testutils.ClericID: 5, testutils.HeroID: 6},
				Survivors:   []string{testutils.HeroID, testutils.ClericID},
			},
			Message:    "The party wins",
			Unrecorded: []string{"Bram"},
		}, nil)

	result := s.toolbox.EndCombat(s.ctx, tools.EndCombatArgs{CampaignID: "camp-1", Victor: "party", GoldReward: 11})

	s.Require().True(result.Success)
	s.Equal("Party", result.Data.Victor)
	s.Equal([]string{"Bram"}, result.Data.Unrecorded)
	s.Equal([]tools.GoldShareData{
		{CombatantID: testutils.HeroID, Gold: 6},
		{CombatantID: testutils.ClericID, Gold: 5},
	}, result.Data.GoldShares)
}

func (s *ToolboxTestSuite) TestGetCombatState() {
	s.Run("no combat", func() {
		s.combat.EXPECT().GetCombatState(s.ctx, &combat.GetCombatStateInput{CampaignID: "camp-1"}).
			Return(&combat.GetCombatStateOutput{}, nil)

		result := s.toolbox.GetCombatState(s.ctx, tools.GetCombatStateArgs{CampaignID: "camp-1"})
		s.Require().True(result.Success)
		s.False(result.Data.InCombat)
		s.Nil(result.Data.Encounter)
		s.Nil(result.Data.Active)
	})

	s.Run("active turn", func() {
		hero := testutils.NewHero()
		enc, err := entities.NewEncounter("enc_1", "camp-1", "", []*entities.Combatant{hero},
			[]*entities.Combatant{testutils.NewGoblin()}, time.Now())
		s.Require().NoError(err)
		enc.AppendLog(entities.LogEntry{Round: 1, Kind: entities.ActionCombatStart, Description: "Combat begins"})

		s.combat.EXPECT().GetCombatState(s.ctx, gomock.Any()).
			Return(&combat.GetCombatStateOutput{InCombat: true, Encounter: enc, Active: hero}, nil)

		result := s.toolbox.GetCombatState(s.ctx, tools.GetCombatStateArgs{CampaignID: "camp-1"})
		s.Require().True(result.Success)
		s.True(result.Data.InCombat)
		s.Require().NotNil(result.Data.Active)
		s.Equal(testutils.HeroID, result.Data.Active.ID)
		s.Equal("Longsword (1d8+2)", result.Data.Active.Weapon)
		s.Require().Len(result.Data.Encounter.Log, 1)
		s.Equal("combat_start", result.Data.Encounter.Log[0].Kind)
	})
}

func (s *ToolboxTestSuite) TestGetRollHistory() {
	rolledAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	s.combat.EXPECT().GetRollHistory(s.ctx, &combat.GetRollHistoryInput{CampaignID: "camp-1", Limit: 1}).
		Return(&combat.GetRollHistoryOutput{Rolls: []dicesession.DiceRoll{{
			WindowID: "win_1",
			Notation: "1d20",
			Dice:     []int{17},
			Total:    17,
			Source:   dicesession.SourcePlayer,
			RolledAt: rolledAt,
		}}}, nil)

	result := s.toolbox.GetRollHistory(s.ctx, tools.GetRollHistoryArgs{CampaignID: "camp-1", Limit: 1})

	s.Require().True(result.Success)
	s.Require().Len(result.Data.Rolls, 1)
	s.Equal("player", result.Data.Rolls[0].Source)
	s.Equal("2026-03-14T12:00:00Z", result.Data.Rolls[0].RolledAt)
}

func (s *ToolboxTestSuite) TestInvoke() {
	s.Run("dispatches decoded arguments", func() {
		s.combat.EXPECT().
			SavingThrow(s.ctx, &combat.SavingThrowInput{
				CampaignID: "camp-1",
				Combatant:  "Bram",
				Attribute:  entities.AttributeWisdom,
				DC:         13,
			}).
			Return(&combat.SavingThrowOutput{Rolls: []int{11}, Kept: 11, Total: 16, DC: 13, Success: true}, nil)

		reply := s.toolbox.Invoke(s.ctx, tools.NameSavingThrow,
			json.RawMessage(`{"campaign_id":"camp-1","combatant":"Bram","attribute":"wisdom","dc":13}`))

		s.True(reply.Succeeded())
		s.Nil(reply.Failure())
		data, err := json.Marshal(reply)
		s.Require().NoError(err)
		s.JSONEq(`{"success":true,"data":{"combatant_id":"","rolls":[11],"kept":11,"modifier":0,"total":16,
			"dc":13,"success":true,"damage":0,"hp":0,"max_hp":0,"defeated":false,"message":""}}`, string(data))
	})

	s.Run("empty arguments decode to zero values", func() {
		s.combat.EXPECT().GetCombatState(s.ctx, &combat.GetCombatStateInput{}).
			Return(nil, errors.InvalidArgument("campaign ID is required"))

		reply := s.toolbox.Invoke(s.ctx, tools.NameGetCombatState, nil)
		s.False(reply.Succeeded())
		s.Equal("INVALID_ARGUMENT", reply.Failure().Code)
	})

	s.Run("rejects unknown tools", func() {
		reply := s.toolbox.Invoke(s.ctx, "fireball", json.RawMessage(`{}`))
		s.False(reply.Succeeded())
		s.Equal("INVALID_ARGUMENT", reply.Failure().Code)
		s.Contains(reply.Failure().Message, "fireball")
	})

	s.Run("rejects malformed arguments", func() {
		reply := s.toolbox.Invoke(s.ctx, tools.NameEndCombat, json.RawMessage(`{"victor":`))
		s.False(reply.Succeeded())
		s.Equal("INVALID_ARGUMENT", reply.Failure().Code)
	})

	s.Run("rejects unknown fields", func() {
		reply := s.toolbox.Invoke(s.ctx, tools.NameEndCombat, json.RawMessage(`{"campaign_id":"camp-1","winner":"Party"}`))
		s.False(reply.Succeeded())
		s.Equal("INVALID_ARGUMENT", reply.Failure().Code)
	})
}

func TestDefinitionsCoverEveryTool(t *testing.T) {
	ctrl := gomock.NewController(t)
	toolbox, err := tools.NewToolbox(&tools.Config{Combat: combatmock.NewMockService(ctrl)})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, d := range tools.Definitions {
		assert.False(t, seen[d.Name], "duplicate tool %s", d.Name)
		seen[d.Name] = true
		assert.NotEmpty(t, tools.Describe(d.Name))

		// malformed JSON never reaches the orchestrator, so the mock needs
		// no expectations
		reply := toolbox.Invoke(context.Background(), d.Name, json.RawMessage(`[`))
		assert.Equal(t, "INVALID_ARGUMENT", reply.Failure().Code, d.Name)
	}
	assert.Len(t, seen, 10)
	assert.Empty(t, tools.Describe("fireball"))
}
