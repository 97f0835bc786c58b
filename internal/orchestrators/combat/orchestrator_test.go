package combat_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/clients/external"
	externalmock "github.com/HillPhelmuth/AgenticRpg-sub000/internal/clients/external/mock"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine/rpgtoolkit"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/jobs"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/combat"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/dice"
	dicemock "github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/dice/mock"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/clock"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/idgen"
	campaignstate "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/campaign_state"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/character"
	charactermock "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/character/mock"
	dicesession "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/dice_session"
	dicesessionmock "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/dice_session/mock"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/narrative"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/testutils"
)

const campaignID = "camp-1"

// players answers manual roll windows from a queue, playing the part of
// the humans at the table
type players struct {
	mu     sync.Mutex
	totals []int
	svc    dice.Service
}

func (p *players) queue(totals ...int) {
	p.mu.Lock()
	p.totals = append(p.totals, totals...)
	p.mu.Unlock()
}

func (p *players) answer(req *entities.RollRequest) {
	if !req.Manual {
		return
	}
	for _, id := range req.WindowIDs {
		p.mu.Lock()
		if len(p.totals) == 0 {
			p.mu.Unlock()
			return
		}
		total := p.totals[0]
		p.totals = p.totals[1:]
		p.mu.Unlock()

		_, _ = p.svc.Fulfill(context.Background(), &dice.FulfillInput{WindowID: id, Total: total})
	}
}

type recordingNarrator struct {
	mu       sync.Mutex
	handOffs []*combat.HandOffInput
}

func (n *recordingNarrator) HandOff(_ context.Context, input *combat.HandOffInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handOffs = append(n.handOffs, input)
	return nil
}

type channelHighlights struct {
	done chan *entities.Encounter
}

func (h *channelHighlights) Generate(_ context.Context, enc *entities.Encounter) error {
	h.done <- enc
	return nil
}

// flakyLedger fails the first combat result written for one character
type flakyLedger struct {
	*character.InMemoryRepository
	failFor string
	failed  bool
}

func (l *flakyLedger) ApplyCombatResult(ctx context.Context, input character.ApplyCombatResultInput) (*character.ApplyCombatResultOutput, error) {
	if input.CharacterID == l.failFor && !l.failed {
		l.failed = true
		return nil, errors.Unavailable("ledger offline")
	}
	return l.InMemoryRepository.ApplyCombatResult(ctx, input)
}

// flakyStates fails the first write that detaches an encounter
type flakyStates struct {
	*campaignstate.InMemoryRepository
	failed bool
}

func (r *flakyStates) Update(ctx context.Context, input *campaignstate.UpdateInput) (*campaignstate.UpdateOutput, error) {
	if input.State.Encounter == nil && !r.failed {
		r.failed = true
		return nil, errors.Unavailable("state store offline")
	}
	return r.InMemoryRepository.Update(ctx, input)
}

type OrchestratorTestSuite struct {
	suite.Suite
	ctx        context.Context
	clock      *clock.Fixed
	states     *campaignstate.InMemoryRepository
	characters *character.InMemoryRepository
	narrative  *narrative.InMemoryRepository
	publisher  *testutils.RecordingPublisher
	roller     *testutils.ScriptedRoller
	players    *players
	narrator   *recordingNarrator
	highlights *channelHighlights
	runner     *jobs.Runner
	dice       dice.Service
	svc        combat.Service
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFixed(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC))
	s.states = campaignstate.NewInMemory(s.clock)
	s.characters = character.NewInMemory(s.clock)
	s.narrative = narrative.NewInMemory(s.clock)
	s.roller = testutils.NewScriptedRoller()
	s.players = &players{}
	s.publisher = &testutils.RecordingPublisher{OnPublish: s.players.answer}
	s.narrator = &recordingNarrator{}
	s.highlights = &channelHighlights{done: make(chan *entities.Encounter, 1)}
	s.runner = jobs.NewRunner(&jobs.Config{Logger: zaptest.NewLogger(s.T())})

	var err error
	s.dice, err = dice.NewOrchestrator(&dice.Config{
		Publisher:     s.publisher,
		Roller:        s.roller,
		IDGenerator:   idgen.NewSequential("win"),
		Clock:         s.clock,
		Logger:        zaptest.NewLogger(s.T()),
		WindowTimeout: 2 * time.Second,
	})
	s.Require().NoError(err)
	s.players.svc = s.dice

	s.svc = s.newService(s.dice, s.characters, nil)
}

func (s *OrchestratorTestSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Require().NoError(s.runner.Shutdown(ctx))
}

func (s *OrchestratorTestSuite) newService(d dice.Service, characters character.Repository, spells external.Client) combat.Service {
	svc, err := combat.NewOrchestrator(&combat.Config{
		States:      s.states,
		Dice:        d,
		Characters:  characters,
		Narrative:   s.narrative,
		Spells:      spells,
		Narrator:    s.narrator,
		Highlights:  s.highlights,
		Jobs:        s.runner,
		IDGenerator: idgen.NewSequential("enc"),
		Clock:       s.clock,
		Logger:      zaptest.NewLogger(s.T()),
	})
	s.Require().NoError(err)
	return svc
}

// start begins a combat between the given sides
func (s *OrchestratorTestSuite) start(party, enemies []*entities.Combatant) *entities.Encounter {
	out, err := s.svc.InitiateCombat(s.ctx, &combat.InitiateCombatInput{
		CampaignID: campaignID,
		Terrain:    "forest road",
		Party:      party,
		Enemies:    enemies,
	})
	s.Require().NoError(err)
	return out.Encounter
}

// startWithInitiative begins a combat and rolls initiative with every
// human rolling 10 and every NPC rolling 5
func (s *OrchestratorTestSuite) startWithInitiative(party, enemies []*entities.Combatant) {
	s.start(party, enemies)
	for _, c := range party {
		if c.IsHuman() {
			s.players.queue(10)
		} else {
			s.roller.Queue(5)
		}
	}
	for _, c := range enemies {
		if c.IsHuman() {
			s.players.queue(10)
		} else {
			s.roller.Queue(5)
		}
	}
	_, err := s.svc.DetermineInitiative(s.ctx, &combat.DetermineInitiativeInput{CampaignID: campaignID})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) encounter() *entities.Encounter {
	out, err := s.svc.GetCombatState(s.ctx, &combat.GetCombatStateInput{CampaignID: campaignID})
	s.Require().NoError(err)
	s.Require().True(out.InCombat)
	return out.Encounter
}

func (s *OrchestratorTestSuite) combatant(ref string) *entities.Combatant {
	c, ok := s.encounter().Find(ref)
	s.Require().True(ok, "combatant %s not found", ref)
	return c
}

func (s *OrchestratorTestSuite) TestConfigValidation() {
	_, err := combat.NewOrchestrator(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = combat.NewOrchestrator(&combat.Config{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestInitiateCombat() {
	enc := s.start([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})

	s.Equal("enc_1", enc.ID)
	s.Equal(entities.EncounterStatusActive, enc.Status)
	s.Equal(1, enc.Round)
	s.Equal(0, enc.CurrentTurnIndex)
	s.Require().Len(enc.CombatLog, 1)
	s.Equal(entities.ActionCombatStart, enc.CombatLog[0].Kind)
	s.Equal(entities.SideParty, enc.Party[0].Side)
	s.Equal(entities.SideEnemy, enc.Enemies[0].Side)

	stored := s.encounter()
	s.Equal(enc.ID, stored.ID)
}

func (s *OrchestratorTestSuite) TestInitiateCombatRejectsSecondCombat() {
	s.start([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})

	_, err := s.svc.InitiateCombat(s.ctx, &combat.InitiateCombatInput{
		CampaignID: campaignID,
		Party:      []*entities.Combatant{testutils.NewCleric()},
		Enemies:    []*entities.Combatant{testutils.NewOgre()},
	})
	s.True(errors.IsInvalidState(err))
}

func (s *OrchestratorTestSuite) TestInitiateCombatValidatesRoster() {
	testCases := []struct {
		name  string
		input *combat.InitiateCombatInput
	}{
		{"nil input", nil},
		{"missing campaign", &combat.InitiateCombatInput{
			Party:   []*entities.Combatant{testutils.NewHero()},
			Enemies: []*entities.Combatant{testutils.NewGoblin()},
		}},
		{"no enemies", &combat.InitiateCombatInput{
			CampaignID: campaignID,
			Party:      []*entities.Combatant{testutils.NewHero()},
		}},
		{"duplicate ids", &combat.InitiateCombatInput{
			CampaignID: campaignID,
			Party:      []*entities.Combatant{testutils.NewHero()},
			Enemies:    []*entities.Combatant{testutils.NewGoblin(), testutils.NewGoblin()},
		}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.svc.InitiateCombat(s.ctx, tc.input)
			s.True(errors.IsInvalidArgument(err), "got %v", err)
		})
	}
}

func (s *OrchestratorTestSuite) TestInitiateCombatHydratesFromLedger() {
	_, err := s.characters.Upsert(s.ctx, character.UpsertInput{Record: &character.Record{
		ID:         testutils.HeroID,
		PlayerID:   testutils.PlayerOne,
		CampaignID: campaignID,
		Name:       "Aria",
		MaxHP:      30,
		CurrentHP:  21,
		Gold:       40,
	}})
	s.Require().NoError(err)

	hero := testutils.NewHero()
	hero.MaxHP, hero.CurrentHP, hero.Gold = 0, 0, 0
	enc := s.start([]*entities.Combatant{hero}, []*entities.Combatant{testutils.NewGoblin()})

	s.Equal(30, enc.Party[0].MaxHP)
	s.Equal(21, enc.Party[0].CurrentHP)
	s.Equal(40, enc.Party[0].Gold)
}

func (s *OrchestratorTestSuite) TestInitiateCombatUnknownCharacter() {
	hero := testutils.NewHero()
	hero.MaxHP = 0

	_, err := s.svc.InitiateCombat(s.ctx, &combat.InitiateCombatInput{
		CampaignID: campaignID,
		Party:      []*entities.Combatant{hero},
		Enemies:    []*entities.Combatant{testutils.NewGoblin()},
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestDetermineInitiative() {
	s.start(
		[]*entities.Combatant{testutils.NewHero(), testutils.NewCleric()},
		[]*entities.Combatant{testutils.NewGoblin()},
	)
	// hero 15+2, cleric 10+0, goblin 15+2
	s.players.queue(15, 10)
	s.roller.Queue(15)

	out, err := s.svc.DetermineInitiative(s.ctx, &combat.DetermineInitiativeInput{CampaignID: campaignID})
	s.Require().NoError(err)

	s.Require().Len(out.Order, 3)
	s.Equal(testutils.HeroID, out.Order[0].CombatantID)
	s.Equal(17, out.Order[0].Total)
	s.Equal(testutils.GoblinID, out.Order[1].CombatantID, "ties keep submission order")
	s.Equal(testutils.ClericID, out.Order[2].CombatantID)

	enc := s.encounter()
	s.Equal([]string{testutils.HeroID, testutils.GoblinID, testutils.ClericID}, enc.InitiativeOrder)
	s.Equal(0, enc.CurrentTurnIndex)
	s.Equal(testutils.HeroID, enc.ActiveCombatant().ID)
	s.Equal(entities.ActionInitiative, enc.CombatLog[len(enc.CombatLog)-1].Kind)

	reqs := s.publisher.Requests()
	s.Require().Len(reqs, 3)
	s.True(reqs[0].Manual)
	s.Equal(testutils.PlayerOne, reqs[0].PlayerID)
	s.Equal(2, reqs[0].Modifier)
	s.True(reqs[1].Manual)
	s.Equal(testutils.PlayerTwo, reqs[1].PlayerID)
	s.Equal(0, reqs[1].Modifier)
	s.False(reqs[2].Manual)
	s.Equal(2, reqs[2].Modifier)
}

func (s *OrchestratorTestSuite) TestDetermineInitiativeUnknownCombatant() {
	s.start([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})

	_, err := s.svc.DetermineInitiative(s.ctx, &combat.DetermineInitiativeInput{
		CampaignID: campaignID,
		Combatants: []string{"Aria", "Dragon"},
	})
	s.Require().Error(err)
	s.Empty(s.encounter().InitiativeOrder)
}

func (s *OrchestratorTestSuite) TestDetermineInitiativeChecksListBeforeRolling() {
	s.start(
		[]*entities.Combatant{testutils.NewHero(), testutils.NewCleric()},
		[]*entities.Combatant{testutils.NewGoblin()},
	)

	testCases := []struct {
		name string
		refs []string
	}{
		{"missing combatant", []string{testutils.HeroID, testutils.GoblinID}},
		{"listed twice", []string{testutils.HeroID, testutils.ClericID, testutils.GoblinID, "aria"}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.svc.DetermineInitiative(s.ctx, &combat.DetermineInitiativeInput{
				CampaignID: campaignID,
				Combatants: tc.refs,
			})
			s.True(errors.IsInvalidArgument(err))
			s.Empty(s.publisher.Requests(), "no roll is requested for a bad list")
			s.Zero(s.dice.Pending())
		})
	}
	s.Empty(s.encounter().InitiativeOrder)
}

func (s *OrchestratorTestSuite) TestDetermineInitiativeFollowsGivenList() {
	s.start([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})
	s.roller.Queue(9)
	s.players.queue(9)

	out, err := s.svc.DetermineInitiative(s.ctx, &combat.DetermineInitiativeInput{
		CampaignID: campaignID,
		Combatants: []string{"goblin", "aria"},
	})
	s.Require().NoError(err)
	s.Equal(testutils.GoblinID, out.Order[0].CombatantID, "ties keep list order")

	reqs := s.publisher.Requests()
	s.Require().Len(reqs, 2)
	s.False(reqs[0].Manual)
	s.True(reqs[1].Manual)
}

func (s *OrchestratorTestSuite) TestAttackRequiresActiveCombat() {
	_, err := s.svc.PlayerWeaponAttack(s.ctx, &combat.WeaponAttackInput{
		CampaignID: campaignID,
		Attacker:   testutils.HeroID,
		Target:     testutils.GoblinID,
	})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestAttackRequiresInitiative() {
	s.start([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})

	_, err := s.svc.PlayerWeaponAttack(s.ctx, &combat.WeaponAttackInput{
		CampaignID: campaignID,
		Attacker:   testutils.HeroID,
		Target:     testutils.GoblinID,
	})
	s.True(errors.IsInvalidState(err))
	s.Empty(s.publisher.Requests(), "no roll may be requested")
}

// TestEndToEndScenario plays a short fight: a natural 20 against AC 12,
// 1d8 damage rolled as 5 plus 2 ends the goblin, and only then can the
// party claim victory.
func (s *OrchestratorTestSuite) TestEndToEndScenario() {
	hero := testutils.NewHero()
	hero.AttackModifier = 2
	hero.Weapon = &entities.Weapon{Name: "Longsword", DiceCount: 1, DieType: 8}
	goblin := testutils.NewGoblin()
	goblin.MaxHP, goblin.CurrentHP = 10, 10
	s.startWithInitiative([]*entities.Combatant{hero}, []*entities.Combatant{goblin})

	_, err := s.svc.EndCombat(s.ctx, &combat.EndCombatInput{CampaignID: campaignID, Victor: entities.VictorParty})
	s.True(errors.IsInvalidState(err), "the goblin is still standing")

	s.players.queue(20, 5)
	out, err := s.svc.PlayerWeaponAttack(s.ctx, &combat.WeaponAttackInput{
		CampaignID: campaignID,
		Attacker:   "aria",
		Target:     "GOBLIN",
	})
	s.Require().NoError(err)

	s.True(out.Hit)
	s.True(out.Critical)
	s.Equal(22, out.AttackTotal)
	s.Equal(5, out.DamageRoll)
	s.Equal(12, out.Damage)
	s.Equal(0, out.TargetHP)
	s.True(out.Defeated)

	enc := s.encounter()
	s.Equal(1, enc.CurrentTurnIndex)
	s.Require().Len(enc.CombatLog, 3)
	last := enc.CombatLog[2]
	s.Equal(entities.ActionAttack, last.Kind)
	s.True(last.Critical)
	s.Equal(12, last.Damage)

	ended, err := s.svc.EndCombat(s.ctx, &combat.EndCombatInput{
		CampaignID: campaignID,
		Victor:     "party",
		GoldReward: 15,
	})
	s.Require().NoError(err)
	s.Equal(entities.VictorParty, ended.Summary.Victor)
	s.Equal(3, ended.Summary.Actions)
	s.Equal(map[string]int{testutils.HeroID: 15}, ended.Summary.GoldShares)

	state, err := s.svc.GetCombatState(s.ctx, &combat.GetCombatStateInput{CampaignID: campaignID})
	s.Require().NoError(err)
	s.False(state.InCombat)
	s.Nil(state.Encounter)
}

func (s *OrchestratorTestSuite) TestMissSkipsDamage() {
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})
	before := len(s.publisher.Requests())

	s.players.queue(2)
	out, err := s.svc.PlayerWeaponAttack(s.ctx, &combat.WeaponAttackInput{
		CampaignID: campaignID,
		Attacker:   testutils.HeroID,
		Target:     testutils.GoblinID,
	})
	s.Require().NoError(err)

	s.False(out.Hit)
	s.Zero(out.Damage)
	s.Equal(7, out.TargetHP)
	s.Len(s.publisher.Requests(), before+1, "only the attack window is requested")
	s.Equal(1, s.encounter().CurrentTurnIndex)
}

func (s *OrchestratorTestSuite) TestRollRequestsCarryModifiers() {
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})
	before := len(s.publisher.Requests())

	s.players.queue(15, 1)
	out, err := s.svc.PlayerWeaponAttack(s.ctx, &combat.WeaponAttackInput{
		CampaignID: campaignID,
		Attacker:   testutils.HeroID,
		Target:     testutils.GoblinID,
	})
	s.Require().NoError(err)
	s.Require().True(out.Hit)

	reqs := s.publisher.Requests()[before:]
	s.Require().Len(reqs, 2)
	s.Equal(5, reqs[0].Modifier, "attack modifier")
	s.Equal(7, reqs[1].Modifier, "attack modifier plus weapon bonus")
	s.Equal(1, out.DamageRoll, "submitted totals are dice only")
}

func (s *OrchestratorTestSuite) TestAdvantageKeepsBestRoll() {
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewOgre()})

	s.players.queue(3, 14, 4)
	out, err := s.svc.PlayerWeaponAttack(s.ctx, &combat.WeaponAttackInput{
		CampaignID: campaignID,
		Attacker:   testutils.HeroID,
		Target:     testutils.OgreID,
		Advantage:  true,
	})
	s.Require().NoError(err)

	s.Equal([]int{3, 14}, out.AttackRolls)
	s.Equal(14, out.AttackRoll)
	s.True(out.Hit)
	s.Equal(4+5+2, out.Damage)

	reqs := s.publisher.Requests()
	s.Equal(2, reqs[len(reqs)-2].WindowCount)
}

func (s *OrchestratorTestSuite) TestMonsterWeaponAttack() {
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})

	s.roller.Queue(15, 6)
	out, err := s.svc.MonsterWeaponAttack(s.ctx, &combat.WeaponAttackInput{
		CampaignID: campaignID,
		Attacker:   "Goblin",
		Target:     "Aria",
	})
	s.Require().NoError(err)

	s.True(out.Hit)
	s.Equal(19, out.AttackTotal)
	s.Equal(6+4+2, out.Damage)
	s.Equal(12, out.TargetHP)
	s.Equal(12, s.combatant(testutils.HeroID).CurrentHP)
}

func (s *OrchestratorTestSuite) TestAttackResolutionErrors() {
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})

	testCases := []struct {
		name   string
		attack func() error
		check  func(error) bool
	}{
		{
			name: "monster as player attacker",
			attack: func() error {
				_, err := s.svc.PlayerWeaponAttack(s.ctx, &combat.WeaponAttackInput{
					CampaignID: campaignID, Attacker: testutils.GoblinID, Target: testutils.HeroID,
				})
				return err
			},
			check: errors.IsInvalidArgument,
		},
		{
			name: "unknown target",
			attack: func() error {
				_, err := s.svc.PlayerWeaponAttack(s.ctx, &combat.WeaponAttackInput{
					CampaignID: campaignID, Attacker: testutils.HeroID, Target: "Dragon",
				})
				return err
			},
			check: errors.IsNotFound,
		},
		{
			name: "player as monster attacker",
			attack: func() error {
				_, err := s.svc.MonsterWeaponAttack(s.ctx, &combat.WeaponAttackInput{
					CampaignID: campaignID, Attacker: testutils.HeroID, Target: testutils.GoblinID,
				})
				return err
			},
			check: errors.IsInvalidArgument,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.True(tc.check(tc.attack()))
		})
	}
	s.Equal(0, s.encounter().CurrentTurnIndex)
}

func (s *OrchestratorTestSuite) TestDefeatedTargetCannotBeAttacked() {
	goblin := testutils.NewGoblin()
	goblin.CurrentHP = 0
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{goblin, testutils.NewOgre()})

	_, err := s.svc.PlayerWeaponAttack(s.ctx, &combat.WeaponAttackInput{
		CampaignID: campaignID,
		Attacker:   testutils.HeroID,
		Target:     testutils.GoblinID,
	})
	s.True(errors.IsInvalidState(err))
}

func (s *OrchestratorTestSuite) TestDiceFailureLeavesStateUntouched() {
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})
	before := s.encounter()

	ctrl := gomock.NewController(s.T())
	failing := dicemock.NewMockService(ctrl)
	failing.EXPECT().Roll(gomock.Any(), gomock.Any()).Return(nil, errors.Unavailable("roll request was not delivered"))
	svc := s.newService(failing, s.characters, nil)

	_, err := svc.PlayerWeaponAttack(s.ctx, &combat.WeaponAttackInput{
		CampaignID: campaignID,
		Attacker:   testutils.HeroID,
		Target:     testutils.GoblinID,
	})
	s.True(errors.IsUnavailable(err))
	s.Equal(before, s.encounter())
}

func (s *OrchestratorTestSuite) TestRollTimeoutFailsAction() {
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})

	// nobody answers the attack window
	_, err := s.svc.PlayerWeaponAttack(s.ctx, &combat.WeaponAttackInput{
		CampaignID: campaignID,
		Attacker:   testutils.HeroID,
		Target:     testutils.GoblinID,
	})
	s.True(errors.IsDeadlineExceeded(err), "got %v", err)
	s.Equal(0, s.encounter().CurrentTurnIndex)
	s.Zero(s.dice.Pending())
}

func (s *OrchestratorTestSuite) TestSpellInsufficientManaRequestsNoRoll() {
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewOgre()})
	before := len(s.publisher.Requests())
	level := 3

	_, err := s.svc.PlayerSpellAttack(s.ctx, &combat.SpellAttackInput{
		CampaignID: campaignID,
		Caster:     testutils.HeroID,
		Target:     testutils.OgreID,
		SpellName:  "Fireball",
		Level:      &level,
		DamageDice: "8d6",
	})
	s.True(errors.IsInvalidState(err))
	s.Len(s.publisher.Requests(), before)
	s.Equal(2, s.combatant(testutils.HeroID).Mana)
}

func (s *OrchestratorTestSuite) TestSpellFromCatalog() {
	ctrl := gomock.NewController(s.T())
	spells := externalmock.NewMockClient(ctrl)
	spells.EXPECT().GetSpellData(gomock.Any(), "chill-touch").Return(&external.SpellData{
		ID:            "chill-touch",
		Name:          "Chill Touch",
		Level:         1,
		DamageDice:    "1d10",
		SaveAttribute: "CON",
	}, nil)
	s.svc = s.newService(s.dice, s.characters, spells)
	s.startWithInitiative([]*entities.Combatant{testutils.NewCleric()}, []*entities.Combatant{testutils.NewOgre()})

	// ogre saves with 5 against DC 11, cleric rolls 8 damage
	s.roller.Queue(5)
	s.players.queue(8)
	out, err := s.svc.PlayerSpellAttack(s.ctx, &combat.SpellAttackInput{
		CampaignID: campaignID,
		Caster:     "Bram",
		Target:     "Ogre",
		SpellKey:   "chill-touch",
	})
	s.Require().NoError(err)

	s.Equal("Chill Touch", out.SpellName)
	s.Equal(1, out.Level)
	s.Equal(2, out.ManaCost)
	s.Equal(4, out.ManaRemaining)
	s.Equal(11, out.SaveDC)
	s.False(out.Saved)
	s.Equal(8, out.Damage)
	s.Equal(51, out.TargetHP)

	s.Equal(4, s.combatant(testutils.ClericID).Mana)
}

func (s *OrchestratorTestSuite) TestSpellSaveHalvesDamage() {
	s.startWithInitiative([]*entities.Combatant{testutils.NewCleric()}, []*entities.Combatant{testutils.NewOgre()})
	level := 1

	s.roller.Queue(18)
	s.players.queue(7)
	out, err := s.svc.PlayerSpellAttack(s.ctx, &combat.SpellAttackInput{
		CampaignID: campaignID,
		Caster:     testutils.ClericID,
		Target:     testutils.OgreID,
		SpellName:  "Thunderwave",
		Level:      &level,
		DamageDice: "2d8",
	})
	s.Require().NoError(err)

	s.True(out.Saved)
	s.Equal(3, out.Damage)
}

func (s *OrchestratorTestSuite) TestSavingThrowWithHalfDamage() {
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})

	// 14 + 2 dex beats DC 15; 2d6 rolled as 7 is halved to 3
	s.players.queue(14)
	s.roller.Queue(7)
	out, err := s.svc.SavingThrow(s.ctx, &combat.SavingThrowInput{
		CampaignID:    campaignID,
		Combatant:     "Aria",
		Attribute:     "DEX",
		DC:            15,
		DamageDice:    "2d6",
		HalfOnSuccess: true,
		Reason:        "a collapsing bridge",
	})
	s.Require().NoError(err)

	s.True(out.Success)
	s.Equal(16, out.Total)
	s.Equal(3, out.Damage)
	s.Equal(21, out.HP)
	s.Contains(out.Message, "a collapsing bridge")
	s.Equal(1, s.encounter().CurrentTurnIndex)
}

func (s *OrchestratorTestSuite) TestSavingThrowSuccessWithoutHalfTakesNothing() {
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})

	s.players.queue(19)
	out, err := s.svc.SavingThrow(s.ctx, &combat.SavingThrowInput{
		CampaignID: campaignID,
		Combatant:  testutils.HeroID,
		Attribute:  entities.AttributeStrength,
		DC:         12,
		DamageDice: "1d6",
	})
	s.Require().NoError(err)

	s.True(out.Success)
	s.Zero(out.Damage)
	s.Zero(s.roller.Remaining())
}

func (s *OrchestratorTestSuite) TestSavingThrowValidation() {
	_, err := s.svc.SavingThrow(s.ctx, &combat.SavingThrowInput{CampaignID: campaignID, Combatant: "Aria"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestSpecialAbilityHeals() {
	hero := testutils.NewHero()
	hero.CurrentHP = 10
	s.startWithInitiative([]*entities.Combatant{hero, testutils.NewCleric()}, []*entities.Combatant{testutils.NewGoblin()})

	s.players.queue(5)
	out, err := s.svc.SpecialAbility(s.ctx, &combat.SpecialAbilityInput{
		CampaignID: campaignID,
		User:       "Bram",
		Target:     "Aria",
		Ability:    "Cure Wounds",
		Effect:     combat.EffectHeal,
		Dice:       "1d8",
		Magnitude:  3,
		ManaCost:   2,
	})
	s.Require().NoError(err)

	s.Equal(5, out.Roll)
	s.Equal(8, out.Amount)
	s.Equal(18, out.TargetHP)
	s.Equal(4, out.ManaRemaining)
	s.Equal(18, s.combatant(testutils.HeroID).CurrentHP)
}

func (s *OrchestratorTestSuite) TestSpecialAbilityDamageWithSave() {
	s.startWithInitiative([]*entities.Combatant{testutils.NewCleric()}, []*entities.Combatant{testutils.NewOgre()})

	// cleric rolls 6 on 2d6, ogre saves with 15 against DC 11
	s.players.queue(6)
	s.roller.Queue(15)
	out, err := s.svc.SpecialAbility(s.ctx, &combat.SpecialAbilityInput{
		CampaignID:    campaignID,
		User:          testutils.ClericID,
		Target:        testutils.OgreID,
		Ability:       "Radiant Burst",
		Effect:        combat.EffectDamage,
		Dice:          "2d6",
		Magnitude:     3,
		SaveAttribute: "wis",
	})
	s.Require().NoError(err)

	s.True(out.Saved)
	s.Equal(4, out.Amount)
	s.Equal(55, out.TargetHP)
}

func (s *OrchestratorTestSuite) TestEndCombatValidation() {
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})

	_, err := s.svc.EndCombat(s.ctx, &combat.EndCombatInput{CampaignID: campaignID, Victor: "Goblins"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.svc.EndCombat(s.ctx, &combat.EndCombatInput{CampaignID: campaignID, Victor: entities.VictorEnemies})
	s.True(errors.IsInvalidState(err))

	_, err = s.svc.EndCombat(s.ctx, &combat.EndCombatInput{CampaignID: campaignID, Victor: entities.VictorDraw, GoldReward: -1})
	s.True(errors.IsInvalidArgument(err))

	s.True(s.encounter().IsActive())
}

func (s *OrchestratorTestSuite) TestEndCombatPaysOutAndHandsOff() {
	hero := testutils.NewHero()
	hero.CurrentHP = 9
	s.startWithInitiative([]*entities.Combatant{hero, testutils.NewCleric()}, []*entities.Combatant{testutils.NewGoblin()})

	out, err := s.svc.EndCombat(s.ctx, &combat.EndCombatInput{
		CampaignID: campaignID,
		Victor:     entities.VictorDraw,
		GoldReward: 11,
		Notes:      "the goblin fled",
	})
	s.Require().NoError(err)

	s.Equal(map[string]int{testutils.HeroID: 6, testutils.ClericID: 5}, out.Summary.GoldShares)
	s.Equal([]string{"Aria", "Bram"}, out.Summary.Survivors)

	rec, err := s.characters.Get(s.ctx, character.GetInput{ID: testutils.HeroID})
	s.Require().NoError(err)
	s.Equal(9, rec.Record.CurrentHP)
	s.Equal(6, rec.Record.Gold)

	entries, err := s.narrative.List(s.ctx, narrative.ListInput{CampaignID: campaignID, Kind: narrative.KindCombatSummary})
	s.Require().NoError(err)
	s.Require().Len(entries.Entries, 1)
	s.Equal(out.Summary, entries.Entries[0].Summary)

	s.Require().Len(s.narrator.handOffs, 1)
	s.Equal(campaignID, s.narrator.handOffs[0].CampaignID)

	select {
	case enc := <-s.highlights.done:
		s.Equal(entities.EncounterStatusEnded, enc.Status)
		s.NotNil(enc.EndedAt)
	case <-time.After(2 * time.Second):
		s.Fail("highlight job did not run")
	}

	_, err = s.svc.EndCombat(s.ctx, &combat.EndCombatInput{CampaignID: campaignID, Victor: entities.VictorDraw})
	s.True(errors.IsInvalidState(err), "a combat ends once")
}

func (s *OrchestratorTestSuite) TestEndCombatLedgerFailurePaysOnce() {
	ledger := &flakyLedger{InMemoryRepository: s.characters, failFor: testutils.ClericID}
	s.svc = s.newService(s.dice, ledger, nil)
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero(), testutils.NewCleric()}, []*entities.Combatant{testutils.NewGoblin()})

	end := &combat.EndCombatInput{CampaignID: campaignID, Victor: entities.VictorDraw, GoldReward: 10}
	out, err := s.svc.EndCombat(s.ctx, end)
	s.Require().NoError(err)
	s.Equal([]string{"Bram"}, out.Unrecorded)

	_, err = s.svc.EndCombat(s.ctx, end)
	s.True(errors.IsInvalidState(err), "the combat is already closed")

	rec, err := s.characters.Get(s.ctx, character.GetInput{ID: testutils.HeroID})
	s.Require().NoError(err)
	s.Equal(5, rec.Record.Gold)

	entries, err := s.narrative.List(s.ctx, narrative.ListInput{CampaignID: campaignID, Kind: narrative.KindCombatSummary})
	s.Require().NoError(err)
	s.Len(entries.Entries, 1)
}

func (s *OrchestratorTestSuite) TestEndCombatPersistFailureWritesNothing() {
	states := &flakyStates{InMemoryRepository: s.states}
	svc, err := combat.NewOrchestrator(&combat.Config{
		States:      states,
		Dice:        s.dice,
		Characters:  s.characters,
		Narrative:   s.narrative,
		Jobs:        s.runner,
		IDGenerator: idgen.NewSequential("enc"),
		Clock:       s.clock,
		Logger:      zaptest.NewLogger(s.T()),
	})
	s.Require().NoError(err)
	s.svc = svc
	s.startWithInitiative([]*entities.Combatant{testutils.NewHero(), testutils.NewCleric()}, []*entities.Combatant{testutils.NewGoblin()})

	end := &combat.EndCombatInput{CampaignID: campaignID, Victor: entities.VictorDraw, GoldReward: 10}
	_, err = s.svc.EndCombat(s.ctx, end)
	s.True(errors.IsUnavailable(err))

	_, err = s.characters.Get(s.ctx, character.GetInput{ID: testutils.HeroID})
	s.True(errors.IsNotFound(err), "no gold is paid for a combat that did not end")
	entries, err := s.narrative.List(s.ctx, narrative.ListInput{CampaignID: campaignID})
	s.Require().NoError(err)
	s.Empty(entries.Entries)
	s.True(s.encounter().IsActive())

	_, err = s.svc.EndCombat(s.ctx, end)
	s.Require().NoError(err)
	rec, err := s.characters.Get(s.ctx, character.GetInput{ID: testutils.HeroID})
	s.Require().NoError(err)
	s.Equal(5, rec.Record.Gold)
}

func (s *OrchestratorTestSuite) TestPanicBecomesInternalError() {
	ctrl := gomock.NewController(s.T())
	characters := charactermock.NewMockRepository(ctrl)
	characters.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, character.GetInput) (*character.GetOutput, error) {
			panic("ledger exploded")
		})
	svc := s.newService(s.dice, characters, nil)

	hero := testutils.NewHero()
	hero.MaxHP = 0
	_, err := svc.InitiateCombat(s.ctx, &combat.InitiateCombatInput{
		CampaignID: campaignID,
		Party:      []*entities.Combatant{hero},
		Enemies:    []*entities.Combatant{testutils.NewGoblin()},
	})
	s.True(errors.IsInternal(err))

	// the campaign lock was released
	_, err = svc.InitiateCombat(s.ctx, &combat.InitiateCombatInput{
		CampaignID: campaignID,
		Party:      []*entities.Combatant{testutils.NewHero()},
		Enemies:    []*entities.Combatant{testutils.NewGoblin()},
	})
	s.NoError(err)
}

func (s *OrchestratorTestSuite) TestGetCombatState() {
	_, err := s.svc.GetCombatState(s.ctx, &combat.GetCombatStateInput{CampaignID: "nowhere"})
	s.True(errors.IsNotFound(err))

	s.start([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})
	out, err := s.svc.GetCombatState(s.ctx, &combat.GetCombatStateInput{CampaignID: campaignID})
	s.Require().NoError(err)
	s.True(out.InCombat)
	s.Nil(out.Active, "no turn before initiative")
}

func (s *OrchestratorTestSuite) TestGetRollHistory() {
	_, err := s.svc.GetRollHistory(s.ctx, &combat.GetRollHistoryInput{CampaignID: campaignID})
	s.True(errors.IsUnavailable(err))

	ctrl := gomock.NewController(s.T())
	history := dicesessionmock.NewMockRepository(ctrl)
	history.EXPECT().List(gomock.Any(), dicesession.ListInput{CampaignID: campaignID, Limit: 5}).
		Return(&dicesession.ListOutput{Rolls: []dicesession.DiceRoll{{WindowID: "win-2", Total: 17}}}, nil)

	svc, err := combat.NewOrchestrator(&combat.Config{
		States:      s.states,
		Dice:        s.dice,
		Characters:  s.characters,
		Narrative:   s.narrative,
		RollHistory: history,
		IDGenerator: idgen.NewSequential("enc"),
	})
	s.Require().NoError(err)

	out, err := svc.GetRollHistory(s.ctx, &combat.GetRollHistoryInput{CampaignID: campaignID, Limit: 5})
	s.Require().NoError(err)
	s.Require().Len(out.Rolls, 1)
	s.Equal(17, out.Rolls[0].Total)
}

func (s *OrchestratorTestSuite) TestCombatEventsArePublished() {
	bus := events.NewBus()
	var (
		mu    sync.Mutex
		types []string
	)
	for _, eventType := range rpgtoolkit.CombatEventTypes {
		bus.SubscribeFunc(eventType, 0, func(_ context.Context, e events.Event) error {
			mu.Lock()
			types = append(types, e.Type())
			mu.Unlock()
			return nil
		})
	}

	svc, err := combat.NewOrchestrator(&combat.Config{
		States:      s.states,
		Dice:        s.dice,
		Characters:  s.characters,
		Narrative:   s.narrative,
		EventBus:    bus,
		IDGenerator: idgen.NewSequential("enc"),
		Clock:       s.clock,
	})
	s.Require().NoError(err)
	s.svc = svc

	s.startWithInitiative([]*entities.Combatant{testutils.NewHero()}, []*entities.Combatant{testutils.NewGoblin()})
	s.players.queue(1)
	_, err = s.svc.PlayerWeaponAttack(s.ctx, &combat.WeaponAttackInput{
		CampaignID: campaignID,
		Attacker:   testutils.HeroID,
		Target:     testutils.GoblinID,
	})
	s.Require().NoError(err)
	_, err = s.svc.EndCombat(s.ctx, &combat.EndCombatInput{CampaignID: campaignID, Victor: entities.VictorDraw})
	s.Require().NoError(err)

	mu.Lock()
	defer mu.Unlock()
	s.Equal([]string{
		rpgtoolkit.EventCombatStarted,
		rpgtoolkit.EventInitiativeRolled,
		rpgtoolkit.EventActionResolved,
		rpgtoolkit.EventCombatEnded,
	}, types)
}
