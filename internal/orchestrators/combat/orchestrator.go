// Package combat implements the combat orchestrator. It resolves
// combatants, asks the dice correlator for roll windows, applies the rules
// engine and persists the encounter through the campaign state gateway.
package combat

//go:generate mockgen -destination=mock/mock_service.go -package=combatmock github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/combat Service

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"go.uber.org/zap"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/clients/external"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/jobs"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/dice"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/clock"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/idgen"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/keylock"
	campaignstate "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/campaign_state"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/character"
	dicesession "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/dice_session"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/narrative"
)

// Service defines the interface for combat operations
type Service interface {
	// InitiateCombat starts an encounter in a campaign
	// Returns an InvalidState error if a combat is already active
	InitiateCombat(ctx context.Context, input *InitiateCombatInput) (*InitiateCombatOutput, error)

	// DetermineInitiative rolls a d20 for every combatant and installs the
	// turn order
	DetermineInitiative(ctx context.Context, input *DetermineInitiativeInput) (*DetermineInitiativeOutput, error)

	// PlayerWeaponAttack resolves a party member's weapon attack
	PlayerWeaponAttack(ctx context.Context, input *WeaponAttackInput) (*WeaponAttackOutput, error)

	// MonsterWeaponAttack resolves an enemy's weapon attack
	MonsterWeaponAttack(ctx context.Context, input *WeaponAttackInput) (*WeaponAttackOutput, error)

	// PlayerSpellAttack resolves a damaging spell. Mana is checked before
	// any roll is requested.
	PlayerSpellAttack(ctx context.Context, input *SpellAttackInput) (*SpellAttackOutput, error)

	// SavingThrow resolves a saving throw with optional damage
	SavingThrow(ctx context.Context, input *SavingThrowInput) (*SavingThrowOutput, error)

	// SpecialAbility resolves a damaging or healing ability
	SpecialAbility(ctx context.Context, input *SpecialAbilityInput) (*SpecialAbilityOutput, error)

	// EndCombat validates the victor, pays out gold and detaches the encounter
	// Returns an InvalidState error when the victor contradicts hit points
	EndCombat(ctx context.Context, input *EndCombatInput) (*EndCombatOutput, error)

	// GetCombatState returns a snapshot of the campaign's encounter
	GetCombatState(ctx context.Context, input *GetCombatStateInput) (*GetCombatStateOutput, error)

	// GetRollHistory returns the campaign's most recent resolved rolls
	GetRollHistory(ctx context.Context, input *GetRollHistoryInput) (*GetRollHistoryOutput, error)
}

// Narrator receives control after a combat ends
type Narrator interface {
	HandOff(ctx context.Context, input *HandOffInput) error
}

// HandOffInput is what the narrator learns about a finished combat
type HandOffInput struct {
	CampaignID string
	Summary    *entities.CombatSummary
}

// HighlightGenerator turns a finished encounter into post-combat media
type HighlightGenerator interface {
	Generate(ctx context.Context, encounter *entities.Encounter) error
}

// Settings are the tunables of the orchestrator
type Settings struct {
	// RollTimeout overrides the correlator's window timeout when positive
	RollTimeout time.Duration
	// PersistTimeout bounds state writes after dice were awaited
	PersistTimeout time.Duration
}

// Config holds the dependencies for the combat orchestrator
type Config struct {
	States      campaignstate.Repository
	Dice        dice.Service
	Characters  character.Repository
	Narrative   narrative.Repository
	RollHistory dicesession.Repository
	Spells      external.Client
	Narrator    Narrator
	Highlights  HighlightGenerator
	Jobs        *jobs.Runner
	EventBus    events.EventBus
	IDGenerator idgen.Generator
	Clock       clock.Clock
	Logger      *zap.Logger
	Settings    Settings
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.States == nil {
		vb.RequiredField("States")
	}
	if c.Dice == nil {
		vb.RequiredField("Dice")
	}
	if c.Characters == nil {
		vb.RequiredField("Characters")
	}
	if c.Narrative == nil {
		vb.RequiredField("Narrative")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Settings.RollTimeout < 0 {
		vb.Field("Settings.RollTimeout", "cannot be negative")
	}

	return vb.Build()
}

const defaultPersistTimeout = 5 * time.Second

type orchestrator struct {
	states     campaignstate.Repository
	dice       dice.Service
	characters character.Repository
	narrative  narrative.Repository
	history    dicesession.Repository
	spells     external.Client
	narrator   Narrator
	highlights HighlightGenerator
	jobs       *jobs.Runner
	bus        events.EventBus
	idGen      idgen.Generator
	clock      clock.Clock
	logger     *zap.Logger
	settings   Settings

	locks *keylock.Map
}

// NewOrchestrator creates a new combat orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		states:     cfg.States,
		dice:       cfg.Dice,
		characters: cfg.Characters,
		narrative:  cfg.Narrative,
		history:    cfg.RollHistory,
		spells:     cfg.Spells,
		narrator:   cfg.Narrator,
		highlights: cfg.Highlights,
		jobs:       cfg.Jobs,
		bus:        cfg.EventBus,
		idGen:      cfg.IDGenerator,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		settings:   cfg.Settings,
		locks:      keylock.New(),
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.jobs == nil {
		o.jobs = jobs.NewRunner(&jobs.Config{Logger: o.logger})
	}
	if o.settings.PersistTimeout <= 0 {
		o.settings.PersistTimeout = defaultPersistTimeout
	}
	return o, nil
}

// guard turns a panic inside an operation into an Internal error
func (o *orchestrator) guard(op string, err *error) {
	recovered := recover()
	if recovered == nil {
		return
	}
	o.logger.Error("combat operation panicked",
		zap.String("operation", op),
		zap.Any("panic", recovered),
		zap.ByteString("stack", debug.Stack()),
	)
	*err = errors.Internalf("%s failed unexpectedly: %v", op, recovered)
}

// load reads the campaign state. The caller must hold the campaign lock.
func (o *orchestrator) load(ctx context.Context, campaignID string) (*entities.CampaignState, error) {
	if campaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}
	out, err := o.states.Get(ctx, &campaignstate.GetInput{CampaignID: campaignID})
	if err != nil {
		return nil, err
	}
	return out.State, nil
}

// persist writes the state back. Dice may have taken a while to arrive, so
// the write gets its own deadline and survives a caller that gave up after
// the rolls were in.
func (o *orchestrator) persist(ctx context.Context, state *entities.CampaignState) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.settings.PersistTimeout)
	defer cancel()

	if _, err := o.states.Update(ctx, &campaignstate.UpdateInput{State: state}); err != nil {
		return errors.Wrapf(err, "failed to persist campaign %s", state.CampaignID)
	}
	return nil
}

// mutate runs fn on a working copy of the campaign's active encounter while
// holding the campaign lock, then persists the copy. Stored state is left
// untouched when fn fails.
func (o *orchestrator) mutate(ctx context.Context, campaignID string, fn func(enc *entities.Encounter) error) (*entities.Encounter, error) {
	unlock := o.locks.Lock(campaignID)
	defer unlock()

	state, err := o.load(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !state.Encounter.IsActive() {
		return nil, errors.InvalidStatef("no active combat in campaign %s", campaignID)
	}

	if err := fn(state.Encounter); err != nil {
		return nil, err
	}

	if err := o.persist(ctx, state); err != nil {
		return nil, err
	}
	return state.Encounter, nil
}

func requireInitiative(enc *entities.Encounter) error {
	if len(enc.InitiativeOrder) == 0 {
		return errors.InvalidState("initiative has not been determined")
	}
	return nil
}

// find resolves a combatant reference, optionally restricted to one side
func find(enc *entities.Encounter, ref string, side entities.Side) (*entities.Combatant, error) {
	if ref == "" {
		return nil, errors.InvalidArgument("combatant reference is required")
	}
	c, ok := enc.Find(ref)
	if !ok {
		return nil, errors.NotFoundf("combatant %q not found", ref)
	}
	if side != "" && c.Side != side {
		return nil, errors.InvalidArgumentf("%s is not on the %s side", c.Name, side)
	}
	return c, nil
}

func requireStanding(c *entities.Combatant) error {
	if c.IsDefeated() {
		return errors.InvalidStatef("%s is defeated and cannot act", c.Name)
	}
	return nil
}

// roll requests windowCount windows of count d sides for actor and waits
// for all of them. Windows are manual when actor is human controlled.
// modifier is shown to the roller; results come back as dice totals.
func (o *orchestrator) roll(ctx context.Context, campaignID string, actor *entities.Combatant, purpose string, count, sides, modifier, windowCount int) ([]entities.RollResult, error) {
	in := &dice.RollInput{
		CampaignID:  campaignID,
		Purpose:     purpose,
		DieType:     sides,
		DiceCount:   count,
		WindowCount: windowCount,
		Modifier:    modifier,
		Timeout:     o.settings.RollTimeout,
	}
	if actor != nil && actor.IsHuman() {
		in.Manual = true
		in.PlayerID = actor.PlayerID
	}

	out, err := o.dice.Roll(ctx, in)
	if err != nil {
		return nil, errors.Wrapf(err, "%s roll failed", purpose)
	}
	return out.Results, nil
}

// rollOne is roll with a single window
func (o *orchestrator) rollOne(ctx context.Context, campaignID string, actor *entities.Combatant, purpose string, count, sides, modifier int) (entities.RollResult, error) {
	results, err := o.roll(ctx, campaignID, actor, purpose, count, sides, modifier, 1)
	if err != nil {
		return entities.RollResult{}, err
	}
	return results[0], nil
}

// record appends the log entry for a resolved action and advances the turn
func (o *orchestrator) record(enc *entities.Encounter, entry entities.LogEntry) {
	entry.Round = enc.Round
	entry.At = o.clock.Now()
	enc.AppendLog(entry)
	enc.AdvanceTurn()
}

func purposeFor(kind string, c *entities.Combatant) string {
	return fmt.Sprintf("%s:%s", kind, c.ID)
}
