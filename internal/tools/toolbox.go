package tools

import (
	"context"

	"go.uber.org/zap"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/combat"
)

// Config holds the dependencies for the toolbox
type Config struct {
	Combat combat.Service
	Logger *zap.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Combat == nil {
		vb.RequiredField("Combat")
	}
	return vb.Build()
}

// Toolbox adapts the combat orchestrator to tool calls
type Toolbox struct {
	combat combat.Service
	logger *zap.Logger
}

// NewToolbox creates a toolbox over the combat orchestrator
func NewToolbox(cfg *Config) (*Toolbox, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	t := &Toolbox{combat: cfg.Combat, logger: cfg.Logger}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t, nil
}

// fail logs an unexpected failure and converts err to a Result
func fail[T any](t *Toolbox, tool string, err error) Result[T] {
	switch errors.GetCode(err) {
	case errors.CodeInternal, errors.CodeUnavailable:
		t.logger.Error("tool call failed", zap.String("tool", tool), zap.Error(err))
	default:
		t.logger.Debug("tool call rejected", zap.String("tool", tool), zap.Error(err))
	}
	return Fail[T](err)
}

// InitiateCombat starts a combat
func (t *Toolbox) InitiateCombat(ctx context.Context, args InitiateCombatArgs) Result[InitiateCombatData] {
	input, err := args.toInput()
	if err != nil {
		return fail[InitiateCombatData](t, NameInitiateCombat, err)
	}
	out, err := t.combat.InitiateCombat(ctx, input)
	if err != nil {
		return fail[InitiateCombatData](t, NameInitiateCombat, err)
	}
	return OK(&InitiateCombatData{Encounter: newEncounterData(out.Encounter), Message: out.Message})
}

// DetermineInitiative rolls initiative
func (t *Toolbox) DetermineInitiative(ctx context.Context, args DetermineInitiativeArgs) Result[InitiativeData] {
	out, err := t.combat.DetermineInitiative(ctx, &combat.DetermineInitiativeInput{
		CampaignID: args.CampaignID,
		Combatants: args.Combatants,
	})
	if err != nil {
		return fail[InitiativeData](t, NameDetermineInitiative, err)
	}
	return OK(newInitiativeData(out))
}

// PlayerWeaponAttack resolves a party member's weapon attack
func (t *Toolbox) PlayerWeaponAttack(ctx context.Context, args WeaponAttackArgs) Result[AttackData] {
	out, err := t.combat.PlayerWeaponAttack(ctx, args.toInput())
	if err != nil {
		return fail[AttackData](t, NamePlayerWeaponAttack, err)
	}
	return OK(newAttackData(out))
}

// MonsterWeaponAttack resolves an enemy's weapon attack
func (t *Toolbox) MonsterWeaponAttack(ctx context.Context, args WeaponAttackArgs) Result[AttackData] {
	out, err := t.combat.MonsterWeaponAttack(ctx, args.toInput())
	if err != nil {
		return fail[AttackData](t, NameMonsterWeaponAttack, err)
	}
	return OK(newAttackData(out))
}

// PlayerSpellAttack resolves a damaging spell
func (t *Toolbox) PlayerSpellAttack(ctx context.Context, args SpellAttackArgs) Result[SpellData] {
	input, err := args.toInput()
	if err != nil {
		return fail[SpellData](t, NamePlayerSpellAttack, err)
	}
	out, err := t.combat.PlayerSpellAttack(ctx, input)
	if err != nil {
		return fail[SpellData](t, NamePlayerSpellAttack, err)
	}
	return OK(newSpellData(out))
}

// SavingThrow resolves a saving throw
func (t *Toolbox) SavingThrow(ctx context.Context, args SavingThrowArgs) Result[SavingThrowData] {
	out, err := t.combat.SavingThrow(ctx, args.toInput())
	if err != nil {
		return fail[SavingThrowData](t, NameSavingThrow, err)
	}
	return OK(newSavingThrowData(out))
}

// SpecialAbility resolves a damaging or healing ability
func (t *Toolbox) SpecialAbility(ctx context.Context, args SpecialAbilityArgs) Result[AbilityData] {
	input, err := args.toInput()
	if err != nil {
		return fail[AbilityData](t, NameSpecialAbility, err)
	}
	out, err := t.combat.SpecialAbility(ctx, input)
	if err != nil {
		return fail[AbilityData](t, NameSpecialAbility, err)
	}
	return OK(newAbilityData(out))
}

// EndCombat ends the combat and pays out the reward
func (t *Toolbox) EndCombat(ctx context.Context, args EndCombatArgs) Result[EndCombatData] {
	out, err := t.combat.EndCombat(ctx, &combat.EndCombatInput{
		CampaignID: args.CampaignID,
		Victor:     entities.Victor(args.Victor),
		GoldReward: args.GoldReward,
		Notes:      args.Notes,
	})
	if err != nil {
		return fail[EndCombatData](t, NameEndCombat, err)
	}
	return OK(newEndCombatData(out))
}

// GetCombatState reads the current combat
func (t *Toolbox) GetCombatState(ctx context.Context, args GetCombatStateArgs) Result[CombatStateData] {
	out, err := t.combat.GetCombatState(ctx, &combat.GetCombatStateInput{CampaignID: args.CampaignID})
	if err != nil {
		return fail[CombatStateData](t, NameGetCombatState, err)
	}
	return OK(newCombatStateData(out))
}

// GetRollHistory reads the campaign's recent rolls
func (t *Toolbox) GetRollHistory(ctx context.Context, args GetRollHistoryArgs) Result[RollHistoryData] {
	out, err := t.combat.GetRollHistory(ctx, &combat.GetRollHistoryInput{
		CampaignID: args.CampaignID,
		Limit:      args.Limit,
	})
	if err != nil {
		return fail[RollHistoryData](t, NameGetRollHistory, err)
	}
	return OK(newRollHistoryData(out.Rolls))
}
