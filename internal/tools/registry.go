package tools

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
)

// Tool names
const (
	NameInitiateCombat      = "initiate_combat"
	NameDetermineInitiative = "determine_initiative"
	NamePlayerWeaponAttack  = "player_weapon_attack"
	NameMonsterWeaponAttack = "monster_weapon_attack"
	NamePlayerSpellAttack   = "player_spell_attack"
	NameSavingThrow         = "saving_throw"
	NameSpecialAbility      = "special_ability"
	NameEndCombat           = "end_combat"
	NameGetCombatState      = "get_combat_state"
	NameGetRollHistory      = "get_roll_history"
)

// Definition names and describes a tool
type Definition struct {
	Name        string
	Description string
}

// Definitions lists every tool in registration order
var Definitions = []Definition{
	{NameInitiateCombat, "Starts a combat between the party and a group of enemies"},
	{NameDetermineInitiative, "Rolls initiative for every combatant and sets the turn order"},
	{NamePlayerWeaponAttack, "Resolves a party member's weapon attack against an enemy"},
	{NameMonsterWeaponAttack, "Resolves an enemy's weapon attack against a party member"},
	{NamePlayerSpellAttack, "Casts a damaging spell at an enemy; the target saves for half"},
	{NameSavingThrow, "Rolls a saving throw with optional damage on failure"},
	{NameSpecialAbility, "Uses a damaging or healing special ability"},
	{NameEndCombat, "Ends the combat, checks the victor and splits the gold reward"},
	{NameGetCombatState, "Returns the current encounter and whose turn it is"},
	{NameGetRollHistory, "Returns the campaign's most recent dice rolls"},
}

// Describe returns the description of a tool
func Describe(name string) string {
	for _, d := range Definitions {
		if d.Name == name {
			return d.Description
		}
	}
	return ""
}

type dispatcher func(ctx context.Context, t *Toolbox, raw json.RawMessage) Reply

var dispatch = map[string]dispatcher{
	NameInitiateCombat:      bind((*Toolbox).InitiateCombat),
	NameDetermineInitiative: bind((*Toolbox).DetermineInitiative),
	NamePlayerWeaponAttack:  bind((*Toolbox).PlayerWeaponAttack),
	NameMonsterWeaponAttack: bind((*Toolbox).MonsterWeaponAttack),
	NamePlayerSpellAttack:   bind((*Toolbox).PlayerSpellAttack),
	NameSavingThrow:         bind((*Toolbox).SavingThrow),
	NameSpecialAbility:      bind((*Toolbox).SpecialAbility),
	NameEndCombat:           bind((*Toolbox).EndCombat),
	NameGetCombatState:      bind((*Toolbox).GetCombatState),
	NameGetRollHistory:      bind((*Toolbox).GetRollHistory),
}

// bind decodes raw JSON arguments strictly before calling fn
func bind[A, D any](fn func(*Toolbox, context.Context, A) Result[D]) dispatcher {
	return func(ctx context.Context, t *Toolbox, raw json.RawMessage) Reply {
		var args A
		if len(bytes.TrimSpace(raw)) > 0 {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&args); err != nil {
				return Fail[D](errors.InvalidArgumentf("invalid arguments: %v", err))
			}
		}
		return fn(t, ctx, args)
	}
}

// Invoke runs the named tool with JSON arguments. Unknown tools and
// undecodable arguments fail with INVALID_ARGUMENT.
func (t *Toolbox) Invoke(ctx context.Context, name string, args json.RawMessage) Reply {
	d, ok := dispatch[name]
	if !ok {
		return Fail[struct{}](errors.InvalidArgumentf("unknown tool %q", name))
	}
	return d(ctx, t, args)
}
