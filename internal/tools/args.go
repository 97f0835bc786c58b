package tools

import (
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/combat"
)

// WeaponArgs describes a combatant's weapon
type WeaponArgs struct {
	Name      string `json:"name" jsonschema:"weapon name"`
	DiceCount int    `json:"dice_count" jsonschema:"number of damage dice"`
	DieType   int    `json:"die_type" jsonschema:"sides of each damage die"`
	Bonus     int    `json:"bonus,omitempty" jsonschema:"flat damage bonus"`
}

// CombatantArgs describes one participant of a new combat. Party members
// may carry only id and name; the rest is read from the character ledger.
type CombatantArgs struct {
	ID                   string         `json:"id" jsonschema:"unique combatant id"`
	Name                 string         `json:"name,omitempty" jsonschema:"display name"`
	PlayerID             string         `json:"player_id,omitempty" jsonschema:"player who rolls for a human-controlled combatant"`
	Controller           string         `json:"controller,omitempty" jsonschema:"human or npc; defaults to human with a player id, npc otherwise"`
	MaxHP                int            `json:"max_hp,omitempty" jsonschema:"maximum hit points"`
	CurrentHP            int            `json:"current_hp,omitempty" jsonschema:"current hit points; defaults to max_hp"`
	ArmorClass           int            `json:"armor_class,omitempty" jsonschema:"armor class"`
	AttackModifier       int            `json:"attack_modifier,omitempty" jsonschema:"attack roll modifier"`
	InitiativeModifier   int            `json:"initiative_modifier,omitempty" jsonschema:"initiative modifier"`
	SpellcastingModifier int            `json:"spellcasting_modifier,omitempty" jsonschema:"spellcasting attribute modifier"`
	SaveModifiers        map[string]int `json:"save_modifiers,omitempty" jsonschema:"saving throw modifiers keyed by attribute"`
	Mana                 int            `json:"mana,omitempty" jsonschema:"current mana"`
	MaxMana              int            `json:"max_mana,omitempty" jsonschema:"maximum mana"`
	Weapon               *WeaponArgs    `json:"weapon,omitempty" jsonschema:"equipped weapon"`
	Gold                 int            `json:"gold,omitempty" jsonschema:"gold carried"`
}

func (a CombatantArgs) toCombatant() (*entities.Combatant, error) {
	c := &entities.Combatant{
		ID:                   a.ID,
		Name:                 a.Name,
		PlayerID:             a.PlayerID,
		MaxHP:                a.MaxHP,
		CurrentHP:            a.CurrentHP,
		ArmorClass:           a.ArmorClass,
		AttackModifier:       a.AttackModifier,
		InitiativeModifier:   a.InitiativeModifier,
		SpellcastingModifier: a.SpellcastingModifier,
		Mana:                 a.Mana,
		MaxMana:              a.MaxMana,
		Gold:                 a.Gold,
	}
	if c.Name == "" {
		c.Name = c.ID
	}
	if c.CurrentHP == 0 {
		c.CurrentHP = c.MaxHP
	}

	switch entities.Controller(a.Controller) {
	case entities.ControllerHuman, entities.ControllerNPC:
		c.Controller = entities.Controller(a.Controller)
	case "":
		c.Controller = entities.ControllerNPC
		if a.PlayerID != "" {
			c.Controller = entities.ControllerHuman
		}
	default:
		return nil, errors.InvalidArgumentf("combatant %s: unknown controller %q", a.ID, a.Controller)
	}

	if len(a.SaveModifiers) > 0 {
		c.SaveModifiers = make(map[entities.Attribute]int, len(a.SaveModifiers))
		for name, mod := range a.SaveModifiers {
			attr, err := entities.ParseAttribute(name)
			if err != nil {
				return nil, errors.InvalidArgumentf("combatant %s: %v", a.ID, err)
			}
			c.SaveModifiers[attr] = mod
		}
	}
	if a.Weapon != nil {
		c.Weapon = &entities.Weapon{
			Name:      a.Weapon.Name,
			DiceCount: a.Weapon.DiceCount,
			DieType:   a.Weapon.DieType,
			Bonus:     a.Weapon.Bonus,
		}
	}
	return c, nil
}

func toCombatants(in []CombatantArgs) ([]*entities.Combatant, error) {
	out := make([]*entities.Combatant, 0, len(in))
	for _, a := range in {
		c, err := a.toCombatant()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// InitiateCombatArgs starts a combat in a campaign
type InitiateCombatArgs struct {
	CampaignID string          `json:"campaign_id" jsonschema:"campaign to start the combat in"`
	Terrain    string          `json:"terrain,omitempty" jsonschema:"short description of the battlefield"`
	Party      []CombatantArgs `json:"party" jsonschema:"party members"`
	Enemies    []CombatantArgs `json:"enemies" jsonschema:"enemies"`
}

func (a InitiateCombatArgs) toInput() (*combat.InitiateCombatInput, error) {
	party, err := toCombatants(a.Party)
	if err != nil {
		return nil, err
	}
	enemies, err := toCombatants(a.Enemies)
	if err != nil {
		return nil, err
	}
	return &combat.InitiateCombatInput{
		CampaignID: a.CampaignID,
		Terrain:    a.Terrain,
		Party:      party,
		Enemies:    enemies,
	}, nil
}

// DetermineInitiativeArgs rolls initiative for the current combat
type DetermineInitiativeArgs struct {
	CampaignID string   `json:"campaign_id" jsonschema:"campaign in combat"`
	Combatants []string `json:"combatants,omitempty" jsonschema:"combatant ids or names; defaults to everyone"`
}

// WeaponAttackArgs resolves a weapon attack
type WeaponAttackArgs struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign in combat"`
	Attacker   string `json:"attacker" jsonschema:"attacker id or name"`
	Target     string `json:"target" jsonschema:"target id or name"`
	Advantage  bool   `json:"advantage,omitempty" jsonschema:"roll two d20 and keep the highest"`
}

func (a WeaponAttackArgs) toInput() *combat.WeaponAttackInput {
	return &combat.WeaponAttackInput{
		CampaignID: a.CampaignID,
		Attacker:   a.Attacker,
		Target:     a.Target,
		Advantage:  a.Advantage,
	}
}

// SpellAttackArgs resolves a damaging spell
type SpellAttackArgs struct {
	CampaignID    string `json:"campaign_id" jsonschema:"campaign in combat"`
	Caster        string `json:"caster" jsonschema:"caster id or name"`
	Target        string `json:"target" jsonschema:"target id or name"`
	SpellName     string `json:"spell_name,omitempty" jsonschema:"spell name"`
	SpellKey      string `json:"spell_key,omitempty" jsonschema:"spell catalog key used to fill level, dice and save"`
	Level         *int   `json:"level,omitempty" jsonschema:"spell level 0-9"`
	DamageDice    string `json:"damage_dice,omitempty" jsonschema:"damage dice notation such as 2d6+1"`
	Magnitude     int    `json:"magnitude,omitempty" jsonschema:"flat damage added to the dice"`
	SaveAttribute string `json:"save_attribute,omitempty" jsonschema:"attribute the target saves with"`
	SaveAdvantage bool   `json:"save_advantage,omitempty" jsonschema:"target saves with advantage"`
}

func (a SpellAttackArgs) toInput() (*combat.SpellAttackInput, error) {
	input := &combat.SpellAttackInput{
		CampaignID:    a.CampaignID,
		Caster:        a.Caster,
		Target:        a.Target,
		SpellName:     a.SpellName,
		SpellKey:      a.SpellKey,
		Level:         a.Level,
		DamageDice:    a.DamageDice,
		Magnitude:     a.Magnitude,
		SaveAdvantage: a.SaveAdvantage,
	}
	if a.SaveAttribute != "" {
		attr, err := entities.ParseAttribute(a.SaveAttribute)
		if err != nil {
			return nil, errors.InvalidArgument(err.Error())
		}
		input.SaveAttribute = attr
	}
	return input, nil
}

// SavingThrowArgs resolves a saving throw
type SavingThrowArgs struct {
	CampaignID    string `json:"campaign_id" jsonschema:"campaign in combat"`
	Combatant     string `json:"combatant" jsonschema:"combatant id or name"`
	Attribute     string `json:"attribute" jsonschema:"attribute to save with"`
	DC            int    `json:"dc" jsonschema:"difficulty class"`
	Advantage     bool   `json:"advantage,omitempty" jsonschema:"roll two d20 and keep the highest"`
	DamageDice    string `json:"damage_dice,omitempty" jsonschema:"damage taken on a failed save"`
	HalfOnSuccess bool   `json:"half_on_success,omitempty" jsonschema:"take half damage on a successful save"`
	Reason        string `json:"reason,omitempty" jsonschema:"what forced the save"`
}

func (a SavingThrowArgs) toInput() *combat.SavingThrowInput {
	return &combat.SavingThrowInput{
		CampaignID:    a.CampaignID,
		Combatant:     a.Combatant,
		Attribute:     entities.Attribute(a.Attribute),
		DC:            a.DC,
		Advantage:     a.Advantage,
		DamageDice:    a.DamageDice,
		HalfOnSuccess: a.HalfOnSuccess,
		Reason:        a.Reason,
	}
}

// SpecialAbilityArgs resolves a damaging or healing ability
type SpecialAbilityArgs struct {
	CampaignID    string `json:"campaign_id" jsonschema:"campaign in combat"`
	User          string `json:"user" jsonschema:"user id or name"`
	Target        string `json:"target,omitempty" jsonschema:"target id or name; defaults to the user"`
	Ability       string `json:"ability" jsonschema:"ability name"`
	Effect        string `json:"effect" jsonschema:"damage or heal"`
	Dice          string `json:"dice,omitempty" jsonschema:"dice notation rolled for the amount"`
	Magnitude     int    `json:"magnitude,omitempty" jsonschema:"flat amount added to the dice"`
	ManaCost      int    `json:"mana_cost,omitempty" jsonschema:"mana spent by the user"`
	SaveAttribute string `json:"save_attribute,omitempty" jsonschema:"attribute a damage target saves with"`
}

func (a SpecialAbilityArgs) toInput() (*combat.SpecialAbilityInput, error) {
	input := &combat.SpecialAbilityInput{
		CampaignID: a.CampaignID,
		User:       a.User,
		Target:     a.Target,
		Ability:    a.Ability,
		Effect:     combat.AbilityEffect(a.Effect),
		Dice:       a.Dice,
		Magnitude:  a.Magnitude,
		ManaCost:   a.ManaCost,
	}
	if a.SaveAttribute != "" {
		attr, err := entities.ParseAttribute(a.SaveAttribute)
		if err != nil {
			return nil, errors.InvalidArgument(err.Error())
		}
		input.SaveAttribute = attr
	}
	return input, nil
}

// EndCombatArgs ends the current combat
type EndCombatArgs struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign in combat"`
	Victor     string `json:"victor" jsonschema:"Party, Enemies or Draw"`
	GoldReward int    `json:"gold_reward,omitempty" jsonschema:"gold split between party members"`
	Notes      string `json:"notes,omitempty" jsonschema:"notes archived with the summary"`
}

// GetCombatStateArgs reads the current combat
type GetCombatStateArgs struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign to read"`
}

// GetRollHistoryArgs reads recent rolls
type GetRollHistoryArgs struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign to read"`
	Limit      int    `json:"limit,omitempty" jsonschema:"most recent rolls to return; 0 returns all"`
}
