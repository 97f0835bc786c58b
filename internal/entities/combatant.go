package entities

import (
	"fmt"
	"strings"
)

// Side identifies which team a combatant fights for
type Side string

// Sides
const (
	SideParty Side = "party"
	SideEnemy Side = "enemy"
)

// Controller identifies who supplies a combatant's dice
type Controller string

// Controllers
const (
	ControllerHuman Controller = "human"
	ControllerNPC   Controller = "npc"
)

// Attribute names one of the six ability scores
type Attribute string

// Attributes
const (
	AttributeStrength     Attribute = "strength"
	AttributeDexterity    Attribute = "dexterity"
	AttributeConstitution Attribute = "constitution"
	AttributeIntelligence Attribute = "intelligence"
	AttributeWisdom       Attribute = "wisdom"
	AttributeCharisma     Attribute = "charisma"
)

var attributeAliases = map[string]Attribute{
	"str": AttributeStrength,
	"dex": AttributeDexterity,
	"con": AttributeConstitution,
	"int": AttributeIntelligence,
	"wis": AttributeWisdom,
	"cha": AttributeCharisma,
}

// ParseAttribute accepts full names and three letter abbreviations in any case
func ParseAttribute(s string) (Attribute, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if attr, ok := attributeAliases[key]; ok {
		return attr, nil
	}
	for _, attr := range attributeAliases {
		if string(attr) == key {
			return attr, nil
		}
	}
	return "", fmt.Errorf("unknown attribute %q", s)
}

// Weapon describes the damage dice of an attack
type Weapon struct {
	Name      string `json:"name"`
	DiceCount int    `json:"dice_count"`
	DieType   int    `json:"die_type"`
	Bonus     int    `json:"bonus"`
}

// Notation renders the weapon damage as dice notation, e.g. 1d8+2
func (w Weapon) Notation() string {
	switch {
	case w.Bonus > 0:
		return fmt.Sprintf("%dd%d+%d", w.DiceCount, w.DieType, w.Bonus)
	case w.Bonus < 0:
		return fmt.Sprintf("%dd%d%d", w.DiceCount, w.DieType, w.Bonus)
	default:
		return fmt.Sprintf("%dd%d", w.DiceCount, w.DieType)
	}
}

// Unarmed is used when a combatant has no weapon
var Unarmed = Weapon{Name: "unarmed strike", DiceCount: 1, DieType: 4}

// Combatant is a participant in an encounter, either a party member backed
// by a character record or an enemy that only exists for the fight.
type Combatant struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Side       Side       `json:"side"`
	Controller Controller `json:"controller"`
	// PlayerID routes manual roll requests; empty for NPCs
	PlayerID string `json:"player_id,omitempty"`

	MaxHP      int `json:"max_hp"`
	CurrentHP  int `json:"current_hp"`
	ArmorClass int `json:"armor_class"`

	AttackModifier       int               `json:"attack_modifier"`
	InitiativeModifier   int               `json:"initiative_modifier"`
	SpellcastingModifier int               `json:"spellcasting_modifier"`
	SaveModifiers        map[Attribute]int `json:"save_modifiers,omitempty"`

	Mana    int `json:"mana"`
	MaxMana int `json:"max_mana"`

	Weapon *Weapon `json:"weapon,omitempty"`
	Gold   int     `json:"gold"`
}

// GetID implements core.Entity
func (c *Combatant) GetID() string {
	return c.ID
}

// GetType implements core.Entity
func (c *Combatant) GetType() string {
	return string(c.Side)
}

// IsHuman reports whether the combatant's dice come from a person
func (c *Combatant) IsHuman() bool {
	return c.Controller == ControllerHuman
}

// IsDefeated reports whether the combatant is at zero hit points
func (c *Combatant) IsDefeated() bool {
	return c.CurrentHP <= 0
}

// ApplyDamage lowers hit points, never below zero, and returns the damage
// actually taken.
func (c *Combatant) ApplyDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > c.CurrentHP {
		amount = c.CurrentHP
	}
	c.CurrentHP -= amount
	return amount
}

// Heal raises hit points, never above MaxHP, and returns the amount healed
func (c *Combatant) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	if room := c.MaxHP - c.CurrentHP; amount > room {
		amount = room
	}
	c.CurrentHP += amount
	return amount
}

// SpendMana deducts cost if the pool covers it
func (c *Combatant) SpendMana(cost int) bool {
	if cost > c.Mana {
		return false
	}
	c.Mana -= cost
	return true
}

// SaveModifier returns the saving throw modifier for attr
func (c *Combatant) SaveModifier(attr Attribute) int {
	return c.SaveModifiers[attr]
}

// EquippedWeapon returns the combatant's weapon or an unarmed strike
func (c *Combatant) EquippedWeapon() Weapon {
	if c.Weapon == nil {
		return Unarmed
	}
	return *c.Weapon
}

// Clone returns a deep copy
func (c *Combatant) Clone() *Combatant {
	if c == nil {
		return nil
	}
	out := *c
	if c.SaveModifiers != nil {
		out.SaveModifiers = make(map[Attribute]int, len(c.SaveModifiers))
		for k, v := range c.SaveModifiers {
			out.SaveModifiers[k] = v
		}
	}
	if c.Weapon != nil {
		w := *c.Weapon
		out.Weapon = &w
	}
	return &out
}
