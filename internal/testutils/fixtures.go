package testutils

import (
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
)

// Fixture combatant ids
const (
	HeroID    = "char-aria"
	GoblinID  = "goblin-1"
	OgreID    = "ogre-1"
	ClericID  = "char-bram"
	PlayerOne = "player-1"
	PlayerTwo = "player-2"
)

// NewHero returns a human controlled fighter with a 1d8+2 longsword
func NewHero() *entities.Combatant {
	return &entities.Combatant{
		ID:                   HeroID,
		Name:                 "Aria",
		Controller:           entities.ControllerHuman,
		PlayerID:             PlayerOne,
		MaxHP:                24,
		CurrentHP:            24,
		ArmorClass:           16,
		AttackModifier:       5,
		InitiativeModifier:   2,
		SpellcastingModifier: 1,
		SaveModifiers: map[entities.Attribute]int{
			entities.AttributeStrength:  5,
			entities.AttributeDexterity: 2,
		},
		Mana:    2,
		MaxMana: 2,
		Weapon:  &entities.Weapon{Name: "Longsword", DiceCount: 1, DieType: 8, Bonus: 2},
		Gold:    10,
	}
}

// NewCleric returns a human controlled caster
func NewCleric() *entities.Combatant {
	return &entities.Combatant{
		ID:                   ClericID,
		Name:                 "Bram",
		Controller:           entities.ControllerHuman,
		PlayerID:             PlayerTwo,
		MaxHP:                18,
		CurrentHP:            18,
		ArmorClass:           14,
		AttackModifier:       2,
		InitiativeModifier:   0,
		SpellcastingModifier: 3,
		SaveModifiers: map[entities.Attribute]int{
			entities.AttributeWisdom: 5,
		},
		Mana:    6,
		MaxMana: 6,
		Weapon:  &entities.Weapon{Name: "Mace", DiceCount: 1, DieType: 6},
	}
}

// NewGoblin returns an NPC enemy with AC 12
func NewGoblin() *entities.Combatant {
	return &entities.Combatant{
		ID:                 GoblinID,
		Name:               "Goblin",
		Controller:         entities.ControllerNPC,
		MaxHP:              7,
		CurrentHP:          7,
		ArmorClass:         12,
		AttackModifier:     4,
		InitiativeModifier: 2,
		SaveModifiers: map[entities.Attribute]int{
			entities.AttributeDexterity: 2,
		},
		Weapon: &entities.Weapon{Name: "Scimitar", DiceCount: 1, DieType: 6, Bonus: 2},
	}
}

// NewOgre returns a sturdier NPC enemy
func NewOgre() *entities.Combatant {
	return &entities.Combatant{
		ID:                 OgreID,
		Name:               "Ogre",
		Controller:         entities.ControllerNPC,
		MaxHP:              59,
		CurrentHP:          59,
		ArmorClass:         11,
		AttackModifier:     6,
		InitiativeModifier: -1,
		Weapon:             &entities.Weapon{Name: "Greatclub", DiceCount: 2, DieType: 8, Bonus: 4},
	}
}
