// Package rules holds the combat arithmetic. Every function is pure: dice
// values come in as arguments and nothing here rolls, logs or stores.
package rules

import (
	"sort"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
)

const (
	// D20 is the die used for attacks, saves and initiative
	D20 = 20
	// NaturalTwenty always hits and is a critical
	NaturalTwenty = 20
	// SpellSaveBase is added to the caster's modifier to get the save DC
	SpellSaveBase = 8
)

// ValidDieTypes are the die sizes a roll window may request
var ValidDieTypes = []int{4, 6, 8, 10, 12, 20, 100}

// IsValidDie reports whether sides is a supported die size
func IsValidDie(sides int) bool {
	for _, d := range ValidDieTypes {
		if d == sides {
			return true
		}
	}
	return false
}

// AttackOutcome is the result of an attack roll against armor class
type AttackOutcome struct {
	Roll     int
	Modifier int
	Total    int
	Hit      bool
	Critical bool
}

// ResolveAttack compares a d20 attack roll against armor class. A natural
// 20 hits and crits regardless of the total.
func ResolveAttack(attackModifier, targetAC, roll int) AttackOutcome {
	return ResolveAttackWithDie(attackModifier, targetAC, roll, D20)
}

// ResolveAttackWithDie is ResolveAttack for a die other than a d20. The
// maximum face plays the role of the natural 20.
func ResolveAttackWithDie(attackModifier, targetAC, roll, sides int) AttackOutcome {
	total := roll + attackModifier
	critical := roll == sides
	return AttackOutcome{
		Roll:     roll,
		Modifier: attackModifier,
		Total:    total,
		Hit:      critical || total >= targetAC,
		Critical: critical,
	}
}

// WeaponDamage combines rolled damage dice with flat bonuses. A critical
// doubles the dice only.
func WeaponDamage(diceTotal int, critical bool, attackModifier, weaponBonus int) int {
	if critical {
		diceTotal *= 2
	}
	damage := diceTotal + attackModifier + weaponBonus
	if damage < 0 {
		return 0
	}
	return damage
}

// SaveOutcome is the result of a saving throw
type SaveOutcome struct {
	Rolls    []int
	Kept     int
	Modifier int
	Total    int
	DC       int
	Success  bool
}

// ResolveSavingThrow keeps the highest of rolls (two with advantage) and
// succeeds when the total meets the DC.
func ResolveSavingThrow(saveModifier, dc int, rolls ...int) SaveOutcome {
	kept := 0
	for i, r := range rolls {
		if i == 0 || r > kept {
			kept = r
		}
	}
	total := kept + saveModifier
	return SaveOutcome{
		Rolls:    append([]int(nil), rolls...),
		Kept:     kept,
		Modifier: saveModifier,
		Total:    total,
		DC:       dc,
		Success:  total >= dc,
	}
}

// SaveRollCount is how many d20 windows a saving throw needs
func SaveRollCount(hasAdvantage bool) int {
	if hasAdvantage {
		return 2
	}
	return 1
}

// RollInitiative adds the initiative modifier to a d20
func RollInitiative(modifier, roll int) int {
	return roll + modifier
}

// SpellSaveDC is the DC targets roll against for the caster's spells
func SpellSaveDC(attributeModifier int) int {
	return SpellSaveBase + attributeModifier
}

// SpellManaCost is the mana a spell of the given level costs
func SpellManaCost(level int) int {
	if level < 0 {
		level = 0
	}
	return level + 1
}

// SpellDamage totals rolled spell dice and flat magnitude. A successful
// save halves each part, rounding down.
func SpellDamage(diceTotal, magnitude int, saved bool) int {
	if saved {
		diceTotal = Halve(diceTotal)
		magnitude = Halve(magnitude)
	}
	damage := diceTotal + magnitude
	if damage < 0 {
		return 0
	}
	return damage
}

// Halve divides by two rounding toward negative infinity
func Halve(n int) int {
	if n < 0 {
		return -((-n + 1) / 2)
	}
	return n / 2
}

// AbilityModifier converts an ability score into its modifier
func AbilityModifier(score int) int {
	return Halve(score - 10)
}

// InitiativeEntry is one combatant's initiative result
type InitiativeEntry struct {
	CombatantID string
	Roll        int
	Modifier    int
	Total       int
}

// OrderByInitiative sorts entries by total, highest first. Ties keep their
// input order.
func OrderByInitiative(entries []InitiativeEntry) []InitiativeEntry {
	out := append([]InitiativeEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}

// BestOf returns the result with the highest total. Ties keep the earliest.
func BestOf(results []entities.RollResult) (entities.RollResult, bool) {
	if len(results) == 0 {
		return entities.RollResult{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Total > best.Total {
			best = r
		}
	}
	return best, true
}

// DropLowest sums values after removing the single smallest one
func DropLowest(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum, low := 0, values[0]
	for _, v := range values {
		sum += v
		if v < low {
			low = v
		}
	}
	return sum - low
}

// Sum adds dice values
func Sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
