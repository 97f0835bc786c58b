package entities

import "time"

// ActionKind classifies a combat log entry
type ActionKind string

// Action kinds
const (
	ActionCombatStart    ActionKind = "combat_start"
	ActionInitiative     ActionKind = "initiative"
	ActionAttack         ActionKind = "attack"
	ActionSpell          ActionKind = "spell"
	ActionSavingThrow    ActionKind = "saving_throw"
	ActionSpecialAbility ActionKind = "special_ability"
)

// LogEntry records one resolved action. Entries are never modified once
// appended to an encounter.
type LogEntry struct {
	Round       int        `json:"round"`
	Kind        ActionKind `json:"kind"`
	ActorID     string     `json:"actor_id,omitempty"`
	ActorName   string     `json:"actor_name,omitempty"`
	TargetID    string     `json:"target_id,omitempty"`
	TargetName  string     `json:"target_name,omitempty"`
	Description string     `json:"description"`
	RollTotal   *int       `json:"roll_total,omitempty"`
	Critical    bool       `json:"critical,omitempty"`
	Damage      int        `json:"damage,omitempty"`
	At          time.Time  `json:"at"`
}

func (l LogEntry) clone() LogEntry {
	if l.RollTotal != nil {
		v := *l.RollTotal
		l.RollTotal = &v
	}
	return l
}
