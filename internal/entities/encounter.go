// Package entities holds the passive data of a combat: encounters,
// combatants, the combat log and the campaign snapshot that wraps them.
package entities

import (
	"fmt"
	"strings"
	"time"
)

// EncounterStatus is the lifecycle state of an encounter
type EncounterStatus string

// Encounter statuses. Ended is terminal.
const (
	EncounterStatusActive EncounterStatus = "active"
	EncounterStatusEnded  EncounterStatus = "ended"
)

// Victor is the declared outcome of a combat
type Victor string

// Victors
const (
	VictorParty   Victor = "Party"
	VictorEnemies Victor = "Enemies"
	VictorDraw    Victor = "Draw"
)

// ParseVictor matches a victor name case-insensitively
func ParseVictor(s string) (Victor, error) {
	for _, v := range []Victor{VictorParty, VictorEnemies, VictorDraw} {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown victor %q", s)
}

// Encounter is one combat within a campaign
type Encounter struct {
	ID         string          `json:"id"`
	CampaignID string          `json:"campaign_id"`
	Status     EncounterStatus `json:"status"`
	Round      int             `json:"round"`
	Terrain    string          `json:"terrain,omitempty"`

	Party   []*Combatant `json:"party"`
	Enemies []*Combatant `json:"enemies"`

	// InitiativeOrder holds every combatant id exactly once once set
	InitiativeOrder []string       `json:"initiative_order,omitempty"`
	InitiativeRolls map[string]int `json:"initiative_rolls,omitempty"`
	// CurrentTurnIndex counts resolved actions and is never wrapped
	CurrentTurnIndex int `json:"current_turn_index"`

	CombatLog []LogEntry `json:"combat_log"`

	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// NewEncounter validates the roster and returns an active encounter
func NewEncounter(id, campaignID, terrain string, party, enemies []*Combatant, now time.Time) (*Encounter, error) {
	if len(party) == 0 {
		return nil, fmt.Errorf("encounter needs at least one party member")
	}
	if len(enemies) == 0 {
		return nil, fmt.Errorf("encounter needs at least one enemy")
	}

	seen := make(map[string]struct{}, len(party)+len(enemies))
	check := func(c *Combatant, side Side) error {
		if c == nil || c.ID == "" {
			return fmt.Errorf("combatant id is required")
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate combatant id %q", c.ID)
		}
		if c.MaxHP <= 0 {
			return fmt.Errorf("combatant %q needs positive max hp", c.ID)
		}
		seen[c.ID] = struct{}{}
		c.Side = side
		if c.CurrentHP > c.MaxHP {
			c.CurrentHP = c.MaxHP
		}
		if c.CurrentHP < 0 {
			c.CurrentHP = 0
		}
		return nil
	}
	for _, c := range party {
		if err := check(c, SideParty); err != nil {
			return nil, err
		}
	}
	for _, c := range enemies {
		if err := check(c, SideEnemy); err != nil {
			return nil, err
		}
	}

	return &Encounter{
		ID:         id,
		CampaignID: campaignID,
		Status:     EncounterStatusActive,
		Round:      1,
		Terrain:    terrain,
		Party:      party,
		Enemies:    enemies,
		StartedAt:  now,
	}, nil
}

// IsActive reports whether actions may still be resolved
func (e *Encounter) IsActive() bool {
	return e != nil && e.Status == EncounterStatusActive
}

// Combatants returns party members followed by enemies
func (e *Encounter) Combatants() []*Combatant {
	all := make([]*Combatant, 0, len(e.Party)+len(e.Enemies))
	all = append(all, e.Party...)
	return append(all, e.Enemies...)
}

// Find resolves a combatant by id, then by case-insensitive name
func (e *Encounter) Find(ref string) (*Combatant, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}
	all := e.Combatants()
	for _, c := range all {
		if c.ID == ref {
			return c, true
		}
	}
	for _, c := range all {
		if strings.EqualFold(c.Name, ref) {
			return c, true
		}
	}
	return nil, false
}

// SetInitiative installs the turn order. Every combatant must appear
// exactly once.
func (e *Encounter) SetInitiative(order []string, rolls map[string]int) error {
	all := e.Combatants()
	if len(order) != len(all) {
		return fmt.Errorf("initiative order has %d entries, want %d", len(order), len(all))
	}
	known := make(map[string]bool, len(all))
	for _, c := range all {
		known[c.ID] = false
	}
	for _, id := range order {
		placed, ok := known[id]
		if !ok {
			return fmt.Errorf("initiative order references unknown combatant %q", id)
		}
		if placed {
			return fmt.Errorf("combatant %q appears twice in initiative order", id)
		}
		known[id] = true
	}

	e.InitiativeOrder = append([]string(nil), order...)
	e.InitiativeRolls = make(map[string]int, len(rolls))
	for k, v := range rolls {
		e.InitiativeRolls[k] = v
	}
	e.CurrentTurnIndex = 0
	e.Round = 1
	return nil
}

// ActiveCombatant returns whose turn it is, or nil before initiative
func (e *Encounter) ActiveCombatant() *Combatant {
	if len(e.InitiativeOrder) == 0 {
		return nil
	}
	c, _ := e.Find(e.InitiativeOrder[e.CurrentTurnIndex%len(e.InitiativeOrder)])
	return c
}

// AdvanceTurn moves past the current action. The index only grows; the
// round is derived from it.
func (e *Encounter) AdvanceTurn() {
	e.CurrentTurnIndex++
	if n := len(e.InitiativeOrder); n > 0 {
		e.Round = e.CurrentTurnIndex/n + 1
	}
}

// AppendLog stores a copy of entry at the end of the combat log
func (e *Encounter) AppendLog(entry LogEntry) {
	e.CombatLog = append(e.CombatLog, entry.clone())
}

// Log returns copies of the combat log entries
func (e *Encounter) Log() []LogEntry {
	out := make([]LogEntry, len(e.CombatLog))
	for i, entry := range e.CombatLog {
		out[i] = entry.clone()
	}
	return out
}

// CanEnd checks the declared victor against hit points
func (e *Encounter) CanEnd(victor Victor) error {
	switch victor {
	case VictorParty:
		for _, c := range e.Enemies {
			if !c.IsDefeated() {
				return fmt.Errorf("enemy %s still has %d hp", c.Name, c.CurrentHP)
			}
		}
	case VictorEnemies:
		for _, c := range e.Party {
			if !c.IsDefeated() {
				return fmt.Errorf("party member %s still has %d hp", c.Name, c.CurrentHP)
			}
		}
	case VictorDraw:
	default:
		return fmt.Errorf("unknown victor %q", victor)
	}
	return nil
}

// End moves the encounter to its terminal state
func (e *Encounter) End(now time.Time) {
	e.Status = EncounterStatusEnded
	e.EndedAt = &now
}

// Clone returns a deep copy
func (e *Encounter) Clone() *Encounter {
	if e == nil {
		return nil
	}
	out := *e
	out.Party = cloneCombatants(e.Party)
	out.Enemies = cloneCombatants(e.Enemies)
	if e.InitiativeOrder != nil {
		out.InitiativeOrder = append([]string(nil), e.InitiativeOrder...)
	}
	if e.InitiativeRolls != nil {
		out.InitiativeRolls = make(map[string]int, len(e.InitiativeRolls))
		for k, v := range e.InitiativeRolls {
			out.InitiativeRolls[k] = v
		}
	}
	if e.CombatLog != nil {
		out.CombatLog = e.Log()
	}
	if e.EndedAt != nil {
		t := *e.EndedAt
		out.EndedAt = &t
	}
	return &out
}

func cloneCombatants(in []*Combatant) []*Combatant {
	if in == nil {
		return nil
	}
	out := make([]*Combatant, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
