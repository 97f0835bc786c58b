package tools

import (
	"cmp"
	"slices"
	"time"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/combat"
	dicesession "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/dice_session"
)

// CombatantData is a combatant as tools report it
type CombatantData struct {
	ID         string `json:"id" jsonschema:"combatant id"`
	Name       string `json:"name" jsonschema:"display name"`
	Side       string `json:"side" jsonschema:"party or enemy"`
	Controller string `json:"controller" jsonschema:"human or npc"`
	PlayerID   string `json:"player_id,omitempty" jsonschema:"player rolling for the combatant"`
	HP         int    `json:"hp" jsonschema:"current hit points"`
	MaxHP      int    `json:"max_hp" jsonschema:"maximum hit points"`
	ArmorClass int    `json:"armor_class" jsonschema:"armor class"`
	Mana       int    `json:"mana" jsonschema:"current mana"`
	MaxMana    int    `json:"max_mana" jsonschema:"maximum mana"`
	Weapon     string `json:"weapon" jsonschema:"weapon name and damage dice"`
	Defeated   bool   `json:"defeated" jsonschema:"whether the combatant is at zero hit points"`
}

func newCombatantData(c *entities.Combatant) CombatantData {
	w := c.EquippedWeapon()
	return CombatantData{
		ID:         c.ID,
		Name:       c.Name,
		Side:       string(c.Side),
		Controller: string(c.Controller),
		PlayerID:   c.PlayerID,
		HP:         c.CurrentHP,
		MaxHP:      c.MaxHP,
		ArmorClass: c.ArmorClass,
		Mana:       c.Mana,
		MaxMana:    c.MaxMana,
		Weapon:     w.Name + " (" + w.Notation() + ")",
		Defeated:   c.IsDefeated(),
	}
}

func newCombatantList(in []*entities.Combatant) []CombatantData {
	out := make([]CombatantData, len(in))
	for i, c := range in {
		out[i] = newCombatantData(c)
	}
	return out
}

// LogEntryData is one combat log line
type LogEntryData struct {
	Round       int    `json:"round" jsonschema:"round the action happened in"`
	Kind        string `json:"kind" jsonschema:"action kind"`
	Actor       string `json:"actor,omitempty" jsonschema:"acting combatant name"`
	Target      string `json:"target,omitempty" jsonschema:"target combatant name"`
	Description string `json:"description" jsonschema:"what happened"`
	RollTotal   *int   `json:"roll_total,omitempty" jsonschema:"deciding roll total"`
	Critical    bool   `json:"critical,omitempty" jsonschema:"whether the roll was a critical hit"`
	Damage      int    `json:"damage,omitempty" jsonschema:"damage dealt"`
}

// EncounterData is the combat as tools report it
type EncounterData struct {
	ID               string          `json:"id" jsonschema:"encounter id"`
	CampaignID       string          `json:"campaign_id" jsonschema:"owning campaign"`
	Status           string          `json:"status" jsonschema:"active or ended"`
	Round            int             `json:"round" jsonschema:"current round"`
	Terrain          string          `json:"terrain,omitempty" jsonschema:"battlefield description"`
	Party            []CombatantData `json:"party" jsonschema:"party members"`
	Enemies          []CombatantData `json:"enemies" jsonschema:"enemies"`
	InitiativeOrder  []string        `json:"initiative_order,omitempty" jsonschema:"combatant ids in turn order"`
	CurrentTurnIndex int             `json:"current_turn_index" jsonschema:"number of actions resolved since initiative"`
	Log              []LogEntryData  `json:"log,omitempty" jsonschema:"combat log, oldest first"`
	StartedAt        string          `json:"started_at" jsonschema:"RFC3339 start time"`
}

func newEncounterData(e *entities.Encounter) *EncounterData {
	if e == nil {
		return nil
	}
	out := &EncounterData{
		ID:               e.ID,
		CampaignID:       e.CampaignID,
		Status:           string(e.Status),
		Round:            e.Round,
		Terrain:          e.Terrain,
		Party:            newCombatantList(e.Party),
		Enemies:          newCombatantList(e.Enemies),
		InitiativeOrder:  e.InitiativeOrder,
		CurrentTurnIndex: e.CurrentTurnIndex,
		StartedAt:        e.StartedAt.UTC().Format(time.RFC3339),
	}
	for _, entry := range e.Log() {
		out.Log = append(out.Log, LogEntryData{
			Round:       entry.Round,
			Kind:        string(entry.Kind),
			Actor:       entry.ActorName,
			Target:      entry.TargetName,
			Description: entry.Description,
			RollTotal:   entry.RollTotal,
			Critical:    entry.Critical,
			Damage:      entry.Damage,
		})
	}
	return out
}

// InitiateCombatData answers initiate_combat
type InitiateCombatData struct {
	Encounter *EncounterData `json:"encounter" jsonschema:"the new encounter"`
	Message   string         `json:"message" jsonschema:"narration of the start"`
}

// InitiativeRollData is one combatant's initiative
type InitiativeRollData struct {
	CombatantID string `json:"combatant_id" jsonschema:"combatant id"`
	Name        string `json:"name" jsonschema:"combatant name"`
	Roll        int    `json:"roll" jsonschema:"d20 result"`
	Modifier    int    `json:"modifier" jsonschema:"initiative modifier"`
	Total       int    `json:"total" jsonschema:"roll plus modifier"`
}

// InitiativeData answers determine_initiative
type InitiativeData struct {
	Order   []InitiativeRollData `json:"order" jsonschema:"turn order, highest first"`
	Message string               `json:"message" jsonschema:"narration of the order"`
}

func newInitiativeData(out *combat.DetermineInitiativeOutput) *InitiativeData {
	data := &InitiativeData{Order: make([]InitiativeRollData, len(out.Order)), Message: out.Message}
	for i, r := range out.Order {
		data.Order[i] = InitiativeRollData{
			CombatantID: r.CombatantID,
			Name:        r.Name,
			Roll:        r.Roll,
			Modifier:    r.Modifier,
			Total:       r.Total,
		}
	}
	return data
}

// AttackData answers the weapon attack tools
type AttackData struct {
	AttackerID  string `json:"attacker_id" jsonschema:"attacker id"`
	TargetID    string `json:"target_id" jsonschema:"target id"`
	AttackRolls []int  `json:"attack_rolls" jsonschema:"every d20 rolled"`
	AttackRoll  int    `json:"attack_roll" jsonschema:"d20 kept"`
	Modifier    int    `json:"modifier" jsonschema:"attack modifier"`
	AttackTotal int    `json:"attack_total" jsonschema:"roll plus modifier"`
	TargetAC    int    `json:"target_ac" jsonschema:"target armor class"`
	Hit         bool   `json:"hit" jsonschema:"whether the attack hit"`
	Critical    bool   `json:"critical" jsonschema:"whether the attack was a natural 20"`
	DamageRoll  int    `json:"damage_roll" jsonschema:"damage dice total"`
	Damage      int    `json:"damage" jsonschema:"damage dealt"`
	TargetHP    int    `json:"target_hp" jsonschema:"target hit points after the attack"`
	TargetMaxHP int    `json:"target_max_hp" jsonschema:"target maximum hit points"`
	Defeated    bool   `json:"defeated" jsonschema:"whether the target is defeated"`
	Message     string `json:"message" jsonschema:"narration of the attack"`
}

func newAttackData(out *combat.WeaponAttackOutput) *AttackData {
	return &AttackData{
		AttackerID:  out.AttackerID,
		TargetID:    out.TargetID,
		AttackRolls: out.AttackRolls,
		AttackRoll:  out.AttackRoll,
		Modifier:    out.Modifier,
		AttackTotal: out.AttackTotal,
		TargetAC:    out.TargetAC,
		Hit:         out.Hit,
		Critical:    out.Critical,
		DamageRoll:  out.DamageRoll,
		Damage:      out.Damage,
		TargetHP:    out.TargetHP,
		TargetMaxHP: out.TargetMaxHP,
		Defeated:    out.Defeated,
		Message:     out.Message,
	}
}

// SpellData answers player_spell_attack
type SpellData struct {
	CasterID      string `json:"caster_id" jsonschema:"caster id"`
	TargetID      string `json:"target_id" jsonschema:"target id"`
	SpellName     string `json:"spell_name" jsonschema:"spell cast"`
	Level         int    `json:"level" jsonschema:"spell level"`
	ManaCost      int    `json:"mana_cost" jsonschema:"mana spent"`
	ManaRemaining int    `json:"mana_remaining" jsonschema:"caster mana after the cast"`
	SaveDC        int    `json:"save_dc" jsonschema:"difficulty of the target's save"`
	SaveRolls     []int  `json:"save_rolls" jsonschema:"every d20 the target rolled"`
	SaveTotal     int    `json:"save_total" jsonschema:"kept roll plus save modifier"`
	Saved         bool   `json:"saved" jsonschema:"whether the target saved for half"`
	DamageRoll    int    `json:"damage_roll" jsonschema:"damage dice total"`
	Damage        int    `json:"damage" jsonschema:"damage dealt"`
	TargetHP      int    `json:"target_hp" jsonschema:"target hit points after the spell"`
	TargetMaxHP   int    `json:"target_max_hp" jsonschema:"target maximum hit points"`
	Defeated      bool   `json:"defeated" jsonschema:"whether the target is defeated"`
	Message       string `json:"message" jsonschema:"narration of the spell"`
}

func newSpellData(out *combat.SpellAttackOutput) *SpellData {
	return &SpellData{
		CasterID:      out.CasterID,
		TargetID:      out.TargetID,
		SpellName:     out.SpellName,
		Level:         out.Level,
		ManaCost:      out.ManaCost,
		ManaRemaining: out.ManaRemaining,
		SaveDC:        out.SaveDC,
		SaveRolls:     out.SaveRolls,
		SaveTotal:     out.SaveTotal,
		Saved:         out.Saved,
		DamageRoll:    out.DamageRoll,
		Damage:        out.Damage,
		TargetHP:      out.TargetHP,
		TargetMaxHP:   out.TargetMaxHP,
		Defeated:      out.Defeated,
		Message:       out.Message,
	}
}

// SavingThrowData answers saving_throw
type SavingThrowData struct {
	CombatantID string `json:"combatant_id" jsonschema:"combatant id"`
	Rolls       []int  `json:"rolls" jsonschema:"every d20 rolled"`
	Kept        int    `json:"kept" jsonschema:"d20 kept"`
	Modifier    int    `json:"modifier" jsonschema:"save modifier"`
	Total       int    `json:"total" jsonschema:"kept roll plus modifier"`
	DC          int    `json:"dc" jsonschema:"difficulty class"`
	Success     bool   `json:"success" jsonschema:"whether the save succeeded"`
	Damage      int    `json:"damage" jsonschema:"damage taken"`
	HP          int    `json:"hp" jsonschema:"hit points after the save"`
	MaxHP       int    `json:"max_hp" jsonschema:"maximum hit points"`
	Defeated    bool   `json:"defeated" jsonschema:"whether the combatant is defeated"`
	Message     string `json:"message" jsonschema:"narration of the save"`
}

func newSavingThrowData(out *combat.SavingThrowOutput) *SavingThrowData {
	return &SavingThrowData{
		CombatantID: out.CombatantID,
		Rolls:       out.Rolls,
		Kept:        out.Kept,
		Modifier:    out.Modifier,
		Total:       out.Total,
		DC:          out.DC,
		Success:     out.Success,
		Damage:      out.Damage,
		HP:          out.HP,
		MaxHP:       out.MaxHP,
		Defeated:    out.Defeated,
		Message:     out.Message,
	}
}

// AbilityData answers special_ability
type AbilityData struct {
	UserID        string `json:"user_id" jsonschema:"user id"`
	TargetID      string `json:"target_id" jsonschema:"target id"`
	Ability       string `json:"ability" jsonschema:"ability used"`
	Effect        string `json:"effect" jsonschema:"damage or heal"`
	Roll          int    `json:"roll" jsonschema:"dice total"`
	Amount        int    `json:"amount" jsonschema:"hit points removed or restored"`
	Saved         bool   `json:"saved" jsonschema:"whether the target saved for half"`
	ManaRemaining int    `json:"mana_remaining" jsonschema:"user mana after the ability"`
	TargetHP      int    `json:"target_hp" jsonschema:"target hit points after the ability"`
	TargetMaxHP   int    `json:"target_max_hp" jsonschema:"target maximum hit points"`
	Defeated      bool   `json:"defeated" jsonschema:"whether the target is defeated"`
	Message       string `json:"message" jsonschema:"narration of the ability"`
}

func newAbilityData(out *combat.SpecialAbilityOutput) *AbilityData {
	return &AbilityData{
		UserID:        out.UserID,
		TargetID:      out.TargetID,
		Ability:       out.Ability,
		Effect:        string(out.Effect),
		Roll:          out.Roll,
		Amount:        out.Amount,
		Saved:         out.Saved,
		ManaRemaining: out.ManaRemaining,
		TargetHP:      out.TargetHP,
		TargetMaxHP:   out.TargetMaxHP,
		Defeated:      out.Defeated,
		Message:       out.Message,
	}
}

// GoldShareData is one party member's cut of the reward
type GoldShareData struct {
	CombatantID string `json:"combatant_id" jsonschema:"party member id"`
	Gold        int    `json:"gold" jsonschema:"gold received"`
}

// EndCombatData answers end_combat
type EndCombatData struct {
	EncounterID string          `json:"encounter_id" jsonschema:"ended encounter"`
	Victor      string          `json:"victor" jsonschema:"declared victor"`
	Rounds      int             `json:"rounds" jsonschema:"rounds fought"`
	Actions     int             `json:"actions" jsonschema:"log entries recorded"`
	GoldAwarded int             `json:"gold_awarded" jsonschema:"total gold split"`
	GoldShares  []GoldShareData `json:"gold_shares,omitempty" jsonschema:"gold per party member, largest first"`
	Survivors   []string        `json:"survivors,omitempty" jsonschema:"party members still standing"`
	Fallen      []string        `json:"fallen,omitempty" jsonschema:"party members at zero hit points"`
	Unrecorded  []string        `json:"unrecorded,omitempty" jsonschema:"party members whose ledger update failed"`
	Message     string          `json:"message" jsonschema:"narration of the outcome"`
}

func newEndCombatData(out *combat.EndCombatOutput) *EndCombatData {
	s := out.Summary
	data := &EndCombatData{
		EncounterID: s.EncounterID,
		Victor:      string(s.Victor),
		Rounds:      s.Rounds,
		Actions:     s.Actions,
		GoldAwarded: s.GoldAwarded,
		Survivors:   s.Survivors,
		Fallen:      s.Fallen,
		Unrecorded:  out.Unrecorded,
		Message:     out.Message,
	}
	for id, gold := range s.GoldShares {
		data.GoldShares = append(data.GoldShares, GoldShareData{CombatantID: id, Gold: gold})
	}
	// larger shares went to earlier party members
	slices.SortFunc(data.GoldShares, func(a, b GoldShareData) int {
		if a.Gold != b.Gold {
			return cmp.Compare(b.Gold, a.Gold)
		}
		return cmp.Compare(a.CombatantID, b.CombatantID)
	})
	return data
}

// CombatStateData answers get_combat_state
type CombatStateData struct {
	InCombat  bool           `json:"in_combat" jsonschema:"whether a combat is active"`
	Encounter *EncounterData `json:"encounter,omitempty" jsonschema:"the active encounter"`
	Active    *CombatantData `json:"active,omitempty" jsonschema:"whose turn it is"`
}

func newCombatStateData(out *combat.GetCombatStateOutput) *CombatStateData {
	data := &CombatStateData{InCombat: out.InCombat, Encounter: newEncounterData(out.Encounter)}
	if out.Active != nil {
		active := newCombatantData(out.Active)
		data.Active = &active
	}
	return data
}

// RollData is one resolved roll window
type RollData struct {
	WindowID string `json:"window_id" jsonschema:"roll window id"`
	PlayerID string `json:"player_id,omitempty" jsonschema:"player who rolled"`
	Purpose  string `json:"purpose,omitempty" jsonschema:"what the roll was for"`
	Notation string `json:"notation" jsonschema:"dice notation"`
	Dice     []int  `json:"dice,omitempty" jsonschema:"individual die values"`
	Total    int    `json:"total" jsonschema:"roll total"`
	Source   string `json:"source" jsonschema:"player, auto or timeout_fallback"`
	RolledAt string `json:"rolled_at" jsonschema:"RFC3339 time the roll resolved"`
}

// RollHistoryData answers get_roll_history
type RollHistoryData struct {
	Rolls []RollData `json:"rolls" jsonschema:"rolls, oldest first"`
}

func newRollHistoryData(rolls []dicesession.DiceRoll) *RollHistoryData {
	data := &RollHistoryData{Rolls: make([]RollData, len(rolls))}
	for i, r := range rolls {
		data.Rolls[i] = RollData{
			WindowID: r.WindowID,
			PlayerID: r.PlayerID,
			Purpose:  r.Purpose,
			Notation: r.Notation,
			Dice:     r.Dice,
			Total:    r.Total,
			Source:   string(r.Source),
			RolledAt: r.RolledAt.UTC().Format(time.RFC3339),
		}
	}
	return data
}
