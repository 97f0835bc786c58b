package combat

import (
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	dicesession "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/dice_session"
)

// InitiateCombatInput defines the request for starting a combat
type InitiateCombatInput struct {
	CampaignID string
	Terrain    string
	// Party members with zero MaxHP are filled in from the character ledger
	Party   []*entities.Combatant
	Enemies []*entities.Combatant
}

// InitiateCombatOutput defines the response for starting a combat
type InitiateCombatOutput struct {
	Encounter *entities.Encounter
	Message   string
}

// DetermineInitiativeInput defines the request for rolling initiative
type DetermineInitiativeInput struct {
	CampaignID string
	// Combatants lists every combatant by id or name in submission order.
	// Empty means party members followed by enemies.
	Combatants []string
}

// InitiativeRoll is one combatant's initiative result
type InitiativeRoll struct {
	CombatantID string
	Name        string
	Roll        int
	Modifier    int
	Total       int
}

// DetermineInitiativeOutput defines the response for rolling initiative
type DetermineInitiativeOutput struct {
	// Order is sorted by total, highest first
	Order   []InitiativeRoll
	Message string
}

// WeaponAttackInput defines the request for a weapon attack
type WeaponAttackInput struct {
	CampaignID string
	Attacker   string
	Target     string
	Advantage  bool
}

// WeaponAttackOutput defines the response for a weapon attack
type WeaponAttackOutput struct {
	AttackerID  string
	TargetID    string
	AttackRolls []int
	AttackRoll  int
	Modifier    int
	AttackTotal int
	TargetAC    int
	Hit         bool
	Critical    bool
	DamageRoll  int
	Damage      int
	TargetHP    int
	TargetMaxHP int
	Defeated    bool
	Message     string
}

// SpellAttackInput defines the request for a damaging spell
type SpellAttackInput struct {
	CampaignID string
	Caster     string
	Target     string
	SpellName  string
	// SpellKey looks the spell up in the catalog; catalog values fill any
	// of Level, DamageDice and SaveAttribute left unset
	SpellKey      string
	Level         *int
	DamageDice    string
	Magnitude     int
	SaveAttribute entities.Attribute
	SaveAdvantage bool
}

// SpellAttackOutput defines the response for a damaging spell
type SpellAttackOutput struct {
	CasterID      string
	TargetID      string
	SpellName     string
	Level         int
	ManaCost      int
	ManaRemaining int
	SaveDC        int
	SaveRolls     []int
	SaveTotal     int
	Saved         bool
	DamageRoll    int
	Damage        int
	TargetHP      int
	TargetMaxHP   int
	Defeated      bool
	Message       string
}

// SavingThrowInput defines the request for a saving throw
type SavingThrowInput struct {
	CampaignID string
	Combatant  string
	Attribute  entities.Attribute
	DC         int
	Advantage  bool
	// DamageDice is rolled automatically and applied on a failed save
	DamageDice string
	// HalfOnSuccess applies half the damage on a successful save
	HalfOnSuccess bool
	Reason        string
}

// SavingThrowOutput defines the response for a saving throw
type SavingThrowOutput struct {
	CombatantID string
	Rolls       []int
	Kept        int
	Modifier    int
	Total       int
	DC          int
	Success     bool
	Damage      int
	HP          int
	MaxHP       int
	Defeated    bool
	Message     string
}

// AbilityEffect is what a special ability does to its target
type AbilityEffect string

// Ability effects
const (
	EffectDamage AbilityEffect = "damage"
	EffectHeal   AbilityEffect = "heal"
)

// SpecialAbilityInput defines the request for a special ability
type SpecialAbilityInput struct {
	CampaignID string
	User       string
	// Target defaults to the user
	Target    string
	Ability   string
	Effect    AbilityEffect
	Dice      string
	Magnitude int
	ManaCost  int
	// SaveAttribute lets a damage target save against the user's spell DC
	SaveAttribute entities.Attribute
}

// SpecialAbilityOutput defines the response for a special ability
type SpecialAbilityOutput struct {
	UserID        string
	TargetID      string
	Ability       string
	Effect        AbilityEffect
	Roll          int
	Amount        int
	Saved         bool
	ManaRemaining int
	TargetHP      int
	TargetMaxHP   int
	Defeated      bool
	Message       string
}

// EndCombatInput defines the request for ending a combat
type EndCombatInput struct {
	CampaignID string
	Victor     entities.Victor
	GoldReward int
	Notes      string
}

// EndCombatOutput defines the response for ending a combat
type EndCombatOutput struct {
	Summary *entities.CombatSummary
	Message string
	// Unrecorded names party members whose ledger update failed after the
	// combat was closed
	Unrecorded []string
}

// GetCombatStateInput defines the request for reading combat state
type GetCombatStateInput struct {
	CampaignID string
}

// GetCombatStateOutput defines the response for reading combat state
type GetCombatStateOutput struct {
	InCombat  bool
	Encounter *entities.Encounter
	// Active is whose turn it is; nil before initiative
	Active *entities.Combatant
}

// GetRollHistoryInput defines the request for reading roll history
type GetRollHistoryInput struct {
	CampaignID string
	Limit      int
}

// GetRollHistoryOutput defines the response for reading roll history
type GetRollHistoryOutput struct {
	Rolls []dicesession.DiceRoll
}

type ints []int

func (is ints) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, i := range is {
		enc.AppendInt(i)
	}
	return nil
}

// MarshalLogObject implements zapcore.ObjectMarshaler
func (o *DetermineInitiativeOutput) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	order := make([]string, len(o.Order))
	for i, r := range o.Order {
		order[i] = r.CombatantID
	}
	return enc.AddArray("order", zapcore.ArrayMarshalerFunc(func(ae zapcore.ArrayEncoder) error {
		for _, id := range order {
			ae.AppendString(id)
		}
		return nil
	}))
}

// MarshalLogObject implements zapcore.ObjectMarshaler
func (o *WeaponAttackOutput) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("attacker_id", o.AttackerID)
	enc.AddString("target_id", o.TargetID)
	if err := enc.AddArray("attack_rolls", ints(o.AttackRolls)); err != nil {
		return err
	}
	enc.AddInt("attack_total", o.AttackTotal)
	enc.AddInt("target_ac", o.TargetAC)
	enc.AddBool("hit", o.Hit)
	enc.AddBool("critical", o.Critical)
	enc.AddInt("damage", o.Damage)
	enc.AddInt("target_hp", o.TargetHP)
	enc.AddBool("defeated", o.Defeated)
	return nil
}

// MarshalLogObject implements zapcore.ObjectMarshaler
func (o *SpellAttackOutput) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("caster_id", o.CasterID)
	enc.AddString("target_id", o.TargetID)
	enc.AddString("spell", o.SpellName)
	enc.AddInt("level", o.Level)
	enc.AddInt("mana_cost", o.ManaCost)
	enc.AddInt("save_dc", o.SaveDC)
	enc.AddBool("saved", o.Saved)
	enc.AddInt("damage", o.Damage)
	enc.AddInt("target_hp", o.TargetHP)
	enc.AddBool("defeated", o.Defeated)
	return nil
}

// MarshalLogObject implements zapcore.ObjectMarshaler
func (o *SavingThrowOutput) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("combatant_id", o.CombatantID)
	if err := enc.AddArray("rolls", ints(o.Rolls)); err != nil {
		return err
	}
	enc.AddInt("total", o.Total)
	enc.AddInt("dc", o.DC)
	enc.AddBool("success", o.Success)
	enc.AddInt("damage", o.Damage)
	enc.AddInt("hp", o.HP)
	return nil
}

// MarshalLogObject implements zapcore.ObjectMarshaler
func (o *SpecialAbilityOutput) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("user_id", o.UserID)
	enc.AddString("target_id", o.TargetID)
	enc.AddString("ability", o.Ability)
	enc.AddString("effect", string(o.Effect))
	enc.AddInt("amount", o.Amount)
	enc.AddBool("saved", o.Saved)
	enc.AddInt("target_hp", o.TargetHP)
	return nil
}

// MarshalLogObject implements zapcore.ObjectMarshaler
func (o *EndCombatOutput) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if o.Summary == nil {
		return nil
	}
	enc.AddString("encounter_id", o.Summary.EncounterID)
	enc.AddString("victor", string(o.Summary.Victor))
	enc.AddInt("rounds", o.Summary.Rounds)
	enc.AddInt("actions", o.Summary.Actions)
	enc.AddInt("gold_awarded", o.Summary.GoldAwarded)
	if len(o.Unrecorded) > 0 {
		enc.AddString("unrecorded", strings.Join(o.Unrecorded, ","))
	}
	return nil
}
