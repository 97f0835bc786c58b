package combat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine/rpgtoolkit"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine/rules"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
)

// spellCast is a spell request with catalog values merged in
type spellCast struct {
	name      string
	level     int
	dice      *engine.Dice
	magnitude int
	save      entities.Attribute
}

// resolveSpell merges the request with the spell catalog. It runs before
// the campaign lock is taken.
func (o *orchestrator) resolveSpell(ctx context.Context, input *SpellAttackInput) (*spellCast, error) {
	cast := &spellCast{
		name:      input.SpellName,
		magnitude: input.Magnitude,
		save:      input.SaveAttribute,
	}
	notation := input.DamageDice
	level := input.Level

	if input.SpellKey != "" {
		if o.spells == nil {
			return nil, errors.Unavailablef("spell catalog is not configured, cannot look up %s", input.SpellKey)
		}
		data, err := o.spells.GetSpellData(ctx, input.SpellKey)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to look up spell %s", input.SpellKey)
		}
		if cast.name == "" {
			cast.name = data.Name
		}
		if level == nil {
			l := data.Level
			level = &l
		}
		if notation == "" {
			notation = data.DamageDice
		}
		if cast.save == "" && data.SaveAttribute != "" {
			if attr, err := entities.ParseAttribute(data.SaveAttribute); err == nil {
				cast.save = attr
			}
		}
	}

	if cast.name == "" {
		return nil, errors.InvalidArgument("spell name or key is required")
	}
	if level == nil {
		return nil, errors.InvalidArgumentf("level of spell %s is required", cast.name)
	}
	if *level < 0 || *level > 9 {
		return nil, errors.InvalidArgumentf("spell level must be between 0 and 9, got %d", *level)
	}
	cast.level = *level

	if notation != "" {
		d, err := engine.ParseNotation(notation)
		if err != nil {
			return nil, err
		}
		if !rules.IsValidDie(d.Sides) {
			return nil, errors.InvalidArgumentf("unsupported die d%d in %q", d.Sides, notation)
		}
		cast.dice = &d
		cast.magnitude += d.Modifier
	}
	if cast.dice == nil && cast.magnitude <= 0 {
		return nil, errors.InvalidArgumentf("spell %s needs damage dice or a magnitude", cast.name)
	}
	if cast.save == "" {
		cast.save = entities.AttributeDexterity
	}
	return cast, nil
}

// PlayerSpellAttack resolves a damaging spell. Mana is checked before any
// roll is requested.
func (o *orchestrator) PlayerSpellAttack(ctx context.Context, input *SpellAttackInput) (out *SpellAttackOutput, err error) {
	defer o.guard("PlayerSpellAttack", &err)

	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	cast, err := o.resolveSpell(ctx, input)
	if err != nil {
		return nil, err
	}

	var caster, target *entities.Combatant
	enc, err := o.mutate(ctx, input.CampaignID, func(enc *entities.Encounter) error {
		if err := requireInitiative(enc); err != nil {
			return err
		}
		var err error
		if caster, err = find(enc, input.Caster, entities.SideParty); err != nil {
			return err
		}
		if target, err = find(enc, input.Target, entities.SideEnemy); err != nil {
			return err
		}
		if err := requireStanding(caster); err != nil {
			return err
		}
		if target.IsDefeated() {
			return errors.InvalidStatef("%s is already defeated", target.Name)
		}

		cost := rules.SpellManaCost(cast.level)
		if !caster.SpendMana(cost) {
			return errors.InvalidStatef("%s needs %d mana to cast %s but has %d",
				caster.Name, cost, cast.name, caster.Mana)
		}

		dc := rules.SpellSaveDC(caster.SpellcastingModifier)
		saveRolls, err := o.roll(ctx, enc.CampaignID, target, purposeFor("save", target), 1, rules.D20, target.SaveModifier(cast.save), rules.SaveRollCount(input.SaveAdvantage))
		if err != nil {
			return err
		}
		save := rules.ResolveSavingThrow(target.SaveModifier(cast.save), dc, totals(saveRolls)...)

		diceTotal := 0
		if cast.dice != nil {
			dmg, err := o.rollOne(ctx, enc.CampaignID, caster, purposeFor("spell_damage", caster), cast.dice.Count, cast.dice.Sides, cast.magnitude)
			if err != nil {
				return err
			}
			diceTotal = dmg.Total
		}
		damage := target.ApplyDamage(rules.SpellDamage(diceTotal, cast.magnitude, save.Success))

		out = &SpellAttackOutput{
			CasterID:      caster.ID,
			TargetID:      target.ID,
			SpellName:     cast.name,
			Level:         cast.level,
			ManaCost:      cost,
			ManaRemaining: caster.Mana,
			SaveDC:        dc,
			SaveRolls:     save.Rolls,
			SaveTotal:     save.Total,
			Saved:         save.Success,
			DamageRoll:    diceTotal,
			Damage:        damage,
			TargetHP:      target.CurrentHP,
			TargetMaxHP:   target.MaxHP,
			Defeated:      target.IsDefeated(),
		}
		out.Message = describeSpell(caster, target, cast.save, out)

		rollTotal := save.Total
		o.record(enc, entities.LogEntry{
			Kind:        entities.ActionSpell,
			ActorID:     caster.ID,
			ActorName:   caster.Name,
			TargetID:    target.ID,
			TargetName:  target.Name,
			Description: out.Message,
			RollTotal:   &rollTotal,
			Damage:      damage,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("spell attack resolved",
		zap.String("campaign_id", enc.CampaignID),
		zap.Object("result", out),
	)
	o.publish(ctx, rpgtoolkit.EventActionResolved, enc, caster, target, out.Message, out)

	return out, nil
}

func describeSpell(caster, target *entities.Combatant, save entities.Attribute, out *SpellAttackOutput) string {
	outcome := "fails"
	if out.Saved {
		outcome = "succeeds on"
	}
	msg := fmt.Sprintf("%s casts %s at %s, who %s a DC %d %s save (%d) and takes %d damage",
		caster.Name, out.SpellName, target.Name, outcome, out.SaveDC, save, out.SaveTotal, out.Damage)
	if out.Defeated {
		msg += fmt.Sprintf(". %s is defeated", target.Name)
	}
	return msg
}
