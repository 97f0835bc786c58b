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

func validateAbility(input *SpecialAbilityInput) (*engine.Dice, entities.Attribute, error) {
	vb := errors.NewValidationBuilder()
	if input.Ability == "" {
		vb.RequiredField("Ability")
	}
	if input.Effect != EffectDamage && input.Effect != EffectHeal {
		vb.Fieldf("Effect", "must be %q or %q", EffectDamage, EffectHeal)
	}
	if input.ManaCost < 0 {
		vb.Field("ManaCost", "cannot be negative")
	}
	if input.Dice == "" && input.Magnitude <= 0 {
		vb.Field("Dice", "dice or a positive magnitude is required")
	}
	if err := vb.Build(); err != nil {
		return nil, "", err
	}

	var d *engine.Dice
	if input.Dice != "" {
		parsed, err := engine.ParseNotation(input.Dice)
		if err != nil {
			return nil, "", err
		}
		d = &parsed
	}

	var save entities.Attribute
	if input.SaveAttribute != "" {
		if input.Effect != EffectDamage {
			return nil, "", errors.InvalidArgument("only damaging abilities allow a save")
		}
		attr, err := entities.ParseAttribute(string(input.SaveAttribute))
		if err != nil {
			return nil, "", errors.InvalidArgumentf("invalid save attribute: %v", err)
		}
		save = attr
	}
	return d, save, nil
}

// SpecialAbility resolves a damaging or healing ability
func (o *orchestrator) SpecialAbility(ctx context.Context, input *SpecialAbilityInput) (out *SpecialAbilityOutput, err error) {
	defer o.guard("SpecialAbility", &err)

	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	abilityDice, save, err := validateAbility(input)
	if err != nil {
		return nil, err
	}

	var user, target *entities.Combatant
	enc, err := o.mutate(ctx, input.CampaignID, func(enc *entities.Encounter) error {
		if err := requireInitiative(enc); err != nil {
			return err
		}
		var err error
		if user, err = find(enc, input.User, ""); err != nil {
			return err
		}
		target = user
		if input.Target != "" {
			if target, err = find(enc, input.Target, ""); err != nil {
				return err
			}
		}
		if err := requireStanding(user); err != nil {
			return err
		}
		if input.Effect == EffectDamage && target.IsDefeated() {
			return errors.InvalidStatef("%s is already defeated", target.Name)
		}
		if !user.SpendMana(input.ManaCost) {
			return errors.InvalidStatef("%s needs %d mana for %s but has %d",
				user.Name, input.ManaCost, input.Ability, user.Mana)
		}

		out = &SpecialAbilityOutput{
			UserID:   user.ID,
			TargetID: target.ID,
			Ability:  input.Ability,
			Effect:   input.Effect,
		}

		amount := input.Magnitude
		if abilityDice != nil {
			res, err := o.rollOne(ctx, enc.CampaignID, user, purposeFor("ability", user), abilityDice.Count, abilityDice.Sides, abilityDice.Modifier)
			if err != nil {
				return err
			}
			out.Roll = res.Total
			amount += res.Total + abilityDice.Modifier
		}
		if amount < 0 {
			amount = 0
		}

		switch input.Effect {
		case EffectHeal:
			out.Amount = target.Heal(amount)
		case EffectDamage:
			if save != "" {
				dc := rules.SpellSaveDC(user.SpellcastingModifier)
				saveRoll, err := o.rollOne(ctx, enc.CampaignID, target, purposeFor("save", target), 1, rules.D20, target.SaveModifier(save))
				if err != nil {
					return err
				}
				outcome := rules.ResolveSavingThrow(target.SaveModifier(save), dc, saveRoll.Total)
				if outcome.Success {
					out.Saved = true
					amount = rules.Halve(amount)
				}
			}
			out.Amount = target.ApplyDamage(amount)
		}

		out.ManaRemaining = user.Mana
		out.TargetHP = target.CurrentHP
		out.TargetMaxHP = target.MaxHP
		out.Defeated = target.IsDefeated()
		out.Message = describeAbility(user, target, out)

		entry := entities.LogEntry{
			Kind:        entities.ActionSpecialAbility,
			ActorID:     user.ID,
			ActorName:   user.Name,
			TargetID:    target.ID,
			TargetName:  target.Name,
			Description: out.Message,
		}
		if input.Effect == EffectDamage {
			entry.Damage = out.Amount
		}
		if abilityDice != nil {
			roll := out.Roll
			entry.RollTotal = &roll
		}
		o.record(enc, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("special ability resolved",
		zap.String("campaign_id", enc.CampaignID),
		zap.Object("result", out),
	)
	o.publish(ctx, rpgtoolkit.EventActionResolved, enc, user, target, out.Message, out)

	return out, nil
}

func describeAbility(user, target *entities.Combatant, out *SpecialAbilityOutput) string {
	var msg string
	switch {
	case out.Effect == EffectHeal && user.ID == target.ID:
		msg = fmt.Sprintf("%s uses %s and recovers %d hit points", user.Name, out.Ability, out.Amount)
	case out.Effect == EffectHeal:
		msg = fmt.Sprintf("%s uses %s on %s, restoring %d hit points", user.Name, out.Ability, target.Name, out.Amount)
	default:
		msg = fmt.Sprintf("%s uses %s on %s for %d damage", user.Name, out.Ability, target.Name, out.Amount)
		if out.Saved {
			msg += " (halved by a successful save)"
		}
	}
	if out.Defeated {
		msg += fmt.Sprintf(". %s is defeated", target.Name)
	}
	return msg
}
