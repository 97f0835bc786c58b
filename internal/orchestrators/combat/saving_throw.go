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

// SavingThrow resolves a saving throw with optional damage
func (o *orchestrator) SavingThrow(ctx context.Context, input *SavingThrowInput) (out *SavingThrowOutput, err error) {
	defer o.guard("SavingThrow", &err)

	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	if input.Attribute == "" {
		vb.RequiredField("Attribute")
	}
	if input.DC <= 0 {
		vb.Field("DC", "must be positive")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}
	attr, err := entities.ParseAttribute(string(input.Attribute))
	if err != nil {
		return nil, errors.InvalidArgumentf("invalid attribute: %v", err)
	}
	var damageDice *engine.Dice
	if input.DamageDice != "" {
		d, err := engine.ParseNotation(input.DamageDice)
		if err != nil {
			return nil, err
		}
		damageDice = &d
	}

	var target *entities.Combatant
	enc, err := o.mutate(ctx, input.CampaignID, func(enc *entities.Encounter) error {
		if err := requireInitiative(enc); err != nil {
			return err
		}
		var err error
		if target, err = find(enc, input.Combatant, ""); err != nil {
			return err
		}
		if err := requireStanding(target); err != nil {
			return err
		}

		rolls, err := o.roll(ctx, enc.CampaignID, target, purposeFor("save", target), 1, rules.D20, target.SaveModifier(attr), rules.SaveRollCount(input.Advantage))
		if err != nil {
			return err
		}
		save := rules.ResolveSavingThrow(target.SaveModifier(attr), input.DC, totals(rolls)...)

		damage := 0
		if damageDice != nil && (!save.Success || input.HalfOnSuccess) {
			res, err := o.rollOne(ctx, enc.CampaignID, nil, purposeFor("save_damage", target), damageDice.Count, damageDice.Sides, damageDice.Modifier)
			if err != nil {
				return err
			}
			damage = res.Total + damageDice.Modifier
			if save.Success {
				damage = rules.Halve(damage)
			}
			damage = target.ApplyDamage(damage)
		}

		out = &SavingThrowOutput{
			CombatantID: target.ID,
			Rolls:       save.Rolls,
			Kept:        save.Kept,
			Modifier:    save.Modifier,
			Total:       save.Total,
			DC:          save.DC,
			Success:     save.Success,
			Damage:      damage,
			HP:          target.CurrentHP,
			MaxHP:       target.MaxHP,
			Defeated:    target.IsDefeated(),
		}
		out.Message = describeSave(target, attr, input.Reason, out)

		rollTotal := save.Total
		o.record(enc, entities.LogEntry{
			Kind:        entities.ActionSavingThrow,
			ActorID:     target.ID,
			ActorName:   target.Name,
			Description: out.Message,
			RollTotal:   &rollTotal,
			Damage:      damage,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("saving throw resolved",
		zap.String("campaign_id", enc.CampaignID),
		zap.Object("result", out),
	)
	o.publish(ctx, rpgtoolkit.EventActionResolved, enc, target, nil, out.Message, out)

	return out, nil
}

func describeSave(c *entities.Combatant, attr entities.Attribute, reason string, out *SavingThrowOutput) string {
	outcome := "fails"
	if out.Success {
		outcome = "succeeds on"
	}
	msg := fmt.Sprintf("%s %s a DC %d %s save with %d", c.Name, outcome, out.DC, attr, out.Total)
	if reason != "" {
		msg += " against " + reason
	}
	if out.Damage > 0 {
		msg += fmt.Sprintf(" and takes %d damage", out.Damage)
	}
	if out.Defeated {
		msg += fmt.Sprintf(". %s is defeated", c.Name)
	}
	return msg
}
