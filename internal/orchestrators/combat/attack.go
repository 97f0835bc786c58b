package combat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine/rpgtoolkit"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine/rules"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
)

// PlayerWeaponAttack resolves a party member's weapon attack
func (o *orchestrator) PlayerWeaponAttack(ctx context.Context, input *WeaponAttackInput) (out *WeaponAttackOutput, err error) {
	defer o.guard("PlayerWeaponAttack", &err)
	return o.weaponAttack(ctx, input, entities.SideParty, entities.SideEnemy)
}

// MonsterWeaponAttack resolves an enemy's weapon attack
func (o *orchestrator) MonsterWeaponAttack(ctx context.Context, input *WeaponAttackInput) (out *WeaponAttackOutput, err error) {
	defer o.guard("MonsterWeaponAttack", &err)
	return o.weaponAttack(ctx, input, entities.SideEnemy, entities.SideParty)
}

func (o *orchestrator) weaponAttack(ctx context.Context, input *WeaponAttackInput, attackerSide, targetSide entities.Side) (*WeaponAttackOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var (
		out              *WeaponAttackOutput
		attacker, target *entities.Combatant
	)
	enc, err := o.mutate(ctx, input.CampaignID, func(enc *entities.Encounter) error {
		if err := requireInitiative(enc); err != nil {
			return err
		}
		var err error
		if attacker, err = find(enc, input.Attacker, attackerSide); err != nil {
			return err
		}
		if target, err = find(enc, input.Target, targetSide); err != nil {
			return err
		}
		if err := requireStanding(attacker); err != nil {
			return err
		}
		if target.IsDefeated() {
			return errors.InvalidStatef("%s is already defeated", target.Name)
		}

		windows := 1
		if input.Advantage {
			windows = 2
		}
		attackRolls, err := o.roll(ctx, enc.CampaignID, attacker, purposeFor("attack", attacker), 1, rules.D20, attacker.AttackModifier, windows)
		if err != nil {
			return err
		}
		best, _ := rules.BestOf(attackRolls)
		attack := rules.ResolveAttackWithDie(attacker.AttackModifier, target.ArmorClass, best.Total, rules.D20)

		out = &WeaponAttackOutput{
			AttackerID:  attacker.ID,
			TargetID:    target.ID,
			AttackRolls: totals(attackRolls),
			AttackRoll:  attack.Roll,
			Modifier:    attack.Modifier,
			AttackTotal: attack.Total,
			TargetAC:    target.ArmorClass,
			Hit:         attack.Hit,
			Critical:    attack.Critical,
		}

		weapon := attacker.EquippedWeapon()
		if attack.Hit {
			dmg, err := o.rollOne(ctx, enc.CampaignID, attacker, purposeFor("damage", attacker), weapon.DiceCount, weapon.DieType, attacker.AttackModifier+weapon.Bonus)
			if err != nil {
				return err
			}
			out.DamageRoll = dmg.Total
			out.Damage = target.ApplyDamage(rules.WeaponDamage(dmg.Total, attack.Critical, attacker.AttackModifier, weapon.Bonus))
		}
		out.TargetHP = target.CurrentHP
		out.TargetMaxHP = target.MaxHP
		out.Defeated = target.IsDefeated()
		out.Message = describeAttack(attacker, target, weapon, out)

		rollTotal := attack.Total
		o.record(enc, entities.LogEntry{
			Kind:        entities.ActionAttack,
			ActorID:     attacker.ID,
			ActorName:   attacker.Name,
			TargetID:    target.ID,
			TargetName:  target.Name,
			Description: out.Message,
			RollTotal:   &rollTotal,
			Critical:    attack.Critical,
			Damage:      out.Damage,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("weapon attack resolved",
		zap.String("campaign_id", enc.CampaignID),
		zap.Object("result", out),
	)
	o.publish(ctx, rpgtoolkit.EventActionResolved, enc, attacker, target, out.Message, out)

	return out, nil
}

func describeAttack(attacker, target *entities.Combatant, weapon entities.Weapon, out *WeaponAttackOutput) string {
	if !out.Hit {
		return fmt.Sprintf("%s attacks %s with %s and misses (%d vs AC %d)",
			attacker.Name, target.Name, weapon.Name, out.AttackTotal, out.TargetAC)
	}
	msg := fmt.Sprintf("%s hits %s with %s for %d damage (%d vs AC %d)",
		attacker.Name, target.Name, weapon.Name, out.Damage, out.AttackTotal, out.TargetAC)
	if out.Critical {
		msg = "Critical hit! " + msg
	}
	if out.Defeated {
		msg += fmt.Sprintf(". %s is defeated", target.Name)
	}
	return msg
}

func totals(results []entities.RollResult) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.Total
	}
	return out
}
