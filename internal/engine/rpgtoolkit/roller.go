// Package rpgtoolkit backs the combat core with rpg-toolkit modules: the
// dice roller for automatic windows and the event bus for combat events.
package rpgtoolkit

import (
	"context"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"go.uber.org/zap"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine/rules"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
)

// RollerConfig contains configuration for creating a new Roller
type RollerConfig struct {
	// DiceRoller defaults to dice.DefaultRoller when nil
	DiceRoller dice.Roller
	Logger     *zap.Logger
}

// Roller implements engine.Roller on top of an rpg-toolkit dice.Roller
type Roller struct {
	dice   dice.Roller
	logger *zap.Logger
}

// NewRoller creates a new rpg-toolkit backed roller
func NewRoller(cfg *RollerConfig) *Roller {
	if cfg == nil {
		cfg = &RollerConfig{}
	}
	r := &Roller{dice: cfg.DiceRoller, logger: cfg.Logger}
	if r.dice == nil {
		r.dice = dice.DefaultRoller
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

var _ engine.Roller = (*Roller)(nil)

// Roll rolls DiceCount dice of DieType sides
func (r *Roller) Roll(ctx context.Context, input *engine.RollInput) (*engine.RollOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.DiceCount <= 0 {
		return nil, errors.InvalidArgument("dice count must be positive")
	}
	if !rules.IsValidDie(input.DieType) {
		return nil, errors.InvalidArgumentf("unsupported die type d%d", input.DieType)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "roll canceled")
	}

	values, err := r.dice.RollN(input.DiceCount, input.DieType)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to roll %dd%d", input.DiceCount, input.DieType)
	}

	out := &engine.RollOutput{}
	out.Result.Values = values
	if input.DropLowest && len(values) > 1 {
		out.Result.Total = rules.DropLowest(values)
	} else {
		out.Result.Total = rules.Sum(values)
	}

	r.logger.Debug("automatic roll",
		zap.Int("dice_count", input.DiceCount),
		zap.Int("die_type", input.DieType),
		zap.Ints("dice", values),
		zap.Int("total", out.Result.Total),
	)

	return out, nil
}
