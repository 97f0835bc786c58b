// Package engine is the seam between the combat core and the dice that
// drive it. Rules arithmetic lives in engine/rules; automatic rolling is
// provided by engine/rpgtoolkit.
package engine

//go:generate mockgen -destination=mock/mock_roller.go -package=enginemock github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine Roller

import (
	"context"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
)

// Roller produces dice results without human input. It serves NPC turns
// and windows whose human roll timed out.
type Roller interface {
	Roll(ctx context.Context, input *RollInput) (*RollOutput, error)
}

// RollInput describes one roll window's dice
type RollInput struct {
	DiceCount  int
	DieType    int
	DropLowest bool
}

// RollOutput carries the rolled result
type RollOutput struct {
	Result entities.RollResult
}
