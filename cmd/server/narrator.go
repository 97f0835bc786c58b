package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/combat"
)

// logNarrator records the hand-off. The narrating agent reads the archived
// summary from the narrative log on its next turn.
type logNarrator struct {
	logger *zap.Logger
}

var _ combat.Narrator = (*logNarrator)(nil)

func (n *logNarrator) HandOff(_ context.Context, input *combat.HandOffInput) error {
	fields := []zap.Field{zap.String("campaign_id", input.CampaignID)}
	if s := input.Summary; s != nil {
		fields = append(fields,
			zap.String("encounter_id", s.EncounterID),
			zap.String("victor", string(s.Victor)),
			zap.Int("rounds", s.Rounds),
			zap.Int("gold_awarded", s.GoldAwarded),
		)
	}
	n.logger.Info("combat handed to narrator", fields...)
	return nil
}
