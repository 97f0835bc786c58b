package combat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/narrative"
)

// maxHighlights caps the moments kept in a reel
const maxHighlights = 5

type narrativeHighlights struct {
	narrative narrative.Repository
}

// NewNarrativeHighlights returns a HighlightGenerator that writes a text
// reel of the biggest moments of a combat to the narrative log. Media
// renderers can read it from there.
func NewNarrativeHighlights(repo narrative.Repository) (HighlightGenerator, error) {
	if repo == nil {
		return nil, errors.InvalidArgument("narrative repository is required")
	}
	return &narrativeHighlights{narrative: repo}, nil
}

// Generate picks criticals, finishing blows and the heaviest hits
func (h *narrativeHighlights) Generate(ctx context.Context, enc *entities.Encounter) error {
	if enc == nil {
		return errors.InvalidArgument("encounter is required")
	}

	moments := SelectHighlights(enc.Log(), maxHighlights)
	if len(moments) == 0 {
		return nil
	}

	lines := make([]string, len(moments))
	for i, m := range moments {
		lines[i] = fmt.Sprintf("Round %d: %s", m.Round, m.Description)
	}
	_, err := h.narrative.Append(ctx, narrative.AppendInput{Entry: &narrative.Entry{
		CampaignID: enc.CampaignID,
		Kind:       narrative.KindCombatHighlight,
		Title:      fmt.Sprintf("Highlights of combat %s", enc.ID),
		Body:       strings.Join(lines, "\n"),
	}})
	return err
}

// SelectHighlights ranks action entries and returns at most limit of them
// in log order
func SelectHighlights(log []entities.LogEntry, limit int) []entities.LogEntry {
	type scored struct {
		idx   int
		score int
	}
	var candidates []scored
	for i, e := range log {
		score := e.Damage
		if e.Critical {
			score += 100
		}
		if strings.Contains(e.Description, " is defeated") {
			score += 50
		}
		if score > 0 {
			candidates = append(candidates, scored{idx: i, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].idx < candidates[j].idx
	})

	out := make([]entities.LogEntry, len(candidates))
	for i, c := range candidates {
		out[i] = log[c.idx]
	}
	return out
}
