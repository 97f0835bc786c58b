package combat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine/rpgtoolkit"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine/rules"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	campaignstate "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/campaign_state"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/character"
	dicesession "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/dice_session"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/narrative"
)

// highlightJob names the supervised job that renders a combat reel
const highlightJob = "combat_highlight"

// InitiateCombat starts an encounter in a campaign
func (o *orchestrator) InitiateCombat(ctx context.Context, input *InitiateCombatInput) (out *InitiateCombatOutput, err error) {
	defer o.guard("InitiateCombat", &err)

	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}

	unlock := o.locks.Lock(input.CampaignID)
	defer unlock()

	state, err := o.load(ctx, input.CampaignID)
	switch {
	case errors.IsNotFound(err):
		state = &entities.CampaignState{CampaignID: input.CampaignID}
	case err != nil:
		return nil, err
	}
	if state.Encounter.IsActive() {
		return nil, errors.InvalidStatef("campaign %s already has an active combat", input.CampaignID)
	}

	party := make([]*entities.Combatant, 0, len(input.Party))
	for _, member := range input.Party {
		c, err := o.hydrate(ctx, member)
		if err != nil {
			return nil, err
		}
		party = append(party, c)
	}
	enemies := make([]*entities.Combatant, 0, len(input.Enemies))
	for _, enemy := range input.Enemies {
		enemies = append(enemies, enemy.Clone())
	}

	now := o.clock.Now()
	enc, err := entities.NewEncounter(o.idGen.Generate(), input.CampaignID, input.Terrain, party, enemies, now)
	if err != nil {
		return nil, errors.InvalidArgumentf("invalid encounter: %v", err)
	}

	names := func(cs []*entities.Combatant) string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Name
		}
		return strings.Join(out, ", ")
	}
	message := fmt.Sprintf("Combat begins: %s against %s", names(enc.Party), names(enc.Enemies))
	if enc.Terrain != "" {
		message += " on " + enc.Terrain
	}
	enc.AppendLog(entities.LogEntry{
		Round:       enc.Round,
		Kind:        entities.ActionCombatStart,
		Description: message,
		At:          now,
	})

	state.Encounter = enc
	if err := o.persist(ctx, state); err != nil {
		return nil, err
	}

	o.logger.Info("combat started",
		zap.String("campaign_id", enc.CampaignID),
		zap.String("encounter_id", enc.ID),
		zap.Int("party", len(enc.Party)),
		zap.Int("enemies", len(enc.Enemies)),
	)
	o.publish(ctx, rpgtoolkit.EventCombatStarted, enc, nil, nil, message, nil)

	return &InitiateCombatOutput{Encounter: enc.Clone(), Message: message}, nil
}

// hydrate copies a party member and fills in hit points and gold from the
// character ledger when the caller left MaxHP unset
func (o *orchestrator) hydrate(ctx context.Context, member *entities.Combatant) (*entities.Combatant, error) {
	if member == nil {
		return nil, errors.InvalidArgument("party member is required")
	}
	c := member.Clone()
	if c.MaxHP > 0 {
		return c, nil
	}

	rec, err := o.characters.Get(ctx, character.GetInput{ID: c.ID})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.InvalidArgumentf("party member %s has no hit points and no character record", c.ID)
		}
		return nil, errors.Wrapf(err, "failed to load character %s", c.ID)
	}
	c.MaxHP = rec.Record.MaxHP
	c.CurrentHP = rec.Record.CurrentHP
	c.Gold = rec.Record.Gold
	if c.Name == "" {
		c.Name = rec.Record.Name
	}
	if c.PlayerID == "" {
		c.PlayerID = rec.Record.PlayerID
	}
	return c, nil
}

// DetermineInitiative rolls a d20 for every combatant and installs the turn
// order
func (o *orchestrator) DetermineInitiative(ctx context.Context, input *DetermineInitiativeInput) (out *DetermineInitiativeOutput, err error) {
	defer o.guard("DetermineInitiative", &err)

	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	enc, err := o.mutate(ctx, input.CampaignID, func(enc *entities.Encounter) error {
		roster, err := initiativeRoster(enc, input.Combatants)
		if err != nil {
			return err
		}

		entries := make([]rules.InitiativeEntry, 0, len(roster))
		for _, c := range roster {
			res, err := o.rollOne(ctx, enc.CampaignID, c, purposeFor("initiative", c), 1, rules.D20, c.InitiativeModifier)
			if err != nil {
				return err
			}
			entries = append(entries, rules.InitiativeEntry{
				CombatantID: c.ID,
				Roll:        res.Total,
				Modifier:    c.InitiativeModifier,
				Total:       rules.RollInitiative(c.InitiativeModifier, res.Total),
			})
		}

		ordered := rules.OrderByInitiative(entries)
		order := make([]string, len(ordered))
		totals := make(map[string]int, len(ordered))
		out = &DetermineInitiativeOutput{Order: make([]InitiativeRoll, len(ordered))}
		parts := make([]string, len(ordered))
		for i, e := range ordered {
			c, _ := enc.Find(e.CombatantID)
			order[i] = e.CombatantID
			totals[e.CombatantID] = e.Total
			out.Order[i] = InitiativeRoll{
				CombatantID: e.CombatantID,
				Name:        c.Name,
				Roll:        e.Roll,
				Modifier:    e.Modifier,
				Total:       e.Total,
			}
			parts[i] = fmt.Sprintf("%s (%d)", c.Name, e.Total)
		}

		if err := enc.SetInitiative(order, totals); err != nil {
			return errors.InvalidArgumentf("invalid initiative order: %v", err)
		}

		out.Message = "Initiative order: " + strings.Join(parts, ", ")
		enc.AppendLog(entities.LogEntry{
			Round:       enc.Round,
			Kind:        entities.ActionInitiative,
			Description: out.Message,
			At:          o.clock.Now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("initiative determined",
		zap.String("campaign_id", enc.CampaignID),
		zap.Object("result", out),
	)
	o.publish(ctx, rpgtoolkit.EventInitiativeRolled, enc, nil, nil, out.Message, out)

	return out, nil
}

// initiativeRoster resolves refs in order and checks that they name every
// combatant exactly once. Empty refs mean every combatant in roster order.
func initiativeRoster(enc *entities.Encounter, refs []string) ([]*entities.Combatant, error) {
	all := enc.Combatants()
	if len(refs) == 0 {
		return all, nil
	}

	roster := make([]*entities.Combatant, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		c, err := find(enc, ref, "")
		if err != nil {
			return nil, err
		}
		if seen[c.ID] {
			return nil, errors.InvalidArgumentf("%s is listed twice for initiative", c.Name)
		}
		seen[c.ID] = true
		roster = append(roster, c)
	}
	for _, c := range all {
		if !seen[c.ID] {
			return nil, errors.InvalidArgumentf("%s is missing from the initiative list", c.Name)
		}
	}
	return roster, nil
}

// EndCombat validates the victor, pays out gold and detaches the encounter
func (o *orchestrator) EndCombat(ctx context.Context, input *EndCombatInput) (out *EndCombatOutput, err error) {
	defer o.guard("EndCombat", &err)

	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	victor, err := entities.ParseVictor(string(input.Victor))
	if err != nil {
		return nil, errors.InvalidArgumentf("invalid victor: %v", err)
	}
	if input.GoldReward < 0 {
		return nil, errors.InvalidArgument("gold reward cannot be negative")
	}
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}

	unlock := o.locks.Lock(input.CampaignID)
	defer unlock()

	state, err := o.load(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}
	enc := state.Encounter
	if !enc.IsActive() {
		return nil, errors.InvalidStatef("no active combat in campaign %s", input.CampaignID)
	}
	if err := enc.CanEnd(victor); err != nil {
		return nil, errors.InvalidStatef("cannot end combat with victor %s: %v", victor, err)
	}

	now := o.clock.Now()
	summary := &entities.CombatSummary{
		EncounterID: enc.ID,
		CampaignID:  enc.CampaignID,
		Victor:      victor,
		Rounds:      enc.Round,
		Actions:     len(enc.CombatLog),
		GoldAwarded: input.GoldReward,
		GoldShares:  SplitGold(input.GoldReward, enc.Party),
		Notes:       input.Notes,
		EndedAt:     now,
	}
	for _, c := range enc.Party {
		if c.IsDefeated() {
			summary.Fallen = append(summary.Fallen, c.Name)
		} else {
			summary.Survivors = append(summary.Survivors, c.Name)
		}
	}

	for _, c := range enc.Party {
		c.Gold += summary.GoldShares[c.ID]
	}
	enc.End(now)
	snapshot := enc.Clone()
	state.Encounter = nil
	if err := o.persist(ctx, state); err != nil {
		return nil, err
	}

	// the encounter is closed; later write failures are reported, not undone
	unrecorded := o.recordOutcome(ctx, snapshot, summary)

	out = &EndCombatOutput{Summary: summary, Message: describeSummary(summary), Unrecorded: unrecorded}
	o.logger.Info("combat ended",
		zap.String("campaign_id", snapshot.CampaignID),
		zap.Object("result", out),
	)
	o.publish(ctx, rpgtoolkit.EventCombatEnded, snapshot, nil, nil, out.Message, summary)

	if o.narrator != nil {
		if err := o.narrator.HandOff(ctx, &HandOffInput{CampaignID: snapshot.CampaignID, Summary: summary}); err != nil {
			o.logger.Warn("narrator hand-off failed",
				zap.String("campaign_id", snapshot.CampaignID),
				zap.Error(err),
			)
		}
	}

	if o.highlights != nil {
		highlights := o.highlights
		if err := o.jobs.Submit(ctx, highlightJob, func(ctx context.Context) error {
			return highlights.Generate(ctx, snapshot)
		}); err != nil {
			o.logger.Warn("highlight job not scheduled",
				zap.String("campaign_id", snapshot.CampaignID),
				zap.Error(err),
			)
		}
	}

	return out, nil
}

// recordOutcome archives the summary and writes every party member's HP
// and gold share to the ledger. It returns the names of members whose
// ledger write failed.
func (o *orchestrator) recordOutcome(ctx context.Context, enc *entities.Encounter, summary *entities.CombatSummary) []string {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.settings.PersistTimeout)
	defer cancel()

	if _, err := o.narrative.Append(ctx, narrative.AppendInput{Entry: &narrative.Entry{
		CampaignID: enc.CampaignID,
		Kind:       narrative.KindCombatSummary,
		Title:      fmt.Sprintf("Combat %s: %s", enc.ID, summary.Victor),
		Body:       describeSummary(summary),
		Summary:    summary,
	}}); err != nil {
		o.logger.Error("failed to archive combat summary",
			zap.String("campaign_id", enc.CampaignID),
			zap.String("encounter_id", enc.ID),
			zap.Error(err),
		)
	}

	var unrecorded []string
	for _, c := range enc.Party {
		share := summary.GoldShares[c.ID]
		if _, err := o.characters.ApplyCombatResult(ctx, character.ApplyCombatResultInput{
			CharacterID: c.ID,
			PlayerID:    c.PlayerID,
			CampaignID:  enc.CampaignID,
			Name:        c.Name,
			MaxHP:       c.MaxHP,
			CurrentHP:   c.CurrentHP,
			GoldDelta:   share,
		}); err != nil {
			o.logger.Error("failed to record combat result",
				zap.String("campaign_id", enc.CampaignID),
				zap.String("encounter_id", enc.ID),
				zap.String("character_id", c.ID),
				zap.Int("gold_share", share),
				zap.Error(err),
			)
			unrecorded = append(unrecorded, c.Name)
		}
	}
	return unrecorded
}

func describeSummary(s *entities.CombatSummary) string {
	var b strings.Builder
	switch s.Victor {
	case entities.VictorParty:
		b.WriteString("The party is victorious")
	case entities.VictorEnemies:
		b.WriteString("The party has been defeated")
	default:
		b.WriteString("The combat ends in a draw")
	}
	fmt.Fprintf(&b, " after %d rounds.", s.Rounds)
	if s.GoldAwarded > 0 {
		fmt.Fprintf(&b, " %d gold is shared among the party.", s.GoldAwarded)
	}
	if len(s.Fallen) > 0 {
		fmt.Fprintf(&b, " Fallen: %s.", strings.Join(s.Fallen, ", "))
	}
	return b.String()
}

// GetCombatState returns a snapshot of the campaign's encounter
func (o *orchestrator) GetCombatState(ctx context.Context, input *GetCombatStateInput) (out *GetCombatStateOutput, err error) {
	defer o.guard("GetCombatState", &err)

	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	got, err := o.states.Get(ctx, &campaignstate.GetInput{CampaignID: input.CampaignID})
	if err != nil {
		return nil, err
	}

	enc := got.State.Encounter
	if !enc.IsActive() {
		return &GetCombatStateOutput{}, nil
	}
	enc = enc.Clone()
	return &GetCombatStateOutput{
		InCombat:  true,
		Encounter: enc,
		Active:    enc.ActiveCombatant(),
	}, nil
}

// GetRollHistory returns the campaign's most recent resolved rolls
func (o *orchestrator) GetRollHistory(ctx context.Context, input *GetRollHistoryInput) (out *GetRollHistoryOutput, err error) {
	defer o.guard("GetRollHistory", &err)

	if input == nil || input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}
	if o.history == nil {
		return nil, errors.Unavailable("roll history is not configured")
	}
	if input.Limit < 0 {
		return nil, errors.InvalidArgument("limit cannot be negative")
	}

	got, err := o.history.List(ctx, dicesession.ListInput{CampaignID: input.CampaignID, Limit: input.Limit})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list roll history")
	}
	return &GetRollHistoryOutput{Rolls: got.Rolls}, nil
}

// publish sends a combat event on the bus. Bus failures never fail the
// action that already committed.
func (o *orchestrator) publish(ctx context.Context, eventType string, enc *entities.Encounter, source, target *entities.Combatant, summary string, payload any) {
	if o.bus == nil {
		return
	}
	event := rpgtoolkit.CombatEvent{
		Type:        eventType,
		CampaignID:  enc.CampaignID,
		EncounterID: enc.ID,
		Summary:     summary,
		Payload:     payload,
	}
	if source != nil {
		event.Source = source
	}
	if target != nil {
		event.Target = target
	}
	if err := rpgtoolkit.Publish(ctx, o.bus, event); err != nil {
		o.logger.Warn("failed to publish combat event",
			zap.String("type", eventType),
			zap.String("campaign_id", enc.CampaignID),
			zap.Error(err),
		)
	}
}
