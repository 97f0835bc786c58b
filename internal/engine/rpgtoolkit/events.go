package rpgtoolkit

import (
	"context"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"
)

// Combat event types published on the bus
const (
	EventCombatStarted    = "combat.started"
	EventInitiativeRolled = "combat.initiative_rolled"
	EventActionResolved   = "combat.action_resolved"
	EventCombatEnded      = "combat.ended"
)

// Context keys carried by combat events
const (
	KeyCampaignID  = "campaign_id"
	KeyEncounterID = "encounter_id"
	KeySummary     = "summary"
	KeyPayload     = "payload"
)

// CombatEventTypes lists every combat event type
var CombatEventTypes = []string{
	EventCombatStarted,
	EventInitiativeRolled,
	EventActionResolved,
	EventCombatEnded,
}

// CombatEvent describes a combat event before it is turned into an
// rpg-toolkit event
type CombatEvent struct {
	Type        string
	CampaignID  string
	EncounterID string
	Summary     string
	Source      core.Entity
	Target      core.Entity
	Payload     any
}

// Publish converts e into a game event and publishes it on bus. A nil bus
// is a no-op.
func Publish(ctx context.Context, bus events.EventBus, e CombatEvent) error {
	if bus == nil {
		return nil
	}
	event := events.NewGameEvent(e.Type, e.Source, e.Target)
	event.Context().Set(KeyCampaignID, e.CampaignID)
	event.Context().Set(KeyEncounterID, e.EncounterID)
	event.Context().Set(KeySummary, e.Summary)
	if e.Payload != nil {
		event.Context().Set(KeyPayload, e.Payload)
	}
	return bus.Publish(ctx, event)
}

// StringValue reads a string from an event context
func StringValue(event events.Event, key string) string {
	v, ok := event.Context().Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// PayloadValue returns the payload attached by Publish, if any
func PayloadValue(event events.Event) (any, bool) {
	return event.Context().Get(KeyPayload)
}
