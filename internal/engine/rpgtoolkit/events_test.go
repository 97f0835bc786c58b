package rpgtoolkit_test

import (
	"context"
	"testing"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine/rpgtoolkit"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
)

func TestPublishCombatEvent(t *testing.T) {
	bus := events.NewBus()

	var received events.Event
	bus.SubscribeFunc(rpgtoolkit.EventActionResolved, 0, func(_ context.Context, e events.Event) error {
		received = e
		return nil
	})

	attacker := &entities.Combatant{ID: "hero", Side: entities.SideParty}
	target := &entities.Combatant{ID: "gob", Side: entities.SideEnemy}
	err := rpgtoolkit.Publish(context.Background(), bus, rpgtoolkit.CombatEvent{
		Type:        rpgtoolkit.EventActionResolved,
		CampaignID:  "camp-1",
		EncounterID: "enc-1",
		Summary:     "Aria hits Goblin for 7",
		Source:      attacker,
		Target:      target,
		Payload:     map[string]int{"damage": 7},
	})
	require.NoError(t, err)
	require.NotNil(t, received)

	assert.Equal(t, rpgtoolkit.EventActionResolved, received.Type())
	assert.Equal(t, "camp-1", rpgtoolkit.StringValue(received, rpgtoolkit.KeyCampaignID))
	assert.Equal(t, "Aria hits Goblin for 7", rpgtoolkit.StringValue(received, rpgtoolkit.KeySummary))
	assert.Equal(t, "hero", received.Source().GetID())

	payload, ok := rpgtoolkit.PayloadValue(received)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"damage": 7}, payload)
}

func TestPublishNilBus(t *testing.T) {
	assert.NoError(t, rpgtoolkit.Publish(context.Background(), nil, rpgtoolkit.CombatEvent{Type: rpgtoolkit.EventCombatEnded}))
}
