// Package realtime carries roll requests out to players and roll results
// back to the dice correlator. A WebSocket hub serves browsers directly;
// a Redis pub/sub bridge serves other processes.
package realtime

import (
	"encoding/json"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
)

// Message types on the wire
const (
	TypeRollRequest = "roll_request"
	TypeRollResult  = "roll_result"
	TypeRollAck     = "roll_ack"
	TypeCombatEvent = "combat_event"
	TypeError       = "error"
)

// Envelope wraps every WebSocket message
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RollAck tells the submitting client whether its roll was taken
type RollAck struct {
	WindowID  string `json:"windowId"`
	Fulfilled bool   `json:"fulfilled"`
	Total     int    `json:"total"`
}

// CombatEventMessage mirrors a combat event for clients
type CombatEventMessage struct {
	Type        string `json:"type"`
	CampaignID  string `json:"campaignId"`
	EncounterID string `json:"encounterId,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

// ErrorMessage reports a rejected client message
type ErrorMessage struct {
	Message string `json:"message"`
}

func encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

// decodeSubmission reads a roll result payload
func decodeSubmission(raw json.RawMessage) (*entities.RollSubmission, error) {
	var sub entities.RollSubmission
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
