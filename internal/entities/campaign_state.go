package entities

import "time"

// CampaignState is the unit the state gateway stores. The orchestrator
// always works on a copy and writes it back whole.
type CampaignState struct {
	CampaignID string     `json:"campaign_id"`
	Encounter  *Encounter `json:"encounter,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Clone returns a deep copy
func (s *CampaignState) Clone() *CampaignState {
	if s == nil {
		return nil
	}
	out := *s
	out.Encounter = s.Encounter.Clone()
	return &out
}

// CombatSummary is archived to the narrative log when a combat ends
type CombatSummary struct {
	EncounterID string         `json:"encounter_id"`
	CampaignID  string         `json:"campaign_id"`
	Victor      Victor         `json:"victor"`
	Rounds      int            `json:"rounds"`
	Actions     int            `json:"actions"`
	GoldAwarded int            `json:"gold_awarded"`
	GoldShares  map[string]int `json:"gold_shares,omitempty"`
	Survivors   []string       `json:"survivors,omitempty"`
	Fallen      []string       `json:"fallen,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	EndedAt     time.Time      `json:"ended_at"`
}
