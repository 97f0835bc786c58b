package entities

// RollRequest is published to the real-time channel for every batch of
// roll windows. Automatic batches are published too so clients can show
// the roll.
type RollRequest struct {
	BatchID     string   `json:"batchId"`
	WindowIDs   []string `json:"windowIds"`
	CampaignID  string   `json:"campaignId"`
	PlayerID    string   `json:"playerId,omitempty"`
	DieType     int      `json:"dieType"`
	DiceCount   int      `json:"diceCount"`
	WindowCount int      `json:"windowCount"`
	Modifier    int      `json:"modifier"`
	Manual      bool     `json:"manual"`
	DropLowest  bool     `json:"dropLowest"`
	Purpose     string   `json:"purpose,omitempty"`
}

// RollResult is the value a roll window resolves to
type RollResult struct {
	Total  int   `json:"total"`
	Values []int `json:"values"`
}

// RollSubmission is an inbound result for one window
type RollSubmission struct {
	WindowID string `json:"windowId"`
	Total    int    `json:"total"`
	Values   []int  `json:"values"`
}
