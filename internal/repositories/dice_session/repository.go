// Package dicesession stores the resolved rolls of a combat so the
// narrator and clients can replay how an encounter went.
package dicesession

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=dicesessionmock github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/dice_session Repository

// Source tells who produced a roll
type Source string

// Roll sources
const (
	SourcePlayer   Source = "player"
	SourceAuto     Source = "auto"
	SourceFallback Source = "timeout_fallback"
)

// DiceRoll is one resolved roll window
type DiceRoll struct {
	WindowID string    `json:"window_id"`
	BatchID  string    `json:"batch_id"`
	PlayerID string    `json:"player_id,omitempty"`
	Purpose  string    `json:"purpose,omitempty"`
	Notation string    `json:"notation"`
	Dice     []int     `json:"dice,omitempty"`
	Total    int       `json:"total"`
	Source   Source    `json:"source"`
	RolledAt time.Time `json:"rolled_at"`
}

// AppendInput contains a roll to record for a campaign
type AppendInput struct {
	CampaignID string
	Roll       DiceRoll
}

// AppendOutput contains the session length after the append
type AppendOutput struct {
	Count int
}

// ListInput selects the rolls of a campaign
type ListInput struct {
	CampaignID string
	// Limit returns only the most recent rolls when positive
	Limit int
}

// ListOutput contains rolls oldest first
type ListOutput struct {
	Rolls []DiceRoll
}

// DeleteInput identifies the session to clear
type DeleteInput struct {
	CampaignID string
}

// DeleteOutput contains the number of rolls removed
type DeleteOutput struct {
	RollsDeleted int
}

// Repository defines the interface for roll history storage
type Repository interface {
	Append(ctx context.Context, input AppendInput) (*AppendOutput, error)
	List(ctx context.Context, input ListInput) (*ListOutput, error)
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}
