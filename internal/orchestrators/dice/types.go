package dice

import (
	"context"
	"time"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
)

// Publisher delivers roll requests to the real-time channel
type Publisher interface {
	PublishRollRequest(ctx context.Context, req *entities.RollRequest) error
}

// PublisherFunc adapts a function to Publisher
type PublisherFunc func(ctx context.Context, req *entities.RollRequest) error

// PublishRollRequest calls f
func (f PublisherFunc) PublishRollRequest(ctx context.Context, req *entities.RollRequest) error {
	return f(ctx, req)
}

// RequestBatchInput describes a batch of roll windows
type RequestBatchInput struct {
	CampaignID string
	// PlayerID routes manual windows to one player; empty broadcasts
	PlayerID    string
	Purpose     string
	DieType     int
	DiceCount   int
	WindowCount int
	Modifier    int
	Manual      bool
	DropLowest  bool
	// Timeout overrides the configured window timeout when positive
	Timeout time.Duration
}

// RequestBatchOutput returns the futures of the batch in window order
type RequestBatchOutput struct {
	BatchID string
	Windows []*Window
}

// FulfillInput is a result submitted for one window. Total is the sum of
// the kept dice without any modifier.
type FulfillInput struct {
	WindowID string
	Total    int
	Values   []int
	// Scope is the submitter's identity. Nil means a trusted server-side
	// channel and skips the ownership check.
	Scope *Submitter
}

// Submitter identifies who sent a result
type Submitter struct {
	CampaignID string
	PlayerID   string
}

// FulfillOutput reports whether a pending window was resolved
type FulfillOutput struct {
	// Fulfilled is false for unknown, expired or already fulfilled windows
	Fulfilled bool
	Result    entities.RollResult
}

// AwaitInput lists the windows to wait for
type AwaitInput struct {
	Windows []*Window
}

// AwaitOutput holds the results in the same order as the input windows
type AwaitOutput struct {
	Results []entities.RollResult
}

// RollInput requests windows and waits for all of them
type RollInput = RequestBatchInput

// RollOutput is the result of Roll
type RollOutput struct {
	BatchID string
	Results []entities.RollResult
}
