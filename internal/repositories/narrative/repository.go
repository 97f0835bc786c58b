// Package narrative stores the campaign's story record: combat summaries
// and highlight reels the narrator reads back later
package narrative

//go:generate mockgen -destination=mock/mock_repository.go -package=narrativemock github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/narrative Repository

import (
	"context"
	"time"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
)

// Kind classifies a narrative entry
type Kind string

// Entry kinds
const (
	KindCombatSummary   Kind = "combat_summary"
	KindCombatHighlight Kind = "combat_highlight"
)

// DefaultListLimit bounds List when no limit is given
const DefaultListLimit = 50

// Entry is one item of the narrative log
type Entry struct {
	ID         int64
	CampaignID string
	Kind       Kind
	Title      string
	Body       string
	// Summary is set for combat summaries
	Summary   *entities.CombatSummary
	CreatedAt time.Time
}

// Repository defines the interface for the narrative log
type Repository interface {
	// Append stores an entry and returns it with ID and CreatedAt set
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	Append(ctx context.Context, input AppendInput) (*AppendOutput, error)

	// List returns the newest entries of a campaign, oldest first
	// Returns errors.InvalidArgument for empty campaign IDs
	// Returns errors.Internal for storage failures
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

// AppendInput defines the input for appending an entry
type AppendInput struct {
	Entry *Entry
}

// AppendOutput defines the output for appending an entry
type AppendOutput struct {
	Entry *Entry
}

// ListInput defines the input for listing entries
type ListInput struct {
	CampaignID string
	// Kind filters entries when set
	Kind  Kind
	Limit int
}

// ListOutput defines the output for listing entries
type ListOutput struct {
	Entries []*Entry
}

func validateEntry(e *Entry) error {
	if e == nil {
		return errors.InvalidArgument("entry is required")
	}
	vb := errors.NewValidationBuilder()
	if e.CampaignID == "" {
		vb.RequiredField("CampaignID")
	}
	if e.Kind == "" {
		vb.RequiredField("Kind")
	}
	if e.Title == "" {
		vb.RequiredField("Title")
	}
	return vb.Build()
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
