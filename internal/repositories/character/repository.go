// Package character provides the ledger that carries hit points and gold
// of player characters between combats
package character

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/character Repository

import (
	"context"
	"time"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
)

// Record is the persisted state of one character outside of combat
type Record struct {
	ID         string
	PlayerID   string
	CampaignID string
	Name       string
	MaxHP      int
	CurrentHP  int
	Gold       int
	UpdatedAt  time.Time
}

// Repository defines the interface for the character ledger
type Repository interface {
	// Get retrieves a character by ID
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if character doesn't exist
	// Returns errors.Internal for storage failures
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Upsert writes the full record, replacing any existing one
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	Upsert(ctx context.Context, input UpsertInput) (*UpsertOutput, error)

	// ApplyCombatResult stores the hit points a character ended combat with
	// and adds the gold share. Unknown characters are created.
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	ApplyCombatResult(ctx context.Context, input ApplyCombatResultInput) (*ApplyCombatResultOutput, error)

	// ListByCampaign retrieves all characters of a campaign ordered by ID
	// Returns errors.InvalidArgument for empty campaign IDs
	// Returns errors.Internal for storage failures
	ListByCampaign(ctx context.Context, input ListByCampaignInput) (*ListByCampaignOutput, error)
}

// GetInput defines the input for getting a character
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a character
type GetOutput struct {
	Record *Record
}

// UpsertInput defines the input for writing a character
type UpsertInput struct {
	Record *Record
}

// UpsertOutput defines the output for writing a character
type UpsertOutput struct {
	Record *Record
}

// ApplyCombatResultInput carries one survivor's outcome
type ApplyCombatResultInput struct {
	CharacterID string
	PlayerID    string
	CampaignID  string
	Name        string
	MaxHP       int
	CurrentHP   int
	GoldDelta   int
}

// ApplyCombatResultOutput returns the record after the update
type ApplyCombatResultOutput struct {
	Record *Record
}

// ListByCampaignInput defines the input for listing a campaign's characters
type ListByCampaignInput struct {
	CampaignID string
}

// ListByCampaignOutput defines the output for listing a campaign's characters
type ListByCampaignOutput struct {
	Records []*Record
}

func validateRecord(r *Record) error {
	if r == nil {
		return errors.InvalidArgument("record is required")
	}
	vb := errors.NewValidationBuilder()
	if r.ID == "" {
		vb.RequiredField("ID")
	}
	if r.Name == "" {
		vb.RequiredField("Name")
	}
	if r.MaxHP <= 0 {
		vb.Field("MaxHP", "must be positive")
	}
	if r.CurrentHP < 0 || r.CurrentHP > r.MaxHP {
		vb.Fieldf("CurrentHP", "must be between 0 and %d", r.MaxHP)
	}
	if r.Gold < 0 {
		vb.Field("Gold", "cannot be negative")
	}
	return vb.Build()
}

func validateCombatResult(input ApplyCombatResultInput) error {
	vb := errors.NewValidationBuilder()
	if input.CharacterID == "" {
		vb.RequiredField("CharacterID")
	}
	if input.MaxHP <= 0 {
		vb.Field("MaxHP", "must be positive")
	}
	if input.CurrentHP < 0 || input.CurrentHP > input.MaxHP {
		vb.Fieldf("CurrentHP", "must be between 0 and %d", input.MaxHP)
	}
	if input.GoldDelta < 0 {
		vb.Field("GoldDelta", "cannot be negative")
	}
	return vb.Build()
}
