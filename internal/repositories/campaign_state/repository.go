// Package campaignstate is the state gateway: it loads and stores the
// whole CampaignState snapshot, last write wins.
package campaignstate

//go:generate mockgen -destination=mock/mock_repository.go -package=campaignstatemock github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/campaign_state Repository

import (
	"context"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
)

// Repository defines the storage interface for campaign state
type Repository interface {
	// Get retrieves the state of a campaign
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Update stores the state of a campaign, creating it if needed
	Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error)

	// Delete removes the state of a campaign
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

// GetInput defines the request for retrieving campaign state
type GetInput struct {
	CampaignID string
}

// GetOutput defines the response for retrieving campaign state
type GetOutput struct {
	State *entities.CampaignState
}

// UpdateInput defines the request for storing campaign state
type UpdateInput struct {
	State *entities.CampaignState
}

// UpdateOutput defines the response for storing campaign state
type UpdateOutput struct {
	State *entities.CampaignState
}

// DeleteInput defines the request for deleting campaign state
type DeleteInput struct {
	CampaignID string
}

// DeleteOutput defines the response for deleting campaign state
type DeleteOutput struct{}

func validateUpdate(input *UpdateInput) error {
	if input == nil || input.State == nil {
		return errors.InvalidArgument("state is required")
	}
	if input.State.CampaignID == "" {
		return errors.InvalidArgument("campaign ID is required")
	}
	return nil
}
