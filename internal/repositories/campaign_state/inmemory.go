package campaignstate

import (
	"context"
	"sync"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/clock"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.RWMutex
	clock clock.Clock
	store map[string]*entities.CampaignState
}

// NewInMemory creates a new in-memory repository
func NewInMemory(c clock.Clock) *InMemoryRepository {
	if c == nil {
		c = clock.New()
	}
	return &InMemoryRepository{
		clock: c,
		store: make(map[string]*entities.CampaignState),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Get retrieves a copy of the campaign state
func (r *InMemoryRepository) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.store[input.CampaignID]
	if !exists {
		return nil, errors.NotFoundf("campaign %s not found", input.CampaignID)
	}

	// Return a copy to prevent external modification
	return &GetOutput{State: state.Clone()}, nil
}

// Update stores a copy of the campaign state
func (r *InMemoryRepository) Update(_ context.Context, input *UpdateInput) (*UpdateOutput, error) {
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	stored := input.State.Clone()
	stored.UpdatedAt = r.clock.Now()

	r.mu.Lock()
	r.store[stored.CampaignID] = stored
	r.mu.Unlock()

	return &UpdateOutput{State: stored.Clone()}, nil
}

// Delete removes the campaign state
func (r *InMemoryRepository) Delete(_ context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil || input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[input.CampaignID]; !exists {
		return nil, errors.NotFoundf("campaign %s not found", input.CampaignID)
	}
	delete(r.store, input.CampaignID)

	return &DeleteOutput{}, nil
}
