package narrative

import (
	"context"
	"sync"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/clock"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu      sync.RWMutex
	clock   clock.Clock
	nextID  int64
	entries []Entry
}

// NewInMemory creates a new in-memory narrative log
func NewInMemory(c clock.Clock) *InMemoryRepository {
	if c == nil {
		c = clock.New()
	}
	return &InMemoryRepository{clock: c}
}

var _ Repository = (*InMemoryRepository)(nil)

// Append stores a copy of the entry
func (r *InMemoryRepository) Append(_ context.Context, input AppendInput) (*AppendOutput, error) {
	if err := validateEntry(input.Entry); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.nextID++
	stored := *input.Entry
	stored.ID = r.nextID
	stored.CreatedAt = r.clock.Now()
	r.entries = append(r.entries, stored)
	r.mu.Unlock()

	return &AppendOutput{Entry: &stored}, nil
}

// List returns up to Limit of the newest matching entries, oldest first
func (r *InMemoryRepository) List(_ context.Context, input ListInput) (*ListOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}
	limit := limitOrDefault(input.Limit)

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*Entry, 0)
	for i := len(r.entries) - 1; i >= 0 && len(matched) < limit; i-- {
		e := r.entries[i]
		if e.CampaignID != input.CampaignID || (input.Kind != "" && e.Kind != input.Kind) {
			continue
		}
		matched = append(matched, &e)
	}
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}

	return &ListOutput{Entries: matched}, nil
}
