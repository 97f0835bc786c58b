package character

import (
	"context"
	"sort"
	"sync"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/clock"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu      sync.RWMutex
	clock   clock.Clock
	records map[string]Record
}

// NewInMemory creates a new in-memory ledger
func NewInMemory(c clock.Clock) *InMemoryRepository {
	if c == nil {
		c = clock.New()
	}
	return &InMemoryRepository{
		clock:   c,
		records: make(map[string]Record),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Get retrieves a character by ID
func (r *InMemoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.records[input.ID]
	if !exists {
		return nil, errors.NotFoundf("character %s not found", input.ID)
	}
	return &GetOutput{Record: &rec}, nil
}

// Upsert writes the full record
func (r *InMemoryRepository) Upsert(_ context.Context, input UpsertInput) (*UpsertOutput, error) {
	if err := validateRecord(input.Record); err != nil {
		return nil, err
	}

	rec := *input.Record
	rec.UpdatedAt = r.clock.Now()

	r.mu.Lock()
	r.records[rec.ID] = rec
	r.mu.Unlock()

	return &UpsertOutput{Record: &rec}, nil
}

// ApplyCombatResult stores ending hit points and adds gold
func (r *InMemoryRepository) ApplyCombatResult(_ context.Context, input ApplyCombatResultInput) (*ApplyCombatResultOutput, error) {
	if err := validateCombatResult(input); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.records[input.CharacterID]
	if !exists {
		rec = Record{
			ID:         input.CharacterID,
			PlayerID:   input.PlayerID,
			CampaignID: input.CampaignID,
			Name:       input.Name,
		}
	}
	rec.MaxHP = input.MaxHP
	rec.CurrentHP = input.CurrentHP
	rec.Gold += input.GoldDelta
	rec.UpdatedAt = r.clock.Now()
	r.records[rec.ID] = rec

	return &ApplyCombatResultOutput{Record: &rec}, nil
}

// ListByCampaign retrieves a campaign's characters ordered by ID
func (r *InMemoryRepository) ListByCampaign(_ context.Context, input ListByCampaignInput) (*ListByCampaignOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Record, 0)
	for _, rec := range r.records {
		if rec.CampaignID == input.CampaignID {
			rec := rec
			out = append(out, &rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return &ListByCampaignOutput{Records: out}, nil
}
