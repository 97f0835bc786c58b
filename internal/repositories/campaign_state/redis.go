package campaignstate

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/clock"
	redisclient "github.com/HillPhelmuth/AgenticRpg-sub000/internal/redis"
)

const (
	// Key pattern: campaign_state:{campaign_id}
	stateKeyPrefix = "campaign_state:"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
	// TTL expires idle campaigns; zero keeps them forever
	TTL time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.TTL < 0 {
		vb.Field("TTL", "cannot be negative")
	}
	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	ttl    time.Duration
}

// NewRedisRepository creates a new Redis repository for campaign state
func NewRedisRepository(cfg *Config) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
		ttl:    cfg.TTL,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

// Get retrieves the campaign state
func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}

	stateJSON, err := r.client.Get(ctx, buildKey(input.CampaignID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("campaign %s not found", input.CampaignID)
		}
		return nil, errors.Wrapf(err, "failed to get campaign state from Redis")
	}

	var state entities.CampaignState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal campaign state")
	}

	return &GetOutput{State: &state}, nil
}

// Update serializes the whole snapshot and overwrites the stored value
func (r *redisRepository) Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error) {
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	stored := input.State.Clone()
	stored.UpdatedAt = r.clock.Now()

	stateJSON, err := json.Marshal(stored)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal campaign state")
	}

	if err := r.client.Set(ctx, buildKey(stored.CampaignID), stateJSON, r.ttl).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to store campaign state in Redis")
	}

	return &UpdateOutput{State: stored}, nil
}

// Delete removes the campaign state
func (r *redisRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil || input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}

	removed, err := r.client.Del(ctx, buildKey(input.CampaignID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete campaign state from Redis")
	}
	if removed == 0 {
		return nil, errors.NotFoundf("campaign %s not found", input.CampaignID)
	}

	return &DeleteOutput{}, nil
}

func buildKey(campaignID string) string {
	return stateKeyPrefix + campaignID
}
