package dicesession

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	redisclient "github.com/HillPhelmuth/AgenticRpg-sub000/internal/redis"
)

const (
	// Key pattern: dice_session:{campaign_id}
	sessionKeyPrefix = "dice_session:"
	defaultTTL       = 6 * time.Hour
	defaultMaxRolls  = 500

	errCampaignIDEmpty = "campaign ID cannot be empty"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	// TTL is refreshed on every append; defaults to six hours
	TTL time.Duration
	// MaxRolls caps the session length; older rolls are trimmed
	MaxRolls int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.TTL < 0 {
		vb.Field("TTL", "cannot be negative")
	}
	if c.MaxRolls < 0 {
		vb.Field("MaxRolls", "cannot be negative")
	}
	return vb.Build()
}

type redisRepository struct {
	client   redisclient.Client
	ttl      time.Duration
	maxRolls int
}

// NewRedisRepository creates a new Redis repository for roll history
func NewRedisRepository(cfg *Config) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	r := &redisRepository{client: cfg.Client, ttl: cfg.TTL, maxRolls: cfg.MaxRolls}
	if r.ttl == 0 {
		r.ttl = defaultTTL
	}
	if r.maxRolls == 0 {
		r.maxRolls = defaultMaxRolls
	}
	return r, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

// Append pushes a roll onto the campaign's session and refreshes its TTL
func (r *redisRepository) Append(ctx context.Context, input AppendInput) (*AppendOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	rollJSON, err := json.Marshal(input.Roll)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal roll")
	}

	key := buildKey(input.CampaignID)
	var length *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		length = pipe.RPush(ctx, key, rollJSON)
		pipe.LTrim(ctx, key, int64(-r.maxRolls), -1)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to append roll to Redis")
	}

	count := int(length.Val())
	if count > r.maxRolls {
		count = r.maxRolls
	}
	return &AppendOutput{Count: count}, nil
}

// List returns the campaign's rolls oldest first
func (r *redisRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	start := int64(0)
	if input.Limit > 0 {
		start = int64(-input.Limit)
	}

	raw, err := r.client.LRange(ctx, buildKey(input.CampaignID), start, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list rolls from Redis")
	}

	rolls := make([]DiceRoll, 0, len(raw))
	for _, item := range raw {
		var roll DiceRoll
		if err := json.Unmarshal([]byte(item), &roll); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal roll")
		}
		rolls = append(rolls, roll)
	}

	return &ListOutput{Rolls: rolls}, nil
}

// Delete removes the campaign's session
func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	key := buildKey(input.CampaignID)
	var length *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		length = pipe.LLen(ctx, key)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete session from Redis")
	}

	return &DeleteOutput{RollsDeleted: int(length.Val())}, nil
}

func buildKey(campaignID string) string {
	return sessionKeyPrefix + campaignID
}
