package realtime

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/dice"
	redisclient "github.com/HillPhelmuth/AgenticRpg-sub000/internal/redis"
)

const (
	// Channel pattern: dice:requests:{campaign_id}
	requestChannelPrefix = "dice:requests:"
	// ResultsChannel carries roll submissions from every campaign
	ResultsChannel = "dice:results"
)

// BridgeConfig holds the configuration for the Redis bridge
type BridgeConfig struct {
	Client redisclient.Client
	Logger *zap.Logger
}

// Validate ensures all required dependencies are provided
func (c *BridgeConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	return vb.Build()
}

// Bridge relays roll traffic over Redis pub/sub so players connected to
// other processes can roll
type Bridge struct {
	client redisclient.Client
	logger *zap.Logger
}

var _ dice.Publisher = (*Bridge)(nil)

// NewBridge creates a Redis bridge
func NewBridge(cfg *BridgeConfig) (*Bridge, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	b := &Bridge{client: cfg.Client, logger: cfg.Logger}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b, nil
}

// RequestChannel returns the channel roll requests of a campaign go to
func RequestChannel(campaignID string) string {
	return requestChannelPrefix + campaignID
}

// PublishRollRequest publishes req as JSON on the campaign's channel
func (b *Bridge) PublishRollRequest(ctx context.Context, req *entities.RollRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return errors.Wrapf(err, "failed to encode roll request")
	}
	if err := b.client.Publish(ctx, RequestChannel(req.CampaignID), payload).Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to publish roll request to Redis")
	}
	return nil
}

// Run consumes roll submissions from ResultsChannel and hands them to f
// until ctx ends. Malformed messages are logged and skipped.
func (b *Bridge) Run(ctx context.Context, f Fulfiller) error {
	if f == nil {
		return errors.InvalidArgument("fulfiller is required")
	}
	sub := b.client.Subscribe(ctx, ResultsChannel)
	defer func() { _ = sub.Close() }()

	// Wait for the subscription to be confirmed so no result is missed
	if _, err := sub.Receive(ctx); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to subscribe to roll results")
	}
	b.logger.Info("listening for roll results", zap.String("channel", ResultsChannel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return errors.Unavailable("roll result subscription closed")
			}
			b.handle(ctx, f, msg.Payload)
		}
	}
}

func (b *Bridge) handle(ctx context.Context, f Fulfiller, payload string) {
	var sub entities.RollSubmission
	if err := json.Unmarshal([]byte(payload), &sub); err != nil || sub.WindowID == "" {
		b.logger.Warn("ignoring malformed roll result", zap.String("payload", payload))
		return
	}

	out, err := f.Fulfill(ctx, &dice.FulfillInput{WindowID: sub.WindowID, Total: sub.Total, Values: sub.Values})
	if err != nil {
		b.logger.Warn("roll result rejected",
			zap.String("window_id", sub.WindowID),
			zap.Error(err),
		)
		return
	}
	b.logger.Debug("roll result relayed",
		zap.String("window_id", sub.WindowID),
		zap.Bool("fulfilled", out.Fulfilled),
	)
}
