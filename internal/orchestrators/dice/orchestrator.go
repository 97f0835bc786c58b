// Package dice correlates roll requests with roll results that arrive over
// a separate real-time channel. Each requested window is a one-shot future
// keyed by a correlation id; rule evaluation blocks on the future until a
// player, the automatic roller or the timeout resolves it.
package dice

//go:generate mockgen -destination=mock/mock_service.go -package=dicemock github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/dice Service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine/rules"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/clock"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/idgen"
	dicesession "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/dice_session"
)

const (
	// DefaultWindowTimeout bounds how long a manual window waits for a player
	DefaultWindowTimeout = 90 * time.Second

	maxDiceCount   = 100
	maxWindowCount = 10
	historyTimeout = 2 * time.Second
)

// Service defines the interface for roll correlation
type Service interface {
	// RequestBatch registers windows, publishes one request and returns
	// the futures
	RequestBatch(ctx context.Context, input *RequestBatchInput) (*RequestBatchOutput, error)

	// Fulfill resolves a pending window. Unknown or repeated ids are a
	// no-op.
	Fulfill(ctx context.Context, input *FulfillInput) (*FulfillOutput, error)

	// Await waits for every window and returns results in window order
	Await(ctx context.Context, input *AwaitInput) (*AwaitOutput, error)

	// Roll is RequestBatch followed by Await
	Roll(ctx context.Context, input *RollInput) (*RollOutput, error)

	// Pending reports the number of unresolved windows
	Pending() int
}

// Config holds the dependencies for the dice correlator
type Config struct {
	Publisher   Publisher
	Roller      engine.Roller
	IDGenerator idgen.Generator
	Clock       clock.Clock
	Logger      *zap.Logger
	// RollHistory records resolved windows; optional
	RollHistory dicesession.Repository

	WindowTimeout     time.Duration
	FallbackOnTimeout bool
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Publisher == nil {
		vb.RequiredField("Publisher")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.WindowTimeout < 0 {
		vb.Field("WindowTimeout", "cannot be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	publisher Publisher
	roller    engine.Roller
	idGen     idgen.Generator
	clock     clock.Clock
	logger    *zap.Logger
	history   dicesession.Repository

	timeout  time.Duration
	fallback bool

	mu      sync.Mutex
	pending map[string]*Window
}

// NewOrchestrator creates a new dice correlator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		publisher: cfg.Publisher,
		roller:    cfg.Roller,
		idGen:     cfg.IDGenerator,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		history:   cfg.RollHistory,
		timeout:   cfg.WindowTimeout,
		fallback:  cfg.FallbackOnTimeout,
		pending:   make(map[string]*Window),
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.timeout == 0 {
		o.timeout = DefaultWindowTimeout
	}
	return o, nil
}

func validateBatch(input *RequestBatchInput) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("CampaignID", input.CampaignID, vb)
	if !rules.IsValidDie(input.DieType) {
		vb.Fieldf("DieType", "must be one of %v", rules.ValidDieTypes)
	}
	errors.ValidateRange("DiceCount", input.DiceCount, 1, maxDiceCount, vb)
	errors.ValidateRange("WindowCount", input.WindowCount, 1, maxWindowCount, vb)
	return vb.Build()
}

// RequestBatch registers the windows, publishes the request and, for
// automatic batches, resolves the windows with the roller
func (o *orchestrator) RequestBatch(ctx context.Context, input *RequestBatchInput) (*RequestBatchOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	req := *input
	if req.WindowCount == 0 {
		req.WindowCount = 1
	}
	if req.DiceCount == 0 {
		req.DiceCount = 1
	}
	if err := validateBatch(&req); err != nil {
		return nil, err
	}

	batchID := o.idGen.Generate()
	windows := make([]*Window, req.WindowCount)
	ids := make([]string, req.WindowCount)
	for i := range windows {
		windows[i] = newWindow(o.idGen.Generate(), &req, batchID)
		ids[i] = windows[i].ID
	}

	timeout := o.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}

	o.mu.Lock()
	for _, w := range windows {
		id := w.ID
		o.pending[id] = w
		w.timer = time.AfterFunc(timeout, func() { o.expire(id) })
	}
	o.mu.Unlock()

	err := o.publisher.PublishRollRequest(ctx, &entities.RollRequest{
		BatchID:     batchID,
		WindowIDs:   ids,
		CampaignID:  req.CampaignID,
		PlayerID:    req.PlayerID,
		DieType:     req.DieType,
		DiceCount:   req.DiceCount,
		WindowCount: req.WindowCount,
		Modifier:    req.Modifier,
		Manual:      req.Manual,
		DropLowest:  req.DropLowest,
		Purpose:     req.Purpose,
	})
	if err != nil {
		o.evict(windows, errors.Unavailable("roll request was not delivered"))
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to publish roll request")
	}

	o.logger.Debug("roll windows requested",
		zap.String("campaign_id", req.CampaignID),
		zap.String("batch_id", batchID),
		zap.Strings("window_ids", ids),
		zap.String("purpose", req.Purpose),
		zap.Bool("manual", req.Manual),
	)

	if !req.Manual {
		for _, w := range windows {
			if err := o.autoResolve(ctx, w, dicesession.SourceAuto); err != nil {
				o.evict(windows, err)
				return nil, err
			}
		}
	}

	return &RequestBatchOutput{BatchID: batchID, Windows: windows}, nil
}

// Fulfill resolves a pending window with a submitted result
func (o *orchestrator) Fulfill(ctx context.Context, input *FulfillInput) (*FulfillOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.WindowID == "" {
		return nil, errors.InvalidArgument("window ID is required")
	}

	o.mu.Lock()
	w, ok := o.pending[input.WindowID]
	if ok {
		var err error
		if ok, err = w.authorize(input.Scope); err != nil {
			o.mu.Unlock()
			return nil, err
		}
	}
	if !ok {
		o.mu.Unlock()
		o.logger.Debug("ignoring result for unknown window", zap.String("window_id", input.WindowID))
		return &FulfillOutput{}, nil
	}
	result, err := w.validate(input.Total, input.Values)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	delete(o.pending, w.ID)
	w.timer.Stop()
	o.mu.Unlock()

	if !w.resolve(result, nil) {
		return &FulfillOutput{}, nil
	}
	o.record(ctx, w, result, dicesession.SourcePlayer)

	return &FulfillOutput{Fulfilled: true, Result: result}, nil
}

// Await waits for every window. When ctx ends or a window fails, windows
// still pending are evicted.
func (o *orchestrator) Await(ctx context.Context, input *AwaitInput) (*AwaitOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	results := make([]entities.RollResult, len(input.Windows))
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range input.Windows {
		g.Go(func() error {
			res, err := w.Wait(gctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.evict(input.Windows, errors.Canceled("roll abandoned"))
		return nil, err
	}

	return &AwaitOutput{Results: results}, nil
}

// Roll requests a batch and waits for it
func (o *orchestrator) Roll(ctx context.Context, input *RollInput) (*RollOutput, error) {
	batch, err := o.RequestBatch(ctx, input)
	if err != nil {
		return nil, err
	}

	awaited, err := o.Await(ctx, &AwaitInput{Windows: batch.Windows})
	if err != nil {
		return nil, err
	}

	return &RollOutput{BatchID: batch.BatchID, Results: awaited.Results}, nil
}

// Pending reports the number of unresolved windows
func (o *orchestrator) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// take removes a window from the registry if it is still pending and
// stops its timer
func (o *orchestrator) take(id string) (*Window, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	w, ok := o.pending[id]
	if ok {
		delete(o.pending, id)
		w.timer.Stop()
	}
	return w, ok
}

func (o *orchestrator) evict(windows []*Window, cause error) {
	for _, w := range windows {
		if _, ok := o.take(w.ID); ok {
			w.resolve(entities.RollResult{}, cause)
		}
	}
}

// expire runs when a window's timer fires
func (o *orchestrator) expire(id string) {
	w, ok := o.take(id)
	if !ok {
		return
	}

	o.logger.Warn("roll window timed out",
		zap.String("window_id", id),
		zap.String("campaign_id", w.CampaignID),
		zap.Bool("fallback", o.fallback),
	)

	if !o.fallback {
		w.resolve(entities.RollResult{}, errors.DeadlineExceededf("no roll received for window %s", id))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	res, err := o.rollFor(ctx, w)
	if err != nil {
		w.resolve(entities.RollResult{}, err)
		return
	}
	if w.resolve(res, nil) {
		o.record(ctx, w, res, dicesession.SourceFallback)
	}
}

// autoResolve rolls a window server-side
func (o *orchestrator) autoResolve(ctx context.Context, w *Window, source dicesession.Source) error {
	if _, ok := o.take(w.ID); !ok {
		return nil
	}
	res, err := o.rollFor(ctx, w)
	if err != nil {
		w.resolve(entities.RollResult{}, err)
		return err
	}
	if w.resolve(res, nil) {
		o.record(ctx, w, res, source)
	}
	return nil
}

func (o *orchestrator) rollFor(ctx context.Context, w *Window) (entities.RollResult, error) {
	out, err := o.roller.Roll(ctx, &engine.RollInput{
		DiceCount:  w.DiceCount,
		DieType:    w.DieType,
		DropLowest: w.DropLowest,
	})
	if err != nil {
		return entities.RollResult{}, errors.Wrapf(err, "failed to roll %s", w.Notation())
	}
	return out.Result, nil
}

// record stores a resolved window in the roll history. Failures are
// logged and never reach the caller.
func (o *orchestrator) record(ctx context.Context, w *Window, res entities.RollResult, source dicesession.Source) {
	if o.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()

	_, err := o.history.Append(ctx, dicesession.AppendInput{
		CampaignID: w.CampaignID,
		Roll: dicesession.DiceRoll{
			WindowID: w.ID,
			BatchID:  w.BatchID,
			PlayerID: w.PlayerID,
			Purpose:  w.Purpose,
			Notation: w.Notation(),
			Dice:     res.Values,
			Total:    res.Total,
			Source:   source,
			RolledAt: o.clock.Now(),
		},
	})
	if err != nil {
		o.logger.Warn("failed to record roll",
			zap.String("window_id", w.ID),
			zap.Error(err),
		)
	}
}
