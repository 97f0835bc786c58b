package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
)

// ScriptedRoller is an engine.Roller that returns queued totals. Each
// queued value becomes a single-die result.
type ScriptedRoller struct {
	mu     sync.Mutex
	totals []int
	calls  []engine.RollInput
}

// NewScriptedRoller queues totals in order
func NewScriptedRoller(totals ...int) *ScriptedRoller {
	return &ScriptedRoller{totals: totals}
}

// Queue appends more totals
func (r *ScriptedRoller) Queue(totals ...int) {
	r.mu.Lock()
	r.totals = append(r.totals, totals...)
	r.mu.Unlock()
}

// Roll pops the next total
func (r *ScriptedRoller) Roll(_ context.Context, input *engine.RollInput) (*engine.RollOutput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, *input)
	if len(r.totals) == 0 {
		return nil, fmt.Errorf("scripted roller exhausted after %d rolls", len(r.calls)-1)
	}
	total := r.totals[0]
	r.totals = r.totals[1:]
	return &engine.RollOutput{Result: entities.RollResult{Total: total, Values: []int{total}}}, nil
}

// Calls returns the inputs seen so far
func (r *ScriptedRoller) Calls() []engine.RollInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]engine.RollInput(nil), r.calls...)
}

// Remaining reports how many totals are still queued
func (r *ScriptedRoller) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.totals)
}

// RecordingPublisher captures published roll requests. When OnPublish is
// set it is called synchronously after the request is recorded.
type RecordingPublisher struct {
	mu        sync.Mutex
	requests  []*entities.RollRequest
	Err       error
	OnPublish func(req *entities.RollRequest)
}

// PublishRollRequest records req
func (p *RecordingPublisher) PublishRollRequest(_ context.Context, req *entities.RollRequest) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	p.requests = append(p.requests, req)
	hook := p.OnPublish
	p.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	return nil
}

// Requests returns everything published so far
func (p *RecordingPublisher) Requests() []*entities.RollRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*entities.RollRequest(nil), p.requests...)
}

// Last returns the most recent request or nil
func (p *RecordingPublisher) Last() *entities.RollRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return nil
	}
	return p.requests[len(p.requests)-1]
}
