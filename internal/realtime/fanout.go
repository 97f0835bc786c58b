package realtime

import (
	"context"
	stderrors "errors"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/dice"
)

// Fanout publishes every roll request to several channels
type Fanout []dice.Publisher

// PublishRollRequest succeeds when at least one channel took the request
func (f Fanout) PublishRollRequest(ctx context.Context, req *entities.RollRequest) error {
	if len(f) == 0 {
		return errors.Unavailable("no real-time channel configured")
	}
	var errs []error
	for _, p := range f {
		if err := p.PublishRollRequest(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == len(f) {
		return errors.WrapWithCode(stderrors.Join(errs...), errors.CodeUnavailable, "roll request reached no channel")
	}
	return nil
}
