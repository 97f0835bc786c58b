package dice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
)

// Window is a one-shot future for a single roll. It resolves exactly once,
// either with a result or with an error (timeout, cancellation).
type Window struct {
	ID         string
	BatchID    string
	CampaignID string
	PlayerID   string
	Purpose    string
	DieType    int
	DiceCount  int
	DropLowest bool
	Manual     bool

	once   sync.Once
	done   chan struct{}
	result entities.RollResult
	err    error
	// timer is guarded by the correlator's registry lock
	timer *time.Timer
}

func newWindow(id string, input *RequestBatchInput, batchID string) *Window {
	return &Window{
		ID:         id,
		BatchID:    batchID,
		CampaignID: input.CampaignID,
		PlayerID:   input.PlayerID,
		Purpose:    input.Purpose,
		DieType:    input.DieType,
		DiceCount:  input.DiceCount,
		DropLowest: input.DropLowest,
		Manual:     input.Manual,
		done:       make(chan struct{}),
	}
}

// Notation renders the window's dice, e.g. 2d6
func (w *Window) Notation() string {
	return fmt.Sprintf("%dd%d", w.DiceCount, w.DieType)
}

// Done is closed once the window resolves
func (w *Window) Done() <-chan struct{} {
	return w.done
}

// Result returns the resolution. Only meaningful after Done is closed.
func (w *Window) Result() (entities.RollResult, error) {
	return w.result, w.err
}

// Wait blocks until the window resolves or ctx is done
func (w *Window) Wait(ctx context.Context) (entities.RollResult, error) {
	select {
	case <-w.done:
		return w.result, w.err
	case <-ctx.Done():
		return entities.RollResult{}, errors.WrapWithCode(ctx.Err(), errors.GetCode(ctx.Err()), "stopped waiting for roll")
	}
}

// resolve completes the future; later calls are ignored
func (w *Window) resolve(result entities.RollResult, err error) bool {
	resolved := false
	w.once.Do(func() {
		w.result = result
		w.err = err
		resolved = true
		close(w.done)
	})
	return resolved
}

// authorize checks that sub may roll for the window. A window from another
// campaign is reported as unknown so its id is not confirmed to outsiders.
func (w *Window) authorize(sub *Submitter) (known bool, err error) {
	if sub == nil {
		return true, nil
	}
	if sub.CampaignID != w.CampaignID {
		return false, nil
	}
	if w.Manual && w.PlayerID != "" && sub.PlayerID != w.PlayerID {
		return true, errors.PermissionDeniedf("window %s belongs to another player", w.ID)
	}
	return true, nil
}

// validate checks a submitted result against the window's dice and
// returns the authoritative result
func (w *Window) validate(total int, values []int) (entities.RollResult, error) {
	if len(values) > 0 {
		if len(values) != w.DiceCount {
			return entities.RollResult{}, errors.InvalidArgumentf("window %s expects %d dice, got %d", w.ID, w.DiceCount, len(values))
		}
		sum, low := 0, values[0]
		for _, v := range values {
			if v < 1 || v > w.DieType {
				return entities.RollResult{}, errors.InvalidArgumentf("value %d out of range for d%d", v, w.DieType)
			}
			sum += v
			if v < low {
				low = v
			}
		}
		if w.DropLowest && len(values) > 1 {
			sum -= low
		}
		return entities.RollResult{Total: sum, Values: append([]int(nil), values...)}, nil
	}

	kept := w.DiceCount
	if w.DropLowest && kept > 1 {
		kept--
	}
	if total < kept || total > kept*w.DieType {
		return entities.RollResult{}, errors.InvalidArgumentf("total %d out of range for %s", total, w.Notation())
	}
	return entities.RollResult{Total: total}, nil
}
