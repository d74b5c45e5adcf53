package checker

import (
	"context"
	"time"

	"github.com/takeshiD/typua/internal/config"
)

// budget tracks the per-file wall-clock check budget of spec §5
// (default 200ms) and supports cooperative cancellation via
// context.Context — the standard library is the idiomatic tool here;
// no example repo in the pack carries a deadline/budget package, so a
// bespoke one would add a dependency for something context.Context
// already expresses natively.
type budget struct {
	deadline time.Time
	ctx      context.Context
	exceeded bool
}

func newBudget(ctx context.Context, opts config.Options) *budget {
	millis := opts.CheckBudget
	if millis <= 0 {
		millis = config.DefaultCheckBudgetMillis
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &budget{
		deadline: time.Now().Add(time.Duration(millis) * time.Millisecond),
		ctx:      ctx,
	}
}

// expired reports whether the budget has been exceeded or the caller's
// context was cancelled; once true it stays true (sticky), so a single
// over-budget check produces exactly one typeck-budget-exceeded
// diagnostic rather than one per remaining statement.
func (b *budget) expired() bool {
	if b.exceeded {
		return true
	}
	select {
	case <-b.ctx.Done():
		b.exceeded = true
		return true
	default:
	}
	if time.Now().After(b.deadline) {
		b.exceeded = true
		return true
	}
	return false
}
