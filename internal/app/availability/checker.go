package availability

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/YammiGb/lechon-orders/internal/domain"
)

// ErrSuperseded is reported by a check that was cancelled because a newer
// check was scheduled before it fired.
var ErrSuperseded = errors.New("availability check superseded")

// Check is one scheduled cart re-validation.
type Check struct {
	done   chan struct{}
	result []string
	err    error
}

// Wait blocks until the check fires or is superseded.
func (c *Check) Wait() ([]string, error) {
	<-c.done
	return c.result, c.err
}

// Done is closed when the check has either fired or been superseded.
func (c *Check) Done() <-chan struct{} {
	return c.done
}

// Checker coalesces cart re-validation with a cancelling debounce: checks
// are keyed by (date, sorted item ids), a re-schedule of the same key reuses
// the pending check, and a schedule with a different key cancels whatever is
// in flight so only the latest result is ever applied.
type Checker struct {
	resolver *Resolver
	delay    time.Duration

	mu      sync.Mutex
	key     string
	cancel  context.CancelFunc
	pending *Check
}

func NewChecker(resolver *Resolver, delay time.Duration) *Checker {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return &Checker{resolver: resolver, delay: delay}
}

// Schedule queues a cart check after the debounce delay and returns it.
func (c *Checker) Schedule(ctx context.Context, date string, lines []domain.CartLine) *Check {
	key := checkKey(date, lines)

	c.mu.Lock()
	if c.pending != nil && c.key == key {
		select {
		case <-c.pending.done:
			// already finished, schedule anew
		default:
			pending := c.pending
			c.mu.Unlock()
			return pending
		}
	}

	if c.cancel != nil {
		c.cancel()
	}

	runCtx, cancel := context.WithCancel(ctx)
	check := &Check{done: make(chan struct{})}
	c.key, c.cancel, c.pending = key, cancel, check
	c.mu.Unlock()

	go c.run(runCtx, check, date, lines)
	return check
}

func (c *Checker) run(ctx context.Context, check *Check, date string, lines []domain.CartLine) {
	defer close(check.done)

	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		check.err = ErrSuperseded
		return
	case <-timer.C:
	}

	result := c.resolver.CheckCart(ctx, date, lines)

	// A cancellation that raced the lookup still wins: never deliver a
	// stale result over a fresher check.
	select {
	case <-ctx.Done():
		check.err = ErrSuperseded
	default:
		check.result = result
	}
}

func checkKey(date string, lines []domain.CartLine) string {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.MenuItemID
	}
	sort.Strings(ids)
	return date + "|" + strings.Join(ids, ",")
}
