package coalesce

import (
	"context"
	"sync"
	"time"
)

// DefaultWindow is how long duplicate requests for the same signature are
// folded into an in-flight computation.
const DefaultWindow = 200 * time.Millisecond

// Group folds duplicate in-flight requests keyed by an immutable parameter
// signature. A call arriving inside the window joins the running computation
// and shares its result; a call arriving later supersedes it, cancelling the
// stale context before starting fresh. A Group is owned by the service that
// constructs it, never package-global.
type Group struct {
	mu     sync.Mutex
	window time.Duration
	calls  map[string]*call
}

type call struct {
	started time.Time
	cancel  context.CancelFunc
	done    chan struct{}
	val     interface{}
	err     error
}

// New builds a Group with the given dedup window.
func New(window time.Duration) *Group {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Group{window: window, calls: make(map[string]*call)}
}

// Do executes fn for key, deduplicating concurrent identical requests.
// The returned bool is true when the result was shared from a computation
// another caller started.
func (g *Group) Do(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, bool, error) {
	g.mu.Lock()
	if c, ok := g.calls[key]; ok {
		if time.Since(c.started) < g.window {
			g.mu.Unlock()
			select {
			case <-c.done:
				return c.val, true, c.err
			case <-ctx.Done():
				return nil, false, ctx.Err()
			}
		}
		// Stale in-flight request: the newcomer wins.
		c.cancel()
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := &call{started: time.Now(), cancel: cancel, done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn(runCtx)
	close(c.done)

	g.mu.Lock()
	if g.calls[key] == c {
		delete(g.calls, key)
	}
	g.mu.Unlock()
	cancel()

	return c.val, false, c.err
}

// Len reports how many computations are currently in flight.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}
