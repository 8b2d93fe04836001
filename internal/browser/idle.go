package browser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
)

// NetworkIdleQuiet is how long a page must have no in-flight requests to be
// considered loaded.
const NetworkIdleQuiet = 500 * time.Millisecond

// idleTracker counts in-flight network requests of one page.
// handle is called from chromedp's event loop and must not block.
type idleTracker struct {
	mu           sync.Mutex
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
	now          func() time.Time
}

func newIdleTracker() *idleTracker {
	return &idleTracker{
		inflight:     make(map[network.RequestID]struct{}),
		lastActivity: time.Now(),
		now:          time.Now,
	}
}

// handle updates the tracker from a CDP target event.
func (t *idleTracker) handle(ev any) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.begin(e.RequestID)
	case *network.EventLoadingFinished:
		t.end(e.RequestID)
	case *network.EventLoadingFailed:
		t.end(e.RequestID)
	}
}

func (t *idleTracker) begin(id network.RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight[id] = struct{}{}
	t.lastActivity = t.now()
}

func (t *idleTracker) end(id network.RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.inflight[id]; !ok {
		return
	}
	delete(t.inflight, id)
	t.lastActivity = t.now()
}

// reset forgets requests of a previous document.
func (t *idleTracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.inflight)
	t.lastActivity = t.now()
}

// idleFor returns how long the page has had no in-flight requests.
func (t *idleTracker) idleFor() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.inflight) > 0 {
		return 0
	}
	return t.now().Sub(t.lastActivity)
}

// wait blocks until no request has been in flight for quiet, or ctx is done.
func (t *idleTracker) wait(ctx context.Context, quiet time.Duration) error {
	interval := quiet / 10
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if t.idleFor() >= quiet {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
