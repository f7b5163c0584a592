package locate

import (
	"context"
	"sync"
	"time"
)

type reading struct {
	err error
	pos Position
}

// hub fans out fixes from a single reader goroutine to pending lookups.
// A cached fix younger than maxAge answers a lookup immediately.
type hub struct {
	lastAt  time.Time
	err     error
	now     func() time.Time
	waiters map[chan reading]struct{}
	last    Position
	maxAge  time.Duration
	mu      sync.Mutex
	have    bool
}

func newHub(maxAge time.Duration) *hub {
	return &hub{
		maxAge:  maxAge,
		now:     time.Now,
		waiters: make(map[chan reading]struct{}),
	}
}

func (h *hub) publish(p Position) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = p
	h.lastAt = h.now()
	h.have = true

	for ch := range h.waiters {
		ch <- reading{pos: p}
		delete(h.waiters, ch)
	}
}

// fail marks the source as gone; pending and future lookups get err.
func (h *hub) fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.err = err
	for ch := range h.waiters {
		ch <- reading{err: err}
		delete(h.waiters, ch)
	}
}

func (h *hub) next(ctx context.Context) (Position, error) {
	h.mu.Lock()
	if h.err != nil {
		err := h.err
		h.mu.Unlock()
		return Position{}, err
	}
	if h.have && h.maxAge > 0 && h.now().Sub(h.lastAt) <= h.maxAge {
		p := h.last
		h.mu.Unlock()
		return p, nil
	}

	ch := make(chan reading, 1)
	h.waiters[ch] = struct{}{}
	h.mu.Unlock()

	select {
	case r := <-ch:
		return r.pos, r.err
	case <-ctx.Done():
		h.mu.Lock()
		delete(h.waiters, ch)
		h.mu.Unlock()

		// a fix may have landed between Done and the lock
		select {
		case r := <-ch:
			return r.pos, r.err
		default:
		}

		return Position{}, fromContext(ctx.Err())
	}
}
