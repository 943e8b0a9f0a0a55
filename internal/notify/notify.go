// Package notify publishes a revisioned feed of committed board changes so
// readers can re-render from fresh reads instead of tracking state themselves.
package notify

import (
	"context"
	"sync"
	"time"
)

// Kind names what changed
type Kind string

// Change kinds
const (
	ProjectCreated Kind = "project.created"
	ProjectUpdated Kind = "project.updated"
	ProjectMoved   Kind = "project.moved"
	ProjectDeleted Kind = "project.deleted"
	TaskCreated    Kind = "task.created"
	TaskUpdated    Kind = "task.updated"
	TaskMoved      Kind = "task.moved"
	TaskDeleted    Kind = "task.deleted"
	ImageAdded     Kind = "image.added"
	ImageDeleted   Kind = "image.deleted"
	BoardRepaired  Kind = "board.repaired"
)

// Change is one committed mutation
type Change struct {
	Revision  uint64    `json:"revision"`
	Kind      Kind      `json:"kind"`
	ProjectID string    `json:"project_id,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
	ImageID   string    `json:"image_id,omitempty"`
	At        time.Time `json:"at"`
}

// historySize bounds how far back Since can answer
const historySize = 256

// Hub assigns revisions to changes and fans them out to subscribers.
// The zero value is not usable; call NewHub.
type Hub struct {
	mu      sync.Mutex
	rev     uint64
	history []Change
	subs    map[int]chan Change
	nextSub int
	changed chan struct{}
}

// NewHub creates an empty hub at revision 0
func NewHub() *Hub {
	return &Hub{
		subs:    make(map[int]chan Change),
		changed: make(chan struct{}),
	}
}

// Publish records c under the next revision and delivers it to every
// subscriber. Subscribers that are not keeping up miss the change; they can
// catch up with Since or simply re-read.
func (h *Hub) Publish(c Change) Change {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.rev++
	c.Revision = h.rev
	if c.At.IsZero() {
		c.At = time.Now()
	}

	h.history = append(h.history, c)
	if len(h.history) > historySize {
		h.history = h.history[len(h.history)-historySize:]
	}

	for _, ch := range h.subs {
		select {
		case ch <- c:
		default:
		}
	}

	close(h.changed)
	h.changed = make(chan struct{})
	return c
}

// Revision returns the latest assigned revision
func (h *Hub) Revision() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rev
}

// Since returns the changes after revision since. complete is false when
// part of that range has already been dropped from history, in which case
// the caller should re-read everything.
func (h *Hub) Since(since uint64) (changes []Change, complete bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if since >= h.rev {
		return nil, true
	}
	if len(h.history) == 0 || h.history[0].Revision > since+1 {
		return nil, false
	}
	for _, c := range h.history {
		if c.Revision > since {
			changes = append(changes, c)
		}
	}
	return changes, true
}

// Subscribe returns a channel receiving every change published from now on
// and a function that cancels the subscription.
func (h *Hub) Subscribe(buffer int) (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSub
	h.nextSub++
	ch := make(chan Change, buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Wait blocks until the revision moves past since or ctx is done, and
// returns the current revision.
func (h *Hub) Wait(ctx context.Context, since uint64) (uint64, error) {
	for {
		h.mu.Lock()
		rev, changed := h.rev, h.changed
		h.mu.Unlock()

		if rev > since {
			return rev, nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return rev, ctx.Err()
		}
	}
}
