package realtime

import (
	"sync"

	"github.com/google/uuid"

	"chatnotify/internal/events"
	"chatnotify/internal/metrics"
)

const shardCount = 32

// Handle is one connection's view of its user's fan-out channel. Events
// arrive in the order they were delivered; when the buffer is full the oldest
// undelivered event is dropped so the producer never blocks on a slow client.
type Handle struct {
	ID     uuid.UUID
	userID int64
	ch     chan events.AppEvent
}

// Events yields this connection's event stream. The channel is never closed
// by the registry; the consumer stops reading when its connection ends.
func (h *Handle) Events() <-chan events.AppEvent { return h.ch }

func (h *Handle) push(ev events.AppEvent) {
	for {
		select {
		case h.ch <- ev:
			return
		default:
		}
		// buffer full: drop the oldest and retry
		select {
		case <-h.ch:
			metrics.EventsDroppedTotal.Inc()
		default:
		}
	}
}

type shard struct {
	mu    sync.RWMutex
	users map[int64]map[*Handle]struct{}
}

// Registry maps user ids to their live stream connections. It is sharded by
// user id so register/deliver/unregister for unrelated users never contend on
// the same lock.
type Registry struct {
	bufSize int
	shards  [shardCount]shard
}

func NewRegistry(bufSize int) *Registry {
	if bufSize <= 0 {
		bufSize = 256
	}
	r := &Registry{bufSize: bufSize}
	for i := range r.shards {
		r.shards[i].users = make(map[int64]map[*Handle]struct{})
	}
	return r
}

func (r *Registry) shardFor(userID int64) *shard {
	return &r.shards[uint64(userID)%shardCount]
}

// Register attaches a new receiving handle for userID. The per-user entry is
// created lazily on the first registration; concurrent first registrations
// end up in the same entry.
func (r *Registry) Register(userID int64) *Handle {
	h := &Handle{
		ID:     uuid.New(),
		userID: userID,
		ch:     make(chan events.AppEvent, r.bufSize),
	}
	s := r.shardFor(userID)
	s.mu.Lock()
	if s.users[userID] == nil {
		s.users[userID] = make(map[*Handle]struct{})
	}
	s.users[userID][h] = struct{}{}
	s.mu.Unlock()
	metrics.LiveHandles.Inc()
	return h
}

// Unregister detaches one handle; the user's entry is removed when the last
// handle goes, so offline users cost nothing.
func (r *Registry) Unregister(h *Handle) {
	s := r.shardFor(h.userID)
	s.mu.Lock()
	if handles, ok := s.users[h.userID]; ok {
		if _, attached := handles[h]; attached {
			delete(handles, h)
			metrics.LiveHandles.Dec()
			if len(handles) == 0 {
				delete(s.users, h.userID)
			}
		}
	}
	s.mu.Unlock()
}

// Deliver pushes ev to every live handle of every user in userIDs. Users with
// no live handle are skipped. Deliver never blocks: overflowing buffers shed
// their oldest event instead.
func (r *Registry) Deliver(userIDs []int64, ev events.AppEvent) {
	var seen map[int64]struct{}
	if len(userIDs) > 1 {
		seen = make(map[int64]struct{}, len(userIDs))
	}
	for _, id := range userIDs {
		if seen != nil {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		}
		s := r.shardFor(id)
		s.mu.RLock()
		for h := range s.users[id] {
			h.push(ev)
			metrics.EventsDeliveredTotal.WithLabelValues(ev.Name()).Inc()
		}
		s.mu.RUnlock()
	}
}

// HandleCount reports the number of live handles for userID.
func (r *Registry) HandleCount(userID int64) int {
	s := r.shardFor(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users[userID])
}
