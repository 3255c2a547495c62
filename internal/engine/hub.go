package engine

import (
	"sort"
	"sync"

	"github.com/roach88/todosync/internal/query"
	"github.com/roach88/todosync/internal/todo"
)

// View is one pushed state of a live query.
type View struct {
	Filter   todo.Filter `json:"filter"`
	Revision int64       `json:"revision"`
	Todos    []todo.Todo `json:"todos"`
}

// Hub is the subscription registry.
//
// It holds every open subscription together with the last view pushed to it.
// Publish recomputes each subscription's projection from one snapshot and
// pushes only when the projection differs from the last push.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
}

// NewHub creates an empty registry whose subscriptions use the given channel
// size.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers a loading subscription for f.
func (h *Hub) Subscribe(f todo.Filter) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:      h.nextID,
		filter:  f,
		hub:     h,
		updates: make(chan View, h.buffer),
	}
	h.subs[sub.id] = sub
	subscriptionsGauge.Inc()
	return sub
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish projects all for every subscription and pushes changed views.
// Returns the number of views pushed.
func (h *Hub) Publish(rev int64, all []todo.Todo) int {
	pushed := 0
	for _, sub := range h.snapshot() {
		if h.deliver(sub, rev, all) {
			pushed++
		}
	}
	return pushed
}

// deliver projects all for one subscription and pushes if it changed.
func (h *Hub) deliver(sub *Subscription, rev int64, all []todo.Todo) bool {
	v := View{
		Filter:   sub.filter,
		Revision: rev,
		Todos:    query.Project(all, sub.filter),
	}
	if !sub.offer(v) {
		return false
	}
	viewPushes.Inc()
	return true
}

// snapshot returns the open subscriptions in registration order.
func (h *Hub) snapshot() []*Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := make([]*Subscription, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })
	return subs
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[id]; ok {
		delete(h.subs, id)
		subscriptionsGauge.Dec()
	}
}
