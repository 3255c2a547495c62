package engine

import (
	"sync"

	"github.com/roach88/todosync/internal/query"
	"github.com/roach88/todosync/internal/todo"
)

// Subscription is a live view of one filter.
//
// A new subscription is loading: Current reports false until the first view
// arrives. An empty result is a view with zero todos, which is not the same
// as loading.
type Subscription struct {
	id     uint64
	filter todo.Filter
	hub    *Hub

	mu      sync.Mutex
	current *View
	closed  bool
	updates chan View
}

// Filter returns the filter this subscription projects.
func (s *Subscription) Filter() todo.Filter {
	return s.filter
}

// Updates returns the channel of pushed views.
//
// Delivery is latest-wins: if the consumer falls behind, older undelivered
// views are replaced by newer ones. The channel is closed by Close.
func (s *Subscription) Updates() <-chan View {
	return s.updates
}

// Current returns the last pushed view. ok is false while loading.
func (s *Subscription) Current() (v View, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return View{}, false
	}
	return *s.current, true
}

// Close unregisters the subscription and closes its channel.
// Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s.id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.updates)
}

func (s *Subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// offer records v and pushes it unless it equals the last pushed view.
// Returns true if v was pushed.
func (s *Subscription) offer(v View) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if s.current != nil && query.Equal(s.current.Todos, v.Todos) {
		return false
	}
	s.current = &v

	select {
	case s.updates <- v:
		return true
	default:
	}

	// Channel full: drop the oldest undelivered view, then push.
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- v:
	default:
	}
	return true
}
