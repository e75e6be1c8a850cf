// Package events keeps an append-only in-memory log of resource
// mutations with filterable queries and subscriptions. It is an
// optional surface; nothing load-bearing reads from it.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/krsjen/github-project-mcp/pkg/types"
)

// Type is the kind of mutation an event records.
type Type string

const (
	TypeCreated Type = "created"
	TypeUpdated Type = "updated"
	TypeDeleted Type = "deleted"
)

// Event is one recorded mutation.
type Event struct {
	ID         string             `json:"id"`
	Type       Type               `json:"type"`
	Resource   types.ResourceType `json:"resource"`
	ResourceID string             `json:"resource_id"`
	Timestamp  time.Time          `json:"timestamp"`
	Data       any                `json:"data,omitempty"`
}

// Filter selects events. Zero-value fields match everything.
type Filter struct {
	Types     []Type
	Resources []types.ResourceType
	Since     time.Time
	Limit     int
}

func (f Filter) matches(e Event) bool {
	if len(f.Types) > 0 && !containsType(f.Types, e.Type) {
		return false
	}
	if len(f.Resources) > 0 && !containsResource(f.Resources, e.Resource) {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

func containsType(list []Type, want Type) bool {
	for _, t := range list {
		if t == want {
			return true
		}
	}
	return false
}

func containsResource(list []types.ResourceType, want types.ResourceType) bool {
	for _, r := range list {
		if r == want {
			return true
		}
	}
	return false
}

// Subscription receives matching events on C until Unsubscribe. Slow
// consumers drop events rather than block the writer.
type Subscription struct {
	ID     string
	Filter Filter
	C      <-chan Event

	ch chan Event
}

const subscriptionBuffer = 64

const defaultRetention = 1000

// Store is the event log. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	events    []Event
	retention int
	subs      map[string]*Subscription
	now       func() time.Time
}

// NewStore creates a store keeping at most retention events; older ones
// are trimmed on append. retention <= 0 uses the default.
func NewStore(retention int) *Store {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Store{
		retention: retention,
		subs:      make(map[string]*Subscription),
		now:       time.Now,
	}
}

// Append records a mutation and fans it out to matching subscriptions.
func (s *Store) Append(eventType Type, resource types.ResourceType, resourceID string, data any) Event {
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Resource:   resource,
		ResourceID: resourceID,
		Timestamp:  s.now().UTC(),
		Data:       data,
	}

	s.mu.Lock()
	s.events = append(s.events, event)
	if overflow := len(s.events) - s.retention; overflow > 0 {
		s.events = append([]Event(nil), s.events[overflow:]...)
	}
	subs := make([]*Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		if !sub.Filter.matches(event) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return event
}

// List returns events matching filter, oldest first.
func (s *Store) List(filter Filter) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.events {
		if filter.matches(e) {
			out = append(out, e)
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out
}

// Len reports how many events are currently retained.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Subscribe registers a filtered subscription.
func (s *Store) Subscribe(filter Filter) *Subscription {
	ch := make(chan Event, subscriptionBuffer)
	sub := &Subscription{
		ID:     uuid.NewString(),
		Filter: filter,
		C:      ch,
		ch:     ch,
	}
	s.mu.Lock()
	s.subs[sub.ID] = sub
	s.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(id string) {
	s.mu.Lock()
	sub, ok := s.subs[id]
	if ok {
		delete(s.subs, id)
	}
	s.mu.Unlock()
	if ok {
		close(sub.ch)
	}
}
