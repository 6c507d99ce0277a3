package event

import (
	"slices"
	"sync"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
)

type subscription struct {
	handler shared.EventHandler
	types   map[string]bool // nil matches every event
}

func (s subscription) matches(eventType string) bool {
	return s.types == nil || s.types[eventType]
}

// HandlerRegistry tracks which handlers receive which event types. Handlers
// bound to specific types are returned ahead of catch-all ones.
type HandlerRegistry struct {
	mu   sync.RWMutex
	subs []subscription
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

// Register subscribes h to eventTypes, or to everything when none are given
func (r *HandlerRegistry) Register(h shared.EventHandler, eventTypes ...string) {
	sub := subscription{handler: h}
	if len(eventTypes) > 0 {
		sub.types = make(map[string]bool, len(eventTypes))
		for _, t := range eventTypes {
			sub.types[t] = true
		}
	}
	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()
}

func (r *HandlerRegistry) Unregister(h shared.EventHandler) {
	r.mu.Lock()
	r.subs = slices.DeleteFunc(r.subs, func(s subscription) bool { return s.handler == h })
	r.mu.Unlock()
}

// For returns the handlers an event of eventType goes to
func (r *HandlerRegistry) For(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var specific, catchAll []shared.EventHandler
	for _, s := range r.subs {
		switch {
		case s.types == nil:
			catchAll = append(catchAll, s.handler)
		case s.matches(eventType):
			specific = append(specific, s.handler)
		}
	}
	return append(specific, catchAll...)
}

// Subscribed lists, sorted, the event types some handler asked for by name
func (r *HandlerRegistry) Subscribed() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var types []string
	for _, s := range r.subs {
		for t := range s.types {
			types = append(types, t)
		}
	}
	slices.Sort(types)
	return slices.Compact(types)
}
