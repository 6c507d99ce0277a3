package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
)

// EventSerializer encodes events as JSON outbox payloads and rebuilds them
// from the event type recorded next to the payload.
type EventSerializer struct {
	mu     sync.RWMutex
	decode map[string]reflect.Type
}

func NewEventSerializer() *EventSerializer {
	return &EventSerializer{decode: map[string]reflect.Type{}}
}

// Register binds eventType to the struct behind prototype. Binding one type
// to two different structs is a wiring bug and panics.
func (s *EventSerializer) Register(eventType string, prototype shared.DomainEvent) {
	rt := reflect.TypeOf(prototype)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, taken := s.decode[eventType]; taken && prev != rt {
		panic(fmt.Sprintf("event type %s already decodes to %s, not %s", eventType, prev, rt))
	}
	s.decode[eventType] = rt
}

func (s *EventSerializer) Serialize(ev shared.DomainEvent) ([]byte, error) {
	return json.Marshal(ev)
}

func (s *EventSerializer) Deserialize(eventType string, payload []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	rt, known := s.decode[eventType]
	s.mu.RUnlock()
	if !known {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	target := reflect.New(rt).Interface()
	if err := json.Unmarshal(payload, target); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
	}
	ev, ok := target.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("*%s is not a domain event", rt)
	}
	return ev, nil
}

// Types lists the registered event types, sorted
func (s *EventSerializer) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	types := make([]string, 0, len(s.decode))
	for t := range s.decode {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
