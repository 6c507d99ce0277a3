package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// namedHandler is implemented by handlers that want their name on spans and logs
type namedHandler interface {
	Name() string
}

// InMemoryEventBus delivers outbox events to in-process handlers, one span per
// handler call. Every matching handler runs even when an earlier one fails, and
// Publish returns the joined errors so the outbox entry is retried.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
}

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("event_bus"),
	}
}

func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var errs []error
	for _, ev := range events {
		for _, h := range b.registry.For(ev.EventType()) {
			if err := b.deliver(ctx, h, ev); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("handler", handlerName(h)),
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.Error(err),
				)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers h for eventTypes, falling back to h.EventTypes()
func (b *InMemoryEventBus) Subscribe(h shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = h.EventTypes()
	}
	b.registry.Register(h, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.String("handler", handlerName(h)),
		zap.Strings("event_types", eventTypes),
	)
}

func (b *InMemoryEventBus) Unsubscribe(h shared.EventHandler) {
	b.registry.Unregister(h)
}

// Subscribed lists the event types that have a dedicated handler
func (b *InMemoryEventBus) Subscribed() []string {
	return b.registry.Subscribed()
}

func (b *InMemoryEventBus) deliver(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "event.handle",
		attribute.String("event.type", ev.EventType()),
		attribute.String("event.id", ev.EventID().String()),
		attribute.String("event.aggregate_id", ev.AggregateID().String()),
		attribute.String("event.handler", handlerName(h)),
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked on %s: %v", ev.EventType(), r)
		}
		telemetry.EndSpan(span, err)
	}()
	return h.Handle(ctx, ev)
}

func handlerName(h shared.EventHandler) string {
	if n, ok := h.(namedHandler); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", h)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
