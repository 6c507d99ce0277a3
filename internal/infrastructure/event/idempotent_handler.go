package event

import (
	"context"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const defaultKeyTTL = 24 * time.Hour

// IdempotentHandler runs the wrapped handler at most once per event id. Keys
// are scoped by handler name, so two consumers of one event never suppress
// each other. A nil store disables deduplication.
type IdempotentHandler struct {
	name    string
	inner   shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	log     *zap.Logger
	metrics *telemetry.BusinessMetrics
}

type IdempotentHandlerOption func(*IdempotentHandler)

// WithKeyTTL sets how long a handled event id is remembered
func WithKeyTTL(ttl time.Duration) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		if ttl > 0 {
			h.ttl = ttl
		}
	}
}

// WithDeliveryMetrics counts processed, duplicate and failed deliveries
func WithDeliveryMetrics(m *telemetry.BusinessMetrics) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.metrics = m }
}

func NewIdempotentHandler(name string, inner shared.EventHandler, store shared.IdempotencyStore, log *zap.Logger, opts ...IdempotentHandlerOption) *IdempotentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &IdempotentHandler{name: name, inner: inner, store: store, ttl: defaultKeyTTL, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *IdempotentHandler) Name() string { return h.name }

func (h *IdempotentHandler) EventTypes() []string { return h.inner.EventTypes() }

// Key is the store key for ev
func (h *IdempotentHandler) Key(ev shared.DomainEvent) string {
	return "event:" + h.name + ":" + ev.EventID().String()
}

// Handle claims the key, runs the handler and releases the claim when the
// handler fails. A store outage lets the event through rather than stall it.
func (h *IdempotentHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	if h.store == nil {
		return h.run(ctx, ev)
	}

	key := h.Key(ev)
	claimed, err := h.store.Claim(ctx, key, h.ttl)
	if err != nil {
		h.log.Warn("idempotency store unavailable, handling without dedup",
			zap.String("handler", h.name), zap.String("event_id", ev.EventID().String()), zap.Error(err))
		claimed = true
	}
	if !claimed {
		h.metrics.RecordEventHandled(h.name, "duplicate")
		h.log.Debug("duplicate delivery skipped",
			zap.String("handler", h.name), zap.String("event_id", ev.EventID().String()))
		return nil
	}

	if err := h.run(ctx, ev); err != nil {
		if rerr := h.store.Release(ctx, key); rerr != nil {
			h.log.Warn("could not release idempotency key",
				zap.String("handler", h.name), zap.String("key", key), zap.Error(rerr))
		}
		return err
	}
	return nil
}

func (h *IdempotentHandler) run(ctx context.Context, ev shared.DomainEvent) error {
	err := h.inner.Handle(ctx, ev)
	if err != nil {
		h.metrics.RecordEventHandled(h.name, "failed")
		return err
	}
	h.metrics.RecordEventHandled(h.name, "processed")
	return nil
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
