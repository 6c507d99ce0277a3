package event

import (
	"context"
	"sync"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// Delivery schedules retries of entries whose handlers failed
	Delivery         shared.DeliveryPolicy
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     2 * time.Second,
		Delivery:         shared.DefaultDeliveryPolicy(),
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

func (c OutboxProcessorConfig) withDefaults() OutboxProcessorConfig {
	def := DefaultOutboxProcessorConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.Delivery.BaseBackoff <= 0 {
		c.Delivery.BaseBackoff = def.Delivery.BaseBackoff
	}
	if c.Delivery.MaxBackoff <= 0 {
		c.Delivery.MaxBackoff = def.Delivery.MaxBackoff
	}
	if c.Delivery.MaxAttempts <= 0 {
		c.Delivery.MaxAttempts = def.Delivery.MaxAttempts
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = def.CleanupInterval
	}
	if c.CleanupRetention <= 0 {
		c.CleanupRetention = def.CleanupRetention
	}
	return c
}

// OutboxProcessor relays committed outbox rows to the event bus. An entry
// becomes SENT only after every handler accepted it; failed entries wait out
// the delivery backoff and are dead-lettered once their attempts run out.
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	bus        shared.EventPublisher
	serializer *EventSerializer
	config     OutboxProcessorConfig
	logger     *zap.Logger
	metrics    *telemetry.BusinessMetrics
	now        func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOutboxProcessor(repo shared.OutboxRepository, bus shared.EventPublisher, serializer *EventSerializer, config OutboxProcessorConfig, logger *zap.Logger) *OutboxProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxProcessor{
		repo:       repo,
		bus:        bus,
		serializer: serializer,
		config:     config.withDefaults(),
		logger:     logger.Named("outbox"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetBusinessMetrics enables dispatch counters
func (p *OutboxProcessor) SetBusinessMetrics(m *telemetry.BusinessMetrics) {
	p.metrics = m
}

// Start runs the relay loop, plus the retention sweep when enabled, until Stop
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	p.every(ctx, p.config.PollInterval, p.ProcessBatch)
	if p.config.CleanupEnabled {
		p.every(ctx, p.config.CleanupInterval, p.cleanup)
	}

	p.logger.Info("outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Int("max_attempts", p.config.Delivery.MaxAttempts),
	)
	return nil
}

// Stop waits for the batch in flight, giving up when ctx expires
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	idle := make(chan struct{})
	go func() {
		defer close(idle)
		p.wg.Wait()
	}()

	select {
	case <-idle:
		p.logger.Info("outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *OutboxProcessor) every(ctx context.Context, interval time.Duration, run func(context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				run(ctx)
			}
		}
	}()
}

// ProcessBatch relays one batch of new entries, then one batch of retries
// whose backoff has elapsed
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) {
	fresh, err := p.repo.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("load pending outbox entries", zap.Error(err))
		return
	}
	p.relay(ctx, fresh)

	due, err := p.repo.FindRetryable(ctx, p.now(), p.config.BatchSize)
	if err != nil {
		p.logger.Error("load retryable outbox entries", zap.Error(err))
		return
	}
	p.relay(ctx, due)
}

func (p *OutboxProcessor) relay(ctx context.Context, entries []*shared.OutboxEntry) {
	if len(entries) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}

	won, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		p.logger.Error("claim outbox entries", zap.Error(err))
		return
	}
	for _, entry := range won {
		p.deliver(ctx, entry)
	}
}

func (p *OutboxProcessor) deliver(ctx context.Context, entry *shared.OutboxEntry) {
	log := p.logger.With(
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
		zap.String("aggregate_id", entry.AggregateID.String()),
	)

	err := p.publish(ctx, entry)
	outcome := "sent"
	if err == nil {
		entry.Delivered(p.now())
		log.Debug("event dispatched")
	} else {
		entry.Failed(err.Error(), p.config.Delivery, p.now())
		if entry.IsDead() {
			outcome = "dead"
			log.Warn("event dead-lettered",
				zap.Int("attempts", entry.RetryCount),
				zap.String("last_error", entry.LastError),
			)
		} else {
			outcome = "failed"
			log.Error("event dispatch failed",
				zap.Int("attempts", entry.RetryCount),
				zap.Timep("next_retry_at", entry.NextRetryAt),
				zap.Error(err),
			)
		}
	}
	p.metrics.RecordOutboxDispatch(outcome)

	if uerr := p.repo.Update(ctx, entry); uerr != nil {
		log.Error("record dispatch outcome", zap.String("outcome", outcome), zap.Error(uerr))
	}
}

func (p *OutboxProcessor) publish(ctx context.Context, entry *shared.OutboxEntry) error {
	ev, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		return err
	}
	return p.bus.Publish(ctx, ev)
}

func (p *OutboxProcessor) cleanup(ctx context.Context) {
	cutoff := p.now().Add(-p.config.CleanupRetention)
	n, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("purge sent outbox entries", zap.Error(err))
		return
	}
	if n > 0 {
		p.logger.Info("purged sent outbox entries", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
	}
}
