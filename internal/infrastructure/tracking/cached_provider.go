package tracking

import (
	"context"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/cache"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/logger"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CachedProvider serves repeated lookups from a ShipmentCache.
// Cache failures are logged and fall through to the carrier.
type CachedProvider struct {
	next    trade.TrackingProvider
	cache   cache.ShipmentCache
	ttl     time.Duration
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger
}

// NewCachedProvider wraps next. metrics may be nil.
func NewCachedProvider(next trade.TrackingProvider, c cache.ShipmentCache, ttl time.Duration, metrics *telemetry.BusinessMetrics, log *zap.Logger) *CachedProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedProvider{next: next, cache: c, ttl: ttl, metrics: metrics, logger: log.Named("tracking")}
}

// TrackShipment returns a cached lookup or asks the carrier and caches the answer
func (p *CachedProvider) TrackShipment(ctx context.Context, trackingNumber, carrier string) (*trade.ShipmentInfo, error) {
	log := logger.For(ctx, p.logger)
	key := cache.ShipmentKey(normalizeCarrier(carrier), trackingNumber)

	info, err := p.cache.Get(ctx, key)
	if err != nil {
		log.Warn("shipment cache read failed", zap.String("key", key), zap.Error(err))
	}
	if info != nil {
		p.metrics.RecordTrackingRequest("hit")
		return info, nil
	}

	p.metrics.RecordTrackingRequest("miss")
	info, err = p.next.TrackShipment(ctx, trackingNumber, carrier)
	if err != nil {
		return nil, err
	}
	if err := p.cache.Set(ctx, key, info, p.ttl); err != nil {
		log.Warn("shipment cache write failed", zap.String("key", key), zap.Error(err))
	}
	return info, nil
}

var _ trade.TrackingProvider = (*CachedProvider)(nil)
