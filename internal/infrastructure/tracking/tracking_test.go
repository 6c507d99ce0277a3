package tracking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/cache"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/httpclient"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *HTTPProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p := NewHTTPProvider(srv.URL+"/", "key-1", httpclient.New(httpclient.Config{Name: "tracking"}, nil))
	p.now = func() time.Time { return testNow }
	return p
}

func TestHTTPProvider_TrackShipment(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/shipments/dhl/TRK-123", r.URL.EscapedPath())
		assert.Equal(t, "key-1", r.Header.Get("X-API-Key"))
		_, _ = w.Write([]byte(`{
			"tracking_number": "TRK-123",
			"status": "IN_TRANSIT",
			"current_location": "Rotterdam",
			"estimated_delivery": "2026-03-09T00:00:00Z",
			"events": [{"status": "PICKED_UP", "location": "Shenzhen", "occurred_at": "2026-03-01T10:00:00Z"}]
		}`))
	})

	info, err := p.TrackShipment(context.Background(), " TRK-123 ", "DHL")
	require.NoError(t, err)
	assert.Equal(t, "TRK-123", info.TrackingNumber)
	assert.Equal(t, "dhl", info.Carrier)
	assert.Equal(t, "IN_TRANSIT", info.Status)
	assert.Equal(t, "Rotterdam", info.CurrentLocation)
	require.NotNil(t, info.EstimatedDelivery)
	assert.Equal(t, 9, info.EstimatedDelivery.Day())
	require.Len(t, info.Events, 1)
	assert.Equal(t, "Shenzhen", info.Events[0].Location)
	assert.Equal(t, testNow, info.RetrievedAt)
}

func TestHTTPProvider_Errors(t *testing.T) {
	t.Run("unknown shipment is not found", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := p.TrackShipment(context.Background(), "TRK-404", "")
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("carrier outage is wrapped", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.Path, "/auto/")
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		_, err := p.TrackShipment(context.Background(), "TRK-503", "")
		var se *httpclient.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	})

	t.Run("blank tracking number", func(t *testing.T) {
		p := NewHTTPProvider("http://carrier.invalid", "", httpclient.New(httpclient.Config{Name: "tracking"}, nil))
		_, err := p.TrackShipment(context.Background(), "  ", "dhl")
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})
}

type countingProvider struct {
	calls atomic.Int32
	err   error
}

func (p *countingProvider) TrackShipment(_ context.Context, trackingNumber, carrier string) (*trade.ShipmentInfo, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return &trade.ShipmentInfo{TrackingNumber: trackingNumber, Carrier: carrier, Status: "DELIVERED", RetrievedAt: testNow}, nil
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (*trade.ShipmentInfo, error) {
	return nil, errors.New("cache down")
}
func (failingCache) Set(context.Context, string, *trade.ShipmentInfo, time.Duration) error {
	return errors.New("cache down")
}
func (failingCache) Delete(context.Context, string) error { return nil }

func TestCachedProvider(t *testing.T) {
	t.Run("second lookup is served from cache", func(t *testing.T) {
		next := &countingProvider{}
		metrics := telemetry.NewBusinessMetrics(nil)
		p := NewCachedProvider(next, cache.NewInMemoryShipmentCache(), time.Minute, metrics, nil)

		for i := 0; i < 3; i++ {
			info, err := p.TrackShipment(context.Background(), "TRK-1", "DHL")
			require.NoError(t, err)
			assert.Equal(t, "DELIVERED", info.Status)
		}
		assert.Equal(t, int32(1), next.calls.Load())

		count, err := testutil.GatherAndCount(metrics.Registry(), "tradewave_tracking_requests_total")
		require.NoError(t, err)
		assert.Equal(t, 2, count, "hit and miss series")
	})

	t.Run("carrier errors are not cached", func(t *testing.T) {
		next := &countingProvider{err: errors.New("timeout")}
		p := NewCachedProvider(next, cache.NewInMemoryShipmentCache(), time.Minute, nil, nil)

		for i := 0; i < 2; i++ {
			_, err := p.TrackShipment(context.Background(), "TRK-2", "dhl")
			require.Error(t, err)
		}
		assert.Equal(t, int32(2), next.calls.Load())
	})

	t.Run("broken cache falls through", func(t *testing.T) {
		next := &countingProvider{}
		p := NewCachedProvider(next, failingCache{}, time.Minute, nil, nil)

		info, err := p.TrackShipment(context.Background(), "TRK-3", "dhl")
		require.NoError(t, err)
		assert.Equal(t, "TRK-3", info.TrackingNumber)
	})
}
