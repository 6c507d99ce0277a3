// Package tracking looks shipments up at the logistics carrier API.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/httpclient"
)

type carrierEvent struct {
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type carrierResponse struct {
	TrackingNumber    string         `json:"tracking_number"`
	Carrier           string         `json:"carrier"`
	Status            string         `json:"status"`
	CurrentLocation   string         `json:"current_location"`
	EstimatedDelivery *time.Time     `json:"estimated_delivery"`
	Events            []carrierEvent `json:"events"`
}

// HTTPProvider implements trade.TrackingProvider against
// GET {baseURL}/v1/shipments/{carrier}/{trackingNumber}
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *httpclient.Client
	now     func() time.Time
}

// NewHTTPProvider creates a provider; client carries the breaker and rate limit
func NewHTTPProvider(baseURL, apiKey string, client *httpclient.Client) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		now:     time.Now,
	}
}

// TrackShipment fetches the carrier's current view of a shipment
func (p *HTTPProvider) TrackShipment(ctx context.Context, trackingNumber, carrier string) (*trade.ShipmentInfo, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, shared.NewValidationError("tracking number is required")
	}
	carrier = normalizeCarrier(carrier)

	endpoint := fmt.Sprintf("%s/v1/shipments/%s/%s", p.baseURL, url.PathEscape(carrier), url.PathEscape(trackingNumber))
	header := http.Header{}
	if p.apiKey != "" {
		header.Set("X-API-Key", p.apiKey)
	}

	var body carrierResponse
	if err := p.client.GetJSON(ctx, endpoint, header, &body); err != nil {
		var se *httpclient.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, shared.NewNotFoundError("Shipment")
		}
		return nil, fmt.Errorf("track shipment %s: %w", trackingNumber, err)
	}

	info := &trade.ShipmentInfo{
		TrackingNumber:    trackingNumber,
		Carrier:           carrier,
		Status:            body.Status,
		CurrentLocation:   body.CurrentLocation,
		EstimatedDelivery: body.EstimatedDelivery,
		RetrievedAt:       p.now().UTC(),
	}
	if body.Carrier != "" {
		info.Carrier = body.Carrier
	}
	for _, e := range body.Events {
		info.Events = append(info.Events, trade.TrackingEvent{
			Status:      e.Status,
			Location:    e.Location,
			Description: e.Description,
			OccurredAt:  e.OccurredAt,
		})
	}
	return info, nil
}

func normalizeCarrier(carrier string) string {
	carrier = strings.ToLower(strings.TrimSpace(carrier))
	if carrier == "" {
		return "auto"
	}
	return carrier
}

var _ trade.TrackingProvider = (*HTTPProvider)(nil)
