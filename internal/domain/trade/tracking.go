package trade

import (
	"context"
	"time"
)

// TrackingEvent is one checkpoint reported by a carrier
type TrackingEvent struct {
	Status      string    `json:"status"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// ShipmentInfo is a carrier's view of a shipment
type ShipmentInfo struct {
	TrackingNumber    string          `json:"trackingNumber"`
	Carrier           string          `json:"carrier"`
	Status            string          `json:"status"`
	CurrentLocation   string          `json:"currentLocation,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
	Events            []TrackingEvent `json:"events,omitempty"`
	RetrievedAt       time.Time       `json:"retrievedAt"`
}

// TrackingProvider looks up shipments at the carrier. Results enrich responses
// only; they never drive transaction status.
type TrackingProvider interface {
	TrackShipment(ctx context.Context, trackingNumber, carrier string) (*ShipmentInfo, error)
}
