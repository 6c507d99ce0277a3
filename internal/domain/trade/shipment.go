package trade

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
)

// MinTrackingNumberLength is the shortest accepted carrier tracking identifier
const MinTrackingNumberLength = 3

// ShipmentDetails is the input to ConfirmShipment
type ShipmentDetails struct {
	TrackingNumber    string
	Provider          string
	EstimatedDelivery *time.Time
	Notes             string
}

// Normalize trims the details and validates them
func (d ShipmentDetails) Normalize() (ShipmentDetails, error) {
	d.TrackingNumber = strings.TrimSpace(d.TrackingNumber)
	d.Provider = strings.TrimSpace(d.Provider)
	d.Notes = strings.TrimSpace(d.Notes)
	if d.Provider == "" {
		return d, shared.NewValidationError("shipping provider is required")
	}
	if utf8.RuneCountInString(d.TrackingNumber) < MinTrackingNumberLength {
		return d, shared.NewValidationError("tracking number must be at least 3 characters")
	}
	return d, nil
}

// Shipment is the shipping sub-resource of a transaction
type Shipment struct {
	TrackingNumber    string     `json:"trackingNumber"`
	Provider          string     `json:"provider"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	ShippedAt         time.Time  `json:"shippedAt"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty"`

	// Last snapshot from the tracking provider; informational only
	CarrierStatus   string     `json:"carrierStatus,omitempty"`
	CurrentLocation string     `json:"currentLocation,omitempty"`
	LastTrackedAt   *time.Time `json:"lastTrackedAt,omitempty"`
}

// Matches reports whether details describe this same shipment
func (s *Shipment) Matches(d ShipmentDetails) bool {
	return strings.EqualFold(s.TrackingNumber, d.TrackingNumber) && strings.EqualFold(s.Provider, d.Provider)
}
