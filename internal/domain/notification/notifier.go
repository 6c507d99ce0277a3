// Package notification defines the outbound user notification port.
package notification

import (
	"context"

	"github.com/google/uuid"
)

// Type categorizes a notification for templating on the receiving side
type Type string

const (
	TypeVerificationApproved      Type = "VERIFICATION_APPROVED"
	TypeVerificationRejected      Type = "VERIFICATION_REJECTED"
	TypeVerificationInfoRequested Type = "VERIFICATION_INFO_REQUESTED"
	TypeTransactionCreated        Type = "TRANSACTION_CREATED"
	TypeTransactionShipped        Type = "TRANSACTION_SHIPPED"
	TypeTransactionDelivered      Type = "TRANSACTION_DELIVERED"
	TypeTransactionCancelled      Type = "TRANSACTION_CANCELLED"
	TypeEscrowReleased            Type = "ESCROW_RELEASED"
	TypeEscrowRefunded            Type = "ESCROW_REFUNDED"
)

// Notification is a message to a single user
type Notification struct {
	UserID      uuid.UUID `json:"userId"`
	Type        Type      `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	ResourceRef string    `json:"resourceRef,omitempty"`
}

// Notifier delivers notifications. Delivery is best effort; callers log
// failures and never roll back business state because of them.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
