package notification

import (
	"context"
	"fmt"

	"github.com/Goutham009/tradewave-sub005/internal/domain/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/notification"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared/valueobject"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/Goutham009/tradewave-sub005/internal/domain/verification"
	"go.uber.org/zap"
)

// Handler turns domain events into user notifications
type Handler struct {
	notifier     notification.Notifier
	transactions trade.TransactionRepository
	logger       *zap.Logger
}

// NewHandler creates a new notification Handler. transactions resolves the
// parties of escrow events, which carry only the transaction id.
func NewHandler(notifier notification.Notifier, transactions trade.TransactionRepository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{notifier: notifier, transactions: transactions, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *Handler) EventTypes() []string {
	return []string{
		verification.EventTypeVerificationApproved,
		verification.EventTypeVerificationRejected,
		verification.EventTypeVerificationInfoRequested,
		trade.EventTypeTransactionCreated,
		trade.EventTypeTransactionShipped,
		trade.EventTypeTransactionDelivered,
		trade.EventTypeTransactionCancelled,
		escrow.EventTypeEscrowReleased,
		escrow.EventTypeEscrowRefunded,
	}
}

// Handle builds the notifications for event and sends them.
// Send failures are logged; only lookup failures are returned so the event is retried.
func (h *Handler) Handle(ctx context.Context, event shared.DomainEvent) error {
	notifications, err := h.build(ctx, event)
	if err != nil {
		return err
	}
	for _, n := range notifications {
		if err := h.notifier.Notify(ctx, n); err != nil {
			h.logger.Warn("notification delivery failed",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.String("user_id", n.UserID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (h *Handler) build(ctx context.Context, event shared.DomainEvent) ([]notification.Notification, error) {
	switch e := event.(type) {
	case *verification.ApprovedEvent:
		return []notification.Notification{{
			UserID:      e.SubjectID,
			Type:        notification.TypeVerificationApproved,
			Title:       "Business verification approved",
			Message:     fmt.Sprintf("Your business is verified with a trust score of %d.", e.TrustScore),
			ResourceRef: "verification:" + e.CaseID.String(),
		}}, nil

	case *verification.RejectedEvent:
		return []notification.Notification{{
			UserID:      e.SubjectID,
			Type:        notification.TypeVerificationRejected,
			Title:       "Business verification rejected",
			Message:     e.Reason,
			ResourceRef: "verification:" + e.CaseID.String(),
		}}, nil

	case *verification.InfoRequestedEvent:
		return []notification.Notification{{
			UserID:      e.SubjectID,
			Type:        notification.TypeVerificationInfoRequested,
			Title:       "More information needed for verification",
			Message:     e.Reason,
			ResourceRef: "verification:" + e.CaseID.String(),
		}}, nil

	case *trade.TransactionCreatedEvent:
		ref := "transaction:" + e.TransactionID.String()
		msg := fmt.Sprintf("A transaction of %s was created.", valueobject.NewMoney(e.Amount, e.Currency))
		return []notification.Notification{
			{UserID: e.BuyerID, Type: notification.TypeTransactionCreated, Title: "Transaction created", Message: msg, ResourceRef: ref},
			{UserID: e.SupplierID, Type: notification.TypeTransactionCreated, Title: "Transaction created", Message: msg, ResourceRef: ref},
		}, nil

	case *trade.TransactionShippedEvent:
		return []notification.Notification{{
			UserID:      e.BuyerID,
			Type:        notification.TypeTransactionShipped,
			Title:       "Your order has shipped",
			Message:     fmt.Sprintf("Shipped with %s, tracking number %s.", e.Provider, e.TrackingNumber),
			ResourceRef: "transaction:" + e.TransactionID.String(),
		}}, nil

	case *trade.TransactionDeliveredEvent:
		return []notification.Notification{{
			UserID:      e.SupplierID,
			Type:        notification.TypeTransactionDelivered,
			Title:       "Delivery confirmed",
			Message:     "The buyer confirmed delivery.",
			ResourceRef: "transaction:" + e.TransactionID.String(),
		}}, nil

	case *trade.TransactionCancelledEvent:
		ref := "transaction:" + e.TransactionID.String()
		return []notification.Notification{
			{UserID: e.BuyerID, Type: notification.TypeTransactionCancelled, Title: "Transaction cancelled", Message: e.Reason, ResourceRef: ref},
			{UserID: e.SupplierID, Type: notification.TypeTransactionCancelled, Title: "Transaction cancelled", Message: e.Reason, ResourceRef: ref},
		}, nil

	case *escrow.EscrowReleasedEvent:
		t, err := h.transactions.FindByID(ctx, e.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("load transaction for escrow release: %w", err)
		}
		return []notification.Notification{{
			UserID:      t.SupplierID,
			Type:        notification.TypeEscrowReleased,
			Title:       "Escrow released",
			Message:     fmt.Sprintf("%s was released to you.", valueobject.NewMoney(e.Amount, e.Currency)),
			ResourceRef: "escrow:" + e.EscrowID.String(),
		}}, nil

	case *escrow.EscrowRefundedEvent:
		t, err := h.transactions.FindByID(ctx, e.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("load transaction for escrow refund: %w", err)
		}
		return []notification.Notification{{
			UserID:      t.BuyerID,
			Type:        notification.TypeEscrowRefunded,
			Title:       "Escrow refunded",
			Message:     e.Reason,
			ResourceRef: "escrow:" + e.EscrowID.String(),
		}}, nil
	}

	h.logger.Debug("no notification for event", zap.String("event_type", event.EventType()))
	return nil, nil
}
