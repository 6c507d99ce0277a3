package escrow

import (
	"context"
	"fmt"

	"github.com/Goutham009/tradewave-sub005/internal/domain/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"go.uber.org/zap"
)

// DeliveryConfirmedHandler satisfies the DELIVERY_CONFIRMED release condition
// when a transaction is delivered
type DeliveryConfirmedHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewDeliveryConfirmedHandler creates a new handler for transaction delivered events
func NewDeliveryConfirmedHandler(service *Service, logger *zap.Logger) *DeliveryConfirmedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryConfirmedHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *DeliveryConfirmedHandler) EventTypes() []string {
	return []string{trade.EventTypeTransactionDelivered}
}

// Handle processes a TransactionDeliveredEvent
func (h *DeliveryConfirmedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	delivered, ok := event.(*trade.TransactionDeliveredEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeTransactionDelivered, event.EventType())
	}
	if delivered.EscrowID == nil {
		h.logger.Debug("delivered transaction has no escrow, skipping",
			zap.String("transaction_id", delivered.TransactionID.String()),
		)
		return nil
	}

	// The delivering actor is recorded as the one who satisfied the condition
	caller := shared.NewCaller(delivered.ActorID(), shared.RoleSystem)
	resp, err := h.service.SatisfyReleaseCondition(ctx, caller, *delivered.EscrowID, string(escrow.ConditionDeliveryConfirmed))
	if err != nil {
		h.logger.Error("failed to satisfy delivery release condition",
			zap.String("transaction_id", delivered.TransactionID.String()),
			zap.String("escrow_id", delivered.EscrowID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("satisfy delivery condition: %w", err)
	}

	h.logger.Info("delivery release condition processed",
		zap.String("transaction_id", delivered.TransactionID.String()),
		zap.String("escrow_id", delivered.EscrowID.String()),
		zap.Bool("changed", resp.Changed),
	)
	return nil
}
