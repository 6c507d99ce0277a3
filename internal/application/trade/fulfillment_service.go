package trade

import (
	"context"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/audit"
	"github.com/Goutham009/tradewave-sub005/internal/domain/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FulfillmentService moves admitted transactions through shipping and delivery
type FulfillmentService struct {
	transactions    trade.TransactionRepository
	escrows         escrow.Repository
	auditRepo       audit.Repository
	tracking        trade.TrackingProvider
	txManager       shared.TxManager
	retry           shared.RetryPolicy
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
	now             func() time.Time
}

// NewFulfillmentService creates a new FulfillmentService. tracking may be nil,
// in which case TrackShipment returns the stored shipment only.
func NewFulfillmentService(
	transactions trade.TransactionRepository,
	escrows escrow.Repository,
	auditRepo audit.Repository,
	tracking trade.TrackingProvider,
	txManager shared.TxManager,
	logger *zap.Logger,
) *FulfillmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FulfillmentService{
		transactions: transactions,
		escrows:      escrows,
		auditRepo:    auditRepo,
		tracking:     tracking,
		txManager:    txManager,
		retry:        shared.DefaultRetryPolicy(),
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *FulfillmentService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetRetryPolicy sets the optimistic locking retry policy
func (s *FulfillmentService) SetRetryPolicy(p shared.RetryPolicy) {
	s.retry = p
}

// SetClock overrides the time source
func (s *FulfillmentService) SetClock(now func() time.Time) {
	s.now = now
}

// GetTransaction returns a transaction to an admin, reviewer or one of its parties
func (s *FulfillmentService) GetTransaction(ctx context.Context, caller shared.Caller, id uuid.UUID) (*TransactionResponse, error) {
	t, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeParty(caller, t); err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(t)
	return &resp, nil
}

// StartProduction marks a paid transaction as in production
func (s *FulfillmentService) StartProduction(ctx context.Context, caller shared.Caller, id uuid.UUID) (*TransitionResponse, error) {
	return s.mutate(ctx, id, func(t *trade.Transaction, now time.Time) (bool, error) {
		if err := authorizeSupplier(caller, t); err != nil {
			return false, err
		}
		return t.StartProduction(caller.UserID, now)
	})
}

// ConfirmShipment records the carrier handover
func (s *FulfillmentService) ConfirmShipment(ctx context.Context, caller shared.Caller, id uuid.UUID, req ConfirmShipmentRequest) (*TransitionResponse, error) {
	details := trade.ShipmentDetails{
		TrackingNumber:    req.TrackingNumber,
		Provider:          req.Provider,
		EstimatedDelivery: req.EstimatedDelivery,
		Notes:             req.Notes,
	}
	resp, err := s.mutate(ctx, id, func(t *trade.Transaction, now time.Time) (bool, error) {
		if err := authorizeSupplier(caller, t); err != nil {
			return false, err
		}
		return t.ConfirmShipment(caller.UserID, details, now)
	})
	if err != nil {
		return nil, err
	}
	if resp.Changed {
		s.logger.Info("shipment confirmed",
			zap.String("transaction_id", id.String()),
			zap.String("provider", req.Provider),
		)
	}
	return resp, nil
}

// ConfirmDelivery records that the buyer received the goods
func (s *FulfillmentService) ConfirmDelivery(ctx context.Context, caller shared.Caller, id uuid.UUID) (*TransitionResponse, error) {
	return s.mutate(ctx, id, func(t *trade.Transaction, now time.Time) (bool, error) {
		if !caller.Is(shared.RoleAdmin) && !(caller.Is(shared.RoleBuyer) && caller.UserID == t.BuyerID) {
			return false, shared.ErrForbidden
		}
		return t.ConfirmDelivery(caller.UserID, now)
	})
}

// Complete closes a delivered transaction
func (s *FulfillmentService) Complete(ctx context.Context, caller shared.Caller, id uuid.UUID) (*TransitionResponse, error) {
	if err := caller.Require(shared.RoleAdmin); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(t *trade.Transaction, now time.Time) (bool, error) {
		return t.Complete(caller.UserID, now)
	})
}

// Cancel cancels a non-terminal transaction. Its escrow, when still open,
// is refunded in the same commit. Once the escrow paid the supplier the
// transaction can no longer be cancelled.
func (s *FulfillmentService) Cancel(ctx context.Context, caller shared.Caller, id uuid.UUID, req CancelTransactionRequest) (*TransactionResponse, error) {
	if err := caller.Require(shared.RoleAdmin); err != nil {
		return nil, err
	}

	var result *trade.Transaction
	var refunded bool
	err := shared.RetryOnConcurrentModification(ctx, s.retry, func(ctx context.Context) error {
		t, err := s.transactions.FindByID(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		if err := t.Cancel(caller.UserID, req.Reason, now); err != nil {
			return err
		}

		var esc *escrow.Escrow
		if t.EscrowID != nil {
			esc, err = s.escrows.FindByID(ctx, *t.EscrowID)
			if err != nil {
				return err
			}
			if esc.Status == escrow.StatusReleased {
				return shared.NewDomainError(shared.CodeInvalidState, "escrow funds were already released to the supplier").
					WithDetail("escrowId", esc.ID.String()).
					WithDetail("escrowStatus", string(esc.Status))
			}
			if esc.Status.IsTerminal() {
				esc = nil
			} else if err := esc.Refund(caller.UserID, "transaction cancelled: "+t.CancelReason, now); err != nil {
				return err
			}
		}

		entry, err := audit.NewEntry(caller, audit.ActionTransactionCancelled, trade.AggregateTypeTransaction, t.ID, t.CancelReason,
			map[string]any{"offerId": t.OfferID.String(), "escrowRefunded": esc != nil}, now)
		if err != nil {
			return err
		}

		events := t.PullDomainEvents()
		err = s.txManager.InTx(ctx, func(ctx context.Context) error {
			if err := s.transactions.SaveWithLockAndEvents(ctx, t, events); err != nil {
				return err
			}
			if esc != nil {
				if err := s.escrows.SaveWithLockAndEvents(ctx, esc, esc.PullDomainEvents()); err != nil {
					return err
				}
			}
			return s.auditRepo.Create(ctx, entry)
		})
		if err != nil {
			return err
		}
		result, refunded = t, esc != nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	if refunded {
		s.businessMetrics.RecordEscrowTransition(string(escrow.StatusRefunded))
	}
	s.logger.Info("transaction cancelled",
		zap.String("transaction_id", id.String()),
		zap.String("actor_id", caller.UserID.String()),
		zap.Bool("escrow_refunded", refunded),
	)
	resp := ToTransactionResponse(result)
	return &resp, nil
}

// TrackShipment returns the stored shipment enriched with live carrier data.
// Carrier failures are reported on the response and never change the transaction.
func (s *FulfillmentService) TrackShipment(ctx context.Context, caller shared.Caller, id uuid.UUID) (*TrackingResponse, error) {
	t, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeParty(caller, t); err != nil {
		return nil, err
	}
	if t.Shipment == nil {
		return nil, shared.NewDomainError(shared.CodePreconditionFailed, "transaction has not been shipped").
			WithDetail("currentStatus", string(t.Status))
	}

	resp := &TrackingResponse{TransactionID: t.ID}
	if s.tracking != nil {
		info, err := s.tracking.TrackShipment(ctx, t.Shipment.TrackingNumber, t.Shipment.Provider)
		if err != nil {
			s.businessMetrics.RecordTrackingRequest("error")
			s.logger.Warn("tracking provider lookup failed",
				zap.String("transaction_id", t.ID.String()),
				zap.Error(err),
			)
			resp.CarrierError = err.Error()
		} else {
			s.businessMetrics.RecordTrackingRequest("ok")
			t.ApplyTracking(info.Status, info.CurrentLocation, s.now())
			resp.Carrier = info
		}
	}
	resp.Shipment = toShipmentResponse(t.Shipment)
	return resp, nil
}

func (s *FulfillmentService) mutate(ctx context.Context, id uuid.UUID, fn func(t *trade.Transaction, now time.Time) (bool, error)) (*TransitionResponse, error) {
	var result *trade.Transaction
	var changed bool
	err := shared.RetryOnConcurrentModification(ctx, s.retry, func(ctx context.Context) error {
		t, err := s.transactions.FindByID(ctx, id)
		if err != nil {
			return err
		}
		ok, err := fn(t, s.now())
		if err != nil {
			return err
		}
		if ok {
			if err := s.transactions.SaveWithLockAndEvents(ctx, t, t.PullDomainEvents()); err != nil {
				return err
			}
		}
		result, changed = t, ok
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &TransitionResponse{Transaction: ToTransactionResponse(result), Changed: changed}, nil
}

func authorizeParty(caller shared.Caller, t *trade.Transaction) error {
	if caller.Is(shared.RoleAdmin, shared.RoleReviewer) || t.IsParty(caller.UserID) {
		return nil
	}
	return shared.ErrForbidden
}

func authorizeSupplier(caller shared.Caller, t *trade.Transaction) error {
	if caller.Is(shared.RoleAdmin) || (caller.Is(shared.RoleSupplier) && caller.UserID == t.SupplierID) {
		return nil
	}
	return shared.ErrForbidden
}
