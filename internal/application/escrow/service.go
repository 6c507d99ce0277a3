package escrow

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

// Service handles escrow operations. Every change to an escrow that affects
// its transaction commits both aggregates together.
type Service struct {
	escrows         escrow.Repository
	transactions    trade.TransactionRepository
	auditRepo       audit.Repository
	txManager       shared.TxManager
	retry           shared.RetryPolicy
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
	now             func() time.Time
}

// NewService creates a new escrow Service
func NewService(escrows escrow.Repository, transactions trade.TransactionRepository, auditRepo audit.Repository, txManager shared.TxManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		escrows:      escrows,
		transactions: transactions,
		auditRepo:    auditRepo,
		txManager:    txManager,
		retry:        shared.DefaultRetryPolicy(),
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetRetryPolicy sets the optimistic locking retry policy
func (s *Service) SetRetryPolicy(p shared.RetryPolicy) {
	s.retry = p
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Open creates the escrow of a transaction still pending admin review
func (s *Service) Open(ctx context.Context, caller shared.Caller, req OpenEscrowRequest) (*EscrowResponse, error) {
	if err := caller.Require(shared.RoleAdmin); err != nil {
		return nil, err
	}

	var result *escrow.Escrow
	err := shared.RetryOnConcurrentModification(ctx, s.retry, func(ctx context.Context) error {
		t, err := s.transactions.FindByID(ctx, req.TransactionID)
		if err != nil {
			return err
		}
		if t.EscrowID != nil {
			return shared.NewDomainError(shared.CodeConflict, "transaction already has an escrow").
				WithDetail("escrowId", t.EscrowID.String())
		}
		if t.Status != trade.TransactionPendingAdminReview {
			return shared.NewDomainError(shared.CodePreconditionFailed,
				"escrow can only be opened while the transaction is pending admin review").
				WithDetail("currentStatus", string(t.Status))
		}

		now := s.now()
		e, err := escrow.Open(caller.UserID, escrow.OpenParams{
			TransactionID:     t.ID,
			Total:             t.Amount,
			Currency:          t.Currency,
			AdvancePercentage: req.AdvancePercentage,
			PaymentTerms:      t.PaymentTerms,
		}, now)
		if err != nil {
			return err
		}
		if err := t.MarkEscrowCreated(caller.UserID, e.ID, e.AdvanceAmount, e.BalanceAmount, now); err != nil {
			return err
		}

		err = s.txManager.InTx(ctx, func(ctx context.Context) error {
			if err := s.escrows.CreateWithEvents(ctx, e, e.PullDomainEvents()); err != nil {
				return err
			}
			return s.transactions.SaveWithLockAndEvents(ctx, t, t.PullDomainEvents())
		})
		if err != nil {
			return err
		}
		result = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.businessMetrics.RecordEscrowTransition(string(result.Status))
	s.logger.Info("escrow opened",
		zap.String("escrow_id", result.ID.String()),
		zap.String("transaction_id", result.TransactionID.String()),
		zap.String("advance", result.AdvanceAmount.StringFixed(2)),
		zap.String("balance", result.BalanceAmount.StringFixed(2)),
	)
	resp := ToEscrowResponse(result)
	return &resp, nil
}

// Get returns an escrow to an admin, reviewer or a party of its transaction
func (s *Service) Get(ctx context.Context, caller shared.Caller, id uuid.UUID) (*EscrowResponse, error) {
	e, err := s.escrows.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Is(shared.RoleAdmin, shared.RoleReviewer) {
		t, err := s.transactions.FindByID(ctx, e.TransactionID)
		if err != nil {
			return nil, err
		}
		if !t.IsParty(caller.UserID) {
			return nil, shared.ErrForbidden
		}
	}
	resp := ToEscrowResponse(e)
	return &resp, nil
}

// SatisfyReleaseCondition marks one release condition satisfied. Repeating it
// is a no-op that writes nothing and raises no event.
func (s *Service) SatisfyReleaseCondition(ctx context.Context, caller shared.Caller, id uuid.UUID, conditionType string) (*ConditionChangeResponse, error) {
	if err := caller.Require(shared.RoleAdmin, shared.RoleSystem); err != nil {
		return nil, err
	}
	ct := escrow.ConditionType(conditionType)
	if !ct.IsValid() {
		return nil, shared.NewValidationError("unknown release condition: " + conditionType)
	}

	var result *escrow.Escrow
	var changed bool
	err := shared.RetryOnConcurrentModification(ctx, s.retry, func(ctx context.Context) error {
		e, err := s.escrows.FindByID(ctx, id)
		if err != nil {
			return err
		}
		ok, err := e.SatisfyCondition(ct, caller.UserID, s.now())
		if err != nil {
			return err
		}
		if ok {
			if err := s.escrows.SaveWithLockAndEvents(ctx, e, e.PullDomainEvents()); err != nil {
				return err
			}
		}
		result, changed = e, ok
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("escrow release condition satisfied",
			zap.String("escrow_id", id.String()),
			zap.String("condition", conditionType),
			zap.Bool("all_satisfied", result.AllConditionsSatisfied()),
		)
	}
	return &ConditionChangeResponse{Escrow: ToEscrowResponse(result), Changed: changed}, nil
}

// RecordPayment records one payment stage and moves the transaction along with it
func (s *Service) RecordPayment(ctx context.Context, caller shared.Caller, id uuid.UUID, req RecordPaymentRequest) (*ConditionChangeResponse, error) {
	if err := caller.Require(shared.RoleAdmin, shared.RoleSystem); err != nil {
		return nil, err
	}
	stage := trade.PaymentStage(req.Stage)
	if !stage.IsValid() {
		return nil, shared.NewValidationError("invalid payment stage: " + req.Stage)
	}

	return s.withTransaction(ctx, id, func(e *escrow.Escrow, t *trade.Transaction, now time.Time) (bool, *audit.Entry, error) {
		var changed bool
		var err error
		if stage == trade.PaymentStageAdvance {
			changed, err = e.RecordAdvancePayment(caller.UserID, now)
		} else {
			changed, err = e.RecordBalancePayment(caller.UserID, now)
		}
		if err != nil || !changed {
			return false, nil, err
		}
		txStage := trade.PaymentStageAdvance
		if e.Status == escrow.StatusFunded {
			txStage = trade.PaymentStageBalance
		}
		if _, err := t.RecordPayment(caller.UserID, txStage, now); err != nil {
			return false, nil, err
		}
		return true, nil, nil
	})
}

// Release pays the supplier and completes a delivered transaction
func (s *Service) Release(ctx context.Context, caller shared.Caller, id uuid.UUID) (*ConditionChangeResponse, error) {
	if err := caller.Require(shared.RoleAdmin); err != nil {
		return nil, err
	}
	return s.withTransaction(ctx, id, func(e *escrow.Escrow, t *trade.Transaction, now time.Time) (bool, *audit.Entry, error) {
		if e.Status == escrow.StatusReleased {
			return false, nil, nil
		}
		if err := e.Release(caller.UserID, now); err != nil {
			return false, nil, err
		}
		if t.Status == trade.TransactionDelivered {
			if _, err := t.Complete(caller.UserID, now); err != nil {
				return false, nil, err
			}
		}
		entry, err := audit.NewEntry(caller, audit.ActionEscrowReleased, escrow.AggregateTypeEscrow, e.ID, "",
			map[string]any{"transactionId": t.ID.String(), "amount": e.TotalAmount.StringFixed(2)}, now)
		return true, entry, err
	})
}

// Refund returns the funds to the buyer
func (s *Service) Refund(ctx context.Context, caller shared.Caller, id uuid.UUID, req ReasonRequest) (*ConditionChangeResponse, error) {
	if err := caller.Require(shared.RoleAdmin); err != nil {
		return nil, err
	}
	return s.withTransaction(ctx, id, func(e *escrow.Escrow, t *trade.Transaction, now time.Time) (bool, *audit.Entry, error) {
		if err := e.Refund(caller.UserID, req.Reason, now); err != nil {
			return false, nil, err
		}
		entry, err := audit.NewEntry(caller, audit.ActionEscrowRefunded, escrow.AggregateTypeEscrow, e.ID, e.RefundReason,
			map[string]any{"transactionId": t.ID.String(), "amount": e.TotalAmount.StringFixed(2)}, now)
		return true, entry, err
	})
}

// Dispute freezes the escrow. Admins and the parties of the transaction may raise one.
func (s *Service) Dispute(ctx context.Context, caller shared.Caller, id uuid.UUID, req ReasonRequest) (*ConditionChangeResponse, error) {
	return s.withTransaction(ctx, id, func(e *escrow.Escrow, t *trade.Transaction, now time.Time) (bool, *audit.Entry, error) {
		if !caller.Is(shared.RoleAdmin) && !t.IsParty(caller.UserID) {
			return false, nil, shared.ErrForbidden
		}
		if err := e.Dispute(caller.UserID, req.Reason, now); err != nil {
			return false, nil, err
		}
		return true, nil, nil
	})
}

// withTransaction runs fn against an escrow and its transaction and commits
// both, plus the optional audit entry, when fn reports a change
func (s *Service) withTransaction(
	ctx context.Context,
	id uuid.UUID,
	fn func(e *escrow.Escrow, t *trade.Transaction, now time.Time) (bool, *audit.Entry, error),
) (*ConditionChangeResponse, error) {
	var result *escrow.Escrow
	var changed bool
	err := shared.RetryOnConcurrentModification(ctx, s.retry, func(ctx context.Context) error {
		e, err := s.escrows.FindByID(ctx, id)
		if err != nil {
			return err
		}
		t, err := s.transactions.FindByID(ctx, e.TransactionID)
		if err != nil {
			return err
		}
		ok, entry, err := fn(e, t, s.now())
		if err != nil {
			return err
		}
		if ok {
			escrowEvents := e.PullDomainEvents()
			txEvents := t.PullDomainEvents()
			err = s.txManager.InTx(ctx, func(ctx context.Context) error {
				if err := s.escrows.SaveWithLockAndEvents(ctx, e, escrowEvents); err != nil {
					return err
				}
				if len(txEvents) > 0 {
					if err := s.transactions.SaveWithLockAndEvents(ctx, t, txEvents); err != nil {
						return err
					}
				}
				if entry != nil {
					return s.auditRepo.Create(ctx, entry)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		result, changed = e, ok
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.businessMetrics.RecordEscrowTransition(string(result.Status))
		s.logger.Info("escrow updated",
			zap.String("escrow_id", result.ID.String()),
			zap.String("status", string(result.Status)),
		)
	}
	return &ConditionChangeResponse{Escrow: ToEscrowResponse(result), Changed: changed}, nil
}
