package verification

import (
	"context"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/audit"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/verification"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles verification case operations
type Service struct {
	repo            verification.Repository
	auditRepo       audit.Repository
	txManager       shared.TxManager
	retry           shared.RetryPolicy
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
	now             func() time.Time
}

// NewService creates a new verification Service
func NewService(repo verification.Repository, auditRepo audit.Repository, txManager shared.TxManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		auditRepo: auditRepo,
		txManager: txManager,
		retry:     shared.DefaultRetryPolicy(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
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

// Submit creates a SUBMITTED case for the caller's business
func (s *Service) Submit(ctx context.Context, caller shared.Caller, req SubmitVerificationRequest) (*VerificationResponse, error) {
	if err := caller.Require(shared.RoleSupplier, shared.RoleBuyer, shared.RoleAdmin); err != nil {
		return nil, err
	}
	subjectID := caller.UserID
	if req.SubjectID != nil && caller.Is(shared.RoleAdmin) {
		subjectID = *req.SubjectID
	}
	now := s.now()

	existing, err := s.repo.FindLatestBySubject(ctx, subjectID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	if existing != nil && blocksNewSubmission(existing, now) {
		return nil, shared.NewDomainError(shared.CodeConflict, "an active verification case already exists").
			WithDetail("verificationId", existing.ID.String()).
			WithDetail("currentStatus", string(existing.Status))
	}

	c, err := verification.NewVerificationCase(subjectID, req.BusinessName, req.BusinessAgeYears,
		toDocuments(req.Documents), toComplianceItems(req.ComplianceItems, now), now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateWithEvents(ctx, c, c.PullDomainEvents()); err != nil {
		return nil, err
	}

	s.logger.Info("verification submitted",
		zap.String("verification_id", c.ID.String()),
		zap.String("subject_id", subjectID.String()),
		zap.Int("trust_score", c.TrustScore),
	)
	resp := ToVerificationResponse(c, now)
	return &resp, nil
}

// blocksNewSubmission is true while a case is in flight or still valid
func blocksNewSubmission(c *verification.VerificationCase, now time.Time) bool {
	switch c.Status {
	case verification.StatusRejected:
		return false
	case verification.StatusVerified:
		return !c.IsExpired(now)
	default:
		return true
	}
}

// Get returns the masked case; visible to its subject, reviewers and admins
func (s *Service) Get(ctx context.Context, caller shared.Caller, id uuid.UUID) (*VerificationResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := caller.RequireSelfOr(c.SubjectID, shared.RoleAdmin, shared.RoleReviewer); err != nil {
		return nil, err
	}
	resp := ToVerificationResponse(c, s.now())
	return &resp, nil
}

// Review applies a review action. Starting review on a case already under
// review reports Changed=false and writes nothing.
func (s *Service) Review(ctx context.Context, caller shared.Caller, id uuid.UUID, req ReviewRequest) (*ReviewResponse, error) {
	if err := caller.Require(shared.RoleAdmin, shared.RoleReviewer); err != nil {
		return nil, err
	}
	cmd := verification.ReviewCommand{
		Action: verification.Action(req.Action),
		Reason: req.Reason,
		Notes:  req.Notes,
	}

	var (
		result  *verification.VerificationCase
		changed bool
	)
	err := shared.RetryOnConcurrentModification(ctx, s.retry, func(ctx context.Context) error {
		c, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		changed, err = c.Review(caller, cmd, now)
		if err != nil {
			return err
		}
		result = c
		if !changed {
			return nil
		}

		entry, err := audit.NewEntry(caller, audit.ActionVerificationReviewed, verification.AggregateTypeVerificationCase, c.ID, cmd.Reason,
			map[string]any{"action": string(cmd.Action), "status": string(c.Status), "trustScore": c.TrustScore}, now)
		if err != nil {
			return err
		}
		events := c.PullDomainEvents()
		return s.txManager.InTx(ctx, func(ctx context.Context) error {
			if err := s.repo.SaveWithLockAndEvents(ctx, c, events); err != nil {
				return err
			}
			return s.auditRepo.Create(ctx, entry)
		})
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.businessMetrics.RecordVerificationReview(string(cmd.Action))
		s.logger.Info("verification reviewed",
			zap.String("verification_id", id.String()),
			zap.String("action", string(cmd.Action)),
			zap.String("status", string(result.Status)),
			zap.String("reviewer_id", caller.UserID.String()),
		)
	}
	return &ReviewResponse{Verification: ToVerificationResponse(result, s.now()), Changed: changed}, nil
}

// Resubmit sends an INFO_REQUESTED or REJECTED case back; only the subject may do it
func (s *Service) Resubmit(ctx context.Context, caller shared.Caller, id uuid.UUID, req ResubmitRequest) (*VerificationResponse, error) {
	var result *verification.VerificationCase
	err := shared.RetryOnConcurrentModification(ctx, s.retry, func(ctx context.Context) error {
		c, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := caller.RequireSelfOr(c.SubjectID, shared.RoleAdmin); err != nil {
			return err
		}
		now := s.now()
		if err := c.Resubmit(caller, toDocuments(req.Documents), toComplianceItems(req.ComplianceItems, now), now); err != nil {
			return err
		}
		result = c
		return s.repo.SaveWithLockAndEvents(ctx, c, c.PullDomainEvents())
	})
	if err != nil {
		return nil, err
	}
	resp := ToVerificationResponse(result, s.now())
	return &resp, nil
}

// SetDocumentStatus records a verdict on one document and refreshes the trust score
func (s *Service) SetDocumentStatus(ctx context.Context, caller shared.Caller, id, documentID uuid.UUID, req DocumentStatusRequest) (*VerificationResponse, error) {
	return s.mutate(ctx, caller, id, func(c *verification.VerificationCase, now time.Time) error {
		if err := c.SetDocumentStatus(documentID, verification.DocumentStatus(req.Status), now); err != nil {
			return err
		}
		c.RecalculateTrust(now)
		return nil
	})
}

// SetComplianceItem marks a compliance item and refreshes the trust score
func (s *Service) SetComplianceItem(ctx context.Context, caller shared.Caller, id uuid.UUID, code string, req ComplianceItemRequest) (*VerificationResponse, error) {
	return s.mutate(ctx, caller, id, func(c *verification.VerificationCase, now time.Time) error {
		if err := c.SetComplianceItem(code, req.Completed, now); err != nil {
			return err
		}
		c.RecalculateTrust(now)
		return nil
	})
}

// RecalculateTrust recomputes the case's trust score on demand
func (s *Service) RecalculateTrust(ctx context.Context, caller shared.Caller, id uuid.UUID) (*VerificationResponse, error) {
	return s.mutate(ctx, caller, id, func(c *verification.VerificationCase, now time.Time) error {
		c.RecalculateTrust(now)
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, caller shared.Caller, id uuid.UUID, fn func(*verification.VerificationCase, time.Time) error) (*VerificationResponse, error) {
	if err := caller.Require(shared.RoleAdmin, shared.RoleReviewer); err != nil {
		return nil, err
	}
	var result *verification.VerificationCase
	err := shared.RetryOnConcurrentModification(ctx, s.retry, func(ctx context.Context) error {
		c, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(c, s.now()); err != nil {
			return err
		}
		result = c
		return s.repo.SaveWithLockAndEvents(ctx, c, c.PullDomainEvents())
	})
	if err != nil {
		return nil, err
	}
	resp := ToVerificationResponse(result, s.now())
	return &resp, nil
}
