package risk

import (
	"context"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/audit"
	"github.com/Goutham009/tradewave-sub005/internal/domain/risk"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes buyer trust profiles and the good-standing evaluation
type Service struct {
	repo      risk.ProfileRepository
	auditRepo audit.Repository
	txManager shared.TxManager
	policy    risk.StandingPolicy
	retry     shared.RetryPolicy
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new risk Service
func NewService(repo risk.ProfileRepository, auditRepo audit.Repository, txManager shared.TxManager, policy risk.StandingPolicy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		auditRepo: auditRepo,
		txManager: txManager,
		policy:    policy,
		retry:     shared.DefaultRetryPolicy(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetRetryPolicy sets the optimistic locking retry policy
func (s *Service) SetRetryPolicy(p shared.RetryPolicy) {
	s.retry = p
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Policy returns the configured standing policy
func (s *Service) Policy() risk.StandingPolicy {
	return s.policy
}

// LoadProfile returns the buyer's profile, or a fresh default profile when the
// risk subsystem has none yet. The bool reports whether it came from storage.
func (s *Service) LoadProfile(ctx context.Context, buyerID uuid.UUID) (*risk.BuyerTrustProfile, bool, error) {
	p, err := s.repo.FindByBuyerID(ctx, buyerID)
	if err == nil {
		return p, true, nil
	}
	if !shared.IsNotFound(err) {
		return nil, false, err
	}
	p, err = risk.NewBuyerTrustProfile(buyerID, s.now())
	if err != nil {
		return nil, false, err
	}
	return p, false, nil
}

// EvaluateStanding runs the good-standing checks without authorization; the
// admission flow calls it with its own caller checks already applied.
func (s *Service) EvaluateStanding(ctx context.Context, buyerID uuid.UUID) (*risk.StandingResult, error) {
	p, _, err := s.LoadProfile(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	result := risk.EvaluateStanding(p, s.policy)
	return &result, nil
}

// GetStanding reports whether a buyer is in good standing
func (s *Service) GetStanding(ctx context.Context, caller shared.Caller, buyerID uuid.UUID) (*StandingResponse, error) {
	if err := caller.Require(shared.RoleAdmin, shared.RoleReviewer); err != nil {
		return nil, err
	}
	result, err := s.EvaluateStanding(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	resp := ToStandingResponse(buyerID, *result)
	return &resp, nil
}

// GetTrustProfile returns the buyer's trust profile
func (s *Service) GetTrustProfile(ctx context.Context, caller shared.Caller, buyerID uuid.UUID) (*TrustProfileResponse, error) {
	if err := caller.Require(shared.RoleAdmin, shared.RoleReviewer); err != nil {
		return nil, err
	}
	p, persisted, err := s.LoadProfile(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	resp := ToTrustProfileResponse(p, s.policy.Weights, persisted)
	return &resp, nil
}

// UpdateSignals stores fresh scores from the upstream risk subsystems
func (s *Service) UpdateSignals(ctx context.Context, caller shared.Caller, buyerID uuid.UUID, req UpdateSignalsRequest) (*TrustProfileResponse, error) {
	if err := caller.Require(shared.RoleAdmin, shared.RoleSystem); err != nil {
		return nil, err
	}
	scores := risk.SubScores{
		PaymentReliability: req.PaymentReliability,
		DisputeHistory:     req.DisputeHistory,
		Behavioral:         req.Behavioral,
		Compliance:         req.Compliance,
	}
	return s.mutate(ctx, buyerID, func(p *risk.BuyerTrustProfile, now time.Time) error {
		return p.UpdateSignals(scores, req.PaymentOnTimePercentage, req.TotalTransactions, req.TotalDisputes, now)
	})
}

// RaiseFlag raises a risk flag against the buyer
func (s *Service) RaiseFlag(ctx context.Context, caller shared.Caller, buyerID uuid.UUID, req RaiseFlagRequest) (*TrustProfileResponse, error) {
	if err := caller.Require(shared.RoleAdmin, shared.RoleReviewer, shared.RoleSystem); err != nil {
		return nil, err
	}
	return s.mutate(ctx, buyerID, func(p *risk.BuyerTrustProfile, now time.Time) error {
		_, err := p.RaiseFlag(req.Type, risk.Severity(req.Severity), now)
		return err
	})
}

// ResolveFlag resolves a risk flag
func (s *Service) ResolveFlag(ctx context.Context, caller shared.Caller, buyerID, flagID uuid.UUID) (*TrustProfileResponse, error) {
	if err := caller.Require(shared.RoleAdmin, shared.RoleReviewer); err != nil {
		return nil, err
	}
	return s.mutate(ctx, buyerID, func(p *risk.BuyerTrustProfile, now time.Time) error {
		return p.ResolveFlag(flagID, now)
	})
}

// SetBlacklist changes the buyer's blacklist status and writes an audit entry
func (s *Service) SetBlacklist(ctx context.Context, caller shared.Caller, buyerID uuid.UUID, req SetBlacklistRequest) (*TrustProfileResponse, error) {
	if err := caller.Require(shared.RoleAdmin); err != nil {
		return nil, err
	}
	var result *risk.BuyerTrustProfile
	err := shared.RetryOnConcurrentModification(ctx, s.retry, func(ctx context.Context) error {
		p, persisted, err := s.LoadProfile(ctx, buyerID)
		if err != nil {
			return err
		}
		now := s.now()
		if err := p.SetBlacklistStatus(risk.BlacklistStatus(req.Status), req.Reason, now); err != nil {
			return err
		}
		entry, err := audit.NewEntry(caller, audit.ActionBlacklistChanged, risk.AggregateTypeBuyerTrustProfile, p.ID, req.Reason,
			map[string]any{"buyerId": buyerID.String(), "status": req.Status}, now)
		if err != nil {
			return err
		}
		result = p
		events := p.PullDomainEvents()
		return s.txManager.InTx(ctx, func(ctx context.Context) error {
			if err := s.save(ctx, p, persisted, events); err != nil {
				return err
			}
			return s.auditRepo.Create(ctx, entry)
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.Warn("buyer blacklist status changed",
		zap.String("buyer_id", buyerID.String()),
		zap.String("status", req.Status),
		zap.String("actor_id", caller.UserID.String()),
	)
	resp := ToTrustProfileResponse(result, s.policy.Weights, true)
	return &resp, nil
}

func (s *Service) mutate(ctx context.Context, buyerID uuid.UUID, fn func(*risk.BuyerTrustProfile, time.Time) error) (*TrustProfileResponse, error) {
	var result *risk.BuyerTrustProfile
	err := shared.RetryOnConcurrentModification(ctx, s.retry, func(ctx context.Context) error {
		p, persisted, err := s.LoadProfile(ctx, buyerID)
		if err != nil {
			return err
		}
		if err := fn(p, s.now()); err != nil {
			return err
		}
		result = p
		return s.save(ctx, p, persisted, p.PullDomainEvents())
	})
	if err != nil {
		return nil, err
	}
	resp := ToTrustProfileResponse(result, s.policy.Weights, true)
	return &resp, nil
}

func (s *Service) save(ctx context.Context, p *risk.BuyerTrustProfile, persisted bool, events []shared.DomainEvent) error {
	if persisted {
		return s.repo.SaveWithLockAndEvents(ctx, p, events)
	}
	err := s.repo.CreateWithEvents(ctx, p, events)
	if shared.IsConflict(err) {
		// another writer created the profile first; reload and retry
		return shared.ErrConcurrencyConflict
	}
	return err
}
