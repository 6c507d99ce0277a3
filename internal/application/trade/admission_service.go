package trade

import (
	"context"
	"strings"
	"time"

	escrowapp "github.com/Goutham009/tradewave-sub005/internal/application/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/audit"
	"github.com/Goutham009/tradewave-sub005/internal/domain/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/risk"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/trade"
	"github.com/Goutham009/tradewave-sub005/internal/domain/verification"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AdmissionConfig tunes the admission gates
type AdmissionConfig struct {
	Standing risk.StandingPolicy
	// AllowBlacklistOverride lets an admin override bypass an active blacklist
	AllowBlacklistOverride bool
	Retry                  shared.RetryPolicy
}

// AdmissionRepositories groups the stores admission reads and writes
type AdmissionRepositories struct {
	Offers        trade.OfferRepository
	Transactions  trade.TransactionRepository
	Verifications verification.Repository
	Profiles      risk.ProfileRepository
	Escrows       escrow.Repository
	Audit         audit.Repository
}

// AdmissionService turns accepted offers into transactions behind the
// compliance gates
type AdmissionService struct {
	repos           AdmissionRepositories
	txManager       shared.TxManager
	locker          shared.Locker
	cfg             AdmissionConfig
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
	now             func() time.Time
}

// NewAdmissionService creates a new AdmissionService
func NewAdmissionService(repos AdmissionRepositories, txManager shared.TxManager, locker shared.Locker, cfg AdmissionConfig, logger *zap.Logger) *AdmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retry == (shared.RetryPolicy{}) {
		cfg.Retry = shared.DefaultRetryPolicy()
	}
	return &AdmissionService{
		repos:     repos,
		txManager: txManager,
		locker:    locker,
		cfg:       cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *AdmissionService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetClock overrides the time source
func (s *AdmissionService) SetClock(now func() time.Time) {
	s.now = now
}

// OfferLockKey is the distributed lock key serializing admission per offer
func OfferLockKey(offerID uuid.UUID) string {
	return "admission:offer:" + offerID.String()
}

// CreateTransaction admits an accepted offer. Only admins may call it.
// Gate failures and duplicate admissions come back as outcomes on the result;
// errors are reserved for validation, authorization, missing data and faults.
func (s *AdmissionService) CreateTransaction(ctx context.Context, caller shared.Caller, req CreateTransactionRequest) (_ *AdmissionResult, err error) {
	started := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "admission.create_transaction", attribute.String("offer_id", req.OfferID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := caller.Require(shared.RoleAdmin); err != nil {
		return nil, err
	}

	offer, err := s.repos.Offers.FindByID(ctx, req.OfferID)
	if err != nil {
		return nil, err
	}
	if err := offer.EnsureAdmissible(); err != nil {
		return nil, err
	}
	if req.Escrow.requested() {
		if _, err := escrow.ComputeSplit(offer.TotalAmount, *req.Escrow.AdvancePercentage); err != nil {
			return nil, err
		}
	}

	var result *AdmissionResult
	err = s.locker.WithLock(ctx, OfferLockKey(offer.ID), func(ctx context.Context) error {
		return shared.RetryOnConcurrentModification(ctx, s.cfg.Retry, func(ctx context.Context) error {
			r, err := s.admit(ctx, caller, offer, req)
			if err != nil {
				return err
			}
			result = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("admission.outcome", result.Outcome))
	s.businessMetrics.RecordAdmission(result.Outcome, time.Since(started).Seconds(), result.OverrideApplied)
	fields := []zap.Field{
		zap.String("offer_id", offer.ID.String()),
		zap.String("buyer_id", offer.BuyerID.String()),
		zap.String("outcome", result.Outcome),
		zap.Bool("first_time_buyer", result.ChecksPerformed.IsFirstTimeBuyer),
	}
	if result.Transaction != nil {
		fields = append(fields, zap.String("transaction_id", result.Transaction.ID.String()))
	}
	s.logger.Info("transaction admission evaluated", fields...)
	return result, nil
}

// admissionEvidence is what the gates are evaluated against
type admissionEvidence struct {
	existing     *trade.Transaction
	liveCount    int64
	verification *verification.VerificationCase
	profile      *risk.BuyerTrustProfile
	persisted    bool
}

func (s *AdmissionService) loadEvidence(ctx context.Context, offer *trade.Offer) (*admissionEvidence, error) {
	ev := &admissionEvidence{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		existing, err := s.repos.Transactions.FindLiveByOffer(gctx, offer.ID)
		if err != nil && !shared.IsNotFound(err) {
			return err
		}
		ev.existing = existing
		return nil
	})
	g.Go(func() error {
		count, err := s.repos.Transactions.CountLiveByBuyer(gctx, offer.BuyerID)
		if err != nil {
			return err
		}
		ev.liveCount = count
		return nil
	})
	g.Go(func() error {
		c, err := s.repos.Verifications.FindLatestBySubject(gctx, offer.BuyerID)
		if err != nil && !shared.IsNotFound(err) {
			return err
		}
		ev.verification = c
		return nil
	})
	g.Go(func() error {
		p, err := s.repos.Profiles.FindByBuyerID(gctx, offer.BuyerID)
		if err == nil {
			ev.profile, ev.persisted = p, true
			return nil
		}
		if !shared.IsNotFound(err) {
			return err
		}
		ev.profile, err = risk.NewBuyerTrustProfile(offer.BuyerID, s.now())
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *AdmissionService) admit(ctx context.Context, caller shared.Caller, offer *trade.Offer, req CreateTransactionRequest) (*AdmissionResult, error) {
	ev, err := s.loadEvidence(ctx, offer)
	if err != nil {
		return nil, err
	}
	now := s.now()

	in := trade.AdmissionInput{
		Offer:                  offer,
		LiveBuyerTransactions:  ev.liveCount,
		Verification:           ev.verification,
		AllowBlacklistOverride: s.cfg.AllowBlacklistOverride,
		Now:                    now,
	}
	if ev.existing != nil {
		in.ExistingTransactionID = &ev.existing.ID
	}
	if !in.IsFirstTimeBuyer() {
		standing := risk.EvaluateStanding(ev.profile, s.cfg.Standing)
		in.Standing = &standing
	}
	if req.Override != nil {
		in.Override = &trade.GateOverride{AdminID: caller.UserID, Justification: req.Override.Justification}
	}

	decision, err := trade.DecideAdmission(in)
	if err != nil {
		return nil, err
	}
	if !decision.Admitted() {
		return &AdmissionResult{
			Outcome:               string(decision.Outcome),
			ChecksPerformed:       decision.Checks,
			ExistingTransactionID: decision.ExistingTransactionID,
		}, nil
	}

	tx, err := trade.NewTransaction(offer, caller.UserID, req.Notes, decision.Checks, now)
	if err != nil {
		return nil, err
	}
	var esc *escrow.Escrow
	if req.Escrow.requested() {
		terms := strings.TrimSpace(req.Escrow.PaymentTerms)
		if terms == "" {
			terms = tx.PaymentTerms
		}
		esc, err = escrow.Open(caller.UserID, escrow.OpenParams{
			TransactionID:     tx.ID,
			Total:             tx.Amount,
			Currency:          tx.Currency,
			AdvancePercentage: req.Escrow.AdvancePercentage,
			PaymentTerms:      terms,
		}, now)
		if err != nil {
			return nil, err
		}
		if err := tx.MarkEscrowCreated(caller.UserID, esc.ID, esc.AdvanceAmount, esc.BalanceAmount, now); err != nil {
			return nil, err
		}
	}
	ev.profile.IncrementOrderCount(now)

	var overrideEntry *audit.Entry
	if decision.OverrideApplied {
		overrideEntry, err = audit.NewEntry(caller, audit.ActionGateOverridden, trade.AggregateTypeTransaction, tx.ID, req.Override.Justification,
			map[string]any{
				"offerId":  offer.ID.String(),
				"buyerId":  offer.BuyerID.String(),
				"standing": decision.Checks.Standing,
			}, now)
		if err != nil {
			return nil, err
		}
	}

	txEvents := tx.PullDomainEvents()
	err = s.txManager.InTx(ctx, func(ctx context.Context) error {
		if err := s.repos.Transactions.CreateWithEvents(ctx, tx, txEvents); err != nil {
			return err
		}
		if esc != nil {
			if err := s.repos.Escrows.CreateWithEvents(ctx, esc, esc.PullDomainEvents()); err != nil {
				return err
			}
		}
		if err := s.saveProfile(ctx, ev.profile, ev.persisted); err != nil {
			return err
		}
		if overrideEntry != nil {
			return s.repos.Audit.Create(ctx, overrideEntry)
		}
		return nil
	})
	if shared.IsConflict(err) {
		return s.conflictAfterRace(ctx, offer, decision.Checks)
	}
	if err != nil {
		return nil, err
	}

	txResp := ToTransactionResponse(tx)
	result := &AdmissionResult{
		Outcome:         string(trade.OutcomeAdmitted),
		Transaction:     &txResp,
		ChecksPerformed: decision.Checks,
		OverrideApplied: decision.OverrideApplied,
	}
	if esc != nil {
		escResp := escrowapp.ToEscrowResponse(esc)
		result.Escrow = &escResp
	}
	return result, nil
}

func (s *AdmissionService) saveProfile(ctx context.Context, p *risk.BuyerTrustProfile, persisted bool) error {
	if persisted {
		return s.repos.Profiles.SaveWithLockAndEvents(ctx, p, p.PullDomainEvents())
	}
	if err := s.repos.Profiles.CreateWithEvents(ctx, p, p.PullDomainEvents()); err != nil {
		if shared.IsConflict(err) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

// conflictAfterRace reports the transaction that won the unique index
func (s *AdmissionService) conflictAfterRace(ctx context.Context, offer *trade.Offer, checks trade.AdmissionChecks) (*AdmissionResult, error) {
	existing, err := s.repos.Transactions.FindLiveByOffer(ctx, offer.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Warn("admission lost race on live offer index",
		zap.String("offer_id", offer.ID.String()),
		zap.String("existing_transaction_id", existing.ID.String()),
	)
	return &AdmissionResult{
		Outcome:               string(trade.OutcomeConflict),
		ChecksPerformed:       checks,
		ExistingTransactionID: &existing.ID,
	}, nil
}
