package trade

import (
	"strings"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/risk"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/verification"
	"github.com/google/uuid"
)

// AdmissionOutcome is the result category of an admission attempt
type AdmissionOutcome string

const (
	OutcomeAdmitted             AdmissionOutcome = "ADMITTED"
	OutcomeKYBRequired          AdmissionOutcome = "KYB_REQUIRED"
	OutcomeManualReviewRequired AdmissionOutcome = "MANUAL_REVIEW_REQUIRED"
	OutcomeConflict             AdmissionOutcome = "CONFLICT"
)

// Gate identifies which buyer-eligibility gate was applied
type Gate string

const (
	GateKYB          Gate = "KYB"
	GateGoodStanding Gate = "GOOD_STANDING"
)

// Verification status values reported when no usable case exists
const (
	VerificationNotSubmitted = "NOT_SUBMITTED"
	VerificationExpired      = "EXPIRED"
)

// GateOverride is an admin's explicit bypass of the good-standing gate
type GateOverride struct {
	AdminID       uuid.UUID `json:"adminId"`
	Justification string    `json:"justification"`
}

// AdmissionChecks records what admission evaluated; it is stored on the transaction
type AdmissionChecks struct {
	IsFirstTimeBuyer   bool                 `json:"isFirstTimeBuyer"`
	Gate               Gate                 `json:"gate"`
	VerificationStatus string               `json:"verificationStatus,omitempty"`
	Standing           *risk.StandingResult `json:"standing,omitempty"`
	Override           *GateOverride        `json:"override,omitempty"`
	EvaluatedAt        time.Time            `json:"evaluatedAt"`
}

// AdmissionInput is everything the gates need, loaded by the caller
type AdmissionInput struct {
	Offer                  *Offer
	// ExistingTransactionID is the live transaction already holding the offer, if any
	ExistingTransactionID  *uuid.UUID
	// LiveBuyerTransactions is the count of the buyer's non-cancelled transactions
	LiveBuyerTransactions  int64
	// Verification is the buyer's latest case; nil when none was submitted
	Verification           *verification.VerificationCase
	// Standing is required for returning buyers
	Standing               *risk.StandingResult
	Override               *GateOverride
	// AllowBlacklistOverride lets an override bypass a blacklist REJECT
	AllowBlacklistOverride bool
	Now                    time.Time
}

// AdmissionDecision is the structured outcome of DecideAdmission.
// Only OutcomeAdmitted allows a transaction to be created.
type AdmissionDecision struct {
	Outcome               AdmissionOutcome
	Checks                AdmissionChecks
	ExistingTransactionID *uuid.UUID
	OverrideApplied       bool
}

// Admitted reports whether the transaction may be created
func (d AdmissionDecision) Admitted() bool {
	return d.Outcome == OutcomeAdmitted
}

// IsFirstTimeBuyer reports whether the buyer has no live transactions
func (in AdmissionInput) IsFirstTimeBuyer() bool {
	return in.LiveBuyerTransactions == 0
}

// DecideAdmission applies the admission rules in order:
//  1. offer must be ACCEPTED (error, not an outcome)
//  2. at most one live transaction per offer (CONFLICT)
//  3. first-time buyers must have completed KYB (KYB_REQUIRED)
//  4. returning buyers must be in good standing unless overridden (MANUAL_REVIEW_REQUIRED)
func DecideAdmission(in AdmissionInput) (AdmissionDecision, error) {
	if in.Offer == nil {
		return AdmissionDecision{}, shared.NewNotFoundError("offer")
	}
	if err := in.Offer.EnsureAdmissible(); err != nil {
		return AdmissionDecision{}, err
	}

	decision := AdmissionDecision{
		Checks: AdmissionChecks{
			IsFirstTimeBuyer: in.IsFirstTimeBuyer(),
			EvaluatedAt:      in.Now,
		},
	}

	if in.ExistingTransactionID != nil {
		decision.Outcome = OutcomeConflict
		decision.ExistingTransactionID = in.ExistingTransactionID
		return decision, nil
	}

	if decision.Checks.IsFirstTimeBuyer {
		decision.Checks.Gate = GateKYB
		decision.Checks.VerificationStatus = VerificationStatusOf(in.Verification, in.Now)
		if in.Verification == nil || !in.Verification.IsKYBComplete(in.Now) {
			decision.Outcome = OutcomeKYBRequired
			return decision, nil
		}
		decision.Outcome = OutcomeAdmitted
		return decision, nil
	}

	decision.Checks.Gate = GateGoodStanding
	if in.Standing == nil {
		return AdmissionDecision{}, shared.NewDomainError(shared.CodeInternal, "good-standing result missing for returning buyer")
	}
	decision.Checks.Standing = in.Standing
	if in.Standing.GoodStanding {
		decision.Outcome = OutcomeAdmitted
		return decision, nil
	}

	if in.Override != nil && overrideAllowed(in) {
		decision.Checks.Override = in.Override
		decision.OverrideApplied = true
		decision.Outcome = OutcomeAdmitted
		return decision, nil
	}

	decision.Outcome = OutcomeManualReviewRequired
	return decision, nil
}

func overrideAllowed(in AdmissionInput) bool {
	if in.Override.AdminID == uuid.Nil || strings.TrimSpace(in.Override.Justification) == "" {
		return false
	}
	if in.Standing.Failed(risk.CheckBlacklist) && !in.AllowBlacklistOverride {
		return false
	}
	return true
}

// VerificationStatusOf reports the buyer's KYB status as echoed back to callers
func VerificationStatusOf(c *verification.VerificationCase, now time.Time) string {
	if c == nil {
		return VerificationNotSubmitted
	}
	if c.IsExpired(now) {
		return VerificationExpired
	}
	return string(c.Status)
}
