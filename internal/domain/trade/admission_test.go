package trade

import (
	"testing"

	"github.com/Goutham009/tradewave-sub005/internal/domain/risk"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/domain/verification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func caseWithStatus(t *testing.T, status verification.Status) *verification.VerificationCase {
	t.Helper()
	c, err := verification.NewVerificationCase(uuid.New(), "Buyer Co", 4, nil, nil, testNow)
	require.NoError(t, err)
	if status == verification.StatusVerified {
		reviewer := shared.NewCaller(uuid.New(), shared.RoleReviewer)
		_, err = c.Review(reviewer, verification.ReviewCommand{Action: verification.ActionStartReview}, testNow)
		require.NoError(t, err)
		_, err = c.Review(reviewer, verification.ReviewCommand{Action: verification.ActionApprove}, testNow)
		require.NoError(t, err)
	} else {
		c.Status = status
	}
	return c
}

func failingStanding() *risk.StandingResult {
	return &risk.StandingResult{
		GoodStanding:      false,
		Checks:            map[risk.Check]bool{risk.CheckBlacklist: true, risk.CheckPaymentOnTime: false},
		Reasons:           []string{"payment on-time 70.00% below floor 80%"},
		RecommendedAction: risk.ActionManualReview,
	}
}

func TestDecideAdmission_FirstTimeBuyer(t *testing.T) {
	t.Run("submitted verification requires KYB", func(t *testing.T) {
		d, err := DecideAdmission(AdmissionInput{
			Offer:        acceptedOffer(),
			Verification: caseWithStatus(t, verification.StatusSubmitted),
			Now:          testNow,
		})
		require.NoError(t, err)
		assert.Equal(t, OutcomeKYBRequired, d.Outcome)
		assert.Equal(t, "SUBMITTED", d.Checks.VerificationStatus)
		assert.True(t, d.Checks.IsFirstTimeBuyer)
		assert.Equal(t, GateKYB, d.Checks.Gate)
	})

	t.Run("no verification case", func(t *testing.T) {
		d, err := DecideAdmission(AdmissionInput{Offer: acceptedOffer(), Now: testNow})
		require.NoError(t, err)
		assert.Equal(t, OutcomeKYBRequired, d.Outcome)
		assert.Equal(t, VerificationNotSubmitted, d.Checks.VerificationStatus)
	})

	t.Run("expired verification", func(t *testing.T) {
		c := caseWithStatus(t, verification.StatusVerified)
		d, err := DecideAdmission(AdmissionInput{Offer: acceptedOffer(), Verification: c, Now: testNow.AddDate(1, 0, 1)})
		require.NoError(t, err)
		assert.Equal(t, OutcomeKYBRequired, d.Outcome)
		assert.Equal(t, VerificationExpired, d.Checks.VerificationStatus)
	})

	t.Run("verified buyer is admitted", func(t *testing.T) {
		d, err := DecideAdmission(AdmissionInput{
			Offer:        acceptedOffer(),
			Verification: caseWithStatus(t, verification.StatusVerified),
			Now:          testNow,
		})
		require.NoError(t, err)
		assert.True(t, d.Admitted())
		assert.Equal(t, "VERIFIED", d.Checks.VerificationStatus)
	})
}

func TestDecideAdmission_ReturningBuyer(t *testing.T) {
	admin := uuid.New()

	t.Run("good standing is admitted without KYB", func(t *testing.T) {
		d, err := DecideAdmission(AdmissionInput{
			Offer:                 acceptedOffer(),
			LiveBuyerTransactions: 3,
			Standing:              &risk.StandingResult{GoodStanding: true, RecommendedAction: risk.ActionAutoApprove},
			Now:                   testNow,
		})
		require.NoError(t, err)
		assert.True(t, d.Admitted())
		assert.Equal(t, GateGoodStanding, d.Checks.Gate)
		assert.False(t, d.Checks.IsFirstTimeBuyer)
	})

	t.Run("failing standing needs manual review", func(t *testing.T) {
		standing := failingStanding()
		d, err := DecideAdmission(AdmissionInput{Offer: acceptedOffer(), LiveBuyerTransactions: 1, Standing: standing, Now: testNow})
		require.NoError(t, err)
		assert.Equal(t, OutcomeManualReviewRequired, d.Outcome)
		assert.Same(t, standing, d.Checks.Standing)
	})

	t.Run("admin override bypasses the gate", func(t *testing.T) {
		d, err := DecideAdmission(AdmissionInput{
			Offer:                 acceptedOffer(),
			LiveBuyerTransactions: 1,
			Standing:              failingStanding(),
			Override:              &GateOverride{AdminID: admin, Justification: "long-standing partner, late payments were bank holidays"},
			Now:                   testNow,
		})
		require.NoError(t, err)
		assert.True(t, d.Admitted())
		assert.True(t, d.OverrideApplied)
		require.NotNil(t, d.Checks.Override)
		assert.Equal(t, admin, d.Checks.Override.AdminID)
	})

	t.Run("override cannot bypass an active blacklist by default", func(t *testing.T) {
		blacklisted := &risk.StandingResult{
			Checks:            map[risk.Check]bool{risk.CheckBlacklist: false},
			Reasons:           []string{"buyer is blacklisted: fraud"},
			RecommendedAction: risk.ActionReject,
		}
		in := AdmissionInput{
			Offer:                 acceptedOffer(),
			LiveBuyerTransactions: 1,
			Standing:              blacklisted,
			Override:              &GateOverride{AdminID: admin, Justification: "manual"},
			Now:                   testNow,
		}
		d, err := DecideAdmission(in)
		require.NoError(t, err)
		assert.Equal(t, OutcomeManualReviewRequired, d.Outcome)

		in.AllowBlacklistOverride = true
		d, err = DecideAdmission(in)
		require.NoError(t, err)
		assert.True(t, d.OverrideApplied)
	})
}

func TestDecideAdmission_Preconditions(t *testing.T) {
	t.Run("existing live transaction conflicts", func(t *testing.T) {
		existing := uuid.New()
		d, err := DecideAdmission(AdmissionInput{Offer: acceptedOffer(), ExistingTransactionID: &existing, Now: testNow})
		require.NoError(t, err)
		assert.Equal(t, OutcomeConflict, d.Outcome)
		assert.Equal(t, existing, *d.ExistingTransactionID)
	})

	t.Run("offer not accepted", func(t *testing.T) {
		offer := acceptedOffer()
		offer.Status = OfferStatusWithdrawn
		_, err := DecideAdmission(AdmissionInput{Offer: offer, Now: testNow})
		assert.Equal(t, shared.CodePreconditionFailed, shared.CodeOf(err))
	})

	t.Run("missing offer", func(t *testing.T) {
		_, err := DecideAdmission(AdmissionInput{Now: testNow})
		assert.True(t, shared.IsNotFound(err))
	})
}
