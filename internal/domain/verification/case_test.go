package verification

import (
	"testing"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestCase(t *testing.T) *VerificationCase {
	t.Helper()
	docs := []Document{
		{Type: "BUSINESS_REGISTRATION", Status: DocumentVerified},
		{Type: "TAX_CERTIFICATE", Status: DocumentVerified},
		{Type: "BANK_STATEMENT", Status: DocumentVerified, BankAccountNumber: "DE89 3704 0044 0532 0130 00"},
		{Type: "TRADE_LICENSE", Status: DocumentPending},
	}
	items := []ComplianceItem{{Code: "AML_POLICY", Completed: true}, {Code: "SANCTIONS_SCREENING", Completed: true}}
	c, err := NewVerificationCase(uuid.New(), "Acme Exports", 6, docs, items, testNow)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func reviewer() shared.Caller {
	return shared.NewCaller(uuid.New(), shared.RoleReviewer)
}

func TestNewVerificationCase(t *testing.T) {
	t.Run("starts submitted with computed trust", func(t *testing.T) {
		c, err := NewVerificationCase(uuid.New(), "Acme", 6, []Document{{Type: "REG"}}, nil, testNow)
		require.NoError(t, err)
		assert.Equal(t, StatusSubmitted, c.Status)
		assert.Equal(t, DocumentPending, c.Documents[0].Status)
		assert.NotEqual(t, uuid.Nil, c.Documents[0].ID)
		assert.Equal(t, 58, c.TrustScore)
		assert.Equal(t, 100-58, c.RiskAssessment.TotalRiskScore)
		assert.Nil(t, c.Badge)
		require.Len(t, c.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeVerificationSubmitted, c.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		_, err := NewVerificationCase(uuid.Nil, "Acme", 1, nil, nil, testNow)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})

	t.Run("rejects negative age", func(t *testing.T) {
		_, err := NewVerificationCase(uuid.New(), "Acme", -1, nil, nil, testNow)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})
}

func TestVerificationCase_Approve(t *testing.T) {
	c := newTestCase(t)
	r := reviewer()

	changed, err := c.Review(r, ReviewCommand{Action: ActionStartReview}, testNow)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusUnderReview, c.Status)
	require.NotNil(t, c.ReviewerID)
	assert.Equal(t, r.UserID, *c.ReviewerID)

	changed, err = c.Review(r, ReviewCommand{Action: ActionApprove, Notes: "looks good"}, testNow)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, StatusVerified, c.Status)
	assert.Equal(t, 100, c.TrustScore, "98 plus approval bonus capped at 100")
	assert.Equal(t, 0, c.RiskAssessment.TotalRiskScore)
	assert.Equal(t, RiskLevelLow, c.RiskAssessment.RiskLevel)
	require.NotNil(t, c.Badge)
	assert.Equal(t, BadgeGold, c.Badge.BadgeType)
	assert.Equal(t, testNow.AddDate(1, 0, 0), c.Badge.ExpiresAt)
	require.NotNil(t, c.ExpiresAt)
	assert.Equal(t, c.Badge.ExpiresAt, *c.ExpiresAt)
	assert.Equal(t, "looks good", c.AdminNotes)
	assert.True(t, c.IsKYBComplete(testNow))

	var types []string
	for _, e := range c.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Contains(t, types, EventTypeVerificationApproved)
	assert.Contains(t, types, EventTypeVerificationStatusChanged)
}

func TestVerificationCase_StartReviewIsIdempotent(t *testing.T) {
	c := newTestCase(t)
	_, err := c.Review(reviewer(), ReviewCommand{Action: ActionStartReview}, testNow)
	require.NoError(t, err)
	c.ClearDomainEvents()
	version := c.Version

	changed, err := c.Review(reviewer(), ReviewCommand{Action: ActionStartReview}, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, c.GetDomainEvents())
	assert.Equal(t, version, c.Version)
	assert.Equal(t, testNow, c.UpdatedAt)
}

func TestVerificationCase_Reject(t *testing.T) {
	t.Run("requires a reason", func(t *testing.T) {
		c := newTestCase(t)
		_, _ = c.Review(reviewer(), ReviewCommand{Action: ActionStartReview}, testNow)

		_, err := c.Review(reviewer(), ReviewCommand{Action: ActionReject, Reason: "  "}, testNow)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
		assert.Equal(t, StatusUnderReview, c.Status)
	})

	t.Run("penalizes score and revokes badge", func(t *testing.T) {
		c := newTestCase(t)
		_, _ = c.Review(reviewer(), ReviewCommand{Action: ActionStartReview}, testNow)
		_, err := c.Review(reviewer(), ReviewCommand{Action: ActionApprove}, testNow)
		require.NoError(t, err)

		_, err = c.Review(reviewer(), ReviewCommand{Action: ActionReject, Reason: "forged registration"}, testNow.Add(time.Hour))
		require.NoError(t, err)

		assert.Equal(t, StatusRejected, c.Status)
		assert.Equal(t, 78, c.TrustScore)
		assert.Nil(t, c.Badge)
		assert.Nil(t, c.ExpiresAt)
		assert.Equal(t, "forged registration", c.RejectionReason)
		assert.False(t, c.IsKYBComplete(testNow))
	})
}

func TestVerificationCase_RequestInfoAndResubmit(t *testing.T) {
	c := newTestCase(t)
	subject := shared.NewCaller(c.SubjectID, shared.RoleSupplier)
	_, _ = c.Review(reviewer(), ReviewCommand{Action: ActionStartReview}, testNow)

	_, err := c.Review(reviewer(), ReviewCommand{Action: ActionRequestInfo}, testNow)
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))

	_, err = c.Review(reviewer(), ReviewCommand{Action: ActionRequestInfo, Reason: "need bank letter"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, StatusInfoRequested, c.Status)
	assert.Equal(t, "need bank letter", c.InfoRequestReason)

	require.NoError(t, c.Resubmit(subject, nil, nil, testNow))
	assert.Equal(t, StatusUnderReview, c.Status)
	assert.Empty(t, c.InfoRequestReason)
}

func TestVerificationCase_UndefinedTransitions(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		action Action
	}{
		{"approve from submitted", StatusSubmitted, ActionApprove},
		{"approve from rejected", StatusRejected, ActionApprove},
		{"approve from info requested", StatusInfoRequested, ActionApprove},
		{"request info from verified", StatusVerified, ActionRequestInfo},
		{"start review from rejected", StatusRejected, ActionStartReview},
		{"approve twice", StatusVerified, ActionApprove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCase(t)
			c.Status = tt.status
			before := *c

			_, err := c.Review(reviewer(), ReviewCommand{Action: tt.action, Reason: "x"}, testNow.Add(time.Hour))
			require.Error(t, err)
			assert.Equal(t, shared.CodeInvalidTransition, shared.CodeOf(err))
			assert.Equal(t, before.Status, c.Status)
			assert.Equal(t, before.TrustScore, c.TrustScore)
			assert.Equal(t, before.UpdatedAt, c.UpdatedAt)
			assert.Empty(t, c.GetDomainEvents())
		})
	}

	t.Run("rejected case must resubmit before approval", func(t *testing.T) {
		c := newTestCase(t)
		c.Status = StatusRejected
		require.NoError(t, c.Resubmit(shared.NewCaller(c.SubjectID, shared.RoleSupplier), nil, nil, testNow))
		assert.Equal(t, StatusSubmitted, c.Status)
		_, err := c.Review(reviewer(), ReviewCommand{Action: ActionApprove}, testNow)
		assert.Equal(t, shared.CodeInvalidTransition, shared.CodeOf(err))
	})

	t.Run("unknown action is a validation error", func(t *testing.T) {
		c := newTestCase(t)
		_, err := c.Review(reviewer(), ReviewCommand{Action: "ESCALATE"}, testNow)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})

	t.Run("resubmit is not a reviewer action", func(t *testing.T) {
		c := newTestCase(t)
		_, err := c.Review(reviewer(), ReviewCommand{Action: ActionResubmit}, testNow)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})
}

func TestVerificationCase_Expiry(t *testing.T) {
	c := newTestCase(t)
	_, _ = c.Review(reviewer(), ReviewCommand{Action: ActionStartReview}, testNow)
	_, _ = c.Review(reviewer(), ReviewCommand{Action: ActionApprove}, testNow)

	assert.False(t, c.IsExpired(testNow.AddDate(0, 11, 0)))
	assert.True(t, c.IsExpired(testNow.AddDate(1, 0, 0)))
	assert.False(t, c.IsKYBComplete(testNow.AddDate(1, 0, 1)))
	assert.Equal(t, StatusVerified, c.Status)
}

func TestVerificationCase_Masked(t *testing.T) {
	c := newTestCase(t)
	masked := c.Masked()

	assert.Equal(t, "******************3000", masked.Documents[2].BankAccountNumber)
	assert.Equal(t, "DE89 3704 0044 0532 0130 00", c.Documents[2].BankAccountNumber)
	assert.Equal(t, "", MaskAccountNumber(""))
	assert.Equal(t, "***", MaskAccountNumber("123"))
}

func TestVerificationCase_DocumentUpdates(t *testing.T) {
	c := newTestCase(t)
	pending := c.Documents[3].ID

	require.NoError(t, c.SetDocumentStatus(pending, DocumentVerified, testNow))
	c.RecalculateTrust(testNow)
	assert.Equal(t, 100, c.TrustScore)

	err := c.SetDocumentStatus(uuid.New(), DocumentVerified, testNow)
	assert.True(t, shared.IsNotFound(err))

	c.Status = StatusVerified
	err = c.SetComplianceItem("AML_POLICY", false, testNow)
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))
}

func TestAllowedActions(t *testing.T) {
	assert.ElementsMatch(t, []Action{ActionStartReview, ActionApprove, ActionReject, ActionRequestInfo}, AllowedActions(StatusUnderReview))
	assert.Equal(t, []Action{ActionResubmit}, AllowedActions(StatusRejected))
}
