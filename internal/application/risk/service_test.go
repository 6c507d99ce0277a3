package risk

import (
	"context"
	"testing"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/audit"
	"github.com/Goutham009/tradewave-sub005/internal/domain/risk"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByBuyerID(ctx context.Context, buyerID uuid.UUID) (*risk.BuyerTrustProfile, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*risk.BuyerTrustProfile), args.Error(1)
}

func (m *MockProfileRepository) CreateWithEvents(ctx context.Context, p *risk.BuyerTrustProfile, events []shared.DomainEvent) error {
	return m.Called(ctx, p, events).Error(0)
}

func (m *MockProfileRepository) SaveWithLockAndEvents(ctx context.Context, p *risk.BuyerTrustProfile, events []shared.DomainEvent) error {
	return m.Called(ctx, p, events).Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, e *audit.Entry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockAuditRepository) FindByResource(ctx context.Context, resourceType string, resourceID uuid.UUID, limit int) ([]audit.Entry, error) {
	args := m.Called(ctx, resourceType, resourceID, limit)
	return args.Get(0).([]audit.Entry), args.Error(1)
}

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var (
	testNow  = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	admin    = shared.NewCaller(uuid.New(), shared.RoleAdmin)
	reviewer = shared.NewCaller(uuid.New(), shared.RoleReviewer)
)

func newTestService() (*Service, *MockProfileRepository, *MockAuditRepository) {
	repo := new(MockProfileRepository)
	auditRepo := new(MockAuditRepository)
	svc := NewService(repo, auditRepo, passthroughTx{}, risk.DefaultStandingPolicy(), nil)
	svc.SetClock(func() time.Time { return testNow })
	svc.SetRetryPolicy(shared.RetryPolicy{MaxRetries: 1})
	return svc, repo, auditRepo
}

func storedProfile(t *testing.T, onTime int64) *risk.BuyerTrustProfile {
	t.Helper()
	p, err := risk.NewBuyerTrustProfile(uuid.New(), testNow)
	require.NoError(t, err)
	hi := decimal.NewFromInt(85)
	require.NoError(t, p.UpdateSignals(risk.SubScores{PaymentReliability: hi, DisputeHistory: hi, Behavioral: hi, Compliance: hi},
		decimal.NewFromInt(onTime), 12, 1, testNow))
	return p
}

func TestService_GetStanding(t *testing.T) {
	svc, repo, _ := newTestService()
	good := storedProfile(t, 95)
	late := storedProfile(t, 70)
	repo.On("FindByBuyerID", mock.Anything, good.BuyerID).Return(good, nil)
	repo.On("FindByBuyerID", mock.Anything, late.BuyerID).Return(late, nil)

	resp, err := svc.GetStanding(context.Background(), reviewer, good.BuyerID)
	require.NoError(t, err)
	assert.True(t, resp.GoodStanding)
	assert.Equal(t, "AUTO_APPROVE", resp.RecommendedAction)
	assert.Empty(t, resp.Reasons)

	resp, err = svc.GetStanding(context.Background(), admin, late.BuyerID)
	require.NoError(t, err)
	assert.False(t, resp.GoodStanding)
	assert.False(t, resp.Checks["paymentOnTime"])
	assert.Equal(t, "MANUAL_REVIEW", resp.RecommendedAction)
	assert.Len(t, resp.Reasons, 1)
}

func TestService_GetStanding_Forbidden(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.GetStanding(context.Background(), shared.NewCaller(uuid.New(), shared.RoleBuyer), uuid.New())
	assert.Equal(t, shared.CodeForbidden, shared.CodeOf(err))
}

func TestService_GetTrustProfile_DefaultsWhenMissing(t *testing.T) {
	svc, repo, _ := newTestService()
	buyerID := uuid.New()
	repo.On("FindByBuyerID", mock.Anything, buyerID).Return(nil, shared.NewNotFoundError("buyer trust profile"))

	resp, err := svc.GetTrustProfile(context.Background(), admin, buyerID)
	require.NoError(t, err)
	assert.False(t, resp.Persisted)
	assert.Equal(t, "50", resp.OverallScore.String())
	assert.Equal(t, "MEDIUM", resp.RiskLevel)
	assert.True(t, resp.PaymentOnTimePercentage.Equal(decimal.NewFromInt(100)))
}

func TestService_RaiseFlag_CreatesMissingProfile(t *testing.T) {
	svc, repo, _ := newTestService()
	buyerID := uuid.New()
	repo.On("FindByBuyerID", mock.Anything, buyerID).Return(nil, shared.NewNotFoundError("buyer trust profile"))
	repo.On("CreateWithEvents", mock.Anything, mock.AnythingOfType("*risk.BuyerTrustProfile"), mock.Anything).Return(nil)

	resp, err := svc.RaiseFlag(context.Background(), reviewer, buyerID, RaiseFlagRequest{Type: "CHARGEBACK", Severity: "HIGH"})
	require.NoError(t, err)
	require.Len(t, resp.Flags, 1)
	assert.Equal(t, "HIGH", resp.Flags[0].Severity)
	repo.AssertExpectations(t)
}

func TestService_SetBlacklist_WritesAudit(t *testing.T) {
	svc, repo, auditRepo := newTestService()
	p := storedProfile(t, 95)
	repo.On("FindByBuyerID", mock.Anything, p.BuyerID).Return(p, nil)
	repo.On("SaveWithLockAndEvents", mock.Anything, p, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == risk.EventTypeBuyerBlacklistChanged
	})).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionBlacklistChanged && e.Reason == "fraud ring"
	})).Return(nil)

	resp, err := svc.SetBlacklist(context.Background(), admin, p.BuyerID, SetBlacklistRequest{Status: "ACTIVE", Reason: "fraud ring"})
	require.NoError(t, err)
	require.NotNil(t, resp.Blacklist)
	assert.Equal(t, "ACTIVE", resp.Blacklist.Status)

	standing, err := svc.EvaluateStanding(context.Background(), p.BuyerID)
	require.NoError(t, err)
	assert.Equal(t, risk.ActionReject, standing.RecommendedAction)
	repo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestService_UpdateSignals_Validation(t *testing.T) {
	svc, repo, _ := newTestService()
	p := storedProfile(t, 95)
	repo.On("FindByBuyerID", mock.Anything, p.BuyerID).Return(p, nil)

	_, err := svc.UpdateSignals(context.Background(), admin, p.BuyerID, UpdateSignalsRequest{
		PaymentReliability:      decimal.NewFromInt(120),
		DisputeHistory:          decimal.NewFromInt(50),
		Behavioral:              decimal.NewFromInt(50),
		Compliance:              decimal.NewFromInt(50),
		PaymentOnTimePercentage: decimal.NewFromInt(90),
	})
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	repo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
}
