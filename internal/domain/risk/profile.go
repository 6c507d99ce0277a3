package risk

import (
	"strings"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Level is the coarse buyer risk bucket
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Severity of a risk flag
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// IsValid checks if the severity is known
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// IsHigh reports whether the severity counts as high for standing checks
func (s Severity) IsHigh() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// BlacklistStatus is the state of a blacklist entry
type BlacklistStatus string

const (
	BlacklistActive      BlacklistStatus = "ACTIVE"
	BlacklistAppealed    BlacklistStatus = "APPEALED"
	BlacklistRemoved     BlacklistStatus = "REMOVED"
	BlacklistUnderReview BlacklistStatus = "UNDER_REVIEW"
)

// IsValid checks if the blacklist status is known
func (s BlacklistStatus) IsValid() bool {
	switch s {
	case BlacklistActive, BlacklistAppealed, BlacklistRemoved, BlacklistUnderReview:
		return true
	}
	return false
}

// Flag is a risk signal raised against a buyer by the dispute or fraud subsystems
type Flag struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Severity   Severity   `json:"severity"`
	Resolved   bool       `json:"resolved"`
	RaisedAt   time.Time  `json:"raisedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// BlacklistEntry records why and when a buyer was blacklisted
type BlacklistEntry struct {
	Status    BlacklistStatus `json:"status"`
	Reason    string          `json:"reason"`
	ListedAt  time.Time       `json:"listedAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// SubScores are the four 0-100 signals feeding the overall score
type SubScores struct {
	PaymentReliability decimal.Decimal `json:"paymentReliability"`
	DisputeHistory     decimal.Decimal `json:"disputeHistory"`
	Behavioral         decimal.Decimal `json:"behavioral"`
	Compliance         decimal.Decimal `json:"compliance"`
}

var (
	scoreFloor   = decimal.Zero
	scoreCeiling = decimal.NewFromInt(100)
)

// Validate checks every sub-score is within [0, 100]
func (s SubScores) Validate() error {
	for name, v := range map[string]decimal.Decimal{
		"paymentReliability": s.PaymentReliability,
		"disputeHistory":     s.DisputeHistory,
		"behavioral":         s.Behavioral,
		"compliance":         s.Compliance,
	} {
		if v.LessThan(scoreFloor) || v.GreaterThan(scoreCeiling) {
			return shared.NewValidationError(name + " must be between 0 and 100")
		}
	}
	return nil
}

// DefaultSubScores are assigned to buyers without recorded history
func DefaultSubScores() SubScores {
	fifty := decimal.NewFromInt(50)
	return SubScores{PaymentReliability: fifty, DisputeHistory: fifty, Behavioral: fifty, Compliance: fifty}
}

// BuyerTrustProfile is owned by the risk subsystem. The admission flow only
// reads it, apart from the order counter it bumps on admission.
type BuyerTrustProfile struct {
	shared.BaseAggregateRoot
	BuyerID                 uuid.UUID
	Scores                  SubScores
	PaymentOnTimePercentage decimal.Decimal
	TotalTransactions       int
	TotalDisputes           int
	TotalOrderCount         int
	ActiveFlags             []Flag
	Blacklist               *BlacklistEntry
}

// NewBuyerTrustProfile creates a profile with neutral scores and no late payments
func NewBuyerTrustProfile(buyerID uuid.UUID, now time.Time) (*BuyerTrustProfile, error) {
	if buyerID == uuid.Nil {
		return nil, shared.NewValidationError("buyer id cannot be empty")
	}
	return &BuyerTrustProfile{
		BaseAggregateRoot:       shared.NewBaseAggregateRoot(now),
		BuyerID:                 buyerID,
		Scores:                  DefaultSubScores(),
		PaymentOnTimePercentage: decimal.NewFromInt(100),
	}, nil
}

// OverallScore is the weighted average of the sub-scores, rounded to 2 places
func (p *BuyerTrustProfile) OverallScore(w Weights) decimal.Decimal {
	return w.Apply(p.Scores)
}

// RiskLevel buckets the overall score
func (p *BuyerTrustProfile) RiskLevel(w Weights) Level {
	return LevelFor(p.OverallScore(w))
}

// LevelFor buckets a score: >=70 LOW, >=40 MEDIUM, else HIGH
func LevelFor(score decimal.Decimal) Level {
	switch {
	case score.GreaterThanOrEqual(decimal.NewFromInt(70)):
		return LevelLow
	case score.GreaterThanOrEqual(decimal.NewFromInt(40)):
		return LevelMedium
	}
	return LevelHigh
}

// IsBlacklisted reports whether an ACTIVE blacklist entry exists
func (p *BuyerTrustProfile) IsBlacklisted() bool {
	return p.Blacklist != nil && p.Blacklist.Status == BlacklistActive
}

// UnresolvedHighSeverityFlags returns the unresolved HIGH/CRITICAL flags
func (p *BuyerTrustProfile) UnresolvedHighSeverityFlags() []Flag {
	var flags []Flag
	for _, f := range p.ActiveFlags {
		if !f.Resolved && f.Severity.IsHigh() {
			flags = append(flags, f)
		}
	}
	return flags
}

// HasUnresolvedCriticalFlag reports whether an unresolved CRITICAL flag exists
func (p *BuyerTrustProfile) HasUnresolvedCriticalFlag() bool {
	for _, f := range p.ActiveFlags {
		if !f.Resolved && f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// UpdateSignals replaces the scores and counters reported by the upstream subsystems
func (p *BuyerTrustProfile) UpdateSignals(scores SubScores, onTime decimal.Decimal, transactions, disputes int, now time.Time) error {
	if err := scores.Validate(); err != nil {
		return err
	}
	if onTime.LessThan(scoreFloor) || onTime.GreaterThan(scoreCeiling) {
		return shared.NewValidationError("paymentOnTimePercentage must be between 0 and 100")
	}
	if transactions < 0 || disputes < 0 {
		return shared.NewValidationError("counters cannot be negative")
	}
	p.Scores = scores
	p.PaymentOnTimePercentage = onTime
	p.TotalTransactions = transactions
	p.TotalDisputes = disputes
	p.Touch(now)
	return nil
}

// RaiseFlag adds an unresolved flag
func (p *BuyerTrustProfile) RaiseFlag(flagType string, severity Severity, now time.Time) (*Flag, error) {
	if strings.TrimSpace(flagType) == "" {
		return nil, shared.NewValidationError("flag type cannot be empty")
	}
	if !severity.IsValid() {
		return nil, shared.NewValidationError("invalid flag severity: " + string(severity))
	}
	p.ActiveFlags = append(p.ActiveFlags, Flag{ID: uuid.New(), Type: flagType, Severity: severity, RaisedAt: now})
	p.Touch(now)
	return &p.ActiveFlags[len(p.ActiveFlags)-1], nil
}

// ResolveFlag marks a flag resolved; resolving twice is a no-op
func (p *BuyerTrustProfile) ResolveFlag(flagID uuid.UUID, now time.Time) error {
	for i := range p.ActiveFlags {
		if p.ActiveFlags[i].ID != flagID {
			continue
		}
		if !p.ActiveFlags[i].Resolved {
			p.ActiveFlags[i].Resolved = true
			p.ActiveFlags[i].ResolvedAt = &now
			p.Touch(now)
		}
		return nil
	}
	return shared.NewNotFoundError("risk flag")
}

// SetBlacklistStatus creates or moves the blacklist entry
func (p *BuyerTrustProfile) SetBlacklistStatus(status BlacklistStatus, reason string, now time.Time) error {
	if !status.IsValid() {
		return shared.NewValidationError("invalid blacklist status: " + string(status))
	}
	if p.Blacklist == nil {
		if status != BlacklistActive && status != BlacklistUnderReview {
			return shared.NewDomainError(shared.CodeInvalidState, "buyer has no blacklist entry")
		}
		if strings.TrimSpace(reason) == "" {
			return shared.NewValidationError("blacklist reason is required")
		}
		p.Blacklist = &BlacklistEntry{Status: status, Reason: reason, ListedAt: now, UpdatedAt: now}
	} else {
		p.Blacklist.Status = status
		if strings.TrimSpace(reason) != "" {
			p.Blacklist.Reason = reason
		}
		p.Blacklist.UpdatedAt = now
	}
	p.Touch(now)
	p.AddDomainEvent(NewBlacklistChangedEvent(p, status, now))
	return nil
}

// IncrementOrderCount records one more admitted transaction for the buyer
func (p *BuyerTrustProfile) IncrementOrderCount(now time.Time) {
	p.TotalOrderCount++
	p.Touch(now)
}
