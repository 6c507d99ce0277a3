package verification

import (
	"fmt"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
)

// Status represents the lifecycle state of a verification case
type Status string

const (
	StatusSubmitted     Status = "SUBMITTED"
	StatusUnderReview   Status = "UNDER_REVIEW"
	StatusVerified      Status = "VERIFIED"
	StatusRejected      Status = "REJECTED"
	StatusInfoRequested Status = "INFO_REQUESTED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusVerified, StatusRejected, StatusInfoRequested:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Action is a reviewer or subject command applied to a case
type Action string

const (
	ActionStartReview Action = "START_REVIEW"
	ActionApprove     Action = "APPROVE"
	ActionReject      Action = "REJECT"
	ActionRequestInfo Action = "REQUEST_INFO"
	ActionResubmit    Action = "RESUBMIT"
)

// IsValid checks if the action is known
func (a Action) IsValid() bool {
	switch a {
	case ActionStartReview, ActionApprove, ActionReject, ActionRequestInfo, ActionResubmit:
		return true
	}
	return false
}

// IsReviewAction reports whether the action is performed by a reviewer (not the subject)
func (a Action) IsReviewAction() bool {
	return a.IsValid() && a != ActionResubmit
}

// RequiresReason reports whether the action must carry a non-empty reason
func (a Action) RequiresReason() bool {
	return a == ActionReject || a == ActionRequestInfo
}

type transitionKey struct {
	from   Status
	action Action
}

// transitions is the complete set of allowed (state, action) pairs.
// Any pair missing from this table is rejected.
var transitions = map[transitionKey]Status{
	{StatusSubmitted, ActionStartReview}:   StatusUnderReview,
	{StatusUnderReview, ActionStartReview}: StatusUnderReview,
	{StatusUnderReview, ActionApprove}:     StatusVerified,
	{StatusUnderReview, ActionReject}:      StatusRejected,
	{StatusUnderReview, ActionRequestInfo}: StatusInfoRequested,
	{StatusInfoRequested, ActionResubmit}:  StatusUnderReview,
	{StatusRejected, ActionResubmit}:       StatusSubmitted,
	{StatusVerified, ActionReject}:         StatusRejected,
}

// NextStatus looks up the target status for action applied in state from
func NextStatus(from Status, action Action) (Status, error) {
	to, ok := transitions[transitionKey{from: from, action: action}]
	if !ok {
		return "", shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("action %s is not allowed from status %s", action, from)).
			WithDetail("currentStatus", string(from)).
			WithDetail("action", string(action))
	}
	return to, nil
}

// AllowedActions returns the actions that are valid from the given status
func AllowedActions(from Status) []Action {
	var actions []Action
	for _, a := range []Action{ActionStartReview, ActionApprove, ActionReject, ActionRequestInfo, ActionResubmit} {
		if _, ok := transitions[transitionKey{from: from, action: a}]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}
