package membership

import (
	"context"
	"strings"

	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
	"github.com/zafarimam8588/ayo-portal/pkg/statemachine"
)

// Workflow events.
const (
	EventSubmit  statemachine.Event = "submit"
	EventApprove statemachine.Event = "approve"
	EventReject  statemachine.Event = "reject"
)

// transitionData carries everything the guards need for one Fire call.
type transitionData struct {
	profile *Profile
	actor   Actor
	reason  string
	authz   *rbac.Authorizer
}

// newWorkflow builds the approval chart. Submission requires a complete
// profile; approve and reject require the matching permission. Approved and
// rejected members may re-submit, which returns them to pending.
func newWorkflow() *statemachine.Chart {
	return statemachine.MustNewChart(
		statemachine.Transition{
			From:   statemachine.State(StatusNotSubmitted),
			To:     statemachine.State(StatusPending),
			Event:  EventSubmit,
			Guards: []statemachine.Guard{guardComplete},
		},
		statemachine.Transition{
			From:    statemachine.State(StatusRejected),
			To:      statemachine.State(StatusPending),
			Event:   EventSubmit,
			Guards:  []statemachine.Guard{guardComplete},
			Actions: []statemachine.Action{clearRejection},
		},
		statemachine.Transition{
			From:    statemachine.State(StatusApproved),
			To:      statemachine.State(StatusPending),
			Event:   EventSubmit,
			Guards:  []statemachine.Guard{guardComplete},
			Actions: []statemachine.Action{clearRejection},
		},
		statemachine.Transition{
			From:   statemachine.State(StatusPending),
			To:     statemachine.State(StatusApproved),
			Event:  EventApprove,
			Guards: []statemachine.Guard{guardPermission(rbac.PermMemberApprove)},
		},
		statemachine.Transition{
			From:   statemachine.State(StatusPending),
			To:     statemachine.State(StatusRejected),
			Event:  EventReject,
			Guards: []statemachine.Guard{guardPermission(rbac.PermMemberReject), guardReason},
		},
	)
}

func guardComplete(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) error {
	d := data.(*transitionData)
	if !d.profile.Complete() {
		return ErrProfileIncomplete
	}
	return nil
}

func guardPermission(perm rbac.Permission) statemachine.Guard {
	return func(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) error {
		d := data.(*transitionData)
		if decision := d.authz.Check(d.actor.Role, perm); !decision.Allowed() {
			return &PermissionError{Reason: decision.Reason()}
		}
		return nil
	}
}

// The reason is only checked for emptiness here. It is stored verbatim and
// sanitized at email-send time, not before persistence.
func guardReason(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) error {
	d := data.(*transitionData)
	if strings.TrimSpace(d.reason) == "" {
		return ErrEmptyReason
	}
	return nil
}

func clearRejection(_ context.Context, _, _ statemachine.State, _ statemachine.Event, data any) error {
	d := data.(*transitionData)
	d.profile.RejectionReason = ""
	return nil
}

// PermissionError is returned when an actor lacks the permission a
// transition requires. Reason is suitable for showing to the actor.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return "membership: " + e.Reason
}
