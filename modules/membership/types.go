// Package membership owns member profiles and the status-gated approval
// workflow. A profile is created alongside the user account and moves through
// not_submitted, pending, and approved or rejected. Approved and rejected
// members may re-submit, which returns them to pending.
package membership

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is a member profile's position in the approval workflow.
type Status string

const (
	StatusNotSubmitted Status = "not_submitted"
	StatusPending      Status = "pending"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
)

// Address is a member's postal address.
type Address struct {
	Street     string
	City       string
	State      string
	PostalCode string
}

func (a Address) empty() bool {
	return strings.TrimSpace(a.Street) == "" ||
		strings.TrimSpace(a.City) == "" ||
		strings.TrimSpace(a.State) == "" ||
		strings.TrimSpace(a.PostalCode) == ""
}

// Profile is a member's application record. Status, MembershipID, the
// approver fields, and RejectionReason are owned by the workflow and never
// written directly by the member.
type Profile struct {
	UserID          uuid.UUID
	Phone           string
	DateOfBirth     string
	Gender          string
	Address         Address
	ReasonToJoin    string
	Status          Status
	MembershipID    string
	RejectionReason string
	ApprovedBy      uuid.UUID
	ApprovedAt      time.Time
	UpdatedAt       time.Time
}

// Complete reports whether every field required for submission is populated.
func (p Profile) Complete() bool {
	return len(p.MissingFields()) == 0
}

// MissingFields lists the required fields that are still empty, in a stable
// order suitable for user-facing messages.
func (p Profile) MissingFields() []string {
	var missing []string
	if p.Address.empty() {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(p.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(p.DateOfBirth) == "" {
		missing = append(missing, "date_of_birth")
	}
	if strings.TrimSpace(p.Gender) == "" {
		missing = append(missing, "gender")
	}
	if strings.TrimSpace(p.ReasonToJoin) == "" {
		missing = append(missing, "reason_to_join")
	}
	return missing
}

var (
	ErrProfileNotFound   = errors.New("membership: profile not found")
	ErrProfileIncomplete = errors.New("membership: profile is incomplete")
	ErrEmptyReason       = errors.New("membership: rejection reason is required")
	ErrNotPending        = errors.New("membership: profile is not pending review")
	ErrAlreadyPending    = errors.New("membership: profile is already pending review")
	ErrProfileLocked     = errors.New("membership: profile cannot be edited while pending review")
	ErrInvalidPhone      = errors.New("membership: invalid phone number")
)
