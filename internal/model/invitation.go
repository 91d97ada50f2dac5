package model

import (
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
	InvitationStatusExpired  InvitationStatus = "expired"
)

// Terminal reports whether the status is immutable and eligible for
// retention cleanup.
func (s InvitationStatus) Terminal() bool {
	return s == InvitationStatusAccepted || s == InvitationStatusDeclined || s == InvitationStatusExpired
}

// Invitation is a directed proposal from one user to another to meet for
// an activity. At most one pending invitation may exist per unordered user
// pair and activity.
type Invitation struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	FromUserID  uuid.UUID        `json:"from_user_id" db:"from_user_id"`
	ToUserID    uuid.UUID        `json:"to_user_id" db:"to_user_id"`
	Activity    Activity         `json:"activity" db:"activity"`
	Status      InvitationStatus `json:"status" db:"status"`
	RespondedBy *uuid.UUID       `json:"responded_by,omitempty" db:"responded_by"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	ExpiresAt   time.Time        `json:"expires_at" db:"expires_at"`
}

func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// BusyStatus classifies why a target cannot receive a new invitation.
type BusyStatus string

const (
	BusyPendingInvitations BusyStatus = "pending_invitations"
	BusyActiveSharing      BusyStatus = "active_sharing"
	BusyActiveAvailability BusyStatus = "active_availability"
)

// BusyVerdict is the derived, non-persisted result of evaluating a target's
// presence and pending invitations at request time.
type BusyVerdict struct {
	Busy         bool       `json:"busy"`
	Status       BusyStatus `json:"status,omitempty"`
	PendingCount int        `json:"pending_count,omitempty"`
	Activity     Activity   `json:"activity,omitempty"`
}

// Reason renders the verdict as the human-readable string surfaced to the
// inviting user.
func (v *BusyVerdict) Reason() string {
	switch v.Status {
	case BusyPendingInvitations:
		return "already has pending invitations"
	case BusyActiveSharing:
		return "is already out for " + string(v.Activity)
	case BusyActiveAvailability:
		return "is already available for something else"
	default:
		return ""
	}
}

// InviteOutcome is the result of a single invitation request. A blocked
// outcome is a successful evaluation with a negative verdict, not an error.
type InviteOutcome struct {
	Created    bool         `json:"created"`
	Invitation *Invitation  `json:"invitation,omitempty"`
	Verdict    *BusyVerdict `json:"verdict,omitempty"`
	Reason     string       `json:"reason,omitempty"`
}

// BlockedReason records why one target of a bulk request was skipped.
type BlockedReason struct {
	FriendID uuid.UUID  `json:"friend_id"`
	Reason   string     `json:"reason"`
	Type     BusyStatus `json:"type,omitempty"`
}

// BulkInviteResult aggregates per-target outcomes of a bulk request. One
// blocked target never fails the batch.
type BulkInviteResult struct {
	Count          int             `json:"count"`
	Blocked        int             `json:"blocked"`
	BusyCount      int             `json:"busy_count"`
	DuplicateCount int             `json:"duplicate_count"`
	BlockedReasons []BlockedReason `json:"blocked_reasons,omitempty"`
}
