package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeFriendInvitation NotificationType = "friend_invitation"
	NotificationTypeInvitation       NotificationType = "invitation"
	NotificationTypeActivityAccepted NotificationType = "activity_accepted"
	NotificationTypeActivityDeclined NotificationType = "activity_declined"
	NotificationTypeGeneric          NotificationType = "generic"
)

// Notification is a per-recipient record of one triggering domain event.
// Read transitions false to true only; deletion removes the record.
type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	To        uuid.UUID        `json:"to" db:"to_user_id"`
	From      uuid.UUID        `json:"from" db:"from_user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Message   string           `json:"message" db:"message"`
	Data      json.RawMessage  `json:"data,omitempty" db:"data"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// Notification payloads, one variant per notification type. The Type field
// on the record is the tag; Data holds exactly the fields relevant to that
// kind.

type InvitationData struct {
	InvitationID uuid.UUID `json:"invitation_id"`
	Activity     Activity  `json:"activity"`
}

type InvitationResponseData struct {
	InvitationID uuid.UUID        `json:"invitation_id"`
	Activity     Activity         `json:"activity"`
	Response     InvitationStatus `json:"response"`
}

type FriendRequestData struct {
	RequestID uuid.UUID `json:"request_id"`
}

type GenericData struct {
	Reference string `json:"reference,omitempty"`
}

// DecodePayload unmarshals Data into the variant matching the notification
// type.
func (n *Notification) DecodePayload() (interface{}, error) {
	switch n.Type {
	case NotificationTypeInvitation:
		var d InvitationData
		return &d, json.Unmarshal(n.Data, &d)
	case NotificationTypeActivityAccepted, NotificationTypeActivityDeclined:
		var d InvitationResponseData
		return &d, json.Unmarshal(n.Data, &d)
	case NotificationTypeFriendInvitation:
		var d FriendRequestData
		return &d, json.Unmarshal(n.Data, &d)
	case NotificationTypeGeneric:
		var d GenericData
		return &d, json.Unmarshal(n.Data, &d)
	default:
		return nil, fmt.Errorf("unknown notification type %q", n.Type)
	}
}
