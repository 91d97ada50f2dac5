package model

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// State-change events published on the broker. Delivery is FIFO per entity
// key (each entity publishes on its own channel); no ordering is guaranteed
// across different entities.
const (
	EventPresenceChanged     EventType = "presence_changed"
	EventInvitationCreated   EventType = "invitation_created"
	EventInvitationResolved  EventType = "invitation_resolved"
	EventNotificationCreated EventType = "notification_created"
	EventFriendRequested     EventType = "friend_requested"
)

// Event is the envelope published to subscribers. EntityID is the key the
// per-entity FIFO guarantee applies to.
type Event struct {
	Type      EventType   `json:"type"`
	EntityID  uuid.UUID   `json:"entity_id"`
	Payload   interface{} `json:"payload"`
	CreatedAt time.Time   `json:"created_at"`
}
