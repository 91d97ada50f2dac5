package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/linkup-app/linkup-api/internal/model"
)

// All repository interfaces in one file
type (
	// PresenceRepository persists per-user availability records, keyed by
	// user id. One record per user; setting availability overwrites.
	PresenceRepository interface {
		Upsert(ctx context.Context, presence *model.Presence) error
		Get(ctx context.Context, userID uuid.UUID) (*model.Presence, error)
		Clear(ctx context.Context, userID uuid.UUID) error
		ListExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	}

	// InvitationRepository persists invitations. Create must enforce the
	// pending-dedup constraint (unordered pair + activity) atomically and
	// surface a violation as ErrDuplicatePending.
	InvitationRepository interface {
		Create(ctx context.Context, invitation *model.Invitation) error
		Get(ctx context.Context, id uuid.UUID) (*model.Invitation, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.InvitationStatus, respondedBy *uuid.UUID) error
		CountPendingFor(ctx context.Context, userID uuid.UUID) (int, error)
		ExistsPendingBetween(ctx context.Context, userA, userB uuid.UUID, activity model.Activity) (bool, error)
		ListPendingFor(ctx context.Context, userID uuid.UUID) ([]*model.Invitation, error)
		ListAll(ctx context.Context) ([]*model.Invitation, error)
		DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		ListFor(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id uuid.UUID) error
		MarkAllRead(ctx context.Context, userID uuid.UUID) error
		Delete(ctx context.Context, id uuid.UUID) error
		UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}

	FriendRepository interface {
		CreateRequest(ctx context.Context, request *model.FriendRequest) error
		GetRequest(ctx context.Context, id uuid.UUID) (*model.FriendRequest, error)
		UpdateRequestStatus(ctx context.Context, id uuid.UUID, status model.FriendRequestStatus) error
		// AcceptRequest transitions the request and records the
		// friendship edge atomically.
		AcceptRequest(ctx context.Context, id uuid.UUID, userA, userB uuid.UUID) error
		AddFriendship(ctx context.Context, userA, userB uuid.UUID) error
		ListFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	}
)
