package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/linkup-app/linkup-api/pkg/errors"
	"github.com/linkup-app/linkup-api/pkg/logger"
	"github.com/linkup-app/linkup-api/pkg/messaging"
	"github.com/linkup-app/linkup-api/pkg/metrics"

	"github.com/linkup-app/linkup-api/internal/model"
	"github.com/linkup-app/linkup-api/internal/repository"
)

// Event is the sealed set of domain events the fan-out accepts. Each
// variant carries only the fields its notification kind needs.
type Event interface {
	isNotificationEvent()
}

type InvitationCreated struct {
	Invitation *model.Invitation
}

type InvitationResponded struct {
	Invitation *model.Invitation
}

type FriendRequested struct {
	Request *model.FriendRequest
}

type Generic struct {
	From      uuid.UUID
	To        uuid.UUID
	Message   string
	Reference string
}

func (InvitationCreated) isNotificationEvent()   {}
func (InvitationResponded) isNotificationEvent() {}
func (FriendRequested) isNotificationEvent()     {}
func (Generic) isNotificationEvent()             {}

// Service turns domain events into per-recipient notification records and
// tracks their read state. Exactly one notification per triggering event;
// an event whose recipient cannot be resolved is an error, never a silent
// drop.
type Service struct {
	repo    repository.NotificationRepository
	users   repository.UserRepository
	broker  messaging.Broker
	metrics *metrics.Metrics
	logger  *logger.Logger
	now     func() time.Time
}

func NewService(repo repository.NotificationRepository, users repository.UserRepository, broker messaging.Broker, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		users:   users,
		broker:  broker,
		metrics: m,
		logger:  log,
		now:     time.Now,
	}
}

// WithClock replaces the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Emit(ctx context.Context, event Event) (*model.Notification, error) {
	notification, err := s.build(event)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.Get(ctx, notification.To); err != nil {
		return nil, apperrors.UnresolvedRecipient(err)
	}

	notification.ID = uuid.New()
	notification.CreatedAt = s.now()

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if s.metrics != nil {
		s.metrics.NotificationsEmitted.WithLabelValues(string(notification.Type)).Inc()
	}
	s.publish(ctx, notification)
	return notification, nil
}

func (s *Service) build(event Event) (*model.Notification, error) {
	switch e := event.(type) {
	case InvitationCreated:
		data, err := json.Marshal(model.InvitationData{
			InvitationID: e.Invitation.ID,
			Activity:     e.Invitation.Activity,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		return &model.Notification{
			To:      e.Invitation.ToUserID,
			From:    e.Invitation.FromUserID,
			Type:    model.NotificationTypeInvitation,
			Message: fmt.Sprintf("You have been invited for %s", e.Invitation.Activity),
			Data:    data,
		}, nil

	case InvitationResponded:
		kind := model.NotificationTypeActivityAccepted
		verb := "accepted"
		if e.Invitation.Status == model.InvitationStatusDeclined {
			kind = model.NotificationTypeActivityDeclined
			verb = "declined"
		}
		data, err := json.Marshal(model.InvitationResponseData{
			InvitationID: e.Invitation.ID,
			Activity:     e.Invitation.Activity,
			Response:     e.Invitation.Status,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		// The response goes back to the original sender.
		return &model.Notification{
			To:      e.Invitation.FromUserID,
			From:    e.Invitation.ToUserID,
			Type:    kind,
			Message: fmt.Sprintf("Your %s invitation was %s", e.Invitation.Activity, verb),
			Data:    data,
		}, nil

	case FriendRequested:
		data, err := json.Marshal(model.FriendRequestData{RequestID: e.Request.ID})
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		return &model.Notification{
			To:      e.Request.ToUserID,
			From:    e.Request.FromUserID,
			Type:    model.NotificationTypeFriendInvitation,
			Message: "You have a new friend request",
			Data:    data,
		}, nil

	case Generic:
		data, err := json.Marshal(model.GenericData{Reference: e.Reference})
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		return &model.Notification{
			To:      e.To,
			From:    e.From,
			Type:    model.NotificationTypeGeneric,
			Message: e.Message,
			Data:    data,
		}, nil

	default:
		return nil, fmt.Errorf("unknown notification event %T", event)
	}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error) {
	notifications, err := s.repo.ListFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flips the record to read. The transition is monotonic; marking
// an already-read notification again is a no-op.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	notification, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if notification.To != userID {
		return apperrors.Forbidden("notification belongs to another user")
	}
	return s.repo.MarkRead(ctx, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	notification, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if notification.To != userID {
		return apperrors.Forbidden("notification belongs to another user")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.UnreadGauge.Set(float64(count))
	}
	return count, nil
}

func (s *Service) publish(ctx context.Context, notification *model.Notification) {
	event := &model.Event{
		Type:      model.EventNotificationCreated,
		EntityID:  notification.To,
		Payload:   notification,
		CreatedAt: s.now(),
	}
	if err := s.broker.Publish(ctx, messaging.UserChannel(notification.To), event); err != nil {
		s.logger.Error(err, "failed to publish notification event")
	}
}
