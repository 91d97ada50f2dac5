package friend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/linkup-app/linkup-api/pkg/errors"
	"github.com/linkup-app/linkup-api/pkg/logger"
	"github.com/linkup-app/linkup-api/pkg/messaging"

	"github.com/linkup-app/linkup-api/internal/model"
	"github.com/linkup-app/linkup-api/internal/repository"
	"github.com/linkup-app/linkup-api/internal/service/notification"
)

// Service manages friend requests and the resulting social-graph edges.
type Service struct {
	repo     repository.FriendRepository
	users    repository.UserRepository
	notifSvc *notification.Service
	broker   messaging.Broker
	logger   *logger.Logger
	now      func() time.Time
}

func NewService(repo repository.FriendRepository, users repository.UserRepository, notifSvc *notification.Service, broker messaging.Broker, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		notifSvc: notifSvc,
		broker:   broker,
		logger:   log,
		now:      time.Now,
	}
}

func (s *Service) CreateRequest(ctx context.Context, fromUserID, toUserID uuid.UUID) (*model.FriendRequest, error) {
	if fromUserID == toUserID {
		return nil, apperrors.SelfInvitation()
	}
	if _, err := s.users.Get(ctx, toUserID); err != nil {
		return nil, err
	}

	now := s.now()
	request := &model.FriendRequest{
		ID:         uuid.New(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     model.FriendRequestPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	s.publish(ctx, request)

	if _, err := s.notifSvc.Emit(ctx, notification.FriendRequested{Request: request}); err != nil {
		s.logger.Error(err, "failed to emit friend request notification")
	}

	return request, nil
}

func (s *Service) RespondToRequest(ctx context.Context, requestID, userID uuid.UUID, accept bool) (*model.FriendRequest, error) {
	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ToUserID != userID {
		return nil, apperrors.Forbidden("only the recipient can respond to a friend request")
	}
	if request.Status != model.FriendRequestPending {
		return nil, apperrors.BadRequest("friend request already responded to", nil)
	}

	if accept {
		if err := s.repo.AcceptRequest(ctx, requestID, request.FromUserID, request.ToUserID); err != nil {
			return nil, err
		}
		request.Status = model.FriendRequestAccepted
	} else {
		if err := s.repo.UpdateRequestStatus(ctx, requestID, model.FriendRequestDeclined); err != nil {
			return nil, err
		}
		request.Status = model.FriendRequestDeclined
	}
	request.UpdatedAt = s.now()

	return request, nil
}

func (s *Service) ListFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.ListFriendIDs(ctx, userID)
}

func (s *Service) publish(ctx context.Context, request *model.FriendRequest) {
	event := &model.Event{
		Type:      model.EventFriendRequested,
		EntityID:  request.ID,
		Payload:   request,
		CreatedAt: s.now(),
	}
	if err := s.broker.Publish(ctx, messaging.EntityChannel("friend_request", request.ID), event); err != nil {
		s.logger.Error(err, "failed to publish friend request event")
	}
}
