package invitation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/linkup-app/linkup-api/pkg/errors"
	"github.com/linkup-app/linkup-api/pkg/logger"
	"github.com/linkup-app/linkup-api/pkg/messaging"
	"github.com/linkup-app/linkup-api/pkg/metrics"

	"github.com/linkup-app/linkup-api/internal/model"
	"github.com/linkup-app/linkup-api/internal/repository"
	"github.com/linkup-app/linkup-api/internal/service/notification"
	"github.com/linkup-app/linkup-api/internal/service/presence"
)

// DefaultInviteTTL bounds how long a pending invitation stays answerable.
const DefaultInviteTTL = 2 * time.Hour

// Service drives the invitation lifecycle: creation with dedup and
// busy-state arbitration, recipient responses, and retention cleanup.
type Service struct {
	repo        repository.InvitationRepository
	presenceSvc *presence.Service
	notifSvc    *notification.Service
	broker      messaging.Broker
	metrics     *metrics.Metrics
	logger      *logger.Logger
	inviteTTL   time.Duration
	now         func() time.Time
}

func NewService(repo repository.InvitationRepository, presenceSvc *presence.Service, notifSvc *notification.Service, broker messaging.Broker, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		presenceSvc: presenceSvc,
		notifSvc:    notifSvc,
		broker:      broker,
		metrics:     m,
		logger:      log,
		inviteTTL:   DefaultInviteTTL,
		now:         time.Now,
	}
}

// WithClock replaces the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithInviteTTL overrides the pending-invitation lifetime.
func (s *Service) WithInviteTTL(ttl time.Duration) *Service {
	s.inviteTTL = ttl
	return s
}

// CheckBusyStatus evaluates, in order: pending invitations addressed to the
// target, active presence with location sharing, active presence without
// sharing. Pending invites win even over an active availability because
// accepting an older invite may change the target's intent.
func (s *Service) CheckBusyStatus(ctx context.Context, targetUserID uuid.UUID) (*model.BusyVerdict, error) {
	pending, err := s.repo.CountPendingFor(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if pending > 0 {
		return &model.BusyVerdict{
			Busy:         true,
			Status:       model.BusyPendingInvitations,
			PendingCount: pending,
		}, nil
	}

	p, err := s.presenceSvc.GetPresence(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	switch {
	case p.IsAvailable && p.LocationShared:
		return &model.BusyVerdict{
			Busy:     true,
			Status:   model.BusyActiveSharing,
			Activity: p.Activity,
		}, nil
	case p.IsAvailable && p.AvailabilityID != "":
		return &model.BusyVerdict{
			Busy:   true,
			Status: model.BusyActiveAvailability,
		}, nil
	default:
		return &model.BusyVerdict{}, nil
	}
}

// RequestInvitation creates a pending invitation unless the target is busy
// or a duplicate pending invitation exists for the unordered pair and
// activity. A busy target yields a blocked outcome, not an error; a
// duplicate is an error. The dedup check is re-validated atomically by the
// store at create time, so concurrent identical requests cannot both
// succeed.
func (s *Service) RequestInvitation(ctx context.Context, fromUserID, toUserID uuid.UUID, activity model.Activity) (*model.InviteOutcome, error) {
	if fromUserID == toUserID {
		return nil, apperrors.SelfInvitation()
	}
	if !activity.Valid() {
		return nil, apperrors.InvalidActivity(string(activity))
	}

	exists, err := s.repo.ExistsPendingBetween(ctx, fromUserID, toUserID, activity)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.DuplicatePending(string(activity))
	}

	verdict, err := s.CheckBusyStatus(ctx, toUserID)
	if err != nil {
		return nil, err
	}
	if verdict.Busy {
		if s.metrics != nil {
			s.metrics.InvitationsBlocked.WithLabelValues(string(verdict.Status)).Inc()
		}
		return &model.InviteOutcome{
			Verdict: verdict,
			Reason:  verdict.Reason(),
		}, nil
	}

	now := s.now()
	invitation := &model.Invitation{
		ID:         uuid.New(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Activity:   activity,
		Status:     model.InvitationStatusPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.inviteTTL),
	}

	if err := s.repo.Create(ctx, invitation); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.InvitationsCreated.Inc()
	}
	s.publish(ctx, model.EventInvitationCreated, invitation)

	if _, err := s.notifSvc.Emit(ctx, notification.InvitationCreated{Invitation: invitation}); err != nil {
		// The invitation stands; the recipient will still see it in their
		// pending list even if the notification record failed.
		s.logger.Error(err, "failed to emit invitation notification")
	}

	return &model.InviteOutcome{Created: true, Invitation: invitation}, nil
}

// RequestBulkInvitations applies RequestInvitation independently per
// target. One blocked or duplicate target never fails the batch.
func (s *Service) RequestBulkInvitations(ctx context.Context, fromUserID uuid.UUID, activity model.Activity, toUserIDs []uuid.UUID) (*model.BulkInviteResult, error) {
	if !activity.Valid() {
		return nil, apperrors.InvalidActivity(string(activity))
	}

	result := &model.BulkInviteResult{}
	for _, toUserID := range toUserIDs {
		outcome, err := s.RequestInvitation(ctx, fromUserID, toUserID, activity)
		switch {
		case apperrors.Is(err, apperrors.ErrDuplicatePending):
			result.Blocked++
			result.BlockedReasons = append(result.BlockedReasons, model.BlockedReason{
				FriendID: toUserID,
				Reason:   "already invited",
			})
		case apperrors.Is(err, apperrors.ErrSelfInvitation):
			result.Blocked++
			result.BlockedReasons = append(result.BlockedReasons, model.BlockedReason{
				FriendID: toUserID,
				Reason:   "cannot invite yourself",
			})
		case err != nil:
			return nil, err
		case outcome.Created:
			result.Count++
		default:
			result.Blocked++
			result.BusyCount++
			result.BlockedReasons = append(result.BlockedReasons, model.BlockedReason{
				FriendID: toUserID,
				Reason:   outcome.Reason,
				Type:     outcome.Verdict.Status,
			})
		}
	}

	result.DuplicateCount = result.Blocked - result.BusyCount
	return result, nil
}

// RespondToInvitation applies the recipient's accept or decline. Responding
// again with the same terminal response is idempotent; an elapsed expiry is
// recorded as a side effect before the error is reported. Accepting enables
// mutual location sharing for both parties.
func (s *Service) RespondToInvitation(ctx context.Context, invitationID, userID uuid.UUID, response model.InvitationStatus) (*model.Invitation, error) {
	if response != model.InvitationStatusAccepted && response != model.InvitationStatusDeclined {
		return nil, apperrors.InvalidResponse(string(response))
	}

	invitation, err := s.repo.Get(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	if invitation.Expired(s.now()) {
		// Record the expiry before reporting it, but never rewrite a
		// terminal status.
		if invitation.Status == model.InvitationStatusPending {
			if err := s.repo.UpdateStatus(ctx, invitationID, model.InvitationStatusExpired, nil); err != nil {
				s.logger.Error(err, "failed to record invitation expiry")
			}
			if s.metrics != nil {
				s.metrics.InvitationsExpired.Inc()
			}
		}
		return nil, apperrors.Expired("invitation")
	}

	if invitation.ToUserID != userID {
		return nil, apperrors.Forbidden("only the recipient can respond to an invitation")
	}

	if invitation.Status.Terminal() {
		if invitation.Status == response {
			return invitation, nil
		}
		return nil, apperrors.BadRequest("invitation already responded to", nil)
	}

	if err := s.repo.UpdateStatus(ctx, invitationID, response, &userID); err != nil {
		return nil, err
	}
	invitation.Status = response
	invitation.RespondedBy = &userID

	if s.metrics != nil {
		s.metrics.InvitationsResolved.WithLabelValues(string(response)).Inc()
	}
	s.publish(ctx, model.EventInvitationResolved, invitation)

	if response == model.InvitationStatusAccepted {
		if err := s.presenceSvc.EnableMutualSharing(ctx, invitation.FromUserID, invitation.ToUserID, invitation.Activity); err != nil {
			s.logger.Error(err, "failed to enable mutual sharing")
		}
	}

	if _, err := s.notifSvc.Emit(ctx, notification.InvitationResponded{Invitation: invitation}); err != nil {
		s.logger.Error(err, "failed to emit response notification")
	}

	return invitation, nil
}

// CleanupInvitations is a pure filter: it drops invitations created at or
// before cutoff and all terminal-status invitations, returning the rest.
func CleanupInvitations(invitations []*model.Invitation, cutoff time.Time) []*model.Invitation {
	remaining := make([]*model.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		if inv.Status.Terminal() {
			continue
		}
		if !inv.CreatedAt.After(cutoff) {
			continue
		}
		remaining = append(remaining, inv)
	}
	return remaining
}

// ListPendingFor returns the target's pending invitations for feed display.
func (s *Service) ListPendingFor(ctx context.Context, userID uuid.UUID) ([]*model.Invitation, error) {
	return s.repo.ListPendingFor(ctx, userID)
}

func (s *Service) publish(ctx context.Context, eventType model.EventType, invitation *model.Invitation) {
	event := &model.Event{
		Type:      eventType,
		EntityID:  invitation.ID,
		Payload:   invitation,
		CreatedAt: s.now(),
	}
	if err := s.broker.Publish(ctx, messaging.EntityChannel("invitation", invitation.ID), event); err != nil {
		s.logger.Error(err, "failed to publish invitation event")
	}
}
