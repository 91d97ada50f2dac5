package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	apperrors "github.com/linkup-app/linkup-api/pkg/errors"
	"github.com/linkup-app/linkup-api/pkg/logger"
	"github.com/linkup-app/linkup-api/pkg/messaging"

	"github.com/linkup-app/linkup-api/internal/model"
	"github.com/linkup-app/linkup-api/internal/repository"
)

const (
	// DefaultShareMinutes bounds the implicit availability created for an
	// accepting user who had no active record of their own.
	DefaultShareMinutes = 60

	cacheTTL     = 5 * time.Second
	cacheCleanup = time.Minute
)

// Service owns each user's ephemeral availability record. Expiry is lazy:
// any read of a stale record reports the user unavailable and clears the
// record, so correctness never depends on a background sweep.
type Service struct {
	repo         repository.PresenceRepository
	broker       messaging.Broker
	cache        *cache.Cache
	logger       *logger.Logger
	shareMinutes int
	now          func() time.Time
}

func NewService(repo repository.PresenceRepository, broker messaging.Broker, log *logger.Logger) *Service {
	return &Service{
		repo:         repo,
		broker:       broker,
		cache:        cache.New(cacheTTL, cacheCleanup),
		logger:       log,
		shareMinutes: DefaultShareMinutes,
		now:          time.Now,
	}
}

// WithClock replaces the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithShareMinutes overrides the duration of the implicit record created
// for an accepting user without one.
func (s *Service) WithShareMinutes(minutes int) *Service {
	if minutes > 0 {
		s.shareMinutes = minutes
	}
	return s
}

func (s *Service) SetAvailability(ctx context.Context, userID uuid.UUID, activity model.Activity, durationMinutes int, shareLocation bool) (*model.Presence, error) {
	if !activity.Valid() {
		return nil, apperrors.InvalidActivity(string(activity))
	}
	if durationMinutes <= 0 {
		return nil, apperrors.InvalidDuration(durationMinutes)
	}

	expires := s.now().Add(time.Duration(durationMinutes) * time.Minute)
	presence := &model.Presence{
		UserID:         userID,
		IsAvailable:    true,
		Activity:       activity,
		AvailabilityID: uuid.NewString(),
		LocationShared: shareLocation,
		ExpiresAt:      &expires,
	}

	if err := s.repo.Upsert(ctx, presence); err != nil {
		return nil, fmt.Errorf("failed to set availability: %w", err)
	}

	s.cache.Delete(userID.String())
	s.publishChange(ctx, presence)
	return presence, nil
}

// StopAvailability clears the user's record. Stopping an already-inactive
// user is a no-op, not an error.
func (s *Service) StopAvailability(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to stop availability: %w", err)
	}

	s.cache.Delete(userID.String())
	s.publishChange(ctx, &model.Presence{UserID: userID})
	return nil
}

// GetPresence returns the user's current record. A record whose expiry has
// elapsed is reported unavailable and cleared as a side effect, exactly as
// if the user had stopped it.
func (s *Service) GetPresence(ctx context.Context, userID uuid.UUID) (*model.Presence, error) {
	if cached, ok := s.cache.Get(userID.String()); ok {
		p := cached.(*model.Presence)
		if !p.Expired(s.now()) {
			return p, nil
		}
		s.cache.Delete(userID.String())
	}

	presence, err := s.repo.Get(ctx, userID)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return &model.Presence{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}

	if presence.Expired(s.now()) {
		if err := s.StopAvailability(ctx, userID); err != nil {
			return nil, err
		}
		return &model.Presence{UserID: userID}, nil
	}

	s.cache.Set(userID.String(), presence, cache.DefaultExpiration)
	return presence, nil
}

// EnableMutualSharing turns on location sharing for both parties of an
// accepted invitation. A party with an active record keeps it and starts
// sharing; a party without one gets a fresh sharing record for the agreed
// activity.
func (s *Service) EnableMutualSharing(ctx context.Context, userA, userB uuid.UUID, activity model.Activity) error {
	for _, userID := range []uuid.UUID{userA, userB} {
		presence, err := s.GetPresence(ctx, userID)
		if err != nil {
			return err
		}

		if presence.IsAvailable {
			presence.LocationShared = true
			if err := s.repo.Upsert(ctx, presence); err != nil {
				return fmt.Errorf("failed to enable sharing for %s: %w", userID, err)
			}
			s.cache.Delete(userID.String())
			s.publishChange(ctx, presence)
			continue
		}

		if _, err := s.SetAvailability(ctx, userID, activity, s.shareMinutes, true); err != nil {
			return err
		}
	}
	return nil
}

// ExpireStale clears every record whose expiry has elapsed, with the same
// side effects as the owner stopping it. Reads already handle expiry on
// their own; the sweep keeps subscribers of idle users current.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	userIDs, err := s.repo.ListExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired presence: %w", err)
	}

	cleared := 0
	for _, userID := range userIDs {
		if err := s.StopAvailability(ctx, userID); err != nil {
			s.logger.Error(err, "failed to expire presence", "user_id", userID)
			continue
		}
		cleared++
	}
	return cleared, nil
}

// publishChange is best-effort: a subscriber missing one update re-reads
// state on the next; a broker outage must not fail the user action.
func (s *Service) publishChange(ctx context.Context, presence *model.Presence) {
	event := &model.Event{
		Type:      model.EventPresenceChanged,
		EntityID:  presence.UserID,
		Payload:   presence,
		CreatedAt: s.now(),
	}
	if err := s.broker.Publish(ctx, messaging.EntityChannel("presence", presence.UserID), event); err != nil {
		s.logger.Error(err, "failed to publish presence change")
	}
}
