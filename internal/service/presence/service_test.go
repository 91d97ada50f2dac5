package presence

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/linkup-app/linkup-api/pkg/errors"
	"github.com/linkup-app/linkup-api/pkg/logger"

	"github.com/linkup-app/linkup-api/internal/model"
)

type fakePresenceRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.Presence
}

func newFakePresenceRepo() *fakePresenceRepo {
	return &fakePresenceRepo{records: make(map[uuid.UUID]*model.Presence)}
}

func (r *fakePresenceRepo) Upsert(_ context.Context, p *model.Presence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *p
	r.records[p.UserID] = &copy
	return nil
}

func (r *fakePresenceRepo) Get(_ context.Context, userID uuid.UUID) (*model.Presence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[userID]
	if !ok {
		return nil, apperrors.NotFound("presence", nil)
	}
	copy := *p
	return &copy, nil
}

func (r *fakePresenceRepo) Clear(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.records[userID]; ok {
		p.IsAvailable = false
		p.AvailabilityID = ""
		p.LocationShared = false
		p.ExpiresAt = nil
	}
	return nil
}

func (r *fakePresenceRepo) ListExpired(_ context.Context, now time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []uuid.UUID
	for id, p := range r.records {
		if p.IsAvailable && p.Expired(now) {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeBroker struct {
	mu       sync.Mutex
	messages map[string][]interface{}
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{messages: make(map[string][]interface{})}
}

func (b *fakeBroker) Publish(_ context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[channel] = append(b.messages[channel], message)
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

func (b *fakeBroker) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, msgs := range b.messages {
		n += len(msgs)
	}
	return n
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func newTestService(now time.Time) (*Service, *fakePresenceRepo, *fakeBroker) {
	repo := newFakePresenceRepo()
	broker := newFakeBroker()
	svc := NewService(repo, broker, testLogger()).WithClock(func() time.Time { return now })
	return svc, repo, broker
}

func TestSetAvailability(t *testing.T) {
	now := time.Now()
	svc, _, broker := newTestService(now)
	userID := uuid.New()

	p, err := svc.SetAvailability(context.Background(), userID, model.ActivityCoffee, 30, false)
	require.NoError(t, err)

	assert.True(t, p.IsAvailable)
	assert.NotEmpty(t, p.AvailabilityID)
	assert.False(t, p.LocationShared)
	require.NotNil(t, p.ExpiresAt)
	assert.Equal(t, now.Add(30*time.Minute), *p.ExpiresAt)
	assert.Equal(t, 1, broker.count())
}

func TestSetAvailabilityRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(time.Now())
	userID := uuid.New()

	_, err := svc.SetAvailability(context.Background(), userID, "skydiving", 30, false)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidActivity))

	_, err = svc.SetAvailability(context.Background(), userID, model.ActivityCoffee, 0, false)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidDuration))

	_, err = svc.SetAvailability(context.Background(), userID, model.ActivityCoffee, -5, false)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidDuration))
}

func TestStopAvailabilityIsIdempotent(t *testing.T) {
	svc, repo, _ := newTestService(time.Now())
	userID := uuid.New()

	_, err := svc.SetAvailability(context.Background(), userID, model.ActivityDrinks, 60, true)
	require.NoError(t, err)

	require.NoError(t, svc.StopAvailability(context.Background(), userID))
	require.NoError(t, svc.StopAvailability(context.Background(), userID), "stopping twice must not fail")
	require.NoError(t, svc.StopAvailability(context.Background(), uuid.New()), "stopping an unknown user must not fail")

	stored, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, stored.IsAvailable)
	assert.Empty(t, stored.AvailabilityID)
	assert.False(t, stored.LocationShared)
}

func TestGetPresenceAbsentUser(t *testing.T) {
	svc, _, _ := newTestService(time.Now())

	p, err := svc.GetPresence(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, p.IsAvailable)
	assert.Empty(t, p.AvailabilityID)
}

func TestGetPresenceLazyExpiry(t *testing.T) {
	now := time.Now()
	repo := newFakePresenceRepo()
	broker := newFakeBroker()
	clock := now
	svc := NewService(repo, broker, testLogger()).WithClock(func() time.Time { return clock })
	userID := uuid.New()

	_, err := svc.SetAvailability(context.Background(), userID, model.ActivityCinema, 15, true)
	require.NoError(t, err)

	clock = now.Add(16 * time.Minute)

	p, err := svc.GetPresence(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, p.IsAvailable, "stale record must read as unavailable")
	assert.Empty(t, p.AvailabilityID)
	assert.False(t, p.LocationShared)

	// The expiry had the same side effects as an explicit stop.
	stored, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, stored.IsAvailable)
	assert.Empty(t, stored.AvailabilityID)
}

func TestEnableMutualSharing(t *testing.T) {
	now := time.Now()
	svc, repo, _ := newTestService(now)
	userA := uuid.New()
	userB := uuid.New()

	// A is available but not sharing; B has no record at all.
	_, err := svc.SetAvailability(context.Background(), userA, model.ActivityLunch, 45, false)
	require.NoError(t, err)

	require.NoError(t, svc.EnableMutualSharing(context.Background(), userA, userB, model.ActivityLunch))

	a, err := repo.Get(context.Background(), userA)
	require.NoError(t, err)
	assert.True(t, a.IsAvailable)
	assert.True(t, a.LocationShared)

	b, err := repo.Get(context.Background(), userB)
	require.NoError(t, err)
	assert.True(t, b.IsAvailable)
	assert.True(t, b.LocationShared)
	assert.Equal(t, model.ActivityLunch, b.Activity)
}

func TestExpireStale(t *testing.T) {
	now := time.Now()
	repo := newFakePresenceRepo()
	broker := newFakeBroker()
	clock := now
	svc := NewService(repo, broker, testLogger()).WithClock(func() time.Time { return clock })

	expiring := uuid.New()
	fresh := uuid.New()
	_, err := svc.SetAvailability(context.Background(), expiring, model.ActivityCoffee, 10, false)
	require.NoError(t, err)
	_, err = svc.SetAvailability(context.Background(), fresh, model.ActivityCoffee, 120, false)
	require.NoError(t, err)

	clock = now.Add(30 * time.Minute)

	cleared, err := svc.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cleared)

	stale, err := repo.Get(context.Background(), expiring)
	require.NoError(t, err)
	assert.False(t, stale.IsAvailable)

	kept, err := repo.Get(context.Background(), fresh)
	require.NoError(t, err)
	assert.True(t, kept.IsAvailable)
}
