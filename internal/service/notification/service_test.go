package notification

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
	"github.com/linkup-app/linkup-api/pkg/messaging"

	"github.com/linkup-app/linkup-api/internal/model"
)

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*model.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *n
	r.notifications = append(r.notifications, &copy)
	return nil
}

func (r *fakeNotificationRepo) Get(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			copy := *n
			return &copy, nil
		}
	}
	return nil, apperrors.NotFound("notification", nil)
}

func (r *fakeNotificationRepo) ListFor(_ context.Context, userID uuid.UUID) ([]*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Notification
	for _, n := range r.notifications {
		if n.To == userID {
			copy := *n
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return apperrors.NotFound("notification", nil)
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.To == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("notification", nil)
}

func (r *fakeNotificationRepo) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifications {
		if n.To == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]bool)}
}

func (r *fakeUserRepo) add(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = true
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = true
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.users[id] {
		return nil, apperrors.NotFound("user", nil)
	}
	return &model.User{ID: id, Status: model.UserStatusActive}, nil
}

func (r *fakeUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, apperrors.NotFound("user", nil)
}

type fakeBroker struct {
	mu       sync.Mutex
	channels map[string]int
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{channels: make(map[string]int)}
}

func (b *fakeBroker) Publish(_ context.Context, channel string, _ interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.channels[channel]++
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) { return nil, nil }
func (b *fakeBroker) Close() error                                            { return nil }

func (b *fakeBroker) published(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.channels[channel]
}

type fixture struct {
	svc    *Service
	repo   *fakeNotificationRepo
	users  *fakeUserRepo
	broker *fakeBroker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	repo := &fakeNotificationRepo{}
	users := newFakeUserRepo()
	broker := newFakeBroker()
	svc := NewService(repo, users, broker, nil, log)
	return &fixture{svc: svc, repo: repo, users: users, broker: broker}
}

func pendingInvitation(from, to uuid.UUID) *model.Invitation {
	return &model.Invitation{
		ID:         uuid.New(),
		FromUserID: from,
		ToUserID:   to,
		Activity:   model.ActivityCoffee,
		Status:     model.InvitationStatusPending,
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(2 * time.Hour),
	}
}

func TestEmitInvitationCreated(t *testing.T) {
	f := newFixture(t)
	alice := uuid.New()
	bob := uuid.New()
	f.users.add(bob)

	n, err := f.svc.Emit(context.Background(), InvitationCreated{Invitation: pendingInvitation(alice, bob)})
	require.NoError(t, err)

	assert.Equal(t, bob, n.To)
	assert.Equal(t, alice, n.From)
	assert.Equal(t, model.NotificationTypeInvitation, n.Type)
	assert.Equal(t, "You have been invited for coffee", n.Message)
	assert.False(t, n.Read)
	assert.NotEqual(t, uuid.Nil, n.ID)

	payload, err := n.DecodePayload()
	require.NoError(t, err)
	data, ok := payload.(*model.InvitationData)
	require.True(t, ok)
	assert.Equal(t, model.ActivityCoffee, data.Activity)

	assert.Equal(t, 1, f.broker.published(messaging.UserChannel(bob)))
}

func TestEmitInvitationRespondedRoutesToSender(t *testing.T) {
	f := newFixture(t)
	alice := uuid.New()
	bob := uuid.New()
	f.users.add(alice)

	inv := pendingInvitation(alice, bob)
	inv.Status = model.InvitationStatusAccepted

	n, err := f.svc.Emit(context.Background(), InvitationResponded{Invitation: inv})
	require.NoError(t, err)
	assert.Equal(t, alice, n.To)
	assert.Equal(t, bob, n.From)
	assert.Equal(t, model.NotificationTypeActivityAccepted, n.Type)
	assert.Equal(t, "Your coffee invitation was accepted", n.Message)

	inv = pendingInvitation(alice, bob)
	inv.Status = model.InvitationStatusDeclined
	n, err = f.svc.Emit(context.Background(), InvitationResponded{Invitation: inv})
	require.NoError(t, err)
	assert.Equal(t, model.NotificationTypeActivityDeclined, n.Type)
	assert.Equal(t, "Your coffee invitation was declined", n.Message)
}

func TestEmitFriendRequested(t *testing.T) {
	f := newFixture(t)
	alice := uuid.New()
	bob := uuid.New()
	f.users.add(bob)

	request := &model.FriendRequest{
		ID:         uuid.New(),
		FromUserID: alice,
		ToUserID:   bob,
		Status:     model.FriendRequestPending,
	}

	n, err := f.svc.Emit(context.Background(), FriendRequested{Request: request})
	require.NoError(t, err)
	assert.Equal(t, model.NotificationTypeFriendInvitation, n.Type)
	assert.Equal(t, "You have a new friend request", n.Message)
}

func TestEmitUnresolvedRecipient(t *testing.T) {
	f := newFixture(t)
	alice := uuid.New()
	ghost := uuid.New() // never registered

	_, err := f.svc.Emit(context.Background(), InvitationCreated{Invitation: pendingInvitation(alice, ghost)})
	assert.True(t, apperrors.Is(err, apperrors.ErrUnresolvedRecipient))
	assert.Empty(t, f.repo.notifications, "no record is stored for an unresolvable recipient")
}

func TestMarkReadIsMonotonic(t *testing.T) {
	f := newFixture(t)
	alice := uuid.New()
	bob := uuid.New()
	f.users.add(bob)

	n, err := f.svc.Emit(context.Background(), InvitationCreated{Invitation: pendingInvitation(alice, bob)})
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkRead(context.Background(), n.ID, bob))
	require.NoError(t, f.svc.MarkRead(context.Background(), n.ID, bob), "marking twice is a no-op")

	stored, err := f.repo.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.True(t, stored.Read)

	count, err := f.svc.UnreadCount(context.Background(), bob)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkReadForbiddenForOtherUser(t *testing.T) {
	f := newFixture(t)
	alice := uuid.New()
	bob := uuid.New()
	mallory := uuid.New()
	f.users.add(bob)

	n, err := f.svc.Emit(context.Background(), InvitationCreated{Invitation: pendingInvitation(alice, bob)})
	require.NoError(t, err)

	err = f.svc.MarkRead(context.Background(), n.ID, mallory)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	err = f.svc.Delete(context.Background(), n.ID, mallory)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture(t)
	alice := uuid.New()
	bob := uuid.New()
	f.users.add(bob)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Emit(context.Background(), Generic{From: alice, To: bob, Message: "hello"})
		require.NoError(t, err)
	}

	count, err := f.svc.UnreadCount(context.Background(), bob)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, f.svc.MarkAllRead(context.Background(), bob))

	count, err = f.svc.UnreadCount(context.Background(), bob)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDeleteRemovesRecord(t *testing.T) {
	f := newFixture(t)
	alice := uuid.New()
	bob := uuid.New()
	f.users.add(bob)

	n, err := f.svc.Emit(context.Background(), InvitationCreated{Invitation: pendingInvitation(alice, bob)})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), n.ID, bob))

	_, err = f.repo.Get(context.Background(), n.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	err = f.svc.Delete(context.Background(), n.ID, bob)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
