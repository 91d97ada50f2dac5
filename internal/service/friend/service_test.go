package friend

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/linkup-app/linkup-api/pkg/errors"
	"github.com/linkup-app/linkup-api/pkg/logger"

	"github.com/linkup-app/linkup-api/internal/model"
	"github.com/linkup-app/linkup-api/internal/service/notification"
)

type fakeFriendRepo struct {
	mu          sync.Mutex
	requests    map[uuid.UUID]*model.FriendRequest
	friendships map[[2]uuid.UUID]bool
}

func newFakeFriendRepo() *fakeFriendRepo {
	return &fakeFriendRepo{
		requests:    make(map[uuid.UUID]*model.FriendRequest),
		friendships: make(map[[2]uuid.UUID]bool),
	}
}

func edgeKey(a, b uuid.UUID) [2]uuid.UUID {
	if b.String() < a.String() {
		a, b = b, a
	}
	return [2]uuid.UUID{a, b}
}

func (r *fakeFriendRepo) CreateRequest(_ context.Context, request *model.FriendRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *request
	r.requests[request.ID] = &copy
	return nil
}

func (r *fakeFriendRepo) GetRequest(_ context.Context, id uuid.UUID) (*model.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return nil, apperrors.NotFound("friend request", nil)
	}
	copy := *request
	return &copy, nil
}

func (r *fakeFriendRepo) UpdateRequestStatus(_ context.Context, id uuid.UUID, status model.FriendRequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return apperrors.NotFound("friend request", nil)
	}
	request.Status = status
	return nil
}

func (r *fakeFriendRepo) AcceptRequest(_ context.Context, id uuid.UUID, userA, userB uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return apperrors.NotFound("friend request", nil)
	}
	request.Status = model.FriendRequestAccepted
	r.friendships[edgeKey(userA, userB)] = true
	return nil
}

func (r *fakeFriendRepo) AddFriendship(_ context.Context, userA, userB uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.friendships[edgeKey(userA, userB)] = true
	return nil
}

func (r *fakeFriendRepo) ListFriendIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []uuid.UUID
	for edge := range r.friendships {
		if edge[0] == userID {
			out = append(out, edge[1])
		} else if edge[1] == userID {
			out = append(out, edge[0])
		}
	}
	return out, nil
}

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

func (r *fakeNotificationRepo) MarkRead(context.Context, uuid.UUID) error    { return nil }
func (r *fakeNotificationRepo) MarkAllRead(context.Context, uuid.UUID) error { return nil }
func (r *fakeNotificationRepo) Delete(context.Context, uuid.UUID) error      { return nil }
func (r *fakeNotificationRepo) UnreadCount(context.Context, uuid.UUID) (int, error) {
	return 0, nil
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
	messages int
}

func (b *fakeBroker) Publish(context.Context, string, interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages++
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) { return nil, nil }
func (b *fakeBroker) Close() error                                             { return nil }

type fixture struct {
	svc       *Service
	repo      *fakeFriendRepo
	notifRepo *fakeNotificationRepo
	users     *fakeUserRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	repo := newFakeFriendRepo()
	notifRepo := &fakeNotificationRepo{}
	users := newFakeUserRepo()
	broker := &fakeBroker{}
	notifSvc := notification.NewService(notifRepo, users, broker, nil, log)
	svc := NewService(repo, users, notifSvc, broker, log)
	return &fixture{svc: svc, repo: repo, notifRepo: notifRepo, users: users}
}

func (f *fixture) newUser() uuid.UUID {
	id := uuid.New()
	f.users.add(id)
	return id
}

func TestCreateRequestNotifiesRecipient(t *testing.T) {
	f := newFixture(t)
	alice := f.newUser()
	bob := f.newUser()

	request, err := f.svc.CreateRequest(context.Background(), alice, bob)
	require.NoError(t, err)
	assert.Equal(t, model.FriendRequestPending, request.Status)

	notifications, err := f.notifRepo.ListFor(context.Background(), bob)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationTypeFriendInvitation, notifications[0].Type)
}

func TestCreateRequestRejectsSelfAndUnknownTarget(t *testing.T) {
	f := newFixture(t)
	alice := f.newUser()

	_, err := f.svc.CreateRequest(context.Background(), alice, alice)
	assert.Error(t, err)

	_, err = f.svc.CreateRequest(context.Background(), alice, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestRespondToRequestAcceptCreatesFriendship(t *testing.T) {
	f := newFixture(t)
	alice := f.newUser()
	bob := f.newUser()

	request, err := f.svc.CreateRequest(context.Background(), alice, bob)
	require.NoError(t, err)

	accepted, err := f.svc.RespondToRequest(context.Background(), request.ID, bob, true)
	require.NoError(t, err)
	assert.Equal(t, model.FriendRequestAccepted, accepted.Status)

	friends, err := f.svc.ListFriendIDs(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob}, friends)
}

func TestRespondToRequestDecline(t *testing.T) {
	f := newFixture(t)
	alice := f.newUser()
	bob := f.newUser()

	request, err := f.svc.CreateRequest(context.Background(), alice, bob)
	require.NoError(t, err)

	declined, err := f.svc.RespondToRequest(context.Background(), request.ID, bob, false)
	require.NoError(t, err)
	assert.Equal(t, model.FriendRequestDeclined, declined.Status)

	friends, err := f.svc.ListFriendIDs(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, friends)

	// A resolved request cannot be responded to again.
	_, err = f.svc.RespondToRequest(context.Background(), request.ID, bob, true)
	assert.Error(t, err)
}

func TestRespondToRequestOnlyRecipient(t *testing.T) {
	f := newFixture(t)
	alice := f.newUser()
	bob := f.newUser()

	request, err := f.svc.CreateRequest(context.Background(), alice, bob)
	require.NoError(t, err)

	_, err = f.svc.RespondToRequest(context.Background(), request.ID, alice, true)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}
