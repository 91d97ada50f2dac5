package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/linkup-app/linkup-api/internal/repository"
)

type presenceRepository struct {
	db *sqlx.DB
}

type invitationRepository struct {
	db *sqlx.DB
}

type notificationRepository struct {
	db *sqlx.DB
}

type userRepository struct {
	db *sqlx.DB
}

type friendRepository struct {
	BaseRepository
}

func NewPresenceRepository(db *sqlx.DB) repository.PresenceRepository {
	return &presenceRepository{db: db}
}

func NewInvitationRepository(db *sqlx.DB) repository.InvitationRepository {
	return &invitationRepository{db: db}
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewFriendRepository(db *sqlx.DB) repository.FriendRepository {
	return &friendRepository{BaseRepository: NewBaseRepository(db)}
}
