package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	apperrors "github.com/linkup-app/linkup-api/pkg/errors"

	"github.com/linkup-app/linkup-api/internal/model"
)

func (r *friendRepository) CreateRequest(ctx context.Context, request *model.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (
			id, from_user_id, to_user_id, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		request.ID,
		request.FromUserID,
		request.ToUserID,
		request.Status,
		request.CreatedAt,
		request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create friend request: %w", err)
	}
	return nil
}

func (r *friendRepository) GetRequest(ctx context.Context, id uuid.UUID) (*model.FriendRequest, error) {
	query := `
		SELECT id, from_user_id, to_user_id, status, created_at, updated_at
		FROM friend_requests
		WHERE id = $1
	`
	var request model.FriendRequest
	err := r.db.GetContext(ctx, &request, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("friend request", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friend request: %w", err)
	}
	return &request, nil
}

func (r *friendRepository) UpdateRequestStatus(ctx context.Context, id uuid.UUID, status model.FriendRequestStatus) error {
	query := `UPDATE friend_requests SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update friend request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("friend request", nil)
	}
	return nil
}

// AddFriendship stores the edge once with the lower id first.
func (r *friendRepository) AddFriendship(ctx context.Context, userA, userB uuid.UUID) error {
	if userB.String() < userA.String() {
		userA, userB = userB, userA
	}
	query := `
		INSERT INTO friendships (user_a, user_b, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_a, user_b) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userA, userB, time.Now()); err != nil {
		return fmt.Errorf("failed to add friendship: %w", err)
	}
	return nil
}

// AcceptRequest marks the request accepted and records the friendship edge
// in one transaction.
func (r *friendRepository) AcceptRequest(ctx context.Context, id uuid.UUID, userA, userB uuid.UUID) error {
	if userB.String() < userA.String() {
		userA, userB = userB, userA
	}
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE friend_requests SET status = $2, updated_at = $3 WHERE id = $1`,
			id, model.FriendRequestAccepted, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to update friend request: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("friend request", nil)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO friendships (user_a, user_b, created_at)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (user_a, user_b) DO NOTHING`,
			userA, userB, time.Now(),
		); err != nil {
			return fmt.Errorf("failed to add friendship: %w", err)
		}
		return nil
	})
}

func (r *friendRepository) ListFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT CASE WHEN user_a = $1 THEN user_b ELSE user_a END
		FROM friendships
		WHERE user_a = $1 OR user_b = $1
	`
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return ids, nil
}
