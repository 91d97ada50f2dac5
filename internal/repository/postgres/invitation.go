package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	apperrors "github.com/linkup-app/linkup-api/pkg/errors"

	"github.com/linkup-app/linkup-api/internal/model"
)

// uniqueViolation is the Postgres error code raised when the partial unique
// index on (least(from,to), greatest(from,to), activity) WHERE
// status = 'pending' rejects a duplicate. That index is what makes the
// dedup-check-and-create atomic under concurrent requests.
const uniqueViolation = "23505"

func (r *invitationRepository) Create(ctx context.Context, invitation *model.Invitation) error {
	query := `
		INSERT INTO invitations (
			id, from_user_id, to_user_id, activity, status,
			responded_by, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		invitation.ID,
		invitation.FromUserID,
		invitation.ToUserID,
		invitation.Activity,
		invitation.Status,
		invitation.RespondedBy,
		invitation.CreatedAt,
		invitation.ExpiresAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperrors.DuplicatePending(string(invitation.Activity))
	}
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

func (r *invitationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invitation, error) {
	query := `
		SELECT id, from_user_id, to_user_id, activity, status,
			   responded_by, created_at, expires_at
		FROM invitations
		WHERE id = $1
	`
	var invitation model.Invitation
	err := r.db.GetContext(ctx, &invitation, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("invitation", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return &invitation, nil
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.InvitationStatus, respondedBy *uuid.UUID) error {
	query := `
		UPDATE invitations
		SET status = $2, responded_by = $3
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, status, respondedBy)
	if err != nil {
		return fmt.Errorf("failed to update invitation status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("invitation", nil)
	}
	return nil
}

func (r *invitationRepository) CountPendingFor(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM invitations
		WHERE to_user_id = $1 AND status = $2
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, userID, model.InvitationStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending invitations: %w", err)
	}
	return count, nil
}

// ExistsPendingBetween checks the dedup key: unordered user pair plus
// activity. Advisory only; the unique index re-validates at create time.
func (r *invitationRepository) ExistsPendingBetween(ctx context.Context, userA, userB uuid.UUID, activity model.Activity) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM invitations
			WHERE LEAST(from_user_id, to_user_id) = LEAST($1::uuid, $2::uuid)
			  AND GREATEST(from_user_id, to_user_id) = GREATEST($1::uuid, $2::uuid)
			  AND activity = $3
			  AND status = $4
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userA, userB, activity, model.InvitationStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to check pending invitation: %w", err)
	}
	return exists, nil
}

func (r *invitationRepository) ListPendingFor(ctx context.Context, userID uuid.UUID) ([]*model.Invitation, error) {
	query := `
		SELECT id, from_user_id, to_user_id, activity, status,
			   responded_by, created_at, expires_at
		FROM invitations
		WHERE to_user_id = $1 AND status = $2
		ORDER BY created_at DESC
	`
	var invitations []*model.Invitation
	err := r.db.SelectContext(ctx, &invitations, query, userID, model.InvitationStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invitations: %w", err)
	}
	return invitations, nil
}

func (r *invitationRepository) ListAll(ctx context.Context) ([]*model.Invitation, error) {
	query := `
		SELECT id, from_user_id, to_user_id, activity, status,
			   responded_by, created_at, expires_at
		FROM invitations
		ORDER BY created_at DESC
	`
	var invitations []*model.Invitation
	err := r.db.SelectContext(ctx, &invitations, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

func (r *invitationRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM invitations
		WHERE created_at <= $1 OR status IN ($2, $3, $4)
	`
	result, err := r.db.ExecContext(ctx, query, cutoff,
		model.InvitationStatusAccepted,
		model.InvitationStatusDeclined,
		model.InvitationStatusExpired,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale invitations: %w", err)
	}
	return result.RowsAffected()
}
