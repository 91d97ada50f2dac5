package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/linkup-app/linkup-api/pkg/errors"

	"github.com/linkup-app/linkup-api/internal/model"
)

func (r *presenceRepository) Upsert(ctx context.Context, presence *model.Presence) error {
	query := `
		INSERT INTO presence (
			user_id, is_available, activity, availability_id,
			location_shared, expires_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			is_available = EXCLUDED.is_available,
			activity = EXCLUDED.activity,
			availability_id = EXCLUDED.availability_id,
			location_shared = EXCLUDED.location_shared,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`
	presence.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		presence.UserID,
		presence.IsAvailable,
		presence.Activity,
		presence.AvailabilityID,
		presence.LocationShared,
		presence.ExpiresAt,
		presence.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert presence: %w", err)
	}
	return nil
}

func (r *presenceRepository) Get(ctx context.Context, userID uuid.UUID) (*model.Presence, error) {
	query := `
		SELECT user_id, is_available, activity, availability_id,
			   location_shared, expires_at, updated_at
		FROM presence
		WHERE user_id = $1
	`
	var presence model.Presence
	err := r.db.GetContext(ctx, &presence, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("presence", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}
	return &presence, nil
}

func (r *presenceRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE presence
		SET is_available = false,
			availability_id = '',
			location_shared = false,
			expires_at = NULL,
			updated_at = $2
		WHERE user_id = $1
	`
	// Clearing an absent or already-inactive record is a no-op.
	_, err := r.db.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to clear presence: %w", err)
	}
	return nil
}

func (r *presenceRepository) ListExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM presence
		WHERE is_available = true
		  AND expires_at IS NOT NULL
		  AND expires_at <= $1
	`
	var userIDs []uuid.UUID
	if err := r.db.SelectContext(ctx, &userIDs, query, now); err != nil {
		return nil, fmt.Errorf("failed to list expired presence: %w", err)
	}
	return userIDs, nil
}
