package onboarding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines the persistence operations for onboarding sessions
type Repository interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByID(ctx context.Context, id uuid.UUID) (*Session, error)
	GetActiveSession(ctx context.Context, userID uuid.UUID) (*Session, error)
	GetLatestSession(ctx context.Context, userID uuid.UUID) (*Session, error)
	UpdateSession(ctx context.Context, session *Session) error
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionColumns = `
	id, user_id, type, status, current_step, steps, restaurant_id, venue_id,
	total_steps, completed_steps, progress_percentage, estimated_time_remaining,
	created_at, updated_at
`

func (r *PostgresRepository) CreateSession(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO onboarding_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.Type, session.Status,
		session.CurrentStep, session.Steps, session.RestaurantID, session.VenueID,
		session.TotalSteps, session.CompletedSteps, session.ProgressPercentage,
		session.EstimatedTimeRemaining, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create onboarding session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetSessionByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM onboarding_sessions WHERE id = $1`

	var session Session
	err := r.db.GetContext(ctx, &session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get onboarding session: %w", err)
	}
	return &session, nil
}

// GetActiveSession returns the single non-terminal session for a user, or
// ErrSessionNotFound when none exists. Absence is not an application error;
// the service maps it to "onboarding not started".
func (r *PostgresRepository) GetActiveSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM onboarding_sessions
		WHERE user_id = $1 AND status IN ('not_started', 'in_progress', 'paused')
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var session Session
	err := r.db.GetContext(ctx, &session, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return &session, nil
}

func (r *PostgresRepository) GetLatestSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM onboarding_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var session Session
	err := r.db.GetContext(ctx, &session, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest session: %w", err)
	}
	return &session, nil
}

func (r *PostgresRepository) UpdateSession(ctx context.Context, session *Session) error {
	query := `
		UPDATE onboarding_sessions
		SET status = $2, current_step = $3, steps = $4, restaurant_id = $5,
			venue_id = $6, total_steps = $7, completed_steps = $8,
			progress_percentage = $9, estimated_time_remaining = $10,
			updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		session.ID, session.Status, session.CurrentStep, session.Steps,
		session.RestaurantID, session.VenueID, session.TotalSteps,
		session.CompletedSteps, session.ProgressPercentage,
		session.EstimatedTimeRemaining, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update onboarding session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM onboarding_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete onboarding session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}
